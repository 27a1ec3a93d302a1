// Package main is the entry point for the xarc CLI binary.
package main

import (
	"os"

	// Register the SQL drivers supported by "apply" and "revert".
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

func main() {
	os.Exit(execute())
}
