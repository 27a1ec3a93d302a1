package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// File is one versioned migration file produced by a Formatter.
type File struct {
	Name    string
	Content []byte
}

// Formatter renders a compiled constraint set as versioned migration
// files for an external migration runner.
type Formatter interface {
	Format(version, name string, set *ConstraintSet) ([]File, error)
}

// Supported formatters.
var (
	// GooseFormatter writes a single goose-style file with Up and Down
	// sections. Trigger bodies contain semicolons, so every statement is
	// wrapped in a StatementBegin/StatementEnd envelope.
	GooseFormatter Formatter = gooseFormatter{}
	// GolangMigrateFormatter writes a golang-migrate style
	// .up.sql/.down.sql file pair.
	GolangMigrateFormatter Formatter = golangMigrateFormatter{}
)

// WriteDir formats the set and writes the resulting files into dir.
func WriteDir(dir, version, name string, set *ConstraintSet, f Formatter) error {
	files, err := f.Format(version, name, set)
	if err != nil {
		return err
	}
	for _, file := range files {
		if err := os.WriteFile(filepath.Join(dir, file.Name), file.Content, 0o644); err != nil {
			return fmt.Errorf("migrate: write %s: %w", file.Name, err)
		}
	}
	return nil
}

type gooseFormatter struct{}

func (gooseFormatter) Format(version, name string, set *ConstraintSet) ([]File, error) {
	var b strings.Builder
	b.WriteString("-- +goose Up\n")
	writeGooseStatements(&b, set.Add)
	b.WriteString("\n-- +goose Down\n")
	writeGooseStatements(&b, set.Remove)
	return []File{{
		Name:    fmt.Sprintf("%s_%s.sql", version, name),
		Content: []byte(b.String()),
	}}, nil
}

func writeGooseStatements(b *strings.Builder, stmts []Statement) {
	for _, s := range stmts {
		b.WriteString("-- +goose StatementBegin\n")
		b.WriteString(s.SQL)
		b.WriteString(";\n-- +goose StatementEnd\n")
	}
}

type golangMigrateFormatter struct{}

func (golangMigrateFormatter) Format(version, name string, set *ConstraintSet) ([]File, error) {
	return []File{
		{
			Name:    fmt.Sprintf("%s_%s.up.sql", version, name),
			Content: joinStatements(set.Add),
		},
		{
			Name:    fmt.Sprintf("%s_%s.down.sql", version, name),
			Content: joinStatements(set.Remove),
		},
	}, nil
}

func joinStatements(stmts []Statement) []byte {
	var b strings.Builder
	for _, s := range stmts {
		b.WriteString(s.SQL)
		b.WriteString(";\n")
	}
	return []byte(b.String())
}
