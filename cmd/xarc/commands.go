package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/syssam/xarc"
	"github.com/syssam/xarc/dialect"
	xsql "github.com/syssam/xarc/dialect/sql"
	"github.com/syssam/xarc/migrate"
)

func execute() int {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "xarc",
		Short:         "Compile and apply exclusive-arc polymorphic relation constraints",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(
		newPrintCmd("add", "Print the DDL that installs the declared mappings", migrate.CompileAdd),
		newPrintCmd("remove", "Print the DDL that removes the declared mappings", migrate.CompileRemove),
		newApplyCmd("apply", "Apply the declared mappings to a database", (*migrate.Migrate).Create),
		newApplyCmd("revert", "Remove the declared mappings from a database", (*migrate.Migrate).Drop),
	)
	return cmd
}

func newPrintCmd(use, short string, compile func(string, *xarc.Mapping, ...migrate.CompileOption) ([]migrate.Statement, error)) *cobra.Command {
	var (
		configPath string
		dialectarg string
		withoutFKs bool
	)
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mappings, err := loadMappings(configPath)
			if err != nil {
				return err
			}
			var opts []migrate.CompileOption
			if withoutFKs {
				opts = append(opts, migrate.WithoutForeignKeys())
			}
			for _, m := range mappings {
				stmts, err := compile(dialectarg, m, opts...)
				if err != nil {
					return err
				}
				for _, s := range stmts {
					fmt.Fprintf(cmd.OutOrStdout(), "%s;\n", s.SQL)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "xarc.yaml", "Path to the mapping declaration file")
	cmd.Flags().StringVar(&dialectarg, "dialect", dialect.Postgres, "Target dialect: postgres, mysql or sqlite")
	cmd.Flags().BoolVar(&withoutFKs, "without-foreign-keys", false, "Omit foreign-key constraints (required on sqlite)")
	return cmd
}

// debugLogger builds the slog logger backing --debug. Statements are
// logged at Debug level, so the handler level must let them through.
func debugLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func newApplyCmd(use, short string, run func(*migrate.Migrate, context.Context, ...*xarc.Mapping) error) *cobra.Command {
	var (
		configPath string
		dialectarg string
		dsn        string
		withoutFKs bool
		dryRun     bool
		debug      bool
	)
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mappings, err := loadMappings(configPath)
			if err != nil {
				return err
			}
			sqlDrv, err := xsql.Open(dialectarg, dsn)
			if err != nil {
				return fmt.Errorf("open %s: %w", dialectarg, err)
			}
			defer sqlDrv.Close()
			var drv dialect.Driver = sqlDrv
			if debug {
				drv = dialect.Debug(drv, debugLogger(cmd.ErrOrStderr()))
			}
			opts := []migrate.MigrateOption{migrate.WithForeignKeys(!withoutFKs)}
			if dryRun {
				opts = append(opts, migrate.WithDryRun(cmd.OutOrStdout()))
			}
			m, err := migrate.NewMigrate(drv, opts...)
			if err != nil {
				return err
			}
			return run(m, cmd.Context(), mappings...)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "xarc.yaml", "Path to the mapping declaration file")
	cmd.Flags().StringVar(&dialectarg, "dialect", dialect.Postgres, "Target dialect: postgres, mysql or sqlite")
	cmd.Flags().StringVar(&dsn, "dsn", "", "Database connection string")
	cmd.Flags().BoolVar(&withoutFKs, "without-foreign-keys", false, "Omit foreign-key constraints (required on sqlite)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the statements instead of executing them")
	cmd.Flags().BoolVar(&debug, "debug", false, "Log every executed statement to stderr")
	_ = cmd.MarkFlagRequired("dsn")
	return cmd
}
