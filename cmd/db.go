package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/etnz/cryptofolio/renderer"
	"github.com/google/subcommands"
)

// dbCmd is a container for the database subcommands.
type dbCmd struct{}

func (*dbCmd) Name() string     { return "db" }
func (*dbCmd) Synopsis() string { return "database maintenance" }
func (*dbCmd) Usage() string {
	return `cfo db <subcommand>

Commands:
  info   - Show the database file and its row counts.
  schema - Show the tables and their columns.
  vacuum - Compact the database file.
`
}

func (*dbCmd) SetFlags(f *flag.FlagSet) {}
func (*dbCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	commander := subcommands.NewCommander(f, "db")
	commander.Register(&dbInfoCmd{}, "")
	commander.Register(&dbSchemaCmd{}, "")
	commander.Register(&dbVacuumCmd{}, "")
	return commander.Execute(ctx, args...)
}

type dbInfoCmd struct{}

func (*dbInfoCmd) Name() string             { return "info" }
func (*dbInfoCmd) Synopsis() string         { return "show the database file and its row counts" }
func (*dbInfoCmd) Usage() string            { return "cfo db info\n" }
func (*dbInfoCmd) SetFlags(f *flag.FlagSet) {}

func (*dbInfoCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(ctx, func(a *app) subcommands.ExitStatus {
		info, err := a.tracker.DatabaseInfo(ctx)
		if err != nil {
			return fail("%v", err)
		}
		printMarkdown(renderer.DatabaseMarkdown(info))
		return subcommands.ExitSuccess
	})
}

type dbSchemaCmd struct{}

func (*dbSchemaCmd) Name() string             { return "schema" }
func (*dbSchemaCmd) Synopsis() string         { return "show the tables and their columns" }
func (*dbSchemaCmd) Usage() string            { return "cfo db schema\n" }
func (*dbSchemaCmd) SetFlags(f *flag.FlagSet) {}

func (*dbSchemaCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(ctx, func(a *app) subcommands.ExitStatus {
		tables, err := a.tracker.Schema(ctx)
		if err != nil {
			return fail("%v", err)
		}
		printMarkdown(renderer.SchemaMarkdown(tables))
		return subcommands.ExitSuccess
	})
}

type dbVacuumCmd struct{}

func (*dbVacuumCmd) Name() string             { return "vacuum" }
func (*dbVacuumCmd) Synopsis() string         { return "compact the database file" }
func (*dbVacuumCmd) Usage() string            { return "cfo db vacuum\n" }
func (*dbVacuumCmd) SetFlags(f *flag.FlagSet) {}

func (*dbVacuumCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(ctx, func(a *app) subcommands.ExitStatus {
		if err := a.tracker.Vacuum(ctx); err != nil {
			return fail("%v", err)
		}
		fmt.Fprintln(stdout, "Database vacuumed.")
		return subcommands.ExitSuccess
	})
}

type configCmd struct{}

func (*configCmd) Name() string     { return "config" }
func (*configCmd) Synopsis() string { return "show the effective configuration" }
func (*configCmd) Usage() string {
	return `cfo config

  Prints the configuration after the file and the CFO_* environment
  variables are applied. Secrets are redacted.

`
}

func (*configCmd) SetFlags(f *flag.FlagSet) {}

func (*configCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, _, err := loadConfig()
	if err != nil {
		return fail("%v", err)
	}
	out, err := cfg.YAML()
	if err != nil {
		return fail("%v", err)
	}
	if cfg.File != "" {
		fmt.Fprintf(stdout, "# read from %s\n", cfg.File)
	}
	stdout.Write(out)
	return subcommands.ExitSuccess
}
