package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"
)

type importCmd struct{}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import entries from a JSON lines file" }
func (*importCmd) Usage() string {
	return `cfo import <file>

  Adds the entries of a file written by 'cfo export'. The entries get new ids.
  Nothing is imported when one of them is invalid. Use - for the standard input.

`
}

func (*importCmd) SetFlags(f *flag.FlagSet) {}

func (*importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return usage("expected exactly one file")
	}
	var r io.Reader = os.Stdin
	if name := f.Arg(0); name != "-" {
		file, err := os.Open(name)
		if err != nil {
			return fail("%v", err)
		}
		defer file.Close()
		r = file
	}
	return withApp(ctx, func(a *app) subcommands.ExitStatus {
		n, err := a.tracker.Import(ctx, r)
		if err != nil {
			return fail("import failed: %v", err)
		}
		fmt.Fprintf(stdout, "%d entries imported.\n", n)
		return subcommands.ExitSuccess
	})
}

type exportCmd struct {
	wallet string
	output string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export entries as JSON lines" }
func (*exportCmd) Usage() string {
	return `cfo export [-w <wallet>] [-o <file>]

  Writes the entries, one JSON object per line, to the standard output or to a file.

`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.wallet, "w", "", "Only export this wallet")
	f.StringVar(&c.output, "o", "", "Output file, defaults to the standard output")
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(ctx, func(a *app) subcommands.ExitStatus {
		if c.output == "" {
			if _, err := a.tracker.Export(ctx, stdout, c.wallet); err != nil {
				return fail("%v", err)
			}
			return subcommands.ExitSuccess
		}
		file, err := os.Create(c.output)
		if err != nil {
			return fail("%v", err)
		}
		n, err := a.tracker.Export(ctx, file, c.wallet)
		if cerr := file.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fail("%v", err)
		}
		fmt.Fprintf(stdout, "%d entries exported to %s.\n", n, c.output)
		return subcommands.ExitSuccess
	})
}
