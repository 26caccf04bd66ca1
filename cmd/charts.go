package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/etnz/cryptofolio"
	"github.com/etnz/cryptofolio/chart"
	"github.com/google/subcommands"
)

// writeChart draws a chart into the file name, in the format of its extension.
func writeChart(name string, draw func(w io.Writer, f chart.Format) error) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := draw(f, chart.FormatOf(name)); err != nil {
		f.Close()
		os.Remove(name)
		return err
	}
	return f.Close()
}

type plotCmd struct {
	output string
}

func (*plotCmd) Name() string     { return "plot" }
func (*plotCmd) Synopsis() string { return "chart the recorded evolution of a coin" }
func (*plotCmd) Usage() string {
	return `cfo plot [-o <file>] <symbol>

  Draws the price and net value of a coin over the recorded analyses.
  The format follows the file extension: .svg or .png (default).

`
}

func (c *plotCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "Output file, defaults to <symbol>_history.png")
}

func (c *plotCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return usage("expected exactly one symbol")
	}
	symbol := strings.ToUpper(f.Arg(0))
	output := c.output
	if output == "" {
		output = strings.ToLower(symbol) + "_history.png"
	}
	return withApp(ctx, func(a *app) subcommands.ExitStatus {
		points, err := a.tracker.CoinHistory(ctx, symbol)
		if err != nil {
			return fail("%v", err)
		}
		err = writeChart(output, func(w io.Writer, f chart.Format) error {
			return chart.History(w, f, symbol, points)
		})
		if errors.Is(err, chart.ErrNotEnoughData) {
			return fail("not enough history for %s: run 'cfo analyze' at least twice", symbol)
		}
		if err != nil {
			return fail("%v", err)
		}
		fmt.Fprintf(stdout, "Chart written to %s.\n", output)
		return subcommands.ExitSuccess
	})
}

type chartsCmd struct {
	kind, split, wallet, output string
}

func (*chartsCmd) Name() string     { return "charts" }
func (*chartsCmd) Synopsis() string { return "chart the portfolio composition" }
func (*chartsCmd) Usage() string {
	return `cfo charts [-kind pie|bar|timeline] [-split coin|wallet|type] [-w <wallet>] [-o <file>]

  Draws the amounts held split by coin, wallet or type, as a pie or a bar
  chart, or the cumulative investment over the entries (timeline).

Usage Examples:
$ cfo charts -kind pie -split wallet -o wallets.svg
$ cfo charts -kind timeline -o investment.png

`
}

func (c *chartsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.kind, "kind", "pie", "Chart kind: pie, bar or timeline")
	f.StringVar(&c.split, "split", "coin", "Split of the amounts: coin, wallet or type")
	f.StringVar(&c.wallet, "w", "", "Only chart this wallet")
	f.StringVar(&c.output, "o", "", "Output file, defaults to <kind>_<split>.png")
}

// shares returns the split of s and the chart title.
func shares(s *cryptofolio.Summary, split string) ([]cryptofolio.Share, string, error) {
	switch split {
	case "coin":
		return s.BySymbol, "Amount by coin", nil
	case "wallet":
		return s.ByWallet, "Amount by wallet", nil
	case "type":
		return s.ByType, "Amount by type", nil
	}
	return nil, "", fmt.Errorf("unknown split %q: want coin, wallet or type", split)
}

func (c *chartsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var draw func(io.Writer, chart.Format, string, []cryptofolio.Share) error
	switch c.kind {
	case "pie":
		draw = chart.Pie
	case "bar":
		draw = chart.Bar
	case "timeline":
	default:
		return usage("unknown chart kind %q: want pie, bar or timeline", c.kind)
	}
	output := c.output
	if output == "" {
		output = c.kind + "_" + c.split + ".png"
		if c.kind == "timeline" {
			output = "timeline.png"
		}
	}

	return withApp(ctx, func(a *app) subcommands.ExitStatus {
		sum, err := a.tracker.Summary(ctx, c.wallet)
		if err != nil {
			return fail("%v", err)
		}
		if draw == nil {
			err = writeChart(output, func(w io.Writer, f chart.Format) error {
				return chart.Timeline(w, f, sum.Timeline)
			})
		} else {
			sh, title, serr := shares(sum, c.split)
			if serr != nil {
				return usage("%v", serr)
			}
			err = writeChart(output, func(w io.Writer, f chart.Format) error {
				return draw(w, f, title, sh)
			})
		}
		if err != nil {
			return fail("%v", err)
		}
		fmt.Fprintf(stdout, "Chart written to %s.\n", output)
		return subcommands.ExitSuccess
	})
}
