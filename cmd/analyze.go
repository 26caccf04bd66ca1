package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/etnz/cryptofolio/poller"
	"github.com/etnz/cryptofolio/renderer"
	"github.com/etnz/cryptofolio/tracker"
	"github.com/google/subcommands"
)

// analysisFlags select what an analysis covers.
type analysisFlags struct {
	byWallet bool
	wallet   string
}

func (c *analysisFlags) set(f *flag.FlagSet) {
	f.BoolVar(&c.byWallet, "by-wallet", false, "One row per coin and wallet")
	f.StringVar(&c.wallet, "w", "", "Only analyze this wallet")
}

func (c *analysisFlags) options() tracker.Options {
	return tracker.Options{ByWallet: c.byWallet, Wallet: c.wallet}
}

func printReport(r *tracker.Report) {
	printMarkdown(renderer.AnalysisMarkdown(r.Analysis, r.Alerts, r.At))
}

type analyzeCmd struct {
	analysisFlags
	noSave bool
}

func (*analyzeCmd) Name() string     { return "analyze" }
func (*analyzeCmd) Synopsis() string { return "analyze the portfolio at the current prices" }
func (*analyzeCmd) Usage() string {
	return `cfo analyze [-by-wallet] [-w <wallet>] [-no-save]

  Fetches the current prices, shows the performance of every coin and the
  take-profit and stop-loss alerts. The result is recorded in the history
  unless -no-save is given.

`
}

func (c *analyzeCmd) SetFlags(f *flag.FlagSet) {
	c.analysisFlags.set(f)
	f.BoolVar(&c.noSave, "no-save", false, "Do not record the analysis in the history")
}

func (c *analyzeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(ctx, func(a *app) subcommands.ExitStatus {
		opts := c.options()
		opts.NoSave = c.noSave
		r, err := a.tracker.Analyze(ctx, opts)
		if err != nil {
			return fail("%v", err)
		}
		printReport(r)
		return subcommands.ExitSuccess
	})
}

type watchCmd struct {
	analysisFlags
	interval time.Duration
	n        int
}

func (*watchCmd) Name() string     { return "watch" }
func (*watchCmd) Synopsis() string { return "analyze the portfolio periodically" }
func (*watchCmd) Usage() string {
	return `cfo watch [-interval <duration>] [-n <count>] [-by-wallet] [-w <wallet>]

  Runs the analysis every interval until Ctrl+C, or -n times. Every run is
  recorded in the history. The defaults come from the auto_update section
  of the configuration.

Usage Examples:
$ cfo watch -interval 30m
$ cfo watch -interval 1m -n 5 -by-wallet

`
}

func (c *watchCmd) SetFlags(f *flag.FlagSet) {
	c.analysisFlags.set(f)
	f.DurationVar(&c.interval, "interval", 0, "Time between two analyses, defaults to the configuration")
	f.IntVar(&c.n, "n", -1, "Number of analyses, 0 for no limit, defaults to the configuration")
}

func (c *watchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(ctx, func(a *app) subcommands.ExitStatus {
		interval, maxRuns := c.interval, c.n
		if interval == 0 {
			interval = a.cfg.AutoUpdate.Interval
		}
		if interval <= 0 {
			return usage("invalid interval %v", interval)
		}
		if maxRuns < 0 {
			maxRuns = a.cfg.AutoUpdate.MaxUpdates
		}
		opts := c.options()
		if !c.byWallet {
			opts.ByWallet = a.cfg.AutoUpdate.ByWallet
		}

		ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
		defer stop()

		fmt.Fprintf(stdout, "Auto-update every %v, press Ctrl+C to stop.\n", interval)
		job := a.tracker.Job(opts, func(n int, r *tracker.Report) {
			fmt.Fprintf(stdout, "\nUpdate #%d at %s\n", n, r.At.Format("15:04:05"))
			printReport(r)
		})
		runs := poller.New(interval, maxRuns, job, a.log).Run(ctx)
		fmt.Fprintf(stdout, "Auto-update stopped after %d updates.\n", runs)
		return subcommands.ExitSuccess
	})
}

type summaryCmd struct {
	wallet string
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "summarize the portfolio content" }
func (*summaryCmd) Usage() string {
	return `cfo summary [-w <wallet>]

  Shows the amounts held by coin, wallet and type, the invested amounts and
  the mean purchase prices. It does not need the market prices.

`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.wallet, "w", "", "Only summarize this wallet")
}

func (c *summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(ctx, func(a *app) subcommands.ExitStatus {
		sum, err := a.tracker.Summary(ctx, c.wallet)
		if err != nil {
			return fail("%v", err)
		}
		printMarkdown(renderer.SummaryMarkdown(sum))
		return subcommands.ExitSuccess
	})
}

type historyCmd struct{}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "show the recorded analyses of a coin" }
func (*historyCmd) Usage() string {
	return `cfo history [<symbol>]

  Shows the price and net value of a coin at every recorded analysis.
  Without a symbol, lists the symbols with a history.

`
}

func (*historyCmd) SetFlags(f *flag.FlagSet) {}

func (*historyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() > 1 {
		return usage("expected at most one symbol")
	}
	return withApp(ctx, func(a *app) subcommands.ExitStatus {
		if f.NArg() == 0 {
			symbols, err := a.tracker.HistorySymbols(ctx)
			if err != nil {
				return fail("%v", err)
			}
			if len(symbols) == 0 {
				fmt.Fprintln(stdout, "No history yet, run 'cfo analyze' first.")
				return subcommands.ExitSuccess
			}
			fmt.Fprintln(stdout, strings.Join(symbols, "\n"))
			return subcommands.ExitSuccess
		}
		symbol := strings.ToUpper(f.Arg(0))
		points, err := a.tracker.CoinHistory(ctx, symbol)
		if err != nil {
			return fail("%v", err)
		}
		printMarkdown(renderer.HistoryMarkdown(symbol, points))
		return subcommands.ExitSuccess
	})
}
