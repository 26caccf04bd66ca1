package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/etnz/cryptofolio"
	"github.com/etnz/cryptofolio/chart"
	"github.com/etnz/cryptofolio/coingecko"
	"github.com/etnz/cryptofolio/renderer"
	"github.com/google/subcommands"
)

type priceCmd struct{}

func (*priceCmd) Name() string     { return "price" }
func (*priceCmd) Synopsis() string { return "show the current price of coins" }
func (*priceCmd) Usage() string {
	return `cfo price [<coin id>...]

  Shows the current price of the given coins, the coins of the portfolio by default.

Usage Examples:
$ cfo price bitcoin ethereum

`
}

func (*priceCmd) SetFlags(f *flag.FlagSet) {}

func (*priceCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(ctx, func(a *app) subcommands.ExitStatus {
		coins := f.Args()
		if len(coins) == 0 {
			entries, err := a.tracker.Entries(ctx, "")
			if err != nil {
				return fail("%v", err)
			}
			coins = entries.Coins()
		}
		if len(coins) == 0 {
			fmt.Fprintln(stdout, "The portfolio is empty, give coin ids.")
			return subcommands.ExitSuccess
		}
		prices, err := a.tracker.Prices(ctx, coins)
		if err != nil {
			return fail("%v", err)
		}
		printMarkdown(renderer.PricesMarkdown(prices))
		if missing := missingCoins(coins, prices); len(missing) > 0 {
			fmt.Fprintf(stdout, "No price for %s.\n", strings.Join(missing, ", "))
		}
		return subcommands.ExitSuccess
	})
}

func missingCoins(coins []string, prices cryptofolio.Prices) []string {
	var missing []string
	for _, c := range coins {
		if _, ok := prices[c]; !ok {
			missing = append(missing, c)
		}
	}
	return missing
}

type searchCmd struct{}

func (*searchCmd) Name() string     { return "search" }
func (*searchCmd) Synopsis() string { return "search a coin id" }
func (*searchCmd) Usage() string {
	return `cfo search <query>

  Searches the coins by name or symbol, to find the coin id of an entry.

`
}

func (*searchCmd) SetFlags(f *flag.FlagSet) {}

func (*searchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	query := strings.Join(f.Args(), " ")
	if query == "" {
		return usage("expected a query")
	}
	return withApp(ctx, func(a *app) subcommands.ExitStatus {
		coins, err := a.prices.Search(ctx, query)
		if err != nil {
			return fail("%v", err)
		}
		printMarkdown(renderer.SearchMarkdown(query, coins))
		return subcommands.ExitSuccess
	})
}

type marketCmd struct {
	days   string
	output string
}

func (*marketCmd) Name() string     { return "market" }
func (*marketCmd) Synopsis() string { return "show the market price history of a coin" }
func (*marketCmd) Usage() string {
	return `cfo market [-days <n>|max] [-o <file>] <coin id>

  Shows the daily market price of a coin over a period, and draws it
  when -o is given.

`
}

func (c *marketCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.days, "days", "30", "Period in days, or max")
	f.StringVar(&c.output, "o", "", "Chart file, .svg or .png")
}

func (c *marketCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return usage("expected exactly one coin id")
	}
	if err := coingecko.ValidateDays(c.days); err != nil {
		return usage("%v", err)
	}
	coin := f.Arg(0)
	return withApp(ctx, func(a *app) subcommands.ExitStatus {
		points, err := a.tracker.MarketChart(ctx, coin, c.days)
		if err != nil {
			return fail("%v", err)
		}
		printMarkdown(renderer.MarketMarkdown(coin, c.days, points))
		if c.output == "" {
			return subcommands.ExitSuccess
		}
		err = writeChart(c.output, func(w io.Writer, f chart.Format) error {
			return chart.Market(w, f, coin, points)
		})
		if errors.Is(err, chart.ErrNotEnoughData) {
			return fail("not enough market data to draw %s", coin)
		}
		if err != nil {
			return fail("%v", err)
		}
		fmt.Fprintf(stdout, "Chart written to %s.\n", c.output)
		return subcommands.ExitSuccess
	})
}
