package cmd

import (
	"context"
	"flag"
	"fmt"
	"strconv"

	"github.com/etnz/cryptofolio"
	"github.com/etnz/cryptofolio/renderer"
	"github.com/etnz/cryptofolio/tracker"
	"github.com/google/subcommands"
)

// entryFlags are the fields of an entry given on the command line.
type entryFlags struct {
	coin, symbol, amount, price string
	feeBuy, feeSell             string
	typ, wallet                 string
}

func (e *entryFlags) set(f *flag.FlagSet, purchase bool) {
	f.StringVar(&e.coin, "coin", "", "Coin id of the price API, e.g. bitcoin")
	f.StringVar(&e.symbol, "symbol", "", "Coin symbol, e.g. BTC")
	f.StringVar(&e.amount, "amount", "", "Amount of coins")
	f.StringVar(&e.typ, "type", "", "Coin type: classic, risk or stable")
	f.StringVar(&e.wallet, "wallet", "", "Wallet holding the coins")
	if purchase {
		f.StringVar(&e.price, "price", "", "Unit buy price in the reporting currency")
		f.StringVar(&e.feeBuy, "fee-buy", "", "Buy fee in percent")
		f.StringVar(&e.feeSell, "fee-sell", "", "Expected sell fee in percent")
	}
}

// apply overwrites the fields of e that are set in the flags.
func (e *entryFlags) apply(en *cryptofolio.Entry) error {
	if e.coin != "" {
		en.Coin = e.coin
	}
	if e.symbol != "" {
		en.Symbol = e.symbol
	}
	if e.wallet != "" {
		en.Wallet = e.wallet
	}
	if e.wallet == "-" {
		en.Wallet = ""
	}
	var err error
	if e.amount != "" {
		if en.Amount, err = cryptofolio.ParseQuantity(e.amount); err != nil {
			return fmt.Errorf("invalid amount %q: %w", e.amount, err)
		}
	}
	if e.typ != "" {
		if en.Type, err = cryptofolio.ParseCoinType(e.typ); err != nil {
			return err
		}
	}
	if e.price != "" {
		if en.BuyPrice, err = cryptofolio.ParseMoney(e.price, en.BuyPrice.Currency()); err != nil {
			return fmt.Errorf("invalid price %q: %w", e.price, err)
		}
	}
	if e.feeBuy != "" {
		if en.FeeBuyPercent, err = cryptofolio.ParsePercent(e.feeBuy); err != nil {
			return fmt.Errorf("invalid buy fee %q: %w", e.feeBuy, err)
		}
	}
	if e.feeSell != "" {
		if en.FeeSellPercent, err = cryptofolio.ParsePercent(e.feeSell); err != nil {
			return fmt.Errorf("invalid sell fee %q: %w", e.feeSell, err)
		}
	}
	return nil
}

type addCmd struct {
	entryFlags
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "add a purchase" }
func (*addCmd) Usage() string {
	return `cfo add -coin <id> -symbol <symbol> -amount <amount> -price <price> [-fee-buy <pct>] [-fee-sell <pct>] [-type classic|risk|stable] [-wallet <wallet>]

  Adds a purchase to the portfolio. The price is a unit price in the reporting currency.

Usage Examples:
$ cfo add -coin bitcoin -symbol BTC -amount 0.5 -price 40000 -fee-buy 0.5 -fee-sell 0.5 -wallet kraken
$ cfo add -coin solana -symbol SOL -amount 10 -price 100 -type risk -wallet ledger

`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) { c.entryFlags.set(f, true) }

func (c *addCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(ctx, func(a *app) subcommands.ExitStatus {
		e := cryptofolio.Entry{Type: cryptofolio.Classic, BuyPrice: cryptofolio.M(0, a.tracker.Currency())}
		if err := c.apply(&e); err != nil {
			return usage("%v", err)
		}
		e, err := a.tracker.AddPurchase(ctx, tracker.Purchase{
			Coin: e.Coin, Symbol: e.Symbol, Amount: e.Amount, Price: e.BuyPrice,
			FeeBuy: e.FeeBuyPercent, FeeSell: e.FeeSellPercent, Type: e.Type, Wallet: e.Wallet,
		})
		if err != nil {
			return fail("%v", err)
		}
		fmt.Fprintf(stdout, "Purchase #%d added: %s %s at %s.\n", e.ID, e.Amount, e.Symbol, e.BuyPrice)
		return subcommands.ExitSuccess
	})
}

type stakeCmd struct {
	entryFlags
}

func (*stakeCmd) Name() string     { return "stake" }
func (*stakeCmd) Synopsis() string { return "add a staking gain" }
func (*stakeCmd) Usage() string {
	return `cfo stake -coin <id> -symbol <symbol> -amount <amount> [-type classic|risk|stable] [-wallet <wallet>]

  Adds a staking gain: coins received for free, with no cost and no fees.

`
}

func (c *stakeCmd) SetFlags(f *flag.FlagSet) { c.entryFlags.set(f, false) }

func (c *stakeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(ctx, func(a *app) subcommands.ExitStatus {
		e := cryptofolio.Entry{Type: cryptofolio.Classic}
		if err := c.apply(&e); err != nil {
			return usage("%v", err)
		}
		e, err := a.tracker.AddStaking(ctx, tracker.Staking{
			Coin: e.Coin, Symbol: e.Symbol, Amount: e.Amount, Type: e.Type, Wallet: e.Wallet,
		})
		if err != nil {
			return fail("%v", err)
		}
		fmt.Fprintf(stdout, "Staking gain #%d added: %s %s.\n", e.ID, e.Amount, e.Symbol)
		return subcommands.ExitSuccess
	})
}

// entryArg parses the single entry id argument.
func entryArg(f *flag.FlagSet) (int64, error) {
	if f.NArg() != 1 {
		return 0, fmt.Errorf("expected exactly one entry id")
	}
	id, err := strconv.ParseInt(f.Arg(0), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid entry id %q", f.Arg(0))
	}
	return id, nil
}

type editCmd struct {
	entryFlags
}

func (*editCmd) Name() string     { return "edit" }
func (*editCmd) Synopsis() string { return "edit an entry" }
func (*editCmd) Usage() string {
	return `cfo edit [-coin <id>] [-symbol <symbol>] [-amount <amount>] [-price <price>] [-fee-buy <pct>] [-fee-sell <pct>] [-type <type>] [-wallet <wallet>] <id>

  Changes the given fields of an entry, the others keep their value.
  -wallet - removes the wallet. Price and fees only apply to purchases.

`
}

func (c *editCmd) SetFlags(f *flag.FlagSet) { c.entryFlags.set(f, true) }

func (c *editCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	id, err := entryArg(f)
	if err != nil {
		return usage("%v", err)
	}
	return withApp(ctx, func(a *app) subcommands.ExitStatus {
		e, err := a.tracker.Entry(ctx, id)
		if err != nil {
			return fail("entry #%d: %v", id, err)
		}
		if e.Kind == cryptofolio.Staking && (c.price != "" || c.feeBuy != "" || c.feeSell != "") {
			return usage("entry #%d is a staking gain: it has no price and no fees", id)
		}
		if err := c.apply(&e); err != nil {
			return usage("%v", err)
		}
		if err := a.tracker.UpdateEntry(ctx, e); err != nil {
			return fail("%v", err)
		}
		fmt.Fprintf(stdout, "Entry #%d updated.\n", id)
		printMarkdown(renderer.RenderEntry(e))
		return subcommands.ExitSuccess
	})
}

type deleteCmd struct{}

func (*deleteCmd) Name() string     { return "delete" }
func (*deleteCmd) Synopsis() string { return "delete an entry" }
func (*deleteCmd) Usage() string {
	return `cfo delete <id>

  Deletes an entry. Use 'cfo list' to find its id.

`
}

func (*deleteCmd) SetFlags(f *flag.FlagSet) {}

func (*deleteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	id, err := entryArg(f)
	if err != nil {
		return usage("%v", err)
	}
	return withApp(ctx, func(a *app) subcommands.ExitStatus {
		if err := a.tracker.DeleteEntry(ctx, id); err != nil {
			return fail("entry #%d: %v", id, err)
		}
		fmt.Fprintf(stdout, "Entry #%d deleted.\n", id)
		return subcommands.ExitSuccess
	})
}

type listCmd struct {
	wallet string
}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "list the portfolio entries" }
func (*listCmd) Usage() string {
	return `cfo list [-w <wallet>]

  Lists the purchases and staking gains, all wallets by default.

`
}

func (c *listCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.wallet, "w", "", "Only list the entries of this wallet")
}

func (c *listCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(ctx, func(a *app) subcommands.ExitStatus {
		entries, err := a.tracker.Entries(ctx, c.wallet)
		if err != nil {
			return fail("%v", err)
		}
		title := "Portfolio"
		if c.wallet != "" {
			title = "Wallet " + c.wallet
		}
		printMarkdown(renderer.EntriesMarkdown(title, entries))
		return subcommands.ExitSuccess
	})
}
