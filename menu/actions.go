package menu

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/etnz/cryptofolio"
	"github.com/etnz/cryptofolio/chart"
	"github.com/etnz/cryptofolio/poller"
	"github.com/etnz/cryptofolio/renderer"
	"github.com/etnz/cryptofolio/tracker"
)

func (m *Menu) askType(def cryptofolio.CoinType) (cryptofolio.CoinType, error) {
	s, err := m.askDefault("Type (classic, risk, stable)", def.String())
	if err != nil {
		return def, err
	}
	return cryptofolio.CoinTypeOr(s, def), nil
}

func (m *Menu) addPurchase(ctx context.Context) error {
	var p tracker.Purchase
	var err error
	if p.Coin, err = m.ask("Coin id (e.g. bitcoin): "); err != nil {
		return err
	}
	if p.Symbol, err = m.ask("Symbol (e.g. BTC): "); err != nil {
		return err
	}
	if p.Amount, err = m.askQuantity("Amount", ""); err != nil {
		return err
	}
	if p.Price, err = m.askMoney("Buy price in "+m.t.Currency(), ""); err != nil {
		return err
	}
	if p.FeeBuy, err = m.askPercent("Buy fee %", "0"); err != nil {
		return err
	}
	if p.FeeSell, err = m.askPercent("Sell fee %", "0"); err != nil {
		return err
	}
	if p.Type, err = m.askType(cryptofolio.Classic); err != nil {
		return err
	}
	if p.Wallet, err = m.ask("Wallet (optional): "); err != nil {
		return err
	}

	e, err := m.t.AddPurchase(ctx, p)
	if err != nil {
		return err
	}
	fmt.Fprintf(m.out, "Purchase #%d added: %s %s at %s.\n", e.ID, e.Amount, e.Symbol, e.BuyPrice)
	return nil
}

func (m *Menu) addStaking(ctx context.Context) error {
	var s tracker.Staking
	var err error
	if s.Coin, err = m.ask("Coin id (e.g. solana): "); err != nil {
		return err
	}
	if s.Symbol, err = m.ask("Symbol (e.g. SOL): "); err != nil {
		return err
	}
	if s.Amount, err = m.askQuantity("Amount received", ""); err != nil {
		return err
	}
	if s.Type, err = m.askType(cryptofolio.Classic); err != nil {
		return err
	}
	if s.Wallet, err = m.ask("Wallet (optional): "); err != nil {
		return err
	}

	e, err := m.t.AddStaking(ctx, s)
	if err != nil {
		return err
	}
	fmt.Fprintf(m.out, "Staking gain #%d added: %s %s.\n", e.ID, e.Amount, e.Symbol)
	return nil
}

// listEntries prints the entries and reports whether there are any.
func (m *Menu) listEntries(ctx context.Context) (bool, error) {
	entries, err := m.t.Entries(ctx, "")
	if err != nil {
		return false, err
	}
	m.Markdown(m.out, renderer.EntriesMarkdown("Portfolio", entries))
	return len(entries) > 0, nil
}

func formatPercent(p cryptofolio.Percent) string {
	return strconv.FormatFloat(float64(p), 'f', -1, 64)
}

func (m *Menu) editEntry(ctx context.Context) error {
	ok, err := m.listEntries(ctx)
	if err != nil || !ok {
		return err
	}
	id, err := m.askID("Entry id to edit: ")
	if err != nil {
		return err
	}
	e, err := m.t.Entry(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintln(m.out, "Press Enter to keep the current value, '-' clears the wallet.")

	if e.Coin, err = m.askDefault("Coin id", e.Coin); err != nil {
		return err
	}
	if e.Symbol, err = m.askDefault("Symbol", e.Symbol); err != nil {
		return err
	}
	if e.Amount, err = m.askQuantity("Amount", e.Amount.String()); err != nil {
		return err
	}
	if e.Kind == cryptofolio.Buy {
		if e.BuyPrice, err = m.askMoney("Buy price in "+m.t.Currency(), e.BuyPrice.Decimal().String()); err != nil {
			return err
		}
		if e.FeeBuyPercent, err = m.askPercent("Buy fee %", formatPercent(e.FeeBuyPercent)); err != nil {
			return err
		}
		if e.FeeSellPercent, err = m.askPercent("Sell fee %", formatPercent(e.FeeSellPercent)); err != nil {
			return err
		}
	}
	if e.Type, err = m.askType(e.Type); err != nil {
		return err
	}
	wallet, err := m.ask(fmt.Sprintf("Wallet [%s]: ", e.Wallet))
	if err != nil {
		return err
	}
	switch wallet {
	case "":
	case "-":
		e.Wallet = ""
	default:
		e.Wallet = wallet
	}

	if err := m.t.UpdateEntry(ctx, e); err != nil {
		return err
	}
	fmt.Fprintf(m.out, "Entry #%d updated.\n", e.ID)
	m.Markdown(m.out, renderer.RenderEntry(e))
	return nil
}

func (m *Menu) deleteEntry(ctx context.Context) error {
	ok, err := m.listEntries(ctx)
	if err != nil || !ok {
		return err
	}
	id, err := m.askID("Entry id to delete: ")
	if err != nil {
		return err
	}
	e, err := m.t.Entry(ctx, id)
	if err != nil {
		return err
	}
	m.Markdown(m.out, renderer.RenderEntry(e))
	yes, err := m.askConfirm("Delete this entry?")
	if err != nil {
		return err
	}
	if !yes {
		return ErrCancelled
	}
	if err := m.t.DeleteEntry(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(m.out, "Entry #%d deleted.\n", id)
	return nil
}

func (m *Menu) printReport(r *tracker.Report) {
	m.Markdown(m.out, renderer.AnalysisMarkdown(r.Analysis, r.Alerts, r.At))
}

func (m *Menu) analyzeOnce(opts tracker.Options) func(context.Context) error {
	return func(ctx context.Context) error {
		r, err := m.t.Analyze(ctx, opts)
		if err != nil {
			return err
		}
		if len(r.Analysis.Rows) == 0 {
			fmt.Fprintln(m.out, "Nothing to analyze, add a purchase first.")
			return nil
		}
		m.printReport(r)
		return nil
	}
}

func (m *Menu) autoUpdate(opts tracker.Options) func(context.Context) error {
	return func(ctx context.Context) error {
		entries, err := m.t.Entries(ctx, opts.Wallet)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(m.out, "Nothing to analyze, add a purchase first.")
			return nil
		}

		s, err := m.askDefault("Interval in minutes", strconv.FormatFloat(m.cfg.Interval.Minutes(), 'f', -1, 64))
		if err != nil {
			return err
		}
		minutes, err := strconv.ParseFloat(s, 64)
		if err != nil || minutes <= 0 {
			return fmt.Errorf("%w: %q is not a number of minutes", errInvalid, s)
		}
		interval := time.Duration(minutes * float64(time.Minute))
		if interval < m.minInterval {
			return fmt.Errorf("%w: the interval must be at least %v", errInvalid, m.minInterval)
		}
		maxRuns, err := m.askInt("Number of updates, 0 for no limit", m.cfg.MaxUpdates)
		if err != nil {
			return err
		}

		fmt.Fprintf(m.out, "Auto-update every %v, press Ctrl+C to stop.\n", interval)
		ctx, stop := m.NotifyContext(ctx)
		defer stop()

		job := m.t.Job(opts, func(n int, r *tracker.Report) {
			fmt.Fprintf(m.out, "\nUpdate #%d at %s\n", n, r.At.Format("15:04:05"))
			m.printReport(r)
		})
		p := poller.New(interval, maxRuns, func(ctx context.Context, n int) error {
			err := job(ctx, n)
			if err != nil && ctx.Err() == nil {
				fmt.Fprintf(m.out, "Update #%d failed: %v\n", n, err)
			}
			return err
		}, nil)
		runs := p.Run(ctx)
		fmt.Fprintf(m.out, "Auto-update stopped after %d updates.\n", runs)
		return nil
	}
}

// oneWallet asks for a wallet and runs the action built for it.
func (m *Menu) oneWallet(action func(tracker.Options) func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error {
		wallet, err := m.askWallet(ctx)
		if err != nil || wallet == "" {
			return err
		}
		return action(tracker.Options{Wallet: wallet})(ctx)
	}
}

// askWallet returns the chosen wallet, empty when there is none.
func (m *Menu) askWallet(ctx context.Context) (string, error) {
	wallets, err := m.t.Wallets(ctx)
	if err != nil {
		return "", err
	}
	if len(wallets) == 0 {
		fmt.Fprintln(m.out, "No wallet yet.")
		return "", nil
	}
	return m.pick("Wallet", wallets)
}

func (m *Menu) viewPortfolio(ctx context.Context) error {
	entries, err := m.t.Entries(ctx, "")
	if err != nil {
		return err
	}
	m.Markdown(m.out, renderer.EntriesMarkdown("Portfolio", entries))
	if len(entries) > 0 {
		m.Markdown(m.out, renderer.SummaryMarkdown(cryptofolio.Summarize(entries, m.t.Currency())))
	}
	return nil
}

func (m *Menu) viewWallet(ctx context.Context) error {
	wallet, err := m.askWallet(ctx)
	if err != nil || wallet == "" {
		return err
	}
	entries, err := m.t.Entries(ctx, wallet)
	if err != nil {
		return err
	}
	m.Markdown(m.out, renderer.EntriesMarkdown("Wallet "+wallet, entries))
	return nil
}

func (m *Menu) coinEvolution(ctx context.Context) error {
	symbols, err := m.t.HistorySymbols(ctx)
	if err != nil {
		return err
	}
	if len(symbols) == 0 {
		fmt.Fprintln(m.out, "No history yet, run an analysis first.")
		return nil
	}
	symbol, err := m.pick("Symbol", symbols)
	if err != nil {
		return err
	}
	points, err := m.t.CoinHistory(ctx, symbol)
	if err != nil {
		return err
	}
	m.Markdown(m.out, renderer.HistoryMarkdown(symbol, points))

	path := filepath.Join(m.cfg.ChartDir, strings.ToLower(symbol)+"_history.png")
	if err := writeChart(path, func(f *os.File) error {
		return chart.History(f, chart.FormatOf(path), symbol, points)
	}); err != nil {
		if errors.Is(err, chart.ErrNotEnoughData) {
			fmt.Fprintln(m.out, "Not enough history to draw a chart yet.")
			return nil
		}
		return err
	}
	fmt.Fprintf(m.out, "Chart written to %s\n", path)
	return nil
}

// writeChart creates path with draw, and removes it when drawing fails.
func writeChart(path string, draw func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := draw(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

func (m *Menu) databaseInfo(ctx context.Context) error {
	info, err := m.t.DatabaseInfo(ctx)
	if err != nil {
		return err
	}
	m.Markdown(m.out, renderer.DatabaseMarkdown(info))
	return nil
}

func (m *Menu) databaseSchema(ctx context.Context) error {
	tables, err := m.t.Schema(ctx)
	if err != nil {
		return err
	}
	m.Markdown(m.out, renderer.SchemaMarkdown(tables))
	return nil
}

func (m *Menu) export(ctx context.Context) error {
	path, err := m.askDefault("Export file", m.cfg.ExportFile)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	n, err := m.t.Export(ctx, f, "")
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(m.out, "%d entries exported to %s\n", n, path)
	return nil
}

func (m *Menu) vacuum(ctx context.Context) error {
	yes, err := m.askConfirm("Vacuum the database?")
	if err != nil {
		return err
	}
	if !yes {
		return ErrCancelled
	}
	if err := m.t.Vacuum(ctx); err != nil {
		return err
	}
	fmt.Fprintln(m.out, "Database vacuumed.")
	return nil
}
