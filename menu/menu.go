// Package menu is the interactive numbered menu of cfo.
package menu

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/etnz/cryptofolio/config"
	"github.com/etnz/cryptofolio/tracker"
)

// errQuit leaves the menu from a submenu, errBack leaves the submenu.
var (
	errQuit = errors.New("quit")
	errBack = errors.New("back")
)

// Config holds the menu settings.
type Config struct {
	Interval   time.Duration // default auto-update interval
	MaxUpdates int           // default number of auto-updates, 0 is unlimited
	ChartDir   string        // where coin evolution charts are written
	ExportFile string        // default export file
}

// Menu drives the tracker from numbered menus.
type Menu struct {
	t   *tracker.Tracker
	in  LineReader
	out io.Writer
	cfg Config

	minInterval time.Duration // shortest auto-update interval

	// Markdown prints a markdown report. It defaults to the raw text.
	Markdown func(w io.Writer, md string)
	// NotifyContext returns a context cancelled on Ctrl+C, used to stop the auto-update.
	NotifyContext func(ctx context.Context) (context.Context, context.CancelFunc)
}

// New returns a Menu reading from in and writing to out.
func New(t *tracker.Tracker, in LineReader, out io.Writer, cfg Config) *Menu {
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Minute
	}
	if cfg.ChartDir == "" {
		cfg.ChartDir = "."
	}
	if cfg.ExportFile == "" {
		cfg.ExportFile = "portfolio_export.jsonl"
	}
	return &Menu{
		t:   t,
		in:  in,
		out: out,
		cfg: cfg,
		Markdown: func(w io.Writer, md string) {
			fmt.Fprintln(w, md)
		},
		NotifyContext: func(ctx context.Context) (context.Context, context.CancelFunc) {
			return signal.NotifyContext(ctx, os.Interrupt)
		},
		minInterval: config.MinInterval,
	}
}

type item struct {
	label  string
	action func(ctx context.Context) error
}

func (m *Menu) mainItems() []item {
	return []item{
		{"Add a purchase", m.addPurchase},
		{"Add a staking gain", m.addStaking},
		{"Edit an entry", m.editEntry},
		{"Delete an entry", m.deleteEntry},
		{"Analyze the portfolio once", m.analyzeOnce(tracker.Options{})},
		{"Auto-update every X minutes", m.autoUpdate(tracker.Options{})},
		{"View the portfolio", m.viewPortfolio},
		{"View one wallet", m.viewWallet},
		{"Coin evolution chart", m.coinEvolution},
		{"Wallet analysis ➜", m.walletMenu},
		{"Settings ➜", m.settingsMenu},
		{"Quit", func(context.Context) error { return errQuit }},
	}
}

// Run shows the main menu until the user quits or the input ends.
func (m *Menu) Run(ctx context.Context) error {
	fmt.Fprintln(m.out, "Type q, quit, cancel or exit at any prompt to cancel, or press Ctrl+C.")
	items := m.mainItems()
	for {
		err := m.choose(ctx, "Crypto Portfolio", items)
		switch {
		case err == nil:
		case errors.Is(err, errQuit), errors.Is(err, ErrCancelled), isEOF(err):
			fmt.Fprintln(m.out, "Goodbye!")
			return nil
		default:
			return err
		}
	}
}

// choose shows items, runs the chosen one and reports its outcome.
// It returns the errors that must leave the current menu.
func (m *Menu) choose(ctx context.Context, title string, items []item) error {
	fmt.Fprintf(m.out, "\n=== %s ===\n", title)
	for i, it := range items {
		fmt.Fprintf(m.out, "%d. %s\n", i+1, it.label)
	}
	s, err := m.ask("Your choice: ")
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > len(items) {
		fmt.Fprintln(m.out, "Invalid choice.")
		return nil
	}

	err = items[n-1].action(ctx)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, errQuit), errors.Is(err, errBack), isEOF(err):
		return err
	case errors.Is(err, ErrCancelled):
		fmt.Fprintln(m.out, "Cancelled.")
	case errors.Is(err, errInvalid):
		fmt.Fprintf(m.out, "%v, cancelled.\n", err)
	default:
		fmt.Fprintf(m.out, "Error: %v\n", err)
	}
	return nil
}

// submenu loops on items until back is chosen. extra items come after Back.
func (m *Menu) submenu(ctx context.Context, title string, items []item, extra ...item) error {
	items = append(items, item{"Back", func(context.Context) error { return errBack }})
	items = append(items, extra...)
	for {
		err := m.choose(ctx, title, items)
		switch {
		case errors.Is(err, errBack), errors.Is(err, ErrCancelled):
			return nil
		case err != nil:
			return err
		}
	}
}

func (m *Menu) walletMenu(ctx context.Context) error {
	return m.submenu(ctx, "Wallet Analysis", []item{
		{"Analyze all wallets once", m.analyzeOnce(tracker.Options{ByWallet: true})},
		{"Auto-update all wallets", m.autoUpdate(tracker.Options{ByWallet: true})},
		{"Analyze one wallet once", m.oneWallet(m.analyzeOnce)},
		{"Auto-update one wallet", m.oneWallet(m.autoUpdate)},
	}, item{"Quit", func(context.Context) error { return errQuit }})
}

func (m *Menu) settingsMenu(ctx context.Context) error {
	return m.submenu(ctx, "Settings", []item{
		{"Database information", m.databaseInfo},
		{"Database schema", m.databaseSchema},
		{"Export the portfolio", m.export},
		{"Vacuum the database", m.vacuum},
	})
}
