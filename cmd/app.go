// Package cmd implements the cfo command line: one subcommand per portfolio operation.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/cryptofolio/coingecko"
	"github.com/etnz/cryptofolio/config"
	"github.com/etnz/cryptofolio/logging"
	"github.com/etnz/cryptofolio/store"
	"github.com/etnz/cryptofolio/tracker"
	"github.com/google/subcommands"
)

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", config.DefaultPath, "Path to the YAML configuration file")
var dbPath = flag.String("db", "", "Path to the SQLite database, overrides the configuration")

// stdout receives the command reports.
var stdout io.Writer = os.Stdout

// Commands lists the cfo subcommands and their group.
var Commands = []struct {
	Cmd   subcommands.Command
	Group string
}{
	{&addCmd{}, "entries"},
	{&stakeCmd{}, "entries"},
	{&editCmd{}, "entries"},
	{&deleteCmd{}, "entries"},
	{&listCmd{}, "entries"},
	{&importCmd{}, "entries"},
	{&exportCmd{}, "entries"},

	{&analyzeCmd{}, "analysis"},
	{&watchCmd{}, "analysis"},
	{&summaryCmd{}, "analysis"},
	{&historyCmd{}, "analysis"},
	{&plotCmd{}, "analysis"},
	{&chartsCmd{}, "analysis"},

	{&priceCmd{}, "market"},
	{&searchCmd{}, "market"},
	{&marketCmd{}, "market"},

	{&menuCmd{}, "interactive"},
	{&serveCmd{}, "interactive"},
	{&assistCmd{}, "interactive"},

	{&dbCmd{}, "maintenance"},
	{&configCmd{}, "maintenance"},
	{&topicCmd{}, "help"},
}

// Register the subcommands.
func Register(c *subcommands.Commander) {
	for _, cmd := range Commands {
		c.Register(cmd.Cmd, cmd.Group)
	}
}

// app is what a command needs: the configuration and the tracker on top of the store.
type app struct {
	cfg     *config.Config
	log     *slog.Logger
	store   *store.Store
	prices  *coingecko.Client
	tracker *tracker.Tracker
}

// loadConfig reads the configuration and sets up the logging.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(*configFile)
	if err != nil {
		return nil, nil, err
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	log, err := logging.Setup(os.Stderr, cfg.Logging)
	if err != nil {
		return nil, nil, err
	}
	if cfg.File == "" {
		log.Debug("no configuration file, using the defaults", "path", *configFile)
	}
	return cfg, log, nil
}

// openApp loads the configuration and opens the database.
func openApp(ctx context.Context) (*app, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, err
	}
	st, err := store.Open(ctx, cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	prices := coingecko.New(cfg.Prices, log)
	t := tracker.New(st, prices, prices, tracker.Config{
		Currency:   prices.Currency(),
		Thresholds: cfg.Alerts,
		Log:        log,
	})
	return &app{cfg: cfg, log: log, store: st, prices: prices, tracker: t}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.log.Warn("failed to close the database", "error", err)
	}
}

// withApp opens the app, runs fn and closes the app.
func withApp(ctx context.Context, fn func(a *app) subcommands.ExitStatus) subcommands.ExitStatus {
	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()
	return fn(a)
}

// printMarkdown renders md for the terminal, or prints it as is when stdout is not one.
func printMarkdown(md string) {
	fprintMarkdown(stdout, md)
}

func fprintMarkdown(w io.Writer, md string) {
	if !isTerminal(w) {
		fmt.Fprintln(w, md)
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		fmt.Fprintln(w, md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Fprintln(w, md)
		return
	}
	fmt.Fprint(w, out)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}

// fail prints an error and returns the failure status.
func fail(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	return subcommands.ExitFailure
}

// usage prints a usage error.
func usage(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	return subcommands.ExitUsageError
}
