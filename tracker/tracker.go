// Package tracker is the application service of cfo: it keeps the portfolio
// in the store, values it with a price provider and records the history.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/etnz/cryptofolio"
	"github.com/etnz/cryptofolio/coingecko"
	"github.com/etnz/cryptofolio/metrics"
	"github.com/etnz/cryptofolio/poller"
	"github.com/etnz/cryptofolio/store"
	"github.com/google/uuid"
)

// ErrNoChartProvider is returned by MarketChart when no chart provider is configured.
var ErrNoChartProvider = errors.New("no market chart provider")

// Config holds the tracker settings.
type Config struct {
	Currency   string
	Thresholds cryptofolio.Thresholds
	Log        *slog.Logger
}

// Tracker combines the store with a price provider.
type Tracker struct {
	store      *store.Store
	prices     cryptofolio.PriceProvider
	charts     cryptofolio.ChartProvider
	currency   string
	thresholds cryptofolio.Thresholds
	log        *slog.Logger

	now   func() time.Time
	newID func() string

	mu   sync.Mutex
	last *Report
}

// New returns a Tracker. charts may be nil.
func New(st *store.Store, prices cryptofolio.PriceProvider, charts cryptofolio.ChartProvider, cfg Config) *Tracker {
	if cfg.Currency == "" {
		cfg.Currency = cryptofolio.DefaultCurrency
	}
	if cfg.Log == nil {
		cfg.Log = slog.New(slog.DiscardHandler)
	}
	return &Tracker{
		store:      st,
		prices:     prices,
		charts:     charts,
		currency:   cfg.Currency,
		thresholds: cfg.Thresholds,
		log:        cfg.Log,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// Currency is the reporting currency.
func (t *Tracker) Currency() string { return t.currency }

// Thresholds are the alert thresholds.
func (t *Tracker) Thresholds() cryptofolio.Thresholds {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.thresholds
}

// SetThresholds changes the alert thresholds for the next analyses.
func (t *Tracker) SetThresholds(th cryptofolio.Thresholds) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.thresholds = th
}

// Purchase describes a new purchase entry.
type Purchase struct {
	Coin, Symbol    string
	Amount          cryptofolio.Quantity
	Price           cryptofolio.Money
	FeeBuy, FeeSell cryptofolio.Percent
	Type            cryptofolio.CoinType
	Wallet          string
}

// Staking describes a new staking gain.
type Staking struct {
	Coin, Symbol string
	Amount       cryptofolio.Quantity
	Type         cryptofolio.CoinType
	Wallet       string
}

// AddPurchase records a purchase.
func (t *Tracker) AddPurchase(ctx context.Context, p Purchase) (cryptofolio.Entry, error) {
	e, err := cryptofolio.NewPurchase(p.Coin, p.Symbol, p.Amount, p.Price, p.FeeBuy, p.FeeSell, p.Type, p.Wallet)
	if err != nil {
		return e, err
	}
	return t.add(ctx, e)
}

// AddStaking records a staking gain.
func (t *Tracker) AddStaking(ctx context.Context, s Staking) (cryptofolio.Entry, error) {
	e, err := cryptofolio.NewStakingGain(s.Coin, s.Symbol, s.Amount, s.Type, s.Wallet, t.currency)
	if err != nil {
		return e, err
	}
	return t.add(ctx, e)
}

func (t *Tracker) add(ctx context.Context, e cryptofolio.Entry) (cryptofolio.Entry, error) {
	if err := e.CheckCurrency(t.currency); err != nil {
		return e, err
	}
	e.CreatedAt = t.now()
	e, err := t.store.AddEntry(ctx, e)
	if err != nil {
		return e, err
	}
	t.log.Info("entry added", "id", e.ID, "kind", e.Kind, "symbol", e.Symbol, "amount", e.Amount, "wallet", e.Wallet)
	return e, nil
}

// Entry returns the entry id.
func (t *Tracker) Entry(ctx context.Context, id int64) (cryptofolio.Entry, error) {
	return t.store.Entry(ctx, id)
}

// UpdateEntry replaces the entry e.ID. Its kind cannot change.
func (t *Tracker) UpdateEntry(ctx context.Context, e cryptofolio.Entry) error {
	e.Normalize()
	if err := e.CheckCurrency(t.currency); err != nil {
		return err
	}
	if err := t.store.UpdateEntry(ctx, e); err != nil {
		return err
	}
	t.log.Info("entry updated", "id", e.ID)
	return nil
}

// DeleteEntry removes the entry id.
func (t *Tracker) DeleteEntry(ctx context.Context, id int64) error {
	if err := t.store.DeleteEntry(ctx, id); err != nil {
		return err
	}
	t.log.Info("entry deleted", "id", id)
	return nil
}

// Entries returns the entries of a wallet, or all of them when wallet is empty.
func (t *Tracker) Entries(ctx context.Context, wallet string) (cryptofolio.Entries, error) {
	return t.store.Entries(ctx, wallet)
}

// Wallets returns the distinct wallet names.
func (t *Tracker) Wallets(ctx context.Context) ([]string, error) {
	return t.store.Wallets(ctx)
}

// Options select what Analyze covers.
type Options struct {
	ByWallet bool   // one row per coin and wallet
	Wallet   string // restrict to one wallet
	NoSave   bool   // do not record the history snapshot
}

// Report is the outcome of an analysis run.
type Report struct {
	Analysis   *cryptofolio.Analysis
	Alerts     []cryptofolio.Alert
	At         time.Time
	SnapshotID string // empty when nothing was recorded
	Options    Options
}

// Analyze loads the entries, fetches their prices, computes the analysis,
// records a history snapshot and evaluates the alerts.
func (t *Tracker) Analyze(ctx context.Context, opts Options) (*Report, error) {
	report, err := t.analyze(ctx, opts)
	if err != nil {
		metrics.AnalysisRuns.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.AnalysisRuns.WithLabelValues("success").Inc()

	t.mu.Lock()
	t.last = report
	t.mu.Unlock()
	return report, nil
}

func (t *Tracker) analyze(ctx context.Context, opts Options) (*Report, error) {
	entries, err := t.store.Entries(ctx, opts.Wallet)
	if err != nil {
		return nil, err
	}
	report := &Report{At: t.now(), Options: opts}

	if len(entries) == 0 {
		report.Analysis = cryptofolio.Analyze(nil, nil, t.currency, opts.ByWallet)
		return report, nil
	}

	prices, err := t.prices.Prices(ctx, entries.Coins())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch prices: %w", err)
	}
	a := cryptofolio.Analyze(entries, prices, t.currency, opts.ByWallet)
	report.Analysis = a
	if missing := a.MissingPrices(); len(missing) > 0 {
		t.log.Warn("no price for some coins", "coins", missing)
	}
	if len(a.OtherCurrency) > 0 {
		t.log.Warn("entries in another currency left out", "ids", a.OtherCurrency, "currency", t.currency)
	}

	if !opts.NoSave {
		id := t.newID()
		points := a.Snapshot(id, report.At)
		if len(points) > 0 {
			if err := t.store.SaveSnapshot(ctx, points); err != nil {
				return nil, err
			}
			report.SnapshotID = id
		}
	}

	t.mu.Lock()
	th := t.thresholds
	t.mu.Unlock()
	report.Alerts = a.Alerts(th)
	for _, al := range report.Alerts {
		metrics.AlertsRaised.WithLabelValues(al.Kind.String(), al.Symbol).Inc()
	}

	if opts.Wallet == "" {
		metrics.PortfolioValue.WithLabelValues(t.currency).Set(a.Total.Net.AsFloat())
		metrics.PortfolioInvested.WithLabelValues(t.currency).Set(a.Total.Invested.AsFloat())
	}
	t.log.Info("portfolio analyzed",
		"rows", len(a.Rows),
		"invested", a.Total.Invested,
		"net", a.Total.Net,
		"change", a.Total.Return,
		"alerts", len(report.Alerts),
		"snapshot", report.SnapshotID)
	return report, nil
}

// LastReport returns the latest successful analysis, nil if none ran yet.
func (t *Tracker) LastReport() *Report {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}

// Job returns a poller job that analyzes the portfolio at every run and
// hands the report to onReport. The entries are reloaded at every run.
func (t *Tracker) Job(opts Options, onReport func(n int, r *Report)) poller.Job {
	return func(ctx context.Context, n int) error {
		r, err := t.Analyze(ctx, opts)
		if err != nil {
			return err
		}
		if onReport != nil {
			onReport(n, r)
		}
		return nil
	}
}

// Prices returns the current price of coins.
func (t *Tracker) Prices(ctx context.Context, coins []string) (cryptofolio.Prices, error) {
	return t.prices.Prices(ctx, coins)
}

// HistorySymbols returns the symbols with a recorded history.
func (t *Tracker) HistorySymbols(ctx context.Context) ([]string, error) {
	return t.store.HistorySymbols(ctx)
}

// CoinHistory returns the recorded history of a symbol, oldest first.
func (t *Tracker) CoinHistory(ctx context.Context, symbol string) ([]cryptofolio.HistoryPoint, error) {
	return t.store.History(ctx, symbol)
}

// MarketChart returns the market price of a coin over the last days.
func (t *Tracker) MarketChart(ctx context.Context, coin, days string) ([]cryptofolio.PricePoint, error) {
	if t.charts == nil {
		return nil, ErrNoChartProvider
	}
	if err := coingecko.ValidateDays(days); err != nil {
		return nil, err
	}
	return t.charts.MarketChart(ctx, coin, days)
}

// Summary describes the entries of a wallet, or all of them when wallet is empty.
func (t *Tracker) Summary(ctx context.Context, wallet string) (*cryptofolio.Summary, error) {
	entries, err := t.store.Entries(ctx, wallet)
	if err != nil {
		return nil, err
	}
	return cryptofolio.Summarize(entries, t.currency), nil
}

// Export writes the entries of a wallet as JSON lines and returns how many were written.
func (t *Tracker) Export(ctx context.Context, w io.Writer, wallet string) (int, error) {
	entries, err := t.store.Entries(ctx, wallet)
	if err != nil {
		return 0, err
	}
	if err := cryptofolio.EncodeEntries(w, entries); err != nil {
		return 0, err
	}
	return len(entries), nil
}

// Import reads JSON lines entries and adds them all, or none on error.
func (t *Tracker) Import(ctx context.Context, r io.Reader) (int, error) {
	entries, err := cryptofolio.DecodeEntries(r)
	if err != nil {
		return 0, err
	}
	for i, e := range entries {
		if err := e.CheckCurrency(t.currency); err != nil {
			return 0, fmt.Errorf("entry %d: %w", i+1, err)
		}
	}
	n, err := t.store.ImportEntries(ctx, entries)
	if err != nil {
		return 0, err
	}
	t.log.Info("entries imported", "count", n)
	return n, nil
}

// DatabaseInfo returns the database statistics.
func (t *Tracker) DatabaseInfo(ctx context.Context) (store.Info, error) { return t.store.Info(ctx) }

// Schema returns the database tables.
func (t *Tracker) Schema(ctx context.Context) ([]store.Table, error) { return t.store.Schema(ctx) }

// Vacuum compacts the database.
func (t *Tracker) Vacuum(ctx context.Context) error {
	if err := t.store.Vacuum(ctx); err != nil {
		return err
	}
	t.log.Info("database vacuumed", "path", t.store.Path())
	return nil
}

// Ping checks that the database is reachable.
func (t *Tracker) Ping(ctx context.Context) error { return t.store.Ping(ctx) }
