package renderer

import (
	"strings"
	"testing"
	"time"

	"github.com/etnz/cryptofolio"
	"github.com/etnz/cryptofolio/coingecko"
	"github.com/etnz/cryptofolio/store"
)

func entry(t *testing.T, id int64, coin, sym string, amount, price float64, typ cryptofolio.CoinType, wallet string) cryptofolio.Entry {
	t.Helper()
	e, err := cryptofolio.NewPurchase(coin, sym, cryptofolio.Q(amount), cryptofolio.M(price, "CAD"), 1, 0.5, typ, wallet)
	if err != nil {
		t.Fatalf("NewPurchase() error = %v", err)
	}
	e.ID = id
	return e
}

func stake(t *testing.T, id int64, coin, sym string, amount float64, wallet string) cryptofolio.Entry {
	t.Helper()
	e, err := cryptofolio.NewStakingGain(coin, sym, cryptofolio.Q(amount), cryptofolio.Risk, wallet, "CAD")
	if err != nil {
		t.Fatalf("NewStakingGain() error = %v", err)
	}
	e.ID = id
	return e
}

func sample(t *testing.T) cryptofolio.Entries {
	t.Helper()
	return cryptofolio.Entries{
		entry(t, 1, "bitcoin", "BTC", 0.5, 40000, cryptofolio.Classic, "kraken"),
		entry(t, 2, "solana", "SOL", 10, 100, cryptofolio.Risk, "ledger"),
		stake(t, 3, "solana", "SOL", 0.5, "ledger"),
	}
}

func assertContains(t *testing.T, got string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(got, want) {
			t.Errorf("output does not contain %q:\n%s", want, got)
		}
	}
}

func TestEntriesMarkdown(t *testing.T) {
	got := EntriesMarkdown("Portfolio", sample(t))
	assertContains(t, got,
		"# Portfolio",
		"🔵 BTC",
		"🔴 SOL",
		"kraken",
		"staking",
		"3 entries.",
	)

	empty := EntriesMarkdown("Portfolio", nil)
	assertContains(t, empty, "The portfolio is empty.")
}

func TestAnalysisMarkdown(t *testing.T) {
	prices := cryptofolio.Prices{
		"bitcoin": cryptofolio.M(50000, "CAD"),
		"solana":  cryptofolio.M(200, "CAD"),
	}
	a := cryptofolio.Analyze(sample(t), prices, "CAD", false)
	alerts := a.Alerts(cryptofolio.DefaultThresholds)
	got := AnalysisMarkdown(a, alerts, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	assertContains(t, got, "BTC", "SOL", "Total", "Alerts", "🚀")

	byWallet := cryptofolio.Analyze(sample(t), prices, "CAD", true)
	assertContains(t, AnalysisMarkdown(byWallet, nil, time.Now()), "Wallet", "kraken", "ledger")
}

func TestAnalysisMarkdownMissingPrice(t *testing.T) {
	a := cryptofolio.Analyze(sample(t), cryptofolio.Prices{"bitcoin": cryptofolio.M(50000, "CAD")}, "CAD", false)
	got := AnalysisMarkdown(a, nil, time.Now())
	assertContains(t, got, "n/a", "solana")
	if strings.Contains(got, "## Alerts") {
		t.Errorf("unexpected alerts section:\n%s", got)
	}
}

func TestSummaryMarkdown(t *testing.T) {
	got := SummaryMarkdown(cryptofolio.Summarize(sample(t), "CAD"))
	assertContains(t, got, "Portfolio Summary", "By Symbol", "By Wallet", "By Type", "kraken", "Cumulative investment")

	empty := SummaryMarkdown(cryptofolio.Summarize(nil, "CAD"))
	if strings.Contains(empty, "By Symbol") {
		t.Errorf("empty summary should only hold the totals:\n%s", empty)
	}
}

func TestHistoryMarkdown(t *testing.T) {
	points := []cryptofolio.HistoryPoint{
		{Timestamp: time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC), Symbol: "BTC", Price: cryptofolio.M(50000, "CAD"), Net: cryptofolio.M(24875, "CAD"), Change: 23.5},
		{Timestamp: time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC), Symbol: "BTC", Wallet: "kraken", Price: cryptofolio.M(30000, "CAD"), Net: cryptofolio.M(14925, "CAD"), Change: -25.9},
	}
	got := HistoryMarkdown("BTC", points)
	assertContains(t, got, "History for BTC", "🟢 +23.50%", "🔻 -25.90%", "kraken")

	assertContains(t, HistoryMarkdown("ETH", nil), "No history yet")
}

func TestMarketMarkdown(t *testing.T) {
	day := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	points := []cryptofolio.PricePoint{
		{Time: day, Price: cryptofolio.M(100, "CAD")},
		{Time: day.Add(time.Hour), Price: cryptofolio.M(105, "CAD")},
		{Time: day.Add(24 * time.Hour), Price: cryptofolio.M(110, "CAD")},
	}
	got := MarketMarkdown("solana", "7", points)
	assertContains(t, got, "2025-01-01", "2025-01-02", "+10.00%")
	if n := strings.Count(got, "2025-01-01"); n != 1 {
		t.Errorf("day 2025-01-01 listed %d times, want 1", n)
	}
}

func TestDatabaseMarkdown(t *testing.T) {
	got := DatabaseMarkdown(store.Info{Path: "crypto_portfolio.db", Size: 2048, Entries: 3, History: 4, Snapshots: 2})
	assertContains(t, got, "`crypto_portfolio.db`", "2.0 KiB")

	tables := []store.Table{{Name: "portfolio", Columns: []store.Column{{CID: 0, Name: "id", Type: "INTEGER", PK: 1}}}}
	assertContains(t, SchemaMarkdown(tables), "## portfolio", "primary")
}

func TestHumanSize(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{5 * 1024 * 1024, "5.0 MiB"},
	}
	for _, tc := range tests {
		if got := humanSize(tc.n); got != tc.want {
			t.Errorf("humanSize(%d) = %q, want %q", tc.n, got, tc.want)
		}
	}
}

func TestSearchMarkdown(t *testing.T) {
	got := SearchMarkdown("sol", []coingecko.Coin{{ID: "solana", Name: "Solana", Symbol: "sol", MarketCapRank: 5}})
	assertContains(t, got, "`solana`", "SOL", "5")
	assertContains(t, SearchMarkdown("zzz", nil), "No coin found.")
}

func TestRenderEntry(t *testing.T) {
	es := sample(t)
	got := RenderEntry(es[0])
	assertContains(t, got, "## 🔵 BTC #1", "`bitcoin`", "Buy price", "kraken")

	got = RenderEntry(es[2])
	assertContains(t, got, "Staking gain")
	if strings.Contains(got, "Buy price") {
		t.Errorf("staking card shows a buy price:\n%s", got)
	}
}

func TestOtherCurrencyNote(t *testing.T) {
	s := cryptofolio.Summarize(sample(t), "USD")
	assertContains(t, SummaryMarkdown(s), "Entries #1, #2, #3 are not in USD: left out.")

	a := cryptofolio.Analyze(sample(t), nil, "USD", false)
	assertContains(t, AnalysisMarkdown(a, nil, time.Now()), "are not in USD", "The portfolio is empty.")

	if strings.Contains(SummaryMarkdown(cryptofolio.Summarize(sample(t), "CAD")), "left out") {
		t.Error("unexpected note for a portfolio in a single currency")
	}
}
