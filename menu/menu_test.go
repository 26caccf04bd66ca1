package menu

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/etnz/cryptofolio"
	"github.com/etnz/cryptofolio/store"
	"github.com/etnz/cryptofolio/tracker"
)

// script is a LineReader replaying lines, then io.EOF.
type script struct {
	lines   []string
	prompts []string
}

func (s *script) ReadLine(prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func (s *script) Close() error { return nil }

type fixture struct {
	t   *tracker.Tracker
	out *bytes.Buffer
	dir string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	st, err := store.Open(context.Background(), filepath.Join(dir, "portfolio.db"))
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	t.Cleanup(func() { st.Close() })
	prices := cryptofolio.StaticPrices{
		"bitcoin": cryptofolio.M(50000, "CAD"),
		"solana":  cryptofolio.M(150, "CAD"),
	}
	tr := tracker.New(st, prices, nil, tracker.Config{Currency: "CAD", Thresholds: cryptofolio.DefaultThresholds})
	return &fixture{t: tr, out: &bytes.Buffer{}, dir: dir}
}

// run plays lines through a new menu and returns the output.
func (f *fixture) run(t *testing.T, lines ...string) string {
	t.Helper()
	f.out.Reset()
	m := New(f.t, &script{lines: lines}, f.out, Config{ChartDir: f.dir, ExportFile: filepath.Join(f.dir, "export.jsonl")})
	m.NotifyContext = func(ctx context.Context) (context.Context, context.CancelFunc) {
		return context.WithCancel(ctx)
	}
	m.minInterval = time.Millisecond
	if err := m.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return f.out.String()
}

func (f *fixture) entries(t *testing.T) cryptofolio.Entries {
	t.Helper()
	es, err := f.t.Entries(context.Background(), "")
	if err != nil {
		t.Fatalf("Entries() error = %v", err)
	}
	return es
}

func (f *fixture) seed(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	if _, err := f.t.AddPurchase(ctx, tracker.Purchase{Coin: "bitcoin", Symbol: "BTC", Amount: cryptofolio.Q(0.5), Price: cryptofolio.M(40000, "CAD"), Type: cryptofolio.Classic, Wallet: "kraken"}); err != nil {
		t.Fatal(err)
	}
	if _, err := f.t.AddPurchase(ctx, tracker.Purchase{Coin: "solana", Symbol: "SOL", Amount: cryptofolio.Q(10), Price: cryptofolio.M(100, "CAD"), Type: cryptofolio.Risk, Wallet: "ledger"}); err != nil {
		t.Fatal(err)
	}
}

func assertContains(t *testing.T, out string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(out, want) {
			t.Errorf("output does not contain %q:\n%s", want, out)
		}
	}
}

func TestAddPurchase(t *testing.T) {
	f := newFixture(t)
	out := f.run(t, "1", "bitcoin", "btc", "0.5", "40000", "0.5", "", "risk", "kraken", "12")
	assertContains(t, out, "Purchase #1 added: 0.5 BTC", "Goodbye!")

	es := f.entries(t)
	if len(es) != 1 {
		t.Fatalf("got %d entries, want 1", len(es))
	}
	e := es[0]
	if e.Type != cryptofolio.Risk || e.Wallet != "kraken" || e.FeeBuyPercent != 0.5 || e.FeeSellPercent != 0 {
		t.Errorf("entry = %+v", e)
	}
}

func TestAddStaking(t *testing.T) {
	f := newFixture(t)
	out := f.run(t, "2", "solana", "SOL", "1.25", "", "", "12")
	assertContains(t, out, "Staking gain #1 added: 1.25 SOL")
	if es := f.entries(t); len(es) != 1 || es[0].Kind != cryptofolio.Staking || es[0].Type != cryptofolio.Classic {
		t.Errorf("entries = %+v", es)
	}
}

func TestCancel(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  string
	}{
		{"quit word", []string{"1", "bitcoin", "quit", "12"}, "Cancelled."},
		{"french", []string{"2", "annuler", "12"}, "Cancelled."},
		{"invalid amount", []string{"1", "bitcoin", "BTC", "lots", "12"}, "invalid input"},
		{"invalid choice", []string{"42", "12"}, "Invalid choice."},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			out := f.run(t, tc.lines...)
			assertContains(t, out, tc.want, "Goodbye!")
			if es := f.entries(t); len(es) != 0 {
				t.Errorf("entries = %v, want none", es)
			}
		})
	}
}

func TestQuitOnEOFAndCancelWord(t *testing.T) {
	f := newFixture(t)
	assertContains(t, f.run(t), "Goodbye!")
	assertContains(t, f.run(t, "exit"), "Goodbye!")
}

func TestEditKeepsValues(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	// coin, symbol, amount, price, fee buy, fee sell, type, wallet
	out := f.run(t, "3", "1", "", "", "0.75", "", "", "", "", "", "12")
	assertContains(t, out, "Entry #1 updated.")

	e := f.entries(t)[0]
	if !e.Amount.Equal(cryptofolio.Q(0.75)) {
		t.Errorf("amount = %v, want 0.75", e.Amount)
	}
	if e.Coin != "bitcoin" || e.Wallet != "kraken" || !e.BuyPrice.Equal(cryptofolio.M(40000, "CAD")) {
		t.Errorf("entry = %+v, want untouched fields", e)
	}

	f.run(t, "3", "1", "", "", "", "", "", "", "", "-", "12")
	if e := f.entries(t)[0]; e.Wallet != "" {
		t.Errorf("wallet = %q, want it cleared", e.Wallet)
	}
}

func TestEditUnknownID(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	out := f.run(t, "3", "99", "12")
	assertContains(t, out, "Error:")
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	out := f.run(t, "4", "1", "n", "12")
	assertContains(t, out, "Cancelled.")
	if len(f.entries(t)) != 2 {
		t.Fatalf("entry deleted without confirmation")
	}

	out = f.run(t, "4", "1", "y", "12")
	assertContains(t, out, "Entry #1 deleted.")
	if es := f.entries(t); len(es) != 1 || es[0].Symbol != "SOL" {
		t.Errorf("entries = %v", es)
	}
}

func TestAnalyzeOnce(t *testing.T) {
	f := newFixture(t)
	assertContains(t, f.run(t, "5", "12"), "Nothing to analyze")

	f.seed(t)
	out := f.run(t, "5", "12")
	assertContains(t, out, "Portfolio Analysis", "BTC", "SOL", "Alerts")
}

func TestAutoUpdate(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	// 0.0001 minute is 6ms
	out := f.run(t, "6", "0.0001", "2", "12")
	assertContains(t, out, "Update #1", "Update #2", "stopped after 2 updates")

	points, err := f.t.CoinHistory(context.Background(), "BTC")
	if err != nil || len(points) != 2 {
		t.Errorf("history = %d points, %v, want 2", len(points), err)
	}
}

func TestAutoUpdateMinInterval(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	m := New(f.t, &script{lines: []string{"6", "0.5", "12"}}, f.out, Config{ChartDir: f.dir})
	if err := m.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	assertContains(t, f.out.String(), "the interval must be at least 1m0s, cancelled.")
	if strings.Contains(f.out.String(), "Update #1") {
		t.Errorf("auto-update started with a 30s interval:\n%s", f.out)
	}
}

func TestViewAndWallets(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	out := f.run(t, "7", "8", "2", "12")
	assertContains(t, out, "# Portfolio", "Portfolio Summary", "Wallet ledger")
}

func TestWalletMenu(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	// all wallets once, one wallet once (kraken), back, quit
	out := f.run(t, "10", "1", "3", "kraken", "5", "12")
	assertContains(t, out, "Portfolio Analysis by Wallet", "Wallet Analysis", "Goodbye!")

	// quit from the submenu leaves the program
	out = f.run(t, "10", "6")
	assertContains(t, out, "Goodbye!")
}

func TestCoinEvolution(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	assertContains(t, f.run(t, "9", "12"), "No history yet")

	assertContains(t, f.run(t, "5", "9", "BTC", "12"), "Not enough history")

	out := f.run(t, "5", "9", "1", "12")
	assertContains(t, out, "Chart written to")
	if _, err := os.Stat(filepath.Join(f.dir, "btc_history.png")); err != nil {
		t.Errorf("chart file: %v", err)
	}
}

func TestSettings(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	out := f.run(t, "11", "1", "2", "3", "", "4", "y", "5", "12")
	assertContains(t, out,
		"# Database",
		"## portfolio",
		"2 entries exported to",
		"Database vacuumed.",
	)

	data, err := os.ReadFile(filepath.Join(f.dir, "export.jsonl"))
	if err != nil {
		t.Fatalf("export file: %v", err)
	}
	if n := strings.Count(string(data), "\n"); n != 2 {
		t.Errorf("export has %d lines, want 2", n)
	}
}
