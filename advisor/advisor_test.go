package advisor

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/etnz/cryptofolio"
	"github.com/etnz/cryptofolio/store"
	"github.com/etnz/cryptofolio/tracker"
	"google.golang.org/genai"
)

func newTracker(t *testing.T) *tracker.Tracker {
	t.Helper()
	st, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "portfolio.db"))
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	t.Cleanup(func() { st.Close() })
	prices := cryptofolio.StaticPrices{"solana": cryptofolio.M(150, "CAD")}
	tr := tracker.New(st, prices, nil, tracker.Config{Currency: "CAD", Thresholds: cryptofolio.DefaultThresholds})
	if _, err := tr.AddPurchase(context.Background(), tracker.Purchase{
		Coin: "solana", Symbol: "SOL", Amount: cryptofolio.Q(10), Price: cryptofolio.M(100, "CAD"), Type: cryptofolio.Risk, Wallet: "ledger",
	}); err != nil {
		t.Fatal(err)
	}
	return tr
}

func call(lib Library, name string, args map[string]any) map[string]any {
	return lib(context.Background(), &genai.FunctionCall{ID: "call-1", Name: name, Args: args}).Response
}

func TestAccountantFunctions(t *testing.T) {
	tr := newTracker(t)
	lib := NewLibrary(AccountantFunctions(tr))

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"Entries", nil, "SOL"},
		{"Entries", map[string]any{"wallet": "ledger"}, "ledger"},
		{"Summary", map[string]any{}, "Portfolio Summary"},
		{"Analysis", map[string]any{"by_wallet": true}, "Portfolio Analysis by Wallet"},
		{"Analysis", map[string]any{}, "taking profit"},
		{"History", map[string]any{"symbol": "sol"}, "History for SOL"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := call(lib, tc.name, tc.args)
			out, ok := resp["output"].(string)
			if !ok {
				t.Fatalf("%s() = %v, want an output", tc.name, resp)
			}
			if !strings.Contains(strings.ToLower(out), strings.ToLower(tc.want)) {
				t.Errorf("%s() does not contain %q:\n%s", tc.name, tc.want, out)
			}
		})
	}

	// the advisor analyses do not record history
	if points, _ := tr.CoinHistory(context.Background(), "SOL"); len(points) != 0 {
		t.Errorf("history has %d points, want none", len(points))
	}
}

func TestLibraryErrors(t *testing.T) {
	lib := NewLibrary(AccountantFunctions(newTracker(t)))
	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"Unknown", nil, "unknown function"},
		{"Entries", map[string]any{"wallet": 3.0}, "not a string"},
		{"History", map[string]any{}, "required"},
	}
	for _, tc := range tests {
		resp := call(lib, tc.name, tc.args)
		msg, _ := resp["error"].(string)
		if !strings.Contains(msg, tc.want) {
			t.Errorf("%s(%v) error = %q, want %q", tc.name, tc.args, msg, tc.want)
		}
	}
}

func TestDeclarations(t *testing.T) {
	tr := newTracker(t)
	experts := []*Expert{NewAccountant("m", tr), NewMarketAnalyst("m")}
	decls := NewDeclaration(experts)
	if len(decls) != 2 || decls[0].Name != "Accountant" || decls[1].Name != "MarketAnalyst" {
		t.Fatalf("declarations = %v", decls)
	}
	f := newFacilitator("m", experts...)
	if got := len(f.Config.Tools[0].FunctionDeclarations); got != 2 {
		t.Errorf("facilitator has %d tools, want 2", got)
	}
	resp := f.Library(context.Background(), &genai.FunctionCall{Name: "Accountant", Args: map[string]any{"question": 1}})
	if _, ok := resp.Response["error"]; !ok {
		t.Errorf("a non string question must fail: %v", resp.Response)
	}
}

func TestAskNotStarted(t *testing.T) {
	e := NewMarketAnalyst("m")
	if _, err := e.Ask(context.Background(), &genai.Part{Text: "hi"}); err == nil {
		t.Errorf("Ask() on a stopped expert succeeded")
	}
}
