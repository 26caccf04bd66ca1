package cryptofolio

import (
	"testing"
	"time"
)

func buy(t *testing.T, id int64, coin, symbol string, amount, price, feeBuy, feeSell float64, typ CoinType, wallet string) Entry {
	t.Helper()
	e, err := NewPurchase(coin, symbol, Q(amount), M(price, "CAD"), Percent(feeBuy), Percent(feeSell), typ, wallet)
	if err != nil {
		t.Fatalf("NewPurchase() error = %v", err)
	}
	e.ID = id
	return e
}

func stake(t *testing.T, id int64, coin, symbol string, amount float64, typ CoinType, wallet string) Entry {
	t.Helper()
	e, err := NewStakingGain(coin, symbol, Q(amount), typ, wallet, "CAD")
	if err != nil {
		t.Fatalf("NewStakingGain() error = %v", err)
	}
	e.ID = id
	return e
}

func sampleEntries(t *testing.T) Entries {
	t.Helper()
	return Entries{
		buy(t, 1, "bitcoin", "BTC", 0.5, 40000, 1, 0.5, Classic, "kraken"),
		buy(t, 2, "bitcoin", "BTC", 0.5, 60000, 0, 1.5, Classic, "ledger"),
		stake(t, 3, "bitcoin", "BTC", 0.1, Classic, "kraken"),
		buy(t, 4, "solana", "SOL", 10, 100, 0, 0, Risk, "kraken"),
	}
}

func samplePrices() Prices {
	return Prices{"bitcoin": M(55000, "CAD"), "solana": M(130, "CAD")}
}

func TestAnalyze(t *testing.T) {
	a := Analyze(sampleEntries(t), samplePrices(), "CAD", false)

	if len(a.Rows) != 2 {
		t.Fatalf("Analyze() got %d rows, want 2", len(a.Rows))
	}

	btc := a.Rows[0]
	if btc.Symbol != "BTC" {
		t.Fatalf("first row = %q, want BTC", btc.Symbol)
	}
	if !btc.Amount.Equal(Q(1.1)) {
		t.Errorf("BTC amount = %s, want 1.1", btc.Amount)
	}
	if !btc.Purchased.Equal(Q(1)) {
		t.Errorf("BTC purchased = %s, want 1", btc.Purchased)
	}
	if !btc.AvgBuyPrice.Equal(M(50000, "CAD")) {
		t.Errorf("BTC avg buy price = %s, want 50000", btc.AvgBuyPrice)
	}
	if !btc.AvgFeeBuy.Equal(0.5) {
		t.Errorf("BTC avg fee buy = %s, want 0.5%%", btc.AvgFeeBuy)
	}
	if !btc.AvgFeeSell.Equal(1) {
		t.Errorf("BTC avg fee sell = %s, want 1%%", btc.AvgFeeSell)
	}
	if !btc.Invested.Equal(M(50200, "CAD")) {
		t.Errorf("BTC invested = %s, want 50200", btc.Invested)
	}
	if !btc.Net.Equal(M(59895, "CAD")) {
		t.Errorf("BTC net = %s, want 59895", btc.Net)
	}
	if !btc.Return.Equal(19.31) {
		t.Errorf("BTC return = %s, want 19.31%%", btc.Return)
	}

	sol := a.Rows[1]
	if !sol.Invested.Equal(M(1000, "CAD")) || !sol.Net.Equal(M(1300, "CAD")) || !sol.Return.Equal(30) {
		t.Errorf("SOL = %s -> %s (%s), want 1000 -> 1300 (30%%)", sol.Invested, sol.Net, sol.Return)
	}
	if sol.Type != Risk {
		t.Errorf("SOL type = %s, want risk", sol.Type)
	}

	if !a.Total.Invested.Equal(M(51200, "CAD")) || !a.Total.Net.Equal(M(61195, "CAD")) {
		t.Errorf("total = %s -> %s, want 51200 -> 61195", a.Total.Invested, a.Total.Net)
	}
	if !a.Total.Return.Equal(19.52) {
		t.Errorf("total return = %s, want 19.52%%", a.Total.Return)
	}
}

func TestAnalyzeByWallet(t *testing.T) {
	a := Analyze(sampleEntries(t), samplePrices(), "CAD", true)

	want := []struct {
		symbol, wallet string
		invested, net  float64
		ret            Percent
	}{
		{"BTC", "kraken", 20200, 32835, 62.55},
		{"BTC", "ledger", 30000, 27087.5, -9.71},
		{"SOL", "kraken", 1000, 1300, 30},
	}
	if len(a.Rows) != len(want) {
		t.Fatalf("Analyze() got %d rows, want %d", len(a.Rows), len(want))
	}
	for i, w := range want {
		r := a.Rows[i]
		if r.Symbol != w.symbol || r.Wallet != w.wallet {
			t.Errorf("row %d = %s/%s, want %s/%s", i, r.Symbol, r.Wallet, w.symbol, w.wallet)
			continue
		}
		if !r.Invested.Equal(M(w.invested, "CAD")) {
			t.Errorf("%s/%s invested = %s, want %v", w.symbol, w.wallet, r.Invested, w.invested)
		}
		if !r.Net.Equal(M(w.net, "CAD")) {
			t.Errorf("%s/%s net = %s, want %v", w.symbol, w.wallet, r.Net, w.net)
		}
		if !r.Return.Equal(w.ret) {
			t.Errorf("%s/%s return = %s, want %s", w.symbol, w.wallet, r.Return, w.ret)
		}
	}
}

func TestAnalyzeMissingPrice(t *testing.T) {
	prices := Prices{"bitcoin": M(55000, "CAD")}
	a := Analyze(sampleEntries(t), prices, "CAD", false)

	sol := a.Rows[1]
	if !sol.MissingPrice {
		t.Error("SOL should be flagged with a missing price")
	}
	if !sol.Net.IsZero() {
		t.Errorf("SOL net = %s, want 0", sol.Net)
	}
	if got := a.MissingPrices(); len(got) != 1 || got[0] != "solana" {
		t.Errorf("MissingPrices() = %v, want [solana]", got)
	}
	if alerts := a.Alerts(DefaultThresholds); len(alerts) != 0 {
		t.Errorf("Alerts() = %v, want none for a coin without price", alerts)
	}
	if points := a.Snapshot("s1", time.Now()); len(points) != 1 {
		t.Errorf("Snapshot() got %d points, want 1", len(points))
	}
	btc := a.Rows[0]
	if !a.Total.Invested.Equal(btc.Invested) || !a.Total.Net.Equal(btc.Net) {
		t.Errorf("total = %s -> %s, want BTC alone %s -> %s", a.Total.Invested, a.Total.Net, btc.Invested, btc.Net)
	}

	flat := Entries{
		buy(t, 1, "bitcoin", "BTC", 1, 100, 0, 0, Classic, ""),
		buy(t, 2, "nocoin", "NOC", 1, 100, 0, 0, Classic, ""),
	}
	a = Analyze(flat, Prices{"bitcoin": M(100, "CAD")}, "CAD", false)
	if !a.Total.Invested.Equal(M(100, "CAD")) || !a.Total.Net.Equal(M(100, "CAD")) || a.Total.Return != 0 {
		t.Errorf("total = %s -> %s (%s), want 100 -> 100 (0%%)", a.Total.Invested, a.Total.Net, a.Total.Return)
	}
}

func TestAnalyzeOtherCurrency(t *testing.T) {
	usd, err := NewPurchase("ethereum", "ETH", Q(1), M(3000, "USD"), 0, 0, Classic, "")
	if err != nil {
		t.Fatal(err)
	}
	usd.ID = 9
	entries := append(sampleEntries(t), usd)
	prices := samplePrices()
	prices["ethereum"] = M(4000, "CAD")

	a := Analyze(entries, prices, "CAD", false)
	want := Analyze(sampleEntries(t), samplePrices(), "CAD", false)
	if len(a.Rows) != 2 {
		t.Errorf("Analyze() got %d rows, want the 2 CAD coins", len(a.Rows))
	}
	if !a.Total.Net.Equal(want.Total.Net) || !a.Total.Invested.Equal(want.Total.Invested) {
		t.Errorf("total = %s -> %s, want %s -> %s", a.Total.Invested, a.Total.Net, want.Total.Invested, want.Total.Net)
	}
	if len(a.OtherCurrency) != 1 || a.OtherCurrency[0] != 9 {
		t.Errorf("OtherCurrency = %v, want [9]", a.OtherCurrency)
	}
}

func TestAnalyzeStakingOnly(t *testing.T) {
	entries := Entries{stake(t, 1, "polkadot", "DOT", 3, Classic, "")}
	a := Analyze(entries, Prices{"polkadot": M(10, "CAD")}, "CAD", false)

	r := a.Rows[0]
	if !r.Invested.IsZero() {
		t.Errorf("invested = %s, want 0", r.Invested)
	}
	if !r.Net.Equal(M(30, "CAD")) {
		t.Errorf("net = %s, want 30", r.Net)
	}
	if r.Return != 0 {
		t.Errorf("return = %s, want 0 when nothing was invested", r.Return)
	}
	if !r.AvgBuyPrice.IsZero() {
		t.Errorf("avg buy price = %s, want 0", r.AvgBuyPrice)
	}
}

func TestMostCommonType(t *testing.T) {
	tests := []struct {
		name  string
		types []CoinType
		want  CoinType
	}{
		{"single", []CoinType{Risk}, Risk},
		{"majority", []CoinType{Classic, Risk, Risk}, Risk},
		{"tie goes to first seen", []CoinType{Stable, Risk}, Stable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var group Entries
			for _, typ := range tt.types {
				group = append(group, Entry{Type: typ})
			}
			if got := mostCommonType(group); got != tt.want {
				t.Errorf("mostCommonType() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestAlerts(t *testing.T) {
	mk := func(typ CoinType, ret Percent) Row {
		return Row{Symbol: "X", Type: typ, Performance: Performance{Return: ret}}
	}
	tests := []struct {
		name string
		row  Row
		want []AlertKind
	}{
		{"risk above take profit", mk(Risk, 25), []AlertKind{TakeProfit}},
		{"risk at take profit", mk(Risk, 20), []AlertKind{TakeProfit}},
		{"risk in range", mk(Risk, 5), nil},
		{"risk at stop loss", mk(Risk, -15), []AlertKind{StopLoss}},
		{"risk below stop loss", mk(Risk, -40), []AlertKind{StopLoss}},
		{"classic never alerts", mk(Classic, 80), nil},
		{"stable never alerts", mk(Stable, -80), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &Analysis{Rows: []Row{tt.row}}
			got := a.Alerts(DefaultThresholds)
			if len(got) != len(tt.want) {
				t.Fatalf("Alerts() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i].Kind != tt.want[i] {
					t.Errorf("alert %d = %s, want %s", i, got[i].Kind, tt.want[i])
				}
			}
		})
	}
}

func TestSnapshot(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	a := Analyze(sampleEntries(t), samplePrices(), "CAD", false)
	points := a.Snapshot("abc", at)
	if len(points) != 2 {
		t.Fatalf("Snapshot() got %d points, want 2", len(points))
	}
	for _, p := range points {
		if p.SnapshotID != "abc" || !p.Timestamp.Equal(at) {
			t.Errorf("point %+v does not share the snapshot id and time", p)
		}
	}
	if points[0].Coin != "bitcoin" || !points[0].Price.Equal(M(55000, "CAD")) {
		t.Errorf("first point = %s at %s, want bitcoin at 55000", points[0].Coin, points[0].Price)
	}
}
