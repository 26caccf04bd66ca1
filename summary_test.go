package cryptofolio

import (
	"strings"
	"testing"
)

func TestSummarize(t *testing.T) {
	s := Summarize(sampleEntries(t), "CAD")

	if s.Entries != 4 || s.Coins != 2 || s.Wallets != 2 {
		t.Errorf("counts = %d entries, %d coins, %d wallets, want 4, 2, 2", s.Entries, s.Coins, s.Wallets)
	}
	if !s.TotalAmount.Equal(Q(11.1)) {
		t.Errorf("TotalAmount = %s, want 11.1", s.TotalAmount)
	}

	if len(s.BySymbol) != 2 || s.BySymbol[0].Label != "SOL" {
		t.Errorf("BySymbol = %v, want SOL first", s.BySymbol)
	}
	if len(s.ByWallet) != 2 || s.ByWallet[0].Label != "kraken" || !s.ByWallet[0].Amount.Equal(Q(10.6)) {
		t.Errorf("ByWallet = %v, want kraken 10.6 first", s.ByWallet)
	}

	btc := s.Symbols[0]
	if btc.Symbol != "BTC" || btc.Purchases != 2 || btc.StakingGains != 1 {
		t.Fatalf("BTC summary = %+v", btc)
	}
	if !btc.MeanPrice.Equal(M(50000, "CAD")) {
		t.Errorf("BTC mean price = %s, want 50000", btc.MeanPrice)
	}
	if !btc.Investment.Equal(M(50000, "CAD")) {
		t.Errorf("BTC investment = %s, want 50000", btc.Investment)
	}

	if len(s.Timeline) != 4 {
		t.Fatalf("Timeline got %d points, want 4", len(s.Timeline))
	}
	wantCumulative := []float64{20000, 50000, 50000, 51000}
	for i, w := range wantCumulative {
		if !s.Timeline[i].Cumulative.Equal(M(w, "CAD")) {
			t.Errorf("Timeline[%d] = %s, want %v", i, s.Timeline[i].Cumulative, w)
		}
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil, "CAD")
	if s.Entries != 0 || len(s.BySymbol) != 0 || len(s.Timeline) != 0 {
		t.Errorf("Summarize(nil) = %+v, want an empty summary", s)
	}
}

func TestSummarize_OtherCurrency(t *testing.T) {
	es, err := DecodeEntries(strings.NewReader(
		`{"id":1,"kind":"buy","coin":"bitcoin","symbol":"BTC","amount":"1","price":"100","currency":"USD","type":"classic"}` + "\n" +
			`{"id":2,"kind":"buy","coin":"bitcoin","symbol":"BTC","amount":"2","price":"150","currency":"cad","type":"classic"}` + "\n"))
	if err != nil {
		t.Fatalf("DecodeEntries() error = %v", err)
	}

	s := Summarize(es, "CAD")
	if s.Entries != 1 || !s.TotalAmount.Equal(Q(2)) {
		t.Errorf("summary = %d entries of %s, want the CAD entry alone", s.Entries, s.TotalAmount)
	}
	if len(s.OtherCurrency) != 1 || s.OtherCurrency[0] != 1 {
		t.Errorf("OtherCurrency = %v, want [1]", s.OtherCurrency)
	}
	if got := s.Symbols[0].Investment; !got.Equal(M(300, "CAD")) || got.Currency() != "CAD" {
		t.Errorf("BTC investment = %s, want 300 CAD", got)
	}
}
