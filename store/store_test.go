package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/etnz/cryptofolio"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "portfolio.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func purchase(t *testing.T, coin, symbol string, amount, price float64, wallet string) cryptofolio.Entry {
	t.Helper()
	e, err := cryptofolio.NewPurchase(coin, symbol, cryptofolio.Q(amount), cryptofolio.M(price, "CAD"), 0.5, 0.5, cryptofolio.Risk, wallet)
	if err != nil {
		t.Fatalf("NewPurchase() error = %v", err)
	}
	return e
}

func TestOpen_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "portfolio.db")
	s, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if _, err := s.AddEntry(ctx, purchase(t, "bitcoin", "BTC", 1, 100, "")); err != nil {
		t.Fatalf("AddEntry() error = %v", err)
	}
	s.Close()

	// migrations must be idempotent.
	s, err = Open(ctx, path)
	if err != nil {
		t.Fatalf("second Open() error = %v", err)
	}
	defer s.Close()
	entries, err := s.Entries(ctx, "")
	if err != nil || len(entries) != 1 {
		t.Fatalf("Entries() = %v, %v, want one entry", entries, err)
	}
}

func TestEntriesCRUD(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	btc, err := s.AddEntry(ctx, purchase(t, "bitcoin", "BTC", 0.123456789, 51234.56, "kraken"))
	if err != nil {
		t.Fatalf("AddEntry() error = %v", err)
	}
	if btc.ID == 0 || btc.CreatedAt.IsZero() {
		t.Errorf("AddEntry() = %+v, want an id and a creation time", btc)
	}
	gain, err := cryptofolio.NewStakingGain("solana", "SOL", cryptofolio.Q(0.01), cryptofolio.Classic, "exodus", "CAD")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddEntry(ctx, gain); err != nil {
		t.Fatalf("AddEntry(staking) error = %v", err)
	}

	got, err := s.Entry(ctx, btc.ID)
	if err != nil {
		t.Fatalf("Entry() error = %v", err)
	}
	if !got.Amount.Equal(cryptofolio.Q(0.123456789)) || !got.BuyPrice.Equal(cryptofolio.M(51234.56, "CAD")) {
		t.Errorf("Entry() = %s @ %s, decimals were not kept", got.Amount, got.BuyPrice)
	}
	if got.Type != cryptofolio.Risk || got.Kind != cryptofolio.Buy || got.Wallet != "kraken" {
		t.Errorf("Entry() = %+v, labels were not kept", got)
	}
	if !got.CreatedAt.Equal(btc.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, btc.CreatedAt)
	}

	got.Amount = cryptofolio.Q(2)
	got.Wallet = "ledger"
	if err := s.UpdateEntry(ctx, got); err != nil {
		t.Fatalf("UpdateEntry() error = %v", err)
	}
	updated, _ := s.Entry(ctx, btc.ID)
	if !updated.Amount.Equal(cryptofolio.Q(2)) || updated.Wallet != "ledger" {
		t.Errorf("UpdateEntry() not applied: %+v", updated)
	}

	wallets, err := s.Wallets(ctx)
	if err != nil || len(wallets) != 2 || wallets[0] != "exodus" || wallets[1] != "ledger" {
		t.Errorf("Wallets() = %v, %v, want [exodus ledger]", wallets, err)
	}

	inLedger, err := s.Entries(ctx, "ledger")
	if err != nil || len(inLedger) != 1 {
		t.Errorf("Entries(ledger) = %v, %v, want one entry", inLedger, err)
	}

	if err := s.DeleteEntry(ctx, btc.ID); err != nil {
		t.Fatalf("DeleteEntry() error = %v", err)
	}
	if _, err := s.Entry(ctx, btc.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Entry() after delete error = %v, want ErrNotFound", err)
	}
	if err := s.DeleteEntry(ctx, btc.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteEntry() error = %v, want ErrNotFound", err)
	}
	missing := got
	missing.ID = 999
	if err := s.UpdateEntry(ctx, missing); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateEntry(999) error = %v, want ErrNotFound", err)
	}
}

func TestAddEntry_Invalid(t *testing.T) {
	s := openTest(t)
	_, err := s.AddEntry(context.Background(), cryptofolio.Entry{Coin: "bitcoin"})
	if !errors.Is(err, cryptofolio.ErrInvalidEntry) {
		t.Errorf("AddEntry() error = %v, want ErrInvalidEntry", err)
	}
}

func TestImportEntries(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	in := cryptofolio.Entries{
		purchase(t, "bitcoin", "BTC", 1, 100, "a"),
		purchase(t, "ethereum", "ETH", 2, 10, "b"),
	}
	in[0].ID, in[1].ID = 40, 41
	n, err := s.ImportEntries(ctx, in)
	if err != nil || n != 2 {
		t.Fatalf("ImportEntries() = %d, %v", n, err)
	}
	entries, _ := s.Entries(ctx, "")
	if len(entries) != 2 || entries[0].ID != 1 {
		t.Errorf("imported entries = %+v, want ids reassigned from 1", entries)
	}

	bad := cryptofolio.Entries{purchase(t, "bitcoin", "BTC", 1, 100, ""), {Coin: "x"}}
	if _, err := s.ImportEntries(ctx, bad); err == nil {
		t.Error("ImportEntries() with an invalid entry should fail")
	}
	entries, _ = s.Entries(ctx, "")
	if len(entries) != 2 {
		t.Errorf("a failed import must not insert anything, got %d entries", len(entries))
	}
}

func TestHistory(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	t0 := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	snap := func(id string, at time.Time, price float64) []cryptofolio.HistoryPoint {
		return []cryptofolio.HistoryPoint{
			{SnapshotID: id, Timestamp: at, Coin: "bitcoin", Symbol: "BTC", Price: cryptofolio.M(price, "CAD"), Net: cryptofolio.M(price/2, "CAD"), Change: 12.5},
			{SnapshotID: id, Timestamp: at, Coin: "solana", Symbol: "SOL", Price: cryptofolio.M(200, "CAD"), Net: cryptofolio.M(2000, "CAD"), Change: -3},
		}
	}
	// saved out of order on purpose.
	if err := s.SaveSnapshot(ctx, snap("s2", t0.Add(time.Hour), 51000)); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}
	if err := s.SaveSnapshot(ctx, snap("s1", t0, 50000)); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}

	symbols, err := s.HistorySymbols(ctx)
	if err != nil || len(symbols) != 2 || symbols[0] != "BTC" {
		t.Errorf("HistorySymbols() = %v, %v", symbols, err)
	}

	points, err := s.History(ctx, "BTC")
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("History() got %d points, want 2", len(points))
	}
	if points[0].SnapshotID != "s1" || !points[0].Timestamp.Equal(t0) {
		t.Errorf("first point = %+v, want s1 at %v", points[0], t0)
	}
	if !points[1].Price.Equal(cryptofolio.M(51000, "CAD")) || !points[1].Change.Equal(12.5) {
		t.Errorf("second point = %+v", points[1])
	}

	info, err := s.Info(ctx)
	if err != nil {
		t.Fatalf("Info() error = %v", err)
	}
	if info.History != 4 || info.Snapshots != 2 || info.Entries != 0 || info.Size == 0 {
		t.Errorf("Info() = %+v", info)
	}
}

func TestSchemaAndVacuum(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	tables, err := s.Schema(ctx)
	if err != nil {
		t.Fatalf("Schema() error = %v", err)
	}
	if len(tables) != 2 || tables[0].Name != "history" || tables[1].Name != "portfolio" {
		t.Fatalf("Schema() tables = %v, want history and portfolio", tables)
	}
	var found bool
	for _, c := range tables[1].Columns {
		if c.Name == "entry_kind" {
			found = true
			if !c.NotNull || c.Default.String != "'buy'" {
				t.Errorf("entry_kind column = %+v", c)
			}
		}
	}
	if !found {
		t.Error("portfolio table has no entry_kind column")
	}

	if err := s.Vacuum(ctx); err != nil {
		t.Errorf("Vacuum() error = %v", err)
	}
}
