package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/etnz/cryptofolio"
	"github.com/shopspring/decimal"
)

// entryRow is the portfolio table layout.
type entryRow struct {
	ID        int64   `db:"id"`
	Coin      string  `db:"coin"`
	Symbol    string  `db:"symbol"`
	Amount    string  `db:"amount"`
	BuyPrice  string  `db:"buy_price"`
	Currency  string  `db:"currency"`
	FeeBuy    float64 `db:"fee_buy_percent"`
	FeeSell   float64 `db:"fee_sell_percent"`
	Type      string  `db:"type"`
	Wallet    string  `db:"wallet"`
	Kind      string  `db:"entry_kind"`
	CreatedAt string  `db:"created_at"`
}

const (
	entryColumns = `id, coin, symbol, amount, buy_price, currency, fee_buy_percent, fee_sell_percent, type, wallet, entry_kind, created_at`
	insertEntry  = `INSERT INTO portfolio (coin, symbol, amount, buy_price, currency, fee_buy_percent, fee_sell_percent, type, wallet, entry_kind, created_at)
		VALUES (:coin, :symbol, :amount, :buy_price, :currency, :fee_buy_percent, :fee_sell_percent, :type, :wallet, :entry_kind, :created_at)`
)

func newEntryRow(e cryptofolio.Entry) entryRow {
	return entryRow{
		ID:        e.ID,
		Coin:      e.Coin,
		Symbol:    e.Symbol,
		Amount:    e.Amount.String(),
		BuyPrice:  e.BuyPrice.Decimal().String(),
		Currency:  e.BuyPrice.Currency(),
		FeeBuy:    float64(e.FeeBuyPercent),
		FeeSell:   float64(e.FeeSellPercent),
		Type:      e.Type.String(),
		Wallet:    e.Wallet,
		Kind:      e.Kind.String(),
		CreatedAt: formatTime(e.CreatedAt),
	}
}

func (r entryRow) entry() (cryptofolio.Entry, error) {
	amount, err := cryptofolio.ParseQuantity(r.Amount)
	if err != nil {
		return cryptofolio.Entry{}, fmt.Errorf("entry %d: %w", r.ID, err)
	}
	price, err := decimal.NewFromString(r.BuyPrice)
	if err != nil {
		return cryptofolio.Entry{}, fmt.Errorf("entry %d: invalid price %q: %w", r.ID, r.BuyPrice, err)
	}
	kind, err := cryptofolio.ParseEntryKind(r.Kind)
	if err != nil {
		return cryptofolio.Entry{}, fmt.Errorf("entry %d: %w", r.ID, err)
	}
	created, err := parseTime(r.CreatedAt)
	if err != nil {
		return cryptofolio.Entry{}, fmt.Errorf("entry %d: %w", r.ID, err)
	}
	return cryptofolio.Entry{
		ID:             r.ID,
		Coin:           r.Coin,
		Symbol:         r.Symbol,
		Amount:         amount,
		BuyPrice:       cryptofolio.M(price, r.Currency),
		FeeBuyPercent:  cryptofolio.Percent(r.FeeBuy),
		FeeSellPercent: cryptofolio.Percent(r.FeeSell),
		Type:           cryptofolio.CoinTypeOr(r.Type, cryptofolio.Classic),
		Wallet:         r.Wallet,
		Kind:           kind,
		CreatedAt:      created,
	}, nil
}

// AddEntry validates and inserts e. It returns e with its new id and creation time.
func (s *Store) AddEntry(ctx context.Context, e cryptofolio.Entry) (cryptofolio.Entry, error) {
	if err := e.Validate(); err != nil {
		return e, err
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	res, err := s.db.NamedExecContext(ctx, insertEntry, newEntryRow(e))
	if err != nil {
		return e, fmt.Errorf("failed to insert entry: %w", err)
	}
	if e.ID, err = res.LastInsertId(); err != nil {
		return e, fmt.Errorf("failed to get entry id: %w", err)
	}
	return e, nil
}

// UpdateEntry replaces every field of the entry e.ID but its kind and creation time.
func (s *Store) UpdateEntry(ctx context.Context, e cryptofolio.Entry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	res, err := s.db.NamedExecContext(ctx, `
		UPDATE portfolio
		SET coin = :coin, symbol = :symbol, amount = :amount, buy_price = :buy_price, currency = :currency,
		    fee_buy_percent = :fee_buy_percent, fee_sell_percent = :fee_sell_percent, type = :type, wallet = :wallet
		WHERE id = :id`,
		newEntryRow(e))
	if err != nil {
		return fmt.Errorf("failed to update entry %d: %w", e.ID, err)
	}
	return expectOne(res, e.ID)
}

// DeleteEntry removes the entry id.
func (s *Store) DeleteEntry(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM portfolio WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete entry %d: %w", id, err)
	}
	return expectOne(res, id)
}

func expectOne(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("entry %d: %w", id, ErrNotFound)
	}
	return nil
}

// Entry returns the entry id.
func (s *Store) Entry(ctx context.Context, id int64) (cryptofolio.Entry, error) {
	var row entryRow
	err := s.db.GetContext(ctx, &row, `SELECT `+entryColumns+` FROM portfolio WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return cryptofolio.Entry{}, fmt.Errorf("entry %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return cryptofolio.Entry{}, fmt.Errorf("failed to get entry %d: %w", id, err)
	}
	return row.entry()
}

// Entries returns the entries in id order, restricted to a wallet if not empty.
func (s *Store) Entries(ctx context.Context, wallet string) (cryptofolio.Entries, error) {
	var rows []entryRow
	var err error
	if wallet == "" {
		err = s.db.SelectContext(ctx, &rows, `SELECT `+entryColumns+` FROM portfolio ORDER BY id`)
	} else {
		err = s.db.SelectContext(ctx, &rows, `SELECT `+entryColumns+` FROM portfolio WHERE wallet = ? ORDER BY id`, wallet)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	entries := make(cryptofolio.Entries, 0, len(rows))
	for _, r := range rows {
		e, err := r.entry()
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Wallets returns the distinct non empty wallet labels, sorted.
func (s *Store) Wallets(ctx context.Context) ([]string, error) {
	var wallets []string
	err := s.db.SelectContext(ctx, &wallets, `SELECT DISTINCT wallet FROM portfolio WHERE wallet <> '' ORDER BY wallet`)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}
	return wallets, nil
}

// ImportEntries inserts entries in a single transaction. Ids are reassigned.
func (s *Store) ImportEntries(ctx context.Context, entries cryptofolio.Entries) (int, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	now := time.Now()
	for i, e := range entries {
		if err := e.Validate(); err != nil {
			return 0, fmt.Errorf("entry #%d: %w", i+1, err)
		}
		if e.CreatedAt.IsZero() {
			e.CreatedAt = now
		}
		if _, err := tx.NamedExecContext(ctx, insertEntry, newEntryRow(e)); err != nil {
			return 0, fmt.Errorf("failed to import entry #%d: %w", i+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(entries), nil
}
