package store

import (
	"context"
	"fmt"

	"github.com/etnz/cryptofolio"
	"github.com/shopspring/decimal"
)

type historyRow struct {
	SnapshotID string  `db:"snapshot_id"`
	Timestamp  string  `db:"timestamp"`
	Coin       string  `db:"coin"`
	Symbol     string  `db:"symbol"`
	Wallet     string  `db:"wallet"`
	Currency   string  `db:"currency"`
	Price      string  `db:"current_price"`
	Net        string  `db:"current_value_net"`
	Change     float64 `db:"pct_change_net"`
}

// SaveSnapshot stores the points of one analysis run in a single transaction.
func (s *Store) SaveSnapshot(ctx context.Context, points []cryptofolio.HistoryPoint) error {
	if len(points) == 0 {
		return nil
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, p := range points {
		row := historyRow{
			SnapshotID: p.SnapshotID,
			Timestamp:  formatTime(p.Timestamp),
			Coin:       p.Coin,
			Symbol:     p.Symbol,
			Wallet:     p.Wallet,
			Currency:   p.Price.Currency(),
			Price:      p.Price.Decimal().String(),
			Net:        p.Net.Decimal().String(),
			Change:     float64(p.Change),
		}
		if _, err := tx.NamedExecContext(ctx, `
			INSERT INTO history (snapshot_id, timestamp, coin, symbol, wallet, currency, current_price, current_value_net, pct_change_net)
			VALUES (:snapshot_id, :timestamp, :coin, :symbol, :wallet, :currency, :current_price, :current_value_net, :pct_change_net)`,
			row); err != nil {
			return fmt.Errorf("failed to save history point for %s: %w", p.Symbol, err)
		}
	}
	return tx.Commit()
}

// HistorySymbols returns the symbols that have at least one history point.
func (s *Store) HistorySymbols(ctx context.Context) ([]string, error) {
	var symbols []string
	if err := s.db.SelectContext(ctx, &symbols, `SELECT DISTINCT symbol FROM history ORDER BY symbol`); err != nil {
		return nil, fmt.Errorf("failed to list history symbols: %w", err)
	}
	return symbols, nil
}

// History returns every point of symbol in chronological order.
func (s *Store) History(ctx context.Context, symbol string) ([]cryptofolio.HistoryPoint, error) {
	var rows []historyRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT snapshot_id, timestamp, coin, symbol, wallet, currency, current_price, current_value_net, pct_change_net
		FROM history WHERE symbol = ? ORDER BY timestamp, id`, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to read history of %s: %w", symbol, err)
	}

	points := make([]cryptofolio.HistoryPoint, 0, len(rows))
	for _, r := range rows {
		ts, err := parseTime(r.Timestamp)
		if err != nil {
			return nil, err
		}
		price, err := decimal.NewFromString(r.Price)
		if err != nil {
			return nil, fmt.Errorf("history of %s: invalid price %q: %w", symbol, r.Price, err)
		}
		net, err := decimal.NewFromString(r.Net)
		if err != nil {
			return nil, fmt.Errorf("history of %s: invalid value %q: %w", symbol, r.Net, err)
		}
		points = append(points, cryptofolio.HistoryPoint{
			SnapshotID: r.SnapshotID,
			Timestamp:  ts,
			Coin:       r.Coin,
			Symbol:     r.Symbol,
			Wallet:     r.Wallet,
			Price:      cryptofolio.M(price, r.Currency).Exact(),
			Net:        cryptofolio.M(net, r.Currency),
			Change:     cryptofolio.Percent(r.Change),
		})
	}
	return points, nil
}
