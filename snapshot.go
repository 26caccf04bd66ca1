package cryptofolio

import "time"

// HistoryPoint is one row of an analysis snapshot as stored in the history.
type HistoryPoint struct {
	SnapshotID string // shared by every point of the same analysis run
	Timestamp  time.Time
	Coin       string
	Symbol     string
	Wallet     string
	Price      Money
	Net        Money
	Change     Percent
}

// Snapshot turns the analysis rows into history points sharing id and timestamp.
//
// Rows without a price are skipped, a zero value would break the evolution chart.
func (a *Analysis) Snapshot(id string, at time.Time) []HistoryPoint {
	var points []HistoryPoint
	for _, r := range a.Rows {
		if r.MissingPrice {
			continue
		}
		points = append(points, HistoryPoint{
			SnapshotID: id,
			Timestamp:  at,
			Coin:       r.Coin,
			Symbol:     r.Symbol,
			Wallet:     r.Wallet,
			Price:      r.CurrentPrice,
			Net:        r.Net,
			Change:     r.Return,
		})
	}
	return points
}
