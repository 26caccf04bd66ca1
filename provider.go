package cryptofolio

import (
	"context"
	"time"
)

// Prices maps a coin id to its current unit price.
type Prices map[string]Money

// PricePoint is one sample of a market price series.
type PricePoint struct {
	Time  time.Time
	Price Money
}

// PriceProvider returns the current price of coins.
// Coins unknown to the provider are absent from the result.
type PriceProvider interface {
	Prices(ctx context.Context, coins []string) (Prices, error)
}

// ChartProvider returns the market price series of a coin over the last days.
// days is a number of days or "max".
type ChartProvider interface {
	MarketChart(ctx context.Context, coin, days string) ([]PricePoint, error)
}

// StaticPrices is a PriceProvider that serves a fixed set of prices.
type StaticPrices Prices

func (s StaticPrices) Prices(_ context.Context, coins []string) (Prices, error) {
	res := make(Prices, len(coins))
	for _, c := range coins {
		if p, ok := s[c]; ok {
			res[c] = p
		}
	}
	return res, nil
}
