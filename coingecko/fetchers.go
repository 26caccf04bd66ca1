package coingecko

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/cryptofolio"
	"github.com/shopspring/decimal"
)

// This file contains functions to access the CoinGecko API.

// Prices returns the current price of coins in the client currency.
// Coins unknown to the API are absent from the result.
func (c *Client) Prices(ctx context.Context, coins []string) (cryptofolio.Prices, error) {
	// https://api.coingecko.com/api/v3/simple/price?ids=bitcoin,ethereum&vs_currencies=cad
	// {
	//   "bitcoin": { "cad": 91234.12 },
	//   "ethereum": { "cad": 4321.5 }
	// }
	res := make(cryptofolio.Prices)
	ids := slices.Clone(coins)
	slices.Sort(ids)
	ids = slices.Compact(ids)
	if len(ids) == 0 {
		return res, nil
	}

	query := url.Values{"ids": {strings.Join(ids, ",")}, "vs_currencies": {c.currency}}
	body, err := c.get(ctx, c.http, "simple_price", "/simple/price", query)
	if err != nil {
		return nil, err
	}

	jobj, err := decodeJSON(body)
	if err != nil {
		return nil, fmt.Errorf("cannot parse prices: %w", err)
	}
	for _, id := range ids {
		path := fmt.Sprintf("$[%q][%q]", id, c.currency)
		jval, err := jsonpath.Get(path, jobj)
		if err != nil {
			// unknown coin ids are simply missing from the answer.
			c.log.Debug("no price", "coin", id)
			continue
		}
		price, err := toDecimal(jval)
		if err != nil {
			return nil, fmt.Errorf("cannot parse price of %s: %w", id, err)
		}
		res[id] = cryptofolio.M(price, c.Currency())
	}
	return res, nil
}

// MarketChart returns the price series of coin over the last days ("1", "30", "max"...).
func (c *Client) MarketChart(ctx context.Context, coin, days string) ([]cryptofolio.PricePoint, error) {
	// https://api.coingecko.com/api/v3/coins/bitcoin/market_chart?vs_currency=cad&days=30
	// {
	//   "prices": [[1711843200000, 95000.1], [1711929600000, 96012.3]],
	//   "market_caps": [...],
	//   "total_volumes": [...]
	// }
	if err := ValidateDays(days); err != nil {
		return nil, err
	}
	query := url.Values{"vs_currency": {c.currency}, "days": {days}}
	body, err := c.get(ctx, c.cached, "market_chart", "/coins/"+url.PathEscape(coin)+"/market_chart", query)
	if err != nil {
		return nil, err
	}

	var content struct {
		Prices [][]json.Number `json:"prices"`
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&content); err != nil {
		return nil, fmt.Errorf("cannot parse market chart of %s: %w", coin, err)
	}

	points := make([]cryptofolio.PricePoint, 0, len(content.Prices))
	for _, p := range content.Prices {
		if len(p) != 2 {
			continue
		}
		ms, err := p[0].Int64()
		if err != nil {
			// some timestamps come as floats.
			f, ferr := p[0].Float64()
			if ferr != nil {
				return nil, fmt.Errorf("invalid timestamp %q in market chart of %s", p[0], coin)
			}
			ms = int64(f)
		}
		price, err := decimal.NewFromString(p[1].String())
		if err != nil {
			return nil, fmt.Errorf("invalid price %q in market chart of %s", p[1], coin)
		}
		points = append(points, cryptofolio.PricePoint{
			Time:  time.UnixMilli(ms).UTC(),
			Price: cryptofolio.M(price, c.Currency()).Exact(),
		})
	}
	return points, nil
}

// ErrInvalidPeriod is returned by ValidateDays.
var ErrInvalidPeriod = errors.New("invalid period")

// ValidateDays checks a market chart period: a positive number of days or "max".
func ValidateDays(days string) error {
	if days == "max" {
		return nil
	}
	if n, err := strconv.Atoi(days); err != nil || n <= 0 {
		return fmt.Errorf("%w %q: want a positive number of days or \"max\"", ErrInvalidPeriod, days)
	}
	return nil
}

// Coin is a search result.
type Coin struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	MarketCapRank int    `json:"market_cap_rank"`
}

// Search returns the coins matching query, best ranked first as the API sorts them.
func (c *Client) Search(ctx context.Context, query string) ([]Coin, error) {
	// https://api.coingecko.com/api/v3/search?query=sol
	// {"coins":[{"id":"solana","name":"Solana","api_symbol":"solana","symbol":"SOL","market_cap_rank":5, ...}], ...}
	body, err := c.get(ctx, c.cached, "search", "/search", url.Values{"query": {query}})
	if err != nil {
		return nil, err
	}
	var content struct {
		Coins []Coin `json:"coins"`
	}
	if err := json.Unmarshal(body, &content); err != nil {
		return nil, fmt.Errorf("cannot parse search result: %w", err)
	}
	return content.Coins, nil
}

func decodeJSON(body []byte) (any, error) {
	var jobj any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&jobj); err != nil {
		return nil, err
	}
	return jobj, nil
}

func toDecimal(jval any) (decimal.Decimal, error) {
	// because jsonpath is never clear about wheter it returns a list of 1 answer, or a single answer:
	// by this call I keep the first one if any
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	switch v := jval.(type) {
	case json.Number:
		return decimal.NewFromString(v.String())
	case float64:
		return decimal.NewFromFloat(v), nil
	case string:
		return decimal.NewFromString(v)
	default:
		return decimal.Zero, fmt.Errorf("not a number: %v", jval)
	}
}
