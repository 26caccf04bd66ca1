package cryptofolio

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"
)

// Row is the aggregated performance of one coin, or of one coin in one wallet.
type Row struct {
	Coin   string
	Symbol string
	Wallet string // empty unless the analysis is grouped by wallet
	Type   CoinType

	Amount    Quantity // everything held, staking gains included
	Purchased Quantity // bought amount, staking gains excluded

	AvgBuyPrice  Money // weighted by purchased amount
	AvgFeeBuy    Percent
	AvgFeeSell   Percent
	CurrentPrice Money
	MissingPrice bool // the price provider did not return this coin

	Performance
}

// Analysis is the result of Analyze.
type Analysis struct {
	Currency string
	ByWallet bool
	Rows     []Row
	Total    Performance // coins with a missing price excluded

	OtherCurrency []int64 // ids of the entries left out, not in Currency
}

type groupKey struct {
	coin, symbol, wallet string
}

var hundred = decimal.NewFromInt(100)

// Analyze aggregates entries per coin (and per wallet when byWallet is set)
// and values them with prices.
//
// Staking gains count in the held amount but not in the invested value nor
// in the average prices and fees. Coins with no price are valued at zero,
// flagged with MissingPrice and left out of the total. Entries in another
// currency are left out and listed in OtherCurrency.
func Analyze(entries Entries, prices Prices, currency string, byWallet bool) *Analysis {
	a := &Analysis{Currency: currency, ByWallet: byWallet}
	entries, other := entries.InCurrency(currency)
	if len(other) > 0 {
		a.OtherCurrency = other.IDs()
	}

	groups := make(map[groupKey]Entries)
	var keys []groupKey
	for _, e := range entries {
		k := groupKey{coin: e.Coin, symbol: e.Symbol}
		if byWallet {
			k.wallet = e.Wallet
		}
		if _, exists := groups[k]; !exists {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], e)
	}
	slices.SortFunc(keys, func(x, y groupKey) int {
		return cmp.Or(cmp.Compare(x.coin, y.coin), cmp.Compare(x.symbol, y.symbol), cmp.Compare(x.wallet, y.wallet))
	})

	zero := M(0, currency)
	totalInvested, totalNet := zero, zero
	for _, k := range keys {
		row, invested, net := analyzeGroup(k, groups[k], prices, currency)
		a.Rows = append(a.Rows, row)
		if row.MissingPrice {
			continue
		}
		totalInvested = totalInvested.Add(invested)
		totalNet = totalNet.Add(net)
	}
	a.Total = NewPerformance(totalInvested, totalNet)
	a.Total.Invested = a.Total.Invested.Round(2)
	a.Total.Net = a.Total.Net.Round(2)
	return a
}

// analyzeGroup returns the row and its unrounded invested and net values.
func analyzeGroup(k groupKey, group Entries, prices Prices, currency string) (Row, Money, Money) {
	row := Row{Coin: k.coin, Symbol: k.symbol, Wallet: k.wallet, Type: mostCommonType(group)}

	cost, invested := decimal.Zero, decimal.Zero
	feeBuy, feeSell := decimal.Zero, decimal.Zero
	for _, e := range group {
		row.Amount = row.Amount.Add(e.Amount)
		if e.Kind == Staking {
			continue
		}
		amount := e.Amount.Decimal()
		row.Purchased = row.Purchased.Add(e.Amount)
		cost = cost.Add(e.Cost().Decimal())
		invested = invested.Add(e.InvestedValue().Decimal())
		feeBuy = feeBuy.Add(decimal.NewFromFloat(float64(e.FeeBuyPercent)).Mul(amount))
		feeSell = feeSell.Add(decimal.NewFromFloat(float64(e.FeeSellPercent)).Mul(amount))
	}

	avgFeeSell := decimal.Zero
	row.AvgBuyPrice = M(0, currency)
	if purchased := row.Purchased.Decimal(); purchased.IsPositive() {
		row.AvgBuyPrice = M(cost.Div(purchased).Round(6), currency).Exact()
		avgFeeSell = feeSell.Div(purchased)
		row.AvgFeeBuy = Percent(feeBuy.Div(purchased).InexactFloat64()).Round(4)
		row.AvgFeeSell = Percent(avgFeeSell.InexactFloat64()).Round(4)
	}

	price, ok := prices[k.coin]
	if !ok {
		price = M(0, currency)
		row.MissingPrice = true
	}
	row.CurrentPrice = price.Exact()

	net := price.Decimal().Mul(row.Amount.Decimal()).Mul(decimal.NewFromInt(1).Sub(avgFeeSell.Div(hundred)))
	investedM, netM := M(invested, currency), M(net, currency)
	row.Performance = NewPerformance(investedM, netM)
	row.Invested = row.Invested.Round(2)
	row.Net = row.Net.Round(2)
	return row, investedM, netM
}

// mostCommonType returns the most frequent type, ties go to the first seen.
func mostCommonType(group Entries) CoinType {
	counts := make(map[CoinType]int)
	var order []CoinType
	for _, e := range group {
		if counts[e.Type] == 0 {
			order = append(order, e.Type)
		}
		counts[e.Type]++
	}
	best := Classic
	for i, t := range order {
		if i == 0 || counts[t] > counts[best] {
			best = t
		}
	}
	return best
}

// Coins returns the coin ids the analysis covers.
func (a *Analysis) Coins() []string {
	var res []string
	for _, r := range a.Rows {
		if !slices.Contains(res, r.Coin) {
			res = append(res, r.Coin)
		}
	}
	return res
}

// MissingPrices returns the coins valued at zero for lack of a price.
func (a *Analysis) MissingPrices() []string {
	var res []string
	for _, r := range a.Rows {
		if r.MissingPrice && !slices.Contains(res, r.Coin) {
			res = append(res, r.Coin)
		}
	}
	return res
}
