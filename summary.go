package cryptofolio

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"
)

// Share is the amount held under one label (a symbol, a wallet or a type).
type Share struct {
	Label  string
	Amount Quantity
}

// SymbolSummary aggregates the entries of a symbol, no prices involved.
type SymbolSummary struct {
	Symbol       string
	Amount       Quantity
	MeanPrice    Money // plain mean of the purchase prices
	Investment   Money // Σ price·amount, without fees
	Purchases    int
	StakingGains int
}

// WalletSummary aggregates the entries of a wallet.
type WalletSummary struct {
	Wallet  string
	Amount  Quantity
	Entries int
	Symbols []string
}

// TimelinePoint is the cumulative investment after an entry.
type TimelinePoint struct {
	ID         int64
	Symbol     string
	Investment Money
	Cumulative Money
}

// Summary describes the content of the portfolio without market prices.
type Summary struct {
	Currency    string
	Entries     int
	Coins       int
	Wallets     int
	TotalAmount Quantity

	BySymbol []Share // sorted by decreasing amount
	ByWallet []Share
	ByType   []Share

	Symbols    []SymbolSummary
	WalletRows []WalletSummary
	Timeline   []TimelinePoint // in id order

	OtherCurrency []int64 // ids of the entries left out, not in Currency
}

// Summarize computes the Summary of entries. Entries in another currency are
// left out and listed in OtherCurrency.
func Summarize(entries Entries, currency string) *Summary {
	entries, other := entries.InCurrency(currency)
	s := &Summary{
		Currency: currency,
		Entries:  len(entries),
		Coins:    len(entries.Symbols()),
		Wallets:  len(entries.Wallets()),
	}

	bySymbol := make(map[string]Quantity)
	byWallet := make(map[string]Quantity)
	byType := make(map[string]Quantity)
	symbols := make(map[string]*SymbolSummary)
	priceSums := make(map[string]decimal.Decimal)
	wallets := make(map[string]*WalletSummary)

	for _, e := range entries {
		s.TotalAmount = s.TotalAmount.Add(e.Amount)
		bySymbol[e.Symbol] = bySymbol[e.Symbol].Add(e.Amount)
		byType[e.Type.String()] = byType[e.Type.String()].Add(e.Amount)

		wallet := e.Wallet
		if wallet == "" {
			wallet = "-"
		}
		byWallet[wallet] = byWallet[wallet].Add(e.Amount)

		ss, ok := symbols[e.Symbol]
		if !ok {
			ss = &SymbolSummary{Symbol: e.Symbol, MeanPrice: M(0, currency), Investment: M(0, currency)}
			symbols[e.Symbol] = ss
		}
		ss.Amount = ss.Amount.Add(e.Amount)
		if e.Kind == Staking {
			ss.StakingGains++
		} else {
			ss.Purchases++
			ss.Investment = ss.Investment.Add(e.Cost())
			priceSums[e.Symbol] = priceSums[e.Symbol].Add(e.BuyPrice.Decimal())
		}

		ws, ok := wallets[wallet]
		if !ok {
			ws = &WalletSummary{Wallet: wallet}
			wallets[wallet] = ws
		}
		ws.Amount = ws.Amount.Add(e.Amount)
		ws.Entries++
		if !slices.Contains(ws.Symbols, e.Symbol) {
			ws.Symbols = append(ws.Symbols, e.Symbol)
		}
	}

	s.BySymbol = shares(bySymbol)
	s.ByWallet = shares(byWallet)
	s.ByType = shares(byType)

	for _, ss := range symbols {
		if ss.Purchases > 0 {
			ss.MeanPrice = M(priceSums[ss.Symbol].Div(decimal.NewFromInt(int64(ss.Purchases))).Round(6), currency).Exact()
		}
		ss.Investment = ss.Investment.Round(2)
		s.Symbols = append(s.Symbols, *ss)
	}
	slices.SortFunc(s.Symbols, func(a, b SymbolSummary) int { return cmp.Compare(a.Symbol, b.Symbol) })

	for _, ws := range wallets {
		slices.Sort(ws.Symbols)
		s.WalletRows = append(s.WalletRows, *ws)
	}
	slices.SortFunc(s.WalletRows, func(a, b WalletSummary) int { return cmp.Compare(a.Wallet, b.Wallet) })

	if len(other) > 0 {
		s.OtherCurrency = other.IDs()
	}

	sorted := slices.Clone(entries)
	slices.SortFunc(sorted, func(a, b Entry) int { return cmp.Compare(a.ID, b.ID) })
	cumulative := M(0, currency)
	for _, e := range sorted {
		cost := e.Cost()
		cumulative = cumulative.Add(cost)
		s.Timeline = append(s.Timeline, TimelinePoint{ID: e.ID, Symbol: e.Symbol, Investment: cost, Cumulative: cumulative})
	}
	return s
}

// shares sorts by decreasing amount, then by label.
func shares(m map[string]Quantity) []Share {
	res := make([]Share, 0, len(m))
	for label, q := range m {
		res = append(res, Share{Label: label, Amount: q})
	}
	slices.SortFunc(res, func(a, b Share) int {
		if c := b.Amount.Decimal().Cmp(a.Amount.Decimal()); c != 0 {
			return c
		}
		return cmp.Compare(a.Label, b.Label)
	})
	return res
}
