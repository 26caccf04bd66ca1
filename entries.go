package cryptofolio

import (
	"slices"
)

// Entries is the full list of portfolio records, usually in id order.
type Entries []Entry

// Wallets returns the sorted distinct non empty wallet labels.
func (es Entries) Wallets() []string {
	return distinct(es, func(e Entry) string { return e.Wallet })
}

// Coins returns the sorted distinct coin ids.
func (es Entries) Coins() []string {
	return distinct(es, func(e Entry) string { return e.Coin })
}

// Symbols returns the sorted distinct symbols.
func (es Entries) Symbols() []string {
	return distinct(es, func(e Entry) string { return e.Symbol })
}

// InWallet returns the entries of a single wallet. An empty wallet returns all entries.
func (es Entries) InWallet(wallet string) Entries {
	if wallet == "" {
		return es
	}
	var res Entries
	for _, e := range es {
		if e.Wallet == wallet {
			res = append(res, e)
		}
	}
	return res
}

// InCurrency splits the entries expressed in currency from the others.
// The kept entries carry currency exactly, whatever its case in the entry.
func (es Entries) InCurrency(currency string) (in, other Entries) {
	for _, e := range es {
		if e.CheckCurrency(currency) != nil {
			other = append(other, e)
			continue
		}
		e.BuyPrice = M(e.BuyPrice.Decimal(), currency)
		in = append(in, e)
	}
	return in, other
}

// IDs returns the entry ids.
func (es Entries) IDs() []int64 {
	ids := make([]int64, 0, len(es))
	for _, e := range es {
		ids = append(ids, e.ID)
	}
	return ids
}

// Find returns the entry with the given id.
func (es Entries) Find(id int64) (Entry, bool) {
	i := slices.IndexFunc(es, func(e Entry) bool { return e.ID == id })
	if i < 0 {
		return Entry{}, false
	}
	return es[i], true
}

func distinct(es Entries, key func(Entry) string) []string {
	var res []string
	for _, e := range es {
		if k := key(e); k != "" && !slices.Contains(res, k) {
			res = append(res, k)
		}
	}
	slices.Sort(res)
	return res
}
