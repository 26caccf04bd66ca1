package renderer

import (
	"bytes"
	"slices"
	"strconv"
	"strings"

	"github.com/etnz/cryptofolio"
	"github.com/etnz/cryptofolio/coingecko"
	md "github.com/nao1215/markdown"
)

// SearchMarkdown renders coin search results.
func SearchMarkdown(query string, coins []coingecko.Coin) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Search results for " + strconv.Quote(query))
	if len(coins) == 0 {
		doc.PlainText("No coin found.")
		return doc.String()
	}
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignRight},
		Header:    []string{"Coin ID", "Symbol", "Name", "Rank"},
		Rows:      [][]string{},
	}
	for _, c := range coins {
		rank := "-"
		if c.MarketCapRank > 0 {
			rank = strconv.Itoa(c.MarketCapRank)
		}
		table.Rows = append(table.Rows, []string{code(c.ID), strings.ToUpper(c.Symbol), c.Name, rank})
	}
	doc.Table(table)
	doc.PlainText("Use the coin ID when adding an entry.")
	return doc.String()
}

// PricesMarkdown renders current prices sorted by coin id.
func PricesMarkdown(prices cryptofolio.Prices) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Current Prices")
	ids := make([]string, 0, len(prices))
	for id := range prices {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"Coin", "Price"},
		Rows:      [][]string{},
	}
	for _, id := range ids {
		table.Rows = append(table.Rows, []string{id, prices[id].String()})
	}
	doc.Table(table)
	return doc.String()
}
