package renderer

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/etnz/cryptofolio"
	md "github.com/nao1215/markdown"
)

// EntriesMarkdown renders the portfolio records as a table.
func EntriesMarkdown(title string, entries cryptofolio.Entries) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(title)
	if len(entries) == 0 {
		doc.PlainText("The portfolio is empty.")
		return doc.String()
	}

	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignRight,
			md.AlignLeft,
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignLeft,
			md.AlignLeft,
			md.AlignLeft,
		},
		Header: []string{"ID", "Symbol", "Coin", "Amount", "Buy Price", "Fee Buy", "Fee Sell", "Type", "Wallet", "Kind"},
		Rows:   [][]string{},
	}
	for _, e := range entries {
		price, feeBuy, feeSell := e.BuyPrice.String(), e.FeeBuyPercent.String(), e.FeeSellPercent.String()
		if e.Kind == cryptofolio.Staking {
			price, feeBuy, feeSell = "-", "-", "-"
		}
		table.Rows = append(table.Rows, []string{
			strconv.FormatInt(e.ID, 10),
			symbol(e.Symbol, e.Type),
			e.Coin,
			e.Amount.String(),
			price,
			feeBuy,
			feeSell,
			e.Type.String(),
			orDash(e.Wallet),
			e.Kind.String(),
		})
	}
	doc.Table(table)
	doc.PlainText(fmt.Sprintf("%d entries.", len(entries)))

	return doc.String()
}
