package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/cryptofolio"
	md "github.com/nao1215/markdown"
)

// HistoryMarkdown renders the stored analysis points of a symbol.
func HistoryMarkdown(symbol string, points []cryptofolio.HistoryPoint) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("History for %s", symbol))
	if len(points) == 0 {
		doc.PlainText("No history yet, run an analysis first.")
		return doc.String()
	}

	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
		},
		Header: []string{"Time", "Wallet", "Price", "Net Value", "Change"},
		Rows:   [][]string{},
	}
	for _, p := range points {
		table.Rows = append(table.Rows, []string{
			p.Timestamp.Local().Format("2006-01-02 15:04"),
			orDash(p.Wallet),
			p.Price.String(),
			p.Net.String(),
			change(p.Change),
		})
	}
	doc.Table(table)

	return doc.String()
}

// MarketMarkdown renders a market price series, one row per day at most.
func MarketMarkdown(coin, days string, points []cryptofolio.PricePoint) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Market price of %s (%s days)", coin, days))
	if len(points) == 0 {
		doc.PlainText("No data.")
		return doc.String()
	}

	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"Date", "Price"},
		Rows:      [][]string{},
	}
	last := ""
	for _, p := range points {
		day := p.Time.Format("2006-01-02")
		if day == last {
			continue
		}
		last = day
		table.Rows = append(table.Rows, []string{day, p.Price.String()})
	}
	doc.Table(table)

	first, end := points[0].Price, points[len(points)-1].Price
	if first.IsPositive() {
		doc.PlainText(fmt.Sprintf("Change over the period: %s", cryptofolio.Percent(100*end.Sub(first).Ratio(first)).SignedString()))
	}
	return doc.String()
}
