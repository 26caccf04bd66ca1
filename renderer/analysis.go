package renderer

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/etnz/cryptofolio"
	md "github.com/nao1215/markdown"
)

// AnalysisMarkdown renders an analysis with its alerts.
func AnalysisMarkdown(a *cryptofolio.Analysis, alerts []cryptofolio.Alert, at time.Time) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	title := "Portfolio Analysis"
	if a.ByWallet {
		title = "Portfolio Analysis by Wallet"
	}
	doc.H1(title)
	doc.PlainText(fmt.Sprintf("Prices in %s on %s", a.Currency, at.Format("2006-01-02 15:04:05")))
	if note := otherCurrency(a.OtherCurrency, a.Currency); note != "" {
		doc.PlainText(note)
	}

	if len(a.Rows) == 0 {
		doc.PlainText("The portfolio is empty.")
		return doc.String()
	}

	header := []string{"Symbol", "Amount", "Avg Buy Price", "Fee Buy", "Fee Sell", "Price", "Invested", "Net Value", "Change", "Type"}
	alignment := []md.TableAlignment{
		md.AlignLeft,
		md.AlignRight,
		md.AlignRight,
		md.AlignRight,
		md.AlignRight,
		md.AlignRight,
		md.AlignRight,
		md.AlignRight,
		md.AlignRight,
		md.AlignLeft,
	}
	if a.ByWallet {
		header = append(header, "Wallet")
		alignment = append(alignment, md.AlignLeft)
	}
	table := md.TableSet{Alignment: alignment, Header: header, Rows: [][]string{}}
	for _, r := range a.Rows {
		price := r.CurrentPrice.String()
		if r.MissingPrice {
			price = "n/a"
		}
		row := []string{
			symbol(r.Symbol, r.Type),
			r.Amount.String(),
			r.AvgBuyPrice.String(),
			r.AvgFeeBuy.String(),
			r.AvgFeeSell.String(),
			price,
			r.Invested.String(),
			r.Net.String(),
			change(r.Return),
			r.Type.String(),
		}
		if a.ByWallet {
			row = append(row, orDash(r.Wallet))
		}
		table.Rows = append(table.Rows, row)
	}
	doc.Table(table)

	doc.H2("Total")
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{md.Bold("Net Value"), md.Bold(a.Total.Net.String())},
		Rows: [][]string{
			{"Invested", a.Total.Invested.String()},
			{"Gain", a.Total.Change().SignedString()},
			{"Change", change(a.Total.Return)},
		},
	})

	if missing := a.MissingPrices(); len(missing) > 0 {
		doc.PlainText(fmt.Sprintf("No price for %s: valued at zero, left out of the total.", strings.Join(missing, ", ")))
	}

	if len(alerts) > 0 {
		doc.H2("Alerts")
		items := make([]string, 0, len(alerts))
		for _, al := range alerts {
			items = append(items, AlertLine(al))
		}
		doc.BulletList(items...)
	}

	return doc.String()
}

// AlertLine is the one line text of an alert.
func AlertLine(al cryptofolio.Alert) string {
	icon := "🚀"
	if al.Kind == cryptofolio.StopLoss {
		icon = "⚠️"
	}
	return icon + " " + al.String()
}
