package renderer

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/etnz/cryptofolio"
	md "github.com/nao1215/markdown"
)

func SummaryMarkdown(s *cryptofolio.Summary) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Portfolio Summary")
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"Total Entries", strconv.Itoa(s.Entries)},
		Rows: [][]string{
			{"Unique Coins", strconv.Itoa(s.Coins)},
			{"Wallets", strconv.Itoa(s.Wallets)},
			{"Total Amount", s.TotalAmount.String()},
		},
	})
	if note := otherCurrency(s.OtherCurrency, s.Currency); note != "" {
		doc.PlainText(note)
	}
	if s.Entries == 0 {
		return doc.String()
	}

	doc.H2("By Symbol")
	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
		},
		Header: []string{"Symbol", "Total Amount", "Mean Buy Price", "Total Investment", "Purchases", "Staking Gains"},
		Rows:   [][]string{},
	}
	for _, ss := range s.Symbols {
		table.Rows = append(table.Rows, []string{
			ss.Symbol,
			ss.Amount.String(),
			ss.MeanPrice.String(),
			ss.Investment.String(),
			strconv.Itoa(ss.Purchases),
			strconv.Itoa(ss.StakingGains),
		})
	}
	doc.Table(table)

	doc.H2("By Wallet")
	wallets := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignLeft},
		Header:    []string{"Wallet", "Total Amount", "Entries", "Coins"},
		Rows:      [][]string{},
	}
	for _, ws := range s.WalletRows {
		wallets.Rows = append(wallets.Rows, []string{
			ws.Wallet,
			ws.Amount.String(),
			strconv.Itoa(ws.Entries),
			strings.Join(ws.Symbols, ", "),
		})
	}
	doc.Table(wallets)

	doc.H2("By Type")
	types := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight},
		Header:    []string{"Type", "Total Amount", "Share"},
		Rows:      [][]string{},
	}
	for _, sh := range s.ByType {
		types.Rows = append(types.Rows, []string{
			sh.Label,
			sh.Amount.String(),
			share(sh.Amount, s.TotalAmount).String(),
		})
	}
	doc.Table(types)

	if n := len(s.Timeline); n > 0 {
		doc.PlainText(fmt.Sprintf("Cumulative investment: %s over %d entries.", s.Timeline[n-1].Cumulative, n))
	}
	return doc.String()
}

func share(part, total cryptofolio.Quantity) cryptofolio.Percent {
	if total.IsZero() {
		return 0
	}
	return cryptofolio.Percent(100 * part.Div(total).AsFloat())
}
