package renderer

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/etnz/cryptofolio/store"
	md "github.com/nao1215/markdown"
)

// DatabaseMarkdown renders the database information.
func DatabaseMarkdown(info store.Info) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Database")
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"File", code(info.Path)},
		Rows: [][]string{
			{"Size", humanSize(info.Size)},
			{"Entries", strconv.Itoa(info.Entries)},
			{"History Rows", strconv.Itoa(info.History)},
			{"Snapshots", strconv.Itoa(info.Snapshots)},
		},
	})
	return doc.String()
}

// SchemaMarkdown renders the columns of every table.
func SchemaMarkdown(tables []store.Table) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Schema")
	for _, t := range tables {
		doc.H2(t.Name)
		table := md.TableSet{
			Alignment: []md.TableAlignment{md.AlignRight, md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignLeft},
			Header:    []string{"#", "Column", "Type", "Not Null", "Default", "Key"},
			Rows:      [][]string{},
		}
		for _, c := range t.Columns {
			notNull, key := "", ""
			if c.NotNull {
				notNull = "yes"
			}
			if c.PK > 0 {
				key = "primary"
			}
			table.Rows = append(table.Rows, []string{
				strconv.Itoa(c.CID),
				c.Name,
				c.Type,
				notNull,
				c.Default.String,
				key,
			})
		}
		doc.Table(table)
	}
	return doc.String()
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
