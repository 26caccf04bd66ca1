// Package chart draws portfolio charts as SVG or PNG images.
package chart

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/etnz/cryptofolio"
	gochart "github.com/wcharczuk/go-chart/v2"
)

// ErrNotEnoughData is returned when there is nothing meaningful to draw.
var ErrNotEnoughData = errors.New("not enough data to draw a chart")

// Format is an image format.
type Format int

const (
	SVG Format = iota
	PNG
)

func (f Format) provider() gochart.RendererProvider {
	if f == PNG {
		return gochart.PNG
	}
	return gochart.SVG
}

// ContentType is the MIME type of the format.
func (f Format) ContentType() string {
	if f == PNG {
		return "image/png"
	}
	return "image/svg+xml"
}

// Ext is the file extension of the format, dot included.
func (f Format) Ext() string {
	if f == PNG {
		return ".png"
	}
	return ".svg"
}

// FormatOf guesses the format from a file name, defaulting to PNG.
func FormatOf(name string) Format {
	if strings.EqualFold(filepath.Ext(name), ".svg") {
		return SVG
	}
	return PNG
}

const (
	width  = 1000
	height = 500
)

// History draws the net value evolution of a symbol, one line per wallet.
func History(w io.Writer, f Format, symbol string, points []cryptofolio.HistoryPoint) error {
	byWallet := make(map[string]*gochart.TimeSeries)
	var wallets []string
	for _, p := range points {
		s, ok := byWallet[p.Wallet]
		if !ok {
			name := p.Wallet
			if name == "" {
				name = "all wallets"
			}
			s = &gochart.TimeSeries{Name: name}
			byWallet[p.Wallet] = s
			wallets = append(wallets, p.Wallet)
		}
		s.XValues = append(s.XValues, p.Timestamp)
		s.YValues = append(s.YValues, p.Net.AsFloat())
	}
	slices.Sort(wallets)

	var series []gochart.Series
	for _, wallet := range wallets {
		if s := byWallet[wallet]; usable(s.XValues, s.YValues) {
			series = append(series, *s)
		}
	}
	if len(series) == 0 {
		return ErrNotEnoughData
	}
	return renderTimeChart(w, f, fmt.Sprintf("%s net value", symbol), "Net value", series)
}

// Market draws a market price series.
func Market(w io.Writer, f Format, coin string, points []cryptofolio.PricePoint) error {
	s := gochart.TimeSeries{Name: coin}
	for _, p := range points {
		s.XValues = append(s.XValues, p.Time)
		s.YValues = append(s.YValues, p.Price.AsFloat())
	}
	if !usable(s.XValues, s.YValues) {
		return ErrNotEnoughData
	}
	return renderTimeChart(w, f, fmt.Sprintf("%s market price", coin), "Price", []gochart.Series{s})
}

// Timeline draws the cumulative investment, one step per entry.
func Timeline(w io.Writer, f Format, points []cryptofolio.TimelinePoint) error {
	s := gochart.ContinuousSeries{Name: "Cumulative investment"}
	for i, p := range points {
		s.XValues = append(s.XValues, float64(i+1))
		s.YValues = append(s.YValues, p.Cumulative.AsFloat())
	}
	if len(points) < 2 || !anyPositive(s.YValues) {
		return ErrNotEnoughData
	}
	graph := gochart.Chart{
		Title:  "Cumulative investment",
		Width:  width,
		Height: height,
		XAxis:  gochart.XAxis{Name: "Entries"},
		YAxis:  gochart.YAxis{Name: "Investment", Range: flatRange(s.YValues)},
		Series: []gochart.Series{s},
	}
	return render(graph.Render(f.provider(), w))
}

// Pie draws the shares as a pie chart. Shares with no positive amount are skipped.
func Pie(w io.Writer, f Format, title string, shares []cryptofolio.Share) error {
	vals := values(shares)
	if len(vals) == 0 {
		return ErrNotEnoughData
	}
	pie := gochart.PieChart{
		Title:  title,
		Width:  height,
		Height: height,
		Values: vals,
	}
	return render(pie.Render(f.provider(), w))
}

// Bar draws the shares as a bar chart. Shares with no positive amount are skipped.
func Bar(w io.Writer, f Format, title string, shares []cryptofolio.Share) error {
	vals := values(shares)
	if len(vals) == 0 {
		return ErrNotEnoughData
	}
	bar := gochart.BarChart{
		Title:    title,
		Width:    width,
		Height:   height,
		BarWidth: 60,
		Bars:     vals,
	}
	return render(bar.Render(f.provider(), w))
}

func values(shares []cryptofolio.Share) []gochart.Value {
	var res []gochart.Value
	for _, s := range shares {
		if !s.Amount.IsPositive() {
			continue
		}
		res = append(res, gochart.Value{Label: s.Label, Value: s.Amount.AsFloat()})
	}
	return res
}

func renderTimeChart(w io.Writer, f Format, title, yName string, series []gochart.Series) error {
	var ys []float64
	for _, s := range series {
		ys = append(ys, s.(gochart.TimeSeries).YValues...)
	}
	graph := gochart.Chart{
		Title:  title,
		Width:  width,
		Height: height,
		XAxis: gochart.XAxis{
			Name:           "Date",
			ValueFormatter: gochart.TimeValueFormatterWithFormat("2006-01-02"),
		},
		YAxis:  gochart.YAxis{Name: yName, Range: flatRange(ys)},
		Series: series,
	}
	graph.Elements = []gochart.Renderable{gochart.Legend(&graph)}
	return render(graph.Render(f.provider(), w))
}

// usable reports whether a time series spans more than one instant and holds a positive value.
func usable(xs []time.Time, ys []float64) bool {
	if len(xs) < 2 {
		return false
	}
	first := xs[0]
	spans := false
	for _, x := range xs[1:] {
		if !x.Equal(first) {
			spans = true
			break
		}
	}
	return spans && anyPositive(ys)
}

func anyPositive(ys []float64) bool {
	for _, y := range ys {
		if y > 0 {
			return true
		}
	}
	return false
}

// flatRange returns a fixed range around a constant series, nil otherwise.
// A zero y delta cannot be drawn.
func flatRange(ys []float64) gochart.Range {
	if len(ys) == 0 {
		return nil
	}
	lo, hi := slices.Min(ys), slices.Max(ys)
	if lo != hi {
		return nil
	}
	return &gochart.ContinuousRange{Min: lo * 0.9, Max: lo*1.1 + 1}
}

func render(err error) error {
	if err != nil {
		return fmt.Errorf("rendering chart: %w", err)
	}
	return nil
}
