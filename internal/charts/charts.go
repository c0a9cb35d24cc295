// Package charts renders the trend charts from normalized data. Null values
// are left out of lines and drawn as zero-height bars.
package charts

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"paytrends/internal/atomicfile"
	"paytrends/internal/gdp"
	"paytrends/internal/inclusion"
	"paytrends/internal/transactions"
)

// ErrNoData is returned when there is nothing to draw.
var ErrNoData = errors.New("charts: no data")

// MonthlyLines draws one line per year of p across its month order.
func MonthlyLines(p transactions.Pivot, title, ylabel, path string) error {
	pl := plot.New()
	pl.Title.Text = title
	pl.Title.TextStyle.Font.Size = vg.Points(16)
	pl.X.Label.Text = "Month"
	pl.Y.Label.Text = ylabel
	pl.Legend.Top = true

	drawn := 0
	for i, year := range p.Years {
		var pts plotter.XYs
		for m, c := range p.Series(year) {
			if c.Valid {
				pts = append(pts, plotter.XY{X: float64(m), Y: c.Decimal.InexactFloat64()})
			}
		}
		if len(pts) == 0 {
			continue
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(2)
		pl.Add(line)
		pl.Legend.Add(strconv.Itoa(year), line)
		drawn++
	}
	if drawn == 0 {
		return ErrNoData
	}
	pl.Add(plotter.NewGrid())
	pl.NominalX(p.Months...)
	return save(pl, 16*vg.Inch, 8*vg.Inch, path)
}

// GDPTrend draws GDP by year for the given records, normally one country.
func GDPTrend(records []gdp.Record, title, path string) error {
	var pts plotter.XYs
	for _, r := range records {
		if r.GDP.Valid {
			pts = append(pts, plotter.XY{X: float64(r.Year), Y: r.GDP.Decimal.InexactFloat64()})
		}
	}
	if len(pts) == 0 {
		return ErrNoData
	}
	slices.SortFunc(pts, func(a, b plotter.XY) int { return int(a.X - b.X) })

	pl := plot.New()
	pl.Title.Text = title
	pl.Title.TextStyle.Font.Size = vg.Points(16)
	pl.X.Label.Text = "Year"
	pl.Y.Label.Text = "GDP (current US$)"

	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return err
	}
	line.Color = color.RGBA{R: 0, G: 100, B: 0, A: 255}
	line.Width = vg.Points(2)
	points.Shape = draw.CircleGlyph{}
	pl.Add(line, points, plotter.NewGrid())
	return save(pl, 16*vg.Inch, 8*vg.Inch, path)
}

// InclusionBars draws one group of bars per indicator, one bar per year,
// labelled with the cleaned indicator label.
func InclusionBars(indicators []inclusion.Indicator, years []int, path string) error {
	if len(indicators) == 0 || len(years) == 0 {
		return ErrNoData
	}
	pl := plot.New()
	pl.Title.Text = "Financial inclusion by indicator"
	pl.Title.TextStyle.Font.Size = vg.Points(16)
	pl.Y.Label.Text = "% age 15+"
	pl.Legend.Top = true

	width := vg.Points(20)
	labels := make([]string, len(indicators))
	for i, ind := range indicators {
		labels[i] = ind.CleanLabel
	}
	for j, year := range years {
		values := make(plotter.Values, len(indicators))
		for i, ind := range indicators {
			if j < len(ind.Values) && ind.Values[j].Valid {
				values[i] = ind.Values[j].Decimal.InexactFloat64()
			}
		}
		bars, err := plotter.NewBarChart(values, width)
		if err != nil {
			return err
		}
		bars.Color = plotutil.Color(j)
		bars.LineStyle.Width = vg.Length(0)
		bars.Offset = vg.Length(float64(j)-float64(len(years)-1)/2) * width
		pl.Add(bars)
		pl.Legend.Add(strconv.Itoa(year), bars)
	}
	pl.NominalX(labels...)
	pl.X.Tick.Label.Rotation = math.Pi / 6
	pl.X.Tick.Label.XAlign = draw.XRight
	pl.X.Tick.Label.YAlign = draw.YCenter
	return save(pl, 20*vg.Inch, 10*vg.Inch, path)
}

// Histogram draws the distribution of values in bins buckets. Nulls are
// skipped.
func Histogram(values []decimal.NullDecimal, title string, bins int, path string) error {
	var vs plotter.Values
	for _, v := range values {
		if v.Valid {
			vs = append(vs, v.Decimal.InexactFloat64())
		}
	}
	if len(vs) == 0 {
		return ErrNoData
	}
	if bins <= 0 {
		bins = 20
	}
	pl := plot.New()
	pl.Title.Text = title
	pl.Y.Label.Text = "Count"
	h, err := plotter.NewHist(vs, bins)
	if err != nil {
		return err
	}
	h.FillColor = color.RGBA{R: 70, G: 130, B: 180, A: 255}
	pl.Add(h)
	return save(pl, 10*vg.Inch, 6*vg.Inch, path)
}

func save(pl *plot.Plot, w, h vg.Length, path string) error {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if format == "" {
		return fmt.Errorf("charts: %s: no image format extension", path)
	}
	wt, err := pl.WriterTo(w, h, format)
	if err != nil {
		return fmt.Errorf("charts: %s: %w", path, err)
	}
	return atomicfile.Write(path, func(out io.Writer) error {
		_, err := wt.WriteTo(out)
		return err
	})
}
