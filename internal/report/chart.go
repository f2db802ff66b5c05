package report

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/rshade/carboncalc/internal/emissions"
)

// Chart text and geometry.
const (
	ChartTitle      = "Émissions de CO2 par catégorie"
	ChartXLabel     = "Catégories"
	ChartYLabel     = "Émissions de CO2 (kg)"
	DefaultChartDPI = 300

	chartWidth  = 8 * vg.Inch
	chartHeight = 7 * vg.Inch
	barWidth    = 40
	// headroom leaves space above the tallest bar for its value label.
	headroom = 1.1
)

// palette cycles across categories: skyblue, lightgreen, salmon, lightcoral, violet.
//
//nolint:gochecknoglobals // fixed colour table
var palette = []color.RGBA{
	{R: 135, G: 206, B: 235, A: 255},
	{R: 144, G: 238, B: 144, A: 255},
	{R: 250, G: 128, B: 114, A: 255},
	{R: 240, G: 128, B: 128, A: 255},
	{R: 238, G: 130, B: 238, A: 255},
}

// ChartOptions controls chart rendering.
type ChartOptions struct {
	// DPI is the output resolution. Zero means DefaultChartDPI.
	DPI int
}

// BuildChart assembles the bar chart of category subtotals.
func BuildChart(subtotals []emissions.CategoryTotal) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = ChartTitle
	p.X.Label.Text = ChartXLabel
	p.Y.Label.Text = ChartYLabel

	grid := plotter.NewGrid()
	grid.Vertical.Color = nil
	grid.Horizontal.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	p.Add(grid)

	names := make([]string, 0, len(subtotals))
	points := make(plotter.XYs, 0, len(subtotals))
	labels := make([]string, 0, len(subtotals))
	maxValue := 0.0

	for i, sub := range subtotals {
		bar, err := plotter.NewBarChart(plotter.Values{sub.KgCO2}, vg.Points(barWidth))
		if err != nil {
			return nil, fmt.Errorf("bar for %q: %w", sub.Category, err)
		}
		bar.XMin = float64(i)
		bar.Color = palette[i%len(palette)]
		bar.LineStyle.Color = color.Black
		bar.LineStyle.Width = vg.Points(1)
		p.Add(bar)

		names = append(names, sub.Category)
		points = append(points, plotter.XY{X: float64(i), Y: sub.KgCO2})
		labels = append(labels, fmt.Sprintf("%.2f", sub.KgCO2))
		maxValue = math.Max(maxValue, sub.KgCO2)
	}

	if len(points) > 0 {
		values, err := plotter.NewLabels(plotter.XYLabels{XYs: points, Labels: labels})
		if err != nil {
			return nil, fmt.Errorf("value labels: %w", err)
		}
		for i := range values.TextStyle {
			values.TextStyle[i].XAlign = text.XCenter
			values.TextStyle[i].YAlign = text.YBottom
		}
		values.Offset = vg.Point{Y: vg.Points(2)}
		p.Add(values)
	}

	p.NominalX(names...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = text.XRight
	p.X.Tick.Label.YAlign = text.YCenter

	// Bars are centred on 0..n-1; pad half a slot on each side.
	p.X.Min = -0.5
	p.X.Max = float64(max(len(subtotals), 1)) - 0.5

	p.Y.Min = 0
	if maxValue > 0 {
		p.Y.Max = maxValue * headroom
	} else {
		p.Y.Max = 1
	}

	return p, nil
}

// WriteChart renders the chart as PNG to w.
func WriteChart(w io.Writer, subtotals []emissions.CategoryTotal, opts ChartOptions) error {
	p, err := BuildChart(subtotals)
	if err != nil {
		return err
	}

	dpi := opts.DPI
	if dpi <= 0 {
		dpi = DefaultChartDPI
	}

	c := vgimg.NewWith(vgimg.UseWH(chartWidth, chartHeight), vgimg.UseDPI(dpi))
	p.Draw(draw.New(c))

	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(w); err != nil {
		return fmt.Errorf("encoding png: %w", err)
	}
	return nil
}

// SaveChart writes the chart PNG to path, replacing any existing file.
func SaveChart(path string, subtotals []emissions.CategoryTotal, opts ChartOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("saving chart: %w", err)
	}

	if err := WriteChart(f, subtotals, opts); err != nil {
		_ = f.Close()
		return fmt.Errorf("saving chart %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("saving chart %s: %w", path, err)
	}
	return nil
}
