package visualization

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/Rrens/datachat/internal/dataset"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

const (
	histogramBins = 30
	topValues     = 10

	plotWidth  = 8 * vg.Inch
	plotHeight = 6 * vg.Inch
	gridSize   = 8 * vg.Inch
)

// Generator renders plot categories for a table into PNG files. Each call is
// a self-contained pass; re-running with identical inputs overwrites files of
// the same computed name.
type Generator struct {
	log zerolog.Logger
}

// NewGenerator creates a plot generator
func NewGenerator(log zerolog.Logger) *Generator {
	return &Generator{log: log}
}

// Generate produces the plots selected by requested into outDir and returns
// the generated file paths in generation order. A nil request means all
// categories; an empty request generates nothing. Per-plot failures are
// logged and skipped, never escalated.
func (g *Generator) Generate(tbl *dataset.Table, outDir string, requested []Category) ([]string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", outDir, err)
	}

	selected := make(map[Category]bool, len(Categories))
	if requested == nil {
		for _, c := range Categories {
			selected[c] = true
		}
	} else {
		for _, c := range requested {
			selected[c] = true
		}
	}

	profile := tbl.Profile()
	paths := []string{}

	for _, cat := range Categories {
		if !selected[cat] {
			continue
		}

		spec := specs[cat]
		cols := columnsFor(cat, profile)
		if len(cols) < spec.MinColumns {
			continue
		}

		if !spec.PerColumn {
			path := filepath.Join(outDir, "correlation_heatmap.png")
			if err := g.renderCorrelation(tbl, cols, path); err != nil {
				g.log.Warn().Str("category", string(cat)).Err(err).Msg("skipping plot")
				continue
			}
			paths = append(paths, path)
			continue
		}

		n := len(cols)
		if spec.Cap > 0 && n > spec.Cap {
			n = spec.Cap
		}
		for _, col := range cols[:n] {
			path := filepath.Join(outDir, fmt.Sprintf("%s_%s.png", cat, col))
			if err := g.render(cat, tbl, col, path); err != nil {
				g.log.Warn().Str("category", string(cat)).Str("column", col).Err(err).Msg("skipping plot")
				continue
			}
			paths = append(paths, path)
		}
	}

	return paths, nil
}

func (g *Generator) render(cat Category, tbl *dataset.Table, col, path string) error {
	switch cat {
	case Distribution:
		return renderHistogram(tbl, col, path)
	case Boxplot:
		return renderBoxPlot(tbl, col, path)
	case Countplot:
		return renderCountPlot(tbl, col, path)
	default:
		return fmt.Errorf("category %s has no per-column renderer", cat)
	}
}

func renderHistogram(tbl *dataset.Table, col, path string) error {
	values := tbl.NumericValues(col)
	if len(values) == 0 {
		return fmt.Errorf("column %s has no numeric values", col)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Distribution of %s", col)
	p.X.Label.Text = col
	p.Y.Label.Text = "Frequency"

	hist, err := plotter.NewHist(plotter.Values(values), histogramBins)
	if err != nil {
		return fmt.Errorf("failed to build histogram for %s: %w", col, err)
	}
	p.Add(hist)

	return p.Save(plotWidth, plotHeight, path)
}

func renderBoxPlot(tbl *dataset.Table, col, path string) error {
	values := tbl.NumericValues(col)
	if len(values) == 0 {
		return fmt.Errorf("column %s has no numeric values", col)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Box Plot of %s", col)
	p.Y.Label.Text = col

	box, err := plotter.NewBoxPlot(vg.Points(40), 0, plotter.Values(values))
	if err != nil {
		return fmt.Errorf("failed to build box plot for %s: %w", col, err)
	}
	p.Add(box)
	p.NominalX(col)

	return p.Save(plotWidth, plotHeight, path)
}

func renderCountPlot(tbl *dataset.Table, col, path string) error {
	counts := tbl.ValueCounts(col, topValues)
	if len(counts) == 0 {
		return fmt.Errorf("column %s has no values", col)
	}

	values := make(plotter.Values, len(counts))
	labels := make([]string, len(counts))
	for i, vc := range counts {
		values[i] = float64(vc.Count)
		labels[i] = vc.Value
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Top %d Values in %s", topValues, col)
	p.X.Label.Text = col
	p.Y.Label.Text = "Count"

	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return fmt.Errorf("failed to build bar chart for %s: %w", col, err)
	}
	p.Add(bars)
	p.NominalX(labels...)

	return p.Save(plotWidth, plotHeight, path)
}

func (g *Generator) renderCorrelation(tbl *dataset.Table, cols []string, path string) error {
	matrix := correlationMatrix(tbl, cols)

	p := plot.New()
	p.Title.Text = "Correlation Heatmap"

	colors := moreland.SmoothBlueRed()
	colors.SetMin(-1)
	colors.SetMax(1)

	hm := plotter.NewHeatMap(corrGrid(matrix), colors.Palette(255))
	hm.Min, hm.Max = -1, 1
	p.Add(hm)

	labels, err := cellLabels(matrix)
	if err != nil {
		return fmt.Errorf("failed to build heat map labels: %w", err)
	}
	p.Add(labels)

	p.NominalX(cols...)
	p.NominalY(cols...)

	return p.Save(gridSize, gridSize, path)
}

// correlationMatrix computes pairwise Pearson correlations over rows where
// both columns have values
func correlationMatrix(tbl *dataset.Table, cols []string) [][]float64 {
	data := make([][]float64, len(cols))
	for i, col := range cols {
		data[i] = tbl.NumericColumn(col)
	}

	m := make([][]float64, len(cols))
	for i := range m {
		m[i] = make([]float64, len(cols))
		m[i][i] = 1
	}

	for i := 0; i < len(cols); i++ {
		for j := i + 1; j < len(cols); j++ {
			x, y := completePairs(data[i], data[j])
			r := math.NaN()
			if len(x) >= 2 {
				r = stat.Correlation(x, y, nil)
			}
			m[i][j], m[j][i] = r, r
		}
	}

	return m
}

func completePairs(a, b []float64) ([]float64, []float64) {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	x := make([]float64, 0, n)
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if a[i] == a[i] && b[i] == b[i] {
			x = append(x, a[i])
			y = append(y, b[i])
		}
	}
	return x, y
}

// corrGrid adapts a correlation matrix to the heat map's grid interface
type corrGrid [][]float64

func (g corrGrid) Dims() (int, int) { return len(g), len(g) }

// Z renders pairs with fewer than two complete observations as neutral
func (g corrGrid) Z(c, r int) float64 {
	v := g[r][c]
	if v != v {
		return 0
	}
	return v
}

func (g corrGrid) X(c int) float64 { return float64(c) }
func (g corrGrid) Y(r int) float64 { return float64(r) }

func cellLabels(matrix [][]float64) (*plotter.Labels, error) {
	n := len(matrix)
	xys := make(plotter.XYs, 0, n*n)
	texts := make([]string, 0, n*n)
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			v := matrix[r][c]
			if v != v {
				continue
			}
			xys = append(xys, plotter.XY{X: float64(c), Y: float64(r)})
			texts = append(texts, fmt.Sprintf("%.2f", v))
		}
	}
	return plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: texts})
}
