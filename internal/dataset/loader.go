package dataset

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/stat"
)

// ErrNotFound indicates the dataset file does not exist
var ErrNotFound = errors.New("dataset file not found")

// ParseError wraps the underlying parser error for unreadable files
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// nanValues are the record values treated as missing during parsing
var nanValues = []string{"", "NA", "N/A", "null", "NaN"}

// Table is an in-memory rectangular dataset with named typed columns.
// It is loaded once per session and treated as read-only by consumers.
type Table struct {
	df   dataframe.DataFrame
	path string
}

// Load reads a delimited file into a Table with per-column type inference
func Load(path string) (*Table, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	df := dataframe.ReadCSV(f,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(nanValues),
	)
	if df.Err != nil {
		return nil, &ParseError{Path: path, Err: df.Err}
	}

	return &Table{df: df, path: path}, nil
}

// Path returns the source file the table was loaded from
func (t *Table) Path() string {
	return t.path
}

// Rows returns the number of data records
func (t *Table) Rows() int {
	return t.df.Nrow()
}

// Cols returns the number of columns
func (t *Table) Cols() int {
	return t.df.Ncol()
}

// Names returns the ordered column names
func (t *Table) Names() []string {
	return t.df.Names()
}

// Head returns the header row followed by up to n data rows
func (t *Table) Head(n int) [][]string {
	records := t.df.Records()
	if len(records) > n+1 {
		records = records[:n+1]
	}
	return records
}

// NumericValues returns the non-missing values of a numeric column in
// source order
func (t *Table) NumericValues(col string) []float64 {
	s := t.df.Col(col)
	if s.Err != nil {
		return nil
	}
	raw := s.Float()
	values := make([]float64, 0, len(raw))
	for _, v := range raw {
		if v == v { // skip NaN
			values = append(values, v)
		}
	}
	return values
}

// NumericColumn returns all values of a numeric column in source order,
// with NaN marking missing entries
func (t *Table) NumericColumn(col string) []float64 {
	s := t.df.Col(col)
	if s.Err != nil {
		return nil
	}
	return s.Float()
}

// ValueCount is one categorical value and its frequency
type ValueCount struct {
	Value string
	Count int
}

// ValueCounts returns the topN most frequent values of a column, ordered by
// frequency descending with ties broken by first appearance
func (t *Table) ValueCounts(col string, topN int) []ValueCount {
	s := t.df.Col(col)
	if s.Err != nil {
		return nil
	}

	records := s.Records()
	missing := s.IsNaN()

	counts := make(map[string]int)
	order := make(map[string]int)
	var values []string
	for i, v := range records {
		if i < len(missing) && missing[i] {
			continue
		}
		if _, seen := counts[v]; !seen {
			order[v] = len(values)
			values = append(values, v)
		}
		counts[v]++
	}

	sort.SliceStable(values, func(i, j int) bool {
		if counts[values[i]] != counts[values[j]] {
			return counts[values[i]] > counts[values[j]]
		}
		return order[values[i]] < order[values[j]]
	})

	if len(values) > topN {
		values = values[:topN]
	}

	result := make([]ValueCount, 0, len(values))
	for _, v := range values {
		result = append(result, ValueCount{Value: v, Count: counts[v]})
	}
	return result
}

// Stats holds descriptive statistics for a numeric column
type Stats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

// Describe computes descriptive statistics over the non-missing values of a
// numeric column
func (t *Table) Describe(col string) (Stats, error) {
	values := t.NumericValues(col)
	if len(values) == 0 {
		return Stats{}, fmt.Errorf("column %s has no numeric values", col)
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return Stats{
		Count:  len(values),
		Mean:   stat.Mean(values, nil),
		Std:    stat.StdDev(values, nil),
		Min:    sorted[0],
		Q1:     stat.Quantile(0.25, stat.Empirical, sorted, nil),
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		Q3:     stat.Quantile(0.75, stat.Empirical, sorted, nil),
		Max:    sorted[len(sorted)-1],
	}, nil
}
