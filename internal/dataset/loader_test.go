package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Rrens/datachat/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `age,income,city
25,70000,Berlin
30,50000,Hamburg
35,80000,Berlin
28,NA,Munich
32,60000,Berlin
29,75000,Hamburg
`

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		tbl, err := Load(writeCSV(t, sampleCSV))
		require.NoError(t, err)

		assert.Equal(t, 6, tbl.Rows())
		assert.Equal(t, 3, tbl.Cols())
		assert.Equal(t, []string{"age", "income", "city"}, tbl.Names())
	})

	t.Run("not found", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.csv"))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("parse error", func(t *testing.T) {
		_, err := Load(writeCSV(t, "a,b\n1,2,3\n"))
		require.Error(t, err)

		var parseErr *ParseError
		assert.ErrorAs(t, err, &parseErr)
	})
}

func TestProfile(t *testing.T) {
	tbl, err := Load(writeCSV(t, sampleCSV))
	require.NoError(t, err)

	profile := tbl.Profile()

	assert.Equal(t, 6, profile.Rows)
	assert.Equal(t, 3, profile.Cols)
	assert.Equal(t, []string{"age", "income"}, profile.NumericColumns)
	assert.Equal(t, []string{"city"}, profile.CategoricalColumns)

	// numeric and categorical lists partition the non-other columns
	other := 0
	for _, col := range profile.Columns {
		if col.Kind == domain.KindOther {
			other++
		}
	}
	assert.Equal(t, len(profile.Columns), len(profile.NumericColumns)+len(profile.CategoricalColumns)+other)

	byName := make(map[string]domain.ColumnInfo)
	for _, col := range profile.Columns {
		byName[col.Name] = col
	}
	assert.Equal(t, domain.KindNumeric, byName["age"].Kind)
	assert.Equal(t, domain.KindCategorical, byName["city"].Kind)
	assert.Equal(t, 0, byName["age"].NullCount)
	assert.Equal(t, 1, byName["income"].NullCount)
}

func TestNumericValues(t *testing.T) {
	tbl, err := Load(writeCSV(t, sampleCSV))
	require.NoError(t, err)

	// missing income is stripped
	assert.Len(t, tbl.NumericValues("income"), 5)
	assert.Len(t, tbl.NumericValues("age"), 6)

	// raw column keeps the NaN placeholder
	assert.Len(t, tbl.NumericColumn("income"), 6)
}

func TestValueCounts(t *testing.T) {
	tbl, err := Load(writeCSV(t, sampleCSV))
	require.NoError(t, err)

	counts := tbl.ValueCounts("city", 10)
	require.Len(t, counts, 3)

	assert.Equal(t, ValueCount{Value: "Berlin", Count: 3}, counts[0])
	assert.Equal(t, ValueCount{Value: "Hamburg", Count: 2}, counts[1])
	assert.Equal(t, ValueCount{Value: "Munich", Count: 1}, counts[2])

	t.Run("topN truncates", func(t *testing.T) {
		assert.Len(t, tbl.ValueCounts("city", 2), 2)
	})

	t.Run("ties break by first appearance", func(t *testing.T) {
		tbl, err := Load(writeCSV(t, "c\nx\ny\nx\ny\nz\n"))
		require.NoError(t, err)

		counts := tbl.ValueCounts("c", 10)
		require.Len(t, counts, 3)
		assert.Equal(t, "x", counts[0].Value)
		assert.Equal(t, "y", counts[1].Value)
		assert.Equal(t, "z", counts[2].Value)
	})
}

func TestDescribe(t *testing.T) {
	tbl, err := Load(writeCSV(t, sampleCSV))
	require.NoError(t, err)

	stats, err := tbl.Describe("age")
	require.NoError(t, err)

	assert.Equal(t, 6, stats.Count)
	assert.InDelta(t, 29.8333, stats.Mean, 0.001)
	assert.Equal(t, 25.0, stats.Min)
	assert.Equal(t, 35.0, stats.Max)
	assert.GreaterOrEqual(t, stats.Q3, stats.Median)
	assert.GreaterOrEqual(t, stats.Median, stats.Q1)

	// missing values excluded from the count
	income, err := tbl.Describe("income")
	require.NoError(t, err)
	assert.Equal(t, 5, income.Count)
}
