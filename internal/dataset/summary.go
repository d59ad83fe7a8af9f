package dataset

import (
	"fmt"
	"strings"
	"text/tabwriter"
)

const headRows = 5

// Summary produces a fixed-order human-readable report of the table: shape,
// column information, head rows, numeric statistics and missing-value counts.
// The text is displayed to users and embedded opaquely into LLM prompts.
func (t *Table) Summary() string {
	profile := t.Profile()

	var b strings.Builder

	fmt.Fprintf(&b, "Dataset Shape: %d rows, %d columns\n", profile.Rows, profile.Cols)

	b.WriteString("\nColumn Information:\n")
	for _, col := range profile.Columns {
		fmt.Fprintf(&b, "  %s (%s, %s), %d missing\n", col.Name, col.Type, col.Kind, col.NullCount)
	}

	b.WriteString("\nFirst few rows:\n")
	writeAligned(&b, t.Head(headRows))

	b.WriteString("\nBasic Statistics:\n")
	for _, col := range profile.NumericColumns {
		stats, err := t.Describe(col)
		if err != nil {
			fmt.Fprintf(&b, "  %s: no numeric values\n", col)
			continue
		}
		fmt.Fprintf(&b, "  %s: count=%d mean=%.4f std=%.4f min=%.4f 25%%=%.4f 50%%=%.4f 75%%=%.4f max=%.4f\n",
			col, stats.Count, stats.Mean, stats.Std, stats.Min, stats.Q1, stats.Median, stats.Q3, stats.Max)
	}

	b.WriteString("\nMissing Values:\n")
	for _, col := range profile.Columns {
		fmt.Fprintf(&b, "  %s: %d\n", col.Name, col.NullCount)
	}

	return b.String()
}

func writeAligned(b *strings.Builder, records [][]string) {
	w := tabwriter.NewWriter(b, 0, 0, 2, ' ', 0)
	for _, row := range records {
		fmt.Fprintln(w, "  "+strings.Join(row, "\t"))
	}
	w.Flush()
}
