package dataset

import (
	"github.com/Rrens/datachat/internal/domain"
	"github.com/go-gota/gota/series"
)

// classify maps an inferred column type to its kind
func classify(t series.Type) domain.ColumnKind {
	switch t {
	case series.Int, series.Float:
		return domain.KindNumeric
	case series.String:
		return domain.KindCategorical
	default:
		return domain.KindOther
	}
}

// Profile derives a read-only snapshot of the table: shape, ordered column
// names, per-column kind and missing-value counts
func (t *Table) Profile() *domain.Profile {
	names := t.df.Names()
	types := t.df.Types()

	profile := &domain.Profile{
		Rows:    t.df.Nrow(),
		Cols:    t.df.Ncol(),
		Columns: make([]domain.ColumnInfo, 0, len(names)),
	}

	for i, name := range names {
		kind := classify(types[i])

		nulls := 0
		for _, missing := range t.df.Col(name).IsNaN() {
			if missing {
				nulls++
			}
		}

		profile.Columns = append(profile.Columns, domain.ColumnInfo{
			Name:      name,
			Type:      string(types[i]),
			Kind:      kind,
			NullCount: nulls,
		})

		switch kind {
		case domain.KindNumeric:
			profile.NumericColumns = append(profile.NumericColumns, name)
		case domain.KindCategorical:
			profile.CategoricalColumns = append(profile.CategoricalColumns, name)
		}
	}

	return profile
}
