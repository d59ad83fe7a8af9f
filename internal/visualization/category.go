package visualization

import (
	"fmt"

	"github.com/Rrens/datachat/internal/domain"
)

// Category identifies one of the chart kinds the generator knows how to
// produce. The set is closed; there is no dynamic registration.
type Category string

const (
	Distribution Category = "distribution"
	Correlation  Category = "correlation"
	Boxplot      Category = "boxplot"
	Countplot    Category = "countplot"
)

// Categories lists all plot categories in generation order
var Categories = []Category{Distribution, Correlation, Boxplot, Countplot}

// categorySpec is the static metadata driving plan and selection logic
type categorySpec struct {
	Description string
	Kind        domain.ColumnKind // column kind the category draws from
	PerColumn   bool              // one plot per column vs a single plot
	Cap         int               // max columns attempted, 0 means no cap
	MinColumns  int               // matching columns required to produce anything
}

var specs = map[Category]categorySpec{
	Distribution: {
		Description: "Histograms showing the distribution of numeric columns",
		Kind:        domain.KindNumeric,
		PerColumn:   true,
		Cap:         5,
		MinColumns:  1,
	},
	Correlation: {
		Description: "Annotated heat map of pairwise correlations across all numeric columns",
		Kind:        domain.KindNumeric,
		PerColumn:   false,
		MinColumns:  2,
	},
	Boxplot: {
		Description: "Box plots summarizing the spread of numeric columns",
		Kind:        domain.KindNumeric,
		PerColumn:   true,
		Cap:         5,
		MinColumns:  1,
	},
	Countplot: {
		Description: "Bar charts of the top 10 most frequent values in categorical columns",
		Kind:        domain.KindCategorical,
		PerColumn:   true,
		Cap:         5,
		MinColumns:  1,
	},
}

// Description returns the human-readable description of the category
func (c Category) Description() string {
	return specs[c].Description
}

// ParseCategory converts a string into a known Category
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if _, ok := specs[c]; !ok {
		return "", fmt.Errorf("unknown plot category: %s", s)
	}
	return c, nil
}

// columnsFor returns the profile columns a category draws from, in source order
func columnsFor(c Category, profile *domain.Profile) []string {
	switch specs[c].Kind {
	case domain.KindNumeric:
		return profile.NumericColumns
	default:
		return profile.CategoricalColumns
	}
}

// Plan computes, per category, how many plots would be generated for the
// profile. Used by the web selector for count hints.
func Plan(profile *domain.Profile) map[Category]int {
	counts := make(map[Category]int, len(Categories))
	for _, c := range Categories {
		spec := specs[c]
		cols := columnsFor(c, profile)
		if len(cols) < spec.MinColumns {
			counts[c] = 0
			continue
		}
		if !spec.PerColumn {
			counts[c] = 1
			continue
		}
		n := len(cols)
		if spec.Cap > 0 && n > spec.Cap {
			n = spec.Cap
		}
		counts[c] = n
	}
	return counts
}
