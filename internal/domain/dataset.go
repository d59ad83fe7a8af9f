package domain

// ColumnKind classifies a column for downstream consumers
type ColumnKind string

const (
	KindNumeric     ColumnKind = "numeric"
	KindCategorical ColumnKind = "categorical"
	KindOther       ColumnKind = "other"
)

// ColumnInfo describes a single column of a loaded dataset
type ColumnInfo struct {
	Name      string     `json:"name"`
	Type      string     `json:"type"`
	Kind      ColumnKind `json:"kind"`
	NullCount int        `json:"null_count"`
}

// Profile is a read-only snapshot of a dataset taken at load time.
// Column classification is fixed for the profile's lifetime; the numeric
// and categorical lists partition the columns not classified as "other".
type Profile struct {
	Rows               int          `json:"rows"`
	Cols               int          `json:"cols"`
	Columns            []ColumnInfo `json:"columns"`
	NumericColumns     []string     `json:"numeric_columns"`
	CategoricalColumns []string     `json:"categorical_columns"`
}
