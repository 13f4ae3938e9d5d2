package ml

import (
	"errors"
	"fmt"
	"sort"
)

// EncodedVector is a model input row aligned to the canonical column list.
type EncodedVector struct {
	Columns []string
	Values  []float64
}

// Get returns the value stored under a column name.
func (v EncodedVector) Get(name string) (float64, bool) {
	for i, column := range v.Columns {
		if column == name {
			return v.Values[i], true
		}
	}
	return 0, false
}

// Encoder aligns raw records to the column list a model was trained with.
type Encoder struct {
	columns []string
	index   map[string]int
}

// NewEncoder validates the canonical column list and indexes it.
func NewEncoder(columns []string) (*Encoder, error) {
	if len(columns) == 0 {
		return nil, errors.New("feature column list is empty")
	}
	index := make(map[string]int, len(columns))
	for i, name := range columns {
		if name == "" {
			return nil, fmt.Errorf("feature column %d has an empty name", i)
		}
		if _, dup := index[name]; dup {
			return nil, fmt.Errorf("feature column %q listed more than once", name)
		}
		index[name] = i
	}
	// a column for the reference category means the list was built with a
	// different category order and every record would encode ambiguously
	for _, f := range schema {
		if f.Kind != Categorical {
			continue
		}
		if reference := f.DerivedName(f.Reference()); hasKey(index, reference) {
			return nil, fmt.Errorf("feature column %q is the reference category of %s and is never set", reference, f.Name)
		}
	}
	return &Encoder{
		columns: append([]string(nil), columns...),
		index:   index,
	}, nil
}

// Columns returns a copy of the canonical column list.
func (e *Encoder) Columns() []string {
	return append([]string(nil), e.columns...)
}

func (e *Encoder) Width() int {
	return len(e.columns)
}

// MissingFields returns, sorted, the numeric fields that have no canonical
// column. Their values never reach the model.
func (e *Encoder) MissingFields() []string {
	var missing []string
	for _, f := range schema {
		if f.Kind == Numeric && !hasKey(e.index, f.Name) {
			missing = append(missing, f.Name)
		}
	}
	sort.Strings(missing)
	return missing
}

func hasKey(index map[string]int, name string) bool {
	_, ok := index[name]
	return ok
}

// Expand produces the sparse feature mapping for a record: numeric fields
// pass through, categorical fields become <Field>_<category> indicators with
// the reference category dropped. A value outside the field's known set
// yields an indicator for that value, which no trained column will match.
func Expand(r RawRecord) map[string]float64 {
	features := make(map[string]float64, 32)
	for name, value := range r.Numeric() {
		features[name] = value
	}
	categorical := r.Categorical()
	for _, f := range schema {
		if f.Kind != Categorical {
			continue
		}
		value := categorical[f.Name]
		for _, derived := range f.DerivedNames() {
			features[derived] = 0
		}
		if value != f.Reference() {
			features[f.DerivedName(value)] = 1
		}
	}
	return features
}

// Encode builds the aligned vector. Every position not populated from the
// record is 0. Features without a canonical column are left out of the
// vector; the set category indicators among them are returned, sorted, as
// dropped. Numeric fields without a column are reported by MissingFields.
func (e *Encoder) Encode(r RawRecord) (EncodedVector, []string) {
	values := make([]float64, len(e.columns))
	var dropped []string
	for name, value := range Expand(r) {
		i, ok := e.index[name]
		if !ok {
			if _, numeric := schemaIndex[name]; value != 0 && !numeric {
				dropped = append(dropped, name)
			}
			continue
		}
		values[i] = value
	}
	sort.Strings(dropped)
	return EncodedVector{Columns: e.Columns(), Values: values}, dropped
}
