package filter

import "slices"

// Dimension names a categorical facet of a record (status, role, category, country).
type Dimension string

// All is the sentinel selector value meaning "no filter on this dimension".
const All = "all"

// Record is one row subject to filtering. Records are treated as immutable:
// the engine never writes to Fields or Categories.
type Record struct {
	ID         string               `json:"id"`
	Fields     []string             `json:"fields"`
	Categories map[Dimension]string `json:"categories"`
}

// Facet describes one categorical dimension. An empty Values list means the
// dimension is open (any value may be selected, e.g. country).
type Facet struct {
	Dimension Dimension
	Values    []string
	Labels    map[string]string
}

// Schema is the set of facets a record set can be filtered on.
type Schema struct {
	facets []Facet
}

func NewSchema(facets ...Facet) Schema {
	return Schema{facets: slices.Clone(facets)}
}

// Facets returns the facets in declaration order.
func (s Schema) Facets() []Facet {
	return slices.Clone(s.facets)
}

func (s Schema) Facet(d Dimension) (Facet, bool) {
	for _, f := range s.facets {
		if f.Dimension == d {
			return f, true
		}
	}
	return Facet{}, false
}

// Label returns the display label of value in dimension d, or "" if none is declared.
func (s Schema) Label(d Dimension, value string) string {
	f, ok := s.Facet(d)
	if !ok {
		return ""
	}
	return f.Labels[value]
}

// Check rejects unknown dimensions and values outside a closed facet.
// The sentinel (or empty) value is always accepted.
func (s Schema) Check(d Dimension, value string) error {
	f, ok := s.Facet(d)
	if !ok {
		return unknownDimension(d)
	}
	if isSentinel(value) || len(f.Values) == 0 {
		return nil
	}
	if !slices.Contains(f.Values, value) {
		return unknownValue(d, value)
	}
	return nil
}

// Criteria is the effective filter input: the debounced term plus the active selectors.
type Criteria struct {
	Term      string
	Selectors map[Dimension]string
}

func isSentinel(value string) bool {
	return value == "" || value == All
}
