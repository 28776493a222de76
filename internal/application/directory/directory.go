// Package directory serves filterable list views (staff, organizations) on
// top of the filter engine.
package directory

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"yuime-backend/internal/application/filter"
)

// Item pairs a filterable record with the row rendered for it.
type Item struct {
	Record filter.Record
	Row    any
}

// Source loads one list view. Load returns a fresh snapshot each call; the
// filter engine only ever reads it.
type Source interface {
	Scope() string
	Schema() filter.Schema
	Load(ctx context.Context) ([]Item, error)
}

// Records extracts the filterable records of items, in order.
func Records(items []Item) []filter.Record {
	out := make([]filter.Record, len(items))
	for i, it := range items {
		out[i] = it.Record
	}
	return out
}

// Rows returns the rows of the items whose records are in visible, in visible order.
func Rows(items []Item, visible []filter.Record) []any {
	byID := make(map[string]any, len(items))
	for _, it := range items {
		byID[it.Record.ID] = it.Row
	}
	rows := make([]any, 0, len(visible))
	for _, r := range visible {
		rows = append(rows, byID[r.ID])
	}
	return rows
}

// ActiveFilter is one applied selector, as shown in the filter chips.
type ActiveFilter struct {
	Dimension filter.Dimension `json:"dimension"`
	Value     string           `json:"value"`
	Label     string           `json:"label"`
}

// ActiveFilters lists the non-sentinel selectors of st in schema order.
func ActiveFilters(schema filter.Schema, st filter.State) []ActiveFilter {
	out := []ActiveFilter{}
	for _, f := range schema.Facets() {
		v := st.Selector(f.Dimension)
		if v == filter.All {
			continue
		}
		label := f.Labels[v]
		if label == "" {
			label = v
		}
		out = append(out, ActiveFilter{Dimension: f.Dimension, Value: v, Label: label})
	}
	return out
}

// Option is one choice of a facet select box.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// FacetOptions returns the select options of every facet. Open facets take
// their values from the loaded records, in first-seen order.
func FacetOptions(schema filter.Schema, records []filter.Record) map[filter.Dimension][]Option {
	out := make(map[filter.Dimension][]Option)
	for _, f := range schema.Facets() {
		values := f.Values
		if len(values) == 0 {
			for _, r := range records {
				if v := r.Categories[f.Dimension]; v != "" && !slices.Contains(values, v) {
					values = append(values, v)
				}
			}
		}
		opts := []Option{}
		for _, v := range values {
			label := f.Labels[v]
			if label == "" {
				label = v
			}
			opts = append(opts, Option{Value: v, Label: label})
		}
		out[f.Dimension] = opts
	}
	return out
}

// AttributeFields returns the non-nil attribute values as search fields, ordered by key.
func AttributeFields(attrs map[string]any) []string {
	out := make([]string, 0, len(attrs))
	for _, k := range slices.Sorted(maps.Keys(attrs)) {
		if v := attrs[k]; v != nil {
			out = append(out, fmt.Sprint(v))
		}
	}
	return out
}
