package filter

import (
	"iter"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Visible returns the records matching c, in source order. The sequence is
// lazy and can be ranged over any number of times; records is only read.
//
// A record is included iff the term is empty or is a case-insensitive
// substring of one of its fields, raw category values or category labels,
// and every non-sentinel selector equals the record's value for that dimension.
func Visible(records []Record, schema Schema, c Criteria) iter.Seq[Record] {
	term := fold(strings.TrimSpace(c.Term))
	return func(yield func(Record) bool) {
		for _, r := range records {
			if !matchesSelectors(r, c.Selectors) || !matchesTerm(r, schema, term) {
				continue
			}
			if !yield(r) {
				return
			}
		}
	}
}

// NormalizeTerm turns raw input into an effective search term (trimmed, lowercased).
func NormalizeTerm(raw string) string {
	return fold(strings.TrimSpace(raw))
}

func matchesSelectors(r Record, selectors map[Dimension]string) bool {
	for d, want := range selectors {
		if isSentinel(want) {
			continue
		}
		if r.Categories[d] != want {
			return false
		}
	}
	return true
}

func matchesTerm(r Record, schema Schema, term string) bool {
	if term == "" {
		return true
	}
	for _, f := range r.Fields {
		if strings.Contains(fold(f), term) {
			return true
		}
	}
	for d, v := range r.Categories {
		if strings.Contains(fold(v), term) {
			return true
		}
		if label := schema.Label(d, v); label != "" && strings.Contains(fold(label), term) {
			return true
		}
	}
	return false
}

// fold lowercases with Unicode rules. A Caser keeps state, so one is built per call.
func fold(s string) string {
	return cases.Lower(language.Und).String(s)
}
