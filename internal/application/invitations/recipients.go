package invitations

import (
	"iter"
	"strings"
)

// ParseRecipients splits the free-text recipient field on commas, trims each
// segment and skips empty ones. Order is kept and duplicates are not removed;
// the returned sequence can be ranged over repeatedly.
func ParseRecipients(raw string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, part := range strings.Split(raw, ",") {
			addr := strings.TrimSpace(part)
			if addr == "" {
				continue
			}
			if !yield(addr) {
				return
			}
		}
	}
}

// CountRecipients is the live "N件のアドレス" counter shown under the form field.
func CountRecipients(raw string) int {
	n := 0
	for range ParseRecipients(raw) {
		n++
	}
	return n
}
