package validation

import (
	"regexp"

	"github.com/samber/lo"
)

// local-part@domain.tld: /^[^\s@]+@[^\s@]+\.[^\s@]+$/
var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func IsValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

// InvalidEmails returns the addresses that do not have an email shape, in input order.
func InvalidEmails(emails []string) []string {
	return lo.Filter(emails, func(e string, _ int) bool {
		return !IsValidEmail(e)
	})
}

// Duplicates returns every address that appears more than once, once each,
// in order of first appearance. Comparison is exact and case-sensitive.
func Duplicates(emails []string) []string {
	dups := lo.FindDuplicates(emails)
	if len(dups) == 0 {
		return nil
	}
	return dups
}
