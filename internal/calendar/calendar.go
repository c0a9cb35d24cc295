// Package calendar defines the month ordering every month-keyed pivot must
// follow.
package calendar

import "strings"

// Months is the canonical calendar order of the three-letter English month
// abbreviations used by the transaction statistics.
var Months = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// Index returns the zero-based position of month in order, or -1 when it is
// not listed. Matching is exact after trimming blanks.
func Index(order []string, month string) int {
	month = strings.TrimSpace(month)
	for i, m := range order {
		if m == month {
			return i
		}
	}
	return -1
}
