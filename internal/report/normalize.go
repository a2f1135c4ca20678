package report

import (
	"strings"
	"time"

	"sales-analytics/internal/model"
)

var crlfStripper = strings.NewReplacer("\r", "", "\n", "")

// NormalizeReportDate turns the raw report date text from automation into a
// calendar date. Trims surrounding whitespace, strips embedded CR/LF, and,
// when a 'T' is present, keeps only the first 10 characters to drop a
// time-of-day suffix from an ISO-8601 timestamp. The truncation assumes the
// date prefix is exactly 10 characters; a non-ISO string containing 'T'
// elsewhere is mis-truncated and will fail the strict parse. That behavior
// is part of the contract and covered by tests.
func NormalizeReportDate(raw string) (time.Time, bool) {
	s := crlfStripper.Replace(strings.TrimSpace(raw))
	if strings.ContainsRune(s, 'T') && len(s) > 10 {
		s = s[:10]
	}
	if s == "" {
		return time.Time{}, false
	}

	t, err := time.Parse(model.DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
