// Package query parses the string-typed list filters accepted by the
// read endpoints into typed values. Malformed input is rejected with a
// field-level validation error instead of being silently ignored.
package query

import (
	"strconv"
	"strings"
	"time"

	"github.com/robertarktes/theatre-reservations/internal/domain"
)

// ParseIDList converts a comma-separated id list ("2,5,7") into int64s.
// An empty string yields nil. field names the query parameter for error
// reporting.
func ParseIDList(field, s string) ([]int64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, &domain.FieldError{
				Field:   field,
				Message: "must be a comma-separated list of integer ids",
			}
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// ParseDate parses a calendar date in YYYY-MM-DD form.
func ParseDate(field, s string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, &domain.FieldError{
			Field:   field,
			Message: "must be a date in YYYY-MM-DD format",
		}
	}
	return d, nil
}

// ParsePage parses limit/offset pagination parameters, applying the
// default and maximum page size when the caller omits or exceeds them.
func ParsePage(limitStr, offsetStr string, def, max int) (limit, offset int, err error) {
	limit = def
	if limitStr != "" {
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			return 0, 0, &domain.FieldError{Field: "limit", Message: "must be a positive integer"}
		}
		if limit > max {
			limit = max
		}
	}
	if offsetStr != "" {
		offset, err = strconv.Atoi(offsetStr)
		if err != nil || offset < 0 {
			return 0, 0, &domain.FieldError{Field: "offset", Message: "must be a non-negative integer"}
		}
	}
	return limit, offset, nil
}
