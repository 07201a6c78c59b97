package errors

import (
	"fmt"
	"strings"
)

// HeaderError rejects a file whose header row lacks required columns.
type HeaderError struct {
	Missing  []string            `json:"missing"`
	Found    []string            `json:"found"`
	Accepted map[string][]string `json:"accepted"`
}

func NewHeaderError(missing, found []string, accepted map[string][]string) *HeaderError {
	return &HeaderError{
		Missing:  missing,
		Found:    found,
		Accepted: accepted,
	}
}

func (he *HeaderError) Error() string {
	return fmt.Sprintf("missing required columns: %s (found headers: %s)",
		strings.Join(he.Missing, ", "), quoteAll(he.Found))
}

// Hint renders the accepted column names for every missing field, one per line.
func (he *HeaderError) Hint() string {
	var b strings.Builder
	for _, field := range he.Missing {
		fmt.Fprintf(&b, "%s: %s\n", field, strings.Join(he.Accepted[field], ", "))
	}
	return strings.TrimRight(b.String(), "\n")
}

func quoteAll(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
