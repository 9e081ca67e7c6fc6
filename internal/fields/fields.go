package fields

import (
	"strings"

	"github.com/Elanstech/scream-track/internal/models"
)

// Field is a canonical name for a piece of data we want out of a submission,
// independent of how the form happens to label the question today.
type Field string

const (
	OrderNumber    Field = "order_number"
	OrderDate      Field = "order_date"
	OrderState     Field = "order_status"
	TrackingNumber Field = "tracking_number"
)

// labelTable maps a canonical field to the label substrings accepted for it,
// in preference order. Question labels on the external form are not stable,
// so matching stays a best-effort substring heuristic; callers supply a
// default for the miss case.
var labelTable = map[Field][]string{
	OrderNumber:    {"Your Order Tracking Number"},
	OrderDate:      {"Order Date"},
	OrderState:     {"Order Status"},
	TrackingNumber: {"Tracking Number"},
}

// labelExcludes lists labels that contain a field's needle but belong to a
// different question. "Tracking Number" is a substring of the order-number
// label, so without the exclude every submission would read its order code
// back as a carrier tracking number.
var labelExcludes = map[Field][]string{
	TrackingNumber: {"Your Order Tracking Number"},
}

// Value resolves a canonical field against one submission. Returns false when
// no answer matches any of the field's accepted substrings.
func Value(sub models.RawSubmission, f Field) (string, bool) {
	for _, needle := range labelTable[f] {
		if v, ok := match(sub, needle, labelExcludes[f]); ok {
			return v, ok
		}
	}
	return "", false
}

// Match returns the value of the first answer whose label contains needle,
// else the first whose internal field name contains it. Answer iteration
// order is undefined; when a needle matches several questions, which one wins
// is arbitrary.
func Match(sub models.RawSubmission, needle string) (string, bool) {
	return match(sub, needle, nil)
}

func match(sub models.RawSubmission, needle string, excludes []string) (string, bool) {
	for _, a := range sub.Answers {
		if strings.Contains(a.Label, needle) && !excluded(a.Label, excludes) {
			return a.Value, true
		}
	}
	for _, a := range sub.Answers {
		if strings.Contains(a.FieldName, needle) && !excluded(a.FieldName, excludes) {
			return a.Value, true
		}
	}
	return "", false
}

func excluded(s string, excludes []string) bool {
	for _, ex := range excludes {
		if strings.Contains(s, ex) {
			return true
		}
	}
	return false
}
