package messages

import "time"

// LookupResolved is emitted after every successful order lookup. Consumers
// (analytics, support tooling) only get the shapes, never the raw identifier:
// an email typed into the lookup box must not leave this service.
type LookupResolved struct {
	OrderNumber    string    `json:"order_number"`
	SubmissionID   string    `json:"submission_id"`
	IdentifierKind string    `json:"identifier_kind"`
	StatusCode     string    `json:"status_code"`
	ResolvedAt     time.Time `json:"resolved_at"`
}
