package models

import "time"

// Timeline stages in display order. Completed stages always form a prefix of
// this order; the renderer relies on that to pick the single active stage.
const (
	StepOrder     = "order"
	StepReview    = "review"
	StepApproved  = "approved"
	StepPreparing = "preparing"
	StepShipped   = "shipped"
	StepDelivered = "delivered"
)

var StepSequence = []string{
	StepOrder,
	StepReview,
	StepApproved,
	StepPreparing,
	StepShipped,
	StepDelivered,
}

// Status codes feeding the status-note vocabulary.
const (
	StatusPending       = "pending"
	StatusMedicalReview = "medicalReview"
	StatusApproved      = "approved"
	StatusPreparing     = "preparing"
	StatusShipped       = "shipped"
	StatusDelivered     = "delivered"
	StatusError         = "error"
)

// Answer is one question/answer pair inside a form submission. The form
// service owns the shape; we only read it.
type Answer struct {
	FieldName string `json:"name"`
	Label     string `json:"text"`
	Value     string `json:"answer"`
}

// RawSubmission is one intake-form record as returned by the form service.
// Answers are keyed by opaque question ids with no defined order.
type RawSubmission struct {
	ID        string            `json:"id"`
	CreatedAt string            `json:"created_at"`
	Answers   map[string]Answer `json:"answers"`
}

type TimelineStep struct {
	Completed bool       `json:"completed"`
	Date      *time.Time `json:"date,omitempty"`
}

// OrderStatus is the canonical result of a lookup: built fresh per lookup,
// never mutated, superseded by the next lookup.
type OrderStatus struct {
	OrderNumber    string
	OrderDate      string
	StatusCode     string
	StatusText     string
	TrackingNumber string
	Carrier        string
	Steps          map[string]TimelineStep
}
