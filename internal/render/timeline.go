package render

import (
	"fmt"
	"net/url"
	"time"

	"github.com/Elanstech/scream-track/internal/models"
)

type StepState string

const (
	StateNeutral   StepState = "neutral"
	StateCompleted StepState = "completed"
	StateActive    StepState = "active"
)

// Reveal delay between consecutive stages; the page animates each stage this
// much after the previous one. Cosmetic only.
const revealStagger = 200 * time.Millisecond

type StepView struct {
	Key   string
	State StepState
	Date  *time.Time
	Delay time.Duration
}

// Plan maps a status's step set onto per-stage visual states: every completed
// stage renders completed, the single stage right after the completed prefix
// renders active, the rest stay neutral.
func Plan(steps map[string]models.TimelineStep) []StepView {
	views := make([]StepView, 0, len(models.StepSequence))
	activeAssigned := false
	for i, key := range models.StepSequence {
		step := steps[key]
		state := StateNeutral
		switch {
		case step.Completed:
			state = StateCompleted
		case !activeAssigned:
			state = StateActive
			activeAssigned = true
		}
		views = append(views, StepView{
			Key:   key,
			State: state,
			Date:  step.Date,
			Delay: time.Duration(i) * revealStagger,
		})
	}
	return views
}

// ActiveStep returns the stage Plan would mark active: the first stage after
// the completed prefix. False when all six are completed.
func ActiveStep(steps map[string]models.TimelineStep) (string, bool) {
	for _, key := range models.StepSequence {
		if !steps[key].Completed {
			return key, true
		}
	}
	return "", false
}

const (
	noteMedicalReview = "Our medical team is reviewing your intake form. You will get an email as soon as your order is approved."
	notePreparing     = "Your order is approved and being prepared for shipment."
	noteShipped       = "Your order is on its way. Follow the carrier link above for live updates."
	noteError         = "We could not retrieve your order status right now. Please try again in a few minutes."
)

// Четыре заметки на шесть кодов: pending/medicalReview, approved/preparing и
// shipped/delivered делят текст.
var notes = map[string]string{
	models.StatusPending:       noteMedicalReview,
	models.StatusMedicalReview: noteMedicalReview,
	models.StatusApproved:      notePreparing,
	models.StatusPreparing:     notePreparing,
	models.StatusShipped:       noteShipped,
	models.StatusDelivered:     noteShipped,
	models.StatusError:         noteError,
}

// Note picks the single status-note message for a status code. Unrecognized
// codes show nothing.
func Note(statusCode string) (string, bool) {
	msg, ok := notes[statusCode]
	return msg, ok
}

// TrackingURL builds the carrier tracking link from a printf template with
// one %s. Empty tracking number means no link.
func TrackingURL(template, trackingNumber string) string {
	if trackingNumber == "" {
		return ""
	}
	return fmt.Sprintf(template, url.QueryEscape(trackingNumber))
}
