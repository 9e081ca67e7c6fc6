package normalize

import (
	"strings"
	"time"

	"github.com/Elanstech/scream-track/internal/fields"
	"github.com/Elanstech/scream-track/internal/models"
)

const (
	// Placeholder fallback carried over from the original site; kept verbatim
	// until product decides what a submission without a tracking field means.
	defaultOrderNumber = "SC0003"

	defaultStatusText = "Medical Review Pending"
	defaultCarrier    = "USPS"

	createdAtLayout   = "2006-01-02 15:04:05"
	displayDateLayout = "January 2, 2006"
)

type Options struct {
	// StatusFromSubmission maps the extracted status text onto a timeline
	// stage and advances the completed prefix accordingly. Off by default:
	// the shipped behavior pins every order to medical review.
	StatusFromSubmission bool
}

// Normalize converts one raw submission into a canonical OrderStatus. Pure:
// same submission in, same status out; missing fields fall back per field and
// never fail the lookup.
func Normalize(sub models.RawSubmission, opts Options) models.OrderStatus {
	orderNumber, ok := fields.Value(sub, fields.OrderNumber)
	if !ok || orderNumber == "" {
		orderNumber = defaultOrderNumber
	}

	created, createdOK := parseCreatedAt(sub.CreatedAt)

	orderDate, ok := fields.Value(sub, fields.OrderDate)
	if !ok || orderDate == "" {
		if createdOK {
			orderDate = created.Format(displayDateLayout)
		} else {
			// Unparseable timestamp passes through untouched.
			orderDate = sub.CreatedAt
		}
	}

	statusText, ok := fields.Value(sub, fields.OrderState)
	if !ok || statusText == "" {
		statusText = defaultStatusText
	}

	trackingNumber, _ := fields.Value(sub, fields.TrackingNumber)

	statusCode := models.StatusMedicalReview
	completedThrough := models.StepReview
	if opts.StatusFromSubmission {
		statusCode, completedThrough = stageFromText(statusText)
	}

	var stepDate *time.Time
	if createdOK {
		stepDate = &created
	}

	steps := make(map[string]models.TimelineStep, len(models.StepSequence))
	done := true
	for _, key := range models.StepSequence {
		if done {
			steps[key] = models.TimelineStep{Completed: true, Date: stepDate}
		} else {
			steps[key] = models.TimelineStep{}
		}
		if key == completedThrough {
			done = false
		}
	}

	return models.OrderStatus{
		OrderNumber:    orderNumber,
		OrderDate:      orderDate,
		StatusCode:     statusCode,
		StatusText:     statusText,
		TrackingNumber: trackingNumber,
		Carrier:        defaultCarrier,
		Steps:          steps,
	}
}

// stageFromText maps free-form status text onto (status code, last completed
// stage). Unrecognized text keeps the medical-review default.
func stageFromText(statusText string) (string, string) {
	low := strings.ToLower(statusText)
	switch {
	case strings.Contains(low, "deliver"):
		return models.StatusDelivered, models.StepDelivered
	case strings.Contains(low, "ship"), strings.Contains(low, "transit"):
		return models.StatusShipped, models.StepShipped
	case strings.Contains(low, "prepar"):
		return models.StatusPreparing, models.StepPreparing
	case strings.Contains(low, "approv"):
		return models.StatusApproved, models.StepApproved
	default:
		return models.StatusMedicalReview, models.StepReview
	}
}

func parseCreatedAt(s string) (time.Time, bool) {
	t, err := time.ParseInLocation(createdAtLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
