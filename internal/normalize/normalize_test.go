package normalize

import (
	"testing"
	"time"

	"github.com/Elanstech/scream-track/internal/models"
	"github.com/stretchr/testify/require"
)

func wellFormed() models.RawSubmission {
	return models.RawSubmission{
		ID:        "6200000000000000001",
		CreatedAt: "2025-01-05 10:30:00",
		Answers: map[string]models.Answer{
			"3": {FieldName: "orderNumber", Label: "Your Order Tracking Number", Value: "SC-123456-7890"},
			"5": {FieldName: "email", Label: "E-mail", Value: "jane@example.com"},
		},
	}
}

func TestNormalize_WellFormed(t *testing.T) {
	st := Normalize(wellFormed(), Options{})

	require.Equal(t, "SC-123456-7890", st.OrderNumber)
	require.Equal(t, "January 5, 2025", st.OrderDate)
	require.Equal(t, models.StatusMedicalReview, st.StatusCode)
	require.Equal(t, "Medical Review Pending", st.StatusText)
	require.Empty(t, st.TrackingNumber)

	require.True(t, st.Steps[models.StepOrder].Completed)
	require.True(t, st.Steps[models.StepReview].Completed)
	require.False(t, st.Steps[models.StepApproved].Completed)
	require.False(t, st.Steps[models.StepPreparing].Completed)
	require.False(t, st.Steps[models.StepShipped].Completed)
	require.False(t, st.Steps[models.StepDelivered].Completed)

	want := time.Date(2025, 1, 5, 10, 30, 0, 0, time.UTC)
	require.NotNil(t, st.Steps[models.StepOrder].Date)
	require.Equal(t, want, *st.Steps[models.StepOrder].Date)
	require.Nil(t, st.Steps[models.StepApproved].Date)
}

func TestNormalize_Idempotent(t *testing.T) {
	sub := wellFormed()
	require.Equal(t, Normalize(sub, Options{}), Normalize(sub, Options{}))
}

func TestNormalize_Defaults(t *testing.T) {
	st := Normalize(models.RawSubmission{CreatedAt: "not a date"}, Options{})

	require.Equal(t, "SC0003", st.OrderNumber)
	// Unparseable created-at passes through raw.
	require.Equal(t, "not a date", st.OrderDate)
	require.Equal(t, "Medical Review Pending", st.StatusText)
	require.Nil(t, st.Steps[models.StepOrder].Date)
	require.True(t, st.Steps[models.StepOrder].Completed)
	require.True(t, st.Steps[models.StepReview].Completed)
}

func TestNormalize_ExplicitFieldsWin(t *testing.T) {
	sub := wellFormed()
	sub.Answers["7"] = models.Answer{FieldName: "orderDate", Label: "Order Date", Value: "February 1, 2025"}
	sub.Answers["8"] = models.Answer{FieldName: "status", Label: "Order Status", Value: "Approved"}
	sub.Answers["9"] = models.Answer{FieldName: "tracking", Label: "Tracking Number", Value: "9400100000000000000000"}

	st := Normalize(sub, Options{})
	require.Equal(t, "February 1, 2025", st.OrderDate)
	require.Equal(t, "Approved", st.StatusText)
	// The carrier tracking answer wins despite the order-number label also
	// containing "Tracking Number".
	require.Equal(t, "9400100000000000000000", st.TrackingNumber)
	require.Equal(t, "SC-123456-7890", st.OrderNumber)
	// Status code stays hardcoded unless StatusFromSubmission is on.
	require.Equal(t, models.StatusMedicalReview, st.StatusCode)
	require.False(t, st.Steps[models.StepApproved].Completed)

	// Оба ответа на месте — результат всё равно детерминированный.
	require.Equal(t, st, Normalize(sub, Options{}))
}

func TestNormalize_StatusFromSubmission(t *testing.T) {
	sub := wellFormed()
	sub.Answers["8"] = models.Answer{FieldName: "status", Label: "Order Status", Value: "Shipped - In Transit"}

	st := Normalize(sub, Options{StatusFromSubmission: true})
	require.Equal(t, models.StatusShipped, st.StatusCode)
	require.True(t, st.Steps[models.StepApproved].Completed)
	require.True(t, st.Steps[models.StepPreparing].Completed)
	require.True(t, st.Steps[models.StepShipped].Completed)
	require.False(t, st.Steps[models.StepDelivered].Completed)
}

func TestStageFromText(t *testing.T) {
	code, through := stageFromText("Delivered")
	require.Equal(t, models.StatusDelivered, code)
	require.Equal(t, models.StepDelivered, through)

	code, through = stageFromText("Preparing your order")
	require.Equal(t, models.StatusPreparing, code)
	require.Equal(t, models.StepPreparing, through)

	code, through = stageFromText("Medical Review Pending")
	require.Equal(t, models.StatusMedicalReview, code)
	require.Equal(t, models.StepReview, through)
}
