package fake

import (
	"context"
	"strings"

	"github.com/Elanstech/scream-track/internal/models"
)

// FakeClient serves canned submissions so the app can run without form-service
// credentials (local dev, tests, demos). Deterministic: same data every call.
type FakeClient struct {
	Subs []models.RawSubmission
}

func New() *FakeClient {
	return &FakeClient{Subs: []models.RawSubmission{
		{
			ID:        "6200000000000000001",
			CreatedAt: "2025-01-05 10:30:00",
			Answers: map[string]models.Answer{
				"3": {FieldName: "orderNumber", Label: "Your Order Tracking Number", Value: "SC-482913-0021"},
				"5": {FieldName: "email", Label: "E-mail", Value: "demo@example.com"},
				"8": {FieldName: "status", Label: "Order Status", Value: "Medical Review Pending"},
			},
		},
		{
			ID:        "6200000000000000002",
			CreatedAt: "2025-02-14 08:05:00",
			Answers: map[string]models.Answer{
				"3": {FieldName: "orderNumber", Label: "Your Order Tracking Number", Value: "SC-118220-0094"},
				"5": {FieldName: "email", Label: "E-mail", Value: "sample@example.com"},
				"8": {FieldName: "status", Label: "Order Status", Value: "Shipped"},
			},
		},
	}}
}

// Search matches a filter against answer field names, value compared
// case-insensitively, same as the real endpoint's answer filters.
func (f *FakeClient) Search(ctx context.Context, field, value string) ([]models.RawSubmission, error) {
	var out []models.RawSubmission
	for _, sub := range f.Subs {
		for _, a := range sub.Answers {
			if a.FieldName == field && strings.EqualFold(a.Value, value) {
				out = append(out, sub)
				break
			}
		}
	}
	return out, nil
}

func (f *FakeClient) Submissions(ctx context.Context) ([]models.RawSubmission, error) {
	return f.Subs, nil
}
