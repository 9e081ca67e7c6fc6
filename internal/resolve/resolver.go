package resolve

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Elanstech/scream-track/internal/models"
)

// Kind classifies the shape of a user-supplied lookup identifier. The shape
// only selects which candidate filters get tried; the identifier itself is
// never rewritten.
type Kind string

const (
	KindOrderCode Kind = "orderCode"
	KindEmail     Kind = "email"
	KindOpaqueID  Kind = "opaqueId"
)

func Classify(identifier string) Kind {
	switch {
	case strings.HasPrefix(strings.ToUpper(identifier), "SC"):
		return KindOrderCode
	case strings.Contains(identifier, "@"):
		return KindEmail
	default:
		return KindOpaqueID
	}
}

// Filter is one structured server-side query predicate: match submissions
// whose answer for Field equals Value.
type Filter struct {
	Field string
	Value string
}

// Strategies builds the ordered candidate filter list for an identifier.
// Filters are tried strictly in this order, first non-empty result wins.
func Strategies(identifier string) []Filter {
	switch Classify(identifier) {
	case KindOrderCode:
		return []Filter{
			{Field: "orderNumber", Value: identifier},
			{Field: "trackingNumber", Value: identifier},
		}
	case KindEmail:
		return []Filter{
			{Field: "email", Value: identifier},
			{Field: "customerEmail", Value: identifier},
		}
	default:
		return []Filter{
			{Field: "submissionId", Value: identifier},
			{Field: "orderId", Value: identifier},
		}
	}
}

type SubmissionsClient interface {
	// Search runs one filtered query. An empty result with nil error means
	// "no match", not a failure.
	Search(ctx context.Context, field, value string) ([]models.RawSubmission, error)
	// Submissions fetches the whole submission set for the fallback scan.
	Submissions(ctx context.Context) ([]models.RawSubmission, error)
}

type Resolver struct {
	client SubmissionsClient
	log    *slog.Logger
}

func New(client SubmissionsClient, log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{client: client, log: log}
}

// Resolve finds at most one submission for the identifier: candidate filters
// in order, then a full-table scan comparing every answer value
// case-insensitively. A transport failure anywhere degrades to not-found
// immediately — logged, not retried, never surfaced as an error.
func (r *Resolver) Resolve(ctx context.Context, identifier string) (models.RawSubmission, bool) {
	for _, f := range Strategies(identifier) {
		subs, err := r.client.Search(ctx, f.Field, f.Value)
		if err != nil {
			r.log.Warn("submissions filter query failed", "field", f.Field, "err", err)
			return models.RawSubmission{}, false
		}
		if len(subs) > 0 {
			return subs[0], true
		}
	}

	subs, err := r.client.Submissions(ctx)
	if err != nil {
		r.log.Warn("submissions fallback fetch failed", "err", err)
		return models.RawSubmission{}, false
	}

	want := strings.ToUpper(identifier)
	for _, sub := range subs {
		for _, a := range sub.Answers {
			if strings.ToUpper(a.Value) == want {
				return sub, true
			}
		}
	}

	return models.RawSubmission{}, false
}
