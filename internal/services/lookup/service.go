package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Elanstech/scream-track/internal/broker/messages"
	"github.com/Elanstech/scream-track/internal/cache"
	"github.com/Elanstech/scream-track/internal/models"
	"github.com/Elanstech/scream-track/internal/normalize"
	"github.com/Elanstech/scream-track/internal/resolve"
	"github.com/pkg/errors"
)

// Panel names the three mutually exclusive page states; exactly one is ever
// shown.
type Panel string

const (
	PanelLookup   Panel = "lookup"
	PanelStatus   Panel = "status"
	PanelNotFound Panel = "notFound"
)

var (
	ErrEmptyIdentifier = errors.New("identifier is empty")
	ErrLookupInFlight  = errors.New("lookup already in flight for this session")
)

type Resolver interface {
	Resolve(ctx context.Context, identifier string) (models.RawSubmission, bool)
}

type Publisher interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

type Service struct {
	resolver Resolver
	store    cache.BytesCache
	lastTTL  time.Duration
	opts     normalize.Options

	pub   Publisher
	topic string

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func New(resolver Resolver, store cache.BytesCache, lastTTL time.Duration, opts normalize.Options) *Service {
	return &Service{
		resolver: resolver,
		store:    store,
		lastTTL:  lastTTL,
		opts:     opts,
		inFlight: make(map[string]struct{}),
	}
}

// UsePublisher turns on the lookup.resolved event stream. Best effort: a
// publish failure never fails the lookup.
func (s *Service) UsePublisher(pub Publisher, topic string) {
	s.pub = pub
	s.topic = topic
}

type Result struct {
	Panel Panel
	Order *models.OrderStatus
}

// Lookup runs one full resolution for a session. Empty input is rejected
// before any network call; a second lookup for the same session while one is
// in flight is rejected; the in-flight marker is released on every exit path.
func (s *Service) Lookup(ctx context.Context, sessionID, identifier string) (Result, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return Result{Panel: PanelLookup}, ErrEmptyIdentifier
	}

	if sessionID != "" {
		if !s.acquire(sessionID) {
			return Result{Panel: PanelLookup}, ErrLookupInFlight
		}
		defer s.release(sessionID)
	}

	sub, ok := s.resolver.Resolve(ctx, identifier)
	if !ok {
		return Result{Panel: PanelNotFound}, nil
	}

	st := normalize.Normalize(sub, s.opts)

	// Remember the order number for the next visit; last writer wins.
	if s.store != nil && sessionID != "" && s.lastTTL > 0 {
		_ = s.store.Set(ctx, lastOrderKey(sessionID), []byte(st.OrderNumber), s.lastTTL)
	}

	if s.pub != nil {
		msg := messages.LookupResolved{
			OrderNumber:    st.OrderNumber,
			SubmissionID:   sub.ID,
			IdentifierKind: string(resolve.Classify(identifier)),
			StatusCode:     st.StatusCode,
			ResolvedAt:     time.Now().UTC(),
		}
		// Best effort both ways: no payload, no publish.
		if b, err := json.Marshal(msg); err == nil {
			_ = s.pub.Publish(ctx, s.topic, []byte(st.OrderNumber), b)
		}
	}

	return Result{Panel: PanelStatus, Order: &st}, nil
}

// LastOrder returns the session's cached order number for pre-filling the
// lookup input. Misses and store errors both read as "nothing cached".
func (s *Service) LastOrder(ctx context.Context, sessionID string) (string, bool) {
	if s.store == nil || sessionID == "" {
		return "", false
	}
	b, ok, err := s.store.Get(ctx, lastOrderKey(sessionID))
	if err != nil || !ok {
		return "", false
	}
	return string(b), true
}

func (s *Service) acquire(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[sessionID]; busy {
		return false
	}
	s.inFlight[sessionID] = struct{}{}
	return true
}

func (s *Service) release(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, sessionID)
}

func lastOrderKey(sessionID string) string {
	return fmt.Sprintf("session:%s:last_order", sessionID)
}
