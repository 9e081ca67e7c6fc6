package lookup

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/Elanstech/scream-track/internal/broker/messages"
	"github.com/Elanstech/scream-track/internal/models"
	"github.com/Elanstech/scream-track/internal/normalize"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	calls int
	sub   models.RawSubmission
	found bool

	block chan struct{} // когда выставлен, Resolve висит до закрытия
}

func (r *fakeResolver) Resolve(ctx context.Context, identifier string) (models.RawSubmission, bool) {
	r.calls++
	if r.block != nil {
		<-r.block
	}
	return r.sub, r.found
}

type fakeStore struct {
	mu sync.Mutex
	m  map[string][]byte
}

func newFakeStore() *fakeStore { return &fakeStore{m: map[string][]byte{}} }

func (c *fakeStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.m[key]
	return b, ok, nil
}
func (c *fakeStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = value
	return nil
}

type fakePublisher struct {
	topic string
	key   []byte
	value []byte
	n     int
}

func (p *fakePublisher) Publish(ctx context.Context, topic string, key, value []byte) error {
	p.topic, p.key, p.value = topic, key, value
	p.n++
	return nil
}

func matchedSubmission() models.RawSubmission {
	return models.RawSubmission{
		ID:        "61",
		CreatedAt: "2025-01-05 10:30:00",
		Answers: map[string]models.Answer{
			"3": {FieldName: "orderNumber", Label: "Your Order Tracking Number", Value: "SC-123456-7890"},
		},
	}
}

func TestLookup_EmptyInput_NoResolveCall(t *testing.T) {
	r := &fakeResolver{}
	s := New(r, nil, 0, normalize.Options{})

	res, err := s.Lookup(context.Background(), "sess", "   ")
	require.ErrorIs(t, err, ErrEmptyIdentifier)
	require.Equal(t, PanelLookup, res.Panel)
	require.Zero(t, r.calls)
}

func TestLookup_Success_PersistsOrderNumber(t *testing.T) {
	r := &fakeResolver{sub: matchedSubmission(), found: true}
	store := newFakeStore()
	s := New(r, store, time.Hour, normalize.Options{})

	res, err := s.Lookup(context.Background(), "sess", "SC-123456-7890")
	require.NoError(t, err)
	require.Equal(t, PanelStatus, res.Panel)
	require.NotNil(t, res.Order)
	require.Equal(t, "SC-123456-7890", res.Order.OrderNumber)
	require.Equal(t, models.StatusMedicalReview, res.Order.StatusCode)
	require.Equal(t, "Medical Review Pending", res.Order.StatusText)
	require.True(t, res.Order.Steps[models.StepOrder].Completed)
	require.True(t, res.Order.Steps[models.StepReview].Completed)
	require.False(t, res.Order.Steps[models.StepApproved].Completed)
	require.False(t, res.Order.Steps[models.StepPreparing].Completed)
	require.False(t, res.Order.Steps[models.StepShipped].Completed)
	require.False(t, res.Order.Steps[models.StepDelivered].Completed)

	got, ok := s.LastOrder(context.Background(), "sess")
	require.True(t, ok)
	require.Equal(t, "SC-123456-7890", got)
}

func TestLookup_NotFound_StoreUntouched(t *testing.T) {
	r := &fakeResolver{found: false}
	store := newFakeStore()
	store.m["session:sess:last_order"] = []byte("SC-0LD")
	s := New(r, store, time.Hour, normalize.Options{})

	res, err := s.Lookup(context.Background(), "sess", "nope@example.com")
	require.NoError(t, err)
	require.Equal(t, PanelNotFound, res.Panel)
	require.Nil(t, res.Order)

	got, ok := s.LastOrder(context.Background(), "sess")
	require.True(t, ok)
	require.Equal(t, "SC-0LD", got)
}

func TestLookup_SecondLookupSameSessionRejected(t *testing.T) {
	r := &fakeResolver{found: false, block: make(chan struct{})}
	s := New(r, nil, 0, normalize.Options{})

	firstDone := make(chan Result, 1)
	go func() {
		res, _ := s.Lookup(context.Background(), "sess", "SC-1")
		firstDone <- res
	}()

	require.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		_, busy := s.inFlight["sess"]
		return busy
	}, time.Second, 5*time.Millisecond)

	_, err := s.Lookup(context.Background(), "sess", "SC-2")
	require.ErrorIs(t, err, ErrLookupInFlight)

	// Другая сессия не блокируется.
	other := New(&fakeResolver{found: false}, nil, 0, normalize.Options{})
	_, err = other.Lookup(context.Background(), "sess2", "SC-2")
	require.NoError(t, err)

	close(r.block)
	res := <-firstDone
	require.Equal(t, PanelNotFound, res.Panel)

	// Маркер снят — повторный lookup проходит.
	_, err = s.Lookup(context.Background(), "sess", "SC-3")
	require.NoError(t, err)
}

func TestLookup_PublishesResolvedEvent(t *testing.T) {
	r := &fakeResolver{sub: matchedSubmission(), found: true}
	p := &fakePublisher{}
	s := New(r, nil, 0, normalize.Options{})
	s.UsePublisher(p, "lookup.resolved")

	_, err := s.Lookup(context.Background(), "sess", "SC-123456-7890")
	require.NoError(t, err)
	require.Equal(t, 1, p.n)
	require.Equal(t, "lookup.resolved", p.topic)
	require.Equal(t, []byte("SC-123456-7890"), p.key)

	// Полезная нагрузка — валидный JSON события.
	var msg messages.LookupResolved
	require.NoError(t, json.Unmarshal(p.value, &msg))
	require.Equal(t, "SC-123456-7890", msg.OrderNumber)
	require.Equal(t, "61", msg.SubmissionID)
	require.Equal(t, "orderCode", msg.IdentifierKind)
	require.False(t, msg.ResolvedAt.IsZero())
}

func TestLastOrder_MissesReadAsEmpty(t *testing.T) {
	s := New(&fakeResolver{}, newFakeStore(), time.Hour, normalize.Options{})

	_, ok := s.LastOrder(context.Background(), "sess")
	require.False(t, ok)

	_, ok = s.LastOrder(context.Background(), "")
	require.False(t, ok)
}
