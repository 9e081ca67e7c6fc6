package lookup_api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/Elanstech/scream-track/internal/models"
	"github.com/Elanstech/scream-track/internal/render"
	"github.com/Elanstech/scream-track/internal/services/lookup"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// RateLimiter guards the public lookup endpoint. Nil disables limiting.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, error)
}

type LookupAPI struct {
	svc         *lookup.Service
	rl          RateLimiter
	rlPerMinute int64
	trackURL    string
	log         *slog.Logger
}

func New(svc *lookup.Service, rl RateLimiter, rlPerMinute int, trackURL string) *LookupAPI {
	if rlPerMinute <= 0 {
		rlPerMinute = 30
	}
	return &LookupAPI{
		svc:         svc,
		rl:          rl,
		rlPerMinute: int64(rlPerMinute),
		trackURL:    trackURL,
		log:         slog.Default(),
	}
}

func (a *LookupAPI) Register(r chi.Router) {
	r.Post("/api/v1/lookup", a.postLookup)
	r.Get("/api/v1/track", a.getTrack)
	r.Get("/api/v1/sessions/{sessionID}/last-order", a.getLastOrder)
}

type lookupRequest struct {
	SessionID  string `json:"sessionId"`
	Identifier string `json:"identifier"`
}

type orderView struct {
	OrderNumber    string `json:"orderNumber"`
	OrderDate      string `json:"orderDate"`
	StatusCode     string `json:"statusCode"`
	StatusText     string `json:"statusText"`
	TrackingNumber string `json:"trackingNumber,omitempty"`
	TrackingURL    string `json:"trackingUrl,omitempty"`
	Carrier        string `json:"carrier"`
}

type stepView struct {
	Key     string     `json:"key"`
	State   string     `json:"state"`
	Date    *time.Time `json:"date,omitempty"`
	DelayMs int64      `json:"delayMs"`
}

type lookupResponse struct {
	Panel     string     `json:"panel"`
	SessionID string     `json:"sessionId"`
	Order     *orderView `json:"order,omitempty"`
	Timeline  []stepView `json:"timeline,omitempty"`
	Note      string     `json:"note,omitempty"`
	Error     string     `json:"error,omitempty"`
}

func (a *LookupAPI) postLookup(w http.ResponseWriter, r *http.Request) {
	var req lookupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, lookupResponse{Panel: string(lookup.PanelLookup), Error: "invalid request body"})
		return
	}
	a.doLookup(w, r, req.SessionID, req.Identifier)
}

// getTrack is the auto-lookup path for page loads with an order reference in
// the URL: order, orderId, orderNumber — first non-empty wins.
func (a *LookupAPI) getTrack(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	identifier := q.Get("order")
	if identifier == "" {
		identifier = q.Get("orderId")
	}
	if identifier == "" {
		identifier = q.Get("orderNumber")
	}
	a.doLookup(w, r, q.Get("sessionId"), identifier)
}

func (a *LookupAPI) doLookup(w http.ResponseWriter, r *http.Request, sessionID, identifier string) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	if a.rl != nil {
		ok, _, err := a.rl.Allow(r.Context(), "rl:lookup:"+sessionID, a.rlPerMinute, time.Minute)
		switch {
		case err != nil:
			// Fail open, but make the outage visible.
			a.log.Warn("lookup rate limit check failed", "err", err)
		case !ok:
			writeJSON(w, http.StatusTooManyRequests, lookupResponse{
				Panel: string(lookup.PanelLookup), SessionID: sessionID, Error: "too many lookups, slow down",
			})
			return
		}
	}

	res, err := a.svc.Lookup(r.Context(), sessionID, identifier)
	switch {
	case err == lookup.ErrEmptyIdentifier:
		writeJSON(w, http.StatusBadRequest, lookupResponse{
			Panel: string(res.Panel), SessionID: sessionID, Error: "enter your order number or email",
		})
		return
	case err == lookup.ErrLookupInFlight:
		writeJSON(w, http.StatusConflict, lookupResponse{
			Panel: string(res.Panel), SessionID: sessionID, Error: "a lookup is already running for this session",
		})
		return
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, lookupResponse{
			Panel: string(lookup.PanelLookup), SessionID: sessionID, Error: "lookup failed",
		})
		return
	}

	out := lookupResponse{Panel: string(res.Panel), SessionID: sessionID}
	if res.Order != nil {
		out.Order = a.toOrderView(res.Order)
		out.Timeline = toTimelineView(res.Order.Steps)
		if note, ok := render.Note(res.Order.StatusCode); ok {
			out.Note = note
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *LookupAPI) getLastOrder(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	orderNumber, ok := a.svc.LastOrder(r.Context(), sessionID)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no cached order"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"orderNumber": orderNumber})
}

func (a *LookupAPI) toOrderView(st *models.OrderStatus) *orderView {
	return &orderView{
		OrderNumber:    st.OrderNumber,
		OrderDate:      st.OrderDate,
		StatusCode:     st.StatusCode,
		StatusText:     st.StatusText,
		TrackingNumber: st.TrackingNumber,
		TrackingURL:    render.TrackingURL(a.trackURL, st.TrackingNumber),
		Carrier:        st.Carrier,
	}
}

func toTimelineView(steps map[string]models.TimelineStep) []stepView {
	plan := render.Plan(steps)
	out := make([]stepView, 0, len(plan))
	for _, v := range plan {
		out = append(out, stepView{
			Key:     v.Key,
			State:   string(v.State),
			Date:    v.Date,
			DelayMs: v.Delay.Milliseconds(),
		})
	}
	return out
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
