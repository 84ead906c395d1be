// Package session exposes the trip session surface over HTTP. All endpoints
// speak JSON and are protected by a bearer token when one is configured.
package session

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/voyagent/tripmend/core/model"
	coresession "github.com/voyagent/tripmend/core/session"
)

// createRequest is the body of POST /api/sessions.
type createRequest struct {
	Plan        model.DayPlan     `json:"plan"`
	DayStart    time.Time         `json:"day_start"`
	DailyBudget float64           `json:"daily_budget"`
	Pool        []model.Candidate `json:"pool"`
}

type advanceRequest struct {
	Stop    string    `json:"stop"`
	Arrival time.Time `json:"arrival"`
	Lat     float64   `json:"lat"`
	Lon     float64   `json:"lon"`
	Cost    float64   `json:"cost"`
}

type checkRequest struct {
	Crowd           float64 `json:"crowd"`
	Weather         string  `json:"weather"`
	WeatherSeverity float64 `json:"weather_severity"`
	Traffic         float64 `json:"traffic"`
	NextStop        string  `json:"next_stop"`
}

type resolveRequest struct {
	Resolution  string `json:"resolution"`
	ActionIndex int    `json:"action_index"`
}

type eventRequest struct {
	Type     string         `json:"type"`
	Stop     string         `json:"stop"`
	Severity float64        `json:"severity"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata"`
}

// outcomeResponse is the common response of the decision endpoints.
type outcomeResponse struct {
	Action  string                       `json:"action"`
	Target  string                       `json:"target,omitempty"`
	Blocked string                       `json:"blocked,omitempty"`
	Pending *coresession.PendingDecision `json:"pending,omitempty"`
	Plan    *model.DayPlan               `json:"plan,omitempty"`
}

// NewHandler returns the HTTP handler for the session endpoints.
func NewHandler(manager *coresession.Manager, token string) http.Handler {
	h := &handler{manager: manager}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/sessions", h.create)
	mux.HandleFunc("POST /api/sessions/{id}/advance", h.withSession(h.advance))
	mux.HandleFunc("POST /api/sessions/{id}/check", h.withSession(h.check))
	mux.HandleFunc("POST /api/sessions/{id}/resolve", h.withSession(h.resolve))
	mux.HandleFunc("POST /api/sessions/{id}/event", h.withSession(h.event))
	mux.HandleFunc("GET /api/sessions/{id}/summary", h.withSession(h.summary))
	return withAuth(mux, token)
}

// withAuth rejects requests lacking the bearer token when one is set.
func withAuth(next http.Handler, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token != "" {
			auth := r.Header.Get("Authorization")
			if auth != "Bearer "+token {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

type handler struct {
	manager *coresession.Manager
}

type sessionHandlerFunc func(w http.ResponseWriter, r *http.Request, s *coresession.Session)

func (h *handler) withSession(fn sessionHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := h.manager.Get(r.PathValue("id"))
		if !ok {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		fn(w, r, s)
	}
}

func (h *handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.DayStart.IsZero() {
		req.DayStart = req.Plan.Date
	}
	s, err := h.manager.Create(req.Plan, req.DayStart, req.DailyBudget, req.Pool)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"session_id": s.ID()})
}

func (h *handler) advance(w http.ResponseWriter, r *http.Request, s *coresession.Session) {
	var req advanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.Advance(req.Stop, req.Arrival, req.Lat, req.Lon, req.Cost); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusOK, s.Summary())
}

func (h *handler) check(w http.ResponseWriter, r *http.Request, s *coresession.Session) {
	var req checkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	readings := model.ConditionReadings{
		CrowdLevel:      req.Crowd,
		Weather:         weatherFromString(req.Weather),
		WeatherSeverity: req.WeatherSeverity,
		TrafficLevel:    req.Traffic,
	}
	out, err := s.CheckConditions(r.Context(), readings, req.NextStop)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeOutcome(w, out)
}

func (h *handler) resolve(w http.ResponseWriter, r *http.Request, s *coresession.Session) {
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	resolution, err := coresession.ParseResolution(req.Resolution)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	out, err := s.Resolve(r.Context(), resolution, req.ActionIndex)
	switch {
	case errors.Is(err, coresession.ErrNoPending):
		http.Error(w, err.Error(), http.StatusConflict)
		return
	case errors.Is(err, coresession.ErrBadChoice):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeOutcome(w, out)
}

func (h *handler) event(w http.ResponseWriter, r *http.Request, s *coresession.Session) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	ev := model.Event{
		Type:     model.ParseEventType(req.Type),
		Stop:     req.Stop,
		Severity: req.Severity,
		Text:     req.Text,
		Metadata: req.Metadata,
	}
	out, err := s.Event(r.Context(), ev)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeOutcome(w, out)
}

func (h *handler) summary(w http.ResponseWriter, _ *http.Request, s *coresession.Session) {
	writeJSON(w, http.StatusOK, s.Summary())
}

func writeOutcome(w http.ResponseWriter, out coresession.Outcome) {
	writeJSON(w, http.StatusOK, outcomeResponse{
		Action:  out.Action.Kind.String(),
		Target:  out.Action.Target,
		Blocked: out.Blocked,
		Pending: out.Pending,
		Plan:    out.Plan,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func weatherFromString(s string) model.WeatherCondition {
	switch s {
	case "cloudy":
		return model.WeatherCloudy
	case "rain":
		return model.WeatherRain
	case "storm":
		return model.WeatherStorm
	case "heat":
		return model.WeatherHeat
	default:
		return model.WeatherClear
	}
}
