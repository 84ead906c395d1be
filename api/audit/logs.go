// Package audit exposes the audit trail via GET /api/audit/logs.
package audit

import (
	"encoding/json"
	"net/http"
	"time"

	coreaudit "github.com/voyagent/tripmend/core/audit"
	"github.com/voyagent/tripmend/core/model"
)

// NewLogHandler returns an HTTP handler exposing audit records. Requests
// must include an Authorization header with "Bearer <token>" when token is
// non-empty.
func NewLogHandler(store coreaudit.Store, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token != "" {
			auth := r.Header.Get("Authorization")
			if auth != "Bearer "+token {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		q := coreaudit.Query{}
		if s := r.URL.Query().Get("start"); s != "" {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				q.Start = t
			}
		}
		if s := r.URL.Query().Get("end"); s != "" {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				q.End = t
			}
		}
		q.SessionID = r.URL.Query().Get("session_id")
		if k := r.URL.Query().Get("kind"); k != "" {
			if v, ok := actionKindFromString(k); ok {
				q.Kind = v
				q.HasKind = true
			}
		}
		records, err := store.Query(r.Context(), q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(records); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

func actionKindFromString(s string) (model.ActionKind, bool) {
	switch s {
	case "no_action":
		return model.NoAction, true
	case "request_user_decision":
		return model.RequestUserDecision, true
	case "defer_poi":
		return model.DeferPoi, true
	case "replace_poi":
		return model.ReplacePoi, true
	case "relax_constraint":
		return model.RelaxConstraint, true
	case "reoptimize_day":
		return model.ReoptimizeDay, true
	default:
		return 0, false
	}
}
