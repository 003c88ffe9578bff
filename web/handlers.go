/* handlers.go
 * Contains the HTTP handlers for the admin, judge and spectator REST surface.
 * Handlers decode, call into the coordinator and translate domain errors to
 * status codes; they hold no scoring logic of their own
 */

package web

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"strings"

	"livescore/api/shared"
	"livescore/api/store"
)

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Println("failed to encode response:", err)
	}
}

// errorBody is the JSON error envelope: {"error": "..."}
type errorBody struct {
	Error string `json:"error"`
}

// writeError maps a coordinator error to an HTTP status and writes the envelope.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, shared.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, shared.ErrDuplicateSubmission), errors.Is(err, shared.ErrActiveConflict):
		status = http.StatusConflict
	case errors.Is(err, shared.ErrNotActive),
		errors.Is(err, shared.ErrIncompleteScore),
		errors.Is(err, shared.ErrInvalidScore),
		errors.Is(err, shared.ErrNoScores),
		errors.Is(err, shared.ErrAlreadyCompleted):
		status = http.StatusBadRequest
	case errors.Is(err, shared.ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		log.Println("request failed:", err)
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

// isAdmin reports whether the request carries a valid admin session cookie.
func isAdmin(r *http.Request) bool {
	c, err := r.Cookie(adminSessionCookie)
	return err == nil && c.Value == "authenticated"
}

// requireAdmin rejects requests without an admin session. Returns true when the
// caller may proceed.
func requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if !isAdmin(r) {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "admin session required"})
		return false
	}
	return true
}

// region Admin session

// AdminAuthHandler manages the admin session: POST logs in against the credentials
// from the environment, GET reports session state, DELETE logs out.
func (s *Server) AdminAuthHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		defer r.Body.Close()
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
			return
		}

		adminUser := os.Getenv("ADMIN_USERNAME")
		adminPass := os.Getenv("ADMIN_PASSWORD")
		if adminUser == "" || req.Username != adminUser || req.Password != adminPass {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "invalid credentials"})
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     adminSessionCookie,
			Value:    "authenticated",
			Path:     "/",
			MaxAge:   60 * 60 * 24,
			HttpOnly: true,
			SameSite: http.SameSiteStrictMode,
		})
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})

	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]bool{"authenticated": isAdmin(r)})

	case http.MethodDelete:
		http.SetCookie(w, &http.Cookie{
			Name:   adminSessionCookie,
			Value:  "",
			Path:   "/",
			MaxAge: -1,
		})
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// endregion

// region Events

// EventsHandler lists events (GET) and creates one (POST, admin only).
func (s *Server) EventsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		events, err := s.api.Events()
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, events)

	case http.MethodPost:
		if !requireAdmin(w, r) {
			return
		}
		defer r.Body.Close()
		var req struct {
			Name     string   `json:"name"`
			Criteria []string `json:"criteria"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
			return
		}
		event, err := s.api.CreateEvent(req.Name, req.Criteria)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, event)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// EventHandler serves a single event by id: GET fetches, DELETE cascades the event,
// its participants and their scores away (admin only).
func (s *Server) EventHandler(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/events/")
	if id == "" || strings.Contains(id, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		event, err := s.api.Event(id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, event)

	case http.MethodDelete:
		if !requireAdmin(w, r) {
			return
		}
		if err := s.api.DeleteEvent(id); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// endregion

// region Participants

// ParticipantsHandler lists participants with filters (GET), creates one (POST,
// admin only) and changes lifecycle status (PATCH, admin only). PATCH with status
// "active" activates under the single-active-slot rule; "pending" deactivates.
func (s *Server) ParticipantsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		participants, err := s.api.Participants(q.Get("eventId"), q.Get("status"), q.Get("search"))
		if err != nil {
			writeError(w, err)
			return
		}
		if participants == nil {
			// keep the JSON body an array, not null, for empty result sets
			participants = []store.Participant{}
		}
		writeJSON(w, http.StatusOK, participants)

	case http.MethodPost:
		if !requireAdmin(w, r) {
			return
		}
		defer r.Body.Close()
		var req struct {
			Name              string `json:"name"`
			EventID           string `json:"eventId"`
			ParticipantNumber int    `json:"participantNumber"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
			return
		}
		p, err := s.api.CreateParticipant(req.EventID, req.Name, req.ParticipantNumber)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, p)

	case http.MethodPatch:
		if !requireAdmin(w, r) {
			return
		}
		defer r.Body.Close()
		var req struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
			return
		}

		var p any
		var err error
		switch req.Status {
		case "active":
			p, err = s.api.ActivateParticipant(req.ID)
		case "pending":
			p, err = s.api.DeactivateParticipant(req.ID)
		default:
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "status must be 'active' or 'pending'"})
			return
		}
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// ParticipantHandler deletes a single participant and its scores (admin only).
func (s *Server) ParticipantHandler(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/participants/")
	if id == "" || strings.Contains(id, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !requireAdmin(w, r) {
		return
	}
	if err := s.api.DeleteParticipant(id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// endregion

// region Scores

// ScoresHandler submits a score (POST) and lists a participant's submissions with
// the per-criterion breakdown (GET). Submission identifies the judge either by a
// session token in the X-Judge-Token header or by an explicit judgeId in the body.
func (s *Server) ScoresHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		defer r.Body.Close()
		var req struct {
			ParticipantID string         `json:"participantId"`
			JudgeID       string         `json:"judgeId"`
			JudgeName     string         `json:"judgeName"`
			Scores        map[string]int `json:"scores"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
			return
		}

		judgeID := req.JudgeID
		if token := r.Header.Get("X-Judge-Token"); token != "" {
			judge, err := s.api.JudgeByToken(token)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, errorBody{Error: "invalid judge session"})
				return
			}
			judgeID = judge.ID.Hex()
		}

		sub, err := s.api.SubmitScore(req.ParticipantID, judgeID, req.JudgeName, req.Scores)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, sub)

	case http.MethodGet:
		subs, err := s.api.ScoresForParticipant(r.URL.Query().Get("participantId"))
		if err != nil {
			writeError(w, err)
			return
		}
		if subs == nil {
			subs = []store.ScoreSubmission{}
		}
		writeJSON(w, http.StatusOK, subs)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// endregion

// region Results

// ResultsHandler finalizes a participant (POST, admin only) and serves the ranked
// leaderboard (GET). The GET path is the reconcile fallback for missed
// leaderboard-updated broadcasts and always returns a leaderboard, possibly empty.
func (s *Server) ResultsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		if !requireAdmin(w, r) {
			return
		}
		defer r.Body.Close()
		var req struct {
			ParticipantID string `json:"participantId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
			return
		}
		p, err := s.api.FinalizeParticipant(req.ParticipantID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)

	case http.MethodGet:
		leaderboard, err := s.api.Leaderboard(r.URL.Query().Get("eventId"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, leaderboard)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// endregion

// region Judges

// JudgesHandler lists judges (GET), registers one (POST) and removes one
// (DELETE ?id=). All admin only; the listing includes the generated passcodes so
// the admin can hand them out.
func (s *Server) JudgesHandler(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}

	switch r.Method {
	case http.MethodGet:
		judges, err := s.api.Judges()
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, judges)

	case http.MethodPost:
		defer r.Body.Close()
		var req struct {
			Name  string `json:"name"`
			Phone string `json:"phone"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
			return
		}
		judge, err := s.api.CreateJudge(req.Name, req.Phone)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, judge)

	case http.MethodDelete:
		id := r.URL.Query().Get("id")
		if err := s.api.DeleteJudge(id); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// JudgeAuthHandler exchanges a judge passcode for a session token. Rate limited to
// slow down passcode guessing.
func (s *Server) JudgeAuthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !s.authLimiter.Allow() {
		writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "too many attempts, slow down"})
		return
	}

	defer r.Body.Close()
	var req struct {
		Passcode string `json:"passcode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	judge, token, err := s.api.AuthenticateJudge(req.Passcode)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "invalid passcode"})
			return
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"judge": map[string]string{
			"id":   judge.ID.Hex(),
			"name": judge.Name,
		},
	})
}

// endregion

// HealthzHandler reports liveness.
func (s *Server) HealthzHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
