/* handlers_test.go
 * Contains unit tests for handlers.go, driving the REST surface over the mock store
 */

package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livescore/api/api"
	"livescore/api/logic"
	"livescore/api/notify"
	"livescore/api/store"
)

// newTestServer wires a Server onto a mock store and a real broker.
func newTestServer() (*Server, *api.MockStore, *notify.Broker) {
	ms := api.NewMockStore()
	broker := notify.NewBroker(16)
	a := &api.API{Store: ms, Notifier: broker}
	return NewServer(Config{API: a, Notifier: broker}), ms, broker
}

// doJSON performs a request with an optional JSON body and admin session.
func doJSON(t *testing.T, s *Server, method, path string, body any, admin bool) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if admin {
		req.AddCookie(&http.Cookie{Name: adminSessionCookie, Value: "authenticated"})
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

// seedScenario creates an event with two criteria, one participant and one judge.
func seedScenario(t *testing.T, s *Server) (store.Event, store.Participant, store.Judge) {
	t.Helper()

	rec := doJSON(t, s, http.MethodPost, "/api/events",
		map[string]any{"name": "Solo", "criteria": []string{"Expression", "Technique"}}, true)
	require.Equal(t, http.StatusCreated, rec.Code)
	var event store.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &event))

	rec = doJSON(t, s, http.MethodPost, "/api/participants",
		map[string]any{"name": "A", "eventId": event.ID.Hex()}, true)
	require.Equal(t, http.StatusCreated, rec.Code)
	var p store.Participant
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))

	rec = doJSON(t, s, http.MethodPost, "/api/judges", map[string]any{"name": "J1"}, true)
	require.Equal(t, http.StatusCreated, rec.Code)
	var judge store.Judge
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &judge))

	return event, p, judge
}

func activate(t *testing.T, s *Server, participantID string) {
	t.Helper()
	rec := doJSON(t, s, http.MethodPatch, "/api/participants",
		map[string]string{"id": participantID, "status": "active"}, true)
	require.Equal(t, http.StatusOK, rec.Code)
}

// region Admin session tests

func TestAdminAuth_LoginLogout(t *testing.T) {
	t.Setenv("ADMIN_USERNAME", "admin")
	t.Setenv("ADMIN_PASSWORD", "secret")
	s, _, _ := newTestServer()

	rec := doJSON(t, s, http.MethodPost, "/api/auth",
		map[string]string{"username": "admin", "password": "secret"}, false)
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, adminSessionCookie, cookies[0].Name)
	assert.Equal(t, "authenticated", cookies[0].Value)

	rec = doJSON(t, s, http.MethodPost, "/api/auth",
		map[string]string{"username": "admin", "password": "wrong"}, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminEndpoints_RequireSession(t *testing.T) {
	s, _, _ := newTestServer()

	rec := doJSON(t, s, http.MethodPost, "/api/events",
		map[string]any{"name": "Solo", "criteria": []string{"Expression"}}, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/api/judges", nil, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// endregion

// region Scoring flow tests

func TestScores_SubmitAndDuplicate(t *testing.T) {
	s, _, _ := newTestServer()
	_, p, judge := seedScenario(t, s)
	activate(t, s, p.ID.Hex())

	body := map[string]any{
		"participantId": p.ID.Hex(),
		"judgeId":       judge.ID.Hex(),
		"judgeName":     "Judge One",
		"scores":        map[string]int{"Expression": 8, "Technique": 9},
	}
	rec := doJSON(t, s, http.MethodPost, "/api/scores", body, false)
	require.Equal(t, http.StatusCreated, rec.Code)
	var sub store.ScoreSubmission
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sub))
	assert.Equal(t, 8.5, sub.TotalScore)

	// Second submission from the same judge hits the idempotency gate
	rec = doJSON(t, s, http.MethodPost, "/api/scores", body, false)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestScores_NotActiveParticipant(t *testing.T) {
	s, _, _ := newTestServer()
	_, p, judge := seedScenario(t, s)

	rec := doJSON(t, s, http.MethodPost, "/api/scores", map[string]any{
		"participantId": p.ID.Hex(),
		"judgeId":       judge.ID.Hex(),
		"scores":        map[string]int{"Expression": 8, "Technique": 9},
	}, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScores_IncompleteSubmission(t *testing.T) {
	s, _, _ := newTestServer()
	_, p, judge := seedScenario(t, s)
	activate(t, s, p.ID.Hex())

	rec := doJSON(t, s, http.MethodPost, "/api/scores", map[string]any{
		"participantId": p.ID.Hex(),
		"judgeId":       judge.ID.Hex(),
		"scores":        map[string]int{"Expression": 8},
	}, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScores_GetBreakdown(t *testing.T) {
	s, _, _ := newTestServer()
	_, p, judge := seedScenario(t, s)
	activate(t, s, p.ID.Hex())

	rec := doJSON(t, s, http.MethodPost, "/api/scores", map[string]any{
		"participantId": p.ID.Hex(),
		"judgeId":       judge.ID.Hex(),
		"scores":        map[string]int{"Expression": 8, "Technique": 9},
	}, false)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/api/scores?participantId="+p.ID.Hex(), nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	var subs []store.ScoreSubmission
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &subs))
	require.Len(t, subs, 1)
	// The pull path carries the per-criterion breakdown the broadcast omits
	assert.Equal(t, map[string]int{"Expression": 8, "Technique": 9}, subs[0].Scores)
}

// endregion

// region Results tests

func TestResults_FinalizeAndLeaderboard(t *testing.T) {
	s, _, _ := newTestServer()
	event, p, judge := seedScenario(t, s)
	activate(t, s, p.ID.Hex())

	rec := doJSON(t, s, http.MethodPost, "/api/scores", map[string]any{
		"participantId": p.ID.Hex(),
		"judgeId":       judge.ID.Hex(),
		"scores":        map[string]int{"Expression": 7, "Technique": 7},
	}, false)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/api/results",
		map[string]string{"participantId": p.ID.Hex()}, true)
	require.Equal(t, http.StatusOK, rec.Code)
	var completed store.Participant
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &completed))
	require.NotNil(t, completed.AverageScore)
	assert.Equal(t, 7.0, *completed.AverageScore)

	rec = doJSON(t, s, http.MethodGet, "/api/results?eventId="+event.ID.Hex(), nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	var leaderboard []logic.LeaderboardEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &leaderboard))
	require.Len(t, leaderboard, 1)
	assert.Equal(t, 1, leaderboard[0].Rank)
}

func TestResults_FinalizeWithoutScores(t *testing.T) {
	s, _, _ := newTestServer()
	_, p, _ := seedScenario(t, s)
	activate(t, s, p.ID.Hex())

	rec := doJSON(t, s, http.MethodPost, "/api/results",
		map[string]string{"participantId": p.ID.Hex()}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResults_LeaderboardForUnknownEventIsEmpty(t *testing.T) {
	s, _, _ := newTestServer()

	rec := doJSON(t, s, http.MethodGet, "/api/results?eventId=64b000000000000000000000", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

// endregion

// region Participant tests

func TestParticipants_ActivateConflict(t *testing.T) {
	s, _, _ := newTestServer()
	event, p, _ := seedScenario(t, s)
	activate(t, s, p.ID.Hex())

	rec := doJSON(t, s, http.MethodPost, "/api/participants",
		map[string]any{"name": "B", "eventId": event.ID.Hex()}, true)
	require.Equal(t, http.StatusCreated, rec.Code)
	var b store.Participant
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b))

	rec = doJSON(t, s, http.MethodPatch, "/api/participants",
		map[string]string{"id": b.ID.Hex(), "status": "active"}, true)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestEvents_DeleteCascades(t *testing.T) {
	s, ms, _ := newTestServer()
	event, p, judge := seedScenario(t, s)
	activate(t, s, p.ID.Hex())

	rec := doJSON(t, s, http.MethodPost, "/api/scores", map[string]any{
		"participantId": p.ID.Hex(),
		"judgeId":       judge.ID.Hex(),
		"scores":        map[string]int{"Expression": 8, "Technique": 9},
	}, false)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, s, http.MethodDelete, "/api/events/"+event.ID.Hex(), nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, ms.Participants)
	assert.Empty(t, ms.Scores)

	rec = doJSON(t, s, http.MethodGet, "/api/results?eventId="+event.ID.Hex(), nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

// endregion

// region Judge auth tests

func TestJudgeAuth_Exchange(t *testing.T) {
	s, _, _ := newTestServer()
	_, _, judge := seedScenario(t, s)

	rec := doJSON(t, s, http.MethodPost, "/api/judges/auth",
		map[string]string{"passcode": judge.Passcode}, false)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Token string `json:"token"`
		Judge struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"judge"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, judge.ID.Hex(), resp.Judge.ID)

	rec = doJSON(t, s, http.MethodPost, "/api/judges/auth",
		map[string]string{"passcode": "WRONGPWD"}, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJudgeAuth_TokenScoresSubmission(t *testing.T) {
	s, _, _ := newTestServer()
	_, p, judge := seedScenario(t, s)
	activate(t, s, p.ID.Hex())

	rec := doJSON(t, s, http.MethodPost, "/api/judges/auth",
		map[string]string{"passcode": judge.Passcode}, false)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(map[string]any{
		"participantId": p.ID.Hex(),
		"scores":        map[string]int{"Expression": 8, "Technique": 9},
	}))
	req := httptest.NewRequest(http.MethodPost, "/api/scores", &buf)
	req.Header.Set("X-Judge-Token", resp.Token)
	wrec := httptest.NewRecorder()
	s.Handler().ServeHTTP(wrec, req)
	require.Equal(t, http.StatusCreated, wrec.Code)

	var sub store.ScoreSubmission
	require.NoError(t, json.Unmarshal(wrec.Body.Bytes(), &sub))
	assert.Equal(t, judge.ID.Hex(), sub.JudgeID)
}

func TestJudgeAuth_RateLimited(t *testing.T) {
	s, _, _ := newTestServer()

	limited := false
	for i := 0; i < 20; i++ {
		rec := doJSON(t, s, http.MethodPost, "/api/judges/auth",
			map[string]string{"passcode": fmt.Sprintf("GUESS%03d", i)}, false)
		if rec.Code == http.StatusTooManyRequests {
			limited = true
			break
		}
	}
	assert.True(t, limited, "burst of passcode guesses should hit the rate limit")
}

// endregion

// region Misc tests

func TestHealthz(t *testing.T) {
	s, _, _ := newTestServer()
	rec := doJSON(t, s, http.MethodGet, "/healthz", nil, false)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestParticipants_ListIsArrayWhenEmpty(t *testing.T) {
	s, _, _ := newTestServer()
	rec := doJSON(t, s, http.MethodGet, "/api/participants", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

// endregion
