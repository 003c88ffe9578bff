/* api.go
 * This file contains the public methods for interacting with this package: the
 * scoring coordinator tying the store, the aggregation logic and the notifier
 * together. For consistent invariants, callers should only go through this file,
 * not the store or logic sub packages
 */

package api

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"livescore/api/logic"
	"livescore/api/notify"
	"livescore/api/shared"
	"livescore/api/store"
	"livescore/metrics"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// API provides methods for coordinating the live scoring session: participant
// lifecycle, score submission, aggregation and fan-out.
type API struct {
	Store    store.Interface
	Notifier notify.Notifier
}

// NewAPI creates a new API instance backed by Mongo and wires the notifier.
// Preconditions: Receives dbName and mongoURI strings and a Notifier (may be nil)
// Postconditions: Returns the API with store indexes ensured, or an error if it occurs
func NewAPI(dbName string, mongoURI string, notifier notify.Notifier) (*API, error) {
	if dbName == "" {
		return nil, fmt.Errorf("dbName is required")
	}

	s, err := store.NewStore(dbName, mongoURI)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}
	if err := s.EnsureIndexes(); err != nil {
		return nil, fmt.Errorf("failed to ensure indexes: %w", err)
	}

	return &API{
		Store:    s,
		Notifier: notifier,
	}, nil
}

// publish fans an event out to subscribers. Best effort only: the broker logs and
// swallows drops, so a missed live update never affects the committed state change.
func (a *API) publish(kind string, payload any) {
	if a.Notifier == nil {
		return
	}
	a.Notifier.Publish(notify.TopicCompetition, kind, payload)
}

// parseID converts a caller-supplied hex id into an ObjectID. A malformed id can
// never refer to a stored document, so it reports NotFound rather than a separate
// syntax error.
func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("invalid id %q: %w", id, shared.ErrNotFound)
	}
	return oid, nil
}

// region Events

// CreateEvent creates an event with the given criterion names. Every criterion has
// the fixed 10 point maximum.
// Preconditions: Receives a non-empty name and at least one criterion name
// Postconditions: Returns the stored event, or an error if it occurs
func (a *API) CreateEvent(name string, criterionNames []string) (store.Event, error) {
	if name == "" {
		return store.Event{}, fmt.Errorf("event name is required")
	}
	if len(criterionNames) == 0 {
		return store.Event{}, fmt.Errorf("at least one criterion is required")
	}

	criteria := make([]store.Criterion, 0, len(criterionNames))
	seen := make(map[string]bool)
	for _, n := range criterionNames {
		n = strings.TrimSpace(n)
		if n == "" {
			return store.Event{}, fmt.Errorf("criterion names cannot be empty")
		}
		if seen[n] {
			return store.Event{}, fmt.Errorf("criterion '%s' listed more than once", n)
		}
		seen[n] = true
		criteria = append(criteria, store.Criterion{Name: n, MaxPoints: store.MaxCriterionPoints})
	}

	return a.Store.CreateEvent(store.Event{
		Name:      name,
		Criteria:  criteria,
		CreatedAt: time.Now().UTC(),
	})
}

// Events returns all events.
func (a *API) Events() ([]store.Event, error) {
	return a.Store.ListEvents()
}

// Event returns a single event by id.
func (a *API) Event(id string) (store.Event, error) {
	oid, err := parseID(id)
	if err != nil {
		return store.Event{}, err
	}
	return a.Store.GetEvent(oid)
}

// DeleteEvent removes an event and cascades to its participants and their scores.
// This is destructive and non-reversible.
// Preconditions: Receives the event's hex id
// Postconditions: The event and everything it owns is deleted, or an error if it occurs
func (a *API) DeleteEvent(id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	return a.Store.DeleteEvent(oid)
}

// endregion

// region Participants

// CreateParticipant registers a new participant on an event with status pending.
// Preconditions: Receives the owning event's hex id, a non-empty name and an
// optional participant number (0 means none)
// Postconditions: Returns the stored participant, or an error if it occurs
func (a *API) CreateParticipant(eventID string, name string, number int) (store.Participant, error) {
	if name == "" {
		return store.Participant{}, fmt.Errorf("participant name is required")
	}
	eid, err := parseID(eventID)
	if err != nil {
		return store.Participant{}, err
	}
	// The owning event must exist; a participant without an event has no criteria to
	// be scored against
	if _, err := a.Store.GetEvent(eid); err != nil {
		return store.Participant{}, err
	}

	return a.Store.CreateParticipant(store.Participant{
		EventID:   eid,
		Name:      name,
		Number:    number,
		Status:    store.StatusPending,
		CreatedAt: time.Now().UTC(),
	})
}

// Participants lists participants filtered by event, status and an optional fuzzy
// name search. Empty filters match everything.
// Preconditions: eventID may be empty or a hex id; status may be empty or one of the
// lifecycle states; search may be empty
// Postconditions: Returns the matching participants, or an error if it occurs
func (a *API) Participants(eventID string, status string, search string) ([]store.Participant, error) {
	var eid primitive.ObjectID
	if eventID != "" {
		var err error
		if eid, err = parseID(eventID); err != nil {
			return nil, err
		}
	}

	participants, err := a.Store.ListParticipants(eid, status)
	if err != nil {
		return nil, err
	}
	if search == "" {
		return participants, nil
	}

	// Fuzzy match against lowercased names so "ana" finds "Anastasia"
	target := strings.ToLower(search)
	var matched []store.Participant
	for _, p := range participants {
		if fuzzy.Match(target, strings.ToLower(p.Name)) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

// ActivateParticipant moves a participant to active, opening it for judge scoring.
// The single-active-slot invariant is enforced here: if another participant in the
// same event is active the call fails with ErrActiveConflict and the admin must
// deactivate it first. Re-activating the already-active participant is idempotent.
// Preconditions: Receives the participant's hex id
// Postconditions: Returns the active participant and broadcasts participant-activated,
// or returns ErrNotFound / ErrAlreadyCompleted / ErrActiveConflict
func (a *API) ActivateParticipant(id string) (store.Participant, error) {
	oid, err := parseID(id)
	if err != nil {
		return store.Participant{}, err
	}

	p, err := a.Store.GetParticipant(oid)
	if err != nil {
		return store.Participant{}, err
	}
	switch p.Status {
	case store.StatusCompleted:
		return store.Participant{}, fmt.Errorf("activate %s: %w", id, shared.ErrAlreadyCompleted)
	case store.StatusActive:
		return p, nil
	}

	current, err := a.Store.FindActiveParticipant(p.EventID)
	if err == nil && current.ID != oid {
		return store.Participant{}, fmt.Errorf("activate %s: '%s' is live: %w", id, current.Name, shared.ErrActiveConflict)
	}
	if err != nil && !isNotFound(err) {
		return store.Participant{}, err
	}

	updated, err := a.Store.SetParticipantStatus(oid, store.StatusActive)
	if err != nil {
		return store.Participant{}, err
	}

	a.publish(notify.KindParticipantActivated, notify.ParticipantActivated{Participant: updated})
	return updated, nil
}

// DeactivateParticipant returns an active participant to pending, giving the live
// slot back without recording a result. Deactivating a pending participant is a
// no-op; a completed participant cannot leave its terminal state.
// Preconditions: Receives the participant's hex id
// Postconditions: Returns the pending participant, or an error if it occurs
func (a *API) DeactivateParticipant(id string) (store.Participant, error) {
	oid, err := parseID(id)
	if err != nil {
		return store.Participant{}, err
	}

	p, err := a.Store.GetParticipant(oid)
	if err != nil {
		return store.Participant{}, err
	}
	switch p.Status {
	case store.StatusCompleted:
		return store.Participant{}, fmt.Errorf("deactivate %s: %w", id, shared.ErrAlreadyCompleted)
	case store.StatusPending:
		return p, nil
	}

	return a.Store.SetParticipantStatus(oid, store.StatusPending)
}

// DeleteParticipant removes a participant and cascades to its scores.
// Preconditions: Receives the participant's hex id
// Postconditions: The participant and its scores are deleted, or an error if it occurs
func (a *API) DeleteParticipant(id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	return a.Store.DeleteParticipant(oid)
}

// endregion

// region Scoring

// SubmitScore records one judge's scores for the active participant. Validation order:
// participant exists, participant is active, judge exists, every event criterion is
// covered, every value is in range. The store's unique index makes the final insert
// the duplicate gate, so concurrent retries from a flaky network cannot double-record.
// Preconditions: Receives the participant's hex id, the judge's hex id, the judge's
// display name as supplied by the client (falls back to the stored name when empty)
// and a map of criterion name to integer points
// Postconditions: Persists the submission, broadcasts score-submitted without the
// per-criterion breakdown, and returns the stored submission; or returns ErrNotFound /
// ErrNotActive / ErrIncompleteScore / ErrInvalidScore / ErrDuplicateSubmission
func (a *API) SubmitScore(participantID string, judgeID string, judgeName string, criterionScores map[string]int) (store.ScoreSubmission, error) {
	pid, err := parseID(participantID)
	if err != nil {
		return store.ScoreSubmission{}, err
	}
	jid, err := parseID(judgeID)
	if err != nil {
		return store.ScoreSubmission{}, err
	}

	p, err := a.Store.GetParticipant(pid)
	if err != nil {
		return store.ScoreSubmission{}, err
	}
	if p.Status != store.StatusActive {
		return store.ScoreSubmission{}, fmt.Errorf("participant %s is %s: %w", participantID, p.Status, shared.ErrNotActive)
	}

	judge, err := a.Store.GetJudge(jid)
	if err != nil {
		return store.ScoreSubmission{}, err
	}
	if judgeName == "" {
		judgeName = judge.Name
	}

	event, err := a.Store.GetEvent(p.EventID)
	if err != nil {
		return store.ScoreSubmission{}, err
	}
	if err := validateCriterionScores(event, criterionScores); err != nil {
		return store.ScoreSubmission{}, err
	}

	total, err := logic.TotalScore(criterionScores)
	if err != nil {
		return store.ScoreSubmission{}, err
	}

	sub, err := a.Store.InsertScore(store.ScoreSubmission{
		ParticipantID: pid,
		EventID:       p.EventID,
		JudgeID:       judge.ID.Hex(),
		JudgeName:     judgeName,
		Scores:        criterionScores,
		TotalScore:    total,
		SubmittedAt:   time.Now().UTC(),
	})
	if err != nil {
		if isDuplicate(err) {
			metrics.RecordDuplicateSubmission()
		}
		return store.ScoreSubmission{}, err
	}
	metrics.RecordScoreSubmitted()

	a.publish(notify.KindScoreSubmitted, notify.ScoreSubmitted{
		ParticipantID: sub.ParticipantID.Hex(),
		JudgeID:       sub.JudgeID,
		JudgeName:     sub.JudgeName,
		TotalScore:    sub.TotalScore,
	})
	return sub, nil
}

// validateCriterionScores checks a submission against the event's criteria: every
// criterion must be present, no unknown criteria, and every value must be an integer
// in [0, max].
func validateCriterionScores(event store.Event, criterionScores map[string]int) error {
	defined := make(map[string]store.Criterion, len(event.Criteria))
	for _, c := range event.Criteria {
		defined[c.Name] = c
	}

	for name, value := range criterionScores {
		c, ok := defined[name]
		if !ok {
			return fmt.Errorf("criterion '%s' is not defined on event '%s': %w", name, event.Name, shared.ErrInvalidScore)
		}
		if value < 0 || value > c.MaxPoints {
			return fmt.Errorf("criterion '%s' value %d out of range [0,%d]: %w", name, value, c.MaxPoints, shared.ErrInvalidScore)
		}
	}
	for _, c := range event.Criteria {
		if _, ok := criterionScores[c.Name]; !ok {
			return fmt.Errorf("criterion '%s' is missing: %w", c.Name, shared.ErrIncompleteScore)
		}
	}
	return nil
}

// ScoresForParticipant returns every submission for a participant, including the
// per-criterion breakdown. This is the pull path for what the score-submitted
// broadcast leaves out.
// Preconditions: Receives the participant's hex id
// Postconditions: Returns the submissions oldest first, or an error if it occurs
func (a *API) ScoresForParticipant(participantID string) ([]store.ScoreSubmission, error) {
	pid, err := parseID(participantID)
	if err != nil {
		return nil, err
	}
	subs, err := a.Store.ListScoresForParticipant(pid)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(subs, func(i, j int) bool {
		return subs[i].SubmittedAt.Before(subs[j].SubmittedAt)
	})
	return subs, nil
}

// FinalizeParticipant closes an active participant's live window: computes the frozen
// average over all submissions, marks the participant completed, re-ranks the event's
// leaderboard and broadcasts it. A participant with zero submissions cannot be
// finalized; the competition cannot certify a result no judge scored.
// Preconditions: Receives the participant's hex id
// Postconditions: Returns the completed participant with its average set and
// broadcasts leaderboard-updated; or returns ErrNotFound / ErrNotActive /
// ErrAlreadyCompleted / ErrNoScores with the status unchanged
func (a *API) FinalizeParticipant(participantID string) (store.Participant, error) {
	pid, err := parseID(participantID)
	if err != nil {
		return store.Participant{}, err
	}

	p, err := a.Store.GetParticipant(pid)
	if err != nil {
		return store.Participant{}, err
	}
	switch p.Status {
	case store.StatusCompleted:
		return store.Participant{}, fmt.Errorf("finalize %s: %w", participantID, shared.ErrAlreadyCompleted)
	case store.StatusPending:
		return store.Participant{}, fmt.Errorf("finalize %s: %w", participantID, shared.ErrNotActive)
	}

	subs, err := a.Store.ListScoresForParticipant(pid)
	if err != nil {
		return store.Participant{}, err
	}
	average, err := logic.AverageScore(subs)
	if err != nil {
		return store.Participant{}, fmt.Errorf("finalize %s: %w", participantID, err)
	}

	updated, err := a.Store.SetParticipantResult(pid, average)
	if err != nil {
		return store.Participant{}, err
	}
	metrics.RecordParticipantFinalized()

	// Re-rank and broadcast. The pull endpoint stays authoritative if this is missed
	leaderboard, err := a.leaderboardForEvent(updated.EventID)
	if err == nil {
		a.publish(notify.KindLeaderboardUpdated, notify.LeaderboardUpdated{
			EventID:     updated.EventID.Hex(),
			Leaderboard: leaderboard,
		})
	}

	return updated, nil
}

// endregion

// region Leaderboard

// Leaderboard returns the ranked leaderboard for an event. An unknown or deleted
// event yields an empty leaderboard, never an error, so viewers can always render.
// Preconditions: Receives the event's hex id
// Postconditions: Returns the ordered entries, or an error only for store failures
func (a *API) Leaderboard(eventID string) ([]logic.LeaderboardEntry, error) {
	eid, err := primitive.ObjectIDFromHex(eventID)
	if err != nil {
		return []logic.LeaderboardEntry{}, nil
	}
	return a.leaderboardForEvent(eid)
}

func (a *API) leaderboardForEvent(eventID primitive.ObjectID) ([]logic.LeaderboardEntry, error) {
	completed, err := a.Store.ListParticipants(eventID, store.StatusCompleted)
	if err != nil {
		return nil, err
	}
	return logic.Rank(completed), nil
}

// endregion

// region Judges

// CreateJudge registers a judge and generates their unique 8 character passcode.
// Preconditions: Receives a non-empty name and an optional phone
// Postconditions: Returns the stored judge including the passcode the admin hands
// out, or an error if it occurs
func (a *API) CreateJudge(name string, phone string) (store.Judge, error) {
	if name == "" {
		return store.Judge{}, fmt.Errorf("judge name is required")
	}
	passcode, err := shared.NewPasscode()
	if err != nil {
		return store.Judge{}, fmt.Errorf("failed to generate passcode: %w", err)
	}

	return a.Store.CreateJudge(store.Judge{
		Name:      name,
		Phone:     phone,
		Passcode:  passcode,
		CreatedAt: time.Now().UTC(),
	})
}

// Judges returns all judges, passcodes included; the admin console shows them so
// they can be handed out.
func (a *API) Judges() ([]store.Judge, error) {
	return a.Store.ListJudges()
}

// DeleteJudge removes a judge. Their session token stops resolving, which revokes it.
func (a *API) DeleteJudge(id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	return a.Store.DeleteJudge(oid)
}

// AuthenticateJudge exchanges a passcode for the judge identity and a fresh session
// token. The passcode comparison is case insensitive; stored passcodes are uppercase.
// Preconditions: Receives the passcode string
// Postconditions: Returns the judge and the issued token, or ErrNotFound when the
// passcode matches no judge
func (a *API) AuthenticateJudge(passcode string) (store.Judge, string, error) {
	if passcode == "" {
		return store.Judge{}, "", fmt.Errorf("passcode is required")
	}

	judge, err := a.Store.FindJudgeByPasscode(strings.ToUpper(passcode))
	if err != nil {
		return store.Judge{}, "", err
	}

	token := shared.NewSessionToken()
	if err := a.Store.SetJudgeSession(judge.ID, token); err != nil {
		return store.Judge{}, "", err
	}
	return judge, token, nil
}

// JudgeByToken re-validates a held session token. A token for a since-deleted judge
// fails with ErrNotFound, which is the revocation mechanism.
func (a *API) JudgeByToken(token string) (store.Judge, error) {
	if token == "" {
		return store.Judge{}, fmt.Errorf("token is required")
	}
	return a.Store.FindJudgeByToken(token)
}

// endregion
