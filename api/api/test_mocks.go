/* test_mocks.go
 * Contains mock structures for testing the API package and its consumers
 */

package api

import (
	"context"
	"fmt"
	"sync"

	"livescore/api/notify"
	"livescore/api/shared"
	"livescore/api/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockStore implements store.Interface with in-memory maps. The duplicate gate is
// enforced the way the real unique index would, keyed on (participant, judge).
type MockStore struct {
	mu sync.Mutex

	Events       map[primitive.ObjectID]store.Event
	Participants map[primitive.ObjectID]store.Participant
	Scores       map[primitive.ObjectID]store.ScoreSubmission
	Judges       map[primitive.ObjectID]store.Judge

	scoreKeys map[string]bool // "participantHex/judgeID" pairs already inserted

	// Error injection for testing error paths
	CreateEventError      error
	GetEventError         error
	ListParticipantsError error
	InsertScoreError      error
	ListScoresError       error
	SetStatusError        error
	SetResultError        error
	DatabaseName          string
}

// NewMockStore creates a MockStore with empty collections.
func NewMockStore() *MockStore {
	return &MockStore{
		Events:       make(map[primitive.ObjectID]store.Event),
		Participants: make(map[primitive.ObjectID]store.Participant),
		Scores:       make(map[primitive.ObjectID]store.ScoreSubmission),
		Judges:       make(map[primitive.ObjectID]store.Judge),
		scoreKeys:    make(map[string]bool),
		DatabaseName: "mock",
	}
}

func (m *MockStore) EnsureIndexes() error { return nil }

// region Events

func (m *MockStore) CreateEvent(e store.Event) (store.Event, error) {
	if m.CreateEventError != nil {
		return store.Event{}, m.CreateEventError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = primitive.NewObjectID()
	m.Events[e.ID] = e
	return e, nil
}

func (m *MockStore) GetEvent(id primitive.ObjectID) (store.Event, error) {
	if m.GetEventError != nil {
		return store.Event{}, m.GetEventError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.Events[id]
	if !ok {
		return store.Event{}, fmt.Errorf("mock event lookup: %w", shared.ErrNotFound)
	}
	return e, nil
}

func (m *MockStore) ListEvents() ([]store.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var events []store.Event
	for _, e := range m.Events {
		events = append(events, e)
	}
	return events, nil
}

func (m *MockStore) DeleteEvent(id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Events[id]; !ok {
		return fmt.Errorf("mock delete event: %w", shared.ErrNotFound)
	}
	for sid, sub := range m.Scores {
		if sub.EventID == id {
			delete(m.Scores, sid)
			delete(m.scoreKeys, scoreKey(sub.ParticipantID, sub.JudgeID))
		}
	}
	for pid, p := range m.Participants {
		if p.EventID == id {
			delete(m.Participants, pid)
		}
	}
	delete(m.Events, id)
	return nil
}

// endregion

// region Participants

func (m *MockStore) CreateParticipant(p store.Participant) (store.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = primitive.NewObjectID()
	m.Participants[p.ID] = p
	return p, nil
}

func (m *MockStore) GetParticipant(id primitive.ObjectID) (store.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.Participants[id]
	if !ok {
		return store.Participant{}, fmt.Errorf("mock participant lookup: %w", shared.ErrNotFound)
	}
	return p, nil
}

func (m *MockStore) ListParticipants(eventID primitive.ObjectID, status string) ([]store.Participant, error) {
	if m.ListParticipantsError != nil {
		return nil, m.ListParticipantsError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var participants []store.Participant
	for _, p := range m.Participants {
		if !eventID.IsZero() && p.EventID != eventID {
			continue
		}
		if status != "" && p.Status != status {
			continue
		}
		participants = append(participants, p)
	}
	return participants, nil
}

func (m *MockStore) FindActiveParticipant(eventID primitive.ObjectID) (store.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.Participants {
		if p.EventID == eventID && p.Status == store.StatusActive {
			return p, nil
		}
	}
	return store.Participant{}, fmt.Errorf("mock active lookup: %w", shared.ErrNotFound)
}

func (m *MockStore) SetParticipantStatus(id primitive.ObjectID, status string) (store.Participant, error) {
	if m.SetStatusError != nil {
		return store.Participant{}, m.SetStatusError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.Participants[id]
	if !ok {
		return store.Participant{}, fmt.Errorf("mock status update: %w", shared.ErrNotFound)
	}
	p.Status = status
	m.Participants[id] = p
	return p, nil
}

func (m *MockStore) SetParticipantResult(id primitive.ObjectID, averageScore float64) (store.Participant, error) {
	if m.SetResultError != nil {
		return store.Participant{}, m.SetResultError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.Participants[id]
	if !ok {
		return store.Participant{}, fmt.Errorf("mock result update: %w", shared.ErrNotFound)
	}
	p.Status = store.StatusCompleted
	p.AverageScore = &averageScore
	m.Participants[id] = p
	return p, nil
}

func (m *MockStore) DeleteParticipant(id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Participants[id]; !ok {
		return fmt.Errorf("mock delete participant: %w", shared.ErrNotFound)
	}
	for sid, sub := range m.Scores {
		if sub.ParticipantID == id {
			delete(m.Scores, sid)
			delete(m.scoreKeys, scoreKey(sub.ParticipantID, sub.JudgeID))
		}
	}
	delete(m.Participants, id)
	return nil
}

// endregion

// region Scores

func scoreKey(participantID primitive.ObjectID, judgeID string) string {
	return participantID.Hex() + "/" + judgeID
}

func (m *MockStore) InsertScore(sub store.ScoreSubmission) (store.ScoreSubmission, error) {
	if m.InsertScoreError != nil {
		return store.ScoreSubmission{}, m.InsertScoreError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := scoreKey(sub.ParticipantID, sub.JudgeID)
	if m.scoreKeys[key] {
		return store.ScoreSubmission{}, fmt.Errorf("mock insert score: %w", shared.ErrDuplicateSubmission)
	}
	sub.ID = primitive.NewObjectID()
	m.Scores[sub.ID] = sub
	m.scoreKeys[key] = true
	return sub, nil
}

func (m *MockStore) ListScoresForParticipant(participantID primitive.ObjectID) ([]store.ScoreSubmission, error) {
	if m.ListScoresError != nil {
		return nil, m.ListScoresError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var subs []store.ScoreSubmission
	for _, sub := range m.Scores {
		if sub.ParticipantID == participantID {
			subs = append(subs, sub)
		}
	}
	return subs, nil
}

// endregion

// region Judges

func (m *MockStore) CreateJudge(j store.Judge) (store.Judge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j.ID = primitive.NewObjectID()
	m.Judges[j.ID] = j
	return j, nil
}

func (m *MockStore) GetJudge(id primitive.ObjectID) (store.Judge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.Judges[id]
	if !ok {
		return store.Judge{}, fmt.Errorf("mock judge lookup: %w", shared.ErrNotFound)
	}
	return j, nil
}

func (m *MockStore) ListJudges() ([]store.Judge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var judges []store.Judge
	for _, j := range m.Judges {
		judges = append(judges, j)
	}
	return judges, nil
}

func (m *MockStore) DeleteJudge(id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Judges[id]; !ok {
		return fmt.Errorf("mock delete judge: %w", shared.ErrNotFound)
	}
	delete(m.Judges, id)
	return nil
}

func (m *MockStore) FindJudgeByPasscode(passcode string) (store.Judge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, j := range m.Judges {
		if j.Passcode == passcode {
			return j, nil
		}
	}
	return store.Judge{}, fmt.Errorf("mock passcode lookup: %w", shared.ErrNotFound)
}

func (m *MockStore) SetJudgeSession(id primitive.ObjectID, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.Judges[id]
	if !ok {
		return fmt.Errorf("mock judge session: %w", shared.ErrNotFound)
	}
	j.SessionToken = token
	m.Judges[id] = j
	return nil
}

func (m *MockStore) FindJudgeByToken(token string) (store.Judge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, j := range m.Judges {
		if j.SessionToken == token && token != "" {
			return j, nil
		}
	}
	return store.Judge{}, fmt.Errorf("mock token lookup: %w", shared.ErrNotFound)
}

// endregion

// mockDatabase implements the minimal Database interface needed for tests
type mockDatabase struct {
	name string
}

func (m *mockDatabase) Name() string { return m.name }

// GetDatabase returns a stand-in database handle
func (m *MockStore) GetDatabase() interface{ Name() string } {
	return &mockDatabase{name: m.DatabaseName}
}

// mockClient implements the minimal Client interface needed for tests
type mockClient struct{}

func (m *mockClient) Disconnect(context.Context) error { return nil }

// GetClient returns a stand-in client handle
func (m *MockStore) GetClient() interface{ Disconnect(context.Context) error } {
	return &mockClient{}
}

// Ensure MockStore implements the store interface
var _ store.Interface = (*MockStore)(nil)

// MockNotifier records every published message for assertions.
type MockNotifier struct {
	mu        sync.Mutex
	Published []notify.Message
}

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) Publish(topic string, kind string, payload any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Published = append(m.Published, notify.Message{Kind: kind, Payload: payload})
}

func (m *MockNotifier) Subscribe(topic string) (<-chan notify.Message, func()) {
	ch := make(chan notify.Message)
	close(ch)
	return ch, func() {}
}

// Kinds returns the published event kinds in order.
func (m *MockNotifier) Kinds() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	kinds := make([]string, 0, len(m.Published))
	for _, msg := range m.Published {
		kinds = append(kinds, msg.Kind)
	}
	return kinds
}

// Last returns the most recent message with the given kind, or false.
func (m *MockNotifier) Last(kind string) (notify.Message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.Published) - 1; i >= 0; i-- {
		if m.Published[i].Kind == kind {
			return m.Published[i], true
		}
	}
	return notify.Message{}, false
}

var _ notify.Notifier = (*MockNotifier)(nil)
