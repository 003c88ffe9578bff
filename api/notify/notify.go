/* notify.go
 * Contains the Notifier interface, the broadcast topic and event kind names, and the
 * payload structs carried by each kind
 */

package notify

import (
	"livescore/api/logic"
	"livescore/api/store"
)

// TopicCompetition is the single logical topic every client subscribes to. Admin,
// judge and spectator views all consume the same stream and filter by kind.
const TopicCompetition = "competition"

// Event kinds carried on the competition topic.
const (
	KindParticipantActivated = "participant-activated"
	KindScoreSubmitted       = "score-submitted"
	KindLeaderboardUpdated   = "leaderboard-updated"
)

// Message is one broadcast frame: the event kind plus its payload. Delivery is
// at-most-once; consumers treat each message as a hint and reconcile authoritative
// state through the pull endpoints.
type Message struct {
	Kind    string `json:"event"`
	Payload any    `json:"data"`
}

// Notifier fans messages out to every subscriber of a topic. Publish never blocks
// and never reports failure to the caller; a missed live update must not block the
// state transition that already committed to storage.
type Notifier interface {
	Publish(topic string, kind string, payload any)
	Subscribe(topic string) (<-chan Message, func())
}

// ParticipantActivated announces the participant now open for judging.
type ParticipantActivated struct {
	Participant store.Participant `json:"participant"`
}

// ScoreSubmitted announces a judge's submission. The per-criterion breakdown is
// deliberately left out to keep the live payload small; it stays available through
// the scores query.
type ScoreSubmitted struct {
	ParticipantID string  `json:"participantId"`
	JudgeID       string  `json:"judgeId"`
	JudgeName     string  `json:"judgeName"`
	TotalScore    float64 `json:"totalScore"`
}

// LeaderboardUpdated carries the full re-ranked leaderboard for an event.
type LeaderboardUpdated struct {
	EventID     string                   `json:"eventId"`
	Leaderboard []logic.LeaderboardEntry `json:"leaderboard"`
}
