/* models.go
 * This file contains the structs and constants that relate to DB objects
 */

package store

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Participant lifecycle states. A participant is created pending, is moved to active
// by the admin, and ends up completed once its result is finalized.
const (
	StatusPending   = "pending"
	StatusActive    = "active"
	StatusCompleted = "completed"
)

// MaxCriterionPoints is the fixed upper bound of every criterion in this system.
const MaxCriterionPoints = 10

// Criterion is a named scoring dimension on an event.
type Criterion struct {
	Name      string `bson:"name" json:"name"`
	MaxPoints int    `bson:"maxpoints" json:"maxPoints"`
}

// Event is a competition event with an ordered list of scoring criteria.
type Event struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Criteria  []Criterion        `bson:"criteria" json:"criteria"`
	CreatedAt time.Time          `bson:"createdat" json:"createdAt"`
}

// Participant is a competitor within an event. AverageScore is only set once the
// participant has been finalized and never changes afterwards.
type Participant struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID      primitive.ObjectID `bson:"eventid" json:"eventId"`
	Name         string             `bson:"name" json:"name"`
	Number       int                `bson:"number,omitempty" json:"participantNumber,omitempty"`
	Status       string             `bson:"status" json:"status"`
	AverageScore *float64           `bson:"averagescore,omitempty" json:"averageScore,omitempty"`
	CreatedAt    time.Time          `bson:"createdat" json:"createdAt"`
}

// ScoreSubmission is one judge's scoring of one participant. At most one submission
// may exist per (participant, judge) pair; the scores collection carries a unique
// compound index on those two fields.
type ScoreSubmission struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ParticipantID primitive.ObjectID `bson:"participantid" json:"participantId"`
	EventID       primitive.ObjectID `bson:"eventid" json:"eventId"`
	JudgeID       string             `bson:"judgeid" json:"judgeId"`
	JudgeName     string             `bson:"judgename" json:"judgeName"`
	Scores        map[string]int     `bson:"scores" json:"scores"`
	TotalScore    float64            `bson:"totalscore" json:"totalScore"`
	SubmittedAt   time.Time          `bson:"submittedat" json:"submittedAt"`
}

// Judge is a scoring judge. The passcode is the one-time bootstrap credential; the
// session token is issued on passcode exchange and held by the judge's client.
type Judge struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Phone        string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Passcode     string             `bson:"passcode" json:"passcode"`
	SessionToken string             `bson:"sessiontoken,omitempty" json:"-"`
	CreatedAt    time.Time          `bson:"createdat" json:"createdAt"`
}
