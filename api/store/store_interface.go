/* store_interface.go
 * Contains the Store interface for dependency injection and testing
 */

package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Interface defines the methods that Store implements.
// This allows for mocking in tests.
type Interface interface {
	EnsureIndexes() error

	// Events
	CreateEvent(e Event) (Event, error)
	GetEvent(id primitive.ObjectID) (Event, error)
	ListEvents() ([]Event, error)
	DeleteEvent(id primitive.ObjectID) error

	// Participants
	CreateParticipant(p Participant) (Participant, error)
	GetParticipant(id primitive.ObjectID) (Participant, error)
	ListParticipants(eventID primitive.ObjectID, status string) ([]Participant, error)
	FindActiveParticipant(eventID primitive.ObjectID) (Participant, error)
	SetParticipantStatus(id primitive.ObjectID, status string) (Participant, error)
	SetParticipantResult(id primitive.ObjectID, averageScore float64) (Participant, error)
	DeleteParticipant(id primitive.ObjectID) error

	// Scores
	InsertScore(sub ScoreSubmission) (ScoreSubmission, error)
	ListScoresForParticipant(participantID primitive.ObjectID) ([]ScoreSubmission, error)

	// Judges
	CreateJudge(j Judge) (Judge, error)
	GetJudge(id primitive.ObjectID) (Judge, error)
	ListJudges() ([]Judge, error)
	DeleteJudge(id primitive.ObjectID) error
	FindJudgeByPasscode(passcode string) (Judge, error)
	SetJudgeSession(id primitive.ObjectID, token string) error
	FindJudgeByToken(token string) (Judge, error)

	// Getter methods for accessing fields
	GetDatabase() interface{ Name() string }
	GetClient() interface{ Disconnect(context.Context) error }
}

// Ensure Store implements Interface
var _ Interface = (*Store)(nil)

// GetDatabase returns the database instance
func (s *Store) GetDatabase() interface{ Name() string } {
	return s.Database
}

// GetClient returns the MongoDB client
func (s *Store) GetClient() interface{ Disconnect(context.Context) error } {
	return s.Client
}
