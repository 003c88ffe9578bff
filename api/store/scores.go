/* scores.go
 * Contains the methods for interacting with the scores collection
 */

package store

import (
	"context"
	"fmt"

	"livescore/api/shared"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// InsertScore persists a judge's score submission. The unique compound index on
// (participantid, judgeid) makes this the idempotency gate: a second submission from
// the same judge fails here with ErrDuplicateSubmission no matter how the two
// requests interleave, so there is no separate check-then-act step.
// Preconditions: Receives a fully populated ScoreSubmission
// Postconditions: Returns the stored submission with its generated id,
// ErrDuplicateSubmission if the (participant, judge) pair already has one, or a
// store error
func (s *Store) InsertScore(sub ScoreSubmission) (ScoreSubmission, error) {
	res, err := s.Collections.Scores.InsertOne(context.TODO(), sub)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ScoreSubmission{}, fmt.Errorf("insert score: %w", shared.ErrDuplicateSubmission)
		}
		return ScoreSubmission{}, unavailable("failed to insert score", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		sub.ID = id
	}
	return sub, nil
}

// ListScoresForParticipant returns every submission recorded for a participant.
// Preconditions: Receives the participant's ObjectID
// Postconditions: Returns a slice of ScoreSubmission (possibly empty), or an error if it occurs
func (s *Store) ListScoresForParticipant(participantID primitive.ObjectID) ([]ScoreSubmission, error) {
	cursor, err := s.Collections.Scores.Find(context.TODO(), bson.M{"participantid": participantID})
	if err != nil {
		return nil, unavailable("failed to fetch scores", err)
	}

	var subs []ScoreSubmission
	if err = cursor.All(context.TODO(), &subs); err != nil {
		return nil, fmt.Errorf("error unpacking cursor into slice of scores: %w", err)
	}
	return subs, nil
}
