/* participants.go
 * Contains the methods for interacting with the participants collection
 */

package store

import (
	"context"
	"fmt"

	"livescore/api/shared"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateParticipant inserts a new participant document.
// Preconditions: Receives a Participant with eventid, name and status populated
// Postconditions: Returns the stored Participant with its generated id, or an error if it occurs
func (s *Store) CreateParticipant(p Participant) (Participant, error) {
	res, err := s.Collections.Participants.InsertOne(context.TODO(), p)
	if err != nil {
		return Participant{}, unavailable("failed to insert participant", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		p.ID = id
	}
	return p, nil
}

// GetParticipant does a DB lookup for a single participant by id.
// Preconditions: Receives the participant's ObjectID
// Postconditions: Returns the Participant if it exists, or ErrNotFound / a store error
func (s *Store) GetParticipant(id primitive.ObjectID) (Participant, error) {
	var p Participant
	err := s.Collections.Participants.FindOne(context.TODO(), bson.M{"_id": id}).Decode(&p)
	if err != nil {
		return Participant{}, notFoundOr("participant lookup failed", err)
	}
	return p, nil
}

// ListParticipants returns the participants matching the given filters. A zero eventID
// matches every event and an empty status matches every status.
// Preconditions: none
// Postconditions: Returns a slice of Participant (possibly empty), or an error if it occurs
func (s *Store) ListParticipants(eventID primitive.ObjectID, status string) ([]Participant, error) {
	filter := bson.M{}
	if !eventID.IsZero() {
		filter["eventid"] = eventID
	}
	if status != "" {
		filter["status"] = status
	}

	cursor, err := s.Collections.Participants.Find(context.TODO(), filter)
	if err != nil {
		return nil, unavailable("failed to fetch participants", err)
	}

	var participants []Participant
	if err = cursor.All(context.TODO(), &participants); err != nil {
		return nil, fmt.Errorf("error unpacking cursor into slice of participants: %w", err)
	}
	return participants, nil
}

// FindActiveParticipant returns the participant currently active in the given event.
// Preconditions: Receives the event's ObjectID
// Postconditions: Returns the active Participant, or ErrNotFound when the event has none
func (s *Store) FindActiveParticipant(eventID primitive.ObjectID) (Participant, error) {
	var p Participant
	err := s.Collections.Participants.FindOne(context.TODO(),
		bson.M{"eventid": eventID, "status": StatusActive}).Decode(&p)
	if err != nil {
		return Participant{}, notFoundOr("active participant lookup failed", err)
	}
	return p, nil
}

// SetParticipantStatus updates a participant's lifecycle status and returns the
// updated document.
// Preconditions: Receives the participant's ObjectID and one of the Status constants
// Postconditions: Returns the updated Participant, or ErrNotFound / a store error
func (s *Store) SetParticipantStatus(id primitive.ObjectID, status string) (Participant, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var p Participant
	err := s.Collections.Participants.FindOneAndUpdate(context.TODO(),
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status}},
		opts).Decode(&p)
	if err != nil {
		return Participant{}, notFoundOr("participant status update failed", err)
	}
	return p, nil
}

// SetParticipantResult freezes a participant's final result: status becomes completed
// and the average score is written in the same update.
// Preconditions: Receives the participant's ObjectID and the computed average
// Postconditions: Returns the updated Participant, or ErrNotFound / a store error
func (s *Store) SetParticipantResult(id primitive.ObjectID, averageScore float64) (Participant, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var p Participant
	err := s.Collections.Participants.FindOneAndUpdate(context.TODO(),
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": StatusCompleted, "averagescore": averageScore}},
		opts).Decode(&p)
	if err != nil {
		return Participant{}, notFoundOr("participant result update failed", err)
	}
	return p, nil
}

// DeleteParticipant removes a participant and its scores. Like DeleteEvent the cascade
// is not transactional.
// Preconditions: Receives the participant's ObjectID
// Postconditions: The participant and its scores are gone, or ErrNotFound if the
// participant did not exist
func (s *Store) DeleteParticipant(id primitive.ObjectID) error {
	if _, err := s.Collections.Scores.DeleteMany(context.TODO(), bson.M{"participantid": id}); err != nil {
		return unavailable("failed to delete participant scores", err)
	}

	res, err := s.Collections.Participants.DeleteOne(context.TODO(), bson.M{"_id": id})
	if err != nil {
		return unavailable("failed to delete participant", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("delete participant: %w", shared.ErrNotFound)
	}
	return nil
}
