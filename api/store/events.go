/* events.go
 * Contains the methods for interacting with the events collection
 */

package store

import (
	"context"
	"fmt"

	"livescore/api/shared"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CreateEvent inserts a new event document.
// Preconditions: Receives an Event with name and criteria populated
// Postconditions: Returns the stored Event with its generated id, or an error if it occurs
func (s *Store) CreateEvent(e Event) (Event, error) {
	res, err := s.Collections.Events.InsertOne(context.TODO(), e)
	if err != nil {
		return Event{}, unavailable("failed to insert event", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		e.ID = id
	}
	return e, nil
}

// GetEvent does a DB lookup for a single event by id.
// Preconditions: Receives the event's ObjectID
// Postconditions: Returns the Event if it exists, or ErrNotFound / a store error
func (s *Store) GetEvent(id primitive.ObjectID) (Event, error) {
	var e Event
	err := s.Collections.Events.FindOne(context.TODO(), bson.M{"_id": id}).Decode(&e)
	if err != nil {
		return Event{}, notFoundOr("event lookup failed", err)
	}
	return e, nil
}

// ListEvents returns all events.
// Preconditions: none
// Postconditions: Returns a slice of Event (possibly empty), or an error if it occurs
func (s *Store) ListEvents() ([]Event, error) {
	cursor, err := s.Collections.Events.Find(context.TODO(), bson.M{})
	if err != nil {
		return nil, unavailable("failed to fetch events", err)
	}

	var events []Event
	if err = cursor.All(context.TODO(), &events); err != nil {
		return nil, fmt.Errorf("error unpacking cursor into slice of events: %w", err)
	}
	return events, nil
}

// DeleteEvent removes an event and everything owned by it: the event's scores, then
// its participants, then the event itself. The cascade is not transactional; a crash
// mid-delete can leave the event without scores but with participants.
// Preconditions: Receives the event's ObjectID
// Postconditions: The event and its owned documents are gone, or ErrNotFound if the
// event did not exist
func (s *Store) DeleteEvent(id primitive.ObjectID) error {
	if _, err := s.Collections.Scores.DeleteMany(context.TODO(), bson.M{"eventid": id}); err != nil {
		return unavailable("failed to delete event scores", err)
	}
	if _, err := s.Collections.Participants.DeleteMany(context.TODO(), bson.M{"eventid": id}); err != nil {
		return unavailable("failed to delete event participants", err)
	}

	res, err := s.Collections.Events.DeleteOne(context.TODO(), bson.M{"_id": id})
	if err != nil {
		return unavailable("failed to delete event", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("delete event: %w", shared.ErrNotFound)
	}
	return nil
}
