/* store.go
 * Contains the Store struct and NewStore function. The methods for this package are
 * split across four files: events, participants, scores and judges. Each of these
 * files contains the methods for interacting with that collection
 */

package store

import (
	"context"
	"errors"
	"fmt"

	"livescore/api/shared"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	Client      *mongo.Client
	Database    *mongo.Database
	Collections struct {
		Events       *mongo.Collection
		Participants *mongo.Collection
		Scores       *mongo.Collection
		Judges       *mongo.Collection
	}
}

// NewStore initialises the Store. Connects to Mongo and binds the collections.
// Preconditions: Receives strings containing dbName and mongoURI
// Postconditions: Returns pointer to the Store object, or error if it occurs
func NewStore(dbName string, mongoURI string) (*Store, error) {
	if dbName == "" {
		return nil, fmt.Errorf("dbName cannot be empty")
	}

	client, err := mongo.Connect(context.TODO(), options.Client().ApplyURI(mongoURI))
	if err != nil {
		return nil, err
	}
	db := client.Database(dbName)

	s := &Store{
		Client:   client,
		Database: db,
	}
	s.Collections.Events = db.Collection("events")
	s.Collections.Participants = db.Collection("participants")
	s.Collections.Scores = db.Collection("scores")
	s.Collections.Judges = db.Collection("judges")

	return s, nil
}

// EnsureIndexes creates the indexes the scoring invariants depend on. The unique
// compound index on (participantid, judgeid) is what makes the one-submission-per-judge
// check atomic with the insert; without it two concurrent retries could both commit.
// Preconditions: Store has been initialised with NewStore
// Postconditions: Indexes exist in the database, or returns an error if creation fails
func (s *Store) EnsureIndexes() error {
	_, err := s.Collections.Scores.Indexes().CreateOne(context.TODO(), mongo.IndexModel{
		Keys:    bson.D{{Key: "participantid", Value: 1}, {Key: "judgeid", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create scores index: %w", err)
	}

	_, err = s.Collections.Judges.Indexes().CreateOne(context.TODO(), mongo.IndexModel{
		Keys:    bson.D{{Key: "passcode", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create judges index: %w", err)
	}

	_, err = s.Collections.Participants.Indexes().CreateOne(context.TODO(), mongo.IndexModel{
		Keys: bson.D{{Key: "eventid", Value: 1}, {Key: "status", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create participants index: %w", err)
	}

	return nil
}

// unavailable wraps a driver error as a retryable store failure while keeping the
// original error text for the logs.
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %v: %w", op, err, shared.ErrStoreUnavailable)
}

// notFoundOr maps mongo.ErrNoDocuments to the domain NotFound sentinel and treats
// everything else as a transient store failure.
func notFoundOr(op string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%s: %w", op, shared.ErrNotFound)
	}
	return unavailable(op, err)
}
