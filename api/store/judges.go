/* judges.go
 * Contains the methods for interacting with the judges collection
 */

package store

import (
	"context"
	"fmt"

	"livescore/api/shared"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CreateJudge inserts a new judge document. The judges collection carries a unique
// index on passcode, so a colliding passcode surfaces as an insert error.
// Preconditions: Receives a Judge with name and passcode populated
// Postconditions: Returns the stored Judge with its generated id, or an error if it occurs
func (s *Store) CreateJudge(j Judge) (Judge, error) {
	res, err := s.Collections.Judges.InsertOne(context.TODO(), j)
	if err != nil {
		return Judge{}, unavailable("failed to insert judge", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		j.ID = id
	}
	return j, nil
}

// GetJudge does a DB lookup for a single judge by id.
// Preconditions: Receives the judge's ObjectID
// Postconditions: Returns the Judge if it exists, or ErrNotFound / a store error
func (s *Store) GetJudge(id primitive.ObjectID) (Judge, error) {
	var j Judge
	err := s.Collections.Judges.FindOne(context.TODO(), bson.M{"_id": id}).Decode(&j)
	if err != nil {
		return Judge{}, notFoundOr("judge lookup failed", err)
	}
	return j, nil
}

// ListJudges returns all judges.
// Preconditions: none
// Postconditions: Returns a slice of Judge (possibly empty), or an error if it occurs
func (s *Store) ListJudges() ([]Judge, error) {
	cursor, err := s.Collections.Judges.Find(context.TODO(), bson.M{})
	if err != nil {
		return nil, unavailable("failed to fetch judges", err)
	}

	var judges []Judge
	if err = cursor.All(context.TODO(), &judges); err != nil {
		return nil, fmt.Errorf("error unpacking cursor into slice of judges: %w", err)
	}
	return judges, nil
}

// DeleteJudge removes a judge. Deleting a judge revokes their session token, since
// token resolution requires the judge document to still exist.
// Preconditions: Receives the judge's ObjectID
// Postconditions: The judge is gone, or ErrNotFound if it did not exist
func (s *Store) DeleteJudge(id primitive.ObjectID) error {
	res, err := s.Collections.Judges.DeleteOne(context.TODO(), bson.M{"_id": id})
	if err != nil {
		return unavailable("failed to delete judge", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("delete judge: %w", shared.ErrNotFound)
	}
	return nil
}

// FindJudgeByPasscode does a DB lookup for the judge holding the given passcode.
// Preconditions: Receives the uppercase passcode string
// Postconditions: Returns the Judge if the passcode matches one, or ErrNotFound
func (s *Store) FindJudgeByPasscode(passcode string) (Judge, error) {
	var j Judge
	err := s.Collections.Judges.FindOne(context.TODO(), bson.M{"passcode": passcode}).Decode(&j)
	if err != nil {
		return Judge{}, notFoundOr("judge passcode lookup failed", err)
	}
	return j, nil
}

// SetJudgeSession stores the session token issued at passcode exchange.
// Preconditions: Receives the judge's ObjectID and the token string
// Postconditions: The judge document carries the token, or returns an error
func (s *Store) SetJudgeSession(id primitive.ObjectID, token string) error {
	res, err := s.Collections.Judges.UpdateOne(context.TODO(),
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"sessiontoken": token}})
	if err != nil {
		return unavailable("failed to store judge session", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("store judge session: %w", shared.ErrNotFound)
	}
	return nil
}

// FindJudgeByToken resolves a session token back to its judge. This is the
// re-validation path: a deleted judge no longer resolves, which revokes the token.
// Preconditions: Receives the token string
// Postconditions: Returns the Judge holding the token, or ErrNotFound
func (s *Store) FindJudgeByToken(token string) (Judge, error) {
	var j Judge
	err := s.Collections.Judges.FindOne(context.TODO(), bson.M{"sessiontoken": token}).Decode(&j)
	if err != nil {
		return Judge{}, notFoundOr("judge token lookup failed", err)
	}
	return j, nil
}
