/* scores_test.go
 * Contains unit tests for scores.go
 */

package store

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"livescore/api/shared"
)

// scoredStore binds mt's mock collection as the scores collection.
func scoredStore(mt *mtest.T) *Store {
	s := &Store{
		Client:   mt.Client,
		Database: mt.DB,
	}
	s.Collections.Scores = mt.Coll
	return s
}

// region InsertScore tests

func TestInsertScore_Success(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("successfully inserts a submission", func(mt *mtest.T) {
		s := scoredStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		sub := ScoreSubmission{
			ParticipantID: primitive.NewObjectID(),
			EventID:       primitive.NewObjectID(),
			JudgeID:       "judge-1",
			JudgeName:     "J1",
			Scores:        map[string]int{"Expression": 8, "Technique": 9},
			TotalScore:    8.5,
			SubmittedAt:   time.Now(),
		}

		stored, err := s.InsertScore(sub)
		require.NoError(mt, err)
		assert.Equal(mt, 8.5, stored.TotalScore)
	})
}

func TestInsertScore_DuplicateKey(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("duplicate (participant, judge) pair maps to ErrDuplicateSubmission", func(mt *mtest.T) {
		s := scoredStore(mt)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: livescore.scores",
		}))

		_, err := s.InsertScore(ScoreSubmission{
			ParticipantID: primitive.NewObjectID(),
			JudgeID:       "judge-1",
		})
		assert.True(mt, errors.Is(err, shared.ErrDuplicateSubmission))
	})
}

func TestInsertScore_StoreFailure(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("non-duplicate write failure surfaces as StoreUnavailable", func(mt *mtest.T) {
		s := scoredStore(mt)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    112, // WriteConflict
			Message: "write conflict",
		}))

		_, err := s.InsertScore(ScoreSubmission{
			ParticipantID: primitive.NewObjectID(),
			JudgeID:       "judge-1",
		})
		assert.True(mt, errors.Is(err, shared.ErrStoreUnavailable))
	})
}

// endregion

// region ListScoresForParticipant tests

func TestListScoresForParticipant_Success(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("returns the participant's submissions", func(mt *mtest.T) {
		s := scoredStore(mt)
		pid := primitive.NewObjectID()

		first := mtest.CreateCursorResponse(1, "livescore.scores", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: primitive.NewObjectID()},
			{Key: "participantid", Value: pid},
			{Key: "judgeid", Value: "judge-1"},
			{Key: "totalscore", Value: 8.5},
		})
		second := mtest.CreateCursorResponse(1, "livescore.scores", mtest.NextBatch, bson.D{
			{Key: "_id", Value: primitive.NewObjectID()},
			{Key: "participantid", Value: pid},
			{Key: "judgeid", Value: "judge-2"},
			{Key: "totalscore", Value: 7.0},
		})
		killCursors := mtest.CreateCursorResponse(0, "livescore.scores", mtest.NextBatch)
		mt.AddMockResponses(first, second, killCursors)

		subs, err := s.ListScoresForParticipant(pid)
		require.NoError(mt, err)
		require.Len(mt, subs, 2)
		assert.Equal(mt, "judge-1", subs[0].JudgeID)
		assert.Equal(mt, 7.0, subs[1].TotalScore)
	})
}

func TestListScoresForParticipant_Empty(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("no submissions yields an empty slice, not an error", func(mt *mtest.T) {
		s := scoredStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "livescore.scores", mtest.FirstBatch))

		subs, err := s.ListScoresForParticipant(primitive.NewObjectID())
		require.NoError(mt, err)
		assert.Empty(mt, subs)
	})
}

// endregion
