/* ranking_test.go
 * Contains unit tests for ranking.go
 */

package logic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"livescore/api/store"
)

func completed(name string, avg float64) store.Participant {
	return store.Participant{
		ID:           primitive.NewObjectID(),
		Name:         name,
		Status:       store.StatusCompleted,
		AverageScore: &avg,
	}
}

// region Rank tests

func TestRank_DescendingByAverage(t *testing.T) {
	entries := Rank([]store.Participant{
		completed("C", 7.0),
		completed("A", 9.5),
		completed("B", 8.25),
	})

	require.Len(t, entries, 3)
	assert.Equal(t, "A", entries[0].Name)
	assert.Equal(t, "B", entries[1].Name)
	assert.Equal(t, "C", entries[2].Name)
	for i, e := range entries {
		assert.Equal(t, i+1, e.Rank)
	}
}

func TestRank_CompetitionRankingOnTies(t *testing.T) {
	// [9.5, 9.5, 9.0, 8.0] -> ranks [1, 1, 3, 4], never [1, 1, 2, 3]
	entries := Rank([]store.Participant{
		completed("A", 9.5),
		completed("B", 9.5),
		completed("C", 9.0),
		completed("D", 8.0),
	})

	require.Len(t, entries, 4)
	assert.Equal(t, []int{1, 1, 3, 4}, []int{entries[0].Rank, entries[1].Rank, entries[2].Rank, entries[3].Rank})
}

func TestRank_TieGroupAtEnd(t *testing.T) {
	entries := Rank([]store.Participant{
		completed("A", 9.5),
		completed("B", 9.0),
		completed("C", 9.0),
	})

	require.Len(t, entries, 3)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, 2, entries[1].Rank)
	assert.Equal(t, 2, entries[2].Rank)
}

func TestRank_StableAcrossRepeatedCalls(t *testing.T) {
	input := []store.Participant{
		completed("B", 9.5),
		completed("A", 9.5),
		completed("C", 8.0),
	}

	first := Rank(input)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Rank(input))
	}
	// Tied participants keep their input order
	assert.Equal(t, "B", first[0].Name)
	assert.Equal(t, "A", first[1].Name)
}

func TestRank_DoesNotMutateInput(t *testing.T) {
	input := []store.Participant{
		completed("Low", 1.0),
		completed("High", 9.0),
	}
	Rank(input)
	assert.Equal(t, "Low", input[0].Name)
}

func TestRank_Empty(t *testing.T) {
	entries := Rank(nil)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

// endregion
