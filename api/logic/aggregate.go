/* aggregate.go
 * Contains the logic for score aggregation: per-submission totals and the frozen
 * per-participant average
 */

package logic

import (
	"fmt"
	"math"

	"livescore/api/shared"
	"livescore/api/store"
)

// round2 applies standard half-away-from-zero rounding to 2 decimal places.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// TotalScore computes a submission's total as the arithmetic mean of its per-criterion
// values, rounded to 2 decimal places.
// Preconditions: Receives a non-empty map of criterion name to point value
// Postconditions: Returns the mean, or an error when the map is empty
func TotalScore(criterionScores map[string]int) (float64, error) {
	if len(criterionScores) == 0 {
		return 0, fmt.Errorf("total score: %w", shared.ErrNoScores)
	}
	sum := 0
	for _, v := range criterionScores {
		sum += v
	}
	return round2(float64(sum) / float64(len(criterionScores))), nil
}

// AverageScore computes a participant's final average as the mean of the total scores
// across all their submissions, rounded to 2 decimal places. This is the value frozen
// onto the participant at finalize.
// Preconditions: Receives the participant's submissions
// Postconditions: Returns the mean, or ErrNoScores when there are no submissions
func AverageScore(subs []store.ScoreSubmission) (float64, error) {
	if len(subs) == 0 {
		return 0, fmt.Errorf("average score: %w", shared.ErrNoScores)
	}
	sum := 0.0
	for _, sub := range subs {
		sum += sub.TotalScore
	}
	return round2(sum / float64(len(subs))), nil
}
