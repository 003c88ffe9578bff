/* ranking.go
 * Contains the logic for computing the ranked leaderboard from completed participants
 */

package logic

import (
	"sort"

	"livescore/api/store"
)

// LeaderboardEntry is one row of the ranked leaderboard as broadcast to viewers.
type LeaderboardEntry struct {
	Rank          int     `json:"rank"`
	ParticipantID string  `json:"participantId"`
	Name          string  `json:"name"`
	Number        int     `json:"participantNumber,omitempty"`
	AverageScore  float64 `json:"averageScore"`
}

// Rank orders completed participants by average score, descending, and assigns
// competition ranks: tied averages share the rank of the first participant in the tie
// group, and the next distinct average takes its 1-based position including the
// group, so [9.5, 9.5, 9.0] ranks as [1, 1, 3]. The sort is stable, so repeated calls
// on the same input produce identical output and ties never shuffle between refreshes.
// Preconditions: Receives completed participants with their frozen average scores
// Postconditions: Returns the ordered leaderboard; an empty input yields an empty slice
func Rank(participants []store.Participant) []LeaderboardEntry {
	ranked := make([]store.Participant, len(participants))
	copy(ranked, participants)

	sort.SliceStable(ranked, func(i, j int) bool {
		return average(ranked[i]) > average(ranked[j])
	})

	entries := make([]LeaderboardEntry, 0, len(ranked))
	for i, p := range ranked {
		rank := i + 1
		if i > 0 && average(p) == average(ranked[i-1]) {
			rank = entries[i-1].Rank
		}
		entries = append(entries, LeaderboardEntry{
			Rank:          rank,
			ParticipantID: p.ID.Hex(),
			Name:          p.Name,
			Number:        p.Number,
			AverageScore:  average(p),
		})
	}
	return entries
}

// average reads the frozen average, treating a missing value as zero so a malformed
// document sorts last instead of panicking.
func average(p store.Participant) float64 {
	if p.AverageScore == nil {
		return 0
	}
	return *p.AverageScore
}
