package app

import (
	"sort"

	"mindmaze-hunt/internal/domain"
)

// RankTeams orders teams by score descending and assigns 1-based ranks.
// Equal scores go to the team that reached it first, then to the lower team id.
func RankTeams(teams []domain.Team) []domain.LeaderboardEntry {
	sorted := make([]domain.Team, len(teams))
	copy(sorted, teams)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.LastSolvedAt.Equal(b.LastSolvedAt) {
			// A team that never solved anything sorts after one that did.
			if a.LastSolvedAt.IsZero() {
				return false
			}
			if b.LastSolvedAt.IsZero() {
				return true
			}
			return a.LastSolvedAt.Before(b.LastSolvedAt)
		}
		return a.ID < b.ID
	})

	entries := make([]domain.LeaderboardEntry, 0, len(sorted))
	for i, team := range sorted {
		entries = append(entries, domain.LeaderboardEntry{
			Rank:        i + 1,
			TeamName:    team.Name,
			Score:       team.Score,
			SolvedCount: len(team.SolvedIDs),
		})
	}
	return entries
}
