package app

import (
	"testing"
	"time"

	"mindmaze-hunt/internal/domain"
)

func TestRankTeams(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	teams := []domain.Team{
		{ID: "a", Name: "Fifty", Score: 50, SolvedIDs: []string{"1"}, LastSolvedAt: base},
		{ID: "b", Name: "Late Two Hundred", Score: 200, SolvedIDs: []string{"2"}, LastSolvedAt: base.Add(2 * time.Minute)},
		{ID: "c", Name: "Early Two Hundred", Score: 200, SolvedIDs: []string{"1", "3"}, LastSolvedAt: base.Add(time.Minute)},
		{ID: "d", Name: "Zero", Score: 0, SolvedIDs: []string{}},
	}

	lb := RankTeams(teams)
	if len(lb) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(lb))
	}
	want := []struct {
		name   string
		score  int
		solved int
	}{
		{"Early Two Hundred", 200, 2},
		{"Late Two Hundred", 200, 1},
		{"Fifty", 50, 1},
		{"Zero", 0, 0},
	}
	for i, w := range want {
		got := lb[i]
		if got.Rank != i+1 || got.TeamName != w.name || got.Score != w.score || got.SolvedCount != w.solved {
			t.Fatalf("entry %d: got %+v, want %+v", i, got, w)
		}
	}
}

func TestRankTeamsTieBreaksByID(t *testing.T) {
	teams := []domain.Team{
		{ID: "z", Name: "Zulu"},
		{ID: "a", Name: "Alpha"},
	}
	lb := RankTeams(teams)
	if lb[0].TeamName != "Alpha" || lb[1].TeamName != "Zulu" {
		t.Fatalf("expected id order for untouched ties, got %+v", lb)
	}
}

func TestRankTeamsEmpty(t *testing.T) {
	if lb := RankTeams(nil); len(lb) != 0 {
		t.Fatalf("expected empty leaderboard, got %+v", lb)
	}
}
