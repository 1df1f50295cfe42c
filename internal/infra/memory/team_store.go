package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"mindmaze-hunt/internal/domain"
)

// TeamStore is an in-memory implementation of app.TeamRepository.
// A single mutex covers the read-check-write of Award.
type TeamStore struct {
	mu      sync.RWMutex
	teams   map[string]*domain.Team
	byEmail map[string]string
}

func NewTeamStore() *TeamStore {
	return &TeamStore{
		teams:   make(map[string]*domain.Team),
		byEmail: make(map[string]string),
	}
}

func (s *TeamStore) CreateIfAbsent(_ context.Context, team domain.Team) (domain.Team, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.byEmail[team.Email]; ok {
		return cloneTeam(s.teams[id]), false, nil
	}
	stored := cloneTeam(&team)
	if stored.SolvedIDs == nil {
		stored.SolvedIDs = []string{}
	}
	s.teams[team.ID] = &stored
	s.byEmail[team.Email] = team.ID
	return cloneTeam(&stored), true, nil
}

func (s *TeamStore) GetByID(_ context.Context, id string) (domain.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	team, ok := s.teams[id]
	if !ok {
		return domain.Team{}, domain.ErrTeamNotFound
	}
	return cloneTeam(team), nil
}

func (s *TeamStore) GetByEmail(_ context.Context, email string) (domain.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[email]
	if !ok {
		return domain.Team{}, domain.ErrTeamNotFound
	}
	return cloneTeam(s.teams[id]), nil
}

// List returns teams in creation order.
func (s *TeamStore) List(_ context.Context) ([]domain.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Team, 0, len(s.teams))
	for _, team := range s.teams {
		out = append(out, cloneTeam(team))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *TeamStore) Award(_ context.Context, teamID, questID string, points int, at time.Time) (domain.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	team, ok := s.teams[teamID]
	if !ok {
		return domain.Team{}, domain.ErrTeamNotFound
	}
	if team.HasSolved(questID) {
		return domain.Team{}, domain.ErrAlreadySolved
	}
	team.SolvedIDs = append(team.SolvedIDs, questID)
	team.Score += points
	team.LastSolvedAt = at
	return cloneTeam(team), nil
}

func cloneTeam(t *domain.Team) domain.Team {
	out := *t
	out.SolvedIDs = append([]string{}, t.SolvedIDs...)
	return out
}
