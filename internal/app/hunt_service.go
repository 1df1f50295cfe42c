package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"mindmaze-hunt/internal/auth"
	"mindmaze-hunt/internal/domain"
)

// LoginMode selects how teams identify themselves at login.
type LoginMode string

const (
	// ModeRegister creates a team on first login for an unseen email.
	ModeRegister LoginMode = "register"
	// ModeAccessCode only admits pre-provisioned teams with a matching access code.
	ModeAccessCode LoginMode = "access_code"
)

// TeamRepository abstracts the identity store (in-memory, Redis, Postgres).
type TeamRepository interface {
	// CreateIfAbsent stores team unless its email is already registered, in which
	// case the existing team is returned with created=false.
	CreateIfAbsent(ctx context.Context, team domain.Team) (stored domain.Team, created bool, err error)
	GetByID(ctx context.Context, id string) (domain.Team, error)
	GetByEmail(ctx context.Context, email string) (domain.Team, error)
	List(ctx context.Context) ([]domain.Team, error)
	// Award appends questID to the team's solved set and adds points to its score
	// as one atomic step. It returns ErrAlreadySolved without changes when the
	// quest is already present.
	Award(ctx context.Context, teamID, questID string, points int, at time.Time) (domain.Team, error)
}

// QuestCatalog is the read-only quest store.
type QuestCatalog interface {
	List(ctx context.Context) ([]domain.Quest, error)
	Get(ctx context.Context, id string) (domain.Quest, error)
}

// TokenIssuer mints session tokens after a successful login.
type TokenIssuer interface {
	Issue(team domain.Team) (string, error)
}

// HuntService contains the puzzle hunt use cases.
type HuntService struct {
	teams  TeamRepository
	quests QuestCatalog
	tokens TokenIssuer
	mode   LoginMode
	feed   *LeaderboardFeed
	hints  *HintService
	// pubMu orders leaderboard reads with their publish, so the last snapshot
	// sent always reflects every award before it.
	pubMu  sync.Mutex
	now    func() time.Time
	log    *slog.Logger
}

// Option customizes a HuntService.
type Option func(*HuntService)

// WithClock overrides the time source used for solve timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *HuntService) { s.now = now }
}

// WithHints enables the hint use case.
func WithHints(h *HintService) Option {
	return func(s *HuntService) { s.hints = h }
}

// WithLogger sets the logger used for storage failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *HuntService) { s.log = l }
}

func NewHuntService(teams TeamRepository, quests QuestCatalog, tokens TokenIssuer, mode LoginMode, opts ...Option) *HuntService {
	s := &HuntService{
		teams:  teams,
		quests: quests,
		tokens: tokens,
		mode:   mode,
		feed:   NewLeaderboardFeed(),
		now:    time.Now,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login resolves a team by email and issues a session token for it.
func (s *HuntService) Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return domain.LoginResult{}, domain.ErrInvalidLogin
	}

	var team domain.Team
	switch s.mode {
	case ModeRegister:
		name := strings.TrimSpace(req.Name)
		if name == "" {
			return domain.LoginResult{}, fmt.Errorf("%w: team name is required", domain.ErrInvalidRequest)
		}
		stored, created, err := s.teams.CreateIfAbsent(ctx, domain.Team{
			ID:        uuid.NewString(),
			Name:      name,
			Email:     email,
			SolvedIDs: []string{},
			CreatedAt: s.now(),
		})
		if err != nil {
			return domain.LoginResult{}, s.storageErr("create team", err)
		}
		if created {
			s.log.Info("team registered", "team_id", stored.ID)
			s.publishLeaderboard(ctx)
		}
		team = stored
	case ModeAccessCode:
		stored, err := s.teams.GetByEmail(ctx, email)
		if errors.Is(err, domain.ErrTeamNotFound) {
			return domain.LoginResult{}, domain.ErrInvalidLogin
		}
		if err != nil {
			return domain.LoginResult{}, s.storageErr("get team by email", err)
		}
		if !auth.CheckAccessCode(stored.AccessCode, req.AccessCode) {
			return domain.LoginResult{}, domain.ErrInvalidLogin
		}
		team = stored
	default:
		return domain.LoginResult{}, fmt.Errorf("unsupported login mode %q", s.mode)
	}

	token, err := s.tokens.Issue(team)
	if err != nil {
		return domain.LoginResult{}, err
	}
	return domain.LoginResult{Team: team, Token: token}, nil
}

// ProvisionTeam creates a team for access-code login. It fails with ErrEmailTaken
// if the email is already registered.
func (s *HuntService) ProvisionTeam(ctx context.Context, name, email, accessCode string) (domain.Team, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)
	if email == "" || name == "" {
		return domain.Team{}, fmt.Errorf("%w: name and email are required", domain.ErrInvalidRequest)
	}
	hash, err := auth.HashAccessCode(accessCode)
	if err != nil {
		return domain.Team{}, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}
	stored, created, err := s.teams.CreateIfAbsent(ctx, domain.Team{
		ID:         uuid.NewString(),
		Name:       name,
		Email:      email,
		AccessCode: hash,
		SolvedIDs:  []string{},
		CreatedAt:  s.now(),
	})
	if err != nil {
		return domain.Team{}, s.storageErr("provision team", err)
	}
	if !created {
		return stored, domain.ErrEmailTaken
	}
	return stored, nil
}

// ListQuests returns the catalog in insertion order with answers elided.
func (s *HuntService) ListQuests(ctx context.Context) ([]domain.PublicQuest, error) {
	quests, err := s.quests.List(ctx)
	if err != nil {
		return nil, s.storageErr("list quests", err)
	}
	out := make([]domain.PublicQuest, 0, len(quests))
	for _, q := range quests {
		out = append(out, q.Public())
	}
	return out, nil
}

// Submit checks an answer for a quest and credits the team on its first correct solve.
func (s *HuntService) Submit(ctx context.Context, teamID, questID, answer string) (domain.SubmitResult, error) {
	quest, err := s.quests.Get(ctx, questID)
	if err != nil {
		return domain.SubmitResult{}, s.storageErr("get quest", err)
	}

	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		return domain.SubmitResult{}, s.storageErr("get team", err)
	}

	if team.HasSolved(quest.ID) {
		return domain.SubmitResult{}, domain.ErrAlreadySolved
	}

	if !quest.Matches(answer) {
		return domain.SubmitResult{}, domain.ErrWrongAnswer
	}

	// The membership check above is only a fast path; Award re-checks atomically.
	updated, err := s.teams.Award(ctx, team.ID, quest.ID, quest.Points, s.now())
	if err != nil {
		if errors.Is(err, domain.ErrAlreadySolved) || errors.Is(err, domain.ErrTeamNotFound) {
			return domain.SubmitResult{}, err
		}
		s.log.Error("award failed, outcome unknown", "team_id", team.ID, "quest_id", quest.ID, "error", err)
		return domain.SubmitResult{}, s.storageErr("award quest", err)
	}

	s.log.Info("quest solved", "team_id", team.ID, "quest_id", quest.ID, "points", quest.Points, "score", updated.Score)
	s.publishLeaderboard(ctx)

	return domain.SubmitResult{
		QuestID:   quest.ID,
		Points:    quest.Points,
		Score:     updated.Score,
		SolvedIDs: updated.SolvedIDs,
	}, nil
}

// Leaderboard ranks every team by score.
func (s *HuntService) Leaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	teams, err := s.teams.List(ctx)
	if err != nil {
		return nil, s.storageErr("list teams", err)
	}
	return RankTeams(teams), nil
}

// Hint asks the hint generator about a quest. Generator failures never surface;
// the configured fallback is returned instead.
func (s *HuntService) Hint(ctx context.Context, questID string) (string, error) {
	quest, err := s.quests.Get(ctx, questID)
	if err != nil {
		return "", s.storageErr("get quest", err)
	}
	if s.hints == nil {
		return DefaultHintFallback, nil
	}
	return s.hints.Hint(ctx, quest), nil
}

// Subscribe returns a channel of leaderboard snapshots, starting with the current one.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *HuntService) Subscribe(ctx context.Context) (<-chan []domain.LeaderboardEntry, func(), error) {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()
	initial, err := s.Leaderboard(ctx)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := s.feed.subscribe(initial)
	return ch, cancel, nil
}

func (s *HuntService) publishLeaderboard(ctx context.Context) {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()
	if !s.feed.hasSubscribers() {
		return
	}
	lb, err := s.Leaderboard(ctx)
	if err != nil {
		s.log.Warn("leaderboard refresh failed", "error", err)
		return
	}
	s.feed.publish(lb)
}

// storageErr passes domain errors through and marks everything else as a storage failure.
func (s *HuntService) storageErr(op string, err error) error {
	switch {
	case errors.Is(err, domain.ErrQuestNotFound),
		errors.Is(err, domain.ErrTeamNotFound),
		errors.Is(err, domain.ErrAlreadySolved),
		errors.Is(err, domain.ErrStorage),
		errors.Is(err, context.Canceled):
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStorage, err)
}
