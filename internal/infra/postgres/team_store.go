package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"mindmaze-hunt/internal/domain"
)

const teamColumns = `id, name, email, access_code, score, solved_ids, last_solved_at, created_at`

// TeamStore keeps team records in Postgres.
type TeamStore struct {
	pool *pgxpool.Pool
}

func NewTeamStore(pool *pgxpool.Pool) *TeamStore {
	return &TeamStore{pool: pool}
}

func (s *TeamStore) CreateIfAbsent(ctx context.Context, team domain.Team) (domain.Team, bool, error) {
	solved := team.SolvedIDs
	if solved == nil {
		solved = []string{}
	}
	stored, err := scanTeam(s.pool.QueryRow(ctx, `
		INSERT INTO teams (id, name, email, access_code, score, solved_ids, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (email) DO NOTHING
		RETURNING `+teamColumns,
		team.ID, team.Name, team.Email, team.AccessCode, team.Score, solved, team.CreatedAt,
	))
	if err == nil {
		return stored, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.Team{}, false, fmt.Errorf("insert team: %w", err)
	}
	existing, err := s.GetByEmail(ctx, team.Email)
	if err != nil {
		return domain.Team{}, false, err
	}
	return existing, false, nil
}

func (s *TeamStore) GetByID(ctx context.Context, id string) (domain.Team, error) {
	return s.getOne(ctx, `SELECT `+teamColumns+` FROM teams WHERE id = $1`, id)
}

func (s *TeamStore) GetByEmail(ctx context.Context, email string) (domain.Team, error) {
	return s.getOne(ctx, `SELECT `+teamColumns+` FROM teams WHERE email = $1`, email)
}

func (s *TeamStore) List(ctx context.Context) ([]domain.Team, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+teamColumns+` FROM teams ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	defer rows.Close()

	teams := []domain.Team{}
	for rows.Next() {
		team, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		teams = append(teams, team)
	}
	return teams, rows.Err()
}

// Award is a single conditional UPDATE: the row lock serializes concurrent awards
// and the ANY() guard is re-evaluated against the committed row.
func (s *TeamStore) Award(ctx context.Context, teamID, questID string, points int, at time.Time) (domain.Team, error) {
	team, err := scanTeam(s.pool.QueryRow(ctx, `
		UPDATE teams
		SET solved_ids = array_append(solved_ids, $2::text),
		    score = score + $3,
		    last_solved_at = $4
		WHERE id = $1 AND NOT ($2::text = ANY(solved_ids))
		RETURNING `+teamColumns,
		teamID, questID, points, at,
	))
	if err == nil {
		return team, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.Team{}, fmt.Errorf("award: %w", err)
	}

	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM teams WHERE id = $1)`, teamID).Scan(&exists); err != nil {
		return domain.Team{}, fmt.Errorf("check team: %w", err)
	}
	if !exists {
		return domain.Team{}, domain.ErrTeamNotFound
	}
	return domain.Team{}, domain.ErrAlreadySolved
}

func (s *TeamStore) getOne(ctx context.Context, query string, arg string) (domain.Team, error) {
	team, err := scanTeam(s.pool.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Team{}, domain.ErrTeamNotFound
	}
	if err != nil {
		return domain.Team{}, fmt.Errorf("get team: %w", err)
	}
	return team, nil
}

func scanTeam(row pgx.Row) (domain.Team, error) {
	var (
		team       domain.Team
		lastSolved *time.Time
	)
	err := row.Scan(&team.ID, &team.Name, &team.Email, &team.AccessCode, &team.Score,
		&team.SolvedIDs, &lastSolved, &team.CreatedAt)
	if err != nil {
		return domain.Team{}, err
	}
	if lastSolved != nil {
		team.LastSolvedAt = *lastSolved
	}
	if team.SolvedIDs == nil {
		team.SolvedIDs = []string{}
	}
	return team, nil
}
