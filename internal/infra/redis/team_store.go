package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"mindmaze-hunt/internal/domain"
)

// Layout:
//
//	hunt:teams                   LIST   team ids in creation order
//	hunt:team:email:{email}      STRING team id
//	hunt:team:{id}               HASH   id, name, email, access_code, score, created_at, last_solved_at
//	hunt:team:{id}:solved        LIST   solved quest ids in solve order
//	hunt:team:{id}:solvedset     SET    solved quest ids, the award guard
const (
	teamIndexKey = "hunt:teams"
)

var createScript = redis.NewScript(`
local existing = redis.call('GET', KEYS[1])
if existing then
	return existing
end
redis.call('SET', KEYS[1], ARGV[1])
redis.call('HSET', KEYS[2],
	'id', ARGV[1], 'name', ARGV[2], 'email', ARGV[3], 'access_code', ARGV[4],
	'score', '0', 'created_at', ARGV[5], 'last_solved_at', '0')
redis.call('RPUSH', KEYS[3], ARGV[1])
return ARGV[1]
`)

// awardScript returns -1 for an unknown team, 0 when already solved and 1 on award.
var awardScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return -1
end
if redis.call('SADD', KEYS[2], ARGV[1]) == 0 then
	return 0
end
redis.call('RPUSH', KEYS[3], ARGV[1])
redis.call('HINCRBY', KEYS[1], 'score', ARGV[2])
redis.call('HSET', KEYS[1], 'last_solved_at', ARGV[3])
return 1
`)

// TeamStore keeps team records in Redis. Award runs as a single Lua script, so
// the membership check and the write can never interleave with another award.
type TeamStore struct {
	client *redis.Client
}

func NewTeamStore(client *redis.Client) *TeamStore {
	return &TeamStore{client: client}
}

func (s *TeamStore) CreateIfAbsent(ctx context.Context, team domain.Team) (domain.Team, bool, error) {
	keys := []string{emailKey(team.Email), teamKey(team.ID), teamIndexKey}
	id, err := createScript.Run(ctx, s.client, keys,
		team.ID, team.Name, team.Email, team.AccessCode, team.CreatedAt.UnixNano(),
	).Text()
	if err != nil {
		return domain.Team{}, false, fmt.Errorf("create team: %w", err)
	}
	stored, err := s.GetByID(ctx, id)
	if err != nil {
		return domain.Team{}, false, err
	}
	return stored, id == team.ID, nil
}

func (s *TeamStore) GetByID(ctx context.Context, id string) (domain.Team, error) {
	teams, err := s.load(ctx, []string{id})
	if err != nil {
		return domain.Team{}, err
	}
	if len(teams) == 0 {
		return domain.Team{}, domain.ErrTeamNotFound
	}
	return teams[0], nil
}

func (s *TeamStore) GetByEmail(ctx context.Context, email string) (domain.Team, error) {
	id, err := s.client.Get(ctx, emailKey(email)).Result()
	if errors.Is(err, redis.Nil) {
		return domain.Team{}, domain.ErrTeamNotFound
	}
	if err != nil {
		return domain.Team{}, fmt.Errorf("lookup team email: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *TeamStore) List(ctx context.Context) ([]domain.Team, error) {
	ids, err := s.client.LRange(ctx, teamIndexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list team ids: %w", err)
	}
	return s.load(ctx, ids)
}

func (s *TeamStore) Award(ctx context.Context, teamID, questID string, points int, at time.Time) (domain.Team, error) {
	keys := []string{teamKey(teamID), solvedSetKey(teamID), solvedListKey(teamID)}
	res, err := awardScript.Run(ctx, s.client, keys, questID, points, at.UnixNano()).Int64()
	if err != nil {
		return domain.Team{}, fmt.Errorf("award: %w", err)
	}
	switch res {
	case -1:
		return domain.Team{}, domain.ErrTeamNotFound
	case 0:
		return domain.Team{}, domain.ErrAlreadySolved
	}
	return s.GetByID(ctx, teamID)
}

// load fetches the given teams in one pipeline round trip, skipping ids without a record.
func (s *TeamStore) load(ctx context.Context, ids []string) ([]domain.Team, error) {
	if len(ids) == 0 {
		return []domain.Team{}, nil
	}
	pipe := s.client.Pipeline()
	hashes := make([]*redis.MapStringStringCmd, len(ids))
	solved := make([]*redis.StringSliceCmd, len(ids))
	for i, id := range ids {
		hashes[i] = pipe.HGetAll(ctx, teamKey(id))
		solved[i] = pipe.LRange(ctx, solvedListKey(id), 0, -1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("load teams: %w", err)
	}

	teams := make([]domain.Team, 0, len(ids))
	for i := range ids {
		fields := hashes[i].Val()
		if len(fields) == 0 {
			continue
		}
		team, err := decodeTeam(fields, solved[i].Val())
		if err != nil {
			return nil, fmt.Errorf("decode team %s: %w", ids[i], err)
		}
		teams = append(teams, team)
	}
	return teams, nil
}

func decodeTeam(fields map[string]string, solved []string) (domain.Team, error) {
	score, err := strconv.Atoi(fields["score"])
	if err != nil {
		return domain.Team{}, fmt.Errorf("parse score: %w", err)
	}
	if solved == nil {
		solved = []string{}
	}
	return domain.Team{
		ID:           fields["id"],
		Name:         fields["name"],
		Email:        fields["email"],
		AccessCode:   fields["access_code"],
		Score:        score,
		SolvedIDs:    solved,
		CreatedAt:    unixNano(fields["created_at"]),
		LastSolvedAt: unixNano(fields["last_solved_at"]),
	}, nil
}

func unixNano(raw string) time.Time {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}

func teamKey(id string) string {
	return "hunt:team:" + id
}

func solvedListKey(id string) string {
	return "hunt:team:" + id + ":solved"
}

func solvedSetKey(id string) string {
	return "hunt:team:" + id + ":solvedset"
}

func emailKey(email string) string {
	return "hunt:team:email:" + email
}
