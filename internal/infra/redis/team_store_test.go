package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"mindmaze-hunt/internal/domain"
)

func TestTeamStoreCreateAndLookup(t *testing.T) {
	ctx := context.Background()
	store, mr := newStore(t)

	created := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)
	team, ok, err := store.CreateIfAbsent(ctx, domain.Team{
		ID: "t1", Name: "Alpha", Email: "a@example.com", AccessCode: "hash", CreatedAt: created,
	})
	if err != nil || !ok {
		t.Fatalf("create: created=%v err=%v", ok, err)
	}
	if team.Score != 0 || len(team.SolvedIDs) != 0 || !team.CreatedAt.Equal(created) {
		t.Fatalf("unexpected new team %+v", team)
	}
	if !mr.Exists("hunt:team:t1") || !mr.Exists("hunt:team:email:a@example.com") {
		t.Fatalf("expected team keys to be set")
	}

	again, ok, err := store.CreateIfAbsent(ctx, domain.Team{ID: "t2", Name: "Beta", Email: "a@example.com"})
	if err != nil {
		t.Fatalf("create again: %v", err)
	}
	if ok || again.ID != "t1" {
		t.Fatalf("expected existing team, got %+v created=%v", again, ok)
	}

	byEmail, err := store.GetByEmail(ctx, "a@example.com")
	if err != nil || byEmail.AccessCode != "hash" {
		t.Fatalf("get by email: %+v %v", byEmail, err)
	}
	if _, err := store.GetByEmail(ctx, "nobody@example.com"); !errors.Is(err, domain.ErrTeamNotFound) {
		t.Fatalf("expected team not found, got %v", err)
	}
}

func TestTeamStoreAward(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore(t)
	_, _, _ = store.CreateIfAbsent(ctx, domain.Team{ID: "t1", Name: "Alpha", Email: "a@example.com"})

	at := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)
	team, err := store.Award(ctx, "t1", "1", 100, at)
	if err != nil {
		t.Fatalf("award: %v", err)
	}
	if team.Score != 100 || len(team.SolvedIDs) != 1 || team.SolvedIDs[0] != "1" || !team.LastSolvedAt.Equal(at) {
		t.Fatalf("unexpected team %+v", team)
	}

	if _, err := store.Award(ctx, "t1", "1", 100, at); !errors.Is(err, domain.ErrAlreadySolved) {
		t.Fatalf("expected already solved, got %v", err)
	}
	if _, err := store.Award(ctx, "ghost", "1", 100, at); !errors.Is(err, domain.ErrTeamNotFound) {
		t.Fatalf("expected team not found, got %v", err)
	}

	team, err = store.Award(ctx, "t1", "2", 200, at.Add(time.Minute))
	if err != nil {
		t.Fatalf("second award: %v", err)
	}
	if team.Score != 300 || len(team.SolvedIDs) != 2 || team.SolvedIDs[1] != "2" {
		t.Fatalf("unexpected team after second award %+v", team)
	}
}

func TestTeamStoreConcurrentAwardIsAtMostOnce(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore(t)
	_, _, _ = store.CreateIfAbsent(ctx, domain.Team{ID: "t1", Name: "Alpha", Email: "a@example.com"})

	var g errgroup.Group
	for i := 0; i < 20; i++ {
		g.Go(func() error {
			_, err := store.Award(ctx, "t1", "1", 100, time.Now())
			if err != nil && !errors.Is(err, domain.ErrAlreadySolved) {
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("award: %v", err)
	}

	team, err := store.GetByID(ctx, "t1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if team.Score != 100 || len(team.SolvedIDs) != 1 {
		t.Fatalf("expected one award, got score=%d solved=%v", team.Score, team.SolvedIDs)
	}
}

func TestTeamStoreListKeepsCreationOrder(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore(t)
	for _, id := range []string{"t1", "t2", "t3"} {
		if _, _, err := store.CreateIfAbsent(ctx, domain.Team{ID: id, Name: id, Email: id + "@example.com"}); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}
	teams, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(teams) != 3 || teams[0].ID != "t1" || teams[2].ID != "t3" {
		t.Fatalf("unexpected list %+v", teams)
	}
}

func TestTeamStoreRejectsCorruptScore(t *testing.T) {
	ctx := context.Background()
	store, mr := newStore(t)

	if _, _, err := store.CreateIfAbsent(ctx, domain.Team{ID: "t1", Name: "Alpha", Email: "a@example.com"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	mr.HSet("hunt:team:t1", "score", "not-a-number")

	if _, err := store.GetByID(ctx, "t1"); err == nil {
		t.Fatalf("expected corrupt score to fail GetByID")
	}
	if _, err := store.List(ctx); err == nil {
		t.Fatalf("expected corrupt score to fail List")
	}
}

func newStore(t *testing.T) (*TeamStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewTeamStore(client), mr
}
