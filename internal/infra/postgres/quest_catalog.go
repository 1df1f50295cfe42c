package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"mindmaze-hunt/internal/domain"
)

const questColumns = `id, title, type, content, points, answer, hints`

// QuestCatalog reads quests from Postgres in seeding order.
type QuestCatalog struct {
	pool *pgxpool.Pool
}

func NewQuestCatalog(pool *pgxpool.Pool) *QuestCatalog {
	return &QuestCatalog{pool: pool}
}

func (c *QuestCatalog) List(ctx context.Context) ([]domain.Quest, error) {
	rows, err := c.pool.Query(ctx, `SELECT `+questColumns+` FROM quests ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("list quests: %w", err)
	}
	defer rows.Close()

	quests := []domain.Quest{}
	for rows.Next() {
		q, err := scanQuest(rows)
		if err != nil {
			return nil, err
		}
		quests = append(quests, q)
	}
	return quests, rows.Err()
}

func (c *QuestCatalog) Get(ctx context.Context, id string) (domain.Quest, error) {
	q, err := scanQuest(c.pool.QueryRow(ctx, `SELECT `+questColumns+` FROM quests WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quest{}, domain.ErrQuestNotFound
	}
	return q, err
}

func scanQuest(row pgx.Row) (domain.Quest, error) {
	var (
		q        domain.Quest
		typ      string
		rawHints []byte
	)
	if err := row.Scan(&q.ID, &q.Title, &typ, &q.Content, &q.Points, &q.Answer, &rawHints); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Quest{}, err
		}
		return domain.Quest{}, fmt.Errorf("scan quest: %w", err)
	}
	q.Type = domain.ContentType(typ)
	if len(rawHints) > 0 {
		if err := json.Unmarshal(rawHints, &q.Hints); err != nil {
			return domain.Quest{}, fmt.Errorf("unmarshal hints for quest %s: %w", q.ID, err)
		}
	}
	return q, nil
}
