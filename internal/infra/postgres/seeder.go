package postgres

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"mindmaze-hunt/internal/domain"
)

type questRow struct {
	bun.BaseModel `bun:"table:quests"`

	ID       string        `bun:"id,pk"`
	Position int           `bun:"position,notnull"`
	Title    string        `bun:"title,notnull"`
	Type     string        `bun:"type,notnull"`
	Content  string        `bun:"content,notnull"`
	Points   int           `bun:"points,notnull"`
	Answer   string        `bun:"answer,notnull"`
	Hints    []domain.Hint `bun:"hints,type:jsonb,notnull"`
}

// Seeder bulk-loads the quest collection.
type Seeder struct {
	db *bun.DB
}

func NewSeeder(db *bun.DB) *Seeder {
	return &Seeder{db: db}
}

// ReplaceQuests clears the quest table and inserts quests in order, in one transaction.
func (s *Seeder) ReplaceQuests(ctx context.Context, quests []domain.Quest) error {
	rows := make([]questRow, 0, len(quests))
	for i, q := range quests {
		hints := q.Hints
		if hints == nil {
			hints = []domain.Hint{}
		}
		rows = append(rows, questRow{
			ID:       q.ID,
			Position: i,
			Title:    q.Title,
			Type:     string(q.Type),
			Content:  q.Content,
			Points:   q.Points,
			Answer:   q.Answer,
			Hints:    hints,
		})
	}

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*questRow)(nil)).Where("TRUE").Exec(ctx); err != nil {
			return fmt.Errorf("clear quests: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if _, err := tx.NewInsert().Model(&rows).Exec(ctx); err != nil {
			return fmt.Errorf("insert quests: %w", err)
		}
		return nil
	})
}
