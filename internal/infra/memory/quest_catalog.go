package memory

import (
	"context"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"mindmaze-hunt/internal/domain"
)

// QuestCatalog is an ordered, in-memory quest store. It is read-only at runtime;
// Replace exists for seeding.
type QuestCatalog struct {
	mu     sync.RWMutex
	order  []string
	quests map[string]domain.Quest
}

func NewQuestCatalog(quests []domain.Quest) *QuestCatalog {
	c := &QuestCatalog{}
	c.Replace(quests)
	return c
}

// Replace swaps the whole catalog, keeping the given order.
func (c *QuestCatalog) Replace(quests []domain.Quest) {
	order := make([]string, 0, len(quests))
	byID := make(map[string]domain.Quest, len(quests))
	for _, q := range quests {
		if _, dup := byID[q.ID]; !dup {
			order = append(order, q.ID)
		}
		byID[q.ID] = q
	}
	c.mu.Lock()
	c.order = order
	c.quests = byID
	c.mu.Unlock()
}

func (c *QuestCatalog) List(_ context.Context) ([]domain.Quest, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Quest, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.quests[id])
	}
	return out, nil
}

func (c *QuestCatalog) Get(_ context.Context, id string) (domain.Quest, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	q, ok := c.quests[id]
	if !ok {
		return domain.Quest{}, domain.ErrQuestNotFound
	}
	return q, nil
}

type questFile struct {
	Quests []domain.Quest `yaml:"quests"`
}

// LoadQuestFile reads a YAML quest set and validates it.
func LoadQuestFile(path string) ([]domain.Quest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f questFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse quest file: %w", err)
	}
	if err := ValidateQuests(f.Quests); err != nil {
		return nil, err
	}
	return f.Quests, nil
}

// ValidateQuests rejects duplicate ids, non-positive points, empty answers and unknown content types.
func ValidateQuests(quests []domain.Quest) error {
	seen := make(map[string]struct{}, len(quests))
	for i, q := range quests {
		if q.ID == "" {
			return fmt.Errorf("quest %d: missing id", i)
		}
		if _, dup := seen[q.ID]; dup {
			return fmt.Errorf("quest %s: duplicate id", q.ID)
		}
		seen[q.ID] = struct{}{}
		if q.Points <= 0 {
			return fmt.Errorf("quest %s: points must be positive", q.ID)
		}
		if domain.NormalizeAnswer(q.Answer) == "" {
			return fmt.Errorf("quest %s: missing answer", q.ID)
		}
		if !q.Type.Valid() {
			return fmt.Errorf("quest %s: unknown content type %q", q.ID, q.Type)
		}
		for _, h := range q.Hints {
			if !h.Type.Valid() {
				return fmt.Errorf("quest %s: unknown hint type %q", q.ID, h.Type)
			}
		}
	}
	return nil
}
