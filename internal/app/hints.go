package app

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"mindmaze-hunt/internal/domain"
)

// DefaultHintFallback is returned whenever the hint generator cannot answer.
const DefaultHintFallback = "The maze is dense... I cannot see clearly right now."

// HintGenerator produces a free-text hint for a puzzle.
type HintGenerator interface {
	Generate(ctx context.Context, title, content string) (string, error)
}

// HintService bounds calls to the external generator and degrades to a fixed fallback.
type HintService struct {
	generator HintGenerator
	timeout   time.Duration
	fallback  string
	sf        singleflight.Group
	log       *slog.Logger
}

func NewHintService(generator HintGenerator, timeout time.Duration, fallback string) *HintService {
	if fallback == "" {
		fallback = DefaultHintFallback
	}
	return &HintService{
		generator: generator,
		timeout:   timeout,
		fallback:  fallback,
		log:       slog.Default(),
	}
}

// Hint never fails; generator errors and timeouts produce the fallback text.
func (h *HintService) Hint(ctx context.Context, quest domain.Quest) string {
	if h.generator == nil {
		return h.fallback
	}

	// Concurrent requests for the same quest share one upstream call.
	ch := h.sf.DoChan(quest.ID, func() (interface{}, error) {
		callCtx := context.WithoutCancel(ctx)
		if h.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(callCtx, h.timeout)
			defer cancel()
		}
		return h.generator.Generate(callCtx, quest.Title, quest.Content)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			h.log.Warn("hint generation failed", "quest_id", quest.ID, "error", res.Err)
			return h.fallback
		}
		text, _ := res.Val.(string)
		if text == "" {
			return h.fallback
		}
		return text
	case <-ctx.Done():
		return h.fallback
	}
}
