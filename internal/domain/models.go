package domain

import (
	"strings"
	"time"
)

// ContentType says how a quest or hint payload should be rendered.
type ContentType string

const (
	ContentText  ContentType = "text"
	ContentImage ContentType = "image"
	ContentVideo ContentType = "video"
	ContentAudio ContentType = "audio"
	ContentQR    ContentType = "qr"
)

// Valid reports whether t is one of the known content types.
func (t ContentType) Valid() bool {
	switch t {
	case ContentText, ContentImage, ContentVideo, ContentAudio, ContentQR:
		return true
	}
	return false
}

// Team is a competing unit and its accumulated score.
type Team struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	AccessCode   string    `json:"-"` // bcrypt hash, empty for self-registered teams
	Score        int       `json:"score"`
	SolvedIDs    []string  `json:"solvedIds"`
	LastSolvedAt time.Time `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// HasSolved reports whether questID has already been credited to the team.
func (t Team) HasSolved(questID string) bool {
	for _, id := range t.SolvedIDs {
		if id == questID {
			return true
		}
	}
	return false
}

// Hint is an extra clue attached to a quest.
type Hint struct {
	Type    ContentType `json:"type" yaml:"type"`
	Content string      `json:"content" yaml:"content"`
}

// Quest is a single puzzle. Answer must never leave the server; use Public for display.
type Quest struct {
	ID      string      `json:"id" yaml:"id"`
	Title   string      `json:"title" yaml:"title"`
	Type    ContentType `json:"type" yaml:"type"`
	Content string      `json:"content" yaml:"content"`
	Points  int         `json:"points" yaml:"points"`
	Answer  string      `json:"-" yaml:"answer"`
	Hints   []Hint      `json:"hints" yaml:"hints"`
}

// PublicQuest is the catalog projection of a quest with the answer elided.
type PublicQuest struct {
	ID      string      `json:"id"`
	Title   string      `json:"title"`
	Type    ContentType `json:"type"`
	Content string      `json:"content"`
	Points  int         `json:"points"`
	Hints   []Hint      `json:"hints"`
}

// Public returns the quest without its answer.
func (q Quest) Public() PublicQuest {
	hints := make([]Hint, len(q.Hints))
	copy(hints, q.Hints)
	return PublicQuest{
		ID:      q.ID,
		Title:   q.Title,
		Type:    q.Type,
		Content: q.Content,
		Points:  q.Points,
		Hints:   hints,
	}
}

// Matches compares a submitted answer against the canonical one,
// ignoring case and surrounding whitespace.
func (q Quest) Matches(submitted string) bool {
	return NormalizeAnswer(submitted) == NormalizeAnswer(q.Answer)
}

// NormalizeAnswer trims surrounding whitespace and uppercases.
func NormalizeAnswer(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// LeaderboardEntry is one derived row of the ranking.
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	TeamName    string `json:"teamName"`
	Score       int    `json:"score"`
	SolvedCount int    `json:"solvedCount"`
}

// SubmitResult is returned for a successful solve.
type SubmitResult struct {
	QuestID   string   `json:"-"`
	Points    int      `json:"points"`
	Score     int      `json:"-"`
	SolvedIDs []string `json:"solvedIds"`
}

// Session is the identity resolved from a verified session credential.
type Session struct {
	TeamID string
	Email  string
}

// LoginRequest carries the login credentials. AccessCode is used in access-code
// mode and Name in self-registration mode.
type LoginRequest struct {
	Email      string
	Name       string
	AccessCode string
}

// LoginResult is a team plus a freshly issued session token.
type LoginResult struct {
	Team  Team   `json:"team"`
	Token string `json:"token"`
}
