package domain

import "errors"

var (
	// ErrUnauthenticated is returned when no session credential is presented.
	ErrUnauthenticated = errors.New("missing session token")
	// ErrInvalidCredential is returned when a session credential fails verification or has expired.
	ErrInvalidCredential = errors.New("invalid or expired session token")
	// ErrInvalidLogin indicates an unknown email or a wrong access code.
	ErrInvalidLogin = errors.New("invalid email or access code")
	// ErrQuestNotFound indicates the quest id does not exist in the catalog.
	ErrQuestNotFound = errors.New("quest not found")
	// ErrTeamNotFound indicates the team id does not exist.
	ErrTeamNotFound = errors.New("team not found")
	// ErrAlreadySolved is returned when the team has already been credited for the quest.
	ErrAlreadySolved = errors.New("quest already solved")
	// ErrWrongAnswer is the normal outcome of an incorrect guess.
	ErrWrongAnswer = errors.New("incorrect answer")
	// ErrEmailTaken is returned when provisioning a team whose email already exists.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidRequest indicates a malformed request body.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrStorage wraps failures of the underlying stores.
	ErrStorage = errors.New("storage failure")
)
