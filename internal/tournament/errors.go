package tournament

import "errors"

var (
	// ErrNotLaunched is returned by operations that need a completed setup.
	ErrNotLaunched = errors.New("tournament setup has not been completed")
	// ErrTeamNotFound is returned for references to a missing team id.
	ErrTeamNotFound = errors.New("team not found")
	// ErrPlayerNotFound is returned for references to a missing player id.
	ErrPlayerNotFound = errors.New("player not found")
	// ErrTeamLimit is returned when adding a team beyond the configured count.
	ErrTeamLimit = errors.New("team limit reached")
	// ErrTeamHasPlayers guards team removal once sales reference it.
	ErrTeamHasPlayers = errors.New("team has sold players")
	// ErrPlayerNotPending guards edits to players already through the auction.
	ErrPlayerNotPending = errors.New("player is not pending")
	// ErrInvalidInput wraps form/config validation failures.
	ErrInvalidInput = errors.New("invalid input")
)
