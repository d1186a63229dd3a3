package room

import (
	"errors"
	"fmt"
)

// Error taxonomy. Callers match with errors.Is against the three roots.
var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrPreconditionFailed = errors.New("precondition failed")
)

var (
	ErrNotEnoughPlayers = fmt.Errorf("%w: not enough players", ErrPreconditionFailed)
	ErrWrongPhase       = fmt.Errorf("%w: wrong phase", ErrPreconditionFailed)
	ErrInvalidTarget    = fmt.Errorf("%w: invalid target", ErrPreconditionFailed)
	ErrNotInRoom        = fmt.Errorf("%w: not in room", ErrPreconditionFailed)
	ErrPlayerDead       = fmt.Errorf("%w: player is dead", ErrPreconditionFailed)
	ErrEmptyMessage     = fmt.Errorf("%w: empty message", ErrPreconditionFailed)
	ErrNotHost          = fmt.Errorf("%w: host only", ErrUnauthorized)
	ErrNoNightRole      = fmt.Errorf("%w: no night role", ErrUnauthorized)
)

// ErrorCode maps an error to the code sent back in error_message. Errors
// that are dropped silently map to "".
func ErrorCode(err error, minPlayers int) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrRoomNotFound):
		return "room_not_found"
	case errors.Is(err, ErrNotEnoughPlayers):
		return fmt.Sprintf("need_%d_players", minPlayers)
	default:
		return ""
	}
}
