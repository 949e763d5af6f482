package game

import "errors"

// Every command guard fails with one of these; the coordinator treats all
// of them as silent no-ops.
var (
	ErrUnknownRoom         = errors.New("unknown room")
	ErrUnknownPlayer       = errors.New("player not in room")
	ErrUnauthorized        = errors.New("not host")
	ErrWrongPhase          = errors.New("invalid phase for action")
	ErrDuplicateSubmission = errors.New("already submitted")
	ErrInvalidCard         = errors.New("card not in hand")
	ErrInvalidRequest      = errors.New("invalid request")
)

// Code maps a guard error onto the short identifier used in acknowledgements.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnknownRoom):
		return "unknown_room"
	case errors.Is(err, ErrUnknownPlayer):
		return "unknown_player"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrWrongPhase):
		return "wrong_phase"
	case errors.Is(err, ErrDuplicateSubmission):
		return "duplicate_submission"
	case errors.Is(err, ErrInvalidCard):
		return "invalid_card"
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	}
	return "internal"
}
