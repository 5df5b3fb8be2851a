package game

import "errors"

// Typed failures for every operation precondition. An operation either
// fully succeeds or returns exactly one of these with no state mutated.
var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrRoomFull           = errors.New("room is full")
	ErrGameAlreadyStarted = errors.New("game has already started")
	ErrNotEnoughPlayers   = errors.New("not enough players to start")
	ErrGameNotInProgress  = errors.New("game is not in progress")
	ErrNotYourTurn        = errors.New("not your turn")
	ErrDiceAlreadyRolled  = errors.New("dice already rolled this turn")
	ErrDiceNotRolled      = errors.New("roll the dice before moving")
	ErrInvalidSteps       = errors.New("steps must be between 1 and 6")
	ErrInvalidTaskState   = errors.New("invalid task state for this operation")
	ErrAlreadyInRoom      = errors.New("connection is already in a room")
	ErrPlayerNotFound     = errors.New("player not found in room")
	ErrUnauthorized       = errors.New("unauthorized")

	ErrInvalidTaskRatio   = errors.New("task ratio must be in [0,1]")
	ErrInvalidDareSeconds = errors.New("dare countdown must be positive")
)
