// models/models.go
package models

import (
	"time"
)

// GameRecord is the terminal snapshot of a finished game, exported to the
// optional archive. Live room state is never persisted.
type GameRecord struct {
	RoomID    string       `json:"room_id"`
	BoardSize int          `json:"board_size"`
	Players   []PlayerInfo `json:"players"`
	WinnerID  string       `json:"winner_id"`
	Reason    string       `json:"reason"` // finish or forfeit
	TurnCount int          `json:"turn_count"`
	Duration  int          `json:"duration"` // seconds from start to win
	CreatedAt time.Time    `json:"created_at"`
}

// PlayerInfo is a player's final standing inside a GameRecord.
type PlayerInfo struct {
	SlotID   string `json:"slot_id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
}
