package game

import "github.com/wfunc/coupleboard/models"

// Broadcaster is the slice of the sync layer the engine needs. Defined here
// to keep the dependency pointing from transport to game, not the reverse.
type Broadcaster interface {
	BroadcastToRoom(roomID string, msgID uint16, data []byte) error
}

// RecordSink receives a terminal snapshot when a game finishes. The live
// room never touches storage; only this one-way export does.
type RecordSink interface {
	GameFinished(record *models.GameRecord)
}
