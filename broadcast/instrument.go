package broadcast

import (
	"encoding/json"

	"github.com/wfunc/coupleboard/monitor"
	"github.com/wfunc/coupleboard/network"
)

// Instrumented decorates a Broadcaster and counts game events as they are
// committed, so the metrics see exactly what the clients see.
type Instrumented struct {
	next Broadcaster
	mon  *monitor.Monitor
}

func NewInstrumented(next Broadcaster, mon *monitor.Monitor) *Instrumented {
	return &Instrumented{next: next, mon: mon}
}

func (i *Instrumented) BroadcastToRoom(roomID string, msgID uint16, data []byte) error {
	i.observe(msgID, data)
	return i.next.BroadcastToRoom(roomID, msgID, data)
}

func (i *Instrumented) BroadcastToAll(msgID uint16, data []byte) error {
	i.observe(msgID, data)
	return i.next.BroadcastToAll(msgID, data)
}

func (i *Instrumented) observe(msgID uint16, data []byte) {
	switch msgID {
	case network.MsgTypeDiceRolled:
		i.mon.IncDiceRolls()
	case network.MsgTypeGameWon:
		i.mon.IncGamesFinished()
	case network.MsgTypeTaskResolved:
		var ev network.TaskResolvedEvent
		if err := json.Unmarshal(data, &ev); err == nil && ev.Outcome == "timeout" {
			i.mon.IncTaskTimeouts()
		}
	}
}
