package network

// Typed payload bodies for every message id in protocol.go. All bodies are
// JSON; the packet header carries the id and length.

// --- client command bodies ---

type CreateRoomRequest struct {
	Name string `json:"name"`
}

type JoinRoomRequest struct {
	RoomID string `json:"roomId"`
	Name   string `json:"name"`
}

type MovePlayerRequest struct {
	Steps int `json:"steps"`
}

type SelectCategoryRequest struct {
	Category string `json:"category"`
}

// --- admin command bodies ---

type AdminJoinRequest struct {
	Key string `json:"key"`
}

type AdminRoomRequest struct {
	RoomID string `json:"roomId"`
}

type AdminKickRequest struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
}

type AdminBroadcastRequest struct {
	// RoomID empty means broadcast to every room.
	RoomID  string `json:"roomId,omitempty"`
	Message string `json:"message"`
}

type SettingsPayload struct {
	BoardSize   int     `json:"boardSize"`
	TaskRatio   float64 `json:"taskRatio"`
	DareSeconds int     `json:"dareSeconds"`
}

// --- server event bodies ---

type ErrorMessage struct {
	Message string `json:"message"`
}

type PlayerInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
	IsActive bool   `json:"isActive"`
}

type CellInfo struct {
	Index    int  `json:"index"`
	X        int  `json:"x"`
	Y        int  `json:"y"`
	IsStart  bool `json:"isStart"`
	IsFinish bool `json:"isFinish"`
	HasTask  bool `json:"hasTask"`
}

type PendingTaskInfo struct {
	CellIndex     int    `json:"cellIndex"`
	Category      string `json:"category"`
	Text          string `json:"text"`
	TimerActive   bool   `json:"timerActive"`
	TimeRemaining int    `json:"timeRemaining"`
}

// RoomSnapshot is the full room view sent on join/start/reset so a client
// can render from scratch.
type RoomSnapshot struct {
	ID              string           `json:"id"`
	Status          string           `json:"status"`
	Players         []PlayerInfo     `json:"players"`
	CurrentPlayerID string           `json:"currentPlayerId,omitempty"`
	DiceValue       int              `json:"diceValue,omitempty"`
	TurnCount       int              `json:"turnCount"`
	WinnerID        string           `json:"winnerId,omitempty"`
	Board           []CellInfo       `json:"board,omitempty"`
	PendingTask     *PendingTaskInfo `json:"pendingTask,omitempty"`
	YourSlot        string           `json:"yourSlot,omitempty"`
}

type DiceRolledEvent struct {
	PlayerID string `json:"playerId"`
	Value    int    `json:"value"`
}

type PlayerMovedEvent struct {
	PlayerID string `json:"playerId"`
	From     int    `json:"from"`
	To       int    `json:"to"`
	OnTask   bool   `json:"onTask"`
}

type TaskTriggeredEvent struct {
	CellIndex     int    `json:"cellIndex"`
	Category      string `json:"category"`
	Text          string `json:"text"`
	TimeRemaining int    `json:"timeRemaining"`
	Rerolled      bool   `json:"rerolled,omitempty"`
}

type TaskTimerEvent struct {
	TimeRemaining int `json:"timeRemaining"`
}

type TaskResolvedEvent struct {
	Outcome string `json:"outcome"` // completed, skipped, timeout
}

type TurnChangedEvent struct {
	CurrentPlayerID string `json:"currentPlayerId"`
	TurnCount       int    `json:"turnCount"`
}

type GameWonEvent struct {
	WinnerID string `json:"winnerId"`
	Reason   string `json:"reason"` // finish, forfeit
}

type PlayerLeftEvent struct {
	PlayerID string `json:"playerId"`
	Reason   string `json:"reason"` // left, kicked, disconnected
}

type RoomClosedEvent struct {
	Reason string `json:"reason"`
}

type AdminMessageEvent struct {
	Message string `json:"message"`
}

type RoomSummary struct {
	ID              string `json:"id"`
	Status          string `json:"status"`
	PlayerCount     int    `json:"playerCount"`
	TurnCount       int    `json:"turnCount"`
	CurrentPlayerID string `json:"currentPlayerId,omitempty"`
	CreatedAt       int64  `json:"createdAt"`
	LastActivity    int64  `json:"lastActivity"`
}

type AdminRoomsListEvent struct {
	Rooms []RoomSummary `json:"rooms"`
}
