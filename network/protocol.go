package network

// Message ids for every client command and server event. The dispatch in
// server/ switches exhaustively over the client range; anything outside it
// is rejected, never interpreted.
const (
	MsgTypeHeartbeat uint16 = 1
	MsgTypeError     uint16 = 2

	// Client commands: room lifecycle.
	MsgTypeCreateRoom uint16 = 101
	MsgTypeJoinRoom   uint16 = 102
	MsgTypeLeaveRoom  uint16 = 103
	MsgTypeStartGame  uint16 = 104

	// Client commands: in-turn actions.
	MsgTypeRollDice           uint16 = 201
	MsgTypeMovePlayer         uint16 = 202
	MsgTypeSelectTaskCategory uint16 = 203
	MsgTypeStartTimer         uint16 = 204
	MsgTypeCompleteTask       uint16 = 205
	MsgTypeSkipTask           uint16 = 206
	MsgTypeRerollTask         uint16 = 207

	// Server events.
	MsgTypeRoomCreated   uint16 = 301
	MsgTypeRoomJoined    uint16 = 302
	MsgTypeRoomReady     uint16 = 303
	MsgTypeGameStarted   uint16 = 304
	MsgTypeDiceRolled    uint16 = 305
	MsgTypePlayerMoved   uint16 = 306
	MsgTypeTaskTriggered uint16 = 307
	MsgTypeTaskTimer     uint16 = 308
	MsgTypeTaskResolved  uint16 = 309
	MsgTypeTurnChanged   uint16 = 310
	MsgTypeGameWon       uint16 = 311
	MsgTypeGameReset     uint16 = 312
	MsgTypePlayerLeft    uint16 = 313
	MsgTypeRoomClosed    uint16 = 314
	MsgTypeAdminMessage  uint16 = 315

	// Admin channel.
	MsgTypeAdminJoin           uint16 = 901
	MsgTypeAdminRoomsList      uint16 = 902
	MsgTypeAdminCloseRoom      uint16 = 903
	MsgTypeAdminKickPlayer     uint16 = 904
	MsgTypeAdminResetGame      uint16 = 905
	MsgTypeAdminBroadcast      uint16 = 906
	MsgTypeAdminUpdateSettings uint16 = 907
)
