// game/room.go
package game

import (
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/wfunc/coupleboard/board"
	"github.com/wfunc/coupleboard/logger"
	"github.com/wfunc/coupleboard/models"
	"github.com/wfunc/coupleboard/network"
	"github.com/wfunc/coupleboard/state"
	"github.com/wfunc/coupleboard/tasks"
	"github.com/wfunc/coupleboard/timer"
)

// Slot ids for the two seats of a room.
const (
	SlotPlayer1 = "player1"
	SlotPlayer2 = "player2"
)

// Settings are the per-game knobs a room is built with. The manager owns
// the authoritative copy; rooms get a value snapshot at creation.
type Settings struct {
	BoardSize   int
	TaskRatio   float64
	DareSeconds int
}

// Validate rejects settings no room could run with.
func (s Settings) Validate() error {
	if s.BoardSize < 8 || s.BoardSize%4 != 0 {
		return board.ErrInvalidBoardSize
	}
	if s.TaskRatio < 0 || s.TaskRatio > 1 {
		return ErrInvalidTaskRatio
	}
	if s.DareSeconds <= 0 {
		return ErrInvalidDareSeconds
	}
	return nil
}

// Player is one seat in a room.
type Player struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Position int       `json:"position"`
	IsActive bool      `json:"isActive"`
	JoinedAt time.Time `json:"-"`
}

// PendingTask is the currently displayed, unresolved prompt. At most one
// exists per room at any time.
type PendingTask struct {
	CellIndex     int
	Category      tasks.Category
	Text          string
	TimerActive   bool
	TimeRemaining int
	timerID       int64
	generation    int64
}

// Room is the authoritative state of one game session. Every exported
// operation takes the room mutex, checks all preconditions, then mutates:
// operations are serialized and all-or-nothing. Timer callbacks re-enter
// through the same mutex.
type Room struct {
	ID string

	mutex           sync.Mutex
	players         map[string]*Player
	order           []string // slot ids in join order
	machine         *state.Machine
	currentPlayerID string
	diceValue       int
	turnCount       int
	geometry        *board.Geometry
	boardTasks      map[int]tasks.Pair
	pending         *PendingTask
	winnerID        string
	createdAt       time.Time
	startedAt       time.Time
	lastActivity    time.Time

	countdownGen int64

	settings    Settings
	library     *tasks.Library
	rng         *rand.Rand
	timers      *timer.Manager
	broadcaster Broadcaster
	records     RecordSink
}

func newRoom(id string, settings Settings, library *tasks.Library, timers *timer.Manager, broadcaster Broadcaster, records RecordSink, rng *rand.Rand) (*Room, error) {
	geo, err := board.NewGeometry(settings.BoardSize)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	return &Room{
		ID:           id,
		players:      make(map[string]*Player),
		machine:      state.NewMachine(),
		geometry:     geo,
		boardTasks:   make(map[int]tasks.Pair),
		createdAt:    now,
		lastActivity: now,
		settings:     settings,
		library:      library,
		rng:          rng,
		timers:       timers,
		broadcaster:  broadcaster,
		records:      records,
	}, nil
}

// addPlayer seats a player in the first free slot. Called by the manager
// under the room lock via Join.
func (r *Room) addPlayer(name string) (string, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.machine.Phase() != state.PhaseWaiting {
		return "", ErrGameAlreadyStarted
	}
	if len(r.players) >= 2 {
		return "", ErrRoomFull
	}

	slot := SlotPlayer1
	if _, taken := r.players[SlotPlayer1]; taken {
		slot = SlotPlayer2
	}
	r.players[slot] = &Player{
		ID:       slot,
		Name:     name,
		JoinedAt: time.Now(),
	}
	r.order = append(r.order, slot)
	r.touchLocked()

	if len(r.players) == 2 {
		r.emit(network.MsgTypeRoomReady, r.snapshotLocked())
	}
	return slot, nil
}

// Start begins the game: assigns the first turn to the first-joined player
// and freezes the task table.
func (r *Room) Start() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.machine.Phase() == state.PhasePlaying {
		return ErrGameAlreadyStarted
	}
	if r.machine.Phase() != state.PhaseWaiting {
		return ErrGameNotInProgress
	}
	if len(r.players) < 2 {
		return ErrNotEnoughPlayers
	}

	taskCells := r.geometry.SampleTaskCells(r.settings.TaskRatio, r.rng)
	r.boardTasks = r.library.Generate(taskCells, r.rng)

	if err := r.machine.SetPhase(state.PhasePlaying); err != nil {
		return err
	}
	r.currentPlayerID = r.order[0]
	r.turnCount = 0
	r.diceValue = 0
	r.winnerID = ""
	r.startedAt = time.Now()
	for slot, p := range r.players {
		p.IsActive = slot == r.currentPlayerID
	}
	r.touchLocked()

	logger.Log.Infow("game started", "room", r.ID, "first", r.currentPlayerID, "taskCells", len(taskCells))
	r.emit(network.MsgTypeGameStarted, r.snapshotLocked())
	return nil
}

// RollDice produces the turn's dice value. The only randomness movement
// ever consumes; clients never roll locally.
func (r *Room) RollDice(slotID string) (int, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.machine.Phase() != state.PhasePlaying {
		return 0, ErrGameNotInProgress
	}
	if slotID != r.currentPlayerID {
		return 0, ErrNotYourTurn
	}
	switch r.machine.Stage() {
	case state.StageIdle:
	case state.StageRolled:
		return 0, ErrDiceAlreadyRolled
	default:
		return 0, ErrInvalidTaskState
	}

	value := r.rng.Intn(6) + 1
	r.diceValue = value
	if err := r.machine.SetStage(state.StageRolled); err != nil {
		return 0, err
	}
	r.touchLocked()

	r.emit(network.MsgTypeDiceRolled, network.DiceRolledEvent{PlayerID: slotID, Value: value})
	return value, nil
}

// Move advances the current player. The position clamps to the finish cell;
// win detection runs before any task check, so the finish cell never
// triggers a prompt.
func (r *Room) Move(slotID string, steps int) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.machine.Phase() != state.PhasePlaying {
		return ErrGameNotInProgress
	}
	if slotID != r.currentPlayerID {
		return ErrNotYourTurn
	}
	if steps < 1 || steps > 6 {
		return ErrInvalidSteps
	}
	switch r.machine.Stage() {
	case state.StageRolled:
	case state.StageIdle:
		return ErrDiceNotRolled
	default:
		return ErrInvalidTaskState
	}

	player := r.players[slotID]
	from := player.Position
	last := r.geometry.LastIndex()
	to := from + steps
	if to > last {
		to = last
	}
	player.Position = to
	r.touchLocked()

	_, onTask := r.boardTasks[to]
	won := to == last

	r.emit(network.MsgTypePlayerMoved, network.PlayerMovedEvent{
		PlayerID: slotID,
		From:     from,
		To:       to,
		OnTask:   onTask && !won,
	})

	if won {
		r.finishLocked(slotID, "finish")
		return nil
	}

	if onTask {
		// Player must choose truth or dare before the prompt is shown;
		// the turn does not advance yet.
		return r.machine.SetStage(state.StageCategoryPending)
	}

	r.nextTurnLocked()
	return nil
}

// SelectCategory resolves the truth-or-dare choice on a task cell and
// activates the prompt. Dares carry a countdown that only starts on an
// explicit StartTimer.
func (r *Room) SelectCategory(category tasks.Category) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.machine.Phase() != state.PhasePlaying {
		return ErrGameNotInProgress
	}
	if r.machine.Stage() != state.StageCategoryPending || r.pending != nil {
		return ErrInvalidTaskState
	}
	if !category.Valid() {
		return ErrInvalidTaskState
	}

	cell := r.players[r.currentPlayerID].Position
	pair, ok := r.boardTasks[cell]
	if !ok {
		return ErrInvalidTaskState
	}

	remaining := 0
	if category == tasks.CategoryDare {
		remaining = r.settings.DareSeconds
	}
	r.pending = &PendingTask{
		CellIndex:     cell,
		Category:      category,
		Text:          pair.Get(category),
		TimeRemaining: remaining,
	}
	if err := r.machine.SetStage(state.StageTaskActive); err != nil {
		return err
	}
	r.touchLocked()

	r.emit(network.MsgTypeTaskTriggered, network.TaskTriggeredEvent{
		CellIndex:     cell,
		Category:      string(category),
		Text:          r.pending.Text,
		TimeRemaining: remaining,
	})
	return nil
}

// StartTimer arms the dare countdown. Truth tasks have no timer.
func (r *Room) StartTimer() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.machine.Phase() != state.PhasePlaying {
		return ErrGameNotInProgress
	}
	if r.pending == nil || r.pending.Category != tasks.CategoryDare || r.pending.TimerActive {
		return ErrInvalidTaskState
	}

	r.countdownGen++
	gen := r.countdownGen
	r.pending.TimerActive = true
	r.pending.generation = gen
	r.pending.timerID = r.timers.Schedule(time.Second, time.Second, func() {
		r.countdownTick(gen)
	})
	r.touchLocked()

	r.emit(network.MsgTypeTaskTimer, network.TaskTimerEvent{TimeRemaining: r.pending.TimeRemaining})
	return nil
}

// countdownTick runs once per second while the dare timer is armed. The
// generation comparison discards stale ticks that raced with a resolution.
func (r *Room) countdownTick(gen int64) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.pending == nil || r.pending.generation != gen || !r.pending.TimerActive {
		return
	}

	r.pending.TimeRemaining--
	if r.pending.TimeRemaining > 0 {
		r.emit(network.MsgTypeTaskTimer, network.TaskTimerEvent{TimeRemaining: r.pending.TimeRemaining})
		return
	}

	// The only automatic resolution path: countdown expired.
	r.resolveTaskLocked("timeout")
}

// CompleteTask resolves the active task as done and advances the turn.
func (r *Room) CompleteTask() error {
	return r.resolveTask("completed")
}

// SkipTask resolves the active task as skipped and advances the turn. The
// completed/skipped distinction is presentation only; no scoring exists.
func (r *Room) SkipTask() error {
	return r.resolveTask("skipped")
}

func (r *Room) resolveTask(outcome string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.machine.Phase() != state.PhasePlaying {
		return ErrGameNotInProgress
	}
	if r.pending == nil {
		return ErrInvalidTaskState
	}

	r.resolveTaskLocked(outcome)
	return nil
}

// resolveTaskLocked clears the pending task exactly once and funnels into
// nextTurn. Caller holds the room mutex.
func (r *Room) resolveTaskLocked(outcome string) {
	if r.pending.timerID != 0 {
		r.timers.Stop(r.pending.timerID)
	}
	r.pending = nil
	r.emit(network.MsgTypeTaskResolved, network.TaskResolvedEvent{Outcome: outcome})
	r.nextTurnLocked()
}

// RerollTask replaces the displayed prompt with a fresh pick from the same
// category, never repeating the current text unless the pool has one entry.
// The new text also replaces the frozen cell entry, and a running dare
// countdown keeps running.
func (r *Room) RerollTask() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.machine.Phase() != state.PhasePlaying {
		return ErrGameNotInProgress
	}
	if r.pending == nil {
		return ErrInvalidTaskState
	}

	text := r.library.PickExcluding(r.pending.Category, r.pending.Text, r.rng)
	pair := r.boardTasks[r.pending.CellIndex]
	if r.pending.Category == tasks.CategoryDare {
		pair.Dare = text
	} else {
		pair.Truth = text
	}
	r.boardTasks[r.pending.CellIndex] = pair
	r.pending.Text = text
	r.touchLocked()

	r.emit(network.MsgTypeTaskTriggered, network.TaskTriggeredEvent{
		CellIndex:     r.pending.CellIndex,
		Category:      string(r.pending.Category),
		Text:          text,
		TimeRemaining: r.pending.TimeRemaining,
		Rerolled:      true,
	})
	return nil
}

// nextTurnLocked is the single chokepoint every task-resolution and
// no-task-move path funnels through: swaps the current player, bumps the
// turn counter, clears the dice and any pending task.
func (r *Room) nextTurnLocked() {
	if r.pending != nil {
		if r.pending.timerID != 0 {
			r.timers.Stop(r.pending.timerID)
		}
		r.pending = nil
	}
	r.diceValue = 0

	for _, slot := range r.order {
		if slot != r.currentPlayerID {
			r.currentPlayerID = slot
			break
		}
	}
	r.turnCount++
	for slot, p := range r.players {
		p.IsActive = slot == r.currentPlayerID
	}
	if err := r.machine.SetStage(state.StageIdle); err != nil {
		logger.Log.Errorw("stage reset failed", "room", r.ID, "err", err)
	}
	r.touchLocked()

	r.emit(network.MsgTypeTurnChanged, network.TurnChangedEvent{
		CurrentPlayerID: r.currentPlayerID,
		TurnCount:       r.turnCount,
	})
}

// finishLocked fixes the winner and makes the room terminal before any
// further turn processing. Caller holds the room mutex.
func (r *Room) finishLocked(winnerID, reason string) {
	if r.pending != nil {
		if r.pending.timerID != 0 {
			r.timers.Stop(r.pending.timerID)
		}
		r.pending = nil
	}
	r.diceValue = 0
	r.winnerID = winnerID
	for _, p := range r.players {
		p.IsActive = false
	}
	if err := r.machine.SetPhase(state.PhaseFinished); err != nil {
		logger.Log.Errorw("finish transition failed", "room", r.ID, "err", err)
		return
	}
	r.touchLocked()

	logger.Log.Infow("game won", "room", r.ID, "winner", winnerID, "reason", reason, "turns", r.turnCount)
	r.emit(network.MsgTypeGameWon, network.GameWonEvent{WinnerID: winnerID, Reason: reason})

	if r.records != nil {
		r.records.GameFinished(r.recordLocked(reason))
	}
}

func (r *Room) recordLocked(reason string) *models.GameRecord {
	rec := &models.GameRecord{
		RoomID:    r.ID,
		BoardSize: r.settings.BoardSize,
		WinnerID:  r.winnerID,
		Reason:    reason,
		TurnCount: r.turnCount,
		CreatedAt: time.Now(),
	}
	if !r.startedAt.IsZero() {
		rec.Duration = int(time.Since(r.startedAt).Seconds())
	}
	for _, slot := range r.order {
		p := r.players[slot]
		rec.Players = append(rec.Players, models.PlayerInfo{
			SlotID:   slot,
			Name:     p.Name,
			Position: p.Position,
		})
	}
	return rec
}

// Reset returns the room to a start-eligible waiting state in place:
// positions to zero, winner and task table cleared, players kept. Used by
// admin reset and play-again.
func (r *Room) Reset() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.pending != nil && r.pending.timerID != 0 {
		r.timers.Stop(r.pending.timerID)
	}
	r.pending = nil
	r.boardTasks = make(map[int]tasks.Pair)
	r.diceValue = 0
	r.turnCount = 0
	r.winnerID = ""
	r.currentPlayerID = ""
	r.startedAt = time.Time{}
	for _, p := range r.players {
		p.Position = 0
		p.IsActive = false
	}
	if err := r.machine.SetPhase(state.PhaseWaiting); err != nil {
		return err
	}
	r.touchLocked()

	r.emit(network.MsgTypeGameReset, r.snapshotLocked())
	return nil
}

// removePlayer unseats a slot. If the game was in progress the remaining
// player wins by forfeit. Returns true when the room is now empty and
// should be destroyed by the manager.
func (r *Room) removePlayer(slotID, reason string) (empty bool, err error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, ok := r.players[slotID]; !ok {
		return len(r.players) == 0, ErrPlayerNotFound
	}

	delete(r.players, slotID)
	for i, slot := range r.order {
		if slot == slotID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.touchLocked()

	r.emit(network.MsgTypePlayerLeft, network.PlayerLeftEvent{PlayerID: slotID, Reason: reason})

	if r.machine.Phase() == state.PhasePlaying && len(r.order) == 1 {
		r.finishLocked(r.order[0], "forfeit")
	}

	return len(r.players) == 0, nil
}

// close stops the room's countdown, if any. Called by the manager with the
// room already unregistered.
func (r *Room) close(reason string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.pending != nil && r.pending.timerID != 0 {
		r.timers.Stop(r.pending.timerID)
		r.pending = nil
	}
	r.emit(network.MsgTypeRoomClosed, network.RoomClosedEvent{Reason: reason})
}

func (r *Room) touchLocked() {
	r.lastActivity = time.Now()
}

// LastActivity reports the most recent state change, for idle sweeps and
// the admin list.
func (r *Room) LastActivity() time.Time {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.lastActivity
}

// emit marshals a payload and broadcasts it on the room channel. Events
// are emitted in commit order because the caller holds the room mutex.
func (r *Room) emit(msgID uint16, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Log.Errorw("marshal event failed", "room", r.ID, "msgID", msgID, "err", err)
		return
	}
	if err := r.broadcaster.BroadcastToRoom(r.ID, msgID, data); err != nil {
		logger.Log.Warnw("broadcast failed", "room", r.ID, "msgID", msgID, "err", err)
	}
}

// Snapshot builds the full client view of the room.
func (r *Room) Snapshot() network.RoomSnapshot {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.snapshotLocked()
}

func (r *Room) snapshotLocked() network.RoomSnapshot {
	snap := network.RoomSnapshot{
		ID:              r.ID,
		Status:          string(r.machine.Phase()),
		CurrentPlayerID: r.currentPlayerID,
		DiceValue:       r.diceValue,
		TurnCount:       r.turnCount,
		WinnerID:        r.winnerID,
	}
	for _, slot := range r.order {
		p := r.players[slot]
		snap.Players = append(snap.Players, network.PlayerInfo{
			ID:       p.ID,
			Name:     p.Name,
			Position: p.Position,
			IsActive: p.IsActive,
		})
	}
	for _, c := range r.geometry.Cells {
		_, hasTask := r.boardTasks[c.Index]
		snap.Board = append(snap.Board, network.CellInfo{
			Index:    c.Index,
			X:        c.X,
			Y:        c.Y,
			IsStart:  c.IsStart,
			IsFinish: c.IsFinish,
			HasTask:  hasTask,
		})
	}
	if r.pending != nil {
		snap.PendingTask = &network.PendingTaskInfo{
			CellIndex:     r.pending.CellIndex,
			Category:      string(r.pending.Category),
			Text:          r.pending.Text,
			TimerActive:   r.pending.TimerActive,
			TimeRemaining: r.pending.TimeRemaining,
		}
	}
	return snap
}

// Summary is the admin-list view.
func (r *Room) Summary() network.RoomSummary {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return network.RoomSummary{
		ID:              r.ID,
		Status:          string(r.machine.Phase()),
		PlayerCount:     len(r.players),
		TurnCount:       r.turnCount,
		CurrentPlayerID: r.currentPlayerID,
		CreatedAt:       r.createdAt.Unix(),
		LastActivity:    r.lastActivity.Unix(),
	}
}

// Accessors used by the server layer and tests.

func (r *Room) Phase() state.Phase {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.machine.Phase()
}

func (r *Room) Stage() state.Stage {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.machine.Stage()
}

func (r *Room) CurrentPlayerID() string {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.currentPlayerID
}

func (r *Room) TurnCount() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.turnCount
}

func (r *Room) DiceValue() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.diceValue
}

func (r *Room) WinnerID() string {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.winnerID
}

func (r *Room) Pending() *PendingTask {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.pending == nil {
		return nil
	}
	copied := *r.pending
	return &copied
}

func (r *Room) PlayerPosition(slotID string) (int, bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	p, ok := r.players[slotID]
	if !ok {
		return 0, false
	}
	return p.Position, true
}

func (r *Room) BoardTasks() map[int]tasks.Pair {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	copied := make(map[int]tasks.Pair, len(r.boardTasks))
	for k, v := range r.boardTasks {
		copied[k] = v
	}
	return copied
}
