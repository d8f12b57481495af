// Package game owns the lobby-level game wrappers and the controller that
// translates routed game messages into engine calls.
package game

import (
	"sync"

	"cardhub/internal/protocol"
)

type Status string

const (
	StatusWaiting      Status = "waiting"
	StatusJoining      Status = "joining"
	StatusCanStart     Status = "canStart"
	StatusReadyToStart Status = "readyToStart"
	StatusStarted      Status = "started"
	StatusEnded        Status = "ended"
)

// Engine is the contract every game implementation satisfies. The wrapper
// treats it as opaque; only betting verbs reach Apply.
type Engine interface {
	MaxPlayers() int
	AddPlayer(id string, seat int, stack int64) (assigned int, err error)
	RemovePlayer(id string) (result *protocol.HandResult, handOver bool, err error)
	StartHand() (result *protocol.HandResult, handOver bool, err error)
	Apply(id string, verb protocol.GameVerb, amount int64) (result *protocol.HandResult, handOver bool, err error)
	View() *protocol.TableView
	HoleCards(id string) []string
	CurrentTurn() string
}

// EngineFactory builds a fresh engine for one game instance.
type EngineFactory func(gameID string) Engine

type SeatRecord struct {
	Joined    bool
	Ready     bool
	SeatIndex int
}

type ActionRecord struct {
	PlayerID string
	Verb     string
	Amount   int64
}

// Game wraps one engine instance with its lobby-side bookkeeping. The mutex
// serializes every action applied to this game: at most one in-flight
// mutation per game id, whatever connection it arrived on.
type Game struct {
	mu sync.Mutex

	ID      string
	Type    string
	LobbyID string
	Status  Status
	// Allowed, when non-empty, restricts joining to the listed player ids.
	Allowed []string

	players    map[string]SeatRecord
	actions    []ActionRecord
	maxPlayers int
	engine     Engine
}

// NewGame wraps an engine. maxPlayers caps joins below the engine's own
// limit when the rule table says so; zero means engine limit only.
func NewGame(id, gameType, lobbyID string, allowed []string, maxPlayers int, engine Engine) *Game {
	if maxPlayers <= 0 || maxPlayers > engine.MaxPlayers() {
		maxPlayers = engine.MaxPlayers()
	}
	return &Game{
		ID:         id,
		Type:       gameType,
		LobbyID:    lobbyID,
		Status:     StatusWaiting,
		Allowed:    allowed,
		players:    map[string]SeatRecord{},
		maxPlayers: maxPlayers,
		engine:     engine,
	}
}

func (g *Game) allowedToJoin(playerID string) bool {
	if len(g.Allowed) == 0 {
		return true
	}
	for _, id := range g.Allowed {
		if id == playerID {
			return true
		}
	}
	return false
}

// Join records a player and moves the lobby status forward. The player
// mapping never grows past the engine's declared max.
func (g *Game) Join(playerID string, seat int, stack int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.Status == StatusEnded {
		return errGameEnded
	}
	if !g.allowedToJoin(playerID) {
		return errNotInvited
	}
	if _, ok := g.players[playerID]; ok {
		return errAlreadyJoined
	}
	if len(g.players) >= g.maxPlayers {
		return errGameFull
	}
	assigned, err := g.engine.AddPlayer(playerID, seat, stack)
	if err != nil {
		return err
	}
	g.players[playerID] = SeatRecord{Joined: true, Ready: true, SeatIndex: assigned}
	g.advanceJoinStatus()
	return nil
}

func (g *Game) advanceJoinStatus() {
	switch {
	case g.Status == StatusStarted || g.Status == StatusEnded:
	case len(g.players) == 0:
		g.Status = StatusWaiting
	case len(g.players) >= g.maxPlayers:
		g.Status = StatusReadyToStart
	case len(g.players) == 1:
		g.Status = StatusJoining
	default:
		g.Status = StatusCanStart
	}
}

// Leave folds the player out of any running hand and releases the seat.
func (g *Game) Leave(playerID string) (*protocol.HandResult, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.players[playerID]; !ok {
		return nil, false, errNotInGame
	}
	res, over, err := g.engine.RemovePlayer(playerID)
	if err != nil {
		return nil, false, err
	}
	delete(g.players, playerID)
	g.record(playerID, string(protocol.VerbLeave), 0)
	g.advanceJoinStatus()
	return res, over, nil
}

// Start marks the game started and deals the first hand.
func (g *Game) Start() (*protocol.HandResult, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.Status == StatusStarted {
		return nil, false, errAlreadyStarted
	}
	if g.Status != StatusCanStart && g.Status != StatusReadyToStart {
		return nil, false, errNotEnoughPlayers
	}
	res, over, err := g.engine.StartHand()
	if err != nil {
		return nil, false, err
	}
	g.Status = StatusStarted
	g.record("", string(protocol.VerbStartHand), 0)
	return res, over, nil
}

// Deal begins the next hand of an already started game.
func (g *Game) Deal() (*protocol.HandResult, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.Status != StatusStarted {
		return nil, false, errNotStarted
	}
	res, over, err := g.engine.StartHand()
	if err != nil {
		return nil, false, err
	}
	g.record("", string(protocol.VerbStartHand), 0)
	return res, over, nil
}

// Apply forwards a betting verb to the engine under the game lock.
func (g *Game) Apply(playerID string, verb protocol.GameVerb, amount int64) (*protocol.HandResult, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.Status != StatusStarted {
		return nil, false, errNotStarted
	}
	res, over, err := g.engine.Apply(playerID, verb, amount)
	if err != nil {
		return nil, false, err
	}
	g.record(playerID, string(verb), amount)
	return res, over, nil
}

// End marks the game ended. Idempotent.
func (g *Game) End() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Status = StatusEnded
}

// RecordResult appends a posted hand result to the action log.
func (g *Game) RecordResult(playerID string, amount int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record(playerID, "result", amount)
}

func (g *Game) record(playerID, verb string, amount int64) {
	g.actions = append(g.actions, ActionRecord{PlayerID: playerID, Verb: verb, Amount: amount})
}

// Actions returns a copy of the append-only action log.
func (g *Game) Actions() []ActionRecord {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]ActionRecord, len(g.actions))
	copy(out, g.actions)
	return out
}

// View is the lobby-level summary of this game.
func (g *Game) View() protocol.GameView {
	g.mu.Lock()
	defer g.mu.Unlock()
	players := make(map[string]protocol.SeatView, len(g.players))
	for id, rec := range g.players {
		players[id] = protocol.SeatView{Joined: rec.Joined, Ready: rec.Ready, SeatIndex: rec.SeatIndex}
	}
	return protocol.GameView{
		GameID:   g.ID,
		GameType: g.Type,
		LobbyID:  g.LobbyID,
		Status:   string(g.Status),
		Players:  players,
	}
}

// TableView exposes the engine's public snapshot under the game lock.
func (g *Game) TableView() *protocol.TableView {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.engine.View()
}

// HoleCards returns the private cards for one seat.
func (g *Game) HoleCards(playerID string) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.engine.HoleCards(playerID)
}

// Players reports the currently joined ids.
func (g *Game) Players() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	ids := make([]string, 0, len(g.players))
	for id := range g.players {
		ids = append(ids, id)
	}
	return ids
}

func (g *Game) HasPlayer(playerID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.players[playerID]
	return ok
}
