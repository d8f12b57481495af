package lobby

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"cardhub/internal/config"
	"cardhub/internal/controller"
	"cardhub/internal/game"
	"cardhub/internal/protocol"
)

// RelaySpawner is what the controller needs from the relay manager: bring a
// relay up when a lobby or game appears, tear the game relay down when the
// game ends. Injected so tests run without any listener.
type RelaySpawner interface {
	SpawnLobbyRelay(lobbyID string) error
	SpawnGameRelay(gameID, lobbyID string) error
	RemoveGameRelay(gameID string)
}

// Controller owns the lobbies map. Every routed lobby message runs through a
// permission → validation → handler pipeline.
type Controller struct {
	mu      sync.RWMutex
	lobbies map[string]*Lobby

	games   *game.Controller
	spawner RelaySpawner
	rules   config.Rules
	log     zerolog.Logger

	idMu      sync.Mutex
	idEntropy *ulid.MonotonicEntropy
}

func NewController(lobbies map[string]*Lobby, games *game.Controller, spawner RelaySpawner, rules config.Rules, log zerolog.Logger) *Controller {
	return &Controller{
		lobbies:   lobbies,
		games:     games,
		spawner:   spawner,
		rules:     rules,
		log:       log.With().Str("component", "lobby-controller").Logger(),
		idEntropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
}

func (c *Controller) newID() string {
	c.idMu.Lock()
	defer c.idMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), c.idEntropy).String()
}

// AddLobby registers a lobby directly, used at bootstrap for the configured
// lobby ids.
func (c *Controller) AddLobby(id string) *Lobby {
	l := NewLobby(id)
	c.mu.Lock()
	c.lobbies[id] = l
	c.mu.Unlock()
	return l
}

func (c *Controller) Get(lobbyID string) (*Lobby, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	l, ok := c.lobbies[lobbyID]
	return l, ok
}

func (c *Controller) lobbyCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.lobbies)
}

// HandleMessage runs one routed lobby message through the pipeline.
func (c *Controller) HandleMessage(ctx context.Context, senderID string, env protocol.Envelope) (*protocol.Response, error) {
	p := controller.NewPipeline("lobby:"+env.Payload.Action, c.log,
		c.checkPermission,
		c.validate,
		c.handle,
	)
	return p.Run(ctx, &controller.Request{Env: env, SenderID: senderID})
}

func (c *Controller) checkPermission(ctx context.Context, req *controller.Request) error {
	if !c.rules.LobbyActionAllowed(req.Env.Payload.Action) {
		return errActionNotListed
	}
	return nil
}

func (c *Controller) validate(ctx context.Context, req *controller.Request) error {
	p := req.Env.Payload
	if p.PlayerID == "" && protocol.LobbyAction(p.Action) != protocol.ActionGameEnded {
		return errMissingPlayer
	}
	// createLobby is the one action allowed to name a lobby that does not
	// exist yet.
	if protocol.LobbyAction(p.Action) == protocol.ActionCreateLobby {
		return nil
	}
	if _, ok := c.Get(p.LobbyID); !ok {
		return errUnknownLobby
	}
	return nil
}

func (c *Controller) handle(ctx context.Context, req *controller.Request) error {
	p := req.Env.Payload
	switch protocol.LobbyAction(p.Action) {
	case protocol.ActionLogin:
		return c.handleLogin(req)
	case protocol.ActionCreateLobby:
		return c.handleCreateLobby(req)
	case protocol.ActionCreateNewGame:
		return c.handleCreateNewGame(req)
	case protocol.ActionJoinGame:
		return c.handleJoinGame(req)
	case protocol.ActionStartGame:
		return c.handleStartGame(req)
	case protocol.ActionRefreshLobby:
		return c.lobbyBroadcast(req, protocol.ActionRefreshLobby)
	case protocol.ActionGameEnded:
		return c.handleGameEnded(req)
	case protocol.ActionGameInvite:
		return c.handleGameInvite(req)
	case protocol.ActionPostGameResult:
		return c.handlePostGameResult(req)
	default:
		return errActionNotListed
	}
}

func (c *Controller) handleLogin(req *controller.Request) error {
	p := req.Env.Payload
	l, _ := c.Get(p.LobbyID)
	l.AddMember(p.PlayerID, p.PlayerName)
	c.log.Info().Str("lobby_id", l.ID).Str("player_id", p.PlayerID).Msg("player logged in")
	return c.lobbyBroadcast(req, protocol.ActionLogin)
}

func (c *Controller) handleCreateLobby(req *controller.Request) error {
	id := req.Env.Payload.LobbyID
	if id == "" {
		id = c.newID()
	}
	if _, ok := c.Get(id); ok {
		return errLobbyExists
	}
	if c.lobbyCount() >= c.rules.MaxLobbies {
		return errMaxLobbies
	}
	l := c.AddLobby(id)
	if err := c.spawner.SpawnLobbyRelay(id); err != nil {
		c.log.Warn().Err(err).Str("lobby_id", id).Msg("lobby relay failed to start")
	}
	c.log.Info().Str("lobby_id", id).Msg("lobby created")
	view := l.View()
	req.Response = &protocol.Response{
		Payload:   protocol.Payload{Type: protocol.TypeLobby, Action: string(protocol.ActionCreateLobby), LobbyID: id, Lobby: &view},
		Broadcast: true,
	}
	return nil
}

func (c *Controller) handleCreateNewGame(req *controller.Request) error {
	p := req.Env.Payload
	l, _ := c.Get(p.LobbyID)
	g, err := c.games.CreateGame(p.GameType, l.ID, p.Allowed)
	if err != nil {
		return err
	}
	l.AddGame(g)
	if err := c.spawner.SpawnGameRelay(g.ID, l.ID); err != nil {
		c.log.Warn().Err(err).Str("game_id", g.ID).Msg("game relay failed to start")
	}
	view := l.View()
	gv := g.View()
	req.Response = &protocol.Response{
		Payload: protocol.Payload{
			Type: protocol.TypeLobby, Action: string(protocol.ActionCreateNewGame),
			LobbyID: l.ID, GameID: g.ID, GameType: g.Type, Lobby: &view, Game: &gv,
		},
		Broadcast: true,
	}
	return nil
}

func (c *Controller) handleJoinGame(req *controller.Request) error {
	p := req.Env.Payload
	l, _ := c.Get(p.LobbyID)
	g, ok := l.Game(p.GameID)
	if !ok {
		return errUnknownGame
	}
	seat := -1
	if p.GameAction != nil {
		seat = p.GameAction.SeatIndex
	}
	if err := g.Join(p.PlayerID, seat, c.games.DefaultStack()); err != nil {
		return err
	}
	view := l.View()
	gv := g.View()
	req.Response = &protocol.Response{
		Payload: protocol.Payload{
			Type: protocol.TypeLobby, Action: string(protocol.ActionJoinGame),
			LobbyID: l.ID, GameID: g.ID, PlayerID: p.PlayerID, Lobby: &view, Game: &gv,
		},
		Broadcast: true,
	}
	return nil
}

func (c *Controller) handleStartGame(req *controller.Request) error {
	p := req.Env.Payload
	l, _ := c.Get(p.LobbyID)
	g, ok := l.Game(p.GameID)
	if !ok {
		return errUnknownGame
	}
	result, _, err := g.Start()
	if err != nil {
		return err
	}
	resp := c.games.GameResponse(g, result)
	resp.Payload.Type = protocol.TypeLobby
	resp.Payload.Action = string(protocol.ActionStartGame)
	for id, pp := range resp.Private {
		pp.Type = protocol.TypeLobby
		pp.Action = string(protocol.ActionStartGame)
		resp.Private[id] = pp
	}
	req.Response = resp
	return nil
}

func (c *Controller) handleGameEnded(req *controller.Request) error {
	p := req.Env.Payload
	l, _ := c.Get(p.LobbyID)
	l.RemoveGame(p.GameID)
	c.spawner.RemoveGameRelay(p.GameID)
	c.log.Info().Str("lobby_id", l.ID).Str("game_id", p.GameID).Msg("game ended")
	return c.lobbyBroadcast(req, protocol.ActionGameEnded)
}

func (c *Controller) handleGameInvite(req *controller.Request) error {
	p := req.Env.Payload
	if p.TargetID == "" {
		return errMissingTarget
	}
	l, _ := c.Get(p.LobbyID)
	if !l.HasMember(p.TargetID) {
		return errNotLoggedIn
	}
	invite := protocol.Payload{
		Type: protocol.TypeLobby, Action: string(protocol.ActionGameInvite),
		LobbyID: l.ID, GameID: p.GameID, PlayerID: p.PlayerID, PlayerName: p.PlayerName, TargetID: p.TargetID,
	}
	// Delivered to the invitee only; the sender gets the payload back as an
	// acknowledgement.
	req.Response = &protocol.Response{
		Payload: invite,
		Private: map[string]protocol.Payload{p.TargetID: invite},
	}
	return nil
}

func (c *Controller) handlePostGameResult(req *controller.Request) error {
	p := req.Env.Payload
	if p.Result != nil {
		if g, ok := c.games.Get(p.GameID); ok {
			g.RecordResult(p.Result.WinnerID, p.Result.Amount)
		}
	}
	l, _ := c.Get(p.LobbyID)
	view := l.View()
	req.Response = &protocol.Response{
		Payload: protocol.Payload{
			Type: protocol.TypeLobby, Action: string(protocol.ActionPostGameResult),
			LobbyID: l.ID, GameID: p.GameID, Result: p.Result, Lobby: &view,
		},
		Broadcast: true,
	}
	return nil
}

func (c *Controller) lobbyBroadcast(req *controller.Request, action protocol.LobbyAction) error {
	l, _ := c.Get(req.Env.Payload.LobbyID)
	view := l.View()
	req.Response = &protocol.Response{
		Payload:   protocol.Payload{Type: protocol.TypeLobby, Action: string(action), LobbyID: l.ID, Lobby: &view},
		Broadcast: true,
	}
	return nil
}
