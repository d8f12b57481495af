package game

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"cardhub/internal/config"
	"cardhub/internal/controller"
	"cardhub/internal/protocol"
)

// Controller owns the active-games map. Only this controller mutates it;
// relays reach game state exclusively through these calls. The map is
// injected so tests build isolated instances.
type Controller struct {
	mu        sync.RWMutex
	games     map[string]*Game
	factories map[string]EngineFactory
	rules     config.Rules
	stack     int64
	log       zerolog.Logger

	idMu      sync.Mutex
	idEntropy *ulid.MonotonicEntropy
}

func NewController(games map[string]*Game, factories map[string]EngineFactory, rules config.Rules, defaultStack int64, log zerolog.Logger) *Controller {
	return &Controller{
		games:     games,
		factories: factories,
		rules:     rules,
		stack:     defaultStack,
		log:       log.With().Str("component", "game-controller").Logger(),
		idEntropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
}

func (c *Controller) newID() string {
	c.idMu.Lock()
	defer c.idMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), c.idEntropy).String()
}

// CreateGame registers a new wrapper for the lobby controller.
func (c *Controller) CreateGame(gameType, lobbyID string, allowed []string) (*Game, error) {
	factory, ok := c.factories[gameType]
	if !ok {
		return nil, errUnknownGameType
	}
	id := c.newID()
	g := NewGame(id, gameType, lobbyID, allowed, c.rules.MaxPlayersPerGame, factory(id))
	c.mu.Lock()
	c.games[id] = g
	c.mu.Unlock()
	c.log.Info().Str("game_id", id).Str("game_type", gameType).Str("lobby_id", lobbyID).Msg("game created")
	return g, nil
}

func (c *Controller) Get(gameID string) (*Game, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	g, ok := c.games[gameID]
	return g, ok
}

func (c *Controller) Remove(gameID string) {
	c.mu.Lock()
	delete(c.games, gameID)
	c.mu.Unlock()
}

// HandleMessage runs one routed game message through the permission →
// validation → handler pipeline and returns an explicit outcome.
func (c *Controller) HandleMessage(ctx context.Context, senderID string, env protocol.Envelope) (*protocol.Response, error) {
	p := controller.NewPipeline("game:"+env.Payload.Action, c.log,
		c.checkPermission,
		c.validate,
		c.handle,
	)
	return p.Run(ctx, &controller.Request{Env: env, SenderID: senderID})
}

func (c *Controller) checkPermission(ctx context.Context, req *controller.Request) error {
	op := protocol.GameOp(req.Env.Payload.Action)
	if op != protocol.OpGameAction && op != protocol.OpEndGame {
		return errActionNotListed
	}
	if op == protocol.OpGameAction {
		ga := req.Env.Payload.GameAction
		if ga == nil {
			return errMissingAction
		}
		if !c.rules.GameVerbAllowed(string(ga.GameAction)) {
			return errActionNotListed
		}
	}
	return nil
}

func (c *Controller) validate(ctx context.Context, req *controller.Request) error {
	if req.Env.Payload.PlayerID == "" {
		return errMissingPlayer
	}
	if _, ok := c.Get(req.Env.Payload.GameID); !ok {
		return errUnknownGame
	}
	return nil
}

func (c *Controller) handle(ctx context.Context, req *controller.Request) error {
	payload := req.Env.Payload
	g, _ := c.Get(payload.GameID)

	if protocol.GameOp(payload.Action) == protocol.OpEndGame {
		g.End()
		c.Remove(g.ID)
		c.log.Info().Str("game_id", g.ID).Msg("game ended")
		req.Response = &protocol.Response{
			Payload:   protocol.Payload{Type: protocol.TypeGame, Action: string(protocol.OpEndGame), GameID: g.ID, LobbyID: g.LobbyID, Game: viewPtr(g.View())},
			Broadcast: true,
		}
		return nil
	}

	ga := payload.GameAction
	var result *protocol.HandResult
	var err error
	switch ga.GameAction {
	case protocol.VerbSit:
		seat := ga.SeatIndex
		err = g.Join(payload.PlayerID, seat, c.stack)
	case protocol.VerbLeave:
		result, _, err = g.Leave(payload.PlayerID)
	case protocol.VerbStartHand:
		if g.Status == StatusStarted {
			result, _, err = g.Deal()
		} else {
			result, _, err = g.Start()
		}
	default:
		result, _, err = g.Apply(payload.PlayerID, ga.GameAction, ga.Amount)
	}
	if err != nil {
		return err
	}

	req.Response = c.GameResponse(g, result)
	return nil
}

// DefaultStack is the starting stack handed to every seated player.
func (c *Controller) DefaultStack() int64 { return c.stack }

// GameResponse assembles the broadcast copy plus per-recipient private
// copies carrying that player's hole cards. The broadcast copy never includes
// a hole card.
func (c *Controller) GameResponse(g *Game, result *protocol.HandResult) *protocol.Response {
	view := g.View()
	public := protocol.Payload{
		Type:    protocol.TypeGame,
		Action:  string(protocol.OpGameAction),
		GameID:  g.ID,
		LobbyID: g.LobbyID,
		Game:    &view,
		Table:   g.TableView(),
		Result:  result,
	}
	private := map[string]protocol.Payload{}
	for _, id := range g.Players() {
		cards := g.HoleCards(id)
		if len(cards) == 0 {
			continue
		}
		pp := public
		pp.HoleCards = cards
		private[id] = pp
	}
	return &protocol.Response{Payload: public, Broadcast: true, Private: private}
}

func viewPtr(v protocol.GameView) *protocol.GameView { return &v }
