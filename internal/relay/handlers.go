package relay

import (
	"context"
	"errors"

	"cardhub/internal/game"
	"cardhub/internal/protocol"
)

var (
	errEmptyChatText  = errors.New("empty_chat_text")
	errUnknownGame    = errors.New("unknown_game")
	errUnknownMessage = errors.New("unknown_message_type")
)

// chatHandler rebroadcasts chat lines to everyone on the chat relay. No
// history is kept.
type chatHandler struct{}

func (chatHandler) HandleMessage(ctx context.Context, senderID string, env protocol.Envelope) (*protocol.Response, error) {
	if env.Payload.Type != protocol.TypeChat {
		return nil, errUnknownMessage
	}
	if env.Payload.Text == "" {
		return nil, errEmptyChatText
	}
	return &protocol.Response{
		Payload: protocol.Payload{
			Type:       protocol.TypeChat,
			LobbyID:    env.Payload.LobbyID,
			PlayerID:   env.Payload.PlayerID,
			PlayerName: env.Payload.PlayerName,
			Text:       env.Payload.Text,
		},
		Broadcast: true,
	}, nil
}

// displayHandler serves read-only observers: any displayGame request is
// answered with a broadcast of the named game's public table view. Hole
// cards never reach this relay.
type displayHandler struct {
	games *game.Controller
}

func (h displayHandler) HandleMessage(ctx context.Context, senderID string, env protocol.Envelope) (*protocol.Response, error) {
	if env.Payload.Type != protocol.TypeDisplayGame {
		return nil, errUnknownMessage
	}
	g, ok := h.games.Get(env.Payload.GameID)
	if !ok {
		return nil, errUnknownGame
	}
	view := g.View()
	return &protocol.Response{
		Payload: protocol.Payload{
			Type:   protocol.TypeDisplayGame,
			GameID: g.ID,
			Game:   &view,
			Table:  g.TableView(),
		},
		Broadcast: true,
	}, nil
}

// gameHandler wraps the game controller for one game relay: when the game
// ends it forwards a gameEnded notice to the owning lobby over the relay
// link before the broadcast goes out.
type gameHandler struct {
	games   *game.Controller
	gameID  string
	lobbyID string
	link    Link
}

func (h *gameHandler) HandleMessage(ctx context.Context, senderID string, env protocol.Envelope) (*protocol.Response, error) {
	resp, err := h.games.HandleMessage(ctx, senderID, env)
	if err != nil {
		return nil, err
	}
	if resp != nil && protocol.GameOp(resp.Payload.Action) == protocol.OpEndGame && h.link != nil {
		notice := protocol.Envelope{Payload: protocol.Payload{
			Type:    protocol.TypeLobby,
			Action:  string(protocol.ActionGameEnded),
			LobbyID: h.lobbyID,
			GameID:  h.gameID,
		}}
		_ = h.link.SendMessage(notice)
	}
	return resp, nil
}
