package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"cardhub/internal/bot"
	"cardhub/internal/config"
	"cardhub/internal/game"
	"cardhub/internal/lobby"
	"cardhub/internal/logging"
	"cardhub/internal/poker"
	"cardhub/internal/protocol"
	"cardhub/internal/relay"
)

func main() {
	cfg, err := config.LoadApp()
	if err != nil {
		panic(err)
	}
	logging.Init(cfg.Log)

	factories := map[string]game.EngineFactory{
		"poker": func(gameID string) game.Engine {
			return poker.NewGame(gameID, cfg.Hub.SmallBlind, cfg.Hub.BigBlind)
		},
	}
	games := game.NewController(map[string]*game.Game{}, factories, cfg.Rules, cfg.Hub.DefaultStack, log.Logger)
	manager := relay.NewManager(map[string]*relay.Relay{}, games, cfg.Hub, log.Logger)
	lobbies := lobby.NewController(map[string]*lobby.Lobby{}, games, manager, cfg.Rules, log.Logger)
	manager.SetLobbyHandler(lobbies)

	if cfg.Hub.BotEnabled {
		manager.SetGameRelayHook(func(r *relay.Relay, gameID, lobbyID string) {
			b := bot.Attach(r, "bot-"+gameID, gameID, cfg.Hub.BotDelay, log.Logger)
			r.Dispatch(context.Background(), b.PlayerID, protocol.Envelope{Payload: protocol.Payload{
				Type:       protocol.TypeGame,
				Action:     string(protocol.OpGameAction),
				GameID:     gameID,
				PlayerID:   b.PlayerID,
				GameAction: &protocol.GameAction{GameAction: protocol.VerbSit, SeatIndex: -1},
			}})
		})
	}

	for _, lobbyID := range cfg.Hub.LobbyIDs {
		lobbies.AddLobby(lobbyID)
		if err := manager.SpawnLobbyRelay(lobbyID); err != nil {
			log.Fatal().Err(err).Str("lobby_id", lobbyID).Msg("lobby relay failed")
		}
	}
	if err := manager.SpawnChatRelay("chat-main"); err != nil {
		log.Fatal().Err(err).Msg("chat relay failed")
	}
	if err := manager.SpawnDisplayRelay("display-main"); err != nil {
		log.Fatal().Err(err).Msg("display relay failed")
	}

	r := newRouter(manager, cfg.Hub)
	server := &http.Server{
		Addr:              cfg.Hub.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	log.Info().Str("addr", cfg.Hub.HTTPAddr).Bool("shared_port", cfg.Hub.SharedPort).Msg("hub listening")
	log.Fatal().Err(server.ListenAndServe()).Msg("server stopped")
}
