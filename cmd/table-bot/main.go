// table-bot is a standalone websocket client that sits down at a game relay
// and plays the same heuristic as the in-process bot. Point WS_URL at the
// game relay endpoint and set GAME_ID.
package main

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"cardhub/internal/bot"
	"cardhub/internal/config"
	"cardhub/internal/logging"
	"cardhub/internal/protocol"
)

func main() {
	logCfg, err := config.LoadLog()
	if err != nil {
		panic(err)
	}
	logging.Init(logCfg)

	cfg, err := config.LoadBot()
	if err != nil {
		log.Fatal().Err(err).Msg("load bot config failed")
	}
	if cfg.GameID == "" {
		log.Fatal().Msg("GAME_ID is required")
	}

	conn, _, err := websocket.DefaultDialer.Dial(cfg.WSURL, nil)
	if err != nil {
		log.Fatal().Err(err).Str("url", cfg.WSURL).Msg("dial failed")
	}
	defer conn.Close()

	send := func(verb protocol.GameVerb, amount int64, seat int) {
		env := protocol.Envelope{Payload: protocol.Payload{
			Type:       protocol.TypeGame,
			Action:     string(protocol.OpGameAction),
			GameID:     cfg.GameID,
			PlayerID:   cfg.PlayerID,
			PlayerName: cfg.Name,
			GameAction: &protocol.GameAction{GameAction: verb, Amount: amount, SeatIndex: seat},
		}}
		if err := conn.WriteJSON(env); err != nil {
			log.Fatal().Err(err).Msg("write failed")
		}
	}

	send(protocol.VerbSit, 0, -1)
	log.Info().Str("game_id", cfg.GameID).Str("player_id", cfg.PlayerID).Msg("seated")

	lastUUID := ""
	for {
		var env protocol.Envelope
		if err := conn.ReadJSON(&env); err != nil {
			log.Info().Err(err).Msg("connection closed")
			return
		}
		if env.Payload.Type == protocol.TypeError {
			log.Warn().Str("error", env.Payload.Error).Str("reason", env.Payload.Reason).Msg("rejected")
			continue
		}
		table := env.Payload.Table
		if table == nil || table.Turn != cfg.PlayerID || env.UUID == "" || env.UUID == lastUUID {
			continue
		}
		lastUUID = env.UUID

		time.Sleep(cfg.Delay)
		verb, amount := bot.Decide(cfg.PlayerID, table)
		log.Info().Str("verb", string(verb)).Int64("amount", amount).Str("street", table.Street).Msg("acting")
		send(verb, amount, 0)
	}
}
