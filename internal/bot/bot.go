// Package bot is an in-process table filler. It attaches to a game relay as
// a loopback connection and plays a fixed heuristic whenever a broadcast
// names it as the turn holder.
package bot

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"cardhub/internal/protocol"
	"cardhub/internal/relay"
)

// Submitter feeds one envelope back into the relay, exactly as an inbound
// client frame would arrive. relay.Relay.Dispatch satisfies this.
type Submitter func(ctx context.Context, senderKey string, env protocol.Envelope)

// Bot implements relay.Conn. Broadcasts reach it through WriteJSON; it never
// reads, so the relay treats it like any other attached client.
type Bot struct {
	PlayerID string

	gameID string
	delay  time.Duration
	submit Submitter
	log    zerolog.Logger

	mu       sync.Mutex
	lastUUID string
	closed   bool
	thinking atomic.Bool
}

func New(playerID, gameID string, delay time.Duration, submit Submitter, log zerolog.Logger) *Bot {
	return &Bot{
		PlayerID: playerID,
		gameID:   gameID,
		delay:    delay,
		submit:   submit,
		log:      log.With().Str("component", "bot").Str("player_id", playerID).Logger(),
	}
}

// Attach seats the bot's loopback connection in the relay's table and wires
// submissions back through the relay's dispatch path.
func Attach(r *relay.Relay, playerID, gameID string, delay time.Duration, log zerolog.Logger) *Bot {
	b := New(playerID, gameID, delay, r.Dispatch, log)
	r.AddSocket(playerID, b)
	return b
}

// WriteJSON receives every frame the relay would send this "client". A frame
// showing the bot on turn, carrying a uuid it has not acted on, triggers one
// delayed action.
func (b *Bot) WriteJSON(v any) error {
	env, ok := v.(protocol.Envelope)
	if !ok {
		return nil
	}
	table := env.Payload.Table
	if table == nil || table.Turn != b.PlayerID {
		return nil
	}
	b.mu.Lock()
	seen := env.UUID == "" || env.UUID == b.lastUUID
	if !seen {
		b.lastUUID = env.UUID
	}
	b.mu.Unlock()
	if seen {
		return nil
	}
	if !b.thinking.CompareAndSwap(false, true) {
		return nil
	}
	go b.act(*table)
	return nil
}

func (b *Bot) act(table protocol.TableView) {
	defer b.thinking.Store(false)
	time.Sleep(b.delay)
	if !b.IsOpen() {
		return
	}
	verb, amount := Decide(b.PlayerID, &table)
	b.log.Debug().Str("verb", string(verb)).Int64("amount", amount).Msg("acting")
	b.submit(context.Background(), b.PlayerID, protocol.Envelope{Payload: protocol.Payload{
		Type:       protocol.TypeGame,
		Action:     string(protocol.OpGameAction),
		GameID:     b.gameID,
		PlayerID:   b.PlayerID,
		GameAction: &protocol.GameAction{GameAction: verb, Amount: amount},
	}})
}

// Decide plays tight and simple: open-raise preflop when nobody has raised
// yet and the stack allows, otherwise call what it can afford, check when
// nothing is owed, fold the rest.
func Decide(playerID string, t *protocol.TableView) (protocol.GameVerb, int64) {
	var me *protocol.PlayerView
	var maxBet int64
	for i := range t.Players {
		p := &t.Players[i]
		if p.Bet > maxBet {
			maxBet = p.Bet
		}
		if p.PlayerID == playerID {
			me = p
		}
	}
	if me == nil {
		return protocol.VerbFold, 0
	}
	deficit := maxBet - me.Bet
	if t.Street == "preflop" && maxBet == t.LastBet && me.Stack+me.Bet >= 3*t.LastBet {
		return protocol.VerbRaise, 3 * t.LastBet
	}
	if deficit == 0 {
		return protocol.VerbCheck, 0
	}
	if deficit <= me.Stack {
		return protocol.VerbCall, 0
	}
	return protocol.VerbFold, 0
}

func (b *Bot) Close() error {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	return nil
}

func (b *Bot) IsOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.closed
}
