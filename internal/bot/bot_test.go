package bot

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"cardhub/internal/protocol"
)

func turnFrame(uuid string, table protocol.TableView) protocol.Envelope {
	return protocol.Envelope{UUID: uuid, Payload: protocol.Payload{Type: protocol.TypeGame, Table: &table}}
}

func botTable(street string, lastBet, myStack, myBet, otherBet int64) protocol.TableView {
	return protocol.TableView{
		Turn:    "bot-1",
		Street:  street,
		LastBet: lastBet,
		Players: []protocol.PlayerView{
			{PlayerID: "bot-1", Stack: myStack, Bet: myBet},
			{PlayerID: "p2", Stack: 1000, Bet: otherBet},
		},
	}
}

func newTestBot(t *testing.T) (*Bot, chan protocol.Envelope) {
	t.Helper()
	acted := make(chan protocol.Envelope, 4)
	submit := func(ctx context.Context, senderKey string, env protocol.Envelope) {
		acted <- env
	}
	return New("bot-1", "g1", time.Millisecond, submit, zerolog.Nop()), acted
}

func waitAction(t *testing.T, acted chan protocol.Envelope) protocol.Envelope {
	t.Helper()
	select {
	case env := <-acted:
		return env
	case <-time.After(2 * time.Second):
		t.Fatal("bot never acted")
		return protocol.Envelope{}
	}
}

func TestBotActsOnItsTurn(t *testing.T) {
	b, acted := newTestBot(t)
	_ = b.WriteJSON(turnFrame("u1", botTable("flop", 100, 900, 0, 0)))
	env := waitAction(t, acted)
	if env.Payload.PlayerID != "bot-1" || env.Payload.GameID != "g1" {
		t.Fatalf("env = %+v", env.Payload)
	}
	if env.Payload.GameAction.GameAction != protocol.VerbCheck {
		t.Fatalf("verb = %s, want check", env.Payload.GameAction.GameAction)
	}
}

func TestBotIgnoresRepeatedUUID(t *testing.T) {
	b, acted := newTestBot(t)
	table := botTable("flop", 100, 900, 0, 0)
	_ = b.WriteJSON(turnFrame("u1", table))
	waitAction(t, acted)
	_ = b.WriteJSON(turnFrame("u1", table))
	select {
	case <-acted:
		t.Fatal("bot acted twice on one uuid")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBotIgnoresOthersTurn(t *testing.T) {
	b, acted := newTestBot(t)
	table := botTable("flop", 100, 900, 0, 0)
	table.Turn = "p2"
	_ = b.WriteJSON(turnFrame("u1", table))
	select {
	case <-acted:
		t.Fatal("bot acted out of turn")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBotClosedStaysQuiet(t *testing.T) {
	b, acted := newTestBot(t)
	_ = b.Close()
	_ = b.WriteJSON(turnFrame("u1", botTable("flop", 100, 900, 0, 0)))
	select {
	case <-acted:
		t.Fatal("closed bot acted")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDecideHeuristic(t *testing.T) {
	cases := []struct {
		name  string
		table protocol.TableView
		verb  protocol.GameVerb
		amt   int64
	}{
		{"preflop open raise", botTable("preflop", 100, 950, 50, 100), protocol.VerbRaise, 300},
		{"call a raise", botTable("preflop", 300, 950, 50, 400), protocol.VerbCall, 0},
		{"check when even", botTable("flop", 100, 900, 0, 0), protocol.VerbCheck, 0},
		{"fold when priced out", botTable("turn", 100, 50, 0, 500), protocol.VerbFold, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			verb, amt := Decide("bot-1", &tc.table)
			if verb != tc.verb || amt != tc.amt {
				t.Fatalf("decide = %s/%d, want %s/%d", verb, amt, tc.verb, tc.amt)
			}
		})
	}
}
