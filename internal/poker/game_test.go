package poker

import (
	"testing"

	"cardhub/internal/protocol"
)

func newTestGame(t *testing.T, stacks map[string]int64, seats map[string]int) *Game {
	t.Helper()
	g := NewGame("g1", 50, 100)
	for id, stack := range stacks {
		if _, err := g.AddPlayer(id, seats[id], stack); err != nil {
			t.Fatalf("add %s: %v", id, err)
		}
	}
	return g
}

func mustApply(t *testing.T, g *Game, id string, verb protocol.GameVerb, amount int64) (*protocol.HandResult, bool) {
	t.Helper()
	res, over, err := g.Apply(id, verb, amount)
	if err != nil {
		t.Fatalf("apply %s %s: %v", id, verb, err)
	}
	return res, over
}

func checkPotInvariant(t *testing.T, g *Game) {
	t.Helper()
	var sum int64
	for _, c := range g.contrib {
		sum += c
	}
	if g.pot != sum {
		t.Fatalf("pot = %d, contributions sum to %d", g.pot, sum)
	}
}

func TestPotMatchesContributions(t *testing.T) {
	g := newTestGame(t,
		map[string]int64{"p1": 1000, "p2": 1000, "p3": 1000},
		map[string]int{"p1": 0, "p2": 1, "p3": 2})
	if _, _, err := g.StartHand(); err != nil {
		t.Fatalf("start hand: %v", err)
	}
	checkPotInvariant(t, g)

	// Preflop, 3-way: p1 dealer, p2 SB, p3 BB, p1 to act.
	mustApply(t, g, "p1", protocol.VerbCall, 0)
	checkPotInvariant(t, g)
	mustApply(t, g, "p2", protocol.VerbRaise, 300)
	checkPotInvariant(t, g)
	mustApply(t, g, "p3", protocol.VerbCall, 0)
	checkPotInvariant(t, g)
	mustApply(t, g, "p1", protocol.VerbCall, 0)
	checkPotInvariant(t, g)

	if g.street != StreetFlop {
		t.Fatalf("street = %s, want flop", g.street)
	}
	if g.pot != 900 {
		t.Fatalf("pot = %d, want 900", g.pot)
	}
}

func TestCheckRejectedWhenBehind(t *testing.T) {
	g := newTestGame(t,
		map[string]int64{"p1": 1000, "p2": 1000},
		map[string]int{"p1": 0, "p2": 1})
	if _, _, err := g.StartHand(); err != nil {
		t.Fatalf("start hand: %v", err)
	}

	// Heads-up preflop: dealer p1 posted the small blind and owes 50 more.
	potBefore := g.pot
	_, _, err := g.Apply("p1", protocol.VerbCheck, 0)
	if !IsReject(err) {
		t.Fatalf("expected rejection, got %v", err)
	}
	if g.pot != potBefore || g.players["p1"].Bet != 50 {
		t.Fatal("rejected check mutated state")
	}
	if g.CurrentTurn() != "p1" {
		t.Fatalf("turn moved to %s after rejection", g.CurrentTurn())
	}
}

func TestRaiseRejections(t *testing.T) {
	g := newTestGame(t,
		map[string]int64{"p1": 1000, "p2": 1000},
		map[string]int{"p1": 0, "p2": 1})
	if _, _, err := g.StartHand(); err != nil {
		t.Fatalf("start hand: %v", err)
	}

	// Max bet is 100, min increment 100: raising to anything under 200 fails.
	if _, _, err := g.Apply("p1", protocol.VerbRaise, 150); !IsReject(err) {
		t.Fatalf("short increment: expected rejection, got %v", err)
	}
	// Total must exceed the current max bet.
	if _, _, err := g.Apply("p1", protocol.VerbRaise, 100); !IsReject(err) {
		t.Fatalf("non-increasing raise: expected rejection, got %v", err)
	}
	if _, _, err := g.Apply("p1", protocol.VerbRaise, 200); err != nil {
		t.Fatalf("legal raise rejected: %v", err)
	}
	if g.lastBet != 100 {
		t.Fatalf("lastBet = %d, want 100", g.lastBet)
	}
}

func TestHeadsUpTurnOrder(t *testing.T) {
	g := newTestGame(t,
		map[string]int64{"p1": 1000, "p2": 1000},
		map[string]int{"p1": 0, "p2": 1})
	if _, _, err := g.StartHand(); err != nil {
		t.Fatalf("start hand: %v", err)
	}

	// First hand: lowest seat deals; heads-up dealer is the small blind and
	// opens preflop.
	if g.dealerID != "p1" {
		t.Fatalf("dealer = %s, want p1", g.dealerID)
	}
	if got := g.CurrentTurn(); got != "p1" {
		t.Fatalf("preflop first to act = %s, want p1", got)
	}

	mustApply(t, g, "p1", protocol.VerbCall, 0)
	mustApply(t, g, "p2", protocol.VerbCheck, 0)
	if g.street != StreetFlop {
		t.Fatalf("street = %s, want flop", g.street)
	}
	// Postflop the big blind acts first on every street.
	for _, wantStreet := range []Street{StreetFlop, StreetTurn, StreetRiver} {
		if g.street != wantStreet {
			t.Fatalf("street = %s, want %s", g.street, wantStreet)
		}
		if got := g.CurrentTurn(); got != "p2" {
			t.Fatalf("%s first to act = %s, want p2", wantStreet, got)
		}
		mustApply(t, g, "p2", protocol.VerbCheck, 0)
		if wantStreet == StreetRiver {
			_, over := mustApply(t, g, "p1", protocol.VerbCheck, 0)
			if !over {
				t.Fatal("river check/check should resolve the hand")
			}
		} else {
			mustApply(t, g, "p1", protocol.VerbCheck, 0)
		}
	}
}

func TestThreeWayTurnOrder(t *testing.T) {
	g := newTestGame(t,
		map[string]int64{"p1": 1000, "p2": 1000, "p3": 1000},
		map[string]int{"p1": 0, "p2": 1, "p3": 2})
	if _, _, err := g.StartHand(); err != nil {
		t.Fatalf("start hand: %v", err)
	}

	// Dealer p1, SB p2, BB p3: first active after the big blind is p1.
	if !g.players["p2"].IsSmallBlind || !g.players["p3"].IsBigBlind {
		t.Fatalf("blind flags wrong: sb=%v bb=%v", g.players["p2"].IsSmallBlind, g.players["p3"].IsBigBlind)
	}
	if got := g.CurrentTurn(); got != "p1" {
		t.Fatalf("preflop first to act = %s, want p1", got)
	}

	mustApply(t, g, "p1", protocol.VerbCall, 0)
	mustApply(t, g, "p2", protocol.VerbCall, 0)
	mustApply(t, g, "p3", protocol.VerbCheck, 0)

	// Postflop multi-way: first active player in seat order.
	if g.street != StreetFlop {
		t.Fatalf("street = %s, want flop", g.street)
	}
	if got := g.CurrentTurn(); got != "p1" {
		t.Fatalf("flop first to act = %s, want p1", got)
	}
}

func TestDealerRotatesToNextOccupiedSeat(t *testing.T) {
	g := newTestGame(t,
		map[string]int64{"p1": 1000, "p2": 1000, "p3": 1000},
		map[string]int{"p1": 0, "p2": 3, "p3": 7})
	if _, _, err := g.StartHand(); err != nil {
		t.Fatalf("start hand: %v", err)
	}
	if g.dealerID != "p1" {
		t.Fatalf("hand 1 dealer = %s, want p1", g.dealerID)
	}
	mustApply(t, g, "p1", protocol.VerbFold, 0)
	_, over := mustApply(t, g, "p2", protocol.VerbFold, 0)
	if !over {
		t.Fatal("hand should end when one player remains")
	}

	if _, _, err := g.StartHand(); err != nil {
		t.Fatalf("start hand 2: %v", err)
	}
	if g.dealerID != "p2" {
		t.Fatalf("hand 2 dealer = %s, want p2", g.dealerID)
	}
}

func TestFoldOutAwardsPotImmediately(t *testing.T) {
	g := newTestGame(t,
		map[string]int64{"p1": 1000, "p2": 1000, "p3": 1000},
		map[string]int{"p1": 0, "p2": 1, "p3": 2})
	if _, _, err := g.StartHand(); err != nil {
		t.Fatalf("start hand: %v", err)
	}

	mustApply(t, g, "p1", protocol.VerbFold, 0)
	res, over := mustApply(t, g, "p2", protocol.VerbFold, 0)
	if !over {
		t.Fatal("expected hand over after second fold")
	}
	if res.WinnerID != "p3" {
		t.Fatalf("winner = %s, want p3", res.WinnerID)
	}
	// BB posted 100, then won SB's 50 on top of its own blind back.
	if got := g.players["p3"].Stack; got != 1050 {
		t.Fatalf("p3 stack = %d, want 1050", got)
	}
	if g.pot != 0 {
		t.Fatalf("pot = %d after award, want 0", g.pot)
	}
	if g.street == StreetShowdown {
		t.Fatal("fold-out must not reach showdown")
	}
}

// Known simplification: once at most one player can still act, the hand ends
// at once. There is no side-pot run-out for all-ins.
func TestLoneActivePlayerEndsHand(t *testing.T) {
	g := newTestGame(t,
		map[string]int64{"p1": 1000, "p2": 1000},
		map[string]int{"p1": 0, "p2": 1})
	if _, _, err := g.StartHand(); err != nil {
		t.Fatalf("start hand: %v", err)
	}

	res, over := mustApply(t, g, "p1", protocol.VerbAllIn, 0)
	if !over {
		t.Fatal("expected hand over once only one active player remains")
	}
	if res.WinnerID != "p2" {
		t.Fatalf("winner = %s, want p2", res.WinnerID)
	}
	// Blinds 150 plus p1's remaining 950 all land on p2.
	if got := g.players["p2"].Stack; got != 2000 {
		t.Fatalf("p2 stack = %d, want 2000", got)
	}
}

func TestShowdownAcesBeatKings(t *testing.T) {
	g := newTestGame(t,
		map[string]int64{"p1": 1000, "p2": 1000},
		map[string]int{"p1": 0, "p2": 1})
	g.SetHands(map[string][]Card{
		"p1": MustCards("Kd Kh"),
		"p2": MustCards("As Ah"),
	})
	g.SetBoard(MustCards("Ac Kc Qh Js 3d"))

	// Preset board: blinds are posted, then the hand goes straight to showdown.
	res, over, err := g.StartHand()
	if err != nil {
		t.Fatalf("start hand: %v", err)
	}
	if !over {
		t.Fatal("expected immediate showdown with a preset board")
	}
	if res.WinnerID != "p2" {
		t.Fatalf("winner = %s, want p2 (trip aces beat trip kings)", res.WinnerID)
	}
	if res.Rankings[0][0].PlayerID != "p2" {
		t.Fatalf("best ranked = %s, want p2", res.Rankings[0][0].PlayerID)
	}
	if len(res.Revealed) != 2 {
		t.Fatalf("revealed %d hands, want 2", len(res.Revealed))
	}
	// p1 posted the 50 small blind and is otherwise untouched by resolution;
	// p2 collects the whole 150 pot.
	if got := g.players["p1"].Stack; got != 950 {
		t.Fatalf("p1 stack = %d, want 950", got)
	}
	if got := g.players["p2"].Stack; got != 1050 {
		t.Fatalf("p2 stack = %d, want 1050", got)
	}
	if g.pot != 0 {
		t.Fatalf("pot = %d after showdown, want 0", g.pot)
	}
}

func TestMidHandJoinWaitsForNextHand(t *testing.T) {
	g := newTestGame(t,
		map[string]int64{"p1": 1000, "p2": 1000},
		map[string]int{"p1": 0, "p2": 1})
	if _, _, err := g.StartHand(); err != nil {
		t.Fatalf("start hand: %v", err)
	}

	if _, err := g.AddPlayer("p3", 4, 1000); err != nil {
		t.Fatalf("mid-hand add: %v", err)
	}
	for _, id := range g.order {
		if id == "p3" {
			t.Fatal("mid-hand joiner must not enter the running hand's turn order")
		}
	}
	if len(g.View().Players) != 2 {
		t.Fatalf("view shows %d players, want 2", len(g.View().Players))
	}

	mustApply(t, g, "p1", protocol.VerbFold, 0)
	if _, _, err := g.StartHand(); err != nil {
		t.Fatalf("next hand: %v", err)
	}
	if g.indexOf("p3") < 0 {
		t.Fatal("p3 missing from next hand's turn order")
	}
	if cards := g.HoleCards("p3"); len(cards) != 2 {
		t.Fatalf("p3 dealt %d cards, want 2", len(cards))
	}
}

func TestAutoSeatPicksLowestFree(t *testing.T) {
	g := newTestGame(t,
		map[string]int64{"p1": 1000, "p2": 1000},
		map[string]int{"p1": 0, "p2": 3})
	seat, err := g.AddPlayer("p3", -1, 1000)
	if err != nil {
		t.Fatalf("add p3: %v", err)
	}
	if seat != 1 {
		t.Fatalf("assigned seat = %d, want 1", seat)
	}
	if g.players["p3"].SeatIndex != 1 {
		t.Fatalf("p3 seated at %d, want 1", g.players["p3"].SeatIndex)
	}
}

func TestBlindShortStackPostsUnderBlind(t *testing.T) {
	g := newTestGame(t,
		map[string]int64{"p1": 1000, "p2": 30},
		map[string]int{"p1": 0, "p2": 1})
	res, over, err := g.StartHand()
	if err != nil {
		t.Fatalf("start hand: %v", err)
	}
	if g.contrib["p2"] != 30 {
		t.Fatalf("p2 posted %d, want its whole 30 stack", g.contrib["p2"])
	}
	// The short stack is all-in from the blind, leaving one active player.
	if !over || res.WinnerID != "p1" {
		t.Fatalf("expected immediate award to p1, got over=%v res=%+v", over, res)
	}
}

func TestLeaveDuringHandFoldsPlayer(t *testing.T) {
	g := newTestGame(t,
		map[string]int64{"p1": 1000, "p2": 1000, "p3": 1000},
		map[string]int{"p1": 0, "p2": 1, "p3": 2})
	if _, _, err := g.StartHand(); err != nil {
		t.Fatalf("start hand: %v", err)
	}

	// p1 is to act; leaving counts as a fold and passes the turn.
	if _, _, err := g.RemovePlayer("p1"); err != nil {
		t.Fatalf("remove p1: %v", err)
	}
	if !g.players["p1"].HasFolded {
		t.Fatal("leaver not folded")
	}
	if got := g.CurrentTurn(); got != "p2" {
		t.Fatalf("turn = %s, want p2", got)
	}

	mustApply(t, g, "p2", protocol.VerbFold, 0)
	if _, _, err := g.StartHand(); err != nil {
		t.Fatalf("next hand: %v", err)
	}
	if g.indexOf("p1") >= 0 {
		t.Fatal("leaver dealt into the next hand")
	}
	if len(g.order) != 2 {
		t.Fatalf("next hand has %d players, want 2", len(g.order))
	}
}
