// Package poker implements the multi-street betting state machine behind a
// hub poker game: dealer rotation, blinds, turn order, street advancement and
// showdown resolution. One collapsed pot; no side pots for multiple all-ins.
package poker

import (
	"errors"
	"fmt"
	"sort"

	"cardhub/internal/protocol"
)

type Street string

const (
	StreetPreflop  Street = "preflop"
	StreetFlop     Street = "flop"
	StreetTurn     Street = "turn"
	StreetRiver    Street = "river"
	StreetShowdown Street = "showdown"
)

// MaxSeats bounds the number of seated players per table.
const MaxSeats = 9

var ErrNotEnoughPlayers = errors.New("not_enough_players")
var ErrHandInProgress = errors.New("hand_in_progress")

// RejectError marks an illegal action: nothing changed, and the reason is
// reported to the acting client only.
type RejectError struct {
	Reason string
}

func (e *RejectError) Error() string { return e.Reason }

func reject(reason string) error { return &RejectError{Reason: reason} }

// IsReject distinguishes a turn/betting violation from an internal failure.
func IsReject(err error) bool {
	var re *RejectError
	return errors.As(err, &re)
}

type Game struct {
	id      string
	players map[string]*Player
	// waiting holds mid-hand joiners until the next hand starts.
	waiting map[string]*Player
	leaving map[string]bool

	order      []string
	turnIdx    int
	pot        int64
	contrib    map[string]int64
	street     Street
	community  []Card
	dealerID   string
	dealerSeat int
	smallBlind int64
	bigBlind   int64
	// lastBet is the minimum legal raise increment this street.
	lastBet int64
	deck    *Deck
	inHand  bool

	presetHands map[string][]Card
	presetBoard []Card
}

func NewGame(id string, smallBlind, bigBlind int64) *Game {
	return &Game{
		id:         id,
		players:    map[string]*Player{},
		waiting:    map[string]*Player{},
		leaving:    map[string]bool{},
		contrib:    map[string]int64{},
		street:     StreetPreflop,
		dealerSeat: -1,
		smallBlind: smallBlind,
		bigBlind:   bigBlind,
		lastBet:    bigBlind,
	}
}

func (g *Game) MaxPlayers() int { return MaxSeats }

// AddPlayer seats a player and returns the seat taken. Joining while a hand
// is running parks the player in the waiting set; they are dealt in on the
// next StartHand. seat < 0 picks the lowest free seat.
func (g *Game) AddPlayer(id string, seat int, stack int64) (int, error) {
	if _, ok := g.players[id]; ok {
		return -1, reject("already_seated")
	}
	if _, ok := g.waiting[id]; ok {
		return -1, reject("already_seated")
	}
	if len(g.players)+len(g.waiting) >= MaxSeats {
		return -1, reject("table_full")
	}
	if seat < 0 {
		seat = g.lowestFreeSeat()
	} else if seat >= MaxSeats || g.seatTaken(seat) {
		return -1, reject("seat_taken")
	}
	p := &Player{ID: id, SeatIndex: seat, Stack: stack}
	if g.inHand {
		g.waiting[id] = p
		return seat, nil
	}
	g.players[id] = p
	return seat, nil
}

func (g *Game) seatTaken(seat int) bool {
	for _, p := range g.players {
		if p.SeatIndex == seat {
			return true
		}
	}
	for _, p := range g.waiting {
		if p.SeatIndex == seat {
			return true
		}
	}
	return false
}

func (g *Game) lowestFreeSeat() int {
	for seat := 0; seat < MaxSeats; seat++ {
		if !g.seatTaken(seat) {
			return seat
		}
	}
	return -1
}

// RemovePlayer takes a player out of the game. Mid-hand this folds them first,
// which can finish the hand; the seat itself is released once the hand is over.
func (g *Game) RemovePlayer(id string) (*protocol.HandResult, bool, error) {
	if _, ok := g.waiting[id]; ok {
		delete(g.waiting, id)
		return nil, false, nil
	}
	p, ok := g.players[id]
	if !ok {
		return nil, false, reject("unknown_player")
	}
	if !g.inHand {
		delete(g.players, id)
		return nil, false, nil
	}
	g.leaving[id] = true
	if p.HasFolded {
		return nil, false, nil
	}
	wasTurn := g.order[g.turnIdx] == id
	p.HasFolded = true
	actives := g.activeIdxs()
	if len(actives) <= 1 {
		res, over := g.finishEarly(actives)
		return res, over, nil
	}
	if g.roundComplete() {
		return g.advanceStreet()
	}
	if wasTurn {
		g.turnIdx = g.nextActiveIdx(g.turnIdx)
	}
	return nil, false, nil
}

// SetHands injects fixed hole cards for the next hand. Test harness hook.
func (g *Game) SetHands(hands map[string][]Card) { g.presetHands = hands }

// SetBoard injects a fixed five-card board; the next StartHand posts blinds
// and goes straight to showdown. Test harness hook.
func (g *Game) SetBoard(board []Card) { g.presetBoard = board }

// StartHand begins a new generation: waiting players are merged in, per-hand
// state is reset, the button rotates, blinds are posted and cards dealt.
func (g *Game) StartHand() (*protocol.HandResult, bool, error) {
	if g.inHand {
		return nil, false, ErrHandInProgress
	}
	for id, p := range g.waiting {
		g.players[id] = p
	}
	g.waiting = map[string]*Player{}
	for id := range g.leaving {
		delete(g.players, id)
	}
	g.leaving = map[string]bool{}
	if len(g.players) < 2 {
		return nil, false, ErrNotEnoughPlayers
	}

	for _, p := range g.players {
		p.resetForHand()
	}
	g.order = g.seatOrder()
	g.pot = 0
	g.contrib = map[string]int64{}
	g.community = nil
	g.street = StreetPreflop
	g.lastBet = g.bigBlind

	dealer := g.players[g.nextSeatAfter(g.dealerSeat)]
	dealer.IsDealer = true
	g.dealerID = dealer.ID
	g.dealerSeat = dealer.SeatIndex

	var sb, bb *Player
	if len(g.order) == 2 {
		sb = dealer
		bb = g.players[g.nextSeatAfter(dealer.SeatIndex)]
	} else {
		sb = g.players[g.nextSeatAfter(dealer.SeatIndex)]
		bb = g.players[g.nextSeatAfter(sb.SeatIndex)]
	}
	sb.IsSmallBlind = true
	bb.IsBigBlind = true

	g.deck = NewDeck()
	g.deck.Shuffle()
	for _, id := range g.order {
		p := g.players[id]
		if preset, ok := g.presetHands[id]; ok {
			p.Hand = preset
			continue
		}
		p.Hand = []Card{g.deck.Deal(), g.deck.Deal()}
	}

	// A short stack posts an under-blind rather than going negative.
	g.commit(sb, min64(g.smallBlind, sb.Stack))
	g.commit(bb, min64(g.bigBlind, bb.Stack))

	g.inHand = true

	if g.presetBoard != nil {
		g.community = g.presetBoard
		g.street = StreetShowdown
		return g.resolveShowdown()
	}

	// Heads-up preflop the small blind (dealer) opens; otherwise the first
	// active player after the big blind does.
	var first string
	if len(g.order) == 2 {
		first = sb.ID
	} else {
		first = g.nextSeatAfter(bb.SeatIndex)
	}
	g.turnIdx = g.indexOf(first)
	if !g.players[first].active() {
		actives := g.activeIdxs()
		if len(actives) <= 1 {
			res, over := g.finishEarly(actives)
			return res, over, nil
		}
		g.turnIdx = g.nextActiveIdx(g.turnIdx)
	}
	return nil, false, nil
}

// Apply runs one betting action for the player whose turn it is. Illegal
// actions return a RejectError and leave the game untouched.
func (g *Game) Apply(id string, verb protocol.GameVerb, amount int64) (*protocol.HandResult, bool, error) {
	if !g.inHand {
		return nil, false, reject("no_hand_in_progress")
	}
	p, ok := g.players[id]
	if !ok {
		return nil, false, reject("unknown_player")
	}
	if g.order[g.turnIdx] != id {
		return nil, false, reject("not_your_turn")
	}
	if !p.active() {
		return nil, false, reject("not_active")
	}

	maxBet := g.maxBet()
	switch verb {
	case protocol.VerbFold:
		p.HasFolded = true
	case protocol.VerbCheck:
		if p.Bet != maxBet {
			return nil, false, reject("check_not_allowed")
		}
	case protocol.VerbCall:
		if maxBet <= p.Bet {
			return nil, false, reject("nothing_to_call")
		}
		g.commit(p, min64(maxBet-p.Bet, p.Stack))
	case protocol.VerbBet:
		if maxBet != 0 {
			return nil, false, reject("bet_not_allowed")
		}
		if amount <= 0 || amount > p.Stack {
			return nil, false, reject("bad_bet_amount")
		}
		g.commit(p, amount)
		g.lastBet = amount
	case protocol.VerbRaise:
		if maxBet == 0 {
			return nil, false, reject("raise_not_allowed")
		}
		if amount <= maxBet || amount-maxBet < g.lastBet {
			return nil, false, reject("raise_too_small")
		}
		if amount-p.Bet > p.Stack {
			return nil, false, reject("insufficient_stack")
		}
		g.commit(p, amount-p.Bet)
		g.lastBet = amount - maxBet
	case protocol.VerbAllIn:
		if p.Stack <= 0 {
			return nil, false, reject("no_chips")
		}
		g.commit(p, p.Stack)
	default:
		return nil, false, reject("unknown_action")
	}
	p.HasActed = true

	actorIdx := g.turnIdx
	actives := g.activeIdxs()
	if len(actives) <= 1 {
		res, over := g.finishEarly(actives)
		return res, over, nil
	}
	if g.roundComplete() {
		return g.advanceStreet()
	}
	g.turnIdx = g.nextActiveIdx(actorIdx)
	return nil, false, nil
}

// CurrentTurn returns the id of the player to act, or "" outside a hand.
func (g *Game) CurrentTurn() string {
	if !g.inHand || len(g.order) == 0 {
		return ""
	}
	return g.order[g.turnIdx]
}

func (g *Game) HoleCards(id string) []string {
	if p, ok := g.players[id]; ok {
		return cardStrings(p.Hand)
	}
	return nil
}

// View builds the public snapshot: no hole cards.
func (g *Game) View() *protocol.TableView {
	order := g.order
	if !g.inHand {
		order = g.seatOrder()
	}
	views := make([]protocol.PlayerView, 0, len(order))
	for _, id := range order {
		p := g.players[id]
		views = append(views, protocol.PlayerView{
			PlayerID:     p.ID,
			SeatIndex:    p.SeatIndex,
			Stack:        p.Stack,
			Bet:          p.Bet,
			HasFolded:    p.HasFolded,
			IsAllIn:      p.IsAllIn,
			IsDealer:     p.IsDealer,
			IsSmallBlind: p.IsSmallBlind,
			IsBigBlind:   p.IsBigBlind,
		})
	}
	return &protocol.TableView{
		GameID:    g.id,
		Turn:      g.CurrentTurn(),
		Pot:       g.pot,
		Street:    string(g.street),
		Community: cardStrings(g.community),
		LastBet:   g.lastBet,
		DealerID:  g.dealerID,
		Players:   views,
	}
}

func (g *Game) commit(p *Player, amount int64) {
	p.Stack -= amount
	p.Bet += amount
	g.pot += amount
	g.contrib[p.ID] += amount
	if p.Stack == 0 {
		p.IsAllIn = true
	}
}

func (g *Game) maxBet() int64 {
	var max int64
	for _, id := range g.order {
		if b := g.players[id].Bet; b > max {
			max = b
		}
	}
	return max
}

func (g *Game) roundComplete() bool {
	ref := int64(-1)
	for _, id := range g.order {
		p := g.players[id]
		if !p.active() {
			continue
		}
		if !p.HasActed {
			return false
		}
		if ref < 0 {
			ref = p.Bet
		} else if p.Bet != ref {
			return false
		}
	}
	return true
}

func (g *Game) advanceStreet() (*protocol.HandResult, bool, error) {
	for _, id := range g.order {
		p := g.players[id]
		p.Bet = 0
		p.HasActed = false
	}
	g.lastBet = g.bigBlind

	switch g.street {
	case StreetPreflop:
		g.community = append(g.community, g.deck.Deal(), g.deck.Deal(), g.deck.Deal())
		g.street = StreetFlop
	case StreetFlop:
		g.community = append(g.community, g.deck.Deal())
		g.street = StreetTurn
	case StreetTurn:
		g.community = append(g.community, g.deck.Deal())
		g.street = StreetRiver
	case StreetRiver:
		g.street = StreetShowdown
		return g.resolveShowdown()
	}

	// Postflop heads-up the big blind opens; multi-way the first active
	// player in seat order does.
	if len(g.order) == 2 {
		for i, id := range g.order {
			if g.players[id].IsBigBlind {
				g.turnIdx = i
			}
		}
	} else {
		g.turnIdx = g.nextActiveIdx(len(g.order) - 1)
	}
	return nil, false, nil
}

// finishEarly ends the hand when at most one player can still act: the lone
// active player takes the pot, or nobody does when everyone left standing is
// all-in. Known simplification, kept deliberately.
func (g *Game) finishEarly(actives []int) (*protocol.HandResult, bool) {
	result := &protocol.HandResult{Amount: g.pot}
	if len(actives) == 1 {
		winner := g.players[g.order[actives[0]]]
		winner.Stack += g.pot
		result.WinnerID = winner.ID
	}
	g.pot = 0
	g.inHand = false
	return result, true
}

func (g *Game) resolveShowdown() (*protocol.HandResult, bool, error) {
	var hands []HandInput
	var revealed []protocol.RevealedHand
	for _, id := range g.order {
		p := g.players[id]
		if p.HasFolded {
			continue
		}
		hands = append(hands, HandInput{PlayerID: id, Cards: p.Hand})
		revealed = append(revealed, protocol.RevealedHand{PlayerID: id, Cards: cardStrings(p.Hand)})
	}
	groups, err := OrderHands(hands, g.community)
	if err != nil {
		return nil, false, fmt.Errorf("order hands: %w", err)
	}

	result := &protocol.HandResult{Amount: g.pot, Revealed: revealed}
	for _, group := range groups {
		ranked := make([]protocol.RankedHand, 0, len(group))
		for _, r := range group {
			ranked = append(ranked, protocol.RankedHand{PlayerID: r.PlayerID, Description: r.Description, Ranking: r.Ranking})
		}
		result.Rankings = append(result.Rankings, ranked)
	}

	// The whole pot goes to the single best-ranked player.
	winner := g.players[groups[0][0].PlayerID]
	winner.Stack += g.pot
	result.WinnerID = winner.ID
	g.pot = 0
	g.inHand = false
	return result, true, nil
}

func (g *Game) seatOrder() []string {
	ids := make([]string, 0, len(g.players))
	for id := range g.players {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return g.players[ids[i]].SeatIndex < g.players[ids[j]].SeatIndex
	})
	return ids
}

// nextSeatAfter finds the player at the next occupied seat clockwise from
// seat, wrapping to the lowest seat.
func (g *Game) nextSeatAfter(seat int) string {
	next, wrap := "", ""
	nextSeat, wrapSeat := MaxSeats, MaxSeats
	for _, id := range g.order {
		s := g.players[id].SeatIndex
		if s > seat && s < nextSeat {
			next, nextSeat = id, s
		}
		if s < wrapSeat {
			wrap, wrapSeat = id, s
		}
	}
	if next != "" {
		return next
	}
	return wrap
}

func (g *Game) activeIdxs() []int {
	var out []int
	for i, id := range g.order {
		if g.players[id].active() {
			out = append(out, i)
		}
	}
	return out
}

// nextActiveIdx scans cyclically after from; callers guarantee at least one
// active player exists.
func (g *Game) nextActiveIdx(from int) int {
	for i := 1; i <= len(g.order); i++ {
		idx := (from + i) % len(g.order)
		if g.players[g.order[idx]].active() {
			return idx
		}
	}
	return from
}

func (g *Game) indexOf(id string) int {
	for i, oid := range g.order {
		if oid == id {
			return i
		}
	}
	return -1
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
