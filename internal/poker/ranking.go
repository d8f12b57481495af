package poker

import (
	"fmt"
	"sort"

	handrank "github.com/paulhankin/poker"
)

// HandInput is one contender at showdown: two hole cards plus the shared board.
type HandInput struct {
	PlayerID string
	Cards    []Card
}

type Ranked struct {
	PlayerID    string
	Description string
	Ranking     int
}

// OrderHands ranks every hand against the five-card board and returns groups
// of tied hands, strongest group first. Ranking is 1-based per group.
func OrderHands(hands []HandInput, board []Card) ([][]Ranked, error) {
	if len(board) != 5 {
		return nil, fmt.Errorf("board has %d cards, need 5", len(board))
	}
	type scored struct {
		id    string
		score int16
		desc  string
	}
	entries := make([]scored, 0, len(hands))
	for _, h := range hands {
		if len(h.Cards) != 2 {
			return nil, fmt.Errorf("hand for %s has %d cards, need 2", h.PlayerID, len(h.Cards))
		}
		var final [7]handrank.Card
		for i, c := range board {
			ec, err := evalCard(c)
			if err != nil {
				return nil, err
			}
			final[i] = ec
		}
		for i, c := range h.Cards {
			ec, err := evalCard(c)
			if err != nil {
				return nil, err
			}
			final[5+i] = ec
		}
		score := handrank.Eval7(&final)
		desc, err := handrank.Describe(final[:])
		if err != nil {
			return nil, fmt.Errorf("describe hand for %s: %w", h.PlayerID, err)
		}
		entries = append(entries, scored{id: h.PlayerID, score: score, desc: desc})
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].score > entries[j].score })

	var groups [][]Ranked
	var prev int16
	for i, e := range entries {
		if i > 0 && e.score == prev {
			last := len(groups) - 1
			groups[last] = append(groups[last], Ranked{PlayerID: e.id, Description: e.desc, Ranking: len(groups)})
		} else {
			groups = append(groups, []Ranked{{PlayerID: e.id, Description: e.desc, Ranking: len(groups) + 1}})
		}
		prev = e.score
	}
	return groups, nil
}

// evalCard converts to the evaluator's card model, which counts aces low in
// the rank encoding and orders suits club-first.
func evalCard(c Card) (handrank.Card, error) {
	r := int(c.Rank)
	if c.Rank == Ace {
		r = 1
	}
	var s int
	switch c.Suit {
	case Clubs:
		s = 0
	case Diamonds:
		s = 1
	case Hearts:
		s = 2
	case Spades:
		s = 3
	}
	return handrank.MakeCard(handrank.Suit(s), handrank.Rank(r))
}
