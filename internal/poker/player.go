package poker

// Player is one seat at the table. Stack and SeatIndex persist across hands;
// everything else is reset when a new hand starts.
type Player struct {
	ID           string
	SeatIndex    int
	Stack        int64
	Bet          int64
	HasFolded    bool
	IsAllIn      bool
	IsDealer     bool
	IsSmallBlind bool
	IsBigBlind   bool
	HasActed     bool
	Hand         []Card
}

func (p *Player) resetForHand() {
	p.Bet = 0
	p.HasFolded = false
	p.IsAllIn = false
	p.IsDealer = false
	p.IsSmallBlind = false
	p.IsBigBlind = false
	p.HasActed = false
	p.Hand = nil
}

// active reports whether the player can still act this hand.
func (p *Player) active() bool {
	return !p.HasFolded && !p.IsAllIn
}
