package protocol

// Client-visible state snapshots. Built by the owning controller; relays
// never reach into engine state directly.

type LobbyView struct {
	LobbyID string       `json:"lobbyId"`
	Members []MemberView `json:"members"`
	Games   []GameView   `json:"games"`
}

type MemberView struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	InLobby    bool   `json:"inLobby"`
}

type GameView struct {
	GameID   string              `json:"gameId"`
	GameType string              `json:"gameType"`
	LobbyID  string              `json:"lobbyId,omitempty"`
	Status   string              `json:"status"`
	Players  map[string]SeatView `json:"players"`
}

type SeatView struct {
	Joined    bool `json:"joined"`
	Ready     bool `json:"ready"`
	SeatIndex int  `json:"seatIndex"`
}

// TableView is the per-broadcast snapshot of a running hand. It carries no
// hole cards; those ride Payload.HoleCards on the private per-recipient copy.
type TableView struct {
	GameID    string       `json:"gameId,omitempty"`
	Turn      string       `json:"turn"`
	Pot       int64        `json:"pot"`
	Street    string       `json:"street"`
	Community []string     `json:"communityCards"`
	LastBet   int64        `json:"lastBetAmount"`
	DealerID  string       `json:"dealerId,omitempty"`
	Players   []PlayerView `json:"players"`
}

type PlayerView struct {
	PlayerID     string `json:"playerId"`
	SeatIndex    int    `json:"seatIndex"`
	Stack        int64  `json:"stack"`
	Bet          int64  `json:"bet"`
	HasFolded    bool   `json:"hasFolded"`
	IsAllIn      bool   `json:"isAllIn"`
	IsDealer     bool   `json:"isDealer"`
	IsSmallBlind bool   `json:"isSmallBlind"`
	IsBigBlind   bool   `json:"isBigBlind"`
}

// HandResult reports the end of a hand: an early win when everyone else
// folded, or a full showdown with the ranked list and revealed hands.
type HandResult struct {
	WinnerID string         `json:"winnerId,omitempty"`
	Amount   int64          `json:"amount"`
	Rankings [][]RankedHand `json:"rankings,omitempty"`
	Revealed []RevealedHand `json:"revealed,omitempty"`
}

type RankedHand struct {
	PlayerID    string `json:"playerId"`
	Description string `json:"description"`
	Ranking     int    `json:"ranking"`
}

type RevealedHand struct {
	PlayerID string   `json:"playerId"`
	Cards    []string `json:"cards"`
}
