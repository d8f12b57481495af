// Package protocol defines the JSON wire envelope spoken by every relay,
// connector and client in the hub.
package protocol

type MessageType string

const (
	TypeLobby          MessageType = "lobby"
	TypeGame           MessageType = "game"
	TypeChat           MessageType = "chat"
	TypeDisplayGame    MessageType = "displayGame"
	TypeError          MessageType = "error"
	TypeRelayConnector MessageType = "relayConnector"
)

type LobbyAction string

const (
	ActionLogin          LobbyAction = "login"
	ActionCreateNewGame  LobbyAction = "createNewGame"
	ActionJoinGame       LobbyAction = "joinGame"
	ActionStartGame      LobbyAction = "startGame"
	ActionRefreshLobby   LobbyAction = "refreshLobby"
	ActionGameEnded      LobbyAction = "gameEnded"
	ActionCreateLobby    LobbyAction = "createLobby"
	ActionGameInvite     LobbyAction = "gameInvite"
	ActionPostGameResult LobbyAction = "postGameResult"
)

type GameOp string

const (
	OpGameAction GameOp = "gameAction"
	OpEndGame    GameOp = "endGame"
)

type GameVerb string

const (
	VerbSit       GameVerb = "sit"
	VerbLeave     GameVerb = "leave"
	VerbStartHand GameVerb = "startHand"
	VerbBet       GameVerb = "bet"
	VerbCheck     GameVerb = "check"
	VerbFold      GameVerb = "fold"
	VerbCall      GameVerb = "call"
	VerbRaise     GameVerb = "raise"
	VerbAllIn     GameVerb = "allin"
)

// RegisterAction is the one connector-to-relay handshake action.
const RegisterAction = "register"

// Envelope is the outermost wire frame. Outbound broadcasts carry a fresh
// UUID stamp; inbound frames usually carry only the payload and the target
// relay id.
type Envelope struct {
	RelayID string  `json:"relayId,omitempty"`
	UUID    string  `json:"uuid,omitempty"`
	Payload Payload `json:"payload"`
}

// GameAction names the in-game verb nested under a gameAction operation.
type GameAction struct {
	GameAction GameVerb `json:"gameAction"`
	Amount     int64    `json:"amount,omitempty"`
	SeatIndex  int      `json:"seatIndex,omitempty"`
}

type Payload struct {
	Type       MessageType `json:"type"`
	Action     string      `json:"action,omitempty"`
	LobbyID    string      `json:"lobbyId,omitempty"`
	GameID     string      `json:"gameId,omitempty"`
	GameType   string      `json:"gameType,omitempty"`
	PlayerID   string      `json:"playerId,omitempty"`
	PlayerName string      `json:"playerName,omitempty"`
	// TargetID addresses the recipient of a gameInvite.
	TargetID   string      `json:"targetId,omitempty"`
	Text       string      `json:"text,omitempty"`
	GameAction *GameAction `json:"gameAction,omitempty"`
	// Allowed restricts a private game to the listed player ids.
	Allowed []string `json:"allowed,omitempty"`

	Error  string `json:"error,omitempty"`
	Reason string `json:"reason,omitempty"`

	Lobby     *LobbyView  `json:"lobby,omitempty"`
	Game      *GameView   `json:"game,omitempty"`
	Table     *TableView  `json:"table,omitempty"`
	Result    *HandResult `json:"result,omitempty"`
	HoleCards []string    `json:"holeCards,omitempty"`
}

// Response is what a controller hands back to the owning relay. Private
// payloads replace the public one for the matching recipient; the public
// payload is the stripped broadcast copy.
type Response struct {
	Payload   Payload
	Broadcast bool
	Private   map[string]Payload
}

// ErrorPayload builds the standard error frame sent back to a client.
func ErrorPayload(code string) Payload {
	return Payload{Type: TypeError, Error: code}
}

// ErrorResponse wraps ErrorPayload for direct (non-broadcast) delivery.
func ErrorResponse(code string) *Response {
	return &Response{Payload: ErrorPayload(code)}
}
