package config

import (
	"slices"

	"github.com/caarlos0/env/v11"
)

// Rules holds the permission tables consumed by the controller pipelines:
// which actions a relay accepts and the capacity caps it enforces.
type Rules struct {
	MaxLobbies        int `env:"MAX_LOBBIES" envDefault:"4"`
	MaxPlayersPerGame int `env:"MAX_PLAYERS_PER_GAME" envDefault:"9"`

	AllowedLobbyActions []string `env:"ALLOWED_LOBBY_ACTIONS" envSeparator:"," envDefault:"login,createNewGame,joinGame,startGame,refreshLobby,gameEnded,createLobby,gameInvite,postGameResult"`
	AllowedGameVerbs    []string `env:"ALLOWED_GAME_VERBS" envSeparator:"," envDefault:"sit,leave,startHand,bet,check,fold,call,raise,allin"`
}

func LoadRules() (Rules, error) {
	var r Rules
	err := env.Parse(&r)
	return r, err
}

func (r Rules) LobbyActionAllowed(action string) bool {
	return slices.Contains(r.AllowedLobbyActions, action)
}

func (r Rules) GameVerbAllowed(verb string) bool {
	return slices.Contains(r.AllowedGameVerbs, verb)
}
