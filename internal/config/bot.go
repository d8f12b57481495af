package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// BotConfig configures the standalone cmd/table-bot client. WS_URL points at
// the game relay the bot should sit down on.
type BotConfig struct {
	WSURL    string        `env:"WS_URL" envDefault:"ws://localhost:8080/ws/lobby-main"`
	PlayerID string        `env:"PLAYER_ID" envDefault:"bot"`
	Name     string        `env:"PLAYER_NAME" envDefault:"Table Bot"`
	LobbyID  string        `env:"LOBBY_ID" envDefault:"lobby-main"`
	GameID   string        `env:"GAME_ID"`
	Delay    time.Duration `env:"BOT_DELAY" envDefault:"1500ms"`
}

func LoadBot() (BotConfig, error) {
	var cfg BotConfig
	err := env.Parse(&cfg)
	return cfg, err
}
