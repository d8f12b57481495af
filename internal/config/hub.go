package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// HubConfig drives the relay topology: which lobbies exist at bootstrap, how
// relays listen (one shared port routed by relay id, or one port each), and
// how connectors between relays retry.
type HubConfig struct {
	HTTPAddr   string   `env:"HTTP_ADDR" envDefault:":8080"`
	PublicHost string   `env:"PUBLIC_HOST" envDefault:"127.0.0.1"`
	LobbyIDs   []string `env:"LOBBY_IDS" envDefault:"lobby-main"`

	SharedPort     bool `env:"SHARED_PORT" envDefault:"true"`
	RelayPortStart int  `env:"RELAY_PORT_START" envDefault:"9100"`

	ConnectAttempts int           `env:"CONNECT_ATTEMPTS" envDefault:"5"`
	ConnectInterval time.Duration `env:"CONNECT_INTERVAL" envDefault:"2s"`

	SmallBlind   int64 `env:"SMALL_BLIND" envDefault:"50"`
	BigBlind     int64 `env:"BIG_BLIND" envDefault:"100"`
	DefaultStack int64 `env:"DEFAULT_STACK" envDefault:"10000"`

	BotEnabled bool          `env:"BOT_ENABLED" envDefault:"false"`
	BotDelay   time.Duration `env:"BOT_DELAY" envDefault:"1500ms"`
}

func LoadHub() (HubConfig, error) {
	var cfg HubConfig
	err := env.Parse(&cfg)
	return cfg, err
}
