package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/lumibot/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"LUMIBOT_RUNTIME_PATH" envDefault:".lumibot"`
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":5000"`

	// Session lifetime, slid forward on every successful append.
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"1h"`
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"10m"`

	// StrictStream fails the request when the backend stream ends without
	// a done fragment. The lenient default keeps whatever was gathered.
	StrictStream bool `env:"STRICT_STREAM" envDefault:"false"`

	// StrictCommand validates the extracted command schema and drops
	// commands that do not conform. Off by default.
	StrictCommand bool `env:"STRICT_COMMAND" envDefault:"false"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	return c
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "lumibot.db")
}
