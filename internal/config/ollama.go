package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/lumibot/pkg/log"
)

type OllamaConfig struct {
	BaseURL string        `env:"OLLAMA_BASE_URL" envDefault:"http://ollama-server:11434"`
	APIKey  string        `env:"OLLAMA_API_KEY"`
	Model   string        `env:"OLLAMA_MODEL" envDefault:"llama3.2"`
	Timeout time.Duration `env:"OLLAMA_TIMEOUT" envDefault:"120s"`
}

func NewOllamaConfig(ctx context.Context) *OllamaConfig {
	c := &OllamaConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Ollama config")
	}
	return c
}
