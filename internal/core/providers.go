package core

import (
	"context"
	"io"
)

// Generator is the streaming text-generation backend. Generate returns the
// raw newline-delimited fragment stream; the caller owns closing it.
type Generator interface {
	Generate(ctx context.Context, model, prompt string) (io.ReadCloser, error)
	Models(ctx context.Context) ([]Model, error)
}
