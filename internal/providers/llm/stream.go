package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/sandevgo/lumibot/internal/core"
	"github.com/sandevgo/lumibot/pkg/log"
)

// fragment is one incremental piece of a streamed generation reply.
type fragment struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

const maxFragmentSize = 1024 * 1024

// Aggregate reduces a newline-delimited fragment stream to the complete
// response text. Fragments that fail to decode are skipped. Consumption
// stops at the first done fragment; anything after it is ignored.
//
// When the stream ends without a done fragment, lenient mode returns the
// partial text while strict mode fails the whole call.
func Aggregate(ctx context.Context, r io.Reader, strict bool) (string, error) {
	logger := log.FromCtx(ctx)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxFragmentSize)

	var full strings.Builder
	done := false

	for sc.Scan() {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}

		var f fragment
		if err := json.Unmarshal(line, &f); err != nil {
			logger.Debug().Err(err).Msg("skipping malformed fragment")
			continue
		}

		full.WriteString(f.Response)
		if f.Done {
			done = true
			break
		}
	}

	if err := sc.Err(); err != nil {
		if strict {
			return "", fmt.Errorf("%w: read stream: %v", core.ErrBackendUnavailable, err)
		}
		logger.Warn().Err(err).Msg("stream read error, keeping partial text")
	}

	if !done {
		if strict {
			return "", fmt.Errorf("%w: stream ended before completion", core.ErrBackendUnavailable)
		}
		logger.Debug().Msg("stream ended without done fragment")
	}

	return full.String(), nil
}
