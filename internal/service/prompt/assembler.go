// Package prompt renders a transcript plus the new user utterance into the
// single text prompt sent to the generation backend.
package prompt

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pkoukk/tiktoken-go"
	"github.com/sandevgo/lumibot/internal/core"
)

var authorLabels = map[core.Author]string{
	core.AuthorUser:   "user",
	core.AuthorBot:    "assistant",
	core.AuthorSystem: "system",
}

func label(a core.Author) string {
	if l, ok := authorLabels[a]; ok {
		return l
	}
	// Unknown authors render verbatim.
	return string(a)
}

// Assemble renders each historical turn as one "[timestamp] label: content"
// line and closes with the new user content marked as the current turn.
// An empty transcript gets the system instruction prepended. No window
// limiting is applied.
func Assemble(transcript core.Transcript, userContent string) string {
	var b strings.Builder

	if len(transcript) == 0 {
		transcript = core.Transcript{core.NewTurn(core.AuthorSystem, SystemInstruction)}
	}

	for _, t := range transcript {
		fmt.Fprintf(&b, "[%s] %s: %s\n", t.Timestamp, label(t.Author), t.Content)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	fmt.Fprintf(&b, "[%s] %s (message courant): %s", now, label(core.AuthorUser), userContent)

	return b.String()
}

var (
	tokenizerOnce sync.Once
	tokenizer     *tiktoken.Tiktoken
)

// EstimateTokens gives a rough size of the assembled prompt for logging.
// Returns -1 when the encoding cannot be loaded; never fatal.
func EstimateTokens(text string) int {
	tokenizerOnce.Do(func() {
		tk, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return
		}
		tokenizer = tk
	})
	if tokenizer == nil {
		return -1
	}
	return len(tokenizer.Encode(text, nil, nil))
}
