// Package interpret turns the complete backend reply text into a
// (message, command) pair through a three-stage fallback chain. The chain
// never fails: every input degrades to a usable result, and exactly one
// stage's payload is used, never a merge of two attempts.
package interpret

import (
	"encoding/json"
	"strings"

	"github.com/sandevgo/lumibot/internal/core"
)

// Stage tags which fallback stage produced a Result.
type Stage int

const (
	// StageWholePayload: the whole text decoded as {"response", "command"}.
	StageWholePayload Stage = iota
	// StageTrailingObject: a JSON object at the last '{' decoded as the
	// command, with the preceding text as the message.
	StageTrailingObject
	// StagePlainText: no structure found, the trimmed text is the message.
	StagePlainText
)

func (s Stage) String() string {
	switch s {
	case StageWholePayload:
		return "whole-payload"
	case StageTrailingObject:
		return "trailing-object"
	case StagePlainText:
		return "plain-text"
	}
	return "unknown"
}

// Result is the atomic output of exactly one stage.
type Result struct {
	Message string
	Command core.Command
	Stage   Stage
}

// Interpret parses the aggregated reply text. It does not validate the
// command contents; see Validate for the optional strict mode.
func Interpret(text string) Result {
	var whole struct {
		Response *string      `json:"response"`
		Command  core.Command `json:"command"`
	}
	if err := json.Unmarshal([]byte(text), &whole); err == nil &&
		whole.Response != nil && whole.Command != nil {
		return Result{
			Message: *whole.Response,
			Command: whole.Command,
			Stage:   StageWholePayload,
		}
	}

	if idx := strings.LastIndexByte(text, '{'); idx >= 0 {
		var cmd core.Command
		if err := json.Unmarshal([]byte(text[idx:]), &cmd); err == nil {
			return Result{
				Message: strings.TrimSpace(text[:idx]),
				Command: cmd,
				Stage:   StageTrailingObject,
			}
		}
	}

	return Result{
		Message: strings.TrimSpace(text),
		Command: core.Command{},
		Stage:   StagePlainText,
	}
}
