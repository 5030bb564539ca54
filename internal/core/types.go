package core

import "time"

const (
	LumiName          = "LumiBot"
	LumiUserAgent     = "LumiBot-Relay/0.1"
	LumiRepositoryURL = "https://github.com/sandevgo/lumibot"
	LumiVersion       = "0.1.0"
)

// Author identifies who produced a Turn.
type Author string

const (
	AuthorUser   Author = "user"
	AuthorBot    Author = "bot"
	AuthorSystem Author = "system"
)

// Turn is one timestamped utterance. Immutable once appended to a transcript.
type Turn struct {
	Timestamp string `json:"timestamp"` // RFC3339
	Author    Author `json:"author"`
	Content   string `json:"content"`
}

// NewTurn stamps a turn with the current UTC time.
func NewTurn(author Author, content string) Turn {
	return Turn{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Author:    author,
		Content:   content,
	}
}

// Transcript is the ordered history of turns for one session.
type Transcript []Turn

// Command is a structured side-effect directive extracted from a reply.
// An empty map means "no command". Keys are not validated by default;
// a well-formed light command carries at least "nom" and "action"
// (one of "on", "off", "color") and optionally "color" as "R-G-B".
type Command map[string]any

// Command field names and the action enum, as the generation backend
// is instructed to emit them.
const (
	CommandKeyName   = "nom"
	CommandKeyAction = "action"
	CommandKeyColor  = "color"

	ActionOn    = "on"
	ActionOff   = "off"
	ActionColor = "color"
)

// Reply is the outcome of one generate call.
type Reply struct {
	Model   string  `json:"model"`
	Message string  `json:"message"`
	Command Command `json:"command"`
}

// Model describes one model known to the generation backend.
type Model struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
