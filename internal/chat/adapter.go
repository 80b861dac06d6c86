package chat

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Message is the normalized shape of one inbound chat line.
type Message struct {
	Text string
	User string
}

// rawShapes is the closed set of payload shapes the platform is known to
// deliver. Anything else is rejected here rather than duck-typed downstream.
type rawShape struct {
	Text     string `json:"text"`
	Content  string `json:"content"`
	Message  string `json:"message"`
	User     string `json:"user"`
	Username string `json:"username"`
	From     string `json:"from"`
}

// Normalize maps a raw chat payload onto a Message. Recognized shapes:
// {text,user}, {content,username}, {message,user}, {text,from}, and a bare
// JSON string attributed to "System". Returns false for anything else.
func Normalize(raw json.RawMessage) (Message, bool) {
	var bare string
	if err := json.Unmarshal(raw, &bare); err == nil {
		if bare == "" {
			return Message{}, false
		}
		return Message{Text: bare, User: "System"}, true
	}

	var shape rawShape
	if err := json.Unmarshal(raw, &shape); err != nil {
		return Message{}, false
	}

	switch {
	case shape.Text != "" && shape.User != "":
		return Message{Text: shape.Text, User: shape.User}, true
	case shape.Content != "" && shape.Username != "":
		return Message{Text: shape.Content, User: shape.Username}, true
	case shape.Message != "" && shape.User != "":
		return Message{Text: shape.Message, User: shape.User}, true
	case shape.Text != "" && shape.From != "":
		return Message{Text: shape.Text, User: shape.From}, true
	default:
		return Message{}, false
	}
}

type InputKind int

const (
	InputNone InputKind = iota
	InputJoin
	InputStart
	InputRestart
	InputVote
	InputWord
)

// Input is a chat message interpreted as game intent. The engine decides
// what a vote means (streamer cheer vs word index) based on phase; the
// adapter only classifies the text.
type Input struct {
	Kind   InputKind
	Name   string // InputJoin
	Choice int    // InputVote
	Word   string // InputWord
}

// Interpret classifies a normalized message: "!join <name>", "!start",
// "!restart", a bare digit vote, or a single-word suggestion. Noise maps
// to InputNone and is silently dropped by the caller.
func Interpret(m Message) Input {
	text := strings.TrimSpace(strings.ToLower(m.Text))
	if text == "" {
		return Input{Kind: InputNone}
	}

	if strings.HasPrefix(text, "!join") {
		name := strings.TrimSpace(strings.TrimPrefix(text, "!join"))
		if name == "" {
			name = m.User
		}
		return Input{Kind: InputJoin, Name: name}
	}
	if text == "!start" {
		return Input{Kind: InputStart}
	}
	if text == "!restart" {
		return Input{Kind: InputRestart}
	}

	if n, err := strconv.Atoi(text); err == nil {
		return Input{Kind: InputVote, Choice: n}
	}

	if isSingleWord(text) {
		return Input{Kind: InputWord, Word: text}
	}
	return Input{Kind: InputNone}
}

func isSingleWord(text string) bool {
	if strings.Contains(text, " ") {
		return false
	}
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c < 'a' || c > 'z' {
			return false
		}
	}
	return len(text) > 0
}
