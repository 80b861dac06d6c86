package engine

import "math/rand"

// DefaultRules mirrors the live game's tuning: a 15 second collection
// window, 5 second selection window, 15-word stories, 10 points per word
// with a 2 point bonus for resolving with more than 2 seconds left.
func DefaultRules() Rules {
	return Rules{
		StoryLengthTarget:     15,
		CollectSeconds:        15,
		SelectSeconds:         5,
		BasePoints:            10,
		BonusPoints:           2,
		BonusThresholdSeconds: 2,
		MaxOptions:            4,
		Aggregation:           AggregateByFrequency,
	}
}

func NewState(roomCode string, rules Rules) State {
	return State{
		Phase:         PhaseJoining,
		TurnSlot:      1,
		WordHistory:   map[string]bool{},
		Scores:        map[int]int{},
		StreamerVotes: map[int]int{},
		RoomCode:      roomCode,
		Rules:         rules,
	}
}

// clone deep-copies everything Apply may write through, so the caller's
// snapshot is never aliased by the next one.
func clone(s State) State {
	next := s

	next.WordHistory = make(map[string]bool, len(s.WordHistory))
	for w := range s.WordHistory {
		next.WordHistory[w] = true
	}
	next.Scores = make(map[int]int, len(s.Scores))
	for slot, pts := range s.Scores {
		next.Scores[slot] = pts
	}
	next.StreamerVotes = make(map[int]int, len(s.StreamerVotes))
	for slot, n := range s.StreamerVotes {
		next.StreamerVotes[slot] = n
	}

	next.Story = append([]StoryWord(nil), s.Story...)
	next.Candidates = append([]Candidate(nil), s.Candidates...)
	next.Options = append([]string(nil), s.Options...)
	next.CompletedStories = append([][]StoryWord(nil), s.CompletedStories...)

	return next
}

func ContainsEvent(events []Event, eventType EventType) bool {
	for _, event := range events {
		if event.Type == eventType {
			return true
		}
	}
	return false
}

// StoryText renders a story as a plain sentence.
func StoryText(story []StoryWord) string {
	out := ""
	for i, w := range story {
		if i > 0 {
			out += " "
		}
		out += w.Text
	}
	return out
}

var defaultRand = rand.New(rand.NewSource(rand.Int63()))

// chooseAutoIndex picks the option used when the selecting timer runs out.
// Package var so tests can stub the randomness.
var chooseAutoIndex = func(n int) int {
	return defaultRand.Intn(n)
}
