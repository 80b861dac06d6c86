package engine

import (
	"errors"
	"time"

	"github.com/storychain/story-chain-backend/internal/registry"
)

var ErrNotHost = errors.New("issuer is not the host")
var ErrWrongTurn = errors.New("not this player's turn")
var ErrWrongPhase = errors.New("command not valid in current phase")
var ErrInvalidWord = errors.New("word rejected by validator")
var ErrWordUsed = errors.New("word already used in this story")
var ErrUnknownOption = errors.New("word is not a current option")
var ErrInvalidVote = errors.New("vote out of range")
var ErrNoPlayers = errors.New("no connected players")
var ErrUnsupportedCommand = errors.New("unsupported command")

type Phase string

const (
	PhaseJoining    Phase = "joining"
	PhaseLobby      Phase = "lobby"
	PhaseCollecting Phase = "collecting"
	PhaseSelecting  Phase = "selecting"
	PhaseCompleted  Phase = "completed"
)

// StoryWord is immutable once appended.
type StoryWord struct {
	Text       string    `json:"text"`
	AuthorSlot int       `json:"author_slot"`
	InsertedAt time.Time `json:"inserted_at"`
}

// Candidate is one accepted audience word. Count tracks repeat mentions
// within the current collecting window; insertion order is first-seen order.
type Candidate struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// Timer is countdown state for the phase it was armed in. A tick for any
// other phase is stale and ignored.
type Timer struct {
	Remaining int   `json:"remaining"`
	Phase     Phase `json:"phase,omitempty"`
}

type AggregationMode string

const (
	// AggregateByFrequency ranks candidates by mention count, ties broken
	// by first-seen order. Canonical policy.
	AggregateByFrequency AggregationMode = "frequency"
	// AggregateByArrival presents the first distinct candidates in arrival order.
	AggregateByArrival AggregationMode = "arrival"
)

type Rules struct {
	StoryLengthTarget     int             `json:"story_length_target"`
	CollectSeconds        int             `json:"collect_seconds"`
	SelectSeconds         int             `json:"select_seconds"`
	BasePoints            int             `json:"base_points"`
	BonusPoints           int             `json:"bonus_points"`
	BonusThresholdSeconds int             `json:"bonus_threshold_seconds"`
	MaxOptions            int             `json:"max_options"`
	Aggregation           AggregationMode `json:"aggregation"`
}

type State struct {
	Phase            Phase           `json:"phase"`
	TurnSlot         int             `json:"turn_slot"`
	Story            []StoryWord     `json:"story"`
	WordHistory      map[string]bool `json:"-"`
	Candidates       []Candidate     `json:"candidates"`
	Options          []string        `json:"options"`
	Scores           map[int]int     `json:"scores"`
	StreamerVotes    map[int]int     `json:"streamer_votes"`
	Timer            Timer           `json:"timer"`
	Roster           registry.Roster `json:"roster"`
	CompletedStories [][]StoryWord   `json:"completed_stories"`
	RoomCode         string          `json:"room_code,omitempty"`
	Rules            Rules           `json:"rules"`
}

type CommandType string

const (
	CmdJoinGame    CommandType = "JoinGame"
	CmdLeaveGame   CommandType = "LeaveGame"
	CmdStartGame   CommandType = "StartGame"
	CmdSuggestWord CommandType = "SuggestWord"
	CmdVote        CommandType = "Vote"
	CmdSelectWord  CommandType = "SelectWord"
	CmdRestart     CommandType = "Restart"
	CmdTick        CommandType = "Tick"
)

type Command struct {
	Type     CommandType
	PlayerID string
	Name     string
	Word     string
	Choice   int
	User     string // chat user a suggestion/vote came from
}

type EventType string

const (
	EvtPlayerJoined      EventType = "PlayerJoined"
	EvtPlayerLeft        EventType = "PlayerLeft"
	EvtRoundStarted      EventType = "RoundStarted"
	EvtCandidateAccepted EventType = "CandidateAccepted"
	EvtOptionsReady      EventType = "OptionsReady"
	EvtWordAppended      EventType = "WordAppended"
	EvtScoreAwarded      EventType = "ScoreAwarded"
	EvtTurnAdvanced      EventType = "TurnAdvanced"
	EvtStoryCompleted    EventType = "StoryCompleted"
	EvtTimerStarted      EventType = "TimerStarted"
	EvtTimerExpired      EventType = "TimerExpired"
	EvtVoteRecorded      EventType = "VoteRecorded"
)

type Event struct {
	Type    EventType
	Slot    int
	Word    string
	Points  int
	Count   int
	Seconds int
	Phase   Phase
	Options []string
}

// Apply is the single transition function: snapshot in, snapshot out.
// The input state is never mutated; on error it is returned unchanged.
// The session loop serializes all callers, so Apply itself needs no locks.
func Apply(s State, cmd Command, now time.Time) ([]Event, State, error) {
	switch cmd.Type {

	case CmdJoinGame:
		// Re-entry by a seated playerID reconnects in place (idempotent).
		roster, slot, err := registry.Assign(s.Roster, cmd.PlayerID, cmd.Name)
		if err != nil {
			return nil, s, err
		}
		next := clone(s)
		next.Roster = roster
		events := []Event{{Type: EvtPlayerJoined, Slot: slot}}
		if next.Phase == PhaseJoining && registry.SeatedCount(roster) >= registry.MaxSlots {
			next.Phase = PhaseLobby
		}
		return events, next, nil

	case CmdLeaveGame:
		roster, slot, err := registry.Release(s.Roster, cmd.PlayerID)
		if err != nil {
			return nil, s, err
		}
		next := clone(s)
		next.Roster = roster
		return []Event{{Type: EvtPlayerLeft, Slot: slot}}, next, nil

	case CmdStartGame:
		if s.Phase != PhaseLobby {
			return nil, s, ErrWrongPhase
		}
		if !registry.IsHost(s.Roster, cmd.PlayerID) {
			return nil, s, ErrNotHost
		}
		if registry.ConnectedCount(s.Roster) < 1 {
			return nil, s, ErrNoPlayers
		}
		next := clone(s)
		next.Story = nil
		next.WordHistory = map[string]bool{}
		next.Scores = map[int]int{}
		next.StreamerVotes = map[int]int{}
		next.Candidates = nil
		next.Options = nil
		next.TurnSlot = 1
		events := startCollecting(&next, Event{Type: EvtRoundStarted})
		return events, next, nil

	case CmdSuggestWord:
		if s.Phase != PhaseCollecting {
			return nil, s, ErrWrongPhase
		}
		word := NormalizeWord(cmd.Word)
		if !ValidWord(word) {
			return nil, s, ErrInvalidWord
		}
		if s.WordHistory[word] {
			return nil, s, ErrWordUsed
		}
		next := clone(s)
		count := 1
		found := false
		for i := range next.Candidates {
			if next.Candidates[i].Word == word {
				next.Candidates[i].Count++
				count = next.Candidates[i].Count
				found = true
				break
			}
		}
		if !found {
			next.Candidates = append(next.Candidates, Candidate{Word: word, Count: 1})
		}
		return []Event{{Type: EvtCandidateAccepted, Word: word, Count: count}}, next, nil

	case CmdVote:
		// During selecting, 1-4 resolves a word option on the audience's
		// behalf. In any other phase, 1 or 2 cheers for a streamer.
		if s.Phase == PhaseSelecting {
			if cmd.Choice < 1 || cmd.Choice > len(s.Options) {
				return nil, s, ErrInvalidVote
			}
			next := clone(s)
			events := resolveWord(&next, next.Options[cmd.Choice-1], now)
			return events, next, nil
		}
		if cmd.Choice < 1 || cmd.Choice > registry.MaxSlots {
			return nil, s, ErrInvalidVote
		}
		next := clone(s)
		next.StreamerVotes[cmd.Choice]++
		return []Event{{Type: EvtVoteRecorded, Slot: cmd.Choice}}, next, nil

	case CmdSelectWord:
		if s.Phase != PhaseSelecting {
			return nil, s, ErrWrongPhase
		}
		slot, ok := registry.SlotOf(s.Roster, cmd.PlayerID)
		if !ok || slot != s.TurnSlot {
			return nil, s, ErrWrongTurn
		}
		word := NormalizeWord(cmd.Word)
		if !containsWord(s.Options, word) {
			return nil, s, ErrUnknownOption
		}
		next := clone(s)
		events := resolveWord(&next, word, now)
		return events, next, nil

	case CmdRestart:
		if s.Phase != PhaseCompleted {
			return nil, s, ErrWrongPhase
		}
		if !registry.IsHost(s.Roster, cmd.PlayerID) {
			return nil, s, ErrNotHost
		}
		// The finished story was archived when the target was reached;
		// word history survives so no round reuses a word.
		next := clone(s)
		next.Story = nil
		next.Scores = map[int]int{}
		next.StreamerVotes = map[int]int{}
		next.Candidates = nil
		next.Options = nil
		next.TurnSlot = 1
		events := startCollecting(&next, Event{Type: EvtRoundStarted})
		return events, next, nil

	case CmdTick:
		return applyTick(s, now)

	default:
		return nil, s, ErrUnsupportedCommand
	}
}

func applyTick(s State, now time.Time) ([]Event, State, error) {
	// Stale tick: no timer armed, or armed for a phase we already left.
	if s.Timer.Phase == "" || s.Timer.Phase != s.Phase {
		return nil, s, nil
	}

	if s.Timer.Remaining > 0 {
		next := clone(s)
		next.Timer.Remaining--
		return nil, next, nil
	}

	next := clone(s)
	events := []Event{{Type: EvtTimerExpired, Phase: next.Phase}}

	switch next.Phase {
	case PhaseCollecting:
		options := SelectOptions(next.Candidates, next.WordHistory, next.Rules)
		next.Options = options
		next.Candidates = nil
		next.Phase = PhaseSelecting
		next.Timer = Timer{Remaining: next.Rules.SelectSeconds, Phase: PhaseSelecting}
		events = append(events,
			Event{Type: EvtOptionsReady, Options: options},
			Event{Type: EvtTimerStarted, Phase: PhaseSelecting, Seconds: next.Rules.SelectSeconds},
		)
		return events, next, nil

	case PhaseSelecting:
		if len(next.Options) == 0 {
			// Nothing to pick. Rotate the turn without a word so the game
			// keeps moving.
			next.TurnSlot = otherSlot(next.TurnSlot)
			events = append(events, Event{Type: EvtTurnAdvanced, Slot: next.TurnSlot})
			events = startCollecting(&next, events...)
			return events, next, nil
		}
		word := next.Options[chooseAutoIndex(len(next.Options))]
		events = append(events, resolveWord(&next, word, now)...)
		return events, next, nil
	}

	return nil, s, nil
}

// resolveWord applies the advance-vs-complete rule. It is shared by explicit
// selection, audience index votes, and timeout auto-resolution so all three
// behave identically.
func resolveWord(s *State, word string, now time.Time) []Event {
	slot := s.TurnSlot
	points := Award(s.Rules, s.Timer.Remaining)

	s.Story = append(s.Story, StoryWord{Text: word, AuthorSlot: slot, InsertedAt: now})
	s.WordHistory[word] = true
	s.Scores[slot] += points
	s.Options = nil
	s.StreamerVotes = map[int]int{}

	events := []Event{
		{Type: EvtWordAppended, Word: word, Slot: slot},
		{Type: EvtScoreAwarded, Slot: slot, Points: points},
	}

	if len(s.Story) >= s.Rules.StoryLengthTarget {
		finished := make([]StoryWord, len(s.Story))
		copy(finished, s.Story)
		s.CompletedStories = append(s.CompletedStories, finished)
		s.Phase = PhaseCompleted
		s.Timer = Timer{}
		return append(events, Event{Type: EvtStoryCompleted})
	}

	s.TurnSlot = otherSlot(slot)
	s.Candidates = nil
	events = append(events, Event{Type: EvtTurnAdvanced, Slot: s.TurnSlot})
	return startCollecting(s, events...)
}

// startCollecting moves s into the collecting phase with a fresh window
// timer and appends the timer event to the given prefix.
func startCollecting(s *State, prefix ...Event) []Event {
	s.Phase = PhaseCollecting
	s.Timer = Timer{Remaining: s.Rules.CollectSeconds, Phase: PhaseCollecting}
	return append(prefix, Event{
		Type:    EvtTimerStarted,
		Phase:   PhaseCollecting,
		Seconds: s.Rules.CollectSeconds,
	})
}

func otherSlot(slot int) int {
	if slot == 1 {
		return 2
	}
	return 1
}

func containsWord(words []string, w string) bool {
	for _, o := range words {
		if o == w {
			return true
		}
	}
	return false
}
