package registry

import (
	"crypto/rand"
	"errors"
	"math/big"
)

var ErrRoomFull = errors.New("room full")
var ErrUnknownPlayer = errors.New("unknown player")

// MaxSlots is fixed: the game always has exactly two streamer seats.
const MaxSlots = 2

// Player's ID is the credential behind host and turn checks. It is handed to
// its owner once, in the HTTP join response, and never serialized into
// broadcast snapshots.
type Player struct {
	ID        string `json:"-"`
	Name      string `json:"name"`
	Connected bool   `json:"connected"`
	Host      bool   `json:"is_host"`
}

// Roster is a value type: copying it copies both slots, so reducer code can
// treat it as part of an immutable snapshot. Index 0 is slot 1.
type Roster struct {
	Slots [MaxSlots]Player `json:"slots"`
}

// Assign seats playerID in the first free slot. The first caller becomes
// slot 1 and host, the second slot 2. A playerID that already holds a slot
// is reconnected in place: same slot, same host status, name untouched.
func Assign(r Roster, playerID, name string) (Roster, int, error) {
	if slot, ok := slotOf(r, playerID); ok {
		r.Slots[slot-1].Connected = true
		return r, slot, nil
	}
	for i := range r.Slots {
		if r.Slots[i].ID == "" {
			r.Slots[i] = Player{
				ID:        playerID,
				Name:      name,
				Connected: true,
				Host:      i == 0,
			}
			return r, i + 1, nil
		}
	}
	return r, 0, ErrRoomFull
}

// Release marks the player's slot disconnected. Name, slot and host status
// are kept so the player can reconnect later.
func Release(r Roster, playerID string) (Roster, int, error) {
	slot, ok := slotOf(r, playerID)
	if !ok {
		return r, 0, ErrUnknownPlayer
	}
	r.Slots[slot-1].Connected = false
	return r, slot, nil
}

func slotOf(r Roster, playerID string) (int, bool) {
	if playerID == "" {
		return 0, false
	}
	for i := range r.Slots {
		if r.Slots[i].ID == playerID {
			return i + 1, true
		}
	}
	return 0, false
}

// SlotOf reports which slot playerID holds, if any.
func SlotOf(r Roster, playerID string) (int, bool) { return slotOf(r, playerID) }

// IsHost reports whether playerID holds the host seat.
func IsHost(r Roster, playerID string) bool {
	slot, ok := slotOf(r, playerID)
	return ok && r.Slots[slot-1].Host
}

// ConnectedCount counts currently connected slots.
func ConnectedCount(r Roster) int {
	n := 0
	for i := range r.Slots {
		if r.Slots[i].Connected {
			n++
		}
	}
	return n
}

// SeatedCount counts slots that have ever been assigned.
func SeatedCount(r Roster) int {
	n := 0
	for i := range r.Slots {
		if r.Slots[i].ID != "" {
			n++
		}
	}
	return n
}

// GenerateRoomCode produces a 6-character uppercase alphanumeric code.
// Uniqueness is the room collaborator's problem, not ours.
func GenerateRoomCode() (string, error) {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	code := make([]byte, 6)
	for i := 0; i < 6; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		code[i] = charset[num.Int64()]
	}
	return string(code), nil
}
