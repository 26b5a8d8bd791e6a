// internal/events/events.go

// Package events defines the notification events the engine emits. Kind names and payload shapes
// are the wire contract with clients and must stay stable.
package events

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Kind discriminates notification events.
type Kind string

const (
	KindPlayCard           Kind = "PlayCard"
	KindGuessCard          Kind = "GuessCard"
	KindPeekCard           Kind = "PeekCard"
	KindShowCard           Kind = "ShowCard"
	KindCompareCards       Kind = "CompareCards"
	KindComparisonTie      Kind = "ComparisonTie"
	KindDiscardCard        Kind = "DiscardCard"
	KindDrawCard           Kind = "DrawCard"
	KindPlayerEliminated   Kind = "PlayerEliminated"
	KindSwitchCards        Kind = "SwitchCards"
	KindPlayerProtected    Kind = "PlayerProtected"
	KindTurnWasted         Kind = "TurnWasted"
	KindChooseCard         Kind = "ChooseCard"
	KindCardReturnedToDeck Kind = "CardReturnedToDeck"
	KindRoundStarted       Kind = "RoundStarted"
	KindRoundWinners       Kind = "RoundWinners"
	KindBonusPoints        Kind = "BonusPoints"
	KindGameOver           Kind = "GameOver"
	KindNextTurn           Kind = "NextTurn"

	// room membership and connection status
	KindPlayerJoined       Kind = "PlayerJoined"
	KindPlayerLeft         Kind = "PlayerLeft"
	KindPlayerDisconnected Kind = "PlayerDisconnected"
	KindPlayerReconnected  Kind = "PlayerReconnected"
	KindHostChanged        Kind = "HostChanged"
	KindSyncState          Kind = "SyncState"
)

// Destination says who receives an event. The zero value addresses the whole room.
type Destination struct {
	Player uuid.UUID `json:"player,omitempty"`
}

// IsBroadcast reports whether the event goes to every player in the room.
func (d Destination) IsBroadcast() bool {
	return d.Player == uuid.Nil
}

func (d Destination) String() string {
	if d.IsBroadcast() {
		return "room"
	}
	return "player:" + d.Player.String()
}

// Event is a single notification. Payload is one of the structs in payloads.go.
type Event struct {
	Kind        Kind        `json:"type"`
	Destination Destination `json:"-"`
	Payload     any         `json:"payload,omitempty"`
}

// Broadcast builds a room-wide event.
func Broadcast(kind Kind, payload any) Event {
	return Event{Kind: kind, Payload: payload}
}

// ToPlayer builds an event delivered to exactly one player.
func ToPlayer(player uuid.UUID, kind Kind, payload any) Event {
	return Event{Kind: kind, Destination: Destination{Player: player}, Payload: payload}
}

// For reports whether player should receive e.
func (e Event) For(player uuid.UUID) bool {
	return e.Destination.IsBroadcast() || e.Destination.Player == player
}

// Marshal encodes the event as the JSON frame sent to clients.
func Marshal(e Event) ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal %s event: %w", e.Kind, err)
	}
	return data, nil
}

// Filter returns the events a given player may see, preserving order.
func Filter(evs []Event, player uuid.UUID) []Event {
	out := make([]Event, 0, len(evs))
	for _, e := range evs {
		if e.For(player) {
			out = append(out, e)
		}
	}
	return out
}
