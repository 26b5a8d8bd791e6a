// internal/models/game_action.go
package models

import (
	"encoding/json"

	"github.com/google/uuid"
)

// ActionEndGame is the action type that closes a room's action log.
const ActionEndGame = "GameOver"

// GameActionRecord is one entry of a room's action log, as queued for the historian.
// RecipientID is uuid.Nil for events every player saw.
type GameActionRecord struct {
	GameID        uuid.UUID       `json:"game_id"`
	ActionIndex   int64           `json:"action_index"`
	RecipientID   uuid.UUID       `json:"recipient_id"`
	ActionType    string          `json:"action_type"`
	ActionPayload json.RawMessage `json:"action_payload,omitempty"`
	Timestamp     int64           `json:"timestamp"`
}

// IsPrivate reports whether the action was addressed to a single player.
func (r GameActionRecord) IsPrivate() bool {
	return r.RecipientID != uuid.Nil
}
