// internal/events/payloads.go
package events

import (
	"github.com/google/uuid"
	"github.com/jason-s-yu/loveletter/internal/models"
)

// PlayerSummary is the public face of a player in round and membership payloads.
type PlayerSummary struct {
	ID     uuid.UUID           `json:"id"`
	Name   string              `json:"name"`
	Score  int                 `json:"score"`
	Status models.PlayerStatus `json:"status"`
}

// Summarize builds the public summary of p.
func Summarize(p *models.Player) PlayerSummary {
	return PlayerSummary{ID: p.ID, Name: p.Name, Score: p.Score, Status: p.Status}
}

type PlayCardPayload struct {
	Player     uuid.UUID        `json:"player"`
	Card       models.CardType  `json:"card"`
	Target     *uuid.UUID       `json:"target,omitempty"`
	TargetCard *models.CardType `json:"targetCard,omitempty"`
}

type GuessCardPayload struct {
	Player  uuid.UUID       `json:"player"`
	Target  uuid.UUID       `json:"target"`
	Guess   models.CardType `json:"guess"`
	Correct bool            `json:"correct"`
}

type PeekCardPayload struct {
	Player uuid.UUID `json:"player"`
	Target uuid.UUID `json:"target"`
}

// ShowCardPayload is private to the player who looked.
type ShowCardPayload struct {
	Target uuid.UUID       `json:"target"`
	Card   models.CardType `json:"card"`
}

// CompareCardsPayload is private to the two compared players.
type CompareCardsPayload struct {
	Player     uuid.UUID       `json:"player"`
	Target     uuid.UUID       `json:"target"`
	PlayerCard models.CardType `json:"playerCard"`
	TargetCard models.CardType `json:"targetCard"`
}

type ComparisonTiePayload struct {
	Player uuid.UUID `json:"player"`
	Target uuid.UUID `json:"target"`
}

type DiscardCardPayload struct {
	Player uuid.UUID       `json:"player"`
	Card   models.CardType `json:"card"`
}

// DrawCardPayload carries the card only in the private copy sent to the drawer.
type DrawCardPayload struct {
	Player      uuid.UUID        `json:"player"`
	Card        *models.CardType `json:"card,omitempty"`
	DeckSize    int              `json:"deckSize"`
	FromReserve bool             `json:"fromReserve,omitempty"`
}

type PlayerEliminatedPayload struct {
	Player uuid.UUID         `json:"player"`
	Cards  []models.CardType `json:"cards"`
	By     *uuid.UUID        `json:"by,omitempty"`
	Reason models.CardType   `json:"reason"`
}

// SwitchCardsPayload carries the new hand only in the private copies.
type SwitchCardsPayload struct {
	Player uuid.UUID         `json:"player"`
	Target uuid.UUID         `json:"target"`
	Cards  []models.CardType `json:"cards,omitempty"`
}

type PlayerProtectedPayload struct {
	Player uuid.UUID `json:"player"`
}

// TurnWastedPayload is sent when a card targeted a protected or eliminated player.
type TurnWastedPayload struct {
	Player uuid.UUID       `json:"player"`
	Target uuid.UUID       `json:"target"`
	Card   models.CardType `json:"card"`
}

// ChooseCardPayload asks the player to keep one card and return the rest.
type ChooseCardPayload struct {
	Player uuid.UUID         `json:"player"`
	Cards  []models.CardType `json:"cards"`
	Return int               `json:"return"`
}

type CardReturnedToDeckPayload struct {
	Player   uuid.UUID `json:"player"`
	Count    int       `json:"count"`
	DeckSize int       `json:"deckSize"`
}

type RoundStartedPayload struct {
	Round     int             `json:"round"`
	MaxTokens int             `json:"maxTokens"`
	DeckSize  int             `json:"deckSize"`
	Players   []PlayerSummary `json:"players"`
}

type RoundWinnersPayload struct {
	Round   int                             `json:"round"`
	Winners []uuid.UUID                     `json:"winners"`
	Hands   map[uuid.UUID][]models.CardType `json:"hands"`
	Scores  map[uuid.UUID]int               `json:"scores"`
}

type BonusPointsPayload struct {
	Card    models.CardType `json:"card"`
	Players []uuid.UUID     `json:"players"`
}

type GameOverPayload struct {
	Winners []uuid.UUID       `json:"winners"`
	Scores  map[uuid.UUID]int `json:"scores"`
}

type NextTurnPayload struct {
	Player uuid.UUID `json:"player"`
	Round  int       `json:"round"`
}

type PlayerJoinedPayload struct {
	Player PlayerSummary `json:"player"`
}

type PlayerLeftPayload struct {
	Player PlayerSummary `json:"player"`
}

type PlayerConnectionPayload struct {
	Player uuid.UUID `json:"player"`
}

type HostChangedPayload struct {
	Host uuid.UUID `json:"host"`
}
