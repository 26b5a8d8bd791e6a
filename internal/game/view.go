// internal/game/view.go
package game

import (
	"slices"

	"github.com/google/uuid"
	"github.com/jason-s-yu/loveletter/internal/events"
	"github.com/jason-s-yu/loveletter/internal/models"
)

// PlayerView is one seat as seen by another player. Hand is only filled for the viewer.
type PlayerView struct {
	ID            uuid.UUID           `json:"id"`
	Name          string              `json:"name"`
	Score         int                 `json:"score"`
	Status        models.PlayerStatus `json:"status"`
	HandSize      int                 `json:"handSize"`
	Hand          []models.CardType   `json:"hand,omitempty"`
	PlayedCards   []models.CardType   `json:"playedCards"`
	IsCurrentTurn bool                `json:"isCurrentTurn"`
}

// GameView is the redacted room snapshot sent to a single player.
type GameView struct {
	RoomID          uuid.UUID        `json:"roomId"`
	Name            string           `json:"name"`
	HostID          uuid.UUID        `json:"hostId"`
	State           models.GameState `json:"state"`
	Round           int              `json:"round"`
	MaxTokens       int              `json:"maxTokens"`
	DeckSize        int              `json:"deckSize"`
	HasReservedCard bool             `json:"hasReservedCard"`
	CurrentPlayerID uuid.UUID        `json:"currentPlayerId,omitempty"`
	AwaitingChoice  bool             `json:"awaitingChoice"`
	Players         []PlayerView     `json:"players"`
}

// BuildView snapshots g from viewer's seat. Other players' hands are reduced to their size.
func BuildView(g *models.Game, viewer uuid.UUID) GameView {
	v := GameView{
		RoomID:          g.ID,
		Name:            g.Name,
		HostID:          g.HostID,
		State:           g.State,
		Round:           g.Round,
		MaxTokens:       g.MaxTokens,
		DeckSize:        len(g.Deck),
		HasReservedCard: g.ReservedCard != nil,
		Players:         make([]PlayerView, 0, len(g.Players)),
	}
	inProgress := g.State.InProgress()
	if cur := g.CurrentPlayer(); cur != nil && inProgress {
		v.CurrentPlayerID = cur.ID
		v.AwaitingChoice = g.AwaitingChoice
	}
	for i, p := range g.Players {
		pv := PlayerView{
			ID:            p.ID,
			Name:          p.Name,
			Score:         p.Score,
			Status:        p.Status,
			HandSize:      len(p.HoldingCards),
			PlayedCards:   slices.Clone(p.PlayedCards),
			IsCurrentTurn: inProgress && i == g.CurrentPlayerIndex,
		}
		if p.ID == viewer {
			pv.Hand = slices.Clone(p.HoldingCards)
		}
		v.Players = append(v.Players, pv)
	}
	return v
}

// SyncEvent wraps viewer's snapshot in a private SyncState event.
func SyncEvent(g *models.Game, viewer uuid.UUID) events.Event {
	return events.ToPlayer(viewer, events.KindSyncState, BuildView(g, viewer))
}
