// internal/game/membership.go
package game

import (
	"github.com/google/uuid"
	"github.com/jason-s-yu/loveletter/internal/events"
	"github.com/jason-s-yu/loveletter/internal/models"
)

// CreateRoom opens a room with host seated first.
func (e *Engine) CreateRoom(name, secret string, host *models.Player) *models.Game {
	g := models.NewGame(name, secret, host)
	e.logFor(g).WithField("host", host.ID).Info("room created")
	return g
}

// JoinRoom seats p while the room is waiting for players. Joining again is a no-op.
func (e *Engine) JoinRoom(g *models.Game, p *models.Player, secret string) ([]events.Event, error) {
	if g.PlayerIndex(p.ID) >= 0 {
		return nil, nil
	}
	if g.State == models.StateFinished {
		return nil, models.ErrGameFinished
	}
	if g.Secret != "" && g.Secret != secret {
		return nil, models.ErrInvalidSecret
	}
	if err := g.AddPlayer(p); err != nil {
		return nil, err
	}
	return []events.Event{events.Broadcast(events.KindPlayerJoined, events.PlayerJoinedPayload{Player: events.Summarize(p)})}, nil
}

// LeaveRoom removes playerID for good. Before the game starts the seat is freed and the host role
// passes on. Once it started the player abandons: the hand is surfaced, the turn moves on if it was
// theirs, and the game ends when fewer than two players remain.
func (e *Engine) LeaveRoom(g *models.Game, playerID uuid.UUID) ([]events.Event, error) {
	p, err := g.FindPlayer(playerID)
	if err != nil {
		return nil, err
	}
	switch g.State {
	case models.StateWaitingForPlayers:
		summary := events.Summarize(p)
		hostChanged, err := g.RemovePlayer(playerID)
		if err != nil {
			return nil, err
		}
		evs := []events.Event{events.Broadcast(events.KindPlayerLeft, events.PlayerLeftPayload{Player: summary})}
		if hostChanged && g.HostID != uuid.Nil {
			evs = append(evs, events.Broadcast(events.KindHostChanged, events.HostChangedPayload{Host: g.HostID}))
		}
		return evs, nil
	case models.StateFinished:
		// the seat stays for the final scoreboard
		p.Status = models.StatusAbandoned
		return []events.Event{events.Broadcast(events.KindPlayerLeft, events.PlayerLeftPayload{Player: events.Summarize(p)})}, nil
	}
	if p.Status == models.StatusAbandoned {
		return nil, nil
	}

	wasTurn := g.IsCurrentPlayer(playerID)
	p.Abandon()
	evs := []events.Event{events.Broadcast(events.KindPlayerLeft, events.PlayerLeftPayload{Player: events.Summarize(p)})}
	if g.HostID == playerID {
		if next, ok := nextHost(g); ok {
			g.HostID = next
			evs = append(evs, events.Broadcast(events.KindHostChanged, events.HostChangedPayload{Host: next}))
		}
	}
	e.logFor(g).WithField("player", playerID).Info("player abandoned game")

	if g.ContenderCount() < models.MinPlayers {
		more, err := e.FinishGame(g)
		if err != nil {
			return nil, err
		}
		return append(evs, more...), nil
	}
	if wasTurn {
		g.AwaitingChoice = false
		more, err := e.endTurn(g)
		if err != nil {
			return nil, err
		}
		return append(evs, more...), nil
	}
	// an empty deck ends the round after the current player's play, not mid-turn
	if len(g.InRoundPlayers()) <= 1 {
		more, err := e.FinishRound(g)
		if err != nil {
			return nil, err
		}
		return append(evs, more...), nil
	}
	return evs, nil
}

// Disconnect marks a seated player as gone for now. Before the game starts this is a leave. In a
// running game the player keeps their cards and the turn waits for them.
func (e *Engine) Disconnect(g *models.Game, playerID uuid.UUID) ([]events.Event, error) {
	if g.State == models.StateWaitingForPlayers {
		return e.LeaveRoom(g, playerID)
	}
	p, err := g.FindPlayer(playerID)
	if err != nil {
		return nil, err
	}
	if p.Status == models.StatusAbandoned || p.Status == models.StatusDisconnected {
		return nil, nil
	}
	if g.State == models.StateFinished {
		return nil, nil
	}
	if p.Status == models.StatusEliminated {
		// eliminated players stay eliminated until the next deal
		return []events.Event{events.Broadcast(events.KindPlayerDisconnected, events.PlayerConnectionPayload{Player: p.ID})}, nil
	}
	p.Disconnect()
	e.logFor(g).WithField("player", playerID).Info("player disconnected")
	return []events.Event{events.Broadcast(events.KindPlayerDisconnected, events.PlayerConnectionPayload{Player: p.ID})}, nil
}

// Reconnect restores a disconnected player and sends them a fresh snapshot of the room.
func (e *Engine) Reconnect(g *models.Game, playerID uuid.UUID) ([]events.Event, error) {
	p, err := g.FindPlayer(playerID)
	if err != nil {
		return nil, err
	}
	if p.Status == models.StatusAbandoned {
		return nil, models.ErrPlayerNotInGame
	}
	var evs []events.Event
	if p.Status == models.StatusDisconnected {
		p.Reconnect()
		evs = append(evs, events.Broadcast(events.KindPlayerReconnected, events.PlayerConnectionPayload{Player: p.ID}))
		e.logFor(g).WithField("player", playerID).Info("player reconnected")
	}
	return append(evs, SyncEvent(g, playerID)), nil
}

// nextHost picks the first seated player who has not abandoned.
func nextHost(g *models.Game) (uuid.UUID, bool) {
	for _, p := range g.Players {
		if p.Status != models.StatusAbandoned {
			return p.ID, true
		}
	}
	return uuid.Nil, false
}
