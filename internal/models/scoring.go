// internal/models/scoring.go
package models

import (
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// MaxTokensFor returns the winning-score threshold for a given player count.
func MaxTokensFor(players int) (int, error) {
	switch {
	case players == 2:
		return 6, nil
	case players == 3:
		return 5, nil
	case players == 4:
		return 4, nil
	case players == 5 || players == 6:
		return 3, nil
	}
	return 0, ErrInvalidPlayerCount
}

// InRoundPlayers returns the players still competing in the current round, in seat order.
func (g *Game) InRoundPlayers() []*Player {
	return lo.Filter(g.Players, func(p *Player, _ int) bool { return p.IsInRound() })
}

// ContenderCount returns how many seated players have not abandoned the game.
func (g *Game) ContenderCount() int {
	return lo.CountBy(g.Players, func(p *Player) bool { return p.Status != StatusAbandoned })
}

// IsRoundOver reports whether at most one player remains or the deck ran out.
func (g *Game) IsRoundOver() bool {
	return len(g.InRoundPlayers()) <= 1 || len(g.Deck) == 0
}

// RoundWinners returns every in-round player tied for the highest held card.
func (g *Game) RoundWinners() []*Player {
	contenders := g.InRoundPlayers()
	if len(contenders) == 0 {
		return nil
	}
	best := lo.MaxBy(contenders, func(a, b *Player) bool { return a.HighestCard() > b.HighestCard() })
	return lo.Filter(contenders, func(p *Player, _ int) bool { return p.HighestCard() == best.HighestCard() })
}

// IsGameOver reports whether any player reached MaxTokens.
func (g *Game) IsGameOver() bool {
	if g.MaxTokens <= 0 {
		return false
	}
	return lo.SomeBy(g.Players, func(p *Player) bool { return p.Score >= g.MaxTokens })
}

// GameWinners returns every player tied at the maximum score.
func (g *Game) GameWinners() []*Player {
	if len(g.Players) == 0 {
		return nil
	}
	best := lo.MaxBy(g.Players, func(a, b *Player) bool { return a.Score > b.Score })
	return lo.Filter(g.Players, func(p *Player, _ int) bool { return p.Score == best.Score })
}

// Scores maps player ids to their token count.
func (g *Game) Scores() map[uuid.UUID]int {
	return lo.SliceToMap(g.Players, func(p *Player) (uuid.UUID, int) { return p.ID, p.Score })
}
