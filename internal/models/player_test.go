// internal/models/player_test.go
package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPlayer(cards ...CardType) *Player {
	p := NewPlayer(uuid.New(), "tester")
	p.HandCards(cards)
	return p
}

func TestEliminateSurfacesHand(t *testing.T) {
	p := newTestPlayer(King, Guard)
	p.PlayedCards = []CardType{Priest}

	p.Eliminate()

	assert.Empty(t, p.HoldingCards)
	assert.Equal(t, []CardType{Priest, King, Guard}, p.PlayedCards)
	assert.Equal(t, StatusEliminated, p.Status)
	assert.False(t, p.HasCards())
	assert.False(t, p.IsInRound())
	assert.False(t, p.CanBeTargeted())
}

func TestPlayAndRevertCard(t *testing.T) {
	p := newTestPlayer(Guard, Baron)

	assert.False(t, p.PlayCard(Princess), "not holding a Princess")
	require.True(t, p.PlayCard(Baron))
	assert.Equal(t, []CardType{Guard}, p.HoldingCards)
	assert.Equal(t, []CardType{Baron}, p.PlayedCards)

	require.True(t, p.RevertPlayCard(Baron))
	assert.ElementsMatch(t, []CardType{Guard, Baron}, p.HoldingCards)
	assert.Empty(t, p.PlayedCards)
	assert.False(t, p.RevertPlayCard(Baron))
}

func TestEmptyHandPrimitivesFail(t *testing.T) {
	p := newTestPlayer()

	_, err := p.GetCard()
	assert.ErrorIs(t, err, ErrPlayerHasNoCards)
	_, err = p.RemoveCard()
	assert.ErrorIs(t, err, ErrPlayerHasNoCards)
	_, err = p.Discard()
	assert.ErrorIs(t, err, ErrPlayerHasNoCards)
}

func TestDiscardMovesCardToPlayed(t *testing.T) {
	p := newTestPlayer(Countess)

	c, err := p.Discard()
	require.NoError(t, err)
	assert.Equal(t, Countess, c)
	assert.Empty(t, p.HoldingCards)
	assert.Equal(t, []CardType{Countess}, p.PlayedCards)
}

func TestSetProtection(t *testing.T) {
	p := newTestPlayer(Guard)

	require.NoError(t, p.SetProtection(true))
	assert.True(t, p.IsProtected())
	assert.False(t, p.CanBeTargeted())

	require.NoError(t, p.SetProtection(false))
	assert.Equal(t, StatusActive, p.Status)
	assert.True(t, p.CanBeTargeted())

	for _, st := range []PlayerStatus{StatusEliminated, StatusDisconnected, StatusAbandoned} {
		p.Status = st
		assert.ErrorIs(t, p.SetProtection(true), ErrPlayerNotInGame, "status %s", st)
		assert.Equal(t, st, p.Status)
	}
}

func TestTakeAndHandCards(t *testing.T) {
	a := newTestPlayer(King)
	b := newTestPlayer(Princess)

	aCards, bCards := a.TakeHoldingCards(), b.TakeHoldingCards()
	a.HandCards(bCards)
	b.HandCards(aCards)

	assert.Equal(t, []CardType{Princess}, a.HoldingCards)
	assert.Equal(t, []CardType{King}, b.HoldingCards)
}

func TestResetForRoundKeepsDisconnected(t *testing.T) {
	p := newTestPlayer(Guard)
	p.Eliminate()
	p.ResetForRound()
	assert.Equal(t, StatusActive, p.Status)
	assert.Empty(t, p.PlayedCards)

	p.Status = StatusDisconnected
	p.ResetForRound()
	assert.Equal(t, StatusDisconnected, p.Status)

	p.Status = StatusAbandoned
	p.ResetForRound()
	assert.Equal(t, StatusAbandoned, p.Status)
}

func TestDisconnectedPlayerStaysInRound(t *testing.T) {
	p := newTestPlayer(Priest)
	p.Status = StatusDisconnected

	assert.True(t, p.IsInRound())
	assert.True(t, p.CanBeTargeted())
}

func TestShieldSurvivesDisconnect(t *testing.T) {
	p := newTestPlayer(Priest)
	require.NoError(t, p.SetProtection(true))

	p.Disconnect()
	assert.Equal(t, StatusDisconnected, p.Status)
	assert.True(t, p.IsProtected())
	assert.False(t, p.CanBeTargeted())
	assert.True(t, p.IsInRound())

	p.Reconnect()
	assert.Equal(t, StatusProtected, p.Status)
	assert.False(t, p.Shielded)

	p.Disconnect()
	require.NoError(t, p.SetProtection(false))
	assert.False(t, p.IsProtected())
	p.Reconnect()
	assert.Equal(t, StatusActive, p.Status)
}
