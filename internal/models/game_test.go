// internal/models/game_test.go
package models

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeDeckComposition(t *testing.T) {
	g := NewGame("room", "", nil)
	g.InitializeDeck()

	require.Len(t, g.Deck, DeckSize)
	assert.Equal(t, 21, DeckSize, "six Guards plus one to two copies of every other rank")
	counts := map[CardType]int{}
	for _, c := range g.Deck {
		counts[c]++
	}
	for _, c := range AllCardTypes() {
		assert.Equal(t, Distribution[c], counts[c], "copies of %s", c)
	}
	assert.Nil(t, g.ReservedCard)
}

func TestShuffleIsPermutation(t *testing.T) {
	g := NewGame("room", "", nil)
	g.InitializeDeck()
	before := append([]CardType(nil), g.Deck...)

	g.ShuffleDeck(rand.New(rand.NewSource(42)))

	assert.ElementsMatch(t, before, g.Deck)
}

func TestDrawCardEmptyDeck(t *testing.T) {
	g := NewGame("room", "", nil)
	g.Deck = []CardType{Guard}

	c, err := g.DrawCard()
	require.NoError(t, err)
	assert.Equal(t, Guard, c)

	_, err = g.DrawCard()
	assert.ErrorIs(t, err, ErrEmptyDeck)
}

func TestReturnCardToDeckAppendsInOrder(t *testing.T) {
	g := NewGame("room", "", nil)
	g.Deck = []CardType{Priest}

	require.NoError(t, g.ReturnCardToDeck(King))
	require.NoError(t, g.ReturnCardToDeck(Spy))
	assert.Equal(t, []CardType{Priest, King, Spy}, g.Deck)

	g.InitializeDeck()
	assert.ErrorIs(t, g.ReturnCardToDeck(Guard), ErrDeckFull)
}

func TestReservedCard(t *testing.T) {
	g := NewGame("room", "", nil)

	g.Deck = []CardType{}
	_, err := g.GetReservedCard()
	assert.ErrorIs(t, err, ErrNoReservedCard)

	g.Deck = []CardType{Princess, Guard}
	require.NoError(t, g.SetAsideReservedCard())
	require.NotNil(t, g.ReservedCard)
	assert.Equal(t, Princess, *g.ReservedCard)

	_, err = g.GetReservedCard()
	assert.ErrorIs(t, err, ErrDeckNotEmpty)

	_, _ = g.DrawCard()
	c, err := g.GetReservedCard()
	require.NoError(t, err)
	assert.Equal(t, Princess, c)
	assert.Nil(t, g.ReservedCard)
	assert.False(t, g.HasReplacementCard())
}

func TestStateMachine(t *testing.T) {
	cases := []struct {
		from, to GameState
		ok       bool
	}{
		{StateWaitingForPlayers, StateWaitingForDraw, true},
		{StateWaitingForDraw, StateWaitingForPlay, true},
		{StateWaitingForPlay, StateWaitingForDraw, true},
		{StateWaitingForDraw, StateFinished, true},
		{StateWaitingForPlay, StateFinished, true},
		{StateFinished, StateFinished, true},
		{StateWaitingForPlayers, StateWaitingForPlayers, true},
		{StateWaitingForPlayers, StateWaitingForPlay, false},
		{StateWaitingForPlayers, StateFinished, false},
		{StateWaitingForDraw, StateWaitingForPlayers, false},
		{StateFinished, StateWaitingForDraw, false},
		{StateFinished, StateWaitingForPlayers, false},
	}
	for _, tc := range cases {
		g := &Game{State: tc.from}
		err := g.TransitionTo(tc.to)
		if tc.ok {
			assert.NoError(t, err, "%s -> %s", tc.from, tc.to)
			assert.Equal(t, tc.to, g.State)
			continue
		}
		var terr *TransitionError
		require.ErrorAs(t, err, &terr, "%s -> %s", tc.from, tc.to)
		assert.ErrorIs(t, err, ErrInvalidTransition)
		assert.Equal(t, tc.from, g.State)
	}
}

func TestAddAndRemovePlayers(t *testing.T) {
	host := NewPlayer(uuid.New(), "host")
	g := NewGame("room", "", host)
	assert.Equal(t, host.ID, g.HostID)

	guest := NewPlayer(uuid.New(), "guest")
	require.NoError(t, g.AddPlayer(guest))
	assert.ErrorIs(t, g.AddPlayer(guest), ErrPlayerAlreadyJoined)

	for i := 0; i < MaxPlayers-2; i++ {
		require.NoError(t, g.AddPlayer(NewPlayer(uuid.New(), "extra")))
	}
	assert.ErrorIs(t, g.AddPlayer(NewPlayer(uuid.New(), "late")), ErrRoomFull)

	changed, err := g.RemovePlayer(host.ID)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, guest.ID, g.HostID)

	g.State = StateWaitingForDraw
	_, err = g.RemovePlayer(guest.ID)
	assert.ErrorIs(t, err, ErrGameAlreadyStarted)
	assert.ErrorIs(t, g.AddPlayer(NewPlayer(uuid.New(), "x")), ErrGameAlreadyStarted)
}

func TestCloneIsDeep(t *testing.T) {
	g := NewGame("room", "", NewPlayer(uuid.New(), "a"))
	g.InitializeDeck()
	require.NoError(t, g.SetAsideReservedCard())
	g.Players[0].HandCard(King)

	cp := g.Clone()
	cp.Players[0].HandCard(Guard)
	cp.Deck[0] = Princess
	*cp.ReservedCard = Countess

	assert.Equal(t, []CardType{King}, g.Players[0].HoldingCards)
	assert.NotEqual(t, Princess, g.Deck[0])
	assert.NotEqual(t, Countess, *g.ReservedCard)
}

func TestGameJSONRoundTripUsesCardNames(t *testing.T) {
	g := NewGame("room", "", NewPlayer(uuid.New(), "a"))
	g.Deck = []CardType{Guard, Princess}

	data, err := json.Marshal(g)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"deck":["Guard","Princess"]`)

	var back Game
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, g.Deck, back.Deck)
	assert.Equal(t, g.HostID, back.HostID)
}

func TestParseCardType(t *testing.T) {
	c, err := ParseCardType("chancellor")
	require.NoError(t, err)
	assert.Equal(t, Chancellor, c)

	c, err = ParseCardType("Handmaid")
	require.NoError(t, err)
	assert.Equal(t, Servant, c)

	_, err = ParseCardType("Joker")
	assert.ErrorIs(t, err, ErrUnknownCard)
}
