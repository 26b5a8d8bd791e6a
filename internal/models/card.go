// internal/models/card.go
package models

import (
	"fmt"
	"strings"
)

// CardType identifies a card rank. The numeric value is the rank value used for comparisons.
type CardType int

const (
	Spy CardType = iota
	Guard
	Priest
	Baron
	Servant
	Prince
	Chancellor
	King
	Countess
	Princess
)

// CardTypeCount is the number of distinct card ranks.
const CardTypeCount = int(Princess) + 1

var cardNames = [CardTypeCount]string{
	Spy:        "Spy",
	Guard:      "Guard",
	Priest:     "Priest",
	Baron:      "Baron",
	Servant:    "Servant",
	Prince:     "Prince",
	Chancellor: "Chancellor",
	King:       "King",
	Countess:   "Countess",
	Princess:   "Princess",
}

// Distribution is the number of copies of each rank in a fresh deck.
var Distribution = [CardTypeCount]int{
	Spy:        2,
	Guard:      6,
	Priest:     2,
	Baron:      2,
	Servant:    2,
	Prince:     2,
	Chancellor: 2,
	King:       1,
	Countess:   1,
	Princess:   1,
}

// DeckSize is the total number of cards in play during a round.
const DeckSize = 21

// AllCardTypes returns every rank in ascending value order.
func AllCardTypes() []CardType {
	out := make([]CardType, CardTypeCount)
	for i := range out {
		out[i] = CardType(i)
	}
	return out
}

// Value returns the rank value of the card.
func (c CardType) Value() int {
	return int(c)
}

// Valid reports whether c is a known rank.
func (c CardType) Valid() bool {
	return c >= Spy && c <= Princess
}

func (c CardType) String() string {
	if !c.Valid() {
		return fmt.Sprintf("CardType(%d)", int(c))
	}
	return cardNames[c]
}

// ParseCardType resolves a rank by name, case-insensitively. "Handmaid" is accepted for Servant.
func ParseCardType(s string) (CardType, error) {
	name := strings.TrimSpace(s)
	if strings.EqualFold(name, "handmaid") {
		return Servant, nil
	}
	for i, n := range cardNames {
		if strings.EqualFold(n, name) {
			return CardType(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCard, s)
}

// MarshalText encodes the card by name so JSON payloads carry "Guard" rather than 1.
func (c CardType) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCard, int(c))
	}
	return []byte(cardNames[c]), nil
}

func (c *CardType) UnmarshalText(text []byte) error {
	parsed, err := ParseCardType(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// CardPtr returns a pointer to a copy of c, handy for optional payload fields.
func CardPtr(c CardType) *CardType {
	return &c
}
