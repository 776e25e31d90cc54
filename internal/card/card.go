package card

import (
	"fmt"
	"strconv"
	"strings"
)

// Card describes a card identity decoded from a catalog name
type Card struct {
	Name string // Catalog key (e.g., 7_of_hearts, king_of_spades)
	Rank string // Leading token of the name (ace, 2..10, jack, queen, king)
	Suit string // Token after "_of_", empty when the name has none
}

// Suits and ranks of a standard 52 card deck
var (
	Suits = []string{"clubs", "diamonds", "hearts", "spades"}
	Ranks = []string{"ace", "2", "3", "4", "5", "6", "7", "8", "9", "10", "jack", "queen", "king"}
)

const (
	BlackjackLimit = 21
	aceBonus       = 10
)

// Parse splits a catalog name into rank and suit. The rank is the token
// before the first underscore; names are not required to have a suit.
func Parse(name string) Card {
	lower := strings.ToLower(name)
	rank, rest, _ := strings.Cut(lower, "_")
	suit := strings.TrimPrefix(rest, "of_")
	return Card{Name: name, Rank: rank, Suit: suit}
}

// Value returns the blackjack value of the card with aces counted as 1.
// Unknown ranks are worth 0.
func (c Card) Value() int {
	switch c.Rank {
	case "ace":
		return 1
	case "jack", "queen", "king":
		return 10
	}
	n, err := strconv.Atoi(c.Rank)
	if err != nil {
		return 0
	}
	return n
}

// IsAce reports whether the card counts as an ace
func (c Card) IsAce() bool {
	return c.Rank == "ace"
}

// Value returns the blackjack value of a catalog name
func Value(name string) int {
	return Parse(name).Value()
}

// Name builds the catalog key for a rank and suit
func Name(rank, suit string) string {
	return fmt.Sprintf("%s_of_%s", rank, suit)
}

// StandardNames returns the 52 catalog keys of a standard deck
func StandardNames() []string {
	names := make([]string, 0, len(Suits)*len(Ranks))
	for _, suit := range Suits {
		for _, rank := range Ranks {
			names = append(names, Name(rank, suit))
		}
	}
	return names
}

// Total sums card values counting aces as 1, then upgrades aces to 11 one
// at a time while the total stays within 21. Every ace is interchangeable,
// so the result does not depend on order.
func Total(values []int) int {
	total, aces := 0, 0
	for _, v := range values {
		if v == 1 {
			aces++
		}
		total += v
	}
	for aces > 0 && total+aceBonus <= BlackjackLimit {
		total += aceBonus
		aces--
	}
	return total
}
