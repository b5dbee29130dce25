package deck

import (
	"fmt"
	"strings"
)

// Suit represents a card suit
type Suit int

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
)

// String returns the string representation of a suit
func (s Suit) String() string {
	switch s {
	case Spades:
		return "♠"
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	default:
		return "?"
	}
}

// Letter returns the ASCII letter for a suit (s, h, d, c)
func (s Suit) Letter() string {
	switch s {
	case Spades:
		return "s"
	case Hearts:
		return "h"
	case Diamonds:
		return "d"
	case Clubs:
		return "c"
	default:
		return "?"
	}
}

// IsRed returns true if the suit is red (Hearts or Diamonds)
func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}

// Rank represents a card rank
type Rank int

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// String returns the string representation of a rank
func (r Rank) String() string {
	switch r {
	case Two:
		return "2"
	case Three:
		return "3"
	case Four:
		return "4"
	case Five:
		return "5"
	case Six:
		return "6"
	case Seven:
		return "7"
	case Eight:
		return "8"
	case Nine:
		return "9"
	case Ten:
		return "T"
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	case Ace:
		return "A"
	default:
		return "?"
	}
}

// Card represents a playing card
type Card struct {
	Suit Suit
	Rank Rank
}

// NewCard creates a new card
func NewCard(suit Suit, rank Rank) Card {
	return Card{Suit: suit, Rank: rank}
}

// String returns the string representation of a card (e.g., "A♠")
func (c Card) String() string {
	return fmt.Sprintf("%s%s", c.Rank, c.Suit)
}

// Notation returns the ASCII notation of a card (e.g., "As")
func (c Card) Notation() string {
	return c.Rank.String() + c.Suit.Letter()
}

// IsRed returns true if the card is red
func (c Card) IsRed() bool {
	return c.Suit.IsRed()
}

// parseRank converts a rank character to a Rank, or 0 if invalid
func parseRank(ch byte) Rank {
	switch ch {
	case '2', '3', '4', '5', '6', '7', '8', '9':
		return Rank(ch - '0')
	case 'T', 't':
		return Ten
	case 'J', 'j':
		return Jack
	case 'Q', 'q':
		return Queen
	case 'K', 'k':
		return King
	case 'A', 'a':
		return Ace
	default:
		return 0
	}
}

// parseSuit converts a suit character to a Suit, or -1 if invalid
func parseSuit(ch byte) Suit {
	switch ch {
	case 's', 'S':
		return Spades
	case 'h', 'H':
		return Hearts
	case 'd', 'D':
		return Diamonds
	case 'c', 'C':
		return Clubs
	default:
		return Suit(-1)
	}
}

// ParseCard parses a two-character card notation like "As" or "td"
func ParseCard(s string) (Card, error) {
	if len(s) != 2 {
		return Card{}, fmt.Errorf("invalid card notation %q", s)
	}
	rank := parseRank(s[0])
	suit := parseSuit(s[1])
	if rank == 0 || suit < 0 {
		return Card{}, fmt.Errorf("invalid card notation %q", s)
	}
	return Card{Suit: suit, Rank: rank}, nil
}

// ParseCards parses concatenated or space-separated card notation
// (e.g., "AsKd" or "As Kd Th")
func ParseCards(s string) ([]Card, error) {
	s = strings.ReplaceAll(s, " ", "")
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("invalid cards notation %q", s)
	}
	cards := make([]Card, 0, len(s)/2)
	for i := 0; i < len(s); i += 2 {
		card, err := ParseCard(s[i : i+2])
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// FormatCards renders cards as space-separated suit-glyph notation
func FormatCards(cards []Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
