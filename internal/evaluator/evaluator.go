// Package evaluator ranks 5-7 card poker hands and estimates showdown
// equity with Monte Carlo simulation.
package evaluator

import (
	"math/bits"

	"github.com/jeffeharris/my-poker-face-sub006/internal/deck"
)

// Category is a hand category, ordered weakest to strongest
type Category int

const (
	HighCard Category = iota
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
)

// String returns a description of the category
func (c Category) String() string {
	switch c {
	case HighCard:
		return "High Card"
	case Pair:
		return "One Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	case RoyalFlush:
		return "Royal Flush"
	default:
		return "Unknown"
	}
}

// Strength is a total-ordered hand strength: higher always beats lower,
// equal values are an exact tie. Encoded as category<<20 plus up to five
// rank nibbles of tiebreak information, most significant first.
type Strength uint32

// Category extracts the hand category
func (s Strength) Category() Category {
	return Category(s >> 20)
}

// Compare returns 1 if s beats other, -1 if other beats s, 0 on a tie
func (s Strength) Compare(other Strength) int {
	if s > other {
		return 1
	}
	if s < other {
		return -1
	}
	return 0
}

// String returns the category description
func (s Strength) String() string {
	return s.Category().String()
}

// strength packs a category and up to five tiebreak ranks (high to low)
func strength(cat Category, ranks ...int) Strength {
	v := uint32(cat) << 20
	shift := 16
	for _, r := range ranks {
		v |= uint32(r) << shift
		shift -= 4
	}
	return Strength(v)
}

// suitMask returns the 13-bit rank mask for one suit.
// Bit i is set when rank i+2 is present.
func suitMask(cards []deck.Card, suit deck.Suit) uint16 {
	var m uint16
	for _, c := range cards {
		if c.Suit == suit {
			m |= 1 << (int(c.Rank) - 2)
		}
	}
	return m
}

// straightHigh returns the high rank of the best straight in a rank mask,
// or 0 when no straight exists. The wheel (A-5) reports 5.
func straightHigh(ranks uint16) int {
	// A-high down to 6-high
	mask := uint16(0x1F00)
	for high := int(deck.Ace); high >= int(deck.Six); high-- {
		if ranks&mask == mask {
			return high
		}
		mask >>= 1
	}
	// Wheel: A,2,3,4,5
	if ranks&0x100F == 0x100F {
		return int(deck.Five)
	}
	return 0
}

// topRanks returns the highest n set ranks of a mask, best first
func topRanks(ranks uint16, n int) []int {
	out := make([]int, 0, n)
	for bit := 12; bit >= 0 && len(out) < n; bit-- {
		if ranks&(1<<bit) != 0 {
			out = append(out, bit+2)
		}
	}
	return out
}

// Evaluate ranks the best 5-card hand available from 5-7 cards.
// Pure and order-independent: permuting the input never changes the result.
func Evaluate(cards []deck.Card) Strength {
	suits := [4]uint16{
		suitMask(cards, deck.Spades),
		suitMask(cards, deck.Hearts),
		suitMask(cards, deck.Diamonds),
		suitMask(cards, deck.Clubs),
	}
	ranks := suits[0] | suits[1] | suits[2] | suits[3]

	// Straight flush: a straight within a single suit's mask
	for _, sm := range suits {
		if bits.OnesCount16(sm) < 5 {
			continue
		}
		if high := straightHigh(sm); high != 0 {
			if high == int(deck.Ace) {
				return strength(RoyalFlush)
			}
			return strength(StraightFlush, high)
		}
	}

	// Rank multiplicities
	var counts [15]int
	for _, c := range cards {
		counts[c.Rank]++
	}
	quad, trip, secondTrip, highPair, lowPair := 0, 0, 0, 0, 0
	for r := int(deck.Two); r <= int(deck.Ace); r++ {
		switch counts[r] {
		case 4:
			quad = r
		case 3:
			secondTrip = trip
			trip = r
		case 2:
			lowPair = highPair
			highPair = r
		}
	}

	if quad != 0 {
		kickerMask := ranks &^ (1 << (quad - 2))
		kicker := 0
		if ks := topRanks(kickerMask, 1); len(ks) == 1 {
			kicker = ks[0]
		}
		return strength(FourOfAKind, quad, kicker)
	}

	if trip != 0 && (highPair != 0 || secondTrip != 0) {
		// Two trips: the lower one supplies the pair
		pair := highPair
		if secondTrip > pair {
			pair = secondTrip
		}
		return strength(FullHouse, trip, pair)
	}

	for _, sm := range suits {
		if bits.OnesCount16(sm) >= 5 {
			return strength(Flush, topRanks(sm, 5)...)
		}
	}

	if high := straightHigh(ranks); high != 0 {
		return strength(Straight, high)
	}

	if trip != 0 {
		kickers := topRanks(ranks&^(1<<(trip-2)), 2)
		return strength(ThreeOfAKind, append([]int{trip}, kickers...)...)
	}

	if highPair != 0 && lowPair != 0 {
		kickerMask := ranks &^ (1<<(highPair-2) | 1<<(lowPair-2))
		kicker := 0
		if ks := topRanks(kickerMask, 1); len(ks) == 1 {
			kicker = ks[0]
		}
		return strength(TwoPair, highPair, lowPair, kicker)
	}

	if highPair != 0 {
		kickers := topRanks(ranks&^(1<<(highPair-2)), 3)
		return strength(Pair, append([]int{highPair}, kickers...)...)
	}

	return strength(HighCard, topRanks(ranks, 5)...)
}
