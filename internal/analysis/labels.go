// Package analysis derives weighted opponent ranges from looseness,
// position, and observed actions, and samples them for equity estimation.
package analysis

import (
	"fmt"
	"sort"

	"github.com/jeffeharris/my-poker-face-sub006/internal/deck"
)

// Label is a canonical starting-hand category (e.g., AA, AKs, 72o).
// There are 169: 13 pairs, 78 suited, 78 offsuit.
type Label struct {
	High   deck.Rank
	Low    deck.Rank
	Suited bool
}

// String returns standard notation: "AA", "AKs", "AKo"
func (l Label) String() string {
	if l.High == l.Low {
		return fmt.Sprintf("%s%s", l.High, l.Low)
	}
	if l.Suited {
		return fmt.Sprintf("%s%ss", l.High, l.Low)
	}
	return fmt.Sprintf("%s%so", l.High, l.Low)
}

// Combos returns the number of distinct two-card combinations in the label
func (l Label) Combos() int {
	switch {
	case l.High == l.Low:
		return 6
	case l.Suited:
		return 4
	default:
		return 12
	}
}

// LabelFor returns the canonical label for two hole cards
func LabelFor(c1, c2 deck.Card) Label {
	high, low := c1.Rank, c2.Rank
	if low > high {
		high, low = low, high
	}
	return Label{High: high, Low: low, Suited: c1.Suit == c2.Suit && c1.Rank != c2.Rank}
}

// chenScore ranks starting hands with the Chen formula. Deterministic and
// close enough to simulated preflop equity for ordering purposes.
func chenScore(l Label) float64 {
	highPoints := func(r deck.Rank) float64 {
		switch r {
		case deck.Ace:
			return 10
		case deck.King:
			return 8
		case deck.Queen:
			return 7
		case deck.Jack:
			return 6
		default:
			return float64(r) / 2
		}
	}

	score := highPoints(l.High)
	if l.High == l.Low {
		score *= 2
		if score < 5 {
			score = 5
		}
		return score
	}

	if l.Suited {
		score += 2
	}

	gap := int(l.High) - int(l.Low) - 1
	switch {
	case gap == 1:
		score--
	case gap == 2:
		score -= 2
	case gap == 3:
		score -= 4
	case gap >= 4:
		score -= 5
	}

	// Connector bonus for low straight-making hands
	if gap <= 1 && l.High < deck.Queen {
		score++
	}

	return score
}

// allLabels is every starting hand ordered strongest first.
// Ties in Chen score break deterministically on ranks then suitedness.
var allLabels = buildOrderedLabels()

func buildOrderedLabels() []Label {
	labels := make([]Label, 0, 169)
	for high := deck.Ace; high >= deck.Two; high-- {
		for low := high; low >= deck.Two; low-- {
			if high == low {
				labels = append(labels, Label{High: high, Low: low})
				continue
			}
			labels = append(labels, Label{High: high, Low: low, Suited: true})
			labels = append(labels, Label{High: high, Low: low, Suited: false})
		}
	}
	sort.SliceStable(labels, func(i, j int) bool {
		si, sj := chenScore(labels[i]), chenScore(labels[j])
		if si != sj {
			return si > sj
		}
		if labels[i].High != labels[j].High {
			return labels[i].High > labels[j].High
		}
		if labels[i].Low != labels[j].Low {
			return labels[i].Low > labels[j].Low
		}
		return labels[i].Suited && !labels[j].Suited
	})
	return labels
}

// OrderedLabels returns all 169 labels, strongest first
func OrderedLabels() []Label {
	out := make([]Label, len(allLabels))
	copy(out, allLabels)
	return out
}

// combosFor expands a label into concrete two-card combinations
func combosFor(l Label) [][2]deck.Card {
	if l.High == l.Low {
		combos := make([][2]deck.Card, 0, 6)
		for s1 := deck.Spades; s1 <= deck.Clubs; s1++ {
			for s2 := s1 + 1; s2 <= deck.Clubs; s2++ {
				combos = append(combos, [2]deck.Card{
					{Suit: s1, Rank: l.High},
					{Suit: s2, Rank: l.High},
				})
			}
		}
		return combos
	}

	if l.Suited {
		combos := make([][2]deck.Card, 0, 4)
		for s := deck.Spades; s <= deck.Clubs; s++ {
			combos = append(combos, [2]deck.Card{
				{Suit: s, Rank: l.High},
				{Suit: s, Rank: l.Low},
			})
		}
		return combos
	}

	combos := make([][2]deck.Card, 0, 12)
	for s1 := deck.Spades; s1 <= deck.Clubs; s1++ {
		for s2 := deck.Spades; s2 <= deck.Clubs; s2++ {
			if s1 == s2 {
				continue
			}
			combos = append(combos, [2]deck.Card{
				{Suit: s1, Rank: l.High},
				{Suit: s2, Rank: l.Low},
			})
		}
	}
	return combos
}
