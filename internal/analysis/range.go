package analysis

import (
	"math/rand"
	"sort"

	"github.com/jeffeharris/my-poker-face-sub006/internal/deck"
	"github.com/jeffeharris/my-poker-face-sub006/internal/evaluator"
)

// minWeight is the floor below which a combo is dropped from a range
const minWeight = 0.05

// totalCombos is the number of distinct starting-hand combinations
const totalCombos = 1326

// weightedCombo is one concrete holding with its inclusion weight
type weightedCombo struct {
	c1, c2 deck.Card
	weight float64
}

// Range is a weighted set of plausible two-card holdings for one opponent
// at one decision point. Built fresh per decision, never persisted.
type Range struct {
	weights map[Label]float64
	combos  []weightedCombo
	cum     []float64 // cumulative weights for sampling
	total   float64
}

// newRange builds a Range from per-label weights
func newRange(weights map[Label]float64) *Range {
	r := &Range{weights: weights}
	labels := make([]Label, 0, len(weights))
	for l := range weights {
		labels = append(labels, l)
	}
	// Deterministic combo order so sampling depends only on the RNG
	sort.Slice(labels, func(i, j int) bool {
		if labels[i].High != labels[j].High {
			return labels[i].High > labels[j].High
		}
		if labels[i].Low != labels[j].Low {
			return labels[i].Low > labels[j].Low
		}
		return labels[i].Suited && !labels[j].Suited
	})

	for _, l := range labels {
		w := weights[l]
		if w < minWeight {
			continue
		}
		for _, combo := range combosFor(l) {
			r.combos = append(r.combos, weightedCombo{c1: combo[0], c2: combo[1], weight: w})
			r.total += w
			r.cum = append(r.cum, r.total)
		}
	}
	return r
}

// Size returns the number of combinations in the range
func (r *Range) Size() int {
	return len(r.combos)
}

// Fraction returns the weighted share of all starting hands included
func (r *Range) Fraction() float64 {
	return r.total / totalCombos
}

// Weight returns the inclusion weight of a label (0 when excluded)
func (r *Range) Weight(l Label) float64 {
	return r.weights[l]
}

// Contains reports whether a holding is in the range
func (r *Range) Contains(c1, c2 deck.Card) bool {
	return r.weights[LabelFor(c1, c2)] >= minWeight
}

// Sample draws one holding weighted by inclusion weight, avoiding used
// cards. Implements evaluator.Range.
func (r *Range) Sample(used evaluator.CardSet, rng *rand.Rand) (deck.Card, deck.Card, bool) {
	if len(r.combos) == 0 {
		return deck.Card{}, deck.Card{}, false
	}

	// Weighted draw with rejection on card collisions
	for attempt := 0; attempt < 64; attempt++ {
		target := rng.Float64() * r.total
		idx := sort.SearchFloat64s(r.cum, target)
		if idx >= len(r.combos) {
			idx = len(r.combos) - 1
		}
		c := r.combos[idx]
		if !used.Contains(c.c1) && !used.Contains(c.c2) {
			return c.c1, c.c2, true
		}
	}

	// Rejection starved: collect the survivors and draw once
	var total float64
	avail := make([]weightedCombo, 0, len(r.combos))
	for _, c := range r.combos {
		if !used.Contains(c.c1) && !used.Contains(c.c2) {
			avail = append(avail, c)
			total += c.weight
		}
	}
	if len(avail) == 0 {
		return deck.Card{}, deck.Card{}, false
	}
	target := rng.Float64() * total
	for _, c := range avail {
		target -= c.weight
		if target <= 0 {
			return c.c1, c.c2, true
		}
	}
	last := avail[len(avail)-1]
	return last.c1, last.c2, true
}

// Singleton returns the only available holding when exactly one combo
// survives the used-card filter. Implements evaluator.SingletonRange.
func (r *Range) Singleton(used evaluator.CardSet) (deck.Card, deck.Card, bool) {
	var found weightedCombo
	count := 0
	for _, c := range r.combos {
		if !used.Contains(c.c1) && !used.Contains(c.c2) {
			found = c
			count++
			if count > 1 {
				return deck.Card{}, deck.Card{}, false
			}
		}
	}
	if count != 1 {
		return deck.Card{}, deck.Card{}, false
	}
	return found.c1, found.c2, true
}

// Exact builds a range holding exactly one known hand (showdown comparisons)
func Exact(c1, c2 deck.Card) *Range {
	r := &Range{weights: map[Label]float64{LabelFor(c1, c2): 1}}
	r.combos = []weightedCombo{{c1: c1, c2: c2, weight: 1}}
	r.total = 1
	r.cum = []float64{1}
	return r
}
