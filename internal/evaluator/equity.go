package evaluator

import (
	"errors"
	"math/rand"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/jeffeharris/my-poker-face-sub006/internal/deck"
)

// ErrInsufficientSamples reports that the Monte Carlo loop stopped (deadline
// or collision starvation) before reaching a stable sample count. The partial
// estimate is still returned and usable.
var ErrInsufficientSamples = errors.New("equity estimate below minimum sample count")

// MinStableSamples is the valid-sample floor below which an estimate is
// flagged as noisy. Blocking thresholds need 1-2 percentage point stability.
const MinStableSamples = 1000

// CardSet is a 52-bit set of cards: bit index = (rank-2)*4 + suit
type CardSet uint64

func cardIndex(c deck.Card) int {
	return (int(c.Rank)-2)*4 + int(c.Suit)
}

// Add adds a card to the set
func (cs *CardSet) Add(c deck.Card) {
	*cs |= 1 << cardIndex(c)
}

// Contains checks whether a card is in the set
func (cs CardSet) Contains(c deck.Card) bool {
	return cs&(1<<cardIndex(c)) != 0
}

// NewCardSet builds a CardSet from a slice of cards
func NewCardSet(cards []deck.Card) CardSet {
	var cs CardSet
	for _, c := range cards {
		cs.Add(c)
	}
	return cs
}

// Range samples plausible two-card holdings for one opponent.
type Range interface {
	// Sample draws one weighted holding that avoids the used cards.
	// Returns false when no holding in the range is available.
	Sample(used CardSet, rng *rand.Rand) (deck.Card, deck.Card, bool)
}

// SingletonRange is implemented by ranges that can collapse to exactly one
// holding, enabling the exact showdown path on the river.
type SingletonRange interface {
	Singleton(used CardSet) (deck.Card, deck.Card, bool)
}

// RandomRange is a uniform range over all two-card holdings
type RandomRange struct{}

// Sample draws two distinct unused cards uniformly
func (RandomRange) Sample(used CardSet, rng *rand.Rand) (deck.Card, deck.Card, bool) {
	avail := make([]deck.Card, 0, 52)
	for suit := deck.Spades; suit <= deck.Clubs; suit++ {
		for rank := deck.Two; rank <= deck.Ace; rank++ {
			c := deck.Card{Suit: suit, Rank: rank}
			if !used.Contains(c) {
				avail = append(avail, c)
			}
		}
	}
	if len(avail) < 2 {
		return deck.Card{}, deck.Card{}, false
	}
	i := rng.Intn(len(avail))
	j := rng.Intn(len(avail) - 1)
	if j >= i {
		j++
	}
	return avail[i], avail[j], true
}

// Equity is a win/tie/lose probability triple
type Equity struct {
	Win     float64
	Tie     float64
	Lose    float64
	Samples int
	Exact   bool // true when computed by direct showdown, not sampling
}

// Value returns win probability plus half of ties
func (e Equity) Value() float64 {
	return e.Win + e.Tie/2
}

// EstimatorConfig controls the Monte Carlo budget
type EstimatorConfig struct {
	Samples  int           // total samples across workers
	Deadline time.Duration // soft wall-clock budget; 0 disables
	Workers  int           // 0 means NumCPU, capped at 8
	Clock    quartz.Clock  // nil means the real clock
}

// DefaultEstimatorConfig returns the standard sample/deadline budget
func DefaultEstimatorConfig() EstimatorConfig {
	return EstimatorConfig{
		Samples:  5000,
		Deadline: 150 * time.Millisecond,
	}
}

// Estimator runs Monte Carlo equity estimation against opponent ranges
type Estimator struct {
	cfg EstimatorConfig
}

// NewEstimator creates an estimator with the given budget
func NewEstimator(cfg EstimatorConfig) *Estimator {
	if cfg.Samples <= 0 {
		cfg.Samples = DefaultEstimatorConfig().Samples
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Workers > 8 {
		cfg.Workers = 8
	}
	if cfg.Clock == nil {
		cfg.Clock = quartz.NewReal()
	}
	return &Estimator{cfg: cfg}
}

// Estimate computes the hero's win/tie/lose probabilities against one or
// more opponent ranges. When the board is complete and every range has
// collapsed to a single holding, it performs an exact showdown comparison.
// A partial estimate plus ErrInsufficientSamples is returned when the
// deadline fires before MinStableSamples valid samples accumulate.
func (e *Estimator) Estimate(hole, board []deck.Card, opponents []Range, rng *rand.Rand) (Equity, error) {
	if len(hole) != 2 || len(board) > 5 || len(opponents) == 0 {
		return Equity{}, errors.New("estimate requires 2 hole cards, <=5 board cards, and at least one opponent")
	}

	base := NewCardSet(hole)
	for _, c := range board {
		base.Add(c)
	}

	if eq, ok := e.exactShowdown(hole, board, opponents, base); ok {
		return eq, nil
	}

	var stopped atomic.Bool
	if e.cfg.Deadline > 0 {
		timer := e.cfg.Clock.AfterFunc(e.cfg.Deadline, func() {
			stopped.Store(true)
		})
		defer timer.Stop()
	}

	perWorker := e.cfg.Samples / e.cfg.Workers
	remainder := e.cfg.Samples % e.cfg.Workers

	results := make([]tally, e.cfg.Workers)
	var g errgroup.Group
	for w := 0; w < e.cfg.Workers; w++ {
		samples := perWorker
		if w < remainder {
			samples++
		}
		seed := rng.Int63()
		g.Go(func() error {
			workerRng := rand.New(rand.NewSource(seed))
			results[w] = simulate(hole, board, opponents, base, samples, workerRng, &stopped)
			return nil
		})
	}
	_ = g.Wait()

	var total tally
	for _, r := range results {
		total.wins += r.wins
		total.ties += r.ties
		total.valid += r.valid
	}

	if total.valid == 0 {
		return Equity{}, ErrInsufficientSamples
	}

	eq := Equity{
		Win:     float64(total.wins) / float64(total.valid),
		Tie:     float64(total.ties) / float64(total.valid),
		Samples: total.valid,
	}
	eq.Lose = 1 - eq.Win - eq.Tie

	if total.valid < MinStableSamples {
		return eq, ErrInsufficientSamples
	}
	return eq, nil
}

// exactShowdown handles the completed-board, fully-determined case
func (e *Estimator) exactShowdown(hole, board []deck.Card, opponents []Range, base CardSet) (Equity, bool) {
	if len(board) != 5 {
		return Equity{}, false
	}

	used := base
	hero := Evaluate(append(append([]deck.Card{}, hole...), board...))

	tied := false
	for _, opp := range opponents {
		sr, ok := opp.(SingletonRange)
		if !ok {
			return Equity{}, false
		}
		c1, c2, ok := sr.Singleton(used)
		if !ok {
			return Equity{}, false
		}
		used.Add(c1)
		used.Add(c2)
		oppStrength := Evaluate(append([]deck.Card{c1, c2}, board...))
		switch hero.Compare(oppStrength) {
		case -1:
			return Equity{Lose: 1, Exact: true}, true
		case 0:
			tied = true
		}
	}

	if tied {
		return Equity{Tie: 1, Exact: true}, true
	}
	return Equity{Win: 1, Exact: true}, true
}

type tally struct {
	wins  int
	ties  int
	valid int
}

// simulate runs one worker's share of the Monte Carlo loop
func simulate(hole, board []deck.Card, opponents []Range, base CardSet, samples int, rng *rand.Rand, stopped *atomic.Bool) tally {
	var t tally

	finalBoard := make([]deck.Card, 5)
	heroCards := make([]deck.Card, 7)
	oppCards := make([]deck.Card, 7)
	oppHoles := make([][2]deck.Card, len(opponents))
	candidates := make([]deck.Card, 0, 52)

	copy(finalBoard, board)
	boardNeeded := 5 - len(board)

	for i := 0; i < samples; i++ {
		if stopped.Load() {
			break
		}

		// Sample one holding per opponent without collisions
		used := base
		ok := true
		for oi, opp := range opponents {
			c1, c2, sampled := opp.Sample(used, rng)
			if !sampled {
				ok = false
				break
			}
			used.Add(c1)
			used.Add(c2)
			oppHoles[oi] = [2]deck.Card{c1, c2}
		}
		if !ok {
			continue
		}

		// Complete the board uniformly from the remaining cards
		candidates = candidates[:0]
		for suit := deck.Spades; suit <= deck.Clubs; suit++ {
			for rank := deck.Two; rank <= deck.Ace; rank++ {
				c := deck.Card{Suit: suit, Rank: rank}
				if !used.Contains(c) {
					candidates = append(candidates, c)
				}
			}
		}
		if len(candidates) < boardNeeded {
			continue
		}
		for filled := 0; filled < boardNeeded; filled++ {
			idx := rng.Intn(len(candidates) - filled)
			finalBoard[len(board)+filled] = candidates[idx]
			candidates[idx], candidates[len(candidates)-1-filled] =
				candidates[len(candidates)-1-filled], candidates[idx]
		}

		copy(heroCards[:2], hole)
		copy(heroCards[2:], finalBoard)
		hero := Evaluate(heroCards)

		win, tie := true, false
		for _, oh := range oppHoles {
			oppCards[0], oppCards[1] = oh[0], oh[1]
			copy(oppCards[2:], finalBoard)
			switch hero.Compare(Evaluate(oppCards)) {
			case -1:
				win, tie = false, false
			case 0:
				if win {
					tie = true
				}
			}
			if !win && !tie {
				break
			}
		}

		if win && !tie {
			t.wins++
		} else if tie {
			t.ties++
		}
		t.valid++
	}

	return t
}
