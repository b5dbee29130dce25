// Package statistics aggregates per-session simulation results: big
// blinds won per hand, showdown versus fold-equity splits, and how often
// decisions were resolved by fallback substitution.
package statistics

import (
	"fmt"
	"math"
	"sort"
)

// HandResult is one completed hand from the agent's perspective
type HandResult struct {
	NetBB          float64 // net big blinds won or lost
	Seed           int64   // RNG seed for this hand, for replay
	WentToShowdown bool
	FinalPot       int // final pot in chips
	BigBlind       int
	Decisions      int // decisions the agent made this hand
	Fallbacks      int // decisions resolved by fallback substitution
}

// Session accumulates hand results for one simulation run
type Session struct {
	Hands  int
	SumBB  float64
	SumBB2 float64 // sum of squares for variance
	Values []float64

	ShowdownWins    int
	NonShowdownWins int
	ShowdownBB      float64
	NonShowdownBB   float64
	AllBB           float64 // ledger total for consistency checks

	Decisions int
	Fallbacks int

	MaxPotBB float64
}

// Add incorporates one hand result
func (s *Session) Add(r HandResult) {
	net := r.NetBB
	s.Hands++
	s.SumBB += net
	s.SumBB2 += net * net
	s.Values = append(s.Values, net)

	if net > 0 {
		if r.WentToShowdown {
			s.ShowdownWins++
		} else {
			s.NonShowdownWins++
		}
	}
	if r.WentToShowdown {
		s.ShowdownBB += net
	} else {
		s.NonShowdownBB += net
	}
	s.AllBB += net

	s.Decisions += r.Decisions
	s.Fallbacks += r.Fallbacks

	if r.BigBlind > 0 {
		if potBB := float64(r.FinalPot) / float64(r.BigBlind); potBB > s.MaxPotBB {
			s.MaxPotBB = potBB
		}
	}
}

// Merge folds another session's tallies into this one
func (s *Session) Merge(o *Session) {
	s.Hands += o.Hands
	s.SumBB += o.SumBB
	s.SumBB2 += o.SumBB2
	s.Values = append(s.Values, o.Values...)
	s.ShowdownWins += o.ShowdownWins
	s.NonShowdownWins += o.NonShowdownWins
	s.ShowdownBB += o.ShowdownBB
	s.NonShowdownBB += o.NonShowdownBB
	s.AllBB += o.AllBB
	s.Decisions += o.Decisions
	s.Fallbacks += o.Fallbacks
	if o.MaxPotBB > s.MaxPotBB {
		s.MaxPotBB = o.MaxPotBB
	}
}

// Mean returns big blinds per hand
func (s *Session) Mean() float64 {
	if s.Hands == 0 {
		return 0
	}
	return s.SumBB / float64(s.Hands)
}

// Variance returns the sample variance of per-hand results
func (s *Session) Variance() float64 {
	if s.Hands < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.SumBB2 - float64(s.Hands)*mean*mean) / float64(s.Hands-1)
}

// StdDev returns the sample standard deviation
func (s *Session) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean
func (s *Session) StdError() float64 {
	if s.Hands == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Hands))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
func (s *Session) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// Median returns the median per-hand result
func (s *Session) Median() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// FallbackRate returns the fraction of decisions resolved by fallback
func (s *Session) FallbackRate() float64 {
	if s.Decisions == 0 {
		return 0
	}
	return float64(s.Fallbacks) / float64(s.Decisions)
}

// Validate checks internal consistency of the tallies
func (s *Session) Validate() error {
	if math.Abs(s.AllBB-s.ShowdownBB-s.NonShowdownBB) > 1e-6 {
		return fmt.Errorf("ledger mismatch: all=%.6f showdown=%.6f non-showdown=%.6f",
			s.AllBB, s.ShowdownBB, s.NonShowdownBB)
	}
	if len(s.Values) != s.Hands {
		return fmt.Errorf("values length %d does not match %d hands", len(s.Values), s.Hands)
	}
	if wins := s.ShowdownWins + s.NonShowdownWins; wins > s.Hands {
		return fmt.Errorf("%d wins exceed %d hands", wins, s.Hands)
	}
	if s.Fallbacks > s.Decisions {
		return fmt.Errorf("%d fallbacks exceed %d decisions", s.Fallbacks, s.Decisions)
	}
	return nil
}

// Summary renders a one-line report
func (s *Session) Summary() string {
	lo, hi := s.ConfidenceInterval95()
	return fmt.Sprintf("%d hands, %.3f bb/hand (95%% CI %.3f..%.3f), fallback %.1f%%",
		s.Hands, s.Mean(), lo, hi, s.FallbackRate()*100)
}
