// Package profile tracks per-opponent statistics and classifies play
// styles into archetypes. All tightness/aggression thresholds live here;
// other packages import them, never redefine them.
package profile

// Stats holds running aggregates for one opponent. Counts only, so the
// derived rates stay in [0,1] by construction.
type Stats struct {
	HandsSeen int // completed hands observed

	VPIPHands int // hands where they voluntarily put chips in preflop
	PFRHands  int // hands where they raised preflop

	AggressiveActions int // postflop bets and raises
	PassiveActions    int // postflop calls

	BetsFaced  int // times they faced a bet or raise
	FoldsToBet int // times they folded facing one
}

// VPIP returns the voluntarily-put-in-pot rate
func (s Stats) VPIP() float64 {
	if s.HandsSeen == 0 {
		return 0
	}
	return float64(s.VPIPHands) / float64(s.HandsSeen)
}

// PFR returns the preflop raise rate
func (s Stats) PFR() float64 {
	if s.HandsSeen == 0 {
		return 0
	}
	return float64(s.PFRHands) / float64(s.HandsSeen)
}

// AggressionFactor returns the ratio of aggressive to passive postflop
// actions. With no passive actions observed, each aggressive action
// counts as one full point.
func (s Stats) AggressionFactor() float64 {
	if s.PassiveActions == 0 {
		return float64(s.AggressiveActions)
	}
	return float64(s.AggressiveActions) / float64(s.PassiveActions)
}

// FoldToBet returns how often they fold when facing a bet or raise
func (s Stats) FoldToBet() float64 {
	if s.BetsFaced == 0 {
		return 0
	}
	return float64(s.FoldsToBet) / float64(s.BetsFaced)
}

// HandObservation summarizes one completed hand for one opponent
type HandObservation struct {
	VoluntarilyPlayed bool
	RaisedPreflop     bool
	AggressiveActions int
	PassiveActions    int
	BetsFaced         int
	FoldsToBet        int
}

// record merges one hand observation into the aggregates
func (s *Stats) record(obs HandObservation) {
	s.HandsSeen++
	if obs.VoluntarilyPlayed {
		s.VPIPHands++
	}
	if obs.RaisedPreflop {
		s.PFRHands++
	}
	s.AggressiveActions += obs.AggressiveActions
	s.PassiveActions += obs.PassiveActions
	s.BetsFaced += obs.BetsFaced
	s.FoldsToBet += obs.FoldsToBet
}
