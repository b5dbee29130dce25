package profile

// Classification thresholds. Defined once here; every consumer (range
// derivation, option style tags, strategy adjustments) imports these.
const (
	// MinClassifyHands is the observation floor below which an opponent
	// classifies as Balanced regardless of stats
	MinClassifyHands = 5

	// LooseVPIP splits tight from loose on observed VPIP
	LooseVPIP = 0.28

	// AggressiveAF splits passive from aggressive on aggression factor
	AggressiveAF = 1.5

	// StaticLoose and StaticAggressive split static persona parameters
	StaticLoose      = 0.5
	StaticAggressive = 0.5

	// StaticNeutralBand is the half-width around both static splits
	// inside which a persona classifies as Balanced
	StaticNeutralBand = 0.1

	// MaxCallShift bounds adaptive call-threshold drift (equity points)
	MaxCallShift = 0.08

	// MaxBluffScale and MinBluffScale bound adaptive bluff frequency
	MaxBluffScale = 1.5
	MinBluffScale = 0.6
)

// Archetype is a coarse play-style classification
type Archetype int

const (
	Balanced Archetype = iota
	TightAggressive
	TightPassive
	LooseAggressive
	LoosePassive
)

// String returns the archetype name
func (a Archetype) String() string {
	switch a {
	case TightAggressive:
		return "tight-aggressive"
	case TightPassive:
		return "tight-passive"
	case LooseAggressive:
		return "loose-aggressive"
	case LoosePassive:
		return "loose-passive"
	default:
		return "balanced"
	}
}

// Tight reports whether the archetype plays narrow ranges
func (a Archetype) Tight() bool {
	return a == TightAggressive || a == TightPassive
}

// Aggressive reports whether the archetype bets and raises frequently
func (a Archetype) Aggressive() bool {
	return a == TightAggressive || a == LooseAggressive
}

// Profile is a classified opponent: archetype plus the numeric parameters
// derived from it. Read-only once computed for a decision.
type Profile struct {
	Archetype  Archetype
	Looseness  float64 // drives range width in [0,1]
	Aggression float64 // drives narrowing and call-threshold shifts
}

// ClassifyStats maps observed stats onto a profile. Below the observation
// floor everything is Balanced with neutral parameters.
func ClassifyStats(s Stats) Profile {
	if s.HandsSeen < MinClassifyHands {
		return Profile{Archetype: Balanced, Looseness: 0.5, Aggression: 0.5}
	}

	vpip := s.VPIP()
	af := s.AggressionFactor()
	loose := vpip >= LooseVPIP
	aggressive := af >= AggressiveAF

	p := Profile{
		Looseness:  clamp01(vpip * 1.6), // VPIP 0.62+ saturates at maximum width
		Aggression: clamp01(af / 3),
	}
	switch {
	case loose && aggressive:
		p.Archetype = LooseAggressive
	case loose:
		p.Archetype = LoosePassive
	case aggressive:
		p.Archetype = TightAggressive
	default:
		p.Archetype = TightPassive
	}
	return p
}

// ClassifyStatic maps a configured looseness/aggression pair (a persona)
// onto a profile without requiring observed hands.
func ClassifyStatic(looseness, aggression float64) Profile {
	looseness = clamp01(looseness)
	aggression = clamp01(aggression)

	p := Profile{Looseness: looseness, Aggression: aggression}
	if abs(looseness-StaticLoose) <= StaticNeutralBand &&
		abs(aggression-StaticAggressive) <= StaticNeutralBand {
		p.Archetype = Balanced
		return p
	}
	loose := looseness >= StaticLoose
	aggressive := aggression >= StaticAggressive
	switch {
	case loose && aggressive:
		p.Archetype = LooseAggressive
	case loose:
		p.Archetype = LoosePassive
	case aggressive:
		p.Archetype = TightAggressive
	default:
		p.Archetype = TightPassive
	}
	return p
}

// CallShift returns the adaptive shift to the equity needed to call when
// facing this opponent: negative (call lighter) against aggressive
// opponents whose bets are weaker on average, positive against passive
// ones. Bounded by MaxCallShift to prevent runaway drift.
func (p Profile) CallShift() float64 {
	shift := (0.5 - p.Aggression) * 2 * MaxCallShift
	if shift > MaxCallShift {
		shift = MaxCallShift
	}
	if shift < -MaxCallShift {
		shift = -MaxCallShift
	}
	return shift
}

// BluffScale returns the bluff-frequency multiplier against an opponent
// with the given fold-to-bet rate: up to 1.5x against frequent folders,
// down to 0.6x against calling stations.
func BluffScale(s Stats) float64 {
	if s.BetsFaced < MinClassifyHands {
		return 1
	}
	scale := 0.5 + s.FoldToBet()
	if scale > MaxBluffScale {
		scale = MaxBluffScale
	}
	if scale < MinBluffScale {
		scale = MinBluffScale
	}
	return scale
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
