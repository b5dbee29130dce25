package options

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeffeharris/my-poker-face-sub006/internal/betting"
	"github.com/jeffeharris/my-poker-face-sub006/internal/profile"
)

var neutral = profile.Profile{Archetype: profile.Balanced, Looseness: 0.5, Aggression: 0.5}

// facingBet builds a two-player round where seat 0 faces a bet
func facingBet(t *testing.T, stack, pot, bet int) *betting.Round {
	t.Helper()
	r := betting.NewRound([]int{stack, 1000}, 2, betting.DefaultRaiseCap)
	r.Pot = pot - bet
	require.NoError(t, r.Apply(1, betting.Decision{Action: betting.Raise, Amount: bet}))
	return r
}

func find(menu []Option, a betting.Action) *Option {
	for i := range menu {
		if menu[i].Action == a {
			return &menu[i]
		}
	}
	return nil
}

func actions(menu []Option) map[betting.Action]bool {
	out := make(map[betting.Action]bool)
	for _, o := range menu {
		out[o.Action] = true
	}
	return out
}

func TestRequiredEquity(t *testing.T) {
	assert.Equal(t, 0.0, RequiredEquity(100, 0))
	assert.InDelta(t, 0.25, RequiredEquity(30, 10), 1e-9)
	assert.InDelta(t, 0.5, RequiredEquity(0, 10), 1e-9)
}

func TestEVZoneDeadZone(t *testing.T) {
	// required equity 0.25: +EV at 0.425+, -EV below 0.2125
	r := facingBet(t, 1000, 30, 10)

	plus := find(Generate(r, 0, 0.45, neutral), betting.Call)
	require.NotNil(t, plus)
	assert.Equal(t, PlusEV, plus.Zone)

	marginal := find(Generate(r, 0, 0.30, neutral), betting.Call)
	require.NotNil(t, marginal)
	assert.Equal(t, Marginal, marginal.Zone)

	minus := find(Generate(r, 0, 0.10, neutral), betting.Call)
	require.NotNil(t, minus)
	assert.Equal(t, MinusEV, minus.Zone)
}

func TestFoldBlockedAtMonsterEquity(t *testing.T) {
	r := facingBet(t, 1000, 100, 30)
	for _, equity := range []float64{0.90, 0.95, 0.99, 1.0} {
		menu := Generate(r, 0, equity, neutral)
		assert.False(t, actions(menu)[betting.Fold], "fold offered at equity %.2f", equity)
		assert.NotEmpty(t, menu)
	}
}

func TestFoldBlockedAtDoubleRequiredEquity(t *testing.T) {
	// required 0.25, so 0.5+ blocks fold
	r := facingBet(t, 1000, 30, 10)
	menu := Generate(r, 0, 0.55, neutral)
	assert.False(t, actions(menu)[betting.Fold])

	menu = Generate(r, 0, 0.40, neutral)
	assert.True(t, actions(menu)[betting.Fold])
}

func TestFoldBlockedWhenPotCommitted(t *testing.T) {
	r := betting.NewRound([]int{40, 1000}, 2, betting.DefaultRaiseCap)
	// Seat 0 already wagered 60 this hand with 40 behind
	r.Players[0].HandTotal = 60
	r.Pot = 120
	require.NoError(t, r.Apply(1, betting.Decision{Action: betting.Raise, Amount: 40}))

	// Even with terrible equity, fold is gone
	menu := Generate(r, 0, 0.03, neutral)
	as := actions(menu)
	assert.False(t, as[betting.Fold])
	assert.NotEmpty(t, menu)
	// Call survives its own blocking rule: {call, all-in} is preserved
	assert.True(t, as[betting.Call] || as[betting.AllIn])
}

func TestCallBlockedWhenDrawingDead(t *testing.T) {
	r := facingBet(t, 1000, 100, 30)
	menu := Generate(r, 0, 0.02, neutral)
	as := actions(menu)
	assert.False(t, as[betting.Call])
	assert.True(t, as[betting.Fold])
	assert.NotEmpty(t, menu)
}

func TestMenuNeverEmpty(t *testing.T) {
	configs := []struct {
		name   string
		equity float64
		setup  func(t *testing.T) *betting.Round
	}{
		{"drawing dead facing a jam", 0.01, func(t *testing.T) *betting.Round {
			return facingBet(t, 50, 100, 50)
		}},
		{"committed with nothing", 0.02, func(t *testing.T) *betting.Round {
			r := facingBet(t, 30, 200, 30)
			r.Players[0].HandTotal = 100
			return r
		}},
		{"monster heads up", 1.0, func(t *testing.T) *betting.Round {
			return facingBet(t, 500, 60, 20)
		}},
	}
	for _, tc := range configs {
		t.Run(tc.name, func(t *testing.T) {
			menu := Generate(tc.setup(t), 0, tc.equity, neutral)
			assert.NotEmpty(t, menu)
		})
	}
}

func TestGenerateIdempotent(t *testing.T) {
	r := facingBet(t, 1000, 100, 25)
	first := Generate(r, 0, 0.62, neutral)
	second := Generate(r, 0, 0.62, neutral)
	assert.Equal(t, first, second)
}

func TestRaiseSizingCandidates(t *testing.T) {
	r := facingBet(t, 1000, 200, 50)
	menu := Generate(r, 0, 0.7, neutral)

	var raises []Option
	for _, o := range menu {
		if o.Action == betting.Raise {
			raises = append(raises, o)
		}
	}
	require.NotEmpty(t, raises)

	seen := make(map[int]bool)
	minTotal := r.CurrentBet + r.MinRaise
	maxTotal := r.Players[0].RoundBet + r.Players[0].Stack
	for _, o := range raises {
		assert.False(t, seen[o.Amount], "duplicate raise amount %d", o.Amount)
		seen[o.Amount] = true
		assert.GreaterOrEqual(t, o.Amount, minTotal)
		assert.Less(t, o.Amount, maxTotal)
	}
	// Min-raise candidate is always present
	assert.True(t, seen[minTotal])
}

func TestQuadsOnRiverScenario(t *testing.T) {
	// Four of a kind on the river facing a bet smaller than the pot
	r := facingBet(t, 1000, 100, 40)
	menu := Generate(r, 0, 0.995, neutral)
	as := actions(menu)

	assert.False(t, as[betting.Fold])
	call := find(menu, betting.Call)
	require.NotNil(t, call)
	assert.Equal(t, PlusEV, call.Zone)
	for _, o := range menu {
		if o.Action == betting.Raise {
			assert.Equal(t, PlusEV, o.Zone)
		}
	}
}

func TestQuadsFacingLargeBetScenario(t *testing.T) {
	// A bet nearly the size of the pot: the raise lines are priced at the
	// same pot odds as the call, so near-nuts equity keeps them all +EV
	r := facingBet(t, 1000, 100, 90)
	menu := Generate(r, 0, 0.99, neutral)

	assert.False(t, actions(menu)[betting.Fold])
	call := find(menu, betting.Call)
	require.NotNil(t, call)
	assert.Equal(t, PlusEV, call.Zone)

	raises := 0
	for _, o := range menu {
		if o.Action == betting.Raise {
			raises++
			assert.Equal(t, PlusEV, o.Zone, o.String())
		}
	}
	require.NotZero(t, raises)
}

func TestFoldBlockedWhenCheckIsFree(t *testing.T) {
	r := betting.NewRound([]int{1000, 1000}, 2, betting.DefaultRaiseCap)
	r.Pot = 40

	for _, equity := range []float64{0.05, 0.30, 0.60} {
		menu := Generate(r, 0, equity, neutral)
		as := actions(menu)
		assert.True(t, as[betting.Check])
		assert.False(t, as[betting.Fold], "fold offered at equity %.2f", equity)
	}
}

func TestCommittedFacingExactlyStackScenario(t *testing.T) {
	// Already wagered more than remaining stack; the bet covers the stack
	r := betting.NewRound([]int{50, 1000}, 2, betting.DefaultRaiseCap)
	r.Players[0].HandTotal = 80
	r.Pot = 160
	require.NoError(t, r.Apply(1, betting.Decision{Action: betting.Raise, Amount: 50}))

	menu := Generate(r, 0, 0.3, neutral)
	as := actions(menu)
	assert.False(t, as[betting.Fold])
	// Calling the bet puts the whole stack in: only the all-in line remains
	assert.True(t, as[betting.AllIn])
	assert.False(t, as[betting.Raise])
}

func TestStyleTagsDoNotAffectZones(t *testing.T) {
	r := facingBet(t, 1000, 100, 25)
	tight := Generate(r, 0, 0.62, profile.Profile{Archetype: profile.TightAggressive})
	loose := Generate(r, 0, 0.62, profile.Profile{Archetype: profile.LoosePassive})

	require.Equal(t, len(tight), len(loose))
	for i := range tight {
		assert.Equal(t, tight[i].Action, loose[i].Action)
		assert.Equal(t, tight[i].Amount, loose[i].Amount)
		assert.Equal(t, tight[i].Zone, loose[i].Zone)
	}
}

func TestRationaleDirectiveStrength(t *testing.T) {
	r := facingBet(t, 1000, 30, 10)

	tight := find(Generate(r, 0, 0.45, profile.Profile{Archetype: profile.TightAggressive}), betting.Call)
	require.NotNil(t, tight)
	assert.Contains(t, tight.Rationale, "call")

	marginal := find(Generate(r, 0, 0.30, profile.Profile{Archetype: profile.LoosePassive}), betting.Call)
	require.NotNil(t, marginal)
	assert.Contains(t, marginal.Rationale, "close")
}
