package strategy

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeffeharris/my-poker-face-sub006/internal/betting"
	"github.com/jeffeharris/my-poker-face-sub006/internal/profile"
)

func TestTierFor(t *testing.T) {
	assert.Equal(t, Premium, TierFor(0.85))
	assert.Equal(t, Strong, TierFor(0.65))
	assert.Equal(t, Medium, TierFor(0.45))
	assert.Equal(t, Weak, TierFor(0.2))
}

func newCtx(t *testing.T, stacks []int, pot int, equity float64) *Context {
	t.Helper()
	r := betting.NewRound(stacks, 2, betting.DefaultRaiseCap)
	r.Pot = pot
	return &Context{
		Round:    r,
		Seat:     0,
		Equity:   equity,
		Opponent: profile.Profile{Archetype: profile.Balanced, Aggression: 0.5},
		RNG:      rand.New(rand.NewSource(9)),
	}
}

func TestLowSPRCommitsStrongHands(t *testing.T) {
	// Stack 50 into a pot of 100: SPR 0.5
	ctx := newCtx(t, []int{50, 500}, 100, 0.55)
	d, name := DecideName(ctx)
	assert.Equal(t, "low-spr-commit", name)
	assert.Equal(t, betting.AllIn, d.Action)

	// Weak hand at low SPR lets go
	ctx = newCtx(t, []int{50, 500}, 100, 0.2)
	d = Decide(ctx)
	assert.Equal(t, betting.Check, d.Action) // nothing to call, check is free
}

func TestShortStackPushFold(t *testing.T) {
	// 8bb stack, normal pot
	ctx := newCtx(t, []int{16, 500}, 6, 0.5)
	d, name := DecideName(ctx)
	assert.Equal(t, "short-stack-push-fold", name)
	assert.Equal(t, betting.AllIn, d.Action)

	ctx = newCtx(t, []int{16, 500}, 6, 0.3)
	d = Decide(ctx)
	assert.NotEqual(t, betting.AllIn, d.Action)
	assert.NotEqual(t, betting.Raise, d.Action)
}

func TestFacingBetBranches(t *testing.T) {
	face := func(equity float64) *Context {
		r := betting.NewRound([]int{500, 500}, 2, betting.DefaultRaiseCap)
		r.Pot = 40
		require.NoError(t, r.Apply(1, betting.Decision{Action: betting.Raise, Amount: 20}))
		return &Context{
			Round:     r,
			Seat:      0,
			Equity:    equity,
			FacingBet: true,
			Opponent:  profile.Profile{Aggression: 0.5},
			RNG:       rand.New(rand.NewSource(1)),
		}
	}

	// Premium: value raise
	d, name := DecideName(face(0.85))
	assert.Equal(t, "facing-bet", name)
	assert.Equal(t, betting.Raise, d.Action)
	assert.Greater(t, d.Amount, 20)

	// Strong hand meeting pot odds: call
	d = Decide(face(0.65))
	assert.Equal(t, betting.Call, d.Action)

	// Weak hand: fold (check is not available facing a bet)
	d = Decide(face(0.2))
	assert.Equal(t, betting.Fold, d.Action)
}

func TestFirstToActValueBets(t *testing.T) {
	ctx := newCtx(t, []int{500, 500}, 30, 0.7)
	d, name := DecideName(ctx)
	assert.Equal(t, "first-to-act", name)
	assert.Equal(t, betting.Raise, d.Action)
	assert.Equal(t, 18, d.Amount) // 60% of pot
}

func TestFirstToActChecksMediumHands(t *testing.T) {
	ctx := newCtx(t, []int{500, 500}, 30, 0.5)
	d := Decide(ctx)
	assert.Equal(t, betting.Check, d.Action)
}

func TestBluffOnlyInPositionOnDryBoards(t *testing.T) {
	// Out of position: never bluff regardless of RNG
	for seed := int64(0); seed < 20; seed++ {
		ctx := newCtx(t, []int{500, 500}, 30, 0.2)
		ctx.RNG = rand.New(rand.NewSource(seed))
		ctx.LastToAct = false
		ctx.DryBoard = true
		assert.Equal(t, betting.Check, Decide(ctx).Action)
	}

	// In position on a dry board: bluffs at roughly the base frequency
	bluffs := 0
	for seed := int64(0); seed < 200; seed++ {
		ctx := newCtx(t, []int{500, 500}, 30, 0.2)
		ctx.RNG = rand.New(rand.NewSource(seed))
		ctx.LastToAct = true
		ctx.DryBoard = true
		if Decide(ctx).Action == betting.Raise {
			bluffs++
		}
	}
	assert.Greater(t, bluffs, 20)
	assert.Less(t, bluffs, 100)
}

func TestBluffFrequencyAdaptsToFolders(t *testing.T) {
	count := func(stats profile.Stats) int {
		bluffs := 0
		for seed := int64(0); seed < 400; seed++ {
			ctx := newCtx(t, []int{500, 500}, 30, 0.2)
			ctx.RNG = rand.New(rand.NewSource(seed))
			ctx.LastToAct = true
			ctx.DryBoard = true
			ctx.OppStats = stats
			if Decide(ctx).Action == betting.Raise {
				bluffs++
			}
		}
		return bluffs
	}

	folder := count(profile.Stats{HandsSeen: 50, BetsFaced: 40, FoldsToBet: 36})
	station := count(profile.Stats{HandsSeen: 50, BetsFaced: 40, FoldsToBet: 2})
	assert.Greater(t, folder, station)
}

func TestCallShiftAppliesOnlyWithEnoughHands(t *testing.T) {
	face := func(stats profile.Stats, prof profile.Profile) betting.Decision {
		r := betting.NewRound([]int{500, 500}, 2, betting.DefaultRaiseCap)
		r.Pot = 40
		require.NoError(t, r.Apply(1, betting.Decision{Action: betting.Raise, Amount: 40}))
		return Decide(&Context{
			Round:     r,
			Seat:      0,
			Equity:    0.45, // pot odds require 40/120 ≈ 0.333
			FacingBet: true,
			Opponent:  prof,
			OppStats:  stats,
			RNG:       rand.New(rand.NewSource(2)),
		})
	}

	// Against a very passive observed opponent the call threshold rises
	passive := profile.Profile{Aggression: 0.0}
	observed := profile.Stats{HandsSeen: 50}
	unobserved := profile.Stats{HandsSeen: 2}

	// Threshold 0.333+0.08 = 0.413 < 0.45: still a call
	assert.Equal(t, betting.Call, face(observed, passive).Action)
	assert.Equal(t, betting.Call, face(unobserved, passive).Action)

	// Tighter spot: equity 0.405 calls unadjusted, folds once shifted
	tight := func(stats profile.Stats) betting.Decision {
		r := betting.NewRound([]int{500, 500}, 2, betting.DefaultRaiseCap)
		r.Pot = 40
		require.NoError(t, r.Apply(1, betting.Decision{Action: betting.Raise, Amount: 40}))
		return Decide(&Context{
			Round: r, Seat: 0, Equity: 0.405, FacingBet: true,
			Opponent: passive, OppStats: stats,
			RNG: rand.New(rand.NewSource(2)),
		})
	}
	assert.Equal(t, betting.Call, tight(unobserved).Action)
	assert.Equal(t, betting.Fold, tight(observed).Action)
}

func TestRuleListIsTotal(t *testing.T) {
	// Every combination of geometry and posture matches some rule
	for _, stacks := range [][]int{{500, 500}, {16, 500}, {50, 500}} {
		for _, facing := range []bool{true, false} {
			for _, equity := range []float64{0.1, 0.45, 0.65, 0.9} {
				ctx := newCtx(t, stacks, 40, equity)
				ctx.FacingBet = facing
				if facing {
					require.NoError(t, ctx.Round.Apply(1,
						betting.Decision{Action: betting.Raise, Amount: 20}))
				}
				assert.NotPanics(t, func() { Decide(ctx) })
			}
		}
	}
}
