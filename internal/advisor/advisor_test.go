package advisor

import (
	"context"
	"errors"
	"io"
	"math/rand"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeffeharris/my-poker-face-sub006/internal/analysis"
	"github.com/jeffeharris/my-poker-face-sub006/internal/betting"
	"github.com/jeffeharris/my-poker-face-sub006/internal/deck"
	"github.com/jeffeharris/my-poker-face-sub006/internal/evaluator"
	"github.com/jeffeharris/my-poker-face-sub006/internal/options"
	"github.com/jeffeharris/my-poker-face-sub006/internal/profile"
)

// scriptedPolicy returns a fixed decision or error
type scriptedPolicy struct {
	decision betting.Decision
	err      error
}

func (p scriptedPolicy) Choose(context.Context, GameState, []options.Option) (betting.Decision, error) {
	return p.decision, p.err
}

// blockingPolicy never answers; it signals entry and waits for cancellation
type blockingPolicy struct {
	started chan struct{}
}

func (p blockingPolicy) Choose(ctx context.Context, _ GameState, _ []options.Option) (betting.Decision, error) {
	close(p.started)
	<-ctx.Done()
	return betting.Decision{}, ctx.Err()
}

func testEstimator() *evaluator.Estimator {
	return evaluator.NewEstimator(evaluator.EstimatorConfig{Samples: 2000, Workers: 1})
}

func testConfig(policy PolicySource) Config {
	return Config{
		Estimator: testEstimator(),
		Store:     profile.NewStore(),
		Policy:    policy,
		Logger:    log.New(io.Discard),
		RNG:       rand.New(rand.NewSource(7)),
	}
}

// quadsFacingBet: hero has quad aces on the river facing a 40 bet.
// Equity is 1.0 in every sample, so the menu is deterministic: fold is
// blocked and call/raise/all-in are all +EV.
func quadsFacingBet(t *testing.T) GameState {
	t.Helper()
	hole, err := deck.ParseCards("AsAh")
	require.NoError(t, err)
	board, err := deck.ParseCards("AcAdKs2h7d")
	require.NoError(t, err)

	r := betting.NewRound([]int{500, 500}, 2, betting.DefaultRaiseCap)
	r.Street = betting.River
	r.Pot = 100
	require.NoError(t, r.Apply(1, betting.Decision{Action: betting.Raise, Amount: 40}))

	return GameState{
		Hole:     hole,
		Board:    board,
		Round:    r,
		Seat:     0,
		Position: analysis.Button,
		Opponents: []Opponent{
			{Seat: 1, ID: "villain", Position: analysis.Early,
				Actions: []analysis.ObservedAction{analysis.ObservedRaise}},
		},
	}
}

func TestRuleStrategyDecidesWithoutPolicy(t *testing.T) {
	adv := New(testConfig(nil))
	rep := adv.Decide(context.Background(), quadsFacingBet(t))

	assert.False(t, rep.FellBack)
	assert.NotEmpty(t, rep.Rule)
	// Premium hand facing a bet: the rules raise for value
	assert.Equal(t, betting.Raise, rep.Decision.Action)
	assert.InDelta(t, 1.0, rep.Equity.Value(), 0.001)
}

func TestMenuBlocksFoldOnMonster(t *testing.T) {
	adv := New(testConfig(nil))
	rep := adv.Decide(context.Background(), quadsFacingBet(t))

	for _, opt := range rep.Menu {
		assert.NotEqual(t, betting.Fold, opt.Action)
	}
	assert.NotEmpty(t, rep.Menu)
}

func TestValidPolicyChoiceAccepted(t *testing.T) {
	adv := New(testConfig(scriptedPolicy{decision: betting.Decision{Action: betting.Call}}))
	rep := adv.Decide(context.Background(), quadsFacingBet(t))

	assert.False(t, rep.FellBack)
	assert.Equal(t, betting.Call, rep.Decision.Action)
}

func TestBlockedActionFallsBack(t *testing.T) {
	// Fold is not on a monster menu; choosing it triggers substitution
	adv := New(testConfig(scriptedPolicy{decision: betting.Decision{Action: betting.Fold}}))
	rep := adv.Decide(context.Background(), quadsFacingBet(t))

	assert.True(t, rep.FellBack)
	assert.Contains(t, rep.Fallback, "not in the current menu")
	// Cheapest +EV substitute is the call
	assert.Equal(t, betting.Call, rep.Decision.Action)
}

func TestOutOfBoundsRaiseFallsBack(t *testing.T) {
	// Minimum raise-to is 80 (bet 40 plus a full 40 raise)
	adv := New(testConfig(scriptedPolicy{decision: betting.Decision{Action: betting.Raise, Amount: 45}}))
	rep := adv.Decide(context.Background(), quadsFacingBet(t))

	assert.True(t, rep.FellBack)
	assert.Equal(t, betting.Call, rep.Decision.Action)
}

func TestPolicyErrorFallsBack(t *testing.T) {
	adv := New(testConfig(scriptedPolicy{err: errors.New("policy process crashed")}))
	rep := adv.Decide(context.Background(), quadsFacingBet(t))

	assert.True(t, rep.FellBack)
	assert.Contains(t, rep.Fallback, "policy process crashed")
	assert.Equal(t, betting.Call, rep.Decision.Action)
}

func TestAllInAmountNormalized(t *testing.T) {
	// A sloppy all-in amount from the policy is corrected to the stack
	adv := New(testConfig(scriptedPolicy{decision: betting.Decision{Action: betting.AllIn, Amount: 12345}}))
	rep := adv.Decide(context.Background(), quadsFacingBet(t))

	assert.False(t, rep.FellBack)
	assert.Equal(t, betting.AllIn, rep.Decision.Action)
	assert.Equal(t, 500, rep.Decision.Amount)
}

func TestPolicyTimeoutFallsBack(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mockClock := quartz.NewMock(t)
	started := make(chan struct{})

	cfg := testConfig(blockingPolicy{started: started})
	cfg.Clock = mockClock
	cfg.Timeout = 5 * time.Second
	adv := New(cfg)

	done := make(chan Report, 1)
	state := quadsFacingBet(t)
	go func() {
		done <- adv.Decide(ctx, state)
	}()

	// The deadline timer is armed before the policy starts, so once the
	// policy reports in, advancing the clock must fire the timeout.
	<-started
	mockClock.Advance(5 * time.Second).MustWait(ctx)

	rep := <-done
	assert.True(t, rep.FellBack)
	assert.Contains(t, rep.Fallback, "timeout")
	assert.Equal(t, betting.Call, rep.Decision.Action)
}

func TestValidateRaiseWindow(t *testing.T) {
	r := betting.NewRound([]int{500, 500}, 2, betting.DefaultRaiseCap)
	r.Pot = 100
	require.NoError(t, r.Apply(1, betting.Decision{Action: betting.Raise, Amount: 40}))

	menu := []options.Option{
		{Action: betting.Call},
		{Action: betting.Raise, Amount: 80},
		{Action: betting.AllIn, Amount: 500},
	}

	_, ok := validate(betting.Decision{Action: betting.Raise, Amount: 79}, menu, r, 0)
	assert.False(t, ok, "below minimum raise")

	d, ok := validate(betting.Decision{Action: betting.Raise, Amount: 120}, menu, r, 0)
	assert.True(t, ok, "any amount inside the window is legal, listed or not")
	assert.Equal(t, 120, d.Amount)

	_, ok = validate(betting.Decision{Action: betting.Raise, Amount: 500}, menu, r, 0)
	assert.False(t, ok, "full stack must be sent as all-in")

	_, ok = validate(betting.Decision{Action: betting.Fold}, menu, r, 0)
	assert.False(t, ok, "fold is off this menu")
}

func TestBestPlusEVPrefersCheapContinue(t *testing.T) {
	menu := []options.Option{
		{Action: betting.Raise, Amount: 80, Zone: options.PlusEV},
		{Action: betting.Call, Zone: options.PlusEV},
		{Action: betting.AllIn, Amount: 500, Zone: options.PlusEV},
	}
	opt, ok := bestPlusEV(menu)
	require.True(t, ok)
	assert.Equal(t, betting.Call, opt.Action)

	// Only marginal options: no substitute, rule strategy takes over
	_, ok = bestPlusEV([]options.Option{{Action: betting.Call, Zone: options.Marginal}})
	assert.False(t, ok)
}
