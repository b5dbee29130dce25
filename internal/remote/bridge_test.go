package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeffeharris/my-poker-face-sub006/internal/advisor"
	"github.com/jeffeharris/my-poker-face-sub006/internal/betting"
	"github.com/jeffeharris/my-poker-face-sub006/internal/deck"
	"github.com/jeffeharris/my-poker-face-sub006/internal/options"
)

func testState(t *testing.T) advisor.GameState {
	t.Helper()
	hole, err := deck.ParseCards("AsKd")
	require.NoError(t, err)
	board, err := deck.ParseCards("Qh7c2s")
	require.NoError(t, err)

	r := betting.NewRound([]int{200, 200}, 2, betting.DefaultRaiseCap)
	r.Street = betting.Flop
	r.Pot = 30
	require.NoError(t, r.Apply(1, betting.Decision{Action: betting.Raise, Amount: 10}))

	return advisor.GameState{Hole: hole, Board: board, Round: r, Seat: 0}
}

func testMenu() []options.Option {
	return []options.Option{
		{Action: betting.Fold, Zone: options.MinusEV},
		{Action: betting.Call, Zone: options.PlusEV, Rationale: "price is right"},
		{Action: betting.Raise, Amount: 30, Zone: options.Marginal},
	}
}

// dialBridge connects a fake policy process to the bridge
func dialBridge(t *testing.T, b *Bridge) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(b.Handler())
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/policy"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.Eventually(t, b.Connected, time.Second, 5*time.Millisecond)
	return conn
}

func TestChooseWithoutConnection(t *testing.T) {
	b := New(Config{})
	_, err := b.Choose(context.Background(), testState(t), testMenu())
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestHealthEndpoint(t *testing.T) {
	srv := httptest.NewServer(New(Config{}).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDecisionRoundTrip(t *testing.T) {
	b := New(Config{})
	conn := dialBridge(t, b)

	done := make(chan struct{})
	go func() {
		defer close(done)
		var req DecisionRequest
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		assert.Equal(t, "decision_request", req.Type)
		assert.Equal(t, "flop", req.Street)
		assert.Equal(t, []string{"As", "Kd"}, req.Hole)
		assert.Equal(t, 10, req.ToCall)
		assert.Len(t, req.Menu, 3)
		assert.Equal(t, "price is right", req.Menu[1].Rationale)
		_ = conn.WriteJSON(ChoiceReply{Action: "call"})
	}()

	d, err := b.Choose(context.Background(), testState(t), testMenu())
	require.NoError(t, err)
	assert.Equal(t, betting.Call, d.Action)
	<-done
}

func TestRaiseReplyCarriesAmount(t *testing.T) {
	b := New(Config{})
	conn := dialBridge(t, b)

	go func() {
		var req DecisionRequest
		if conn.ReadJSON(&req) == nil {
			_ = conn.WriteJSON(ChoiceReply{Action: "raise", Amount: 30})
		}
	}()

	d, err := b.Choose(context.Background(), testState(t), testMenu())
	require.NoError(t, err)
	assert.Equal(t, betting.Raise, d.Action)
	assert.Equal(t, 30, d.Amount)
}

func TestUnparseableActionIsAnError(t *testing.T) {
	b := New(Config{})
	conn := dialBridge(t, b)

	go func() {
		var req DecisionRequest
		if conn.ReadJSON(&req) == nil {
			_ = conn.WriteJSON(ChoiceReply{Action: "tango"})
		}
	}()

	_, err := b.Choose(context.Background(), testState(t), testMenu())
	assert.ErrorContains(t, err, "unparseable action")
}

func TestReplyTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mockClock := quartz.NewMock(t)
	b := New(Config{Clock: mockClock, Timeout: 8 * time.Second})
	conn := dialBridge(t, b)

	received := make(chan struct{})
	go func() {
		var req DecisionRequest
		if conn.ReadJSON(&req) == nil {
			close(received) // read the request, then go silent
		}
	}()

	type result struct {
		err error
	}
	done := make(chan result, 1)
	state, menu := testState(t), testMenu()
	go func() {
		_, err := b.Choose(ctx, state, menu)
		done <- result{err}
	}()

	// The deadline is armed before the request is sent, so once the fake
	// policy has read it the timer is live.
	<-received
	mockClock.Advance(8 * time.Second).MustWait(ctx)

	r := <-done
	assert.ErrorContains(t, r.err, "timeout")
}

func TestDisconnectClearsConnection(t *testing.T) {
	b := New(Config{})
	conn := dialBridge(t, b)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return !b.Connected() }, time.Second, 5*time.Millisecond)
}
