// Package remote bridges decisions to an external policy process (for
// example a language-model harness) over a websocket. The bridge sends
// the option menu as JSON and waits for an {action, amount} reply under
// a deadline; a missing connection, timeout, or unparseable reply is an
// error the advisor recovers from by fallback.
package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"

	"github.com/jeffeharris/my-poker-face-sub006/internal/advisor"
	"github.com/jeffeharris/my-poker-face-sub006/internal/betting"
	"github.com/jeffeharris/my-poker-face-sub006/internal/deck"
	"github.com/jeffeharris/my-poker-face-sub006/internal/options"
)

// ErrNotConnected is returned when no policy process is attached
var ErrNotConnected = errors.New("no policy process connected")

// DecisionRequest is the wire form of one decision put to the policy
type DecisionRequest struct {
	Type   string      `json:"type"`
	Street string      `json:"street"`
	Pot    int         `json:"pot"`
	ToCall int         `json:"to_call"`
	Hole   []string    `json:"hole"`
	Board  []string    `json:"board"`
	Menu   []MenuEntry `json:"menu"`
}

// MenuEntry is one option on the wire
type MenuEntry struct {
	Action    string `json:"action"`
	Amount    int    `json:"amount,omitempty"`
	Zone      string `json:"zone"`
	Style     string `json:"style"`
	Rationale string `json:"rationale"`
}

// ChoiceReply is the policy's answer
type ChoiceReply struct {
	Action string `json:"action"`
	Amount int    `json:"amount,omitempty"`
}

// Config wires the bridge
type Config struct {
	Logger  *log.Logger
	Clock   quartz.Clock
	Timeout time.Duration // per-decision reply budget; 0 disables
}

// Bridge is a websocket policy source. One policy process at a time; a
// new connection replaces the previous one.
type Bridge struct {
	logger  *log.Logger
	clock   quartz.Clock
	timeout time.Duration

	upgrader websocket.Upgrader

	mu      sync.Mutex
	conn    *websocket.Conn
	replies chan ChoiceReply
}

// New creates a bridge with the given config
func New(cfg Config) *Bridge {
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}
	if cfg.Clock == nil {
		cfg.Clock = quartz.NewReal()
	}
	return &Bridge{
		logger:  cfg.Logger.WithPrefix("remote"),
		clock:   cfg.Clock,
		timeout: cfg.Timeout,
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(*http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// Handler returns the HTTP handler that accepts the policy connection
func (b *Bridge) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/policy", b.handlePolicy)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprint(w, "OK")
	})
	return mux
}

// ListenAndServe runs the bridge server until the context is cancelled
func (b *Bridge) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: b.Handler()}
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()
	b.logger.Info("waiting for policy process", "addr", addr)
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (b *Bridge) handlePolicy(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.logger.Error("upgrade failed", "error", err)
		return
	}

	b.mu.Lock()
	if b.conn != nil {
		_ = b.conn.Close()
	}
	b.conn = conn
	replies := make(chan ChoiceReply, 1)
	b.replies = replies
	b.mu.Unlock()

	b.logger.Info("policy process connected", "remote", conn.RemoteAddr())
	go b.readLoop(conn, replies)
}

// readLoop pumps replies off the connection until it drops
func (b *Bridge) readLoop(conn *websocket.Conn, replies chan ChoiceReply) {
	for {
		var reply ChoiceReply
		if err := conn.ReadJSON(&reply); err != nil {
			b.logger.Info("policy process disconnected", "error", err)
			b.mu.Lock()
			if b.conn == conn {
				b.conn = nil
				b.replies = nil
			}
			b.mu.Unlock()
			return
		}
		select {
		case replies <- reply:
		default:
			// Unsolicited reply; drop it
		}
	}
}

// Connected reports whether a policy process is attached
func (b *Bridge) Connected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conn != nil
}

// Choose implements the advisor's PolicySource over the wire
func (b *Bridge) Choose(ctx context.Context, state advisor.GameState, menu []options.Option) (betting.Decision, error) {
	b.mu.Lock()
	conn := b.conn
	replies := b.replies
	b.mu.Unlock()
	if conn == nil {
		return betting.Decision{}, ErrNotConnected
	}

	// Drain a stale reply from a previous, abandoned decision
	select {
	case <-replies:
	default:
	}

	// Arm the deadline before the request goes out, so a reply can never
	// race an unarmed timer
	var timeoutFired chan struct{}
	if b.timeout > 0 {
		timeoutFired = make(chan struct{})
		timer := b.clock.AfterFunc(b.timeout, func() {
			close(timeoutFired)
		})
		defer timer.Stop()
	}

	if err := conn.WriteJSON(requestFor(state, menu)); err != nil {
		return betting.Decision{}, fmt.Errorf("send decision request: %w", err)
	}

	select {
	case reply, ok := <-replies:
		if !ok {
			return betting.Decision{}, ErrNotConnected
		}
		action, parsed := betting.ParseAction(reply.Action)
		if !parsed {
			return betting.Decision{}, fmt.Errorf("unparseable action %q", reply.Action)
		}
		return betting.Decision{Action: action, Amount: reply.Amount}, nil
	case <-timeoutFired:
		return betting.Decision{}, fmt.Errorf("policy reply timeout after %s", b.timeout)
	case <-ctx.Done():
		return betting.Decision{}, ctx.Err()
	}
}

func requestFor(state advisor.GameState, menu []options.Option) DecisionRequest {
	req := DecisionRequest{
		Type:   "decision_request",
		Street: state.Round.Street.String(),
		Pot:    state.Round.Pot,
		ToCall: state.Round.ToCall(state.Seat),
		Hole:   notations(state.Hole),
		Board:  notations(state.Board),
		Menu:   make([]MenuEntry, len(menu)),
	}
	for i, opt := range menu {
		req.Menu[i] = MenuEntry{
			Action:    opt.Action.String(),
			Amount:    opt.Amount,
			Zone:      opt.Zone.String(),
			Style:     opt.Style.String(),
			Rationale: opt.Rationale,
		}
	}
	return req
}

func notations(cards []deck.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.Notation()
	}
	return out
}
