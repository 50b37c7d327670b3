package netconn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// State is the connection lifecycle state.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateReconnecting
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	default:
		return "unknown"
	}
}

var (
	// ErrConnectTimeout: the transport never reported open within the bound.
	ErrConnectTimeout = errors.New("connect timed out")
	// ErrConnectError: the transport failed at dial time.
	ErrConnectError = errors.New("connect failed")
	// ErrConnectCancelled: Disconnect preempted a pending connect.
	ErrConnectCancelled = errors.New("connect cancelled")
	// ErrAlreadyConnecting: at most one live attempt at a time.
	ErrAlreadyConnecting = errors.New("connection attempt already in progress")
	// ErrNotConnected: Send called without an open transport. Callers queue
	// instead of treating this as fatal.
	ErrNotConnected = errors.New("not connected")
)

const (
	defaultConnectTimeout = 5 * time.Second
	defaultReconnectDelay = 5 * time.Second

	closeStatusNormal = 1000
)

// Options configures a Connection. Zero-value fields get production defaults.
type Options struct {
	Dial           DialFunc
	Clock          Clock
	ConnectTimeout time.Duration
	ReconnectDelay time.Duration
	Logger         *slog.Logger
}

// Connection owns one transport socket and its lifecycle: dialing with a
// bounded open window, automatic fixed-delay reconnection on unexpected
// closure, and deterministic teardown on Disconnect. It does not interpret
// message content and it never queues; both are the session layer's job.
type Connection struct {
	dial           DialFunc
	clock          Clock
	connectTimeout time.Duration
	reconnectDelay time.Duration
	log            *slog.Logger

	mu             sync.Mutex
	state          State
	addr           string
	transport      Transport
	cancelDial     context.CancelFunc
	reconnectTimer Timer
	closed         bool
	dialGen        uint64

	onMessage func([]byte)
	onState   []func(State)
}

// NewConnection builds a Connection. Dial defaults to DialWebsocket and Clock
// to the wall clock.
func NewConnection(opts Options) *Connection {
	if opts.Dial == nil {
		opts.Dial = DialWebsocket
	}
	if opts.Clock == nil {
		opts.Clock = RealClock()
	}
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = defaultConnectTimeout
	}
	if opts.ReconnectDelay <= 0 {
		opts.ReconnectDelay = defaultReconnectDelay
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Connection{
		dial:           opts.Dial,
		clock:          opts.Clock,
		connectTimeout: opts.ConnectTimeout,
		reconnectDelay: opts.ReconnectDelay,
		log:            opts.Logger,
	}
}

// OnMessage sets the receive callback. Frames are delivered in transport
// order, one call per frame. Set before Connect.
func (c *Connection) OnMessage(fn func([]byte)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onMessage = fn
}

// OnStateChange registers a lifecycle subscriber. Subscribers are invoked
// synchronously, in registration order, outside the connection lock.
func (c *Connection) OnStateChange(fn func(State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onState = append(c.onState, fn)
}

// State reports the current lifecycle state.
func (c *Connection) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect starts an asynchronous connection attempt to addr. The returned
// channel resolves with nil once the transport reports open, ErrConnectTimeout
// if no open signal arrives within the configured window, a wrapped
// ErrConnectError on transport failure, or ErrConnectCancelled if Disconnect
// preempts the attempt. A second Connect while an attempt or reconnect cycle
// is live resolves immediately with ErrAlreadyConnecting.
func (c *Connection) Connect(addr string) <-chan error {
	result := make(chan error, 1)

	c.mu.Lock()
	if c.state != StateDisconnected {
		c.mu.Unlock()
		result <- ErrAlreadyConnecting
		return result
	}
	c.closed = false
	c.addr = addr
	c.state = StateConnecting
	c.dialGen++
	gen := c.dialGen
	c.mu.Unlock()

	c.notify(StateConnecting)
	go c.attempt(result, false, gen)
	return result
}

// Send writes one frame, fire-and-forget. Returns ErrNotConnected when no
// transport is open; the session layer queues in that case.
func (c *Connection) Send(ctx context.Context, data []byte) error {
	c.mu.Lock()
	t := c.transport
	open := c.state == StateConnected
	c.mu.Unlock()

	if !open || t == nil {
		return ErrNotConnected
	}
	return t.Write(ctx, data)
}

// Disconnect closes deterministically: it cancels any pending dial (resolving
// it as a cancellation), stops the reconnect timer, closes the transport, and
// suppresses automatic reconnection until the next Connect.
func (c *Connection) Disconnect() {
	c.mu.Lock()
	wasDisconnected := c.state == StateDisconnected
	c.closed = true
	c.state = StateDisconnected
	if c.reconnectTimer != nil {
		c.reconnectTimer.Stop()
		c.reconnectTimer = nil
	}
	if c.cancelDial != nil {
		c.cancelDial()
		c.cancelDial = nil
	}
	t := c.transport
	c.transport = nil
	c.mu.Unlock()

	if t != nil {
		_ = t.Close(closeStatusNormal, "client disconnect")
	}
	if !wasDisconnected {
		c.notify(StateDisconnected)
	}
}

// attempt runs one dial. During a reconnect cycle a failed dial schedules the
// next attempt instead of giving up; the policy is a fixed delay retried
// indefinitely until Disconnect. gen ties the attempt to the Connect or retry
// that started it: a dial that outlives a Disconnect and a fresh Connect must
// resolve as cancelled instead of stomping the live attempt's state.
func (c *Connection) attempt(result chan<- error, isReconnect bool, gen uint64) {
	ctx, cancel := context.WithCancel(context.Background())

	c.mu.Lock()
	if c.closed || gen != c.dialGen {
		c.mu.Unlock()
		cancel()
		deliver(result, ErrConnectCancelled)
		return
	}
	c.cancelDial = cancel
	addr := c.addr
	c.mu.Unlock()

	// The open window is bounded by the injected clock, not by
	// context.WithTimeout, so tests can fire it deterministically.
	var timedOut atomic.Bool
	timer := c.clock.AfterFunc(c.connectTimeout, func() {
		timedOut.Store(true)
		cancel()
	})

	t, err := c.dial(ctx, addr)
	timer.Stop()
	cancel()

	c.mu.Lock()
	if c.closed || gen != c.dialGen {
		c.mu.Unlock()
		if t != nil {
			_ = t.Close(closeStatusNormal, "client disconnect")
		}
		deliver(result, ErrConnectCancelled)
		return
	}
	c.cancelDial = nil

	if err != nil {
		outcome := fmt.Errorf("%w: %v", ErrConnectError, err)
		if timedOut.Load() {
			outcome = ErrConnectTimeout
		}
		if isReconnect {
			c.state = StateReconnecting
			c.reconnectTimer = c.clock.AfterFunc(c.reconnectDelay, c.retry)
			c.mu.Unlock()
			c.log.Warn("reconnect attempt failed", "addr", addr, "err", outcome)
			deliver(result, outcome)
			return
		}
		c.state = StateDisconnected
		c.mu.Unlock()
		c.notify(StateDisconnected)
		deliver(result, outcome)
		return
	}

	c.transport = t
	c.state = StateConnected
	c.mu.Unlock()

	c.log.Info("transport open", "addr", addr)
	c.notify(StateConnected)
	go c.readLoop(t)
	deliver(result, nil)
}

func (c *Connection) readLoop(t Transport) {
	ctx := context.Background()
	for {
		data, err := t.Read(ctx)
		if err != nil {
			c.handleClosure(t, err)
			return
		}

		c.mu.Lock()
		fn := c.onMessage
		c.mu.Unlock()
		if fn != nil {
			fn(data)
		}
	}
}

// handleClosure reacts to the transport dropping out from under us. Explicit
// disconnects were already handled; anything else enters the reconnect cycle.
func (c *Connection) handleClosure(t Transport, err error) {
	c.mu.Lock()
	if c.transport != t {
		// Stale read loop from a previous transport.
		c.mu.Unlock()
		return
	}
	c.transport = nil
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.state = StateReconnecting
	c.reconnectTimer = c.clock.AfterFunc(c.reconnectDelay, c.retry)
	c.mu.Unlock()

	c.log.Warn("connection lost, reconnecting", "err", err)
	c.notify(StateReconnecting)
}

func (c *Connection) retry() {
	c.mu.Lock()
	if c.closed || c.state != StateReconnecting {
		c.mu.Unlock()
		return
	}
	c.reconnectTimer = nil
	c.state = StateConnecting
	c.dialGen++
	gen := c.dialGen
	c.mu.Unlock()

	c.notify(StateConnecting)
	go c.attempt(nil, true, gen)
}

func (c *Connection) notify(s State) {
	c.mu.Lock()
	subs := make([]func(State), len(c.onState))
	copy(subs, c.onState)
	c.mu.Unlock()

	for _, fn := range subs {
		fn(s)
	}
}

func deliver(result chan<- error, err error) {
	if result == nil {
		return
	}
	result <- err
}
