package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"arena-client/internal/netconn"
	"arena-client/internal/protocol"
)

// Link is what the manager needs from the connection layer.
// *netconn.Connection satisfies it.
type Link interface {
	Send(ctx context.Context, data []byte) error
	OnMessage(fn func([]byte))
	OnStateChange(fn func(netconn.State))
}

// Handler consumes one decoded message. Multiple independent handlers may be
// registered per kind; they run after the manager's own bookkeeping so they
// always observe consistent internal state.
type Handler func(env protocol.Envelope)

// Bookkeeper is a core component (combat engine, tournament tracker) that
// receives every message before externally registered handlers.
type Bookkeeper interface {
	HandleMessage(env protocol.Envelope)
}

type handlerEntry struct {
	fn Handler
}

// Options tunes a Manager. Zero values get defaults.
type Options struct {
	Logger *slog.Logger
	// MoveLimit / MoveWindow bound outbound playerMove rate. The producer
	// side owns coalescing of high-frequency position updates.
	MoveLimit  int
	MoveWindow time.Duration
}

// Manager owns the join handshake, the locally tracked player identity, the
// outgoing queue and inbound dispatch. Messages submitted while the
// connection is not open are delivered FIFO on the next Connected transition,
// before anything submitted afterwards.
type Manager struct {
	link     Link
	log      *slog.Logger
	limiter  *RateLimiter
	roster   *Roster
	clientID string

	mu          sync.Mutex
	connected   bool
	queue       outgoingQueue
	localID     string
	hasJoined   bool
	joinData    *protocol.JoinRequest
	joinPending bool
	handlers    map[string][]*handlerEntry
	bookkeepers []Bookkeeper
}

// NewManager wires a manager onto link and starts consuming its frames and
// lifecycle transitions.
func NewManager(link Link, opts Options) *Manager {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.MoveLimit <= 0 {
		opts.MoveLimit = 20
	}
	if opts.MoveWindow <= 0 {
		opts.MoveWindow = time.Second
	}

	m := &Manager{
		link:     link,
		limiter:  NewRateLimiter(opts.MoveLimit, opts.MoveWindow),
		roster:   NewRoster(),
		clientID: uuid.NewString(),
		handlers: make(map[string][]*handlerEntry),
	}
	m.log = opts.Logger.With("client", m.clientID[:8])

	link.OnMessage(m.dispatch)
	link.OnStateChange(m.onStateChange)
	return m
}

// Roster exposes the remote-player projections.
func (m *Manager) Roster() *Roster { return m.roster }

// LocalID reports the authority-assigned identity, empty until assigned.
func (m *Manager) LocalID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.localID
}

// HasJoined reports whether the join handshake completed on this connection.
func (m *Manager) HasJoined() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hasJoined
}

// QueuedCount reports how many messages wait for the next Connected
// transition.
func (m *Manager) QueuedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queue.len()
}

// ----------------------------------------------------------------------------
// Outbound
// ----------------------------------------------------------------------------

// Send encodes and forwards one message, or queues it while not connected.
// From the caller's perspective it always succeeds unless the payload itself
// cannot be encoded. High-frequency playerMove messages over the rate window
// are silently coalesced away.
func (m *Manager) Send(kind string, payload any) error {
	if kind == protocol.KindPlayerMove && !m.limiter.Allow(kind) {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sendLocked(kind, payload)
}

func (m *Manager) sendLocked(kind string, payload any) error {
	if !m.connected {
		m.queue.push(kind, payload)
		return nil
	}
	data, err := protocol.Encode(kind, payload)
	if err != nil {
		return err
	}
	if err := m.link.Send(context.Background(), data); err != nil {
		if errors.Is(err, netconn.ErrNotConnected) {
			// Transport dropped under us; hold the message for the
			// next Connected transition.
			m.queue.push(kind, payload)
			return nil
		}
		return err
	}
	return nil
}

// Join composes the join handshake. With an identity already assigned the
// join goes out immediately, tagged with it; otherwise the payload is parked
// and sent exactly once when the identity assignment arrives.
func (m *Manager) Join(data protocol.JoinRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	d := data
	m.joinData = &d
	if m.localID == "" {
		m.joinPending = true
		return nil
	}
	req := d
	req.ID = m.localID
	m.hasJoined = true
	return m.sendLocked(protocol.KindJoin, req)
}

// RequestExistingPlayers asks the authority for the current roster.
func (m *Manager) RequestExistingPlayers(tournamentID string) error {
	return m.Send(protocol.KindGetExistingPlayers, protocol.GetExistingPlayersRequest{
		TournamentID: tournamentID,
	})
}

// Ping sends a liveness probe stamped with the current time.
func (m *Manager) Ping() error {
	return m.Send(protocol.KindPing, protocol.PingRequest{
		Timestamp: time.Now().UnixMilli(),
	})
}

// ----------------------------------------------------------------------------
// Registration
// ----------------------------------------------------------------------------

// RegisterHandler subscribes to a message kind. Handlers fan out in
// registration order; the returned func unregisters.
func (m *Manager) RegisterHandler(kind string, h Handler) func() {
	entry := &handlerEntry{fn: h}
	m.mu.Lock()
	m.handlers[kind] = append(m.handlers[kind], entry)
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		entries := m.handlers[kind]
		for i, e := range entries {
			if e == entry {
				m.handlers[kind] = append(entries[:i:i], entries[i+1:]...)
				break
			}
		}
	}
}

// AttachBookkeeper registers a core component that sees every message before
// external handlers.
func (m *Manager) AttachBookkeeper(b Bookkeeper) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookkeepers = append(m.bookkeepers, b)
}

// ----------------------------------------------------------------------------
// Lifecycle
// ----------------------------------------------------------------------------

func (m *Manager) onStateChange(s netconn.State) {
	switch s {
	case netconn.StateConnected:
		m.flushQueue()
	case netconn.StateDisconnected, netconn.StateReconnecting:
		m.mu.Lock()
		m.connected = false
		// Identity lives for one connection lifetime. Parking the join
		// payload again makes the next identity assignment re-join.
		m.localID = ""
		m.hasJoined = false
		if m.joinData != nil {
			m.joinPending = true
		}
		m.mu.Unlock()
	case netconn.StateConnecting:
		m.mu.Lock()
		m.connected = false
		m.mu.Unlock()
	}
}

// flushQueue drains the outgoing queue in FIFO order. The manager lock is
// held for the whole flush, so a send issued by any handler reacting to the
// Connected transition lands strictly after the queued messages.
func (m *Manager) flushQueue() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.connected = true
	pending := m.queue.drain()
	for i, qm := range pending {
		data, err := protocol.Encode(qm.kind, qm.payload)
		if err != nil {
			m.log.Warn("dropping unencodable queued message", "kind", qm.kind, "err", err)
			continue
		}
		if err := m.link.Send(context.Background(), data); err != nil {
			m.log.Warn("flush interrupted", "kind", qm.kind, "err", err)
			m.queue.requeueFront(pending[i:])
			return
		}
	}
	if len(pending) > 0 {
		m.log.Info("flushed outgoing queue", "count", len(pending))
	}
}

// ----------------------------------------------------------------------------
// Inbound dispatch
// ----------------------------------------------------------------------------

// dispatch decodes one frame and fans it out: built-in bookkeeping first,
// then attached core components, then externally registered handlers. A
// malformed frame is logged and dropped; a panicking handler is contained.
func (m *Manager) dispatch(frame []byte) {
	env, err := protocol.DecodeEnvelope(frame)
	if err != nil {
		m.log.Warn("dropping malformed frame", "err", err)
		return
	}

	m.applyBuiltin(env)

	m.mu.Lock()
	bookkeepers := make([]Bookkeeper, len(m.bookkeepers))
	copy(bookkeepers, m.bookkeepers)
	entries := make([]*handlerEntry, len(m.handlers[env.Type]))
	copy(entries, m.handlers[env.Type])
	m.mu.Unlock()

	for _, b := range bookkeepers {
		m.invoke(env, func() { b.HandleMessage(env) })
	}
	for _, e := range entries {
		m.invoke(env, func() { e.fn(env) })
	}
}

func (m *Manager) invoke(env protocol.Envelope, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error("message handler panicked", "kind", env.Type, "panic", r)
		}
	}()
	fn()
}

// applyBuiltin performs the manager's own bookkeeping for a message kind
// before anything else observes it.
func (m *Manager) applyBuiltin(env protocol.Envelope) {
	switch env.Type {
	case protocol.KindID, protocol.KindJoinConfirmed:
		m.assignIdentity(env)

	case protocol.KindExistingPlayers:
		p, err := protocol.DecodePayload[protocol.ExistingPlayers](env)
		if err != nil {
			m.log.Warn("dropping roster payload", "err", err)
			return
		}
		self := m.LocalID()
		for _, info := range p.Players {
			if info.ID == "" || info.ID == self {
				continue
			}
			m.roster.Upsert(info.Normalized())
		}

	case protocol.KindPlayerJoined:
		info, ok := decodePlayerJoined(env)
		if !ok {
			m.log.Warn("dropping playerJoined payload")
			return
		}
		if info.ID == "" || info.ID == m.LocalID() {
			return
		}
		m.roster.Upsert(info.Normalized())

	case protocol.KindPlayerLeft:
		p, err := protocol.DecodePayload[protocol.PlayerLeft](env)
		if err != nil {
			return
		}
		m.roster.Remove(p.ID)

	case protocol.KindPlayerMoved:
		p, err := protocol.DecodePayload[protocol.PlayerMoved](env)
		if err != nil {
			return
		}
		pos := protocol.SpawnOrigin()
		if p.Position != nil {
			pos = *p.Position
		}
		m.roster.UpdatePosition(p.ID, pos)

	case protocol.KindPlayerHealth:
		p, err := protocol.DecodePayload[protocol.HealthUpdate](env)
		if err != nil {
			return
		}
		if p.ID != "" && p.ID != m.LocalID() {
			m.roster.UpdateHealth(p.ID, p.Health, p.MaxHealth)
		}

	case protocol.KindPlayerDied:
		p, err := protocol.DecodePayload[protocol.PlayerDied](env)
		if err != nil {
			return
		}
		if p.ID != "" && p.ID != m.LocalID() {
			m.roster.MarkDead(p.ID)
		}

	case protocol.KindPlayerRespawned:
		p, err := protocol.DecodePayload[protocol.PlayerRespawned](env)
		if err != nil {
			return
		}
		if p.ID == "" || p.ID == m.LocalID() {
			return
		}
		pos := protocol.SpawnOrigin()
		if p.Position != nil {
			pos = *p.Position
		}
		m.roster.MarkRespawned(p.ID, pos, p.Health, p.MaxHealth)

	case protocol.KindError:
		p, err := protocol.DecodePayload[protocol.ErrorMessage](env)
		if err != nil {
			return
		}
		m.log.Warn("authority reported error", "message", p.Message, "code", p.Code)
	}
}

// assignIdentity records the authority-assigned id. The id is immutable for
// the connection's lifetime; a parked join payload goes out exactly once.
func (m *Manager) assignIdentity(env protocol.Envelope) {
	p, err := protocol.DecodePayload[protocol.IDAssignment](env)
	if err != nil {
		m.log.Warn("dropping identity payload", "err", err)
		return
	}
	if p.ID == "" {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.localID != "" {
		if m.localID != p.ID {
			m.log.Warn("ignoring identity reassignment", "have", m.localID, "got", p.ID)
		}
		if env.Type == protocol.KindJoinConfirmed {
			m.hasJoined = true
		}
		return
	}

	m.localID = p.ID
	m.log.Info("identity assigned", "id", p.ID)
	if env.Type == protocol.KindJoinConfirmed {
		m.hasJoined = true
	}

	if m.joinPending && m.joinData != nil {
		req := *m.joinData
		req.ID = p.ID
		m.joinPending = false
		m.hasJoined = true
		if err := m.sendLocked(protocol.KindJoin, req); err != nil {
			m.log.Warn("deferred join failed", "err", err)
		}
	}
}

// decodePlayerJoined tolerates both shapes of the playerJoined payload: the
// flat player fields and a {"player": {...}} wrapper.
func decodePlayerJoined(env protocol.Envelope) (protocol.PlayerInfo, bool) {
	info, err := protocol.DecodePayload[protocol.PlayerInfo](env)
	if err == nil && info.ID != "" {
		return info, true
	}
	wrapped, werr := protocol.DecodePayload[struct {
		Player protocol.PlayerInfo `json:"player"`
	}](env)
	if werr == nil && wrapped.Player.ID != "" {
		return wrapped.Player, true
	}
	return protocol.PlayerInfo{}, false
}
