package tournament

import (
	"errors"
	"log/slog"
	"sync"

	"arena-client/internal/protocol"
)

// Status is the tracker's view of where the local player stands in the
// tournament lifecycle.
type Status int

const (
	StatusNone Status = iota
	StatusCreated
	StatusJoined
	StatusInProgress
	StatusCompleted
)

func (s Status) String() string {
	switch s {
	case StatusNone:
		return "none"
	case StatusCreated:
		return "created"
	case StatusJoined:
		return "joined"
	case StatusInProgress:
		return "inProgress"
	case StatusCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

var (
	ErrNoTournament  = errors.New("not in a tournament")
	ErrNotInProgress = errors.New("tournament is not in progress")
)

// Sender forwards a message toward the authority.
type Sender interface {
	Send(kind string, payload any) error
}

// State is an immutable snapshot of the tracked tournament.
type State struct {
	TournamentID string
	Name         string
	Tier         string
	Status       Status
	PlayerCount  int
	MaxPlayers   int
	Bracket      protocol.Bracket
	CurrentMatch *protocol.Match
	WinnerID     string

	Active []protocol.TournamentSummary

	BattleRoyaleID string
	InBattleRoyale bool
}

// Listener observes tracker transitions. event is the wire kind that caused
// the transition.
type Listener func(event string, s State)

// Tracker projects the tournament message stream into local state and issues
// tournament actions. It never decides outcomes itself; every transition is
// driven by an authority message.
type Tracker struct {
	sender Sender
	log    *slog.Logger

	mu        sync.RWMutex
	state     State
	listeners []Listener
}

func NewTracker(sender Sender, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{sender: sender, log: logger}
}

// Snapshot returns a copy of the current state.
func (t *Tracker) Snapshot() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// Subscribe adds a transition listener. Listeners run outside the tracker
// lock and must not block.
func (t *Tracker) Subscribe(fn Listener) {
	t.mu.Lock()
	t.listeners = append(t.listeners, fn)
	t.mu.Unlock()
}

// ----------------------------------------------------------------------------
// Actions
// ----------------------------------------------------------------------------

// Create asks the authority to open a new tournament.
func (t *Tracker) Create(name, tier string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	return t.sender.Send(protocol.KindCreateTournament, protocol.CreateTournamentRequest{
		Name: name,
		Tier: tier,
	})
}

// Join requests entry into an existing tournament.
func (t *Tracker) Join(tournamentID string) error {
	if err := ValidateID(tournamentID); err != nil {
		return err
	}
	return t.sender.Send(protocol.KindJoinTournament, protocol.JoinTournamentRequest{
		TournamentID: tournamentID,
	})
}

// Start asks the authority to begin the tracked tournament.
func (t *Tracker) Start() error {
	id, err := t.trackedID()
	if err != nil {
		return err
	}
	return t.sender.Send(protocol.KindTournamentStart, protocol.TournamentStartRequest{
		TournamentID: id,
	})
}

// ReportMatchResult reports a finished match. The bracket still only
// advances when the authority's bracket update comes back.
func (t *Tracker) ReportMatchResult(matchID, winnerID string) error {
	id, err := t.trackedID()
	if err != nil {
		return err
	}
	if err := ValidateID(matchID); err != nil {
		return err
	}
	if err := ValidateID(winnerID); err != nil {
		return err
	}
	t.mu.RLock()
	inProgress := t.state.Status == StatusInProgress
	t.mu.RUnlock()
	if !inProgress {
		return ErrNotInProgress
	}
	return t.sender.Send(protocol.KindMatchComplete, protocol.MatchCompleteRequest{
		TournamentID: id,
		MatchID:      matchID,
		WinnerID:     winnerID,
	})
}

// RequestBracket asks for a fresh copy of the bracket.
func (t *Tracker) RequestBracket() error {
	id, err := t.trackedID()
	if err != nil {
		return err
	}
	return t.sender.Send(protocol.KindBracketRequest, protocol.BracketRequest{
		TournamentID: id,
	})
}

// JoinBattleRoyale requests entry into a battle royale round.
func (t *Tracker) JoinBattleRoyale(battleRoyaleID string) error {
	if err := ValidateID(battleRoyaleID); err != nil {
		return err
	}
	return t.sender.Send(protocol.KindJoinBattleRoyale, protocol.JoinBattleRoyaleRequest{
		BattleRoyaleID: battleRoyaleID,
	})
}

func (t *Tracker) trackedID() (string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.state.TournamentID == "" {
		return "", ErrNoTournament
	}
	return t.state.TournamentID, nil
}

// ----------------------------------------------------------------------------
// Projection
// ----------------------------------------------------------------------------

// HandleMessage folds one authority message into the tracked state. Unknown
// or non-tournament kinds are ignored.
func (t *Tracker) HandleMessage(env protocol.Envelope) {
	switch env.Type {
	case protocol.KindTournamentCreated, protocol.KindNewTournament:
		apply(t, env, func(p protocol.TournamentCreated, s *State) bool {
			if env.Type == protocol.KindNewTournament && s.TournamentID != "" && s.TournamentID != p.TournamentID {
				// Broadcast about somebody else's tournament.
				return false
			}
			s.TournamentID = p.TournamentID
			s.Name = p.Name
			s.Tier = p.Tier
			s.Status = StatusCreated
			s.WinnerID = ""
			s.Bracket = protocol.Bracket{}
			s.CurrentMatch = nil
			return true
		})

	case protocol.KindTournamentJoined:
		apply(t, env, func(p protocol.TournamentJoined, s *State) bool {
			s.TournamentID = p.TournamentID
			s.PlayerCount = p.PlayerCount
			if s.Status == StatusNone || s.Status == StatusCreated {
				s.Status = StatusJoined
			}
			return true
		})

	case protocol.KindTournamentPlayerCount:
		apply(t, env, func(p protocol.TournamentPlayerCount, s *State) bool {
			if !tracking(s, p.TournamentID) {
				return false
			}
			s.PlayerCount = p.PlayerCount
			if p.MaxPlayers > 0 {
				s.MaxPlayers = p.MaxPlayers
			}
			return true
		})

	case protocol.KindTournamentReady:
		apply(t, env, func(p protocol.TournamentReady, s *State) bool {
			if !tracking(s, p.TournamentID) {
				return false
			}
			s.PlayerCount = s.MaxPlayers
			return true
		})

	case protocol.KindTournamentStarted:
		apply(t, env, func(p protocol.TournamentStarted, s *State) bool {
			if !tracking(s, p.TournamentID) {
				return false
			}
			s.Status = StatusInProgress
			return true
		})

	case protocol.KindTournamentBracketUpdate, protocol.KindTournamentBracket:
		apply(t, env, func(p protocol.TournamentBracketUpdate, s *State) bool {
			if !tracking(s, p.TournamentID) {
				return false
			}
			s.Bracket = p.Bracket
			return true
		})

	case protocol.KindTournamentMatchReady:
		apply(t, env, func(p protocol.TournamentMatchReady, s *State) bool {
			if !tracking(s, p.TournamentID) {
				return false
			}
			s.CurrentMatch = &protocol.Match{
				MatchID: p.MatchID,
				Player1: p.Player1,
				Player2: p.Player2,
				Status:  "ready",
			}
			return true
		})

	case protocol.KindTournamentComplete:
		apply(t, env, func(p protocol.TournamentComplete, s *State) bool {
			if !tracking(s, p.TournamentID) {
				return false
			}
			s.Status = StatusCompleted
			s.WinnerID = p.WinnerID
			s.CurrentMatch = nil
			return true
		})

	case protocol.KindTournamentUpdated:
		apply(t, env, func(p protocol.TournamentUpdated, s *State) bool {
			if !tracking(s, p.TournamentID) {
				return false
			}
			if p.PlayerCount > 0 {
				s.PlayerCount = p.PlayerCount
			}
			return true
		})

	case protocol.KindActiveTournaments:
		apply(t, env, func(p protocol.ActiveTournaments, s *State) bool {
			s.Active = p.Tournaments
			return true
		})

	case protocol.KindBattleRoyaleCreated:
		apply(t, env, func(p protocol.BattleRoyaleCreated, s *State) bool {
			s.BattleRoyaleID = p.BattleRoyaleID
			return true
		})

	case protocol.KindBattleRoyaleJoined:
		apply(t, env, func(p protocol.BattleRoyaleJoined, s *State) bool {
			s.BattleRoyaleID = p.BattleRoyaleID
			s.InBattleRoyale = true
			return true
		})

	case protocol.KindBattleRoyaleInvitation:
		apply(t, env, func(p protocol.BattleRoyaleInvitation, s *State) bool {
			s.BattleRoyaleID = p.BattleRoyaleID
			return true
		})

	case protocol.KindBattleRoyaleEvent:
		apply(t, env, func(p protocol.BattleRoyaleEvent, s *State) bool {
			if p.Event == "ended" || p.Event == "eliminated" {
				s.InBattleRoyale = false
			}
			return true
		})
	}
}

// apply decodes the payload, folds it in under the lock and notifies
// listeners with the updated snapshot outside the lock. A fold that returns
// false did not apply and must leave the state untouched.
func apply[T any](t *Tracker, env protocol.Envelope, fold func(p T, s *State) bool) {
	p, err := protocol.DecodePayload[T](env)
	if err != nil {
		t.log.Warn("dropping tournament payload", "kind", env.Type, "err", err)
		return
	}

	t.mu.Lock()
	applied := fold(p, &t.state)
	after := t.state
	listeners := make([]Listener, len(t.listeners))
	copy(listeners, t.listeners)
	t.mu.Unlock()

	if !applied {
		return
	}
	for _, fn := range listeners {
		fn(env.Type, after)
	}
}

func tracking(s *State, id string) bool {
	return id != "" && s.TournamentID == id
}
