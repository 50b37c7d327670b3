package session

import (
	"sync"

	"arena-client/internal/protocol"
)

// RemotePlayer is the read-mostly projection of one remote player, updated
// from authoritative messages only.
type RemotePlayer struct {
	ID        string
	Name      string
	Class     protocol.ClassType
	Position  protocol.Vec3
	Health    int
	MaxHealth int
	Alive     bool
}

// Roster tracks every known remote player by id.
type Roster struct {
	mu      sync.RWMutex
	players map[string]RemotePlayer
}

func NewRoster() *Roster {
	return &Roster{
		players: make(map[string]RemotePlayer),
	}
}

// Upsert inserts or replaces a player from a normalized join/roster payload.
func (r *Roster) Upsert(p protocol.NormalizedPlayer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.players[p.ID] = RemotePlayer{
		ID:        p.ID,
		Name:      p.Name,
		Class:     p.Class,
		Position:  p.Position,
		Health:    p.Health,
		MaxHealth: p.MaxHealth,
		Alive:     p.Alive,
	}
}

func (r *Roster) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.players, id)
}

func (r *Roster) UpdatePosition(id string, pos protocol.Vec3) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[id]
	if !ok {
		return
	}
	p.Position = pos
	r.players[id] = p
}

func (r *Roster) UpdateHealth(id string, health int, maxHealth *int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[id]
	if !ok {
		return
	}
	if maxHealth != nil && *maxHealth > 0 {
		p.MaxHealth = *maxHealth
	}
	if health < 0 {
		health = 0
	}
	if health > p.MaxHealth {
		health = p.MaxHealth
	}
	p.Health = health
	if p.Health == 0 {
		p.Alive = false
	}
	r.players[id] = p
}

func (r *Roster) MarkDead(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[id]
	if !ok {
		return
	}
	p.Health = 0
	p.Alive = false
	r.players[id] = p
}

func (r *Roster) MarkRespawned(id string, pos protocol.Vec3, health int, maxHealth *int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[id]
	if !ok {
		return
	}
	if maxHealth != nil && *maxHealth > 0 {
		p.MaxHealth = *maxHealth
	}
	if health <= 0 || health > p.MaxHealth {
		health = p.MaxHealth
	}
	p.Health = health
	p.Position = pos
	p.Alive = true
	r.players[id] = p
}

// Get returns one player's projection.
func (r *Roster) Get(id string) (RemotePlayer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.players[id]
	return p, ok
}

// All returns a snapshot of every known remote player.
func (r *Roster) All() []RemotePlayer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]RemotePlayer, 0, len(r.players))
	for _, p := range r.players {
		out = append(out, p)
	}
	return out
}

// Count reports the number of known remote players.
func (r *Roster) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.players)
}

// TargetPosition reports the last known position of a living player.
// Satisfies the combat engine's target source.
func (r *Roster) TargetPosition(id string) (protocol.Vec3, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.players[id]
	if !ok || !p.Alive {
		return protocol.Vec3{}, false
	}
	return p.Position, true
}
