package combat

import "arena-client/internal/protocol"

// MovementMode is the mutually exclusive input source currently driving the
// player's position.
type MovementMode int

const (
	ModeIdle MovementMode = iota
	ModeDirectional
	ModePath
)

func (m MovementMode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeDirectional:
		return "directional"
	case ModePath:
		return "path"
	default:
		return "unknown"
	}
}

// Direction is a discrete movement axis intent.
type Direction int

const (
	DirUp Direction = iota
	DirDown
	DirLeft
	DirRight
)

// Cooldowns holds the remaining-seconds counters. Each decreases toward zero
// every tick and never goes negative.
type Cooldowns struct {
	Attack    float64
	CoreSkill float64
	Evade     float64
	Slots     [3]float64 // skill slots 2..4
}

// CombatState is the locally controlled player's combat state. Health is only
// ever mutated by authoritative messages; everything else is client-owned.
type CombatState struct {
	Class     protocol.ClassType
	Health    int
	MaxHealth int
	Mana      float64
	MaxMana   float64

	Cooldowns Cooldowns

	Mode           MovementMode
	Position       protocol.Vec3
	TargetPosition *protocol.Vec3

	PendingAttackTargetID string
	IsAttacking           bool
	IsDead                bool
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
