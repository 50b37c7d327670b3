package combat

import "arena-client/internal/protocol"

// Events is the sink for local notifications the presentation layer consumes.
// Every callback is speculative/visual-only: none of them is a source of
// truth for gameplay state.
type Events interface {
	HealthChanged(health, maxHealth int)
	ManaChanged(mana, maxMana float64)
	CooldownUpdated(ability string, remaining float64)
	MovementIndicatorRequested(target protocol.Vec3)
	AttackEffectRequested(attackID, targetID, attackType string)
	AttackMissed(targetID, reason string)
	DeathEffectRequested(attackerID string)
	RespawnEffectRequested(position protocol.Vec3)
	StatusTextRequested(text string)
}

// NopEvents discards every notification. Embedded by sinks that only care
// about a subset.
type NopEvents struct{}

func (NopEvents) HealthChanged(int, int)                       {}
func (NopEvents) ManaChanged(float64, float64)                 {}
func (NopEvents) CooldownUpdated(string, float64)              {}
func (NopEvents) MovementIndicatorRequested(protocol.Vec3)     {}
func (NopEvents) AttackEffectRequested(string, string, string) {}
func (NopEvents) AttackMissed(string, string)                  {}
func (NopEvents) DeathEffectRequested(string)                  {}
func (NopEvents) RespawnEffectRequested(protocol.Vec3)         {}
func (NopEvents) StatusTextRequested(string)                   {}
