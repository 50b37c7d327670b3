package combat

import "arena-client/internal/protocol"

// Ability names used for cooldown events and outbound attack types.
const (
	AbilityAttack    = "attack"
	AbilityCoreSkill = "coreSkill"
	AbilityEvade     = "evade"
	AbilitySkill2    = "skill2"
	AbilitySkill3    = "skill3"
	AbilitySkill4    = "skill4"
)

const (
	// ArrivalEpsilon is the distance at which a path move counts as arrived.
	ArrivalEpsilon = 0.2
	// AttackLockWindow is how long isAttacking stays set after an attack.
	AttackLockWindow = 0.2
	// ApproachRangeFactor: when a target is out of range the player paths to
	// a point at this fraction of weapon range from the target.
	ApproachRangeFactor = 0.8
	// RangerRegenWindow is how long after an attack the ranger bonus stays
	// suppressed.
	RangerRegenWindow = 2.5
	// RespawnDelaySeconds is the fixed countdown before respawn. The
	// countdown itself is owned by the presentation layer.
	RespawnDelaySeconds = 5.0
)

// ClassTuning is the per-class gameplay table.
type ClassTuning struct {
	MoveSpeed    float64
	AttackRange  float64
	AttackDamage int

	AttackCooldown float64
	AttackManaCost float64

	CoreSkillCooldown float64
	CoreSkillManaCost float64

	EvadeCooldown float64
	EvadeManaCost float64

	SkillSlotCooldown float64
	SkillSlotManaCost float64

	// ManaRegenRate is the base per-second regeneration every class gets.
	ManaRegenRate float64
	// IdleRegenBonus / MovingRegenBonus: clerk-style extra regen, higher
	// while standing still.
	IdleRegenBonus   float64
	MovingRegenBonus float64
	// PostAttackRegenBonus: ranger-style extra regen, active only once
	// RangerRegenWindow has elapsed since the last attack.
	PostAttackRegenBonus float64
	// OnHitMana: warrior-style mana gained on landing a hit.
	OnHitMana float64
}

var classTuning = map[protocol.ClassType]ClassTuning{
	protocol.ClassClerk: {
		MoveSpeed:         4.5,
		AttackRange:       6.0,
		AttackDamage:      8,
		AttackCooldown:    1.2,
		AttackManaCost:    5,
		CoreSkillCooldown: 8.0,
		CoreSkillManaCost: 30,
		EvadeCooldown:     5.0,
		EvadeManaCost:     10,
		SkillSlotCooldown: 6.0,
		SkillSlotManaCost: 15,
		ManaRegenRate:     2.0,
		IdleRegenBonus:    3.0,
		MovingRegenBonus:  1.0,
	},
	protocol.ClassWarrior: {
		MoveSpeed:         5.0,
		AttackRange:       2.2,
		AttackDamage:      15,
		AttackCooldown:    1.0,
		AttackManaCost:    4,
		CoreSkillCooldown: 10.0,
		CoreSkillManaCost: 25,
		EvadeCooldown:     6.0,
		EvadeManaCost:     10,
		SkillSlotCooldown: 7.0,
		SkillSlotManaCost: 15,
		ManaRegenRate:     1.5,
		OnHitMana:         8,
	},
	protocol.ClassRanger: {
		MoveSpeed:            5.5,
		AttackRange:          9.0,
		AttackDamage:         10,
		AttackCooldown:       1.5,
		AttackManaCost:       6,
		CoreSkillCooldown:    9.0,
		CoreSkillManaCost:    20,
		EvadeCooldown:        4.0,
		EvadeManaCost:        8,
		SkillSlotCooldown:    6.0,
		SkillSlotManaCost:    12,
		ManaRegenRate:        1.5,
		PostAttackRegenBonus: 2.5,
	},
}

// TuningFor returns the gameplay table for class, defaulting to the warrior
// table for unknown classes.
func TuningFor(class protocol.ClassType) ClassTuning {
	if t, ok := classTuning[class]; ok {
		return t
	}
	return classTuning[protocol.ClassWarrior]
}
