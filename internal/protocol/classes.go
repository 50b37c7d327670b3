package protocol

import "strings"

// ClassType identifies a player class on the wire.
type ClassType string

const (
	ClassClerk   ClassType = "CLERK"
	ClassWarrior ClassType = "WARRIOR"
	ClassRanger  ClassType = "RANGER"
)

// ParseClass normalizes a remote class value, case-insensitively. Unknown or
// missing classes default to WARRIOR.
func ParseClass(s string) ClassType {
	switch ClassType(strings.ToUpper(s)) {
	case ClassClerk, ClassWarrior, ClassRanger:
		return ClassType(strings.ToUpper(s))
	default:
		return ClassWarrior
	}
}

// BaseStats is the per-class resource table used when a remote payload omits
// stats entirely.
type BaseStats struct {
	MaxHealth int `json:"maxHealth"`
	MaxMana   int `json:"maxMana"`
}

var classBaseStats = map[ClassType]BaseStats{
	ClassClerk:   {MaxHealth: 80, MaxMana: 100},
	ClassWarrior: {MaxHealth: 120, MaxMana: 100},
	ClassRanger:  {MaxHealth: 90, MaxMana: 100},
}

// BaseStatsFor returns the base stat table for class, falling back to the
// WARRIOR table for unknown values.
func BaseStatsFor(class ClassType) BaseStats {
	if stats, ok := classBaseStats[class]; ok {
		return stats
	}
	return classBaseStats[ClassWarrior]
}
