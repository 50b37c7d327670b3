package combat

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"arena-client/internal/protocol"
	"arena-client/internal/world"
)

// Sender puts one message on the wire (or the outgoing queue while
// disconnected). Implemented by the session manager.
type Sender interface {
	Send(kind string, payload any) error
}

// TargetSource resolves a target id to its last known world position.
// Implemented by the session roster.
type TargetSource interface {
	TargetPosition(id string) (protocol.Vec3, bool)
}

// Config wires an Engine to its collaborators.
type Config struct {
	Class   protocol.ClassType
	Sender  Sender
	Events  Events
	Scene   world.TargetQuery
	Terrain world.Terrain
	Targets TargetSource
	Logger  *slog.Logger

	// MovementMultiplier scales every movement step. Defaults to 1.
	MovementMultiplier float64
	// NowMillis stamps outgoing attacks. Defaults to wall time.
	NowMillis func() int64
	// SpawnPoint picks the position for a respawn. Defaults to a random
	// point near the origin.
	SpawnPoint func() protocol.Vec3
}

// Engine is the player action state machine: movement mode, resource economy,
// cooldown-gated abilities, attack resolution and death/respawn for the one
// locally controlled player. All mutation goes through the engine mutex so
// the simulation tick and the session receive path stay serialized. Event
// sink callbacks run under that mutex and must not call back into the engine.
type Engine struct {
	sender  Sender
	events  Events
	scene   world.TargetQuery
	terrain world.Terrain
	targets TargetSource
	log     *slog.Logger

	moveMultiplier float64
	nowMillis      func() int64
	spawnPoint     func() protocol.Vec3

	mu              sync.Mutex
	localID         string
	state           CombatState
	tuning          ClassTuning
	pressed         map[Direction]bool
	attackLock      float64
	sinceLastAttack float64
}

// NewEngine builds an engine for the given class with full health and mana.
func NewEngine(cfg Config) *Engine {
	if cfg.Events == nil {
		cfg.Events = NopEvents{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.MovementMultiplier <= 0 {
		cfg.MovementMultiplier = 1
	}
	if cfg.NowMillis == nil {
		cfg.NowMillis = func() int64 { return time.Now().UnixMilli() }
	}
	if cfg.SpawnPoint == nil {
		cfg.SpawnPoint = randomSpawnPoint
	}

	class := protocol.ParseClass(string(cfg.Class))
	base := protocol.BaseStatsFor(class)
	return &Engine{
		sender:         cfg.Sender,
		events:         cfg.Events,
		scene:          cfg.Scene,
		terrain:        cfg.Terrain,
		targets:        cfg.Targets,
		log:            cfg.Logger,
		moveMultiplier: cfg.MovementMultiplier,
		nowMillis:      cfg.NowMillis,
		spawnPoint:     cfg.SpawnPoint,
		state: CombatState{
			Class:     class,
			Health:    base.MaxHealth,
			MaxHealth: base.MaxHealth,
			Mana:      float64(base.MaxMana),
			MaxMana:   float64(base.MaxMana),
			Position:  protocol.SpawnOrigin(),
		},
		tuning:          TuningFor(class),
		pressed:         make(map[Direction]bool),
		sinceLastAttack: RangerRegenWindow,
	}
}

func randomSpawnPoint() protocol.Vec3 {
	return protocol.Vec3{
		X: (rand.Float64() - 0.5) * 20,
		Y: protocol.SpawnHeight,
		Z: (rand.Float64() - 0.5) * 20,
	}
}

// Snapshot returns a copy of the current combat state for read-only use.
func (e *Engine) Snapshot() CombatState {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.state
	if e.state.TargetPosition != nil {
		t := *e.state.TargetPosition
		s.TargetPosition = &t
	}
	return s
}

// LocalID reports the authority-assigned player id, empty until assigned.
func (e *Engine) LocalID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.localID
}

// ----------------------------------------------------------------------------
// Simulation tick
// ----------------------------------------------------------------------------

// Tick advances cooldowns, mana regeneration and movement by dt seconds.
func (e *Engine) Tick(dt float64) {
	if dt <= 0 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	e.tickCooldownsLocked(dt)
	e.sinceLastAttack += dt
	if e.attackLock > 0 {
		e.attackLock -= dt
		if e.attackLock <= 0 {
			e.attackLock = 0
			e.state.IsAttacking = false
		}
	}

	if e.state.IsDead {
		return
	}
	e.tickManaLocked(dt)
	e.tickMovementLocked(dt)
}

func (e *Engine) tickCooldownsLocked(dt float64) {
	decay := func(cd *float64, name string) {
		if *cd <= 0 {
			return
		}
		*cd -= dt
		if *cd < 0 {
			*cd = 0
		}
		e.events.CooldownUpdated(name, *cd)
	}
	decay(&e.state.Cooldowns.Attack, AbilityAttack)
	decay(&e.state.Cooldowns.CoreSkill, AbilityCoreSkill)
	decay(&e.state.Cooldowns.Evade, AbilityEvade)
	slotNames := [3]string{AbilitySkill2, AbilitySkill3, AbilitySkill4}
	for i := range e.state.Cooldowns.Slots {
		decay(&e.state.Cooldowns.Slots[i], slotNames[i])
	}
}

func (e *Engine) tickManaLocked(dt float64) {
	t := e.tuning
	regen := t.ManaRegenRate * dt

	moving := e.state.Mode != ModeIdle
	if moving {
		regen += t.MovingRegenBonus * dt
	} else {
		regen += t.IdleRegenBonus * dt
	}
	if t.PostAttackRegenBonus > 0 && e.sinceLastAttack >= RangerRegenWindow {
		regen += t.PostAttackRegenBonus * dt
	}

	old := e.state.Mana
	e.state.Mana = clampFloat(old+regen, 0, e.state.MaxMana)
	if e.state.Mana != old {
		e.events.ManaChanged(e.state.Mana, e.state.MaxMana)
	}
}

func (e *Engine) tickMovementLocked(dt float64) {
	switch e.state.Mode {
	case ModeDirectional:
		dir := e.directionVectorLocked()
		if dir.Length() == 0 {
			return
		}
		step := e.tuning.MoveSpeed * dt * e.moveMultiplier
		e.applyPositionLocked(e.state.Position.Add(dir.Normalize().Scale(step)))

	case ModePath:
		if e.state.TargetPosition == nil {
			e.state.Mode = ModeIdle
			return
		}
		target := *e.state.TargetPosition
		remaining := target.Sub(e.state.Position)
		dist := remaining.Length()
		if dist <= ArrivalEpsilon {
			e.state.Mode = ModeIdle
			e.state.TargetPosition = nil
			if id := e.state.PendingAttackTargetID; id != "" {
				e.state.PendingAttackTargetID = ""
				if pos, ok := e.targetPositionLocked(id); ok {
					e.engageLocked(id, pos)
				}
			}
			return
		}
		step := e.tuning.MoveSpeed * dt * e.moveMultiplier
		if step > dist {
			// Clamp so the step never overshoots the target.
			step = dist
		}
		e.applyPositionLocked(e.state.Position.Add(remaining.Normalize().Scale(step)))
	}
}

func (e *Engine) directionVectorLocked() protocol.Vec3 {
	var v protocol.Vec3
	if e.pressed[DirRight] {
		v.X++
	}
	if e.pressed[DirLeft] {
		v.X--
	}
	if e.pressed[DirUp] {
		v.Z++
	}
	if e.pressed[DirDown] {
		v.Z--
	}
	return v
}

func (e *Engine) applyPositionLocked(next protocol.Vec3) {
	if e.terrain != nil {
		if !e.terrain.IsWalkable(next) {
			return
		}
		next.Y = e.terrain.HeightAt(next)
	}
	e.state.Position = next
	e.send(protocol.KindPlayerMove, protocol.MoveUpdate{Position: next})
}

// ----------------------------------------------------------------------------
// Movement intents
// ----------------------------------------------------------------------------

// DirectionPressed activates a discrete movement axis. Any active directional
// intent cancels a path move in progress.
func (e *Engine) DirectionPressed(d Direction) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.IsDead {
		return
	}
	e.pressed[d] = true
	e.state.TargetPosition = nil
	e.state.PendingAttackTargetID = ""
	e.state.Mode = ModeDirectional
}

// DirectionReleased deactivates a movement axis; releasing the last one
// returns the player to idle.
func (e *Engine) DirectionReleased(d Direction) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.pressed, d)
	if len(e.pressed) == 0 && e.state.Mode == ModeDirectional {
		e.state.Mode = ModeIdle
	}
}

// MoveTo starts a path move toward point (a pointer interaction projected
// into world space). A plain destination intent clears any pending attack.
func (e *Engine) MoveTo(point protocol.Vec3) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.IsDead {
		return
	}
	e.moveToLocked(point)
}

func (e *Engine) moveToLocked(point protocol.Vec3) {
	if e.terrain != nil {
		adjusted, ok := e.terrain.AdjustToWalkable(point, e.state.Position)
		if !ok {
			return
		}
		point = adjusted
	}
	e.state.PendingAttackTargetID = ""
	e.startPathLocked(point)
	e.events.MovementIndicatorRequested(point)
}

func (e *Engine) startPathLocked(point protocol.Vec3) {
	target := point
	e.state.TargetPosition = &target
	e.state.Mode = ModePath
}

// ----------------------------------------------------------------------------
// Attack resolution
// ----------------------------------------------------------------------------

// Attack resolves an attack intent at a clicked world point. With no target
// under the pointer it falls back to a move-to-click; with a target out of
// range it paths to 0.8x weapon range and engages on arrival; in range it
// spends resources and emits a speculative AttackAttempt. The attempt itself
// never mutates health; only authoritative messages do.
func (e *Engine) Attack(point protocol.Vec3) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.IsDead {
		return
	}

	targetID := e.pickTargetLocked()
	if targetID == "" {
		e.moveToLocked(point)
		return
	}
	pos, ok := e.targetPositionLocked(targetID)
	if !ok {
		e.moveToLocked(point)
		return
	}
	e.engageLocked(targetID, pos)
}

func (e *Engine) pickTargetLocked() string {
	if e.scene == nil {
		return ""
	}
	for _, id := range e.scene.RaycastTargets() {
		if id != "" && id != e.localID {
			return id
		}
	}
	return ""
}

func (e *Engine) targetPositionLocked(id string) (protocol.Vec3, bool) {
	if e.targets == nil {
		return protocol.Vec3{}, false
	}
	return e.targets.TargetPosition(id)
}

func (e *Engine) engageLocked(targetID string, pos protocol.Vec3) {
	dist := e.state.Position.DistanceTo(pos)
	if dist > e.tuning.AttackRange {
		// Out of range: spend nothing, walk to 0.8x range along the line
		// connecting player and target, re-evaluate on arrival.
		dir := pos.Sub(e.state.Position).Normalize()
		approach := pos.Sub(dir.Scale(ApproachRangeFactor * e.tuning.AttackRange))
		e.startPathLocked(approach)
		e.state.PendingAttackTargetID = targetID
		e.events.MovementIndicatorRequested(approach)
		return
	}
	e.tryAttackLocked(targetID, dist)
}

func (e *Engine) tryAttackLocked(targetID string, dist float64) {
	// Logical rejections are silent: nothing reaches the wire.
	if targetID == "" || e.state.IsAttacking {
		return
	}
	if e.state.Cooldowns.Attack > 0 {
		return
	}
	if e.state.Mana < e.tuning.AttackManaCost {
		return
	}

	e.state.Mana -= e.tuning.AttackManaCost
	if e.tuning.OnHitMana > 0 {
		// Warrior economy: mana back on landing a hit, granted at
		// attack-resolution time.
		e.state.Mana += e.tuning.OnHitMana
	}
	e.state.Mana = clampFloat(e.state.Mana, 0, e.state.MaxMana)
	e.state.Cooldowns.Attack = e.tuning.AttackCooldown
	e.state.IsAttacking = true
	e.attackLock = AttackLockWindow
	e.sinceLastAttack = 0

	attackID := uuid.NewString()
	e.send(protocol.KindPlayerAttack, protocol.AttackRequest{
		TargetID:   targetID,
		Damage:     e.tuning.AttackDamage,
		AttackType: AbilityAttack,
		AttackID:   attackID,
		Position:   e.state.Position,
		Distance:   dist,
		Timestamp:  e.nowMillis(),
	})

	e.events.AttackEffectRequested(attackID, targetID, AbilityAttack)
	e.events.ManaChanged(e.state.Mana, e.state.MaxMana)
	e.events.CooldownUpdated(AbilityAttack, e.state.Cooldowns.Attack)
}

// ----------------------------------------------------------------------------
// Skills
// ----------------------------------------------------------------------------

// CoreSkill invokes the class skill. It gates on cooldown and mana exactly
// like the basic attack and never changes the movement mode.
func (e *Engine) CoreSkill() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.useAbilityLocked(AbilityCoreSkill, &e.state.Cooldowns.CoreSkill,
		e.tuning.CoreSkillCooldown, e.tuning.CoreSkillManaCost)
}

// Evade invokes the evade ability under the same cooldown+mana contract.
func (e *Engine) Evade() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.useAbilityLocked(AbilityEvade, &e.state.Cooldowns.Evade,
		e.tuning.EvadeCooldown, e.tuning.EvadeManaCost)
}

// UseSkillSlot invokes skill slot 2, 3 or 4. The effect payload is a
// class-specific placeholder but the cooldown and mana contract is enforced.
func (e *Engine) UseSkillSlot(slot int) bool {
	if slot < 2 || slot > 4 {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	names := [3]string{AbilitySkill2, AbilitySkill3, AbilitySkill4}
	return e.useAbilityLocked(names[slot-2], &e.state.Cooldowns.Slots[slot-2],
		e.tuning.SkillSlotCooldown, e.tuning.SkillSlotManaCost)
}

func (e *Engine) useAbilityLocked(name string, cd *float64, total, cost float64) bool {
	if e.state.IsDead {
		return false
	}
	if *cd > 0 {
		return false
	}
	if e.state.Mana < cost {
		return false
	}
	e.state.Mana = clampFloat(e.state.Mana-cost, 0, e.state.MaxMana)
	*cd = total
	e.events.AttackEffectRequested(uuid.NewString(), "", name)
	e.events.ManaChanged(e.state.Mana, e.state.MaxMana)
	e.events.CooldownUpdated(name, total)
	return true
}

// ----------------------------------------------------------------------------
// Authoritative messages
// ----------------------------------------------------------------------------

// HandleMessage consumes session messages relevant to the local player.
// Authoritative health is the only thing allowed to change health; the rule
// prevents double damage between the local attack echo and the health update.
func (e *Engine) HandleMessage(env protocol.Envelope) {
	switch env.Type {
	case protocol.KindID, protocol.KindJoinConfirmed:
		p, err := protocol.DecodePayload[protocol.IDAssignment](env)
		if err != nil {
			e.log.Warn("dropping id payload", "err", err)
			return
		}
		e.mu.Lock()
		if e.localID == "" && p.ID != "" {
			e.localID = p.ID
		}
		e.mu.Unlock()

	case protocol.KindPlayerHealth:
		p, err := protocol.DecodePayload[protocol.HealthUpdate](env)
		if err != nil {
			e.log.Warn("dropping health payload", "err", err)
			return
		}
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.localID == "" || p.ID != e.localID {
			return
		}
		e.applyHealthLocked(p)

	case protocol.KindPlayerDied:
		p, err := protocol.DecodePayload[protocol.PlayerDied](env)
		if err != nil {
			e.log.Warn("dropping death payload", "err", err)
			return
		}
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.localID == "" || p.ID != e.localID {
			return
		}
		e.dieLocked(p.AttackerID)

	case protocol.KindPlayerAttacked:
		p, err := protocol.DecodePayload[protocol.PlayerAttacked](env)
		if err != nil {
			return
		}
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.localID == "" || p.TargetID != e.localID || !p.InRange {
			return
		}
		// Effects only. The damage lands via the playerHealth message, so
		// a duplicated echo can never double it.
		e.events.StatusTextRequested(fmt.Sprintf("Hit by %s for %d", p.ID, p.Damage))

	case protocol.KindPlayerAttackMissed:
		p, err := protocol.DecodePayload[protocol.PlayerAttackMissed](env)
		if err != nil {
			return
		}
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.localID == "" || p.ID != e.localID {
			return
		}
		e.events.AttackMissed(p.TargetID, p.Reason)

	case protocol.KindPlayerRespawned:
		p, err := protocol.DecodePayload[protocol.PlayerRespawned](env)
		if err != nil {
			return
		}
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.localID == "" || p.ID != e.localID || !e.state.IsDead {
			return
		}
		pos := protocol.SpawnOrigin()
		if p.Position != nil {
			pos = *p.Position
		}
		e.restoreLocked(pos, p.Health, p.MaxHealth)
	}
}

func (e *Engine) applyHealthLocked(p protocol.HealthUpdate) {
	if p.MaxHealth != nil && *p.MaxHealth > 0 {
		e.state.MaxHealth = *p.MaxHealth
	}
	old := e.state.Health
	e.state.Health = clampInt(p.Health, 0, e.state.MaxHealth)
	if e.state.Health != old {
		e.events.HealthChanged(e.state.Health, e.state.MaxHealth)
	}
	if e.state.Health == 0 {
		e.dieLocked(p.AttackerID)
	}
}

// dieLocked runs the death sequence exactly once; duplicate zero-health
// messages are no-ops.
func (e *Engine) dieLocked(attackerID string) {
	if e.state.IsDead {
		return
	}
	e.state.IsDead = true
	e.state.Health = 0
	e.state.Mode = ModeIdle
	e.state.TargetPosition = nil
	e.state.PendingAttackTargetID = ""
	e.state.IsAttacking = false
	e.attackLock = 0

	e.events.DeathEffectRequested(attackerID)
	e.send(protocol.KindPlayerDeath, protocol.DeathNotification{AttackerID: attackerID})
}

// Respawn completes the death countdown: restore resources, pick a new
// position and notify the authority. A no-op while the player is alive, so a
// duplicate countdown firing is harmless.
func (e *Engine) Respawn() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.state.IsDead {
		return
	}

	pos := e.spawnPoint()
	if e.terrain != nil {
		pos.Y = e.terrain.HeightAt(pos)
	}
	e.restoreLocked(pos, e.state.MaxHealth, nil)

	e.send(protocol.KindPlayerRespawn, protocol.RespawnNotification{
		Position: pos,
		Health:   e.state.Health,
	})
	e.send(protocol.KindPlayerHealth, protocol.HealthReport{
		ID:        e.localID,
		Health:    e.state.Health,
		MaxHealth: e.state.MaxHealth,
	})
}

func (e *Engine) restoreLocked(pos protocol.Vec3, health int, maxHealth *int) {
	if maxHealth != nil && *maxHealth > 0 {
		e.state.MaxHealth = *maxHealth
	}
	if health <= 0 {
		health = e.state.MaxHealth
	}
	e.state.IsDead = false
	e.state.Health = clampInt(health, 0, e.state.MaxHealth)
	e.state.Mana = e.state.MaxMana
	e.state.Position = pos
	e.state.Mode = ModeIdle
	e.state.TargetPosition = nil
	e.state.PendingAttackTargetID = ""

	e.events.RespawnEffectRequested(pos)
	e.events.HealthChanged(e.state.Health, e.state.MaxHealth)
	e.events.ManaChanged(e.state.Mana, e.state.MaxMana)
}

func (e *Engine) send(kind string, payload any) {
	if e.sender == nil {
		return
	}
	if err := e.sender.Send(kind, payload); err != nil {
		e.log.Warn("send failed", "kind", kind, "err", err)
	}
}
