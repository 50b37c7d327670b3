package combat

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arena-client/internal/protocol"
	"arena-client/internal/world"
)

// ----------------------------------------------------------------------------
// Fakes
// ----------------------------------------------------------------------------

type sentMsg struct {
	kind    string
	payload any
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentMsg
}

func (s *fakeSender) Send(kind string, payload any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sentMsg{kind: kind, payload: payload})
	return nil
}

func (s *fakeSender) count(kind string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, m := range s.sent {
		if m.kind == kind {
			n++
		}
	}
	return n
}

func (s *fakeSender) attackRequests() []protocol.AttackRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []protocol.AttackRequest
	for _, m := range s.sent {
		if m.kind == protocol.KindPlayerAttack {
			out = append(out, m.payload.(protocol.AttackRequest))
		}
	}
	return out
}

type targetMap map[string]protocol.Vec3

func (m targetMap) TargetPosition(id string) (protocol.Vec3, bool) {
	p, ok := m[id]
	return p, ok
}

type eventRecorder struct {
	NopEvents
	mu          sync.Mutex
	deaths      []string
	respawns    []protocol.Vec3
	missed      []string
	indicators  []protocol.Vec3
	effects     []string
	statusTexts []string
}

func (r *eventRecorder) DeathEffectRequested(attackerID string) {
	r.mu.Lock()
	r.deaths = append(r.deaths, attackerID)
	r.mu.Unlock()
}

func (r *eventRecorder) RespawnEffectRequested(pos protocol.Vec3) {
	r.mu.Lock()
	r.respawns = append(r.respawns, pos)
	r.mu.Unlock()
}

func (r *eventRecorder) AttackMissed(targetID, _ string) {
	r.mu.Lock()
	r.missed = append(r.missed, targetID)
	r.mu.Unlock()
}

func (r *eventRecorder) MovementIndicatorRequested(target protocol.Vec3) {
	r.mu.Lock()
	r.indicators = append(r.indicators, target)
	r.mu.Unlock()
}

func (r *eventRecorder) AttackEffectRequested(_, targetID, attackType string) {
	r.mu.Lock()
	r.effects = append(r.effects, attackType+":"+targetID)
	r.mu.Unlock()
}

func (r *eventRecorder) StatusTextRequested(text string) {
	r.mu.Lock()
	r.statusTexts = append(r.statusTexts, text)
	r.mu.Unlock()
}

type harness struct {
	engine  *Engine
	sender  *fakeSender
	events  *eventRecorder
	targets targetMap
}

func newHarness(t *testing.T, class protocol.ClassType, targetIDs []string) *harness {
	t.Helper()
	h := &harness{
		sender:  &fakeSender{},
		events:  &eventRecorder{},
		targets: targetMap{},
	}
	h.engine = NewEngine(Config{
		Class:      class,
		Sender:     h.sender,
		Events:     h.events,
		Scene:      world.StaticTargets(targetIDs),
		Terrain:    world.FlatTerrain{Height: protocol.SpawnHeight},
		Targets:    h.targets,
		NowMillis:  func() int64 { return 1700000000000 },
		SpawnPoint: func() protocol.Vec3 { return protocol.Vec3{X: 3, Y: protocol.SpawnHeight, Z: 3} },
	})
	h.engine.HandleMessage(env(t, protocol.KindID, protocol.IDAssignment{ID: "self"}))
	return h
}

func env(t *testing.T, kind string, payload any) protocol.Envelope {
	t.Helper()
	frame, err := protocol.Encode(kind, payload)
	require.NoError(t, err)
	e, err := protocol.DecodeEnvelope(frame)
	require.NoError(t, err)
	return e
}

func (h *harness) killLocal(t *testing.T) {
	t.Helper()
	h.engine.HandleMessage(env(t, protocol.KindPlayerHealth, protocol.HealthUpdate{
		ID: "self", Health: 0, AttackerID: "p2",
	}))
	require.True(t, h.engine.Snapshot().IsDead)
}

// ----------------------------------------------------------------------------
// Initial state and movement
// ----------------------------------------------------------------------------

func TestEngine_InitialState(t *testing.T) {
	h := newHarness(t, protocol.ClassWarrior, nil)
	s := h.engine.Snapshot()

	assert.Equal(t, 120, s.Health)
	assert.Equal(t, 120, s.MaxHealth)
	assert.Equal(t, 100.0, s.Mana)
	assert.Equal(t, ModeIdle, s.Mode)
	assert.False(t, s.IsDead)
	assert.Equal(t, "self", h.engine.LocalID())
}

func TestEngine_DirectionalMovement(t *testing.T) {
	h := newHarness(t, protocol.ClassWarrior, nil)

	h.engine.DirectionPressed(DirUp)
	h.engine.Tick(0.1)

	s := h.engine.Snapshot()
	assert.Equal(t, ModeDirectional, s.Mode)
	assert.InDelta(t, 0.5, s.Position.Z, 1e-9) // 5.0 speed * 0.1s
	assert.Equal(t, 1, h.sender.count(protocol.KindPlayerMove))

	h.engine.DirectionReleased(DirUp)
	assert.Equal(t, ModeIdle, h.engine.Snapshot().Mode)
}

func TestEngine_DiagonalMovementNormalized(t *testing.T) {
	h := newHarness(t, protocol.ClassWarrior, nil)
	start := h.engine.Snapshot().Position

	h.engine.DirectionPressed(DirUp)
	h.engine.DirectionPressed(DirRight)
	h.engine.Tick(1.0)

	moved := h.engine.Snapshot().Position.Sub(start)
	assert.InDelta(t, 5.0, moved.Length(), 1e-9)
}

func TestEngine_OpposedDirectionsCancel(t *testing.T) {
	h := newHarness(t, protocol.ClassWarrior, nil)
	start := h.engine.Snapshot().Position

	h.engine.DirectionPressed(DirLeft)
	h.engine.DirectionPressed(DirRight)
	h.engine.Tick(1.0)

	assert.Equal(t, start, h.engine.Snapshot().Position)
}

func TestEngine_PathMoveArrivesWithoutOvershoot(t *testing.T) {
	h := newHarness(t, protocol.ClassWarrior, nil)
	target := protocol.Vec3{X: 3, Y: protocol.SpawnHeight, Z: 0}

	h.engine.MoveTo(target)
	assert.Equal(t, ModePath, h.engine.Snapshot().Mode)

	for i := 0; i < 20; i++ {
		h.engine.Tick(0.1)
		pos := h.engine.Snapshot().Position
		assert.LessOrEqual(t, pos.X, target.X+1e-9, "never overshoots")
	}

	s := h.engine.Snapshot()
	assert.Equal(t, ModeIdle, s.Mode)
	assert.Nil(t, s.TargetPosition)
	assert.LessOrEqual(t, s.Position.DistanceTo(target), ArrivalEpsilon)
}

func TestEngine_LargeStepClampedToTarget(t *testing.T) {
	h := newHarness(t, protocol.ClassWarrior, nil)
	target := protocol.Vec3{X: 1, Y: protocol.SpawnHeight, Z: 0}

	h.engine.MoveTo(target)
	h.engine.Tick(10) // one huge step

	assert.Equal(t, target, h.engine.Snapshot().Position)
}

func TestEngine_DirectionCancelsPathAndPendingAttack(t *testing.T) {
	h := newHarness(t, protocol.ClassRanger, []string{"p2"})
	h.targets["p2"] = protocol.Vec3{X: 50, Y: protocol.SpawnHeight, Z: 0}

	// Out-of-range attack parks a pending target.
	h.engine.Attack(h.targets["p2"])
	require.Equal(t, "p2", h.engine.Snapshot().PendingAttackTargetID)

	h.engine.DirectionPressed(DirUp)

	s := h.engine.Snapshot()
	assert.Equal(t, ModeDirectional, s.Mode)
	assert.Nil(t, s.TargetPosition)
	assert.Empty(t, s.PendingAttackTargetID)
}

// ----------------------------------------------------------------------------
// Attack resolution
// ----------------------------------------------------------------------------

func TestEngine_AttackInRange(t *testing.T) {
	h := newHarness(t, protocol.ClassWarrior, []string{"p2"})
	h.targets["p2"] = protocol.Vec3{X: 2, Y: protocol.SpawnHeight, Z: 0}

	h.engine.Attack(h.targets["p2"])

	attacks := h.sender.attackRequests()
	require.Len(t, attacks, 1)
	assert.Equal(t, "p2", attacks[0].TargetID)
	assert.Equal(t, 15, attacks[0].Damage)
	assert.Equal(t, AbilityAttack, attacks[0].AttackType)
	assert.NotEmpty(t, attacks[0].AttackID)
	assert.InDelta(t, 2.0, attacks[0].Distance, 1e-9)
	assert.Equal(t, int64(1700000000000), attacks[0].Timestamp)

	s := h.engine.Snapshot()
	assert.True(t, s.IsAttacking)
	assert.Equal(t, 1.0, s.Cooldowns.Attack)
	// Warrior on-hit mana refunds the cost but never exceeds the cap.
	assert.Equal(t, 100.0, s.Mana)
}

func TestEngine_AttackNeverMutatesHealth(t *testing.T) {
	h := newHarness(t, protocol.ClassWarrior, []string{"p2"})
	h.targets["p2"] = protocol.Vec3{X: 1, Y: protocol.SpawnHeight, Z: 0}

	h.engine.Attack(h.targets["p2"])

	// The speculative attempt changes nothing about health, locally.
	assert.Equal(t, 120, h.engine.Snapshot().Health)
}

func TestEngine_AttackRejectedOnCooldown(t *testing.T) {
	h := newHarness(t, protocol.ClassWarrior, []string{"p2"})
	h.targets["p2"] = protocol.Vec3{X: 1, Y: protocol.SpawnHeight, Z: 0}

	h.engine.Attack(h.targets["p2"])
	h.engine.Tick(0.3) // clears the attack lock, cooldown still running
	h.engine.Attack(h.targets["p2"])

	assert.Equal(t, 1, h.sender.count(protocol.KindPlayerAttack))
}

func TestEngine_AttackRejectedWhileAttacking(t *testing.T) {
	h := newHarness(t, protocol.ClassWarrior, []string{"p2"})
	h.targets["p2"] = protocol.Vec3{X: 1, Y: protocol.SpawnHeight, Z: 0}

	h.engine.Attack(h.targets["p2"])
	h.engine.Attack(h.targets["p2"]) // inside the attack lock window

	assert.Equal(t, 1, h.sender.count(protocol.KindPlayerAttack))
}

func TestEngine_AttackLockExpires(t *testing.T) {
	h := newHarness(t, protocol.ClassWarrior, []string{"p2"})
	h.targets["p2"] = protocol.Vec3{X: 1, Y: protocol.SpawnHeight, Z: 0}

	h.engine.Attack(h.targets["p2"])
	require.True(t, h.engine.Snapshot().IsAttacking)

	h.engine.Tick(0.1)
	assert.True(t, h.engine.Snapshot().IsAttacking)
	h.engine.Tick(0.15)
	assert.False(t, h.engine.Snapshot().IsAttacking)
}

func TestEngine_InsufficientManaRejectsSilently(t *testing.T) {
	h := newHarness(t, protocol.ClassWarrior, nil)

	// Burn mana down with the core skill until it no longer covers the
	// cost. Regeneration between uses is slower than the spend.
	rejected := false
	for i := 0; i < 50; i++ {
		if !h.engine.CoreSkill() {
			rejected = true
			break
		}
		h.engine.Tick(10.1) // let the cooldown clear
	}

	assert.True(t, rejected)
	assert.GreaterOrEqual(t, h.engine.Snapshot().Mana, 0.0)
}

func TestEngine_AttackWithoutTargetFallsBackToMove(t *testing.T) {
	h := newHarness(t, protocol.ClassWarrior, nil)
	point := protocol.Vec3{X: 4, Y: protocol.SpawnHeight, Z: 4}

	h.engine.Attack(point)

	s := h.engine.Snapshot()
	assert.Equal(t, ModePath, s.Mode)
	require.NotNil(t, s.TargetPosition)
	assert.Equal(t, point, *s.TargetPosition)
	assert.Empty(t, s.PendingAttackTargetID)
	assert.Zero(t, h.sender.count(protocol.KindPlayerAttack))
	assert.Len(t, h.events.indicators, 1)
}

func TestEngine_OutOfRangeAttackApproachesAndEngages(t *testing.T) {
	h := newHarness(t, protocol.ClassRanger, []string{"p2"})
	target := protocol.Vec3{X: 20, Y: protocol.SpawnHeight, Z: 0}
	h.targets["p2"] = target

	h.engine.Attack(target)

	// No resources spent yet; the player paths to 0.8x weapon range.
	s := h.engine.Snapshot()
	assert.Zero(t, h.sender.count(protocol.KindPlayerAttack))
	assert.Equal(t, 100.0, s.Mana)
	assert.Equal(t, ModePath, s.Mode)
	assert.Equal(t, "p2", s.PendingAttackTargetID)
	require.NotNil(t, s.TargetPosition)
	assert.InDelta(t, 20-0.8*9.0, s.TargetPosition.X, 1e-9)

	// Walk there; on arrival the attack fires from inside range.
	for i := 0; i < 60 && h.sender.count(protocol.KindPlayerAttack) == 0; i++ {
		h.engine.Tick(0.1)
	}

	attacks := h.sender.attackRequests()
	require.Len(t, attacks, 1)
	assert.Equal(t, "p2", attacks[0].TargetID)
	assert.LessOrEqual(t, attacks[0].Distance, 9.0)
	assert.Empty(t, h.engine.Snapshot().PendingAttackTargetID)
}

func TestEngine_PendingAttackDroppedWhenTargetGone(t *testing.T) {
	h := newHarness(t, protocol.ClassRanger, []string{"p2"})
	target := protocol.Vec3{X: 20, Y: protocol.SpawnHeight, Z: 0}
	h.targets["p2"] = target

	h.engine.Attack(target)
	require.Equal(t, "p2", h.engine.Snapshot().PendingAttackTargetID)

	// Target disappears from the roster before arrival.
	delete(h.targets, "p2")
	for i := 0; i < 60; i++ {
		h.engine.Tick(0.1)
	}

	assert.Zero(t, h.sender.count(protocol.KindPlayerAttack))
	assert.Empty(t, h.engine.Snapshot().PendingAttackTargetID)
	assert.Equal(t, ModeIdle, h.engine.Snapshot().Mode)
}

func TestEngine_IncomingHitIsEffectOnly(t *testing.T) {
	h := newHarness(t, protocol.ClassWarrior, nil)

	h.engine.HandleMessage(env(t, protocol.KindPlayerAttacked, protocol.PlayerAttacked{
		ID: "p2", TargetID: "self", Damage: 15, InRange: true,
	}))

	// The echo is presentation-only; health waits for playerHealth.
	assert.Equal(t, 120, h.engine.Snapshot().Health)
	assert.Equal(t, []string{"Hit by p2 for 15"}, h.events.statusTexts)

	// Out-of-range echoes and hits on other players stay silent.
	h.engine.HandleMessage(env(t, protocol.KindPlayerAttacked, protocol.PlayerAttacked{
		ID: "p2", TargetID: "self", Damage: 15, InRange: false,
	}))
	h.engine.HandleMessage(env(t, protocol.KindPlayerAttacked, protocol.PlayerAttacked{
		ID: "p2", TargetID: "p3", Damage: 15, InRange: true,
	}))
	assert.Len(t, h.events.statusTexts, 1)
}

func TestEngine_AttackMissedEventForwarded(t *testing.T) {
	h := newHarness(t, protocol.ClassWarrior, nil)

	h.engine.HandleMessage(env(t, protocol.KindPlayerAttackMissed, protocol.PlayerAttackMissed{
		ID: "self", TargetID: "p2", Reason: "out_of_range",
	}))
	h.engine.HandleMessage(env(t, protocol.KindPlayerAttackMissed, protocol.PlayerAttackMissed{
		ID: "p9", TargetID: "p2", Reason: "out_of_range",
	}))

	assert.Equal(t, []string{"p2"}, h.events.missed)
}

func TestEngine_AttackMissedIgnoredBeforeIdentity(t *testing.T) {
	rec := &eventRecorder{}
	e := NewEngine(Config{
		Class:  protocol.ClassWarrior,
		Sender: &fakeSender{},
		Events: rec,
	})

	// No id has been assigned; a miss with an empty id is not ours.
	e.HandleMessage(env(t, protocol.KindPlayerAttackMissed, protocol.PlayerAttackMissed{
		TargetID: "p2", Reason: "out_of_range",
	}))

	assert.Empty(t, rec.missed)
}

// ----------------------------------------------------------------------------
// Skills
// ----------------------------------------------------------------------------

func TestEngine_SkillSlotContract(t *testing.T) {
	h := newHarness(t, protocol.ClassWarrior, nil)

	assert.False(t, h.engine.UseSkillSlot(1))
	assert.False(t, h.engine.UseSkillSlot(5))

	assert.True(t, h.engine.UseSkillSlot(2))
	assert.False(t, h.engine.UseSkillSlot(2), "cooldown gates a second use")
	assert.True(t, h.engine.UseSkillSlot(3), "slots cool down independently")

	assert.InDelta(t, 70.0, h.engine.Snapshot().Mana, 1e-9)
}

func TestEngine_EvadeCooldown(t *testing.T) {
	h := newHarness(t, protocol.ClassWarrior, nil)

	assert.True(t, h.engine.Evade())
	assert.False(t, h.engine.Evade())

	h.engine.Tick(6.1)
	assert.True(t, h.engine.Evade())
}

// ----------------------------------------------------------------------------
// Resource ticking
// ----------------------------------------------------------------------------

func TestEngine_CooldownsDecayMonotonically(t *testing.T) {
	h := newHarness(t, protocol.ClassWarrior, []string{"p2"})
	h.targets["p2"] = protocol.Vec3{X: 1, Y: protocol.SpawnHeight, Z: 0}
	h.engine.Attack(h.targets["p2"])

	last := h.engine.Snapshot().Cooldowns.Attack
	for i := 0; i < 10; i++ {
		h.engine.Tick(0.15)
		cd := h.engine.Snapshot().Cooldowns.Attack
		assert.LessOrEqual(t, cd, last)
		assert.GreaterOrEqual(t, cd, 0.0)
		last = cd
	}
	assert.Zero(t, last)
}

func TestEngine_ClerkRegenFasterWhenIdle(t *testing.T) {
	spend := func(h *harness) {
		h.targets["p2"] = protocol.Vec3{X: 1, Y: protocol.SpawnHeight, Z: 0}
		h.engine.Attack(h.targets["p2"])
		require.InDelta(t, 95.0, h.engine.Snapshot().Mana, 1e-9)
	}

	idle := newHarness(t, protocol.ClassClerk, []string{"p2"})
	spend(idle)
	idle.engine.Tick(0.5)

	moving := newHarness(t, protocol.ClassClerk, []string{"p2"})
	spend(moving)
	moving.engine.DirectionPressed(DirUp)
	moving.engine.Tick(0.5)

	// Idle 2.0+3.0 per second, moving 2.0+1.0.
	assert.InDelta(t, 97.5, idle.engine.Snapshot().Mana, 1e-9)
	assert.InDelta(t, 96.5, moving.engine.Snapshot().Mana, 1e-9)
}

func TestEngine_RangerRegenSuppressedAfterAttack(t *testing.T) {
	h := newHarness(t, protocol.ClassRanger, []string{"p2"})
	h.targets["p2"] = protocol.Vec3{X: 5, Y: protocol.SpawnHeight, Z: 0}

	h.engine.Attack(h.targets["p2"])
	require.InDelta(t, 94.0, h.engine.Snapshot().Mana, 1e-9)

	// Inside the window only the base rate applies.
	h.engine.Tick(1.0)
	assert.InDelta(t, 95.5, h.engine.Snapshot().Mana, 1e-9)
	h.engine.Tick(1.0)
	assert.InDelta(t, 97.0, h.engine.Snapshot().Mana, 1e-9)

	// Past the window the bonus kicks back in, clamped at the cap.
	h.engine.Tick(1.0)
	assert.InDelta(t, 100.0, h.engine.Snapshot().Mana, 1e-9)
}

func TestEngine_ManaNeverExceedsCap(t *testing.T) {
	h := newHarness(t, protocol.ClassClerk, nil)
	for i := 0; i < 100; i++ {
		h.engine.Tick(1.0)
	}
	assert.Equal(t, 100.0, h.engine.Snapshot().Mana)
}

// ----------------------------------------------------------------------------
// Authoritative health, death, respawn
// ----------------------------------------------------------------------------

func TestEngine_HealthClampedToBounds(t *testing.T) {
	h := newHarness(t, protocol.ClassWarrior, nil)

	h.engine.HandleMessage(env(t, protocol.KindPlayerHealth, protocol.HealthUpdate{
		ID: "self", Health: 500,
	}))
	assert.Equal(t, 120, h.engine.Snapshot().Health)

	h.engine.HandleMessage(env(t, protocol.KindPlayerHealth, protocol.HealthUpdate{
		ID: "self", Health: 60,
	}))
	assert.Equal(t, 60, h.engine.Snapshot().Health)

	h.engine.HandleMessage(env(t, protocol.KindPlayerHealth, protocol.HealthUpdate{
		ID: "self", Health: -20,
	}))
	s := h.engine.Snapshot()
	assert.Equal(t, 0, s.Health)
	assert.True(t, s.IsDead)
}

func TestEngine_OtherPlayersHealthIgnored(t *testing.T) {
	h := newHarness(t, protocol.ClassWarrior, nil)

	h.engine.HandleMessage(env(t, protocol.KindPlayerHealth, protocol.HealthUpdate{
		ID: "p2", Health: 1,
	}))

	assert.Equal(t, 120, h.engine.Snapshot().Health)
}

func TestEngine_MaxHealthUpdateRaisesCeiling(t *testing.T) {
	h := newHarness(t, protocol.ClassWarrior, nil)
	maxHealth := 150

	h.engine.HandleMessage(env(t, protocol.KindPlayerHealth, protocol.HealthUpdate{
		ID: "self", Health: 150, MaxHealth: &maxHealth,
	}))

	s := h.engine.Snapshot()
	assert.Equal(t, 150, s.MaxHealth)
	assert.Equal(t, 150, s.Health)
}

func TestEngine_DeathRunsExactlyOnce(t *testing.T) {
	h := newHarness(t, protocol.ClassWarrior, nil)

	// Duplicate zero-health plus an explicit death message.
	h.engine.HandleMessage(env(t, protocol.KindPlayerHealth, protocol.HealthUpdate{ID: "self", Health: 0, AttackerID: "p2"}))
	h.engine.HandleMessage(env(t, protocol.KindPlayerHealth, protocol.HealthUpdate{ID: "self", Health: 0, AttackerID: "p2"}))
	h.engine.HandleMessage(env(t, protocol.KindPlayerDied, protocol.PlayerDied{ID: "self", AttackerID: "p2"}))

	assert.Equal(t, 1, h.sender.count(protocol.KindPlayerDeath))
	assert.Equal(t, []string{"p2"}, h.events.deaths)
}

func TestEngine_DeathClearsActivity(t *testing.T) {
	h := newHarness(t, protocol.ClassRanger, []string{"p2"})
	h.targets["p2"] = protocol.Vec3{X: 50, Y: protocol.SpawnHeight, Z: 0}
	h.engine.Attack(h.targets["p2"]) // path move with a pending attack

	h.killLocal(t)

	s := h.engine.Snapshot()
	assert.Equal(t, ModeIdle, s.Mode)
	assert.Nil(t, s.TargetPosition)
	assert.Empty(t, s.PendingAttackTargetID)
	assert.False(t, s.IsAttacking)
}

func TestEngine_DeadPlayerIgnoresIntents(t *testing.T) {
	h := newHarness(t, protocol.ClassWarrior, []string{"p2"})
	h.targets["p2"] = protocol.Vec3{X: 1, Y: protocol.SpawnHeight, Z: 0}
	h.killLocal(t)
	before := h.engine.Snapshot()

	h.engine.MoveTo(protocol.Vec3{X: 9, Z: 9})
	h.engine.DirectionPressed(DirUp)
	h.engine.Tick(1.0)
	h.engine.Attack(h.targets["p2"])
	assert.False(t, h.engine.CoreSkill())
	assert.False(t, h.engine.Evade())

	after := h.engine.Snapshot()
	assert.Equal(t, before.Position, after.Position)
	assert.Zero(t, h.sender.count(protocol.KindPlayerAttack))
	assert.Zero(t, h.sender.count(protocol.KindPlayerMove))
}

func TestEngine_RespawnRestoresEverything(t *testing.T) {
	h := newHarness(t, protocol.ClassWarrior, nil)
	h.killLocal(t)

	h.engine.Respawn()

	s := h.engine.Snapshot()
	assert.False(t, s.IsDead)
	assert.Equal(t, 120, s.Health)
	assert.Equal(t, 100.0, s.Mana)
	assert.Equal(t, protocol.Vec3{X: 3, Y: protocol.SpawnHeight, Z: 3}, s.Position)
	assert.Equal(t, ModeIdle, s.Mode)

	assert.Equal(t, 1, h.sender.count(protocol.KindPlayerRespawn))
	assert.Equal(t, 1, h.sender.count(protocol.KindPlayerHealth))
	assert.Len(t, h.events.respawns, 1)
}

func TestEngine_RespawnIdempotent(t *testing.T) {
	h := newHarness(t, protocol.ClassWarrior, nil)
	h.killLocal(t)

	h.engine.Respawn()
	h.engine.Respawn() // a stale countdown firing again

	assert.Equal(t, 1, h.sender.count(protocol.KindPlayerRespawn))
}

func TestEngine_RespawnWhileAliveIsNoop(t *testing.T) {
	h := newHarness(t, protocol.ClassWarrior, nil)
	h.engine.Respawn()
	assert.Zero(t, h.sender.count(protocol.KindPlayerRespawn))
}

func TestEngine_AuthoritativeRespawnWhileDead(t *testing.T) {
	h := newHarness(t, protocol.ClassWarrior, nil)
	h.killLocal(t)

	pos := protocol.Vec3{X: -5, Y: protocol.SpawnHeight, Z: -5}
	h.engine.HandleMessage(env(t, protocol.KindPlayerRespawned, protocol.PlayerRespawned{
		ID: "self", Position: &pos, Health: 120,
	}))

	s := h.engine.Snapshot()
	assert.False(t, s.IsDead)
	assert.Equal(t, pos, s.Position)
	assert.Equal(t, 120, s.Health)

	// No outbound respawn: the authority initiated this one.
	assert.Zero(t, h.sender.count(protocol.KindPlayerRespawn))
}

func TestEngine_AuthoritativeRespawnWhileAliveIgnored(t *testing.T) {
	h := newHarness(t, protocol.ClassWarrior, nil)
	pos := protocol.Vec3{X: -5, Y: protocol.SpawnHeight, Z: -5}

	h.engine.HandleMessage(env(t, protocol.KindPlayerRespawned, protocol.PlayerRespawned{
		ID: "self", Position: &pos, Health: 120,
	}))

	assert.NotEqual(t, pos, h.engine.Snapshot().Position)
}

func TestEngine_IdentityAssignedOnce(t *testing.T) {
	h := newHarness(t, protocol.ClassWarrior, nil)
	h.engine.HandleMessage(env(t, protocol.KindID, protocol.IDAssignment{ID: "other"}))
	assert.Equal(t, "self", h.engine.LocalID())
}
