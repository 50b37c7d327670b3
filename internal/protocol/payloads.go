package protocol

// ============================================================================
// CLIENT -> AUTHORITY
// ============================================================================

// JoinRequest carries the local player's data for the join handshake (join).
// ID is filled in once the authority has assigned one.
type JoinRequest struct {
	ID       string    `json:"id,omitempty"`
	Name     string    `json:"name"`
	Class    ClassType `json:"class"`
	Position Vec3      `json:"position"`
}

// GetExistingPlayersRequest asks for the current roster (getExistingPlayers).
type GetExistingPlayersRequest struct {
	TournamentID string `json:"tournamentId,omitempty"`
}

// MoveUpdate reports the local player's position (playerMove).
type MoveUpdate struct {
	Position Vec3 `json:"position"`
}

// AttackRequest is a speculative attack attempt (playerAttack). AttackID is a
// client-generated idempotency key correlating this logical attack across
// retransmission.
type AttackRequest struct {
	TargetID   string  `json:"targetId"`
	Damage     int     `json:"damage"`
	AttackType string  `json:"attackType"`
	AttackID   string  `json:"attackId"`
	Position   Vec3    `json:"position"`
	Distance   float64 `json:"distance"`
	Timestamp  int64   `json:"timestamp"`
}

// HealthReport mirrors the local player's health to the authority
// (playerHealth, outbound direction).
type HealthReport struct {
	ID         string `json:"id"`
	Health     int    `json:"health"`
	MaxHealth  int    `json:"maxHealth"`
	Damage     int    `json:"damage"`
	AttackerID string `json:"attackerId,omitempty"`
}

// RespawnNotification announces the local player respawning (playerRespawn).
type RespawnNotification struct {
	Position Vec3 `json:"position"`
	Health   int  `json:"health"`
}

// DeathNotification announces the local player's death (playerDeath).
type DeathNotification struct {
	AttackerID string `json:"attackerId,omitempty"`
}

// PingRequest is a liveness probe (ping).
type PingRequest struct {
	Timestamp int64 `json:"timestamp"`
}

// ============================================================================
// TOURNAMENT / BATTLE ROYALE ACTIONS (client -> authority)
// ============================================================================

type CreateTournamentRequest struct {
	Name string `json:"name"`
	Tier string `json:"tier"`
}

type JoinTournamentRequest struct {
	TournamentID string `json:"tournamentId"`
}

type TournamentStartRequest struct {
	TournamentID string `json:"tournamentId"`
}

type MatchCompleteRequest struct {
	TournamentID string `json:"tournamentId"`
	MatchID      string `json:"matchId"`
	WinnerID     string `json:"winnerId"`
}

type BracketRequest struct {
	TournamentID string `json:"tournamentId"`
}

type JoinBattleRoyaleRequest struct {
	BattleRoyaleID string `json:"battleRoyaleId"`
}

// ============================================================================
// AUTHORITY -> CLIENT
// ============================================================================

// IDAssignment assigns the local player identity (id / joinConfirmed).
type IDAssignment struct {
	ID string `json:"id"`
}

// PlayerInfo describes one player in roster payloads (playerJoined,
// existingPlayers). Optional fields are pointers so that absence is
// distinguishable from zero; Normalized applies the documented defaults.
type PlayerInfo struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Class     string     `json:"class"`
	Position  *Vec3      `json:"position"`
	Health    *int       `json:"health"`
	MaxHealth *int       `json:"maxHealth"`
	Alive     *bool      `json:"alive"`
	Stats     *BaseStats `json:"stats"`
}

// NormalizedPlayer is a PlayerInfo with every default applied: missing class
// is WARRIOR, missing position is the spawn origin, missing stats come from
// the class base table, missing alive is true.
type NormalizedPlayer struct {
	ID        string
	Name      string
	Class     ClassType
	Position  Vec3
	Health    int
	MaxHealth int
	Alive     bool
}

// Normalized resolves the untrusted payload into a complete player record.
func (p PlayerInfo) Normalized() NormalizedPlayer {
	class := ParseClass(p.Class)
	base := BaseStatsFor(class)
	if p.Stats != nil && p.Stats.MaxHealth > 0 {
		base = *p.Stats
	}

	out := NormalizedPlayer{
		ID:        p.ID,
		Name:      p.Name,
		Class:     class,
		Position:  SpawnOrigin(),
		Health:    base.MaxHealth,
		MaxHealth: base.MaxHealth,
		Alive:     true,
	}
	if p.Position != nil {
		out.Position = *p.Position
	}
	if p.MaxHealth != nil && *p.MaxHealth > 0 {
		out.MaxHealth = *p.MaxHealth
		out.Health = *p.MaxHealth
	}
	if p.Health != nil {
		out.Health = *p.Health
	}
	if p.Alive != nil {
		out.Alive = *p.Alive
	}
	return out
}

// ExistingPlayers is the roster snapshot sent after joining.
type ExistingPlayers struct {
	Players []PlayerInfo `json:"players"`
}

// PlayerLeft removes a player from the roster.
type PlayerLeft struct {
	ID string `json:"id"`
}

// PlayerMoved updates a remote player's position.
type PlayerMoved struct {
	ID       string `json:"id"`
	Position *Vec3  `json:"position"`
}

// PlayerAttacked is the authoritative echo of an attack. Damage application
// still waits for the corresponding health message.
type PlayerAttacked struct {
	ID         string  `json:"id"`
	TargetID   string  `json:"targetId"`
	Damage     int     `json:"damage"`
	AttackType string  `json:"attackType"`
	AttackID   string  `json:"attackId"`
	InRange    bool    `json:"inRange"`
	Distance   float64 `json:"distance"`
}

// PlayerAttackMissed reports an attack the authority rejected.
type PlayerAttackMissed struct {
	ID       string  `json:"id"`
	TargetID string  `json:"targetId"`
	Reason   string  `json:"reason"`
	Distance float64 `json:"distance"`
	MaxRange float64 `json:"maxRange"`
}

// HealthUpdate is the authoritative health message (playerHealth, inbound
// direction). It is the only source of truth for damage.
type HealthUpdate struct {
	ID         string `json:"id"`
	Health     int    `json:"health"`
	MaxHealth  *int   `json:"maxHealth"`
	Damage     int    `json:"damage"`
	AttackerID string `json:"attackerId"`
}

// PlayerDied reports an authoritative death.
type PlayerDied struct {
	ID         string `json:"id"`
	AttackerID string `json:"attackerId"`
}

// PlayerRespawned reports a player re-entering the world.
type PlayerRespawned struct {
	ID        string `json:"id"`
	Position  *Vec3  `json:"position"`
	Health    int    `json:"health"`
	MaxHealth *int   `json:"maxHealth"`
}

// ErrorMessage is a generic authority-side failure report.
type ErrorMessage struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ============================================================================
// TOURNAMENT / BATTLE ROYALE EVENTS (authority -> client)
// ============================================================================

// Match is one bracket pairing.
type Match struct {
	MatchID  string `json:"matchId"`
	Player1  string `json:"player1"`
	Player2  string `json:"player2"`
	WinnerID string `json:"winnerId,omitempty"`
	Status   string `json:"status"`
}

// Round is one ordered slice of matches within a bracket.
type Round struct {
	Matches []Match `json:"matches"`
}

// Bracket is the ordered sequence of rounds.
type Bracket struct {
	Rounds []Round `json:"rounds"`
}

type TournamentCreated struct {
	TournamentID string `json:"tournamentId"`
	Name         string `json:"name"`
	Tier         string `json:"tier"`
}

type TournamentJoined struct {
	TournamentID string `json:"tournamentId"`
	PlayerCount  int    `json:"playerCount"`
}

type TournamentPlayerCount struct {
	TournamentID string `json:"tournamentId"`
	PlayerCount  int    `json:"playerCount"`
	MaxPlayers   int    `json:"maxPlayers"`
}

type TournamentReady struct {
	TournamentID string `json:"tournamentId"`
}

type TournamentStarted struct {
	TournamentID string `json:"tournamentId"`
}

type TournamentBracketUpdate struct {
	TournamentID string  `json:"tournamentId"`
	Bracket      Bracket `json:"bracket"`
}

type TournamentMatchReady struct {
	TournamentID string `json:"tournamentId"`
	MatchID      string `json:"matchId"`
	Player1      string `json:"player1"`
	Player2      string `json:"player2"`
}

type TournamentComplete struct {
	TournamentID string `json:"tournamentId"`
	WinnerID     string `json:"winnerId"`
}

// TournamentUpdated carries incremental status changes (tournamentUpdated,
// newTournament reuses TournamentCreated, tournamentBracket reuses
// TournamentBracketUpdate).
type TournamentUpdated struct {
	TournamentID string `json:"tournamentId"`
	Status       string `json:"status"`
	PlayerCount  int    `json:"playerCount"`
}

// TournamentSummary is one entry in activeTournaments.
type TournamentSummary struct {
	TournamentID string `json:"tournamentId"`
	Name         string `json:"name"`
	Tier         string `json:"tier"`
	Status       string `json:"status"`
	PlayerCount  int    `json:"playerCount"`
}

type ActiveTournaments struct {
	Tournaments []TournamentSummary `json:"tournaments"`
}

type BattleRoyaleEvent struct {
	BattleRoyaleID string `json:"battleRoyaleId"`
	Event          string `json:"event"`
	Message        string `json:"message,omitempty"`
}

type BattleRoyaleInvitation struct {
	BattleRoyaleID string `json:"battleRoyaleId"`
	From           string `json:"from,omitempty"`
}

type BattleRoyaleCreated struct {
	BattleRoyaleID string `json:"battleRoyaleId"`
}

type BattleRoyaleJoined struct {
	BattleRoyaleID string `json:"battleRoyaleId"`
	PlayerCount    int    `json:"playerCount"`
}
