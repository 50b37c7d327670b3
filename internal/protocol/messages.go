package protocol

import "encoding/json"

// Envelope is the wire frame used in both directions: one self-describing
// JSON object per websocket text frame, discriminated by Type.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Client -> authority message kinds.
const (
	KindJoin               = "join"
	KindGetExistingPlayers = "getExistingPlayers"
	KindPlayerMove         = "playerMove"
	KindPlayerAttack       = "playerAttack"
	KindPlayerHealth       = "playerHealth"
	KindPlayerRespawn      = "playerRespawn"
	KindPlayerDeath        = "playerDeath"
	KindCreateTournament   = "createTournament"
	KindJoinTournament     = "joinTournament"
	KindTournamentStart    = "tournamentStart"
	KindMatchComplete      = "tournamentMatchComplete"
	KindBracketRequest     = "tournamentBracketRequest"
	KindJoinBattleRoyale   = "joinBattleRoyale"
	KindPing               = "ping"
)

// Authority -> client message kinds.
const (
	KindID                 = "id"
	KindJoinConfirmed      = "joinConfirmed"
	KindExistingPlayers    = "existingPlayers"
	KindPlayerJoined       = "playerJoined"
	KindPlayerLeft         = "playerLeft"
	KindPlayerMoved        = "playerMoved"
	KindPlayerAttacked     = "playerAttacked"
	KindPlayerAttackMissed = "playerAttackMissed"
	KindPlayerDied         = "playerDied"
	KindPlayerRespawned    = "playerRespawned"
	KindError              = "error"
)

// Tournament and battle-royale kinds (authority -> client).
const (
	KindTournamentCreated       = "tournamentCreated"
	KindTournamentJoined        = "tournamentJoined"
	KindTournamentPlayerCount   = "tournamentPlayerCount"
	KindTournamentReady         = "tournamentReady"
	KindTournamentStarted       = "tournamentStarted"
	KindTournamentBracketUpdate = "tournamentBracketUpdate"
	KindTournamentMatchReady    = "tournamentMatchReady"
	KindTournamentComplete      = "tournamentComplete"
	KindTournamentBracket       = "tournamentBracket"
	KindNewTournament           = "newTournament"
	KindTournamentUpdated       = "tournamentUpdated"
	KindActiveTournaments       = "activeTournaments"
	KindBattleRoyaleEvent       = "battleRoyaleEvent"
	KindBattleRoyaleInvitation  = "battleRoyaleInvitation"
	KindBattleRoyaleCreated     = "battleRoyaleCreated"
	KindBattleRoyaleJoined      = "battleRoyaleJoined"
)
