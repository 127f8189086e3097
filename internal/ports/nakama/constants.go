package nakama

const (
	// RpcQuickMatch is the Nakama RPC id clients call to find or create an
	// open Punto lobby.
	RpcQuickMatch = "quick_match"

	// MatchNamePunto is the authoritative match handler name registered
	// with the Nakama runtime.
	MatchNamePunto = "punto_match"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpJoinSession int64 = 1 // invited player marks themselves ready
	OpLaunch      int64 = 2 // creator starts the match
	OpPlay        int64 = 3 // place the top hand card (index -1 = auto)
	OpPeekCard    int64 = 4 // ask for own top hand card
	OpNextRound   int64 = 5 // creator advances past the break

	// Server -> Client events
	OpGameError    int64 = 100
	OpSessionState int64 = 101 // snapshot broadcast after every mutation
	OpHandTop      int64 = 102 // sent privately to the requesting player
	OpRoundEnded   int64 = 103
	OpMatchEnded   int64 = 104
)
