package nakama

import "punto/internal/domain"

// Label is the match label advertised for quick-match queries.
type Label struct {
	Open  bool   `json:"open"`
	Game  string `json:"game"`
	Phase string `json:"phase"`
}

// PlayRequest is the payload of an OpPlay message.
type PlayRequest struct {
	Index int `json:"index"` // -1 requests an automatic move
}

// HandTopEvent carries a player's own next card, sent privately.
type HandTopEvent struct {
	Card domain.Card `json:"card"`
}

// RoundEndedEvent announces a round conclusion.
type RoundEndedEvent struct {
	Reason string `json:"reason"`
	Winner string `json:"winner,omitempty"`
	Round  int    `json:"round"`
}

// MatchEndedEvent announces the final winner.
type MatchEndedEvent struct {
	Winner string `json:"winner"`
}

// ErrorEvent reports a rejected action to its sender only.
type ErrorEvent struct {
	Message string `json:"message"`
}
