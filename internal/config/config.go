package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// GameConfig holds transport-level tuning for Punto matches.
type GameConfig struct {
	// TurnDurationSeconds is how long the current player may idle before
	// the server substitutes an automatic move.
	TurnDurationSeconds int `json:"turn_duration_seconds"`
	// BreakDurationSeconds is how long a between-rounds break lasts before
	// the next round is dealt.
	BreakDurationSeconds int `json:"break_duration_seconds"`
}

const (
	defaultTurnDuration  = 30
	defaultBreakDuration = 5
)

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the game configuration from the given path. Only the
// first call reads the file.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}

		var c GameConfig
		if err := json.Unmarshal(data, &c); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal game config: %w", err)
			return
		}
		cfg = &c
	})
	return loadErr
}

// TurnDuration returns the configured turn duration in seconds, or a safe
// default when no configuration is loaded.
func TurnDuration() int {
	if cfg == nil || cfg.TurnDurationSeconds <= 0 {
		return defaultTurnDuration
	}
	return cfg.TurnDurationSeconds
}

// BreakDuration returns the configured break duration in seconds, or a safe
// default when no configuration is loaded.
func BreakDuration() int {
	if cfg == nil || cfg.BreakDurationSeconds <= 0 {
		return defaultBreakDuration
	}
	return cfg.BreakDurationSeconds
}
