package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDurationsDefaultThenLoad(t *testing.T) {
	if got := TurnDuration(); got != defaultTurnDuration {
		t.Fatalf("unloaded turn duration = %d, want %d", got, defaultTurnDuration)
	}
	if got := BreakDuration(); got != defaultBreakDuration {
		t.Fatalf("unloaded break duration = %d, want %d", got, defaultBreakDuration)
	}

	path := filepath.Join(t.TempDir(), "punto_config.json")
	data := []byte(`{"turn_duration_seconds": 12, "break_duration_seconds": 3}`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if err := LoadGameConfig(path); err != nil {
		t.Fatalf("load config: %v", err)
	}
	if got := TurnDuration(); got != 12 {
		t.Fatalf("turn duration = %d, want 12", got)
	}
	if got := BreakDuration(); got != 3 {
		t.Fatalf("break duration = %d, want 3", got)
	}
}
