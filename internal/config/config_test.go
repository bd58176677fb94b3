package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TICK_RATE", "")
	t.Setenv("MIGRATE_ON_START", "")

	cfg := Load()
	if cfg.TickRate != 30 {
		t.Errorf("Expected tick rate 30, got %d", cfg.TickRate)
	}
	if !cfg.MigrateOnStart {
		t.Error("Expected migrations on start by default")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TICK_RATE", "60")
	t.Setenv("AI_DIFFICULTY", "hard")
	t.Setenv("MIGRATE_ON_START", "false")

	cfg := Load()
	if cfg.TickRate != 60 {
		t.Errorf("Expected tick rate 60, got %d", cfg.TickRate)
	}
	if cfg.AIDifficulty != "hard" {
		t.Errorf("Expected hard difficulty, got %s", cfg.AIDifficulty)
	}
	if cfg.MigrateOnStart {
		t.Error("Expected migrations disabled")
	}
}

func TestBadNumbersFallBack(t *testing.T) {
	t.Setenv("TICK_RATE", "fast")
	t.Setenv("MIGRATE_ON_START", "maybe")

	if got := getEnvInt("TICK_RATE", 30); got != 30 {
		t.Errorf("Expected fallback 30, got %d", got)
	}
	if got := getEnvBool("MIGRATE_ON_START", true); !got {
		t.Error("Expected fallback true")
	}
}
