package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBPath != "repoheroes.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.GitHubBaseURL != "https://api.github.com" {
		t.Errorf("GitHubBaseURL = %q", cfg.GitHubBaseURL)
	}
	if cfg.PlayerName != "Hero" {
		t.Errorf("PlayerName = %q", cfg.PlayerName)
	}
	if cfg.Balance.BossMultiplierPct != 250 {
		t.Errorf("BossMultiplierPct = %d", cfg.Balance.BossMultiplierPct)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("RH_DB_PATH", "/tmp/other.db")
	t.Setenv("RH_BOSS_MULTIPLIER_PCT", "300")
	t.Setenv("RH_PLAYER", "Grace")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBPath != "/tmp/other.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.Balance.BossMultiplierPct != 300 {
		t.Errorf("BossMultiplierPct = %d", cfg.Balance.BossMultiplierPct)
	}
	if cfg.PlayerName != "Grace" {
		t.Errorf("PlayerName = %q", cfg.PlayerName)
	}
}
