package config

import (
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
)

func TestLoadSaveRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("CARDPERKS_DATA_DIR", "")
	t.Setenv("CARDPERKS_ELITE_GOAL", "")

	if Exists() {
		t.Fatal("config exists in a fresh dir")
	}
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.General.EliteGoal != 60 || cfg.General.YearStartNights != 5 {
		t.Errorf("defaults = %+v", cfg.General)
	}

	cfg.General.DataDir = "/data"
	cfg.General.EliteGoal = 45
	nights := 3
	cfg.Rules.Personal.NightsPerTier = &nights
	if err := Save(cfg); err != nil {
		t.Fatal(err)
	}
	if !Exists() {
		t.Fatal("config not written")
	}

	got, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if got.General.DataDir != "/data" || got.General.EliteGoal != 45 {
		t.Errorf("general = %+v", got.General)
	}
	if r := PersonalRules(got); r.NightsPerTier != 3 || r.MaxNights != 22 {
		t.Errorf("personal rules = %+v", r)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("CARDPERKS_DATA_DIR", "/env/data")
	t.Setenv("CARDPERKS_DB", "/env/state.db")
	t.Setenv("CARDPERKS_ELITE_GOAL", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.General.DataDir != "/env/data" {
		t.Errorf("data dir = %q", cfg.General.DataDir)
	}
	if DatabasePath(cfg) != "/env/state.db" {
		t.Errorf("db = %q", DatabasePath(cfg))
	}
	if cfg.General.EliteGoal != 60 {
		t.Errorf("bad goal override applied: %d", cfg.General.EliteGoal)
	}
}

func TestPaths(t *testing.T) {
	cfg := DefaultConfig()
	cfg.General.DataDir = "/base"
	if got := BenefitsPath(cfg); got != filepath.Join("/base", "benefits_config.yaml") {
		t.Errorf("benefits path = %q", got)
	}
	if got := SourceDir(cfg, "/abs/dir"); got != "/abs/dir" {
		t.Errorf("absolute dir rewritten: %q", got)
	}

	t.Setenv("XDG_DATA_HOME", "/xdg")
	cfg.General.Database = ""
	if got := DatabasePath(cfg); got != filepath.Join("/xdg", "cardperks", "cardperks.db") {
		t.Errorf("db path = %q", got)
	}
}

func TestTierOverrideApply(t *testing.T) {
	step := 2500.0
	zero := 0
	cert := 0.0
	o := TierOverride{Step: &step, MaxNights: &zero, Certificate: &cert}
	r := o.Apply(DefaultPersonalRules())

	if !r.Step.Equal(decimal.NewFromInt(2500)) {
		t.Errorf("step = %s", r.Step)
	}
	if r.MaxNights != 22 {
		t.Errorf("zero cap override applied: %d", r.MaxNights)
	}
	if !r.Certificate.IsZero() {
		t.Errorf("certificate = %s, want disabled", r.Certificate)
	}
}

func TestStatementCloseDay(t *testing.T) {
	tests := map[int]int{0: 23, 1: 1, 15: 15, 28: 28, 29: 23, -4: 23}
	for in, want := range tests {
		cfg := DefaultConfig()
		cfg.Rules.StatementCloseDay = in
		if got := StatementCloseDay(cfg); got != want {
			t.Errorf("StatementCloseDay(%d) = %d, want %d", in, got, want)
		}
	}
}
