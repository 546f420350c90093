package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"freeze_dryer/internal/models"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	return p
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	p := writeFile(t, "config.yml", `
port: "9090"
db:
  path: /tmp/x.db
serial:
  port: /dev/ttyUSB3
  line_assembly: true
sim:
  tick: 250ms
`)

	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9090" || cfg.DBPath != "/tmp/x.db" {
		t.Errorf("port/db = %q %q", cfg.Port, cfg.DBPath)
	}
	if cfg.SerialPort != "/dev/ttyUSB3" || !cfg.LineAssembly {
		t.Errorf("serial = %q assembly=%v", cfg.SerialPort, cfg.LineAssembly)
	}
	if cfg.SimTick != 250*time.Millisecond {
		t.Errorf("sim tick = %v", cfg.SimTick)
	}
	// untouched keys keep defaults
	if cfg.BaudRate != 115200 || cfg.SimFinishDelay != 5*time.Second || cfg.DefaultDevice != models.ConnectionMock {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	p := writeFile(t, "config.yml", "port: \"9090\"\n")
	t.Setenv("DRYER_PORT", "7070")
	t.Setenv("DRYER_SERIAL_BAUD", "9600")

	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "7070" || cfg.BaudRate != 9600 {
		t.Fatalf("env not applied: port=%q baud=%d", cfg.Port, cfg.BaudRate)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name, body string
	}{
		{"unknown device", "device:\n  default: bluetooth\n"},
		{"zero tick", "sim:\n  tick: 0s\n"},
		{"negative baud", "serial:\n  baud: -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeFile(t, "config.yml", tt.body)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yml")); err == nil {
		t.Fatalf("expected error for missing explicit file")
	}
}

func TestLoadRecipes(t *testing.T) {
	p := writeFile(t, "recipes.yml", `
recipes:
  - id: rec_peas
    name: Peas
    steps:
      - id: freeze
        name: Freeze
        temperature: -40
        pressure: 760000
        duration: 240
      - id: dry
        name: Dry
        temperature: 15
        pressure: 180
        duration: 900
`)
	rs, err := LoadRecipes(p)
	if err != nil {
		t.Fatalf("LoadRecipes: %v", err)
	}
	if len(rs) != 1 || rs[0].ID != "rec_peas" || len(rs[0].Steps) != 2 {
		t.Fatalf("unexpected recipes: %+v", rs)
	}
	if rs[0].Steps[0].Temperature != -40 || rs[0].Steps[1].Duration != 900 {
		t.Errorf("step fields: %+v", rs[0].Steps)
	}
	if err := rs[0].Validate(); err != nil {
		t.Errorf("loaded recipe invalid: %v", err)
	}
}

func TestLoadRecipes_Errors(t *testing.T) {
	if rs, err := LoadRecipes(""); err != nil || rs != nil {
		t.Fatalf("empty path = %v, %v", rs, err)
	}
	if _, err := LoadRecipes(writeFile(t, "bad.yml", "recipes: 5\n")); err == nil || !strings.Contains(err.Error(), "parse recipes file") {
		t.Fatalf("expected parse error, got %v", err)
	}
}
