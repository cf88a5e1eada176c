package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/jbaarsen/metromap/pkg/layout"
)

// parseSettings runs the flag set against args and loads the result.
func parseSettings(t *testing.T, args ...string) (layout.Settings, error) {
	t.Helper()
	sf := &settingsFlags{}
	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	sf.register(cmd)
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	return sf.load(cmd)
}

func TestSettingsDefaults(t *testing.T) {
	s, err := parseSettings(t)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s != layout.DefaultSettings() {
		t.Errorf("settings = %+v, want defaults", s)
	}
}

func TestSettingsFlagOverrides(t *testing.T) {
	s, err := parseSettings(t, "--max-tries", "9", "--no-local-search", "--grid-width", "100")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.MaxTries != 9 {
		t.Errorf("MaxTries = %d, want 9", s.MaxTries)
	}
	if s.EnableLocalSearch {
		t.Error("EnableLocalSearch should be off")
	}
	if s.GridWidth != 100 {
		t.Errorf("GridWidth = %d, want 100", s.GridWidth)
	}
	// Untouched fields keep their defaults.
	if s.Seed != layout.DefaultSeed {
		t.Errorf("Seed = %d, want default", s.Seed)
	}
}

func TestSettingsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	content := "max_tries = 3\nseed = 7\nbend_cost_weight = 2.5\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := parseSettings(t, "--settings", path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.MaxTries != 3 || s.Seed != 7 || s.BendCostWeight != 2.5 {
		t.Errorf("file values not applied: %+v", s)
	}
}

func TestSettingsFlagBeatsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	if err := os.WriteFile(path, []byte("max_tries = 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := parseSettings(t, "--settings", path, "--max-tries", "11")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.MaxTries != 11 {
		t.Errorf("MaxTries = %d, want the flag value 11", s.MaxTries)
	}
}

func TestSettingsFileMissing(t *testing.T) {
	if _, err := parseSettings(t, "--settings", "/nonexistent/settings.toml"); err == nil {
		t.Error("expected error for missing settings file")
	}
}
