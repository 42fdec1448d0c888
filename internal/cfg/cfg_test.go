package cfg_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dimwm/dimwm/internal/cfg"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	conf, err := cfg.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if conf.Appearance.TitlebarHeight == 0 {
		t.Fatal("expected a nonzero default titlebar height")
	}
	if conf.Focus.Policy != "sloppy" {
		t.Fatalf("Policy = %q, want sloppy", conf.Focus.Policy)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	doc := `
[appearance]
titlebar_height = 24

[focus]
policy = "click"

[bind]
"mod4-q" = "focus-next"
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	conf, err := cfg.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if conf.Appearance.TitlebarHeight != 24 {
		t.Fatalf("TitlebarHeight = %d, want 24", conf.Appearance.TitlebarHeight)
	}
	if conf.Focus.Policy != "click" {
		t.Fatalf("Policy = %q, want click", conf.Focus.Policy)
	}
	if conf.MoveResize.SnapThreshold != 5 {
		t.Fatalf("expected SnapThreshold default of 5 to survive a partial file, got %d", conf.MoveResize.SnapThreshold)
	}
	if len(conf.Bindings) != 1 {
		t.Fatalf("expected 1 binding, got %d", len(conf.Bindings))
	}
}

func TestLoadRejectsMalformedBind(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	doc := `
[bind]
"" = "focus-next"
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := cfg.Load(path); err == nil {
		t.Fatal("expected an error for an empty bind key")
	}
}
