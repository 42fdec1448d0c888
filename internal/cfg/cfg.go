// Package cfg allows for reading the user's configuration.
package cfg

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Appearance controls frame decoration geometry and color.
type Appearance struct {
	TitlebarHeight  uint16 `toml:"titlebar_height"`
	BorderWidth     uint16 `toml:"border_width"`
	FocusedColor    string `toml:"focused_color"`
	UnfocusedColor  string `toml:"unfocused_color"`
	TitlebarFont    string `toml:"titlebar_font"`
}

// MoveResize controls the interactive move/resize engine.
type MoveResize struct {
	SnapThreshold int32 `toml:"snap_threshold"`
}

// Focus controls which focus policy the manager constructs at startup.
type Focus struct {
	// Policy selects the base policy: "sloppy" or "click".
	Policy string `toml:"policy"`
	// NewWindows wraps the base policy with the FocusNewWindows decorator.
	NewWindows bool `toml:"focus_new_windows"`
}

// General holds top-level, uncategorized settings.
type General struct {
	DefaultTagset string `toml:"default_tagset"`
	// PrefixTimeoutMillis bounds how long the binding engine waits for the
	// next chord after entering a prefix chain before silently aborting
	// back to the root. 0 disables the timeout.
	PrefixTimeoutMillis int `toml:"prefix_timeout_millis"`
}

// Config contains an entire configuration profile.
type Config struct {
	General    General    `toml:"general"`
	Appearance Appearance `toml:"appearance"`
	MoveResize MoveResize `toml:"move_resize"`
	Focus      Focus      `toml:"focus"`
	Bindings   BindingMap `toml:"bind"`
}

// defaults seeds a Config with the values the manager uses when the user's
// file is silent on a setting, so a mostly-empty config is still usable.
func defaults() Config {
	return Config{
		General: General{DefaultTagset: ".", PrefixTimeoutMillis: 1000},
		Appearance: Appearance{
			TitlebarHeight: 18,
			BorderWidth:    1,
			FocusedColor:   "#5294e2",
			UnfocusedColor: "#3b3b3b",
			TitlebarFont:   "fixed",
		},
		MoveResize: MoveResize{SnapThreshold: 5},
		Focus:      Focus{Policy: "sloppy", NewWindows: true},
		Bindings:   make(BindingMap),
	}
}

// Load reads and parses the configuration file at path, falling back to
// $XDG_CONFIG_HOME/dimwm/config.toml (then ~/.config/dimwm/config.toml) if
// path is empty.
func Load(path string) (Config, error) {
	conf := defaults()
	if path == "" {
		var err error
		path, err = defaultPath()
		if err != nil {
			return conf, err
		}
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return conf, nil
	}
	if _, err := toml.DecodeFile(path, &conf); err != nil {
		return conf, fmt.Errorf("parse config %s: %w", path, err)
	}
	return conf, nil
}

func defaultPath() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "dimwm", "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "dimwm", "config.toml"), nil
}
