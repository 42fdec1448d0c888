package cfg_test

import (
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/dimwm/dimwm/internal/cfg"
)

func TestBindParsesModsKeyAndButton(t *testing.T) {
	var b cfg.Bind
	if err := b.UnmarshalTOML("mod4-shift-q"); err != nil {
		t.Fatal(err)
	}
	if b.Key == 0 {
		t.Fatal("expected a key to be set")
	}
	if b.Button != 0 {
		t.Fatal("did not expect a button")
	}
}

func TestBindRejectsKeyAndButtonTogether(t *testing.T) {
	var b cfg.Bind
	if err := b.UnmarshalTOML("mod4-q-lmb"); err == nil {
		t.Fatal("expected an error for a bind naming both a key and a button")
	}
}

func TestBindRejectsEmpty(t *testing.T) {
	var b cfg.Bind
	if err := b.UnmarshalTOML(""); err == nil {
		t.Fatal("expected an error for an empty bind")
	}
}

func TestBindAcceptsRawKeycode(t *testing.T) {
	var b cfg.Bind
	if err := b.UnmarshalTOML("mod4-code24"); err != nil {
		t.Fatal(err)
	}
	if b.Key != 24 {
		t.Fatalf("Key = %d, want 24", b.Key)
	}
}

func TestActionParsesNameAndArg(t *testing.T) {
	var a cfg.Action
	if err := a.UnmarshalTOML("spawn:xterm -e vim"); err != nil {
		t.Fatal(err)
	}
	if a.Name != "spawn" || a.Arg != "xterm -e vim" {
		t.Fatalf("got %+v", a)
	}
}

func TestActionWithoutArg(t *testing.T) {
	var a cfg.Action
	if err := a.UnmarshalTOML("focus-next"); err != nil {
		t.Fatal(err)
	}
	if a.Name != "focus-next" || a.Arg != "" {
		t.Fatalf("got %+v", a)
	}
}

func TestBindingMapParsesNestedPrefixChain(t *testing.T) {
	doc := `
[bind."mod4-space"]
"a" = "spawn:dmenu_run"
"b" = "tagset:work"

[bind]
"mod4-q" = "focus-next"
`
	var conf struct {
		Bind cfg.BindingMap `toml:"bind"`
	}
	if _, err := toml.Decode(doc, &conf); err != nil {
		t.Fatal(err)
	}
	if len(conf.Bind) != 2 {
		t.Fatalf("expected 2 top-level binds, got %d", len(conf.Bind))
	}
	var sawChain, sawAction bool
	for bind, entry := range conf.Bind {
		switch {
		case entry.Chain != nil:
			sawChain = true
			if len(entry.Chain) != 2 {
				t.Fatalf("expected 2 chained binds, got %d", len(entry.Chain))
			}
		case entry.Action != nil:
			sawAction = true
			if bind.Key == 0 {
				t.Fatal("expected a terminal bind with a key")
			}
		}
	}
	if !sawChain || !sawAction {
		t.Fatal("expected both a prefix chain entry and a terminal action entry")
	}
}

func TestBindingMapRejectsDuplicateBind(t *testing.T) {
	m := make(cfg.BindingMap)
	raw := map[string]any{
		"mod4-q": "focus-next",
		"q-mod4": "close",
	}
	if err := m.UnmarshalTOML(raw); err == nil {
		t.Fatal("expected an error for two spellings of the same bind")
	}
}
