package debugconsole

import (
	"errors"
	"strings"
	"testing"
)

func TestNewModelTruncatesLogToWindow(t *testing.T) {
	log := make([]string, logLines*2)
	for i := range log {
		log[i] = "line"
	}
	m := NewModel(errors.New("boom"), nil, log)
	if len(m.log) != logLines {
		t.Fatalf("len(log) = %d, want %d", len(m.log), logLines)
	}
}

func TestViewIncludesCauseAndClients(t *testing.T) {
	clients := []ClientSnapshot{{Window: 1, Frame: 2, Class: "xterm", Title: "shell"}}
	m := NewModel(errors.New("boom"), clients, []string{"started"})
	view := m.View()
	if !strings.Contains(view, "boom") {
		t.Fatal("expected the crash cause in the view")
	}
	if !strings.Contains(view, "xterm") {
		t.Fatal("expected the client snapshot in the view")
	}
}

func TestUpdateIgnoresUnhandledMessage(t *testing.T) {
	m := NewModel(nil, nil, nil)
	_, cmd := m.Update(nil)
	if cmd != nil {
		t.Fatal("expected no command for an unhandled message")
	}
}
