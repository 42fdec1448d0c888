package wm

import "testing"

func TestMinibufferInsertAtCursor(t *testing.T) {
	m := NewMinibuffer("tags: ", "ab", nil, nil)
	m.MoveLeft()
	m.Insert("X")
	if m.Text() != "aXb" {
		t.Fatalf("Text() = %q, want %q", m.Text(), "aXb")
	}
}

func TestMinibufferDeleteWordStopsAtSpace(t *testing.T) {
	m := NewMinibuffer("", "foo bar", nil, nil)
	m.End()
	m.DeleteWord()
	if m.Text() != "foo " {
		t.Fatalf("Text() = %q, want %q", m.Text(), "foo ")
	}
}

func TestMinibufferDeleteCharAtStartIsNoop(t *testing.T) {
	m := NewMinibuffer("", "abc", nil, nil)
	m.Home()
	m.DeleteChar()
	if m.Text() != "abc" {
		t.Fatalf("Text() = %q, want unchanged", m.Text())
	}
}

func TestMinibufferCommitInvokesCallbackWithFinalText(t *testing.T) {
	var got string
	m := NewMinibuffer("", "hi", func(s string) { got = s }, nil)
	m.Insert("!")
	m.Commit()
	if got != "hi!" {
		t.Fatalf("commit callback got %q, want %q", got, "hi!")
	}
}

func TestMinibufferRollbackInvokesRollbackNotCommit(t *testing.T) {
	var committed, rolledBack bool
	m := NewMinibuffer("", "x", func(string) { committed = true }, func(string) { rolledBack = true })
	m.Rollback()
	if committed || !rolledBack {
		t.Fatalf("committed=%v rolledBack=%v, want false/true", committed, rolledBack)
	}
}

func TestMinibufferYankInsertsAtCursor(t *testing.T) {
	m := NewMinibuffer("", "", nil, nil)
	m.Yank("pasted")
	if m.Text() != "pasted" {
		t.Fatalf("Text() = %q, want %q", m.Text(), "pasted")
	}
}
