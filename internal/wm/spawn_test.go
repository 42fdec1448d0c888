package wm

import "testing"

func TestSpawnRejectsEmptyCommand(t *testing.T) {
	if err := Spawn("   "); err == nil {
		t.Fatal("expected an error for an empty command string")
	}
}

func TestSpawnArgvRejectsEmptyArgv(t *testing.T) {
	if err := SpawnArgv(nil); err == nil {
		t.Fatal("expected an error for an empty argv")
	}
}

func TestSpawnRunsTrue(t *testing.T) {
	if err := Spawn("true"); err != nil {
		t.Fatalf("unexpected error spawning a known-good binary: %v", err)
	}
}

func TestExecReplaceRejectsEmptyArgv(t *testing.T) {
	if err := ExecReplace(nil, nil); err == nil {
		t.Fatal("expected an error for an empty argv")
	}
}

func TestExecReplaceRejectsUnresolvableBinary(t *testing.T) {
	if err := ExecReplace([]string{"this-binary-does-not-exist-anywhere"}, nil); err == nil {
		t.Fatal("expected LookPath to fail for a nonexistent binary")
	}
}
