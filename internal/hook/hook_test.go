package hook

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestRun(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script helper")
	}

	script := filepath.Join(t.TempDir(), "qiv-command")
	body := "#!/bin/sh\necho \"key $1 on $2\"\necho second line\n"
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatalf("Failed to write helper: %v", err)
	}

	got, err := NewRunner(script).Run(3, "photo.jpg")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got != "key 3 on photo.jpg" {
		t.Errorf("Run() = %q, want %q", got, "key 3 on photo.jpg")
	}
}

func TestRunMissingCommand(t *testing.T) {
	r := NewRunner(filepath.Join(t.TempDir(), "does-not-exist"))
	if _, err := r.Run(1, "x.png"); err == nil {
		t.Error("Expected an error for a missing helper")
	}
}

func TestNewRunnerDefault(t *testing.T) {
	if r := NewRunner(""); r.Command != DefaultCommand {
		t.Errorf("Command = %q, want %q", r.Command, DefaultCommand)
	}
}
