package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDisabledLoggingIsNoop(t *testing.T) {
	if err := Initialize("", false, "info"); err != nil {
		t.Fatalf("disabled Initialize failed: %v", err)
	}
	defer Close()

	// Must not panic or create anything.
	Get(CategoryEngine).Info("ignored %d", 1)
	Session("ignored")
}

func TestEnabledLoggingWritesCategoryFile(t *testing.T) {
	root := t.TempDir()
	if err := Initialize(root, true, "debug"); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	Engine("phase %s started", "scope")
	timer := StartTimer(CategoryEngine, "unit")
	timer.Stop()
	Close()

	data, err := os.ReadFile(filepath.Join(root, "logs", "engine.log"))
	if err != nil {
		t.Fatalf("engine log not written: %v", err)
	}
	if !strings.Contains(string(data), "phase scope started") {
		t.Errorf("log content missing message: %q", string(data))
	}
}

func TestLevelFiltering(t *testing.T) {
	root := t.TempDir()
	if err := Initialize(root, true, "warn"); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	StoreDebug("below threshold")
	StoreWarn("kept")
	Close()

	data, err := os.ReadFile(filepath.Join(root, "logs", "store.log"))
	if err != nil {
		t.Fatalf("store log not written: %v", err)
	}
	if strings.Contains(string(data), "below threshold") {
		t.Error("debug line should be filtered at warn level")
	}
	if !strings.Contains(string(data), "kept") {
		t.Error("warn line missing")
	}
}
