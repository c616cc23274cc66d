package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewLoggerWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tempo.log")
	logger, err := newLogger("info", path)
	if err != nil {
		t.Fatalf("newLogger: %v", err)
	}
	logger.Debug("hidden")
	logger.Info("scheduler started")
	logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "scheduler started") {
		t.Errorf("log = %q, missing info entry", data)
	}
	if strings.Contains(string(data), "hidden") {
		t.Errorf("log = %q, debug entry should be filtered", data)
	}
}

func TestNewLoggerRejectsBadLevel(t *testing.T) {
	if _, err := newLogger("loud", "stderr"); err == nil {
		t.Error("expected error for unknown level")
	}
}
