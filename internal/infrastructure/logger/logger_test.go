package logger

import (
	"errors"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/studyplanner/core/internal/infrastructure/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.LoggerConfig
		wantErr bool
	}{
		{"json info", config.LoggerConfig{Level: "info", Format: "json", Output: "stdout"}, false},
		{"console debug", config.LoggerConfig{Level: "debug", Format: "console", Output: "stdout"}, false},
		{"bad level", config.LoggerConfig{Level: "loud", Format: "json"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && l.SugaredLogger == nil {
				t.Error("New() returned logger without core")
			}
		})
	}
}

func TestNewFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "planner.log")
	l, err := New(config.LoggerConfig{Level: "info", Format: "json", Output: "file", Filename: path})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	l.WithComponent("test").LogStoreOperation("save", 1.5, errors.New("disk full"))
	_ = l.Close()
}

func TestNopHelpers(t *testing.T) {
	l := NewNop()
	l.WithRequestID("abc").WithError(errors.New("boom")).Info("ignored")
	l.LogHTTPRequest("GET", "/", "abc", "127.0.0.1", 200, 0.3, nil)
	l.LogScheduleChange("add_task", "task_1", map[string]interface{}{"subject": "Math"})
}

func TestLogHTTPRequestStaysAtInfo(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}

	l.LogHTTPRequest("GET", "/get-events", "abc", "127.0.0.1", 500, 1.2, errors.New("boom"))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("entries: got %d, want 1", len(entries))
	}
	if entries[0].Level != zapcore.InfoLevel {
		t.Errorf("level: got %v, want info", entries[0].Level)
	}
	if got := entries[0].ContextMap()["error"]; got != "boom" {
		t.Errorf("error field: got %v", got)
	}
}
