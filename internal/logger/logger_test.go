package logger

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLevel(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		pretty    bool
		enabled   zapcore.Level
		disabled  zapcore.Level
		checkLess bool
	}{
		{name: "warn drops info", level: "warn", enabled: zapcore.WarnLevel, disabled: zapcore.InfoLevel, checkLess: true},
		{name: "upper case accepted", level: "ERROR", enabled: zapcore.ErrorLevel, disabled: zapcore.WarnLevel, checkLess: true},
		{name: "debug in pretty mode", level: "debug", pretty: true, enabled: zapcore.DebugLevel},
		{name: "unknown keeps production default", level: "verbose", enabled: zapcore.InfoLevel, disabled: zapcore.DebugLevel, checkLess: true},
		{name: "unknown keeps development default", level: "verbose", pretty: true, enabled: zapcore.DebugLevel},
		{name: "empty means info", level: "", pretty: true, enabled: zapcore.InfoLevel, disabled: zapcore.DebugLevel, checkLess: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New(tt.level, tt.pretty).(*loggerImpl)
			core := l.base.Core()
			if !core.Enabled(tt.enabled) {
				t.Errorf("level %s should be enabled", tt.enabled)
			}
			if tt.checkLess && core.Enabled(tt.disabled) {
				t.Errorf("level %s should be disabled", tt.disabled)
			}
		})
	}
}

func TestWithCarriesFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := wrap(zap.New(core))

	child := l.With(String("run", "r1"))
	child.Info("crawled", Int("lists", 3))
	child.Warnf("skipped %d repos", 2)
	l.Error("failed", Error(errors.New("boom")))

	entries := logs.AllUntimed()
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}

	first := entries[0].ContextMap()
	if first["run"] != "r1" || first["lists"] != int64(3) {
		t.Errorf("first entry fields = %v", first)
	}
	if entries[1].Message != "skipped 2 repos" || entries[1].ContextMap()["run"] != "r1" {
		t.Errorf("sugared entry = %q %v", entries[1].Message, entries[1].ContextMap())
	}
	if _, ok := entries[2].ContextMap()["run"]; ok {
		t.Error("parent logger picked up the child's fields")
	}
	if entries[2].ContextMap()["error"] != "boom" {
		t.Errorf("error field = %v", entries[2].ContextMap()["error"])
	}
}

func TestNewNop(t *testing.T) {
	l := NewNop()
	l.With(String("k", "v")).Info("dropped")
	if err := l.Sync(); err != nil {
		t.Errorf("Sync() = %v", err)
	}
}
