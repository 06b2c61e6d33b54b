package log

import (
	"errors"
	"testing"

	"go.uber.org/zap"
)

type testLogger struct {
	entries []string
}

func (l *testLogger) Info(_ map[string]any, msg string)  { l.entries = append(l.entries, "INFO:"+msg) }
func (l *testLogger) Error(_ map[string]any, msg string) { l.entries = append(l.entries, "ERROR:"+msg) }
func (l *testLogger) Debug(_ map[string]any, msg string) { l.entries = append(l.entries, "DEBUG:"+msg) }
func (l *testLogger) Warn(_ map[string]any, msg string)  { l.entries = append(l.entries, "WARN:"+msg) }
func (l *testLogger) Panic(_ map[string]any, msg string) {}
func (l *testLogger) Fatal(_ map[string]any, msg string) {}

func TestActualZapLogger(t *testing.T) {
	Debug(map[string]any{
		"date":    "2025-01-02",
		"added":   3,
		"changes": true,
	}, "test debug")
	Info(nil, "test info")
	Warn(nil, "test warn")
	Error(map[string]any{"error": errors.New("boom")}, "test error")

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic, but none occurred")
		}
	}()
	Panic(nil, "test panic")
}

func TestSetLoggerAndGlobalLogging(t *testing.T) {
	orig := GetLogger()
	defer SetLogger(orig)

	tlog := &testLogger{}
	SetLogger(tlog)

	Info(nil, "info msg")
	Error(nil, "error msg")
	Debug(nil, "debug msg")
	Warn(nil, "warn msg")

	expected := []string{
		"INFO:info msg",
		"ERROR:error msg",
		"DEBUG:debug msg",
		"WARN:warn msg",
	}

	if len(tlog.entries) != len(expected) {
		t.Fatalf("expected %d log entries, got %d", len(expected), len(tlog.entries))
	}
	for i, msg := range expected {
		if tlog.entries[i] != msg {
			t.Errorf("expected log[%d] = %q, got %q", i, msg, tlog.entries[i])
		}
	}
}

func TestConfigure(t *testing.T) {
	orig := GetLogger()
	defer SetLogger(orig)

	tests := []struct {
		env     string
		level   string
		wantErr bool
	}{
		{"prod", "info", false},
		{"dev", "debug", false},
		{"prod", "WARN", false},
		{"dev", "error", false},
		{"prod", "verbose", true},
	}
	for _, tt := range tests {
		err := Configure(tt.env, tt.level)
		if (err != nil) != tt.wantErr {
			t.Errorf("Configure(%q, %q) err=%v, wantErr=%v", tt.env, tt.level, err, tt.wantErr)
		}
		if err == nil {
			if _, ok := GetLogger().(*zapLogger); !ok {
				t.Errorf("expected *zapLogger after Configure, got %T", GetLogger())
			}
		}
	}
}

func TestZapFields_SortedAndErrorsNamed(t *testing.T) {
	fields := zapFields(map[string]any{
		"zeta":  1,
		"alpha": "a",
		"error": errors.New("bad"),
	})
	if len(fields) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(fields))
	}
	want := []string{"alpha", "error", "zeta"}
	for i, k := range want {
		if fields[i].Key != k {
			t.Errorf("field[%d].Key = %q, want %q", i, fields[i].Key, k)
		}
	}
	if fields[1].Type != zap.NamedError("error", errors.New("x")).Type {
		t.Errorf("expected error field type for %q", fields[1].Key)
	}
}

func TestNoopLogger(t *testing.T) {
	l := NewNoopLogger()
	l.Info(nil, "x")
	l.Error(map[string]any{"k": "v"}, "x")
	l.Debug(nil, "x")
	l.Warn(nil, "x")
	l.Panic(nil, "x")
	l.Fatal(nil, "x")
}
