package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{DEBUG, "DEBUG"},
		{INFO, "INFO"},
		{WARN, "WARN"},
		{ERROR, "ERROR"},
		{Level(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.level.String(); got != tt.want {
				t.Errorf("Level.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", DEBUG, false},
		{"INFO", INFO, false},
		{"", INFO, false},
		{"warning", WARN, false},
		{" Warn ", WARN, false},
		{"error", ERROR, false},
		{"verbose", INFO, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSetLevel(t *testing.T) {
	orig := std.GetLevel()
	defer std.SetLevel(orig)

	SetLevel(DEBUG)
	if std.GetLevel() != logrus.DebugLevel {
		t.Error("SetLevel did not change level")
	}

	SetLevel(ERROR)
	if std.GetLevel() != logrus.ErrorLevel {
		t.Error("SetLevel did not change level")
	}
}

func TestSetOutput(t *testing.T) {
	orig := std.Out
	defer SetOutput(orig)

	var buf bytes.Buffer
	SetOutput(&buf)
	Info("routed")

	if !strings.Contains(buf.String(), "routed") {
		t.Errorf("output = %q, want it to contain the message", buf.String())
	}
}

func TestWithField(t *testing.T) {
	logger := WithField("key", "value")

	if logger == nil {
		t.Fatal("WithField returned nil")
	}
	if logger.Fields()["key"] != "value" {
		t.Error("field not set correctly")
	}
	if len(defaultLogger.Fields()) > 0 {
		t.Error("should not modify default logger")
	}
}

func TestLogger_WithFields(t *testing.T) {
	base := New(&bytes.Buffer{}, INFO).WithField("existing", "value")

	logger := base.WithFields(map[string]interface{}{
		"new1": "value1",
		"new2": 2,
	})

	fields := logger.Fields()
	if len(fields) != 3 {
		t.Errorf("got %d fields, want 3", len(fields))
	}
	if fields["existing"] != "value" {
		t.Error("existing field not preserved")
	}
	if _, ok := base.Fields()["new1"]; ok {
		t.Error("original logger was modified")
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, WARN)

	logger.Debug("debug message")
	logger.Info("info message")
	if buf.Len() > 0 {
		t.Errorf("DEBUG and INFO should be filtered when level is WARN, got %q", buf.String())
	}

	logger.Warn("warn message")
	if !strings.Contains(buf.String(), "warn message") {
		t.Error("WARN should not be filtered")
	}

	buf.Reset()
	logger.Error("error message")
	if !strings.Contains(buf.String(), "error message") {
		t.Error("ERROR should not be filtered")
	}
}

func TestLogger_Format(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, DEBUG).WithField("alert_id", "a-1")

	logger.Info("created %d alerts", 2)

	output := buf.String()
	if !strings.Contains(output, "level=info") {
		t.Errorf("output should contain level, got %q", output)
	}
	if !strings.Contains(output, "created 2 alerts") {
		t.Errorf("output should contain formatted message, got %q", output)
	}
	if !strings.Contains(output, "alert_id=a-1") {
		t.Errorf("output should contain fields, got %q", output)
	}
}

func TestLogger_NoArgsKeepsPercent(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, INFO).Info("100% safe")

	if !strings.Contains(buf.String(), "100% safe") {
		t.Errorf("message without args should be logged verbatim, got %q", buf.String())
	}
}

func TestLogger_WithError(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, INFO).WithError(errors.New("disk full")).Error("save failed")

	if !strings.Contains(buf.String(), `error="disk full"`) {
		t.Errorf("output should carry the error field, got %q", buf.String())
	}
}
