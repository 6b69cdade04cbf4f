package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestLoggerWritesLevelAndFields(t *testing.T) {
	var buf bytes.Buffer

	l := New(Conf{Level: "debug", Service: "resort", Output: &buf}).With("booking_id", "AB12")

	l.LogErrorf("Could not save booking %v", "AB12")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, buf.String())
	}

	if entry["level"] != "error" {
		t.Errorf("level = %v, want error", entry["level"])
	}

	if entry["service"] != "resort" || entry["booking_id"] != "AB12" {
		t.Errorf("missing context fields: %v", entry)
	}

	if entry["message"] != "Could not save booking AB12" {
		t.Errorf("message = %v", entry["message"])
	}
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer

	l := New(Conf{Level: "warn", Output: &buf})

	l.LogInfo("hidden")
	l.LogDebugf("hidden")
	l.LogWarnf("shown")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 || !strings.Contains(lines[0], "shown") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestLoggerFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer

	l := New(Conf{Level: "loud", Output: &buf})

	l.LogDebugf("hidden")
	l.LogInfo("shown")

	if !strings.Contains(buf.String(), "shown") || strings.Contains(buf.String(), "hidden") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}
