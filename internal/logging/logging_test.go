package logging_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/logging"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("line is not JSON: %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestStdoutLogger_WritesJSONLines(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := logging.NewWriterLogger(&buf, "web", logging.LevelDebug)

	logger.Info("request served", logging.Field{Key: "status", Value: 200})

	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	if lines[0]["level"] != "info" || lines[0]["msg"] != "request served" || lines[0]["component"] != "web" {
		t.Errorf("unexpected entry: %v", lines[0])
	}
	fields := lines[0]["fields"].(map[string]any)
	if fields["status"] != float64(200) {
		t.Errorf("expected status field 200, got %v", fields["status"])
	}
}

func TestStdoutLogger_FiltersBelowMinLevel(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := logging.NewWriterLogger(&buf, "", logging.LevelWarn)

	logger.Debug("dropped")
	logger.Info("dropped")
	logger.Warn("kept")

	lines := decodeLines(t, &buf)
	if len(lines) != 1 || lines[0]["msg"] != "kept" {
		t.Fatalf("expected only the warn line, got %v", lines)
	}
}

func TestStdoutLogger_WithCarriesFieldsAndComponent(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	base := logging.NewWriterLogger(&buf, "root", logging.LevelInfo)

	child := base.With(
		logging.Field{Key: "component", Value: "poller"},
		logging.Field{Key: "report_id", Value: "abc"},
	)
	child.Error("fetch failed", logging.Field{Key: "error", Value: errors.New("boom")})

	lines := decodeLines(t, &buf)
	if lines[0]["component"] != "poller" {
		t.Errorf("expected component poller, got %v", lines[0]["component"])
	}
	fields := lines[0]["fields"].(map[string]any)
	if fields["report_id"] != "abc" {
		t.Errorf("expected persistent report_id, got %v", fields["report_id"])
	}
	if fields["error"] != "boom" {
		t.Errorf("expected error rendered as string, got %v", fields["error"])
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()
	cases := map[string]logging.Level{
		"debug":   logging.LevelDebug,
		"INFO":    logging.LevelInfo,
		"warning": logging.LevelWarn,
		"error":   logging.LevelError,
		"":        logging.LevelInfo,
		"verbose": logging.LevelInfo,
	}
	for in, want := range cases {
		if got := logging.ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
