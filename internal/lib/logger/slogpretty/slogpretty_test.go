package slogpretty

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestPrettyHandlerWritesMessageAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	opts := PrettyHandlerOptions{SlogOpts: &slog.HandlerOptions{Level: slog.LevelDebug}}
	log := slog.New(opts.NewPrettyHandler(&buf)).With("service", "prime-checker")

	log.Info("check finished", "number", 97, "error", errors.New("none"))

	out := buf.String()
	for _, want := range []string{"check finished", `"number": 97`, `"service": "prime-checker"`, `"error": "none"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q does not contain %q", out, want)
		}
	}
}

func TestPrettyHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	opts := PrettyHandlerOptions{SlogOpts: &slog.HandlerOptions{Level: slog.LevelWarn}}
	log := slog.New(opts.NewPrettyHandler(&buf))

	log.Info("hidden")
	log.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record written at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("warn record missing: %q", out)
	}
}

func TestPrettyHandlerNestsGroups(t *testing.T) {
	var buf bytes.Buffer
	opts := PrettyHandlerOptions{SlogOpts: &slog.HandlerOptions{Level: slog.LevelDebug}}
	log := slog.New(opts.NewPrettyHandler(&buf)).
		With("service", "prime-checker").
		WithGroup("check").
		With("request_id", "r-1")

	log.Info("check finished", "number", 97, slog.Group("limits", "max", 1000))

	out := buf.String()
	start := strings.Index(out, "{")
	if start < 0 {
		t.Fatalf("no attributes in %q", out)
	}
	end := strings.LastIndex(out, "}")

	var fields map[string]interface{}
	if err := json.Unmarshal([]byte(out[start:end+1]), &fields); err != nil {
		t.Fatalf("attributes are not JSON: %v\n%s", err, out)
	}

	if fields["service"] != "prime-checker" {
		t.Errorf("service = %v, want top level", fields["service"])
	}
	check, ok := fields["check"].(map[string]interface{})
	if !ok {
		t.Fatalf("check group missing: %v", fields)
	}
	if check["request_id"] != "r-1" || check["number"] != float64(97) {
		t.Errorf("check group = %v", check)
	}
	limits, ok := check["limits"].(map[string]interface{})
	if !ok || limits["max"] != float64(1000) {
		t.Errorf("limits group = %v", check["limits"])
	}
	if _, flat := fields["number"]; flat {
		t.Errorf("number was flattened to the top level: %v", fields)
	}
}
