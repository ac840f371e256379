package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/pthm-cable/leverbox/store"
	"github.com/pthm-cable/leverbox/telemetry"
)

func TestNewLogHandler(t *testing.T) {
	var buf bytes.Buffer
	h, err := newLogHandler(&buf, "json", "warn")
	if err != nil {
		t.Fatalf("newLogHandler: %v", err)
	}
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info enabled at warn level")
	}
	slog.New(h).Warn("careful", "n", 3)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("json output: %v (%q)", err, buf.String())
	}
	if rec["msg"] != "careful" {
		t.Errorf("msg = %v, want careful", rec["msg"])
	}

	buf.Reset()
	h, err = newLogHandler(&buf, "text", "debug")
	if err != nil {
		t.Fatalf("newLogHandler text: %v", err)
	}
	slog.New(h).Debug("hello", "k", "v")
	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("text output %q missing message", buf.String())
	}

	if _, err := newLogHandler(&buf, "xml", "info"); err == nil {
		t.Error("expected error for unknown format")
	}
	if _, err := newLogHandler(&buf, "json", "loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestRootCommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"run", "gif", "view", "runs"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not found: %v", name, err)
		}
	}
	for _, flag := range []string{"config", "log-format", "log-level"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("missing persistent flag --%s", flag)
		}
	}
}

func TestPrintRuns(t *testing.T) {
	var buf bytes.Buffer
	runs := []store.RunRecord{{
		ID:        "abc",
		Seed:      7,
		Steps:     100,
		StartedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Summary:   telemetry.Summary{LeftContacts: 3, RightContacts: 1, FinalEnergy: 190.5},
	}}
	if err := printRuns(&buf, runs); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"RUN ID", "abc", "190.50"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
