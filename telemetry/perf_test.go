package telemetry

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestPhaseString(t *testing.T) {
	tests := []struct {
		ph   Phase
		want string
	}{
		{PhaseStep, "step"},
		{PhaseRecord, "record"},
		{PhaseRender, "render"},
		{PhasePersist, "persist"},
		{Phase(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.ph.String(); got != tt.want {
			t.Errorf("Phase(%d).String() = %q, want %q", tt.ph, got, tt.want)
		}
	}
}

func TestPerfCollectorPhases(t *testing.T) {
	pc := NewPerfCollector(10)
	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseStep)
		time.Sleep(50 * time.Microsecond)
		pc.StartPhase(PhaseRender)
		time.Sleep(500 * time.Microsecond)
		pc.EndTick()
	}

	s := pc.Stats()
	if s.Ticks != 5 || s.Samples != 5 {
		t.Errorf("Ticks/Samples = %d/%d, want 5/5", s.Ticks, s.Samples)
	}
	if s.AvgTick <= 0 || s.StepsPerSec <= 0 {
		t.Errorf("expected positive timing, got avg %v rate %v", s.AvgTick, s.StepsPerSec)
	}
	if s.MinTick > s.AvgTick || s.AvgTick > s.MaxTick {
		t.Errorf("min %v avg %v max %v out of order", s.MinTick, s.AvgTick, s.MaxTick)
	}
	step, render := s.Share(PhaseStep), s.Share(PhaseRender)
	if render.Pct <= step.Pct {
		t.Errorf("render %.1f%% should exceed step %.1f%%", render.Pct, step.Pct)
	}
	if got := s.Share(PhasePersist).Avg; got != 0 {
		t.Errorf("persist avg = %v, want 0", got)
	}
}

func TestPerfCollectorWindow(t *testing.T) {
	pc := NewPerfCollector(3)
	for i := 0; i < 8; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseStep)
		pc.EndTick()
	}
	s := pc.Stats()
	if s.Ticks != 8 {
		t.Errorf("Ticks = %d, want 8", s.Ticks)
	}
	if s.Samples != 3 {
		t.Errorf("Samples = %d, want window size 3", s.Samples)
	}
}

func TestPerfCollectorEmpty(t *testing.T) {
	s := NewPerfCollector(0).Stats()
	if s.AvgTick != 0 || s.Samples != 0 || s.FPS != 0 {
		t.Errorf("empty stats = %+v", s)
	}
	if s.Share(PhaseRender).Phase != PhaseRender {
		t.Error("Share should carry its phase even when empty")
	}
}

func TestPerfCollectorFrames(t *testing.T) {
	pc := NewPerfCollector(10)
	pc.RecordFrame()
	time.Sleep(20 * time.Millisecond)
	pc.RecordFrame()

	s := pc.Stats()
	if s.Frame < 19*time.Millisecond {
		t.Errorf("Frame = %v, want >= 19ms", s.Frame)
	}
	if s.FPS <= 0 || s.FPS > 55 {
		t.Errorf("FPS = %v, want in (0, 55]", s.FPS)
	}
}

func TestPerfStatsLogValue(t *testing.T) {
	pc := NewPerfCollector(4)
	pc.StartTick()
	pc.StartPhase(PhasePersist)
	time.Sleep(100 * time.Microsecond)
	pc.EndTick()

	var buf bytes.Buffer
	slog.New(slog.NewJSONHandler(&buf, nil)).Info("perf", "perf", pc.Stats())
	out := buf.String()
	if !strings.Contains(out, `"persist_pct"`) {
		t.Errorf("log missing persist_pct: %s", out)
	}
	if strings.Contains(out, `"render_pct"`) {
		t.Errorf("idle phase should be omitted: %s", out)
	}
}
