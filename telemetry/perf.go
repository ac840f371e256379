package telemetry

import (
	"log/slog"
	"time"
)

// Phase is one stage of a driver iteration.
type Phase int

const (
	PhaseStep    Phase = iota // env.Step plus action sampling
	PhaseRecord               // StepRecord + CSV row
	PhaseRender               // frame raster and PNG write
	PhasePersist              // run log, summary, GIF, index
	numPhases
)

var phaseNames = [numPhases]string{"step", "record", "render", "persist"}

func (p Phase) String() string {
	if p < 0 || p >= numPhases {
		return "unknown"
	}
	return phaseNames[p]
}

// tickSample is the timing of one driver iteration.
type tickSample struct {
	total  time.Duration
	phases [numPhases]time.Duration
}

// PerfCollector keeps iteration timings over a rolling window of ticks.
// Not safe for concurrent use.
type PerfCollector struct {
	ring   []tickSample
	next   int
	filled int
	ticks  int // all ticks ever recorded

	cur        tickSample
	tickStart  time.Time
	phaseStart time.Time
	phase      Phase
	inPhase    bool

	lastFrame time.Time
	frame     time.Duration
}

// NewPerfCollector returns a collector averaging over window ticks
// (60 when window < 1).
func NewPerfCollector(window int) *PerfCollector {
	if window < 1 {
		window = 60
	}
	return &PerfCollector{ring: make([]tickSample, window)}
}

// StartTick begins timing a new iteration.
func (p *PerfCollector) StartTick() {
	p.tickStart = time.Now()
	p.cur = tickSample{}
	p.inPhase = false
}

// StartPhase closes the running phase, if any, and starts timing ph.
// A phase entered twice in one tick accumulates.
func (p *PerfCollector) StartPhase(ph Phase) {
	now := time.Now()
	p.closePhase(now)
	p.phase = ph
	p.phaseStart = now
	p.inPhase = true
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.inPhase && p.phase >= 0 && p.phase < numPhases {
		p.cur.phases[p.phase] += now.Sub(p.phaseStart)
	}
	p.inPhase = false
}

// EndTick closes the iteration and pushes it into the window.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	p.closePhase(now)
	p.cur.total = now.Sub(p.tickStart)

	p.ring[p.next] = p.cur
	p.next = (p.next + 1) % len(p.ring)
	if p.filled < len(p.ring) {
		p.filled++
	}
	p.ticks++
}

// RecordFrame marks a rendered viewer frame.
func (p *PerfCollector) RecordFrame() {
	now := time.Now()
	if !p.lastFrame.IsZero() {
		p.frame = now.Sub(p.lastFrame)
	}
	p.lastFrame = now
}

// PhaseShare is the windowed cost of one phase.
type PhaseShare struct {
	Phase Phase
	Avg   time.Duration
	Pct   float64 // share of the average tick, 0-100
}

// PerfStats summarizes the current window.
type PerfStats struct {
	Ticks   int // lifetime tick count
	Samples int // ticks in the window

	AvgTick time.Duration
	MinTick time.Duration
	MaxTick time.Duration

	Phases [numPhases]PhaseShare

	StepsPerSec float64

	Frame time.Duration
	FPS   float64
}

// Share returns the windowed cost of ph.
func (s PerfStats) Share(ph Phase) PhaseShare {
	if ph < 0 || ph >= numPhases {
		return PhaseShare{Phase: ph}
	}
	return s.Phases[ph]
}

// Stats aggregates the window.
func (p *PerfCollector) Stats() PerfStats {
	s := PerfStats{Ticks: p.ticks, Samples: p.filled, Frame: p.frame}
	if p.frame > 0 {
		s.FPS = float64(time.Second) / float64(p.frame)
	}
	for ph := Phase(0); ph < numPhases; ph++ {
		s.Phases[ph].Phase = ph
	}
	if p.filled == 0 {
		return s
	}

	var total time.Duration
	var phaseTotals [numPhases]time.Duration
	for i, smp := range p.ring[:p.filled] {
		total += smp.total
		if i == 0 || smp.total < s.MinTick {
			s.MinTick = smp.total
		}
		s.MaxTick = max(s.MaxTick, smp.total)
		for ph, d := range smp.phases {
			phaseTotals[ph] += d
		}
	}

	n := time.Duration(p.filled)
	s.AvgTick = total / n
	for ph := range phaseTotals {
		s.Phases[ph].Avg = phaseTotals[ph] / n
		if s.AvgTick > 0 {
			s.Phases[ph].Pct = 100 * float64(s.Phases[ph].Avg) / float64(s.AvgTick)
		}
	}
	if s.AvgTick > 0 {
		s.StepsPerSec = float64(time.Second) / float64(s.AvgTick)
	}
	return s
}

// LogValue implements slog.LogValuer. Phases that took no time in the
// window are omitted.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("ticks", s.Ticks),
		slog.Int64("avg_tick_us", s.AvgTick.Microseconds()),
		slog.Int64("min_tick_us", s.MinTick.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTick.Microseconds()),
		slog.Float64("steps_per_sec", s.StepsPerSec),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}
	for _, sh := range s.Phases {
		if sh.Avg > 0 {
			attrs = append(attrs, slog.Float64(sh.Phase.String()+"_pct", sh.Pct))
		}
	}
	return slog.GroupValue(attrs...)
}
