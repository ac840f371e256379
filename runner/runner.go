// Package runner drives one simulation run: it steps the environment with
// random actions, renders frames and persists the results.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pthm-cable/leverbox/arena"
	"github.com/pthm-cable/leverbox/config"
	"github.com/pthm-cable/leverbox/env"
	"github.com/pthm-cable/leverbox/gifmaker"
	"github.com/pthm-cable/leverbox/renderer"
	"github.com/pthm-cable/leverbox/store"
	"github.com/pthm-cable/leverbox/telemetry"
)

// perfWindow is the number of steps averaged by the perf collector.
const perfWindow = 120

// Options configures a run.
type Options struct {
	Seed          int64 // 0 = time-based
	Steps         int
	DataDir       string // JSON run log
	OutputDir     string // steps.csv, summary.json, config.yaml; empty disables
	ImageDir      string
	GIFPath       string
	FrameDuration float64 // seconds per GIF frame
	GIFWidth      int
	Render        bool
	MakeGIF       bool
	KeepFrames    bool
	StorePath     string // SQLite run index; empty disables

	// HistoryLimit > 0 bounds memory for open-ended live runs: step
	// records are not kept and env histories are compacted to the last
	// HistoryLimit steps. The run log and index then hold no steps.
	HistoryLimit int
}

// OptionsFromConfig builds run options from the loaded config.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Seed:          cfg.Run.Seed,
		Steps:         cfg.Run.Steps,
		DataDir:       cfg.Run.DataDir,
		OutputDir:     cfg.Run.OutputDir,
		ImageDir:      cfg.Render.ImageDir,
		GIFPath:       cfg.GIF.OutputPath,
		FrameDuration: cfg.GIF.FrameDuration,
		GIFWidth:      cfg.GIF.Width,
		Render:        cfg.Render.Enabled,
		MakeGIF:       cfg.GIF.Enabled,
		StorePath:     cfg.Store.Path,
	}
}

// Result describes a finished run.
type Result struct {
	RunID         string
	Seed          int64
	Steps         int // steps actually taken
	Interrupted   bool
	Records       []env.StepRecord
	Summary       telemetry.Summary
	RunLogPath    string
	GIFPath       string // empty when no GIF was produced
	OutputDir     string
	FramesWritten int
	FramesFailed  int
	StartedAt     time.Time
	FinishedAt    time.Time
}

// Runner holds the state of one run.
type Runner struct {
	cfg  *config.Config
	opts Options

	scene   *arena.Scene
	env     *env.Environment
	sampler *env.ActionSampler

	frames *renderer.FrameWriter
	output *telemetry.OutputManager
	perf   *telemetry.PerfCollector

	runID     string
	seed      int64
	tick      int
	contact   arena.Contact
	records   []env.StepRecord
	startedAt time.Time
}

// New builds the scene, environment and sampler for a run.
func New(cfg *config.Config, opts Options) (*Runner, error) {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("output: %w", err)
	}

	scene := arena.NewScene(cfg)
	src := env.NewSource(seed)

	r := &Runner{
		cfg:       cfg,
		opts:      opts,
		scene:     scene,
		env:       env.New(env.ParamsFromConfig(cfg), scene, src),
		sampler:   env.NewActionSampler(src),
		output:    output,
		perf:      telemetry.NewPerfCollector(perfWindow),
		runID:     store.NewRunID(),
		seed:      seed,
		startedAt: time.Now(),
	}

	if opts.Render {
		fr := renderer.NewFrameRenderer(renderer.OptionsFromConfig(cfg, scene.Fixtures()))
		r.frames = renderer.NewFrameWriter(opts.ImageDir, fr)
	}

	if err := output.WriteConfig(cfg); err != nil {
		slog.Warn("failed to write config snapshot", "error", err)
	}

	return r, nil
}

// Env returns the environment being driven.
func (r *Runner) Env() *env.Environment {
	return r.env
}

// Scene returns the arena.
func (r *Runner) Scene() *arena.Scene {
	return r.scene
}

// Tick returns the number of steps taken.
func (r *Runner) Tick() int {
	return r.tick
}

// Seed returns the resolved seed.
func (r *Runner) Seed() int64 {
	return r.seed
}

// LastContact returns the lever contacts of the most recent step.
func (r *Runner) LastContact() arena.Contact {
	return r.contact
}

// Perf returns the phase timing collector.
func (r *Runner) Perf() *telemetry.PerfCollector {
	return r.perf
}

// Step samples one action, advances the environment and records the
// result. A failed frame write is logged and does not stop the run.
func (r *Runner) Step() (env.StepRecord, error) {
	r.perf.StartTick()
	defer r.perf.EndTick()

	r.perf.StartPhase(telemetry.PhaseStep)
	action := r.sampler.Sample()
	res, err := r.env.Step(action)
	if err != nil {
		return env.StepRecord{}, fmt.Errorf("step %d: %w", r.tick, err)
	}

	r.contact = res.Contact

	r.perf.StartPhase(telemetry.PhaseRecord)
	rec := r.env.Record(r.tick, res)
	if r.opts.HistoryLimit > 0 {
		// trim in batches of HistoryLimit steps
		if r.env.View().Steps() >= 2*r.opts.HistoryLimit {
			r.env.Compact(r.opts.HistoryLimit)
		}
	} else {
		r.records = append(r.records, rec)
	}
	if err := r.output.WriteStep(telemetry.ToCSV(rec, action)); err != nil {
		slog.Error("failed to write step", "timestep", r.tick, "error", err)
	}

	if r.frames != nil {
		r.perf.StartPhase(telemetry.PhaseRender)
		// errors are logged by the writer
		_, _ = r.frames.Write(r.env.Snapshot(r.tick))
	}

	slog.Debug("step",
		"timestep", r.tick,
		"action", action.String(),
		"x", rec.Position[0],
		"y", rec.Position[1],
		"energy", rec.Energy,
		"left", rec.LeftLeverContacts,
		"right", rec.RightLeverContacts,
	)

	r.tick++
	return rec, nil
}

// Summary summarizes the run so far.
func (r *Runner) Summary() telemetry.Summary {
	state := r.env.State()
	s := telemetry.Summarize(&state)
	s.RunID = r.runID
	s.Seed = r.seed
	return s
}

// Finish persists the run: JSON run log, summary, GIF and run index.
func (r *Runner) Finish(interrupted bool) (*Result, error) {
	r.perf.StartTick()
	r.perf.StartPhase(telemetry.PhasePersist)
	defer r.perf.EndTick()

	summary := r.Summary()

	res := &Result{
		RunID:       r.runID,
		Seed:        r.seed,
		Steps:       r.tick,
		Interrupted: interrupted,
		Records:     r.records,
		Summary:     summary,
		OutputDir:   r.output.Dir(),
		StartedAt:   r.startedAt,
	}

	path, err := telemetry.SaveRunLog(r.records, r.opts.DataDir, r.startedAt, r.runID)
	if err != nil {
		return res, fmt.Errorf("save run log: %w", err)
	}
	res.RunLogPath = path
	slog.Info("run log saved", "path", path, "records", len(r.records))

	if err := r.output.WriteSummary(summary); err != nil {
		slog.Error("failed to write summary", "error", err)
	}

	if r.frames != nil {
		res.FramesWritten, res.FramesFailed = r.frames.Counts()
		if r.opts.MakeGIF {
			res.GIFPath = r.assembleGIF()
		}
	}

	res.FinishedAt = time.Now()

	if r.opts.StorePath != "" {
		if err := r.index(res); err != nil {
			return res, err
		}
	}

	return res, nil
}

// assembleGIF builds the animation and returns its path, or "" on failure.
func (r *Runner) assembleGIF() string {
	gr, err := gifmaker.Assemble(r.opts.ImageDir, r.opts.GIFPath, r.opts.FrameDuration, gifmaker.Options{
		Width:      r.opts.GIFWidth,
		KeepFrames: r.opts.KeepFrames,
	})
	if errors.Is(err, gifmaker.ErrNoFrames) {
		slog.Warn("no frames to assemble", "dir", r.opts.ImageDir)
		return ""
	}
	if err != nil {
		slog.Error("gif assembly failed", "error", err)
		return ""
	}
	slog.Info("gif written",
		"path", gr.Path,
		"frames", gr.Frames,
		"skipped", gr.Skipped,
		"deleted", gr.Deleted,
	)
	return gr.Path
}

func (r *Runner) index(res *Result) error {
	st, err := store.NewStore(r.opts.StorePath)
	if err != nil {
		return fmt.Errorf("open run index: %w", err)
	}
	defer st.Close()

	_, err = st.RecordRun(store.RunRecord{
		ID:         res.RunID,
		Seed:       res.Seed,
		Steps:      res.Steps,
		StartedAt:  res.StartedAt,
		FinishedAt: res.FinishedAt,
		RunLogPath: res.RunLogPath,
		GIFPath:    res.GIFPath,
		OutputDir:  res.OutputDir,
		Summary:    res.Summary,
	}, res.Records)
	if err != nil {
		return fmt.Errorf("index run: %w", err)
	}
	return nil
}

// Close releases output files.
func (r *Runner) Close() {
	if err := r.output.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}

// Run performs opts.Steps steps, stopping early if ctx is cancelled, and
// then persists the results.
func Run(ctx context.Context, cfg *config.Config, opts Options) (*Result, error) {
	r, err := New(cfg, opts)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	slog.Info("starting run",
		"run_id", r.runID,
		"seed", r.seed,
		"steps", opts.Steps,
		"render", opts.Render,
		"gif", opts.MakeGIF,
	)

	interrupted := false
	for r.tick < opts.Steps {
		if err := ctx.Err(); err != nil {
			slog.Warn("run interrupted", "timestep", r.tick, "error", err)
			interrupted = true
			break
		}
		if _, err := r.Step(); err != nil {
			return nil, err
		}
	}

	res, err := r.Finish(interrupted)
	if err != nil {
		return res, err
	}

	slog.Info("run complete",
		"summary", res.Summary,
		"perf", r.perf.Stats(),
	)
	return res, nil
}
