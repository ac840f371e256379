package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/pthm-cable/leverbox/config"
	"github.com/pthm-cable/leverbox/gifmaker"
	"github.com/pthm-cable/leverbox/runner"
	"github.com/pthm-cable/leverbox/store"
	"github.com/pthm-cable/leverbox/viewer"
)

// configEnv names the environment variable holding the default config path.
const configEnv = "LEVERBOX_CONFIG"

// Persistent flag values
var (
	configPath string
	logFormat  string
	logLevel   string
)

func main() {
	for _, envFile := range []string{".env", "../.env"} {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	if err := newRootCmd().Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "leverbox",
		Short:         "Lever box rat simulation: random walk, two levers, an energy budget",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Initialize config before anything else
			if err := config.Init(configPath); err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			cfg := config.Cfg()
			if cmd.Flags().Changed("log-format") {
				cfg.Log.Format = logFormat
			}
			if cmd.Flags().Changed("log-level") {
				cfg.Log.Level = logLevel
			}
			handler, err := newLogHandler(os.Stdout, cfg.Log.Format, cfg.Log.Level)
			if err != nil {
				return err
			}
			slog.SetDefault(slog.New(handler))
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&configPath, "config", os.Getenv(configEnv), "Path to config.yaml (empty = use defaults, env "+configEnv+")")
	pf.StringVar(&logFormat, "log-format", "json", "Log format: json or text")
	pf.StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")

	root.AddCommand(newRunCmd(), newGIFCmd(), newViewCmd(), newRunsCmd())
	return root
}

// newLogHandler builds the slog handler for format ("json" or "text") at level.
func newLogHandler(w io.Writer, format, level string) (slog.Handler, error) {
	lvl, err := config.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	switch format {
	case "json", "":
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}), nil
	case "text":
		return charmlog.NewWithOptions(w, charmlog.Options{
			ReportTimestamp: true,
			Level:           charmlog.Level(lvl),
		}), nil
	}
	return nil, fmt.Errorf("unknown log format %q", format)
}

func newRunCmd() *cobra.Command {
	var (
		opts     runner.Options
		noRender bool
		noGIF    bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a simulation, save the run log and assemble a GIF",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Cfg()
			base := runner.OptionsFromConfig(cfg)

			f := cmd.Flags()
			if !f.Changed("seed") {
				opts.Seed = base.Seed
			}
			if !f.Changed("steps") {
				opts.Steps = base.Steps
			}
			if !f.Changed("data-dir") {
				opts.DataDir = base.DataDir
			}
			if !f.Changed("output-dir") {
				opts.OutputDir = base.OutputDir
			}
			if !f.Changed("image-dir") {
				opts.ImageDir = base.ImageDir
			}
			if !f.Changed("gif") {
				opts.GIFPath = base.GIFPath
			}
			if !f.Changed("frame-duration") {
				opts.FrameDuration = base.FrameDuration
			}
			if !f.Changed("gif-width") {
				opts.GIFWidth = base.GIFWidth
			}
			if !f.Changed("store") {
				opts.StorePath = base.StorePath
			}
			opts.Render = base.Render && !noRender
			opts.MakeGIF = base.MakeGIF && !noGIF

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			res, err := runner.Run(ctx, cfg, opts)
			if err != nil {
				return err
			}

			slog.Info("done",
				"run_id", res.RunID,
				"steps", res.Steps,
				"run_log", res.RunLogPath,
				"gif", res.GIFPath,
				"interrupted", res.Interrupted,
			)
			return nil
		},
	}

	f := cmd.Flags()
	f.Int64Var(&opts.Seed, "seed", 0, "RNG seed (0 = time-based)")
	f.IntVar(&opts.Steps, "steps", 100, "Number of timesteps")
	f.StringVar(&opts.DataDir, "data-dir", "data", "Directory for the JSON run log")
	f.StringVar(&opts.OutputDir, "output-dir", "", "Directory for steps.csv, summary.json and config.yaml")
	f.StringVar(&opts.ImageDir, "image-dir", "images", "Directory for rendered frames")
	f.StringVar(&opts.GIFPath, "gif", "output/my_simulation.gif", "Output GIF path")
	f.Float64Var(&opts.FrameDuration, "frame-duration", 0.02, "Seconds per GIF frame")
	f.IntVar(&opts.GIFWidth, "gif-width", 0, "Scale GIF frames to this width (0 = frame size)")
	f.StringVar(&opts.StorePath, "store", "", "SQLite run index path (empty = disabled)")
	f.BoolVar(&noRender, "no-render", false, "Skip frame rendering (implies no GIF)")
	f.BoolVar(&noGIF, "no-gif", false, "Keep frames, skip GIF assembly")
	f.BoolVar(&opts.KeepFrames, "keep-frames", false, "Keep PNG frames after the GIF is written")
	return cmd
}

func newGIFCmd() *cobra.Command {
	var (
		frames        string
		out           string
		frameDuration float64
		width         int
		keep          bool
	)

	cmd := &cobra.Command{
		Use:   "gif",
		Short: "Assemble frame_*.png files from a folder into a GIF",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Cfg()
			f := cmd.Flags()
			if !f.Changed("frames") {
				frames = cfg.Render.ImageDir
			}
			if !f.Changed("out") {
				out = cfg.GIF.OutputPath
			}
			if !f.Changed("frame-duration") {
				frameDuration = cfg.GIF.FrameDuration
			}
			if !f.Changed("width") {
				width = cfg.GIF.Width
			}

			res, err := gifmaker.Assemble(frames, out, frameDuration, gifmaker.Options{Width: width, KeepFrames: keep})
			if err != nil {
				return err
			}
			slog.Info("gif written",
				"path", res.Path,
				"frames", res.Frames,
				"skipped", res.Skipped,
				"deleted", res.Deleted,
			)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&frames, "frames", "images", "Folder holding frame_*.png")
	f.StringVar(&out, "out", "output/my_simulation.gif", "Output GIF path")
	f.Float64Var(&frameDuration, "frame-duration", 0.02, "Seconds per frame")
	f.IntVar(&width, "width", 0, "Scale frames to this width (0 = keep)")
	f.BoolVar(&keep, "keep-frames", false, "Keep the source frames")
	return cmd
}

func newViewCmd() *cobra.Command {
	var opts viewer.Options

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Watch the rat live in a window",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Cfg()
			if !cmd.Flags().Changed("seed") {
				opts.Seed = cfg.Run.Seed
			}
			return viewer.Run(cfg, opts)
		},
	}

	f := cmd.Flags()
	f.Int64Var(&opts.Seed, "seed", 0, "RNG seed (0 = time-based)")
	f.Float32Var(&opts.StepsPerSec, "rate", 10, "Steps per second")
	f.IntVar(&opts.MaxSteps, "max-steps", 0, "Pause after N steps (0 = unlimited)")
	return cmd
}

func newRunsCmd() *cobra.Command {
	var (
		storePath string
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "runs [run-id]",
		Short: "List indexed runs, or show one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("store") {
				storePath = config.Cfg().Store.Path
			}
			if storePath == "" {
				return errors.New("no run index configured (set --store or store.path)")
			}

			st, err := store.NewStore(storePath)
			if err != nil {
				return err
			}
			defer st.Close()

			if len(args) == 1 {
				rec, err := st.GetRun(args[0])
				if err != nil {
					return err
				}
				return printRun(cmd.OutOrStdout(), rec)
			}

			runs, err := st.ListRuns(limit)
			if err != nil {
				return err
			}
			return printRuns(cmd.OutOrStdout(), runs)
		},
	}

	f := cmd.Flags()
	f.StringVar(&storePath, "store", "", "SQLite run index path")
	f.IntVar(&limit, "limit", 20, "Maximum runs to list (0 = all)")
	return cmd
}

func printRuns(w io.Writer, runs []store.RunRecord) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN ID\tSTARTED\tSEED\tSTEPS\tLEFT\tRIGHT\tENERGY\tLOG2 L/R")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%.2f\t%.3f\n",
			r.ID, r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.Seed, r.Steps,
			r.Summary.LeftContacts, r.Summary.RightContacts, r.Summary.FinalEnergy, r.Summary.FinalLogRatio)
	}
	return tw.Flush()
}

func printRun(w io.Writer, r store.RunRecord) error {
	s := r.Summary
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	rows := []struct {
		label string
		value any
	}{
		{"run id", r.ID},
		{"started", r.StartedAt.Local().Format("2006-01-02 15:04:05")},
		{"duration", r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond)},
		{"seed", r.Seed},
		{"steps", r.Steps},
		{"run log", r.RunLogPath},
		{"gif", r.GIFPath},
		{"left contacts", s.LeftContacts},
		{"right contacts", s.RightContacts},
		{"rewards earned", s.RewardsEarned},
		{"contact rate", fmt.Sprintf("%.3f", s.ContactRate)},
		{"final log2 L/R", fmt.Sprintf("%.3f", s.FinalLogRatio)},
		{"final energy", fmt.Sprintf("%.2f", s.FinalEnergy)},
		{"energy mean/std", fmt.Sprintf("%.2f / %.2f", s.EnergyMean, s.EnergyStd)},
		{"energy p10/p50/p90", fmt.Sprintf("%.2f / %.2f / %.2f", s.EnergyP10, s.EnergyP50, s.EnergyP90)},
		{"path length", fmt.Sprintf("%.3f", s.PathLength)},
	}
	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%v\n", row.label, row.value)
	}
	return tw.Flush()
}
