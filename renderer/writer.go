package renderer

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"

	"github.com/pthm-cable/leverbox/env"
)

// FrameName returns the file name of frame timestep.
func FrameName(timestep int) string {
	return fmt.Sprintf("frame_%04d.png", timestep)
}

// FrameWriter renders snapshots and saves them as numbered PNG files.
type FrameWriter struct {
	dir      string
	renderer *FrameRenderer
	dirReady bool

	written int
	failed  int
}

// NewFrameWriter creates a writer saving into dir. The directory is
// created on the first write.
func NewFrameWriter(dir string, r *FrameRenderer) *FrameWriter {
	return &FrameWriter{dir: dir, renderer: r}
}

// Dir returns the frame directory.
func (w *FrameWriter) Dir() string {
	return w.dir
}

// Write renders snap to frame_<timestep>.png and returns the path.
// Failures are logged and returned; the caller may carry on with the next frame.
func (w *FrameWriter) Write(snap env.FrameSnapshot) (string, error) {
	path := filepath.Join(w.dir, FrameName(snap.Timestep))

	if !w.dirReady {
		if err := os.MkdirAll(w.dir, 0755); err != nil {
			w.failed++
			slog.Warn("frame dir unavailable", "dir", w.dir, "error", err)
			return "", fmt.Errorf("create image dir: %w", err)
		}
		w.dirReady = true
	}

	img := w.renderer.Render(snap)
	if err := gg.SavePNG(path, img); err != nil {
		w.failed++
		slog.Warn("frame write failed", "path", path, "error", err)
		return "", fmt.Errorf("save frame %d: %w", snap.Timestep, err)
	}

	w.written++
	return path, nil
}

// Counts returns how many frames were written and how many failed.
func (w *FrameWriter) Counts() (written, failed int) {
	return w.written, w.failed
}
