// Package gifmaker assembles rendered frames into an animated GIF.
package gifmaker

import (
	"errors"
	"fmt"
	"image"
	"image/color/palette"
	"image/gif"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"
)

// ErrNoFrames is returned when no frame in the folder could be read.
var ErrNoFrames = errors.New("gifmaker: no readable frames")

// FramePattern matches the files produced by the frame writer.
const FramePattern = "frame_*.png"

// Options tunes assembly.
type Options struct {
	// Width scales frames to this many pixels wide, keeping aspect ratio.
	// Zero keeps the source size.
	Width int

	// KeepFrames leaves the source PNG files in place.
	KeepFrames bool
}

// Result describes a finished assembly.
type Result struct {
	Path    string
	Frames  int // frames encoded
	Skipped int // frames that could not be read
	Deleted int // source files removed afterwards
}

// Frames returns the frame files in folder in name order.
func Frames(folder string) ([]string, error) {
	names, err := filepath.Glob(filepath.Join(folder, FramePattern))
	if err != nil {
		return nil, fmt.Errorf("list frames: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// Delay converts a frame duration in seconds to GIF delay units (1/100 s).
func Delay(frameDuration float64) int {
	if frameDuration <= 0 {
		return 0
	}
	return int(math.Round(frameDuration * 100))
}

// Assemble encodes every readable frame in folder into an animated GIF at
// outPath, frameDuration seconds per frame. Unreadable frames are logged
// and skipped. Once the GIF is written, the source frames are deleted
// unless opts.KeepFrames is set; deletion failures are logged and skipped.
func Assemble(folder, outPath string, frameDuration float64, opts Options) (Result, error) {
	res := Result{Path: outPath}

	names, err := Frames(folder)
	if err != nil {
		return res, err
	}

	delay := Delay(frameDuration)
	anim := &gif.GIF{}
	var size image.Point

	for _, name := range names {
		img, err := gg.LoadPNG(name)
		if err != nil {
			slog.Warn("skipping frame", "path", name, "error", err)
			res.Skipped++
			continue
		}
		if size == (image.Point{}) {
			size = targetSize(img.Bounds(), opts.Width)
		}
		anim.Image = append(anim.Image, quantize(img, size))
		anim.Delay = append(anim.Delay, delay)
	}

	if len(anim.Image) == 0 {
		return res, ErrNoFrames
	}
	anim.Config.Width, anim.Config.Height = size.X, size.Y

	if err := write(outPath, anim); err != nil {
		return res, err
	}
	res.Frames = len(anim.Image)

	if !opts.KeepFrames {
		for _, name := range names {
			if err := os.Remove(name); err != nil {
				slog.Warn("frame delete failed", "path", name, "error", err)
				continue
			}
			res.Deleted++
		}
	}

	return res, nil
}

// targetSize returns the output frame size for a source of bounds b.
func targetSize(b image.Rectangle, width int) image.Point {
	if width <= 0 || width >= b.Dx() {
		return b.Size()
	}
	h := int(math.Round(float64(b.Dy()) * float64(width) / float64(b.Dx())))
	return image.Point{X: width, Y: max(h, 1)}
}

// quantize scales img to size and maps it onto the Plan 9 palette.
func quantize(img image.Image, size image.Point) *image.Paletted {
	src := img
	if img.Bounds().Size() != size {
		scaled := image.NewRGBA(image.Rectangle{Max: size})
		draw.CatmullRom.Scale(scaled, scaled.Bounds(), img, img.Bounds(), draw.Src, nil)
		src = scaled
	}
	dst := image.NewPaletted(image.Rectangle{Max: size}, palette.Plan9)
	draw.FloydSteinberg.Draw(dst, dst.Bounds(), src, src.Bounds().Min)
	return dst
}

func write(outPath string, anim *gif.GIF) error {
	if dir := filepath.Dir(outPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create gif dir: %w", err)
		}
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create gif: %w", err)
	}
	if err := gif.EncodeAll(f, anim); err != nil {
		f.Close()
		return fmt.Errorf("encode gif: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close gif: %w", err)
	}
	return nil
}
