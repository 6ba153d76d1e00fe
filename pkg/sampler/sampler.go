// Package sampler reduces a tooth photograph to one representative RGB
// triple using one of several sampling strategies.
package sampler

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/affodent/shadematch/pkg/shade"

	"github.com/EdlinOrg/prominentcolor"
)

// Mode selects the sampling strategy.
type Mode string

const (
	// ModeAverage takes the per-channel arithmetic mean of the whole image.
	ModeAverage Mode = "average"
	// ModeCenter takes the single pixel at the image center.
	ModeCenter Mode = "center"
	// ModeRegion averages over a user-drawn point or rectangle.
	ModeRegion Mode = "region"
	// ModeDominant extracts the dominant k-means cluster color.
	ModeDominant Mode = "dominant"
)

// Modes lists every supported sampling mode.
func Modes() []Mode {
	return []Mode{ModeAverage, ModeCenter, ModeRegion, ModeDominant}
}

// ParseMode validates a user-supplied mode name.
func ParseMode(name string) (Mode, error) {
	for _, m := range Modes() {
		if string(m) == name {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown sampling mode: %q", name)
}

// Sample is the outcome of reducing an image to one color.
type Sample struct {
	Color shade.RGB `json:"color"`
	Mode  Mode      `json:"mode"`

	// StdDev is the mean per-channel standard deviation over the sampled
	// pixels, a hint for how uniform the selection was. Single-pixel modes
	// report zero.
	StdDev float64 `json:"std_dev"`
}

// Load opens and decodes a JPEG or PNG image file.
func Load(pathname string) (image.Image, error) {
	f, err := os.Open(pathname)
	if err != nil {
		return nil, fmt.Errorf("unable to open %s: %w", pathname, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("unable to decode %s: %w", pathname, err)
	}

	return img, nil
}

// Decode decodes a JPEG or PNG image from r, e.g. an upload stream.
func Decode(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("unable to decode image: %w", err)
	}
	return img, nil
}

// Take samples img with the given mode. A region is required for ModeRegion
// and ignored by every other mode.
func Take(img image.Image, mode Mode, region *Region) (Sample, error) {
	switch mode {
	case ModeAverage:
		color, stddev := meanOver(img, img.Bounds())
		return Sample{Color: color, Mode: mode, StdDev: stddev}, nil
	case ModeCenter:
		return Sample{Color: Center(img), Mode: mode}, nil
	case ModeRegion:
		if region == nil {
			return Sample{}, fmt.Errorf("%w: no region selected", ErrInvalidRegion)
		}
		color, stddev, err := RegionMean(img, *region)
		if err != nil {
			return Sample{}, err
		}
		return Sample{Color: color, Mode: mode, StdDev: stddev}, nil
	case ModeDominant:
		color, err := Dominant(img)
		if err != nil {
			return Sample{}, err
		}
		return Sample{Color: color, Mode: mode}, nil
	default:
		return Sample{}, fmt.Errorf("unknown sampling mode: %q", mode)
	}
}

// Average returns the whole-image per-channel mean, truncated to integers.
func Average(img image.Image) shade.RGB {
	color, _ := meanOver(img, img.Bounds())
	return color
}

// Center returns the pixel at the image center with no aggregation.
func Center(img image.Image) shade.RGB {
	bounds := img.Bounds()
	x := bounds.Min.X + bounds.Dx()/2
	y := bounds.Min.Y + bounds.Dy()/2
	r, g, b, _ := img.At(x, y).RGBA()
	return shade.RGB{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8)}
}

// Dominant extracts the most populous k-means cluster color.
func Dominant(img image.Image) (shade.RGB, error) {
	colors, err := prominentcolor.KmeansWithArgs(prominentcolor.ArgumentNoCropping, img)
	if err != nil {
		return shade.RGB{}, fmt.Errorf("unable to extract dominant color: %w", err)
	}

	var best *prominentcolor.ColorItem
	for i, color := range colors {
		if best == nil || color.Cnt > best.Cnt {
			best = &colors[i]
		}
	}

	if best == nil {
		return shade.RGB{}, errors.New("no colors found")
	}

	return shade.RGB{R: uint8(best.Color.R), G: uint8(best.Color.G), B: uint8(best.Color.B)}, nil
}
