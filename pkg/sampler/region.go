package sampler

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/affodent/shadematch/pkg/shade"

	"github.com/oliamb/cutter"
	"gonum.org/v1/gonum/stat"
)

// ErrInvalidRegion is returned when a selection has no overlap with the image.
var ErrInvalidRegion = errors.New("invalid region")

// Region is a user-drawn selection in image pixel coordinates. A zero
// width and height describes a point, which samples a 1x1 region.
type Region struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Rect converts r to an image.Rectangle, promoting a point to 1x1.
func (r Region) Rect() image.Rectangle {
	w, h := r.W, r.H
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	return image.Rect(r.X, r.Y, r.X+w, r.Y+h)
}

func (r Region) String() string {
	return fmt.Sprintf("%dx%d@%d,%d", r.W, r.H, r.X, r.Y)
}

// RegionMean averages the pixels of img enclosed by region, truncated to
// integer channels, along with the mean per-channel standard deviation.
// The region is clamped to the image bounds first; a selection with no
// remaining area is ErrInvalidRegion.
func RegionMean(img image.Image, region Region) (shade.RGB, float64, error) {
	clamped := region.Rect().Intersect(img.Bounds())
	if clamped.Empty() {
		return shade.RGB{}, 0, fmt.Errorf("%w: %s is outside the %v image",
			ErrInvalidRegion, region, img.Bounds().Size())
	}

	cropped, err := cutter.Crop(img, cutter.Config{
		Width:  clamped.Dx(),
		Height: clamped.Dy(),
		Anchor: clamped.Min,
		Mode:   cutter.TopLeft,
	})
	if err != nil {
		return shade.RGB{}, 0, fmt.Errorf("unable to crop region %s: %w", region, err)
	}

	return regionStats(cropped)
}

//--------------------------------------------------------------------------------
// private

// meanOver is the streaming mean used for whole-image averaging, where
// holding per-pixel channel slices would be wasteful.
func meanOver(img image.Image, rect image.Rectangle) (shade.RGB, float64) {
	var sum, sumSq [3]uint64
	var count uint64

	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			for i, v := range [3]uint64{uint64(r >> 8), uint64(g >> 8), uint64(b >> 8)} {
				sum[i] += v
				sumSq[i] += v * v
			}
			count++
		}
	}

	if count == 0 {
		return shade.RGB{}, 0
	}

	color := shade.RGB{
		R: uint8(sum[0] / count),
		G: uint8(sum[1] / count),
		B: uint8(sum[2] / count),
	}

	if count < 2 {
		return color, 0
	}

	var stddev float64
	for i := range sum {
		mean := float64(sum[i]) / float64(count)
		variance := float64(sumSq[i])/float64(count) - mean*mean
		if variance > 0 {
			stddev += math.Sqrt(variance)
		}
	}

	return color, stddev / 3
}

// regionStats gathers per-channel values over a (small) cropped region.
func regionStats(img image.Image) (shade.RGB, float64, error) {
	bounds := img.Bounds()
	n := bounds.Dx() * bounds.Dy()
	if n <= 0 {
		return shade.RGB{}, 0, ErrInvalidRegion
	}

	channels := [3][]float64{
		make([]float64, 0, n),
		make([]float64, 0, n),
		make([]float64, 0, n),
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			channels[0] = append(channels[0], float64(r>>8))
			channels[1] = append(channels[1], float64(g>>8))
			channels[2] = append(channels[2], float64(b>>8))
		}
	}

	var mean [3]uint8
	var stddev float64
	for i, values := range channels {
		mean[i] = uint8(math.Trunc(stat.Mean(values, nil)))
		if len(values) > 1 {
			stddev += stat.StdDev(values, nil)
		}
	}

	return shade.RGB{R: mean[0], G: mean[1], B: mean[2]}, stddev / 3, nil
}
