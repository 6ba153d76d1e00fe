package sampler

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/affodent/shadematch/pkg/shade"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flatImage(w, h int, c shade.RGB) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{c.R, c.G, c.B, 255})
		}
	}
	return img
}

func TestAverageOfFlatImage(t *testing.T) {
	for _, c := range []shade.RGB{
		{R: 255, G: 240, B: 220}, {R: 0, G: 0, B: 0}, {R: 255, G: 255, B: 255}, {R: 17, G: 99, B: 203},
	} {
		assert.Equal(t, c, Average(flatImage(8, 5, c)))
	}
}

func TestAverageTruncates(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.RGBA{10, 0, 255, 255})
	img.Set(1, 0, color.RGBA{11, 0, 254, 255})

	// (10+11)/2 truncates to 10
	assert.Equal(t, shade.RGB{R: 10, G: 0, B: 254}, Average(img))
}

func TestCenterPixel(t *testing.T) {
	img := flatImage(9, 9, shade.RGB{R: 40, G: 40, B: 40})
	img.Set(4, 4, color.RGBA{220, 200, 180, 255})

	assert.Equal(t, shade.RGB{R: 220, G: 200, B: 180}, Center(img))
}

func TestRegionMean(t *testing.T) {
	img := flatImage(10, 10, shade.RGB{R: 0, G: 0, B: 0})
	for y := 2; y < 4; y++ {
		for x := 2; x < 4; x++ {
			img.Set(x, y, color.RGBA{220, 200, 180, 255})
		}
	}

	got, stddev, err := RegionMean(img, Region{X: 2, Y: 2, W: 2, H: 2})
	require.NoError(t, err)
	assert.Equal(t, shade.RGB{R: 220, G: 200, B: 180}, got)
	assert.Zero(t, stddev)
}

func TestRegionMeanPoint(t *testing.T) {
	img := flatImage(10, 10, shade.RGB{R: 50, G: 60, B: 70})
	img.Set(7, 3, color.RGBA{200, 180, 160, 255})

	got, _, err := RegionMean(img, Region{X: 7, Y: 3})
	require.NoError(t, err)
	assert.Equal(t, shade.RGB{R: 200, G: 180, B: 160}, got)
}

func TestRegionClampedToBounds(t *testing.T) {
	img := flatImage(10, 10, shade.RGB{R: 90, G: 80, B: 70})

	// overlaps only the bottom-right corner
	got, _, err := RegionMean(img, Region{X: 8, Y: 8, W: 10, H: 10})
	require.NoError(t, err)
	assert.Equal(t, shade.RGB{R: 90, G: 80, B: 70}, got)
}

func TestRegionOutsideImage(t *testing.T) {
	img := flatImage(10, 10, shade.RGB{R: 90, G: 80, B: 70})

	_, _, err := RegionMean(img, Region{X: 50, Y: 50, W: 5, H: 5})
	assert.ErrorIs(t, err, ErrInvalidRegion)

	_, _, err = RegionMean(img, Region{X: -20, Y: -20, W: 5, H: 5})
	assert.ErrorIs(t, err, ErrInvalidRegion)
}

func TestRegionStdDevOfMixedRegion(t *testing.T) {
	img := flatImage(4, 1, shade.RGB{R: 0, G: 0, B: 0})
	img.Set(0, 0, color.RGBA{100, 100, 100, 255})
	img.Set(1, 0, color.RGBA{200, 200, 200, 255})

	_, stddev, err := RegionMean(img, Region{X: 0, Y: 0, W: 2, H: 1})
	require.NoError(t, err)
	assert.Greater(t, stddev, 0.0)
}

func TestTake(t *testing.T) {
	img := flatImage(6, 6, shade.RGB{R: 230, G: 210, B: 190})

	s, err := Take(img, ModeAverage, nil)
	require.NoError(t, err)
	assert.Equal(t, shade.RGB{R: 230, G: 210, B: 190}, s.Color)
	assert.Equal(t, ModeAverage, s.Mode)

	s, err = Take(img, ModeCenter, nil)
	require.NoError(t, err)
	assert.Equal(t, shade.RGB{R: 230, G: 210, B: 190}, s.Color)

	s, err = Take(img, ModeRegion, &Region{X: 1, Y: 1, W: 2, H: 2})
	require.NoError(t, err)
	assert.Equal(t, shade.RGB{R: 230, G: 210, B: 190}, s.Color)

	_, err = Take(img, ModeRegion, nil)
	assert.ErrorIs(t, err, ErrInvalidRegion)

	_, err = Take(img, Mode("histogram"), nil)
	assert.Error(t, err)
}

func TestParseMode(t *testing.T) {
	for _, m := range Modes() {
		got, err := ParseMode(string(m))
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}

	_, err := ParseMode("fancy")
	assert.Error(t, err)
}

func TestDecode(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, flatImage(4, 4, shade.RGB{R: 1, G: 2, B: 3})))

	img, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 4), img.Bounds())

	_, err = Decode(bytes.NewBufferString("not an image"))
	assert.Error(t, err)
}
