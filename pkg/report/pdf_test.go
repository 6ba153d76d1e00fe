package report

import (
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/affodent/shadematch/pkg/history"
	"github.com/affodent/shadematch/pkg/sampler"
	"github.com/affodent/shadematch/pkg/shade"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord(t *testing.T, withPhoto bool) *history.Record {
	t.Helper()

	rec := &history.Record{
		ID:          uuid.NewString(),
		Name:        "anita deka",
		Age:         41,
		Sex:         "Female",
		Sampled:     shade.RGB{R: 230, G: 210, B: 190},
		SamplerMode: sampler.ModeRegion,
		Results: []shade.Result{
			{GuideID: shade.VitaClassicalID, Guide: "Vita Classical", Label: "B2", DeltaE: 1.7},
			{GuideID: shade.ChromascopID, Guide: "Ivoclar Chromascop", Label: "300", DeltaE: 2.3},
		},
		Override:  &history.Override{GuideID: shade.VitaClassicalID, Shade: "A3"},
		CreatedAt: time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC),
	}

	if withPhoto {
		img := image.NewRGBA(image.Rect(0, 0, 32, 32))
		for y := 0; y < 32; y++ {
			for x := 0; x < 32; x++ {
				img.Set(x, y, color.RGBA{230, 210, 190, 255})
			}
		}

		path := filepath.Join(t.TempDir(), "tooth.jpg")
		f, err := os.Create(path)
		require.NoError(t, err)
		require.NoError(t, jpeg.Encode(f, img, nil))
		require.NoError(t, f.Close())
		rec.ImagePath = path
	}

	return rec
}

func TestWritePDF(t *testing.T) {
	rec := sampleRecord(t, true)
	out := filepath.Join(t.TempDir(), FileName(rec))

	require.NoError(t, WritePDF(rec, out))

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestWritePDFWithoutPhoto(t *testing.T) {
	rec := sampleRecord(t, false)
	out := filepath.Join(t.TempDir(), FileName(rec))

	require.NoError(t, WritePDF(rec, out))

	_, err := os.Stat(out)
	assert.NoError(t, err)
}

func TestWritePDFUnwritableDestination(t *testing.T) {
	rec := sampleRecord(t, false)

	err := WritePDF(rec, filepath.Join(t.TempDir(), "missing", "dir", "report.pdf"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "report not saved")
}

func TestFileName(t *testing.T) {
	rec := sampleRecord(t, false)
	name := FileName(rec)
	assert.Contains(t, name, "anita_deka")
	assert.Contains(t, name, rec.ID)
	assert.Contains(t, name, "_shade_report.pdf")
}
