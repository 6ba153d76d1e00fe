package history

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/affodent/shadematch/pkg/sampler"
	"github.com/affodent/shadematch/pkg/shade"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecord(name string) Record {
	return Record{
		ID:          uuid.NewString(),
		Name:        name,
		Age:         34,
		Sex:         "Female",
		Sampled:     shade.RGB{R: 230, G: 210, B: 190},
		SamplerMode: sampler.ModeAverage,
		Results: []shade.Result{
			{GuideID: shade.VitaClassicalID, Guide: "Vita Classical", Label: "B2", DeltaE: 1.2},
		},
		CreatedAt: time.Now(),
	}
}

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	fs, err := NewFileStore(filepath.Join(t.TempDir(), "patients.json"), DefaultMax)
	require.NoError(t, err)
	return fs
}

func TestAppendBoundsToTen(t *testing.T) {
	fs := newTestStore(t)

	for i := 1; i <= 11; i++ {
		require.NoError(t, fs.Append(testRecord(fmt.Sprintf("Patient %02d", i))))
	}

	records, err := fs.Recent()
	require.NoError(t, err)
	require.Len(t, records, 10)
	assert.Equal(t, "Patient 11", records[0].Name)
	assert.Equal(t, "Patient 02", records[9].Name)

	// a 12th insert evicts the new oldest
	require.NoError(t, fs.Append(testRecord("Patient 12")))
	records, err = fs.Recent()
	require.NoError(t, err)
	require.Len(t, records, 10)
	assert.Equal(t, "Patient 12", records[0].Name)
	assert.Equal(t, "Patient 03", records[9].Name)
}

func TestMostRecentFirst(t *testing.T) {
	fs := newTestStore(t)
	require.NoError(t, fs.Append(testRecord("First")))
	require.NoError(t, fs.Append(testRecord("Second")))

	records, err := fs.Recent()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Second", records[0].Name)
	assert.Equal(t, "First", records[1].Name)
}

func TestSearchByName(t *testing.T) {
	fs := newTestStore(t)
	require.NoError(t, fs.Append(testRecord("Anita Deka")))
	require.NoError(t, fs.Append(testRecord("Bhaskar Das")))
	require.NoError(t, fs.Append(testRecord("anita borah")))

	matches, err := fs.SearchByName("ANITA")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "anita borah", matches[0].Name)
	assert.Equal(t, "Anita Deka", matches[1].Name)

	// no hits is an empty result set, not an error
	matches, err = fs.SearchByName("nobody")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestPersistenceAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patients.json")

	fs, err := NewFileStore(path, DefaultMax)
	require.NoError(t, err)
	rec := testRecord("Rupam Saikia")
	rec.ImagePath = "/tmp/rupam.jpg"
	require.NoError(t, fs.Append(rec))

	reopened, err := NewFileStore(path, DefaultMax)
	require.NoError(t, err)
	records, err := reopened.Recent()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, rec.ID, records[0].ID)
	assert.Equal(t, rec.Sampled, records[0].Sampled)
	assert.Equal(t, rec.ImagePath, records[0].ImagePath)
}

func TestMalformedArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patients.json")
	require.NoError(t, os.WriteFile(path, []byte("__import__('os')"), 0o600))

	_, err := NewFileStore(path, DefaultMax)
	assert.ErrorContains(t, err, "malformed")

	require.NoError(t, os.WriteFile(path, []byte(`[{"id":"x"}]`), 0o600))
	_, err = NewFileStore(path, DefaultMax)
	assert.ErrorContains(t, err, "malformed")
}

func TestAppendValidation(t *testing.T) {
	fs := newTestStore(t)

	rec := testRecord("")
	assert.Error(t, fs.Append(rec))

	rec = testRecord("No Timestamp")
	rec.CreatedAt = time.Time{}
	assert.Error(t, fs.Append(rec))
}

func TestReferencedFiles(t *testing.T) {
	fs := newTestStore(t)

	rec := testRecord("With Files")
	rec.ImagePath = "/data/img.jpg"
	rec.ReportPath = "/data/report.pdf"
	require.NoError(t, fs.Append(rec))
	require.NoError(t, fs.Append(testRecord("Without Files")))

	refs := fs.ReferencedFiles()
	assert.True(t, refs["/data/img.jpg"])
	assert.True(t, refs["/data/report.pdf"])
	assert.Len(t, refs, 2)
}
