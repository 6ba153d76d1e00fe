package server

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/affodent/shadematch/pkg/history"
	"github.com/affodent/shadematch/pkg/report"
	"github.com/affodent/shadematch/pkg/sampler"
	"github.com/affodent/shadematch/pkg/shade"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type indexData struct {
	Guides []*shade.Guide
	Modes  []sampler.Mode
	Record *history.Record
	Error  string
}

func (s *Server) handleIndex(c echo.Context) error {
	return c.Render(http.StatusOK, "index", indexData{
		Guides: shade.All(),
		Modes:  sampler.Modes(),
	})
}

// handleAnalyze runs one submission through the whole pipeline: sample,
// match, save the photo, write the PDF, and append to the history. Every
// failure comes back to the form as a message instead of a blank fault.
func (s *Server) handleAnalyze(c echo.Context) error {
	s.analyzeMutex.Lock()
	defer s.analyzeMutex.Unlock()

	rec, err := s.analyze(c)
	if err != nil {
		status := http.StatusInternalServerError
		msg := err.Error()

		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			status = httpErr.Code
			msg = fmt.Sprint(httpErr.Message)
		}

		s.log.Err(err).Msg("analyze")
		return c.Render(status, "index", indexData{
			Guides: shade.All(),
			Modes:  sampler.Modes(),
			Error:  msg,
		})
	}

	return c.Render(http.StatusOK, "index", indexData{
		Guides: shade.All(),
		Modes:  sampler.Modes(),
		Record: rec,
	})
}

func (s *Server) handleHistory(c echo.Context) error {
	query := c.QueryParam("name")

	var records []history.Record
	var err error
	if query == "" {
		records, err = s.store.Recent()
	} else {
		records, err = s.store.SearchByName(query)
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, records)
}

func (s *Server) handleGuides(c echo.Context) error {
	return c.JSON(http.StatusOK, shade.All())
}

func (s *Server) handleReportDownload(c echo.Context) error {
	return s.serveArtifact(c, reportsDir(s.dataDir))
}

func (s *Server) handleImageDownload(c echo.Context) error {
	return s.serveArtifact(c, imagesDir(s.dataDir))
}

//--------------------------------------------------------------------------------
// private

func (s *Server) serveArtifact(c echo.Context, dir string) error {
	// Base strips any traversal; artifacts are flat files in their dir
	name := filepath.Base(c.Param("file"))
	path := filepath.Join(dir, name)

	if _, err := os.Stat(path); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "no such file")
	}

	return c.Attachment(path, name)
}

func (s *Server) analyze(c echo.Context) (*history.Record, error) {
	name := strings.TrimSpace(c.FormValue("name"))
	if name == "" {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "patient name is required")
	}

	age, err := strconv.Atoi(c.FormValue("age"))
	if err != nil || age < 1 || age > 120 {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "age must be between 1 and 120")
	}

	sex := c.FormValue("sex")

	mode := s.defaultMode
	if m := c.FormValue("mode"); m != "" {
		mode, err = sampler.ParseMode(m)
		if err != nil {
			return nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}

	region, err := parseRegion(c)
	if err != nil {
		return nil, err
	}
	if region != nil {
		mode = sampler.ModeRegion
	}

	guides, err := selectedGuides(c)
	if err != nil {
		return nil, err
	}

	img, err := uploadedImage(c)
	if err != nil {
		return nil, err
	}

	sample, err := sampler.Take(img, mode, region)
	if err != nil {
		if errors.Is(err, sampler.ErrInvalidRegion) {
			return nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return nil, err
	}

	results, err := shade.MatchAll(sample.Color, guides...)
	if err != nil {
		return nil, err
	}

	rec := &history.Record{
		ID:          uuid.NewString(),
		Name:        name,
		Age:         age,
		Sex:         sex,
		Sampled:     sample.Color,
		SamplerMode: sample.Mode,
		Results:     results,
		CreatedAt:   time.Now(),
	}

	rec.Override, err = parseOverride(c)
	if err != nil {
		return nil, err
	}

	rec.ImagePath, err = s.savePhoto(rec, img)
	if err != nil {
		return nil, err
	}

	rec.ReportPath = filepath.Join(reportsDir(s.dataDir), report.FileName(rec))
	if err := report.WritePDF(rec, rec.ReportPath); err != nil {
		return nil, err
	}

	if err := s.store.Append(*rec); err != nil {
		return nil, fmt.Errorf("unable to record analysis: %w", err)
	}

	return rec, nil
}

func uploadedImage(c echo.Context) (img image.Image, err error) {
	fh, err := c.FormFile("photo")
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "a tooth photo is required")
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("unable to read upload: %w", err)
	}
	defer f.Close()

	img, err = sampler.Decode(f)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return img, nil
}

func parseRegion(c echo.Context) (*sampler.Region, error) {
	xs, ys := c.FormValue("region_x"), c.FormValue("region_y")
	if xs == "" && ys == "" {
		return nil, nil
	}

	region := &sampler.Region{}
	for _, field := range []struct {
		value string
		dst   *int
	}{
		{xs, &region.X},
		{ys, &region.Y},
		{c.FormValue("region_w"), &region.W},
		{c.FormValue("region_h"), &region.H},
	} {
		if field.value == "" {
			continue
		}
		v, err := strconv.Atoi(field.value)
		if err != nil {
			return nil, echo.NewHTTPError(http.StatusBadRequest,
				fmt.Sprintf("%s: region coordinates must be integers", sampler.ErrInvalidRegion))
		}
		*field.dst = v
	}

	return region, nil
}

func selectedGuides(c echo.Context) ([]*shade.Guide, error) {
	form, err := c.FormParams()
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "malformed form")
	}

	ids := form["guides"]
	if len(ids) == 0 {
		return shade.All(), nil
	}

	guides := make([]*shade.Guide, 0, len(ids))
	for _, id := range ids {
		g := shade.Get(id)
		if g == nil {
			return nil, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("unknown shade guide: %q", id))
		}
		guides = append(guides, g)
	}

	return guides, nil
}

func parseOverride(c echo.Context) (*history.Override, error) {
	overrideShade := strings.TrimSpace(c.FormValue("override_shade"))
	if overrideShade == "" {
		return nil, nil
	}

	guideID := c.FormValue("override_guide")
	if shade.Get(guideID) == nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("unknown shade guide for override: %q", guideID))
	}

	// free-text shades are allowed; not every chart in use is registered
	return &history.Override{GuideID: guideID, Shade: overrideShade}, nil
}

func (s *Server) savePhoto(rec *history.Record, img image.Image) (string, error) {
	name := fmt.Sprintf("%s_%s.jpg", strings.ReplaceAll(rec.Name, " ", "_"), rec.ID)
	path := filepath.Join(imagesDir(s.dataDir), name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("unable to save photo: %w", err)
	}

	err = jpeg.Encode(f, img, nil)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("unable to save photo: %w", err)
	}

	return path, nil
}
