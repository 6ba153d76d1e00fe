// Package report renders a completed analysis into a printable PDF.
package report

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"os"
	"strings"

	"github.com/affodent/shadematch/pkg/history"
	"github.com/affodent/shadematch/pkg/sampler"

	"github.com/go-pdf/fpdf"
	"github.com/nfnt/resize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const titleLine = "Tooth Shade Report - AffoDent Professional Dental Clinic"

// maxEmbedPx caps the embedded photo so phone-camera uploads don't bloat
// the document.
const maxEmbedPx = 600

var titleCaser = cases.Title(language.English)

// FileName derives the report's file name from the record. The record ID
// keeps two patients with the same name from overwriting each other.
func FileName(rec *history.Record) string {
	name := strings.ReplaceAll(rec.Name, " ", "_")
	return fmt.Sprintf("%s_%s_shade_report.pdf", name, rec.ID)
}

// WritePDF renders rec to a PDF at outPath: patient fields, the sampled
// color, one line per matched guide, the manual override if any, and the
// uploaded photo. Any failure is surfaced as a "report not saved" error.
func WritePDF(rec *history.Record, outPath string) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, titleLine, "", 1, "C", false, 0, "")
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 12)
	l, a, b := rec.Sampled.Lab()
	writeField(pdf, "Name", titleCaser.String(rec.Name))
	writeField(pdf, "Age", fmt.Sprintf("%d", rec.Age))
	writeField(pdf, "Sex", rec.Sex)
	writeField(pdf, "Sampled RGB", fmt.Sprintf("%s via %s", rec.Sampled, rec.SamplerMode))
	writeField(pdf, "Sampled Lab", fmt.Sprintf("L %.1f, a %.1f, b %.1f", l, a, b))

	for _, res := range rec.Results {
		writeField(pdf, res.Guide, fmt.Sprintf("%s (dE %.1f)", res.Label, res.DeltaE))
	}

	if rec.Override != nil {
		writeField(pdf, "Manual Override", fmt.Sprintf("%s (%s)", rec.Override.Shade, rec.Override.GuideID))
	}

	writeField(pdf, "Date", rec.CreatedAt.Format("2006-01-02 15:04:05"))

	if rec.ImagePath != "" {
		if _, err := os.Stat(rec.ImagePath); err == nil {
			if err := embedPhoto(pdf, rec.ImagePath); err != nil {
				return fmt.Errorf("report not saved: %w", err)
			}
		}
	}

	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("report not saved: %w", err)
	}

	return nil
}

//--------------------------------------------------------------------------------
// private

func writeField(pdf *fpdf.Fpdf, key, value string) {
	pdf.CellFormat(0, 10, fmt.Sprintf("%s: %s", key, value), "", 1, "L", false, 0, "")
}

func embedPhoto(pdf *fpdf.Fpdf, pathname string) error {
	img, err := sampler.Load(pathname)
	if err != nil {
		return err
	}

	thumb := resize.Thumbnail(maxEmbedPx, maxEmbedPx, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, nil); err != nil {
		return fmt.Errorf("unable to encode photo for embedding: %w", err)
	}

	opts := fpdf.ImageOptions{ImageType: "JPEG"}
	pdf.RegisterImageOptionsReader("tooth-photo", opts, &buf)
	pdf.ImageOptions("tooth-photo", 60, pdf.GetY()+10, 90, 0, false, opts, 0, "")

	return nil
}
