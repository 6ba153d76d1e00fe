package shade

import (
	"errors"
	"fmt"
)

// ErrNoReferenceData is returned when a guide has no swatches to match against.
var ErrNoReferenceData = errors.New("no reference data")

// Result is the winning swatch of a single-guide match.
type Result struct {
	GuideID string  `json:"guide_id"`
	Guide   string  `json:"guide"`
	Label   string  `json:"label"`
	DeltaE  float64 `json:"delta_e"`
}

// Match finds the swatch of g nearest to sample by Euclidean distance in
// CIE Lab. The comparison is strict-less-than, so when two swatches are
// equidistant the one declared first in the guide wins. Matching an empty
// guide is an error, never an undefined label.
func Match(sample RGB, g *Guide) (Result, error) {
	if g == nil || len(g.Swatches) == 0 {
		return Result{}, fmt.Errorf("matching %q: %w", guideID(g), ErrNoReferenceData)
	}

	sampleColor := sample.Colorful()

	best := Result{GuideID: g.ID, Guide: g.Name}
	bestDist := -1.0

	for _, swatch := range g.Swatches {
		dist := sampleColor.DistanceLab(swatch.Color.Colorful())
		if bestDist < 0 || dist < bestDist {
			bestDist = dist
			best.Label = swatch.Label
		}
	}

	// go-colorful keeps L in 0..1; scale to the familiar 0..100 Lab range
	// before reporting. The scaling is uniform so it never changes a winner.
	best.DeltaE = bestDist * 100

	return best, nil
}

// MatchAll runs Match once per guide. Guides are independent: each result
// is the nearest swatch within its own guide only. The first failing guide
// aborts the whole query.
func MatchAll(sample RGB, guides ...*Guide) ([]Result, error) {
	if len(guides) == 0 {
		return nil, ErrNoReferenceData
	}

	results := make([]Result, 0, len(guides))
	for _, g := range guides {
		res, err := Match(sample, g)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}

	return results, nil
}

func guideID(g *Guide) string {
	if g == nil {
		return "<nil>"
	}
	return g.ID
}
