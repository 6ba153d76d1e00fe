package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/affodent/shadematch/pkg/history"
	"github.com/affodent/shadematch/pkg/report"
	"github.com/affodent/shadematch/pkg/sampler"
	"github.com/affodent/shadematch/pkg/shade"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var analyzeName string
var analyzeAge int
var analyzeSex string
var analyzeGuides []string
var analyzeRegion []int
var analyzeOverrideGuide string
var analyzeOverrideShade string
var analyzeSave bool

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&analyzeName, "name", "n", "", "patient name")
	analyzeCmd.Flags().IntVarP(&analyzeAge, "age", "a", 0, "patient age")
	analyzeCmd.Flags().StringVar(&analyzeSex, "sex", "", "patient sex")
	analyzeCmd.Flags().StringSliceVarP(&analyzeGuides, "guides", "g", nil,
		"shade guides to query (default: all)")
	analyzeCmd.Flags().IntSliceVarP(&analyzeRegion, "region", "r", nil,
		"sample a region instead: x,y for a point or x,y,w,h for a rectangle")
	analyzeCmd.Flags().StringVar(&analyzeOverrideGuide, "override-guide", "", "guide of the manual override shade")
	analyzeCmd.Flags().StringVar(&analyzeOverrideShade, "override-shade", "", "manually chosen shade label")
	analyzeCmd.Flags().BoolVar(&analyzeSave, "save", false,
		"append the result to the patient history and write a PDF report")

	analyzeCmd.Flags().String("mode", "", "sampling mode: average, center, region, dominant")
	viper.BindPFlag("sampler.mode", analyzeCmd.Flags().Lookup("mode"))
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze FILE",
	Short: "Match one tooth photo against the shade guides",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		img, err := sampler.Load(args[0])
		if err != nil {
			return err
		}

		mode, err := sampler.ParseMode(viper.GetString("sampler.mode"))
		if err != nil {
			return err
		}

		region, err := regionFromFlag()
		if err != nil {
			return err
		}
		if region != nil {
			mode = sampler.ModeRegion
		}

		guides, err := guidesFromFlag()
		if err != nil {
			return err
		}

		sample, err := sampler.Take(img, mode, region)
		if err != nil {
			return err
		}

		results, err := shade.MatchAll(sample.Color, guides...)
		if err != nil {
			return err
		}

		l, a, b := sample.Color.Lab()
		cmd.Printf("sampled %s via %s (Lab %.1f %.1f %.1f)\n", sample.Color, sample.Mode, l, a, b)
		if sample.StdDev > 20 {
			cmd.Printf("warning: selection is not uniform (channel stddev %.1f); consider a tighter region\n", sample.StdDev)
		}

		for _, res := range results {
			cmd.Printf("%s: %s (dE %.1f)\n", res.Guide, res.Label, res.DeltaE)
		}

		if !analyzeSave {
			return nil
		}

		return saveAnalysis(cmd, args[0], sample, results)
	},
}

func regionFromFlag() (*sampler.Region, error) {
	switch len(analyzeRegion) {
	case 0:
		return nil, nil
	case 2:
		return &sampler.Region{X: analyzeRegion[0], Y: analyzeRegion[1]}, nil
	case 4:
		return &sampler.Region{
			X: analyzeRegion[0], Y: analyzeRegion[1],
			W: analyzeRegion[2], H: analyzeRegion[3],
		}, nil
	default:
		return nil, fmt.Errorf("%w: --region wants x,y or x,y,w,h", sampler.ErrInvalidRegion)
	}
}

func guidesFromFlag() ([]*shade.Guide, error) {
	if len(analyzeGuides) == 0 {
		return shade.All(), nil
	}

	guides := make([]*shade.Guide, 0, len(analyzeGuides))
	for _, id := range analyzeGuides {
		g := shade.Get(id)
		if g == nil {
			return nil, fmt.Errorf("unknown shade guide: %q (see the guides command)", id)
		}
		guides = append(guides, g)
	}

	return guides, nil
}

func saveAnalysis(cmd *cobra.Command, imagePath string, sample sampler.Sample, results []shade.Result) error {
	if analyzeName == "" {
		return fmt.Errorf("--name is required with --save")
	}
	if analyzeAge < 1 || analyzeAge > 120 {
		return fmt.Errorf("--age must be between 1 and 120 with --save")
	}

	store, dataDir, err := openStore()
	if err != nil {
		return err
	}

	rec := &history.Record{
		ID:          uuid.NewString(),
		Name:        analyzeName,
		Age:         analyzeAge,
		Sex:         analyzeSex,
		Sampled:     sample.Color,
		SamplerMode: sample.Mode,
		Results:     results,
		ImagePath:   imagePath,
		CreatedAt:   time.Now(),
	}

	if analyzeOverrideShade != "" {
		if shade.Get(analyzeOverrideGuide) == nil {
			return fmt.Errorf("unknown shade guide for override: %q", analyzeOverrideGuide)
		}
		rec.Override = &history.Override{GuideID: analyzeOverrideGuide, Shade: strings.TrimSpace(analyzeOverrideShade)}
	}

	reportsDir := filepath.Join(dataDir, "reports")
	if err := os.MkdirAll(reportsDir, 0o755); err != nil {
		return fmt.Errorf("report not saved: %w", err)
	}

	rec.ReportPath = filepath.Join(reportsDir, report.FileName(rec))
	if err := report.WritePDF(rec, rec.ReportPath); err != nil {
		return err
	}

	if err := store.Append(*rec); err != nil {
		return err
	}

	cmd.Printf("report: %s\n", rec.ReportPath)
	return nil
}
