package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/affodent/shadematch/pkg/history"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var pruneDryRun bool

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(pruneCmd)

	pruneCmd.Flags().BoolVar(&pruneDryRun, "dry-run", false, "only report what would be removed")
}

var historyCmd = &cobra.Command{
	Use:   "history [QUERY]",
	Short: "Search the rolling patient history",
	Long: "Lists retained patient records, most recent first. With QUERY, only " +
		"records whose patient name contains it (case-insensitively) are shown.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, err := openStore()
		if err != nil {
			return err
		}

		var records []history.Record
		if len(args) == 0 {
			records, err = store.Recent()
		} else {
			records, err = store.SearchByName(args[0])
		}
		if err != nil {
			return err
		}

		if len(records) == 0 {
			cmd.Println("no matching records")
			return nil
		}

		titleCaser := cases.Title(language.English)
		for _, rec := range records {
			cmd.Printf("%s  %s (%d, %s)  sampled %s\n",
				rec.CreatedAt.Format("2006-01-02 15:04"),
				titleCaser.String(rec.Name), rec.Age, rec.Sex, rec.Sampled)
			for _, res := range rec.Results {
				cmd.Printf("    %s: %s (dE %.1f)\n", res.Guide, res.Label, res.DeltaE)
			}
			if rec.Override != nil {
				cmd.Printf("    manual override: %s (%s)\n", rec.Override.Shade, rec.Override.GuideID)
			}
			if rec.ReportPath != "" {
				cmd.Printf("    report: %s\n", rec.ReportPath)
			}
		}

		return nil
	},
}

// Eviction never deletes a record's image or PDF, so long-running
// installs accumulate orphaned artifacts. Pruning is an explicit
// operator action rather than a side effect of new submissions.
var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove image and report files no longer referenced by any record",
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, dataDir, err := openStore()
		if err != nil {
			return err
		}

		referenced := store.ReferencedFiles()

		removed := 0
		for _, dir := range []string{filepath.Join(dataDir, "images"), filepath.Join(dataDir, "reports")} {
			entries, err := os.ReadDir(dir)
			if err != nil {
				if os.IsNotExist(err) {
					continue
				}
				return err
			}

			for _, entry := range entries {
				if entry.IsDir() {
					continue
				}

				path := filepath.Clean(filepath.Join(dir, entry.Name()))
				if referenced[path] {
					continue
				}

				if pruneDryRun {
					cmd.Printf("would remove %s\n", path)
				} else if err := os.Remove(path); err != nil {
					return fmt.Errorf("unable to remove %s: %w", path, err)
				} else {
					cmd.Printf("removed %s\n", path)
				}
				removed++
			}
		}

		if removed == 0 {
			cmd.Println("nothing to prune")
		}

		return nil
	},
}
