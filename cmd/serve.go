package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/affodent/shadematch/internal/server"
	"github.com/affodent/shadematch/pkg/history"
	"github.com/affodent/shadematch/pkg/sampler"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("listen", "", "address to listen on (host:port)")
	viper.BindPFlag("listen", serveCmd.Flags().Lookup("listen"))
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the clinic web application",
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, dataDir, err := openStore()
		if err != nil {
			return err
		}

		mode, err := sampler.ParseMode(viper.GetString("sampler.mode"))
		if err != nil {
			return err
		}

		srv, err := server.New(store, dataDir, mode, &log.Logger)
		if err != nil {
			return fmt.Errorf("unable to prepare server: %w", err)
		}

		return srv.Start(cmd.Context(), viper.GetString("listen"))
	},
}

// openStore prepares the data directory and loads the patient history.
func openStore() (*history.FileStore, string, error) {
	dataDir := viper.GetString("data-dir")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, "", fmt.Errorf("unable to create %s: %w", dataDir, err)
	}

	store, err := history.NewFileStore(filepath.Join(dataDir, "patients.json"), viper.GetInt("history.max"))
	if err != nil {
		return nil, "", err
	}

	return store, dataDir, nil
}
