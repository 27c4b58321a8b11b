package main

import (
	"fmt"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sguter90/windlog/pkg/cache"
	"github.com/sguter90/windlog/pkg/database"
	"github.com/sguter90/windlog/pkg/openmeteo"
	"github.com/sguter90/windlog/pkg/puller"
	"github.com/sguter90/windlog/pkg/storage"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch the current weather and append it to the CSV file",
	Long: `Fetch the current conditions for LAT/LON from Open-Meteo and append one
row to CSV_PATH. Identical requests within CACHE_TTL are served from the
response cache. When DATABASE_URL is set the row is also stored in Postgres.`,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg := configFrom(cmd)
	ctx := cmd.Context()

	store, err := cache.Open(cfg.CachePath, cfg.CacheTTL)
	if err != nil {
		return err
	}
	defer store.Close()

	client := openmeteo.NewClient(cfg.APIURL,
		openmeteo.WithRetry(cfg.MaxAttempts, cfg.BackoffBase),
		openmeteo.WithTransport(cache.NewTransport(store, nil)),
		openmeteo.WithLogger(log.WithFields(log.Fields{
			"component": "openmeteo",
			"latitude":  cfg.Latitude,
			"longitude": cfg.Longitude,
		})),
	)

	appender := storage.NewCSVAppender(cfg.CSVPath)
	service := puller.NewPullerService(client, appender)

	if cfg.DatabaseURL != "" {
		dbManager, err := database.NewDatabaseManager(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer dbManager.Close()

		if err := dbManager.Init(ctx); err != nil {
			return err
		}
		service.AddSink(dbManager)
	}

	row, err := service.Pull(ctx, openmeteo.CurrentRequest{
		Latitude:      cfg.Latitude,
		Longitude:     cfg.Longitude,
		WindSpeedUnit: cfg.WindSpeedUnit,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Appended weather row at %s to %s\n", row.Timestamp(), filepath.Clean(appender.Path()))
	return nil
}
