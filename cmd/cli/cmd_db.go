package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sguter90/windlog/pkg/database"
	"github.com/sguter90/windlog/pkg/models"
)

var tailLimit int

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Inspect the Postgres mirror",
}

var dbTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Show the most recent rows stored in Postgres",
	RunE:  runDBTail,
}

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(dbTailCmd)

	dbTailCmd.Flags().IntVarP(&tailLimit, "limit", "n", 10, "number of rows to show")
}

func runDBTail(cmd *cobra.Command, args []string) error {
	cfg := configFrom(cmd)
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is not set")
	}
	if tailLimit < 1 {
		return fmt.Errorf("invalid limit %d", tailLimit)
	}

	dbManager, err := database.NewDatabaseManager(cmd.Context(), cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer dbManager.Close()

	rows, err := dbManager.LatestRows(cmd.Context(), tailLimit)
	if err != nil {
		return err
	}

	if len(rows) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No rows stored")
		return nil
	}
	for _, row := range rows {
		fmt.Fprintln(cmd.OutOrStdout(), formatRow(row))
	}
	return nil
}

// formatRow renders one row per line, newest first
func formatRow(r models.WeatherRow) string {
	return fmt.Sprintf("%s  %g,%g  %gm  %g°C  %g%%  wind %g%s from %g°  gusts %g%s",
		r.Timestamp(),
		r.Latitude, r.Longitude,
		r.ElevationM,
		r.Temperature2mC,
		r.RelativeHumidity2mPct,
		r.WindSpeed10m, r.WindSpeedUnit, r.WindDirection10mDeg,
		r.WindGusts10m, r.WindSpeedUnit,
	)
}
