package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	log "github.com/sirupsen/logrus"

	"github.com/sguter90/windlog/pkg/models"
)

// DatabaseManager mirrors weather rows into Postgres
type DatabaseManager struct {
	db *sql.DB
}

// NewDatabaseManager connects to the database at connStr
func NewDatabaseManager(ctx context.Context, connStr string) (*DatabaseManager, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DatabaseManager{db: db}, nil
}

// Close closes the database connection
func (dm *DatabaseManager) Close() error {
	if dm.db != nil {
		return dm.db.Close()
	}
	return nil
}

// Init creates the weather_rows table if needed
func (dm *DatabaseManager) Init(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS weather_rows (
			id UUID PRIMARY KEY,
			observed_at TIMESTAMPTZ NOT NULL,
			latitude DOUBLE PRECISION NOT NULL,
			longitude DOUBLE PRECISION NOT NULL,
			elevation_m DOUBLE PRECISION NOT NULL,
			temperature_2m_c DOUBLE PRECISION NOT NULL,
			relative_humidity_2m_pct DOUBLE PRECISION NOT NULL,
			wind_speed_10m DOUBLE PRECISION NOT NULL,
			wind_direction_10m_deg DOUBLE PRECISION NOT NULL,
			wind_gusts_10m DOUBLE PRECISION NOT NULL,
			wind_speed_unit VARCHAR(8) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_weather_rows_observed_at ON weather_rows (observed_at);`

	if _, err := dm.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create weather_rows table: %w", err)
	}
	return nil
}

// Append stores one weather row under a fresh id
func (dm *DatabaseManager) Append(ctx context.Context, row models.WeatherRow) error {
	query := `
		INSERT INTO weather_rows (
			id,
			observed_at,
			latitude,
			longitude,
			elevation_m,
			temperature_2m_c,
			relative_humidity_2m_pct,
			wind_speed_10m,
			wind_direction_10m_deg,
			wind_gusts_10m,
			wind_speed_unit
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	id := uuid.New()
	_, err := dm.db.ExecContext(ctx, query,
		id,
		row.TimestampUTC.UTC(),
		row.Latitude,
		row.Longitude,
		row.ElevationM,
		row.Temperature2mC,
		row.RelativeHumidity2mPct,
		row.WindSpeed10m,
		row.WindDirection10mDeg,
		row.WindGusts10m,
		row.WindSpeedUnit,
	)
	if err != nil {
		return fmt.Errorf("failed to insert weather row: %w", err)
	}

	log.WithFields(log.Fields{"id": id, "observed_at": row.Timestamp()}).Debug("stored weather row in database")
	return nil
}

// LatestRows returns the most recent rows, newest first
func (dm *DatabaseManager) LatestRows(ctx context.Context, limit int) ([]models.WeatherRow, error) {
	query := `
		SELECT observed_at, latitude, longitude, elevation_m, temperature_2m_c,
			relative_humidity_2m_pct, wind_speed_10m, wind_direction_10m_deg,
			wind_gusts_10m, wind_speed_unit
		FROM weather_rows
		ORDER BY observed_at DESC, created_at DESC
		LIMIT $1`

	rows, err := dm.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query weather rows: %w", err)
	}
	defer rows.Close()

	var result []models.WeatherRow
	for rows.Next() {
		var r models.WeatherRow
		if err := rows.Scan(
			&r.TimestampUTC,
			&r.Latitude,
			&r.Longitude,
			&r.ElevationM,
			&r.Temperature2mC,
			&r.RelativeHumidity2mPct,
			&r.WindSpeed10m,
			&r.WindDirection10mDeg,
			&r.WindGusts10m,
			&r.WindSpeedUnit,
		); err != nil {
			return nil, fmt.Errorf("failed to scan weather row: %w", err)
		}
		r.TimestampUTC = r.TimestampUTC.UTC()
		result = append(result, r)
	}

	return result, rows.Err()
}
