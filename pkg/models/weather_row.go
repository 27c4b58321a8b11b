package models

import (
	"strconv"
	"time"
)

// Wind speed units accepted by the forecast API
const (
	WindSpeedUnitMS  = "ms"
	WindSpeedUnitKMH = "kmh"
	WindSpeedUnitMPH = "mph"
	WindSpeedUnitKN  = "kn"
)

// TimestampLayout renders UTC instants as 2024-01-01T12:00:00+00:00
const TimestampLayout = "2006-01-02T15:04:05-07:00"

// WeatherRow represents a single current-weather observation as written to the CSV log
type WeatherRow struct {
	TimestampUTC          time.Time `json:"timestamp_utc"`
	Latitude              float64   `json:"latitude"`
	Longitude             float64   `json:"longitude"`
	ElevationM            float64   `json:"elevation_m"`
	Temperature2mC        float64   `json:"temperature_2m_c"`
	RelativeHumidity2mPct float64   `json:"relative_humidity_2m_pct"`
	WindSpeed10m          float64   `json:"wind_speed_10m"`
	WindDirection10mDeg   float64   `json:"wind_direction_10m_deg"`
	WindGusts10m          float64   `json:"wind_gusts_10m"`

	// WindSpeedUnit is the unit configured when the row was fetched. It
	// suffixes the wind speed and gust column names.
	WindSpeedUnit string `json:"wind_speed_unit"`
}

// Columns returns the column names of the row in write order.
// The wind columns depend on WindSpeedUnit, so rows fetched with
// different units do not share a header.
func (r WeatherRow) Columns() []string {
	return []string{
		"timestamp_utc",
		"latitude",
		"longitude",
		"elevation_m",
		"temperature_2m_c",
		"relative_humidity_2m_pct",
		"wind_speed_10m_" + r.WindSpeedUnit,
		"wind_direction_10m_deg",
		"wind_gusts_10m_" + r.WindSpeedUnit,
	}
}

// Record returns the row values formatted for CSV, aligned with Columns
func (r WeatherRow) Record() []string {
	return []string{
		r.Timestamp(),
		formatFloat(r.Latitude),
		formatFloat(r.Longitude),
		formatFloat(r.ElevationM),
		formatFloat(r.Temperature2mC),
		formatFloat(r.RelativeHumidity2mPct),
		formatFloat(r.WindSpeed10m),
		formatFloat(r.WindDirection10mDeg),
		formatFloat(r.WindGusts10m),
	}
}

// Timestamp returns the observation time in ISO-8601 with an explicit UTC offset
func (r WeatherRow) Timestamp() string {
	return r.TimestampUTC.UTC().Format(TimestampLayout)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
