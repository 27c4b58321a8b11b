package models

import (
	"testing"
	"time"
)

func testRow(unit string) WeatherRow {
	return WeatherRow{
		TimestampUTC:          time.Date(2025, 3, 14, 9, 15, 0, 0, time.UTC),
		Latitude:              44.34,
		Longitude:             10.99,
		ElevationM:            38,
		Temperature2mC:        12.3,
		RelativeHumidity2mPct: 81,
		WindSpeed10m:          3.4,
		WindDirection10mDeg:   225,
		WindGusts10m:          7.9,
		WindSpeedUnit:         unit,
	}
}

func TestWeatherRow_Columns(t *testing.T) {
	expected := []string{
		"timestamp_utc",
		"latitude",
		"longitude",
		"elevation_m",
		"temperature_2m_c",
		"relative_humidity_2m_pct",
		"wind_speed_10m_ms",
		"wind_direction_10m_deg",
		"wind_gusts_10m_ms",
	}

	cols := testRow(WindSpeedUnitMS).Columns()
	if len(cols) != len(expected) {
		t.Fatalf("Expected %d columns, got %d", len(expected), len(cols))
	}
	for i := range expected {
		if cols[i] != expected[i] {
			t.Errorf("Column %d: expected %s, got %s", i, expected[i], cols[i])
		}
	}
}

func TestWeatherRow_Columns_UnitSuffix(t *testing.T) {
	testCases := []struct {
		unit      string
		windSpeed string
		windGusts string
	}{
		{WindSpeedUnitMS, "wind_speed_10m_ms", "wind_gusts_10m_ms"},
		{WindSpeedUnitKMH, "wind_speed_10m_kmh", "wind_gusts_10m_kmh"},
		{WindSpeedUnitMPH, "wind_speed_10m_mph", "wind_gusts_10m_mph"},
		{WindSpeedUnitKN, "wind_speed_10m_kn", "wind_gusts_10m_kn"},
	}

	for _, tc := range testCases {
		t.Run(tc.unit, func(t *testing.T) {
			cols := testRow(tc.unit).Columns()
			if cols[6] != tc.windSpeed {
				t.Errorf("Expected %s, got %s", tc.windSpeed, cols[6])
			}
			if cols[8] != tc.windGusts {
				t.Errorf("Expected %s, got %s", tc.windGusts, cols[8])
			}
		})
	}
}

func TestWeatherRow_Record(t *testing.T) {
	expected := []string{
		"2025-03-14T09:15:00+00:00",
		"44.34",
		"10.99",
		"38",
		"12.3",
		"81",
		"3.4",
		"225",
		"7.9",
	}

	rec := testRow(WindSpeedUnitMS).Record()
	if len(rec) != len(expected) {
		t.Fatalf("Expected %d values, got %d", len(expected), len(rec))
	}
	for i := range expected {
		if rec[i] != expected[i] {
			t.Errorf("Value %d: expected %s, got %s", i, expected[i], rec[i])
		}
	}
}

func TestWeatherRow_Timestamp_ConvertsToUTC(t *testing.T) {
	row := testRow(WindSpeedUnitMS)
	row.TimestampUTC = time.Date(2025, 3, 14, 11, 15, 0, 0, time.FixedZone("CEST", 2*3600))

	if got := row.Timestamp(); got != "2025-03-14T09:15:00+00:00" {
		t.Errorf("Expected UTC timestamp, got %s", got)
	}
}
