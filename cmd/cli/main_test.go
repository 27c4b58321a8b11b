package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sguter90/windlog/pkg/models"
)

const fixture = `{
	"latitude": 51.5,
	"longitude": -0.12,
	"elevation": 11.0,
	"current": {
		"time": 1741943700,
		"interval": 900,
		"temperature_2m": 9.8,
		"relative_humidity_2m": 74,
		"wind_speed_10m": 15.1,
		"wind_direction_10m": 250,
		"wind_gusts_10m": 31.7
	}
}`

func setupEnv(t *testing.T, apiURL string) string {
	t.Helper()
	dir := t.TempDir()

	for _, key := range []string{"LAT", "LON", "WIND_SPEED_UNIT", "DATABASE_URL", "LOG_LEVEL", "MAX_ATTEMPTS", "CACHE_TTL"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	t.Setenv("API_URL", apiURL)
	t.Setenv("CACHE_PATH", filepath.Join(dir, ".cache.sqlite"))
	t.Setenv("CSV_PATH", filepath.Join(dir, "data", "wind_data.csv"))
	t.Setenv("BACKOFF_BASE", "1ms")

	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(append(args, "--env-file", "", "--config", "", "--log-level", "error"))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestFetchCommand_AppendsRow(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.URL.Query().Get("wind_speed_unit") != "kmh" {
			t.Errorf("Expected kmh unit, got %s", r.URL.Query().Get("wind_speed_unit"))
		}
		w.Write([]byte(fixture))
	}))
	defer srv.Close()

	dir := setupEnv(t, srv.URL+"/v1/forecast")
	t.Setenv("LAT", "51.5")
	t.Setenv("LON", "-0.12")
	t.Setenv("WIND_SPEED_UNIT", "kmh")
	csvPath := filepath.Join(dir, "data", "wind_data.csv")

	out, err := execute(t, "fetch")
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	expected := "Appended weather row at 2025-03-14T09:15:00+00:00 to " + csvPath + "\n"
	if out != expected {
		t.Errorf("Expected output %q, got %q", expected, out)
	}

	// root command runs the same pipeline; the second run is a cache hit
	if _, err := execute(t); err != nil {
		t.Fatalf("root run failed: %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("Expected 1 API call, got %d", n)
	}

	data, err := os.ReadFile(csvPath)
	if err != nil {
		t.Fatalf("Failed to read csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "timestamp_utc,latitude,longitude,elevation_m,temperature_2m_c,relative_humidity_2m_pct,wind_speed_10m_kmh,wind_direction_10m_deg,wind_gusts_10m_kmh" {
		t.Errorf("Unexpected header %s", lines[0])
	}
	if lines[1] != "2025-03-14T09:15:00+00:00,51.5,-0.12,11,9.8,74,15.1,250,31.7" {
		t.Errorf("Unexpected row %s", lines[1])
	}
}

func TestFetchCommand_PrintsCleanPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(fixture))
	}))
	defer srv.Close()

	dir := setupEnv(t, srv.URL+"/v1/forecast")
	t.Setenv("CSV_PATH", dir+"/./data//wind_data.csv")

	out, err := execute(t, "fetch")
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	expected := " to " + filepath.Join(dir, "data", "wind_data.csv") + "\n"
	if !strings.HasSuffix(out, expected) {
		t.Errorf("Expected output ending in %q, got %q", expected, out)
	}
}

func TestFetchCommand_InvalidLatitude(t *testing.T) {
	setupEnv(t, "http://127.0.0.1:1/v1/forecast")
	t.Setenv("LAT", "not-a-number")

	_, err := execute(t, "fetch")
	if err == nil {
		t.Fatal("Expected error for non-numeric LAT")
	}
	if !strings.Contains(err.Error(), "LAT") {
		t.Errorf("Expected error to mention LAT, got %v", err)
	}
}

func TestFetchCommand_APIUnavailable(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	dir := setupEnv(t, srv.URL+"/v1/forecast")

	if _, err := execute(t, "fetch"); err == nil {
		t.Fatal("Expected error when the API stays unavailable")
	}
	if n := atomic.LoadInt32(&calls); n != 5 {
		t.Errorf("Expected 5 attempts, got %d", n)
	}
	if _, err := os.Stat(filepath.Join(dir, "data", "wind_data.csv")); !os.IsNotExist(err) {
		t.Errorf("Expected no csv file, stat returned %v", err)
	}
}

func TestCacheCommands(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(fixture))
	}))
	defer srv.Close()

	setupEnv(t, srv.URL+"/v1/forecast")

	if _, err := execute(t, "fetch"); err != nil {
		t.Fatalf("fetch failed: %v", err)
	}

	out, err := execute(t, "cache", "stats")
	if err != nil {
		t.Fatalf("cache stats failed: %v", err)
	}
	if !strings.Contains(out, "Live entries: 1") {
		t.Errorf("Expected 1 live entry, got %q", out)
	}

	out, err = execute(t, "cache", "purge")
	if err != nil {
		t.Fatalf("cache purge failed: %v", err)
	}
	if !strings.Contains(out, "Purged 0 expired entries") {
		t.Errorf("Unexpected purge output %q", out)
	}
}

func TestInitLogger_InvalidLevel(t *testing.T) {
	if err := InitLogger("chatty"); err == nil {
		t.Error("Expected error for unknown level")
	}
	if err := InitLogger("debug"); err != nil {
		t.Errorf("Expected debug to be accepted, got %v", err)
	}
}

func TestDBTail_RequiresDatabaseURL(t *testing.T) {
	setupEnv(t, "http://127.0.0.1:1/v1/forecast")

	_, err := execute(t, "db", "tail")
	if err == nil {
		t.Fatal("Expected error without DATABASE_URL")
	}
	if !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Errorf("Expected error to mention DATABASE_URL, got %v", err)
	}
}

func TestFormatRow(t *testing.T) {
	row := models.WeatherRow{
		TimestampUTC:          time.Date(2025, 3, 14, 9, 15, 0, 0, time.UTC),
		Latitude:              44.34,
		Longitude:             10.99,
		ElevationM:            38,
		Temperature2mC:        12.3,
		RelativeHumidity2mPct: 81,
		WindSpeed10m:          3.4,
		WindDirection10mDeg:   225,
		WindGusts10m:          7.9,
		WindSpeedUnit:         "kn",
	}

	expected := "2025-03-14T09:15:00+00:00  44.34,10.99  38m  12.3°C  81%  wind 3.4kn from 225°  gusts 7.9kn"
	if got := formatRow(row); got != expected {
		t.Errorf("Expected %q, got %q", expected, got)
	}
}
