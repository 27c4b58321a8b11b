package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Current variables requested from the API, in request order
const (
	VarTemperature2m      = "temperature_2m"
	VarRelativeHumidity2m = "relative_humidity_2m"
	VarWindSpeed10m       = "wind_speed_10m"
	VarWindDirection10m   = "wind_direction_10m"
	VarWindGusts10m       = "wind_gusts_10m"
)

// CurrentVariables is the ordered list sent as the "current" parameter.
// ExtractRow reads the response by these names.
var CurrentVariables = []string{
	VarTemperature2m,
	VarRelativeHumidity2m,
	VarWindSpeed10m,
	VarWindDirection10m,
	VarWindGusts10m,
}

// CurrentRequest describes a current-conditions query for one location
type CurrentRequest struct {
	Latitude      float64
	Longitude     float64
	WindSpeedUnit string
}

// Query returns the query parameters for the request
func (r CurrentRequest) Query() url.Values {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(r.Latitude, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(r.Longitude, 'f', -1, 64))
	q.Set("timezone", "UTC")
	q.Set("current", strings.Join(CurrentVariables, ","))
	q.Set("wind_speed_unit", r.WindSpeedUnit)
	q.Set("timeformat", "unixtime")
	return q
}

// ForecastResponse is the subset of the /v1/forecast response used here
type ForecastResponse struct {
	Latitude             float64           `json:"latitude"`
	Longitude            float64           `json:"longitude"`
	Elevation            float64           `json:"elevation"`
	GenerationTimeMS     float64           `json:"generationtime_ms"`
	UTCOffsetSeconds     int               `json:"utc_offset_seconds"`
	Timezone             string            `json:"timezone"`
	TimezoneAbbreviation string            `json:"timezone_abbreviation"`
	CurrentUnits         map[string]string `json:"current_units"`
	Current              *CurrentBlock     `json:"current"`
}

// CurrentBlock is the latest observation. Time is unix seconds because the
// request asks for timeformat=unixtime.
type CurrentBlock struct {
	Time     *int64
	Interval int
	// Values holds every numeric variable by name; null values are absent
	Values map[string]float64
}

// UnmarshalJSON implements json.Unmarshaler
func (b *CurrentBlock) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	b.Values = make(map[string]float64, len(raw))
	for name, value := range raw {
		switch name {
		case "time":
			var ts int64
			if err := json.Unmarshal(value, &ts); err != nil {
				return fmt.Errorf("current.time: %w", err)
			}
			b.Time = &ts
		case "interval":
			if err := json.Unmarshal(value, &b.Interval); err != nil {
				return fmt.Errorf("current.interval: %w", err)
			}
		default:
			var v *float64
			if err := json.Unmarshal(value, &v); err != nil {
				return fmt.Errorf("current.%s: %w", name, err)
			}
			if v != nil {
				b.Values[name] = *v
			}
		}
	}
	return nil
}

// APIError is returned when the API answers with a non-200 status
type APIError struct {
	StatusCode int
	Reason     string
}

func (e *APIError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("open-meteo API error (status %d): %s", e.StatusCode, e.Reason)
	}
	return fmt.Sprintf("open-meteo API error (status %d)", e.StatusCode)
}

type errorResponse struct {
	Error  bool   `json:"error"`
	Reason string `json:"reason"`
}

// Current fetches the current conditions for the requested location
func (c *Client) Current(ctx context.Context, r CurrentRequest) (*ForecastResponse, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API URL %q: %w", c.baseURL, err)
	}
	u.RawQuery = r.Query().Encode()

	resp, err := c.do(ctx, u.String())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch current weather: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var errResp errorResponse
		if err := json.Unmarshal(body, &errResp); err == nil {
			apiErr.Reason = errResp.Reason
		} else {
			apiErr.Reason = strings.TrimSpace(string(body))
		}
		return nil, apiErr
	}

	var forecast ForecastResponse
	if err := json.Unmarshal(body, &forecast); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &forecast, nil
}
