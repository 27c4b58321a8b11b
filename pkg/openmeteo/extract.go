package openmeteo

import (
	"errors"
	"fmt"
	"time"

	"github.com/sguter90/windlog/pkg/models"
)

// ErrNoCurrentBlock is returned when a response carries no "current" object
var ErrNoCurrentBlock = errors.New("response has no current block")

// ExtractRow maps a forecast response to a WeatherRow. Variables are looked
// up by name, so reordering CurrentVariables cannot shift values into the
// wrong columns. Any missing value fails the whole row.
func ExtractRow(resp *ForecastResponse, windSpeedUnit string) (models.WeatherRow, error) {
	if resp == nil || resp.Current == nil {
		return models.WeatherRow{}, ErrNoCurrentBlock
	}
	cur := resp.Current
	if cur.Time == nil {
		return models.WeatherRow{}, errors.New("response current block has no time")
	}

	for _, name := range CurrentVariables {
		if _, ok := cur.Values[name]; !ok {
			return models.WeatherRow{}, fmt.Errorf("response is missing current variable %q", name)
		}
	}

	return models.WeatherRow{
		TimestampUTC:          time.Unix(*cur.Time, 0).UTC(),
		Latitude:              resp.Latitude,
		Longitude:             resp.Longitude,
		ElevationM:            resp.Elevation,
		Temperature2mC:        cur.Values[VarTemperature2m],
		RelativeHumidity2mPct: cur.Values[VarRelativeHumidity2m],
		WindSpeed10m:          cur.Values[VarWindSpeed10m],
		WindDirection10mDeg:   cur.Values[VarWindDirection10m],
		WindGusts10m:          cur.Values[VarWindGusts10m],
		WindSpeedUnit:         windSpeedUnit,
	}, nil
}
