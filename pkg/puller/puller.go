package puller

import (
	"context"

	"github.com/sguter90/windlog/pkg/models"
	"github.com/sguter90/windlog/pkg/openmeteo"
)

// Fetcher retrieves the current conditions for a location
type Fetcher interface {
	Current(ctx context.Context, r openmeteo.CurrentRequest) (*openmeteo.ForecastResponse, error)
}

// Sink receives every extracted weather row
type Sink interface {
	Append(ctx context.Context, row models.WeatherRow) error
}
