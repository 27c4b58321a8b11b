package puller

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/sguter90/windlog/pkg/models"
	"github.com/sguter90/windlog/pkg/openmeteo"
)

// PullerService fetches one observation and hands it to its sinks
type PullerService struct {
	fetcher Fetcher
	sinks   []Sink
}

// NewPullerService creates a new PullerService. Sinks are written in the
// order given.
func NewPullerService(fetcher Fetcher, sinks ...Sink) *PullerService {
	return &PullerService{
		fetcher: fetcher,
		sinks:   sinks,
	}
}

// AddSink appends a sink after the existing ones
func (ps *PullerService) AddSink(s Sink) {
	ps.sinks = append(ps.sinks, s)
}

// Pull fetches the current conditions for r, extracts a row and appends it
// to every sink. Nothing is written unless fetch and extraction succeed;
// the first failing sink aborts the run.
func (ps *PullerService) Pull(ctx context.Context, r openmeteo.CurrentRequest) (models.WeatherRow, error) {
	resp, err := ps.fetcher.Current(ctx, r)
	if err != nil {
		return models.WeatherRow{}, err
	}

	row, err := openmeteo.ExtractRow(resp, r.WindSpeedUnit)
	if err != nil {
		return models.WeatherRow{}, fmt.Errorf("failed to extract weather row: %w", err)
	}

	for i, s := range ps.sinks {
		if err := s.Append(ctx, row); err != nil {
			return row, fmt.Errorf("failed to append weather row to sink %d: %w", i, err)
		}
	}

	log.WithFields(log.Fields{
		"timestamp": row.Timestamp(),
		"latitude":  row.Latitude,
		"longitude": row.Longitude,
		"sinks":     len(ps.sinks),
	}).Debug("pulled weather row")

	return row, nil
}
