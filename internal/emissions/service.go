package emissions

import (
	"context"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog"
)

// ServiceConfig holds configuration for the emissions service.
type ServiceConfig struct {
	// Store owns the samples. Required.
	Store Store

	// Countries resolves country codes. Defaults to the embedded table.
	Countries CountryLookup

	// Logger for service operations.
	Logger zerolog.Logger
}

// Service answers point and average requests.
// It holds no per-request state and is safe for concurrent use.
type Service struct {
	store     Store
	countries CountryLookup
	pipeline  Pipeline
	logger    zerolog.Logger
}

// NewService creates a new emissions service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("emissions: store is required")
	}

	countries := cfg.Countries
	if countries == nil {
		table, err := LoadCountryTable()
		if err != nil {
			return nil, err
		}
		countries = table
	}

	return &Service{
		store:     cfg.Store,
		countries: countries,
		pipeline:  NewPipeline(countries),
		logger:    cfg.Logger,
	}, nil
}

// Countries returns the lookup used to resolve country codes.
func (s *Service) Countries() CountryLookup {
	return s.countries
}

// Points returns the samples matching req as a feature collection.
func (s *Service) Points(ctx context.Context, req Request) (*geojson.FeatureCollection, error) {
	f, err := s.prepare(req)
	if err != nil {
		return nil, err
	}

	rows, err := s.store.Points(f.Boundary, f.Dates).Paginate(f.Page).Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch points: %w", err)
	}

	s.logger.Debug().Int("rows", len(rows)).Msg("fetched points")
	return ShapePoints(rows), nil
}

// Averages returns the aggregates matching req.
func (s *Service) Averages(ctx context.Context, req Request) ([]AverageRecord, error) {
	f, err := s.prepare(req)
	if err != nil {
		return nil, err
	}

	rows, err := s.store.Averages(f.Boundary, f.Dates).Paginate(f.Page).Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch averages: %w", err)
	}

	s.logger.Debug().Int("rows", len(rows)).Msg("fetched averages")
	return ShapeAverages(rows), nil
}

func (s *Service) prepare(req Request) (Filter, error) {
	f, err := s.pipeline.Run(req)
	if err != nil {
		s.logger.Debug().Err(err).Msg("rejected request")
		return Filter{}, err
	}

	if e := s.logger.Debug(); e.Enabled() {
		e.Str("geometry", SelectGeometry(req).Name())
		if f.HasBoundary() {
			e.Str("boundary", wkt.MarshalString(orb.Polygon{f.Boundary}))
		}
		if f.Dates.Begin != nil {
			e.Time("begin", *f.Dates.Begin)
		}
		if f.Dates.End != nil {
			e.Time("end", *f.Dates.End)
		}
		if f.Page.Limit != nil {
			e.Int("limit", *f.Page.Limit)
		}
		if f.Page.Offset != nil {
			e.Int("offset", *f.Page.Offset)
		}
		e.Msg("resolved filter")
	}
	return f, nil
}
