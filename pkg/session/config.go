package session

import (
	"fmt"
	"os"

	"github.com/travigo/haulwatch/pkg/checkpoint"
	"github.com/travigo/haulwatch/pkg/config"
	"github.com/travigo/haulwatch/pkg/geo"
	"github.com/travigo/haulwatch/pkg/routing"
	"github.com/travigo/haulwatch/pkg/schedule"
	"github.com/travigo/haulwatch/pkg/weighstation"
)

// LoadStations returns the configured catalog, or the bundled one, narrowed by the configured filter
func LoadStations(stations config.StationsConfig) ([]weighstation.Station, error) {
	catalog := weighstation.DefaultCatalog()

	if stations.Catalog != "" {
		file, err := os.Open(stations.Catalog)
		if err != nil {
			return nil, err
		}
		defer file.Close()

		catalog, err = weighstation.LoadCSV(file)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", stations.Catalog, err)
		}
	}

	return weighstation.Filter(catalog, stations.Filter)
}

// NewFromConfig builds a session for the configured trip
func NewFromConfig(cfg *config.Config, presenter checkpoint.Presenter, player checkpoint.Player, scheduler schedule.Scheduler) (*Session, error) {
	if cfg.Routing.BaseURL == "" {
		return nil, fmt.Errorf("routing base_url is not configured")
	}

	stations, err := LoadStations(cfg.Stations)
	if err != nil {
		return nil, err
	}

	origin := routing.LatLng{Lat: cfg.Tracking.Origin.Lat, Lng: cfg.Tracking.Origin.Lng}
	destination := routing.LatLng{Lat: cfg.Tracking.Destination.Lat, Lng: cfg.Tracking.Destination.Lng}

	var route geo.Polyline
	if cfg.Tracking.Polyline != "" {
		route, err = geo.Decode(cfg.Tracking.Polyline)
		if err != nil {
			return nil, fmt.Errorf("tracking polyline: %w", err)
		}
	}

	return New(Options{
		Route:       route,
		Origin:      origin.Point(),
		Destination: destination.Point(),
		Stations:    stations,
		StationOptions: weighstation.Options{
			ToleranceMiles: cfg.Stations.ToleranceMiles,
			LookAheadIndex: float64(cfg.Stations.LookAheadIndex),
			LookAheadMiles: cfg.Stations.LookAheadMiles,
		},
		Player:            player,
		Presenter:         presenter,
		NotificationDelay: cfg.Tracking.NotificationDelay.Duration,
		Routing:           routing.NewHTTPClient(cfg.Routing.BaseURL, cfg.Routing.Timeout.Duration),
		RefreshInterval:   cfg.Tracking.RefreshInterval.Duration,
		Scheduler:         scheduler,
	})
}
