package weighstation

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"

	"github.com/expr-lang/expr"
	"github.com/gocarina/gocsv"
	"github.com/paulmach/orb"
)

//go:embed data/stations.csv
var defaultCatalogCSV []byte

type Station struct {
	ID           string  `csv:"id" json:"id" groups:"basic"`
	Name         string  `csv:"name" json:"name" groups:"basic"`
	RoadLabel    string  `csv:"interstate" json:"interstate" groups:"basic"`
	MileMarker   float64 `csv:"mile_marker" json:"mile_marker" groups:"basic"`
	StateCode    string  `csv:"state" json:"state" groups:"basic"`
	Latitude     float64 `csv:"latitude" json:"latitude" groups:"basic"`
	Longitude    float64 `csv:"longitude" json:"longitude" groups:"basic"`
	Is247        bool    `csv:"is_24_7" json:"is_24_7" groups:"detailed"`
	HasPrePass   bool    `csv:"has_prepass" json:"has_prepass" groups:"detailed"`
	HasDrivewyze bool    `csv:"has_drivewyze" json:"has_drivewyze" groups:"detailed"`
}

func (s Station) Point() orb.Point {
	return orb.Point{s.Longitude, s.Latitude}
}

// LoadCSV reads a weigh station catalog
func LoadCSV(reader io.Reader) ([]Station, error) {
	var stations []Station
	if err := gocsv.Unmarshal(reader, &stations); err != nil {
		return nil, fmt.Errorf("parse weigh station catalog: %w", err)
	}

	seen := map[string]bool{}
	for _, station := range stations {
		if station.ID == "" {
			return nil, fmt.Errorf("weigh station %q has no id", station.Name)
		}
		if seen[station.ID] {
			return nil, fmt.Errorf("duplicate weigh station id %s", station.ID)
		}
		seen[station.ID] = true
	}

	return stations, nil
}

// DefaultCatalog is the built in list of interstate weigh stations
func DefaultCatalog() []Station {
	stations, err := LoadCSV(bytes.NewReader(defaultCatalogCSV))
	if err != nil {
		panic(err)
	}

	return stations
}

// Filter keeps the stations matching a boolean expression over Station fields, eg. "Is247 && HasPrePass"
func Filter(stations []Station, expression string) ([]Station, error) {
	if expression == "" {
		return stations, nil
	}

	program, err := expr.Compile(expression, expr.Env(Station{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile station filter: %w", err)
	}

	var filtered []Station
	for _, station := range stations {
		output, err := expr.Run(program, station)
		if err != nil {
			return nil, fmt.Errorf("run station filter on %s: %w", station.ID, err)
		}

		if output.(bool) {
			filtered = append(filtered, station)
		}
	}

	return filtered, nil
}
