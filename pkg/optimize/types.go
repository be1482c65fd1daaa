package optimize

import (
	"fmt"
	"math"
	"strings"

	"github.com/travigo/haulwatch/pkg/geo"
)

const (
	MinWaypoints = 2
	MaxWaypoints = 10

	keyPrecision = 1e5
)

type Profile string

const (
	ProfileDriving    Profile = "driving"
	ProfileDrivingHGV Profile = "driving-hgv"
)

type Waypoint struct {
	Lat   float64 `json:"lat" groups:"basic"`
	Lng   float64 `json:"lng" groups:"basic"`
	Label string  `json:"label,omitempty" groups:"basic"`
}

type Leg struct {
	From            int     `json:"from" groups:"detailed"`
	To              int     `json:"to" groups:"detailed"`
	DistanceMeters  float64 `json:"distance" groups:"detailed"`
	DurationSeconds float64 `json:"duration" groups:"detailed"`
}

type Savings struct {
	DistancePercent float64 `json:"distancePercent" groups:"basic"`
	DurationPercent float64 `json:"durationPercent" groups:"basic"`
}

type Result struct {
	OptimizedOrder       []int   `json:"optimizedOrder" groups:"basic"`
	TotalDistanceMeters  float64 `json:"totalDistance" groups:"basic"`
	TotalDurationSeconds float64 `json:"totalDuration" groups:"basic"`
	Savings              Savings `json:"savings" groups:"basic"`
	Legs                 []Leg   `json:"legs" groups:"detailed"`
}

func (r *Result) clone() *Result {
	if r == nil {
		return nil
	}

	copied := *r
	copied.OptimizedOrder = append([]int(nil), r.OptimizedOrder...)
	copied.Legs = append([]Leg(nil), r.Legs...)

	return &copied
}

// SavedSeconds and SavedMeters work back from the percentages to the original order totals
func (r *Result) SavedSeconds() float64 {
	return savedFromPercent(r.TotalDurationSeconds, r.Savings.DurationPercent)
}

func (r *Result) SavedMeters() float64 {
	return savedFromPercent(r.TotalDistanceMeters, r.Savings.DistancePercent)
}

func savedFromPercent(total float64, percent float64) float64 {
	if percent <= 0 || percent >= 100 {
		return 0
	}
	baseline := total / (1 - percent/100)
	return baseline - total
}

// Describe gives the human readable time and distance saved, eg "Saves 12 min and 4.3 mi"
func Describe(result *Result) string {
	if result == nil {
		return ""
	}

	minutes := math.Round(result.SavedSeconds() / 60)
	miles := math.Round(result.SavedMeters()/geo.MetresPerMile*10) / 10

	var parts []string
	if minutes >= 1 {
		parts = append(parts, fmt.Sprintf("%.0f min", minutes))
	}
	if miles >= 0.1 {
		parts = append(parts, fmt.Sprintf("%.1f mi", miles))
	}

	if len(parts) == 0 {
		return "Stops are already in the best order"
	}

	return "Saves " + strings.Join(parts, " and ")
}

// Key identifies a waypoint set by coordinates rounded to 5 decimal places, in input order
func Key(waypoints []Waypoint, profile Profile) string {
	coordinates := make([]string, 0, len(waypoints))
	for _, waypoint := range waypoints {
		coordinates = append(coordinates, fmt.Sprintf("%.5f,%.5f", roundCoordinate(waypoint.Lat), roundCoordinate(waypoint.Lng)))
	}

	return fmt.Sprintf("%s:%s", profile, strings.Join(coordinates, "|"))
}

func roundCoordinate(value float64) float64 {
	rounded := math.Round(value*keyPrecision) / keyPrecision
	if rounded == 0 {
		return 0
	}
	return rounded
}
