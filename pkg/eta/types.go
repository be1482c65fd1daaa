package eta

import (
	"time"

	"github.com/travigo/haulwatch/pkg/geo"
	"github.com/travigo/haulwatch/pkg/routing"
)

const MaxHistory = 10

type RouteInfo struct {
	DistanceMiles         float64       `json:"distance_miles" groups:"basic"`
	DurationSeconds       float64       `json:"duration_seconds" groups:"basic"`
	StaticDurationSeconds float64       `json:"static_duration_seconds" groups:"detailed"`
	TrafficDelayMinutes   float64       `json:"traffic_delay_minutes" groups:"basic"`
	TrafficLevel          string        `json:"traffic_level,omitempty" groups:"detailed"`
	ETAFormatted          string        `json:"eta_formatted" groups:"basic"`
	Tolls                 routing.Tolls `json:"tolls" groups:"detailed"`
	EncodedPath           string        `json:"encoded_path" groups:"detailed"`
	Path                  geo.Polyline  `json:"-"`
	FetchedAt             time.Time     `json:"fetched_at" groups:"basic"`
}

func (r *RouteInfo) Duration() time.Duration {
	return time.Duration(r.DurationSeconds * float64(time.Second))
}

type Reason string

const (
	ReasonInitial         Reason = "initial"
	ReasonRefresh         Reason = "refresh"
	ReasonTrafficImproved Reason = "traffic_improved"
	ReasonTrafficWorsened Reason = "traffic_worsened"
)

type UpdateEvent struct {
	Timestamp          time.Time `json:"timestamp" groups:"basic"`
	PreviousETA        time.Time `json:"previous_eta" groups:"basic"`
	NewETA             time.Time `json:"new_eta" groups:"basic"`
	DelayChangeMinutes float64   `json:"delay_change_minutes" groups:"basic"`
	Reason             Reason    `json:"reason" groups:"basic"`
}

type Trend string

const (
	TrendUnknown   Trend = ""
	TrendImproving Trend = "improving"
	TrendWorsening Trend = "worsening"
	TrendStable    Trend = "stable"
)

// Estimate is everything derived from the latest route and the current progress
type Estimate struct {
	Available           bool          `json:"available" groups:"basic"`
	Progress            float64       `json:"progress" groups:"basic"`
	RemainingMiles      float64       `json:"remaining_miles" groups:"basic"`
	TraveledMiles       float64       `json:"traveled_miles" groups:"basic"`
	RemainingDuration   time.Duration `json:"remaining_duration" groups:"basic"`
	AdjustedETA         time.Time     `json:"adjusted_eta" groups:"basic"`
	TrafficDelayMinutes float64       `json:"traffic_delay_minutes" groups:"basic"`
	Trend               Trend         `json:"trend,omitempty" groups:"basic"`
	LastUpdate          time.Time     `json:"last_update" groups:"detailed"`
	Error               string        `json:"error,omitempty" groups:"detailed"`
	Message             string        `json:"message,omitempty" groups:"basic"`
}

// Snapshot is a deep copy of the refresher state safe to hand to other goroutines
type Snapshot struct {
	RouteInfo  *RouteInfo    `json:"route_info" groups:"basic"`
	History    []UpdateEvent `json:"history" groups:"detailed"`
	LastUpdate time.Time     `json:"last_update" groups:"basic"`
	Error      string        `json:"error,omitempty" groups:"basic"`
	Tracking   bool          `json:"tracking" groups:"basic"`
	Interval   time.Duration `json:"interval" groups:"detailed"`
}
