package eta

import (
	"time"
)

const (
	trendWindow    = 3
	trendThreshold = 5.0
)

// TrendOf looks at the delay change over the last three updates
func TrendOf(history []UpdateEvent) Trend {
	if len(history) < 2 {
		return TrendUnknown
	}

	recent := history
	if len(recent) > trendWindow {
		recent = recent[len(recent)-trendWindow:]
	}

	var total float64
	for _, event := range recent {
		total += event.DelayChangeMinutes
	}

	switch {
	case total < -trendThreshold:
		return TrendImproving
	case total > trendThreshold:
		return TrendWorsening
	default:
		return TrendStable
	}
}

func (r *Refresher) Trend() Trend {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	return TrendOf(r.history)
}

func (r *Refresher) RemainingMiles() float64 {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.routeInfo == nil {
		return 0
	}
	return r.routeInfo.DistanceMiles * (1 - r.progress/100)
}

func (r *Refresher) TraveledMiles() float64 {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.routeInfo == nil {
		return 0
	}
	return r.routeInfo.DistanceMiles * r.progress / 100
}

func (r *Refresher) RemainingDuration() time.Duration {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	return r.remainingDuration()
}

func (r *Refresher) remainingDuration() time.Duration {
	if r.routeInfo == nil {
		return 0
	}
	return time.Duration(float64(r.routeInfo.Duration()) * (1 - r.progress/100))
}

// AdjustedETA is now plus the remaining share of the route duration
func (r *Refresher) AdjustedETA() (time.Time, bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.routeInfo == nil {
		return time.Time{}, false
	}
	return r.scheduler.Now().Add(r.remainingDuration()), true
}

// StatusMessage describes the state when there is no ETA to show
func (r *Refresher) StatusMessage() string {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	return r.statusMessage()
}

func (r *Refresher) statusMessage() string {
	switch {
	case r.routeInfo != nil:
		return ""
	case r.inFlight:
		return "Fetching traffic data..."
	case r.err != nil:
		return "Traffic data unavailable"
	case !r.tracking:
		return "Start tracking to see a live ETA"
	default:
		return "Waiting for traffic data"
	}
}

func (r *Refresher) Estimate() Estimate {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	estimate := Estimate{
		Progress:   r.progress,
		LastUpdate: r.lastUpdate,
		Trend:      TrendOf(r.history),
		Message:    r.statusMessage(),
	}
	if r.err != nil {
		estimate.Error = r.err.Error()
	}

	if r.routeInfo == nil {
		return estimate
	}

	estimate.Available = true
	estimate.RemainingMiles = r.routeInfo.DistanceMiles * (1 - r.progress/100)
	estimate.TraveledMiles = r.routeInfo.DistanceMiles * r.progress / 100
	estimate.RemainingDuration = r.remainingDuration()
	estimate.AdjustedETA = r.scheduler.Now().Add(estimate.RemainingDuration)
	estimate.TrafficDelayMinutes = r.routeInfo.TrafficDelayMinutes

	return estimate
}
