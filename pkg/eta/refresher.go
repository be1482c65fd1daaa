package eta

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jinzhu/copier"
	"github.com/paulmach/orb"
	"github.com/rs/zerolog/log"
	"github.com/travigo/haulwatch/pkg/geo"
	"github.com/travigo/haulwatch/pkg/routing"
	"github.com/travigo/haulwatch/pkg/schedule"
)

const DefaultInterval = 60 * time.Second

var ErrInFlight = errors.New("route refresh already in flight")

type Options struct {
	Service     routing.Service
	Origin      orb.Point
	Destination orb.Point
	Scheduler   schedule.Scheduler
	Interval    time.Duration
}

// Refresher keeps a traffic aware ETA for one tracking session, polling the routing
// service while tracking is active with at most one request in flight
type Refresher struct {
	service     routing.Service
	scheduler   schedule.Scheduler
	origin      orb.Point
	destination orb.Point

	mutex      sync.Mutex
	interval   time.Duration
	progress   float64
	routeInfo  *RouteInfo
	history    []UpdateEvent
	lastUpdate time.Time
	err        error
	inFlight   bool

	tracking        bool
	loopCtx         context.Context
	timer           schedule.Timer
	timerGeneration int
}

func NewRefresher(options Options) *Refresher {
	refresher := &Refresher{
		service:     options.Service,
		scheduler:   options.Scheduler,
		origin:      options.Origin,
		destination: options.Destination,
		interval:    options.Interval,
	}

	if refresher.scheduler == nil {
		refresher.scheduler = schedule.Real{}
	}
	if refresher.interval <= 0 {
		refresher.interval = DefaultInterval
	}

	return refresher
}

func (r *Refresher) SetProgress(progress float64) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.progress = clampProgress(progress)
}

// CurrentPosition is the vehicle position interpolated between origin and destination
func (r *Refresher) CurrentPosition() orb.Point {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	return r.currentPosition()
}

func (r *Refresher) currentPosition() orb.Point {
	if r.progress > 0 {
		return geo.PointAtProgress(geo.Polyline{r.origin, r.destination}, r.progress).Point
	}
	return r.origin
}

// FetchRouteData asks the routing service for a fresh route from the current position.
// No route and fallback answers leave everything as it was. Failures are recorded in Err
// while the last good route stays available.
func (r *Refresher) FetchRouteData(ctx context.Context, isRefresh bool) error {
	r.mutex.Lock()
	if r.inFlight {
		r.mutex.Unlock()
		return ErrInFlight
	}
	r.inFlight = true
	request := routing.Request{
		Origin:        routing.FromPoint(r.currentPosition()),
		Destination:   routing.FromPoint(r.destination),
		DepartureTime: r.scheduler.Now(),
	}
	r.mutex.Unlock()

	response, err := r.service.Route(ctx, request)

	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.inFlight = false

	if err != nil {
		r.err = err
		log.Warn().Err(err).Bool("refresh", isRefresh).Msg("Failed to fetch route data")
		return err
	}

	if response.Fallback || response.NoRoute {
		log.Debug().
			Bool("fallback", response.Fallback).
			Bool("noroute", response.NoRoute).
			Msg("Routing service returned no usable route")
		return nil
	}

	if !response.Usable() {
		r.err = fmt.Errorf("routing service: %s", response.Error)
		log.Warn().Err(r.err).Msg("Unusable route data")
		return r.err
	}

	now := r.scheduler.Now()
	routeInfo := newRouteInfo(response.Route, now)

	event := UpdateEvent{
		Timestamp: now,
		NewETA:    now.Add(routeInfo.Duration()),
		Reason:    ReasonInitial,
	}

	if previous := r.routeInfo; previous != nil {
		event.PreviousETA = previous.FetchedAt.Add(previous.Duration())
		event.DelayChangeMinutes = routeInfo.TrafficDelayMinutes - previous.TrafficDelayMinutes

		if isRefresh {
			switch {
			case event.DelayChangeMinutes < 0:
				event.Reason = ReasonTrafficImproved
			case event.DelayChangeMinutes > 0:
				event.Reason = ReasonTrafficWorsened
			default:
				event.Reason = ReasonRefresh
			}
		}
	}

	r.history = append(r.history, event)
	if len(r.history) > MaxHistory {
		r.history = r.history[len(r.history)-MaxHistory:]
	}

	r.routeInfo = routeInfo
	r.lastUpdate = now
	r.err = nil

	log.Info().
		Str("reason", string(event.Reason)).
		Float64("distance", routeInfo.DistanceMiles).
		Float64("delay", routeInfo.TrafficDelayMinutes).
		Time("eta", event.NewETA).
		Msg("Route data updated")

	return nil
}

func newRouteInfo(route *routing.Route, fetchedAt time.Time) *RouteInfo {
	routeInfo := &RouteInfo{
		DistanceMiles:         route.DistanceMiles,
		DurationSeconds:       route.DurationSeconds,
		StaticDurationSeconds: route.StaticDurationSeconds,
		TrafficDelayMinutes:   route.Traffic.DelayMinutes,
		TrafficLevel:          route.Traffic.Level,
		ETAFormatted:          route.ETAFormatted,
		Tolls:                 route.Tolls,
		EncodedPath:           route.Polyline,
		FetchedAt:             fetchedAt,
	}

	if route.Polyline != "" {
		path, err := geo.Decode(route.Polyline)
		if err != nil {
			log.Debug().Err(err).Msg("Could not decode route path")
		}
		routeInfo.Path = path
	}

	return routeInfo
}

// Refresh is a manual poll outside the timer, sharing the in flight guard
func (r *Refresher) Refresh(ctx context.Context) error {
	return r.FetchRouteData(ctx, true)
}

// SetTracking starts or stops polling. Starting fetches immediately then every interval.
func (r *Refresher) SetTracking(ctx context.Context, active bool) {
	r.mutex.Lock()
	if r.tracking == active && (!active || r.timer != nil) {
		r.mutex.Unlock()
		return
	}
	r.tracking = active
	r.loopCtx = ctx
	r.restartTimer()
	r.mutex.Unlock()

	if active {
		if err := r.FetchRouteData(ctx, r.hasRoute()); err != nil && !errors.Is(err, ErrInFlight) {
			log.Debug().Err(err).Msg("Initial route fetch failed")
		}
	}
}

// SetInterval changes the poll interval, replacing any running timer
func (r *Refresher) SetInterval(interval time.Duration) {
	if interval <= 0 {
		interval = DefaultInterval
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if interval == r.interval {
		return
	}
	r.interval = interval
	r.restartTimer()
}

// Stop tears down the timer
func (r *Refresher) Stop() {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.tracking = false
	r.restartTimer()
}

// restartTimer must be called with the mutex held
func (r *Refresher) restartTimer() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.timerGeneration++

	if !r.tracking {
		return
	}

	r.scheduleTick(r.timerGeneration)
}

func (r *Refresher) scheduleTick(generation int) {
	r.timer = r.scheduler.AfterFunc(r.interval, func() {
		r.mutex.Lock()
		if generation != r.timerGeneration || !r.tracking {
			r.mutex.Unlock()
			return
		}
		ctx := r.loopCtx
		r.mutex.Unlock()

		if ctx.Err() != nil {
			r.mutex.Lock()
			if generation == r.timerGeneration {
				r.tracking = false
				r.timer = nil
			}
			r.mutex.Unlock()

			log.Debug().Err(ctx.Err()).Msg("Tracking context done, polling stopped")
			return
		}

		if err := r.FetchRouteData(ctx, true); err != nil && !errors.Is(err, ErrInFlight) {
			log.Debug().Err(err).Msg("Scheduled route refresh failed")
		}

		r.mutex.Lock()
		defer r.mutex.Unlock()
		if generation == r.timerGeneration && r.tracking {
			r.scheduleTick(generation)
		}
	})
}

func (r *Refresher) hasRoute() bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	return r.routeInfo != nil
}

func (r *Refresher) Tracking() bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	return r.tracking
}

func (r *Refresher) Err() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	return r.err
}

func clampProgress(progress float64) float64 {
	if progress < 0 || progress != progress {
		return 0
	}
	if progress > 100 {
		return 100
	}
	return progress
}

// Snapshot returns a deep copy of the route, history and error state
func (r *Refresher) Snapshot() Snapshot {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	source := Snapshot{
		RouteInfo:  r.routeInfo,
		History:    r.history,
		LastUpdate: r.lastUpdate,
		Tracking:   r.tracking,
		Interval:   r.interval,
	}
	if r.err != nil {
		source.Error = r.err.Error()
	}

	var snapshot Snapshot
	if err := copier.CopyWithOption(&snapshot, &source, copier.Option{DeepCopy: true}); err != nil {
		log.Error().Err(err).Msg("Failed to copy ETA snapshot")
		return source
	}

	return snapshot
}
