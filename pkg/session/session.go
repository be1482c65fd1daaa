package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/rs/zerolog/log"
	"github.com/travigo/haulwatch/pkg/checkpoint"
	"github.com/travigo/haulwatch/pkg/eta"
	"github.com/travigo/haulwatch/pkg/geo"
	"github.com/travigo/haulwatch/pkg/routing"
	"github.com/travigo/haulwatch/pkg/schedule"
	"github.com/travigo/haulwatch/pkg/weighstation"
)

type Options struct {
	ID string

	// Route is the full multi stop route. When empty the straight origin to destination line is used.
	Route       geo.Polyline
	Origin      orb.Point
	Destination orb.Point

	Stations       []weighstation.Station
	StationOptions weighstation.Options

	Checkpoints       []checkpoint.Checkpoint
	Player            checkpoint.Player
	Presenter         checkpoint.Presenter
	NotificationDelay time.Duration

	Routing         routing.Service
	RefreshInterval time.Duration

	Scheduler schedule.Scheduler
}

// Session wires progress updates for one tracking session into every component
type Session struct {
	ID string

	route     geo.Polyline
	notifier  *checkpoint.Notifier
	matcher   *weighstation.Matcher
	alerts    *weighstation.AlertTracker
	refresher *eta.Refresher

	mutex    sync.Mutex
	progress float64
	active   bool
}

type TickResult struct {
	Position    geo.Position            `json:"position" groups:"basic"`
	Checkpoints []checkpoint.Checkpoint `json:"checkpoints" groups:"basic"`
	Alerts      []weighstation.Alert    `json:"-"`
	Stations    weighstation.Summary    `json:"stations" groups:"basic"`
}

type StationsView struct {
	Summary  weighstation.Summary         `json:"summary" groups:"basic"`
	Statuses []weighstation.StationStatus `json:"stations" groups:"basic"`
}

type NotificationsView struct {
	Presenting bool                      `json:"presenting" groups:"basic"`
	Passed     []float64                 `json:"passed" groups:"basic"`
	Pending    []checkpoint.Notification `json:"pending" groups:"basic"`
	Recent     []checkpoint.Notification `json:"recent" groups:"basic"`
}

func New(options Options) (*Session, error) {
	route := options.Route
	if len(route) == 0 {
		route = geo.Polyline{options.Origin, options.Destination}
	}
	if len(route) < 2 {
		return nil, fmt.Errorf("session route needs at least 2 points, got %d", len(route))
	}
	if options.Routing == nil {
		return nil, fmt.Errorf("session needs a routing service")
	}

	id := options.ID
	if id == "" {
		id = uuid.NewString()
	}

	scheduler := options.Scheduler
	if scheduler == nil {
		scheduler = schedule.Real{}
	}

	session := &Session{
		ID:    id,
		route: route,
		notifier: checkpoint.NewNotifier(checkpoint.Options{
			Catalog:    options.Checkpoints,
			Player:     options.Player,
			Presenter:  options.Presenter,
			Scheduler:  scheduler,
			Delay:      options.NotificationDelay,
			TotalMiles: geo.Length(route),
		}),
		matcher: weighstation.NewMatcher(options.Stations, options.StationOptions),
		alerts:  weighstation.NewAlertTracker(),
		refresher: eta.NewRefresher(eta.Options{
			Service:     options.Routing,
			Origin:      options.Origin,
			Destination: options.Destination,
			Scheduler:   scheduler,
			Interval:    options.RefreshInterval,
		}),
	}

	session.matcher.Precompute(route)

	log.Info().
		Str("id", id).
		Int("points", len(route)).
		Int("stations", len(session.matcher.Matches())).
		Msg("Created tracking session")

	return session, nil
}

// Start makes the session active and starts ETA polling bound to ctx
func (s *Session) Start(ctx context.Context) {
	s.mutex.Lock()
	s.active = true
	s.mutex.Unlock()

	s.refresher.SetTracking(ctx, true)
}

func (s *Session) Stop(ctx context.Context) {
	s.mutex.Lock()
	s.active = false
	s.mutex.Unlock()

	s.refresher.SetTracking(ctx, false)
}

func (s *Session) Active() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.active
}

// Tick feeds a new progress percentage to every component
func (s *Session) Tick(progress float64) TickResult {
	progress = clampProgress(progress)

	s.mutex.Lock()
	s.progress = progress
	active := s.active
	s.mutex.Unlock()

	result := TickResult{
		Position:    geo.PointAtProgress(s.route, progress),
		Checkpoints: s.notifier.Tick(progress, active),
	}

	statuses := s.matcher.Statuses(progress)
	result.Stations = weighstation.Summarise(statuses)

	if active {
		result.Alerts = s.alerts.Observe(statuses)
		for _, alert := range result.Alerts {
			s.notifier.Enqueue(stationNotification(alert))
		}
	}

	s.refresher.SetProgress(progress)

	return result
}

func (s *Session) Progress() float64 {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.progress
}

func (s *Session) Position() geo.Position {
	return geo.PointAtProgress(s.route, s.Progress())
}

func (s *Session) Route() geo.Polyline {
	return s.route.Clone()
}

func (s *Session) Stations() StationsView {
	statuses := s.matcher.Statuses(s.Progress())

	return StationsView{
		Summary:  weighstation.Summarise(statuses),
		Statuses: statuses,
	}
}

func (s *Session) Notifications() NotificationsView {
	return NotificationsView{
		Presenting: s.notifier.Presenting(),
		Passed:     s.notifier.Passed(),
		Pending:    s.notifier.Pending(),
		Recent:     s.notifier.Recent(),
	}
}

func (s *Session) ETA() eta.Estimate {
	return s.refresher.Estimate()
}

func (s *Session) ETASnapshot() eta.Snapshot {
	return s.refresher.Snapshot()
}

func (s *Session) Refresh(ctx context.Context) error {
	return s.refresher.Refresh(ctx)
}

func (s *Session) SetRefreshInterval(interval time.Duration) {
	s.refresher.SetInterval(interval)
}

// Reset starts the session over on the same components
func (s *Session) Reset() {
	s.mutex.Lock()
	s.progress = 0
	s.mutex.Unlock()

	s.notifier.Reset()
	s.alerts.Reset()
	s.refresher.SetProgress(0)

	log.Info().Str("id", s.ID).Msg("Reset tracking session")
}

// Close stops polling and drops any queued notifications
func (s *Session) Close() {
	s.mutex.Lock()
	s.active = false
	s.mutex.Unlock()

	s.refresher.Stop()
	s.notifier.Reset()
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

func stationNotification(alert weighstation.Alert) checkpoint.Notification {
	station := alert.Status.Station

	if alert.Type == weighstation.AlertApproaching {
		return checkpoint.Notification{
			Kind:    checkpoint.NotificationKindStationApproaching,
			Title:   "Weigh station ahead",
			Message: fmt.Sprintf("%s on %s in %.1f mi", station.Name, station.RoadLabel, alert.Status.MilesAhead),
			Icon:    "scale",
			Sound:   checkpoint.SoundAlert,
		}
	}

	return checkpoint.Notification{
		Kind:    checkpoint.NotificationKindStationCleared,
		Title:   "Weigh station cleared",
		Message: fmt.Sprintf("Passed %s on %s", station.Name, station.RoadLabel),
		Icon:    "scale",
		Sound:   checkpoint.SoundSuccess,
	}
}
