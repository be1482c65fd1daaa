package weighstation

import (
	"cmp"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
	"github.com/travigo/haulwatch/pkg/geo"
	"golang.org/x/exp/slices"
)

const (
	DefaultToleranceMiles = 3.0
	DefaultLookAheadMiles = 10.0
)

type Status string

const (
	StatusPassed      Status = "passed"
	StatusApproaching Status = "approaching"
	StatusUpcoming    Status = "upcoming"
)

type Match struct {
	Station       Station `json:"station" groups:"basic"`
	RouteIndex    int     `json:"route_index" groups:"detailed"`
	DistanceMiles float64 `json:"distance_from_route_miles" groups:"basic"`

	catalogIndex int
}

type StationStatus struct {
	Match
	Status           Status  `json:"status" groups:"basic"`
	MilesAhead       float64 `json:"miles_ahead" groups:"basic"`
	IndexesRemaining float64 `json:"indexes_remaining" groups:"detailed"`
}

type Summary struct {
	Passed      int `json:"passed" groups:"basic"`
	Approaching int `json:"approaching" groups:"basic"`
	Total       int `json:"total" groups:"basic"`
}

type Options struct {
	ToleranceMiles float64
	// LookAheadIndex is how many polyline indexes ahead of the vehicle count as approaching.
	// When zero it is derived from LookAheadMiles and the route's average spacing.
	LookAheadIndex float64
	LookAheadMiles float64
}

// Matcher works out which catalog stations sit on a route and where the vehicle is relative to them
type Matcher struct {
	catalog []Station
	options Options

	mutex          sync.RWMutex
	line           geo.Polyline
	matches        []Match
	lookAheadIndex float64
	milesPerIndex  float64
}

func NewMatcher(catalog []Station, options Options) *Matcher {
	if options.ToleranceMiles <= 0 {
		options.ToleranceMiles = DefaultToleranceMiles
	}
	if options.LookAheadMiles <= 0 {
		options.LookAheadMiles = DefaultLookAheadMiles
	}

	return &Matcher{
		catalog: slices.Clone(catalog),
		options: options,
	}
}

// Precompute matches the catalog against the line. The result is cached until a different line is given.
func (m *Matcher) Precompute(line geo.Polyline) []Match {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.line != nil && slices.Equal(m.line, line) {
		return slices.Clone(m.matches)
	}

	m.line = slices.Clone(line)
	m.matches = nil
	m.lookAheadIndex = 0
	m.milesPerIndex = 0

	if len(line) == 0 {
		return nil
	}

	p := pool.NewWithResults[*Match]()

	for i, station := range m.catalog {
		p.Go(func() *Match {
			routeIndex, distance := geo.ClosestPoint(line, station.Point())
			if routeIndex < 0 || distance > m.options.ToleranceMiles {
				return nil
			}

			return &Match{
				Station:       station,
				RouteIndex:    routeIndex,
				DistanceMiles: distance,
				catalogIndex:  i,
			}
		})
	}

	for _, match := range p.Wait() {
		if match != nil {
			m.matches = append(m.matches, *match)
		}
	}

	slices.SortStableFunc(m.matches, func(a, b Match) int {
		return cmp.Or(
			cmp.Compare(a.RouteIndex, b.RouteIndex),
			cmp.Compare(a.catalogIndex, b.catalogIndex),
		)
	})

	if len(line) > 1 {
		m.milesPerIndex = geo.Length(line) / float64(len(line)-1)
	}

	m.lookAheadIndex = m.options.LookAheadIndex
	if m.lookAheadIndex <= 0 && m.milesPerIndex > 0 {
		m.lookAheadIndex = m.options.LookAheadMiles / m.milesPerIndex
	}

	log.Debug().
		Int("catalog", len(m.catalog)).
		Int("matched", len(m.matches)).
		Int("points", len(line)).
		Float64("lookahead", m.lookAheadIndex).
		Msg("Matched weigh stations to route")

	return slices.Clone(m.matches)
}

func (m *Matcher) Matches() []Match {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return slices.Clone(m.matches)
}

// Statuses classifies every matched station against the current progress percentage
func (m *Matcher) Statuses(progress float64) []StationStatus {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if len(m.line) == 0 {
		return nil
	}

	currentIndex := (progress / 100) * float64(len(m.line)-1)

	statuses := make([]StationStatus, 0, len(m.matches))
	for _, match := range m.matches {
		remaining := float64(match.RouteIndex) - currentIndex

		status := StatusUpcoming
		if remaining <= 0 {
			status = StatusPassed
		} else if remaining <= m.lookAheadIndex {
			status = StatusApproaching
		}

		milesAhead := 0.0
		if remaining > 0 {
			milesAhead = remaining * m.milesPerIndex
		}

		statuses = append(statuses, StationStatus{
			Match:            match,
			Status:           status,
			MilesAhead:       milesAhead,
			IndexesRemaining: remaining,
		})
	}

	return statuses
}

func (m *Matcher) Summary(progress float64) Summary {
	return Summarise(m.Statuses(progress))
}

// Summarise counts passed and approaching stations
func Summarise(statuses []StationStatus) Summary {
	summary := Summary{Total: len(statuses)}
	for _, status := range statuses {
		switch status.Status {
		case StatusPassed:
			summary.Passed++
		case StatusApproaching:
			summary.Approaching++
		}
	}

	return summary
}
