package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/haulwatch/pkg/schedule"
)

// Simulator drives a session from 0 to 100% progress over Duration, one tick every Step
type Simulator struct {
	Session   *Session
	Scheduler schedule.Scheduler
	Duration  time.Duration
	Step      time.Duration
	OnTick    func(progress float64, result TickResult)

	once sync.Once
}

// Start begins the simulation and returns a channel closed once progress reaches 100% or ctx ends
func (s *Simulator) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	finish := func() {
		s.once.Do(func() { close(done) })
	}

	if s.Scheduler == nil {
		s.Scheduler = schedule.Real{}
	}
	if s.Step <= 0 {
		s.Step = time.Second
	}
	if s.Duration < s.Step {
		s.Duration = s.Step
	}

	begin := s.Scheduler.Now()
	s.Session.Start(ctx)

	var tick func()
	tick = func() {
		if ctx.Err() != nil {
			finish()
			return
		}

		elapsed := s.Scheduler.Now().Sub(begin)
		progress := float64(elapsed) / float64(s.Duration) * 100
		if progress > 100 {
			progress = 100
		}

		result := s.Session.Tick(progress)
		if s.OnTick != nil {
			s.OnTick(progress, result)
		}

		log.Debug().
			Float64("progress", progress).
			Float64("lat", result.Position.Point.Lat()).
			Float64("lng", result.Position.Point.Lon()).
			Float64("bearing", result.Position.Bearing).
			Msg("Simulation tick")

		if progress >= 100 {
			finish()
			return
		}

		s.Scheduler.AfterFunc(s.Step, tick)
	}

	tick()

	return done
}
