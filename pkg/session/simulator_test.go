package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSimulatorRunsToCompletion(t *testing.T) {
	trackingSession, scheduler, presenter, _ := newTestSession(t)

	var progress []float64
	simulator := &Simulator{
		Session:   trackingSession,
		Scheduler: scheduler,
		Duration:  10 * time.Second,
		Step:      time.Second,
		OnTick: func(value float64, result TickResult) {
			progress = append(progress, value)
		},
	}

	done := simulator.Start(context.Background())
	scheduler.Advance(20 * time.Second)

	select {
	case <-done:
	default:
		t.Fatal("simulation did not finish")
	}

	assert.Len(t, progress, 11)
	assert.Equal(t, 0.0, progress[0])
	assert.Equal(t, 100.0, progress[10])
	assert.Equal(t, 100.0, trackingSession.Progress())
	assert.Len(t, presenter.kinds(), 7)
}

func TestSimulatorStopsWithContext(t *testing.T) {
	trackingSession, scheduler, _, _ := newTestSession(t)
	ctx, cancel := context.WithCancel(context.Background())

	simulator := &Simulator{Session: trackingSession, Scheduler: scheduler, Duration: time.Minute}
	done := simulator.Start(ctx)

	scheduler.Advance(3 * time.Second)
	cancel()
	scheduler.Advance(time.Second)

	select {
	case <-done:
	default:
		t.Fatal("simulation ignored cancellation")
	}
	assert.Less(t, trackingSession.Progress(), 10.0)
}
