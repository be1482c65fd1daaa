package checkpoint

import (
	"cmp"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/travigo/haulwatch/pkg/schedule"
	"golang.org/x/exp/slices"
)

const DefaultDelay = 500 * time.Millisecond

const maxRecentNotifications = 20

type Options struct {
	Catalog    []Checkpoint
	Player     Player
	Presenter  Presenter
	Scheduler  schedule.Scheduler
	Delay      time.Duration
	TotalMiles float64
}

// Notifier fires each checkpoint at most once per session and presents the resulting
// notifications one at a time with a fixed gap between them
type Notifier struct {
	catalog    []Checkpoint
	player     Player
	presenter  Presenter
	scheduler  schedule.Scheduler
	delay      time.Duration
	totalMiles float64

	mutex      sync.Mutex
	passed     map[float64]bool
	queue      []Notification
	recent     []Notification
	presenting bool
	timer      schedule.Timer
	generation int
}

func NewNotifier(options Options) *Notifier {
	catalog := options.Catalog
	if catalog == nil {
		catalog = DefaultCatalog
	}
	catalog = slices.Clone(catalog)
	slices.SortStableFunc(catalog, func(a, b Checkpoint) int {
		return cmp.Compare(a.Threshold, b.Threshold)
	})

	notifier := &Notifier{
		catalog:    catalog,
		player:     options.Player,
		presenter:  options.Presenter,
		scheduler:  options.Scheduler,
		delay:      options.Delay,
		totalMiles: options.TotalMiles,
		passed:     map[float64]bool{},
	}

	if notifier.player == nil {
		notifier.player = NoopPlayer{}
	}
	if notifier.presenter == nil {
		notifier.presenter = LogPresenter{}
	}
	if notifier.scheduler == nil {
		notifier.scheduler = schedule.Real{}
	}
	if notifier.delay <= 0 {
		notifier.delay = DefaultDelay
	}

	return notifier
}

// SetTotalMiles updates the route length used for delivered distance messages
func (n *Notifier) SetTotalMiles(miles float64) {
	n.mutex.Lock()
	defer n.mutex.Unlock()

	n.totalMiles = miles
}

// Tick checks progress against the catalog, queueing a notification for every
// checkpoint newly reached. Returns the checkpoints that fired in threshold order.
func (n *Notifier) Tick(progress float64, active bool) []Checkpoint {
	if !active || math.IsNaN(progress) {
		return nil
	}

	n.mutex.Lock()
	var fired []Checkpoint
	for _, checkpoint := range n.catalog {
		if checkpoint.Threshold > progress {
			break
		}
		if n.passed[checkpoint.Threshold] {
			continue
		}

		n.passed[checkpoint.Threshold] = true
		fired = append(fired, checkpoint)

		n.queue = append(n.queue, Notification{
			ID:        uuid.NewString(),
			Kind:      NotificationKindCheckpoint,
			Title:     checkpoint.Label,
			Message:   checkpointMessage(checkpoint, n.totalMiles),
			Icon:      checkpoint.Icon,
			Sound:     checkpoint.Sound,
			Threshold: checkpoint.Threshold,
			CreatedAt: n.scheduler.Now(),
		})
	}
	n.mutex.Unlock()

	if len(fired) > 0 {
		log.Debug().Int("count", len(fired)).Float64("progress", progress).Msg("Checkpoints reached")
	}

	n.presentNext()

	return fired
}

// Enqueue adds an externally produced notification to the presentation queue
func (n *Notifier) Enqueue(notification Notification) {
	n.mutex.Lock()
	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = n.scheduler.Now()
	}
	n.queue = append(n.queue, notification)
	n.mutex.Unlock()

	n.presentNext()
}

func (n *Notifier) presentNext() {
	n.mutex.Lock()
	if n.presenting || len(n.queue) == 0 {
		n.mutex.Unlock()
		return
	}

	next := n.queue[0]
	n.queue = n.queue[1:]
	n.presenting = true
	generation := n.generation
	n.mutex.Unlock()

	if err := n.player.Play(next.Sound); err != nil {
		log.Debug().Err(err).Str("sound", string(next.Sound)).Msg("Audio cue unavailable")
	}

	if err := n.presenter.Present(next); err != nil {
		log.Error().Err(err).Str("id", next.ID).Msg("Failed to present notification")
	}

	n.mutex.Lock()
	defer n.mutex.Unlock()

	if generation != n.generation {
		return
	}

	n.recent = append(n.recent, next)
	if len(n.recent) > maxRecentNotifications {
		n.recent = n.recent[len(n.recent)-maxRecentNotifications:]
	}

	n.timer = n.scheduler.AfterFunc(n.delay, func() {
		n.mutex.Lock()
		if generation != n.generation {
			n.mutex.Unlock()
			return
		}
		n.presenting = false
		n.timer = nil
		n.mutex.Unlock()

		n.presentNext()
	})
}

// Reset forgets every passed checkpoint and drops anything still queued
func (n *Notifier) Reset() {
	n.mutex.Lock()
	defer n.mutex.Unlock()

	n.generation++
	n.passed = map[float64]bool{}
	n.queue = nil
	n.recent = nil
	n.presenting = false

	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
}

func (n *Notifier) Passed() []float64 {
	n.mutex.Lock()
	defer n.mutex.Unlock()

	var thresholds []float64
	for _, checkpoint := range n.catalog {
		if n.passed[checkpoint.Threshold] {
			thresholds = append(thresholds, checkpoint.Threshold)
		}
	}

	return thresholds
}

func (n *Notifier) Pending() []Notification {
	n.mutex.Lock()
	defer n.mutex.Unlock()

	return slices.Clone(n.queue)
}

// Recent returns the most recently presented notifications, oldest first
func (n *Notifier) Recent() []Notification {
	n.mutex.Lock()
	defer n.mutex.Unlock()

	return slices.Clone(n.recent)
}

func (n *Notifier) Presenting() bool {
	n.mutex.Lock()
	defer n.mutex.Unlock()

	return n.presenting
}
