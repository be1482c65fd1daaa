package checkpoint

import (
	"encoding/json"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/adjust/rmq/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/haulwatch/pkg/schedule"
)

type recordingPresenter struct {
	mutex         sync.Mutex
	notifications []Notification
}

func (r *recordingPresenter) Present(notification Notification) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.notifications = append(r.notifications, notification)
	return nil
}

func (r *recordingPresenter) thresholds() []float64 {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var thresholds []float64
	for _, notification := range r.notifications {
		thresholds = append(thresholds, notification.Threshold)
	}
	return thresholds
}

type failingPlayer struct {
	calls int
}

func (f *failingPlayer) Play(SoundKind) error {
	f.calls++
	return errors.New("no audio device")
}

func newTestNotifier(presenter Presenter, player Player) (*Notifier, *schedule.Manual) {
	manual := schedule.NewManual(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))

	notifier := NewNotifier(Options{
		Player:     player,
		Presenter:  presenter,
		Scheduler:  manual,
		TotalMiles: 400,
	})

	return notifier, manual
}

func TestTickFiresEachCheckpointOnce(t *testing.T) {
	presenter := &recordingPresenter{}
	notifier, manual := newTestNotifier(presenter, nil)

	notifier.Tick(0, true)
	fired := notifier.Tick(60, true)
	require.Len(t, fired, 2)
	assert.Equal(t, []float64{0, 25, 50}, notifier.Passed())

	fired = notifier.Tick(100, true)
	require.Len(t, fired, 2)
	assert.Equal(t, 75.0, fired[0].Threshold)
	assert.Equal(t, 100.0, fired[1].Threshold)

	for i := 0; i < 5; i++ {
		assert.Empty(t, notifier.Tick(100, true))
	}

	manual.Advance(10 * time.Second)
	assert.Equal(t, []float64{0, 25, 50, 75, 100}, presenter.thresholds())
}

func TestTickJumpPresentsSequentially(t *testing.T) {
	presenter := &recordingPresenter{}
	notifier, manual := newTestNotifier(presenter, nil)

	notifier.Tick(10, true)
	notifier.Tick(100, true)

	assert.Equal(t, []float64{0}, presenter.thresholds())
	assert.Len(t, notifier.Pending(), 4)
	assert.True(t, notifier.Presenting())

	manual.Advance(499 * time.Millisecond)
	assert.Len(t, presenter.thresholds(), 1)

	manual.Advance(time.Millisecond)
	assert.Equal(t, []float64{0, 25}, presenter.thresholds())

	manual.Advance(1500 * time.Millisecond)
	assert.Equal(t, []float64{0, 25, 50, 75, 100}, presenter.thresholds())

	manual.Advance(500 * time.Millisecond)
	assert.False(t, notifier.Presenting())
	assert.Empty(t, notifier.Pending())
	assert.Len(t, notifier.Recent(), 5)
}

func TestInactiveTickDoesNothing(t *testing.T) {
	presenter := &recordingPresenter{}
	notifier, _ := newTestNotifier(presenter, nil)

	assert.Empty(t, notifier.Tick(80, false))
	assert.Empty(t, notifier.Passed())
	assert.Empty(t, presenter.thresholds())
}

func TestFirstTickPastSeveralThresholds(t *testing.T) {
	notifier, _ := newTestNotifier(&recordingPresenter{}, nil)

	fired := notifier.Tick(60, true)
	require.Len(t, fired, 3)
	assert.Equal(t, []float64{0, 25, 50}, notifier.Passed())
}

func TestNaNProgressIgnored(t *testing.T) {
	presenter := &recordingPresenter{}
	notifier, _ := newTestNotifier(presenter, nil)

	assert.Empty(t, notifier.Tick(math.NaN(), true))
	assert.Empty(t, notifier.Passed())
	assert.Empty(t, notifier.Pending())

	fired := notifier.Tick(30, true)
	assert.Len(t, fired, 2)
}

func TestAudioFailureDoesNotBlockQueue(t *testing.T) {
	presenter := &recordingPresenter{}
	player := &failingPlayer{}
	notifier, manual := newTestNotifier(presenter, player)

	notifier.Tick(50, true)
	manual.Advance(2 * time.Second)

	assert.Equal(t, 3, player.calls)
	assert.Equal(t, []float64{0, 25, 50}, presenter.thresholds())
}

func TestReset(t *testing.T) {
	presenter := &recordingPresenter{}
	notifier, manual := newTestNotifier(presenter, nil)

	notifier.Tick(100, true)
	notifier.Reset()

	assert.Empty(t, notifier.Passed())
	assert.Empty(t, notifier.Pending())
	assert.False(t, notifier.Presenting())
	assert.Equal(t, 0, manual.Pending())

	fired := notifier.Tick(30, true)
	assert.Len(t, fired, 2)
	manual.Advance(time.Second)
	assert.Equal(t, []float64{0, 0, 25}, presenter.thresholds())
}

func TestMessages(t *testing.T) {
	presenter := &recordingPresenter{}
	notifier, manual := newTestNotifier(presenter, nil)

	notifier.Tick(100, true)
	manual.Advance(5 * time.Second)

	require.Len(t, presenter.notifications, 5)
	assert.Contains(t, presenter.notifications[1].Message, "100.0 of 400.0 mi")
	assert.Contains(t, presenter.notifications[4].Message, "arrived")
	assert.Equal(t, SoundArrival, presenter.notifications[4].Sound)
	assert.NotEmpty(t, presenter.notifications[0].ID)
}

func TestEnqueueSharesQueue(t *testing.T) {
	presenter := &recordingPresenter{}
	notifier, manual := newTestNotifier(presenter, nil)

	notifier.Tick(0, true)
	notifier.Enqueue(Notification{Kind: NotificationKindStationApproaching, Title: "Weigh station ahead", Sound: SoundAlert})

	assert.Len(t, presenter.notifications, 1)
	manual.Advance(DefaultDelay)
	require.Len(t, presenter.notifications, 2)
	assert.Equal(t, NotificationKindStationApproaching, presenter.notifications[1].Kind)
	assert.False(t, presenter.notifications[1].CreatedAt.IsZero())
}

func TestQueuePresenter(t *testing.T) {
	connection := rmq.NewTestConnection()

	presenter, err := NewQueuePresenter(connection)
	require.NoError(t, err)

	require.NoError(t, presenter.Present(Notification{ID: "abc", Title: "Halfway there"}))

	deliveries := connection.GetDeliveries(NotificationQueueName)
	require.Len(t, deliveries, 1)

	var decoded Notification
	require.NoError(t, json.Unmarshal([]byte(deliveries[0]), &decoded))
	assert.Equal(t, "Halfway there", decoded.Title)
}

func TestTones(t *testing.T) {
	assert.Len(t, Tones(SoundSuccess), 2)
	assert.Len(t, Tones(SoundMilestone), 2)
	assert.Len(t, Tones(SoundArrival), 3)

	arrival := Tones(SoundArrival)
	assert.Less(t, arrival[0].FrequencyHz, arrival[1].FrequencyHz)
	assert.Less(t, arrival[1].FrequencyHz, arrival[2].FrequencyHz)
}
