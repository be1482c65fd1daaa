package checkpoint

import (
	"encoding/json"
	"errors"

	"github.com/adjust/rmq/v5"
	"github.com/rs/zerolog/log"
)

const NotificationQueueName = "haulwatch-notifications"

// Presenter shows a notification to the user
type Presenter interface {
	Present(notification Notification) error
}

type PresenterFunc func(notification Notification) error

func (f PresenterFunc) Present(notification Notification) error {
	return f(notification)
}

type LogPresenter struct{}

func (LogPresenter) Present(notification Notification) error {
	log.Info().
		Str("kind", string(notification.Kind)).
		Str("title", notification.Title).
		Str("icon", notification.Icon).
		Msg(notification.Message)

	return nil
}

// QueuePresenter publishes notifications onto an rmq queue for other processes to display
type QueuePresenter struct {
	Queue rmq.Queue
}

func NewQueuePresenter(connection rmq.Connection) (*QueuePresenter, error) {
	queue, err := connection.OpenQueue(NotificationQueueName)
	if err != nil {
		return nil, err
	}

	return &QueuePresenter{Queue: queue}, nil
}

func (p *QueuePresenter) Present(notification Notification) error {
	notificationBytes, err := json.Marshal(notification)
	if err != nil {
		return err
	}

	return p.Queue.PublishBytes(notificationBytes)
}

type MultiPresenter []Presenter

func (m MultiPresenter) Present(notification Notification) error {
	var errs []error
	for _, presenter := range m {
		if err := presenter.Present(notification); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
