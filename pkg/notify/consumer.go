package notify

import (
	"encoding/json"

	"github.com/adjust/rmq/v5"
	"github.com/kr/pretty"
	"github.com/rs/zerolog/log"
	"github.com/travigo/haulwatch/pkg/checkpoint"
)

// NotifyBatchConsumer drains notifications published by tracking sessions and hands them to a presenter
type NotifyBatchConsumer struct {
	Presenter checkpoint.Presenter
	Verbose   bool
}

func NewNotifyBatchConsumer(presenter checkpoint.Presenter) *NotifyBatchConsumer {
	return &NotifyBatchConsumer{
		Presenter: presenter,
	}
}

func (c *NotifyBatchConsumer) Consume(batch rmq.Deliveries) {
	for _, delivery := range batch {
		var notification checkpoint.Notification
		if err := json.Unmarshal([]byte(delivery.Payload()), &notification); err != nil {
			log.Error().Err(err).Msg("Failed to decode notification, rejecting")
			if err := delivery.Reject(); err != nil {
				log.Error().Err(err).Msg("Failed to reject delivery")
			}
			continue
		}

		if c.Verbose {
			pretty.Println(notification)
		}

		if err := c.Presenter.Present(notification); err != nil {
			log.Error().Err(err).Str("id", notification.ID).Msg("Failed to present notification")
			if err := delivery.Push(); err != nil {
				log.Error().Err(err).Msg("Failed to push delivery")
			}
			continue
		}

		if err := delivery.Ack(); err != nil {
			log.Error().Err(err).Str("id", notification.ID).Msg("Failed to ack delivery")
		}
	}
}
