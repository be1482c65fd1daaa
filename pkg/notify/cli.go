package notify

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/travigo/haulwatch/pkg/checkpoint"
	"github.com/travigo/haulwatch/pkg/consumer"
	"github.com/travigo/haulwatch/pkg/redis_client"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "notify",
		Usage: "Consumes tracking notifications published to the queue",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run notification consumer",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "consumers",
						Value: 2,
						Usage: "number of queue consumers",
					},
					&cli.StringFlag{
						Name:  "stats-listen",
						Usage: "listen target for the queue stats server",
					},
					&cli.BoolFlag{
						Name:  "verbose",
						Usage: "pretty print every notification",
					},
				},
				Action: func(c *cli.Context) error {
					if err := redis_client.Connect(); err != nil {
						return err
					}

					batchConsumer := NewNotifyBatchConsumer(checkpoint.MultiPresenter{
						checkpoint.LogPresenter{},
						checkpoint.PresenterFunc(func(notification checkpoint.Notification) error {
							return checkpoint.LogPlayer{}.Play(notification.Sound)
						}),
					})
					batchConsumer.Verbose = c.Bool("verbose")

					redisConsumer := consumer.RedisConsumer{
						QueueName:       checkpoint.NotificationQueueName,
						Connection:      redis_client.QueueConnection,
						NumberConsumers: c.Int("consumers"),
						BatchSize:       20,
						Timeout:         2 * time.Second,
						Consumer:        batchConsumer,
						StatsListen:     c.String("stats-listen"),
					}
					if err := redisConsumer.Setup(); err != nil {
						return err
					}

					signals := make(chan os.Signal, 1)
					signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
					defer signal.Stop(signals)

					<-signals // wait for signal
					go func() {
						<-signals // hard exit on second signal (in case shutdown gets stuck)
						os.Exit(1)
					}()

					<-redis_client.QueueConnection.StopAllConsuming() // wait for all Consume() calls to finish

					return nil
				},
			},
		},
	}
}
