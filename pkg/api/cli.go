package api

import (
	"github.com/rs/zerolog/log"
	"github.com/travigo/haulwatch/pkg/checkpoint"
	"github.com/travigo/haulwatch/pkg/config"
	"github.com/travigo/haulwatch/pkg/optimize"
	"github.com/travigo/haulwatch/pkg/redis_client"
	"github.com/travigo/haulwatch/pkg/schedule"
	"github.com/travigo/haulwatch/pkg/session"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Provides the tracking session web API",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run web api server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "config",
						Usage: "path to the haulwatch YAML config",
					},
					&cli.StringFlag{
						Name:  "listen",
						Usage: "listen target for the web server, overrides the config",
					},
				},
				Action: func(c *cli.Context) error {
					cfg, err := config.Load(c.String("config"))
					if err != nil {
						return err
					}

					var presenter checkpoint.Presenter = checkpoint.LogPresenter{}

					if cfg.Cache.Backend == "redis" || cfg.Notifications.Queue {
						if err := redis_client.Connect(); err != nil {
							return err
						}
					}

					if cfg.Notifications.Queue {
						queuePresenter, err := checkpoint.NewQueuePresenter(redis_client.QueueConnection)
						if err != nil {
							return err
						}
						presenter = checkpoint.MultiPresenter{presenter, queuePresenter}
					}

					trackingSession, err := session.NewFromConfig(cfg, presenter, checkpoint.LogPlayer{}, schedule.Real{})
					if err != nil {
						return err
					}
					defer trackingSession.Close()

					trackingSession.Start(c.Context)

					listen := cfg.API.Listen
					if c.String("listen") != "" {
						listen = c.String("listen")
					}

					log.Info().Str("listen", listen).Str("session", trackingSession.ID).Msg("Starting web API")

					return SetupServer(listen, trackingSession, optimize.NewClientFromConfig(cfg))
				},
			},
		},
	}
}
