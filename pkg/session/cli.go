package session

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kr/pretty"
	"github.com/rs/zerolog/log"
	"github.com/travigo/haulwatch/pkg/checkpoint"
	"github.com/travigo/haulwatch/pkg/config"
	"github.com/travigo/haulwatch/pkg/schedule"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "simulate",
		Usage: "Drive a tracking session along the configured route from 0 to 100%",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "path to the haulwatch YAML config",
			},
			&cli.StringFlag{
				Name:  "duration",
				Value: "PT2M",
				Usage: "how long the simulated trip takes, ISO 8601 or Go duration",
			},
			&cli.StringFlag{
				Name:  "step",
				Value: "1s",
				Usage: "time between progress ticks",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return err
			}

			duration, err := config.ParseDuration(c.String("duration"))
			if err != nil {
				return err
			}
			step, err := config.ParseDuration(c.String("step"))
			if err != nil {
				return err
			}

			trackingSession, err := NewFromConfig(cfg, checkpoint.LogPresenter{}, checkpoint.LogPlayer{}, schedule.Real{})
			if err != nil {
				return err
			}
			defer trackingSession.Close()

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			simulator := &Simulator{
				Session:  trackingSession,
				Duration: duration,
				Step:     step,
				OnTick: func(progress float64, result TickResult) {
					for _, alert := range result.Alerts {
						log.Info().
							Str("station", alert.Status.Station.Name).
							Str("alert", string(alert.Type)).
							Msg("Weigh station")
					}
				},
			}

			log.Info().Str("session", trackingSession.ID).Str("duration", duration.String()).Msg("Starting simulation")

			<-simulator.Start(ctx)

			// let the last notifications play out
			drain, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			for len(trackingSession.Notifications().Pending) > 0 && drain.Err() == nil {
				time.Sleep(100 * time.Millisecond)
			}

			pretty.Println(trackingSession.Stations().Summary)
			pretty.Println(trackingSession.ETA())

			return nil
		},
	}
}
