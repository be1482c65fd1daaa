package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/travigo/haulwatch/pkg/api"
	"github.com/travigo/haulwatch/pkg/notify"
	"github.com/travigo/haulwatch/pkg/optimize"
	"github.com/travigo/haulwatch/pkg/session"
	"github.com/travigo/haulwatch/pkg/util"
	"github.com/travigo/haulwatch/pkg/weighstation"
	"github.com/urfave/cli/v2"

	_ "time/tzdata"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	if os.Getenv("HAULWATCH_LOG_FORMAT") != "JSON" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	if util.EnvironmentFlag("HAULWATCH_DEBUG") {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	app := &cli.App{
		Name:        "haulwatch",
		Description: "Live shipment tracking and ETA engine",

		Commands: []*cli.Command{
			session.RegisterCLI(),
			optimize.RegisterCLI(),
			weighstation.RegisterCLI(),
			api.RegisterCLI(),
			notify.RegisterCLI(),
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}
