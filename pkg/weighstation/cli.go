package weighstation

import (
	"errors"
	"os"

	"github.com/kr/pretty"
	"github.com/rs/zerolog/log"
	"github.com/travigo/haulwatch/pkg/geo"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "stations",
		Usage: "Weigh station catalog tools",
		Subcommands: []*cli.Command{
			{
				Name:  "match",
				Usage: "match catalog stations against an encoded route polyline",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "polyline",
						Usage:    "encoded route polyline",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "catalog",
						Usage: "CSV catalog to use instead of the bundled one",
					},
					&cli.StringFlag{
						Name:  "filter",
						Usage: "expression over station fields, eg. Is247 && HasPrePass",
					},
					&cli.Float64Flag{
						Name:  "tolerance",
						Value: DefaultToleranceMiles,
						Usage: "maximum miles between a station and the route",
					},
					&cli.Float64Flag{
						Name:  "progress",
						Usage: "progress percentage to classify stations at",
					},
				},
				Action: func(c *cli.Context) error {
					line, err := geo.Decode(c.String("polyline"))
					if err != nil {
						return err
					}

					catalog := DefaultCatalog()
					if path := c.String("catalog"); path != "" {
						file, err := os.Open(path)
						if err != nil {
							return err
						}
						defer file.Close()

						if catalog, err = LoadCSV(file); err != nil {
							return err
						}
					}

					catalog, err = Filter(catalog, c.String("filter"))
					if err != nil {
						return err
					}
					if len(catalog) == 0 {
						return errors.New("no stations left after filtering")
					}

					matcher := NewMatcher(catalog, Options{ToleranceMiles: c.Float64("tolerance")})
					matches := matcher.Precompute(line)

					log.Info().
						Int("matched", len(matches)).
						Float64("route_miles", geo.Length(line)).
						Msg("Matched weigh stations")

					for _, status := range matcher.Statuses(c.Float64("progress")) {
						pretty.Println(status)
					}
					pretty.Println(matcher.Summary(c.Float64("progress")))

					return nil
				},
			},
		},
	}
}
