package optimize

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kr/pretty"
	"github.com/rs/zerolog/log"
	"github.com/travigo/haulwatch/pkg/config"
	"github.com/travigo/haulwatch/pkg/redis_client"
	"github.com/urfave/cli/v2"
)

// ParseWaypoint reads "lat,lng" with an optional trailing ",label"
func ParseWaypoint(value string) (Waypoint, error) {
	parts := strings.SplitN(value, ",", 3)
	if len(parts) < 2 {
		return Waypoint{}, fmt.Errorf("waypoint %q must be lat,lng[,label]", value)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Waypoint{}, fmt.Errorf("waypoint %q latitude: %w", value, err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Waypoint{}, fmt.Errorf("waypoint %q longitude: %w", value, err)
	}

	waypoint := Waypoint{Lat: lat, Lng: lng}
	if len(parts) == 3 {
		waypoint.Label = strings.TrimSpace(parts[2])
	}

	return waypoint, nil
}

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "optimize",
		Usage: "Ask the optimizer for the best stop order",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "path to the haulwatch YAML config",
			},
			&cli.StringSliceFlag{
				Name:     "waypoint",
				Usage:    "stop as lat,lng[,label], repeat for every stop in current order",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "profile",
				Usage: "routing profile, driving or driving-hgv",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return err
			}

			var waypoints []Waypoint
			for _, value := range c.StringSlice("waypoint") {
				waypoint, err := ParseWaypoint(value)
				if err != nil {
					return err
				}
				waypoints = append(waypoints, waypoint)
			}

			if cfg.Cache.Backend == "redis" {
				if err := redis_client.Connect(); err != nil {
					return err
				}
			}

			profile := Profile(c.String("profile"))
			if profile == "" {
				profile = Profile(cfg.Optimizer.Profile)
			}

			client := NewClientFromConfig(cfg)
			result, err := client.Optimize(c.Context, waypoints, profile)
			if err != nil {
				return err
			}

			log.Info().Ints("order", result.OptimizedOrder).Msg(Describe(result))
			pretty.Println(result)

			return nil
		},
	}
}
