package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/travigo/haulwatch/pkg/util"
	"gopkg.in/yaml.v3"
)

type Coordinate struct {
	Lat float64 `yaml:"lat" validate:"latitude"`
	Lng float64 `yaml:"lng" validate:"longitude"`
}

type RoutingConfig struct {
	BaseURL string   `yaml:"base_url" validate:"omitempty,url"`
	Timeout Duration `yaml:"timeout"`
}

type OptimizerConfig struct {
	BaseURL string   `yaml:"base_url" validate:"omitempty,url"`
	Timeout Duration `yaml:"timeout"`
	Profile string   `yaml:"profile" validate:"omitempty,oneof=driving driving-hgv"`
}

type TrackingConfig struct {
	Origin            Coordinate `yaml:"origin"`
	Destination       Coordinate `yaml:"destination"`
	Polyline          string     `yaml:"polyline"`
	RefreshInterval   Duration   `yaml:"refresh_interval"`
	NotificationDelay Duration   `yaml:"notification_delay"`
}

type StationsConfig struct {
	Catalog        string  `yaml:"catalog"`
	Filter         string  `yaml:"filter"`
	ToleranceMiles float64 `yaml:"tolerance_miles" validate:"gt=0"`
	LookAheadIndex int     `yaml:"look_ahead_index" validate:"gte=0"`
	LookAheadMiles float64 `yaml:"look_ahead_miles" validate:"gte=0"`
}

type CacheConfig struct {
	Backend string   `yaml:"backend" validate:"oneof=memory redis"`
	Size    int      `yaml:"size" validate:"gt=0"`
	TTL     Duration `yaml:"ttl"`
}

type NotificationsConfig struct {
	Queue bool `yaml:"queue"`
}

type APIConfig struct {
	Listen string `yaml:"listen" validate:"required"`
}

type Config struct {
	Routing       RoutingConfig       `yaml:"routing"`
	Optimizer     OptimizerConfig     `yaml:"optimizer"`
	Tracking      TrackingConfig      `yaml:"tracking"`
	Stations      StationsConfig      `yaml:"stations"`
	Cache         CacheConfig         `yaml:"cache"`
	Notifications NotificationsConfig `yaml:"notifications"`
	API           APIConfig           `yaml:"api"`
}

func Default() Config {
	return Config{
		Routing: RoutingConfig{
			Timeout: Duration{10 * time.Second},
		},
		Optimizer: OptimizerConfig{
			Timeout: Duration{30 * time.Second},
			Profile: "driving",
		},
		Tracking: TrackingConfig{
			RefreshInterval:   Duration{60 * time.Second},
			NotificationDelay: Duration{500 * time.Millisecond},
		},
		Stations: StationsConfig{
			ToleranceMiles: 3,
			LookAheadMiles: 10,
		},
		Cache: CacheConfig{
			Backend: "memory",
			Size:    256,
		},
		API: APIConfig{
			Listen: ":8080",
		},
	}
}

// Load reads the YAML file at path over the defaults, applies HAULWATCH_* overrides and validates.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	config := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}

		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := config.applyEnvironment(util.GetEnvironmentVariables()); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	log.Debug().Str("path", path).Str("cache", config.Cache.Backend).Msg("Loaded config")

	return &config, nil
}

func (c *Config) Validate() error {
	validate := validator.New()

	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	return nil
}

func (c *Config) applyEnvironment(env map[string]string) error {
	if env["HAULWATCH_ROUTING_URL"] != "" {
		c.Routing.BaseURL = env["HAULWATCH_ROUTING_URL"]
	}

	if env["HAULWATCH_OPTIMIZER_URL"] != "" {
		c.Optimizer.BaseURL = env["HAULWATCH_OPTIMIZER_URL"]
	}

	if env["HAULWATCH_CACHE_BACKEND"] != "" {
		c.Cache.Backend = env["HAULWATCH_CACHE_BACKEND"]
	}

	if env["HAULWATCH_API_LISTEN"] != "" {
		c.API.Listen = env["HAULWATCH_API_LISTEN"]
	}

	if env["HAULWATCH_REFRESH_INTERVAL"] != "" {
		interval, err := ParseDuration(env["HAULWATCH_REFRESH_INTERVAL"])
		if err != nil {
			return err
		}
		c.Tracking.RefreshInterval = Duration{interval}
	}

	if env["HAULWATCH_STATION_TOLERANCE"] != "" {
		tolerance, err := strconv.ParseFloat(env["HAULWATCH_STATION_TOLERANCE"], 64)
		if err != nil {
			return fmt.Errorf("HAULWATCH_STATION_TOLERANCE: %w", err)
		}
		c.Stations.ToleranceMiles = tolerance
	}

	return nil
}
