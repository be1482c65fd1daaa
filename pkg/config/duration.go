package config

import (
	"fmt"
	"strings"
	"time"

	iso8601 "github.com/senseyeio/duration"
	"gopkg.in/yaml.v3"
)

var durationReference = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// Duration accepts either an ISO 8601 duration (PT1M) or a Go duration string (500ms)
type Duration struct {
	time.Duration
}

func ParseDuration(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)

	if strings.HasPrefix(value, "P") {
		parsed, err := iso8601.ParseISO8601(value)
		if err != nil {
			return 0, fmt.Errorf("parse duration %q: %w", value, err)
		}
		return parsed.Shift(durationReference).Sub(durationReference), nil
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", value, err)
	}
	return parsed, nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}

	parsed, err := ParseDuration(raw)
	if err != nil {
		return err
	}
	d.Duration = parsed

	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}
