package checkpoint

import (
	"time"

	"github.com/rs/zerolog/log"
)

// Player renders the audible cue for a notification. Implementations are best effort.
type Player interface {
	Play(kind SoundKind) error
}

type Tone struct {
	FrequencyHz float64
	Duration    time.Duration
}

// Tones is the note pattern for each sound kind
func Tones(kind SoundKind) []Tone {
	switch kind {
	case SoundSuccess:
		// two note rise
		return []Tone{
			{FrequencyHz: 523.25, Duration: 150 * time.Millisecond},
			{FrequencyHz: 659.25, Duration: 200 * time.Millisecond},
		}
	case SoundMilestone:
		return []Tone{
			{FrequencyHz: 392.00, Duration: 100 * time.Millisecond},
			{FrequencyHz: 523.25, Duration: 250 * time.Millisecond},
		}
	case SoundArrival:
		return []Tone{
			{FrequencyHz: 523.25, Duration: 150 * time.Millisecond},
			{FrequencyHz: 659.25, Duration: 150 * time.Millisecond},
			{FrequencyHz: 783.99, Duration: 300 * time.Millisecond},
		}
	case SoundAlert:
		return []Tone{
			{FrequencyHz: 880.00, Duration: 120 * time.Millisecond},
			{FrequencyHz: 880.00, Duration: 120 * time.Millisecond},
		}
	default:
		return nil
	}
}

type NoopPlayer struct{}

func (NoopPlayer) Play(SoundKind) error {
	return nil
}

// LogPlayer writes the tone pattern to the debug log in place of a sound device
type LogPlayer struct{}

func (LogPlayer) Play(kind SoundKind) error {
	for i, tone := range Tones(kind) {
		log.Debug().
			Str("sound", string(kind)).
			Int("note", i).
			Float64("frequency", tone.FrequencyHz).
			Dur("duration", tone.Duration).
			Msg("Playing tone")
	}

	return nil
}
