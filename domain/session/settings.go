package session

import (
	"fmt"
	"math"
)

const (
	// DefaultTranslatedVolume is the initial synthesis volume
	DefaultTranslatedVolume = 0.8

	// DefaultOriginalVolume is the initial volume of the source audio
	DefaultOriginalVolume = 0.3
)

// PlaybackSettings holds the user-controlled audio settings
type PlaybackSettings struct {
	TranslatedVolume float64
	OriginalVolume   float64
	AudioEnabled     bool
}

// DefaultPlaybackSettings returns the settings a fresh session starts with
func DefaultPlaybackSettings() PlaybackSettings {
	return PlaybackSettings{
		TranslatedVolume: DefaultTranslatedVolume,
		OriginalVolume:   DefaultOriginalVolume,
		AudioEnabled:     true,
	}
}

// Validate checks both volumes are within [0,1]
func (s PlaybackSettings) Validate() error {
	if err := ValidateVolume(s.TranslatedVolume); err != nil {
		return fmt.Errorf("translated volume: %w", err)
	}
	if err := ValidateVolume(s.OriginalVolume); err != nil {
		return fmt.Errorf("original volume: %w", err)
	}
	return nil
}

// ValidateVolume checks v is within [0,1]
func ValidateVolume(v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return fmt.Errorf("%w: got %v", ErrInvalidVolume, v)
	}
	return nil
}

// StepVolume adds delta to v and clamps the result to [0,1]
func StepVolume(v, delta float64) float64 {
	v += delta
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	// keep keyboard steps on clean tenths
	return math.Round(v*100) / 100
}
