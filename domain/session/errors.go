package session

import "errors"

var (
	// ErrBusy is returned when a run is requested while another is in progress
	ErrBusy = errors.New("a translation run is already in progress")

	// ErrInvalidTransition is returned for a state change the state machine does not allow
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrInvalidVolume is returned for volumes outside [0,1]
	ErrInvalidVolume = errors.New("volume must be between 0 and 1")
)
