package ffmpeg

import (
	"context"
	"fmt"

	"video-translator/domain/media"
)

// Player implements media.Player by piping WAV data into ffplay
type Player struct {
	ffplayPath string
	runner     CommandRunner
}

// PlayerOption is a functional option for configuring Player
type PlayerOption func(*Player)

// WithFFplayPath sets a custom ffplay executable path
func WithFFplayPath(path string) PlayerOption {
	return func(p *Player) {
		p.ffplayPath = path
	}
}

// WithPlayerCommandRunner sets a custom command runner (for testing)
func WithPlayerCommandRunner(runner CommandRunner) PlayerOption {
	return func(p *Player) {
		p.runner = runner
	}
}

// NewPlayer creates a new ffplay-based player
func NewPlayer(opts ...PlayerOption) *Player {
	p := &Player{
		ffplayPath: "ffplay",
		runner:     &ExecCommandRunner{},
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Play implements media.Player. The volume is applied to the samples before
// playback and blocks until ffplay exits or ctx is cancelled.
func (p *Player) Play(ctx context.Context, buf *media.AudioBuffer, volume float64) error {
	pcm, err := buf.PCM()
	if err != nil {
		return err
	}

	data, err := media.EncodeWAV(pcm.Scaled(volume))
	if err != nil {
		return err
	}

	args := []string{
		"-nodisp",
		"-autoexit",
		"-loglevel", "error",
		"-i", "pipe:0",
	}

	if err := p.runner.RunWithInput(ctx, data, p.ffplayPath, args...); err != nil {
		return fmt.Errorf("ffplay failed: %w", err)
	}
	return nil
}

var _ media.Player = (*Player)(nil)
