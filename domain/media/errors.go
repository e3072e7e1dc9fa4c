package media

import "errors"

var (
	// ErrExtraction is the error kind for every failure of the audio extraction stage
	ErrExtraction = errors.New("audio extraction failed")

	// ErrNotVideo is returned at intake when a file does not have a video media type
	ErrNotVideo = errors.New("not a video file")

	// ErrNoVideoStream is returned when a file with a video media type holds no video stream
	ErrNoVideoStream = errors.New("file has no video stream")

	// ErrNoAudioStream is returned when the container has no audio stream to extract
	ErrNoAudioStream = errors.New("video has no audio stream")

	// ErrEmptyAudio is returned when extraction produced no samples
	ErrEmptyAudio = errors.New("extracted audio is empty")

	// ErrInvalidWAV is returned when a buffer cannot be decoded as WAV
	ErrInvalidWAV = errors.New("invalid WAV data")
)
