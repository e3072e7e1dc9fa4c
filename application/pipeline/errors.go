package pipeline

import "fmt"

// Stage names one step of a pipeline run
type Stage string

const (
	StageExtraction  Stage = "extraction"
	StageRecognition Stage = "recognition"
	StageTranslation Stage = "translation"
)

// StageError is returned when a stage aborts a run. Err matches the
// stage's error kind (media.ErrExtraction, speech.ErrRecognition,
// speech.ErrTranslation) with errors.Is.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
