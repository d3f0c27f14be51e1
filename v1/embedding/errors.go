package embedding

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownModel is returned for identifiers without a loaded profile.
	ErrUnknownModel = errors.New("unknown model")

	// ErrNormalizeUnsupported is returned when normalization is requested
	// for a non-numeric model output.
	ErrNormalizeUnsupported = errors.New("normalization requires a numeric output")

	// ErrBatchMismatch is returned when the output row count differs from
	// the number of input images.
	ErrBatchMismatch = errors.New("output batch size does not match input")
)

// Stage is a step of a single EmbedImage call.
type Stage int

const (
	StageIdle Stage = iota
	StagePreprocessing
	StageRequestBuilt
	StageAwaitingBackend
	StageDecoded
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StagePreprocessing:
		return "preprocessing"
	case StageRequestBuilt:
		return "request_built"
	case StageAwaitingBackend:
		return "awaiting_backend"
	case StageDecoded:
		return "decoded"
	case StageDone:
		return "done"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// StageError reports the stage an EmbedImage call was working towards when
// it failed. Err is the originating error and is reachable via errors.Is
// and errors.As.
type StageError struct {
	Stage Stage
	Model ModelIdentifier
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("embedding: %s: %s: %v", e.Model, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageError(stage Stage, model ModelIdentifier, err error) error {
	return &StageError{Stage: stage, Model: model, Err: err}
}
