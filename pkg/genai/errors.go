package genai

import (
	"fmt"
	"strings"
)

// RatioError reports a cognitive-ratio split that does not sum to 100.
// It is raised before any model call is made.
type RatioError struct {
	Sum int
}

func (e *RatioError) Error() string {
	return fmt.Sprintf("cognitive ratios must sum to 100, got %d", e.Sum)
}

// StageError wraps whatever went wrong during one generation stage.
// The message is the capability's own wording when it has one, otherwise
// a stage-specific fallback.
type StageError struct {
	Stage   string
	Message string
}

func (e *StageError) Error() string {
	return e.Message
}

// NewStageError builds a StageError from a raw capability error.
func NewStageError(stage string, err error) *StageError {
	msg := ""
	if err != nil {
		msg = strings.TrimSpace(err.Error())
	}
	if msg == "" {
		msg = fmt.Sprintf("unknown error generating %s", stage)
	}
	return &StageError{Stage: stage, Message: msg}
}
