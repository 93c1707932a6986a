package dto

import (
	"errors"

	"ai-examgen-be/pkg/genai"
)

// Precondition errors for the generation state machine. The error handler
// maps them to stable HTTP statuses.
var (
	ErrNoSession         = errors.New("no active generation session")
	ErrNoDocument        = errors.New("upload a document before generating")
	ErrBlueprintNotReady = errors.New("generate a blueprint before the test")
	ErrTestNotReady      = errors.New("generate a test before the answer key")
	ErrUnsavedWork       = errors.New("the generated test has not been saved yet")
)

type StartBlueprintRequest struct {
	Subject             string `json:"subject" validate:"required"`
	ClassLevel          string `json:"class_level" validate:"required"`
	MultipleChoiceCount int    `json:"multiple_choice_count" validate:"min=0,max=100"`
	EssayCount          int    `json:"essay_count" validate:"min=0,max=50"`
	RecognitionRatio    int    `json:"recognition_ratio" validate:"min=0,max=100"`
	ComprehensionRatio  int    `json:"comprehension_ratio" validate:"min=0,max=100"`
	ApplicationRatio    int    `json:"application_ratio" validate:"min=0,max=100"`
	TimeLimitMinutes    int    `json:"time_limit_minutes" validate:"min=0,max=600"`
	TopicRanges         string `json:"topic_ranges,omitempty"`
}

func (r *StartBlueprintRequest) ToParams() genai.GenerationParams {
	return genai.GenerationParams{
		Subject:    r.Subject,
		ClassLevel: r.ClassLevel,
		QuestionCounts: genai.QuestionCounts{
			MultipleChoice: r.MultipleChoiceCount,
			Essay:          r.EssayCount,
		},
		CognitiveRatios: genai.CognitiveRatios{
			Recognition:   r.RecognitionRatio,
			Comprehension: r.ComprehensionRatio,
			Application:   r.ApplicationRatio,
		},
		TimeLimitMinutes: r.TimeLimitMinutes,
		TopicRanges:      r.TopicRanges,
	}
}

// StageAcceptedResponse acknowledges that a stage run has started; progress
// arrives through the session endpoint and the websocket feed.
type StageAcceptedResponse struct {
	Stage string `json:"stage"`
	State string `json:"state"`
}

type SessionResponse struct {
	State      string                  `json:"state"`
	FileName   string                  `json:"file_name,omitempty"`
	PageCount  int                     `json:"page_count"`
	Params     *genai.GenerationParams `json:"params,omitempty"`
	Blueprint  *genai.Blueprint        `json:"blueprint,omitempty"`
	Test       *genai.Test             `json:"test,omitempty"`
	Solution   *genai.Solution         `json:"solution,omitempty"`
	InProgress map[string]bool         `json:"in_progress"`
	Progress   map[string]int          `json:"progress"`
	LastError  string                  `json:"last_error,omitempty"`
	Unsaved    bool                    `json:"unsaved"`
}

// SessionEventDTO is pushed over the websocket whenever a stage starts,
// finishes or fails.
type SessionEventDTO struct {
	Stage    string `json:"stage"`
	Status   string `json:"status"` // "started" | "completed" | "failed"
	State    string `json:"state"`
	Progress int    `json:"progress"`
	Error    string `json:"error,omitempty"`
}

// StageLifecycleMessage travels over the in-process bus from the generation
// service to the consumer worker, which handles emails and external events.
type StageLifecycleMessage struct {
	UserID        string `json:"user_id"`
	Email         string `json:"email,omitempty"`
	Stage         string `json:"stage"`
	Status        string `json:"status"`
	Subject       string `json:"subject,omitempty"`
	TestTitle     string `json:"test_title,omitempty"`
	QuestionCount int    `json:"question_count,omitempty"`
	Error         string `json:"error,omitempty"`
}
