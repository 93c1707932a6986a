package dto

import (
	"errors"
	"time"

	"ai-examgen-be/pkg/genai"

	"github.com/google/uuid"
)

var (
	ErrNoCompletedTest  = errors.New("no completed test to save")
	ErrArtifactNotFound = errors.New("artifact not found")
)

type SaveArtifactRequest struct {
	DisplayName string `json:"display_name" validate:"required,max=120"`
}

// Storage outcomes for a save. The artifact always lands in the served list;
// the status says whether it also reached persistent storage.
const (
	StorageStatusPersisted     = "persisted"
	StorageStatusQuotaExceeded = "quota_exceeded"
	StorageStatusWriteFailed   = "write_failed"
)

type SaveArtifactResponse struct {
	Id            uuid.UUID `json:"id"`
	StorageStatus string    `json:"storage_status"`
	StorageDetail string    `json:"storage_detail,omitempty"`
}

// ArtifactSummaryDTO is the list view: enough to pick an entry, no payload.
type ArtifactSummaryDTO struct {
	Id            uuid.UUID `json:"id"`
	DisplayName   string    `json:"display_name"`
	Subject       string    `json:"subject"`
	ClassLevel    string    `json:"class_level"`
	QuestionCount int       `json:"question_count"`
	HasSolution   bool      `json:"has_solution"`
	CreatedAt     time.Time `json:"created_at"`
}

type ArtifactDetailResponse struct {
	Id          uuid.UUID              `json:"id"`
	DisplayName string                 `json:"display_name"`
	CreatedAt   time.Time              `json:"created_at"`
	TestData    *genai.Test            `json:"test_data"`
	Solution    *genai.Solution        `json:"solution,omitempty"`
	Parameters  genai.GenerationParams `json:"parameters"`
}

type ShareArtifactRequest struct {
	Email string `json:"email" validate:"required,email"`
}
