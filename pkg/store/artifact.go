package store

import (
	"time"

	"ai-examgen-be/pkg/genai"

	"github.com/google/uuid"
)

// SavedArtifact is a completed, user-saved test plus the parameters it was
// generated with. Bulk document content (page text, images) never travels
// with it; only the small parameter set needed to reproduce context.
type SavedArtifact struct {
	Id          uuid.UUID              `json:"id"`
	DisplayName string                 `json:"display_name"`
	CreatedAt   time.Time              `json:"created_at"`
	TestData    *genai.Test            `json:"test_data"`
	Solution    *genai.Solution        `json:"solution,omitempty"`
	Parameters  genai.GenerationParams `json:"parameters"`
}
