package genai

import "context"

// BlueprintRequest carries everything the capability needs for the matrix
// stage: the user parameters plus the extracted document content.
type BlueprintRequest struct {
	Params        GenerationParams
	ExtractedText string
	PageImages    []string // Base64 PNG, in page order
}

// TestRequest is the blueprint request plus the approved blueprint itself.
type TestRequest struct {
	BlueprintRequest
	Blueprint *Blueprint
}

// SolutionRequest asks for the answer key of an already generated test.
// Only the subject-level parameters travel with it, not document content.
type SolutionRequest struct {
	Params GenerationParams
	Test   *Test
}

// Generator is the external generation capability, one contract per stage.
// Implementations talk to a model backend; tests substitute fakes.
type Generator interface {
	GenerateBlueprint(ctx context.Context, req BlueprintRequest) (*Blueprint, error)
	GenerateTest(ctx context.Context, req TestRequest) (*Test, error)
	GenerateSolution(ctx context.Context, req SolutionRequest) (*Solution, error)
}
