package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ai-examgen-be/internal/pkg/logger"
	"ai-examgen-be/pkg/llm"

	"github.com/google/uuid"
)

// llmGenerator implements Generator on top of a generic LLM provider.
// Structured output is requested as strict JSON and parsed defensively.
type llmGenerator struct {
	provider llm.LLMProvider
	logger   logger.ILogger
}

func NewLLMGenerator(provider llm.LLMProvider, log logger.ILogger) Generator {
	return &llmGenerator{
		provider: provider,
		logger:   log,
	}
}

func (g *llmGenerator) GenerateBlueprint(ctx context.Context, req BlueprintRequest) (*Blueprint, error) {
	response, err := g.chat(ctx, buildBlueprintPrompt(req), req.PageImages)
	if err != nil {
		return nil, err
	}

	var blueprint Blueprint
	if err := json.Unmarshal([]byte(extractJSON(response)), &blueprint); err != nil {
		g.logger.Warn("genai", "Blueprint response is not valid JSON", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("model returned an unreadable blueprint: %w", err)
	}
	if len(blueprint.Rows) == 0 {
		return nil, fmt.Errorf("model returned an empty blueprint")
	}

	// Fill identity fields the model tends to omit
	if blueprint.Subject == "" {
		blueprint.Subject = req.Params.Subject
	}
	if blueprint.ClassLevel == "" {
		blueprint.ClassLevel = req.Params.ClassLevel
	}
	for i := range blueprint.Rows {
		if blueprint.Rows[i].Number == 0 {
			blueprint.Rows[i].Number = i + 1
		}
	}

	return &blueprint, nil
}

func (g *llmGenerator) GenerateTest(ctx context.Context, req TestRequest) (*Test, error) {
	if req.Blueprint == nil {
		return nil, fmt.Errorf("test generation needs a blueprint")
	}

	response, err := g.chat(ctx, buildTestPrompt(req), req.PageImages)
	if err != nil {
		return nil, err
	}

	var test Test
	if err := json.Unmarshal([]byte(extractJSON(response)), &test); err != nil {
		g.logger.Warn("genai", "Test response is not valid JSON", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("model returned an unreadable test: %w", err)
	}
	if len(test.Questions) == 0 {
		return nil, fmt.Errorf("model returned a test with no questions")
	}

	if test.Subject == "" {
		test.Subject = req.Params.Subject
	}
	if test.ClassLevel == "" {
		test.ClassLevel = req.Params.ClassLevel
	}
	if test.TimeLimitMinutes == 0 {
		test.TimeLimitMinutes = req.Params.TimeLimitMinutes
	}

	// Give every question a stable id so the solution stage can key on it
	for i := range test.Questions {
		if test.Questions[i].ID == "" {
			test.Questions[i].ID = uuid.NewString()
		}
		if test.Questions[i].Number == 0 {
			test.Questions[i].Number = i + 1
		}
	}

	return &test, nil
}

func (g *llmGenerator) GenerateSolution(ctx context.Context, req SolutionRequest) (*Solution, error) {
	if req.Test == nil {
		return nil, fmt.Errorf("solution generation needs a test")
	}

	response, err := g.chat(ctx, buildSolutionPrompt(req), nil)
	if err != nil {
		return nil, err
	}

	var solution Solution
	if err := json.Unmarshal([]byte(extractJSON(response)), &solution); err != nil {
		g.logger.Warn("genai", "Solution response is not valid JSON", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("model returned an unreadable answer key: %w", err)
	}
	if len(solution.Answers) == 0 {
		return nil, fmt.Errorf("model returned an empty answer key")
	}

	// Models occasionally drop ids and keep only numbers; repair from the test
	idByNumber := make(map[int]string, len(req.Test.Questions))
	for _, q := range req.Test.Questions {
		idByNumber[q.Number] = q.ID
	}
	for i := range solution.Answers {
		if solution.Answers[i].QuestionID == "" {
			solution.Answers[i].QuestionID = idByNumber[solution.Answers[i].Number]
		}
	}

	return &solution, nil
}

// chat sends the prompt as a single user message, attaching page images when
// the request carries them so vision models can read scanned pages.
func (g *llmGenerator) chat(ctx context.Context, prompt string, images []string) (string, error) {
	messages := []llm.Message{
		{Role: "user", Content: prompt, Images: images},
	}

	response, err := g.provider.Chat(ctx, messages, llm.WithTemperature(0.2))
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(response) == "" {
		return "", fmt.Errorf("model returned an empty response")
	}
	return response, nil
}

// extractJSON isolates JSON content from response
func extractJSON(response string) string {
	startIdx := strings.Index(response, "{")
	endIdx := strings.LastIndex(response, "}")

	if startIdx == -1 || endIdx == -1 || endIdx <= startIdx {
		return response
	}

	return response[startIdx : endIdx+1]
}
