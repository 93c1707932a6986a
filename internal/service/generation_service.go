// FILE: internal/service/generation_service.go
package service

import (
	"context"
	"encoding/base64"
	"encoding/json"

	"ai-examgen-be/internal/dto"
	"ai-examgen-be/internal/pkg/logger"
	"ai-examgen-be/internal/repository/memory"
	"ai-examgen-be/pkg/genai"
	"ai-examgen-be/pkg/progress"
	"ai-examgen-be/pkg/store"

	"github.com/google/uuid"
)

type IGenerationService interface {
	GetSession(ctx context.Context, userId uuid.UUID) (*dto.SessionResponse, error)
	StartBlueprint(ctx context.Context, userId uuid.UUID, email string, request *dto.StartBlueprintRequest) (*dto.StageAcceptedResponse, error)
	StartTest(ctx context.Context, userId uuid.UUID, email string) (*dto.StageAcceptedResponse, error)
	StartSolution(ctx context.Context, userId uuid.UUID, email string) (*dto.StageAcceptedResponse, error)
	Shutdown()
}

type generationService struct {
	sessionRepo      *memory.SessionRepository
	generator        genai.Generator
	tracker          *progress.Tracker
	delivery         NotificationDelivery
	publisherService IPublisherService
	logger           logger.ILogger
}

func NewGenerationService(
	sessionRepo *memory.SessionRepository,
	generator genai.Generator,
	tracker *progress.Tracker,
	delivery NotificationDelivery,
	publisherService IPublisherService,
	log logger.ILogger,
) IGenerationService {
	return &generationService{
		sessionRepo:      sessionRepo,
		generator:        generator,
		tracker:          tracker,
		delivery:         delivery,
		publisherService: publisherService,
		logger:           log,
	}
}

var sessionStages = []string{genai.StageBlueprint, genai.StageTest, genai.StageSolution}

func progressKey(userId uuid.UUID, stage string) string {
	return userId.String() + ":" + stage
}

// GetSession returns the full state of the caller's generation session,
// including live progress values for every stage.
func (cs *generationService) GetSession(ctx context.Context, userId uuid.UUID) (*dto.SessionResponse, error) {
	session, found := cs.sessionRepo.Get(userId.String())
	if !found {
		return nil, dto.ErrNoSession
	}
	view := session.View()

	progressMap := make(map[string]int, len(sessionStages))
	for _, stage := range sessionStages {
		value, _ := cs.tracker.Get(progressKey(userId, stage))
		progressMap[stage] = value
	}

	pageCount := 0
	if view.Document != nil {
		pageCount = len(view.Document.Pages)
	}

	var params *genai.GenerationParams
	if view.Blueprint != nil || view.InProgress[genai.StageBlueprint] {
		p := view.Params
		params = &p
	}

	return &dto.SessionResponse{
		State:      view.State,
		FileName:   view.FileName,
		PageCount:  pageCount,
		Params:     params,
		Blueprint:  view.Blueprint,
		Test:       view.Test,
		Solution:   view.Solution,
		InProgress: view.InProgress,
		Progress:   progressMap,
		LastError:  view.LastError,
		Unsaved:    view.Unsaved,
	}, nil
}

// StartBlueprint kicks off the matrix stage. The cognitive-ratio split is
// checked first; an invalid split must never reach the model.
func (cs *generationService) StartBlueprint(ctx context.Context, userId uuid.UUID, email string, request *dto.StartBlueprintRequest) (*dto.StageAcceptedResponse, error) {
	params := request.ToParams()
	if err := params.CognitiveRatios.Validate(); err != nil {
		return nil, err
	}

	session, found := cs.sessionRepo.Get(userId.String())
	if !found {
		return nil, dto.ErrNoSession
	}
	view := session.View()
	if view.Document == nil {
		return nil, dto.ErrNoDocument
	}

	if err := session.BeginStage(genai.StageBlueprint); err != nil {
		return nil, err
	}
	session.SetParams(params)
	cs.sessionRepo.Save(session)

	genReq := genai.BlueprintRequest{
		Params:        params,
		ExtractedText: view.Document.CombinedText(),
		PageImages:    encodePageImages(view.Document.Images()),
	}

	cs.launchStage(session, userId, email, genai.StageBlueprint, func(runCtx context.Context) error {
		blueprint, err := cs.generator.GenerateBlueprint(runCtx, genReq)
		if err != nil {
			return err
		}
		session.CompleteBlueprint(blueprint)
		return nil
	})

	return cs.accepted(session, genai.StageBlueprint), nil
}

// StartTest kicks off the test stage from the stored blueprint. Without a
// blueprint the request fails before the model is ever contacted.
func (cs *generationService) StartTest(ctx context.Context, userId uuid.UUID, email string) (*dto.StageAcceptedResponse, error) {
	session, found := cs.sessionRepo.Get(userId.String())
	if !found {
		return nil, dto.ErrNoSession
	}
	view := session.View()
	if view.Blueprint == nil {
		return nil, dto.ErrBlueprintNotReady
	}
	if view.Document == nil {
		return nil, dto.ErrNoDocument
	}

	if err := session.BeginStage(genai.StageTest); err != nil {
		return nil, err
	}
	cs.sessionRepo.Save(session)

	genReq := genai.TestRequest{
		BlueprintRequest: genai.BlueprintRequest{
			Params:        view.Params,
			ExtractedText: view.Document.CombinedText(),
			PageImages:    encodePageImages(view.Document.Images()),
		},
		Blueprint: view.Blueprint,
	}

	cs.launchStage(session, userId, email, genai.StageTest, func(runCtx context.Context) error {
		test, err := cs.generator.GenerateTest(runCtx, genReq)
		if err != nil {
			return err
		}
		session.CompleteTest(test)
		return nil
	})

	return cs.accepted(session, genai.StageTest), nil
}

// StartSolution kicks off the answer-key stage for the stored test.
func (cs *generationService) StartSolution(ctx context.Context, userId uuid.UUID, email string) (*dto.StageAcceptedResponse, error) {
	session, found := cs.sessionRepo.Get(userId.String())
	if !found {
		return nil, dto.ErrNoSession
	}
	view := session.View()
	if view.Test == nil {
		return nil, dto.ErrTestNotReady
	}

	if err := session.BeginStage(genai.StageSolution); err != nil {
		return nil, err
	}
	cs.sessionRepo.Save(session)

	genReq := genai.SolutionRequest{
		Params: view.Params,
		Test:   view.Test,
	}

	cs.launchStage(session, userId, email, genai.StageSolution, func(runCtx context.Context) error {
		solution, err := cs.generator.GenerateSolution(runCtx, genReq)
		if err != nil {
			return err
		}
		session.CompleteSolution(solution)
		return nil
	})

	return cs.accepted(session, genai.StageSolution), nil
}

// Shutdown releases all running progress tasks.
func (cs *generationService) Shutdown() {
	cs.tracker.StopAll()
}

// launchStage runs one generation stage in the background. The progress task
// starts here and is released on every exit path; the stage flag on the
// session was already claimed by the caller via BeginStage.
func (cs *generationService) launchStage(session *store.Session, userId uuid.UUID, email string, stage string, run func(ctx context.Context) error) {
	key := progressKey(userId, stage)
	cs.tracker.Start(key)
	cs.pushEvent(session, userId, stage, "started", "")
	cs.publishLifecycle(session, email, stage, "started", "")

	go func() {
		// The stage outlives the HTTP request that started it, so it runs
		// on its own context. An issued model call is never cancelled; the
		// session stays busy until it resolves.
		runCtx := context.Background()

		if err := run(runCtx); err != nil {
			stageErr := genai.NewStageError(stage, err)
			session.FailStage(stage, stageErr.Message)
			cs.tracker.Fail(key)
			cs.sessionRepo.Save(session)

			cs.logger.Error("GenerationService", "Stage failed", map[string]interface{}{
				"user_id": userId.String(),
				"stage":   stage,
				"error":   stageErr.Message,
			})
			cs.pushEvent(session, userId, stage, "failed", stageErr.Message)
			cs.publishLifecycle(session, email, stage, "failed", stageErr.Message)
			return
		}

		cs.tracker.Complete(key)
		cs.sessionRepo.Save(session)

		cs.logger.Info("GenerationService", "✅ Stage completed", map[string]interface{}{
			"user_id": userId.String(),
			"stage":   stage,
		})
		cs.pushEvent(session, userId, stage, "completed", "")
		cs.publishLifecycle(session, email, stage, "completed", "")
	}()
}

func (cs *generationService) accepted(session *store.Session, stage string) *dto.StageAcceptedResponse {
	return &dto.StageAcceptedResponse{
		Stage: stage,
		State: session.View().State,
	}
}

func (cs *generationService) pushEvent(session *store.Session, userId uuid.UUID, stage string, status string, errMsg string) {
	if cs.delivery == nil {
		return
	}
	value, _ := cs.tracker.Get(progressKey(userId, stage))
	cs.delivery.Send(userId, "session_event", dto.SessionEventDTO{
		Stage:    stage,
		Status:   status,
		State:    session.View().State,
		Progress: value,
		Error:    errMsg,
	})
}

// publishLifecycle hands the stage transition to the consumer worker. This is
// auxiliary; a bus failure is logged and the stage result stands.
func (cs *generationService) publishLifecycle(session *store.Session, email string, stage string, status string, errMsg string) {
	if cs.publisherService == nil {
		return
	}
	view := session.View()

	msg := dto.StageLifecycleMessage{
		UserID:  view.UserID,
		Email:   email,
		Stage:   stage,
		Status:  status,
		Subject: view.Params.Subject,
		Error:   errMsg,
	}
	if view.Test != nil {
		msg.TestTitle = view.Test.Title
		msg.QuestionCount = len(view.Test.Questions)
	}

	msgJson, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if err := cs.publisherService.Publish(context.Background(), msgJson); err != nil {
		cs.logger.Warn("GenerationService", "Failed to publish lifecycle message", map[string]interface{}{
			"stage": stage,
			"error": err.Error(),
		})
	}
}

func encodePageImages(images [][]byte) []string {
	encoded := make([]string, 0, len(images))
	for _, img := range images {
		encoded = append(encoded, base64.StdEncoding.EncodeToString(img))
	}
	return encoded
}
