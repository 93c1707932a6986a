package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"ai-examgen-be/internal/dto"
	"ai-examgen-be/internal/pkg/logger"
	"ai-examgen-be/internal/repository/memory"
	"ai-examgen-be/pkg/extract"
	"ai-examgen-be/pkg/genai"
	"ai-examgen-be/pkg/progress"
	"ai-examgen-be/pkg/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }
func (nopLogger) GetLogs(level string, limit, offset int) ([]logger.LogEntry, error) {
	return nil, nil
}
func (nopLogger) GetLogById(id string) (*logger.LogEntry, error) { return nil, nil }

// scriptedGenerator returns canned stage outputs and records what it was
// asked for. When gate is non-nil every call blocks until the gate closes.
type scriptedGenerator struct {
	mu   sync.Mutex
	gate chan struct{}

	blueprint *genai.Blueprint
	test      *genai.Test
	solution  *genai.Solution
	err       error

	blueprintCalls int
	testCalls      int
	solutionCalls  int

	lastBlueprintReq genai.BlueprintRequest
	lastTestReq      genai.TestRequest
}

func (g *scriptedGenerator) wait() {
	if g.gate != nil {
		<-g.gate
	}
}

func (g *scriptedGenerator) GenerateBlueprint(ctx context.Context, req genai.BlueprintRequest) (*genai.Blueprint, error) {
	g.mu.Lock()
	g.blueprintCalls++
	g.lastBlueprintReq = req
	g.mu.Unlock()
	g.wait()
	return g.blueprint, g.err
}

func (g *scriptedGenerator) GenerateTest(ctx context.Context, req genai.TestRequest) (*genai.Test, error) {
	g.mu.Lock()
	g.testCalls++
	g.lastTestReq = req
	g.mu.Unlock()
	g.wait()
	return g.test, g.err
}

func (g *scriptedGenerator) GenerateSolution(ctx context.Context, req genai.SolutionRequest) (*genai.Solution, error) {
	g.mu.Lock()
	g.solutionCalls++
	g.mu.Unlock()
	g.wait()
	return g.solution, g.err
}

func (g *scriptedGenerator) calls() (int, int, int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.blueprintCalls, g.testCalls, g.solutionCalls
}

// recordingDelivery captures websocket pushes.
type recordingDelivery struct {
	mu     sync.Mutex
	events []dto.SessionEventDTO
}

func (d *recordingDelivery) Send(userID uuid.UUID, eventType string, payload interface{}) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if evt, ok := payload.(dto.SessionEventDTO); ok {
		d.events = append(d.events, evt)
	}
}

func (d *recordingDelivery) statuses() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.events))
	for i, e := range d.events {
		out[i] = e.Status
	}
	return out
}

// recordingPublisher captures lifecycle bus messages.
type recordingPublisher struct {
	mu       sync.Mutex
	messages []dto.StageLifecycleMessage
}

func (p *recordingPublisher) Publish(ctx context.Context, payload []byte) error {
	var msg dto.StageLifecycleMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, msg)
	return nil
}

func (p *recordingPublisher) byStatus(status string) []dto.StageLifecycleMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []dto.StageLifecycleMessage
	for _, m := range p.messages {
		if m.Status == status {
			out = append(out, m)
		}
	}
	return out
}

type generationFixture struct {
	svc       IGenerationService
	repo      *memory.SessionRepository
	generator *scriptedGenerator
	delivery  *recordingDelivery
	publisher *recordingPublisher
	tracker   *progress.Tracker
}

func newGenerationFixture(t *testing.T) *generationFixture {
	t.Helper()
	f := &generationFixture{
		repo:      memory.NewSessionRepository(),
		generator: &scriptedGenerator{},
		delivery:  &recordingDelivery{},
		publisher: &recordingPublisher{},
		tracker:   progress.NewTracker(10 * time.Millisecond),
	}
	f.svc = NewGenerationService(f.repo, f.generator, f.tracker, f.delivery, f.publisher, nopLogger{})
	t.Cleanup(f.tracker.StopAll)
	return f
}

func sampleDocument() *extract.Document {
	return &extract.Document{
		Pages: []extract.Page{
			{Index: 1, Text: "Bab 1: Bilangan Bulat"},
			{Index: 2, Text: "Bab 2: Pecahan", Image: []byte{0x89, 0x50, 0x4e, 0x47}},
		},
	}
}

func (f *generationFixture) seedSession(userId uuid.UUID, doc *extract.Document) *store.Session {
	session := store.NewSession(userId.String())
	if doc != nil {
		session.AttachDocument(doc, "materi.pdf")
	}
	f.repo.Save(session)
	return session
}

func sampleStartRequest() *dto.StartBlueprintRequest {
	return &dto.StartBlueprintRequest{
		Subject:             "Matematika",
		ClassLevel:          "VII",
		MultipleChoiceCount: 10,
		EssayCount:          5,
		RecognitionRatio:    30,
		ComprehensionRatio:  40,
		ApplicationRatio:    30,
		TimeLimitMinutes:    90,
	}
}

func sampleBlueprint() *genai.Blueprint {
	return &genai.Blueprint{
		Subject:    "Matematika",
		ClassLevel: "VII",
		Rows: []genai.BlueprintRow{
			{Number: 1, Topic: "Bilangan Bulat", Indicator: "Menyebutkan lawan bilangan", CognitiveLevel: genai.CognitiveRecognition, QuestionType: genai.QuestionTypeMultipleChoice, QuestionCount: 1},
		},
	}
}

func sampleTest() *genai.Test {
	return &genai.Test{
		Title:            "Ulangan Harian Matematika",
		Subject:          "Matematika",
		ClassLevel:       "VII",
		TimeLimitMinutes: 90,
		Questions: []genai.Question{
			{ID: "q-1", Number: 1, Type: genai.QuestionTypeMultipleChoice, CognitiveLevel: genai.CognitiveRecognition, Topic: "Bilangan Bulat", Text: "Lawan dari -5 adalah?", Options: []string{"A. 5", "B. -5", "C. 0", "D. 10"}},
		},
	}
}

func sampleSolution() *genai.Solution {
	return &genai.Solution{
		Answers: []genai.Answer{
			{QuestionID: "q-1", Number: 1, Answer: "A", Explanation: "Lawan dari -5 adalah 5."},
		},
	}
}

func TestStartBlueprint_RatioCheckedBeforeSession(t *testing.T) {
	f := newGenerationFixture(t)
	userId := uuid.New()

	// No session exists at all; the ratio error must still win.
	req := sampleStartRequest()
	req.ApplicationRatio = 20 // sums to 90

	_, err := f.svc.StartBlueprint(context.Background(), userId, "guru@sekolah.id", req)

	var ratioErr *genai.RatioError
	require.ErrorAs(t, err, &ratioErr)
	assert.Equal(t, 90, ratioErr.Sum)

	bp, _, _ := f.generator.calls()
	assert.Zero(t, bp, "an invalid split must never reach the model")
}

func TestStartBlueprint_Preconditions(t *testing.T) {
	f := newGenerationFixture(t)
	userId := uuid.New()

	_, err := f.svc.StartBlueprint(context.Background(), userId, "", sampleStartRequest())
	require.ErrorIs(t, err, dto.ErrNoSession)

	f.seedSession(userId, nil)
	_, err = f.svc.StartBlueprint(context.Background(), userId, "", sampleStartRequest())
	require.ErrorIs(t, err, dto.ErrNoDocument)

	bp, _, _ := f.generator.calls()
	assert.Zero(t, bp)
}

func TestStartBlueprint_CompletesSessionAndNotifies(t *testing.T) {
	f := newGenerationFixture(t)
	f.generator.blueprint = sampleBlueprint()
	userId := uuid.New()
	session := f.seedSession(userId, sampleDocument())

	res, err := f.svc.StartBlueprint(context.Background(), userId, "guru@sekolah.id", sampleStartRequest())
	require.NoError(t, err)
	assert.Equal(t, genai.StageBlueprint, res.Stage)

	require.Eventually(t, func() bool {
		return len(f.publisher.byStatus("completed")) == 1
	}, 2*time.Second, 5*time.Millisecond)

	view := session.View()
	assert.Equal(t, store.StateBlueprintReady, view.State)
	assert.False(t, session.AnyInProgress())
	assert.Equal(t, "Matematika", view.Params.Subject)
	require.NotNil(t, view.Blueprint)

	// The capability saw the combined text and the rendered page.
	assert.Contains(t, f.generator.lastBlueprintReq.ExtractedText, "Bilangan Bulat")
	assert.Len(t, f.generator.lastBlueprintReq.PageImages, 1)

	value, active := f.tracker.Get(userId.String() + ":" + genai.StageBlueprint)
	assert.Equal(t, 100, value)
	assert.False(t, active)

	assert.Equal(t, []string{"started", "completed"}, f.delivery.statuses())

	completed := f.publisher.byStatus("completed")
	assert.Equal(t, userId.String(), completed[0].UserID)
	assert.Equal(t, "guru@sekolah.id", completed[0].Email)
	assert.Equal(t, genai.StageBlueprint, completed[0].Stage)
}

func TestStartBlueprint_FailureReleasesStage(t *testing.T) {
	f := newGenerationFixture(t)
	f.generator.err = errors.New("model timed out")
	userId := uuid.New()
	session := f.seedSession(userId, sampleDocument())

	_, err := f.svc.StartBlueprint(context.Background(), userId, "", sampleStartRequest())
	require.NoError(t, err, "the start itself is accepted; the failure is asynchronous")

	require.Eventually(t, func() bool {
		return len(f.publisher.byStatus("failed")) == 1
	}, 2*time.Second, 5*time.Millisecond)

	view := session.View()
	assert.Equal(t, store.StateIdle, view.State)
	assert.False(t, session.AnyInProgress(), "a failed stage must not leave the session busy")
	assert.Equal(t, "model timed out", view.LastError)
	assert.Nil(t, view.Blueprint)

	value, active := f.tracker.Get(userId.String() + ":" + genai.StageBlueprint)
	assert.Zero(t, value)
	assert.False(t, active)

	assert.Equal(t, []string{"started", "failed"}, f.delivery.statuses())
}

func TestStartBlueprint_RejectedWhileStageRuns(t *testing.T) {
	f := newGenerationFixture(t)
	f.generator.gate = make(chan struct{})
	f.generator.blueprint = sampleBlueprint()
	userId := uuid.New()
	f.seedSession(userId, sampleDocument())

	_, err := f.svc.StartBlueprint(context.Background(), userId, "", sampleStartRequest())
	require.NoError(t, err)

	_, err = f.svc.StartBlueprint(context.Background(), userId, "", sampleStartRequest())
	require.ErrorIs(t, err, store.ErrStageBusy)

	_, err = f.svc.StartSolution(context.Background(), userId, "")
	require.ErrorIs(t, err, dto.ErrTestNotReady, "missing prerequisites are reported before the busy check")

	close(f.generator.gate)
	require.Eventually(t, func() bool {
		return len(f.publisher.byStatus("completed")) == 1
	}, 2*time.Second, 5*time.Millisecond)

	bp, _, _ := f.generator.calls()
	assert.Equal(t, 1, bp)
}

func TestStartTest_RequiresBlueprint(t *testing.T) {
	f := newGenerationFixture(t)
	userId := uuid.New()
	f.seedSession(userId, sampleDocument())

	_, err := f.svc.StartTest(context.Background(), userId, "")
	require.ErrorIs(t, err, dto.ErrBlueprintNotReady)

	_, tc, _ := f.generator.calls()
	assert.Zero(t, tc)
}

func TestStartSolution_RequiresTest(t *testing.T) {
	f := newGenerationFixture(t)
	userId := uuid.New()
	f.seedSession(userId, sampleDocument())

	_, err := f.svc.StartSolution(context.Background(), userId, "")
	require.ErrorIs(t, err, dto.ErrTestNotReady)

	_, _, sc := f.generator.calls()
	assert.Zero(t, sc)
}

func TestStartTest_RerunDropsSolution(t *testing.T) {
	f := newGenerationFixture(t)
	f.generator.test = sampleTest()
	userId := uuid.New()
	session := f.seedSession(userId, sampleDocument())

	// Walk the session to a full chain first.
	require.NoError(t, session.BeginStage(genai.StageBlueprint))
	session.CompleteBlueprint(sampleBlueprint())
	require.NoError(t, session.BeginStage(genai.StageTest))
	session.CompleteTest(sampleTest())
	require.NoError(t, session.BeginStage(genai.StageSolution))
	session.CompleteSolution(sampleSolution())
	session.MarkSaved()
	f.repo.Save(session)

	_, err := f.svc.StartTest(context.Background(), userId, "")
	require.NoError(t, err)

	// The stale solution is gone the moment the rerun is accepted.
	assert.Nil(t, session.View().Solution)

	require.Eventually(t, func() bool {
		return len(f.publisher.byStatus("completed")) == 1
	}, 2*time.Second, 5*time.Millisecond)

	view := session.View()
	assert.Equal(t, store.StateTestReady, view.State)
	assert.True(t, view.Unsaved, "a regenerated test is unsaved work again")
	assert.NotNil(t, view.Test)
	assert.Nil(t, view.Solution)

	// The rerun reused the stored blueprint.
	require.NotNil(t, f.generator.lastTestReq.Blueprint)

	completed := f.publisher.byStatus("completed")
	assert.Equal(t, "Ulangan Harian Matematika", completed[0].TestTitle)
	assert.Equal(t, 1, completed[0].QuestionCount)
}

func TestStartSolution_CompletesChain(t *testing.T) {
	f := newGenerationFixture(t)
	f.generator.solution = sampleSolution()
	userId := uuid.New()
	session := f.seedSession(userId, sampleDocument())

	require.NoError(t, session.BeginStage(genai.StageBlueprint))
	session.CompleteBlueprint(sampleBlueprint())
	require.NoError(t, session.BeginStage(genai.StageTest))
	session.CompleteTest(sampleTest())
	f.repo.Save(session)

	_, err := f.svc.StartSolution(context.Background(), userId, "")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return len(f.publisher.byStatus("completed")) == 1
	}, 2*time.Second, 5*time.Millisecond)

	view := session.View()
	assert.Equal(t, store.StateSolutionReady, view.State)
	require.NotNil(t, view.Solution)
	assert.True(t, view.Unsaved, "saving is the archive's job, not the solution stage's")
}

func TestGetSession(t *testing.T) {
	f := newGenerationFixture(t)
	userId := uuid.New()

	_, err := f.svc.GetSession(context.Background(), userId)
	require.ErrorIs(t, err, dto.ErrNoSession)

	f.seedSession(userId, sampleDocument())

	res, err := f.svc.GetSession(context.Background(), userId)
	require.NoError(t, err)
	assert.Equal(t, store.StateIdle, res.State)
	assert.Equal(t, "materi.pdf", res.FileName)
	assert.Equal(t, 2, res.PageCount)
	assert.Nil(t, res.Params, "params stay hidden until a blueprint run claims them")
	assert.Len(t, res.Progress, 3)
}

func TestGetSession_ShowsParamsWhileBlueprintRuns(t *testing.T) {
	f := newGenerationFixture(t)
	f.generator.gate = make(chan struct{})
	f.generator.blueprint = sampleBlueprint()
	userId := uuid.New()
	f.seedSession(userId, sampleDocument())

	_, err := f.svc.StartBlueprint(context.Background(), userId, "", sampleStartRequest())
	require.NoError(t, err)

	res, err := f.svc.GetSession(context.Background(), userId)
	require.NoError(t, err)
	require.NotNil(t, res.Params)
	assert.Equal(t, "Matematika", res.Params.Subject)
	assert.True(t, res.InProgress[genai.StageBlueprint])

	close(f.generator.gate)
	require.Eventually(t, func() bool {
		return len(f.publisher.byStatus("completed")) == 1
	}, 2*time.Second, 5*time.Millisecond)
}
