package store

import (
	"errors"
	"sync"
	"time"

	"ai-examgen-be/pkg/extract"
	"ai-examgen-be/pkg/genai"
)

// Generation session states, derived from which stage outputs exist.
const (
	StateIdle           = "IDLE"
	StateBlueprintReady = "BLUEPRINT_READY"
	StateTestReady      = "TEST_READY"
	StateSolutionReady  = "SOLUTION_READY"
)

// ErrStageBusy rejects a stage start while another stage is still running.
var ErrStageBusy = errors.New("a generation stage is already in progress")

// Session is the active generation session state in memory. One session per
// user; all stage transitions go through its methods so the state machine
// invariants live in one place. Methods are safe to call from the HTTP
// goroutine and the stage worker concurrently; cross-package readers use
// View rather than the fields.
type Session struct {
	mu sync.Mutex

	ID     string `json:"id"` // same as UserID, one active session per user
	UserID string `json:"user_id"`
	State  string `json:"state"`

	// THE MATERIAL (extracted document the stages feed on)
	FileName string            `json:"file_name,omitempty"`
	Document *extract.Document `json:"document,omitempty"`

	// THE WORKBENCH (per-stage outputs, later stages depend on earlier ones)
	Params    genai.GenerationParams `json:"params"`
	Blueprint *genai.Blueprint       `json:"blueprint,omitempty"`
	Test      *genai.Test            `json:"test,omitempty"`
	Solution  *genai.Solution        `json:"solution,omitempty"`

	InProgress map[string]bool `json:"in_progress"`
	LastError  string          `json:"last_error,omitempty"`

	// Unsaved marks a generated test that has not been archived yet, so the
	// caller can guard actions that would discard it.
	Unsaved   bool      `json:"unsaved"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SessionView is a consistent read of the session for callers outside the
// aggregate. The document and stage outputs are shared pointers; transitions
// replace them wholesale, they are never mutated in place.
type SessionView struct {
	UserID     string
	State      string
	FileName   string
	Document   *extract.Document
	Params     genai.GenerationParams
	Blueprint  *genai.Blueprint
	Test       *genai.Test
	Solution   *genai.Solution
	InProgress map[string]bool
	LastError  string
	Unsaved    bool
	UpdatedAt  time.Time
}

func NewSession(userID string) *Session {
	return &Session{
		ID:         userID,
		UserID:     userID,
		State:      StateIdle,
		InProgress: make(map[string]bool),
		UpdatedAt:  time.Now(),
	}
}

// View returns a copy of the current session state.
func (s *Session) View() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()

	inProgress := make(map[string]bool, len(s.InProgress))
	for k, v := range s.InProgress {
		inProgress[k] = v
	}
	return SessionView{
		UserID:     s.UserID,
		State:      s.State,
		FileName:   s.FileName,
		Document:   s.Document,
		Params:     s.Params,
		Blueprint:  s.Blueprint,
		Test:       s.Test,
		Solution:   s.Solution,
		InProgress: inProgress,
		LastError:  s.LastError,
		Unsaved:    s.Unsaved,
		UpdatedAt:  s.UpdatedAt,
	}
}

// AttachDocument installs freshly extracted material and resets every stage.
// A new document invalidates whatever was generated from the old one.
func (s *Session) AttachDocument(doc *extract.Document, fileName string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Document = doc
	s.FileName = fileName
	s.Blueprint = nil
	s.Test = nil
	s.Solution = nil
	s.LastError = ""
	s.Unsaved = false
	s.State = StateIdle
	s.UpdatedAt = time.Now()
}

// SetParams records the generation parameters for the run. Call it after
// BeginStage has claimed the session so no running stage still reads the old
// values.
func (s *Session) SetParams(params genai.GenerationParams) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Params = params
	s.UpdatedAt = time.Now()
}

// BeginStage marks a stage as running and clears the outputs that the rerun
// invalidates: regenerating the blueprint drops test and solution, a test
// rerun drops the solution. Only one stage may run at a time.
func (s *Session) BeginStage(stage string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.anyInProgressLocked() {
		return ErrStageBusy
	}

	switch stage {
	case genai.StageBlueprint:
		s.Blueprint = nil
		s.Test = nil
		s.Solution = nil
		s.Unsaved = false
	case genai.StageTest:
		s.Test = nil
		s.Solution = nil
		s.Unsaved = false
	case genai.StageSolution:
		s.Solution = nil
	}

	s.InProgress[stage] = true
	s.LastError = ""
	s.State = s.deriveState()
	s.UpdatedAt = time.Now()
	return nil
}

// CompleteBlueprint records a successful matrix stage.
func (s *Session) CompleteBlueprint(blueprint *genai.Blueprint) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Blueprint = blueprint
	s.finishStageLocked(genai.StageBlueprint)
}

// CompleteTest records a successful test stage. The result is unsaved until
// it reaches the archive.
func (s *Session) CompleteTest(test *genai.Test) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Test = test
	s.Unsaved = true
	s.finishStageLocked(genai.StageTest)
}

// CompleteSolution records a successful answer-key stage.
func (s *Session) CompleteSolution(solution *genai.Solution) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Solution = solution
	s.finishStageLocked(genai.StageSolution)
}

func (s *Session) finishStageLocked(stage string) {
	s.InProgress[stage] = false
	s.LastError = ""
	s.State = s.deriveState()
	s.UpdatedAt = time.Now()
}

// FailStage releases the stage and records the error. Outputs already
// cleared by BeginStage stay cleared, so the state falls back to whatever
// the remaining outputs support.
func (s *Session) FailStage(stage string, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.InProgress[stage] = false
	s.LastError = message
	s.State = s.deriveState()
	s.UpdatedAt = time.Now()
}

// MarkSaved clears the unsaved-work flag after a successful archive write.
func (s *Session) MarkSaved() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Unsaved = false
	s.UpdatedAt = time.Now()
}

// AnyInProgress reports whether any stage is currently running.
func (s *Session) AnyInProgress() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.anyInProgressLocked()
}

func (s *Session) anyInProgressLocked() bool {
	for _, running := range s.InProgress {
		if running {
			return true
		}
	}
	return false
}

func (s *Session) deriveState() string {
	switch {
	case s.Solution != nil:
		return StateSolutionReady
	case s.Test != nil:
		return StateTestReady
	case s.Blueprint != nil:
		return StateBlueprintReady
	default:
		return StateIdle
	}
}
