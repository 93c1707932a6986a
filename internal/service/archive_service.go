// FILE: internal/service/archive_service.go
package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"ai-examgen-be/internal/constant"
	"ai-examgen-be/internal/dto"
	"ai-examgen-be/internal/pkg/logger"
	"ai-examgen-be/internal/pkg/mailer"
	"ai-examgen-be/internal/repository/memory"
	"ai-examgen-be/pkg/events"
	"ai-examgen-be/pkg/kvstore"
	pktNats "ai-examgen-be/pkg/nats"
	"ai-examgen-be/pkg/store"

	"github.com/google/uuid"
)

type IArchiveService interface {
	List(ctx context.Context, userId uuid.UUID) ([]*dto.ArtifactSummaryDTO, error)
	Save(ctx context.Context, userId uuid.UUID, request *dto.SaveArtifactRequest) (*dto.SaveArtifactResponse, error)
	Get(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ArtifactDetailResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
	Share(ctx context.Context, userId uuid.UUID, id uuid.UUID, request *dto.ShareArtifactRequest) error
}

// archiveService keeps the authoritative artifact list in memory per user and
// mirrors it into the slot store. A failed write never takes the artifact out
// of the served list; it only shows up in the save result.
type archiveService struct {
	slots          kvstore.KeyValueStore
	sessionRepo    *memory.SessionRepository
	emailService   mailer.IEmailService
	eventPublisher *pktNats.Publisher
	logger         logger.ILogger

	mu    sync.Mutex
	lists map[string][]store.SavedArtifact
}

func NewArchiveService(
	slots kvstore.KeyValueStore,
	sessionRepo *memory.SessionRepository,
	emailService mailer.IEmailService,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IArchiveService {
	return &archiveService{
		slots:          slots,
		sessionRepo:    sessionRepo,
		emailService:   emailService,
		eventPublisher: eventPublisher,
		logger:         log,
		lists:          make(map[string][]store.SavedArtifact),
	}
}

func slotKey(userId uuid.UUID) string {
	return constant.StorageSlotKeyPrefix + userId.String()
}

// List returns the user's saved artifacts, most recent first.
func (cs *archiveService) List(ctx context.Context, userId uuid.UUID) ([]*dto.ArtifactSummaryDTO, error) {
	cs.mu.Lock()
	artifacts := cs.loadLocked(ctx, userId)
	cs.mu.Unlock()

	summaries := make([]*dto.ArtifactSummaryDTO, 0, len(artifacts))
	for _, a := range artifacts {
		questionCount := 0
		if a.TestData != nil {
			questionCount = len(a.TestData.Questions)
		}
		summaries = append(summaries, &dto.ArtifactSummaryDTO{
			Id:            a.Id,
			DisplayName:   a.DisplayName,
			Subject:       a.Parameters.Subject,
			ClassLevel:    a.Parameters.ClassLevel,
			QuestionCount: questionCount,
			HasSolution:   a.Solution != nil,
			CreatedAt:     a.CreatedAt,
		})
	}
	return summaries, nil
}

// Save archives the session's completed test. New entries go to the front of
// the list. The write outcome is part of the response: a quota refusal or a
// plain write failure leaves the artifact in the served list and reports what
// happened instead of failing the request.
func (cs *archiveService) Save(ctx context.Context, userId uuid.UUID, request *dto.SaveArtifactRequest) (*dto.SaveArtifactResponse, error) {
	session, found := cs.sessionRepo.Get(userId.String())
	if !found {
		return nil, dto.ErrNoCompletedTest
	}
	view := session.View()
	if view.Test == nil {
		return nil, dto.ErrNoCompletedTest
	}

	artifact := store.SavedArtifact{
		Id:          uuid.New(),
		DisplayName: request.DisplayName,
		CreatedAt:   time.Now(),
		TestData:    view.Test,
		Solution:    view.Solution,
		Parameters:  view.Params,
	}

	cs.mu.Lock()
	artifacts := cs.loadLocked(ctx, userId)
	artifacts = append([]store.SavedArtifact{artifact}, artifacts...)
	cs.lists[userId.String()] = artifacts
	status, detail := cs.persistLocked(ctx, userId, artifacts)
	cs.mu.Unlock()

	session.MarkSaved()
	cs.sessionRepo.Save(session)

	cs.logger.Info("ArchiveService", "Artifact saved", map[string]interface{}{
		"user_id":        userId.String(),
		"artifact_id":    artifact.Id.String(),
		"storage_status": status,
	})

	cs.publishEvent(ctx, events.TypeArtifactSaved, map[string]interface{}{
		"user_id":      userId.String(),
		"artifact_id":  artifact.Id.String(),
		"display_name": artifact.DisplayName,
	})

	return &dto.SaveArtifactResponse{
		Id:            artifact.Id,
		StorageStatus: status,
		StorageDetail: detail,
	}, nil
}

// Get returns one artifact in full.
func (cs *archiveService) Get(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ArtifactDetailResponse, error) {
	cs.mu.Lock()
	artifacts := cs.loadLocked(ctx, userId)
	cs.mu.Unlock()

	for _, a := range artifacts {
		if a.Id == id {
			return &dto.ArtifactDetailResponse{
				Id:          a.Id,
				DisplayName: a.DisplayName,
				CreatedAt:   a.CreatedAt,
				TestData:    a.TestData,
				Solution:    a.Solution,
				Parameters:  a.Parameters,
			}, nil
		}
	}
	return nil, dto.ErrArtifactNotFound
}

// Delete removes an artifact by id. No confirmation here; that is the
// caller's concern.
func (cs *archiveService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	artifacts := cs.loadLocked(ctx, userId)
	kept := make([]store.SavedArtifact, 0, len(artifacts))
	removed := false
	for _, a := range artifacts {
		if a.Id == id {
			removed = true
			continue
		}
		kept = append(kept, a)
	}
	if !removed {
		return dto.ErrArtifactNotFound
	}

	cs.lists[userId.String()] = kept
	if status, detail := cs.persistLocked(ctx, userId, kept); status != dto.StorageStatusPersisted {
		cs.logger.Warn("ArchiveService", "Failed to persist list after delete", map[string]interface{}{
			"user_id": userId.String(),
			"status":  status,
			"detail":  detail,
		})
	}
	return nil
}

// Share emails an artifact summary to a recipient.
func (cs *archiveService) Share(ctx context.Context, userId uuid.UUID, id uuid.UUID, request *dto.ShareArtifactRequest) error {
	detail, err := cs.Get(ctx, userId, id)
	if err != nil {
		return err
	}

	questionCount := 0
	if detail.TestData != nil {
		questionCount = len(detail.TestData.Questions)
	}
	err = cs.emailService.SendArtifactShare(
		request.Email,
		detail.DisplayName,
		detail.Parameters.Subject,
		questionCount,
		detail.Solution != nil,
	)
	if err != nil {
		return err
	}

	cs.publishEvent(ctx, events.TypeArtifactShared, map[string]interface{}{
		"user_id":      userId.String(),
		"artifact_id":  id.String(),
		"display_name": detail.DisplayName,
		"recipient":    request.Email,
	})
	return nil
}

// loadLocked returns the cached list, reading through to the slot store on
// first access. Absent and corrupt slots both come back as an empty list;
// corruption is logged, never surfaced.
func (cs *archiveService) loadLocked(ctx context.Context, userId uuid.UUID) []store.SavedArtifact {
	if cached, ok := cs.lists[userId.String()]; ok {
		return cached
	}

	artifacts := []store.SavedArtifact{}
	raw, err := cs.slots.Get(ctx, slotKey(userId))
	if err != nil {
		cs.logger.Warn("ArchiveService", "Failed to read artifact slot, starting empty", map[string]interface{}{
			"user_id": userId.String(),
			"error":   err.Error(),
		})
	} else if raw != nil {
		if err := json.Unmarshal(raw, &artifacts); err != nil {
			cs.logger.Warn("ArchiveService", "Stored artifact list is corrupt, starting empty", map[string]interface{}{
				"user_id": userId.String(),
				"error":   err.Error(),
			})
			artifacts = []store.SavedArtifact{}
		}
	}

	cs.lists[userId.String()] = artifacts
	return artifacts
}

func (cs *archiveService) persistLocked(ctx context.Context, userId uuid.UUID, artifacts []store.SavedArtifact) (string, string) {
	raw, err := json.Marshal(artifacts)
	if err != nil {
		return dto.StorageStatusWriteFailed, err.Error()
	}

	if err := cs.slots.Set(ctx, slotKey(userId), raw); err != nil {
		if errors.Is(err, kvstore.ErrQuotaExceeded) {
			cs.logger.Warn("ArchiveService", "Artifact slot is over quota", map[string]interface{}{
				"user_id": userId.String(),
				"error":   err.Error(),
			})
			return dto.StorageStatusQuotaExceeded, err.Error()
		}
		cs.logger.Error("ArchiveService", "Failed to write artifact slot", map[string]interface{}{
			"user_id": userId.String(),
			"error":   err.Error(),
		})
		return dto.StorageStatusWriteFailed, err.Error()
	}
	return dto.StorageStatusPersisted, ""
}

func (cs *archiveService) publishEvent(ctx context.Context, eventType string, data map[string]interface{}) {
	if cs.eventPublisher == nil {
		return
	}
	evt := events.BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now(),
	}
	// We log error but don't fail the request as notification is auxiliary
	if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
		cs.logger.Warn("ArchiveService", "Failed to publish event", map[string]interface{}{
			"type":  eventType,
			"error": err.Error(),
		})
	}
}
