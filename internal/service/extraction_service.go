// FILE: internal/service/extraction_service.go
package service

import (
	"context"
	"errors"

	"ai-examgen-be/internal/dto"
	"ai-examgen-be/internal/pkg/logger"
	"ai-examgen-be/internal/repository/memory"
	"ai-examgen-be/pkg/extract"
	"ai-examgen-be/pkg/store"

	"github.com/google/uuid"
)

type IExtractionService interface {
	UploadDocument(ctx context.Context, userId uuid.UUID, fileName string, contentType string, data []byte) (*dto.UploadDocumentResponse, error)
	DiscardSession(ctx context.Context, userId uuid.UUID, confirmed bool) error
}

type extractionService struct {
	extractor   *extract.DocumentExtractor
	sessionRepo *memory.SessionRepository
	logger      logger.ILogger
}

func NewExtractionService(
	extractor *extract.DocumentExtractor,
	sessionRepo *memory.SessionRepository,
	log logger.ILogger,
) IExtractionService {
	return &extractionService{
		extractor:   extractor,
		sessionRepo: sessionRepo,
		logger:      log,
	}
}

// UploadDocument extracts the uploaded PDF and installs it as the material of
// the caller's generation session, creating the session on first upload.
func (cs *extractionService) UploadDocument(ctx context.Context, userId uuid.UUID, fileName string, contentType string, data []byte) (*dto.UploadDocumentResponse, error) {
	// 1. Reject non-PDF input before any extraction work starts.
	if err := extract.CheckDeclaredType(fileName, contentType); err != nil {
		return nil, err
	}

	// 2. A running stage owns the session material; do not swap it out.
	session, found := cs.sessionRepo.Get(userId.String())
	if found && session.AnyInProgress() {
		return nil, store.ErrStageBusy
	}
	if !found {
		session = store.NewSession(userId.String())
	}

	// 3. Extract. Malformed input fails here and leaves the session as it
	// was. Empty content is advisory: the upload still lands.
	doc, err := cs.extractor.Extract(ctx, data)
	warning := ""
	if err != nil {
		if !errors.Is(err, extract.ErrEmptyContent) {
			return nil, err
		}
		warning = err.Error()
		cs.logger.Warn("ExtractionService", "Document produced no extractable content", map[string]interface{}{
			"user_id":   userId.String(),
			"file_name": fileName,
		})
	}

	session.AttachDocument(doc, fileName)
	cs.sessionRepo.Save(session)

	cs.logger.Info("ExtractionService", "✅ Document extracted", map[string]interface{}{
		"user_id":    userId.String(),
		"file_name":  fileName,
		"page_count": len(doc.Pages),
	})

	pages := make([]dto.DocumentPageDTO, len(doc.Pages))
	for i, p := range doc.Pages {
		pages[i] = dto.DocumentPageDTO{
			Index:    p.Index,
			Text:     p.Text,
			HasImage: len(p.Image) > 0,
		}
	}

	return &dto.UploadDocumentResponse{
		FileName:  fileName,
		PageCount: len(doc.Pages),
		Pages:     pages,
		Warning:   warning,
	}, nil
}

// DiscardSession drops the caller's session. An unsaved generated test blocks
// the discard until the caller confirms losing it.
func (cs *extractionService) DiscardSession(ctx context.Context, userId uuid.UUID, confirmed bool) error {
	session, found := cs.sessionRepo.Get(userId.String())
	if !found {
		return dto.ErrNoSession
	}
	if session.AnyInProgress() {
		return store.ErrStageBusy
	}
	if session.View().Unsaved && !confirmed {
		return dto.ErrUnsavedWork
	}

	cs.sessionRepo.Delete(userId.String())
	cs.logger.Info("ExtractionService", "Session discarded", map[string]interface{}{
		"user_id": userId.String(),
	})
	return nil
}
