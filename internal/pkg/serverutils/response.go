package serverutils

import (
	"errors"

	"ai-examgen-be/internal/dto"
	"ai-examgen-be/pkg/extract"
	"ai-examgen-be/pkg/genai"
	"ai-examgen-be/pkg/kvstore"
	"ai-examgen-be/pkg/store"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type Response[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
}

func SuccessResponse[T any](message string, data T) Response[T] {
	return Response[T]{
		Code:    fiber.StatusOK,
		Message: message,
		Data:    data,
	}
}

func ErrorResponse(code int, message string) Response[any] {
	return Response[any]{
		Code:    code,
		Message: message,
	}
}

var validate = validator.New()

func ValidateRequest(req interface{}) error {
	return validate.Struct(req)
}

// ErrorHandlerMiddleware turns service errors into the response envelope.
// Controllers return errors bare; the mapping to HTTP statuses lives here.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		code, message := mapError(err)
		return ctx.Status(code).JSON(ErrorResponse(code, message))
	}
}

func mapError(err error) (int, string) {
	// Fiber's own errors (404 route, body too large, ...) keep their code
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code, fiberErr.Message
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return fiber.StatusBadRequest, validationErrs.Error()
	}

	// Document intake
	switch {
	case errors.Is(err, extract.ErrInvalidFileType):
		return fiber.StatusBadRequest, err.Error()
	case errors.Is(err, extract.ErrMalformedDocument):
		return fiber.StatusUnprocessableEntity, err.Error()
	}

	// Generation preconditions and state machine
	var ratioErr *genai.RatioError
	if errors.As(err, &ratioErr) {
		return fiber.StatusBadRequest, ratioErr.Error()
	}
	switch {
	case errors.Is(err, dto.ErrNoSession):
		return fiber.StatusNotFound, err.Error()
	case errors.Is(err, dto.ErrNoDocument),
		errors.Is(err, dto.ErrNoCompletedTest):
		return fiber.StatusBadRequest, err.Error()
	case errors.Is(err, store.ErrStageBusy),
		errors.Is(err, dto.ErrBlueprintNotReady),
		errors.Is(err, dto.ErrTestNotReady),
		errors.Is(err, dto.ErrUnsavedWork):
		return fiber.StatusConflict, err.Error()
	}

	// The capability failed, not the caller
	var stageErr *genai.StageError
	if errors.As(err, &stageErr) {
		return fiber.StatusBadGateway, stageErr.Message
	}

	// Archive
	switch {
	case errors.Is(err, dto.ErrArtifactNotFound):
		return fiber.StatusNotFound, err.Error()
	case errors.Is(err, kvstore.ErrQuotaExceeded):
		return fiber.StatusInsufficientStorage, err.Error()
	}

	return fiber.StatusInternalServerError, err.Error()
}
