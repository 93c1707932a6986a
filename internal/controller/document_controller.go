package controller

import (
	"io"

	"ai-examgen-be/internal/pkg/serverutils"
	"ai-examgen-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	Extract(ctx *fiber.Ctx) error
}

type documentController struct {
	extractionService service.IExtractionService
}

func NewDocumentController(extractionService service.IExtractionService) IDocumentController {
	return &documentController{
		extractionService: extractionService,
	}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/document/v1")
	h.Use(serverutils.JwtMiddleware) // ✅ PROTECTED: Wajib login
	h.Post("extract", c.Extract)
}

func (c *documentController) Extract(ctx *fiber.Ctx) error {
	// 1. Ambil User ID dari Token
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Upload a PDF in the 'file' field")
	}

	f, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return err
	}

	// 2. Kirim ke Service
	res, err := c.extractionService.UploadDocument(
		ctx.Context(),
		userId,
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		data,
	)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success extract document", res))
}
