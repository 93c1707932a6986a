package controller

import (
	"ai-examgen-be/internal/dto"
	"ai-examgen-be/internal/pkg/serverutils"
	"ai-examgen-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IGenerationController interface {
	RegisterRoutes(r fiber.Router)
	GetSession(ctx *fiber.Ctx) error
	StartBlueprint(ctx *fiber.Ctx) error
	StartTest(ctx *fiber.Ctx) error
	StartSolution(ctx *fiber.Ctx) error
	DiscardSession(ctx *fiber.Ctx) error
}

type generationController struct {
	generationService service.IGenerationService
	extractionService service.IExtractionService
}

func NewGenerationController(
	generationService service.IGenerationService,
	extractionService service.IExtractionService,
) IGenerationController {
	return &generationController{
		generationService: generationService,
		extractionService: extractionService,
	}
}

func (c *generationController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/generation/v1")
	h.Use(serverutils.JwtMiddleware) // ✅ PROTECTED: Wajib login
	h.Get("session", c.GetSession)
	h.Delete("session", c.DiscardSession)
	h.Post("session/blueprint", c.StartBlueprint)
	h.Post("session/test", c.StartTest)
	h.Post("session/solution", c.StartSolution)
}

func (c *generationController) GetSession(ctx *fiber.Ctx) error {
	// 1. Ambil User ID dari Token
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	res, err := c.generationService.GetSession(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get session", res))
}

func (c *generationController) StartBlueprint(ctx *fiber.Ctx) error {
	// 1. Ambil User ID dari Token
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)
	email, _ := ctx.Locals("email").(string)

	var req dto.StartBlueprintRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	err := serverutils.ValidateRequest(req)
	if err != nil {
		return err
	}

	// 2. Kirim ke Service
	res, err := c.generationService.StartBlueprint(ctx.Context(), userId, email, &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Blueprint stage started", res))
}

func (c *generationController) StartTest(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)
	email, _ := ctx.Locals("email").(string)

	res, err := c.generationService.StartTest(ctx.Context(), userId, email)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Test stage started", res))
}

func (c *generationController) StartSolution(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)
	email, _ := ctx.Locals("email").(string)

	res, err := c.generationService.StartSolution(ctx.Context(), userId, email)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Solution stage started", res))
}

func (c *generationController) DiscardSession(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	// An unsaved test blocks the discard unless the caller confirms.
	confirmed := ctx.QueryBool("confirm", false)

	if err := c.extractionService.DiscardSession(ctx.Context(), userId, confirmed); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Session discarded", nil))
}
