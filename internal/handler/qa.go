package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/summarizer/api/internal/middleware"
	"github.com/summarizer/api/internal/model"
	"github.com/summarizer/api/internal/service"
	"github.com/summarizer/api/pkg/response"
)

type QAHandler struct {
	service   *service.QAService
	validator *validator.Validate
}

func NewQAHandler(svc *service.QAService, v *validator.Validate) *QAHandler {
	return &QAHandler{
		service:   svc,
		validator: v,
	}
}

// Ask handles POST /api/v1/ask
func (h *QAHandler) Ask(c *fiber.Ctx) error {
	var req model.AskRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	user := middleware.GetUsername(c)

	result, err := h.service.Ask(c.Context(), user, &req)
	if err != nil {
		return response.AIError(c, err.Error())
	}

	return response.OK(c, result)
}
