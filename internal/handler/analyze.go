package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/summarizer/api/internal/middleware"
	"github.com/summarizer/api/internal/model"
	"github.com/summarizer/api/internal/service"
	"github.com/summarizer/api/pkg/response"
)

type AnalyzeHandler struct {
	service   *service.AnalyzeService
	validator *validator.Validate
}

func NewAnalyzeHandler(svc *service.AnalyzeService, v *validator.Validate) *AnalyzeHandler {
	return &AnalyzeHandler{
		service:   svc,
		validator: v,
	}
}

// Analyze handles POST /api/v1/analyze
func (h *AnalyzeHandler) Analyze(c *fiber.Ctx) error {
	var req model.AnalyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	user := middleware.GetUsername(c)

	result, err := h.service.Analyze(c.Context(), user, &req)
	if err != nil {
		var notUploaded *service.ErrFileNotUploaded
		if errors.As(err, &notUploaded) {
			return response.ValidationError(c, notUploaded.Error(), nil)
		}
		return response.AIError(c, err.Error())
	}

	return response.OK(c, result)
}
