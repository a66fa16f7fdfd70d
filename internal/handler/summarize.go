package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/summarizer/api/internal/model"
	"github.com/summarizer/api/internal/service"
	"github.com/summarizer/api/pkg/response"
)

type SummarizeHandler struct {
	service   *service.SummarizeService
	validator *validator.Validate
}

func NewSummarizeHandler(svc *service.SummarizeService, v *validator.Validate) *SummarizeHandler {
	return &SummarizeHandler{
		service:   svc,
		validator: v,
	}
}

// Summarize handles POST /api/v1/summarize
func (h *SummarizeHandler) Summarize(c *fiber.Ctx) error {
	var req model.SummarizeRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	result, err := h.service.Summarize(c.Context(), &req)
	if err != nil {
		return response.AIError(c, err.Error())
	}

	return response.OK(c, result)
}

// formatValidationErrors formats validator errors for response
func formatValidationErrors(err error) interface{} {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		errors := make(map[string]string)
		for _, e := range validationErrors {
			errors[e.Field()] = e.Tag()
		}
		return errors
	}
	return nil
}
