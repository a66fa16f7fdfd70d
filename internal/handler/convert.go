package handler

import (
	"log"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/summarizer/api/internal/middleware"
	"github.com/summarizer/api/internal/model"
	"github.com/summarizer/api/internal/notify"
	"github.com/summarizer/api/internal/service"
	"github.com/summarizer/api/internal/storage"
	"github.com/summarizer/api/pkg/response"
)

type ConvertHandler struct {
	service   *service.ConvertService
	store     *storage.Store
	notifier  *notify.EmailNotifier
	validator *validator.Validate
	maxUpload int64
}

func NewConvertHandler(svc *service.ConvertService, store *storage.Store, notifier *notify.EmailNotifier, v *validator.Validate, maxUpload int64) *ConvertHandler {
	return &ConvertHandler{
		service:   svc,
		store:     store,
		notifier:  notifier,
		validator: v,
		maxUpload: maxUpload,
	}
}

// AudioToVtt handles POST /api/v1/audio-to-vtt
func (h *ConvertHandler) AudioToVtt(c *fiber.Ctx) error {
	user := middleware.GetUsername(c)

	file, err := c.FormFile("doc")
	if err != nil {
		return response.ValidationError(c, "Audio file is required", nil)
	}

	if file.Size > h.maxUpload {
		return response.ValidationError(c, "File size exceeds upload limit", map[string]interface{}{
			"maxSize":  h.maxUpload,
			"fileSize": file.Size,
		})
	}

	if !storage.IsAudio(file.Filename) {
		return response.ValidationError(c, "Unsupported audio format", map[string]interface{}{
			"filename": file.Filename,
		})
	}

	f, err := file.Open()
	if err != nil {
		return response.ServiceError(c, "Failed to open uploaded file")
	}
	defer f.Close()

	if _, err := h.store.SaveUpload(user, file.Filename, f); err != nil {
		return response.ServiceError(c, err.Error())
	}

	audio := storage.SecureFilename(file.Filename)
	if _, err := h.service.SubmitConversion(c.Context(), user, audio); err != nil {
		return response.ServiceError(c, err.Error())
	}

	return response.Accepted(c, &model.ConvertAcceptedResponse{
		Status:  "success",
		Message: "audio into convert queue",
		Audio:   audio,
	})
}

// Complete handles POST /api/v1/audio-to-vtt/complete. It is called once
// a subtitle file has been written: emails the user and schedules vector
// indexing of the transcript.
func (h *ConvertHandler) Complete(c *fiber.Ctx) error {
	var data model.VttNotification
	if err := c.BodyParser(&data); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&data); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	log.Printf("Received conversion notification: user=%s audio=%s", data.User, data.Audio)

	h.notifier.VttFinished(data.User, filepath.Base(data.Audio))

	if err := h.service.SubmitIndex(c.Context(), data.User, data.VttPath); err != nil {
		// Indexing is best-effort; the notification itself succeeded
		log.Printf("Failed to schedule indexing for %s: %v", data.VttPath, err)
	}

	return response.OK(c, fiber.Map{"status": "ok"})
}

// Process handles GET /api/v1/convert-process
func (h *ConvertHandler) Process(c *fiber.Ctx) error {
	audio := c.Query("audio")
	if audio == "" {
		return response.ValidationError(c, "audio query parameter is required", nil)
	}

	user := middleware.GetUsername(c)
	return response.OK(c, h.service.ConvertProcess(user, audio))
}

// TaskStatus handles GET /api/v1/task-status
func (h *ConvertHandler) TaskStatus(c *fiber.Ctx) error {
	return response.OK(c, h.service.TaskStatus())
}

// ListVtts handles GET /api/v1/vtt
func (h *ConvertHandler) ListVtts(c *fiber.Ctx) error {
	user := middleware.GetUsername(c)

	entries, err := h.service.ListVtts(user)
	if err != nil {
		return response.ServiceError(c, err.Error())
	}

	return response.OK(c, &model.VttListResponse{Data: entries})
}
