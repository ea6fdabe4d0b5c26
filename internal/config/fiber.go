package config

import (
	"PoseDetection/internal/api/pose"
	"errors"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

func NewFiber(logger *logrus.Logger, cfg *Env) *fiber.App {
	app := fiber.New(
		fiber.Config{
			AppName: cfg.App.Name,
			// Above the 10MB image ceiling so most oversized uploads reach the
			// handler. Bodies past this limit are mapped in the error handler.
			BodyLimit:             50 * 1024 * 1024,
			DisableKeepalive:      false,
			StrictRouting:         true,
			CaseSensitive:         true,
			DisableStartupMessage: cfg.App.Env == "test",
			JSONEncoder:           jsoniter.Marshal,
			JSONDecoder:           jsoniter.Unmarshal,
			ErrorHandler:          newErrorHandler(logger),
		})

	return app
}

func newErrorHandler(logger *logrus.Logger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		detail := "Error interno: " + err.Error()

		var e *fiber.Error
		if errors.As(err, &e) {
			code = e.Code
			detail = e.Message
		}

		// The body limit rejects uploads before any handler runs.
		if code == fiber.StatusRequestEntityTooLarge {
			code = fiber.StatusBadRequest
			detail = pose.ErrFileTooLarge.Error()
		}

		logger.WithFields(logrus.Fields{
			"path":   ctx.Path(),
			"status": code,
			"error":  err.Error(),
		}).Warn("Request failed in fiber")

		return ctx.Status(code).JSON(fiber.Map{"detail": detail})
	}
}
