package api

import (
	"errors"

	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"

	"github.com/vishu1803/Collaborative-task-manager/domain/apperr"
)

// writeError maps err onto a status code and a failure envelope. Internal
// details are logged, not returned.
func writeError(c *fiber.Ctx, logger types.Logger, err error) error {
	ae := apperr.From(err)
	message := ae.Message
	if ae.Kind == apperr.KindInternal {
		logger.Error("Request failed", "method", c.Method(), "path", c.Path(), "error", ae.Message)
		message = "Internal server error"
	}
	return c.Status(apperr.HTTPStatus(ae.Kind)).JSON(Response{Success: false, Message: message})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(Response{Success: false, Message: message})
}

// customErrorHandler handles errors returned by fiber itself.
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(Response{Success: false, Message: message})
}
