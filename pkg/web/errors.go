package web

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"

	"github.com/funilhq/funil/pkg/services"
)

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func notFound(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(404).
		WithInstance(c.Path()).
		WithType("not_found").
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

func conflict(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(409).
		WithInstance(c.Path()).
		WithType("conflict").
		WithDetail(detail)

	return c.Status(fiber.StatusConflict).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

// handleServiceError maps service errors onto problem responses.
func handleServiceError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrWorkflowNotFound):
		return notFound(c, "workflow not found")
	case errors.Is(err, services.ErrExecutionNotFound):
		return notFound(c, "execution not found")
	case errors.Is(err, services.ErrInvalidDefinition):
		return badRequest(c, err.Error())
	case errors.Is(err, services.ErrInactiveWorkflow),
		errors.Is(err, services.ErrExecutionTerminal),
		errors.Is(err, services.ErrRetryCancelled),
		errors.Is(err, services.ErrExecutionRunning):
		return conflict(c, err.Error())
	default:
		return internalError(c, err)
	}
}
