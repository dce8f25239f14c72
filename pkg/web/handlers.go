package web

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/funilhq/funil/pkg/dispatcher"
	"github.com/funilhq/funil/pkg/services"
)

const defaultExecutionsLimit = 50

type APIHandlers struct {
	workflows  *services.Workflow
	executions *services.Execution
	dispatcher *dispatcher.Dispatcher
	validator  *validator.Validate
}

func NewAPIHandlers(
	workflows *services.Workflow,
	executions *services.Execution,
	disp *dispatcher.Dispatcher,
	validate *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		workflows:  workflows,
		executions: executions,
		dispatcher: disp,
		validator:  validate,
	}
}

func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	defs, err := h.workflows.List(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"workflows":   defs,
		"total_count": len(defs),
	})
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	def, err := h.workflows.Get(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(def)
}

func (h *APIHandlers) CreateWorkflow(c fiber.Ctx) error {
	var req SaveWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	def := req.toDefinition("")
	if err := h.workflows.Save(c.Context(), def); err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(def)
}

func (h *APIHandlers) UpdateWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	if _, err := h.workflows.Get(c.Context(), id); err != nil {
		return handleServiceError(c, err)
	}

	var req SaveWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	def := req.toDefinition(id)
	if err := h.workflows.Save(c.Context(), def); err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(def)
}

func (h *APIHandlers) ActivateWorkflow(c fiber.Ctx) error {
	return h.setActive(c, true)
}

func (h *APIHandlers) DeactivateWorkflow(c fiber.Ctx) error {
	return h.setActive(c, false)
}

func (h *APIHandlers) setActive(c fiber.Ctx, active bool) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	def, err := h.workflows.SetActive(c.Context(), id, active)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(def)
}

// RunWorkflow starts one manual run and waits for it.
func (h *APIHandlers) RunWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	var req RunWorkflowRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return badRequest(c, "Invalid JSON format")
		}
	}

	result, err := h.executions.Run(c.Context(), id, req.TriggerEvent, req.Payload)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

func (h *APIHandlers) GetExecutions(c fiber.Ctx) error {
	return h.listExecutions(c, c.Query("workflow_id"))
}

func (h *APIHandlers) GetWorkflowExecutions(c fiber.Ctx) error {
	return h.listExecutions(c, c.Params("id"))
}

func (h *APIHandlers) listExecutions(c fiber.Ctx, workflowID string) error {
	limit := defaultExecutionsLimit

	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			return badRequest(c, "Invalid limit parameter")
		}

		limit = parsed
	}

	executions, err := h.executions.List(c.Context(), workflowID, limit)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"executions":  executions,
		"total_count": len(executions),
	})
}

func (h *APIHandlers) GetExecution(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Execution ID is required")
	}

	execution, err := h.executions.Get(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(execution)
}

func (h *APIHandlers) CancelExecution(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Execution ID is required")
	}

	execution, err := h.executions.Cancel(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(execution)
}

func (h *APIHandlers) RetryExecution(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Execution ID is required")
	}

	result, err := h.executions.Retry(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

// IngestEvent accepts one domain event and dispatches it to the matching
// workflows in the background. The response is 202: the event is accepted,
// the runs happen asynchronously.
func (h *APIHandlers) IngestEvent(c fiber.Ctx) error {
	var req IngestEventRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	go func() {
		// Detached from the request context: the dispatch outlives the response.
		_, _ = h.dispatcher.Dispatch(context.Background(),
			req.Event, req.EntityType, req.EntityID, req.Payload)
	}()

	return c.SendStatus(fiber.StatusAccepted)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	storageCheck, ok := h.workflows.HealthCheck(c.Context())

	status := "unhealthy"
	httpStatus := http.StatusInternalServerError

	if ok {
		status = "healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status": status,
		"checkers": fiber.Map{
			"storage": storageCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}
