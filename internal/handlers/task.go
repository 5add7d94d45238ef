package handlers

import (
	"net/http"

	"github.com/dimitrije/taskboard-api/internal/metrics"
	"github.com/dimitrije/taskboard-api/internal/middleware"
	"github.com/dimitrije/taskboard-api/internal/services"
	"github.com/dimitrije/taskboard-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
	"go.uber.org/zap"
)

const msgInvalidTaskID = "Invalid task id"

type TaskHandler struct {
	taskService TaskServiceInterface
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

func NewTaskHandler(taskService TaskServiceInterface, m *metrics.Metrics, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		metrics:     m,
		logger:      logger,
	}
}

func (h *TaskHandler) Create(c *drift.Context) {
	var req dto.CreateTaskRequest
	if err := c.BindJSON(&req); err != nil {
		respondFailure(c, http.StatusBadRequest, msgInvalidBody, nil)
		return
	}
	if err := dto.Validate(req); err != nil {
		respondInvalid(c, err, "Title and team_id are required")
		return
	}

	due, err := dto.ParseDueDate(req.DueDate)
	if err != nil {
		respondFailure(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	task, err := h.taskService.Create(c.Request.Context(), services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		TeamID:      req.TeamID,
		AssignedTo:  req.AssignedTo,
		DueDate:     due,
		Status:      req.Status,
	}, middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, h.metrics, "create-task", err)
		return
	}

	respond(c, http.StatusCreated, task, "Task created successfully")
}

func (h *TaskHandler) List(c *drift.Context) {
	teamID, ok := queryID(c, "team_id")
	if !ok {
		respondFailure(c, http.StatusBadRequest, "Invalid team_id", nil)
		return
	}
	assignedTo, ok := queryID(c, "assigned_to")
	if !ok {
		respondFailure(c, http.StatusBadRequest, "Invalid assigned_to", nil)
		return
	}

	tasks, err := h.taskService.List(c.Request.Context(), middleware.GetUserID(c), services.TaskFilter{
		TeamID:     teamID,
		AssignedTo: assignedTo,
	})
	if err != nil {
		respondError(c, h.logger, h.metrics, "list-tasks", err)
		return
	}

	respond(c, http.StatusOK, tasks, "Tasks fetched successfully")
}

func (h *TaskHandler) Update(c *drift.Context) {
	taskID, ok := parseID(c, "id")
	if !ok {
		respondFailure(c, http.StatusBadRequest, msgInvalidTaskID, nil)
		return
	}

	var req dto.UpdateTaskRequest
	if err := c.BindJSON(&req); err != nil {
		respondFailure(c, http.StatusBadRequest, msgInvalidBody, nil)
		return
	}
	if err := dto.Validate(req); err != nil {
		respondInvalid(c, err, msgInvalidInput)
		return
	}

	due, err := dto.ParseDueDate(req.DueDate)
	if err != nil {
		respondFailure(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	task, err := h.taskService.Update(c.Request.Context(), taskID, middleware.GetUserID(c), services.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		AssignedTo:  req.AssignedTo,
		DueDate:     due,
		Status:      req.Status,
	})
	if err != nil {
		respondError(c, h.logger, h.metrics, "update-task", err)
		return
	}

	respond(c, http.StatusOK, task, "Task updated successfully")
}

func (h *TaskHandler) Delete(c *drift.Context) {
	taskID, ok := parseID(c, "id")
	if !ok {
		respondFailure(c, http.StatusBadRequest, msgInvalidTaskID, nil)
		return
	}

	if err := h.taskService.Delete(c.Request.Context(), taskID, middleware.GetUserID(c)); err != nil {
		respondError(c, h.logger, h.metrics, "delete-task", err)
		return
	}

	respond(c, http.StatusOK, nil, "Task deleted successfully")
}
