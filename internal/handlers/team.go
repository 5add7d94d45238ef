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

const msgInvalidTeamID = "Invalid team id"

type TeamHandler struct {
	teamService TeamServiceInterface
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

func NewTeamHandler(teamService TeamServiceInterface, m *metrics.Metrics, logger *zap.Logger) *TeamHandler {
	return &TeamHandler{
		teamService: teamService,
		metrics:     m,
		logger:      logger,
	}
}

func (h *TeamHandler) Create(c *drift.Context) {
	var req dto.CreateTeamRequest
	if err := c.BindJSON(&req); err != nil {
		respondFailure(c, http.StatusBadRequest, msgInvalidBody, nil)
		return
	}
	if err := dto.Validate(req); err != nil {
		respondInvalid(c, err, "Name and description are required")
		return
	}

	team, err := h.teamService.Create(c.Request.Context(), req.Name, req.Description, middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, h.metrics, "create-team", err)
		return
	}

	respond(c, http.StatusCreated, team, "Team created successfully")
}

func (h *TeamHandler) List(c *drift.Context) {
	teams, err := h.teamService.List(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, h.metrics, "list-teams", err)
		return
	}

	respond(c, http.StatusOK, teams, "Teams fetched successfully")
}

func (h *TeamHandler) Update(c *drift.Context) {
	teamID, ok := parseID(c, "id")
	if !ok {
		respondFailure(c, http.StatusBadRequest, msgInvalidTeamID, nil)
		return
	}

	var req dto.UpdateTeamRequest
	if err := c.BindJSON(&req); err != nil {
		respondFailure(c, http.StatusBadRequest, msgInvalidBody, nil)
		return
	}

	team, err := h.teamService.Update(c.Request.Context(), teamID, middleware.GetUserID(c), services.UpdateTeamInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, h.logger, h.metrics, "update-team", err)
		return
	}

	respond(c, http.StatusOK, team, "Team updated successfully")
}

func (h *TeamHandler) Delete(c *drift.Context) {
	teamID, ok := parseID(c, "id")
	if !ok {
		respondFailure(c, http.StatusBadRequest, msgInvalidTeamID, nil)
		return
	}

	if err := h.teamService.Delete(c.Request.Context(), teamID, middleware.GetUserID(c)); err != nil {
		respondError(c, h.logger, h.metrics, "delete-team", err)
		return
	}

	respond(c, http.StatusOK, nil, "Team deleted successfully")
}

func (h *TeamHandler) AddMember(c *drift.Context) {
	teamID, ok := parseID(c, "id")
	if !ok {
		respondFailure(c, http.StatusBadRequest, msgInvalidTeamID, nil)
		return
	}

	var req dto.AddMemberRequest
	if err := c.BindJSON(&req); err != nil {
		respondFailure(c, http.StatusBadRequest, msgInvalidBody, nil)
		return
	}
	if err := dto.Validate(req); err != nil {
		respondInvalid(c, err, "User ID to add is required")
		return
	}

	if err := h.teamService.AddMember(c.Request.Context(), teamID, middleware.GetUserID(c), *req.UserIDToAdd); err != nil {
		respondError(c, h.logger, h.metrics, "add-member", err)
		return
	}

	respond(c, http.StatusOK, nil, "Member added successfully")
}

func (h *TeamHandler) GetMembers(c *drift.Context) {
	teamID, ok := parseID(c, "id")
	if !ok {
		respondFailure(c, http.StatusBadRequest, msgInvalidTeamID, nil)
		return
	}

	members, err := h.teamService.GetMembers(c.Request.Context(), teamID, middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, h.metrics, "list-members", err)
		return
	}

	respond(c, http.StatusOK, members, "Members fetched successfully")
}
