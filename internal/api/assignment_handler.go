package api

import (
	"errors"
	"net/http"
	"time"

	"serenity/practice-app/internal/domain"
	"serenity/practice-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AssignmentHandler holds the bulk assignment and assignment services.
type AssignmentHandler struct {
	bulkService       service.BulkAssignmentService
	assignmentService service.AssignmentService
}

// NewAssignmentHandler creates a new AssignmentHandler.
func NewAssignmentHandler(bulkService service.BulkAssignmentService, assignmentService service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{
		bulkService:       bulkService,
		assignmentService: assignmentService,
	}
}

// --- DTOs ---

// BulkAssignRequest assigns one plan to a batch of clients.
type BulkAssignRequest struct {
	ClientIDs              []string `json:"clientIds" binding:"required"`
	StartDate              string   `json:"startDate" binding:"omitempty"` // "2006-01-02", defaults to today
	Notes                  string   `json:"notes"`
	AutoSchedule           bool     `json:"autoSchedule"`
	PreferredTime          string   `json:"preferredTime" binding:"omitempty"`
	SessionDurationMinutes int      `json:"sessionDurationMinutes" binding:"omitempty,min=1"`
}

type UpdateAssignmentStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=completed cancelled"`
}

type AssignmentResponse struct {
	ID          string                    `json:"id"`
	PlanID      string                    `json:"planId"`
	ClientID    string                    `json:"clientId"`
	TherapistID string                    `json:"therapistId"`
	StartDate   time.Time                 `json:"startDate"`
	Notes       string                    `json:"notes,omitempty"`
	Status      string                    `json:"status"`
	Schedule    []domain.ScheduledSession `json:"schedule,omitempty"`
	AssignedAt  time.Time                 `json:"assignedAt"`
	UpdatedAt   time.Time                 `json:"updatedAt"`
}

func mapAssignmentToResponse(a *domain.PlanAssignment) AssignmentResponse {
	if a == nil {
		return AssignmentResponse{}
	}
	return AssignmentResponse{
		ID:          a.ID.Hex(),
		PlanID:      a.PlanID.Hex(),
		ClientID:    a.ClientID.Hex(),
		TherapistID: a.TherapistID.Hex(),
		StartDate:   a.StartDate,
		Notes:       a.Notes,
		Status:      string(a.Status),
		Schedule:    a.Schedule,
		AssignedAt:  a.AssignedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func mapAssignmentsToResponse(assignments []domain.PlanAssignment) []AssignmentResponse {
	responses := make([]AssignmentResponse, len(assignments))
	for i := range assignments {
		responses[i] = mapAssignmentToResponse(&assignments[i])
	}
	return responses
}

// --- Handler Methods ---

// BulkAssign assigns the plan in the path to every client in the request
// body, returning the per-client outcome buckets.
func (h *AssignmentHandler) BulkAssign(c *gin.Context) {
	var req BulkAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	therapistID, ok := getTherapistID(c)
	if !ok {
		return
	}
	planID, ok := parseIDParam(c, "planId")
	if !ok {
		return
	}

	clientIDs := make([]primitive.ObjectID, 0, len(req.ClientIDs))
	for _, idStr := range req.ClientIDs {
		id, err := primitive.ObjectIDFromHex(idStr)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid client ID: "+idStr)
			return
		}
		clientIDs = append(clientIDs, id)
	}

	settings := domain.AssignmentSettings{
		Notes:                  req.Notes,
		AutoSchedule:           req.AutoSchedule,
		PreferredTime:          req.PreferredTime,
		SessionDurationMinutes: req.SessionDurationMinutes,
	}
	if req.StartDate != "" {
		startDate, err := time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "startDate must be formatted as YYYY-MM-DD.")
			return
		}
		settings.StartDate = startDate
	}

	result, err := h.bulkService.AssignByIDs(c.Request.Context(), therapistID, planID, clientIDs, settings)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPlanNotFound):
			abortWithError(c, http.StatusNotFound, "Treatment plan not found.")
		case errors.Is(err, service.ErrPlanAccessDenied):
			abortWithError(c, http.StatusForbidden, "You do not own this plan.")
		case errors.Is(err, service.ErrNilClientBatch), errors.Is(err, service.ErrBatchValidation):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Bulk assignment failed.")
		}
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetAssignmentsForPlan lists assignments of one plan.
func (h *AssignmentHandler) GetAssignmentsForPlan(c *gin.Context) {
	therapistID, ok := getTherapistID(c)
	if !ok {
		return
	}
	planID, ok := parseIDParam(c, "planId")
	if !ok {
		return
	}

	assignments, err := h.assignmentService.GetAssignmentsByPlan(c.Request.Context(), therapistID, planID)
	if err != nil {
		abortWithAssignmentError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapAssignmentsToResponse(assignments))
}

// GetAssignmentsForClient lists one client's assignments.
func (h *AssignmentHandler) GetAssignmentsForClient(c *gin.Context) {
	therapistID, ok := getTherapistID(c)
	if !ok {
		return
	}
	clientID, ok := parseIDParam(c, "clientId")
	if !ok {
		return
	}

	assignments, err := h.assignmentService.GetAssignmentsByClient(c.Request.Context(), therapistID, clientID)
	if err != nil {
		abortWithAssignmentError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapAssignmentsToResponse(assignments))
}

// UpdateAssignmentStatus completes or cancels an active assignment.
func (h *AssignmentHandler) UpdateAssignmentStatus(c *gin.Context) {
	var req UpdateAssignmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	therapistID, ok := getTherapistID(c)
	if !ok {
		return
	}
	assignmentID, ok := parseIDParam(c, "assignmentId")
	if !ok {
		return
	}

	assignment, err := h.assignmentService.UpdateAssignmentStatus(
		c.Request.Context(), therapistID, assignmentID, domain.AssignmentStatus(req.Status))
	if err != nil {
		if errors.Is(err, service.ErrInvalidStatusChange) {
			abortWithError(c, http.StatusConflict, err.Error())
			return
		}
		abortWithAssignmentError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapAssignmentToResponse(assignment))
}

func abortWithAssignmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAssignmentNotFound):
		abortWithError(c, http.StatusNotFound, "Assignment not found.")
	case errors.Is(err, service.ErrAssignmentAccessDenied):
		abortWithError(c, http.StatusForbidden, "This assignment belongs to another therapist.")
	case errors.Is(err, service.ErrPlanNotFound):
		abortWithError(c, http.StatusNotFound, "Treatment plan not found.")
	case errors.Is(err, service.ErrPlanAccessDenied):
		abortWithError(c, http.StatusForbidden, "You do not own this plan.")
	case errors.Is(err, service.ErrClientNotFound):
		abortWithError(c, http.StatusNotFound, "Client not found.")
	case errors.Is(err, service.ErrClientAccessDenied):
		abortWithError(c, http.StatusForbidden, "This client belongs to another therapist.")
	default:
		abortWithError(c, http.StatusInternalServerError, "Assignment operation failed.")
	}
}
