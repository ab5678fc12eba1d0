package api

import (
	"errors"
	"net/http"
	"time"

	"serenity/practice-app/internal/domain"
	"serenity/practice-app/internal/schedule"
	"serenity/practice-app/internal/service"

	"github.com/gin-gonic/gin"
)

// PlanHandler holds the plan service and schedule generator dependencies.
type PlanHandler struct {
	planService service.PlanService
	scheduler   schedule.Generator
}

// NewPlanHandler creates a new PlanHandler.
func NewPlanHandler(planService service.PlanService, scheduler schedule.Generator) *PlanHandler {
	return &PlanHandler{planService: planService, scheduler: scheduler}
}

// --- DTOs ---

// PlanRequest defines the expected JSON for creating or updating a plan.
type PlanRequest struct {
	Name            string   `json:"name" binding:"required"`
	Description     string   `json:"description"`
	Type            string   `json:"type" binding:"omitempty"` // e.g. "anxiety", "depression"
	Status          string   `json:"status" binding:"omitempty,oneof=draft active archived"`
	DurationWeeks   int      `json:"durationWeeks" binding:"required,min=1"`
	SessionsPerWeek int      `json:"sessionsPerWeek" binding:"required,min=1,max=7"`
	TotalSessions   int      `json:"totalSessions" binding:"omitempty,min=0"`
	Objectives      []string `json:"objectives"`
	Techniques      []string `json:"techniques"`
	Homework        []string `json:"homework"`
}

// SchedulePreviewRequest asks for the calendar a plan would generate without
// assigning anything.
type SchedulePreviewRequest struct {
	StartDate              string `json:"startDate" binding:"required"` // "2006-01-02"
	PreferredTime          string `json:"preferredTime" binding:"omitempty"`
	SessionDurationMinutes int    `json:"sessionDurationMinutes" binding:"omitempty,min=1"`
}

// PlanResponse is the DTO for returning plan details.
type PlanResponse struct {
	ID              string    `json:"id"`
	TherapistID     string    `json:"therapistId"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	Type            string    `json:"type,omitempty"`
	Status          string    `json:"status"`
	DurationWeeks   int       `json:"durationWeeks"`
	SessionsPerWeek int       `json:"sessionsPerWeek"`
	TotalSessions   int       `json:"totalSessions"`
	Objectives      []string  `json:"objectives,omitempty"`
	Techniques      []string  `json:"techniques,omitempty"`
	Homework        []string  `json:"homework,omitempty"`
	AssignedClients int       `json:"assignedClients"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func mapPlanToResponse(p *domain.TreatmentPlan) PlanResponse {
	if p == nil {
		return PlanResponse{}
	}
	return PlanResponse{
		ID:              p.ID.Hex(),
		TherapistID:     p.TherapistID.Hex(),
		Name:            p.Name,
		Description:     p.Description,
		Type:            p.Type,
		Status:          string(p.Status),
		DurationWeeks:   p.DurationWeeks,
		SessionsPerWeek: p.SessionsPerWeek,
		TotalSessions:   p.EffectiveTotalSessions(),
		Objectives:      p.Objectives,
		Techniques:      p.Techniques,
		Homework:        p.Homework,
		AssignedClients: p.AssignedClients,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func mapPlansToResponse(plans []domain.TreatmentPlan) []PlanResponse {
	responses := make([]PlanResponse, len(plans))
	for i := range plans {
		responses[i] = mapPlanToResponse(&plans[i])
	}
	return responses
}

func planInputFromRequest(req PlanRequest) service.PlanInput {
	return service.PlanInput{
		Name:            req.Name,
		Description:     req.Description,
		Type:            req.Type,
		Status:          domain.PlanStatus(req.Status),
		DurationWeeks:   req.DurationWeeks,
		SessionsPerWeek: req.SessionsPerWeek,
		TotalSessions:   req.TotalSessions,
		Objectives:      req.Objectives,
		Techniques:      req.Techniques,
		Homework:        req.Homework,
	}
}

func abortWithPlanError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPlanNotFound):
		abortWithError(c, http.StatusNotFound, "Treatment plan not found.")
	case errors.Is(err, service.ErrPlanAccessDenied):
		abortWithError(c, http.StatusForbidden, "You do not own this plan.")
	case errors.Is(err, service.ErrPlanValidation):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrPlanHasAssignments):
		abortWithError(c, http.StatusConflict, "Plan has assigned clients and cannot be deleted or archived.")
	default:
		abortWithError(c, http.StatusInternalServerError, "Plan operation failed.")
	}
}

// --- Handler Methods ---

// CreatePlan creates a new treatment plan for the authenticated therapist.
func (h *PlanHandler) CreatePlan(c *gin.Context) {
	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	therapistID, ok := getTherapistID(c)
	if !ok {
		return
	}

	plan, err := h.planService.CreatePlan(c.Request.Context(), therapistID, planInputFromRequest(req))
	if err != nil {
		abortWithPlanError(c, err)
		return
	}
	c.JSON(http.StatusCreated, mapPlanToResponse(plan))
}

// GetPlans lists the authenticated therapist's plans.
func (h *PlanHandler) GetPlans(c *gin.Context) {
	therapistID, ok := getTherapistID(c)
	if !ok {
		return
	}

	plans, err := h.planService.GetPlansByTherapist(c.Request.Context(), therapistID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve plans.")
		return
	}
	if plans == nil {
		c.JSON(http.StatusOK, []PlanResponse{})
		return
	}
	c.JSON(http.StatusOK, mapPlansToResponse(plans))
}

// GetPlanByID returns one plan.
func (h *PlanHandler) GetPlanByID(c *gin.Context) {
	if _, ok := getTherapistID(c); !ok {
		return
	}
	planID, ok := parseIDParam(c, "planId")
	if !ok {
		return
	}

	plan, err := h.planService.GetPlanByID(c.Request.Context(), planID)
	if err != nil {
		abortWithPlanError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapPlanToResponse(plan))
}

// UpdatePlan replaces a plan's editable fields.
func (h *PlanHandler) UpdatePlan(c *gin.Context) {
	var req PlanRequest
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

	plan, err := h.planService.UpdatePlan(c.Request.Context(), therapistID, planID, planInputFromRequest(req))
	if err != nil {
		abortWithPlanError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapPlanToResponse(plan))
}

// DeletePlan removes a plan with no assigned clients.
func (h *PlanHandler) DeletePlan(c *gin.Context) {
	therapistID, ok := getTherapistID(c)
	if !ok {
		return
	}
	planID, ok := parseIDParam(c, "planId")
	if !ok {
		return
	}

	if err := h.planService.DeletePlan(c.Request.Context(), therapistID, planID); err != nil {
		abortWithPlanError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ClonePlan duplicates a plan as a fresh draft.
func (h *PlanHandler) ClonePlan(c *gin.Context) {
	therapistID, ok := getTherapistID(c)
	if !ok {
		return
	}
	planID, ok := parseIDParam(c, "planId")
	if !ok {
		return
	}

	clone, err := h.planService.ClonePlan(c.Request.Context(), therapistID, planID)
	if err != nil {
		abortWithPlanError(c, err)
		return
	}
	c.JSON(http.StatusCreated, mapPlanToResponse(clone))
}

// ArchivePlan marks the plan archived.
func (h *PlanHandler) ArchivePlan(c *gin.Context) {
	therapistID, ok := getTherapistID(c)
	if !ok {
		return
	}
	planID, ok := parseIDParam(c, "planId")
	if !ok {
		return
	}

	plan, err := h.planService.ArchivePlan(c.Request.Context(), therapistID, planID)
	if err != nil {
		abortWithPlanError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapPlanToResponse(plan))
}

// PreviewSchedule generates the calendar a plan would produce from a given
// start date, without creating any assignment.
func (h *PlanHandler) PreviewSchedule(c *gin.Context) {
	var req SchedulePreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	if _, ok := getTherapistID(c); !ok {
		return
	}
	planID, ok := parseIDParam(c, "planId")
	if !ok {
		return
	}

	plan, err := h.planService.GetPlanByID(c.Request.Context(), planID)
	if err != nil {
		abortWithPlanError(c, err)
		return
	}

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "startDate must be formatted as YYYY-MM-DD.")
		return
	}
	preferredTime := req.PreferredTime
	if preferredTime == "" {
		preferredTime = "10:00"
	}
	duration := req.SessionDurationMinutes
	if duration <= 0 {
		duration = 60
	}

	sessions, err := h.scheduler.Generate(schedule.Params{
		StartDate:       startDate,
		SessionsPerWeek: plan.SessionsPerWeek,
		TotalSessions:   plan.EffectiveTotalSessions(),
		PreferredTime:   preferredTime,
		DurationMinutes: duration,
	})
	if err != nil {
		if errors.Is(err, schedule.ErrInvalidCadence) || errors.Is(err, schedule.ErrInvalidInput) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to generate schedule.")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}
