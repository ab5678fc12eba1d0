package api

import (
	"errors"
	"net/http"

	"serenity/practice-app/internal/domain"
	"serenity/practice-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProgressHandler holds the progress service dependency.
type ProgressHandler struct {
	progressService service.ProgressService
}

// NewProgressHandler creates a new ProgressHandler.
func NewProgressHandler(progressService service.ProgressService) *ProgressHandler {
	return &ProgressHandler{progressService: progressService}
}

// --- DTOs ---

type ObjectiveProgressRequest struct {
	Progress int `json:"progress" binding:"min=0,max=100"`
}

type SessionAttendanceRequest struct {
	Attendance string `json:"attendance" binding:"required,oneof=attended missed cancelled"`
}

type SessionRatingRequest struct {
	Rating int `json:"rating" binding:"required,min=1,max=5"`
}

type HomeworkQualityRequest struct {
	Quality string `json:"quality" binding:"required,oneof=excellent good fair poor"`
}

type AddNoteRequest struct {
	Text string `json:"text" binding:"required"`
}

// --- Handler Methods ---

func (h *ProgressHandler) withIDs(c *gin.Context) (primitive.ObjectID, primitive.ObjectID, bool) {
	therapistID, ok := getTherapistID(c)
	if !ok {
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	assignmentID, ok := parseIDParam(c, "assignmentId")
	if !ok {
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	return therapistID, assignmentID, true
}

func abortWithProgressError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProgressNotFound):
		abortWithError(c, http.StatusNotFound, "Progress record not found. Initialize it first.")
	case errors.Is(err, service.ErrProgressAccessDenied):
		abortWithError(c, http.StatusForbidden, "This progress record belongs to another therapist.")
	case errors.Is(err, service.ErrAssignmentNotFound):
		abortWithError(c, http.StatusNotFound, "Assignment not found.")
	case errors.Is(err, service.ErrPlanNotFound):
		abortWithError(c, http.StatusNotFound, "Treatment plan not found.")
	default:
		abortWithError(c, http.StatusInternalServerError, "Progress operation failed.")
	}
}

// InitProgress seeds the progress record for an assignment.
func (h *ProgressHandler) InitProgress(c *gin.Context) {
	therapistID, assignmentID, ok := h.withIDs(c)
	if !ok {
		return
	}
	record, err := h.progressService.InitProgress(c.Request.Context(), therapistID, assignmentID)
	if err != nil {
		abortWithProgressError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

// GetProgress returns the raw progress record.
func (h *ProgressHandler) GetProgress(c *gin.Context) {
	therapistID, assignmentID, ok := h.withIDs(c)
	if !ok {
		return
	}
	record, err := h.progressService.GetProgress(c.Request.Context(), therapistID, assignmentID)
	if err != nil {
		abortWithProgressError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// ToggleObjective flips an objective's completion.
func (h *ProgressHandler) ToggleObjective(c *gin.Context) {
	therapistID, assignmentID, ok := h.withIDs(c)
	if !ok {
		return
	}
	record, err := h.progressService.ToggleObjective(c.Request.Context(), therapistID, assignmentID, c.Param("objectiveId"))
	if err != nil {
		abortWithProgressError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// SetObjectiveProgress records partial objective progress.
func (h *ProgressHandler) SetObjectiveProgress(c *gin.Context) {
	var req ObjectiveProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	therapistID, assignmentID, ok := h.withIDs(c)
	if !ok {
		return
	}
	record, err := h.progressService.SetObjectiveProgress(c.Request.Context(), therapistID, assignmentID, c.Param("objectiveId"), req.Progress)
	if err != nil {
		abortWithProgressError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// SetSessionAttendance records a session's attendance.
func (h *ProgressHandler) SetSessionAttendance(c *gin.Context) {
	var req SessionAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	therapistID, assignmentID, ok := h.withIDs(c)
	if !ok {
		return
	}
	record, err := h.progressService.SetSessionAttendance(c.Request.Context(), therapistID, assignmentID, c.Param("sessionId"), domain.Attendance(req.Attendance))
	if err != nil {
		abortWithProgressError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// SetSessionRating records a 1..5 rating for an attended session.
func (h *ProgressHandler) SetSessionRating(c *gin.Context) {
	var req SessionRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	therapistID, assignmentID, ok := h.withIDs(c)
	if !ok {
		return
	}
	record, err := h.progressService.SetSessionRating(c.Request.Context(), therapistID, assignmentID, c.Param("sessionId"), req.Rating)
	if err != nil {
		abortWithProgressError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// ToggleHomework flips a homework item's completion.
func (h *ProgressHandler) ToggleHomework(c *gin.Context) {
	therapistID, assignmentID, ok := h.withIDs(c)
	if !ok {
		return
	}
	record, err := h.progressService.ToggleHomework(c.Request.Context(), therapistID, assignmentID, c.Param("homeworkId"))
	if err != nil {
		abortWithProgressError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// SetHomeworkQuality evaluates completed homework.
func (h *ProgressHandler) SetHomeworkQuality(c *gin.Context) {
	var req HomeworkQualityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	therapistID, assignmentID, ok := h.withIDs(c)
	if !ok {
		return
	}
	record, err := h.progressService.SetHomeworkQuality(c.Request.Context(), therapistID, assignmentID, c.Param("homeworkId"), domain.HomeworkQuality(req.Quality))
	if err != nil {
		abortWithProgressError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// AddNote appends a free-text progress note.
func (h *ProgressHandler) AddNote(c *gin.Context) {
	var req AddNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	therapistID, assignmentID, ok := h.withIDs(c)
	if !ok {
		return
	}
	record, err := h.progressService.AddNote(c.Request.Context(), therapistID, assignmentID, req.Text)
	if err != nil {
		abortWithProgressError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// GetReport aggregates the record into a progress report.
func (h *ProgressHandler) GetReport(c *gin.Context) {
	therapistID, assignmentID, ok := h.withIDs(c)
	if !ok {
		return
	}
	report, err := h.progressService.GetReport(c.Request.Context(), therapistID, assignmentID)
	if err != nil {
		abortWithProgressError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// ArchiveReport exports the report to object storage and returns a
// time-limited download URL.
func (h *ProgressHandler) ArchiveReport(c *gin.Context) {
	therapistID, assignmentID, ok := h.withIDs(c)
	if !ok {
		return
	}
	url, err := h.progressService.ArchiveReport(c.Request.Context(), therapistID, assignmentID)
	if err != nil {
		if errors.Is(err, service.ErrReportArchiveFailed) {
			abortWithError(c, http.StatusBadGateway, "Failed to archive the report.")
			return
		}
		abortWithProgressError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"downloadUrl": url})
}
