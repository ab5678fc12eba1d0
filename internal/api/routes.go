package api

import (
	"net/http"

	"serenity/practice-app/internal/domain"
	"serenity/practice-app/internal/schedule"
	"serenity/practice-app/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	planService service.PlanService,
	clientService service.ClientService,
	bulkService service.BulkAssignmentService,
	assignmentService service.AssignmentService,
	progressService service.ProgressService,
) {
	authHandler := NewAuthHandler(authService)
	planHandler := NewPlanHandler(planService, schedule.NewGenerator())
	clientHandler := NewClientHandler(clientService)
	assignmentHandler := NewAssignmentHandler(bulkService, assignmentService)
	progressHandler := NewProgressHandler(progressService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware, RoleMiddleware(domain.RoleTherapist))
	{
		protected.GET("/me", func(c *gin.Context) {
			userIDStr, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			c.JSON(http.StatusOK, gin.H{"userId": userIDStr, "role": domain.RoleTherapist})
		})

		// --- Treatment Plan Routes ---
		planGroup := protected.Group("/plans")
		{
			planGroup.POST("", planHandler.CreatePlan)
			planGroup.GET("", planHandler.GetPlans)
			planGroup.GET("/:planId", planHandler.GetPlanByID)
			planGroup.PUT("/:planId", planHandler.UpdatePlan)
			planGroup.DELETE("/:planId", planHandler.DeletePlan)
			planGroup.POST("/:planId/clone", planHandler.ClonePlan)
			planGroup.POST("/:planId/archive", planHandler.ArchivePlan)
			planGroup.POST("/:planId/schedule-preview", planHandler.PreviewSchedule)

			// Bulk assignment of one plan to many clients.
			planGroup.POST("/:planId/assignments", assignmentHandler.BulkAssign)
			planGroup.GET("/:planId/assignments", assignmentHandler.GetAssignmentsForPlan)
		}

		// --- Client Roster Routes ---
		clientGroup := protected.Group("/clients")
		{
			clientGroup.POST("", clientHandler.CreateClient)
			clientGroup.GET("", clientHandler.GetClients)
			clientGroup.GET("/:clientId", clientHandler.GetClientByID)
			clientGroup.GET("/:clientId/assignments", assignmentHandler.GetAssignmentsForClient)
		}

		// --- Assignment & Progress Routes ---
		assignmentGroup := protected.Group("/assignments")
		{
			assignmentGroup.PATCH("/:assignmentId/status", assignmentHandler.UpdateAssignmentStatus)

			progressGroup := assignmentGroup.Group("/:assignmentId/progress")
			{
				progressGroup.POST("", progressHandler.InitProgress)
				progressGroup.GET("", progressHandler.GetProgress)
				progressGroup.POST("/objectives/:objectiveId/toggle", progressHandler.ToggleObjective)
				progressGroup.PUT("/objectives/:objectiveId", progressHandler.SetObjectiveProgress)
				progressGroup.PUT("/sessions/:sessionId/attendance", progressHandler.SetSessionAttendance)
				progressGroup.PUT("/sessions/:sessionId/rating", progressHandler.SetSessionRating)
				progressGroup.POST("/homework/:homeworkId/toggle", progressHandler.ToggleHomework)
				progressGroup.PUT("/homework/:homeworkId/quality", progressHandler.SetHomeworkQuality)
				progressGroup.POST("/notes", progressHandler.AddNote)
				progressGroup.GET("/report", progressHandler.GetReport)
				progressGroup.POST("/report/archive", progressHandler.ArchiveReport)
			}
		}
	}
}
