package api

import (
	"net/http"

	"github.com/rifkihafidz/liftly/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	planService service.PlanService,
	workoutService service.WorkoutService,
	statsService service.StatsService,
	exportService service.ExportService,
) {
	authHandler := NewAuthHandler(authService)
	planHandler := NewPlanHandler(planService)
	workoutHandler := NewWorkoutHandler(workoutService)
	statsHandler := NewStatsHandler(statsService)
	exportHandler := NewExportHandler(exportService)

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
	protected.Use(authMiddleware)
	{
		// --- Account ---
		protected.GET("/me", authHandler.Me)
		protected.PUT("/me", authHandler.UpdateMe)
		protected.DELETE("/me", authHandler.DeleteMe)

		// --- Plans ---
		planGroup := protected.Group("/plans")
		{
			planGroup.POST("", planHandler.CreatePlan)
			planGroup.GET("", planHandler.GetPlans)
			planGroup.GET("/:planId", planHandler.GetPlan)
			planGroup.PUT("/:planId", planHandler.UpdatePlan)
			planGroup.DELETE("/:planId", planHandler.DeletePlan)
		}

		// --- Workouts ---
		workoutGroup := protected.Group("/workouts")
		{
			workoutGroup.POST("", workoutHandler.CreateWorkout)
			workoutGroup.GET("", workoutHandler.GetWorkouts)
			workoutGroup.GET("/:workoutId", workoutHandler.GetWorkout)
			workoutGroup.PUT("/:workoutId", workoutHandler.UpdateWorkout)
			workoutGroup.DELETE("/:workoutId", workoutHandler.DeleteWorkout)
		}

		// --- Stats ---
		statsGroup := protected.Group("/stats")
		{
			statsGroup.POST("/summary", statsHandler.Summary)
			statsGroup.GET("/volume", statsHandler.TotalVolume)
			statsGroup.GET("/personal-records", statsHandler.PersonalRecords)
			statsGroup.GET("/exercise-volume", statsHandler.ExerciseVolume)
			statsGroup.GET("/top-exercises", statsHandler.TopExercises)
			statsGroup.GET("/average-duration", statsHandler.AverageDuration)
			statsGroup.GET("/workout-count", statsHandler.WorkoutCount)
		}

		// --- Export ---
		protected.POST("/export/workouts", exportHandler.ExportWorkouts)
	}
}
