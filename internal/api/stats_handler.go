package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rifkihafidz/liftly/internal/service"

	"github.com/gin-gonic/gin"
)

// StatsHandler holds the stats service dependency.
type StatsHandler struct {
	statsService service.StatsService
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(statsService service.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// StatsRangeRequest is the body of the summary endpoint.
type StatsRangeRequest struct {
	StartDate string `json:"startDate" binding:"required"` // "2006-01-02"
	EndDate   string `json:"endDate" binding:"required"`   // "2006-01-02"
}

// normalizeRange widens two calendar days into the closed interval
// [start 00:00:00, end 23:59:59] the stats engine expects.
func normalizeRange(startDate, endDate string) (time.Time, time.Time, error) {
	start, err := time.Parse(DateLayout, startDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid startDate %q, expected YYYY-MM-DD", startDate)
	}
	end, err := time.Parse(DateLayout, endDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid endDate %q, expected YYYY-MM-DD", endDate)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("endDate %s is before startDate %s", endDate, startDate)
	}
	endOfDay := time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 0, end.Location())
	return start, endOfDay, nil
}

// rangeFromQuery reads startDate/endDate query parameters.
func rangeFromQuery(c *gin.Context) (time.Time, time.Time, bool) {
	start, end, err := normalizeRange(c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// --- Handler Methods ---

// Summary godoc
// @Summary Stats summary for a date range
// @Description Returns every stats metric plus the workouts of the
// @Description range in one response, for the stats dashboard.
// @Tags Stats
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param range body StatsRangeRequest true "Date range (inclusive)"
// @Success 200 {object} service.StatsSummary
// @Failure 400 {object} gin.H "Invalid date range"
// @Router /stats/summary [post]
func (h *StatsHandler) Summary(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req StatsRangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	start, end, err := normalizeRange(req.StartDate, req.EndDate)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	summary, err := h.statsService.Summary(c.Request.Context(), userID, start, end)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// TotalVolume godoc
// @Summary Total training volume in a date range
// @Tags Stats
// @Produce json
// @Security BearerAuth
// @Param startDate query string true "Range start (YYYY-MM-DD)"
// @Param endDate query string true "Range end (YYYY-MM-DD)"
// @Success 200 {object} gin.H "totalVolume"
// @Router /stats/volume [get]
func (h *StatsHandler) TotalVolume(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	start, end, ok := rangeFromQuery(c)
	if !ok {
		return
	}

	volume, err := h.statsService.TotalVolume(c.Request.Context(), userID, start, end)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"totalVolume": volume})
}

// PersonalRecords godoc
// @Summary All-time personal records
// @Description Maximum weight ever logged per exercise name, across
// @Description every workout the user owns, skipped exercises excluded.
// @Tags Stats
// @Produce json
// @Security BearerAuth
// @Success 200 {array} service.ExerciseMetric
// @Router /stats/personal-records [get]
func (h *StatsHandler) PersonalRecords(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	records, err := h.statsService.PersonalRecords(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, records)
}

// ExerciseVolume godoc
// @Summary Per-exercise volume in a date range
// @Tags Stats
// @Produce json
// @Security BearerAuth
// @Param startDate query string true "Range start (YYYY-MM-DD)"
// @Param endDate query string true "Range end (YYYY-MM-DD)"
// @Success 200 {array} service.ExerciseMetric
// @Router /stats/exercise-volume [get]
func (h *StatsHandler) ExerciseVolume(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	start, end, ok := rangeFromQuery(c)
	if !ok {
		return
	}

	volumes, err := h.statsService.ExerciseVolume(c.Request.Context(), userID, start, end)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, volumes)
}

// TopExercises godoc
// @Summary Top exercises by volume in a date range
// @Tags Stats
// @Produce json
// @Security BearerAuth
// @Param startDate query string true "Range start (YYYY-MM-DD)"
// @Param endDate query string true "Range end (YYYY-MM-DD)"
// @Param limit query int false "Ranking size" default(10)
// @Success 200 {array} service.ExerciseMetric
// @Router /stats/top-exercises [get]
func (h *StatsHandler) TopExercises(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	start, end, ok := rangeFromQuery(c)
	if !ok {
		return
	}

	limit := service.DefaultTopExercises
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, fmt.Sprintf("invalid limit %q", raw))
			return
		}
		limit = parsed
	}

	top, err := h.statsService.TopExercisesByVolume(c.Request.Context(), userID, start, end, limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, top)
}

// AverageDuration godoc
// @Summary Average workout duration in minutes
// @Description Only workouts with both a start and an end time count.
// @Tags Stats
// @Produce json
// @Security BearerAuth
// @Param startDate query string true "Range start (YYYY-MM-DD)"
// @Param endDate query string true "Range end (YYYY-MM-DD)"
// @Success 200 {object} gin.H "averageDurationMinutes"
// @Router /stats/average-duration [get]
func (h *StatsHandler) AverageDuration(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	start, end, ok := rangeFromQuery(c)
	if !ok {
		return
	}

	minutes, err := h.statsService.AverageDuration(c.Request.Context(), userID, start, end)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"averageDurationMinutes": minutes})
}

// WorkoutCount godoc
// @Summary Number of workouts in a date range
// @Tags Stats
// @Produce json
// @Security BearerAuth
// @Param startDate query string true "Range start (YYYY-MM-DD)"
// @Param endDate query string true "Range end (YYYY-MM-DD)"
// @Success 200 {object} gin.H "workoutCount"
// @Router /stats/workout-count [get]
func (h *StatsHandler) WorkoutCount(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	start, end, ok := rangeFromQuery(c)
	if !ok {
		return
	}

	count, err := h.statsService.WorkoutCount(c.Request.Context(), userID, start, end)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"workoutCount": count})
}

func (h *StatsHandler) handleServiceError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrUserNotFound) {
		abortWithError(c, http.StatusNotFound, err.Error())
		return
	}
	abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
}
