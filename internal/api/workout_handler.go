package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rifkihafidz/liftly/internal/domain"
	"github.com/rifkihafidz/liftly/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DateLayout is the wire format for calendar days.
const DateLayout = "2006-01-02"

// WorkoutHandler holds the workout service dependency.
type WorkoutHandler struct {
	workoutService service.WorkoutService
}

// NewWorkoutHandler creates a new WorkoutHandler.
func NewWorkoutHandler(workoutService service.WorkoutService) *WorkoutHandler {
	return &WorkoutHandler{workoutService: workoutService}
}

// --- Request Structs ---

// WorkoutRequest is the desired state of a workout: the tree the
// caller wants persisted. The same body serves create and update; on
// update, nodes carrying an id are matched against the stored tree.
type WorkoutRequest struct {
	WorkoutDate string                   `json:"workoutDate" binding:"required"` // "2006-01-02"
	StartedAt   string                   `json:"startedAt"`                      // "15:04:05", optional
	EndedAt     string                   `json:"endedAt"`                        // "15:04:05", optional
	PlanID      *string                  `json:"planId"`
	Exercises   []WorkoutExerciseRequest `json:"exercises"`
}

type WorkoutExerciseRequest struct {
	ID      *string             `json:"id"`
	Name    string              `json:"name" binding:"required"`
	Order   int                 `json:"order"`
	Skipped bool                `json:"skipped"`
	Sets    []WorkoutSetRequest `json:"sets"`
}

type WorkoutSetRequest struct {
	ID        *string             `json:"id"`
	SetNumber int                 `json:"setNumber"`
	Segments  []SetSegmentRequest `json:"segments"`
}

type SetSegmentRequest struct {
	ID           *string `json:"id"`
	Weight       float64 `json:"weight" binding:"gte=0"`
	RepsFrom     int     `json:"repsFrom"`
	RepsTo       int     `json:"repsTo"`
	SegmentOrder int     `json:"segmentOrder"`
	Notes        string  `json:"notes"`
}

// toDraft converts the wire representation into the service's draft
// tree, parsing date, time-of-day and id strings.
func (r *WorkoutRequest) toDraft() (*service.WorkoutDraft, error) {
	date, err := time.Parse(DateLayout, r.WorkoutDate)
	if err != nil {
		return nil, fmt.Errorf("invalid workoutDate %q, expected YYYY-MM-DD", r.WorkoutDate)
	}

	draft := &service.WorkoutDraft{WorkoutDate: date}

	if r.StartedAt != "" {
		t, err := domain.ParseTimeOfDay(r.StartedAt)
		if err != nil {
			return nil, err
		}
		draft.StartedAt = &t
	}
	if r.EndedAt != "" {
		t, err := domain.ParseTimeOfDay(r.EndedAt)
		if err != nil {
			return nil, err
		}
		draft.EndedAt = &t
	}
	if r.PlanID != nil {
		planID, err := primitive.ObjectIDFromHex(*r.PlanID)
		if err != nil {
			return nil, fmt.Errorf("invalid planId %q", *r.PlanID)
		}
		draft.PlanID = &planID
	}

	for _, e := range r.Exercises {
		exerciseDraft := service.ExerciseDraft{
			Name:    e.Name,
			Order:   e.Order,
			Skipped: e.Skipped,
		}
		if exerciseDraft.ID, err = parseOptionalID(e.ID, "exercise"); err != nil {
			return nil, err
		}
		for _, s := range e.Sets {
			setDraft := service.SetDraft{SetNumber: s.SetNumber}
			if setDraft.ID, err = parseOptionalID(s.ID, "set"); err != nil {
				return nil, err
			}
			for _, seg := range s.Segments {
				segmentDraft := service.SegmentDraft{
					Weight:       seg.Weight,
					RepsFrom:     seg.RepsFrom,
					RepsTo:       seg.RepsTo,
					SegmentOrder: seg.SegmentOrder,
					Notes:        seg.Notes,
				}
				if segmentDraft.ID, err = parseOptionalID(seg.ID, "segment"); err != nil {
					return nil, err
				}
				setDraft.Segments = append(setDraft.Segments, segmentDraft)
			}
			exerciseDraft.Sets = append(exerciseDraft.Sets, setDraft)
		}
		draft.Exercises = append(draft.Exercises, exerciseDraft)
	}

	return draft, nil
}

func parseOptionalID(raw *string, kind string) (*primitive.ObjectID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	id, err := primitive.ObjectIDFromHex(*raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s id %q", kind, *raw)
	}
	return &id, nil
}

// --- Handler Methods ---

// CreateWorkout godoc
// @Summary Log a new workout
// @Description Creates a workout with its full exercise/set/segment tree.
// @Tags Workouts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param workout body WorkoutRequest true "Workout to log"
// @Success 201 {object} domain.Workout
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 404 {object} gin.H "Referenced plan not found"
// @Router /workouts [post]
func (h *WorkoutHandler) CreateWorkout(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req WorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	draft, err := req.toDraft()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	workout, err := h.workoutService.CreateWorkout(c.Request.Context(), userID, draft)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, workout)
}

// GetWorkouts godoc
// @Summary List the authenticated user's workouts
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.Workout
// @Router /workouts [get]
func (h *WorkoutHandler) GetWorkouts(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	workouts, err := h.workoutService.GetWorkouts(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to fetch workouts")
		return
	}
	if workouts == nil {
		workouts = []domain.Workout{}
	}

	c.JSON(http.StatusOK, workouts)
}

// GetWorkout godoc
// @Summary Get a single workout
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Param workoutId path string true "Workout ID"
// @Success 200 {object} domain.Workout
// @Failure 404 {object} gin.H "Workout not found"
// @Router /workouts/{workoutId} [get]
func (h *WorkoutHandler) GetWorkout(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	workoutID, err := primitive.ObjectIDFromHex(c.Param("workoutId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid workout ID format")
		return
	}

	workout, err := h.workoutService.GetWorkout(c.Request.Context(), userID, workoutID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, workout)
}

// UpdateWorkout godoc
// @Summary Update a workout
// @Description Merges the submitted tree into the stored workout. Items
// @Description with ids update existing children; items without ids are
// @Description created; an empty exercise, set or segment list clears
// @Description that level entirely.
// @Tags Workouts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param workoutId path string true "Workout ID"
// @Param workout body WorkoutRequest true "Desired workout state"
// @Success 200 {object} domain.Workout
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 404 {object} gin.H "Workout or referenced plan not found"
// @Router /workouts/{workoutId} [put]
func (h *WorkoutHandler) UpdateWorkout(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	workoutID, err := primitive.ObjectIDFromHex(c.Param("workoutId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid workout ID format")
		return
	}

	var req WorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	draft, err := req.toDraft()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	workout, err := h.workoutService.UpdateWorkout(c.Request.Context(), userID, workoutID, draft)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, workout)
}

// DeleteWorkout godoc
// @Summary Delete a workout
// @Description Removes the workout and all of its exercises, sets and segments.
// @Tags Workouts
// @Security BearerAuth
// @Param workoutId path string true "Workout ID"
// @Success 204 "Workout deleted"
// @Failure 404 {object} gin.H "Workout not found"
// @Router /workouts/{workoutId} [delete]
func (h *WorkoutHandler) DeleteWorkout(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	workoutID, err := primitive.ObjectIDFromHex(c.Param("workoutId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid workout ID format")
		return
	}

	if err := h.workoutService.DeleteWorkout(c.Request.Context(), userID, workoutID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *WorkoutHandler) handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrWorkoutNotFound),
		errors.Is(err, service.ErrPlanNotFound),
		errors.Is(err, service.ErrUserNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrWorkoutValidation):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
