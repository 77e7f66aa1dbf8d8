package service

import (
	"context"
	"testing"
	"time"

	"github.com/rifkihafidz/liftly/internal/domain"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type workoutServiceFixture struct {
	svc         WorkoutService
	user        *domain.User
	plan        *domain.Plan
	workoutRepo *fakeWorkoutRepo
	cache       *fakeSummaryCache
}

func newWorkoutServiceFixture(t *testing.T) *workoutServiceFixture {
	t.Helper()
	user := &domain.User{ID: primitive.NewObjectID(), Email: "lifter@example.com", Active: true}
	plan := &domain.Plan{ID: primitive.NewObjectID(), UserID: user.ID, Name: "Push Day"}
	workoutRepo := newFakeWorkoutRepo()
	cache := newFakeSummaryCache()
	return &workoutServiceFixture{
		svc: NewWorkoutService(
			workoutRepo,
			newFakeUserRepo(user),
			newFakePlanRepo(plan),
			cache,
			logrus.New(),
		),
		user:        user,
		plan:        plan,
		workoutRepo: workoutRepo,
		cache:       cache,
	}
}

func TestWorkoutService_CreateWorkout(t *testing.T) {
	f := newWorkoutServiceFixture(t)

	created, err := f.svc.CreateWorkout(context.Background(), f.user.ID, benchDraft())
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.False(t, created.ID.IsZero())
	assert.Equal(t, f.user.ID, created.UserID)
	require.Len(t, created.Exercises, 2)
	// Identity is assigned on save, down to the segment level.
	assert.False(t, created.Exercises[0].ID.IsZero())
	assert.False(t, created.Exercises[0].Sets[0].ID.IsZero())
	assert.False(t, created.Exercises[0].Sets[0].Segments[0].ID.IsZero())
	assert.False(t, created.CreatedAt.IsZero())

	stored, err := f.workoutRepo.GetByIDAndUser(context.Background(), created.ID, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bench Press", stored.Exercises[0].Name)

	assert.Equal(t, []string{f.user.ID.Hex()}, f.cache.invalidated)
}

func TestWorkoutService_CreateWorkout_WithPlanReference(t *testing.T) {
	f := newWorkoutServiceFixture(t)

	draft := benchDraft()
	draft.PlanID = &f.plan.ID
	created, err := f.svc.CreateWorkout(context.Background(), f.user.ID, draft)
	require.NoError(t, err)
	require.NotNil(t, created.PlanID)
	assert.Equal(t, f.plan.ID, *created.PlanID)
}

func TestWorkoutService_CreateWorkout_UnknownPlan(t *testing.T) {
	f := newWorkoutServiceFixture(t)

	unknown := primitive.NewObjectID()
	draft := benchDraft()
	draft.PlanID = &unknown
	_, err := f.svc.CreateWorkout(context.Background(), f.user.ID, draft)
	require.ErrorIs(t, err, ErrPlanNotFound)

	// The bad reference aborts before any write.
	workouts, err := f.workoutRepo.GetAllByUser(context.Background(), f.user.ID)
	require.NoError(t, err)
	assert.Empty(t, workouts)
	assert.Empty(t, f.cache.invalidated)
}

func TestWorkoutService_CreateWorkout_UnknownUser(t *testing.T) {
	f := newWorkoutServiceFixture(t)
	_, err := f.svc.CreateWorkout(context.Background(), primitive.NewObjectID(), benchDraft())
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestWorkoutService_CreateWorkout_InvalidDraft(t *testing.T) {
	f := newWorkoutServiceFixture(t)
	draft := benchDraft()
	draft.WorkoutDate = time.Time{}
	_, err := f.svc.CreateWorkout(context.Background(), f.user.ID, draft)
	require.ErrorIs(t, err, ErrWorkoutValidation)
}

func TestWorkoutService_UpdateWorkout(t *testing.T) {
	f := newWorkoutServiceFixture(t)

	created, err := f.svc.CreateWorkout(context.Background(), f.user.ID, benchDraft())
	require.NoError(t, err)

	update := benchDraft()
	update.Exercises = []ExerciseDraft{
		{
			ID:    idPtr(created.Exercises[0].ID),
			Name:  "Paused Bench Press",
			Order: 1,
			Sets: []SetDraft{
				{
					ID:        idPtr(created.Exercises[0].Sets[0].ID),
					SetNumber: 1,
					Segments: []SegmentDraft{
						{Weight: 70, RepsFrom: 1, RepsTo: 5, SegmentOrder: 1},
					},
				},
			},
		},
	}
	updated, err := f.svc.UpdateWorkout(context.Background(), f.user.ID, created.ID, update)
	require.NoError(t, err)

	// The matched exercise is renamed in place, the unmentioned one
	// survives.
	require.Len(t, updated.Exercises, 2)
	assert.Equal(t, created.Exercises[0].ID, updated.Exercises[0].ID)
	assert.Equal(t, "Paused Bench Press", updated.Exercises[0].Name)
	assert.Equal(t, "Overhead Press", updated.Exercises[1].Name)

	// The second set was omitted from a non-empty list, so it stays.
	require.Len(t, updated.Exercises[0].Sets, 2)
	// The draft segment carried no ID, so it was appended beside the
	// two retained ones and got fresh identity on save.
	segments := updated.Exercises[0].Sets[0].Segments
	require.Len(t, segments, 3)
	assert.Equal(t, 70.0, segments[2].Weight)
	assert.False(t, segments[2].ID.IsZero())
	assert.Equal(t, created.Exercises[0].Sets[0].Segments[0].ID, segments[0].ID)

	assert.Len(t, f.cache.invalidated, 2)
}

func TestWorkoutService_UpdateWorkout_NotFound(t *testing.T) {
	f := newWorkoutServiceFixture(t)
	_, err := f.svc.UpdateWorkout(context.Background(), f.user.ID, primitive.NewObjectID(), benchDraft())
	require.ErrorIs(t, err, ErrWorkoutNotFound)
}

func TestWorkoutService_UpdateWorkout_OtherUsersWorkout(t *testing.T) {
	f := newWorkoutServiceFixture(t)

	stranger := &domain.Workout{
		ID:          primitive.NewObjectID(),
		UserID:      primitive.NewObjectID(),
		WorkoutDate: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
	}
	_, err := f.workoutRepo.Create(context.Background(), stranger)
	require.NoError(t, err)

	// Ownership scoping makes another user's workout indistinguishable
	// from a missing one.
	_, err = f.svc.UpdateWorkout(context.Background(), f.user.ID, stranger.ID, benchDraft())
	require.ErrorIs(t, err, ErrWorkoutNotFound)
}

func TestWorkoutService_GetWorkout_NotFound(t *testing.T) {
	f := newWorkoutServiceFixture(t)
	_, err := f.svc.GetWorkout(context.Background(), f.user.ID, primitive.NewObjectID())
	require.ErrorIs(t, err, ErrWorkoutNotFound)
}

func TestWorkoutService_DeleteWorkout(t *testing.T) {
	f := newWorkoutServiceFixture(t)

	created, err := f.svc.CreateWorkout(context.Background(), f.user.ID, benchDraft())
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteWorkout(context.Background(), f.user.ID, created.ID))
	_, err = f.svc.GetWorkout(context.Background(), f.user.ID, created.ID)
	require.ErrorIs(t, err, ErrWorkoutNotFound)
	assert.Len(t, f.cache.invalidated, 2)

	err = f.svc.DeleteWorkout(context.Background(), f.user.ID, created.ID)
	require.ErrorIs(t, err, ErrWorkoutNotFound)
}

func TestWorkoutService_InvalidationFailureDoesNotFailWrite(t *testing.T) {
	f := newWorkoutServiceFixture(t)
	f.cache.invalidErr = assert.AnError

	created, err := f.svc.CreateWorkout(context.Background(), f.user.ID, benchDraft())
	require.NoError(t, err)
	assert.False(t, created.ID.IsZero())
}
