package service

import (
	"context"
	"errors"

	"github.com/rifkihafidz/liftly/internal/domain"
	"github.com/rifkihafidz/liftly/internal/repository"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrWorkoutNotFound   = errors.New("workout not found")
	ErrWorkoutValidation = errors.New("workout validation failed")
	ErrPlanNotFound      = errors.New("plan not found")
	ErrUserNotFound      = errors.New("user not found")
)

// --- Service Interface ---
type WorkoutService interface {
	CreateWorkout(ctx context.Context, userID primitive.ObjectID, draft *WorkoutDraft) (*domain.Workout, error)
	GetWorkouts(ctx context.Context, userID primitive.ObjectID) ([]domain.Workout, error)
	GetWorkout(ctx context.Context, userID, workoutID primitive.ObjectID) (*domain.Workout, error)
	UpdateWorkout(ctx context.Context, userID, workoutID primitive.ObjectID, draft *WorkoutDraft) (*domain.Workout, error)
	DeleteWorkout(ctx context.Context, userID, workoutID primitive.ObjectID) error
}

// --- Service Implementation ---

// workoutService implements the WorkoutService interface.
type workoutService struct {
	workoutRepo repository.WorkoutRepository
	userRepo    repository.UserRepository
	planRepo    repository.PlanRepository
	cache       SummaryCache // may be nil
	log         logrus.FieldLogger
}

// NewWorkoutService creates a new instance of workoutService. The
// cache may be nil when stats caching is disabled.
func NewWorkoutService(
	workoutRepo repository.WorkoutRepository,
	userRepo repository.UserRepository,
	planRepo repository.PlanRepository,
	cache SummaryCache,
	log logrus.FieldLogger,
) WorkoutService {
	return &workoutService{
		workoutRepo: workoutRepo,
		userRepo:    userRepo,
		planRepo:    planRepo,
		cache:       cache,
		log:         log,
	}
}

// CreateWorkout reconciles the draft into an empty aggregate and
// persists it. Every draft node is new in create mode; the repository
// assigns identities on save.
func (s *workoutService) CreateWorkout(ctx context.Context, userID primitive.ObjectID, draft *WorkoutDraft) (*domain.Workout, error) {
	if err := s.verifyUser(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.verifyPlanRef(ctx, userID, draft); err != nil {
		return nil, err
	}

	workout := &domain.Workout{UserID: userID}
	if err := reconcileWorkout(workout, draft); err != nil {
		return nil, err
	}

	workoutID, err := s.workoutRepo.Create(ctx, workout)
	if err != nil {
		return nil, err
	}
	workout.ID = workoutID

	s.invalidateStats(ctx, userID)
	return workout, nil
}

// GetWorkouts returns all of the user's workouts, most recent first.
func (s *workoutService) GetWorkouts(ctx context.Context, userID primitive.ObjectID) ([]domain.Workout, error) {
	return s.workoutRepo.GetAllByUser(ctx, userID)
}

// GetWorkout returns a single workout owned by the user.
func (s *workoutService) GetWorkout(ctx context.Context, userID, workoutID primitive.ObjectID) (*domain.Workout, error) {
	workout, err := s.workoutRepo.GetByIDAndUser(ctx, workoutID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	return workout, nil
}

// UpdateWorkout loads the stored aggregate, reconciles the draft into
// it and persists the result as one atomic replace. The plan reference
// is verified before any mutation, so a bad reference aborts with no
// partial write.
func (s *workoutService) UpdateWorkout(ctx context.Context, userID, workoutID primitive.ObjectID, draft *WorkoutDraft) (*domain.Workout, error) {
	if err := s.verifyUser(ctx, userID); err != nil {
		return nil, err
	}

	workout, err := s.workoutRepo.GetByIDAndUser(ctx, workoutID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}

	if err := s.verifyPlanRef(ctx, userID, draft); err != nil {
		return nil, err
	}

	if err := reconcileWorkout(workout, draft); err != nil {
		return nil, err
	}

	if err := s.workoutRepo.Update(ctx, workout); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}

	s.invalidateStats(ctx, userID)
	return workout, nil
}

// DeleteWorkout removes the aggregate, cascading to all children.
func (s *workoutService) DeleteWorkout(ctx context.Context, userID, workoutID primitive.ObjectID) error {
	err := s.workoutRepo.Delete(ctx, workoutID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrWorkoutNotFound
		}
		return err
	}
	s.invalidateStats(ctx, userID)
	return nil
}

func (s *workoutService) verifyUser(ctx context.Context, userID primitive.ObjectID) error {
	_, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

// verifyPlanRef ensures a referenced plan exists and is owned by the
// same user. A bad reference is fatal for the whole reconciliation.
func (s *workoutService) verifyPlanRef(ctx context.Context, userID primitive.ObjectID, draft *WorkoutDraft) error {
	if draft.PlanID == nil {
		return nil
	}
	_, err := s.planRepo.GetByIDAndUser(ctx, *draft.PlanID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPlanNotFound
		}
		return err
	}
	return nil
}

// invalidateStats drops cached stats after a workout mutation. Cache
// failures are logged and otherwise ignored; the cache is best effort.
func (s *workoutService) invalidateStats(ctx context.Context, userID primitive.ObjectID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateUser(ctx, userID.Hex()); err != nil && s.log != nil {
		s.log.WithError(err).WithField("userId", userID.Hex()).Warn("failed to invalidate stats cache")
	}
}
