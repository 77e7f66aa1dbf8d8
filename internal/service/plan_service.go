package service

import (
	"context"
	"errors"

	"github.com/rifkihafidz/liftly/internal/domain"
	"github.com/rifkihafidz/liftly/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrPlanValidation = errors.New("plan validation failed")

// --- Service Interface ---
type PlanService interface {
	CreatePlan(ctx context.Context, userID primitive.ObjectID, name, description string, exerciseNames []string) (*domain.Plan, error)
	GetPlans(ctx context.Context, userID primitive.ObjectID) ([]domain.Plan, error)
	GetPlan(ctx context.Context, userID, planID primitive.ObjectID) (*domain.Plan, error)
	UpdatePlan(ctx context.Context, userID, planID primitive.ObjectID, name, description string, exerciseNames []string) (*domain.Plan, error)
	DeletePlan(ctx context.Context, userID, planID primitive.ObjectID) error
}

// --- Service Implementation ---

// planService implements the PlanService interface. Unlike workout
// updates, plan updates fully replace the exercise list; there is no
// identity-based merging of plan exercises.
type planService struct {
	planRepo repository.PlanRepository
	userRepo repository.UserRepository
}

// NewPlanService creates a new instance of planService.
func NewPlanService(planRepo repository.PlanRepository, userRepo repository.UserRepository) PlanService {
	return &planService{
		planRepo: planRepo,
		userRepo: userRepo,
	}
}

// CreatePlan creates a plan with an ordered exercise list. Order is
// the position in the supplied slice.
func (s *planService) CreatePlan(ctx context.Context, userID primitive.ObjectID, name, description string, exerciseNames []string) (*domain.Plan, error) {
	if name == "" {
		return nil, ErrPlanValidation
	}
	if err := s.verifyUser(ctx, userID); err != nil {
		return nil, err
	}

	plan := &domain.Plan{
		UserID:      userID,
		Name:        name,
		Description: description,
		Exercises:   planExercisesFromNames(exerciseNames),
	}

	planID, err := s.planRepo.Create(ctx, plan)
	if err != nil {
		return nil, err
	}
	plan.ID = planID
	return plan, nil
}

// GetPlans returns all plans owned by the user.
func (s *planService) GetPlans(ctx context.Context, userID primitive.ObjectID) ([]domain.Plan, error) {
	return s.planRepo.GetByUser(ctx, userID)
}

// GetPlan returns a single plan owned by the user.
func (s *planService) GetPlan(ctx context.Context, userID, planID primitive.ObjectID) (*domain.Plan, error) {
	plan, err := s.planRepo.GetByIDAndUser(ctx, planID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return plan, nil
}

// UpdatePlan replaces the plan's name, description and exercise list.
func (s *planService) UpdatePlan(ctx context.Context, userID, planID primitive.ObjectID, name, description string, exerciseNames []string) (*domain.Plan, error) {
	if name == "" {
		return nil, ErrPlanValidation
	}

	plan, err := s.planRepo.GetByIDAndUser(ctx, planID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}

	plan.Name = name
	plan.Description = description
	plan.Exercises = planExercisesFromNames(exerciseNames)

	if err := s.planRepo.Update(ctx, plan); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return plan, nil
}

// DeletePlan removes a plan owned by the user. Workouts referencing
// the plan keep their dangling reference; the reference is provenance
// only and never dereferenced blindly.
func (s *planService) DeletePlan(ctx context.Context, userID, planID primitive.ObjectID) error {
	err := s.planRepo.Delete(ctx, planID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPlanNotFound
		}
		return err
	}
	return nil
}

func (s *planService) verifyUser(ctx context.Context, userID primitive.ObjectID) error {
	_, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

func planExercisesFromNames(names []string) []domain.PlanExercise {
	if len(names) == 0 {
		return nil
	}
	exercises := make([]domain.PlanExercise, 0, len(names))
	for i, name := range names {
		exercises = append(exercises, domain.PlanExercise{Name: name, Order: i})
	}
	return exercises
}
