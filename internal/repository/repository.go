package repository

import (
	"context"
	"time"

	"github.com/rifkihafidz/liftly/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// PlanRepository defines the interface for interacting with plan data.
// Every read and write is scoped to the owning user.
type PlanRepository interface {
	Create(ctx context.Context, plan *domain.Plan) (primitive.ObjectID, error)
	GetByIDAndUser(ctx context.Context, id, userID primitive.ObjectID) (*domain.Plan, error)
	GetByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Plan, error)
	Update(ctx context.Context, plan *domain.Plan) error
	Delete(ctx context.Context, id, userID primitive.ObjectID) error
	DeleteByUser(ctx context.Context, userID primitive.ObjectID) error
}

// WorkoutRepository defines the interface for interacting with workout
// aggregates. Create and Update persist the full exercise/set/segment
// tree in one write and assign fresh ObjectIDs to any children that
// arrive without one.
type WorkoutRepository interface {
	Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error)
	GetByIDAndUser(ctx context.Context, id, userID primitive.ObjectID) (*domain.Workout, error)
	// GetByUserInRange returns workouts whose date falls inside the
	// closed interval [start, end], most recent first.
	GetByUserInRange(ctx context.Context, userID primitive.ObjectID, start, end time.Time) ([]domain.Workout, error)
	// GetAllByUser returns every workout the user owns, most recent
	// first. Used for all-time computations such as personal records.
	GetAllByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Workout, error)
	Update(ctx context.Context, workout *domain.Workout) error
	Delete(ctx context.Context, id, userID primitive.ObjectID) error
	DeleteByUser(ctx context.Context, userID primitive.ObjectID) error
}
