// internal/repository/mongo/workout_repo.go
package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/rifkihafidz/liftly/internal/domain"
	"github.com/rifkihafidz/liftly/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const workoutCollectionName = "workouts"

// mongoWorkoutRepository implements repository.WorkoutRepository.
// A workout is stored as one document embedding the full
// exercise/set/segment tree, so every save is atomic per aggregate.
type mongoWorkoutRepository struct {
	collection *mongo.Collection
}

// NewMongoWorkoutRepository creates a new Workout repository.
func NewMongoWorkoutRepository(db *mongo.Database) repository.WorkoutRepository {
	return &mongoWorkoutRepository{
		collection: db.Collection(workoutCollectionName),
	}
}

// Create inserts a new workout aggregate. Children reconciled in
// without an identity get their ObjectIDs assigned here, on first
// save, never earlier.
func (r *mongoWorkoutRepository) Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error) {
	if workout.UserID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("workout requires userId")
	}
	if workout.WorkoutDate.IsZero() {
		return primitive.NilObjectID, errors.New("workout requires workoutDate")
	}
	workout.ID = primitive.NewObjectID()
	assignChildIDs(workout)
	now := time.Now().UTC()
	workout.CreatedAt = now
	workout.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, workout)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted workout ID")
	}
	return insertedID, nil
}

// GetByIDAndUser retrieves a workout only if it belongs to the user.
func (r *mongoWorkoutRepository) GetByIDAndUser(ctx context.Context, id, userID primitive.ObjectID) (*domain.Workout, error) {
	var workout domain.Workout
	filter := bson.M{"_id": id, "userId": userID}
	err := r.collection.FindOne(ctx, filter).Decode(&workout)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &workout, nil
}

// GetByUserInRange retrieves workouts dated inside the closed
// interval [start, end], most recent first.
func (r *mongoWorkoutRepository) GetByUserInRange(ctx context.Context, userID primitive.ObjectID, start, end time.Time) ([]domain.Workout, error) {
	filter := bson.M{
		"userId":      userID,
		"workoutDate": bson.M{"$gte": start, "$lte": end},
	}
	return r.find(ctx, filter)
}

// GetAllByUser retrieves every workout the user owns, most recent first.
func (r *mongoWorkoutRepository) GetAllByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Workout, error) {
	return r.find(ctx, bson.M{"userId": userID})
}

func (r *mongoWorkoutRepository) find(ctx context.Context, filter bson.M) ([]domain.Workout, error) {
	var workouts []domain.Workout
	findOptions := options.Find().SetSort(bson.D{{Key: "workoutDate", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &workouts); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return workouts, nil
}

// Update replaces the stored aggregate with the reconciled one. The
// whole tree is written in a single document replace; children and
// parent are committed together or not at all.
func (r *mongoWorkoutRepository) Update(ctx context.Context, workout *domain.Workout) error {
	if workout.ID == primitive.NilObjectID {
		return errors.New("workout ID is required for update")
	}
	assignChildIDs(workout)
	workout.UpdatedAt = time.Now().UTC()

	filter := bson.M{"_id": workout.ID, "userId": workout.UserID}
	result, err := r.collection.ReplaceOne(ctx, filter, workout)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a workout and, with it, its embedded children.
func (r *mongoWorkoutRepository) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	if id == primitive.NilObjectID || userID == primitive.NilObjectID {
		return errors.New("workout ID and user ID are required for deletion")
	}
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "userId": userID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteByUser removes every workout owned by the user.
func (r *mongoWorkoutRepository) DeleteByUser(ctx context.Context, userID primitive.ObjectID) error {
	if userID == primitive.NilObjectID {
		return errors.New("user ID is required for deletion")
	}
	_, err := r.collection.DeleteMany(ctx, bson.M{"userId": userID})
	return err
}

// assignChildIDs gives a fresh ObjectID to every child created during
// reconciliation. A child carrying an ID keeps it.
func assignChildIDs(workout *domain.Workout) {
	for i := range workout.Exercises {
		e := &workout.Exercises[i]
		if e.ID == primitive.NilObjectID {
			e.ID = primitive.NewObjectID()
		}
		for j := range e.Sets {
			s := &e.Sets[j]
			if s.ID == primitive.NilObjectID {
				s.ID = primitive.NewObjectID()
			}
			for k := range s.Segments {
				if s.Segments[k].ID == primitive.NilObjectID {
					s.Segments[k].ID = primitive.NewObjectID()
				}
			}
		}
	}
}

// EnsureWorkoutIndexes creates necessary indexes. Call during startup.
func EnsureWorkoutIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// Range queries over a user's workouts, sorted by date.
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "workoutDate", Value: -1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
