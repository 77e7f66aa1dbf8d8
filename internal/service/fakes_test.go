package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rifkihafidz/liftly/internal/domain"
	"github.com/rifkihafidz/liftly/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository fakes shared by the service tests. They mirror
// the mongo repositories' observable behavior: child ObjectIDs are
// assigned on save and every read is scoped to the owning user.

// Reads and writes copy the document, mirroring the BSON round-trip:
// a caller mutating a returned user never touches the stored one.
type fakeUserRepo struct {
	users map[primitive.ObjectID]domain.User
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[primitive.ObjectID]domain.User)}
	for _, u := range users {
		r.users[u.ID] = *u
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	r.users[user.ID] = *user
	return user.ID, nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := r.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

type fakePlanRepo struct {
	plans map[primitive.ObjectID]domain.Plan
}

func newFakePlanRepo(plans ...*domain.Plan) *fakePlanRepo {
	r := &fakePlanRepo{plans: make(map[primitive.ObjectID]domain.Plan)}
	for _, p := range plans {
		r.plans[p.ID] = *p
	}
	return r
}

func (r *fakePlanRepo) Create(_ context.Context, plan *domain.Plan) (primitive.ObjectID, error) {
	if plan.ID.IsZero() {
		plan.ID = primitive.NewObjectID()
	}
	for i := range plan.Exercises {
		if plan.Exercises[i].ID.IsZero() {
			plan.Exercises[i].ID = primitive.NewObjectID()
		}
	}
	r.plans[plan.ID] = *plan
	return plan.ID, nil
}

func (r *fakePlanRepo) GetByIDAndUser(_ context.Context, id, userID primitive.ObjectID) (*domain.Plan, error) {
	p, ok := r.plans[id]
	if !ok || p.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *fakePlanRepo) GetByUser(_ context.Context, userID primitive.ObjectID) ([]domain.Plan, error) {
	var out []domain.Plan
	for _, p := range r.plans {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePlanRepo) Update(_ context.Context, plan *domain.Plan) error {
	existing, ok := r.plans[plan.ID]
	if !ok || existing.UserID != plan.UserID {
		return repository.ErrNotFound
	}
	for i := range plan.Exercises {
		if plan.Exercises[i].ID.IsZero() {
			plan.Exercises[i].ID = primitive.NewObjectID()
		}
	}
	r.plans[plan.ID] = *plan
	return nil
}

func (r *fakePlanRepo) Delete(_ context.Context, id, userID primitive.ObjectID) error {
	p, ok := r.plans[id]
	if !ok || p.UserID != userID {
		return repository.ErrNotFound
	}
	delete(r.plans, id)
	return nil
}

func (r *fakePlanRepo) DeleteByUser(_ context.Context, userID primitive.ObjectID) error {
	for id, p := range r.plans {
		if p.UserID == userID {
			delete(r.plans, id)
		}
	}
	return nil
}

type fakeWorkoutRepo struct {
	workouts map[primitive.ObjectID]*domain.Workout
}

func newFakeWorkoutRepo(workouts ...*domain.Workout) *fakeWorkoutRepo {
	r := &fakeWorkoutRepo{workouts: make(map[primitive.ObjectID]*domain.Workout)}
	for _, w := range workouts {
		if w.ID.IsZero() {
			w.ID = primitive.NewObjectID()
		}
		r.workouts[w.ID] = w
	}
	return r
}

func deepCopyWorkout(w *domain.Workout) *domain.Workout {
	copied := *w
	copied.Exercises = make([]domain.WorkoutExercise, len(w.Exercises))
	for i, e := range w.Exercises {
		copied.Exercises[i] = e
		copied.Exercises[i].Sets = make([]domain.WorkoutSet, len(e.Sets))
		for j, s := range e.Sets {
			copied.Exercises[i].Sets[j] = s
			copied.Exercises[i].Sets[j].Segments = append([]domain.SetSegment(nil), s.Segments...)
		}
	}
	return &copied
}

func assignFakeChildIDs(w *domain.Workout) {
	for i := range w.Exercises {
		e := &w.Exercises[i]
		if e.ID.IsZero() {
			e.ID = primitive.NewObjectID()
		}
		for j := range e.Sets {
			s := &e.Sets[j]
			if s.ID.IsZero() {
				s.ID = primitive.NewObjectID()
			}
			for k := range s.Segments {
				if s.Segments[k].ID.IsZero() {
					s.Segments[k].ID = primitive.NewObjectID()
				}
			}
		}
	}
}

func (r *fakeWorkoutRepo) Create(_ context.Context, workout *domain.Workout) (primitive.ObjectID, error) {
	if workout.ID.IsZero() {
		workout.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	workout.CreatedAt = now
	workout.UpdatedAt = now
	assignFakeChildIDs(workout)
	r.workouts[workout.ID] = deepCopyWorkout(workout)
	return workout.ID, nil
}

func (r *fakeWorkoutRepo) GetByIDAndUser(_ context.Context, id, userID primitive.ObjectID) (*domain.Workout, error) {
	w, ok := r.workouts[id]
	if !ok || w.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return deepCopyWorkout(w), nil
}

func (r *fakeWorkoutRepo) GetByUserInRange(_ context.Context, userID primitive.ObjectID, start, end time.Time) ([]domain.Workout, error) {
	var out []domain.Workout
	for _, w := range r.workouts {
		if w.UserID != userID {
			continue
		}
		if w.WorkoutDate.Before(start) || w.WorkoutDate.After(end) {
			continue
		}
		out = append(out, *deepCopyWorkout(w))
	}
	return out, nil
}

func (r *fakeWorkoutRepo) GetAllByUser(_ context.Context, userID primitive.ObjectID) ([]domain.Workout, error) {
	var out []domain.Workout
	for _, w := range r.workouts {
		if w.UserID == userID {
			out = append(out, *deepCopyWorkout(w))
		}
	}
	return out, nil
}

func (r *fakeWorkoutRepo) Update(_ context.Context, workout *domain.Workout) error {
	existing, ok := r.workouts[workout.ID]
	if !ok || existing.UserID != workout.UserID {
		return repository.ErrNotFound
	}
	workout.UpdatedAt = time.Now().UTC()
	assignFakeChildIDs(workout)
	r.workouts[workout.ID] = deepCopyWorkout(workout)
	return nil
}

func (r *fakeWorkoutRepo) Delete(_ context.Context, id, userID primitive.ObjectID) error {
	w, ok := r.workouts[id]
	if !ok || w.UserID != userID {
		return repository.ErrNotFound
	}
	delete(r.workouts, id)
	return nil
}

func (r *fakeWorkoutRepo) DeleteByUser(_ context.Context, userID primitive.ObjectID) error {
	for id, w := range r.workouts {
		if w.UserID == userID {
			delete(r.workouts, id)
		}
	}
	return nil
}

// fakeSummaryCache records cache traffic so tests can assert on reads,
// writes and invalidations.
type fakeSummaryCache struct {
	entries     map[string][]byte
	invalidated []string
	getCalls    int
	setCalls    int
	getErr      error
	setErr      error
	invalidErr  error
}

func newFakeSummaryCache() *fakeSummaryCache {
	return &fakeSummaryCache{entries: make(map[string][]byte)}
}

func (c *fakeSummaryCache) GetJSON(_ context.Context, key string, dest any) (bool, error) {
	c.getCalls++
	if c.getErr != nil {
		return false, c.getErr
	}
	raw, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *fakeSummaryCache) SetJSON(_ context.Context, key string, value any) error {
	c.setCalls++
	if c.setErr != nil {
		return c.setErr
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = raw
	return nil
}

func (c *fakeSummaryCache) InvalidateUser(_ context.Context, userID string) error {
	if c.invalidErr != nil {
		return c.invalidErr
	}
	c.invalidated = append(c.invalidated, userID)
	for key := range c.entries {
		delete(c.entries, key)
	}
	return nil
}
