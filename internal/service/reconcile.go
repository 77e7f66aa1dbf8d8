package service

import (
	"fmt"
	"time"

	"github.com/rifkihafidz/liftly/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutDraft is the desired state of a workout submitted by a
// client: the full tree it wants persisted, with each node optionally
// carrying the identity of an existing entity. Nodes without an ID are
// new; their ObjectIDs are assigned by the repository on save.
type WorkoutDraft struct {
	WorkoutDate time.Time
	StartedAt   *domain.TimeOfDay
	EndedAt     *domain.TimeOfDay
	PlanID      *primitive.ObjectID
	Exercises   []ExerciseDraft
}

// ExerciseDraft describes one desired exercise and its sets.
type ExerciseDraft struct {
	ID      *primitive.ObjectID
	Name    string
	Order   int
	Skipped bool
	Sets    []SetDraft
}

// SetDraft describes one desired set and its segments.
type SetDraft struct {
	ID        *primitive.ObjectID
	SetNumber int
	Segments  []SegmentDraft
}

// SegmentDraft describes one desired weight/rep segment.
type SegmentDraft struct {
	ID           *primitive.ObjectID
	Weight       float64
	RepsFrom     int
	RepsTo       int
	SegmentOrder int
	Notes        string
}

// validate checks the draft's field-level invariants before any of it
// is merged into an aggregate.
func (d *WorkoutDraft) validate() error {
	if d.WorkoutDate.IsZero() {
		return fmt.Errorf("%w: workoutDate is required", ErrWorkoutValidation)
	}
	for _, e := range d.Exercises {
		if e.Name == "" {
			return fmt.Errorf("%w: exercise name is required", ErrWorkoutValidation)
		}
		for _, s := range e.Sets {
			for _, seg := range s.Segments {
				if seg.Weight < 0 {
					return fmt.Errorf("%w: segment weight must not be negative", ErrWorkoutValidation)
				}
				if seg.RepsFrom > seg.RepsTo {
					return fmt.Errorf("%w: segment reps range %d-%d is inverted", ErrWorkoutValidation, seg.RepsFrom, seg.RepsTo)
				}
			}
		}
	}
	return nil
}

// reconcileWorkout merges the draft into the existing aggregate in
// place. The same merge runs at every level of the tree:
//
//   - a draft item without an ID is appended as a new child;
//   - a draft item whose ID matches an existing child overwrites that
//     child's scalar fields and recurses into its sub-sequence;
//   - a draft item whose ID matches nothing (stale client state) is
//     appended as a new child, and the stale ID is not reused;
//   - an empty or absent draft list clears every existing child at
//     that level, while a non-empty list leaves unmentioned existing
//     children untouched.
//
// The asymmetry of the last rule is a behavioral contract: omitting
// the whole list deletes everything, omitting one item retains it.
//
// Workout scalar fields are always overwritten wholesale. Start and
// end arrive as times of day and are anchored on the workout date.
func reconcileWorkout(existing *domain.Workout, draft *WorkoutDraft) error {
	if err := draft.validate(); err != nil {
		return err
	}

	date := startOfDay(draft.WorkoutDate)
	existing.WorkoutDate = date
	existing.PlanID = draft.PlanID
	existing.StartedAt = nil
	existing.EndedAt = nil
	if draft.StartedAt != nil {
		t := draft.StartedAt.At(date)
		existing.StartedAt = &t
	}
	if draft.EndedAt != nil {
		t := draft.EndedAt.At(date)
		existing.EndedAt = &t
	}

	reconcileExercises(existing, draft.Exercises)
	return nil
}

func reconcileExercises(workout *domain.Workout, drafts []ExerciseDraft) {
	if len(drafts) == 0 {
		workout.Exercises = nil
		return
	}
	for _, d := range drafts {
		var target *domain.WorkoutExercise
		if d.ID != nil {
			target = workout.FindExercise(*d.ID)
		}
		if target == nil {
			workout.Exercises = append(workout.Exercises, domain.WorkoutExercise{})
			target = &workout.Exercises[len(workout.Exercises)-1]
		}
		target.Name = d.Name
		target.Order = d.Order
		target.Skipped = d.Skipped
		reconcileSets(target, d.Sets)
	}
}

func reconcileSets(exercise *domain.WorkoutExercise, drafts []SetDraft) {
	if len(drafts) == 0 {
		exercise.Sets = nil
		return
	}
	for _, d := range drafts {
		var target *domain.WorkoutSet
		if d.ID != nil {
			target = exercise.FindSet(*d.ID)
		}
		if target == nil {
			exercise.Sets = append(exercise.Sets, domain.WorkoutSet{})
			target = &exercise.Sets[len(exercise.Sets)-1]
		}
		target.SetNumber = d.SetNumber
		reconcileSegments(target, d.Segments)
	}
}

func reconcileSegments(set *domain.WorkoutSet, drafts []SegmentDraft) {
	if len(drafts) == 0 {
		set.Segments = nil
		return
	}
	for _, d := range drafts {
		var target *domain.SetSegment
		if d.ID != nil {
			target = set.FindSegment(*d.ID)
		}
		if target == nil {
			set.Segments = append(set.Segments, domain.SetSegment{})
			target = &set.Segments[len(set.Segments)-1]
		}
		target.Weight = d.Weight
		target.RepsFrom = d.RepsFrom
		target.RepsTo = d.RepsTo
		target.SegmentOrder = d.SegmentOrder
		target.Notes = d.Notes
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
