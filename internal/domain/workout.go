package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Workout is a logged training session together with its full
// exercise/set/segment tree. The whole tree is persisted as one
// document, so a workout and its children are always written
// atomically and a delete cascades to every descendant.
type Workout struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID  `bson:"userId" json:"userId"`
	PlanID      *primitive.ObjectID `bson:"planId,omitempty" json:"planId,omitempty"` // Optional provenance, non-owning
	WorkoutDate time.Time           `bson:"workoutDate" json:"workoutDate"`           // Start of the calendar day
	StartedAt   *time.Time          `bson:"startedAt,omitempty" json:"startedAt,omitempty"`
	EndedAt     *time.Time          `bson:"endedAt,omitempty" json:"endedAt,omitempty"`
	Exercises   []WorkoutExercise   `bson:"exercises,omitempty" json:"exercises,omitempty"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// WorkoutExercise is one exercise performed (or skipped) during a
// workout. Order is a display position and need not be unique.
type WorkoutExercise struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name    string             `bson:"name" json:"name"`
	Order   int                `bson:"order" json:"order"`
	Skipped bool               `bson:"skipped" json:"skipped"`
	Sets    []WorkoutSet       `bson:"sets,omitempty" json:"sets,omitempty"`
}

// WorkoutSet groups the weight/rep segments of a single set.
type WorkoutSet struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SetNumber int                `bson:"setNumber" json:"setNumber"`
	Segments  []SetSegment       `bson:"segments,omitempty" json:"segments,omitempty"`
}

// SetSegment is the smallest loggable unit: a weight and a rep range.
// RepsFrom must not exceed RepsTo; callers validate before a segment
// ever reaches the stats computations.
type SetSegment struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Weight       float64            `bson:"weight" json:"weight"`
	RepsFrom     int                `bson:"repsFrom" json:"repsFrom"`
	RepsTo       int                `bson:"repsTo" json:"repsTo"`
	SegmentOrder int                `bson:"segmentOrder" json:"segmentOrder"`
	Notes        string             `bson:"notes,omitempty" json:"notes,omitempty"`
}

// Reps returns the number of repetitions the segment spans.
func (s SetSegment) Reps() int {
	return s.RepsTo - s.RepsFrom + 1
}

// Volume is the segment's training volume: weight times reps.
func (s SetSegment) Volume() float64 {
	return s.Weight * float64(s.Reps())
}

// FindExercise returns a pointer to the owned exercise with the given
// ID, or nil if no such child exists.
func (w *Workout) FindExercise(id primitive.ObjectID) *WorkoutExercise {
	for i := range w.Exercises {
		if w.Exercises[i].ID == id {
			return &w.Exercises[i]
		}
	}
	return nil
}

// RemoveExercise detaches the exercise with the given ID, cascading to
// its sets and segments. Reports whether a child was removed.
func (w *Workout) RemoveExercise(id primitive.ObjectID) bool {
	for i := range w.Exercises {
		if w.Exercises[i].ID == id {
			w.Exercises = append(w.Exercises[:i], w.Exercises[i+1:]...)
			return true
		}
	}
	return false
}

// FindSet returns a pointer to the owned set with the given ID, or nil.
func (e *WorkoutExercise) FindSet(id primitive.ObjectID) *WorkoutSet {
	for i := range e.Sets {
		if e.Sets[i].ID == id {
			return &e.Sets[i]
		}
	}
	return nil
}

// FindSegment returns a pointer to the owned segment with the given ID, or nil.
func (s *WorkoutSet) FindSegment(id primitive.ObjectID) *SetSegment {
	for i := range s.Segments {
		if s.Segments[i].ID == id {
			return &s.Segments[i]
		}
	}
	return nil
}

// Walk visits every (exercise, set, segment) triple depth-first in
// persisted order. Returning false from fn stops the traversal.
func (w *Workout) Walk(fn func(e *WorkoutExercise, s *WorkoutSet, seg *SetSegment) bool) {
	for i := range w.Exercises {
		e := &w.Exercises[i]
		for j := range e.Sets {
			s := &e.Sets[j]
			for k := range s.Segments {
				if !fn(e, s, &s.Segments[k]) {
					return
				}
			}
		}
	}
}

// Duration returns the session length derived from the time-of-day
// components of StartedAt and EndedAt, or false when either timestamp
// is missing. Sessions are assumed to start and end on the same day.
func (w *Workout) Duration() (time.Duration, bool) {
	if w.StartedAt == nil || w.EndedAt == nil {
		return 0, false
	}
	start := timeOfDayNanos(*w.StartedAt)
	end := timeOfDayNanos(*w.EndedAt)
	return time.Duration(end - start), true
}

func timeOfDayNanos(t time.Time) int64 {
	h, m, s := t.Clock()
	return (int64(h)*3600+int64(m)*60+int64(s))*int64(time.Second) + int64(t.Nanosecond())
}
