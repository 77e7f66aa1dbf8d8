package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rifkihafidz/liftly/internal/domain"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func singleSegmentExercise(name string, weight float64, repsFrom, repsTo int) domain.WorkoutExercise {
	return domain.WorkoutExercise{
		ID:   primitive.NewObjectID(),
		Name: name,
		Sets: []domain.WorkoutSet{
			{
				ID:        primitive.NewObjectID(),
				SetNumber: 1,
				Segments: []domain.SetSegment{
					{
						ID:           primitive.NewObjectID(),
						Weight:       weight,
						RepsFrom:     repsFrom,
						RepsTo:       repsTo,
						SegmentOrder: 1,
					},
				},
			},
		},
	}
}

func timedWorkout(userID primitive.ObjectID, date time.Time, startHour, startMin, endHour, endMin int) *domain.Workout {
	start := time.Date(date.Year(), date.Month(), date.Day(), startHour, startMin, 0, 0, time.UTC)
	end := time.Date(date.Year(), date.Month(), date.Day(), endHour, endMin, 0, 0, time.UTC)
	return &domain.Workout{
		ID:          primitive.NewObjectID(),
		UserID:      userID,
		WorkoutDate: date,
		StartedAt:   &start,
		EndedAt:     &end,
	}
}

func TestTotalVolume(t *testing.T) {
	workouts := []domain.Workout{
		{
			Exercises: []domain.WorkoutExercise{
				// 100 * (10 - 8 + 1) = 300
				singleSegmentExercise("Squat", 100, 8, 10),
				// 60 * (5 - 5 + 1) = 60
				singleSegmentExercise("Bench Press", 60, 5, 5),
			},
		},
	}
	assert.Equal(t, 360.0, totalVolume(workouts))
}

func TestTotalVolume_SkippedExercisesExcluded(t *testing.T) {
	skipped := singleSegmentExercise("Deadlift", 140, 1, 5)
	skipped.Skipped = true
	workouts := []domain.Workout{
		{
			Exercises: []domain.WorkoutExercise{
				singleSegmentExercise("Squat", 100, 1, 5),
				skipped,
			},
		},
	}
	// Only the squat counts even though the skipped deadlift carries
	// segments.
	assert.Equal(t, 500.0, totalVolume(workouts))
}

func TestTotalVolume_Empty(t *testing.T) {
	assert.Equal(t, 0.0, totalVolume(nil))
}

func TestPersonalRecords(t *testing.T) {
	workouts := []domain.Workout{
		{
			Exercises: []domain.WorkoutExercise{
				singleSegmentExercise("Squat", 100, 1, 5),
				singleSegmentExercise("Bench Press", 80, 1, 5),
			},
		},
		{
			Exercises: []domain.WorkoutExercise{
				singleSegmentExercise("Squat", 120, 1, 3),
			},
		},
	}
	records := personalRecords(workouts)
	require.Len(t, records, 2)
	assert.Equal(t, ExerciseMetric{Name: "Squat", Value: 120}, records[0])
	assert.Equal(t, ExerciseMetric{Name: "Bench Press", Value: 80}, records[1])
}

func TestPersonalRecords_TiesKeepEncounterOrder(t *testing.T) {
	workouts := []domain.Workout{
		{
			Exercises: []domain.WorkoutExercise{
				singleSegmentExercise("Bench Press", 80, 1, 5),
				singleSegmentExercise("Squat", 80, 1, 5),
			},
		},
	}
	records := personalRecords(workouts)
	require.Len(t, records, 2)
	assert.Equal(t, "Bench Press", records[0].Name)
	assert.Equal(t, "Squat", records[1].Name)
}

func TestExerciseVolume_DescendingAndAccumulated(t *testing.T) {
	workouts := []domain.Workout{
		{
			Exercises: []domain.WorkoutExercise{
				singleSegmentExercise("Bench Press", 60, 1, 10), // 600
				singleSegmentExercise("Squat", 100, 1, 5),       // 500
				singleSegmentExercise("Squat", 100, 1, 3),       // +300 -> 800
			},
		},
	}
	volumes := exerciseVolume(workouts)
	require.Len(t, volumes, 2)
	assert.Equal(t, ExerciseMetric{Name: "Squat", Value: 800}, volumes[0])
	assert.Equal(t, ExerciseMetric{Name: "Bench Press", Value: 600}, volumes[1])
}

func TestAverageDurationMinutes(t *testing.T) {
	userID := primitive.NewObjectID()
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	oneHour := timedWorkout(userID, day, 18, 0, 19, 0)           // 60 min
	fortyMin := timedWorkout(userID, day.AddDate(0, 0, 1), 7, 20, 8, 0) // 40 min
	startOnly := timedWorkout(userID, day.AddDate(0, 0, 2), 18, 0, 19, 0)
	startOnly.EndedAt = nil

	// The workout missing an end time is excluded from the mean, not
	// averaged in as zero: (60 + 40) / 2, not (60 + 40 + 0) / 3.
	got := averageDurationMinutes([]domain.Workout{*oneHour, *fortyMin, *startOnly})
	assert.Equal(t, 50, got)
}

func TestAverageDurationMinutes_TruncatesBeforeAveraging(t *testing.T) {
	userID := primitive.NewObjectID()
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	a := timedWorkout(userID, day, 18, 0, 19, 0) // 60 min
	b := timedWorkout(userID, day, 18, 0, 19, 1) // 61 min
	sec := time.Date(2025, 3, 10, 19, 0, 30, 0, time.UTC)
	b.EndedAt = &sec // 60m30s truncates to 60

	got := averageDurationMinutes([]domain.Workout{*a, *b})
	assert.Equal(t, 60, got)
}

func TestAverageDurationMinutes_NoTimedWorkouts(t *testing.T) {
	w := domain.Workout{WorkoutDate: time.Now()}
	assert.Equal(t, 0, averageDurationMinutes([]domain.Workout{w}))
}

func TestTopN(t *testing.T) {
	metrics := make([]ExerciseMetric, 0, 15)
	for i := 0; i < 15; i++ {
		metrics = append(metrics, ExerciseMetric{Name: fmt.Sprintf("ex-%d", i), Value: float64(100 - i)})
	}

	top := topN(metrics, 5)
	require.Len(t, top, 5)
	assert.Equal(t, "ex-0", top[0].Name)
	assert.Equal(t, "ex-4", top[4].Name)

	assert.Len(t, topN(metrics, 20), 15)
	assert.Empty(t, topN(metrics, 0))
	assert.Empty(t, topN(metrics, -3))
}

func TestStatsService_Summary(t *testing.T) {
	user := &domain.User{ID: primitive.NewObjectID(), Email: "lifter@example.com", Active: true}
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	inRange := timedWorkout(user.ID, day, 18, 0, 19, 0)
	inRange.Exercises = []domain.WorkoutExercise{
		singleSegmentExercise("Squat", 100, 1, 5),
	}
	// Heavier squat outside the queried window: affects records, not
	// volume.
	older := timedWorkout(user.ID, day.AddDate(0, -2, 0), 18, 0, 19, 0)
	older.Exercises = []domain.WorkoutExercise{
		singleSegmentExercise("Squat", 150, 1, 1),
	}

	svc := NewStatsService(
		newFakeWorkoutRepo(inRange, older),
		newFakeUserRepo(user),
		nil,
		logrus.New(),
	)

	start := day.AddDate(0, 0, -7)
	end := day.Add(24*time.Hour - time.Second)
	summary, err := svc.Summary(context.Background(), user.ID, start, end)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.WorkoutCount)
	assert.Equal(t, 500.0, summary.TotalVolume)
	assert.Equal(t, 60, summary.AverageDurationMinutes)
	require.Len(t, summary.PersonalRecords, 1)
	assert.Equal(t, ExerciseMetric{Name: "Squat", Value: 150}, summary.PersonalRecords[0])
	require.Len(t, summary.TopExercisesByVolume, 1)
	assert.Equal(t, ExerciseMetric{Name: "Squat", Value: 500}, summary.TopExercisesByVolume[0])
	assert.Equal(t, start, summary.PeriodStart)
	assert.Equal(t, end, summary.PeriodEnd)
}

func TestStatsService_Summary_UsesCache(t *testing.T) {
	user := &domain.User{ID: primitive.NewObjectID(), Active: true}
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	w := timedWorkout(user.ID, day, 18, 0, 19, 0)
	w.Exercises = []domain.WorkoutExercise{singleSegmentExercise("Squat", 100, 1, 5)}

	repo := newFakeWorkoutRepo(w)
	cache := newFakeSummaryCache()
	svc := NewStatsService(repo, newFakeUserRepo(user), cache, logrus.New())

	start, end := day.AddDate(0, 0, -1), day.AddDate(0, 0, 1)
	first, err := svc.Summary(context.Background(), user.ID, start, end)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.setCalls)

	// Mutate the store; a cache hit must return the first answer.
	require.NoError(t, repo.DeleteByUser(context.Background(), user.ID))
	second, err := svc.Summary(context.Background(), user.ID, start, end)
	require.NoError(t, err)
	assert.Equal(t, first.TotalVolume, second.TotalVolume)
	assert.Equal(t, first.WorkoutCount, second.WorkoutCount)
	assert.Equal(t, 2, cache.getCalls)
	assert.Equal(t, 1, cache.setCalls)
}

func TestStatsService_Summary_CacheFailureFallsThrough(t *testing.T) {
	user := &domain.User{ID: primitive.NewObjectID(), Active: true}
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	w := timedWorkout(user.ID, day, 18, 0, 19, 0)
	w.Exercises = []domain.WorkoutExercise{singleSegmentExercise("Squat", 100, 1, 5)}

	cache := newFakeSummaryCache()
	cache.getErr = fmt.Errorf("redis down")
	cache.setErr = fmt.Errorf("redis down")
	svc := NewStatsService(newFakeWorkoutRepo(w), newFakeUserRepo(user), cache, logrus.New())

	summary, err := svc.Summary(context.Background(), user.ID, day.AddDate(0, 0, -1), day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, 500.0, summary.TotalVolume)
}

func TestStatsService_UnknownUser(t *testing.T) {
	svc := NewStatsService(newFakeWorkoutRepo(), newFakeUserRepo(), nil, logrus.New())
	_, err := svc.Summary(context.Background(), primitive.NewObjectID(), time.Now().AddDate(0, 0, -7), time.Now())
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.PersonalRecords(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestStatsService_PersonalRecordsIgnoreRange(t *testing.T) {
	user := &domain.User{ID: primitive.NewObjectID(), Active: true}
	old := timedWorkout(user.ID, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), 18, 0, 19, 0)
	old.Exercises = []domain.WorkoutExercise{singleSegmentExercise("Squat", 180, 1, 1)}

	svc := NewStatsService(newFakeWorkoutRepo(old), newFakeUserRepo(user), nil, logrus.New())
	records, err := svc.PersonalRecords(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 180.0, records[0].Value)
}

func TestStatsService_WorkoutCount(t *testing.T) {
	user := &domain.User{ID: primitive.NewObjectID(), Active: true}
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	// An empty workout still counts.
	empty := &domain.Workout{ID: primitive.NewObjectID(), UserID: user.ID, WorkoutDate: day}
	outside := &domain.Workout{ID: primitive.NewObjectID(), UserID: user.ID, WorkoutDate: day.AddDate(0, -3, 0)}

	svc := NewStatsService(newFakeWorkoutRepo(empty, outside), newFakeUserRepo(user), nil, logrus.New())
	count, err := svc.WorkoutCount(context.Background(), user.ID, day.AddDate(0, 0, -1), day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestStatsService_TopExercisesByVolume(t *testing.T) {
	user := &domain.User{ID: primitive.NewObjectID(), Active: true}
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	w := &domain.Workout{ID: primitive.NewObjectID(), UserID: user.ID, WorkoutDate: day}
	for i := 0; i < 15; i++ {
		w.Exercises = append(w.Exercises,
			singleSegmentExercise(fmt.Sprintf("ex-%02d", i), float64(150-i), 1, 1))
	}

	svc := NewStatsService(newFakeWorkoutRepo(w), newFakeUserRepo(user), nil, logrus.New())
	top, err := svc.TopExercisesByVolume(context.Background(), user.ID, day.AddDate(0, 0, -1), day.AddDate(0, 0, 1), 5)
	require.NoError(t, err)
	require.Len(t, top, 5)
	assert.Equal(t, "ex-00", top[0].Name)

	none, err := svc.TopExercisesByVolume(context.Background(), user.ID, day.AddDate(0, 0, -1), day.AddDate(0, 0, 1), 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}
