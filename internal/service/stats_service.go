package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rifkihafidz/liftly/internal/domain"
	"github.com/rifkihafidz/liftly/internal/repository"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultTopExercises is the ranking size used when the caller does
// not ask for a specific limit.
const DefaultTopExercises = 10

// ExerciseMetric is one entry of an ordered name-to-value ranking.
// Rankings are slices, not maps: descending order by value is part of
// the contract and ties keep first-encounter order.
type ExerciseMetric struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// StatsSummary bundles every metric the stats page needs for one
// user and date range, plus the raw workouts for charting.
type StatsSummary struct {
	Workouts               []domain.Workout `json:"workouts"`
	WorkoutCount           int              `json:"workoutCount"`
	TotalVolume            float64          `json:"totalVolume"`
	AverageDurationMinutes int              `json:"averageDurationMinutes"`
	PersonalRecords        []ExerciseMetric `json:"personalRecords"`
	TopExercisesByVolume   []ExerciseMetric `json:"topExercisesByVolume"`
	PeriodStart            time.Time        `json:"periodStart"`
	PeriodEnd              time.Time        `json:"periodEnd"`
}

// SummaryCache is the slice of the cache layer the stats services
// need. Implemented by cache.StatsCache; nil disables caching.
type SummaryCache interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any) error
	InvalidateUser(ctx context.Context, userID string) error
}

// --- Service Interface ---
type StatsService interface {
	Summary(ctx context.Context, userID primitive.ObjectID, start, end time.Time) (*StatsSummary, error)
	TotalVolume(ctx context.Context, userID primitive.ObjectID, start, end time.Time) (float64, error)
	PersonalRecords(ctx context.Context, userID primitive.ObjectID) ([]ExerciseMetric, error)
	ExerciseVolume(ctx context.Context, userID primitive.ObjectID, start, end time.Time) ([]ExerciseMetric, error)
	TopExercisesByVolume(ctx context.Context, userID primitive.ObjectID, start, end time.Time, limit int) ([]ExerciseMetric, error)
	AverageDuration(ctx context.Context, userID primitive.ObjectID, start, end time.Time) (int, error)
	WorkoutCount(ctx context.Context, userID primitive.ObjectID, start, end time.Time) (int, error)
}

// --- Service Implementation ---

// statsService implements StatsService. All metric computations are
// pure over the fetched aggregates; the service never mutates state.
type statsService struct {
	workoutRepo repository.WorkoutRepository
	userRepo    repository.UserRepository
	cache       SummaryCache // may be nil
	log         logrus.FieldLogger
}

// NewStatsService creates a new instance of statsService. The cache
// may be nil when stats caching is disabled.
func NewStatsService(
	workoutRepo repository.WorkoutRepository,
	userRepo repository.UserRepository,
	cache SummaryCache,
	log logrus.FieldLogger,
) StatsService {
	return &statsService{
		workoutRepo: workoutRepo,
		userRepo:    userRepo,
		cache:       cache,
		log:         log,
	}
}

// Summary composes every stats metric for one user and date range.
// Both bounds are inclusive and arrive already normalized to start of
// first day and 23:59:59 of the last day.
func (s *statsService) Summary(ctx context.Context, userID primitive.ObjectID, start, end time.Time) (*StatsSummary, error) {
	if err := s.verifyUser(ctx, userID); err != nil {
		return nil, err
	}

	cacheKey := summaryCacheKey(userID, start, end)
	if s.cache != nil {
		var cached StatsSummary
		found, err := s.cache.GetJSON(ctx, cacheKey, &cached)
		if err != nil && s.log != nil {
			s.log.WithError(err).Warn("stats cache read failed, recomputing")
		}
		if found {
			return &cached, nil
		}
	}

	inRange, err := s.workoutRepo.GetByUserInRange(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	allTime, err := s.workoutRepo.GetAllByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := &StatsSummary{
		Workouts:               inRange,
		WorkoutCount:           len(inRange),
		TotalVolume:            totalVolume(inRange),
		AverageDurationMinutes: averageDurationMinutes(inRange),
		PersonalRecords:        personalRecords(allTime),
		TopExercisesByVolume:   topN(exerciseVolume(inRange), DefaultTopExercises),
		PeriodStart:            start,
		PeriodEnd:              end,
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, cacheKey, summary); err != nil && s.log != nil {
			s.log.WithError(err).Warn("stats cache write failed")
		}
	}
	return summary, nil
}

// TotalVolume sums weight x reps over every non-skipped exercise of
// the user's workouts in range.
func (s *statsService) TotalVolume(ctx context.Context, userID primitive.ObjectID, start, end time.Time) (float64, error) {
	workouts, err := s.inRange(ctx, userID, start, end)
	if err != nil {
		return 0, err
	}
	return totalVolume(workouts), nil
}

// PersonalRecords returns the all-time maximum segment weight per
// exercise name, descending by weight. Range-limited queries never
// apply here; a workout outside any date window still counts.
func (s *statsService) PersonalRecords(ctx context.Context, userID primitive.ObjectID) ([]ExerciseMetric, error) {
	if err := s.verifyUser(ctx, userID); err != nil {
		return nil, err
	}
	workouts, err := s.workoutRepo.GetAllByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return personalRecords(workouts), nil
}

// ExerciseVolume returns per-exercise-name volume within the range,
// descending by volume.
func (s *statsService) ExerciseVolume(ctx context.Context, userID primitive.ObjectID, start, end time.Time) ([]ExerciseMetric, error) {
	workouts, err := s.inRange(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	return exerciseVolume(workouts), nil
}

// TopExercisesByVolume truncates the exercise-volume ranking to the
// first limit entries. A non-positive limit yields an empty result.
func (s *statsService) TopExercisesByVolume(ctx context.Context, userID primitive.ObjectID, start, end time.Time, limit int) ([]ExerciseMetric, error) {
	volumes, err := s.ExerciseVolume(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	return topN(volumes, limit), nil
}

// AverageDuration returns the mean session length in whole minutes
// over in-range workouts that carry both timestamps. Workouts missing
// either timestamp are excluded entirely, not counted as zero.
func (s *statsService) AverageDuration(ctx context.Context, userID primitive.ObjectID, start, end time.Time) (int, error) {
	workouts, err := s.inRange(ctx, userID, start, end)
	if err != nil {
		return 0, err
	}
	return averageDurationMinutes(workouts), nil
}

// WorkoutCount returns the number of workouts in range, independent of
// their content.
func (s *statsService) WorkoutCount(ctx context.Context, userID primitive.ObjectID, start, end time.Time) (int, error) {
	workouts, err := s.inRange(ctx, userID, start, end)
	if err != nil {
		return 0, err
	}
	return len(workouts), nil
}

func (s *statsService) inRange(ctx context.Context, userID primitive.ObjectID, start, end time.Time) ([]domain.Workout, error) {
	if err := s.verifyUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.workoutRepo.GetByUserInRange(ctx, userID, start, end)
}

func (s *statsService) verifyUser(ctx context.Context, userID primitive.ObjectID) error {
	_, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if err == repository.ErrNotFound {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

func summaryCacheKey(userID primitive.ObjectID, start, end time.Time) string {
	return fmt.Sprintf("stats:summary:%s:%d:%d", userID.Hex(), start.Unix(), end.Unix())
}

// --- Pure metric computations ---

func totalVolume(workouts []domain.Workout) float64 {
	var total float64
	for i := range workouts {
		workouts[i].Walk(func(e *domain.WorkoutExercise, _ *domain.WorkoutSet, seg *domain.SetSegment) bool {
			if !e.Skipped {
				total += seg.Volume()
			}
			return true
		})
	}
	return total
}

// personalRecords computes the max weight ever logged per exercise
// name, ignoring skipped exercises. Ties keep encounter order.
func personalRecords(workouts []domain.Workout) []ExerciseMetric {
	best := make(map[string]float64)
	var order []string
	for i := range workouts {
		workouts[i].Walk(func(e *domain.WorkoutExercise, _ *domain.WorkoutSet, seg *domain.SetSegment) bool {
			if e.Skipped {
				return true
			}
			current, seen := best[e.Name]
			if !seen {
				order = append(order, e.Name)
			}
			if seg.Weight > current || !seen {
				best[e.Name] = maxFloat(current, seg.Weight)
			}
			return true
		})
	}
	return sortedMetrics(best, order)
}

// exerciseVolume sums segment volume per exercise name, ignoring
// skipped exercises.
func exerciseVolume(workouts []domain.Workout) []ExerciseMetric {
	volumes := make(map[string]float64)
	var order []string
	for i := range workouts {
		workouts[i].Walk(func(e *domain.WorkoutExercise, _ *domain.WorkoutSet, seg *domain.SetSegment) bool {
			if e.Skipped {
				return true
			}
			if _, seen := volumes[e.Name]; !seen {
				order = append(order, e.Name)
			}
			volumes[e.Name] += seg.Volume()
			return true
		})
	}
	return sortedMetrics(volumes, order)
}

// averageDurationMinutes averages the time-of-day deltas of workouts
// that have both a start and an end. Each duration is truncated to
// whole minutes before the integer mean is taken. Durations are
// derived from time-of-day components only; intra-day sessions are a
// caller guarantee.
func averageDurationMinutes(workouts []domain.Workout) int {
	var sum int64
	var count int64
	for i := range workouts {
		d, ok := workouts[i].Duration()
		if !ok {
			continue
		}
		sum += int64(d / time.Minute)
		count++
	}
	if count == 0 {
		return 0
	}
	return int(sum / count)
}

// sortedMetrics orders the name->value map descending by value. The
// sort is stable over encounter order, so equal values keep the order
// their names were first seen in.
func sortedMetrics(values map[string]float64, order []string) []ExerciseMetric {
	metrics := make([]ExerciseMetric, 0, len(order))
	for _, name := range order {
		metrics = append(metrics, ExerciseMetric{Name: name, Value: values[name]})
	}
	sort.SliceStable(metrics, func(i, j int) bool {
		return metrics[i].Value > metrics[j].Value
	})
	return metrics
}

func topN(metrics []ExerciseMetric, n int) []ExerciseMetric {
	if n <= 0 {
		return []ExerciseMetric{}
	}
	if len(metrics) > n {
		metrics = metrics[:n]
	}
	return metrics
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
