package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rifkihafidz/liftly/internal/domain"
	"github.com/rifkihafidz/liftly/internal/repository"
	"github.com/rifkihafidz/liftly/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutExport is the document uploaded to object storage when a user
// exports their training history.
type WorkoutExport struct {
	UserID      string           `json:"userId"`
	GeneratedAt time.Time        `json:"generatedAt"`
	Workouts    []domain.Workout `json:"workouts"`
}

// ExportResult points the caller at the finished export.
type ExportResult struct {
	DownloadURL string    `json:"downloadUrl"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// --- Service Interface ---
type ExportService interface {
	ExportWorkouts(ctx context.Context, userID primitive.ObjectID) (*ExportResult, error)
}

// --- Service Implementation ---

// exportService implements the ExportService interface: it serializes
// a user's full workout history, uploads it to object storage and
// returns a temporary download URL.
type exportService struct {
	workoutRepo repository.WorkoutRepository
	userRepo    repository.UserRepository
	fileStorage storage.FileStorage
	urlExpiry   time.Duration
}

// NewExportService creates a new instance of exportService.
func NewExportService(
	workoutRepo repository.WorkoutRepository,
	userRepo repository.UserRepository,
	fileStorage storage.FileStorage,
	urlExpiry time.Duration,
) ExportService {
	if urlExpiry <= 0 {
		urlExpiry = storage.DefaultPresignedURLExpiry
	}
	return &exportService{
		workoutRepo: workoutRepo,
		userRepo:    userRepo,
		fileStorage: fileStorage,
		urlExpiry:   urlExpiry,
	}
}

// ExportWorkouts builds and uploads the export document. Object keys
// are random per export so repeated exports never overwrite each other.
func (s *exportService) ExportWorkouts(ctx context.Context, userID primitive.ObjectID) (*ExportResult, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	workouts, err := s.workoutRepo.GetAllByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	export := WorkoutExport{
		UserID:      userID.Hex(),
		GeneratedAt: time.Now().UTC(),
		Workouts:    workouts,
	}
	body, err := json.Marshal(export)
	if err != nil {
		return nil, err
	}

	objectKey := fmt.Sprintf("exports/%s/%s.json", userID.Hex(), uuid.NewString())
	if err := s.fileStorage.UploadObject(ctx, objectKey, body, "application/json"); err != nil {
		return nil, err
	}

	url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, objectKey, s.urlExpiry)
	if err != nil {
		return nil, err
	}

	return &ExportResult{
		DownloadURL: url,
		ExpiresAt:   time.Now().Add(s.urlExpiry),
	}, nil
}
