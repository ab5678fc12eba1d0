package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"serenity/practice-app/internal/domain"
	"serenity/practice-app/internal/progress"
	"serenity/practice-app/internal/repository"
	"serenity/practice-app/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrProgressNotFound     = errors.New("progress record not found")
	ErrProgressAccessDenied = errors.New("access denied to this progress record")
	ErrAssignmentNotFound   = errors.New("plan assignment not found")
	ErrReportArchiveFailed  = errors.New("failed to archive progress report")
)

// --- Service Interface ---

// ProgressService persists per-assignment progress state and exposes the
// tracking operations on it. Every mutation is load-modify-save against the
// progress repository; aggregation never writes.
type ProgressService interface {
	InitProgress(ctx context.Context, therapistID, assignmentID primitive.ObjectID) (*domain.ProgressRecord, error)
	GetProgress(ctx context.Context, therapistID, assignmentID primitive.ObjectID) (*domain.ProgressRecord, error)

	ToggleObjective(ctx context.Context, therapistID, assignmentID primitive.ObjectID, objectiveID string) (*domain.ProgressRecord, error)
	SetObjectiveProgress(ctx context.Context, therapistID, assignmentID primitive.ObjectID, objectiveID string, percent int) (*domain.ProgressRecord, error)
	SetSessionAttendance(ctx context.Context, therapistID, assignmentID primitive.ObjectID, sessionID string, attendance domain.Attendance) (*domain.ProgressRecord, error)
	SetSessionRating(ctx context.Context, therapistID, assignmentID primitive.ObjectID, sessionID string, rating int) (*domain.ProgressRecord, error)
	ToggleHomework(ctx context.Context, therapistID, assignmentID primitive.ObjectID, homeworkID string) (*domain.ProgressRecord, error)
	SetHomeworkQuality(ctx context.Context, therapistID, assignmentID primitive.ObjectID, homeworkID string, quality domain.HomeworkQuality) (*domain.ProgressRecord, error)
	AddNote(ctx context.Context, therapistID, assignmentID primitive.ObjectID, text string) (*domain.ProgressRecord, error)

	GetReport(ctx context.Context, therapistID, assignmentID primitive.ObjectID) (*domain.ProgressReport, error)
	// ArchiveReport serializes the current report, stores it in the archive
	// and returns a time-limited download URL.
	ArchiveReport(ctx context.Context, therapistID, assignmentID primitive.ObjectID) (string, error)
}

// --- Service Implementation ---

type progressService struct {
	progressRepo   repository.ProgressRepository
	assignmentRepo repository.AssignmentRepository
	planRepo       repository.PlanRepository
	archive        storage.ReportArchive
}

// NewProgressService creates a new instance of progressService.
func NewProgressService(
	progressRepo repository.ProgressRepository,
	assignmentRepo repository.AssignmentRepository,
	planRepo repository.PlanRepository,
	archive storage.ReportArchive,
) ProgressService {
	return &progressService{
		progressRepo:   progressRepo,
		assignmentRepo: assignmentRepo,
		planRepo:       planRepo,
		archive:        archive,
	}
}

// InitProgress seeds a progress record from the assignment's plan template.
// Calling it again for the same assignment returns the existing record.
func (s *progressService) InitProgress(ctx context.Context, therapistID, assignmentID primitive.ObjectID) (*domain.ProgressRecord, error) {
	if existing, err := s.progressRepo.GetByAssignmentID(ctx, assignmentID); err == nil {
		if existing.TherapistID != therapistID {
			return nil, ErrProgressAccessDenied
		}
		return existing, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	assignment, err := s.assignmentRepo.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	if assignment.TherapistID != therapistID {
		return nil, ErrProgressAccessDenied
	}

	plan, err := s.planRepo.GetByID(ctx, assignment.PlanID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}

	record := progress.NewRecord(plan, assignment.ClientID, assignment.ID)
	recordID, err := s.progressRepo.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	record.ID = recordID
	return record, nil
}

func (s *progressService) load(ctx context.Context, therapistID, assignmentID primitive.ObjectID) (*domain.ProgressRecord, error) {
	record, err := s.progressRepo.GetByAssignmentID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProgressNotFound
		}
		return nil, err
	}
	if record.TherapistID != therapistID {
		return nil, ErrProgressAccessDenied
	}
	return record, nil
}

// mutate runs one tracker operation under load-modify-save.
func (s *progressService) mutate(ctx context.Context, therapistID, assignmentID primitive.ObjectID, op func(*progress.Tracker)) (*domain.ProgressRecord, error) {
	record, err := s.load(ctx, therapistID, assignmentID)
	if err != nil {
		return nil, err
	}

	tracker := progress.NewTracker(record)
	op(tracker)

	if err := s.progressRepo.Update(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *progressService) GetProgress(ctx context.Context, therapistID, assignmentID primitive.ObjectID) (*domain.ProgressRecord, error) {
	return s.load(ctx, therapistID, assignmentID)
}

func (s *progressService) ToggleObjective(ctx context.Context, therapistID, assignmentID primitive.ObjectID, objectiveID string) (*domain.ProgressRecord, error) {
	return s.mutate(ctx, therapistID, assignmentID, func(t *progress.Tracker) {
		t.ToggleObjective(objectiveID)
	})
}

func (s *progressService) SetObjectiveProgress(ctx context.Context, therapistID, assignmentID primitive.ObjectID, objectiveID string, percent int) (*domain.ProgressRecord, error) {
	return s.mutate(ctx, therapistID, assignmentID, func(t *progress.Tracker) {
		t.SetObjectiveProgress(objectiveID, percent)
	})
}

func (s *progressService) SetSessionAttendance(ctx context.Context, therapistID, assignmentID primitive.ObjectID, sessionID string, attendance domain.Attendance) (*domain.ProgressRecord, error) {
	return s.mutate(ctx, therapistID, assignmentID, func(t *progress.Tracker) {
		t.SetSessionAttendance(sessionID, attendance)
	})
}

func (s *progressService) SetSessionRating(ctx context.Context, therapistID, assignmentID primitive.ObjectID, sessionID string, rating int) (*domain.ProgressRecord, error) {
	return s.mutate(ctx, therapistID, assignmentID, func(t *progress.Tracker) {
		t.SetSessionRating(sessionID, rating)
	})
}

func (s *progressService) ToggleHomework(ctx context.Context, therapistID, assignmentID primitive.ObjectID, homeworkID string) (*domain.ProgressRecord, error) {
	return s.mutate(ctx, therapistID, assignmentID, func(t *progress.Tracker) {
		t.ToggleHomework(homeworkID)
	})
}

func (s *progressService) SetHomeworkQuality(ctx context.Context, therapistID, assignmentID primitive.ObjectID, homeworkID string, quality domain.HomeworkQuality) (*domain.ProgressRecord, error) {
	return s.mutate(ctx, therapistID, assignmentID, func(t *progress.Tracker) {
		t.SetHomeworkQuality(homeworkID, quality)
	})
}

func (s *progressService) AddNote(ctx context.Context, therapistID, assignmentID primitive.ObjectID, text string) (*domain.ProgressRecord, error) {
	return s.mutate(ctx, therapistID, assignmentID, func(t *progress.Tracker) {
		t.AddNote(text)
	})
}

// GetReport aggregates the current record into a report without writing.
func (s *progressService) GetReport(ctx context.Context, therapistID, assignmentID primitive.ObjectID) (*domain.ProgressReport, error) {
	record, err := s.load(ctx, therapistID, assignmentID)
	if err != nil {
		return nil, err
	}
	report := progress.NewTracker(record).Report()
	return &report, nil
}

// ArchiveReport exports the current report as JSON into the report archive
// and returns a presigned download URL.
func (s *progressService) ArchiveReport(ctx context.Context, therapistID, assignmentID primitive.ObjectID) (string, error) {
	record, err := s.load(ctx, therapistID, assignmentID)
	if err != nil {
		return "", err
	}
	report := progress.NewTracker(record).Report()

	body, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrReportArchiveFailed, err)
	}

	objectKey := fmt.Sprintf("reports/%s/%s/%s.json",
		therapistID.Hex(), assignmentID.Hex(), uuid.NewString())
	if err := s.archive.PutReport(ctx, objectKey, body, "application/json"); err != nil {
		return "", fmt.Errorf("%w: %v", ErrReportArchiveFailed, err)
	}

	url, err := s.archive.GeneratePresignedDownloadURL(ctx, objectKey, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrReportArchiveFailed, err)
	}
	return url, nil
}
