package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yourusername/randomizer-api/internal/domain/entity"
	"github.com/yourusername/randomizer-api/internal/domain/repository"
	apperrors "github.com/yourusername/randomizer-api/internal/pkg/errors"
)

// QualificationService предоставляет методы для работы с квалификациями.
// Квалификации не участвуют в рандомизации.
type QualificationService struct {
	qualificationRepo repository.QualificationRepository
	questionRepo      repository.QuestionRepository
	cacheRepo         repository.CacheRepository
}

// NewQualificationService создает новый сервис квалификаций
func NewQualificationService(
	qualificationRepo repository.QualificationRepository,
	questionRepo repository.QuestionRepository,
	cacheRepo repository.CacheRepository,
) *QualificationService {
	return &QualificationService{
		qualificationRepo: qualificationRepo,
		questionRepo:      questionRepo,
		cacheRepo:         cacheRepo,
	}
}

// CreateQualification создает квалификацию пользователя
func (s *QualificationService) CreateQualification(ctx context.Context, userID, value string) (*entity.Qualification, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, ErrEmptyQualification
	}

	qualification := &entity.Qualification{
		ID:     uuid.New().String(),
		Value:  value,
		UserID: userID,
	}
	if err := s.qualificationRepo.Create(ctx, qualification); err != nil {
		return nil, fmt.Errorf("failed to create qualification: %w", err)
	}
	return qualification, nil
}

// ListQualifications возвращает квалификации пользователя
func (s *QualificationService) ListQualifications(ctx context.Context, userID string) ([]entity.Qualification, error) {
	qualifications, err := s.qualificationRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list qualifications: %w", err)
	}
	return qualifications, nil
}

// UpdateQualification переименовывает квалификацию
func (s *QualificationService) UpdateQualification(ctx context.Context, userID, id, value string) (*entity.Qualification, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, ErrEmptyQualification
	}
	qualification, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	qualification.Value = value
	if err := s.qualificationRepo.Update(ctx, qualification); err != nil {
		return nil, fmt.Errorf("failed to update qualification: %w", err)
	}
	return qualification, nil
}

// DeleteQualification удаляет квалификацию и снимает её с вопросов пользователя
func (s *QualificationService) DeleteQualification(ctx context.Context, userID, id string) error {
	if _, err := s.getOwned(ctx, userID, id); err != nil {
		return err
	}
	if err := s.qualificationRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete qualification: %w", err)
	}
	if _, err := s.questionRepo.ResetQualification(ctx, userID, id); err != nil {
		return fmt.Errorf("failed to reset qualification on questions: %w", err)
	}
	invalidateCatalog(ctx, s.cacheRepo, "QualificationService", userID)
	return nil
}

func (s *QualificationService) getOwned(ctx context.Context, userID, id string) (*entity.Qualification, error) {
	qualification, err := s.qualificationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if qualification.UserID != userID {
		return nil, apperrors.ErrForbidden
	}
	return qualification, nil
}
