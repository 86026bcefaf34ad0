package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/yourusername/randomizer-api/internal/domain/entity"
	"github.com/yourusername/randomizer-api/internal/domain/repository"
	apperrors "github.com/yourusername/randomizer-api/internal/pkg/errors"
)

// CategoryService предоставляет методы для работы с категориями вопросов
type CategoryService struct {
	categoryRepo repository.CategoryRepository
	questionRepo repository.QuestionRepository
	cacheRepo    repository.CacheRepository
	events       CatalogEvents
}

// NewCategoryService создает новый сервис категорий
func NewCategoryService(
	categoryRepo repository.CategoryRepository,
	questionRepo repository.QuestionRepository,
	cacheRepo repository.CacheRepository,
) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		questionRepo: questionRepo,
		cacheRepo:    cacheRepo,
	}
}

// SetEvents подключает получателя событий каталога
func (s *CategoryService) SetEvents(events CatalogEvents) {
	s.events = events
}

// CreateCategory создает категорию пользователя
func (s *CategoryService) CreateCategory(ctx context.Context, userID, value string) (*entity.Category, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, ErrEmptyCategoryValue
	}

	category := &entity.Category{
		ID:     uuid.New().String(),
		Value:  value,
		UserID: userID,
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	if s.events != nil {
		s.events.OnCategoryCreated(ctx, userID, category.ID)
	}
	return category, nil
}

// ListCategories возвращает категории пользователя
func (s *CategoryService) ListCategories(ctx context.Context, userID string) ([]entity.Category, error) {
	categories, err := s.categoryRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// UpdateCategory переименовывает категорию
func (s *CategoryService) UpdateCategory(ctx context.Context, userID, id, value string) (*entity.Category, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, ErrEmptyCategoryValue
	}
	category, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	category.Value = value
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	return category, nil
}

// DeleteCategory удаляет категорию. Вопросы категории не удаляются,
// а переводятся в «без категории» и в каталоге, и в списках рандомизации.
func (s *CategoryService) DeleteCategory(ctx context.Context, userID, id string) error {
	if _, err := s.getOwned(ctx, userID, id); err != nil {
		return err
	}

	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	declassified, err := s.questionRepo.ResetCategory(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("failed to reset category on questions: %w", err)
	}
	log.Printf("[CategoryService] Категория %s удалена, вопросов без категории: %d", id, len(declassified))

	invalidateCatalog(ctx, s.cacheRepo, "CategoryService", userID)

	if s.events != nil {
		s.events.OnCategoryDeleted(ctx, userID, id, declassified)
	}
	return nil
}

func (s *CategoryService) getOwned(ctx context.Context, userID, id string) (*entity.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category.UserID != userID {
		return nil, apperrors.ErrForbidden
	}
	return category, nil
}
