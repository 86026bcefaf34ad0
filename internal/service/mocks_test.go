package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/yourusername/randomizer-api/internal/domain/entity"
	"github.com/yourusername/randomizer-api/internal/domain/repository"
	"github.com/yourusername/randomizer-api/internal/service/randomizer"
)

// ============================================================================
// Моки репозиториев каталога
// ============================================================================

// MockQuestionRepository реализует repository.QuestionRepository
type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) Create(ctx context.Context, question *entity.Question) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockQuestionRepository) GetByID(ctx context.Context, id string) (*entity.Question, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Question), args.Error(1)
}

func (m *MockQuestionRepository) GetByUserID(ctx context.Context, userID string) ([]entity.Question, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Question), args.Error(1)
}

func (m *MockQuestionRepository) ListWithFilters(ctx context.Context, userID string, filters repository.QuestionFilters) ([]entity.Question, error) {
	args := m.Called(ctx, userID, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Question), args.Error(1)
}

func (m *MockQuestionRepository) Update(ctx context.Context, question *entity.Question) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockQuestionRepository) SetActive(ctx context.Context, id string, isActive bool) error {
	args := m.Called(ctx, id, isActive)
	return args.Error(0)
}

func (m *MockQuestionRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockQuestionRepository) ResetCategory(ctx context.Context, userID, categoryID string) ([]string, error) {
	args := m.Called(ctx, userID, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockQuestionRepository) ResetQualification(ctx context.Context, userID, qualificationID string) (int64, error) {
	args := m.Called(ctx, userID, qualificationID)
	return args.Get(0).(int64), args.Error(1)
}

// MockCategoryRepository реализует repository.CategoryRepository
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) Create(ctx context.Context, category *entity.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, id string) (*entity.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Category), args.Error(1)
}

func (m *MockCategoryRepository) GetByUserID(ctx context.Context, userID string) ([]entity.Category, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Category), args.Error(1)
}

func (m *MockCategoryRepository) Update(ctx context.Context, category *entity.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockQualificationRepository реализует repository.QualificationRepository
type MockQualificationRepository struct {
	mock.Mock
}

func (m *MockQualificationRepository) Create(ctx context.Context, qualification *entity.Qualification) error {
	args := m.Called(ctx, qualification)
	return args.Error(0)
}

func (m *MockQualificationRepository) GetByID(ctx context.Context, id string) (*entity.Qualification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Qualification), args.Error(1)
}

func (m *MockQualificationRepository) GetByUserID(ctx context.Context, userID string) ([]entity.Qualification, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Qualification), args.Error(1)
}

func (m *MockQualificationRepository) Update(ctx context.Context, qualification *entity.Qualification) error {
	args := m.Called(ctx, qualification)
	return args.Error(0)
}

func (m *MockQualificationRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockCacheRepository реализует repository.CacheRepository
type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) GetJSON(ctx context.Context, key string, dest interface{}) error {
	args := m.Called(ctx, key, dest)
	return args.Error(0)
}

func (m *MockCacheRepository) Version(ctx context.Context, key string) (int64, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCacheRepository) SetJSONIfVersion(ctx context.Context, key string, value interface{}, expiration time.Duration, version int64) (bool, error) {
	args := m.Called(ctx, key, value, expiration, version)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheRepository) Invalidate(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// MockCatalogEvents реализует CatalogEvents
type MockCatalogEvents struct {
	mock.Mock
}

func (m *MockCatalogEvents) OnQuestionCreated(ctx context.Context, userID string, question entity.Question) {
	m.Called(ctx, userID, question)
}

func (m *MockCatalogEvents) OnQuestionUpdated(ctx context.Context, userID string, question entity.Question) {
	m.Called(ctx, userID, question)
}

func (m *MockCatalogEvents) OnQuestionDeleted(ctx context.Context, userID, questionID string) {
	m.Called(ctx, userID, questionID)
}

func (m *MockCatalogEvents) OnCategoryCreated(ctx context.Context, userID, categoryID string) {
	m.Called(ctx, userID, categoryID)
}

func (m *MockCatalogEvents) OnCategoryDeleted(ctx context.Context, userID, categoryID string, questionIDs []string) {
	m.Called(ctx, userID, categoryID, questionIDs)
}

// ============================================================================
// Мок хранилища рандомизаций
// ============================================================================

// MockRandomizationRepository реализует repository.RandomizationRepository
type MockRandomizationRepository struct {
	mock.Mock
}

func (m *MockRandomizationRepository) GetByUserID(ctx context.Context, userID string) (*entity.RandomizationRecord, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.RandomizationRecord), args.Error(1)
}

func (m *MockRandomizationRepository) Create(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *MockRandomizationRepository) Update(ctx context.Context, randomization *entity.Randomization) error {
	args := m.Called(ctx, randomization)
	return args.Error(0)
}

func (m *MockRandomizationRepository) GetUsedQuestionList(ctx context.Context, randomizationID string) ([]entity.QuestionCategory, error) {
	args := m.Called(ctx, randomizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.QuestionCategory), args.Error(1)
}

func (m *MockRandomizationRepository) GetPostponedQuestionList(ctx context.Context, randomizationID string) ([]entity.QuestionCategory, error) {
	args := m.Called(ctx, randomizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.QuestionCategory), args.Error(1)
}

func (m *MockRandomizationRepository) GetSelectedCategoryIDList(ctx context.Context, randomizationID string) ([]string, error) {
	args := m.Called(ctx, randomizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockRandomizationRepository) AddUsedQuestion(ctx context.Context, randomizationID string, qc entity.QuestionCategory) error {
	return m.Called(ctx, randomizationID, qc).Error(0)
}

func (m *MockRandomizationRepository) DeleteUsedQuestion(ctx context.Context, randomizationID, questionID string) error {
	return m.Called(ctx, randomizationID, questionID).Error(0)
}

func (m *MockRandomizationRepository) DeleteAllUsedQuestions(ctx context.Context, randomizationID string) error {
	return m.Called(ctx, randomizationID).Error(0)
}

func (m *MockRandomizationRepository) UpdateUsedQuestionCategory(ctx context.Context, randomizationID, questionID, categoryID string) error {
	return m.Called(ctx, randomizationID, questionID, categoryID).Error(0)
}

func (m *MockRandomizationRepository) ResetUsedQuestionsCategory(ctx context.Context, randomizationID, categoryID string) error {
	return m.Called(ctx, randomizationID, categoryID).Error(0)
}

func (m *MockRandomizationRepository) AddPostponedQuestion(ctx context.Context, randomizationID string, qc entity.QuestionCategory) error {
	return m.Called(ctx, randomizationID, qc).Error(0)
}

func (m *MockRandomizationRepository) DeletePostponedQuestion(ctx context.Context, randomizationID, questionID string) error {
	return m.Called(ctx, randomizationID, questionID).Error(0)
}

func (m *MockRandomizationRepository) UpdatePostponedQuestionCategory(ctx context.Context, randomizationID, questionID, categoryID string) error {
	return m.Called(ctx, randomizationID, questionID, categoryID).Error(0)
}

func (m *MockRandomizationRepository) ResetPostponedQuestionsCategory(ctx context.Context, randomizationID, categoryID string) error {
	return m.Called(ctx, randomizationID, categoryID).Error(0)
}

func (m *MockRandomizationRepository) AddSelectedCategory(ctx context.Context, randomizationID, categoryID string) error {
	return m.Called(ctx, randomizationID, categoryID).Error(0)
}

func (m *MockRandomizationRepository) DeleteSelectedCategory(ctx context.Context, randomizationID, categoryID string) error {
	return m.Called(ctx, randomizationID, categoryID).Error(0)
}

// MockNotifier реализует RandomizationNotifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyRandomization(userID string, view randomizer.View) {
	m.Called(userID, view)
}
