package randomizer

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/yourusername/randomizer-api/internal/domain/entity"
)

// MockRandomizationRepository — мок хранилища рандомизаций
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
	args := m.Called(ctx, randomizationID, qc)
	return args.Error(0)
}

func (m *MockRandomizationRepository) DeleteUsedQuestion(ctx context.Context, randomizationID, questionID string) error {
	args := m.Called(ctx, randomizationID, questionID)
	return args.Error(0)
}

func (m *MockRandomizationRepository) DeleteAllUsedQuestions(ctx context.Context, randomizationID string) error {
	args := m.Called(ctx, randomizationID)
	return args.Error(0)
}

func (m *MockRandomizationRepository) UpdateUsedQuestionCategory(ctx context.Context, randomizationID, questionID, categoryID string) error {
	args := m.Called(ctx, randomizationID, questionID, categoryID)
	return args.Error(0)
}

func (m *MockRandomizationRepository) ResetUsedQuestionsCategory(ctx context.Context, randomizationID, categoryID string) error {
	args := m.Called(ctx, randomizationID, categoryID)
	return args.Error(0)
}

func (m *MockRandomizationRepository) AddPostponedQuestion(ctx context.Context, randomizationID string, qc entity.QuestionCategory) error {
	args := m.Called(ctx, randomizationID, qc)
	return args.Error(0)
}

func (m *MockRandomizationRepository) DeletePostponedQuestion(ctx context.Context, randomizationID, questionID string) error {
	args := m.Called(ctx, randomizationID, questionID)
	return args.Error(0)
}

func (m *MockRandomizationRepository) UpdatePostponedQuestionCategory(ctx context.Context, randomizationID, questionID, categoryID string) error {
	args := m.Called(ctx, randomizationID, questionID, categoryID)
	return args.Error(0)
}

func (m *MockRandomizationRepository) ResetPostponedQuestionsCategory(ctx context.Context, randomizationID, categoryID string) error {
	args := m.Called(ctx, randomizationID, categoryID)
	return args.Error(0)
}

func (m *MockRandomizationRepository) AddSelectedCategory(ctx context.Context, randomizationID, categoryID string) error {
	args := m.Called(ctx, randomizationID, categoryID)
	return args.Error(0)
}

func (m *MockRandomizationRepository) DeleteSelectedCategory(ctx context.Context, randomizationID, categoryID string) error {
	args := m.Called(ctx, randomizationID, categoryID)
	return args.Error(0)
}

// staticCatalog возвращает фиксированный каталог
func staticCatalog(questions ...entity.Question) CatalogFunc {
	m := make(entity.QuestionMap, len(questions))
	for _, q := range questions {
		m[q.ID] = q
	}
	return func(ctx context.Context, userID string) (entity.QuestionMap, error) {
		return m, nil
	}
}

// newTestPersister создаёт persister поверх мока
func newTestPersister(store *Store, gateway *MockRandomizationRepository) *persister {
	return &persister{store: store, gateway: gateway, timeout: DefaultGatewayTimeout}
}
