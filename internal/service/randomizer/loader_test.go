package randomizer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/randomizer-api/internal/domain/entity"
	apperrors "github.com/yourusername/randomizer-api/internal/pkg/errors"
)

func newTestLoader(catalog Catalog) (*Loader, *Store, *MockRandomizationRepository) {
	gateway := new(MockRandomizationRepository)
	store := NewStore()
	return NewLoader("u1", store, catalog, newTestPersister(store, gateway)), store, gateway
}

func TestLoader_NoRecord_CreatesFreshRandomization(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	catalog := staticCatalog(
		entity.Question{ID: "q2", CategoryID: "cat-b", IsActive: false, CreatedAt: base.Add(time.Minute)},
		entity.Question{ID: "q1", CategoryID: "cat-a", IsActive: true, CreatedAt: base},
		entity.Question{ID: "q3", IsActive: true, CreatedAt: base.Add(2 * time.Minute)},
	)
	loader, store, gateway := newTestLoader(catalog)
	gateway.On("GetByUserID", mock.Anything, "u1").Return(nil, apperrors.ErrNotFound).Once()
	gateway.On("Create", mock.Anything, "u1").Return("r1", nil).Once()

	require.NoError(t, loader.Load(context.Background(), false))

	assert.Equal(t, LoadStateLoaded, store.LoadState())
	got := store.Randomization()
	assert.Equal(t, "r1", got.ID)
	assert.Equal(t, entity.RandomizationStatusOngoing, got.Status)
	// Каждый вопрос каталога ровно в одном списке, включая неактивные
	assert.Equal(t, entity.QuestionCategoryList{qc("q1", "cat-a"), qc("q2", "cat-b"), qc("q3", "")}, got.AvailableQuestionList)
	assert.Empty(t, got.UsedQuestionList)
	assert.Empty(t, got.PostponedQuestionList)
	assert.Empty(t, got.SelectedCategoryIDList)
	assert.Nil(t, got.CurrentQuestion)
	gateway.AssertExpectations(t)
}

func TestLoader_AlreadyLoaded_NoRefetch(t *testing.T) {
	loader, store, gateway := newTestLoader(staticCatalog())
	gateway.On("GetByUserID", mock.Anything, "u1").Return(nil, apperrors.ErrNotFound).Once()
	gateway.On("Create", mock.Anything, "u1").Return("r1", nil).Once()

	require.NoError(t, loader.Load(context.Background(), false))
	require.NoError(t, loader.Load(context.Background(), false))

	assert.Equal(t, LoadStateLoaded, store.LoadState())
	gateway.AssertNumberOfCalls(t, "GetByUserID", 1)
}

func TestLoader_ExistingRecord_Rehydrates(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	catalog := staticCatalog(
		entity.Question{ID: "q1", CategoryID: "cat-a", IsActive: true, CreatedAt: base},
		entity.Question{ID: "q2", CategoryID: "cat-new", IsActive: true, CreatedAt: base.Add(time.Minute)},
		entity.Question{ID: "q3", IsActive: true, CreatedAt: base.Add(2 * time.Minute)},
		entity.Question{ID: "q4", IsActive: true, CreatedAt: base.Add(3 * time.Minute)},
	)
	loader, store, gateway := newTestLoader(catalog)
	gateway.On("GetByUserID", mock.Anything, "u1").Return(&entity.RandomizationRecord{
		ID: "r1", UserID: "u1", Status: entity.RandomizationStatusOngoing, ShowAnswer: true, CurrentQuestionID: "q3",
	}, nil).Once()
	gateway.On("GetUsedQuestionList", mock.Anything, "r1").Return([]entity.QuestionCategory{
		qc("q2", "cat-old"), qc("deleted", ""),
	}, nil).Once()
	gateway.On("GetPostponedQuestionList", mock.Anything, "r1").Return([]entity.QuestionCategory{qc("q4", "")}, nil).Once()
	gateway.On("GetSelectedCategoryIDList", mock.Anything, "r1").Return([]string{"cat-a", "cat-a"}, nil).Once()
	// Исправления сохранённого состояния
	gateway.On("UpdateUsedQuestionCategory", mock.Anything, "r1", "q2", "cat-new").Return(nil).Once()
	gateway.On("DeleteUsedQuestion", mock.Anything, "r1", "deleted").Return(nil).Once()

	require.NoError(t, loader.Load(context.Background(), false))

	got := store.Randomization()
	assert.Equal(t, entity.QuestionCategoryList{qc("q1", "cat-a"), qc("q3", "")}, got.AvailableQuestionList)
	assert.Equal(t, entity.QuestionCategoryList{qc("q2", "cat-new")}, got.UsedQuestionList)
	assert.Equal(t, entity.QuestionCategoryList{qc("q4", "")}, got.PostponedQuestionList)
	assert.Equal(t, []string{"cat-a"}, got.SelectedCategoryIDList)
	require.NotNil(t, got.CurrentQuestion)
	assert.Equal(t, "q3", got.CurrentQuestion.ID)
	assert.True(t, got.ShowAnswer)
	assertDisjoint(t, got)
	gateway.AssertExpectations(t)
}

func TestLoader_InactiveCurrentQuestion_Cleared(t *testing.T) {
	catalog := staticCatalog(entity.Question{ID: "q1", IsActive: false})
	loader, store, gateway := newTestLoader(catalog)
	gateway.On("GetByUserID", mock.Anything, "u1").Return(&entity.RandomizationRecord{
		ID: "r1", UserID: "u1", ShowAnswer: true, CurrentQuestionID: "q1",
	}, nil).Once()
	gateway.On("GetUsedQuestionList", mock.Anything, "r1").Return([]entity.QuestionCategory{}, nil)
	gateway.On("GetPostponedQuestionList", mock.Anything, "r1").Return([]entity.QuestionCategory{}, nil)
	gateway.On("GetSelectedCategoryIDList", mock.Anything, "r1").Return([]string{}, nil)
	gateway.On("Update", mock.Anything, mock.MatchedBy(func(r *entity.Randomization) bool {
		return r.CurrentQuestion == nil && !r.ShowAnswer
	})).Return(nil).Once()

	require.NoError(t, loader.Load(context.Background(), false))

	got := store.Randomization()
	assert.Nil(t, got.CurrentQuestion)
	assert.False(t, got.ShowAnswer)
	assert.Equal(t, entity.RandomizationStatusOngoing, got.Status)
	gateway.AssertExpectations(t)
}

func TestLoader_GatewayError_KeepsPriorState(t *testing.T) {
	loader, store, gateway := newTestLoader(staticCatalog(entity.Question{ID: "q1", IsActive: true}))
	gateway.On("GetByUserID", mock.Anything, "u1").Return(nil, apperrors.ErrNotFound).Once()
	gateway.On("Create", mock.Anything, "u1").Return("r1", nil).Once()
	require.NoError(t, loader.Load(context.Background(), false))

	gateway.On("GetByUserID", mock.Anything, "u1").Return(nil, errors.New("db is down")).Once()

	err := loader.Load(context.Background(), true)

	require.Error(t, err)
	assert.Equal(t, LoadStateLoadFailed, store.LoadState())
	assert.Contains(t, store.LastError(), "db is down")
	require.NotNil(t, store.Randomization(), "Прежнее состояние сохраняется")
	assert.Equal(t, "r1", store.Randomization().ID)
}

func TestLoader_CreateError(t *testing.T) {
	loader, store, gateway := newTestLoader(staticCatalog())
	gateway.On("GetByUserID", mock.Anything, "u1").Return(nil, apperrors.ErrNotFound).Once()
	gateway.On("Create", mock.Anything, "u1").Return("", errors.New("insert failed")).Once()

	err := loader.Load(context.Background(), false)

	require.Error(t, err)
	assert.Nil(t, store.Randomization())
	assert.Equal(t, LoadStateLoadFailed, store.LoadState())
}

func TestLoader_CatalogError(t *testing.T) {
	failing := CatalogFunc(func(ctx context.Context, userID string) (entity.QuestionMap, error) {
		return nil, errors.New("catalog unavailable")
	})
	loader, store, gateway := newTestLoader(failing)

	err := loader.Load(context.Background(), false)

	require.Error(t, err)
	assert.Contains(t, store.LastError(), "catalog unavailable")
	gateway.AssertNotCalled(t, "GetByUserID", mock.Anything, mock.Anything)
}
