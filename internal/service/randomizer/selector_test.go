package randomizer

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/randomizer-api/internal/domain/entity"
)

func catalogOf(questions ...entity.Question) entity.QuestionMap {
	m := make(entity.QuestionMap, len(questions))
	for _, q := range questions {
		m[q.ID] = q
	}
	return m
}

func TestPickNextQuestion_PostponedFallback_FiltersByCategoryFIFO(t *testing.T) {
	r := entity.NewRandomization("r1", "u1", nil)
	r.PostponedQuestionList = entity.QuestionCategoryList{qc("q1", "cat-a"), qc("q2", "cat-b")}
	r.SelectedCategoryIDList = []string{"cat-b"}
	catalog := catalogOf(
		entity.Question{ID: "q1", CategoryID: "cat-a", IsActive: true},
		entity.Question{ID: "q2", CategoryID: "cat-b", IsActive: true},
	)

	next := PickNextQuestion(r, catalog, func(int) int { t.Fatal("available пуст, случайный выбор не нужен"); return 0 })

	require.NotNil(t, next)
	assert.Equal(t, "q2", next.ID)
}

func TestPickNextQuestion_PostponedOldestFirst(t *testing.T) {
	r := entity.NewRandomization("r1", "u1", nil)
	r.PostponedQuestionList = entity.QuestionCategoryList{qc("q1", ""), qc("q2", ""), qc("q3", "")}
	r.SelectedCategoryIDList = []string{entity.UncategorizedCategoryID}
	catalog := catalogOf(
		entity.Question{ID: "q1", IsActive: false},
		entity.Question{ID: "q2", IsActive: true},
		entity.Question{ID: "q3", IsActive: true},
	)

	next := PickNextQuestion(r, catalog, rand.IntN)

	require.NotNil(t, next)
	assert.Equal(t, "q2", next.ID, "Неактивный q1 пропускается, выбирается самый старый из оставшихся")
}

func TestPickNextQuestion_AvailableIgnoresCategories(t *testing.T) {
	r := entity.NewRandomization("r1", "u1", []entity.Question{{ID: "q1", CategoryID: "cat-a"}})
	r.PostponedQuestionList = entity.QuestionCategoryList{qc("q2", "cat-b")}
	r.SelectedCategoryIDList = []string{"cat-b"}
	catalog := catalogOf(
		entity.Question{ID: "q1", CategoryID: "cat-a", IsActive: true},
		entity.Question{ID: "q2", CategoryID: "cat-b", IsActive: true},
	)

	next := PickNextQuestion(r, catalog, rand.IntN)

	require.NotNil(t, next)
	assert.Equal(t, "q1", next.ID)
}

func TestPickNextQuestion_InactiveOnlyAvailable(t *testing.T) {
	r := entity.NewRandomization("r1", "u1", []entity.Question{{ID: "q1"}})
	catalog := catalogOf(entity.Question{ID: "q1", IsActive: false})

	for i := 0; i < 100; i++ {
		assert.Nil(t, PickNextQuestion(r, catalog, rand.IntN))
	}
}

func TestPickNextQuestion_MissingFromCatalog(t *testing.T) {
	r := entity.NewRandomization("r1", "u1", []entity.Question{{ID: "deleted"}})
	assert.Nil(t, PickNextQuestion(r, catalogOf(), rand.IntN))
	assert.Nil(t, PickNextQuestion(nil, catalogOf(), rand.IntN))
}

func TestPickNextQuestion_UniformDistribution(t *testing.T) {
	questions := []entity.Question{
		{ID: "q1", IsActive: true},
		{ID: "q2", IsActive: true},
		{ID: "q3", IsActive: true},
	}
	r := entity.NewRandomization("r1", "u1", questions)
	catalog := catalogOf(questions...)
	rng := rand.New(rand.NewPCG(1, 2))

	const runs = 10000
	counts := make(map[string]int)
	for i := 0; i < runs; i++ {
		next := PickNextQuestion(r, catalog, rng.IntN)
		require.NotNil(t, next)
		counts[next.ID]++
	}

	for _, q := range questions {
		freq := float64(counts[q.ID]) / runs
		assert.InDelta(t, 1.0/3.0, freq, 0.05, "Частота выбора %s", q.ID)
	}
}

func TestSelector_UniformDistribution(t *testing.T) {
	questions := []entity.Question{
		{ID: "q1", IsActive: true},
		{ID: "q2", IsActive: true},
		{ID: "q3", IsActive: true},
	}
	catalog := catalogOf(questions...)
	gateway := new(MockRandomizationRepository)
	gateway.On("Update", mock.Anything, mock.Anything).Return(nil)

	store := newLoadedStore(entity.NewRandomization("r1", "u1", questions))
	selector := NewSelector(store, newTestPersister(store, gateway), rand.New(rand.NewPCG(3, 4)))

	const runs = 10000
	counts := make(map[string]int)
	for i := 0; i < runs; i++ {
		store.ClearCurrentQuestion()
		require.True(t, selector.AdvanceToNextQuestion(context.Background(), catalog))
		counts[store.Randomization().CurrentQuestionID()]++
	}

	for _, q := range questions {
		assert.InDelta(t, 1.0/3.0, float64(counts[q.ID])/runs, 0.05, "Частота выбора %s", q.ID)
	}
}

func TestSelector_InactiveOnlyClearsCurrent(t *testing.T) {
	gateway := new(MockRandomizationRepository)
	gateway.On("Update", mock.Anything, mock.MatchedBy(func(r *entity.Randomization) bool {
		return r.CurrentQuestion == nil && !r.ShowAnswer
	})).Return(nil).Once()

	r := entity.NewRandomization("r1", "u1", []entity.Question{{ID: "q1"}})
	r.CurrentQuestion = &entity.Question{ID: "q1", IsActive: true}
	r.ShowAnswer = true
	store := newLoadedStore(r)
	selector := NewSelector(store, newTestPersister(store, gateway), nil)

	changed := selector.AdvanceToNextQuestion(context.Background(), catalogOf(entity.Question{ID: "q1", IsActive: false}))

	assert.True(t, changed)
	got := store.Randomization()
	assert.Nil(t, got.CurrentQuestion)
	assert.False(t, got.ShowAnswer)
	gateway.AssertExpectations(t)
}

func TestSelector_SameQuestion_NoSecondWrite(t *testing.T) {
	gateway := new(MockRandomizationRepository)
	gateway.On("Update", mock.Anything, mock.Anything).Return(nil)

	questions := []entity.Question{{ID: "q1", IsActive: true}}
	store := newLoadedStore(entity.NewRandomization("r1", "u1", questions))
	selector := NewSelector(store, newTestPersister(store, gateway), nil)

	assert.True(t, selector.AdvanceToNextQuestion(context.Background(), catalogOf(questions...)))
	assert.False(t, selector.AdvanceToNextQuestion(context.Background(), catalogOf(questions...)))

	gateway.AssertNumberOfCalls(t, "Update", 1)
	assert.Equal(t, "q1", store.Randomization().CurrentQuestionID())
}

func TestSelector_NothingToSelect_NoWrite(t *testing.T) {
	gateway := new(MockRandomizationRepository)
	store := newLoadedStore(entity.NewRandomization("r1", "u1", nil))
	selector := NewSelector(store, newTestPersister(store, gateway), nil)

	assert.False(t, selector.AdvanceToNextQuestion(context.Background(), catalogOf()))
	gateway.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestSelector_PersistFailure_KeepsInMemoryState(t *testing.T) {
	gateway := new(MockRandomizationRepository)
	gateway.On("Update", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

	questions := []entity.Question{{ID: "q1", IsActive: true}}
	store := newLoadedStore(entity.NewRandomization("r1", "u1", questions))
	selector := NewSelector(store, newTestPersister(store, gateway), nil)

	assert.True(t, selector.AdvanceToNextQuestion(context.Background(), catalogOf(questions...)))

	assert.Equal(t, "q1", store.Randomization().CurrentQuestionID(), "Изменение в памяти не откатывается")
	assert.Contains(t, store.LastError(), "connection refused")
	assert.Contains(t, store.View().Error, "advanceToNextQuestion")
}

func TestSelector_PersistRecovery_ClearsError(t *testing.T) {
	gateway := new(MockRandomizationRepository)
	gateway.On("Update", mock.Anything, mock.Anything).Return(errors.New("connection refused")).Once()
	gateway.On("Update", mock.Anything, mock.Anything).Return(nil).Once()

	questions := []entity.Question{{ID: "q1", IsActive: true}, {ID: "q2", IsActive: true}}
	store := newLoadedStore(entity.NewRandomization("r1", "u1", questions))
	selector := NewSelector(store, newTestPersister(store, gateway), rand.New(rand.NewPCG(1, 2)))
	catalog := catalogOf(questions...)

	require.True(t, selector.AdvanceToNextQuestion(context.Background(), catalog))
	require.NotEmpty(t, store.LastError())

	store.MoveQuestionToUsed(store.Randomization().CurrentQuestionID())
	require.True(t, selector.AdvanceToNextQuestion(context.Background(), catalog))

	assert.Empty(t, store.LastError(), "Успешная запись сбрасывает ошибку")
	assert.Empty(t, store.View().Error)
	gateway.AssertExpectations(t)
}

func TestSelector_NotLoaded(t *testing.T) {
	gateway := new(MockRandomizationRepository)
	store := NewStore()
	selector := NewSelector(store, newTestPersister(store, gateway), nil)

	assert.False(t, selector.AdvanceToNextQuestion(context.Background(), catalogOf(entity.Question{ID: "q1", IsActive: true})))
}
