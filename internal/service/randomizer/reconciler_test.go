package randomizer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/randomizer-api/internal/domain/entity"
)

func newTestReconciler(r *entity.Randomization) (*Reconciler, *Store, *MockRandomizationRepository) {
	gateway := new(MockRandomizationRepository)
	store := newLoadedStore(r)
	return NewReconciler(store, newTestPersister(store, gateway)), store, gateway
}

func TestReconciler_OnQuestionCreated(t *testing.T) {
	rc, store, gateway := newTestReconciler(entity.NewRandomization("r1", "u1", nil))

	rc.OnQuestionCreated(context.Background(), entity.Question{ID: "q1", CategoryID: "cat-a"})
	rc.OnQuestionCreated(context.Background(), entity.Question{ID: "q1", CategoryID: "cat-a"})

	assert.Equal(t, entity.QuestionCategoryList{qc("q1", "cat-a")}, store.Randomization().AvailableQuestionList)
	gateway.AssertExpectations(t)
}

func TestReconciler_OnQuestionDeleted_Used(t *testing.T) {
	r := entity.NewRandomization("r1", "u1", nil)
	r.UsedQuestionList = entity.QuestionCategoryList{qc("q1", "")}
	rc, store, gateway := newTestReconciler(r)
	gateway.On("DeleteUsedQuestion", mock.Anything, "r1", "q1").Return(nil).Once()

	cleared := rc.OnQuestionDeleted(context.Background(), "q1")

	assert.False(t, cleared)
	assert.Empty(t, store.Randomization().UsedQuestionList)
	gateway.AssertExpectations(t)
}

func TestReconciler_OnQuestionDeleted_CurrentPostponed(t *testing.T) {
	r := entity.NewRandomization("r1", "u1", nil)
	r.PostponedQuestionList = entity.QuestionCategoryList{qc("q1", "")}
	r.CurrentQuestion = &entity.Question{ID: "q1", IsActive: true}
	r.ShowAnswer = true
	rc, store, gateway := newTestReconciler(r)
	gateway.On("DeletePostponedQuestion", mock.Anything, "r1", "q1").Return(nil).Once()
	gateway.On("Update", mock.Anything, mock.MatchedBy(func(r *entity.Randomization) bool {
		return r.CurrentQuestion == nil && !r.ShowAnswer
	})).Return(nil).Once()

	cleared := rc.OnQuestionDeleted(context.Background(), "q1")

	assert.True(t, cleared, "Вызывающая сторона должна выбрать следующий вопрос")
	got := store.Randomization()
	assert.Nil(t, got.CurrentQuestion)
	assert.Empty(t, got.PostponedQuestionList)
	gateway.AssertExpectations(t)
}

func TestReconciler_OnQuestionDeleted_AvailableNoWrite(t *testing.T) {
	rc, store, gateway := newTestReconciler(entity.NewRandomization("r1", "u1", []entity.Question{{ID: "q1"}}))

	assert.False(t, rc.OnQuestionDeleted(context.Background(), "q1"))

	assert.Empty(t, store.Randomization().AvailableQuestionList)
	gateway.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestReconciler_OnQuestionCategoryChanged(t *testing.T) {
	r := entity.NewRandomization("r1", "u1", nil)
	r.PostponedQuestionList = entity.QuestionCategoryList{qc("q1", "cat-a")}
	r.CurrentQuestion = &entity.Question{ID: "q1", CategoryID: "cat-a", IsActive: true}
	rc, store, gateway := newTestReconciler(r)
	gateway.On("UpdatePostponedQuestionCategory", mock.Anything, "r1", "q1", "cat-b").Return(nil).Once()

	rc.OnQuestionCategoryChanged(context.Background(), "q1", "cat-b")

	got := store.Randomization()
	assert.Equal(t, "cat-b", got.PostponedQuestionList[0].CategoryID)
	assert.Equal(t, "cat-b", got.CurrentQuestion.CategoryID)
	gateway.AssertExpectations(t)
}

func TestReconciler_OnQuestionUpdated_Deactivated(t *testing.T) {
	r := entity.NewRandomization("r1", "u1", []entity.Question{{ID: "q1", CategoryID: "cat-a"}})
	r.CurrentQuestion = &entity.Question{ID: "q1", CategoryID: "cat-a", IsActive: true}
	rc, store, gateway := newTestReconciler(r)
	gateway.On("Update", mock.Anything, mock.Anything).Return(nil).Once()

	cleared := rc.OnQuestionUpdated(context.Background(), entity.Question{ID: "q1", CategoryID: "cat-a", IsActive: false})

	assert.True(t, cleared)
	got := store.Randomization()
	assert.Nil(t, got.CurrentQuestion)
	assert.True(t, got.AvailableQuestionList.Contains("q1"), "Неактивный вопрос остаётся в списке")
	gateway.AssertExpectations(t)
}

func TestReconciler_OnQuestionUpdated_RefreshesSnapshot(t *testing.T) {
	r := entity.NewRandomization("r1", "u1", []entity.Question{{ID: "q1"}})
	r.CurrentQuestion = &entity.Question{ID: "q1", Question: "old", IsActive: true}
	r.ShowAnswer = true
	rc, store, gateway := newTestReconciler(r)

	cleared := rc.OnQuestionUpdated(context.Background(), entity.Question{ID: "q1", Question: "new", IsActive: true})

	assert.False(t, cleared)
	got := store.Randomization()
	assert.Equal(t, "new", got.CurrentQuestion.Question)
	assert.True(t, got.ShowAnswer)
	gateway.AssertExpectations(t)
}

func TestReconciler_OnCategoryDeleted(t *testing.T) {
	r := entity.NewRandomization("r1", "u1", nil)
	r.AvailableQuestionList = entity.QuestionCategoryList{qc("q1", "cat-x"), qc("q2", "cat-y")}
	r.UsedQuestionList = entity.QuestionCategoryList{qc("q3", "cat-x")}
	r.PostponedQuestionList = entity.QuestionCategoryList{qc("q4", "cat-x")}
	r.SelectedCategoryIDList = []string{"cat-x", "cat-y"}
	r.CurrentQuestion = &entity.Question{ID: "q1", CategoryID: "cat-x", IsActive: true}
	r.ShowAnswer = true
	rc, store, gateway := newTestReconciler(r)
	gateway.On("ResetUsedQuestionsCategory", mock.Anything, "r1", "cat-x").Return(nil).Once()
	gateway.On("ResetPostponedQuestionsCategory", mock.Anything, "r1", "cat-x").Return(nil).Once()
	gateway.On("DeleteSelectedCategory", mock.Anything, "r1", "cat-x").Return(nil).Once()
	gateway.On("Update", mock.Anything, mock.Anything).Return(nil).Once()

	rc.OnCategoryDeleted(context.Background(), "cat-x", []string{"q1", "q3", "q4"})

	got := store.Randomization()
	assert.Equal(t, entity.QuestionCategoryList{qc("q1", ""), qc("q2", "cat-y")}, got.AvailableQuestionList)
	assert.Equal(t, entity.QuestionCategoryList{qc("q3", "")}, got.UsedQuestionList)
	assert.Equal(t, entity.QuestionCategoryList{qc("q4", "")}, got.PostponedQuestionList)
	assert.Equal(t, []string{"cat-y"}, got.SelectedCategoryIDList)
	assert.Nil(t, got.CurrentQuestion)
	assert.False(t, got.ShowAnswer)
	gateway.AssertExpectations(t)
}

func TestReconciler_OnCategoryDeleted_OnlyAvailable(t *testing.T) {
	r := entity.NewRandomization("r1", "u1", []entity.Question{{ID: "q1", CategoryID: "cat-x"}})
	rc, store, gateway := newTestReconciler(r)

	rc.OnCategoryDeleted(context.Background(), "cat-x", []string{"q1"})

	assert.Equal(t, "", store.Randomization().AvailableQuestionList[0].CategoryID)
	gateway.AssertExpectations(t)
}

// Агрегат загружен после удаления категории: снимок текущего вопроса уже
// без категории, сброс определяется по списку вопросов категории
func TestReconciler_OnCategoryDeleted_CurrentAlreadyDeclassified(t *testing.T) {
	r := entity.NewRandomization("r1", "u1", []entity.Question{{ID: "q1"}, {ID: "q2", CategoryID: "cat-y"}})
	r.SelectedCategoryIDList = []string{"cat-x"}
	r.CurrentQuestion = &entity.Question{ID: "q1", IsActive: true}
	r.ShowAnswer = true
	rc, store, gateway := newTestReconciler(r)
	gateway.On("DeleteSelectedCategory", mock.Anything, "r1", "cat-x").Return(nil).Once()
	gateway.On("Update", mock.Anything, mock.MatchedBy(func(r *entity.Randomization) bool {
		return r.CurrentQuestion == nil && !r.ShowAnswer
	})).Return(nil).Once()

	rc.OnCategoryDeleted(context.Background(), "cat-x", []string{"q1"})

	got := store.Randomization()
	assert.Nil(t, got.CurrentQuestion)
	assert.False(t, got.ShowAnswer)
	assert.Empty(t, got.SelectedCategoryIDList)
	gateway.AssertExpectations(t)
}

func TestReconciler_OnCategoryDeleted_OtherCurrentKept(t *testing.T) {
	r := entity.NewRandomization("r1", "u1", []entity.Question{{ID: "q1"}, {ID: "q2", CategoryID: "cat-y"}})
	r.CurrentQuestion = &entity.Question{ID: "q2", CategoryID: "cat-y", IsActive: true}
	rc, store, gateway := newTestReconciler(r)

	rc.OnCategoryDeleted(context.Background(), "cat-x", []string{"q1"})

	require.NotNil(t, store.Randomization().CurrentQuestion)
	assert.Equal(t, "q2", store.Randomization().CurrentQuestion.ID)
	gateway.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}
