package randomizer

import (
	"context"
	"log"
	"slices"

	"github.com/yourusername/randomizer-api/internal/domain/entity"
)

// Reconciler переводит события изменения каталога в операции хранилища
// и зеркально записывает изменения в хранилище рандомизаций.
// Ошибки записи не блокируют изменение в памяти.
type Reconciler struct {
	store   *Store
	persist *persister
}

// NewReconciler создаёт Reconciler
func NewReconciler(store *Store, persist *persister) *Reconciler {
	return &Reconciler{store: store, persist: persist}
}

// OnQuestionCreated добавляет новый вопрос в available.
// available не хранится в БД, поэтому запись не требуется.
func (rc *Reconciler) OnQuestionCreated(ctx context.Context, question entity.Question) {
	rc.store.AddToAvailable(question.ToQuestionCategory())
}

// OnQuestionDeleted удаляет вопрос из всех списков.
// Возвращает true, если был сброшен текущий вопрос: выбор следующего
// выполняет вызывающая сторона.
func (rc *Reconciler) OnQuestionDeleted(ctx context.Context, questionID string) bool {
	randomizationID := rc.randomizationID()
	from, clearedCurrent := rc.store.RemoveQuestionEverywhere(questionID)

	switch from {
	case entity.ListUsed:
		rc.persist.run(ctx, "deleteUsedQuestion", func(ctx context.Context) error {
			return rc.persist.gateway.DeleteUsedQuestion(ctx, randomizationID, questionID)
		})
	case entity.ListPostponed:
		rc.persist.run(ctx, "deletePostponedQuestion", func(ctx context.Context) error {
			return rc.persist.gateway.DeletePostponedQuestion(ctx, randomizationID, questionID)
		})
	}
	if clearedCurrent {
		rc.persist.updateRandomization(ctx, "clearCurrentQuestion")
	}
	return clearedCurrent
}

// OnQuestionCategoryChanged обновляет категорию вопроса в том списке, где он находится
func (rc *Reconciler) OnQuestionCategoryChanged(ctx context.Context, questionID, categoryID string) {
	randomizationID := rc.randomizationID()

	switch rc.store.UpdateCategoryForQuestion(questionID, categoryID) {
	case entity.ListUsed:
		rc.persist.run(ctx, "updateUsedQuestionCategory", func(ctx context.Context) error {
			return rc.persist.gateway.UpdateUsedQuestionCategory(ctx, randomizationID, questionID, categoryID)
		})
	case entity.ListPostponed:
		rc.persist.run(ctx, "updatePostponedQuestionCategory", func(ctx context.Context) error {
			return rc.persist.gateway.UpdatePostponedQuestionCategory(ctx, randomizationID, questionID, categoryID)
		})
	}
}

// OnQuestionDeactivated сбрасывает текущий вопрос, если он стал неактивным.
// Вопрос остаётся в своём списке: неактивные вопросы просто не участвуют в выборе.
func (rc *Reconciler) OnQuestionDeactivated(ctx context.Context, questionID string) bool {
	r := rc.store.Randomization()
	if r == nil || questionID == "" || r.CurrentQuestionID() != questionID {
		return false
	}
	if !rc.store.ClearCurrentQuestion() {
		return false
	}
	rc.persist.updateRandomization(ctx, "clearCurrentQuestion")
	return true
}

// OnQuestionUpdated согласует списки с отредактированным вопросом: категория,
// снимок текущего вопроса и активность. Возвращает true, если текущий вопрос сброшен.
func (rc *Reconciler) OnQuestionUpdated(ctx context.Context, question entity.Question) bool {
	rc.OnQuestionCategoryChanged(ctx, question.ID, question.CategoryID)
	if !question.IsActive {
		return rc.OnQuestionDeactivated(ctx, question.ID)
	}
	rc.store.RefreshCurrentQuestion(question)
	return false
}

// OnCategoryCreated не влияет на списки: категория получает вопросы только через их редактирование
func (rc *Reconciler) OnCategoryCreated(ctx context.Context, categoryID string) {}

// OnCategoryDeleted переводит вопросы удалённой категории в «без категории»,
// снимает выбор категории и сбрасывает текущий вопрос этой категории.
// questionIDs — вопросы, с которых категория снята в каталоге: если агрегат
// загружен уже после удаления, снимок текущего вопроса содержит новую категорию.
// Записи в БД выполняются независимыми вызовами и не атомарны между собой.
func (rc *Reconciler) OnCategoryDeleted(ctx context.Context, categoryID string, questionIDs []string) {
	r := rc.store.Randomization()
	if r == nil || categoryID == entity.UncategorizedCategoryID {
		return
	}
	randomizationID := r.ID

	// Текущий вопрос проверяем до сброса категорий в снимке
	clearedCurrent := false
	if current := r.CurrentQuestion; current != nil &&
		(current.CategoryID == categoryID || slices.Contains(questionIDs, current.ID)) {
		clearedCurrent = rc.store.ClearCurrentQuestion()
	}

	reset := rc.store.ResetCategoryOnLists(categoryID)
	deselected := rc.store.DeselectCategory(categoryID)

	log.Printf("[Randomizer] Категория %s удалена: сброшено available=%d used=%d postponed=%d, снят выбор=%v",
		categoryID, reset.Available, reset.Used, reset.Postponed, deselected)

	if reset.Used > 0 {
		rc.persist.run(ctx, "resetUsedQuestionsCategory", func(ctx context.Context) error {
			return rc.persist.gateway.ResetUsedQuestionsCategory(ctx, randomizationID, categoryID)
		})
	}
	if reset.Postponed > 0 {
		rc.persist.run(ctx, "resetPostponedQuestionsCategory", func(ctx context.Context) error {
			return rc.persist.gateway.ResetPostponedQuestionsCategory(ctx, randomizationID, categoryID)
		})
	}
	if deselected {
		rc.persist.run(ctx, "deleteSelectedCategory", func(ctx context.Context) error {
			return rc.persist.gateway.DeleteSelectedCategory(ctx, randomizationID, categoryID)
		})
	}
	if clearedCurrent {
		rc.persist.updateRandomization(ctx, "clearCurrentQuestion")
	}
}

func (rc *Reconciler) randomizationID() string {
	r := rc.store.Randomization()
	if r == nil {
		return ""
	}
	return r.ID
}
