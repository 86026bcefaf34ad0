package randomizer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"

	"github.com/yourusername/randomizer-api/internal/domain/entity"
	"github.com/yourusername/randomizer-api/internal/domain/repository"
	apperrors "github.com/yourusername/randomizer-api/internal/pkg/errors"
)

// Loader реализует переходы NotLoaded → Loading → Loaded | LoadFailed
type Loader struct {
	userID  string
	store   *Store
	catalog Catalog
	persist *persister
}

// NewLoader создаёт Loader для пользователя
func NewLoader(userID string, store *Store, catalog Catalog, persist *persister) *Loader {
	return &Loader{userID: userID, store: store, catalog: catalog, persist: persist}
}

// repair — исправление сохранённого состояния, найденное при загрузке
type repair struct {
	op string
	fn func(ctx context.Context) error
}

// Load загружает рандомизацию пользователя. Без force повторная загрузка
// уже загруженного состояния не выполняется. При ошибке прежнее состояние
// сохраняется, ошибка записывается в Store и возвращается.
func (l *Loader) Load(ctx context.Context, force bool) error {
	if !l.store.BeginLoad(force) {
		return nil
	}

	r, repairs, err := l.fetch(ctx)
	if err != nil {
		log.Printf("[Randomizer] Ошибка загрузки рандомизации пользователя %s: %v", l.userID, err)
		l.store.FailLoad(err.Error())
		return fmt.Errorf("failed to load randomization: %w", err)
	}

	l.store.FinishLoad(r)
	log.Printf("[Randomizer] Рандомизация %s загружена: available=%d used=%d postponed=%d",
		r.ID, len(r.AvailableQuestionList), len(r.UsedQuestionList), len(r.PostponedQuestionList))

	for _, rp := range repairs {
		l.persist.run(ctx, rp.op, rp.fn)
	}
	return nil
}

func (l *Loader) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := l.persist.timeout
	if timeout <= 0 {
		timeout = DefaultGatewayTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

func (l *Loader) fetch(ctx context.Context) (*entity.Randomization, []repair, error) {
	catalog, err := l.catalog.QuestionMap(ctx, l.userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get questions: %w", err)
	}

	gateway := l.persist.gateway
	opCtx, cancel := l.withTimeout(ctx)
	defer cancel()

	record, err := gateway.GetByUserID(opCtx, l.userID)
	if errors.Is(err, apperrors.ErrNotFound) {
		// Новая рандомизация: запись создаётся до сохранения в Store
		id, err := gateway.Create(opCtx, l.userID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create randomization: %w", err)
		}
		return entity.NewRandomization(id, l.userID, sortedQuestions(catalog)), nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get randomization: %w", err)
	}

	used, err := gateway.GetUsedQuestionList(opCtx, record.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get used questions: %w", err)
	}
	postponed, err := gateway.GetPostponedQuestionList(opCtx, record.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get postponed questions: %w", err)
	}
	selected, err := gateway.GetSelectedCategoryIDList(opCtx, record.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get selected categories: %w", err)
	}

	r, repairs := rehydrate(record, catalog, used, postponed, selected, gateway)
	return r, repairs, nil
}

// rehydrate восстанавливает агрегат из сохранённых списков и каталога:
// available вычисляется как вопросы каталога, которых нет в used/postponed;
// записи удалённых вопросов отбрасываются; категории приводятся к каталогу.
func rehydrate(
	record *entity.RandomizationRecord,
	catalog entity.QuestionMap,
	used, postponed []entity.QuestionCategory,
	selected []string,
	gateway repository.RandomizationRepository,
) (*entity.Randomization, []repair) {
	id := record.ID
	var repairs []repair
	tracked := make(map[string]bool)

	usedList := make(entity.QuestionCategoryList, 0, len(used))
	for _, e := range used {
		q, ok := catalog.Lookup(e.QuestionID)
		if !ok || tracked[e.QuestionID] {
			qid := e.QuestionID
			repairs = append(repairs, repair{op: "deleteUsedQuestion", fn: func(ctx context.Context) error {
				return gateway.DeleteUsedQuestion(ctx, id, qid)
			}})
			continue
		}
		if e.CategoryID != q.CategoryID {
			qid, cat := e.QuestionID, q.CategoryID
			repairs = append(repairs, repair{op: "updateUsedQuestionCategory", fn: func(ctx context.Context) error {
				return gateway.UpdateUsedQuestionCategory(ctx, id, qid, cat)
			}})
		}
		tracked[e.QuestionID] = true
		usedList = append(usedList, q.ToQuestionCategory())
	}

	postponedList := make(entity.QuestionCategoryList, 0, len(postponed))
	for _, e := range postponed {
		q, ok := catalog.Lookup(e.QuestionID)
		if !ok || tracked[e.QuestionID] {
			qid := e.QuestionID
			repairs = append(repairs, repair{op: "deletePostponedQuestion", fn: func(ctx context.Context) error {
				return gateway.DeletePostponedQuestion(ctx, id, qid)
			}})
			continue
		}
		if e.CategoryID != q.CategoryID {
			qid, cat := e.QuestionID, q.CategoryID
			repairs = append(repairs, repair{op: "updatePostponedQuestionCategory", fn: func(ctx context.Context) error {
				return gateway.UpdatePostponedQuestionCategory(ctx, id, qid, cat)
			}})
		}
		tracked[e.QuestionID] = true
		postponedList = append(postponedList, q.ToQuestionCategory())
	}

	availableList := make(entity.QuestionCategoryList, 0, len(catalog))
	for _, q := range sortedQuestions(catalog) {
		if !tracked[q.ID] {
			availableList = append(availableList, q.ToQuestionCategory())
		}
	}

	selectedList := make([]string, 0, len(selected))
	for _, c := range selected {
		if !slices.Contains(selectedList, c) {
			selectedList = append(selectedList, c)
		}
	}

	status := record.Status
	if status == "" {
		status = entity.RandomizationStatusOngoing
	}
	r := &entity.Randomization{
		ID:                     id,
		UserID:                 record.UserID,
		Status:                 status,
		AvailableQuestionList:  availableList,
		UsedQuestionList:       usedList,
		PostponedQuestionList:  postponedList,
		SelectedCategoryIDList: selectedList,
	}

	if record.CurrentQuestionID != "" {
		if catalog.IsActive(record.CurrentQuestionID) {
			q := catalog[record.CurrentQuestionID]
			r.CurrentQuestion = &q
			r.ShowAnswer = record.ShowAnswer
		} else {
			snapshot := r.Clone()
			repairs = append(repairs, repair{op: "clearCurrentQuestion", fn: func(ctx context.Context) error {
				return gateway.Update(ctx, snapshot)
			}})
		}
	}
	return r, repairs
}

// sortedQuestions возвращает вопросы каталога в порядке создания
func sortedQuestions(catalog entity.QuestionMap) []entity.Question {
	questions := make([]entity.Question, 0, len(catalog))
	for _, q := range catalog {
		questions = append(questions, q)
	}
	slices.SortFunc(questions, func(a, b entity.Question) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return questions
}
