package randomizer

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yourusername/randomizer-api/internal/domain/entity"
	"github.com/yourusername/randomizer-api/internal/domain/repository"
)

// Options — параметры сессии
type Options struct {
	// GatewayTimeout — таймаут одного обращения к хранилищу
	GatewayTimeout time.Duration
	// Rand — генератор для выбора из available (nil — случайный)
	Rand *rand.Rand
}

// Session — рандомизация одного пользователя: хранилище, выбор, согласование и загрузка.
// Каждая операция сначала гарантирует, что состояние загружено.
type Session struct {
	userID     string
	store      *Store
	catalog    Catalog
	persist    *persister
	loader     *Loader
	selector   *Selector
	reconciler *Reconciler

	loadMu     sync.Mutex
	lastAccess atomic.Int64
}

// NewSession создаёт незагруженную сессию пользователя
func NewSession(userID string, gateway repository.RandomizationRepository, catalog Catalog, opts Options) *Session {
	store := NewStore()
	persist := &persister{store: store, gateway: gateway, timeout: opts.GatewayTimeout}
	s := &Session{
		userID:     userID,
		store:      store,
		catalog:    catalog,
		persist:    persist,
		loader:     NewLoader(userID, store, catalog, persist),
		selector:   NewSelector(store, persist, opts.Rand),
		reconciler: NewReconciler(store, persist),
	}
	s.touch()
	return s
}

// UserID возвращает идентификатор пользователя
func (s *Session) UserID() string { return s.userID }

// Store возвращает хранилище сессии
func (s *Session) Store() *Store { return s.store }

// Subscribe подписывает слушателя на изменения состояния
func (s *Session) Subscribe(listener Listener) func() {
	return s.store.Subscribe(listener)
}

// LastAccess возвращает время последнего обращения к сессии
func (s *Session) LastAccess() time.Time {
	return time.Unix(0, s.lastAccess.Load())
}

func (s *Session) touch() {
	s.lastAccess.Store(time.Now().UnixNano())
}

// View возвращает текущее представление состояния
func (s *Session) View() View {
	return s.store.View()
}

// LoadRandomization загружает рандомизацию; force — принудительная перезагрузка
func (s *Session) LoadRandomization(ctx context.Context, force bool) (View, error) {
	s.touch()
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	if err := s.loader.Load(ctx, force); err != nil {
		return s.store.View(), err
	}
	return s.store.View(), nil
}

// ensureLoaded загружает состояние при первом обращении и возвращает актуальный каталог
func (s *Session) ensureLoaded(ctx context.Context) (entity.QuestionMap, error) {
	s.touch()
	s.loadMu.Lock()
	err := s.loader.Load(ctx, false)
	s.loadMu.Unlock()
	if err != nil {
		return nil, err
	}
	if !s.store.IsLoaded() {
		return nil, fmt.Errorf("%w: %s", ErrNotLoaded, s.store.LastError())
	}

	catalog, err := s.catalog.QuestionMap(ctx, s.userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}
	return catalog, nil
}

// AdvanceToNextQuestion выбирает следующий текущий вопрос
func (s *Session) AdvanceToNextQuestion(ctx context.Context) (View, error) {
	catalog, err := s.ensureLoaded(ctx)
	if err != nil {
		return s.store.View(), err
	}
	s.selector.AdvanceToNextQuestion(ctx, catalog)
	return s.store.View(), nil
}

// NextQuestion отмечает текущий вопрос использованным и выбирает следующий
func (s *Session) NextQuestion(ctx context.Context) (View, error) {
	catalog, err := s.ensureLoaded(ctx)
	if err != nil {
		return s.store.View(), err
	}
	if current := s.store.Randomization().CurrentQuestionID(); current != "" {
		s.markUsed(ctx, current)
	}
	s.selector.AdvanceToNextQuestion(ctx, catalog)
	return s.store.View(), nil
}

// PostponeCurrentQuestion переносит текущий вопрос в конец postponed и выбирает следующий
func (s *Session) PostponeCurrentQuestion(ctx context.Context) (View, error) {
	catalog, err := s.ensureLoaded(ctx)
	if err != nil {
		return s.store.View(), err
	}
	r := s.store.Randomization()
	current := r.CurrentQuestionID()
	if current == "" {
		return s.store.View(), nil
	}

	move, ok := s.store.MoveQuestionToPostponed(current)
	if ok {
		if move.From == entity.ListUsed {
			s.persist.run(ctx, "deleteUsedQuestion", func(ctx context.Context) error {
				return s.persist.gateway.DeleteUsedQuestion(ctx, r.ID, current)
			})
		}
		// Вставка выполняет и перенос в конец, если вопрос уже отложен
		s.persist.run(ctx, "addPostponedQuestion", func(ctx context.Context) error {
			return s.persist.gateway.AddPostponedQuestion(ctx, r.ID, move.Entry)
		})
	}

	s.selector.AdvanceToNextQuestion(ctx, catalog)
	return s.store.View(), nil
}

// MarkQuestionAsUsed переносит вопрос в used
func (s *Session) MarkQuestionAsUsed(ctx context.Context, questionID string) (View, error) {
	if _, err := s.ensureLoaded(ctx); err != nil {
		return s.store.View(), err
	}
	s.markUsed(ctx, questionID)
	return s.store.View(), nil
}

func (s *Session) markUsed(ctx context.Context, questionID string) {
	randomizationID := s.randomizationID()
	move, ok := s.store.MoveQuestionToUsed(questionID)
	if !ok {
		return
	}
	if move.From == entity.ListPostponed {
		s.persist.run(ctx, "deletePostponedQuestion", func(ctx context.Context) error {
			return s.persist.gateway.DeletePostponedQuestion(ctx, randomizationID, questionID)
		})
	}
	s.persist.run(ctx, "addUsedQuestion", func(ctx context.Context) error {
		return s.persist.gateway.AddUsedQuestion(ctx, randomizationID, move.Entry)
	})
}

// SelectCategory добавляет категорию в выбранные
func (s *Session) SelectCategory(ctx context.Context, categoryID string) (View, error) {
	if _, err := s.ensureLoaded(ctx); err != nil {
		return s.store.View(), err
	}
	randomizationID := s.randomizationID()
	if s.store.SelectCategory(categoryID) {
		s.persist.run(ctx, "addSelectedCategory", func(ctx context.Context) error {
			return s.persist.gateway.AddSelectedCategory(ctx, randomizationID, categoryID)
		})
	}
	return s.store.View(), nil
}

// DeselectCategory убирает категорию из выбранных
func (s *Session) DeselectCategory(ctx context.Context, categoryID string) (View, error) {
	if _, err := s.ensureLoaded(ctx); err != nil {
		return s.store.View(), err
	}
	randomizationID := s.randomizationID()
	if s.store.DeselectCategory(categoryID) {
		s.persist.run(ctx, "deleteSelectedCategory", func(ctx context.Context) error {
			return s.persist.gateway.DeleteSelectedCategory(ctx, randomizationID, categoryID)
		})
	}
	return s.store.View(), nil
}

// RevealAnswer показывает ответ на текущий вопрос
func (s *Session) RevealAnswer(ctx context.Context) (View, error) {
	if _, err := s.ensureLoaded(ctx); err != nil {
		return s.store.View(), err
	}
	if s.store.SetShowAnswer(true) {
		s.persist.updateRandomization(ctx, "revealAnswer")
	}
	return s.store.View(), nil
}

// ResetUsedQuestions возвращает все использованные вопросы в available
func (s *Session) ResetUsedQuestions(ctx context.Context) (View, error) {
	if _, err := s.ensureLoaded(ctx); err != nil {
		return s.store.View(), err
	}
	randomizationID := s.randomizationID()
	if moved := s.store.MoveAllUsedToAvailable(); len(moved) > 0 {
		s.persist.run(ctx, "deleteAllUsedQuestions", func(ctx context.Context) error {
			return s.persist.gateway.DeleteAllUsedQuestions(ctx, randomizationID)
		})
	}
	return s.store.View(), nil
}

// OnQuestionCreated — событие каталога: вопрос создан
func (s *Session) OnQuestionCreated(ctx context.Context, question entity.Question) error {
	if _, err := s.ensureLoaded(ctx); err != nil {
		return err
	}
	s.reconciler.OnQuestionCreated(ctx, question)
	return nil
}

// OnQuestionDeleted — событие каталога: вопрос удалён.
// Возвращает true, если сброшен текущий вопрос и нужно выбрать следующий.
func (s *Session) OnQuestionDeleted(ctx context.Context, questionID string) (bool, error) {
	if _, err := s.ensureLoaded(ctx); err != nil {
		return false, err
	}
	return s.reconciler.OnQuestionDeleted(ctx, questionID), nil
}

// OnQuestionUpdated — событие каталога: вопрос отредактирован (категория, текст, активность).
// Возвращает true, если сброшен текущий вопрос.
func (s *Session) OnQuestionUpdated(ctx context.Context, question entity.Question) (bool, error) {
	if _, err := s.ensureLoaded(ctx); err != nil {
		return false, err
	}
	return s.reconciler.OnQuestionUpdated(ctx, question), nil
}

// OnCategoryCreated — событие каталога: категория создана
func (s *Session) OnCategoryCreated(ctx context.Context, categoryID string) {
	s.reconciler.OnCategoryCreated(ctx, categoryID)
}

// OnCategoryDeleted — событие каталога: категория удалена.
// questionIDs — вопросы, с которых категория снята в каталоге.
func (s *Session) OnCategoryDeleted(ctx context.Context, categoryID string, questionIDs []string) error {
	if _, err := s.ensureLoaded(ctx); err != nil {
		return err
	}
	s.reconciler.OnCategoryDeleted(ctx, categoryID, questionIDs)
	return nil
}

func (s *Session) randomizationID() string {
	if r := s.store.Randomization(); r != nil {
		return r.ID
	}
	return ""
}
