package randomizer

import (
	"sync"

	"github.com/yourusername/randomizer-api/internal/domain/entity"
)

// Move описывает перенос вопроса между списками
type Move struct {
	Entry entity.QuestionCategory
	From  string // entity.ListAvailable / ListUsed / ListPostponed
}

// CategoryReset — количество элементов каждого списка, у которых сброшена категория
type CategoryReset struct {
	Available int
	Used      int
	Postponed int
}

// Total возвращает общее число изменённых элементов
func (c CategoryReset) Total() int {
	return c.Available + c.Used + c.Postponed
}

// Store хранит агрегат рандомизации в памяти. Изменять агрегат может только
// Store; каждая операция сохраняет непересечение списков available/used/postponed.
// Операции не возвращают ошибок: неизвестный ID или незагруженное
// хранилище — это no-op (false).
type Store struct {
	mu            sync.RWMutex
	randomization *entity.Randomization
	loadState     LoadState
	lastError     string

	listenersMu  sync.Mutex
	listeners    map[int]Listener
	nextListener int
}

// NewStore создаёт пустое (незагруженное) хранилище
func NewStore() *Store {
	return &Store{
		loadState: LoadStateNotLoaded,
		listeners: make(map[int]Listener),
	}
}

// Subscribe регистрирует слушателя изменений и возвращает функцию отписки
func (s *Store) Subscribe(listener Listener) func() {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = listener
	return func() {
		s.listenersMu.Lock()
		defer s.listenersMu.Unlock()
		delete(s.listeners, id)
	}
}

// notify вызывает слушателей вне блокировки хранилища
func (s *Store) notify(view View) {
	s.listenersMu.Lock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.listenersMu.Unlock()

	for _, l := range listeners {
		l(view)
	}
}

// mutate применяет fn к загруженному агрегату под блокировкой.
// Если агрегат не загружен — no-op.
func (s *Store) mutate(fn func(r *entity.Randomization) bool) bool {
	s.mu.Lock()
	if s.randomization == nil {
		s.mu.Unlock()
		return false
	}
	changed := fn(s.randomization)
	var view View
	if changed {
		view = s.viewLocked()
	}
	s.mu.Unlock()

	if changed {
		s.notify(view)
	}
	return changed
}

// Randomization возвращает глубокую копию агрегата или nil, если он не загружен
func (s *Store) Randomization() *entity.Randomization {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.randomization.Clone()
}

// IsLoaded проверяет, что агрегат загружен
func (s *Store) IsLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.randomization != nil
}

// LoadState возвращает состояние загрузки
func (s *Store) LoadState() LoadState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadState
}

// LastError возвращает последнюю ошибку загрузки/сохранения
func (s *Store) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError
}

// View возвращает представление состояния для UI
func (s *Store) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewLocked()
}

func (s *Store) viewLocked() View {
	view := View{
		LoadState:              s.loadState,
		Error:                  s.lastError,
		SelectedCategoryIDList: []string{},
	}
	r := s.randomization
	if r == nil {
		return view
	}
	view.RandomizationID = r.ID
	view.Status = r.Status
	view.ShowAnswer = r.ShowAnswer
	if r.CurrentQuestion != nil {
		q := *r.CurrentQuestion
		view.CurrentQuestion = &q
	}
	view.SelectedCategoryIDList = append(view.SelectedCategoryIDList, r.SelectedCategoryIDList...)
	view.AvailableCount = len(r.AvailableQuestionList)
	view.UsedCount = len(r.UsedQuestionList)
	view.PostponedCount = len(r.PostponedQuestionList)
	return view
}

// SetError записывает ошибку в состояние (ошибка сохранения не откатывает изменения)
func (s *Store) SetError(msg string) {
	s.mu.Lock()
	s.lastError = msg
	view := s.viewLocked()
	s.mu.Unlock()
	s.notify(view)
}

// ClearError сбрасывает последнюю ошибку сохранения.
// Ошибка неудачной загрузки остаётся до следующей загрузки.
func (s *Store) ClearError() {
	s.mu.Lock()
	if s.lastError == "" || s.loadState == LoadStateLoadFailed {
		s.mu.Unlock()
		return
	}
	s.lastError = ""
	view := s.viewLocked()
	s.mu.Unlock()
	s.notify(view)
}

// BeginLoad переводит хранилище в состояние Loading.
// Возвращает false, если загрузка уже идёт или агрегат уже загружен и force=false.
func (s *Store) BeginLoad(force bool) bool {
	s.mu.Lock()
	switch {
	case s.loadState == LoadStateLoading:
		s.mu.Unlock()
		return false
	case !force && s.randomization != nil:
		// Loaded, либо LoadFailed при повторной загрузке с сохранённым прежним состоянием
		s.mu.Unlock()
		return false
	}
	s.loadState = LoadStateLoading
	view := s.viewLocked()
	s.mu.Unlock()
	s.notify(view)
	return true
}

// FinishLoad сохраняет загруженный агрегат и переводит состояние в Loaded
func (s *Store) FinishLoad(r *entity.Randomization) {
	s.mu.Lock()
	s.randomization = normalize(r.Clone())
	s.loadState = LoadStateLoaded
	s.lastError = ""
	view := s.viewLocked()
	s.mu.Unlock()
	s.notify(view)
}

// FailLoad переводит состояние в LoadFailed; прежний агрегат (если был) сохраняется
func (s *Store) FailLoad(msg string) {
	s.mu.Lock()
	s.loadState = LoadStateLoadFailed
	s.lastError = msg
	view := s.viewLocked()
	s.mu.Unlock()
	s.notify(view)
}

// SetRandomization заменяет агрегат целиком. Непересечение списков
// обеспечивает вызывающая сторона.
func (s *Store) SetRandomization(r *entity.Randomization) {
	s.mu.Lock()
	s.randomization = normalize(r.Clone())
	if s.randomization != nil {
		s.loadState = LoadStateLoaded
	}
	view := s.viewLocked()
	s.mu.Unlock()
	s.notify(view)
}

// normalize заменяет nil-списки пустыми
func normalize(r *entity.Randomization) *entity.Randomization {
	if r == nil {
		return nil
	}
	if r.AvailableQuestionList == nil {
		r.AvailableQuestionList = entity.QuestionCategoryList{}
	}
	if r.UsedQuestionList == nil {
		r.UsedQuestionList = entity.QuestionCategoryList{}
	}
	if r.PostponedQuestionList == nil {
		r.PostponedQuestionList = entity.QuestionCategoryList{}
	}
	if r.SelectedCategoryIDList == nil {
		r.SelectedCategoryIDList = []string{}
	}
	return r
}

func isTracked(r *entity.Randomization, questionID string) bool {
	return r.AvailableQuestionList.Contains(questionID) ||
		r.UsedQuestionList.Contains(questionID) ||
		r.PostponedQuestionList.Contains(questionID)
}

// AddToAvailable добавляет элементы в конец available.
// Вопросы, уже присутствующие в любом списке, пропускаются.
func (s *Store) AddToAvailable(entries ...entity.QuestionCategory) int {
	added := 0
	s.mutate(func(r *entity.Randomization) bool {
		for _, e := range entries {
			if e.QuestionID == "" || isTracked(r, e.QuestionID) {
				continue
			}
			r.AvailableQuestionList = append(r.AvailableQuestionList, e)
			added++
		}
		return added > 0
	})
	return added
}

// MoveQuestionToUsed переносит вопрос из available/postponed в конец used.
// No-op, если вопрос уже в used или не отслеживается.
func (s *Store) MoveQuestionToUsed(questionID string) (Move, bool) {
	var move Move
	ok := s.mutate(func(r *entity.Randomization) bool {
		if r.UsedQuestionList.Contains(questionID) {
			return false
		}
		if idx := r.AvailableQuestionList.IndexOf(questionID); idx >= 0 {
			move = Move{Entry: r.AvailableQuestionList[idx], From: entity.ListAvailable}
			r.AvailableQuestionList = r.AvailableQuestionList.Without(questionID)
		} else if idx := r.PostponedQuestionList.IndexOf(questionID); idx >= 0 {
			move = Move{Entry: r.PostponedQuestionList[idx], From: entity.ListPostponed}
			r.PostponedQuestionList = r.PostponedQuestionList.Without(questionID)
		} else {
			return false
		}
		r.UsedQuestionList = append(r.UsedQuestionList, move.Entry)
		return true
	})
	return move, ok
}

// MoveQuestionToPostponed переносит вопрос из available/used в конец postponed.
// Если вопрос уже отложен — переносит его в конец списка.
func (s *Store) MoveQuestionToPostponed(questionID string) (Move, bool) {
	var move Move
	ok := s.mutate(func(r *entity.Randomization) bool {
		switch {
		case r.PostponedQuestionList.Contains(questionID):
			move = Move{Entry: r.PostponedQuestionList[r.PostponedQuestionList.IndexOf(questionID)], From: entity.ListPostponed}
			r.PostponedQuestionList = r.PostponedQuestionList.Without(questionID)
		case r.AvailableQuestionList.Contains(questionID):
			move = Move{Entry: r.AvailableQuestionList[r.AvailableQuestionList.IndexOf(questionID)], From: entity.ListAvailable}
			r.AvailableQuestionList = r.AvailableQuestionList.Without(questionID)
		case r.UsedQuestionList.Contains(questionID):
			move = Move{Entry: r.UsedQuestionList[r.UsedQuestionList.IndexOf(questionID)], From: entity.ListUsed}
			r.UsedQuestionList = r.UsedQuestionList.Without(questionID)
		default:
			return false
		}
		r.PostponedQuestionList = append(r.PostponedQuestionList, move.Entry)
		return true
	})
	return move, ok
}

// MovePostponedToEnd переносит отложенный вопрос в конец postponed (категория сохраняется)
func (s *Store) MovePostponedToEnd(questionID string) bool {
	return s.mutate(func(r *entity.Randomization) bool {
		idx := r.PostponedQuestionList.IndexOf(questionID)
		if idx < 0 {
			return false
		}
		entry := r.PostponedQuestionList[idx]
		r.PostponedQuestionList = append(r.PostponedQuestionList.Without(questionID), entry)
		return true
	})
}

// MoveAllUsedToAvailable возвращает все использованные вопросы в available
func (s *Store) MoveAllUsedToAvailable() []entity.QuestionCategory {
	var moved []entity.QuestionCategory
	s.mutate(func(r *entity.Randomization) bool {
		if len(r.UsedQuestionList) == 0 {
			return false
		}
		moved = r.UsedQuestionList.Clone()
		for _, e := range moved {
			if !r.AvailableQuestionList.Contains(e.QuestionID) {
				r.AvailableQuestionList = append(r.AvailableQuestionList, e)
			}
		}
		r.UsedQuestionList = entity.QuestionCategoryList{}
		return true
	})
	return moved
}

// RemoveQuestionEverywhere удаляет вопрос из всех списков. Если это текущий вопрос,
// он сбрасывается вместе с showAnswer. Возвращает список, в котором был вопрос.
func (s *Store) RemoveQuestionEverywhere(questionID string) (from string, clearedCurrent bool) {
	s.mutate(func(r *entity.Randomization) bool {
		from = r.ListOf(questionID)
		r.AvailableQuestionList = r.AvailableQuestionList.Without(questionID)
		r.UsedQuestionList = r.UsedQuestionList.Without(questionID)
		r.PostponedQuestionList = r.PostponedQuestionList.Without(questionID)
		if r.CurrentQuestionID() == questionID && questionID != "" {
			r.CurrentQuestion = nil
			r.ShowAnswer = false
			clearedCurrent = true
		}
		return from != "" || clearedCurrent
	})
	return from, clearedCurrent
}

// UpdateCategoryForQuestion меняет категорию вопроса в том списке, где он находится,
// и в снимке текущего вопроса. Между списками вопрос не переносится.
// Возвращает имя списка или "", если ничего не изменилось.
func (s *Store) UpdateCategoryForQuestion(questionID, categoryID string) (list string) {
	s.mutate(func(r *entity.Randomization) bool {
		changed := false
		for _, l := range []struct {
			name    string
			entries entity.QuestionCategoryList
		}{
			{entity.ListAvailable, r.AvailableQuestionList},
			{entity.ListUsed, r.UsedQuestionList},
			{entity.ListPostponed, r.PostponedQuestionList},
		} {
			if idx := l.entries.IndexOf(questionID); idx >= 0 {
				list = l.name
				if l.entries[idx].CategoryID != categoryID {
					l.entries[idx].CategoryID = categoryID
					changed = true
				}
			}
		}
		if r.CurrentQuestion != nil && r.CurrentQuestion.ID == questionID && r.CurrentQuestion.CategoryID != categoryID {
			r.CurrentQuestion.CategoryID = categoryID
			changed = true
		}
		if !changed {
			list = ""
		}
		return changed
	})
	return list
}

// ResetCategoryOnLists переводит все элементы с удалённой категорией в «без категории».
// Элементы никогда не удаляются из списков.
func (s *Store) ResetCategoryOnLists(categoryID string) CategoryReset {
	var reset CategoryReset
	if categoryID == entity.UncategorizedCategoryID {
		return reset
	}
	s.mutate(func(r *entity.Randomization) bool {
		reset.Available = resetCategory(r.AvailableQuestionList, categoryID)
		reset.Used = resetCategory(r.UsedQuestionList, categoryID)
		reset.Postponed = resetCategory(r.PostponedQuestionList, categoryID)
		changed := reset.Total() > 0
		if r.CurrentQuestion != nil && r.CurrentQuestion.CategoryID == categoryID {
			r.CurrentQuestion.CategoryID = entity.UncategorizedCategoryID
			changed = true
		}
		return changed
	})
	return reset
}

func resetCategory(list entity.QuestionCategoryList, categoryID string) int {
	n := 0
	for i := range list {
		if list[i].CategoryID == categoryID {
			list[i].CategoryID = entity.UncategorizedCategoryID
			n++
		}
	}
	return n
}

// SelectCategory добавляет категорию в выбранные (без дублей)
func (s *Store) SelectCategory(categoryID string) bool {
	return s.mutate(func(r *entity.Randomization) bool {
		if r.IsCategorySelected(categoryID) {
			return false
		}
		r.SelectedCategoryIDList = append(r.SelectedCategoryIDList, categoryID)
		return true
	})
}

// DeselectCategory убирает категорию из выбранных
func (s *Store) DeselectCategory(categoryID string) bool {
	return s.mutate(func(r *entity.Randomization) bool {
		if !r.IsCategorySelected(categoryID) {
			return false
		}
		result := make([]string, 0, len(r.SelectedCategoryIDList))
		for _, id := range r.SelectedCategoryIDList {
			if id != categoryID {
				result = append(result, id)
			}
		}
		r.SelectedCategoryIDList = result
		return true
	})
}

// SetCurrentQuestion устанавливает текущий вопрос (nil — сброс); showAnswer всегда сбрасывается
func (s *Store) SetCurrentQuestion(question *entity.Question) bool {
	return s.mutate(func(r *entity.Randomization) bool {
		if question == nil {
			r.CurrentQuestion = nil
		} else {
			q := *question
			r.CurrentQuestion = &q
		}
		r.ShowAnswer = false
		return true
	})
}

// ClearCurrentQuestion эквивалентно SetCurrentQuestion(nil)
func (s *Store) ClearCurrentQuestion() bool {
	return s.SetCurrentQuestion(nil)
}

// RefreshCurrentQuestion обновляет снимок текущего вопроса после редактирования.
// Идентичность вопроса не меняется, поэтому showAnswer сохраняется.
func (s *Store) RefreshCurrentQuestion(question entity.Question) bool {
	return s.mutate(func(r *entity.Randomization) bool {
		if r.CurrentQuestion == nil || r.CurrentQuestion.ID != question.ID {
			return false
		}
		q := question
		r.CurrentQuestion = &q
		return true
	})
}

// SetShowAnswer показывает или скрывает ответ на текущий вопрос
func (s *Store) SetShowAnswer(show bool) bool {
	return s.mutate(func(r *entity.Randomization) bool {
		if r.ShowAnswer == show {
			return false
		}
		if show && r.CurrentQuestion == nil {
			return false
		}
		r.ShowAnswer = show
		return true
	})
}
