package randomizer

import (
	"context"
	"math/rand/v2"
	"sync"

	"github.com/yourusername/randomizer-api/internal/domain/entity"
)

// PickNextQuestion выбирает следующий текущий вопрос:
//  1. случайный (равновероятно) из активных вопросов available;
//  2. иначе первый из postponed, который активен и чья категория выбрана;
//  3. иначе nil.
//
// Фильтр по категориям применяется только к postponed.
// intn должна возвращать число в [0, n).
func PickNextQuestion(r *entity.Randomization, catalog entity.QuestionMap, intn func(n int) int) *entity.Question {
	if r == nil {
		return nil
	}

	filteredAvailable := make([]entity.Question, 0, len(r.AvailableQuestionList))
	for _, e := range r.AvailableQuestionList {
		if catalog.IsActive(e.QuestionID) {
			filteredAvailable = append(filteredAvailable, catalog[e.QuestionID])
		}
	}
	if len(filteredAvailable) > 0 {
		q := filteredAvailable[intn(len(filteredAvailable))]
		return &q
	}

	for _, e := range r.PostponedQuestionList {
		if !r.IsCategorySelected(e.CategoryID) {
			continue
		}
		if catalog.IsActive(e.QuestionID) {
			q := catalog[e.QuestionID]
			return &q
		}
	}
	return nil
}

// Selector применяет PickNextQuestion к хранилищу и сохраняет результат
type Selector struct {
	store   *Store
	persist *persister

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSelector создаёт Selector. Если rng == nil, используется случайно инициализированный генератор.
func NewSelector(store *Store, persist *persister, rng *rand.Rand) *Selector {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Selector{store: store, persist: persist, rng: rng}
}

func (s *Selector) intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

// AdvanceToNextQuestion выбирает следующий вопрос. Если выбранный вопрос совпадает
// с текущим (в том числе оба отсутствуют), ничего не меняется и не сохраняется.
// Возвращает true, если текущий вопрос сменился.
func (s *Selector) AdvanceToNextQuestion(ctx context.Context, catalog entity.QuestionMap) bool {
	r := s.store.Randomization()
	if r == nil {
		return false
	}

	next := PickNextQuestion(r, catalog, s.intn)

	nextID := ""
	if next != nil {
		nextID = next.ID
	}
	if nextID == r.CurrentQuestionID() {
		return false
	}

	if !s.store.SetCurrentQuestion(next) {
		return false
	}
	s.persist.updateRandomization(ctx, "advanceToNextQuestion")
	return true
}
