package randomizer

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/yourusername/randomizer-api/internal/domain/entity"
	"github.com/yourusername/randomizer-api/internal/domain/repository"
	apperrors "github.com/yourusername/randomizer-api/internal/pkg/errors"
)

// DefaultGatewayTimeout — таймаут одного обращения к хранилищу по умолчанию
const DefaultGatewayTimeout = 5 * time.Second

// ErrNotLoaded возвращается операциями, которым нужна загруженная рандомизация
var ErrNotLoaded = fmt.Errorf("%w: randomization is not loaded", apperrors.ErrConflict)

// LoadState — состояние загрузки рандомизации
type LoadState string

const (
	LoadStateNotLoaded  LoadState = "not_loaded"
	LoadStateLoading    LoadState = "loading"
	LoadStateLoaded     LoadState = "loaded"
	LoadStateLoadFailed LoadState = "load_failed"
)

// Catalog — источник вопросов пользователя (questionID → вопрос).
// Движок никогда не изменяет полученный каталог.
type Catalog interface {
	QuestionMap(ctx context.Context, userID string) (entity.QuestionMap, error)
}

// CatalogFunc позволяет использовать функцию как Catalog
type CatalogFunc func(ctx context.Context, userID string) (entity.QuestionMap, error)

// QuestionMap реализует Catalog
func (f CatalogFunc) QuestionMap(ctx context.Context, userID string) (entity.QuestionMap, error) {
	return f(ctx, userID)
}

// Listener получает снимок состояния после каждого изменения хранилища
type Listener func(view View)

// View — представление состояния рандомизации для UI
type View struct {
	RandomizationID        string           `json:"randomization_id,omitempty"`
	Status                 string           `json:"status,omitempty"`
	LoadState              LoadState        `json:"load_state"`
	CurrentQuestion        *entity.Question `json:"current_question,omitempty"`
	ShowAnswer             bool             `json:"show_answer"`
	SelectedCategoryIDList []string         `json:"selected_category_id_list"`
	AvailableCount         int              `json:"available_count"`
	UsedCount              int              `json:"used_count"`
	PostponedCount         int              `json:"postponed_count"`
	Error                  string           `json:"error,omitempty"`
}

// persister выполняет зеркальную запись в хранилище после изменения в памяти.
// Ошибки не откатывают изменения: они записываются в Store и логируются.
type persister struct {
	store   *Store
	gateway repository.RandomizationRepository
	timeout time.Duration
}

// run выполняет операцию хранилища с таймаутом; возвращает false при ошибке.
// Успешная запись сбрасывает ошибку предыдущей.
func (p *persister) run(ctx context.Context, op string, fn func(ctx context.Context) error) bool {
	timeout := p.timeout
	if timeout <= 0 {
		timeout = DefaultGatewayTimeout
	}
	opCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := fn(opCtx); err != nil {
		msg := fmt.Sprintf("%s: %v", op, err)
		log.Printf("[Randomizer] Ошибка сохранения: %s", msg)
		p.store.SetError(msg)
		return false
	}
	p.store.ClearError()
	return true
}

// updateRandomization сохраняет status/showAnswer/currentQuestionId из текущего снимка
func (p *persister) updateRandomization(ctx context.Context, op string) {
	snapshot := p.store.Randomization()
	if snapshot == nil {
		return
	}
	p.run(ctx, op, func(ctx context.Context) error {
		return p.gateway.Update(ctx, snapshot)
	})
}
