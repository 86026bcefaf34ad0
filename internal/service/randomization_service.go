package service

import (
	"context"
	"encoding/json"
	"log"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/yourusername/randomizer-api/internal/domain/entity"
	"github.com/yourusername/randomizer-api/internal/domain/repository"
	"github.com/yourusername/randomizer-api/internal/service/randomizer"
)

// RandomizationNotifier доставляет изменения состояния рандомизации клиентам пользователя
type RandomizationNotifier interface {
	NotifyRandomization(userID string, view randomizer.View)
}

// ClusterBroadcaster рассылает сообщения остальным инстансам сервиса
type ClusterBroadcaster interface {
	Broadcast(messageType string, payload []byte) error
}

// CatalogChangedMessage — тип сообщения кластера: каталог пользователя изменён
// на другом инстансе, его сессию в памяти нужно перечитать из БД
const CatalogChangedMessage = "catalog:changed"

type catalogChanged struct {
	UserID string `json:"user_id"`
}

// RandomizationConfig — параметры сервиса рандомизации
type RandomizationConfig struct {
	GatewayTimeout     time.Duration
	SessionIdleTimeout time.Duration
	// NewRand создаёт генератор для новой сессии (nil — случайный)
	NewRand func() *rand.Rand
}

type sessionEntry struct {
	session     *randomizer.Session
	unsubscribe func()
}

// RandomizationService управляет сессиями рандомизации пользователей
// и реагирует на события каталога
type RandomizationService struct {
	gateway  repository.RandomizationRepository
	catalog  randomizer.Catalog
	notifier RandomizationNotifier
	cluster  ClusterBroadcaster
	config   RandomizationConfig

	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

// NewRandomizationService создает новый сервис рандомизации
func NewRandomizationService(
	gateway repository.RandomizationRepository,
	catalog randomizer.Catalog,
	notifier RandomizationNotifier,
	config RandomizationConfig,
) *RandomizationService {
	return &RandomizationService{
		gateway:  gateway,
		catalog:  catalog,
		notifier: notifier,
		config:   config,
		sessions: make(map[string]*sessionEntry),
	}
}

// SetCluster подключает рассылку событий каталога другим инстансам
func (s *RandomizationService) SetCluster(cluster ClusterBroadcaster) {
	s.cluster = cluster
}

// Session возвращает сессию пользователя, создавая её при первом обращении
func (s *RandomizationService) Session(userID string) *randomizer.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.sessions[userID]; ok {
		return entry.session
	}

	opts := randomizer.Options{GatewayTimeout: s.config.GatewayTimeout}
	if s.config.NewRand != nil {
		opts.Rand = s.config.NewRand()
	}
	session := randomizer.NewSession(userID, s.gateway, s.catalog, opts)

	entry := &sessionEntry{session: session, unsubscribe: func() {}}
	if s.notifier != nil {
		entry.unsubscribe = session.Subscribe(func(view randomizer.View) {
			s.notifier.NotifyRandomization(userID, view)
		})
	}
	s.sessions[userID] = entry
	return session
}

// existing возвращает сессию, если она уже в памяти. Для пользователей без сессии
// события вопросов не обрабатываются: загрузка сама согласует списки с каталогом.
func (s *RandomizationService) existing(userID string) (*randomizer.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[userID]
	if !ok {
		return nil, false
	}
	return entry.session, true
}

// SessionCount возвращает число сессий в памяти
func (s *RandomizationService) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// GetRandomization загружает рандомизацию пользователя и возвращает её состояние
func (s *RandomizationService) GetRandomization(ctx context.Context, userID string, force bool) (randomizer.View, error) {
	return s.Session(userID).LoadRandomization(ctx, force)
}

// AdvanceToNextQuestion выбирает следующий текущий вопрос
func (s *RandomizationService) AdvanceToNextQuestion(ctx context.Context, userID string) (randomizer.View, error) {
	return s.Session(userID).AdvanceToNextQuestion(ctx)
}

// NextQuestion отмечает текущий вопрос использованным и выбирает следующий
func (s *RandomizationService) NextQuestion(ctx context.Context, userID string) (randomizer.View, error) {
	return s.Session(userID).NextQuestion(ctx)
}

// PostponeCurrentQuestion откладывает текущий вопрос и выбирает следующий
func (s *RandomizationService) PostponeCurrentQuestion(ctx context.Context, userID string) (randomizer.View, error) {
	return s.Session(userID).PostponeCurrentQuestion(ctx)
}

// MarkQuestionAsUsed отмечает вопрос использованным
func (s *RandomizationService) MarkQuestionAsUsed(ctx context.Context, userID, questionID string) (randomizer.View, error) {
	return s.Session(userID).MarkQuestionAsUsed(ctx, questionID)
}

// SelectCategory добавляет категорию в выбранные
func (s *RandomizationService) SelectCategory(ctx context.Context, userID, categoryID string) (randomizer.View, error) {
	return s.Session(userID).SelectCategory(ctx, categoryID)
}

// DeselectCategory убирает категорию из выбранных
func (s *RandomizationService) DeselectCategory(ctx context.Context, userID, categoryID string) (randomizer.View, error) {
	return s.Session(userID).DeselectCategory(ctx, categoryID)
}

// RevealAnswer показывает ответ на текущий вопрос
func (s *RandomizationService) RevealAnswer(ctx context.Context, userID string) (randomizer.View, error) {
	return s.Session(userID).RevealAnswer(ctx)
}

// ResetUsedQuestions возвращает использованные вопросы в available
func (s *RandomizationService) ResetUsedQuestions(ctx context.Context, userID string) (randomizer.View, error) {
	return s.Session(userID).ResetUsedQuestions(ctx)
}

// OnQuestionCreated реализует CatalogEvents
func (s *RandomizationService) OnQuestionCreated(ctx context.Context, userID string, question entity.Question) {
	defer s.broadcastCatalogChanged(userID)

	session, ok := s.existing(userID)
	if !ok {
		return
	}
	if err := session.OnQuestionCreated(ctx, question); err != nil {
		log.Printf("[RandomizationService] Ошибка обработки создания вопроса %s: %v", question.ID, err)
	}
}

// OnQuestionUpdated реализует CatalogEvents. Если текущий вопрос стал
// неактивным, сразу выбирается следующий.
func (s *RandomizationService) OnQuestionUpdated(ctx context.Context, userID string, question entity.Question) {
	defer s.broadcastCatalogChanged(userID)

	session, ok := s.existing(userID)
	if !ok {
		return
	}
	cleared, err := session.OnQuestionUpdated(ctx, question)
	if err != nil {
		log.Printf("[RandomizationService] Ошибка обработки изменения вопроса %s: %v", question.ID, err)
		return
	}
	if cleared {
		s.refill(ctx, session)
	}
}

// OnQuestionDeleted реализует CatalogEvents. Если удалён текущий вопрос,
// сразу выбирается следующий.
func (s *RandomizationService) OnQuestionDeleted(ctx context.Context, userID, questionID string) {
	defer s.broadcastCatalogChanged(userID)

	session, ok := s.existing(userID)
	if !ok {
		return
	}
	cleared, err := session.OnQuestionDeleted(ctx, questionID)
	if err != nil {
		log.Printf("[RandomizationService] Ошибка обработки удаления вопроса %s: %v", questionID, err)
		return
	}
	if cleared {
		s.refill(ctx, session)
	}
}

// OnCategoryCreated реализует CatalogEvents
func (s *RandomizationService) OnCategoryCreated(ctx context.Context, userID, categoryID string) {
	if session, ok := s.existing(userID); ok {
		session.OnCategoryCreated(ctx, categoryID)
	}
}

// OnCategoryDeleted реализует CatalogEvents. Сессия загружается при необходимости:
// выбор удалённой категории хранится в БД и должен быть снят. Загруженная после
// удаления сессия уже не видит старую категорию у вопросов, поэтому текущий
// вопрос сверяется и со списком questionIDs.
func (s *RandomizationService) OnCategoryDeleted(ctx context.Context, userID, categoryID string, questionIDs []string) {
	defer s.broadcastCatalogChanged(userID)

	if err := s.Session(userID).OnCategoryDeleted(ctx, categoryID, questionIDs); err != nil {
		log.Printf("[RandomizationService] Ошибка обработки удаления категории %s: %v", categoryID, err)
	}
}

// broadcastCatalogChanged сообщает остальным инстансам, что их сессия пользователя устарела.
// Вызывается после того, как этот инстанс согласовал и сохранил списки.
func (s *RandomizationService) broadcastCatalogChanged(userID string) {
	if s.cluster == nil {
		return
	}
	payload, err := json.Marshal(catalogChanged{UserID: userID})
	if err != nil {
		log.Printf("[RandomizationService] Ошибка сериализации события каталога: %v", err)
		return
	}
	if err := s.cluster.Broadcast(CatalogChangedMessage, payload); err != nil {
		log.Printf("[RandomizationService] Ошибка рассылки события каталога пользователя %s: %v", userID, err)
	}
}

// HandleCatalogChanged обрабатывает событие каталога с другого инстанса:
// сессия выгружается и при следующем обращении загружается из БД заново
func (s *RandomizationService) HandleCatalogChanged(payload []byte) {
	var msg catalogChanged
	if err := json.Unmarshal(payload, &msg); err != nil || msg.UserID == "" {
		log.Printf("[RandomizationService] Некорректное событие каталога из кластера: %s", payload)
		return
	}
	if s.Forget(msg.UserID) {
		log.Printf("[RandomizationService] Сессия пользователя %s выгружена после изменения каталога на другом инстансе", msg.UserID)
	}
}

// Forget выгружает сессию пользователя из памяти; возвращает false, если её не было
func (s *RandomizationService) Forget(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLocked(userID)
}

func (s *RandomizationService) removeLocked(userID string) bool {
	entry, ok := s.sessions[userID]
	if !ok {
		return false
	}
	entry.unsubscribe()
	delete(s.sessions, userID)
	return true
}

func (s *RandomizationService) refill(ctx context.Context, session *randomizer.Session) {
	if _, err := session.AdvanceToNextQuestion(ctx); err != nil {
		log.Printf("[RandomizationService] Ошибка выбора следующего вопроса для пользователя %s: %v", session.UserID(), err)
	}
}

// EvictIdle удаляет из памяти сессии, к которым не обращались дольше SessionIdleTimeout.
// Состояние сохранено в БД и будет загружено при следующем обращении.
func (s *RandomizationService) EvictIdle(now time.Time) int {
	if s.config.SessionIdleTimeout <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for userID, entry := range s.sessions {
		if now.Sub(entry.session.LastAccess()) > s.config.SessionIdleTimeout && s.removeLocked(userID) {
			evicted++
		}
	}
	return evicted
}

// RunEviction периодически удаляет неактивные сессии до отмены контекста
func (s *RandomizationService) RunEviction(ctx context.Context, interval time.Duration) {
	if interval <= 0 || s.config.SessionIdleTimeout <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := s.EvictIdle(now); n > 0 {
				log.Printf("[RandomizationService] Удалено неактивных сессий: %d", n)
			}
		}
	}
}
