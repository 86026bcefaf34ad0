package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/randomizer-api/internal/domain/entity"
	"github.com/yourusername/randomizer-api/internal/domain/repository"
	apperrors "github.com/yourusername/randomizer-api/internal/pkg/errors"
)

// DefaultCatalogCacheTTL — время жизни кеша каталога по умолчанию
const DefaultCatalogCacheTTL = 10 * time.Minute

// catalogCacheKey — ключ кеша каталога вопросов пользователя.
// Hash tag держит ключ и его версию в одном слоте Redis Cluster.
func catalogCacheKey(userID string) string {
	return "catalog:{" + userID + "}"
}

// invalidateCatalog сбрасывает кеш каталога и увеличивает его версию.
// Ошибка только логируется: операция с каталогом уже выполнена.
func invalidateCatalog(ctx context.Context, cacheRepo repository.CacheRepository, component, userID string) {
	if err := cacheRepo.Invalidate(ctx, catalogCacheKey(userID)); err != nil {
		log.Printf("[%s] Ошибка сброса кеша каталога пользователя %s: %v", component, userID, err)
	}
}

// CatalogEvents получает события изменения каталога.
// Ошибки обработки событий не влияют на результат операции с каталогом.
type CatalogEvents interface {
	OnQuestionCreated(ctx context.Context, userID string, question entity.Question)
	OnQuestionUpdated(ctx context.Context, userID string, question entity.Question)
	OnQuestionDeleted(ctx context.Context, userID, questionID string)
	OnCategoryCreated(ctx context.Context, userID, categoryID string)
	// questionIDs — вопросы, с которых категория снята в каталоге
	OnCategoryDeleted(ctx context.Context, userID, categoryID string, questionIDs []string)
}

// QuestionInput — данные для создания/редактирования вопроса
type QuestionInput struct {
	Question        string
	Answer          string
	AnswerPl        string
	CategoryID      string
	QualificationID string
	IsActive        *bool
}

// QuestionService предоставляет методы для работы с каталогом вопросов
type QuestionService struct {
	questionRepo      repository.QuestionRepository
	categoryRepo      repository.CategoryRepository
	qualificationRepo repository.QualificationRepository
	cacheRepo         repository.CacheRepository
	cacheTTL          time.Duration
	events            CatalogEvents
}

// NewQuestionService создает новый сервис вопросов
func NewQuestionService(
	questionRepo repository.QuestionRepository,
	categoryRepo repository.CategoryRepository,
	qualificationRepo repository.QualificationRepository,
	cacheRepo repository.CacheRepository,
	cacheTTL time.Duration,
) *QuestionService {
	if cacheTTL <= 0 {
		cacheTTL = DefaultCatalogCacheTTL
	}
	return &QuestionService{
		questionRepo:      questionRepo,
		categoryRepo:      categoryRepo,
		qualificationRepo: qualificationRepo,
		cacheRepo:         cacheRepo,
		cacheTTL:          cacheTTL,
	}
}

// SetEvents подключает получателя событий каталога
func (s *QuestionService) SetEvents(events CatalogEvents) {
	s.events = events
}

// CreateQuestion создает вопрос пользователя
func (s *QuestionService) CreateQuestion(ctx context.Context, userID string, input QuestionInput) (*entity.Question, error) {
	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}
	question := &entity.Question{
		ID:              uuid.New().String(),
		Question:        strings.TrimSpace(input.Question),
		Answer:          input.Answer,
		AnswerPl:        input.AnswerPl,
		CategoryID:      input.CategoryID,
		QualificationID: input.QualificationID,
		IsActive:        isActive,
		UserID:          userID,
	}
	if err := s.validate(ctx, userID, question); err != nil {
		return nil, err
	}
	if err := s.questionRepo.Create(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}
	s.InvalidateCatalog(ctx, userID)

	if s.events != nil {
		s.events.OnQuestionCreated(ctx, userID, *question)
	}
	return question, nil
}

// GetQuestion возвращает вопрос пользователя по ID
func (s *QuestionService) GetQuestion(ctx context.Context, userID, id string) (*entity.Question, error) {
	question, err := s.questionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if question.UserID != userID {
		return nil, apperrors.ErrForbidden
	}
	return question, nil
}

// ListQuestions возвращает вопросы пользователя с фильтрами
func (s *QuestionService) ListQuestions(ctx context.Context, userID string, filters repository.QuestionFilters) ([]entity.Question, error) {
	questions, err := s.questionRepo.ListWithFilters(ctx, userID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	return questions, nil
}

// UpdateQuestion редактирует вопрос. Смена категории или активности
// согласуется со списками рандомизации.
func (s *QuestionService) UpdateQuestion(ctx context.Context, userID, id string, input QuestionInput) (*entity.Question, error) {
	question, err := s.GetQuestion(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	question.Question = strings.TrimSpace(input.Question)
	question.Answer = input.Answer
	question.AnswerPl = input.AnswerPl
	question.CategoryID = input.CategoryID
	question.QualificationID = input.QualificationID
	if input.IsActive != nil {
		question.IsActive = *input.IsActive
	}
	if err := s.validate(ctx, userID, question); err != nil {
		return nil, err
	}

	if err := s.questionRepo.Update(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to update question: %w", err)
	}
	s.InvalidateCatalog(ctx, userID)

	if s.events != nil {
		s.events.OnQuestionUpdated(ctx, userID, *question)
	}
	return question, nil
}

// SetQuestionActive включает или выключает вопрос
func (s *QuestionService) SetQuestionActive(ctx context.Context, userID, id string, isActive bool) (*entity.Question, error) {
	question, err := s.GetQuestion(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if question.IsActive == isActive {
		return question, nil
	}

	if err := s.questionRepo.SetActive(ctx, id, isActive); err != nil {
		return nil, fmt.Errorf("failed to set question activity: %w", err)
	}
	question.IsActive = isActive
	s.InvalidateCatalog(ctx, userID)

	if s.events != nil {
		s.events.OnQuestionUpdated(ctx, userID, *question)
	}
	return question, nil
}

// DeleteQuestion удаляет вопрос и убирает его из списков рандомизации
func (s *QuestionService) DeleteQuestion(ctx context.Context, userID, id string) error {
	if _, err := s.GetQuestion(ctx, userID, id); err != nil {
		return err
	}
	if err := s.questionRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}
	s.InvalidateCatalog(ctx, userID)

	if s.events != nil {
		s.events.OnQuestionDeleted(ctx, userID, id)
	}
	return nil
}

// QuestionMap возвращает каталог вопросов пользователя (questionID → вопрос).
// Каталог кешируется в Redis; при ошибке кеша читается из БД.
// Снимок из БД попадает в кеш, только если между чтением версии и записью
// каталог не инвалидировали.
func (s *QuestionService) QuestionMap(ctx context.Context, userID string) (entity.QuestionMap, error) {
	key := catalogCacheKey(userID)

	var cached entity.QuestionMap
	err := s.cacheRepo.GetJSON(ctx, key, &cached)
	if err == nil && cached != nil {
		return cached, nil
	}
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		log.Printf("[QuestionService] Ошибка чтения кеша каталога %s: %v", key, err)
	}

	// Версию читаем до запроса к БД
	version, versionErr := s.cacheRepo.Version(ctx, key)
	if versionErr != nil {
		log.Printf("[QuestionService] Ошибка чтения версии кеша каталога %s: %v", key, versionErr)
	}

	questions, err := s.questionRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}
	catalog := make(entity.QuestionMap, len(questions))
	for _, q := range questions {
		catalog[q.ID] = q
	}

	if versionErr != nil {
		return catalog, nil
	}
	stored, err := s.cacheRepo.SetJSONIfVersion(ctx, key, catalog, s.cacheTTL, version)
	switch {
	case err != nil:
		log.Printf("[QuestionService] Ошибка записи кеша каталога %s: %v", key, err)
	case !stored:
		log.Printf("[QuestionService] Каталог %s изменился во время чтения, кеш не обновлён", key)
	}
	return catalog, nil
}

// InvalidateCatalog сбрасывает кеш каталога пользователя
func (s *QuestionService) InvalidateCatalog(ctx context.Context, userID string) {
	invalidateCatalog(ctx, s.cacheRepo, "QuestionService", userID)
}

// validate проверяет текст вопроса и принадлежность категории/квалификации пользователю
func (s *QuestionService) validate(ctx context.Context, userID string, question *entity.Question) error {
	if !question.HasText() {
		return ErrEmptyQuestion
	}

	if !question.IsUncategorized() {
		category, err := s.categoryRepo.GetByID(ctx, question.CategoryID)
		if errors.Is(err, apperrors.ErrNotFound) || (err == nil && category.UserID != userID) {
			return ErrUnknownCategory
		}
		if err != nil {
			return fmt.Errorf("failed to get category: %w", err)
		}
	}

	if question.QualificationID != "" {
		qualification, err := s.qualificationRepo.GetByID(ctx, question.QualificationID)
		if errors.Is(err, apperrors.ErrNotFound) || (err == nil && qualification.UserID != userID) {
			return ErrUnknownQualification
		}
		if err != nil {
			return fmt.Errorf("failed to get qualification: %w", err)
		}
	}
	return nil
}
