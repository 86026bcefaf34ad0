package repository

import (
	"context"

	"github.com/yourusername/randomizer-api/internal/domain/entity"
)

// QuestionFilters определяет фильтры для списка вопросов
type QuestionFilters struct {
	CategoryID      *string // nil — без фильтра, "" — только без категории
	QualificationID *string
	IsActive        *bool
	Search          string // Поиск по тексту вопроса/ответа
}

// QuestionRepository определяет методы для работы с каталогом вопросов
type QuestionRepository interface {
	Create(ctx context.Context, question *entity.Question) error
	GetByID(ctx context.Context, id string) (*entity.Question, error)
	// GetByUserID возвращает все вопросы пользователя (активные и неактивные)
	GetByUserID(ctx context.Context, userID string) ([]entity.Question, error)
	ListWithFilters(ctx context.Context, userID string, filters QuestionFilters) ([]entity.Question, error)
	Update(ctx context.Context, question *entity.Question) error
	SetActive(ctx context.Context, id string, isActive bool) error
	Delete(ctx context.Context, id string) error

	// ResetCategory убирает категорию у всех вопросов пользователя с данной категорией
	// и возвращает ID изменённых вопросов
	ResetCategory(ctx context.Context, userID, categoryID string) ([]string, error)
	// ResetQualification убирает квалификацию у всех вопросов пользователя
	ResetQualification(ctx context.Context, userID, qualificationID string) (int64, error)
}
