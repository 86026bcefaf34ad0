package repository

import (
	"context"

	"github.com/yourusername/randomizer-api/internal/domain/entity"
)

// RandomizationRepository — хранилище рандомизации и её списков.
// Не содержит логики выбора: только чтение/запись.
type RandomizationRepository interface {
	// GetByUserID возвращает запись рандомизации пользователя или apperrors.ErrNotFound
	GetByUserID(ctx context.Context, userID string) (*entity.RandomizationRecord, error)
	// Create создаёт новую рандомизацию пользователя и возвращает её ID
	Create(ctx context.Context, userID string) (string, error)
	// Update перезаписывает status, show_answer и current_question_id
	Update(ctx context.Context, randomization *entity.Randomization) error

	// Чтение списков при загрузке
	GetUsedQuestionList(ctx context.Context, randomizationID string) ([]entity.QuestionCategory, error)
	GetPostponedQuestionList(ctx context.Context, randomizationID string) ([]entity.QuestionCategory, error)
	GetSelectedCategoryIDList(ctx context.Context, randomizationID string) ([]string, error)

	// Список использованных вопросов
	AddUsedQuestion(ctx context.Context, randomizationID string, qc entity.QuestionCategory) error
	DeleteUsedQuestion(ctx context.Context, randomizationID, questionID string) error
	DeleteAllUsedQuestions(ctx context.Context, randomizationID string) error
	UpdateUsedQuestionCategory(ctx context.Context, randomizationID, questionID, categoryID string) error
	ResetUsedQuestionsCategory(ctx context.Context, randomizationID, categoryID string) error

	// Список отложенных вопросов
	AddPostponedQuestion(ctx context.Context, randomizationID string, qc entity.QuestionCategory) error
	DeletePostponedQuestion(ctx context.Context, randomizationID, questionID string) error
	UpdatePostponedQuestionCategory(ctx context.Context, randomizationID, questionID, categoryID string) error
	ResetPostponedQuestionsCategory(ctx context.Context, randomizationID, categoryID string) error

	// Выбранные категории
	AddSelectedCategory(ctx context.Context, randomizationID, categoryID string) error
	DeleteSelectedCategory(ctx context.Context, randomizationID, categoryID string) error
}
