package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yourusername/randomizer-api/internal/domain/entity"
	"github.com/yourusername/randomizer-api/internal/domain/repository"
	apperrors "github.com/yourusername/randomizer-api/internal/pkg/errors"
)

// QuestionRepo реализует repository.QuestionRepository
type QuestionRepo struct {
	db *gorm.DB
}

// NewQuestionRepo создает новый репозиторий вопросов
func NewQuestionRepo(db *gorm.DB) *QuestionRepo {
	return &QuestionRepo{db: db}
}

// Create создает новый вопрос
func (r *QuestionRepo) Create(ctx context.Context, question *entity.Question) error {
	return r.db.WithContext(ctx).Create(question).Error
}

// GetByID возвращает вопрос по ID
func (r *QuestionRepo) GetByID(ctx context.Context, id string) (*entity.Question, error) {
	var question entity.Question
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&question).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &question, nil
}

// GetByUserID возвращает все вопросы пользователя в порядке создания
func (r *QuestionRepo) GetByUserID(ctx context.Context, userID string) ([]entity.Question, error) {
	var questions []entity.Question
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at, id").
		Find(&questions).Error
	if err != nil {
		return nil, err
	}
	return questions, nil
}

// ListWithFilters возвращает вопросы пользователя с фильтрами
func (r *QuestionRepo) ListWithFilters(ctx context.Context, userID string, filters repository.QuestionFilters) ([]entity.Question, error) {
	var questions []entity.Question

	query := r.db.WithContext(ctx).Model(&entity.Question{}).Where("user_id = ?", userID)

	if filters.CategoryID != nil {
		query = query.Where("category_id = ?", *filters.CategoryID)
	}
	if filters.QualificationID != nil {
		query = query.Where("qualification_id = ?", *filters.QualificationID)
	}
	if filters.IsActive != nil {
		query = query.Where("is_active = ?", *filters.IsActive)
	}
	if filters.Search != "" {
		search := "%" + filters.Search + "%"
		query = query.Where("question ILIKE ? OR answer ILIKE ? OR answer_pl ILIKE ?", search, search, search)
	}

	if err := query.Order("created_at, id").Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

// Update обновляет вопрос целиком
func (r *QuestionRepo) Update(ctx context.Context, question *entity.Question) error {
	result := r.db.WithContext(ctx).Save(question)
	return result.Error
}

// SetActive точечно обновляет флаг is_active
func (r *QuestionRepo) SetActive(ctx context.Context, id string, isActive bool) error {
	result := r.db.WithContext(ctx).Model(&entity.Question{}).
		Where("id = ?", id).
		Update("is_active", isActive)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Delete удаляет вопрос
func (r *QuestionRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Question{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ResetCategory переводит вопросы удалённой категории в «без категории»
// и возвращает их ID (UPDATE ... RETURNING id)
func (r *QuestionRepo) ResetCategory(ctx context.Context, userID, categoryID string) ([]string, error) {
	var declassified []entity.Question
	err := r.db.WithContext(ctx).Model(&declassified).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "id"}}}).
		Where("user_id = ? AND category_id = ?", userID, categoryID).
		Update("category_id", entity.UncategorizedCategoryID).Error
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(declassified))
	for _, q := range declassified {
		ids = append(ids, q.ID)
	}
	return ids, nil
}

// ResetQualification снимает удалённую квалификацию с вопросов пользователя
func (r *QuestionRepo) ResetQualification(ctx context.Context, userID, qualificationID string) (int64, error) {
	result := r.db.WithContext(ctx).Model(&entity.Question{}).
		Where("user_id = ? AND qualification_id = ?", userID, qualificationID).
		Update("qualification_id", "")
	return result.RowsAffected, result.Error
}
