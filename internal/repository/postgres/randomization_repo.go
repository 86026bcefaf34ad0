package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yourusername/randomizer-api/internal/domain/entity"
)

// RandomizationRepo реализует repository.RandomizationRepository
type RandomizationRepo struct {
	db *gorm.DB
}

// NewRandomizationRepo создает новый репозиторий рандомизаций
func NewRandomizationRepo(db *gorm.DB) *RandomizationRepo {
	return &RandomizationRepo{db: db}
}

// GetByUserID возвращает запись рандомизации пользователя
func (r *RandomizationRepo) GetByUserID(ctx context.Context, userID string) (*entity.RandomizationRecord, error) {
	var record entity.RandomizationRecord
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&record).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &record, nil
}

// Create создаёт пустую рандомизацию пользователя
func (r *RandomizationRepo) Create(ctx context.Context, userID string) (string, error) {
	record := &entity.RandomizationRecord{
		ID:     uuid.New().String(),
		UserID: userID,
		Status: entity.RandomizationStatusOngoing,
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		if isUniqueViolation(err) {
			// Параллельная загрузка уже создала запись — используем её
			existing, getErr := r.GetByUserID(ctx, userID)
			if getErr != nil {
				return "", fmt.Errorf("randomization for user %s already exists but cannot be read: %w", userID, getErr)
			}
			return existing.ID, nil
		}
		return "", err
	}
	return record.ID, nil
}

// Update перезаписывает поля агрегата без списков
func (r *RandomizationRepo) Update(ctx context.Context, randomization *entity.Randomization) error {
	return r.db.WithContext(ctx).Model(&entity.RandomizationRecord{}).
		Where("id = ?", randomization.ID).
		Updates(map[string]interface{}{
			"status":              randomization.Status,
			"show_answer":         randomization.ShowAnswer,
			"current_question_id": randomization.CurrentQuestionID(),
		}).Error
}

// GetUsedQuestionList возвращает использованные вопросы в порядке добавления
func (r *RandomizationRepo) GetUsedQuestionList(ctx context.Context, randomizationID string) ([]entity.QuestionCategory, error) {
	var rows []entity.UsedQuestion
	err := r.db.WithContext(ctx).
		Where("randomization_id = ?", randomizationID).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	result := make([]entity.QuestionCategory, 0, len(rows))
	for _, row := range rows {
		result = append(result, entity.QuestionCategory{QuestionID: row.QuestionID, CategoryID: row.CategoryID})
	}
	return result, nil
}

// GetPostponedQuestionList возвращает отложенные вопросы, старые первыми
func (r *RandomizationRepo) GetPostponedQuestionList(ctx context.Context, randomizationID string) ([]entity.QuestionCategory, error) {
	var rows []entity.PostponedQuestion
	err := r.db.WithContext(ctx).
		Where("randomization_id = ?", randomizationID).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	result := make([]entity.QuestionCategory, 0, len(rows))
	for _, row := range rows {
		result = append(result, entity.QuestionCategory{QuestionID: row.QuestionID, CategoryID: row.CategoryID})
	}
	return result, nil
}

// GetSelectedCategoryIDList возвращает выбранные категории
func (r *RandomizationRepo) GetSelectedCategoryIDList(ctx context.Context, randomizationID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&entity.SelectedCategory{}).
		Where("randomization_id = ?", randomizationID).
		Order("created_at").
		Pluck("category_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// AddUsedQuestion добавляет вопрос в конец списка использованных.
// Повторное добавление игнорируется.
func (r *RandomizationRepo) AddUsedQuestion(ctx context.Context, randomizationID string, qc entity.QuestionCategory) error {
	row := &entity.UsedQuestion{
		RandomizationID: randomizationID,
		QuestionID:      qc.QuestionID,
		CategoryID:      qc.CategoryID,
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil && !isUniqueViolation(err) {
		return err
	}
	return nil
}

// DeleteUsedQuestion удаляет вопрос из списка использованных
func (r *RandomizationRepo) DeleteUsedQuestion(ctx context.Context, randomizationID, questionID string) error {
	return r.db.WithContext(ctx).
		Where("randomization_id = ? AND question_id = ?", randomizationID, questionID).
		Delete(&entity.UsedQuestion{}).Error
}

// DeleteAllUsedQuestions очищает список использованных
func (r *RandomizationRepo) DeleteAllUsedQuestions(ctx context.Context, randomizationID string) error {
	return r.db.WithContext(ctx).
		Where("randomization_id = ?", randomizationID).
		Delete(&entity.UsedQuestion{}).Error
}

// UpdateUsedQuestionCategory меняет категорию одного элемента списка использованных
func (r *RandomizationRepo) UpdateUsedQuestionCategory(ctx context.Context, randomizationID, questionID, categoryID string) error {
	return r.db.WithContext(ctx).Model(&entity.UsedQuestion{}).
		Where("randomization_id = ? AND question_id = ?", randomizationID, questionID).
		Update("category_id", categoryID).Error
}

// ResetUsedQuestionsCategory переводит элементы удалённой категории в «без категории»
func (r *RandomizationRepo) ResetUsedQuestionsCategory(ctx context.Context, randomizationID, categoryID string) error {
	return r.db.WithContext(ctx).Model(&entity.UsedQuestion{}).
		Where("randomization_id = ? AND category_id = ?", randomizationID, categoryID).
		Update("category_id", entity.UncategorizedCategoryID).Error
}

// AddPostponedQuestion ставит вопрос в конец списка отложенных.
// Если вопрос уже отложен, он переносится в конец (удаление + вставка в одной транзакции).
func (r *RandomizationRepo) AddPostponedQuestion(ctx context.Context, randomizationID string, qc entity.QuestionCategory) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("randomization_id = ? AND question_id = ?", randomizationID, qc.QuestionID).
			Delete(&entity.PostponedQuestion{}).Error; err != nil {
			return err
		}
		row := &entity.PostponedQuestion{
			RandomizationID: randomizationID,
			QuestionID:      qc.QuestionID,
			CategoryID:      qc.CategoryID,
		}
		return tx.Create(row).Error
	})
}

// DeletePostponedQuestion удаляет вопрос из списка отложенных
func (r *RandomizationRepo) DeletePostponedQuestion(ctx context.Context, randomizationID, questionID string) error {
	return r.db.WithContext(ctx).
		Where("randomization_id = ? AND question_id = ?", randomizationID, questionID).
		Delete(&entity.PostponedQuestion{}).Error
}

// UpdatePostponedQuestionCategory меняет категорию одного отложенного вопроса
func (r *RandomizationRepo) UpdatePostponedQuestionCategory(ctx context.Context, randomizationID, questionID, categoryID string) error {
	return r.db.WithContext(ctx).Model(&entity.PostponedQuestion{}).
		Where("randomization_id = ? AND question_id = ?", randomizationID, questionID).
		Update("category_id", categoryID).Error
}

// ResetPostponedQuestionsCategory переводит отложенные вопросы удалённой категории в «без категории»
func (r *RandomizationRepo) ResetPostponedQuestionsCategory(ctx context.Context, randomizationID, categoryID string) error {
	return r.db.WithContext(ctx).Model(&entity.PostponedQuestion{}).
		Where("randomization_id = ? AND category_id = ?", randomizationID, categoryID).
		Update("category_id", entity.UncategorizedCategoryID).Error
}

// AddSelectedCategory добавляет категорию в выбранные (идемпотентно)
func (r *RandomizationRepo) AddSelectedCategory(ctx context.Context, randomizationID, categoryID string) error {
	row := &entity.SelectedCategory{RandomizationID: randomizationID, CategoryID: categoryID}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil && !isUniqueViolation(err) {
		return err
	}
	return nil
}

// DeleteSelectedCategory убирает категорию из выбранных
func (r *RandomizationRepo) DeleteSelectedCategory(ctx context.Context, randomizationID, categoryID string) error {
	return r.db.WithContext(ctx).
		Where("randomization_id = ? AND category_id = ?", randomizationID, categoryID).
		Delete(&entity.SelectedCategory{}).Error
}
