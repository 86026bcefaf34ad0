package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/yourusername/randomizer-api/internal/domain/entity"
	apperrors "github.com/yourusername/randomizer-api/internal/pkg/errors"
)

// CategoryRepo реализует repository.CategoryRepository
type CategoryRepo struct {
	db *gorm.DB
}

// NewCategoryRepo создает новый репозиторий категорий
func NewCategoryRepo(db *gorm.DB) *CategoryRepo {
	return &CategoryRepo{db: db}
}

// Create создает новую категорию
func (r *CategoryRepo) Create(ctx context.Context, category *entity.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

// GetByID возвращает категорию по ID
func (r *CategoryRepo) GetByID(ctx context.Context, id string) (*entity.Category, error) {
	var category entity.Category
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&category).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &category, nil
}

// GetByUserID возвращает категории пользователя, отсортированные по названию
func (r *CategoryRepo) GetByUserID(ctx context.Context, userID string) ([]entity.Category, error) {
	var categories []entity.Category
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("value").Find(&categories).Error
	return categories, err
}

// Update обновляет название категории
func (r *CategoryRepo) Update(ctx context.Context, category *entity.Category) error {
	return r.db.WithContext(ctx).Model(&entity.Category{}).
		Where("id = ?", category.ID).
		Update("value", category.Value).Error
}

// Delete удаляет категорию
func (r *CategoryRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Category{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// QualificationRepo реализует repository.QualificationRepository
type QualificationRepo struct {
	db *gorm.DB
}

// NewQualificationRepo создает новый репозиторий квалификаций
func NewQualificationRepo(db *gorm.DB) *QualificationRepo {
	return &QualificationRepo{db: db}
}

// Create создает новую квалификацию
func (r *QualificationRepo) Create(ctx context.Context, qualification *entity.Qualification) error {
	return r.db.WithContext(ctx).Create(qualification).Error
}

// GetByID возвращает квалификацию по ID
func (r *QualificationRepo) GetByID(ctx context.Context, id string) (*entity.Qualification, error) {
	var qualification entity.Qualification
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&qualification).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &qualification, nil
}

// GetByUserID возвращает квалификации пользователя
func (r *QualificationRepo) GetByUserID(ctx context.Context, userID string) ([]entity.Qualification, error) {
	var qualifications []entity.Qualification
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("value").Find(&qualifications).Error
	return qualifications, err
}

// Update обновляет название квалификации
func (r *QualificationRepo) Update(ctx context.Context, qualification *entity.Qualification) error {
	return r.db.WithContext(ctx).Model(&entity.Qualification{}).
		Where("id = ?", qualification.ID).
		Update("value", qualification.Value).Error
}

// Delete удаляет квалификацию
func (r *QualificationRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Qualification{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
