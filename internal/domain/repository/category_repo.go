package repository

import (
	"context"

	"github.com/yourusername/randomizer-api/internal/domain/entity"
)

// CategoryRepository определяет методы для работы с категориями
type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, id string) (*entity.Category, error)
	GetByUserID(ctx context.Context, userID string) ([]entity.Category, error)
	Update(ctx context.Context, category *entity.Category) error
	Delete(ctx context.Context, id string) error
}

// QualificationRepository определяет методы для работы с квалификациями
type QualificationRepository interface {
	Create(ctx context.Context, qualification *entity.Qualification) error
	GetByID(ctx context.Context, id string) (*entity.Qualification, error)
	GetByUserID(ctx context.Context, userID string) ([]entity.Qualification, error)
	Update(ctx context.Context, qualification *entity.Qualification) error
	Delete(ctx context.Context, id string) error
}
