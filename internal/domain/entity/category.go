package entity

import "time"

// Category — категория вопросов пользователя
type Category struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Value     string    `gorm:"size:200;not null" json:"value"`
	UserID    string    `gorm:"size:64;not null;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Category) TableName() string {
	return "categories"
}
