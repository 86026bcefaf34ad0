package entity

import (
	"strings"
	"time"
)

// UncategorizedCategoryID — значение categoryId для вопросов без категории.
// Считается отдельной категорией при выборе (selectedCategoryIdList).
const UncategorizedCategoryID = ""

// Question представляет вопрос для собеседования
type Question struct {
	ID              string    `gorm:"primaryKey;size:36" json:"id"`
	Question        string    `gorm:"type:text;not null" json:"question"`
	Answer          string    `gorm:"type:text;not null;default:''" json:"answer"`
	AnswerPl        string    `gorm:"type:text;not null;default:''" json:"answer_pl"`
	CategoryID      string    `gorm:"size:36;not null;default:'';index" json:"category_id,omitempty"`
	QualificationID string    `gorm:"size:36;not null;default:''" json:"qualification_id,omitempty"`
	IsActive        bool      `gorm:"not null;default:true" json:"is_active"`
	UserID          string    `gorm:"size:64;not null;index" json:"user_id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Question) TableName() string {
	return "questions"
}

// IsUncategorized проверяет, что вопрос не привязан к категории
func (q *Question) IsUncategorized() bool {
	return q.CategoryID == UncategorizedCategoryID
}

// HasText проверяет, что текст вопроса не пустой
func (q *Question) HasText() bool {
	return strings.TrimSpace(q.Question) != ""
}

// ToQuestionCategory возвращает облегчённую проекцию вопроса для списков рандомизации
func (q *Question) ToQuestionCategory() QuestionCategory {
	return QuestionCategory{QuestionID: q.ID, CategoryID: q.CategoryID}
}

// QuestionMap — каталог вопросов пользователя: questionID → вопрос
type QuestionMap map[string]Question

// Lookup возвращает вопрос по ID и признак его наличия
func (m QuestionMap) Lookup(questionID string) (Question, bool) {
	q, ok := m[questionID]
	return q, ok
}

// IsActive проверяет, что вопрос существует в каталоге и активен
func (m QuestionMap) IsActive(questionID string) bool {
	q, ok := m[questionID]
	return ok && q.IsActive
}
