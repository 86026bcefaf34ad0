package entity

import (
	"time"
)

// Статусы рандомизации
const (
	RandomizationStatusOngoing  = "Ongoing"
	RandomizationStatusFinished = "Finished"
)

// QuestionCategory — элемент списков рандомизации: вопрос и его категория.
// Позволяет работать со списками без полного тела вопроса.
type QuestionCategory struct {
	QuestionID string `json:"question_id"`
	CategoryID string `json:"category_id,omitempty"`
}

// QuestionCategoryList — упорядоченный список элементов (старые первыми)
type QuestionCategoryList []QuestionCategory

// IndexOf возвращает позицию вопроса в списке или -1
func (l QuestionCategoryList) IndexOf(questionID string) int {
	for i, qc := range l {
		if qc.QuestionID == questionID {
			return i
		}
	}
	return -1
}

// Contains проверяет наличие вопроса в списке
func (l QuestionCategoryList) Contains(questionID string) bool {
	return l.IndexOf(questionID) >= 0
}

// Without возвращает новый список без указанного вопроса
func (l QuestionCategoryList) Without(questionID string) QuestionCategoryList {
	result := make(QuestionCategoryList, 0, len(l))
	for _, qc := range l {
		if qc.QuestionID != questionID {
			result = append(result, qc)
		}
	}
	return result
}

// Clone возвращает копию списка (nil → пустой список)
func (l QuestionCategoryList) Clone() QuestionCategoryList {
	result := make(QuestionCategoryList, len(l))
	copy(result, l)
	return result
}

// Randomization — агрегат сессии рандомизации пользователя
type Randomization struct {
	ID                     string               `json:"id"`
	UserID                 string               `json:"user_id"`
	Status                 string               `json:"status"`
	ShowAnswer             bool                 `json:"show_answer"`
	CurrentQuestion        *Question            `json:"current_question,omitempty"`
	AvailableQuestionList  QuestionCategoryList `json:"available_question_list"`
	UsedQuestionList       QuestionCategoryList `json:"used_question_list"`
	PostponedQuestionList  QuestionCategoryList `json:"postponed_question_list"`
	SelectedCategoryIDList []string             `json:"selected_category_id_list"`
}

// NewRandomization создаёт свежую рандомизацию: все вопросы каталога в available,
// остальные списки пустые. Активность вопросов здесь не учитывается —
// фильтрация по isActive выполняется только при выборе.
func NewRandomization(id, userID string, questions []Question) *Randomization {
	available := make(QuestionCategoryList, 0, len(questions))
	for i := range questions {
		available = append(available, questions[i].ToQuestionCategory())
	}
	return &Randomization{
		ID:                     id,
		UserID:                 userID,
		Status:                 RandomizationStatusOngoing,
		ShowAnswer:             false,
		AvailableQuestionList:  available,
		UsedQuestionList:       QuestionCategoryList{},
		PostponedQuestionList:  QuestionCategoryList{},
		SelectedCategoryIDList: []string{},
	}
}

// Clone возвращает глубокую копию агрегата
func (r *Randomization) Clone() *Randomization {
	if r == nil {
		return nil
	}
	clone := *r
	if r.CurrentQuestion != nil {
		q := *r.CurrentQuestion
		clone.CurrentQuestion = &q
	}
	clone.AvailableQuestionList = r.AvailableQuestionList.Clone()
	clone.UsedQuestionList = r.UsedQuestionList.Clone()
	clone.PostponedQuestionList = r.PostponedQuestionList.Clone()
	clone.SelectedCategoryIDList = append([]string{}, r.SelectedCategoryIDList...)
	return &clone
}

// CurrentQuestionID возвращает ID текущего вопроса или пустую строку
func (r *Randomization) CurrentQuestionID() string {
	if r == nil || r.CurrentQuestion == nil {
		return ""
	}
	return r.CurrentQuestion.ID
}

// IsCategorySelected проверяет, выбрана ли категория (включая «без категории»)
func (r *Randomization) IsCategorySelected(categoryID string) bool {
	for _, id := range r.SelectedCategoryIDList {
		if id == categoryID {
			return true
		}
	}
	return false
}

// ListOf возвращает имя списка, в котором находится вопрос, или пустую строку
func (r *Randomization) ListOf(questionID string) string {
	switch {
	case r.AvailableQuestionList.Contains(questionID):
		return ListAvailable
	case r.UsedQuestionList.Contains(questionID):
		return ListUsed
	case r.PostponedQuestionList.Contains(questionID):
		return ListPostponed
	}
	return ""
}

// Имена списков рандомизации
const (
	ListAvailable = "available"
	ListUsed      = "used"
	ListPostponed = "postponed"
)

// RandomizationRecord — строка таблицы randomizations.
// Списки хранятся в отдельных таблицах, available не хранится вовсе
// и вычисляется при загрузке.
type RandomizationRecord struct {
	ID                string    `gorm:"primaryKey;size:36" json:"id"`
	UserID            string    `gorm:"size:64;not null;uniqueIndex" json:"user_id"`
	Status            string    `gorm:"size:20;not null;default:'Ongoing'" json:"status"`
	ShowAnswer        bool      `gorm:"not null;default:false" json:"show_answer"`
	CurrentQuestionID string    `gorm:"size:36;not null;default:''" json:"current_question_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (RandomizationRecord) TableName() string {
	return "randomizations"
}

// UsedQuestion — строка списка использованных вопросов. Порядок — по ID.
type UsedQuestion struct {
	ID              uint      `gorm:"primaryKey"`
	RandomizationID string    `gorm:"size:36;not null;uniqueIndex:idx_used_randomization_question,priority:1"`
	QuestionID      string    `gorm:"size:36;not null;uniqueIndex:idx_used_randomization_question,priority:2"`
	CategoryID      string    `gorm:"size:36;not null;default:''"`
	CreatedAt       time.Time
}

// TableName определяет имя таблицы для GORM
func (UsedQuestion) TableName() string {
	return "randomization_used_questions"
}

// PostponedQuestion — строка списка отложенных вопросов. Порядок — по ID,
// перенос в конец выполняется удалением и повторной вставкой.
type PostponedQuestion struct {
	ID              uint      `gorm:"primaryKey"`
	RandomizationID string    `gorm:"size:36;not null;uniqueIndex:idx_postponed_randomization_question,priority:1"`
	QuestionID      string    `gorm:"size:36;not null;uniqueIndex:idx_postponed_randomization_question,priority:2"`
	CategoryID      string    `gorm:"size:36;not null;default:''"`
	CreatedAt       time.Time
}

// TableName определяет имя таблицы для GORM
func (PostponedQuestion) TableName() string {
	return "randomization_postponed_questions"
}

// SelectedCategory — выбранная категория рандомизации
type SelectedCategory struct {
	RandomizationID string `gorm:"primaryKey;size:36"`
	CategoryID      string `gorm:"primaryKey;size:36"`
	CreatedAt       time.Time
}

// TableName определяет имя таблицы для GORM
func (SelectedCategory) TableName() string {
	return "randomization_selected_categories"
}
