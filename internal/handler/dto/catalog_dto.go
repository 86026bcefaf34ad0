package dto

import (
	"github.com/yourusername/randomizer-api/internal/domain/entity"
	"github.com/yourusername/randomizer-api/internal/service"
)

// QuestionRequest представляет запрос на создание или редактирование вопроса
type QuestionRequest struct {
	Question        string `json:"question" binding:"required,max=2000"`
	Answer          string `json:"answer" binding:"max=10000"`
	AnswerPl        string `json:"answer_pl" binding:"max=10000"`
	CategoryID      string `json:"category_id" binding:"omitempty,uuid"`
	QualificationID string `json:"qualification_id" binding:"omitempty,uuid"`
	IsActive        *bool  `json:"is_active"`
}

// ToInput преобразует запрос во входные данные сервиса
func (r QuestionRequest) ToInput() service.QuestionInput {
	return service.QuestionInput{
		Question:        r.Question,
		Answer:          r.Answer,
		AnswerPl:        r.AnswerPl,
		CategoryID:      r.CategoryID,
		QualificationID: r.QualificationID,
		IsActive:        r.IsActive,
	}
}

// SetActiveRequest — запрос на включение/выключение вопроса
type SetActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// ValueRequest — запрос на создание или переименование категории/квалификации
type ValueRequest struct {
	Value string `json:"value" binding:"required,max=200"`
}

// QuestionListResponse — список вопросов
type QuestionListResponse struct {
	Questions []entity.Question `json:"questions"`
	Total     int               `json:"total"`
}

// NewQuestionListResponse создает ответ со списком вопросов
func NewQuestionListResponse(questions []entity.Question) QuestionListResponse {
	if questions == nil {
		questions = []entity.Question{}
	}
	return QuestionListResponse{Questions: questions, Total: len(questions)}
}
