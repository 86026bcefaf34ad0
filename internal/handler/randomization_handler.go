package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/randomizer-api/internal/service/randomizer"
)

// Ключи контекста для параметров пути
const (
	QuestionIDKey      = "questionID"
	CategoryIDKey      = "categoryID"
	QualificationIDKey = "qualificationID"
)

// RandomizationUseCase — операции над рандомизацией пользователя
type RandomizationUseCase interface {
	GetRandomization(ctx context.Context, userID string, force bool) (randomizer.View, error)
	AdvanceToNextQuestion(ctx context.Context, userID string) (randomizer.View, error)
	NextQuestion(ctx context.Context, userID string) (randomizer.View, error)
	PostponeCurrentQuestion(ctx context.Context, userID string) (randomizer.View, error)
	MarkQuestionAsUsed(ctx context.Context, userID, questionID string) (randomizer.View, error)
	SelectCategory(ctx context.Context, userID, categoryID string) (randomizer.View, error)
	DeselectCategory(ctx context.Context, userID, categoryID string) (randomizer.View, error)
	RevealAnswer(ctx context.Context, userID string) (randomizer.View, error)
	ResetUsedQuestions(ctx context.Context, userID string) (randomizer.View, error)
}

// RandomizationHandler обрабатывает запросы экрана рандомизации
type RandomizationHandler struct {
	randomization RandomizationUseCase
}

// NewRandomizationHandler создает новый обработчик рандомизации
func NewRandomizationHandler(randomization RandomizationUseCase) *RandomizationHandler {
	return &RandomizationHandler{randomization: randomization}
}

// GetRandomization загружает рандомизацию (?force=true перечитывает из хранилища)
func (h *RandomizationHandler) GetRandomization(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	force, _ := strconv.ParseBool(c.Query("force"))

	view, err := h.randomization.GetRandomization(c.Request.Context(), userID, force)
	h.respond(c, view, err)
}

// Advance выбирает текущий вопрос, не отмечая предыдущий
func (h *RandomizationHandler) Advance(c *gin.Context) {
	h.simple(c, h.randomization.AdvanceToNextQuestion)
}

// Next отмечает текущий вопрос использованным и выбирает следующий
func (h *RandomizationHandler) Next(c *gin.Context) {
	h.simple(c, h.randomization.NextQuestion)
}

// Postpone откладывает текущий вопрос
func (h *RandomizationHandler) Postpone(c *gin.Context) {
	h.simple(c, h.randomization.PostponeCurrentQuestion)
}

// Reveal показывает ответ на текущий вопрос
func (h *RandomizationHandler) Reveal(c *gin.Context) {
	h.simple(c, h.randomization.RevealAnswer)
}

// ResetUsed возвращает использованные вопросы в доступные
func (h *RandomizationHandler) ResetUsed(c *gin.Context) {
	h.simple(c, h.randomization.ResetUsedQuestions)
}

// MarkUsed отмечает вопрос использованным
func (h *RandomizationHandler) MarkUsed(c *gin.Context) {
	h.withID(c, QuestionIDKey, h.randomization.MarkQuestionAsUsed)
}

// SelectCategory добавляет категорию в выбранные
func (h *RandomizationHandler) SelectCategory(c *gin.Context) {
	h.withID(c, CategoryIDKey, h.randomization.SelectCategory)
}

// DeselectCategory убирает категорию из выбранных
func (h *RandomizationHandler) DeselectCategory(c *gin.Context) {
	h.withID(c, CategoryIDKey, h.randomization.DeselectCategory)
}

func (h *RandomizationHandler) simple(c *gin.Context, op func(ctx context.Context, userID string) (randomizer.View, error)) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	view, err := op(c.Request.Context(), userID)
	h.respond(c, view, err)
}

func (h *RandomizationHandler) withID(c *gin.Context, key string, op func(ctx context.Context, userID, id string) (randomizer.View, error)) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	view, err := op(c.Request.Context(), userID, pathID(c, key))
	h.respond(c, view, err)
}

func (h *RandomizationHandler) respond(c *gin.Context, view randomizer.View, err error) {
	if err != nil {
		handleError(c, "RandomizationHandler", err)
		return
	}
	c.JSON(http.StatusOK, view)
}
