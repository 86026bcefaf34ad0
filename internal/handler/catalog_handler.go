package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/randomizer-api/internal/domain/entity"
	"github.com/yourusername/randomizer-api/internal/domain/repository"
	"github.com/yourusername/randomizer-api/internal/handler/dto"
	"github.com/yourusername/randomizer-api/internal/middleware"
	"github.com/yourusername/randomizer-api/internal/service"
)

// QuestionUseCase — CRUD каталога вопросов
type QuestionUseCase interface {
	CreateQuestion(ctx context.Context, userID string, input service.QuestionInput) (*entity.Question, error)
	GetQuestion(ctx context.Context, userID, id string) (*entity.Question, error)
	ListQuestions(ctx context.Context, userID string, filters repository.QuestionFilters) ([]entity.Question, error)
	UpdateQuestion(ctx context.Context, userID, id string, input service.QuestionInput) (*entity.Question, error)
	SetQuestionActive(ctx context.Context, userID, id string, isActive bool) (*entity.Question, error)
	DeleteQuestion(ctx context.Context, userID, id string) error
}

// CategoryUseCase — CRUD категорий
type CategoryUseCase interface {
	CreateCategory(ctx context.Context, userID, value string) (*entity.Category, error)
	ListCategories(ctx context.Context, userID string) ([]entity.Category, error)
	UpdateCategory(ctx context.Context, userID, id, value string) (*entity.Category, error)
	DeleteCategory(ctx context.Context, userID, id string) error
}

// QualificationUseCase — CRUD квалификаций
type QualificationUseCase interface {
	CreateQualification(ctx context.Context, userID, value string) (*entity.Qualification, error)
	ListQualifications(ctx context.Context, userID string) ([]entity.Qualification, error)
	UpdateQualification(ctx context.Context, userID, id, value string) (*entity.Qualification, error)
	DeleteQualification(ctx context.Context, userID, id string) error
}

// CatalogHandler обрабатывает CRUD вопросов, категорий и квалификаций
type CatalogHandler struct {
	questions      QuestionUseCase
	categories     CategoryUseCase
	qualifications QualificationUseCase
}

// NewCatalogHandler создает новый обработчик каталога
func NewCatalogHandler(questions QuestionUseCase, categories CategoryUseCase, qualifications QualificationUseCase) *CatalogHandler {
	return &CatalogHandler{
		questions:      questions,
		categories:     categories,
		qualifications: qualifications,
	}
}

// --- Вопросы ---

// CreateQuestion создает вопрос
func (h *CatalogHandler) CreateQuestion(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	question, err := h.questions.CreateQuestion(c.Request.Context(), userID, req.ToInput())
	if err != nil {
		handleError(c, "CatalogHandler", err)
		return
	}
	c.JSON(http.StatusCreated, question)
}

// GetQuestion возвращает вопрос
func (h *CatalogHandler) GetQuestion(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	question, err := h.questions.GetQuestion(c.Request.Context(), userID, pathID(c, QuestionIDKey))
	if err != nil {
		handleError(c, "CatalogHandler", err)
		return
	}
	c.JSON(http.StatusOK, question)
}

// ListQuestions возвращает вопросы пользователя.
// Фильтры: ?category_id= (uncategorized — без категории), ?qualification_id=, ?is_active=, ?search=
func (h *CatalogHandler) ListQuestions(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var filters repository.QuestionFilters
	if raw, exists := c.GetQuery("category_id"); exists {
		categoryID := raw
		if strings.EqualFold(raw, middleware.UncategorizedParam) {
			categoryID = entity.UncategorizedCategoryID
		}
		filters.CategoryID = &categoryID
	}
	if raw, exists := c.GetQuery("qualification_id"); exists {
		qualificationID := raw
		filters.QualificationID = &qualificationID
	}
	if raw := c.Query("is_active"); raw != "" {
		isActive, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid is_active"})
			return
		}
		filters.IsActive = &isActive
	}
	filters.Search = strings.TrimSpace(c.Query("search"))

	questions, err := h.questions.ListQuestions(c.Request.Context(), userID, filters)
	if err != nil {
		handleError(c, "CatalogHandler", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewQuestionListResponse(questions))
}

// UpdateQuestion редактирует вопрос
func (h *CatalogHandler) UpdateQuestion(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	question, err := h.questions.UpdateQuestion(c.Request.Context(), userID, pathID(c, QuestionIDKey), req.ToInput())
	if err != nil {
		handleError(c, "CatalogHandler", err)
		return
	}
	c.JSON(http.StatusOK, question)
}

// SetQuestionActive включает или выключает вопрос
func (h *CatalogHandler) SetQuestionActive(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	question, err := h.questions.SetQuestionActive(c.Request.Context(), userID, pathID(c, QuestionIDKey), *req.IsActive)
	if err != nil {
		handleError(c, "CatalogHandler", err)
		return
	}
	c.JSON(http.StatusOK, question)
}

// DeleteQuestion удаляет вопрос
func (h *CatalogHandler) DeleteQuestion(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.questions.DeleteQuestion(c.Request.Context(), userID, pathID(c, QuestionIDKey)); err != nil {
		handleError(c, "CatalogHandler", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Категории ---

// CreateCategory создает категорию
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.ValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	category, err := h.categories.CreateCategory(c.Request.Context(), userID, req.Value)
	if err != nil {
		handleError(c, "CatalogHandler", err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

// ListCategories возвращает категории пользователя
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	categories, err := h.categories.ListCategories(c.Request.Context(), userID)
	if err != nil {
		handleError(c, "CatalogHandler", err)
		return
	}
	if categories == nil {
		categories = []entity.Category{}
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// UpdateCategory переименовывает категорию
func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.ValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	category, err := h.categories.UpdateCategory(c.Request.Context(), userID, pathID(c, CategoryIDKey), req.Value)
	if err != nil {
		handleError(c, "CatalogHandler", err)
		return
	}
	c.JSON(http.StatusOK, category)
}

// DeleteCategory удаляет категорию; её вопросы становятся вопросами без категории
func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.categories.DeleteCategory(c.Request.Context(), userID, pathID(c, CategoryIDKey)); err != nil {
		handleError(c, "CatalogHandler", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Квалификации ---

// CreateQualification создает квалификацию
func (h *CatalogHandler) CreateQualification(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.ValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	qualification, err := h.qualifications.CreateQualification(c.Request.Context(), userID, req.Value)
	if err != nil {
		handleError(c, "CatalogHandler", err)
		return
	}
	c.JSON(http.StatusCreated, qualification)
}

// ListQualifications возвращает квалификации пользователя
func (h *CatalogHandler) ListQualifications(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	qualifications, err := h.qualifications.ListQualifications(c.Request.Context(), userID)
	if err != nil {
		handleError(c, "CatalogHandler", err)
		return
	}
	if qualifications == nil {
		qualifications = []entity.Qualification{}
	}
	c.JSON(http.StatusOK, gin.H{"qualifications": qualifications})
}

// UpdateQualification переименовывает квалификацию
func (h *CatalogHandler) UpdateQualification(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.ValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	qualification, err := h.qualifications.UpdateQualification(c.Request.Context(), userID, pathID(c, QualificationIDKey), req.Value)
	if err != nil {
		handleError(c, "CatalogHandler", err)
		return
	}
	c.JSON(http.StatusOK, qualification)
}

// DeleteQualification удаляет квалификацию
func (h *CatalogHandler) DeleteQualification(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.qualifications.DeleteQualification(c.Request.Context(), userID, pathID(c, QualificationIDKey)); err != nil {
		handleError(c, "CatalogHandler", err)
		return
	}
	c.Status(http.StatusNoContent)
}
