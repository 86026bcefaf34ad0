package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/yourusername/randomizer-api/internal/middleware"
)

// Routes собирает обработчики для регистрации маршрутов
type Routes struct {
	Randomization *RandomizationHandler
	Catalog       *CatalogHandler
	WS            *WSHandler
	// RateLimit применяется ко всей группе /api, кроме WebSocket. nil — без ограничения
	RateLimit gin.HandlerFunc
}

// Register регистрирует маршруты API на router
func (r Routes) Register(router *gin.Engine) {
	if r.WS != nil {
		router.GET("/api/ws", middleware.RequireUser(), r.WS.HandleConnection)
	}

	api := router.Group("/api")
	api.Use(middleware.RequireUser())
	if r.RateLimit != nil {
		api.Use(r.RateLimit)
	}

	questionID := middleware.ExtractUUIDParam("id", QuestionIDKey)
	categoryID := middleware.ExtractUUIDParam("id", CategoryIDKey)
	qualificationID := middleware.ExtractUUIDParam("id", QualificationIDKey)

	randomization := api.Group("/randomization")
	{
		randomization.GET("", r.Randomization.GetRandomization)
		randomization.POST("/next", r.Randomization.Next)
		randomization.POST("/advance", r.Randomization.Advance)
		randomization.POST("/postpone", r.Randomization.Postpone)
		randomization.POST("/reveal", r.Randomization.Reveal)
		randomization.POST("/reset-used", r.Randomization.ResetUsed)
		randomization.POST("/used/:id", questionID, r.Randomization.MarkUsed)

		// uncategorized — выбор вопросов без категории
		selected := randomization.Group("/categories/:id")
		selected.Use(middleware.ExtractCategoryParam("id", CategoryIDKey))
		selected.PUT("", r.Randomization.SelectCategory)
		selected.DELETE("", r.Randomization.DeselectCategory)
	}

	questions := api.Group("/questions")
	{
		questions.GET("", r.Catalog.ListQuestions)
		questions.POST("", r.Catalog.CreateQuestion)
		questions.GET("/:id", questionID, r.Catalog.GetQuestion)
		questions.PUT("/:id", questionID, r.Catalog.UpdateQuestion)
		questions.DELETE("/:id", questionID, r.Catalog.DeleteQuestion)
		questions.PATCH("/:id/active", questionID, r.Catalog.SetQuestionActive)
	}

	categories := api.Group("/categories")
	{
		categories.GET("", r.Catalog.ListCategories)
		categories.POST("", r.Catalog.CreateCategory)
		categories.PUT("/:id", categoryID, r.Catalog.UpdateCategory)
		categories.DELETE("/:id", categoryID, r.Catalog.DeleteCategory)
	}

	qualifications := api.Group("/qualifications")
	{
		qualifications.GET("", r.Catalog.ListQualifications)
		qualifications.POST("", r.Catalog.CreateQualification)
		qualifications.PUT("/:id", qualificationID, r.Catalog.UpdateQualification)
		qualifications.DELETE("/:id", qualificationID, r.Catalog.DeleteQualification)
	}
}
