package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yourusername/randomizer-api/internal/domain/entity"
)

// UncategorizedParam — значение параметра пути, обозначающее «без категории»
const UncategorizedParam = "uncategorized"

// ExtractUUIDParam создает middleware для извлечения и валидации UUID-параметра URL.
// paramName - имя параметра в URL (например, "id").
// contextKey - ключ, под которым значение будет сохранено в контексте Gin.
func ExtractUUIDParam(paramName, contextKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Param(paramName)
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid %s", paramName)})
			c.Abort()
			return
		}
		c.Set(contextKey, id.String())
		c.Next()
	}
}

// ExtractCategoryParam работает как ExtractUUIDParam, но дополнительно принимает
// значение "uncategorized", которое сохраняется как пустой идентификатор категории
func ExtractCategoryParam(paramName, contextKey string) gin.HandlerFunc {
	uuidParam := ExtractUUIDParam(paramName, contextKey)
	return func(c *gin.Context) {
		if strings.EqualFold(c.Param(paramName), UncategorizedParam) {
			c.Set(contextKey, entity.UncategorizedCategoryID)
			c.Next()
			return
		}
		uuidParam(c)
	}
}
