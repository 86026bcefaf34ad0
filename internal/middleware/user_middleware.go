package middleware

import (
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
)

const (
	// UserIDHeader — заголовок с идентификатором пользователя
	UserIDHeader = "X-User-ID"
	// UserIDContextKey — ключ идентификатора пользователя в контексте Gin
	UserIDContextKey = "user_id"
)

var userIDPattern = regexp.MustCompile(`^[A-Za-z0-9_\-.:@]{1,64}$`)

// RequireUser извлекает идентификатор пользователя из заголовка X-User-ID.
// Для WebSocket-подключений допускается query-параметр user_id,
// так как браузер не позволяет задать заголовки при handshake.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(UserIDHeader)
		if userID == "" {
			userID = c.Query(UserIDContextKey)
		}

		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "error_type": "user_missing"})
			return
		}
		if !userIDPattern.MatchString(userID) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid user id", "error_type": "user_invalid"})
			return
		}

		c.Set(UserIDContextKey, userID)
		c.Next()
	}
}

// UserID возвращает идентификатор пользователя, сохранённый RequireUser
func UserID(c *gin.Context) (string, bool) {
	value, exists := c.Get(UserIDContextKey)
	if !exists {
		return "", false
	}
	userID, ok := value.(string)
	return userID, ok && userID != ""
}
