package middleware

import (
	"net/http"

	"identity-service/internal/auth"

	"github.com/gin-gonic/gin"
)

// ContextUserKey is the gin context key holding the authenticated *auth.User.
const ContextUserKey = "user"

// GinRequireAuth adapts the net/http AuthMiddleware to Gin.
func GinRequireAuth(a *AuthMiddleware, required auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Bridge handler to allow net/http middleware execution
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c.Request = r
			if u, ok := UserFromContext(r.Context()); ok {
				c.Set(ContextUserKey, u)
			}
			c.Next()
		})

		// Wrap Gin request with net/http auth middleware
		handler := a.RequireAuth(required)(next)

		// Execute middleware chain
		handler.ServeHTTP(c.Writer, c.Request)

		// If auth middleware already handled the response, stop Gin chain
		if c.Writer.Written() {
			c.Abort()
			return
		}
	}
}

// GinUser returns the identity attached by GinRequireAuth.
func GinUser(c *gin.Context) (*auth.User, bool) {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*auth.User)
	return u, ok && u != nil
}
