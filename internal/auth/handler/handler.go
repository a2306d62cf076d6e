package handler

import (
	"identity-service/internal/auth"
	"identity-service/internal/auth/credentials"
	"identity-service/internal/auth/provider"
	"identity-service/internal/auth/resolver"
	"identity-service/internal/auth/token"
	"identity-service/internal/logger"
	"identity-service/internal/loginstate"
	"identity-service/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Deps are the collaborators the HTTP layer delegates to.
type Deps struct {
	Providers   *provider.Registry
	States      loginstate.Store
	Resolver    resolver.Resolver
	Credentials *credentials.Service
	Issuer      *token.Issuer
	Refresher   *token.Refresher
	Store       auth.Store
	Auth        *middleware.AuthMiddleware
}

// Options tune browser-facing behaviour.
type Options struct {
	// FrontendRedirectURL receives the token pair after an OAuth login.
	// The OAuth callback answers with JSON when it is empty.
	FrontendRedirectURL string

	// SecureCookies marks the OAuth state cookie Secure.
	SecureCookies bool
}

type Handler struct {
	Deps
	opts Options
}

func NewHandler(deps Deps, opts Options) *Handler {
	return &Handler{
		Deps: deps,
		opts: opts,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/oauth/login/:provider", h.oauthLogin)
	r.GET("/oauth/callback/:provider", h.oauthCallback)

	users := r.Group("/users")
	users.POST("/register", h.Register)
	users.POST("/login", h.Login)
	users.POST("/refreshToken", h.Refresh)

	me := users.Group("", middleware.GinRequireAuth(h.Auth, ""))
	me.POST("/logout", h.Logout)
	me.GET("/me", h.Me)
	me.DELETE("/me", h.DeleteMe)
	me.PUT("/me/password", h.ChangePassword)

	admin := r.Group("/admin", middleware.GinRequireAuth(h.Auth, auth.RoleAdmin))
	admin.PUT("/users/:id/role", h.SetRole)

	for _, route := range r.Routes() {
		logger.Debug("route registered", map[string]any{
			"method": route.Method,
			"path":   route.Path,
		})
	}
}
