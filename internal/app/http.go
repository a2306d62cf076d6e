package app

import (
	"context"
	"net/http"

	"identity-service/internal/auth/credentials"
	"identity-service/internal/auth/handler"
	"identity-service/internal/auth/provider"
	"identity-service/internal/auth/provider/google"
	"identity-service/internal/auth/provider/keycloak"
	"identity-service/internal/auth/resolver"
	"identity-service/internal/auth/token"
	"identity-service/internal/config"
	"identity-service/internal/db"
	"identity-service/internal/logger"
	"identity-service/internal/loginstate"
	"identity-service/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
)

func setupHTTP(ctx context.Context, cfg *config.Config, infra *Infra) (http.Handler, error) {
	// ----------------------------
	// Dependencies
	// ----------------------------

	store := db.NewUserStore(infra.DB)

	issuer, err := token.NewIssuer(store, token.Config{
		Secret:     []byte(cfg.JWTSecret),
		Issuer:     cfg.JWTIssuer,
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
	})
	if err != nil {
		return nil, err
	}

	var states loginstate.Store = loginstate.NewMemoryStore()
	if infra.Redis != nil {
		states = loginstate.NewRedisStore(infra.Redis.Client)
	}

	registry, err := setupProviders(ctx, cfg)
	if err != nil {
		return nil, err
	}

	authHandler := handler.NewHandler(handler.Deps{
		Providers:   registry,
		States:      states,
		Resolver:    resolver.NewStoreResolver(store),
		Credentials: credentials.NewService(store),
		Issuer:      issuer,
		Refresher:   token.NewRefresher(issuer, store),
		Store:       store,
		Auth:        middleware.NewAuthMiddleware(issuer, store),
	}, handler.Options{
		FrontendRedirectURL: cfg.FrontendRedirectURL,
		SecureCookies:       cfg.IsProduction(),
	})

	// ----------------------------
	// Router
	// ----------------------------

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	authHandler.RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return cors.Handler(corsOptions(cfg.CORSAllowedOrigins))(router), nil
}

// setupProviders registers every OAuth provider whose settings are
// complete. A service without providers still serves password logins.
func setupProviders(ctx context.Context, cfg *config.Config) (*provider.Registry, error) {
	var list []provider.OAuthProvider

	if cfg.GoogleEnabled() {
		p, err := google.New(ctx, cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}

	if cfg.KeycloakEnabled() {
		p, err := keycloak.New(ctx, cfg.KeycloakIssuer, cfg.KeycloakClientID, cfg.KeycloakRedirectURL, cfg.KeycloakPublicBaseURL)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}

	registry := provider.NewRegistry(list...)
	logger.Info("oauth providers configured", map[string]any{
		"providers": registry.Names(),
	})
	return registry, nil
}

func corsOptions(origins []string) cors.Options {
	return cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}
}
