package handler

import (
	"crypto/subtle"
	"net/http"
	"net/url"
	"time"

	"identity-service/internal/auth"
	"identity-service/internal/logger"
	"identity-service/internal/loginstate"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
)

func (h *Handler) cookieOptions() loginstate.CookieOptions {
	return loginstate.CookieOptions{
		Secure:   h.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}

func (h *Handler) oauthLogin(c *gin.Context) {
	providerName := c.Param("provider")

	p, err := h.Providers.Get(providerName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "unknown oauth provider",
		})
		return
	}

	state, err := loginstate.GenerateID()
	if err != nil {
		writeError(c, err)
		return
	}
	verifier := oauth2.GenerateVerifier()

	err = h.States.Save(c.Request.Context(), loginstate.Pending{
		State:        state,
		Provider:     providerName,
		CodeVerifier: verifier,
		ExpiresAt:    time.Now().Add(loginstate.TTL),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	loginstate.SetCookie(c.Writer, state, h.cookieOptions())

	c.Redirect(http.StatusFound, p.AuthCodeURL(state, oauth2.S256ChallengeFromVerifier(verifier)))
}

func (h *Handler) oauthCallback(c *gin.Context) {
	providerName := c.Param("provider")
	ctx := c.Request.Context()

	p, err := h.Providers.Get(providerName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "unknown oauth provider",
		})
		return
	}

	state := c.Query("state")
	cookie := loginstate.CookieValue(c.Request)
	loginstate.ClearCookie(c.Writer, h.cookieOptions())

	if state == "" || subtle.ConstantTimeCompare([]byte(state), []byte(cookie)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "invalid state",
		})
		return
	}

	// State is single use whatever the outcome below.
	pending, err := h.States.Take(ctx, state)
	if err != nil {
		writeError(c, err)
		return
	}
	if pending == nil || pending.Provider != providerName {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "invalid state",
		})
		return
	}

	if errParam := c.Query("error"); errParam != "" {
		logger.Warn("oidc callback returned error", map[string]any{
			"provider": providerName,
			"error":    errParam,
			"desc":     c.Query("error_description"),
		})
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "authentication failed",
		})
		return
	}

	code := c.Query("code")
	if code == "" {
		logger.Warn("oidc callback missing code", map[string]any{
			"provider": providerName,
		})
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "missing code",
		})
		return
	}

	profile, err := p.ExchangeCode(ctx, code, pending.CodeVerifier)
	if err != nil {
		logger.Warn("code exchange failed", map[string]any{
			"provider": providerName,
			"error":    err.Error(),
		})
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "authentication failed",
		})
		return
	}

	u, err := h.Resolver.Resolve(ctx, profile)
	if err != nil {
		writeError(c, err)
		return
	}

	pair, err := h.Issuer.Issue(ctx, u)
	if err != nil {
		writeError(c, err)
		return
	}

	logger.Info("login succeeded", map[string]any{
		"user_id":  u.ID,
		"provider": providerName,
		"ip":       c.ClientIP(),
	})

	if h.opts.FrontendRedirectURL == "" {
		c.JSON(http.StatusOK, pair)
		return
	}
	c.Redirect(http.StatusFound, frontendRedirect(h.opts.FrontendRedirectURL, pair))
}

// frontendRedirect hands the pair to the frontend in the URL fragment.
func frontendRedirect(base string, pair *auth.TokenPair) string {
	fragment := url.Values{}
	fragment.Set("accessToken", pair.AccessToken)
	fragment.Set("refreshToken", pair.RefreshToken)

	u, err := url.Parse(base)
	if err != nil {
		return base + "#" + fragment.Encode()
	}
	u.Fragment = ""
	u.RawFragment = ""
	return u.String() + "#" + fragment.Encode()
}
