package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/webauth/core"
	"github.com/layer-3/webauth/internal/challenge"
	gotoml "github.com/pelletier/go-toml/v2"
)

// AuthHandlers contains HTTP handlers for auth endpoints
type AuthHandlers struct {
	server *Server
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(server *Server) *AuthHandlers {
	return &AuthHandlers{
		server: server,
	}
}

// Challenge handles GET /auth
func (h *AuthHandlers) Challenge(c *gin.Context) {
	var req ChallengeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "account is required"})
		return
	}

	resp, err := h.server.Challenge(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Token handles POST /auth
func (h *AuthHandlers) Token(c *gin.Context) {
	var req struct {
		Transaction string `json:"transaction" form:"transaction" binding:"required"`
	}

	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "transaction is required"})
		return
	}

	token, err := h.server.Token(c.Request.Context(), req.Transaction)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token.Raw})
}

// SignClientDomain handles POST /sign for wallets acting as a client domain
func (h *AuthHandlers) SignClientDomain(c *gin.Context) {
	var req struct {
		Transaction       string `json:"transaction" binding:"required"`
		NetworkPassphrase string `json:"network_passphrase" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	resp, err := h.server.SignClientDomain(req.Transaction, req.NetworkPassphrase)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// StellarTOML serves the stellar.toml advertising this server
func (h *AuthHandlers) StellarTOML(c *gin.Context) {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}

	body, err := gotoml.Marshal(h.server.Info(scheme + "://" + c.Request.Host + "/auth"))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.Header("Access-Control-Allow-Origin", "*")
	c.Data(http.StatusOK, "text/plain; charset=utf-8", body)
}

// Me returns the claims of the token presented to the API
func (h *AuthHandlers) Me(c *gin.Context) {
	// Token is set by the auth middleware
	value, exists := c.Get(tokenKey)
	token, ok := value.(*core.AuthToken)
	if !exists || !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Token not found in context"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"account":       token.Account,
		"client_domain": token.ClientDomain,
		"expires_at":    token.ExpiresAt,
	})
}

func (h *AuthHandlers) fail(c *gin.Context, err error) {
	status := statusCode(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.server.logger.Error("request failed", "path", c.FullPath(), "error", err)
		msg = "Internal error"
	}
	c.JSON(status, gin.H{"error": msg})
}

func statusCode(err error) int {
	switch {
	case errors.Is(err, errBadRequest), errors.Is(err, core.ErrMalformedTransaction):
		return http.StatusBadRequest
	case errors.Is(err, challenge.ErrInvalidChallenge), errors.Is(err, challenge.ErrNotSigned):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
