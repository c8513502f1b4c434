package handlers

import (
	"net/http"
	"time"

	"github.com/balri/busstop/internal/metrics"
)

// TokenIssuer issues session tokens.
type TokenIssuer interface {
	Issue() string
	TTL() time.Duration
}

// TokenHandler hands out session tokens for the status endpoint.
type TokenHandler struct {
	tokens    TokenIssuer
	collector *metrics.Collector
}

// NewTokenHandler creates a new TokenHandler
func NewTokenHandler(tokens TokenIssuer, collector *metrics.Collector) *TokenHandler {
	return &TokenHandler{tokens: tokens, collector: collector}
}

// GetToken handles GET /api/token
func (h *TokenHandler) GetToken(w http.ResponseWriter, r *http.Request) {
	value := h.tokens.Issue()
	h.collector.TokensIssued.Inc()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token":     value,
		"expiresIn": int(h.tokens.TTL().Seconds()),
	})
}
