package handler

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/GoPolymarket/gaslessgate/internal/middleware"
	"github.com/GoPolymarket/gaslessgate/internal/pkg/logger"
	"github.com/gin-gonic/gin"
)

// Forwarder relays a request to the gasless API with credentials attached.
type Forwarder interface {
	Forward(ctx context.Context, method, path, rawQuery string, body []byte) (int, []byte, error)
}

// ProxyHandler exposes the upstream gasless endpoints to clients that sign
// themselves. Upstream statuses and bodies are relayed unchanged.
type ProxyHandler struct {
	upstream Forwarder
}

func NewProxyHandler(upstream Forwarder) *ProxyHandler {
	return &ProxyHandler{upstream: upstream}
}

func (h *ProxyHandler) Price(c *gin.Context) {
	h.forward(c, http.MethodGet, "/gasless/price", nil)
}

func (h *ProxyHandler) Quote(c *gin.Context) {
	h.forward(c, http.MethodGet, "/gasless/quote", nil)
}

func (h *ProxyHandler) Submit(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}
	h.forward(c, http.MethodPost, "/gasless/submit", body)
}

func (h *ProxyHandler) Status(c *gin.Context) {
	hash := c.Param("tradeHash")
	middleware.AddAuditContext(c, "trade_hash", hash)
	h.forward(c, http.MethodGet, "/gasless/status/"+url.PathEscape(hash), nil)
}

func (h *ProxyHandler) forward(c *gin.Context, method, path string, body []byte) {
	status, raw, err := h.upstream.Forward(c.Request.Context(), method, path, c.Request.URL.RawQuery, body)
	if err != nil {
		logger.Error("gasless proxy request failed", "path", path, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.Data(status, "application/json; charset=utf-8", raw)
}
