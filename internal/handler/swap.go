package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/GoPolymarket/gaslessgate/internal/middleware"
	"github.com/GoPolymarket/gaslessgate/internal/model"
	"github.com/GoPolymarket/gaslessgate/internal/pkg/apperrors"
	"github.com/GoPolymarket/gaslessgate/internal/service"
	"github.com/gin-gonic/gin"
)

// SwapRunner is the part of the orchestrator the HTTP layer drives.
type SwapRunner interface {
	Start(ctx context.Context, req model.SwapRequest) (model.SwapRecord, error)
	Current() (model.SwapRecord, bool)
}

type SwapHandler struct {
	runner    SwapRunner
	validator *service.RequestValidator
	store     service.SwapStore
	taker     string
}

// NewSwapHandler serves swaps signed by taker, the address of the configured
// wallet.
func NewSwapHandler(runner SwapRunner, v *service.RequestValidator, store service.SwapStore, taker string) *SwapHandler {
	return &SwapHandler{runner: runner, validator: v, store: store, taker: taker}
}

func (h *SwapHandler) Create(c *gin.Context) {
	var intent service.SwapIntent
	if err := c.ShouldBindJSON(&intent); err != nil {
		c.Error(apperrors.NewInvalidRequest(err.Error()))
		return
	}

	req, err := h.validator.BuildRequest(intent, h.taker)
	if err != nil {
		c.Error(err)
		return
	}

	rec, err := h.runner.Start(c.Request.Context(), req)
	if err != nil {
		middleware.AddAuditContext(c, "error", err.Error())
		c.Error(err)
		return
	}

	middleware.AddAuditContext(c, "swap_id", rec.ID)
	c.JSON(http.StatusAccepted, rec)
}

func (h *SwapHandler) Current(c *gin.Context) {
	rec, ok := h.runner.Current()
	if !ok {
		c.Error(apperrors.New(apperrors.ErrNotFound, "no swap has been started", nil))
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *SwapHandler) Get(c *gin.Context) {
	id := c.Param("id")
	rec, err := h.store.Get(c.Request.Context(), id)
	if errors.Is(err, service.ErrSwapNotFound) {
		c.Error(apperrors.Newf(apperrors.ErrNotFound, "swap %s not found", id))
		return
	}
	if err != nil {
		c.Error(apperrors.New(apperrors.ErrInternal, err.Error(), err))
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *SwapHandler) List(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.Error(apperrors.NewInvalidRequest("limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	records, err := h.store.List(c.Request.Context(), limit)
	if err != nil {
		c.Error(apperrors.New(apperrors.ErrInternal, err.Error(), err))
		return
	}
	if records == nil {
		records = []*model.SwapRecord{}
	}
	c.JSON(http.StatusOK, records)
}
