package middleware

import (
	"errors"

	"github.com/GoPolymarket/gaslessgate/internal/model"
	"github.com/GoPolymarket/gaslessgate/internal/pkg/apperrors"
	"github.com/GoPolymarket/gaslessgate/internal/pkg/logger"
	"github.com/gin-gonic/gin"
)

// swapContextKeys are copied from the audit entry into error logs so a
// failed request can be tied back to its swap or trade.
var swapContextKeys = []string{"swap_id", "trade_hash"}

// ErrorHandler renders the last error pushed with c.Error as an AppError
// body. Errors that are not AppErrors become INTERNAL_ERROR.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		var appErr *apperrors.AppError
		if !errors.As(err, &appErr) {
			appErr = apperrors.New(apperrors.ErrInternal, err.Error(), err)
		}

		logFields := errorLogFields(c, appErr)
		if appErr.HTTPStatus >= 500 {
			logger.LogError(c.Request.Context(), appErr, "request failed", logFields...)
		} else {
			logger.Warn(appErr.Message, logFields...)
		}

		// A handler that already answered keeps its response.
		if c.Writer.Written() {
			return
		}
		c.JSON(appErr.HTTPStatus, appErr)
	}
}

func errorLogFields(c *gin.Context, appErr *apperrors.AppError) []any {
	fields := []any{
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"code", appErr.Type,
		"status", appErr.HTTPStatus,
		"client", ClientKey(c),
	}
	if reqID := c.Writer.Header().Get("X-Request-ID"); reqID != "" {
		fields = append(fields, "request_id", reqID)
	}
	if val, ok := c.Get(ContextAuditLog); ok {
		if entry, ok := val.(*model.AuditLog); ok {
			for _, key := range swapContextKeys {
				if v, ok := entry.Context[key]; ok {
					fields = append(fields, key, v)
				}
			}
		}
	}
	return fields
}
