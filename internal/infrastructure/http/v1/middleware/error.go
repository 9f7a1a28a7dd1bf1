package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/PraveenHasintha/inventra-backend/internal/core/apperror"
	"github.com/PraveenHasintha/inventra-backend/pkg/logger"
)

// ErrorHandler middleware transforms errors into consistent JSON responses.
// Hides internal errors from clients while logging full details.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err

		// If response already written by handler, do not override it.
		if c.Writer.Written() {
			return
		}

		ctx := c.Request.Context()

		if appErr, ok := apperror.AsAppError(err); ok && appErr.Kind != apperror.KindInternal {
			if appErr.Err != nil {
				logger.Warn(ctx, "request error",
					"code", appErr.Code,
					"cause", appErr.Err,
				)
			}

			body := gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
				"details": appErr.Details,
			}
			respond(c, appErr.HTTPStatus, body, true)
			return
		}

		logger.Error(ctx, "unhandled error", "error", err)

		body := gin.H{
			"code":    apperror.CodeInternal,
			"message": "Internal server error",
			"details": map[string]any{
				"request_id": c.GetString("request_id"),
			},
		}
		respond(c, http.StatusInternalServerError, body, false)
	}
}

// respond writes body and settles a claimed idempotency key. Replayable
// outcomes are stored; internal failures release the key so the client may retry.
func respond(c *gin.Context, status int, body gin.H, replayable bool) {
	payload, err := json.Marshal(body)
	if err != nil {
		c.JSON(status, body)
		return
	}

	if key, store, ok := IdempotencyFrom(c); ok {
		ctx := c.Request.Context()
		var settleErr error
		if replayable {
			settleErr = store.FailKey(ctx, key, status, "application/json", payload)
		} else {
			settleErr = store.ReleaseKey(ctx, key)
		}
		if settleErr != nil {
			logger.Warn(ctx, "idempotency settle failed", "key", key, "error", settleErr)
		}
	}

	c.Data(status, "application/json; charset=utf-8", payload)
}
