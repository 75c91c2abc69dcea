package apperr

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"mangashelf/internal/logging"
)

// Respond writes err as a JSON error body. Errors outside the taxonomy are
// logged and reported with a generic message.
func Respond(c *gin.Context, logger *slog.Logger, err error) {
	if !Known(err) {
		if logger != nil {
			logger.Error("request failed",
				"request_id", logging.RequestID(c),
				"method", c.Request.Method,
				"path", c.FullPath(),
				"error", err,
			)
		}
		c.JSON(HTTPStatus(err), gin.H{"error": "internal error", "kind": Kind(err)})
		return
	}
	c.JSON(HTTPStatus(err), gin.H{"error": err.Error(), "kind": Kind(err)})
}
