package api

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/telekom/gt-mail-gateway/pkg/system"
)

// RequestIDHeaderName is the header carrying the request id.
const RequestIDHeaderName = system.RequestIDHeader

const maxRequestIDLength = 128

// RequestID assigns every request an id (reusing a sane incoming X-Request-ID),
// echoes it in the response and stores a request-scoped logger carrying it.
func RequestID(log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeaderName)
		if id == "" || len(id) > maxRequestIDLength {
			id = uuid.New().String()
		}
		c.Set(system.RequestIDKey, id)
		c.Set(system.ReqLoggerKey, log.With("requestID", id))
		c.Writer.Header().Set(RequestIDHeaderName, id)
		c.Next()
	}
}
