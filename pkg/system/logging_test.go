package system

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGetReqLoggerFallbackWhenContextNil(t *testing.T) {
	fallback := zap.NewNop().Sugar()
	require.Same(t, fallback, GetReqLogger(nil, fallback))
}

func TestGetReqLoggerFromContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
	fallback := zap.NewNop().Sugar()
	stored := zap.NewNop().Sugar()
	ctx.Set(ReqLoggerKey, stored)
	require.Same(t, stored, GetReqLogger(ctx, fallback))
}

func TestGetReqLoggerIgnoresInvalidTypes(t *testing.T) {
	ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
	fallback := zap.NewNop().Sugar()
	ctx.Set(ReqLoggerKey, "not-a-logger")
	require.Same(t, fallback, GetReqLogger(ctx, fallback))
}

func TestGetRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	assert.Equal(t, "", GetRequestID(nil))

	ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, "", GetRequestID(ctx))

	ctx.Set(RequestIDKey, 42)
	assert.Equal(t, "", GetRequestID(ctx), "non-string ids are ignored")

	ctx.Set(RequestIDKey, "abc-123")
	assert.Equal(t, "abc-123", GetRequestID(ctx))
}

func TestIdentityFields(t *testing.T) {
	assert.Equal(t, []interface{}{"identity", "<default>"}, IdentityFields(""))
	assert.Equal(t, []interface{}{"identity", "gastown/Toast"}, IdentityFields("gastown/Toast"))
}

func TestNewTestLogger(t *testing.T) {
	log := NewTestLogger()
	require.NotNil(t, log)
	log.Infow("test logger works", "ok", true)
}
