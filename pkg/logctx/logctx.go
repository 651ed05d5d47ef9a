package logctx

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FromGin returns the request-scoped logger from gin.Context if present,
// otherwise falls back to context enrichment.
func FromGin(c *gin.Context, base *zap.SugaredLogger) *zap.SugaredLogger {
	if c == nil {
		return base
	}
	if l, ok := c.Get("logger"); ok {
		if lg, ok := l.(*zap.SugaredLogger); ok && lg != nil {
			return lg
		}
	}
	return FromCtx(c.Request.Context(), base)
}

// FromCtx returns the logger stored in ctx if set, otherwise enriches base
// with trace_id / user_id values carried in the context.
func FromCtx(ctx context.Context, base *zap.SugaredLogger) *zap.SugaredLogger {
	if ctx == nil {
		return base
	}
	if lg, ok := ctx.Value("logger").(*zap.SugaredLogger); ok && lg != nil {
		return lg
	}
	var fields []interface{}
	if tid, ok := ctx.Value("traceID").(string); ok && tid != "" {
		fields = append(fields, "trace_id", tid)
	}
	if uid, ok := ctx.Value("user_id").(string); ok && uid != "" {
		fields = append(fields, "user_id", uid)
	}
	if len(fields) > 0 {
		return base.With(fields...)
	}
	return base
}
