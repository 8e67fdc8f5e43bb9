package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/residence-portal-api/pkg/errors"
	"github.com/noah-isme/residence-portal-api/pkg/errtrack"
	"github.com/noah-isme/residence-portal-api/pkg/middleware/requestid"
	"github.com/noah-isme/residence-portal-api/pkg/response"
)

// Recovery converts panics into a 500 envelope and reports them as critical.
func Recovery(reporter errtrack.Reporter, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			err, ok := rec.(error)
			if !ok {
				err = fmt.Errorf("panic: %v", rec)
			}
			logger.Error("panic recovered", zap.Error(err), zap.String("path", c.Request.URL.Path), zap.Stack("stack"))
			if reporter != nil {
				reporter.Critical(err, requestExtras(c))
			}
			if !c.Writer.Written() {
				response.Error(c, appErrors.Clone(appErrors.ErrInternal, ""))
			}
			c.Abort()
		}()
		c.Next()
	}
}

// ReportErrors forwards the errors of 5xx responses to the tracker.
func ReportErrors(reporter errtrack.Reporter) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if reporter == nil || c.Writer.Status() < http.StatusInternalServerError {
			return
		}
		for _, ginErr := range c.Errors {
			reporter.Error(ginErr.Err, requestExtras(c))
		}
	}
}

func requestExtras(c *gin.Context) map[string]interface{} {
	extras := map[string]interface{}{
		"method": c.Request.Method,
		"path":   c.FullPath(),
	}
	if id := requestid.Value(c); id != "" {
		extras["request_id"] = id
	}
	if claims, ok := Claims(c); ok {
		extras["user_id"] = claims.UserID
	}
	return extras
}
