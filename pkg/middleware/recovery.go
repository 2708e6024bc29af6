package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/richxcame/waste-chat/pkg/common"
	"github.com/richxcame/waste-chat/pkg/logger"
	"go.uber.org/zap"
)

// Recovery turns a handler panic into a 500 envelope. When the response has
// already started, as with a hijacked websocket, the panic is only logged.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			logger.WithContext(c.Request.Context()).Error("handler panicked",
				zap.Any("panic", rec),
				zap.String("route", c.FullPath()),
				zap.String("method", c.Request.Method),
				zap.Stack("stack"),
			)

			if !c.Writer.Written() {
				common.ErrorResponse(c, http.StatusInternalServerError, "internal server error")
			}
			c.Abort()
		}()

		c.Next()
	}
}
