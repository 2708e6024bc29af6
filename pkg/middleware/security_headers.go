package middleware

import (
	"github.com/gin-gonic/gin"
)

// widgetCSP lets the page load its own script and open the session websocket.
// Inline styles stay allowed for the formatted chat bubbles.
const widgetCSP = "default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'; " +
	"img-src 'self' data:; connect-src 'self' ws: wss:; base-uri 'none'; form-action 'self'; frame-ancestors 'none'"

var staticSecurityHeaders = map[string]string{
	"X-Content-Type-Options":  "nosniff",
	"X-Frame-Options":         "DENY",
	"Referrer-Policy":         "same-origin",
	"Permissions-Policy":      "geolocation=(), microphone=(), camera=(), payment=()",
	"Content-Security-Policy": widgetCSP,
}

// SecurityHeaders sets the widget's browser hardening headers.
// HSTS is only sent when hsts is true.
func SecurityHeaders(hsts bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		for k, v := range staticSecurityHeaders {
			h.Set(k, v)
		}
		if hsts {
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		c.Next()
	}
}
