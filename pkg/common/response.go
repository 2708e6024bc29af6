package common

import (
	"github.com/gin-gonic/gin"
)

// Response is the JSON envelope returned by API endpoints.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo describes a failed request. Fields carries per-field
// validation messages.
type ErrorInfo struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// SuccessResponse writes data with the given status.
func SuccessResponse(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{Success: true, Data: data})
}

// ErrorResponse writes an error envelope.
func ErrorResponse(c *gin.Context, status int, message string) {
	FieldErrorResponse(c, status, message, nil)
}

// FieldErrorResponse writes an error envelope listing the offending fields.
func FieldErrorResponse(c *gin.Context, status int, message string, fields map[string]string) {
	c.JSON(status, Response{
		Success: false,
		Error:   &ErrorInfo{Code: status, Message: message, Fields: fields},
	})
}
