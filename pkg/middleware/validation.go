package middleware

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/richxcame/waste-chat/pkg/common"
	"github.com/richxcame/waste-chat/pkg/validation"
)

// ValidateJSON binds the JSON body into req and runs struct validation.
func ValidateJSON(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return err
	}
	return validation.ValidateStruct(req)
}

// ValidateQuery binds query parameters into req and runs struct validation.
func ValidateQuery(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindQuery(req); err != nil {
		return err
	}
	return validation.ValidateStruct(req)
}

// RespondWithValidationError writes a 400 envelope, listing fields when err
// came from struct validation.
func RespondWithValidationError(c *gin.Context, err error) {
	var valErr *validation.ValidationError
	if errors.As(err, &valErr) {
		common.FieldErrorResponse(c, http.StatusBadRequest, "Validation failed", valErr.Errors)
		return
	}
	common.ErrorResponse(c, http.StatusBadRequest, "Validation failed: "+err.Error())
}

// ValidateAndBind binds and validates the JSON body. On failure it has
// already written the response and returns false.
func ValidateAndBind(c *gin.Context, req interface{}) bool {
	if err := ValidateJSON(c, req); err != nil {
		RespondWithValidationError(c, err)
		return false
	}
	return true
}

// ValidateContentType rejects requests whose media type differs from contentType.
// Parameters such as charset are ignored.
func ValidateContentType(contentType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		mediaType, _, err := mime.ParseMediaType(c.GetHeader("Content-Type"))
		if err != nil || !strings.EqualFold(mediaType, contentType) {
			common.ErrorResponse(c, http.StatusUnsupportedMediaType, "expected "+contentType)
			c.Abort()
			return
		}
		c.Next()
	}
}

// ValidateJSONContentType requires application/json.
func ValidateJSONContentType() gin.HandlerFunc {
	return ValidateContentType(gin.MIMEJSON)
}

// MaxBodySize rejects bodies over maxSize bytes with 413.
func MaxBodySize(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body == nil || c.Request.Body == http.NoBody {
			c.Next()
			return
		}
		if c.Request.ContentLength > maxSize {
			tooLarge(c, maxSize)
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				tooLarge(c, maxSize)
				return
			}
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		c.Next()
	}
}

func tooLarge(c *gin.Context, maxSize int64) {
	c.Header("X-Max-Body-Bytes", strconv.FormatInt(maxSize, 10))
	common.ErrorResponse(c, http.StatusRequestEntityTooLarge, "request body too large")
	c.Abort()
}
