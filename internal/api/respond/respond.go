// Package respond writes API errors in one shape:
//
//	{"error": {"kind": "...", "message": "...", "fields": {...}}}
package respond

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/shahmeerabdul/GIKomplain/internal/apperr"
)

// Error aborts c with the HTTP form of err. Internal errors are logged with
// their cause and reported without detail.
func Error(c *gin.Context, log zerolog.Logger, err error) {
	ae := apperr.From(err)
	if ae.Kind == apperr.KindInternal {
		log.Error().Err(ae.Unwrap()).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("request failed")
	}
	Abort(c, ae)
}

// Abort writes the public form of err without logging.
func Abort(c *gin.Context, err *apperr.Error) {
	pub := err.Public()
	c.AbortWithStatusJSON(pub.Kind.HTTPStatus(), gin.H{"error": pub})
}

// Bind decodes the JSON body of c into dst. Decode and validation failures
// become validation errors.
func Bind(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return BindError(err)
	}
	return nil
}

// BindError converts a gin binding failure into a validation error with
// per-field messages where they are known.
func BindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[lowerFirst(fe.Field())] = fieldMessage(fe)
		}
		return apperr.Validation("invalid request", fields)
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return apperr.Validation("invalid request", map[string]string{typeErr.Field: "has the wrong type"})
	}
	return apperr.Validation("request body must be valid JSON", nil)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	default:
		return "is invalid"
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
