package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/logger"
	"gorm.io/gorm"
)

type errorBody struct {
	Kind    apperr.Kind `json:"kind"`
	Message string      `json:"message"`
	Details any         `json:"details,omitempty"`
}

// FieldError is reported in details for request validation failures.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

// ErrorHandler renders the last error a handler attached with c.Error as
// {"error": {"kind", "message", "details"}}.
func ErrorHandler(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		ae := Classify(err)
		if ae.Kind == apperr.KindInternal {
			log.Error("request failed",
				"method", c.Request.Method,
				"path", c.FullPath(),
				"request_id", c.GetString(ctxRequestID),
				"error", err,
			)
		}
		c.AbortWithStatusJSON(apperr.HTTPStatus(ae.Kind), gin.H{"error": errorBody{
			Kind:    ae.Kind,
			Message: ae.Message,
			Details: ae.Details,
		}})
	}
}

// Classify turns any handler error into an *apperr.Error. Internal errors keep
// a generic message so driver details never reach clients.
func Classify(err error) *apperr.Error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		if ae.Kind == apperr.KindInternal {
			return &apperr.Error{Kind: apperr.KindInternal, Message: "internal server error"}
		}
		return ae
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, FieldError{Field: fe.Namespace(), Rule: fe.Tag(), Param: fe.Param()})
		}
		return &apperr.Error{Kind: apperr.KindValidation, Message: "invalid request", Details: fields}
	}

	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		numErr    *strconv.NumError
		timeErr   *time.ParseError
	)
	switch {
	case errors.As(err, &syntaxErr), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return apperr.Validation("malformed JSON body")
	case errors.As(err, &typeErr):
		return apperr.Validation("field %s has the wrong type", typeErr.Field)
	case errors.As(err, &numErr):
		return apperr.Validation("invalid number %q", numErr.Num)
	case errors.As(err, &timeErr):
		return apperr.Validation("invalid time %q", timeErr.Value)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.NotFound("resource not found")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.Conflict("resource already exists")
	}
	return &apperr.Error{Kind: apperr.KindInternal, Message: "internal server error"}
}

// Recovery turns panics into a logged 500 in the standard error shape.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error("panic recovered",
			"path", c.Request.URL.Path,
			"request_id", c.GetString(ctxRequestID),
			"panic", fmt.Sprint(recovered),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": errorBody{
			Kind:    apperr.KindInternal,
			Message: "internal server error",
		}})
	})
}
