// Package response renders the JSON bodies shared by handlers and middleware.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "user-crud-service/pkg/errors"
)

// InternalServerError is the only detail a client ever sees for a 500.
const InternalServerError = "Internal server error"

// ErrorResponse is the generic error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ValidationErrorResponse is the 422 body listing every failed field.
type ValidationErrorResponse struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

// Error writes {error: msg} with status and aborts the chain.
func Error(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: msg})
}

// Validation writes the 422 body for verr and aborts the chain.
func Validation(c *gin.Context, verr *apperrors.ValidationError) {
	c.AbortWithStatusJSON(verr.HTTPStatus(), ValidationErrorResponse{
		Message: verr.Message,
		Errors:  verr.Fields,
	})
}

// FromError maps err onto a response. Only validation and not-found errors
// expose their message; everything else becomes a generic 500.
func FromError(c *gin.Context, err error) {
	var verr *apperrors.ValidationError
	if errors.As(err, &verr) {
		Validation(c, verr)
		return
	}

	var nf *apperrors.NotFoundError
	if errors.As(err, &nf) {
		Error(c, nf.HTTPStatus(), nf.Error())
		return
	}

	Error(c, http.StatusInternalServerError, InternalServerError)
}
