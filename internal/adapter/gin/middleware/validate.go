package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-crud-service/internal/adapter/gin/response"
	domain "user-crud-service/internal/domain/user"
	"user-crud-service/internal/validation"
	apperrors "user-crud-service/pkg/errors"
	"user-crud-service/pkg/logger"
)

// validatedFieldsKey is the gin context key holding the validated domain.Fields.
const validatedFieldsKey = "validated_fields"

// PayloadValidator validates a decoded payload against a ruleset.
type PayloadValidator interface {
	Validate(ctx context.Context, rs validation.Ruleset, payload map[string]any, exceptID int64) (domain.Fields, error)
}

// Validate runs rs against the request payload before the handler.
// On failure it answers 422 with every field error and the handler never runs.
// On success the allow-listed fields are available through ValidatedFields.
// For routes with an :id parameter the uniqueness rules exclude that user.
func Validate(v PayloadValidator, rs validation.Ruleset, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, _ := readPayload(c.Request)

		// an unparseable id matches no user, so nothing needs excluding
		exceptID, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			exceptID = 0
		}

		fields, err := v.Validate(c.Request.Context(), rs, payload, exceptID)
		if err != nil {
			var verr *apperrors.ValidationError
			if errors.As(err, &verr) {
				response.Validation(c, verr)
				return
			}
			logger.WithContext(c.Request.Context(), log).Error("validation could not complete",
				zap.String("ruleset", string(rs)), zap.Error(err))
			response.Error(c, http.StatusInternalServerError, response.InternalServerError)
			return
		}

		c.Set(validatedFieldsKey, fields)
		c.Next()
	}
}

// ValidatedFields returns the fields stored by Validate.
func ValidatedFields(c *gin.Context) (domain.Fields, bool) {
	v, ok := c.Get(validatedFieldsKey)
	if !ok {
		return domain.Fields{}, false
	}
	fields, ok := v.(domain.Fields)
	return fields, ok
}
