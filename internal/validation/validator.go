// Package validation implements the rule-based payload checks run before
// user writes reach the store.
package validation

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	domain "user-crud-service/internal/domain/user"
	apperrors "user-crud-service/pkg/errors"
	"user-crud-service/pkg/logger"
)

// UniqueChecker answers whether an email already belongs to a user other than exceptID.
type UniqueChecker interface {
	EmailTaken(ctx context.Context, email string, exceptID int64) (bool, error)
}

// Engine validates raw request payloads against a named ruleset.
type Engine struct {
	validate *validator.Validate
	store    UniqueChecker
	log      *zap.Logger
}

// New creates a validation engine backed by store for uniqueness checks.
func New(store UniqueChecker, log *zap.Logger) *Engine {
	return &Engine{
		validate: validator.New(),
		store:    store,
		log:      log,
	}
}

// Validate checks payload against rs and returns the allow-listed fields.
// All field failures are accumulated into a *errors.ValidationError.
// A store failure during the uniqueness check is returned as *errors.InternalError.
func (e *Engine) Validate(ctx context.Context, rs Ruleset, payload map[string]any, exceptID int64) (domain.Fields, error) {
	rules, ok := rulesets[rs]
	if !ok {
		return domain.Fields{}, fmt.Errorf("unknown ruleset %q", rs)
	}

	log := logger.WithContext(ctx, e.log)
	verr := apperrors.NewValidationError(FailureMessage)
	var out domain.Fields

	for _, rule := range rules {
		raw, present := payload[rule.Field]
		if !present {
			if rule.Required {
				verr.Add(rule.Field, requiredMessage(rule.Field))
			}
			continue
		}

		raw = normalize(raw)
		if raw == nil {
			if rule.Required {
				verr.Add(rule.Field, requiredMessage(rule.Field))
			} else {
				verr.Add(rule.Field, kindMessage(rule.Field, rule.Kind))
			}
			continue
		}

		switch rule.Kind {
		case kindString:
			s, ok := raw.(string)
			if !ok {
				verr.Add(rule.Field, kindMessage(rule.Field, rule.Kind))
				continue
			}
			if !e.checkTags(verr, rule, s) {
				continue
			}
			if rule.Unique {
				taken, err := e.store.EmailTaken(ctx, s, exceptID)
				if err != nil {
					log.Error("uniqueness check failed", zap.String("field", rule.Field), zap.Error(err))
					return domain.Fields{}, apperrors.NewInternalError("failed to validate email uniqueness", err)
				}
				if taken {
					verr.Add(rule.Field, uniqueMessage(rule.Field))
					continue
				}
			}
			assignString(&out, rule.Field, s)
		case kindInteger:
			n, ok := toInt(raw)
			if !ok {
				verr.Add(rule.Field, kindMessage(rule.Field, rule.Kind))
				continue
			}
			if !e.checkTags(verr, rule, n) {
				continue
			}
			assignInt(&out, rule.Field, n)
		}
	}

	if verr.HasErrors() {
		log.Debug("payload failed validation", zap.String("ruleset", string(rs)), zap.Any("errors", verr.Fields))
		return domain.Fields{}, verr
	}

	return out, nil
}

// checkTags runs every tag of rule against value and records each failure.
func (e *Engine) checkTags(verr *apperrors.ValidationError, rule fieldRule, value any) bool {
	passed := true
	for _, tag := range rule.Tags {
		err := e.validate.Var(value, tag)
		if err == nil {
			continue
		}
		passed = false
		if fieldErrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range fieldErrs {
				verr.Add(rule.Field, ruleMessage(rule.Field, rule.Kind, fe))
			}
			continue
		}
		verr.Add(rule.Field, fmt.Sprintf("The %s field is invalid.", rule.Field))
	}
	return passed
}

// normalize trims string input and turns empty strings into nil.
func normalize(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return s
}

// toInt accepts JSON integers and integral numeric strings.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) || n > math.MaxInt64 || n < math.MinInt64 {
			return 0, false
		}
		return int(n), true
	case int:
		return n, true
	case int64:
		return int(n), true
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0, false
		}
		return int(i), true
	default:
		return 0, false
	}
}

func assignString(f *domain.Fields, field, v string) {
	switch field {
	case "name":
		f.Name = &v
	case "email":
		f.Email = &v
	}
}

func assignInt(f *domain.Fields, field string, v int) {
	if field == "age" {
		f.Age = &v
	}
}
