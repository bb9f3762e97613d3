package setup

import (
	"context"
	"errors"
	"strings"

	"unicode"

	"github.com/go-playground/validator/v10"
	"golang.org/x/time/rate"

	"github.com/andrescamacho/fabtycoon-go/internal/adapters/metrics"
	"github.com/andrescamacho/fabtycoon-go/internal/application/common"
	"github.com/andrescamacho/fabtycoon-go/internal/application/mediator"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/shared"
)

// ErrRateLimited is returned when a request arrives faster than the daemon accepts them
var ErrRateLimited = errors.New("rate limit exceeded")

// RateLimitMiddleware rejects requests beyond the limiter's budget instead of queueing them.
// A nil limiter disables the check.
func RateLimitMiddleware(limiter *rate.Limiter) mediator.Middleware {
	return func(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
		if limiter != nil && !limiter.Allow() {
			name := mediator.Name(request)
			metrics.RecordRateLimited(name)
			common.LoggerFromContext(ctx).Log("WARNING", "Request rate limited", map[string]interface{}{
				"request": name,
			})
			return nil, ErrRateLimited
		}
		return next(ctx, request)
	}
}

// LoggerMiddleware puts logger into the context of every request that does not carry one
func LoggerMiddleware(logger common.Logger) mediator.Middleware {
	return func(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
		if !common.HasLogger(ctx) {
			ctx = common.WithLogger(ctx, logger)
		}
		return next(ctx, request)
	}
}

// ValidationMiddleware checks the validate tags of a request before its handler runs.
// The first failing field is reported as a shared.ValidationError.
func ValidationMiddleware() mediator.Middleware {
	validate := validator.New()
	return func(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
		err := validate.Struct(request)
		if err == nil {
			return next(ctx, request)
		}

		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			// not a struct; nothing to check
			return next(ctx, request)
		}
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return nil, shared.NewValidationError(snakeCase(fe.Field()), describeTag(fe))
		}
		return nil, err
	}
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be >= " + fe.Param()
	case "max":
		return "must be <= " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "failed " + fe.Tag()
	}
}

// snakeCase turns a Go field name into its snake_case form, keeping acronyms together
// (SaveID becomes save_id)
func snakeCase(name string) string {
	runes := []rune(name)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 {
			prevLower := unicode.IsLower(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prevLower || (nextLower && unicode.IsUpper(runes[i-1])) {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
