package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/andrescamacho/fabtycoon-go/internal/application/game"
	"github.com/andrescamacho/fabtycoon-go/internal/application/mediator"
)

// PrometheusMiddleware records the duration and outcome of every command and query sent
// through the mediator. Requests rejected because a tick was running are counted as "busy"
// rather than "error".
func PrometheusMiddleware(collector *CommandMetricsCollector) mediator.Middleware {
	return func(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
		if collector == nil {
			return next(ctx, request)
		}

		start := time.Now()
		response, err := next(ctx, request)

		status := "success"
		switch {
		case errors.Is(err, game.ErrTickInProgress):
			status = "busy"
		case err != nil:
			status = "error"
		}
		collector.RecordCommandExecution(mediator.Name(request), time.Since(start).Seconds(), status)

		return response, err
	}
}
