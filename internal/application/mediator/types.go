package mediator

import (
	"context"
	"reflect"
	"strings"
)

// Request is a game command or query, routed by its dynamic type
type Request interface{}

// Response is whatever the handler of a request returns
type Response interface{}

// RequestHandler handles one request type
type RequestHandler interface {
	Handle(ctx context.Context, request Request) (Response, error)
}

// HandlerFunc is the next step of a middleware chain
type HandlerFunc func(ctx context.Context, request Request) (Response, error)

// Middleware wraps every Send: rate limiting, logger injection, validation, metrics
type Middleware func(ctx context.Context, request Request, next HandlerFunc) (Response, error)

// Mutation marks commands that change the live world. Saves and queries are not mutations.
type Mutation interface {
	Mutation()
}

// IsMutation reports whether request changes the live world
func IsMutation(request Request) bool {
	_, ok := request.(Mutation)
	return ok
}

// Name is the bare type name of a request: *commands.AdvanceMonthsCommand is
// "AdvanceMonthsCommand". Metrics and logs label requests with it.
func Name(request Request) string {
	if request == nil {
		return "UnknownRequest"
	}
	name := strings.TrimPrefix(reflect.TypeOf(request).String(), "*")
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}
