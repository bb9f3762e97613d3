package common

// Mediator types re-exported so handlers only import this package

import (
	"github.com/andrescamacho/fabtycoon-go/internal/application/mediator"
)

type (
	Request        = mediator.Request
	Response       = mediator.Response
	RequestHandler = mediator.RequestHandler
	HandlerFunc    = mediator.HandlerFunc
	Middleware     = mediator.Middleware
	Mediator       = mediator.Mediator
)

var (
	NewMediator = mediator.NewMediator
	IsMutation  = mediator.IsMutation
)
