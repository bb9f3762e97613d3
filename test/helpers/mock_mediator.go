package helpers

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/andrescamacho/fabtycoon-go/internal/application/common"
)

// MockMediator is a test double for the Mediator interface. Responses are looked up by
// request type; every request is recorded.
type MockMediator struct {
	mu        sync.Mutex
	responses map[reflect.Type]func(common.Request) (common.Response, error)
	calls     []common.Request
}

// NewMockMediator creates a new MockMediator
func NewMockMediator() *MockMediator {
	return &MockMediator{responses: make(map[reflect.Type]func(common.Request) (common.Response, error))}
}

// On registers the answer for one request type
func (m *MockMediator) On(request common.Request, fn func(common.Request) (common.Response, error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[reflect.TypeOf(request)] = fn
}

// Send implements the Mediator interface
func (m *MockMediator) Send(ctx context.Context, request common.Request) (common.Response, error) {
	m.mu.Lock()
	m.calls = append(m.calls, request)
	fn, ok := m.responses[reflect.TypeOf(request)]
	m.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("unsupported request type: %T", request)
	}
	return fn(request)
}

// Register is a no-op
func (m *MockMediator) Register(requestType reflect.Type, handler common.RequestHandler) error {
	return nil
}

// RegisterMiddleware is a no-op
func (m *MockMediator) RegisterMiddleware(middleware common.Middleware) {}

// Calls returns every request sent so far
func (m *MockMediator) Calls() []common.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]common.Request(nil), m.calls...)
}
