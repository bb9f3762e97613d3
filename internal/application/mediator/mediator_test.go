package mediator_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/fabtycoon-go/internal/application/mediator"
)

type pingQuery struct{ Value string }

type pingHandler struct{}

func (pingHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	return "pong:" + request.(*pingQuery).Value, nil
}

func TestMediator_DispatchesByType(t *testing.T) {
	m := mediator.NewMediator()
	require.NoError(t, mediator.RegisterHandler[*pingQuery](m, pingHandler{}))

	resp, err := m.Send(context.Background(), &pingQuery{Value: "a"})

	require.NoError(t, err)
	assert.Equal(t, "pong:a", resp)
}

func TestMediator_RejectsDuplicatesAndUnknownTypes(t *testing.T) {
	m := mediator.NewMediator()
	require.NoError(t, m.Register(reflect.TypeOf(&pingQuery{}), pingHandler{}))

	assert.Error(t, m.Register(reflect.TypeOf(&pingQuery{}), pingHandler{}))
	assert.Error(t, m.Register(nil, pingHandler{}))
	_, err := m.Send(context.Background(), &struct{}{})
	assert.Error(t, err)
	_, err = m.Send(context.Background(), nil)
	assert.Error(t, err)
}

func TestMediator_MiddlewaresRunOutermostFirst(t *testing.T) {
	// Arrange
	m := mediator.NewMediator()
	require.NoError(t, mediator.RegisterHandler[*pingQuery](m, pingHandler{}))
	var trace []string
	layer := func(name string) mediator.Middleware {
		return func(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
			trace = append(trace, name+">")
			resp, err := next(ctx, request)
			trace = append(trace, "<"+name)
			return resp, err
		}
	}
	m.RegisterMiddleware(layer("outer"))
	m.RegisterMiddleware(layer("inner"))

	// Act
	_, err := m.Send(context.Background(), &pingQuery{})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []string{"outer>", "inner>", "<inner", "<outer"}, trace)
}

func TestMediator_MiddlewareCanShortCircuit(t *testing.T) {
	m := mediator.NewMediator()
	require.NoError(t, mediator.RegisterHandler[*pingQuery](m, pingHandler{}))
	denied := errors.New("denied")
	m.RegisterMiddleware(func(context.Context, mediator.Request, mediator.HandlerFunc) (mediator.Response, error) {
		return nil, denied
	})

	_, err := m.Send(context.Background(), &pingQuery{})

	assert.ErrorIs(t, err, denied)
}

type resetWorld struct{}

func (*resetWorld) Mutation() {}

func TestName_StripsPointerAndPackage(t *testing.T) {
	assert.Equal(t, "pingQuery", mediator.Name(&pingQuery{}))
	assert.Equal(t, "pingQuery", mediator.Name(pingQuery{}))
	assert.Equal(t, "UnknownRequest", mediator.Name(nil))
}

func TestIsMutation(t *testing.T) {
	assert.True(t, mediator.IsMutation(&resetWorld{}))
	assert.False(t, mediator.IsMutation(&pingQuery{}))
	assert.False(t, mediator.IsMutation(nil))
}
