package grpc

import (
	"context"
	"fmt"
	"reflect"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/andrescamacho/fabtycoon-go/internal/application/common"
)

// DaemonClient sends mediator requests to a running daemon. Responses come back as the same
// concrete types the in-process mediator returns.
type DaemonClient struct {
	conn *grpc.ClientConn
}

// NewDaemonClient creates a client for the daemon listening on socketPath
func NewDaemonClient(socketPath string) (*DaemonClient, error) {
	conn, err := grpc.NewClient(
		"unix:"+socketPath,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon socket: %w", err)
	}
	return &DaemonClient{conn: conn}, nil
}

// NewDaemonClientWithConn wraps an existing connection
func NewDaemonClientWithConn(conn *grpc.ClientConn) *DaemonClient {
	return &DaemonClient{conn: conn}
}

// Send invokes the daemon method bound to the request's type
func (c *DaemonClient) Send(ctx context.Context, request common.Request) (common.Response, error) {
	r, ok := routesByType[reflect.TypeOf(request)]
	if !ok {
		return nil, fmt.Errorf("no daemon method for %T", request)
	}

	in, err := toStruct(request)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, fullMethod(r.method), in, out); err != nil {
		return nil, fromStatus(err)
	}

	response := r.newResponse()
	if err := fromStruct(out, response); err != nil {
		return nil, err
	}
	return response, nil
}

// Close closes the gRPC connection
func (c *DaemonClient) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
