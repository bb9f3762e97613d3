package grpc

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/andrescamacho/fabtycoon-go/internal/application/game"
	"github.com/andrescamacho/fabtycoon-go/internal/application/setup"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/savegame"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/shared"
)

// toStatus maps application errors onto gRPC status codes. Rejected input is
// InvalidArgument, a world that cannot take the request is FailedPrecondition.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	var validation *shared.ValidationError
	switch {
	case errors.As(err, &validation),
		errors.Is(err, shared.ErrInvalidDecision),
		errors.Is(err, shared.ErrInvalidContractParameters):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, shared.ErrInsufficientCash),
		errors.Is(err, shared.ErrCampaignTerminal),
		errors.Is(err, game.ErrNoGame):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, game.ErrTickInProgress):
		return status.Error(codes.Aborted, err.Error())
	case errors.Is(err, setup.ErrRateLimited):
		return status.Error(codes.ResourceExhausted, err.Error())
	case errors.Is(err, savegame.ErrSaveNotFound):
		return status.Error(codes.NotFound, err.Error())
	default:
		return status.Error(codes.Unknown, err.Error())
	}
}

// fromStatus restores the sentinel errors callers check with errors.Is
func fromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.Aborted:
		return game.ErrTickInProgress
	case codes.ResourceExhausted:
		return setup.ErrRateLimited
	case codes.NotFound:
		return savegame.ErrSaveNotFound
	default:
		return errors.New(st.Message())
	}
}
