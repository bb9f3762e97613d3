package queries

import (
	"context"
	"fmt"
	"runtime"

	"github.com/andrescamacho/fabtycoon-go/internal/application/common"
)

// BuildInfo is stamped into the binaries with -ldflags
type BuildInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// GetBuildInfoQuery returns the version of the running binary
type GetBuildInfoQuery struct{}

// GetBuildInfoResponse is the build info plus the Go runtime version
type GetBuildInfoResponse struct {
	BuildInfo
	GoVersion string `json:"go_version"`
}

// GetBuildInfoHandler handles the GetBuildInfo query
type GetBuildInfoHandler struct {
	info BuildInfo
}

// NewGetBuildInfoHandler creates a new GetBuildInfoHandler. Empty fields read "unknown".
func NewGetBuildInfoHandler(info BuildInfo) *GetBuildInfoHandler {
	for _, f := range []*string{&info.Version, &info.Commit, &info.Date} {
		if *f == "" {
			*f = "unknown"
		}
	}
	return &GetBuildInfoHandler{info: info}
}

// Handle executes the GetBuildInfo query
func (h *GetBuildInfoHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	if _, ok := request.(*GetBuildInfoQuery); !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetBuildInfoQuery")
	}
	return &GetBuildInfoResponse{BuildInfo: h.info, GoVersion: runtime.Version()}, nil
}
