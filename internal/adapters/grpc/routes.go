package grpc

import (
	"reflect"

	"github.com/andrescamacho/fabtycoon-go/internal/application/common"
	gameCommands "github.com/andrescamacho/fabtycoon-go/internal/application/game/commands"
	"github.com/andrescamacho/fabtycoon-go/internal/application/game/dtos"
	gameQueries "github.com/andrescamacho/fabtycoon-go/internal/application/game/queries"
	ledgerQueries "github.com/andrescamacho/fabtycoon-go/internal/application/ledger/queries"
)

// ServiceName is the fully qualified gRPC service exposed by the daemon
const ServiceName = "fabtycoon.daemon.v1.DaemonService"

// route binds one RPC method to a mediator request and the response it produces
type route struct {
	method      string
	newRequest  func() common.Request
	newResponse func() common.Response
}

// routes lists every operation the daemon serves. Requests and responses travel as
// structpb.Struct messages carrying the JSON form of the application types.
var routes = []route{
	{"ResetCampaign", func() common.Request { return &gameCommands.ResetCampaignCommand{} }, func() common.Response { return &gameCommands.ResetCampaignResponse{} }},
	{"AdvanceMonths", func() common.Request { return &gameCommands.AdvanceMonthsCommand{} }, func() common.Response { return &gameCommands.AdvanceMonthsResponse{} }},
	{"SubmitOverride", func() common.Request { return &gameCommands.SubmitOverrideCommand{} }, func() common.Response { return &gameCommands.SubmitOverrideResponse{} }},
	{"SaveGame", func() common.Request { return &gameCommands.SaveGameCommand{} }, func() common.Response { return &gameCommands.SaveGameResponse{} }},
	{"LoadGame", func() common.Request { return &gameCommands.LoadGameCommand{} }, func() common.Response { return &gameCommands.LoadGameResponse{} }},
	{"GetStateSummary", func() common.Request { return &gameQueries.GetStateSummaryQuery{} }, func() common.Response { return &dtos.StateSummary{} }},
	{"GetRecommendation", func() common.Request { return &gameQueries.GetRecommendationQuery{} }, func() common.Response { return &gameQueries.GetRecommendationResponse{} }},
	{"ExportTimeline", func() common.Request { return &gameQueries.ExportTimelineQuery{} }, func() common.Response { return &gameQueries.ExportTimelineResponse{} }},
	{"ListSaves", func() common.Request { return &gameQueries.ListSavesQuery{} }, func() common.Response { return &gameQueries.ListSavesResponse{} }},
	{"GetBuildInfo", func() common.Request { return &gameQueries.GetBuildInfoQuery{} }, func() common.Response { return &gameQueries.GetBuildInfoResponse{} }},
	{"GetTransactions", func() common.Request { return &ledgerQueries.GetTransactionsQuery{} }, func() common.Response { return &ledgerQueries.GetTransactionsResponse{} }},
	{"GetProfitLoss", func() common.Request { return &ledgerQueries.GetProfitLossQuery{} }, func() common.Response { return &ledgerQueries.GetProfitLossResponse{} }},
	{"GetCashFlow", func() common.Request { return &ledgerQueries.GetCashFlowQuery{} }, func() common.Response { return &ledgerQueries.GetCashFlowResponse{} }},
}

var routesByType = func() map[reflect.Type]route {
	out := make(map[reflect.Type]route, len(routes))
	for _, r := range routes {
		out[reflect.TypeOf(r.newRequest())] = r
	}
	return out
}()

// fullMethod is the gRPC path of a method, e.g. /fabtycoon.daemon.v1.DaemonService/AdvanceMonths
func fullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}
