package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/fabtycoon-go/internal/application/common"
	"github.com/andrescamacho/fabtycoon-go/internal/application/game"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/ledger"
)

// GetCashFlowQuery represents a query to generate a cash flow statement
type GetCashFlowQuery struct {
	CompanyID string
	Start     string
	End       string
	GroupBy   string `validate:"omitempty,oneof=category month"` // "category" (default) or "month"
}

// GetCashFlowResponse represents the cash flow statement result
type GetCashFlowResponse struct {
	CompanyID string      `json:"company_id"`
	Period    string      `json:"period"`
	GroupBy   string      `json:"group_by"`
	Flows     []*CashFlow `json:"flows"`
}

// CashFlow represents cash flow for one category or one month
type CashFlow struct {
	Key          string `json:"key"`
	TotalInflow  int64  `json:"total_inflow_cents"`
	TotalOutflow int64  `json:"total_outflow_cents"`
	NetFlow      int64  `json:"net_flow_cents"`
	Transactions int    `json:"transactions"`
}

// GetCashFlowHandler handles the GetCashFlow query
type GetCashFlowHandler struct {
	session *game.Session
}

// NewGetCashFlowHandler creates a new GetCashFlowHandler
func NewGetCashFlowHandler(session *game.Session) *GetCashFlowHandler {
	return &GetCashFlowHandler{session: session}
}

// Handle executes the GetCashFlow query
func (h *GetCashFlowHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*GetCashFlowQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetCashFlowQuery")
	}

	groupBy := query.GroupBy
	if groupBy == "" {
		groupBy = "category"
	}
	if groupBy != "category" && groupBy != "month" {
		return nil, fmt.Errorf("invalid grouping %q: expected category or month", groupBy)
	}

	view, l, err := companyLedger(h.session, query.CompanyID)
	if err != nil {
		return nil, err
	}
	from, to, err := period(view, query.Start, query.End)
	if err != nil {
		return nil, err
	}

	flows := make(map[string]*CashFlow)
	var order []string
	if groupBy == "category" {
		for _, cat := range ledger.AllCategories() {
			order = append(order, cat.String())
		}
	}

	for _, t := range l.TotalsBetween(from, to) {
		key := t.Category.String()
		if groupBy == "month" {
			key = t.Month.String()
		}
		flow, ok := flows[key]
		if !ok {
			flow = &CashFlow{Key: key}
			flows[key] = flow
			if groupBy == "month" {
				order = append(order, key)
			}
		}
		flow.Transactions += t.Entries
		flow.TotalInflow += t.InflowCents
		flow.TotalOutflow += t.OutflowCents
		flow.NetFlow = flow.TotalInflow - flow.TotalOutflow
	}

	resp := &GetCashFlowResponse{
		CompanyID: l.Owner,
		Period:    fmt.Sprintf("%s to %s", from, to),
		GroupBy:   groupBy,
		Flows:     []*CashFlow{},
	}
	for _, key := range order {
		if flow, ok := flows[key]; ok {
			resp.Flows = append(resp.Flows, flow)
		}
	}
	return resp, nil
}
