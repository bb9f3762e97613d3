package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/fabtycoon-go/internal/application/common"
	"github.com/andrescamacho/fabtycoon-go/internal/application/game"
)

// GetProfitLossQuery represents a query to generate a profit & loss statement
type GetProfitLossQuery struct {
	CompanyID string
	Start     string // YYYY-MM, defaults to the campaign start
	End       string // YYYY-MM, defaults to the current month
}

// GetProfitLossResponse represents the profit & loss statement result
type GetProfitLossResponse struct {
	CompanyID        string           `json:"company_id"`
	Period           string           `json:"period"`
	TotalRevenue     int64            `json:"total_revenue_cents"`
	TotalExpenses    int64            `json:"total_expenses_cents"`
	NetProfit        int64            `json:"net_profit_cents"`
	RevenueBreakdown map[string]int64 `json:"revenue_breakdown"` // category -> cents
	ExpenseBreakdown map[string]int64 `json:"expense_breakdown"` // category -> cents
}

// GetProfitLossHandler handles the GetProfitLoss query
type GetProfitLossHandler struct {
	session *game.Session
}

// NewGetProfitLossHandler creates a new GetProfitLossHandler
func NewGetProfitLossHandler(session *game.Session) *GetProfitLossHandler {
	return &GetProfitLossHandler{session: session}
}

// Handle executes the GetProfitLoss query
func (h *GetProfitLossHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*GetProfitLossQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetProfitLossQuery")
	}

	view, l, err := companyLedger(h.session, query.CompanyID)
	if err != nil {
		return nil, err
	}
	from, to, err := period(view, query.Start, query.End)
	if err != nil {
		return nil, err
	}

	resp := &GetProfitLossResponse{
		CompanyID:        l.Owner,
		Period:           fmt.Sprintf("%s to %s", from, to),
		RevenueBreakdown: make(map[string]int64),
		ExpenseBreakdown: make(map[string]int64),
	}
	for category, amount := range l.ProfitAndLoss(from, to) {
		if amount >= 0 {
			resp.RevenueBreakdown[category.String()] += amount
			resp.TotalRevenue += amount
		} else {
			// expenses are reported as positive amounts
			resp.ExpenseBreakdown[category.String()] += -amount
			resp.TotalExpenses += -amount
		}
	}
	resp.NetProfit = resp.TotalRevenue - resp.TotalExpenses
	return resp, nil
}
