package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/fabtycoon-go/internal/application/common"
	"github.com/andrescamacho/fabtycoon-go/internal/application/game"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/ledger"
)

// GetTransactionsQuery represents a query to retrieve journal entries
type GetTransactionsQuery struct {
	CompanyID string
	Start     string
	End       string
	Category  *string
	EntryType *string
	Limit     int `validate:"min=0"`
	Offset    int `validate:"min=0"`
}

// GetTransactionsResponse represents the result of the query
type GetTransactionsResponse struct {
	Transactions []*TransactionDTO `json:"transactions"`
	Total        int               `json:"total"`
}

// TransactionDTO represents a journal entry data transfer object
type TransactionDTO struct {
	ID            string `json:"id"`
	Month         string `json:"month"`
	AccruedAt     string `json:"accrued_at"`
	Type          string `json:"type"`
	Category      string `json:"category"`
	Amount        int64  `json:"amount_cents"`
	BalanceBefore int64  `json:"balance_before_cents"`
	BalanceAfter  int64  `json:"balance_after_cents"`
	Description   string `json:"description"`
}

// GetTransactionsHandler handles the GetTransactions query
type GetTransactionsHandler struct {
	session *game.Session
}

// NewGetTransactionsHandler creates a new GetTransactionsHandler
func NewGetTransactionsHandler(session *game.Session) *GetTransactionsHandler {
	return &GetTransactionsHandler{session: session}
}

// Handle executes the GetTransactions query. Entries are returned newest first.
func (h *GetTransactionsHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*GetTransactionsQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetTransactionsQuery")
	}

	view, l, err := companyLedger(h.session, query.CompanyID)
	if err != nil {
		return nil, err
	}
	from, to, err := period(view, query.Start, query.End)
	if err != nil {
		return nil, err
	}

	var category *ledger.Category
	if query.Category != nil {
		c, err := ledger.ParseCategory(*query.Category)
		if err != nil {
			return nil, fmt.Errorf("invalid category: %w", err)
		}
		category = &c
	}
	var entryType *ledger.EntryType
	if query.EntryType != nil {
		t, err := ledger.ParseEntryType(*query.EntryType)
		if err != nil {
			return nil, fmt.Errorf("invalid entry type: %w", err)
		}
		entryType = &t
	}

	var matched []*ledger.Entry
	for i := len(l.Journal) - 1; i >= 0; i-- {
		e := l.Journal[i]
		if e.Month().Before(from) || e.Month().After(to) {
			continue
		}
		if category != nil && e.Category() != *category {
			continue
		}
		if entryType != nil && e.Type() != *entryType {
			continue
		}
		matched = append(matched, e)
	}

	resp := &GetTransactionsResponse{Transactions: []*TransactionDTO{}, Total: len(matched)}
	page := matched[min(query.Offset, len(matched)):]
	if query.Limit > 0 && len(page) > query.Limit {
		page = page[:query.Limit]
	}
	for _, e := range page {
		resp.Transactions = append(resp.Transactions, toDTO(e))
	}
	return resp, nil
}

func toDTO(e *ledger.Entry) *TransactionDTO {
	return &TransactionDTO{
		ID:            e.ID().String(),
		Month:         e.Month().String(),
		AccruedAt:     e.AccruedAt().String(),
		Type:          e.Type().String(),
		Category:      e.Category().String(),
		Amount:        e.Amount(),
		BalanceBefore: e.BalanceBefore(),
		BalanceAfter:  e.BalanceAfter(),
		Description:   e.Description(),
	}
}
