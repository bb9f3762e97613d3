package queries_test

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/fabtycoon-go/internal/application/game"
	"github.com/andrescamacho/fabtycoon-go/internal/application/ledger/queries"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/ledger"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/planner"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/simulation"
	"github.com/andrescamacho/fabtycoon-go/test/helpers"
)

// playedSession is a classic campaign advanced by six months
func playedSession(t *testing.T) *game.Session {
	t.Helper()
	setup, err := helpers.LoadPack(t).Build("classic_1990", "")
	require.NoError(t, err)
	s := game.NewSession()
	require.NoError(t, s.Start(setup.State, helpers.FastPlanner(setup.Planner)))
	require.NoError(t, s.Mutate(context.Background(), func(ctx context.Context, st *simulation.State, p *planner.Policy) error {
		_, err := simulation.Advance(ctx, st, 6, simulation.Options{Policy: p})
		return err
	}))
	return s
}

func TestGetProfitLoss_TotalsMatchJournal(t *testing.T) {
	// Arrange
	s := playedSession(t)
	pl := queries.NewGetProfitLossHandler(s)
	tx := queries.NewGetTransactionsHandler(s)

	// Act
	resp, err := pl.Handle(context.Background(), &queries.GetProfitLossQuery{})
	require.NoError(t, err)
	all, err := tx.Handle(context.Background(), &queries.GetTransactionsQuery{})
	require.NoError(t, err)

	// Assert
	statement := resp.(*queries.GetProfitLossResponse)
	assert.Equal(t, "player", statement.CompanyID)
	assert.Equal(t, "1990-01 to 1990-07", statement.Period)
	assert.Equal(t, statement.TotalRevenue-statement.TotalExpenses, statement.NetProfit)

	var net int64
	for _, e := range all.(*queries.GetTransactionsResponse).Transactions {
		net += e.Amount
	}
	assert.Equal(t, net, statement.NetProfit)
	assert.Positive(t, statement.RevenueBreakdown["SALES"])
}

func TestGetProfitLoss_LongCampaignMatchesCash(t *testing.T) {
	// Arrange: post more months than the journal keeps
	setup, err := helpers.LoadPack(t).Build("classic_1990", "")
	require.NoError(t, err)
	s := game.NewSession()
	require.NoError(t, s.Start(setup.State, helpers.FastPlanner(setup.Planner)))
	require.NoError(t, s.Mutate(context.Background(), func(ctx context.Context, st *simulation.State, p *planner.Policy) error {
		c, err := st.Company(st.PlayerID)
		if err != nil {
			return err
		}
		for i := 0; i < 200; i++ {
			if _, err := c.Ledger.ApplyMonth(ledger.Accruals{RevenueCents: 5_000_000, RDCents: 100_000}, st.Month); err != nil {
				return err
			}
			st.Month = st.Month.AddMonths(1)
		}
		return nil
	}))

	// Act
	resp, err := queries.NewGetProfitLossHandler(s).Handle(context.Background(), &queries.GetProfitLossQuery{})
	require.NoError(t, err)
	flow, err := queries.NewGetCashFlowHandler(s).Handle(context.Background(), &queries.GetCashFlowQuery{})
	require.NoError(t, err)

	// Assert
	view, err := s.View()
	require.NoError(t, err)
	player, err := view.Company(view.PlayerID)
	require.NoError(t, err)
	require.Len(t, player.Ledger.Journal, ledger.JournalCapacity)

	cashDelta := player.Ledger.CashCents - player.Ledger.InitialCashCents
	assert.Equal(t, cashDelta, resp.(*queries.GetProfitLossResponse).NetProfit)

	var net int64
	for _, f := range flow.(*queries.GetCashFlowResponse).Flows {
		net += f.NetFlow
	}
	assert.Equal(t, cashDelta, net)
}

func TestGetProfitLoss_RejectsInvertedPeriod(t *testing.T) {
	pl := queries.NewGetProfitLossHandler(playedSession(t))

	_, err := pl.Handle(context.Background(), &queries.GetProfitLossQuery{Start: "1990-05", End: "1990-02"})
	assert.Error(t, err)

	_, err = pl.Handle(context.Background(), &queries.GetProfitLossQuery{Start: "May 1990"})
	assert.Error(t, err)
}

func TestGetTransactions_NewestFirstWithPaging(t *testing.T) {
	// Arrange
	handler := queries.NewGetTransactionsHandler(playedSession(t))

	// Act
	full, err := handler.Handle(context.Background(), &queries.GetTransactionsQuery{})
	require.NoError(t, err)
	page, err := handler.Handle(context.Background(), &queries.GetTransactionsQuery{Limit: 2, Offset: 1})
	require.NoError(t, err)

	// Assert
	entries := full.(*queries.GetTransactionsResponse).Transactions
	require.Greater(t, len(entries), 3)
	assert.True(t, sort.SliceIsSorted(entries, func(i, j int) bool { return entries[i].Month > entries[j].Month }))

	paged := page.(*queries.GetTransactionsResponse)
	assert.Equal(t, len(entries), paged.Total)
	require.Len(t, paged.Transactions, 2)
	assert.Equal(t, entries[1].ID, paged.Transactions[0].ID)
}

func TestGetTransactions_FiltersByCategory(t *testing.T) {
	handler := queries.NewGetTransactionsHandler(playedSession(t))
	sales := "SALES"

	resp, err := handler.Handle(context.Background(), &queries.GetTransactionsQuery{Category: &sales})

	require.NoError(t, err)
	for _, e := range resp.(*queries.GetTransactionsResponse).Transactions {
		assert.Equal(t, "SALES", e.Category)
	}

	bogus := "BOGUS"
	_, err = handler.Handle(context.Background(), &queries.GetTransactionsQuery{EntryType: &bogus})
	assert.Error(t, err)
}

func TestGetCashFlow_GroupsByMonthInOrder(t *testing.T) {
	handler := queries.NewGetCashFlowHandler(playedSession(t))

	resp, err := handler.Handle(context.Background(), &queries.GetCashFlowQuery{GroupBy: "month"})

	require.NoError(t, err)
	flows := resp.(*queries.GetCashFlowResponse).Flows
	require.NotEmpty(t, flows)
	for i := 1; i < len(flows); i++ {
		assert.Less(t, flows[i-1].Key, flows[i].Key)
	}
	for _, f := range flows {
		assert.Equal(t, f.TotalInflow-f.TotalOutflow, f.NetFlow)
	}
}

func TestGetCashFlow_RejectsUnknownGrouping(t *testing.T) {
	handler := queries.NewGetCashFlowHandler(playedSession(t))

	_, err := handler.Handle(context.Background(), &queries.GetCashFlowQuery{GroupBy: "week"})

	assert.Error(t, err)
}
