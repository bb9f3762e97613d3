package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/fabtycoon-go/internal/application/game"
	"github.com/andrescamacho/fabtycoon-go/internal/application/game/dtos"
	ledgerQueries "github.com/andrescamacho/fabtycoon-go/internal/application/ledger/queries"
	"github.com/andrescamacho/fabtycoon-go/internal/application/mediator"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/simulation"
)

type sampleCommand struct{}

func TestPrometheusMiddleware_CountsBusyApart(t *testing.T) {
	// Arrange
	InitRegistry()
	t.Cleanup(func() { Registry = nil })
	collector := NewCommandMetricsCollector()
	require.NoError(t, collector.Register())
	mw := PrometheusMiddleware(collector)

	// Act
	_, _ = mw(context.Background(), &sampleCommand{}, func(context.Context, mediator.Request) (mediator.Response, error) {
		return nil, game.ErrTickInProgress
	})
	_, _ = mw(context.Background(), &sampleCommand{}, func(context.Context, mediator.Request) (mediator.Response, error) {
		return nil, errors.New("boom")
	})
	_, _ = mw(context.Background(), &sampleCommand{}, func(context.Context, mediator.Request) (mediator.Response, error) {
		return "ok", nil
	})

	// Assert
	assert.Equal(t, 3, testutil.CollectAndCount(collector.commandsTotal))
}

func TestSimulationCollector_RecordTick(t *testing.T) {
	c := NewSimulationMetricsCollector()
	summary := &dtos.StateSummary{
		MonthIndex: 4,
		Companies: []dtos.CompanySummary{
			{ID: "player", CashCents: 1234, Share: 0.25},
			{ID: "rival", AI: true, CashCents: 99},
		},
		Campaign: &dtos.CampaignSummary{Status: "active", DoneCount: 1},
	}

	c.RecordTick(summary, simulation.Report{Months: 3, Fired: []string{"recession"}})

	assert.Equal(t, 1.0, testutil.ToFloat64(c.ticksTotal))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.monthsSimulated))
	assert.Equal(t, 1234.0, testutil.ToFloat64(c.cashCents.WithLabelValues("player", "false")))
	assert.Equal(t, 0.25, testutil.ToFloat64(c.share.WithLabelValues("player", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.campaignStatus.WithLabelValues("active")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.eventsFired.WithLabelValues("recession")))
}

func TestFinancialCollector_Observe(t *testing.T) {
	c := NewFinancialMetricsCollector(nil, nil)

	c.Observe(&ledgerQueries.GetProfitLossResponse{
		CompanyID:        "player",
		RevenueBreakdown: map[string]int64{"SALES": 500},
		ExpenseBreakdown: map[string]int64{"MANUFACTURING": 200},
		NetProfit:        300,
	})

	assert.Equal(t, 500.0, testutil.ToFloat64(c.totalRevenue.WithLabelValues("player", "SALES")))
	assert.Equal(t, 200.0, testutil.ToFloat64(c.totalExpenses.WithLabelValues("player", "MANUFACTURING")))
	assert.Equal(t, 300.0, testutil.ToFloat64(c.netProfit.WithLabelValues("player")))
}

func TestHandler_ServesRegistry(t *testing.T) {
	InitRegistry()
	t.Cleanup(func() { Registry = nil })
	collector := NewRPCMetricsCollector()
	require.NoError(t, collector.Register())
	collector.RecordRPC("AdvanceMonths", "OK", 0.01)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "fabtycoon_daemon_")
}
