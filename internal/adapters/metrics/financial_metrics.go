package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/andrescamacho/fabtycoon-go/internal/application/common"
	ledgerQueries "github.com/andrescamacho/fabtycoon-go/internal/application/ledger/queries"
)

// FinancialMetricsCollector polls the player's profit & loss statement
type FinancialMetricsCollector struct {
	// Dependencies
	mediator common.Mediator
	logger   common.Logger

	// P&L metrics
	totalRevenue  *prometheus.GaugeVec
	totalExpenses *prometheus.GaugeVec
	netProfit     *prometheus.GaugeVec

	// Lifecycle
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// NewFinancialMetricsCollector creates a new financial metrics collector
func NewFinancialMetricsCollector(mediator common.Mediator, logger common.Logger) *FinancialMetricsCollector {
	return &FinancialMetricsCollector{
		mediator: mediator,
		logger:   logger,

		// Total revenue by category
		totalRevenue: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "total_revenue_cents",
				Help:      "Campaign-to-date revenue by category",
			},
			[]string{"company", "category"},
		),

		// Total expenses by category
		totalExpenses: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "total_expenses_cents",
				Help:      "Campaign-to-date expenses by category",
			},
			[]string{"company", "category"},
		),

		// Net profit
		netProfit: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "net_profit_cents",
				Help:      "Campaign-to-date net profit (revenue - expenses)",
			},
			[]string{"company"},
		),
	}
}

// Register registers all financial metrics with the Prometheus registry
func (c *FinancialMetricsCollector) Register() error {
	if Registry == nil {
		return nil // Metrics not enabled
	}

	metrics := []prometheus.Collector{
		c.totalRevenue,
		c.totalExpenses,
		c.netProfit,
	}

	for _, metric := range metrics {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}

	return nil
}

// Start begins the P&L polling goroutine
func (c *FinancialMetricsCollector) Start(ctx context.Context, interval time.Duration) {
	c.ctx, c.cancelFunc = context.WithCancel(ctx)
	if interval <= 0 {
		interval = 60 * time.Second
	}

	c.wg.Add(1)
	go c.pollProfitLoss(interval)
}

// Stop gracefully stops the financial metrics collector
func (c *FinancialMetricsCollector) Stop() {
	if c.cancelFunc != nil {
		c.cancelFunc()
	}
	c.wg.Wait()
}

// pollProfitLoss polls P&L data periodically
func (c *FinancialMetricsCollector) pollProfitLoss(interval time.Duration) {
	defer c.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.updateProfitLoss()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.updateProfitLoss()
		}
	}
}

// updateProfitLoss fetches the campaign-to-date P&L of the player
func (c *FinancialMetricsCollector) updateProfitLoss() {
	if c.mediator == nil {
		return
	}

	response, err := c.mediator.Send(c.ctx, &ledgerQueries.GetProfitLossQuery{})
	if err != nil {
		// no game loaded yet is the common case
		if c.logger != nil {
			c.logger.Log("DEBUG", "Skipping P&L metrics update", map[string]interface{}{"error": err.Error()})
		}
		return
	}

	pl, ok := response.(*ledgerQueries.GetProfitLossResponse)
	if !ok {
		return
	}
	c.Observe(pl)
}

// Observe copies one P&L statement into the gauges
func (c *FinancialMetricsCollector) Observe(pl *ledgerQueries.GetProfitLossResponse) {
	for category, amount := range pl.RevenueBreakdown {
		c.totalRevenue.WithLabelValues(pl.CompanyID, category).Set(float64(amount))
	}
	for category, amount := range pl.ExpenseBreakdown {
		c.totalExpenses.WithLabelValues(pl.CompanyID, category).Set(float64(amount))
	}
	c.netProfit.WithLabelValues(pl.CompanyID).Set(float64(pl.NetProfit))
}
