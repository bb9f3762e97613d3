package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/andrescamacho/fabtycoon-go/internal/application/game/dtos"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/simulation"
)

// SimulationMetricsCollector exposes the state of the live world after every tick
type SimulationMetricsCollector struct {
	// Tick metrics
	ticksTotal      prometheus.Counter
	monthsSimulated prometheus.Counter
	monthIndex      prometheus.Gauge
	diagnostics     *prometheus.CounterVec
	eventsFired     *prometheus.CounterVec
	productsRelease *prometheus.CounterVec

	// Company metrics
	cashCents     *prometheus.GaugeVec
	share         *prometheus.GaugeVec
	aspCents      *prometheus.GaugeVec
	capacityUnits *prometheus.GaugeVec
	profitCents   *prometheus.GaugeVec

	// Campaign metrics
	campaignStatus *prometheus.GaugeVec
	goalsDone      prometheus.Gauge

	// Autosaves
	autosavesTotal *prometheus.CounterVec
}

// NewSimulationMetricsCollector creates a new simulation metrics collector
func NewSimulationMetricsCollector() *SimulationMetricsCollector {
	return &SimulationMetricsCollector{
		ticksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "ticks_total",
			Help:      "Total number of advance requests applied",
		}),
		monthsSimulated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "months_simulated_total",
			Help:      "Total number of simulated months",
		}),
		monthIndex: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "campaign_month_index",
			Help:      "Months elapsed since the campaign start",
		}),
		diagnostics: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "diagnostics_total",
				Help:      "Non-fatal tick diagnostics by kind",
			},
			[]string{"kind"},
		),
		eventsFired: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "events_fired_total",
				Help:      "Scenario events fired",
			},
			[]string{"event"},
		),
		productsRelease: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "products_released_total",
				Help:      "Tape-outs that reached release",
			},
			[]string{"product"},
		),

		cashCents: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "company_cash_cents",
				Help:      "Cash on hand per company",
			},
			[]string{"company", "ai"},
		),
		share: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "company_market_share",
				Help:      "Last month's market share per company",
			},
			[]string{"company", "ai"},
		),
		aspCents: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "company_asp_cents",
				Help:      "Average selling price per company",
			},
			[]string{"company", "ai"},
		),
		capacityUnits: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "company_capacity_units",
				Help:      "Available monthly capacity per company",
			},
			[]string{"company", "ai"},
		),
		profitCents: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "company_profit_cents",
				Help:      "Last month's profit per company",
			},
			[]string{"company", "ai"},
		),

		campaignStatus: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "campaign_status",
				Help:      "1 for the current campaign status, 0 otherwise",
			},
			[]string{"status"},
		),
		goalsDone: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "campaign_goals_done",
			Help:      "Number of campaign goals met",
		}),

		autosavesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "autosaves_total",
				Help:      "Autosave attempts by status",
			},
			[]string{"status"},
		),
	}
}

// Register registers all simulation metrics with the Prometheus registry
func (c *SimulationMetricsCollector) Register() error {
	if Registry == nil {
		return nil // Metrics not enabled
	}

	metrics := []prometheus.Collector{
		c.ticksTotal,
		c.monthsSimulated,
		c.monthIndex,
		c.diagnostics,
		c.eventsFired,
		c.productsRelease,
		c.cashCents,
		c.share,
		c.aspCents,
		c.capacityUnits,
		c.profitCents,
		c.campaignStatus,
		c.goalsDone,
		c.autosavesTotal,
	}

	for _, metric := range metrics {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}

	return nil
}

// RecordTick updates every gauge from the post-tick summary
func (c *SimulationMetricsCollector) RecordTick(summary *dtos.StateSummary, report simulation.Report) {
	c.ticksTotal.Inc()
	c.monthsSimulated.Add(float64(report.Months))
	c.monthIndex.Set(float64(summary.MonthIndex))

	for _, d := range report.Diagnostics {
		c.diagnostics.WithLabelValues(string(d.Kind)).Inc()
	}
	for _, id := range report.Fired {
		c.eventsFired.WithLabelValues(id).Inc()
	}
	for _, id := range report.Released {
		c.productsRelease.WithLabelValues(id).Inc()
	}

	for _, co := range summary.Companies {
		ai := "false"
		if co.AI {
			ai = "true"
		}
		c.cashCents.WithLabelValues(co.ID, ai).Set(float64(co.CashCents))
		c.share.WithLabelValues(co.ID, ai).Set(co.Share)
		c.aspCents.WithLabelValues(co.ID, ai).Set(float64(co.ASPCents))
		c.capacityUnits.WithLabelValues(co.ID, ai).Set(float64(co.CapacityUnits))
		c.profitCents.WithLabelValues(co.ID, ai).Set(float64(co.ProfitCents))
	}

	if summary.Campaign != nil {
		c.campaignStatus.Reset()
		c.campaignStatus.WithLabelValues(summary.Campaign.Status).Set(1)
		c.goalsDone.Set(float64(summary.Campaign.DoneCount))
	}
}

// RecordAutosave counts an autosave attempt
func (c *SimulationMetricsCollector) RecordAutosave(success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	c.autosavesTotal.WithLabelValues(status).Inc()
}
