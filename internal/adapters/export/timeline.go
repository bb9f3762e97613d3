package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/andrescamacho/fabtycoon-go/internal/domain/simulation"
)

// Format of an exported timeline
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// IsValid checks if the format is supported
func (f Format) IsValid() bool {
	return f == FormatJSON || f == FormatCSV
}

// ParseFormat parses a format name, defaulting the empty string to JSON
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return FormatJSON, nil
	}
	f := Format(strings.ToLower(s))
	if !f.IsValid() {
		return "", fmt.Errorf("unsupported export format: %s", s)
	}
	return f, nil
}

// FormatFromPath infers the format from a file extension
func FormatFromPath(path string) (Format, bool) {
	f := Format(strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."))
	return f, f.IsValid()
}

var csvHeader = []string{
	"month", "company_id", "demand_units", "capacity_units", "produced_units", "sold_units",
	"inventory_units", "asp_cents", "unit_cost_cents", "revenue_cents", "cogs_cents",
	"contract_cost_cents", "rd_cents", "expedite_cents", "adjustment_cents", "profit_cents",
	"cash_cents", "share", "campaign_status", "events",
}

// WriteTimeline encodes rows to w
func WriteTimeline(w io.Writer, format Format, rows []simulation.TimelineRow) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if rows == nil {
			rows = []simulation.TimelineRow{}
		}
		return enc.Encode(rows)
	case FormatCSV:
		cw := csv.NewWriter(w)
		if err := cw.Write(csvHeader); err != nil {
			return err
		}
		for _, r := range rows {
			if err := cw.Write(csvRecord(r)); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	default:
		return fmt.Errorf("unsupported export format: %s", format)
	}
}

// WriteTimelineFile writes rows to path, creating parent directories
func WriteTimelineFile(path string, format Format, rows []simulation.TimelineRow) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create export directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	if err := WriteTimeline(f, format, rows); err != nil {
		f.Close()
		return fmt.Errorf("failed to write timeline: %w", err)
	}
	return f.Close()
}

func csvRecord(r simulation.TimelineRow) []string {
	k := r.KPIs
	i := func(v int64) string { return strconv.FormatInt(v, 10) }
	return []string{
		r.Month.String(), r.CompanyID, i(k.DemandUnits), i(k.CapacityUnits), i(k.ProducedUnits), i(k.SoldUnits),
		i(k.InventoryUnits), i(k.ASPCents), i(k.UnitCostCents), i(k.RevenueCents), i(k.COGSCents),
		i(k.ContractCostCents), i(k.RDCents), i(k.ExpediteCents), i(k.AdjustmentCents), i(k.ProfitCents),
		i(k.CashCents), strconv.FormatFloat(k.Share, 'f', 6, 64), string(r.CampaignStatus), strings.Join(r.Events, ";"),
	}
}
