package simulation

import (
	"github.com/andrescamacho/fabtycoon-go/internal/domain/campaign"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/shared"
)

// DiagnosticKind classifies a non-fatal observation made while ticking
type DiagnosticKind string

const (
	DiagnosticInfo     DiagnosticKind = "INFO"
	DiagnosticEvent    DiagnosticKind = "EVENT"
	DiagnosticPlanner  DiagnosticKind = "PLANNER"
	DiagnosticDecision DiagnosticKind = "DECISION"
	DiagnosticRelease  DiagnosticKind = "RELEASE"
	DiagnosticDrift    DiagnosticKind = "DRIFT"
)

// Diagnostic is a non-fatal message attached to a month and, optionally, a company
type Diagnostic struct {
	Month     shared.Month   `json:"month"`
	CompanyID string         `json:"company_id,omitempty"`
	Kind      DiagnosticKind `json:"kind"`
	Message   string         `json:"message"`
}

// Report summarizes one Advance call
type Report struct {
	StartMonth       shared.Month    `json:"start_month"`
	EndMonth         shared.Month    `json:"end_month"`
	Months           int             `json:"months"`
	CampaignTerminal bool            `json:"campaign_terminal"`
	CampaignStatus   campaign.Status `json:"campaign_status,omitempty"`
	Fired            []string        `json:"fired,omitempty"`
	Released         []string        `json:"released,omitempty"`
	Diagnostics      []Diagnostic    `json:"diagnostics,omitempty"`
}

func (r *Report) diagnose(m shared.Month, companyID string, kind DiagnosticKind, msg string) {
	r.Diagnostics = append(r.Diagnostics, Diagnostic{Month: m, CompanyID: companyID, Kind: kind, Message: msg})
}

// HasDrift reports whether any ledger failed reconciliation
func (r Report) HasDrift() bool {
	for _, d := range r.Diagnostics {
		if d.Kind == DiagnosticDrift {
			return true
		}
	}
	return false
}
