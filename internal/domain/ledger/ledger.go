package ledger

import (
	"fmt"
	"sort"

	"github.com/andrescamacho/fabtycoon-go/internal/domain/shared"
)

// JournalCapacity bounds the number of entries kept in a snapshot; older entries roll off.
// Reports and reconciliation read Totals and the running counters, never the journal.
const JournalCapacity = 360

// Config holds the posting lag of each accrual kind, in days.
// A lag of 0 posts cash in the same month.
type Config struct {
	RevenueLagDays int `json:"revenue_lag_days"`
	COGSLagDays    int `json:"cogs_lag_days"`
	RDLagDays      int `json:"rd_lag_days"`
}

// Validate checks that no lag is negative
func (c Config) Validate() error {
	if c.RevenueLagDays < 0 || c.COGSLagDays < 0 || c.RDLagDays < 0 {
		return shared.NewValidationError("finance", "lag days cannot be negative")
	}
	return nil
}

func (c Config) lagMonths(t EntryType) int {
	switch t {
	case EntryTypeRevenue:
		return shared.DaysToMonths(c.RevenueLagDays)
	case EntryTypeCOGS:
		return shared.DaysToMonths(c.COGSLagDays)
	case EntryTypeRD:
		return shared.DaysToMonths(c.RDLagDays)
	default:
		return 0
	}
}

// Accruals are the P&L amounts of one month, all non-negative cents
type Accruals struct {
	RevenueCents      int64 `json:"revenue_cents"`
	COGSCents         int64 `json:"cogs_cents"`
	ContractCostCents int64 `json:"contract_cost_cents"`
	RDCents           int64 `json:"rd_cents"`
	ExpediteCents     int64 `json:"expedite_cents"`
	AdjustmentCents   int64 `json:"adjustment_cents"`
}

// Profit returns revenue minus every cost plus adjustments
func (a Accruals) Profit() int64 {
	return a.RevenueCents - a.COGSCents - a.ContractCostCents - a.RDCents - a.ExpediteCents + a.AdjustmentCents
}

// MonthTotal is the cash moved in one category during one month. Totals never roll off.
type MonthTotal struct {
	Month        shared.Month `json:"month"`
	Category     Category     `json:"category"`
	InflowCents  int64        `json:"inflow_cents"`
	OutflowCents int64        `json:"outflow_cents"`
	Entries      int          `json:"entries"`
}

// NetCents returns inflow minus outflow
func (t MonthTotal) NetCents() int64 {
	return t.InflowCents - t.OutflowCents
}

// PendingPayment is an accrual waiting for its settlement month
type PendingPayment struct {
	Seq         int64        `json:"seq"`
	SettleAt    shared.Month `json:"settle_at"`
	AccruedAt   shared.Month `json:"accrued_at"`
	Type        EntryType    `json:"type"`
	AmountCents int64        `json:"amount_cents"`
}

// MonthResult summarizes one ApplyMonth call
type MonthResult struct {
	Month        shared.Month `json:"month"`
	OpeningCash  int64        `json:"opening_cash"`
	ClosingCash  int64        `json:"closing_cash"`
	CashDelta    int64        `json:"cash_delta"`
	Accruals     Accruals     `json:"accruals"`
	SettledCount int          `json:"settled_count"`
}

// Ledger is the cash account of one company
type Ledger struct {
	Owner  string `json:"owner"`
	Config Config `json:"config"`

	CashCents        int64 `json:"cash_cents"`
	InitialCashCents int64 `json:"initial_cash_cents"`
	OpeningCashCents int64 `json:"opening_cash_cents"`
	ProfitCents      int64 `json:"profit_cents"`

	// charged directly during the open month, reported by the next ApplyMonth
	PrepaidExpediteCents int64 `json:"prepaid_expedite_cents"`
	AdjustmentCents      int64 `json:"adjustment_cents"`

	Pending []PendingPayment `json:"pending,omitempty"`
	Journal []*Entry         `json:"journal,omitempty"`
	Totals  []MonthTotal     `json:"totals,omitempty"` // ordered by month, then first posting
	Seq     int64            `json:"seq"`
}

// New creates a ledger holding openingCash
func New(owner string, openingCash int64, cfg Config) *Ledger {
	return &Ledger{
		Owner:            owner,
		Config:           cfg,
		CashCents:        openingCash,
		InitialCashCents: openingCash,
		OpeningCashCents: openingCash,
	}
}

// Charge debits cash immediately. It fails with shared.InsufficientCashError, leaving the
// ledger untouched, when cash does not cover the amount.
func (l *Ledger) Charge(t EntryType, cents int64, m shared.Month, memo string) error {
	if cents <= 0 {
		return nil
	}
	if cents > l.CashCents {
		return shared.NewInsufficientCashError(cents, l.CashCents)
	}
	if err := l.post(t, -cents, m, m, memo); err != nil {
		return err
	}
	l.ProfitCents -= cents
	if t == EntryTypeExpedite {
		l.PrepaidExpediteCents += cents
	} else {
		l.AdjustmentCents -= cents
	}
	return nil
}

// Adjust posts a signed one-off movement (scenario cash shocks). Cash may go negative.
func (l *Ledger) Adjust(cents int64, m shared.Month, memo string) error {
	if cents == 0 {
		return nil
	}
	if err := l.post(EntryTypeAdjustment, cents, m, m, memo); err != nil {
		return err
	}
	l.ProfitCents += cents
	l.AdjustmentCents += cents
	return nil
}

// Account binds the ledger to an entry type and month so other packages can debit it
func (l *Ledger) Account(t EntryType, m shared.Month) *Account {
	return &Account{ledger: l, entryType: t, month: m}
}

// ApplyMonth books the accruals of month m and settles every pending payment due at m.
//
// Each accrual is posted now when its lag is zero, otherwise queued until m + lag.
// Settlement runs in (SettleAt, Seq) order. Expedite fees already charged through Charge
// during the month are reported but not posted twice. With all lags at zero:
//
//	closing - opening == revenue - cogs - contract - rd - expedite + adjustments
func (l *Ledger) ApplyMonth(a Accruals, m shared.Month) (MonthResult, error) {
	if a.RevenueCents < 0 || a.COGSCents < 0 || a.ContractCostCents < 0 || a.RDCents < 0 || a.ExpediteCents < 0 {
		return MonthResult{}, &ErrInvalidEntry{Field: "accruals", Reason: "accrual amounts cannot be negative"}
	}

	settled, err := l.settle(m)
	if err != nil {
		return MonthResult{}, err
	}

	unpaidExpedite := a.ExpediteCents - l.PrepaidExpediteCents
	if unpaidExpedite < 0 {
		unpaidExpedite = 0
	}

	bookings := []struct {
		t      EntryType
		amount int64
		memo   string
	}{
		{EntryTypeRevenue, a.RevenueCents, "unit sales"},
		{EntryTypeCOGS, -a.COGSCents, "cost of goods sold"},
		{EntryTypeContractCost, -a.ContractCostCents, "foundry contracts"},
		{EntryTypeRD, -a.RDCents, "R&D budget"},
		{EntryTypeExpedite, -unpaidExpedite, "expedite fees"},
	}
	for _, b := range bookings {
		if err := l.book(b.t, b.amount, m, b.memo); err != nil {
			return MonthResult{}, err
		}
	}

	l.ProfitCents += a.RevenueCents - a.COGSCents - a.ContractCostCents - a.RDCents - unpaidExpedite

	reported := a
	reported.ExpediteCents = l.PrepaidExpediteCents + unpaidExpedite
	reported.AdjustmentCents = l.AdjustmentCents

	result := MonthResult{
		Month:        m,
		OpeningCash:  l.OpeningCashCents,
		ClosingCash:  l.CashCents,
		CashDelta:    l.CashCents - l.OpeningCashCents,
		Accruals:     reported,
		SettledCount: settled,
	}

	l.OpeningCashCents = l.CashCents
	l.PrepaidExpediteCents = 0
	l.AdjustmentCents = 0
	return result, nil
}

// PendingNet returns the signed sum of unsettled payments
func (l *Ledger) PendingNet() int64 {
	var total int64
	for _, p := range l.Pending {
		total += p.AmountCents
	}
	return total
}

// Reconcile checks cash against profit: (cash - initial) + pending == cumulative profit.
// A gap larger than toleranceCents is returned as a *DriftError.
func (l *Ledger) Reconcile(toleranceCents int64) error {
	cashDelta := l.CashCents - l.InitialCashCents
	pending := l.PendingNet()
	drift := cashDelta + pending - l.ProfitCents
	abs := drift
	if abs < 0 {
		abs = -abs
	}
	if abs > toleranceCents {
		return &DriftError{
			CashDelta:  cashDelta,
			PendingNet: pending,
			Profit:     l.ProfitCents,
			DriftCents: drift,
			Tolerance:  toleranceCents,
		}
	}
	return nil
}

// ProfitAndLoss sums the net cash of each category that moved in [from, to]
func (l *Ledger) ProfitAndLoss(from, to shared.Month) map[Category]int64 {
	totals := make(map[Category]int64, len(AllCategories()))
	for _, t := range l.TotalsBetween(from, to) {
		totals[t.Category] += t.NetCents()
	}
	return totals
}

// TotalsBetween returns the monthly category totals in [from, to], in month order
func (l *Ledger) TotalsBetween(from, to shared.Month) []MonthTotal {
	var out []MonthTotal
	for _, t := range l.Totals {
		if t.Month.Before(from) || t.Month.After(to) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Clone returns a copy that shares immutable journal entries but no mutable state
func (l Ledger) Clone() Ledger {
	l.Pending = append([]PendingPayment(nil), l.Pending...)
	l.Journal = append([]*Entry(nil), l.Journal...)
	l.Totals = append([]MonthTotal(nil), l.Totals...)
	return l
}

func (l *Ledger) book(t EntryType, amount int64, m shared.Month, memo string) error {
	if amount == 0 {
		return nil
	}
	lag := l.Config.lagMonths(t)
	if lag == 0 {
		return l.post(t, amount, m, m, memo)
	}

	l.Seq++
	l.Pending = append(l.Pending, PendingPayment{
		Seq:         l.Seq,
		SettleAt:    m.AddMonths(lag),
		AccruedAt:   m,
		Type:        t,
		AmountCents: amount,
	})
	sort.SliceStable(l.Pending, func(i, j int) bool {
		if l.Pending[i].SettleAt != l.Pending[j].SettleAt {
			return l.Pending[i].SettleAt < l.Pending[j].SettleAt
		}
		return l.Pending[i].Seq < l.Pending[j].Seq
	})
	return nil
}

func (l *Ledger) settle(m shared.Month) (int, error) {
	n := 0
	for n < len(l.Pending) && !l.Pending[n].SettleAt.After(m) {
		p := l.Pending[n]
		if err := l.post(p.Type, p.AmountCents, m, p.AccruedAt, fmt.Sprintf("settlement of %s accrued %s", p.Type, p.AccruedAt)); err != nil {
			return 0, err
		}
		n++
	}
	l.Pending = append([]PendingPayment(nil), l.Pending[n:]...)
	return n, nil
}

func (l *Ledger) post(t EntryType, amount int64, m, accruedAt shared.Month, memo string) error {
	l.Seq++
	entry, err := NewEntry(NewEntryID(l.Owner, l.Seq), m, accruedAt, t, amount, l.CashCents, l.CashCents+amount, memo)
	if err != nil {
		return fmt.Errorf("failed to post %s entry: %w", t, err)
	}

	l.CashCents = entry.BalanceAfter()
	l.Journal = append(l.Journal, entry)
	if over := len(l.Journal) - JournalCapacity; over > 0 {
		l.Journal = append([]*Entry(nil), l.Journal[over:]...)
	}
	l.accumulate(entry)
	return nil
}

// accumulate adds an entry to its month total. Postings never go back in time, so only
// the trailing run of the current month is searched.
func (l *Ledger) accumulate(e *Entry) {
	idx := -1
	for i := len(l.Totals) - 1; i >= 0 && l.Totals[i].Month == e.Month(); i-- {
		if l.Totals[i].Category == e.Category() {
			idx = i
			break
		}
	}
	if idx < 0 {
		l.Totals = append(l.Totals, MonthTotal{Month: e.Month(), Category: e.Category()})
		idx = len(l.Totals) - 1
	}

	t := &l.Totals[idx]
	t.Entries++
	if e.Amount() > 0 {
		t.InflowCents += e.Amount()
	} else {
		t.OutflowCents += -e.Amount()
	}
}

// Account debits one entry type in one month. It satisfies the pipeline Debiter port.
type Account struct {
	ledger    *Ledger
	entryType EntryType
	month     shared.Month
}

// Debit charges the ledger, failing atomically on insufficient cash
func (a *Account) Debit(cents int64, memo string) error {
	return a.ledger.Charge(a.entryType, cents, a.month, memo)
}
