package campaign

import "github.com/andrescamacho/fabtycoon-go/internal/domain/shared"

// Tutorial step ids
const (
	StepPriceCut        = "price_cut"
	StepFoundryContract = "foundry_contract"
	StepTapeoutExpedite = "tapeout_expedite"
	StepPositiveCash24M = "positive_cash_24m"
)

// TutorialStep is one guided objective of the tutorial scenario
type TutorialStep struct {
	ID   string `json:"id"`
	Desc string `json:"desc"`
	Hint string `json:"hint"`
	Done bool   `json:"done"`
}

// Tutorial tracks the guided steps of a tutorial campaign
type Tutorial struct {
	Enabled            bool           `json:"enabled"`
	CashThresholdCents int64          `json:"cash_threshold_cents"`
	Steps              []TutorialStep `json:"steps"`
}

// Complete marks a step as done. Unknown ids are ignored.
func (t *Tutorial) Complete(id string) {
	if t == nil || !t.Enabled {
		return
	}
	for i := range t.Steps {
		if t.Steps[i].ID == id {
			t.Steps[i].Done = true
		}
	}
}

// ObserveCash completes the positive-cash step once 24 months have elapsed with cash
// above the threshold
func (t *Tutorial) ObserveCash(start, now shared.Month, cashCents int64) {
	if t == nil || !t.Enabled {
		return
	}
	if now.Sub(start) >= 24 && cashCents > t.CashThresholdCents {
		t.Complete(StepPositiveCash24M)
	}
}

// Current returns the first unfinished step
func (t *Tutorial) Current() (TutorialStep, int, bool) {
	if t == nil || !t.Enabled {
		return TutorialStep{}, -1, false
	}
	for i, s := range t.Steps {
		if !s.Done {
			return s, i, true
		}
	}
	return TutorialStep{}, len(t.Steps), false
}

// Clone returns a deep copy
func (t *Tutorial) Clone() *Tutorial {
	if t == nil {
		return nil
	}
	c := *t
	c.Steps = append([]TutorialStep(nil), t.Steps...)
	return &c
}
