package queries

import (
	"fmt"

	"github.com/andrescamacho/fabtycoon-go/internal/application/game"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/ledger"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/shared"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/simulation"
)

// period resolves an optional "YYYY-MM" range. An empty start means the campaign start
// and an empty end means the current month.
func period(s *simulation.State, start, end string) (shared.Month, shared.Month, error) {
	from, to := s.StartMonth, s.Month
	var err error
	if start != "" {
		if from, err = shared.ParseMonth(start); err != nil {
			return 0, 0, fmt.Errorf("invalid start month: %w", err)
		}
	}
	if end != "" {
		if to, err = shared.ParseMonth(end); err != nil {
			return 0, 0, fmt.Errorf("invalid end month: %w", err)
		}
	}
	if to.Before(from) {
		return 0, 0, shared.NewValidationError("end", "must not be before start")
	}
	return from, to, nil
}

// companyLedger returns the ledger of a company in the published view, defaulting to the
// player
func companyLedger(session *game.Session, companyID string) (*simulation.State, *ledger.Ledger, error) {
	view, err := session.View()
	if err != nil {
		return nil, nil, err
	}
	if companyID == "" {
		companyID = view.PlayerID
	}
	c, err := view.Company(companyID)
	if err != nil {
		return nil, nil, err
	}
	return view, &c.Ledger, nil
}
