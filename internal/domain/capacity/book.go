package capacity

import (
	"github.com/andrescamacho/fabtycoon-go/internal/domain/shared"
)

// Book is the ordered set of foundry contracts held by one company.
// Capacity is additive: overlapping contracts each contribute their full volume.
type Book struct {
	BaseUnits     int64      `json:"base_units"`
	UnitsPerWafer int64      `json:"units_per_wafer"`
	Contracts     []Contract `json:"contracts,omitempty"`
}

// Charge is the bill of one contract for one month
type Charge struct {
	ContractID string `json:"contract_id"`
	FoundryID  string `json:"foundry_id"`
	UsedWafers int64  `json:"used_wafers"`
	Cents      int64  `json:"cents"`
}

// NewBook creates a book with in-house base capacity
func NewBook(baseUnits, unitsPerWafer int64) *Book {
	return &Book{BaseUnits: baseUnits, UnitsPerWafer: unitsPerWafer}
}

func (b *Book) unitsPerWafer() int64 {
	if b.UnitsPerWafer <= 0 {
		return 1
	}
	return b.UnitsPerWafer
}

// Request validates a contract and appends it. Rejected contracts leave the book unchanged.
func (b *Book) Request(c Contract) error {
	if err := c.Validate(); err != nil {
		return err
	}
	b.Contracts = append(b.Contracts, c)
	return nil
}

// Available returns total units that can be produced in month m
func (b *Book) Available(m shared.Month) int64 {
	total := b.BaseUnits
	upw := b.unitsPerWafer()
	for _, c := range b.Contracts {
		if c.ActiveAt(m) {
			total += c.WafersPerMonth * upw
		}
	}
	return total
}

// ContractUnits returns the capacity contributed by contracts alone in month m
func (b *Book) ContractUnits(m shared.Month) int64 {
	return b.Available(m) - b.BaseUnits
}

// Expire drops every contract whose end is at or before m and returns them
func (b *Book) Expire(m shared.Month) []Contract {
	var expired []Contract
	kept := make([]Contract, 0, len(b.Contracts))
	for _, c := range b.Contracts {
		if !c.End.After(m) {
			expired = append(expired, c)
			continue
		}
		kept = append(kept, c)
	}
	b.Contracts = kept
	return expired
}

// Bill charges every active contract for month m. Production beyond base capacity is
// allocated to contracts in book order; usage-billed contracts pay for at least their
// take-or-pay commitment.
func (b *Book) Bill(m shared.Month, producedUnits int64) []Charge {
	upw := b.unitsPerWafer()
	overflow := producedUnits - b.BaseUnits
	if overflow < 0 {
		overflow = 0
	}

	var charges []Charge
	for _, c := range b.Contracts {
		if !c.ActiveAt(m) {
			continue
		}

		capUnits := c.WafersPerMonth * upw
		used := overflow
		if used > capUnits {
			used = capUnits
		}
		overflow -= used

		usedWafers := (used + upw - 1) / upw
		charges = append(charges, Charge{
			ContractID: c.ID,
			FoundryID:  c.FoundryID,
			UsedWafers: usedWafers,
			Cents:      c.MonthlyCost(usedWafers),
		})
	}
	return charges
}

// TotalCents sums a set of charges
func TotalCents(charges []Charge) int64 {
	var total int64
	for _, ch := range charges {
		total += ch.Cents
	}
	return total
}

// Clone returns a deep copy
func (b Book) Clone() Book {
	b.Contracts = append([]Contract(nil), b.Contracts...)
	return b
}
