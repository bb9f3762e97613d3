package ledger

import "fmt"

// EntryType represents the kind of cash movement recorded in the journal
type EntryType string

const (
	// EntryTypeRevenue represents cash received for units sold
	EntryTypeRevenue EntryType = "REVENUE"

	// EntryTypeCOGS represents cash paid for manufactured units
	EntryTypeCOGS EntryType = "COGS"

	// EntryTypeContractCost represents foundry contract billing
	EntryTypeContractCost EntryType = "CONTRACT_COST"

	// EntryTypeRD represents the monthly R&D budget
	EntryTypeRD EntryType = "RD"

	// EntryTypeExpedite represents an expedited tape-out fee
	EntryTypeExpedite EntryType = "EXPEDITE"

	// EntryTypeAdjustment represents scenario cash shocks and other one-off movements
	EntryTypeAdjustment EntryType = "ADJUSTMENT"
)

// AllEntryTypes returns all valid entry types
func AllEntryTypes() []EntryType {
	return []EntryType{
		EntryTypeRevenue,
		EntryTypeCOGS,
		EntryTypeContractCost,
		EntryTypeRD,
		EntryTypeExpedite,
		EntryTypeAdjustment,
	}
}

// String returns the string representation of the EntryType
func (t EntryType) String() string {
	return string(t)
}

// IsValid checks if the entry type is valid
func (t EntryType) IsValid() bool {
	switch t {
	case EntryTypeRevenue,
		EntryTypeCOGS,
		EntryTypeContractCost,
		EntryTypeRD,
		EntryTypeExpedite,
		EntryTypeAdjustment:
		return true
	default:
		return false
	}
}

// ToCategory maps the entry type to its category
func (t EntryType) ToCategory() (Category, error) {
	category, exists := TypeToCategoryMap[t]
	if !exists {
		return "", fmt.Errorf("unknown entry type: %s", t)
	}
	return category, nil
}

// ParseEntryType parses a string into an EntryType
func ParseEntryType(s string) (EntryType, error) {
	t := EntryType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid entry type: %s", s)
	}
	return t, nil
}
