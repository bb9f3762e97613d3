package ledger

import "fmt"

// Category groups entry types for P&L reporting
type Category string

const (
	// CategorySales represents income from units sold
	CategorySales Category = "SALES"

	// CategoryManufacturing represents unit costs and foundry billing
	CategoryManufacturing Category = "MANUFACTURING"

	// CategoryResearch represents R&D spend and tape-out expedites
	CategoryResearch Category = "RESEARCH"

	// CategoryOther represents scenario adjustments
	CategoryOther Category = "OTHER"
)

// AllCategories returns all valid categories
func AllCategories() []Category {
	return []Category{
		CategorySales,
		CategoryManufacturing,
		CategoryResearch,
		CategoryOther,
	}
}

// TypeToCategoryMap maps entry types to their categories
var TypeToCategoryMap = map[EntryType]Category{
	EntryTypeRevenue:      CategorySales,
	EntryTypeCOGS:         CategoryManufacturing,
	EntryTypeContractCost: CategoryManufacturing,
	EntryTypeRD:           CategoryResearch,
	EntryTypeExpedite:     CategoryResearch,
	EntryTypeAdjustment:   CategoryOther,
}

// String returns the string representation of the Category
func (c Category) String() string {
	return string(c)
}

// IsValid checks if the category is valid
func (c Category) IsValid() bool {
	switch c {
	case CategorySales,
		CategoryManufacturing,
		CategoryResearch,
		CategoryOther:
		return true
	default:
		return false
	}
}

// IsIncome returns true if the category represents income
func (c Category) IsIncome() bool {
	return c == CategorySales
}

// ParseCategory parses a string into a Category
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.IsValid() {
		return "", fmt.Errorf("invalid category: %s", s)
	}
	return c, nil
}
