package capacity_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/fabtycoon-go/internal/domain/capacity"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/shared"
)

var m0 = shared.NewMonth(1990, 1)

func terms() capacity.Terms {
	return capacity.Terms{
		FoundryID:          "tsmc",
		WafersPerMonth:     1000,
		PricePerWaferCents: 200_000,
		TakeOrPayFrac:      0.5,
		Billing:            capacity.BillingUsage,
		LeadTimeMonths:     3,
		DurationMonths:     12,
	}
}

func TestBook_CapacityArrivesAfterLeadTimeForContractDuration(t *testing.T) {
	// Arrange
	book := capacity.NewBook(0, 1)
	c, err := capacity.NewContract("c-1", m0, terms())
	require.NoError(t, err)

	// Act
	require.NoError(t, book.Request(c))

	// Assert
	for m := 0; m <= 2; m++ {
		assert.Equal(t, int64(0), book.Available(m0.AddMonths(m)), "month %d", m)
	}
	for m := 3; m <= 14; m++ {
		assert.Equal(t, int64(1000), book.Available(m0.AddMonths(m)), "month %d", m)
	}
	for m := 15; m <= 20; m++ {
		assert.Equal(t, int64(0), book.Available(m0.AddMonths(m)), "month %d", m)
	}
}

func TestBook_OverlappingContractsAreAdditive(t *testing.T) {
	book := capacity.NewBook(500, 2)
	a, _ := capacity.NewContract("a", m0, terms())
	b, _ := capacity.NewContract("b", m0.AddMonths(1), terms())
	require.NoError(t, book.Request(a))
	require.NoError(t, book.Request(b))

	assert.Equal(t, int64(500+2000), book.Available(m0.AddMonths(3)))
	assert.Equal(t, int64(500+4000), book.Available(m0.AddMonths(4)))
	assert.Equal(t, int64(4000), book.ContractUnits(m0.AddMonths(10)))
}

func TestBook_RejectsInvalidContractsWithoutMutation(t *testing.T) {
	tests := []struct {
		name     string
		contract capacity.Contract
		field    string
	}{
		{"zero wafers", capacity.Contract{WafersPerMonth: 0, Start: m0, End: m0.AddMonths(1), Billing: capacity.BillingFlat}, "wafers_per_month"},
		{"negative wafers", capacity.Contract{WafersPerMonth: -5, Start: m0, End: m0.AddMonths(1), Billing: capacity.BillingFlat}, "wafers_per_month"},
		{"inverted range", capacity.Contract{WafersPerMonth: 10, Start: m0.AddMonths(3), End: m0, Billing: capacity.BillingFlat}, "end"},
		{"empty range", capacity.Contract{WafersPerMonth: 10, Start: m0, End: m0, Billing: capacity.BillingFlat}, "end"},
		{"take or pay above one", capacity.Contract{WafersPerMonth: 10, Start: m0, End: m0.AddMonths(1), TakeOrPayFrac: 1.5, Billing: capacity.BillingFlat}, "take_or_pay_frac"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			book := capacity.NewBook(100, 1)

			err := book.Request(tt.contract)

			require.Error(t, err)
			assert.True(t, errors.Is(err, shared.ErrInvalidContractParameters))
			var ce *shared.InvalidContractError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tt.field, ce.Field)
			assert.Empty(t, book.Contracts)
			assert.Equal(t, int64(100), book.Available(m0))
		})
	}
}

func TestBook_ExpireDropsEndedContractsOnce(t *testing.T) {
	book := capacity.NewBook(0, 1)
	c, _ := capacity.NewContract("c-1", m0, terms())
	require.NoError(t, book.Request(c))

	assert.Empty(t, book.Expire(m0.AddMonths(14)))

	expired := book.Expire(m0.AddMonths(15))
	require.Len(t, expired, 1)
	assert.Equal(t, "c-1", expired[0].ID)

	assert.Empty(t, book.Expire(m0.AddMonths(15)))
	assert.Equal(t, int64(0), book.Available(m0.AddMonths(14)))
}

func TestBook_BillAppliesTakeOrPayFloor(t *testing.T) {
	// Arrange
	book := capacity.NewBook(100, 1)
	c, _ := capacity.NewContract("c-1", m0, terms())
	require.NoError(t, book.Request(c))
	active := m0.AddMonths(3)

	// Act
	idle := book.Bill(active, 50)
	partial := book.Bill(active, 100+800)
	overdrawn := book.Bill(active, 100+5000)
	before := book.Bill(m0, 5000)

	// Assert
	require.Len(t, idle, 1)
	assert.Equal(t, int64(500*200_000), idle[0].Cents)
	assert.Equal(t, int64(800*200_000), partial[0].Cents)
	assert.Equal(t, int64(1000*200_000), overdrawn[0].Cents)
	assert.Empty(t, before)
}

func TestBook_FlatBillingChargesFullVolume(t *testing.T) {
	book := capacity.NewBook(0, 1)
	tm := terms()
	tm.Billing = capacity.BillingFlat
	c, _ := capacity.NewContract("flat", m0, tm)
	require.NoError(t, book.Request(c))

	charges := book.Bill(m0.AddMonths(4), 0)

	assert.Equal(t, int64(1000*200_000), capacity.TotalCents(charges))
}

func TestBook_BillAllocatesOverflowInBookOrder(t *testing.T) {
	book := capacity.NewBook(0, 10)
	tm := terms()
	tm.TakeOrPayFrac = 0
	tm.WafersPerMonth = 10
	a, _ := capacity.NewContract("a", m0, tm)
	b, _ := capacity.NewContract("b", m0, tm)
	require.NoError(t, book.Request(a))
	require.NoError(t, book.Request(b))

	charges := book.Bill(m0.AddMonths(3), 145)

	require.Len(t, charges, 2)
	assert.Equal(t, int64(10), charges[0].UsedWafers)
	assert.Equal(t, int64(5), charges[1].UsedWafers)
}
