package ingestion

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveRevenue(t *testing.T) {
	stale := decimal.NewFromInt(999)
	frame := &Frame{Rows: []Row{
		{Quantity: decimal.NewFromInt(3), UnitPrice: decimal.RequireFromString("19.99")},
		{Quantity: decimal.NewFromInt(0), UnitPrice: decimal.RequireFromString("5")},
		{Quantity: decimal.NewFromInt(7), UnitPrice: decimal.RequireFromString("0.1"), TotalRevenue: &stale},
	}}

	got := DeriveRevenue(frame)

	require.Same(t, frame, got)
	assert.Equal(t, "59.97", got.Rows[0].TotalRevenue.String())
	assert.True(t, got.Rows[1].TotalRevenue.IsZero())
	assert.Equal(t, "0.7", got.Rows[2].TotalRevenue.String())
}

func TestDeriveRevenue_NilFrame(t *testing.T) {
	assert.Nil(t, DeriveRevenue(nil))
}
