package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestVAT(t *testing.T) {
	tests := []struct {
		name     string
		subtotal string
		tax      string
		total    string
	}{
		{"booking of 500", "500", "75", "575"},
		{"booking of 300", "300", "45", "345"},
		{"half cent rounds up", "0.10", "0.02", "0.12"},
		{"sub cent fraction", "33.33", "5", "38.33"},
		{"odd subtotal", "1234.57", "185.19", "1419.76"},
		{"zero", "0", "0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tax, total := VAT(d(tt.subtotal))
			assert.True(t, d(tt.tax).Equal(tax), "tax: want %s got %s", tt.tax, tax)
			assert.True(t, d(tt.total).Equal(total), "total: want %s got %s", tt.total, total)
			assert.True(t, total.Equal(Round(d(tt.subtotal)).Add(tax)))
		})
	}
}

func TestWithinTolerance(t *testing.T) {
	assert.True(t, WithinTolerance(d("300"), d("300.00")))
	assert.True(t, WithinTolerance(d("300"), d("300.01")))
	assert.False(t, WithinTolerance(d("300"), d("300.02")))
	assert.False(t, WithinTolerance(d("300"), d("1")))
}

func TestHalalas(t *testing.T) {
	assert.Equal(t, int64(57500), ToHalalas(d("575")))
	assert.Equal(t, int64(1999), ToHalalas(d("19.99")))
	assert.True(t, d("575").Equal(FromHalalas(57500)))
	assert.True(t, d("0.05").Equal(FromHalalas(5)))
}
