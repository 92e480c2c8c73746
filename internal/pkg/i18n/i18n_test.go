package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNegotiate(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", "ar"},
		{"en-US,en;q=0.9", "en"},
		{"ar-SA,en;q=0.5", "ar"},
		{"fr-FR", "ar"},
		{"de", "ar"},
		{"ur-PK", "ar"},
		{"en-GB", "en"},
		{"en;q=0.2,ar;q=0.9", "ar"},
		{";;;", "ar"},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			got := Negotiate(tt.header)
			base, _ := got.Base()
			assert.Equal(t, tt.want, base.String())
		})
	}
}

func TestT(t *testing.T) {
	assert.Equal(t, "booking approved and invoice issued", T(English, MsgBookingApproved))
	assert.Equal(t, "تم رفض الحجز", T(Arabic, MsgBookingRejected))
	assert.Equal(t, "no_such_message", T(Arabic, "no_such_message"))
	assert.True(t, Has(FieldRequired))
	assert.False(t, Has("nope"))
}
