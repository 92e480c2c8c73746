package validation

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	xerrors "adscreen-service/internal/pkg/errors"
	"adscreen-service/internal/pkg/i18n"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Email     string          `json:"email" binding:"required,email" validate:"required,email"`
	Price     decimal.Decimal `json:"price" validate:"dec_gt0"`
	Opens     string          `json:"opens" validate:"omitempty,clock"`
	StartDate time.Time       `json:"start_date" validate:"required"`
	EndDate   time.Time       `json:"end_date" validate:"required,gtefield=StartDate"`
	Kind      string          `json:"kind" validate:"omitempty,oneof=image video"`
}

func newValidator(t *testing.T) *validator.Validate {
	t.Helper()
	v := validator.New()
	require.NoError(t, Configure(v))
	return v
}

func TestFromBindError_FieldMessages(t *testing.T) {
	v := newValidator(t)
	now := time.Now()

	err := v.Struct(sampleRequest{
		Email:     "not-an-email",
		Price:     decimal.Zero,
		Opens:     "25:00",
		StartDate: now,
		EndDate:   now.Add(-time.Hour),
		Kind:      "audio",
	})
	require.Error(t, err)

	var verr *xerrors.ValidationError
	require.True(t, errors.As(FromBindError(err), &verr))

	assert.Equal(t, i18n.FieldEmail, verr.Fields["email"])
	assert.Equal(t, i18n.FieldMin, verr.Fields["price"])
	assert.Equal(t, i18n.FieldInvalid, verr.Fields["opens"])
	assert.Equal(t, i18n.FieldDateOrder, verr.Fields["end_date"])
	assert.Equal(t, i18n.FieldOneOf, verr.Fields["kind"])
}

func TestFromBindError_ValidStruct(t *testing.T) {
	v := newValidator(t)
	now := time.Now()

	err := v.Struct(sampleRequest{
		Email:     "merchant@example.com",
		Price:     decimal.NewFromInt(100),
		Opens:     "08:30",
		StartDate: now,
		EndDate:   now.Add(24 * time.Hour),
	})
	assert.NoError(t, err)
}

func TestFromBindError_UnknownField(t *testing.T) {
	dec := json.NewDecoder(strings.NewReader(`{"email":"a@b.co","total_cost":"1"}`))
	dec.DisallowUnknownFields()

	var req struct {
		Email string `json:"email"`
	}
	err := dec.Decode(&req)
	require.Error(t, err)

	var verr *xerrors.ValidationError
	require.True(t, errors.As(FromBindError(err), &verr))
	assert.Equal(t, i18n.FieldUnknown, verr.Fields["total_cost"])
}

func TestFromBindError_EmptyBodyAndTypeErrors(t *testing.T) {
	var verr *xerrors.ValidationError

	require.True(t, errors.As(FromBindError(io.EOF), &verr))
	assert.Equal(t, i18n.FieldRequired, verr.Fields["body"])

	var req struct {
		Screens int `json:"number_of_screens"`
	}
	err := json.Unmarshal([]byte(`{"number_of_screens":"two"}`), &req)
	require.Error(t, err)
	require.True(t, errors.As(FromBindError(err), &verr))
	assert.Equal(t, i18n.FieldInvalid, verr.Fields["number_of_screens"])

	assert.True(t, errors.Is(FromBindError(err), xerrors.ErrInvalidInput))
	assert.Nil(t, FromBindError(nil))
}
