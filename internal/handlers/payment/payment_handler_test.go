package payment

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"adscreen-service/internal/domain/invoice"
	"adscreen-service/internal/domain/payment"
	xerrors "adscreen-service/internal/pkg/errors"
	"adscreen-service/internal/pkg/i18n"
	"adscreen-service/internal/pkg/validation"
	service "adscreen-service/internal/service/payment"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockProcessor struct{ mock.Mock }

func (m *mockProcessor) HandleCallback(ctx context.Context, req *payment.CallbackRequest) (*service.CallbackResult, error) {
	args := m.Called(ctx, req)
	r, _ := args.Get(0).(*service.CallbackResult)
	return r, args.Error(1)
}

const paidBody = `{
	"id": "evt_1",
	"type": "payment_paid",
	"secret_token": "whsec_test",
	"live": false,
	"unexpected_gateway_field": {"nested": true},
	"data": {
		"id": "pay_1",
		"status": "paid",
		"amount": 57500,
		"currency": "SAR",
		"captured_at": "2024-06-02T08:00:00Z",
		"metadata": {"invoice_id": "77"}
	}
}`

func post(t *testing.T, svc *mockProcessor, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, validation.Register())

	r := gin.New()
	r.POST("/api/payments/moyasar/callback", NewPaymentHandler(svc, zap.NewNop()).MoyasarCallback)

	req := httptest.NewRequest(http.MethodPost, "/api/payments/moyasar/callback", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestMoyasarCallback_ToleratesGatewayFields(t *testing.T) {
	svc := &mockProcessor{}
	svc.On("HandleCallback", mock.Anything, mock.MatchedBy(func(req *payment.CallbackRequest) bool {
		return req.Data.Amount == 57500 && req.Data.Metadata.InvoiceID == "77" && req.SecretToken == "whsec_test"
	})).Return(&service.CallbackResult{Outcome: service.OutcomePaid, Invoice: &invoice.Invoice{ID: 77}}, nil)

	w := post(t, svc, paidBody)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"outcome":"paid"`)
	svc.AssertExpectations(t)
}

func TestMoyasarCallback_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"bad secret", xerrors.ErrUnauthorized, http.StatusUnauthorized, i18n.MsgUnauthorized},
		{"amount mismatch", xerrors.NewValidationError("data.amount", i18n.FieldInvalid), http.StatusBadRequest, i18n.MsgValidationFailed},
		{"unknown invoice", fmt.Errorf("invoice 77: %w", xerrors.ErrNotFound), http.StatusNotFound, i18n.MsgNotFound},
		{"cancelled invoice", fmt.Errorf("invoice 77 is cancelled: %w", xerrors.ErrInvalidState), http.StatusConflict, i18n.MsgInvalidState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockProcessor{}
			svc.On("HandleCallback", mock.Anything, mock.Anything).Return(nil, tt.err)

			w := post(t, svc, paidBody)
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), `"code":"`+tt.code+`"`)
		})
	}
}

func TestMoyasarCallback_MissingPaymentObject(t *testing.T) {
	svc := &mockProcessor{}

	w := post(t, svc, `{"id":"evt_1","type":"payment_paid","secret_token":"whsec_test","data":{"status":"paid"}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "HandleCallback", mock.Anything, mock.Anything)
}
