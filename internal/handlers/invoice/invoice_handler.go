// internal/handlers/invoice/invoice_handler.go
package invoice

import (
	"net/http"

	"adscreen-service/internal/domain/invoice"
	"adscreen-service/internal/middleware"
	"adscreen-service/internal/pkg/i18n"
	"adscreen-service/internal/pkg/request"
	"adscreen-service/internal/pkg/response"
	service "adscreen-service/internal/service/invoice"

	"github.com/gin-gonic/gin"
)

type InvoiceHandler struct {
	invoiceService *service.InvoiceService
}

func NewInvoiceHandler(invoiceService *service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// ListInvoices returns the caller's invoices; admins see every merchant.
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	p := middleware.MustGetPrincipal(c)

	var filters invoice.InvoiceListFilters
	if !request.BindQuery(c, &filters) {
		return
	}

	result, err := h.invoiceService.List(c.Request.Context(), p, &filters)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, i18n.MsgOK, result)
}

func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	p := middleware.MustGetPrincipal(c)
	id, ok := request.ParamID(c, "id")
	if !ok {
		return
	}

	result, err := h.invoiceService.Get(c.Request.Context(), p, id)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, i18n.MsgOK, result)
}

// GetQRCode streams the invoice QR as a PNG image.
func (h *InvoiceHandler) GetQRCode(c *gin.Context) {
	p := middleware.MustGetPrincipal(c)
	id, ok := request.ParamID(c, "id")
	if !ok {
		return
	}

	png, err := h.invoiceService.QRCode(c.Request.Context(), p, id)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	c.Header("Cache-Control", "private, max-age=300")
	c.Data(http.StatusOK, "image/png", png)
}
