package invoice

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"adscreen-service/internal/domain/auth"
	"adscreen-service/internal/domain/invoice"

	"github.com/skip2/go-qrcode"
)

// QRSize is the edge length of the generated PNG in pixels.
const QRSize = 256

// TLV tags of the simplified e-invoice QR payload.
const (
	tagSeller    byte = 1
	tagVATNumber byte = 2
	tagTimestamp byte = 3
	tagTotal     byte = 4
	tagVAT       byte = 5
)

// QRPayload encodes seller name, VAT number, issue timestamp, total and VAT
// as base64 of tag-length-value records.
func QRPayload(seller Seller, inv *invoice.Invoice) (string, error) {
	fields := []struct {
		tag   byte
		value string
	}{
		{tagSeller, seller.Name},
		{tagVATNumber, seller.VATNumber},
		{tagTimestamp, inv.IssueDate.UTC().Format(time.RFC3339)},
		{tagTotal, inv.TotalAmount.StringFixed(2)},
		{tagVAT, inv.TaxAmount.StringFixed(2)},
	}

	var buf []byte
	for _, f := range fields {
		if len(f.value) > 255 {
			return "", fmt.Errorf("qr field %d exceeds 255 bytes", f.tag)
		}
		buf = append(buf, f.tag, byte(len(f.value)))
		buf = append(buf, f.value...)
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}

// QRCode renders the invoice QR as a PNG for its owner or an admin.
func (s *InvoiceService) QRCode(ctx context.Context, actor auth.Principal, id int64) ([]byte, error) {
	inv, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	payload, err := QRPayload(s.seller, inv)
	if err != nil {
		return nil, err
	}

	q, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("failed to build qr code: %w", err)
	}
	png, err := q.PNG(QRSize)
	if err != nil {
		return nil, fmt.Errorf("failed to render qr code: %w", err)
	}
	return png, nil
}
