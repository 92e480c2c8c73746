// internal/handlers/booking/booking_handler.go
package booking

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"adscreen-service/internal/domain/auth"
	"adscreen-service/internal/domain/booking"
	"adscreen-service/internal/domain/invoice"
	"adscreen-service/internal/middleware"
	xerrors "adscreen-service/internal/pkg/errors"
	"adscreen-service/internal/pkg/i18n"
	"adscreen-service/internal/pkg/request"
	"adscreen-service/internal/pkg/response"
	"adscreen-service/internal/pkg/validation"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const mediaField = "media"

// MediaStore persists uploaded creatives.
type MediaStore interface {
	SaveMedia(r io.Reader, field string, allowVideo bool) (*booking.Media, error)
	Remove(url string)
}

// BookingUsecase is the booking service as seen by the HTTP layer.
type BookingUsecase interface {
	CheckAvailability(ctx context.Context, req *booking.AvailabilityRequest) (*booking.Availability, error)
	Create(ctx context.Context, merchantID int64, req *booking.CreateBookingRequest, media *booking.Media) (*booking.ScreenBooking, error)
	List(ctx context.Context, actor auth.Principal, filters *booking.BookingListFilters) (*booking.BookingListResponse, error)
	Get(ctx context.Context, actor auth.Principal, bookingID int64) (*booking.ScreenBooking, error)
	Cancel(ctx context.Context, actor auth.Principal, bookingID int64) (*booking.ScreenBooking, error)
	Approve(ctx context.Context, adminID, bookingID int64, req *booking.ApproveRequest) (*booking.ScreenBooking, *invoice.Invoice, error)
	Reject(ctx context.Context, adminID, bookingID int64, req *booking.RejectRequest) (*booking.ScreenBooking, error)
	UpdateNotes(ctx context.Context, adminID, bookingID int64, req *booking.UpdateNotesRequest) (*booking.ScreenBooking, error)
}

type BookingHandler struct {
	bookingService BookingUsecase
	media          MediaStore
	logger         *zap.Logger
}

func NewBookingHandler(bookingService BookingUsecase, media MediaStore, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
		media:          media,
		logger:         logger,
	}
}

func (h *BookingHandler) CheckAvailability(c *gin.Context) {
	var req booking.AvailabilityRequest
	if !request.BindJSON(c, &req) {
		return
	}

	result, err := h.bookingService.CheckAvailability(c.Request.Context(), &req)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, i18n.MsgOK, result)
}

// CreateBooking accepts JSON or multipart/form-data with an optional media file.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	p := middleware.MustGetPrincipal(c)

	var (
		req   booking.CreateBookingRequest
		media *booking.Media
	)
	if strings.HasPrefix(c.ContentType(), gin.MIMEMultipartPOSTForm) {
		if err := c.ShouldBind(&req); err != nil {
			response.HandleError(c, validation.FromBindError(err))
			return
		}

		var err error
		media, err = h.saveUpload(c)
		if err != nil {
			response.HandleError(c, err)
			return
		}
	} else if !request.BindJSON(c, &req) {
		return
	}

	result, err := h.bookingService.Create(c.Request.Context(), p.UserID, &req, media)
	if err != nil {
		if media != nil {
			h.media.Remove(media.URL)
		}
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, i18n.MsgBookingCreated, result)
}

func (h *BookingHandler) saveUpload(c *gin.Context) (*booking.Media, error) {
	fh, err := c.FormFile(mediaField)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, xerrors.NewValidationError(mediaField, i18n.FieldInvalid)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	media, err := h.media.SaveMedia(f, mediaField, true)
	if err != nil {
		return nil, err
	}
	h.logger.Info("booking media stored", zap.String("url", media.URL), zap.String("type", string(media.Type)))
	return media, nil
}

// ListBookings returns the caller's bookings, or all bookings for admins.
func (h *BookingHandler) ListBookings(c *gin.Context) {
	p := middleware.MustGetPrincipal(c)

	var filters booking.BookingListFilters
	if !request.BindQuery(c, &filters) {
		return
	}

	result, err := h.bookingService.List(c.Request.Context(), p, &filters)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, i18n.MsgOK, result)
}

func (h *BookingHandler) GetBooking(c *gin.Context) {
	p := middleware.MustGetPrincipal(c)
	id, ok := request.ParamID(c, "id")
	if !ok {
		return
	}

	result, err := h.bookingService.Get(c.Request.Context(), p, id)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, i18n.MsgOK, result)
}

func (h *BookingHandler) CancelBooking(c *gin.Context) {
	p := middleware.MustGetPrincipal(c)
	id, ok := request.ParamID(c, "id")
	if !ok {
		return
	}

	result, err := h.bookingService.Cancel(c.Request.Context(), p, id)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, i18n.MsgBookingCancelled, result)
}

// ========== Admin Endpoints ==========

func (h *BookingHandler) ApproveBooking(c *gin.Context) {
	p := middleware.MustGetPrincipal(c)
	id, ok := request.ParamID(c, "id")
	if !ok {
		return
	}

	var req booking.ApproveRequest
	if !request.BindOptionalJSON(c, &req) {
		return
	}

	result, inv, err := h.bookingService.Approve(c.Request.Context(), p.UserID, id, &req)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, i18n.MsgBookingApproved, gin.H{
		"booking": result,
		"invoice": inv,
	})
}

func (h *BookingHandler) RejectBooking(c *gin.Context) {
	p := middleware.MustGetPrincipal(c)
	id, ok := request.ParamID(c, "id")
	if !ok {
		return
	}

	var req booking.RejectRequest
	if !request.BindJSON(c, &req) {
		return
	}

	result, err := h.bookingService.Reject(c.Request.Context(), p.UserID, id, &req)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, i18n.MsgBookingRejected, result)
}

func (h *BookingHandler) UpdateNotes(c *gin.Context) {
	p := middleware.MustGetPrincipal(c)
	id, ok := request.ParamID(c, "id")
	if !ok {
		return
	}

	var req booking.UpdateNotesRequest
	if !request.BindJSON(c, &req) {
		return
	}

	result, err := h.bookingService.UpdateNotes(c.Request.Context(), p.UserID, id, &req)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, i18n.MsgUpdated, result)
}
