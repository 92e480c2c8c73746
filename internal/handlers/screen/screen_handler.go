// internal/handlers/screen/screen_handler.go
package screen

import (
	"net/http"

	"adscreen-service/internal/domain/screen"
	"adscreen-service/internal/pkg/i18n"
	"adscreen-service/internal/pkg/request"
	"adscreen-service/internal/pkg/response"
	service "adscreen-service/internal/service/screen"

	"github.com/gin-gonic/gin"
)

type ScreenHandler struct {
	locationService *service.LocationService
}

func NewScreenHandler(locationService *service.LocationService) *ScreenHandler {
	return &ScreenHandler{
		locationService: locationService,
	}
}

// ListLocations serves active locations. Admins use AdminListLocations for the full set.
func (h *ScreenHandler) ListLocations(c *gin.Context) {
	h.list(c, false)
}

func (h *ScreenHandler) AdminListLocations(c *gin.Context) {
	h.list(c, true)
}

func (h *ScreenHandler) list(c *gin.Context, includeInactive bool) {
	var filters screen.LocationFilters
	if !request.BindQuery(c, &filters) {
		return
	}
	filters.IncludeInactive = includeInactive

	locations, err := h.locationService.ListLocations(c.Request.Context(), &filters)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, i18n.MsgOK, locations)
}

func (h *ScreenHandler) GetLocation(c *gin.Context) {
	id, ok := request.ParamID(c, "id")
	if !ok {
		return
	}

	location, err := h.locationService.GetLocation(c.Request.Context(), id, false)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, i18n.MsgOK, location)
}

// ========== Admin Endpoints ==========

func (h *ScreenHandler) CreateLocation(c *gin.Context) {
	var req screen.CreateLocationRequest
	if !request.BindJSON(c, &req) {
		return
	}

	location, err := h.locationService.CreateLocation(c.Request.Context(), &req)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, i18n.MsgCreated, location)
}

func (h *ScreenHandler) UpdateLocation(c *gin.Context) {
	id, ok := request.ParamID(c, "id")
	if !ok {
		return
	}

	var req screen.UpdateLocationRequest
	if !request.BindJSON(c, &req) {
		return
	}

	location, err := h.locationService.UpdateLocation(c.Request.Context(), id, &req)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, i18n.MsgUpdated, location)
}

// DeactivateLocation hides a location; existing bookings keep referencing it.
func (h *ScreenHandler) DeactivateLocation(c *gin.Context) {
	id, ok := request.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.locationService.DeactivateLocation(c.Request.Context(), id); err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, i18n.MsgDeleted, nil)
}

func (h *ScreenHandler) CreatePricingOption(c *gin.Context) {
	locationID, ok := request.ParamID(c, "id")
	if !ok {
		return
	}

	var req screen.CreatePricingOptionRequest
	if !request.BindJSON(c, &req) {
		return
	}

	option, err := h.locationService.CreatePricingOption(c.Request.Context(), locationID, &req)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, i18n.MsgCreated, option)
}

func (h *ScreenHandler) UpdatePricingOption(c *gin.Context) {
	locationID, ok := request.ParamID(c, "id")
	if !ok {
		return
	}
	optionID, ok := request.ParamID(c, "optionId")
	if !ok {
		return
	}

	var req screen.UpdatePricingOptionRequest
	if !request.BindJSON(c, &req) {
		return
	}

	option, err := h.locationService.UpdatePricingOption(c.Request.Context(), locationID, optionID, &req)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, i18n.MsgUpdated, option)
}

func (h *ScreenHandler) DeletePricingOption(c *gin.Context) {
	locationID, ok := request.ParamID(c, "id")
	if !ok {
		return
	}
	optionID, ok := request.ParamID(c, "optionId")
	if !ok {
		return
	}

	if err := h.locationService.DeletePricingOption(c.Request.Context(), locationID, optionID); err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, i18n.MsgDeleted, nil)
}
