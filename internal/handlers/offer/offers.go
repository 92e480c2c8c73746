// internal/handlers/offer/offers.go
package offer

import (
	"net/http"

	"adscreen-service/internal/domain/offer"
	"adscreen-service/internal/middleware"
	"adscreen-service/internal/pkg/i18n"
	"adscreen-service/internal/pkg/request"
	"adscreen-service/internal/pkg/response"
	service "adscreen-service/internal/service/offer"

	"github.com/gin-gonic/gin"
)

type OfferHandler struct {
	offerService *service.OfferService
}

func NewOfferHandler(offerService *service.OfferService) *OfferHandler {
	return &OfferHandler{
		offerService: offerService,
	}
}

// ========== Public Endpoints ==========

// ListOffers lists active offers for the marketplace.
func (h *OfferHandler) ListOffers(c *gin.Context) {
	var filters offer.OfferListFilters
	if !request.BindQuery(c, &filters) {
		return
	}

	result, err := h.offerService.ListOffers(c.Request.Context(), &filters)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, i18n.MsgOK, result)
}

// GetOffer retrieves an offer by ID. Owners and admins may see non-active offers.
func (h *OfferHandler) GetOffer(c *gin.Context) {
	id, ok := request.ParamID(c, "id")
	if !ok {
		return
	}

	result, err := h.offerService.GetOffer(c.Request.Context(), middleware.OptionalPrincipal(c), id)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, i18n.MsgOK, result)
}

func (h *OfferHandler) GetOfferBySlug(c *gin.Context) {
	result, err := h.offerService.GetOfferBySlug(c.Request.Context(), middleware.OptionalPrincipal(c), c.Param("slug"))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, i18n.MsgOK, result)
}

func (h *OfferHandler) ListCategories(c *gin.Context) {
	categories, err := h.offerService.ListCategories(c.Request.Context(), false)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, i18n.MsgOK, categories)
}

// ========== Merchant Endpoints ==========

func (h *OfferHandler) CreateOffer(c *gin.Context) {
	p := middleware.MustGetPrincipal(c)

	var req offer.CreateOfferRequest
	if !request.BindJSON(c, &req) {
		return
	}

	result, err := h.offerService.CreateOffer(c.Request.Context(), p.UserID, &req)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, i18n.MsgCreated, result)
}

func (h *OfferHandler) ListMyOffers(c *gin.Context) {
	p := middleware.MustGetPrincipal(c)

	var filters offer.OfferListFilters
	if !request.BindQuery(c, &filters) {
		return
	}

	result, err := h.offerService.ListMerchantOffers(c.Request.Context(), p.UserID, &filters)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, i18n.MsgOK, result)
}

func (h *OfferHandler) UpdateOffer(c *gin.Context) {
	p := middleware.MustGetPrincipal(c)
	id, ok := request.ParamID(c, "id")
	if !ok {
		return
	}

	var req offer.UpdateOfferRequest
	if !request.BindJSON(c, &req) {
		return
	}

	result, err := h.offerService.UpdateOffer(c.Request.Context(), p, id, &req)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, i18n.MsgUpdated, result)
}

func (h *OfferHandler) DeleteOffer(c *gin.Context) {
	p := middleware.MustGetPrincipal(c)
	id, ok := request.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.offerService.DeleteOffer(c.Request.Context(), p, id); err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, i18n.MsgDeleted, nil)
}

// AnalyzeOffer runs the AI analysis. A failed run is persisted and returned with the 500.
func (h *OfferHandler) AnalyzeOffer(c *gin.Context) {
	p := middleware.MustGetPrincipal(c)
	id, ok := request.ParamID(c, "id")
	if !ok {
		return
	}

	analysis, err := h.offerService.AnalyzeOffer(c.Request.Context(), p, id)
	if err != nil {
		if analysis != nil {
			response.Error(c, http.StatusInternalServerError, i18n.MsgAnalysisFailed, err, analysis)
			return
		}
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, i18n.MsgAnalysisCompleted, analysis)
}

func (h *OfferHandler) ListAnalyses(c *gin.Context) {
	p := middleware.MustGetPrincipal(c)
	id, ok := request.ParamID(c, "id")
	if !ok {
		return
	}

	analyses, err := h.offerService.ListAnalyses(c.Request.Context(), p, id)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, i18n.MsgOK, analyses)
}

// ========== Customer Endpoints ==========

func (h *OfferHandler) SaveOffer(c *gin.Context) {
	p := middleware.MustGetPrincipal(c)
	id, ok := request.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.offerService.SaveOffer(c.Request.Context(), p.UserID, id); err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, i18n.MsgOfferSaved, nil)
}

func (h *OfferHandler) UnsaveOffer(c *gin.Context) {
	p := middleware.MustGetPrincipal(c)
	id, ok := request.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.offerService.UnsaveOffer(c.Request.Context(), p.UserID, id); err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, i18n.MsgOfferUnsaved, nil)
}

func (h *OfferHandler) ListSaved(c *gin.Context) {
	p := middleware.MustGetPrincipal(c)

	saved, err := h.offerService.ListSaved(c.Request.Context(), p.UserID)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, i18n.MsgOK, saved)
}

// ========== Admin Endpoints ==========

func (h *OfferHandler) AdminListCategories(c *gin.Context) {
	categories, err := h.offerService.ListCategories(c.Request.Context(), true)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, i18n.MsgOK, categories)
}

func (h *OfferHandler) CreateCategory(c *gin.Context) {
	var req offer.CreateCategoryRequest
	if !request.BindJSON(c, &req) {
		return
	}

	category, err := h.offerService.CreateCategory(c.Request.Context(), &req)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, i18n.MsgCreated, category)
}

func (h *OfferHandler) UpdateCategory(c *gin.Context) {
	id, ok := request.ParamID(c, "id")
	if !ok {
		return
	}

	var req offer.UpdateCategoryRequest
	if !request.BindJSON(c, &req) {
		return
	}

	category, err := h.offerService.UpdateCategory(c.Request.Context(), id, &req)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, i18n.MsgUpdated, category)
}
