package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gtuventures/ventures-backend/internal/common"
	"github.com/gtuventures/ventures-backend/internal/domain"
	"github.com/gtuventures/ventures-backend/internal/service"
	"github.com/gtuventures/ventures-backend/pkg/ginutil"
)

// PublicHandler serves the unauthenticated read endpoints; they only ever
// return published content and the latest version of each tender.
type PublicHandler struct {
	content  service.ContentService
	tenders  service.TenderService
	homepage service.HomepageService
}

// NewPublicHandler creates a new PublicHandler
func NewPublicHandler(content service.ContentService, tenders service.TenderService, homepage service.HomepageService) *PublicHandler {
	return &PublicHandler{content: content, tenders: tenders, homepage: homepage}
}

// ListContent godoc
// @Summary      List published records of a type
// @Tags         public
// @Produce      json
// @Param        page   query  int  false  "page"      default(1)
// @Param        limit  query  int  false  "page size" default(20)
// @Success      200  {object}  common.APIResponse
// @Router       /user/get-{types} [get]
func (h *PublicHandler) ListContent(schema *domain.Schema) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := ginutil.QueryInt(c, "page", 1)
		limit := ginutil.QueryInt(c, "limit", 20)

		result, err := h.content.ListPublished(c.Request.Context(), schema.Route, page, limit)
		if err != nil {
			respondError(c, err, "")
			return
		}

		opts := domain.ListOptions{Page: page, Limit: limit}
		opts.Normalize()
		items := make([]map[string]any, 0, len(result.Items))
		for _, rec := range result.Items {
			items = append(items, rec.ToResponse(schema.Type))
		}
		common.SuccessWithMeta(c, items, common.NewMeta(opts.Page, opts.Limit, result.Total))
	}
}

// GetContent godoc
// @Summary      Get a published record by id or slug
// @Tags         public
// @Produce      json
// @Param        id  path  string  true  "record id or slug"
// @Success      200  {object}  common.APIResponse
// @Failure      404  {object}  common.APIResponse
// @Router       /user/get-{type}/{id} [get]
func (h *PublicHandler) GetContent(schema *domain.Schema) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := ginutil.ParamID(c, "id")
		if !ok {
			common.ErrorResponse(c, http.StatusBadRequest, "Missing id", nil)
			return
		}

		rec, err := h.content.GetPublished(c.Request.Context(), schema.Route, id)
		if err != nil {
			respondError(c, err, notFoundMessage(schema))
			return
		}
		common.Success(c, rec.ToResponse(schema.Type))
	}
}

// ListTenders godoc
// @Summary      List published tenders (latest versions)
// @Tags         public
// @Produce      json
// @Param        type   query  string  false  "tender or circular"
// @Param        page   query  int     false  "page"      default(1)
// @Param        limit  query  int     false  "page size" default(20)
// @Success      200  {object}  common.APIResponse
// @Router       /user/get-tenders [get]
func (h *PublicHandler) ListTenders(c *gin.Context) {
	kind, err := tenderKind(c)
	if err != nil {
		respondError(c, err, "")
		return
	}
	page := ginutil.QueryInt(c, "page", 1)
	limit := ginutil.QueryInt(c, "limit", 20)

	result, err := h.tenders.ListPublishedTenders(c.Request.Context(), kind, page, limit)
	if err != nil {
		respondError(c, err, "")
		return
	}

	opts := domain.ListOptions{Page: page, Limit: limit}
	opts.Normalize()
	common.SuccessWithMeta(c, tenderItems(result.Items), common.NewMeta(opts.Page, opts.Limit, result.Total))
}

// GetTender godoc
// @Summary      Get a published tender
// @Tags         public
// @Produce      json
// @Param        id  path  string  true  "tender id"
// @Success      200  {object}  common.APIResponse
// @Failure      404  {object}  common.APIResponse
// @Router       /user/get-tender/{id} [get]
func (h *PublicHandler) GetTender(c *gin.Context) {
	id, ok := ginutil.ParamID(c, "id")
	if !ok {
		common.ErrorResponse(c, http.StatusBadRequest, "Missing id", nil)
		return
	}

	t, err := h.tenders.GetPublishedTender(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, tenderNotFound)
		return
	}
	common.Success(c, t.ToResponse())
}

// Homepage godoc
// @Summary      Published homepage sections
// @Tags         public
// @Produce      json
// @Success      200  {object}  common.APIResponse
// @Router       /user/get-homepage [get]
func (h *PublicHandler) Homepage(c *gin.Context) {
	sections, err := h.homepage.ListPublished(c.Request.Context())
	if err != nil {
		respondError(c, err, "")
		return
	}
	common.Success(c, sectionItems(sections))
}

// HomepageSection godoc
// @Summary      One published homepage section
// @Tags         public
// @Produce      json
// @Param        key  path  string  true  "section key"
// @Success      200  {object}  common.APIResponse
// @Failure      404  {object}  common.APIResponse
// @Router       /user/get-homepage/{key} [get]
func (h *PublicHandler) HomepageSection(c *gin.Context) {
	section, err := h.homepage.GetPublished(c.Request.Context(), c.Param("key"))
	if err != nil {
		respondError(c, err, sectionNotFound)
		return
	}
	common.Success(c, section.ToResponse())
}
