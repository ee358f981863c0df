package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gtuventures/ventures-backend/internal/common"
	"github.com/gtuventures/ventures-backend/internal/domain"
	"github.com/gtuventures/ventures-backend/internal/service"
	"github.com/gtuventures/ventures-backend/pkg/ginutil"
)

// ContentHandler serves the admin CRUD endpoints of the generic content types.
// Each method takes the content type so one handler backs every route family.
type ContentHandler struct {
	service service.ContentService
}

// NewContentHandler creates a new ContentHandler
func NewContentHandler(service service.ContentService) *ContentHandler {
	return &ContentHandler{service: service}
}

func notFoundMessage(schema *domain.Schema) string {
	return "No " + schema.Route + " found with that id"
}

// Create godoc
// @Summary      Create a content record
// @Description  Accepts JSON or multipart; file fields are uploaded as form files
// @Tags         admin
// @Accept       json,mpfd
// @Produce      json
// @Param        type  path  string  true  "content type route, e.g. news, event, startup"
// @Success      201  {object}  common.APIResponse
// @Failure      400  {object}  common.APIResponse
// @Failure      401  {object}  common.APIResponse
// @Failure      409  {object}  common.APIResponse
// @Security     BearerAuth
// @Router       /admin/add-{type} [post]
func (h *ContentHandler) Create(schema *domain.Schema) gin.HandlerFunc {
	return func(c *gin.Context) {
		sub, err := bindSubmission(c)
		if err != nil {
			respondError(c, err, "")
			return
		}

		rec, err := h.service.Create(c.Request.Context(), schema.Route, sub.Input)
		if err != nil {
			respondError(c, err, notFoundMessage(schema))
			return
		}
		common.Created(c, rec.ToResponse(schema.Type))
	}
}

// List godoc
// @Summary      List content records
// @Description  Newest first; filter with status and q
// @Tags         admin
// @Produce      json
// @Param        page    query  int     false  "page"      default(1)
// @Param        limit   query  int     false  "page size" default(20)
// @Param        status  query  string  false  "draft, published or archived"
// @Param        q       query  string  false  "substring search"
// @Success      200  {object}  common.APIResponse
// @Security     BearerAuth
// @Router       /admin/get-{types} [get]
func (h *ContentHandler) List(schema *domain.Schema) gin.HandlerFunc {
	return func(c *gin.Context) {
		opts, err := listParams(c)
		if err != nil {
			respondError(c, err, "")
			return
		}

		records, total, err := h.service.List(c.Request.Context(), schema.Route, opts)
		if err != nil {
			respondError(c, err, "")
			return
		}

		items := make([]map[string]any, 0, len(records))
		for _, rec := range records {
			items = append(items, rec.ToResponse(schema.Type))
		}
		common.SuccessWithMeta(c, items, common.NewMeta(opts.Page, opts.Limit, total))
	}
}

// Get godoc
// @Summary      Get a content record
// @Tags         admin
// @Produce      json
// @Param        id  path  string  true  "record id"
// @Success      200  {object}  common.APIResponse
// @Failure      404  {object}  common.APIResponse
// @Security     BearerAuth
// @Router       /admin/get-{type}/{id} [get]
func (h *ContentHandler) Get(schema *domain.Schema) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := ginutil.ParamID(c, "id")
		if !ok {
			common.ErrorResponse(c, http.StatusBadRequest, "Missing id", nil)
			return
		}

		rec, err := h.service.Get(c.Request.Context(), schema.Route, id)
		if err != nil {
			respondError(c, err, notFoundMessage(schema))
			return
		}
		common.Success(c, rec.ToResponse(schema.Type))
	}
}

// Update godoc
// @Summary      Update a content record
// @Description  Partial update. replaceImages swaps multi-file fields instead of appending, removeFiles drops listed paths.
// @Tags         admin
// @Accept       json,mpfd
// @Produce      json
// @Param        id  path  string  true  "record id"
// @Success      200  {object}  common.APIResponse
// @Failure      400  {object}  common.APIResponse
// @Failure      404  {object}  common.APIResponse
// @Failure      409  {object}  common.APIResponse
// @Security     BearerAuth
// @Router       /admin/update-{type}/{id} [post]
func (h *ContentHandler) Update(schema *domain.Schema) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := ginutil.ParamID(c, "id")
		if !ok {
			common.ErrorResponse(c, http.StatusBadRequest, "Missing id", nil)
			return
		}
		sub, err := bindSubmission(c)
		if err != nil {
			respondError(c, err, "")
			return
		}

		rec, err := h.service.Update(c.Request.Context(), schema.Route, id, sub.Input)
		if err != nil {
			respondError(c, err, notFoundMessage(schema))
			return
		}
		common.Success(c, rec.ToResponse(schema.Type))
	}
}

// Delete godoc
// @Summary      Delete a content record and its files
// @Tags         admin
// @Produce      json
// @Param        id  path  string  true  "record id"
// @Success      200  {object}  common.APIResponse
// @Failure      404  {object}  common.APIResponse
// @Security     BearerAuth
// @Router       /admin/delete-{type}/{id} [delete]
func (h *ContentHandler) Delete(schema *domain.Schema) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := ginutil.ParamID(c, "id")
		if !ok {
			common.ErrorResponse(c, http.StatusBadRequest, "Missing id", nil)
			return
		}

		if err := h.service.Delete(c.Request.Context(), schema.Route, id); err != nil {
			respondError(c, err, notFoundMessage(schema))
			return
		}
		common.Success(c, gin.H{"id": id, "deleted": true})
	}
}
