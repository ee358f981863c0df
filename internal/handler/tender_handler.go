package handler

import (
	"fmt"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/gtuventures/ventures-backend/internal/common"
	"github.com/gtuventures/ventures-backend/internal/domain"
	"github.com/gtuventures/ventures-backend/internal/service"
	"github.com/gtuventures/ventures-backend/pkg/ginutil"
)

const tenderNotFound = "No tender found with that id"

// TenderHandler serves the admin tender and circular endpoints
type TenderHandler struct {
	service service.TenderService
}

// NewTenderHandler creates a new TenderHandler
func NewTenderHandler(service service.TenderService) *TenderHandler {
	return &TenderHandler{service: service}
}

func tenderItems(tenders []*domain.Tender) []map[string]any {
	items := make([]map[string]any, 0, len(tenders))
	for _, t := range tenders {
		items = append(items, t.ToResponse())
	}
	return items
}

func tenderKind(c *gin.Context) (domain.TenderKind, error) {
	kind := c.Query("type")
	if kind == "" || slices.Contains(domain.TenderKinds, kind) {
		return domain.TenderKind(kind), nil
	}
	return "", fmt.Errorf("%w: type must be tender or circular", common.ErrInvalidInput)
}

// Create godoc
// @Summary      Create a tender (version 1 of a new chain)
// @Tags         tenders
// @Accept       json,mpfd
// @Produce      json
// @Success      201  {object}  common.APIResponse
// @Failure      400  {object}  common.APIResponse
// @Security     BearerAuth
// @Router       /admin/add-tender [post]
func (h *TenderHandler) Create(c *gin.Context) {
	sub, err := bindSubmission(c)
	if err != nil {
		respondError(c, err, "")
		return
	}

	t, err := h.service.CreateTender(c.Request.Context(), sub.Input)
	if err != nil {
		respondError(c, err, tenderNotFound)
		return
	}
	common.Created(c, t.ToResponse())
}

// List godoc
// @Summary      List tenders
// @Description  Latest versions only unless allVersions=true
// @Tags         tenders
// @Produce      json
// @Param        type         query  string  false  "tender or circular"
// @Param        status       query  string  false  "draft, published or archived"
// @Param        q            query  string  false  "title search"
// @Param        allVersions  query  bool    false  "include superseded versions"
// @Success      200  {object}  common.APIResponse
// @Security     BearerAuth
// @Router       /admin/get-tenders [get]
func (h *TenderHandler) List(c *gin.Context) {
	opts, err := listParams(c)
	if err != nil {
		respondError(c, err, "")
		return
	}
	kind, err := tenderKind(c)
	if err != nil {
		respondError(c, err, "")
		return
	}

	tenders, total, err := h.service.ListTenders(c.Request.Context(), domain.TenderListOptions{
		ListOptions: opts,
		Kind:        kind,
		AllVersions: ginutil.QueryBool(c, "allVersions", false),
	})
	if err != nil {
		respondError(c, err, "")
		return
	}
	common.SuccessWithMeta(c, tenderItems(tenders), common.NewMeta(opts.Page, opts.Limit, total))
}

// Get godoc
// @Summary      Get one tender version
// @Tags         tenders
// @Produce      json
// @Param        id  path  string  true  "tender id"
// @Success      200  {object}  common.APIResponse
// @Failure      404  {object}  common.APIResponse
// @Security     BearerAuth
// @Router       /admin/get-tender/{id} [get]
func (h *TenderHandler) Get(c *gin.Context) {
	id, ok := ginutil.ParamID(c, "id")
	if !ok {
		common.ErrorResponse(c, http.StatusBadRequest, "Missing id", nil)
		return
	}

	t, err := h.service.GetTender(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, tenderNotFound)
		return
	}
	common.Success(c, t.ToResponse())
}

// Update godoc
// @Summary      Edit a tender
// @Description  isFailedTenderEdit=true forks a new latest version and keeps the old one as history
// @Tags         tenders
// @Accept       json,mpfd
// @Produce      json
// @Param        id  path  string  true  "tender id"
// @Success      200  {object}  common.APIResponse
// @Failure      404  {object}  common.APIResponse
// @Failure      409  {object}  common.APIResponse
// @Security     BearerAuth
// @Router       /admin/update-tender/{id} [post]
func (h *TenderHandler) Update(c *gin.Context) {
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

	t, err := h.service.EditTender(c.Request.Context(), id, sub.Input, sub.FailedTenderEdit)
	if err != nil {
		respondError(c, err, tenderNotFound)
		return
	}
	common.Success(c, t.ToResponse())
}

// Delete godoc
// @Summary      Delete one tender version
// @Description  Deleting the latest version promotes the highest remaining one
// @Tags         tenders
// @Produce      json
// @Param        id  path  string  true  "tender id"
// @Success      200  {object}  common.APIResponse
// @Failure      404  {object}  common.APIResponse
// @Security     BearerAuth
// @Router       /admin/delete-tender/{id} [delete]
func (h *TenderHandler) Delete(c *gin.Context) {
	id, ok := ginutil.ParamID(c, "id")
	if !ok {
		common.ErrorResponse(c, http.StatusBadRequest, "Missing id", nil)
		return
	}

	if err := h.service.DeleteTender(c.Request.Context(), id); err != nil {
		respondError(c, err, tenderNotFound)
		return
	}
	common.Success(c, gin.H{"id": id, "deleted": true})
}

// Chain godoc
// @Summary      List every version of a tender, newest first
// @Tags         tenders
// @Produce      json
// @Param        parentId  path  string  true  "chain id"
// @Success      200  {object}  common.APIResponse
// @Failure      404  {object}  common.APIResponse
// @Security     BearerAuth
// @Router       /admin/get-tender-chain/{parentId} [get]
func (h *TenderHandler) Chain(c *gin.Context) {
	parentID, ok := ginutil.ParamID(c, "parentId")
	if !ok {
		common.ErrorResponse(c, http.StatusBadRequest, "Missing parent id", nil)
		return
	}

	chain, err := h.service.ListTenderChain(c.Request.Context(), parentID)
	if err != nil {
		respondError(c, err, "No tender chain found with that id")
		return
	}
	common.Success(c, tenderItems(chain))
}

// DeleteChain godoc
// @Summary      Delete every version of a tender
// @Tags         tenders
// @Produce      json
// @Param        parentId  path  string  true  "chain id"
// @Success      200  {object}  common.APIResponse
// @Failure      404  {object}  common.APIResponse
// @Security     BearerAuth
// @Router       /admin/delete-tender-chain/{parentId} [delete]
func (h *TenderHandler) DeleteChain(c *gin.Context) {
	parentID, ok := ginutil.ParamID(c, "parentId")
	if !ok {
		common.ErrorResponse(c, http.StatusBadRequest, "Missing parent id", nil)
		return
	}

	if err := h.service.DeleteTenderChain(c.Request.Context(), parentID); err != nil {
		respondError(c, err, "No tender chain found with that id")
		return
	}
	common.Success(c, gin.H{"parentId": parentID, "deleted": true})
}
