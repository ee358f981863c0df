package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/gtuventures/ventures-backend/internal/common"
	"github.com/gtuventures/ventures-backend/internal/domain"
	"github.com/gtuventures/ventures-backend/internal/service"
)

const sectionNotFound = "No homepage section with that key"

// HomepageHandler serves the homepage section endpoints
type HomepageHandler struct {
	service service.HomepageService
}

// NewHomepageHandler creates a new HomepageHandler
func NewHomepageHandler(service service.HomepageService) *HomepageHandler {
	return &HomepageHandler{service: service}
}

func sectionItems(sections []*domain.HomepageSection) []map[string]any {
	items := make([]map[string]any, 0, len(sections))
	for _, s := range sections {
		items = append(items, s.ToResponse())
	}
	return items
}

// List godoc
// @Summary      List homepage sections
// @Tags         homepage
// @Produce      json
// @Success      200  {object}  common.APIResponse
// @Security     BearerAuth
// @Router       /admin/get-homepage [get]
func (h *HomepageHandler) List(c *gin.Context) {
	sections, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, err, "")
		return
	}
	common.Success(c, sectionItems(sections))
}

// Get godoc
// @Summary      Get one homepage section
// @Tags         homepage
// @Produce      json
// @Param        key  path  string  true  "section key, e.g. hero"
// @Success      200  {object}  common.APIResponse
// @Failure      404  {object}  common.APIResponse
// @Security     BearerAuth
// @Router       /admin/get-homepage/{key} [get]
func (h *HomepageHandler) Get(c *gin.Context) {
	section, err := h.service.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		respondError(c, err, sectionNotFound)
		return
	}
	common.Success(c, section.ToResponse())
}

// Update godoc
// @Summary      Update or create a homepage section
// @Description  Submitted fields are merged; any extra field is kept
// @Tags         homepage
// @Accept       json,mpfd
// @Produce      json
// @Param        key  path  string  true  "section key"
// @Success      200  {object}  common.APIResponse
// @Failure      400  {object}  common.APIResponse
// @Security     BearerAuth
// @Router       /admin/update-homepage/{key} [post]
func (h *HomepageHandler) Update(c *gin.Context) {
	sub, err := bindSubmission(c)
	if err != nil {
		respondError(c, err, "")
		return
	}

	section, err := h.service.Upsert(c.Request.Context(), c.Param("key"), sub.Input)
	if err != nil {
		respondError(c, err, sectionNotFound)
		return
	}
	common.Success(c, section.ToResponse())
}

// Reset godoc
// @Summary      Reset a homepage section to an empty draft
// @Tags         homepage
// @Produce      json
// @Param        key  path  string  true  "section key"
// @Success      200  {object}  common.APIResponse
// @Failure      404  {object}  common.APIResponse
// @Security     BearerAuth
// @Router       /admin/reset-homepage/{key} [post]
func (h *HomepageHandler) Reset(c *gin.Context) {
	key := c.Param("key")
	if err := h.service.Reset(c.Request.Context(), key); err != nil {
		respondError(c, err, sectionNotFound)
		return
	}
	common.Success(c, gin.H{"key": key, "reset": true})
}
