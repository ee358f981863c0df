package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gtuventures/ventures-backend/internal/common"
	"github.com/gtuventures/ventures-backend/internal/domain"
	"github.com/gtuventures/ventures-backend/internal/service"
	"github.com/gtuventures/ventures-backend/pkg/ginutil"
)

// Searcher is the part of service.SearchService the handler needs
type Searcher interface {
	Search(ctx context.Context, q, contentType string, page, perPage int) (*service.SearchResults, error)
	Reindex(ctx context.Context) (int, error)
}

// SearchHandler handles search HTTP requests
type SearchHandler struct {
	search Searcher
}

// NewSearchHandler creates a new SearchHandler
func NewSearchHandler(search Searcher) *SearchHandler {
	return &SearchHandler{search: search}
}

// Search godoc
// @Summary      Search published content
// @Description  Elasticsearch when enabled, otherwise substring match in the database
// @Tags         public
// @Produce      json
// @Param        q         query  string  true   "search text"
// @Param        type      query  string  false  "limit to one content type"
// @Param        page      query  int     false  "page"      default(1)
// @Param        per_page  query  int     false  "page size" default(10)
// @Success      200  {object}  common.APIResponse{data=service.SearchResults}
// @Failure      400  {object}  common.APIResponse
// @Router       /user/search [get]
func (h *SearchHandler) Search(c *gin.Context) {
	contentType := c.Query("type")
	if contentType != "" {
		if contentType == string(domain.TypeTender) || contentType == domain.TenderSchema.Route {
			contentType = string(domain.TypeTender)
		} else if schema, ok := domain.LookupSchema(contentType); ok {
			contentType = string(schema.Type)
		} else {
			common.ErrorResponse(c, http.StatusBadRequest, "Unknown content type", nil)
			return
		}
	}

	page := ginutil.QueryInt(c, "page", 1)
	perPage := ginutil.QueryInt(c, "per_page", 10)

	results, err := h.search.Search(c.Request.Context(), c.Query("q"), contentType, page, perPage)
	if err != nil {
		respondError(c, err, "")
		return
	}
	common.SuccessWithMeta(c, results, common.NewMeta(page, perPage, results.Total))
}

// Reindex godoc
// @Summary      Rebuild the search index from the database
// @Tags         admin
// @Produce      json
// @Success      200  {object}  common.APIResponse
// @Failure      503  {object}  common.APIResponse
// @Security     BearerAuth
// @Router       /admin/search/reindex [post]
func (h *SearchHandler) Reindex(c *gin.Context) {
	n, err := h.search.Reindex(c.Request.Context())
	if errors.Is(err, service.ErrSearchDisabled) {
		common.ErrorResponse(c, http.StatusServiceUnavailable, "Search index is not enabled", nil)
		return
	}
	if err != nil {
		respondError(c, err, "")
		return
	}
	common.Success(c, gin.H{"indexed": n})
}
