package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/gtuventures/ventures-backend/internal/domain"
	"github.com/gtuventures/ventures-backend/internal/handler"
	"github.com/gtuventures/ventures-backend/internal/middleware"
	"github.com/gtuventures/ventures-backend/pkg/jwt"
	"github.com/redis/go-redis/v9"
)

// Handlers groups everything Setup mounts
type Handlers struct {
	Content  *handler.ContentHandler
	Tender   *handler.TenderHandler
	Homepage *handler.HomepageHandler
	Public   *handler.PublicHandler
	Search   *handler.SearchHandler
	Health   *handler.HealthHandler
}

// Options tune the route level middleware
type Options struct {
	MaxUploadBytes int64
	RateLimit      middleware.RateLimitConfig
	Redis          *redis.Client // nil disables rate limiting
}

// Setup configures the admin, public and ops routes
func Setup(router *gin.Engine, h Handlers, jwtManager *jwt.Manager, opts Options) {
	router.GET("/health", h.Health.Health)

	admin := router.Group("/admin",
		middleware.JWTAuth(jwtManager),
		middleware.RequireAdmin(),
		middleware.BodyLimit(opts.MaxUploadBytes),
	)
	// news, gallery and team list under the same segment as their items
	for _, schema := range domain.Schemas() {
		admin.POST("/add-"+schema.Route, h.Content.Create(schema))
		admin.GET("/get-"+schema.ListRoute, h.Content.List(schema))
		admin.GET("/get-"+schema.Route+"/:id", h.Content.Get(schema))
		admin.POST("/update-"+schema.Route+"/:id", h.Content.Update(schema))
		admin.PUT("/update-"+schema.Route+"/:id", h.Content.Update(schema))
		admin.DELETE("/delete-"+schema.Route+"/:id", h.Content.Delete(schema))
		admin.POST("/delete-"+schema.Route+"/:id", h.Content.Delete(schema))
	}

	admin.POST("/add-tender", h.Tender.Create)
	admin.GET("/get-tenders", h.Tender.List)
	admin.GET("/get-tender/:id", h.Tender.Get)
	admin.POST("/update-tender/:id", h.Tender.Update)
	admin.PUT("/update-tender/:id", h.Tender.Update)
	admin.DELETE("/delete-tender/:id", h.Tender.Delete)
	admin.POST("/delete-tender/:id", h.Tender.Delete)
	admin.GET("/get-tender-chain/:parentId", h.Tender.Chain)
	admin.DELETE("/delete-tender-chain/:parentId", h.Tender.DeleteChain)

	admin.GET("/get-homepage", h.Homepage.List)
	admin.GET("/get-homepage/:key", h.Homepage.Get)
	admin.POST("/update-homepage/:key", h.Homepage.Update)
	admin.PUT("/update-homepage/:key", h.Homepage.Update)
	admin.POST("/reset-homepage/:key", h.Homepage.Reset)

	admin.POST("/search/reindex", h.Search.Reindex)

	public := router.Group("/user", middleware.RateLimit(opts.Redis, opts.RateLimit))
	for _, schema := range domain.Schemas() {
		public.GET("/get-"+schema.ListRoute, h.Public.ListContent(schema))
		public.GET("/get-"+schema.Route+"/:id", h.Public.GetContent(schema))
	}
	public.GET("/get-tenders", h.Public.ListTenders)
	public.GET("/get-tender/:id", h.Public.GetTender)
	public.GET("/get-homepage", h.Public.Homepage)
	public.GET("/get-homepage/:key", h.Public.HomepageSection)
	public.GET("/search", h.Search.Search)
}
