package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"cardhub/internal/authz"
	"cardhub/internal/handlers"
	"cardhub/internal/middleware"
)

type Handlers struct {
	Clients   *handlers.ClientHandler
	Cards     *handlers.CardHandler
	Contracts *handlers.ContractHandler
	Events    *handlers.EventsHandler
	Pages     *handlers.PageHandler // may be nil
}

type Options struct {
	// JWTSecret enables bearer auth on the API when set.
	JWTSecret []byte
	// Gatherer backs /metrics; nil disables the endpoint.
	Gatherer prometheus.Gatherer
	Swagger  bool
}

func SetupRoutes(r *gin.Engine, h Handlers, opts Options) *gin.Engine {
	// ---- public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if opts.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}
	if opts.Swagger {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	if h.Pages != nil {
		r.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, "/clients") })
		r.GET("/clients", h.Pages.ClientsIndex)
		r.GET("/clients/:id", h.Pages.ClientView)
		r.GET("/cards", h.Pages.CardsIndex)
		r.GET("/cards/:id", h.Pages.CardView)
		r.GET("/contracts", h.Pages.ContractsIndex)
		r.GET("/contracts/:id", h.Pages.ContractView)
	}

	// ---- api
	api := r.Group("/api")
	if len(opts.JWTSecret) > 0 {
		api.Use(
			middleware.AuthMiddleware(opts.JWTSecret),
			middleware.ReadOnlyGuard(),
			middleware.RequireRoles(authz.WriteRoles...),
		)
	}

	if h.Events != nil {
		api.GET("/events", h.Events.Stream)
	}

	clients := api.Group("/clients")
	{
		clients.POST("", h.Clients.Create)
		clients.PUT("", h.Clients.Update)
		clients.GET("", h.Clients.List)
		clients.GET("/:id", h.Clients.GetByID)
		clients.DELETE("/:id", h.Clients.Deactivate)
		clients.PUT("/:id/activate", h.Clients.Activate)
	}

	cards := api.Group("/cards")
	{
		cards.POST("", h.Cards.Create)
		cards.PUT("", h.Cards.Update)
		cards.GET("", h.Cards.List)
		cards.GET("/:id", h.Cards.GetByID)
		cards.DELETE("/:id", h.Cards.Deactivate)
	}

	contracts := api.Group("/contracts")
	{
		contracts.POST("", h.Contracts.Create)
		contracts.PUT("", h.Contracts.Update)
		contracts.GET("", h.Contracts.List)
		contracts.GET("/:id", h.Contracts.GetByID)
		contracts.GET("/:id/pdf", h.Contracts.PDF)
		contracts.DELETE("/:id", h.Contracts.Deactivate)
	}

	return r
}
