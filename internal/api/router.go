package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"controlnest-backend/config"
	"controlnest-backend/internal/auth"
	"controlnest-backend/internal/logging"
	"controlnest-backend/internal/metrics"
	"controlnest-backend/internal/mw"
	"controlnest-backend/internal/objectid"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg config.ServerConfig, deps Deps) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = cfg.MaxUploadBytes
	r.SetHTMLTemplate(homeTemplate)

	handler := NewHandler(deps, cfg.MaxUploadBytes)

	r.Use(
		gin.CustomRecovery(recoverJSON),
		mw.RequestLogger(),
		mw.Metrics(),
		mw.CORS(cfg.AllowedOrigins),
	)

	r.GET("/", handler.Home)
	r.GET("/healthz", handler.Healthz)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")
	api.Use(mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst))
	{
		api.POST("/user", handler.Register)
		api.POST("/user/login", handler.Login)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	protected := api.Group("")
	protected.Use(auth.Protect(deps.Tokens, deps.Store))
	if cfg.CacheTTLSeconds > 0 {
		ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
		protected.Use(mw.Cache(cache.New(ttl, 2*ttl), ttl))
	}
	{
		protected.GET("/user", handler.ListUsers)
		protected.GET("/user/:id", validID, handler.GetUser)
		protected.PUT("/user/:id", validID, handler.UpdateUser)
		protected.DELETE("/user/:id", validID, handler.DeleteUser)

		protected.GET("/location", handler.ListLocations)
		protected.GET("/location/:id", validID, handler.GetLocation)
		protected.POST("/location", handler.CreateLocation)
		protected.PUT("/location/:id", validID, handler.UpdateLocation)
		protected.DELETE("/location/:id", validID, handler.DeleteLocation)

		protected.GET("/device", handler.ListDevices)
		protected.GET("/device/:id", validID, handler.GetDevice)
		protected.POST("/device", handler.CreateDevice)
		protected.PUT("/device/:id", validID, handler.UpdateDevice)
		protected.DELETE("/device/:id", validID, handler.DeleteDevice)

		protected.GET("/subscriptions", handler.GetSubscription)
		protected.PUT("/subscriptions", handler.PutSubscription)
		protected.DELETE("/subscriptions", handler.DeleteSubscription)
	}

	return r
}

// validID rejects a malformed :id before any store call.
func validID(c *gin.Context) {
	if !objectid.IsValid(c.Param("id")) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msgBadID})
		return
	}
	c.Next()
}

func recoverJSON(c *gin.Context, err any) {
	logging.Ctx(c.Request.Context()).Error().Interface("panic", err).Str("path", c.Request.URL.Path).Msg("handler panicked")
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
