package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"

	"controlnest-backend/internal/auth"
	"controlnest-backend/internal/service"
	"controlnest-backend/internal/store"
)

// Deps are the collaborators the handlers call into.
type Deps struct {
	Store     store.Store
	Users     *service.UserService
	Locations *service.LocationService
	Devices   *service.DeviceService
	Tokens    *auth.TokenIssuer
	WebPush   *webpush.Options
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store     store.Store
	users     *service.UserService
	locations *service.LocationService
	devices   *service.DeviceService
	webpush   *webpush.Options
	tokenTTL  time.Duration
	maxUpload int64
}

// NewHandler creates a new API handler.
func NewHandler(deps Deps, maxUpload int64) *Handler {
	ttl := auth.DefaultTokenTTL
	if deps.Tokens != nil {
		ttl = deps.Tokens.TTL()
	}
	return &Handler{
		store:     deps.Store,
		users:     deps.Users,
		locations: deps.Locations,
		devices:   deps.Devices,
		webpush:   deps.WebPush,
		tokenTTL:  ttl,
		maxUpload: maxUpload,
	}
}

const msgBadID = "ID is not a valid object id"

// fail reports err as a 400 when it is a validation failure and as a 500
// carrying the raw message otherwise.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)

	var verrs ValidationErrors
	if errors.As(err, &verrs) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": verrs.Error()})
		return
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func caller(c *gin.Context) auth.Identity {
	id, _ := auth.CurrentIdentity(c)
	return id
}
