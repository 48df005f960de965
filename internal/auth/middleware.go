package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"controlnest-backend/internal/logging"
	"controlnest-backend/internal/model"
)

// TokenValidator resolves a bearer token to a subject id.
type TokenValidator interface {
	Validate(token string) (string, error)
}

// UserLookup resolves a subject id to a user.
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

const (
	msgNoToken       = "Not authorized, No token"
	msgNotAuthorized = "Not authorized"
)

// Protect rejects requests without a valid bearer token for an existing user
// and attaches the caller's Identity to the request. Every failure after the
// token is found collapses into the same 401 response.
func Protect(tokens TokenValidator, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msgNoToken})
			return
		}

		userID, err := tokens.Validate(token)
		if err != nil {
			reject(c, err)
			return
		}

		user, err := users.GetUserByID(c.Request.Context(), userID)
		if err != nil {
			reject(c, err)
			return
		}
		if user == nil {
			reject(c, nil)
			return
		}

		id := Identity{ID: user.ID, Name: user.Name, Email: user.Email}
		c.Set(string(identityKey), id)
		c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), id))
		c.Next()
	}
}

func reject(c *gin.Context, cause error) {
	logging.Ctx(c.Request.Context()).Debug().Err(cause).Msg("request not authorized")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msgNotAuthorized})
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
