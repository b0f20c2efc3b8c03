package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/CUknot/messenger_backend/errors"
	"github.com/CUknot/messenger_backend/models"
	"github.com/CUknot/messenger_backend/utils"
)

const userKey = "user"

// UserFinder loads the user named by a token.
type UserFinder interface {
	FindUserByID(ctx context.Context, id uint) (models.User, error)
}

// TokenAuthenticator turns session tokens into active users.
type TokenAuthenticator struct {
	secret string
	users  UserFinder
}

func NewTokenAuthenticator(secret string, users UserFinder) *TokenAuthenticator {
	return &TokenAuthenticator{secret: secret, users: users}
}

func (a *TokenAuthenticator) Authenticate(ctx context.Context, token string) (*models.User, error) {
	userID, err := utils.ParseToken(token, a.secret)
	if err != nil {
		return nil, err
	}
	user, err := a.users.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown user %d", apperrors.ErrInvalidToken, userID)
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: user %d is inactive", apperrors.ErrInvalidToken, userID)
	}
	return &user, nil
}

// JWTAuth rejects requests without a valid "Authorization: Bearer" token
// and stores the authenticated user in the gin context.
func (a *TokenAuthenticator) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		user, err := a.Authenticate(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			if errors.Is(err, apperrors.ErrInvalidToken) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
				return
			}
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Authentication unavailable"})
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

// CurrentUser returns the user stored by JWTAuth.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	value, ok := c.Get(userKey)
	if !ok {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}

// SetCurrentUser stores user the way JWTAuth does.
func SetCurrentUser(c *gin.Context, user *models.User) {
	c.Set(userKey, user)
}
