package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/textlens/internal/model"
	"github.com/xxxsen/textlens/internal/pkg/errcode"
	appErr "github.com/xxxsen/textlens/internal/pkg/errors"
	"github.com/xxxsen/textlens/internal/pkg/jwt"
	"github.com/xxxsen/textlens/internal/pkg/response"
)

const (
	ContextUserIDKey  = "user_id"
	ContextUserKey    = "user"
	AccessTokenCookie = "access_token"
)

type UserLookup func(ctx context.Context, userID string) (*model.User, error)

// bearerToken reads the Authorization header first and falls back to the access token cookie.
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		if token := strings.TrimSpace(parts[1]); token != "" {
			return token
		}
	}
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil {
		return cookie
	}
	return ""
}

func JWTAuth(signer *jwt.Signer, lookup UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			response.Error(c, http.StatusUnauthorized, errcode.ErrUnauthorized, "Not authenticated")
			return
		}
		claims, err := signer.ParseToken(token)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, errcode.ErrUnauthorized, "Invalid token")
			return
		}
		userID := claims.Subject
		if lookup != nil {
			user, err := lookup(c.Request.Context(), userID)
			if err != nil {
				if errors.Is(err, appErr.ErrUnauthorized) || appErr.IsNotFound(err) {
					response.Error(c, http.StatusUnauthorized, errcode.ErrUnauthorized, "User not found")
					return
				}
				logutil.GetLogger(c.Request.Context()).Error("resolve token user failed", zap.Error(err))
				response.Error(c, http.StatusInternalServerError, errcode.ErrInternal, "internal error")
				return
			}
			c.Set(ContextUserKey, user)
		}
		c.Set(ContextUserIDKey, userID)
		if claims.Email != "" {
			c.Set("user_email", claims.Email)
		}
		c.Next()
	}
}
