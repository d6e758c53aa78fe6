package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/textlens/internal/ai"
	"github.com/xxxsen/textlens/internal/middleware"
	"github.com/xxxsen/textlens/internal/model"
	"github.com/xxxsen/textlens/internal/pkg/errcode"
	appErr "github.com/xxxsen/textlens/internal/pkg/errors"
	"github.com/xxxsen/textlens/internal/pkg/response"
	"github.com/xxxsen/textlens/internal/service"
)

func getUserID(c *gin.Context) string {
	return c.GetString(middleware.ContextUserIDKey)
}

func getUser(c *gin.Context) *model.User {
	value, _ := c.Get(middleware.ContextUserKey)
	user, _ := value.(*model.User)
	return user
}

type userView struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

func toUserView(u *model.User) userView {
	return userView{
		ID:        u.ID,
		Email:     u.Email,
		CreatedAt: time.Unix(u.Ctime, 0).UTC().Format(time.RFC3339),
	}
}

func upstreamCode(service string) int {
	if service == ai.ServiceClassification {
		return errcode.ErrClassifierUnavailable
	}
	return errcode.ErrSummarizerUnavailable
}

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	logger := logutil.GetLogger(c.Request.Context()).With(
		zap.String("request_id", c.GetString(middleware.ContextRequestIDKey)),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.String("user_id", getUserID(c)),
	)
	var upstream *ai.UpstreamError
	switch {
	case errors.Is(err, service.ErrTextTooShort):
		response.Error(c, http.StatusBadRequest, errcode.ErrTextTooShort, err.Error())
	case errors.Is(err, service.ErrTextTooLong):
		response.Error(c, http.StatusBadRequest, errcode.ErrTextTooLong, err.Error())
	case errors.Is(err, appErr.ErrConflict):
		response.Error(c, http.StatusBadRequest, errcode.ErrConflict, "Email already registered")
	case errors.Is(err, appErr.ErrInvalid):
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, err.Error())
	case errors.Is(err, appErr.ErrUnauthorized):
		response.Error(c, http.StatusUnauthorized, errcode.ErrUnauthorized, "Invalid credentials")
	case errors.Is(err, appErr.ErrTooMany):
		response.Error(c, http.StatusTooManyRequests, errcode.ErrTooMany, http.StatusText(http.StatusTooManyRequests))
	case errors.As(err, &upstream):
		logger.Error("upstream failure", zap.Error(err))
		response.Error(c, http.StatusServiceUnavailable, upstreamCode(upstream.Service), upstream.Error())
	default:
		logger.Error("request failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, errcode.ErrInternal, "internal error")
	}
}

func badRequest(c *gin.Context, message string) {
	response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, message)
}
