package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/textlens/internal/pkg/errcode"
	"github.com/xxxsen/textlens/internal/pkg/response"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type SystemHandler struct {
	db      Pinger
	version string
}

func NewSystemHandler(db Pinger, version string) *SystemHandler {
	return &SystemHandler{db: db, version: version}
}

func (h *SystemHandler) Index(c *gin.Context) {
	response.Success(c, gin.H{
		"service": "textlens",
		"version": h.version,
		"endpoints": []string{
			"POST /auth/register",
			"POST /auth/login",
			"GET /auth/me",
			"POST /auth/logout",
			"POST /analyze/",
			"GET /analyze/health",
			"GET /db/test",
		},
	})
}

func (h *SystemHandler) DBTest(c *gin.Context) {
	if err := h.db.Ping(c.Request.Context()); err != nil {
		logutil.GetLogger(c.Request.Context()).Error("db ping failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, errcode.ErrDatabaseUnavailable, "DB connection failed: "+err.Error())
		return
	}
	response.Success(c, gin.H{"db_status": "Connected to database"})
}
