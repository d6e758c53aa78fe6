package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/textlens/internal/middleware"
	"github.com/xxxsen/textlens/internal/pkg/jwt"
)

type RouterDeps struct {
	Auth            *AuthHandler
	Analyze         *AnalyzeHandler
	System          *SystemHandler
	Signer          *jwt.Signer
	UserLookup      middleware.UserLookup
	AnalyzeInterval time.Duration
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	authn := middleware.JWTAuth(deps.Signer, deps.UserLookup)

	api.GET("/", deps.System.Index)
	api.GET("/db/test", deps.System.DBTest)

	authGroup := api.Group("/auth")
	authGroup.POST("/register", deps.Auth.Register)
	authGroup.POST("/login", deps.Auth.Login)
	authGroup.POST("/logout", deps.Auth.Logout)
	authGroup.GET("/me", authn, deps.Auth.Me)

	analyzeGroup := api.Group("/analyze")
	analyzeGroup.GET("/health", deps.Analyze.Health)
	analyzeGroup.POST("/", authn, middleware.RateLimit(deps.AnalyzeInterval), deps.Analyze.Analyze)
}
