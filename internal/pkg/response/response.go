package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type ErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Success writes data as the whole response body; clients read fields at the top level.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

func Error(c *gin.Context, status int, code int, message string) {
	c.AbortWithStatusJSON(status, ErrorBody{Code: code, Message: message})
}
