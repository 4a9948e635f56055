package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func JSON200(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

func JSON201(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

func JSON400(c *gin.Context, message string) {
	abortWithError(c, http.StatusBadRequest, message)
}

func JSON401(c *gin.Context, message string) {
	abortWithError(c, http.StatusUnauthorized, message)
}

func JSON404(c *gin.Context, message string) {
	abortWithError(c, http.StatusNotFound, message)
}

func JSON413(c *gin.Context, message string) {
	abortWithError(c, http.StatusRequestEntityTooLarge, message)
}

func JSON500(c *gin.Context, message string) {
	abortWithError(c, http.StatusInternalServerError, message)
}

func JSON503(c *gin.Context, data interface{}) {
	c.AbortWithStatusJSON(http.StatusServiceUnavailable, data)
}

func abortWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}
