package testserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

func created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func badRequest(c *gin.Context, msg string)   { fail(c, http.StatusBadRequest, msg) }
func unauthorized(c *gin.Context, msg string) { fail(c, http.StatusUnauthorized, msg) }
func forbidden(c *gin.Context, msg string)    { fail(c, http.StatusForbidden, msg) }
func notFound(c *gin.Context, msg string)     { fail(c, http.StatusNotFound, msg) }
func conflict(c *gin.Context, msg string)     { fail(c, http.StatusConflict, msg) }

// paramID parses a numeric path parameter, answering 404 when it is not one.
func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		notFound(c, "not found")
		return 0, false
	}
	return id, true
}
