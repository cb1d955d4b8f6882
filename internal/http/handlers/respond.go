package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Error bodies carry a single "detail" field. The three failure classes are
// deliberately distinct: 403 means the object may exist but you cannot act on
// it, 404 means the identifier resolves to nothing, 400 means the input is
// malformed.

func forbidden(c *gin.Context) {
	c.JSON(http.StatusForbidden, gin.H{"detail": "forbidden"})
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"detail": "not found"})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"detail": msg})
}

func serverError(c *gin.Context, err error) {
	c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
}

// cloneID copies an optional FK value. Saving the bare pointer before a JSON
// bind is not enough: unmarshalling writes through the existing pointee, so
// the saved pointer would already hold the caller's value.
func cloneID(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "invalid id")
		return 0, false
	}
	return id, true
}
