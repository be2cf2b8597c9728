package v1

import (
	"strconv"

	"go-hiring-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// pathID parses a positive integer path parameter.
func pathID(c *gin.Context, name, label string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.BadRequest("Invalid " + label)
	}
	return id, nil
}

// pageParams reads the cursor and limit query parameters. A missing limit
// falls back to the default page size.
func pageParams(c *gin.Context) (string, int, error) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return "", 0, apperror.BadRequest("Invalid limit")
		}
		limit = n
	}
	return c.Query("cursor"), limit, nil
}
