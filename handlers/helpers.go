package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// parsePagination reads page/limit query params with the API defaults.
func parsePagination(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return page, limit
}

// totalPages is ceil(total/limit).
func totalPages(total int64, limit int) int64 {
	return (total + int64(limit) - 1) / int64(limit)
}

// likePattern builds a case-insensitive substring match argument for
// LOWER(col) LIKE ?.
func likePattern(search string) string {
	return "%" + strings.ToLower(search) + "%"
}
