package helpers

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/campus/internal/app/models/dto"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	DefaultPage     = 1
)

// CalculateOffsetLimit converts a 1-based page and a size into SQL offset and limit.
func CalculateOffsetLimit(page, size int) (offset uint64, limit int) {
	limit = clampSize(size)
	if page < 1 {
		page = DefaultPage
	}
	return uint64((page - 1) * limit), limit
}

// CalculateSliceIndices returns the bounds of a page within totalItems in-memory rows.
func CalculateSliceIndices(page, size, totalItems int) (start, end int) {
	offset, limit := CalculateOffsetLimit(page, size)
	start = min(int(offset), totalItems)
	end = min(start+limit, totalItems)
	return start, end
}

// NewPaginationInfo builds the pagination block of a list response.
func NewPaginationInfo(totalItems int64, page, size int) dto.PaginationInfo {
	size = clampSize(size)
	if page < 1 {
		page = DefaultPage
	}

	totalPages := int(math.Ceil(float64(totalItems) / float64(size)))
	if totalPages == 0 {
		totalPages = 1
	}

	return dto.PaginationInfo{
		CurrentPage: min(page, totalPages),
		TotalPages:  totalPages,
		PageSize:    size,
		TotalItems:  totalItems,
	}
}

// ParsePaginationParams reads ?page= and ?size= from the request
func ParsePaginationParams(c *gin.Context) (page, size int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = DefaultPage
	}
	size, err = strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(DefaultPageSize)))
	if err != nil {
		size = DefaultPageSize
	}
	return page, clampSize(size)
}

func clampSize(size int) int {
	if size <= 0 || size > MaxPageSize {
		return DefaultPageSize
	}
	return size
}
