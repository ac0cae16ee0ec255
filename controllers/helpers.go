package controllers

import (
	"net/http"
	"strconv"

	"catalog-service/services"

	"github.com/gin-gonic/gin"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// listMeta is the pagination block every list response carries.
type listMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasMore    bool  `json:"has_more"`
}

func newListMeta(total int64, page, limit int) listMeta {
	m := listMeta{Page: page, Limit: limit, Total: total}
	if limit > 0 {
		m.TotalPages = (total + int64(limit) - 1) / int64(limit)
	}
	m.HasMore = int64(page)*int64(limit) < total
	return m
}

// positiveQuery reads a positive int query value, or def when it is absent
// or malformed.
func positiveQuery(ctx *gin.Context, key string, def int) int {
	n, err := strconv.Atoi(ctx.Query(key))
	if err != nil || n < 1 {
		return def
	}
	return n
}

// parsePaginationParams never fails; bad values fall back to page 1 and
// ten items, and limit is capped at maxLimit.
func parsePaginationParams(ctx *gin.Context) (page, limit int) {
	return positiveQuery(ctx, "page", defaultPage), min(positiveQuery(ctx, "limit", defaultLimit), maxLimit)
}

func parseUint(raw string) (uint, bool) {
	n, err := strconv.ParseUint(raw, 10, 0)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

// parseID reads the named path parameter and answers 400 if it is not a
// positive integer.
func parseID(ctx *gin.Context, name string) (uint, bool) {
	id, ok := parseUint(ctx.Param(name))
	if !ok {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
	}
	return id, ok
}

// parseOptionalID is parseID for query filters; an absent value is nil.
func parseOptionalID(ctx *gin.Context, name string) (*uint, bool) {
	raw, present := ctx.GetQuery(name)
	if !present || raw == "" {
		return nil, true
	}
	id, ok := parseUint(raw)
	if !ok {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return nil, false
	}
	return &id, true
}

func writeServiceError(ctx *gin.Context, svcErr *services.ServiceError) {
	ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
}

func writeBindError(ctx *gin.Context, err error) {
	ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
}

// writeList renders items under key next to their pagination meta.
func writeList(ctx *gin.Context, key string, items any, total int64, page, limit int) {
	ctx.JSON(http.StatusOK, gin.H{key: items, "meta": newListMeta(total, page, limit)})
}
