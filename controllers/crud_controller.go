package controllers

import (
	"net/http"

	"catalog-service/services"

	"github.com/gin-gonic/gin"
)

// CRUDController serves the five standard endpoints of one entity. Responses
// wrap single rows under key and pages under plural.
type CRUDController[T any, R any] struct {
	service services.CRUDService[T, R]
	key     string
	plural  string
}

func NewCRUDController[T any, R any](service services.CRUDService[T, R], key, plural string) *CRUDController[T, R] {
	return &CRUDController[T, R]{service: service, key: key, plural: plural}
}

func (cc *CRUDController[T, R]) Create(ctx *gin.Context) {
	var req R
	if err := ctx.ShouldBindJSON(&req); err != nil {
		writeBindError(ctx, err)
		return
	}

	entity, svcErr := cc.service.Create(ctx.Request.Context(), &req)
	if svcErr != nil {
		writeServiceError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{cc.key: entity})
}

func (cc *CRUDController[T, R]) Get(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	entity, svcErr := cc.service.Get(ctx.Request.Context(), id)
	if svcErr != nil {
		writeServiceError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{cc.key: entity})
}

func (cc *CRUDController[T, R]) List(ctx *gin.Context) {
	page, limit := parsePaginationParams(ctx)

	items, total, svcErr := cc.service.List(ctx.Request.Context(), page, limit)
	if svcErr != nil {
		writeServiceError(ctx, svcErr)
		return
	}
	writeList(ctx, cc.plural, items, total, page, limit)
}

func (cc *CRUDController[T, R]) Update(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	var req R
	if err := ctx.ShouldBindJSON(&req); err != nil {
		writeBindError(ctx, err)
		return
	}

	entity, svcErr := cc.service.Update(ctx.Request.Context(), id, &req)
	if svcErr != nil {
		writeServiceError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{cc.key: entity})
}

func (cc *CRUDController[T, R]) Delete(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	if svcErr := cc.service.Delete(ctx.Request.Context(), id); svcErr != nil {
		writeServiceError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": cc.key + " deleted"})
}
