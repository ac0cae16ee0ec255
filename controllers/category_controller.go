package controllers

import (
	"net/http"

	"catalog-service/models"
	"catalog-service/services"

	"github.com/gin-gonic/gin"
)

type CategoryController struct {
	categoryService services.CategoryService
}

func NewCategoryController(categoryService services.CategoryService) *CategoryController {
	return &CategoryController{categoryService: categoryService}
}

// CreateCategory handles POST /admin/api/categories.
func (cc *CategoryController) CreateCategory(ctx *gin.Context) {
	var req models.CategoryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		writeBindError(ctx, err)
		return
	}

	category, svcErr := cc.categoryService.CreateCategory(ctx.Request.Context(), &req)
	if svcErr != nil {
		writeServiceError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"category": category})
}

// UpdateCategory handles PUT /admin/api/categories/:id. A changed parent_id
// moves the whole subtree.
func (cc *CategoryController) UpdateCategory(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	var req models.CategoryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		writeBindError(ctx, err)
		return
	}

	category, svcErr := cc.categoryService.UpdateCategory(ctx.Request.Context(), id, &req)
	if svcErr != nil {
		writeServiceError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"category": category})
}

func (cc *CategoryController) DeleteCategory(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	if svcErr := cc.categoryService.DeleteCategory(ctx.Request.Context(), id); svcErr != nil {
		writeServiceError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
}

func (cc *CategoryController) GetCategory(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	category, svcErr := cc.categoryService.GetCategory(ctx.Request.Context(), id)
	if svcErr != nil {
		writeServiceError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"category": category})
}

func (cc *CategoryController) ListCategories(ctx *gin.Context) {
	page, limit := parsePaginationParams(ctx)
	categories, total, svcErr := cc.categoryService.ListCategories(ctx.Request.Context(), page, limit)
	if svcErr != nil {
		writeServiceError(ctx, svcErr)
		return
	}
	writeList(ctx, "categories", categories, total, page, limit)
}

// GetTree handles GET /admin/api/categories/tree.
func (cc *CategoryController) GetTree(ctx *gin.Context) {
	nodes, svcErr := cc.categoryService.Tree(ctx.Request.Context())
	if svcErr != nil {
		writeServiceError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"categories": nodes})
}

func (cc *CategoryController) GetDescendants(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	categories, svcErr := cc.categoryService.Descendants(ctx.Request.Context(), id, ctx.Query("include_self") == "true")
	if svcErr != nil {
		writeServiceError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (cc *CategoryController) GetAncestors(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	categories, svcErr := cc.categoryService.Ancestors(ctx.Request.Context(), id, ctx.Query("include_self") == "true")
	if svcErr != nil {
		writeServiceError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"categories": categories})
}
