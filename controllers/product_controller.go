package controllers

import (
	"net/http"
	"strconv"

	"catalog-service/models"
	"catalog-service/services"

	"github.com/gin-gonic/gin"
)

type ProductController struct {
	productService services.ProductService
}

func NewProductController(productService services.ProductService) *ProductController {
	return &ProductController{productService: productService}
}

func (pc *ProductController) CreateProduct(ctx *gin.Context) {
	var req models.ProductRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		writeBindError(ctx, err)
		return
	}

	product, svcErr := pc.productService.CreateProduct(ctx.Request.Context(), &req)
	if svcErr != nil {
		writeServiceError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"product": product})
}

func (pc *ProductController) UpdateProduct(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	var req models.ProductRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		writeBindError(ctx, err)
		return
	}

	product, svcErr := pc.productService.UpdateProduct(ctx.Request.Context(), id, &req)
	if svcErr != nil {
		writeServiceError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"product": product})
}

func (pc *ProductController) DeleteProduct(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	if svcErr := pc.productService.DeleteProduct(ctx.Request.Context(), id); svcErr != nil {
		writeServiceError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

func (pc *ProductController) GetProduct(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	product, svcErr := pc.productService.GetProduct(ctx.Request.Context(), id)
	if svcErr != nil {
		writeServiceError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"product": product})
}

// GetProductByWebID handles GET /admin/api/products/web/:webId.
func (pc *ProductController) GetProductByWebID(ctx *gin.Context) {
	product, svcErr := pc.productService.GetProductByWebID(ctx.Request.Context(), ctx.Param("webId"))
	if svcErr != nil {
		writeServiceError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"product": product})
}

// ListProducts handles GET /admin/api/products?category=&is_active=&search=.
func (pc *ProductController) ListProducts(ctx *gin.Context) {
	page, limit := parsePaginationParams(ctx)

	categoryID, ok := parseOptionalID(ctx, "category")
	if !ok {
		return
	}
	filter := services.ProductListFilter{CategoryID: categoryID, Search: ctx.Query("search")}
	if raw := ctx.Query("is_active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid is_active"})
			return
		}
		filter.IsActive = &active
	}

	products, total, svcErr := pc.productService.ListProducts(ctx.Request.Context(), filter, page, limit)
	if svcErr != nil {
		writeServiceError(ctx, svcErr)
		return
	}
	writeList(ctx, "products", products, total, page, limit)
}
