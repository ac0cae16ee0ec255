package controllers

import (
	"net/http"

	"catalog-service/models"
	"catalog-service/services"

	"github.com/gin-gonic/gin"
)

// StockController serves stock rows addressed by their inventory id.
type StockController struct {
	inventoryService services.InventoryService
}

func NewStockController(inventoryService services.InventoryService) *StockController {
	return &StockController{inventoryService: inventoryService}
}

func (sc *StockController) ListStock(ctx *gin.Context) {
	page, limit := parsePaginationParams(ctx)
	items, total, svcErr := sc.inventoryService.ListStock(ctx.Request.Context(), page, limit)
	if svcErr != nil {
		writeServiceError(ctx, svcErr)
		return
	}
	writeList(ctx, "stock", items, total, page, limit)
}

func (sc *StockController) GetStock(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	stock, svcErr := sc.inventoryService.GetStock(ctx.Request.Context(), id)
	if svcErr != nil {
		writeServiceError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"stock": stock})
}

// SetStock handles PUT on a stock row, creating it when missing.
func (sc *StockController) SetStock(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	var req models.StockRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		writeBindError(ctx, err)
		return
	}

	stock, svcErr := sc.inventoryService.SetStock(ctx.Request.Context(), id, &req)
	if svcErr != nil {
		writeServiceError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"stock": stock})
}

func (sc *StockController) MarkChecked(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	stock, svcErr := sc.inventoryService.MarkStockChecked(ctx.Request.Context(), id)
	if svcErr != nil {
		writeServiceError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"stock": stock})
}

func (sc *StockController) DeleteStock(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	if svcErr := sc.inventoryService.DeleteStock(ctx.Request.Context(), id); svcErr != nil {
		writeServiceError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Stock deleted"})
}
