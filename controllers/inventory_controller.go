package controllers

import (
	"net/http"

	"catalog-service/models"
	"catalog-service/services"

	"github.com/gin-gonic/gin"
)

type InventoryController struct {
	*CRUDController[models.ProductInventory, models.InventoryRequest]
	inventoryService services.InventoryService
}

func NewInventoryController(inventoryService services.InventoryService) *InventoryController {
	return &InventoryController{
		CRUDController:   NewCRUDController[models.ProductInventory, models.InventoryRequest](inventoryService, "inventory", "inventory"),
		inventoryService: inventoryService,
	}
}

// List handles GET /admin/api/inventory, optionally ?product=<id>.
func (ic *InventoryController) List(ctx *gin.Context) {
	productID, ok := parseOptionalID(ctx, "product")
	if !ok {
		return
	}
	if productID == nil {
		ic.CRUDController.List(ctx)
		return
	}

	items, svcErr := ic.inventoryService.ListByProduct(ctx.Request.Context(), *productID)
	if svcErr != nil {
		writeServiceError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"inventory": items})
}

// AttachValue handles POST /admin/api/inventory/:id/attribute-values/:valueId.
func (ic *InventoryController) AttachValue(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	valueID, ok := parseID(ctx, "valueId")
	if !ok {
		return
	}

	inv, svcErr := ic.inventoryService.AttachValue(ctx.Request.Context(), id, valueID)
	if svcErr != nil {
		writeServiceError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"inventory": inv})
}

func (ic *InventoryController) DetachValue(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	valueID, ok := parseID(ctx, "valueId")
	if !ok {
		return
	}

	if svcErr := ic.inventoryService.DetachValue(ctx.Request.Context(), id, valueID); svcErr != nil {
		writeServiceError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Attribute value unlinked"})
}
