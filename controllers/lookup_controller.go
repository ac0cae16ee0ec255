package controllers

import (
	"net/http"

	"catalog-service/models"
	"catalog-service/services"

	"github.com/gin-gonic/gin"
)

// AttributeValueController adds filtering by attribute to the CRUD endpoints.
type AttributeValueController struct {
	*CRUDController[models.ProductAttributeValue, models.AttributeValueRequest]
	valueService services.AttributeValueService
}

func NewAttributeValueController(valueService services.AttributeValueService) *AttributeValueController {
	return &AttributeValueController{
		CRUDController: NewCRUDController[models.ProductAttributeValue, models.AttributeValueRequest](valueService, "attribute_value", "attribute_values"),
		valueService:   valueService,
	}
}

// List handles GET /admin/api/attribute-values, optionally ?attribute=<id>.
func (vc *AttributeValueController) List(ctx *gin.Context) {
	attributeID, ok := parseOptionalID(ctx, "attribute")
	if !ok {
		return
	}
	if attributeID == nil {
		vc.CRUDController.List(ctx)
		return
	}

	values, svcErr := vc.valueService.ListByAttribute(ctx.Request.Context(), *attributeID)
	if svcErr != nil {
		writeServiceError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"attribute_values": values})
}
