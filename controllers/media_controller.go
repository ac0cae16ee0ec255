package controllers

import (
	"net/http"

	"catalog-service/models"
	"catalog-service/services"

	"github.com/gin-gonic/gin"
)

type MediaController struct {
	*CRUDController[models.Media, models.MediaRequest]
	mediaService services.MediaService
}

func NewMediaController(mediaService services.MediaService) *MediaController {
	return &MediaController{
		CRUDController: NewCRUDController[models.Media, models.MediaRequest](mediaService, "media", "media"),
		mediaService:   mediaService,
	}
}

// List handles GET /admin/api/media, optionally ?inventory=<id>.
func (mc *MediaController) List(ctx *gin.Context) {
	inventoryID, ok := parseOptionalID(ctx, "inventory")
	if !ok {
		return
	}
	if inventoryID == nil {
		mc.CRUDController.List(ctx)
		return
	}

	media, svcErr := mc.mediaService.ListByInventory(ctx.Request.Context(), *inventoryID)
	if svcErr != nil {
		writeServiceError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"media": media})
}

// Presign handles POST /admin/api/media/presign. The client uploads with the
// returned URL and headers, then creates the media row with the key.
func (mc *MediaController) Presign(ctx *gin.Context) {
	var req models.PresignRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		writeBindError(ctx, err)
		return
	}

	resp, svcErr := mc.mediaService.Presign(ctx.Request.Context(), &req)
	if svcErr != nil {
		writeServiceError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}
