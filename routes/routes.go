package routes

import (
	"net/http"

	"catalog-service/apperrors"
	"catalog-service/controllers"
	"catalog-service/middleware"
	"catalog-service/models"

	"github.com/gin-gonic/gin"
)

// Controllers bundles every handler set mounted under /admin.
type Controllers struct {
	Admin          *controllers.AdminController
	Category       *controllers.CategoryController
	Product        *controllers.ProductController
	ProductType    *controllers.CRUDController[models.ProductType, models.NameRequest]
	Brand          *controllers.CRUDController[models.Brand, models.NameRequest]
	Attribute      *controllers.CRUDController[models.ProductAttribute, models.AttributeRequest]
	AttributeValue *controllers.AttributeValueController
	Inventory      *controllers.InventoryController
	Media          *controllers.MediaController
	Stock          *controllers.StockController
}

type crudHandlers interface {
	Create(*gin.Context)
	Get(*gin.Context)
	List(*gin.Context)
	Update(*gin.Context)
	Delete(*gin.Context)
}

func registerCRUD(g *gin.RouterGroup, h crudHandlers) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

// RegisterAdminRoutes mounts the HTML admin pages and the JSON API.
func RegisterAdminRoutes(r *gin.Engine, c *Controllers, auth middleware.Authenticator) {
	r.SetHTMLTemplate(controllers.AdminTemplates())

	r.GET("/admin/login/", c.Admin.LoginPage)
	r.POST("/admin/login/", middleware.LoginRateLimit(), c.Admin.Login)
	r.POST("/admin/logout/", c.Admin.Logout)
	r.GET("/admin/", middleware.RequireAdminPage(auth, "/admin/login/"), c.Admin.Index)

	api := r.Group("/admin/api")
	api.Use(apperrors.ErrorMiddleware())
	api.Use(middleware.RequireAdminAPI(auth))

	api.GET("/me", c.Admin.Me)

	categories := api.Group("/categories")
	categories.GET("", c.Category.ListCategories)
	categories.POST("", c.Category.CreateCategory)
	categories.GET("/tree", c.Category.GetTree)
	categories.GET("/:id", c.Category.GetCategory)
	categories.PUT("/:id", c.Category.UpdateCategory)
	categories.DELETE("/:id", c.Category.DeleteCategory)
	categories.GET("/:id/descendants", c.Category.GetDescendants)
	categories.GET("/:id/ancestors", c.Category.GetAncestors)

	products := api.Group("/products")
	products.GET("", c.Product.ListProducts)
	products.POST("", c.Product.CreateProduct)
	products.GET("/web/:webId", c.Product.GetProductByWebID)
	products.GET("/:id", c.Product.GetProduct)
	products.PUT("/:id", c.Product.UpdateProduct)
	products.DELETE("/:id", c.Product.DeleteProduct)

	registerCRUD(api.Group("/product-types"), c.ProductType)
	registerCRUD(api.Group("/brands"), c.Brand)
	registerCRUD(api.Group("/attributes"), c.Attribute)
	registerCRUD(api.Group("/attribute-values"), c.AttributeValue)

	inventory := api.Group("/inventory")
	registerCRUD(inventory, c.Inventory)
	inventory.POST("/:id/attribute-values/:valueId", c.Inventory.AttachValue)
	inventory.DELETE("/:id/attribute-values/:valueId", c.Inventory.DetachValue)
	inventory.GET("/:id/stock", c.Stock.GetStock)
	inventory.PUT("/:id/stock", c.Stock.SetStock)

	media := api.Group("/media")
	media.POST("/presign", c.Media.Presign)
	registerCRUD(media, c.Media)

	stock := api.Group("/stock")
	stock.GET("", c.Stock.ListStock)
	stock.GET("/:id", c.Stock.GetStock)
	stock.PUT("/:id", c.Stock.SetStock)
	stock.DELETE("/:id", c.Stock.DeleteStock)
	stock.POST("/:id/check", c.Stock.MarkChecked)
}

// RegisterHealthRoutes mounts GET /health.
func RegisterHealthRoutes(r *gin.Engine, serviceName string) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK", "service": serviceName})
	})
}
