package product

import (
	"net/http"

	"jewelry/api/response"
	"jewelry/application/catalog"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	catalog *catalog.Service
}

func NewController(catalog *catalog.Service) *Controller {
	return &Controller{catalog: catalog}
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/products/stock", c.Stock)
}

// Stock POST /api/v1/products/stock
func (c *Controller) Stock(ctx *gin.Context) {
	var req catalog.StockRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}

	levels, err := c.catalog.Stock(ctx.Request.Context(), req.ProductIDs)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, levels, "Stock retrieved")
}
