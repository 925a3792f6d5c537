/*
Package order exposes checkout, order display and tracking.

Binding failures answer 400 through response.HandleError; everything the
services return goes through response.HandleAppError, which maps domain
errors to codes. Missing, forged and foreign orders all answer the same 404.
*/
package order

import (
	"net/http"

	"jewelry/api/ctxutil"
	"jewelry/api/response"
	orderapp "jewelry/application/order"
	"jewelry/pkg/errors"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	creation *orderapp.CreationService
	lookup   *orderapp.LookupService

	optionalAuth gin.HandlerFunc
	requireAuth  gin.HandlerFunc
	trackLimit   gin.HandlerFunc
}

func NewController(
	creation *orderapp.CreationService,
	lookup *orderapp.LookupService,
	optionalAuth, requireAuth, trackLimit gin.HandlerFunc,
) *Controller {
	return &Controller{
		creation:     creation,
		lookup:       lookup,
		optionalAuth: optionalAuth,
		requireAuth:  requireAuth,
		trackLimit:   trackLimit,
	}
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	orders := router.Group("/orders")
	{
		orders.POST("", c.optionalAuth, c.PlaceOrder)
		orders.POST("/track", c.trackLimit, c.Track)
		orders.GET("/:token", c.optionalAuth, c.GetOrder)
	}
	router.GET("/me/orders", c.requireAuth, c.MyOrders)
}

// PlaceOrder POST /api/v1/orders
func (c *Controller) PlaceOrder(ctx *gin.Context) {
	var req orderapp.CreateOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}

	placed, err := c.creation.PlaceOrder(ctx.Request.Context(), ctxutil.Viewer(ctx), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleCreated(ctx, placed, "Order placed")
}

// GetOrder GET /api/v1/orders/:token?guest=
func (c *Controller) GetOrder(ctx *gin.Context) {
	o, err := c.lookup.Display(ctx.Request.Context(), ctxutil.Viewer(ctx), ctx.Param("token"), ctx.Query("guest"))
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, o, "Order retrieved")
}

// Track POST /api/v1/orders/track
func (c *Controller) Track(ctx *gin.Context) {
	var req orderapp.TrackRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}

	orders, err := c.lookup.GetByPhone(ctx.Request.Context(), req.Phone)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	if len(orders) == 0 {
		response.HandleAppError(ctx, errors.NotFound("no orders found for this phone number"))
		return
	}

	response.HandleSuccess(ctx, orders, "Orders retrieved")
}

// MyOrders GET /api/v1/me/orders
func (c *Controller) MyOrders(ctx *gin.Context) {
	orders, err := c.lookup.GetForOwner(ctx.Request.Context(), ctxutil.Viewer(ctx).UserID)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, orders, "Orders retrieved")
}
