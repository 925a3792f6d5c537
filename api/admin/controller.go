// Package admin is the back-office API. Every route sits behind the admin
// gate handed to NewController.
package admin

import (
	"net/http"
	"strconv"
	"time"

	"jewelry/api/response"
	adminapp "jewelry/application/admin"
	orderapp "jewelry/application/order"
	"jewelry/pkg/errors"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	admin      *adminapp.Service
	transition *orderapp.TransitionService
	gate       gin.HandlerFunc
}

func NewController(admin *adminapp.Service, transition *orderapp.TransitionService, gate gin.HandlerFunc) *Controller {
	return &Controller{admin: admin, transition: transition, gate: gate}
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/admin", c.gate)
	{
		group.PATCH("/orders/:id/status", c.UpdateStatus)
		group.GET("/orders", c.ListOrders)
		group.GET("/dashboard", c.Dashboard)
	}
}

// UpdateStatus PATCH /api/v1/admin/orders/:id/status
func (c *Controller) UpdateStatus(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.HandleAppError(ctx, errors.OrderNotFound())
		return
	}

	var req orderapp.UpdateStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleError(ctx, err, "status is required", http.StatusBadRequest)
		return
	}

	updated, err := c.transition.Transition(ctx.Request.Context(), id, req.Status)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, updated, "Order status updated")
}

type listQuery struct {
	Status   string `form:"status"`
	From     string `form:"from"`
	To       string `form:"to"`
	Page     int    `form:"page" binding:"omitempty,gte=1"`
	PageSize int    `form:"page_size" binding:"omitempty,gte=1,lte=100"`
}

// ListOrders GET /api/v1/admin/orders
func (c *Controller) ListOrders(ctx *gin.Context) {
	var q listQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		response.HandleError(ctx, err, "invalid query parameters", http.StatusBadRequest)
		return
	}

	from, err := parseDate(q.From)
	if err != nil {
		response.HandleAppError(ctx, errors.Validation("from must be a date (YYYY-MM-DD or RFC 3339)"))
		return
	}
	to, err := parseDate(q.To)
	if err != nil {
		response.HandleAppError(ctx, errors.Validation("to must be a date (YYYY-MM-DD or RFC 3339)"))
		return
	}

	list, err := c.admin.ListOrders(ctx.Request.Context(), adminapp.ListFilter{
		Status:   q.Status,
		From:     from,
		To:       to,
		Page:     q.Page,
		PageSize: q.PageSize,
	})
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandlePaginated(ctx, list.Orders, response.NewPagination(list.Page, list.PageSize, list.Total), "Orders retrieved")
}

// Dashboard GET /api/v1/admin/dashboard
func (c *Controller) Dashboard(ctx *gin.Context) {
	d, err := c.admin.Dashboard(ctx.Request.Context())
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	response.HandleSuccess(ctx, d, "Dashboard retrieved")
}

func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Parse(time.RFC3339, raw)
}
