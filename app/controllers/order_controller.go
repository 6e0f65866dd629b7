package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/shopfront/app/services"
	"github.com/shashiranjanraj/shopfront/pkg/ctx"
)

type OrderController struct {
	orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{orders: orders}
}

func (oc *OrderController) Index(c *ctx.Context) {
	orders, err := oc.orders.List(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.List(orders, int64(len(orders)))
}

func (oc *OrderController) Show(c *ctx.Context) {
	order, err := oc.orders.Get(c.Context(), c.Param("id"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(order)
}

// Store places an order for the authenticated caller (or, for admins, the
// user named in the body).
func (oc *OrderController) Store(c *ctx.Context) {
	var in services.OrderInput
	if !c.BindJSON(&in) {
		return
	}
	order, err := oc.orders.CreateOrder(c.Context(), c.Principal(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	respond(c, http.StatusCreated, "Order was created successfully", order)
}

func (oc *OrderController) Update(c *ctx.Context) {
	var in struct {
		Status string `json:"status" validate:"required,max=50"`
	}
	if !c.BindJSON(&in) {
		return
	}
	order, err := oc.orders.UpdateStatus(c.Context(), c.Param("id"), in.Status)
	if err != nil {
		c.Fail(err)
		return
	}
	respond(c, http.StatusOK, "Order was updated successfully", order)
}

func (oc *OrderController) Destroy(c *ctx.Context) {
	if err := oc.orders.DeleteOrder(c.Context(), c.Param("id")); err != nil {
		c.Fail(err)
		return
	}
	c.Message(http.StatusOK, "Order was deleted successfully")
}

func (oc *OrderController) TotalSales(c *ctx.Context) {
	total, err := oc.orders.TotalSales(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(total)
}

func (oc *OrderController) Count(c *ctx.Context) {
	n, err := oc.orders.Count(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	count(c, n)
}

func (oc *OrderController) UserOrders(c *ctx.Context) {
	orders, err := oc.orders.ByUser(c.Context(), c.Param("userId"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.List(orders, int64(len(orders)))
}
