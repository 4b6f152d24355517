package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	ord "github.com/restohub/restaurant-orders/internal/order"
)

func registerRoutes(r *gin.Engine, svc *ord.Service) {
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	v1 := r.Group("/api/v1")
	v1.POST("/orders", createOrderHandler(svc))
	v1.GET("/orders", listOrdersHandler(svc))
	v1.GET("/orders/table/:tableId", listOrdersByTableHandler(svc))
	v1.GET("/orders/table/:tableId/active", getActiveOrderHandler(svc))
	v1.GET("/orders/:id", getOrderHandler(svc))
	v1.PUT("/orders/:id", updateOrderHandler(svc))
	v1.PATCH("/orders/:id/status", updateOrderStatusHandler(svc))
	v1.DELETE("/orders/:id", deleteOrderHandler(svc))
	v1.POST("/orders/:id/items", addItemHandler(svc))
	v1.PUT("/orders/:id/items/:itemId", updateItemHandler(svc))
	v1.DELETE("/orders/:id/items/:itemId", removeItemHandler(svc))
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ord.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ord.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ord.ErrIllegalState), errors.Is(err, ord.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func createOrderHandler(svc *ord.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ord.CreateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		o, err := svc.Create(c.Request.Context(), req)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, o)
	}
}

func listOrdersHandler(svc *ord.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := ord.Query{
			Status:    ord.OrderStatus(c.Query("status")),
			TableID:   c.Query("tableId"),
			CreatedBy: c.Query("createdBy"),
		}
		q.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
		q.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))

		out, err := svc.List(c.Request.Context(), q)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

func listOrdersByTableHandler(svc *ord.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		orders, err := svc.ListByTable(c.Request.Context(), c.Param("tableId"))
		if err != nil {
			writeError(c, err)
			return
		}
		if orders == nil {
			orders = []ord.Order{}
		}
		c.JSON(http.StatusOK, orders)
	}
}

func getActiveOrderHandler(svc *ord.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := svc.ActiveByTable(c.Request.Context(), c.Param("tableId"))
		if err != nil {
			writeError(c, err)
			return
		}
		// No active order is a valid answer, not an error.
		c.JSON(http.StatusOK, o)
	}
}

func getOrderHandler(svc *ord.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

func updateOrderHandler(svc *ord.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ord.UpdateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		o, err := svc.Update(c.Request.Context(), c.Param("id"), req)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

func updateOrderStatusHandler(svc *ord.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Status ord.OrderStatus `json:"status" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		o, err := svc.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

func deleteOrderHandler(svc *ord.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func addItemHandler(svc *ord.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in ord.OrderItemInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		it, err := svc.AddItem(c.Request.Context(), c.Param("id"), in)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, it)
	}
}

func updateItemHandler(svc *ord.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ord.UpdateItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		it, err := svc.UpdateItem(c.Request.Context(), c.Param("id"), c.Param("itemId"), req)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, it)
	}
}

func removeItemHandler(svc *ord.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.RemoveItem(c.Request.Context(), c.Param("id"), c.Param("itemId")); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
