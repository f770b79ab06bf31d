package rest

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func Router(h *Handler, adminToken string, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), loggerMiddleware(log))

	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "Content-Type", HeaderSessionID},
		ExposeHeaders: []string{"Content-Length"},
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	api := r.Group("/api/v1")
	{
		api.GET("/categories", h.ListCategories)
		api.GET("/products", h.ListProducts)
		api.GET("/products/:id", h.GetProduct)

		api.GET("/delivery/cities", h.Cities)
		api.GET("/delivery/departments", h.Departments)

		api.POST("/sessions", h.StartSession)
	}

	sess := api.Group("", SessionRequired(h.checkout))
	{
		sess.DELETE("/sessions", h.EndSession)

		sess.GET("/cart", h.GetCart)
		sess.POST("/cart/items", h.AddCartItem)
		sess.PUT("/cart/items/:product_id", h.SetCartItemQuantity)
		sess.DELETE("/cart/items/:product_id", h.RemoveCartItem)
		sess.DELETE("/cart", h.ClearCart)

		sess.POST("/orders", h.PlaceOrder)
		sess.GET("/orders", h.ListOrders)
		sess.GET("/orders/:id", h.GetOrder)
	}

	admin := api.Group("/admin", AdminRequired(adminToken, log))
	{
		admin.PATCH("/orders/:id/status", h.ChangeOrderStatus)
	}

	return r
}
