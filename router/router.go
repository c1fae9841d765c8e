package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/andikarw/resto-order-api/controllers"
	"github.com/andikarw/resto-order-api/middlewares"
)

func SetupRouter(db *gorm.DB) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	userCtrl := controllers.NewUserController(db)
	menuCtrl := controllers.NewMenuController(db)
	cartCtrl := controllers.NewCartController(db)
	orderCtrl := controllers.NewOrderController(db)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Rate limiter for login/register
	public := r.Group("/")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/register", userCtrl.Register)
		public.POST("/login", userCtrl.Login)
	}

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/")
	auth.Use(middlewares.AuthMiddleware())
	auth.Use(middlewares.RoleResolver(db))

	auth.GET("/profile", userCtrl.GetProfile)

	// MENU (read-only; managed elsewhere)
	auth.GET("/menu-items", menuCtrl.GetAllMenuItems)
	auth.GET("/menu-items/:menu_item_id", menuCtrl.GetMenuItemByID)

	// CART (customers only)
	cart := auth.Group("/cart")
	cart.Use(middlewares.RequireCustomer())
	{
		cart.GET("/menu-items", cartCtrl.GetCart)
		cart.POST("/menu-items", cartCtrl.AddToCart)
		cart.DELETE("/menu-items", cartCtrl.ClearCart)
	}

	// ORDERS (role-scoped inside the controller)
	auth.GET("/orders", orderCtrl.GetAllOrders)
	auth.POST("/orders", orderCtrl.Checkout)
	auth.GET("/orders/:order_id", orderCtrl.GetOrderByID)
	auth.PATCH("/orders/:order_id", orderCtrl.UpdateOrder)
	auth.PUT("/orders/:order_id", orderCtrl.UpdateOrder)
	auth.DELETE("/orders/:order_id", orderCtrl.DeleteOrder)

	return r
}
