package httpserver

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/storefront/internal/middleware/origin"
)

type Deps struct {
	Storefront   *StorefrontHTTP
	OriginSecret []byte
	SecureCookie bool
	Ready        func(ctx context.Context) error
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return c.JSON(503, echo.Map{"error": err.Error()})
			}
		}
		return c.NoContent(200)
	})

	v1 := e.Group("/api/v1", origin.Middleware(d.OriginSecret, d.SecureCookie))
	h := d.Storefront

	v1.POST("/register", h.Register)
	v1.POST("/login", h.Login)
	v1.POST("/logout", h.Logout)
	v1.GET("/session", h.GetSession)

	cart := v1.Group("/cart")

	cart.GET("", h.GetCart)
	cart.DELETE("", h.ClearCart)
	cart.POST("/items", h.AddToCart)
	cart.PATCH("/items/:id", h.UpdateQuantity)
	cart.DELETE("/items/:id", h.RemoveFromCart)

	checkout := v1.Group("/checkout")

	checkout.GET("", h.CheckoutState)
	checkout.POST("", h.InitiateCheckout)
	checkout.DELETE("", h.CancelCheckout)
	checkout.POST("/payment", h.SubmitPayment)

	v1.GET("/orders", h.ListOrders)
	if h.Search != nil {
		v1.GET("/orders/search", h.SearchOrders)
	}
}

// NewEcho builds the echo instance with the standard middleware chain.
func NewEcho(mw ...echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(mw...)
	return e
}
