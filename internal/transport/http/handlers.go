package httpserver

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/middleware/origin"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/util"
)

type OrderSearcher interface {
	Search(ctx context.Context, origin, email, query string, from, size int) (int64, []models.Order, error)
}

type StorefrontHTTP struct {
	Registry *service.Registry
	Search   OrderSearcher
}

type cartResponse struct {
	Items        []models.CartItem `json:"items"`
	Count        int               `json:"count"`
	Total        decimal.Decimal   `json:"total"`
	DisplayTotal string            `json:"display_total"`
}

func cartView(sf *service.Storefront) cartResponse {
	return cartResponse{
		Items:        sf.Cart.Items(),
		Count:        sf.Cart.TotalItemCount(),
		Total:        sf.Cart.TotalPrice(),
		DisplayTotal: sf.Cart.DisplayTotal(),
	}
}

// open returns the caller's storefront locked; the caller must Unlock it.
func (h *StorefrontHTTP) open(c echo.Context) (*service.Storefront, error) {
	id := origin.FromContext(c)
	if id == "" {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "origin missing")
	}
	sf, err := h.Registry.Get(c.Request().Context(), id)
	if err != nil {
		return nil, err
	}
	sf.Lock()
	return sf, nil
}

func (h *StorefrontHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req service.RegisterInput
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	sf, err := h.open(c)
	if err != nil {
		return fail(l, "register_error", err)
	}
	defer sf.Unlock()

	sess, err := sf.Register(ctx, req)
	if err != nil {
		return fail(l, "register_error", err)
	}

	l.Info("register_success", "user_id", sess.ID)
	return c.JSON(http.StatusCreated, sess)
}

func (h *StorefrontHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	sf, err := h.open(c)
	if err != nil {
		return fail(l, "login_error", err)
	}
	defer sf.Unlock()

	sess, err := sf.Login(ctx, req.Email, req.Password)
	if err != nil {
		return fail(l, "login_error", err)
	}

	l.Info("login_success", "user_id", sess.ID)
	return c.JSON(http.StatusOK, sess)
}

func (h *StorefrontHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")

	sf, err := h.open(c)
	if err != nil {
		return fail(l, "logout_error", err)
	}
	defer sf.Unlock()

	if err := sf.Logout(ctx); err != nil {
		return fail(l, "logout_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *StorefrontHTTP) GetSession(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.session")

	sf, err := h.open(c)
	if err != nil {
		return fail(l, "get_session_error", err)
	}
	defer sf.Unlock()

	sess, err := sf.CurrentSession(ctx)
	if err != nil {
		return fail(l, "get_session_error", err)
	}
	return c.JSON(http.StatusOK, sess)
}

func (h *StorefrontHTTP) GetCart(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "cart.get")

	sf, err := h.open(c)
	if err != nil {
		return fail(l, "get_cart_error", err)
	}
	defer sf.Unlock()

	return c.JSON(http.StatusOK, cartView(sf))
}

func (h *StorefrontHTTP) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	var req struct {
		ID    string          `json:"id"`
		Name  string          `json:"name"`
		Price decimal.Decimal `json:"price"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("add_to_cart_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	sf, err := h.open(c)
	if err != nil {
		return fail(l, "add_to_cart_error", err)
	}
	defer sf.Unlock()

	if err := sf.Cart.Add(ctx, req.ID, req.Name, req.Price); err != nil {
		return fail(l, "add_to_cart_error", err)
	}

	l.Info("item added successfully to cart", "item_id", req.ID)
	return c.JSON(http.StatusOK, cartView(sf))
}

func (h *StorefrontHTTP) UpdateQuantity(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update_quantity")

	var req struct {
		Delta int `json:"delta"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("update_quantity_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	sf, err := h.open(c)
	if err != nil {
		return fail(l, "update_quantity_error", err)
	}
	defer sf.Unlock()

	if err := sf.Cart.UpdateQuantity(ctx, c.Param("id"), req.Delta); err != nil {
		return fail(l, "update_quantity_error", err)
	}
	return c.JSON(http.StatusOK, cartView(sf))
}

func (h *StorefrontHTTP) RemoveFromCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove")

	sf, err := h.open(c)
	if err != nil {
		return fail(l, "remove_from_cart_error", err)
	}
	defer sf.Unlock()

	if err := sf.Cart.Remove(ctx, c.Param("id")); err != nil {
		return fail(l, "remove_from_cart_error", err)
	}
	return c.JSON(http.StatusOK, cartView(sf))
}

func (h *StorefrontHTTP) ClearCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear")

	sf, err := h.open(c)
	if err != nil {
		return fail(l, "clear_cart_error", err)
	}
	defer sf.Unlock()

	if err := sf.Cart.Clear(ctx); err != nil {
		return fail(l, "clear_cart_error", err)
	}

	l.Info("cart successfully cleared")
	return c.JSON(http.StatusOK, cartView(sf))
}

func (h *StorefrontHTTP) InitiateCheckout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout.initiate")

	sf, err := h.open(c)
	if err != nil {
		return fail(l, "initiate_checkout_error", err)
	}
	defer sf.Unlock()

	sum, err := sf.Checkout.Initiate(ctx)
	if err != nil {
		return fail(l, "initiate_checkout_error", err)
	}
	return c.JSON(http.StatusOK, sum)
}

func (h *StorefrontHTTP) CancelCheckout(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "checkout.cancel")

	sf, err := h.open(c)
	if err != nil {
		return fail(l, "cancel_checkout_error", err)
	}
	defer sf.Unlock()

	if err := sf.Checkout.Cancel(); err != nil {
		return fail(l, "cancel_checkout_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *StorefrontHTTP) CheckoutState(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "checkout.state")

	sf, err := h.open(c)
	if err != nil {
		return fail(l, "checkout_state_error", err)
	}
	defer sf.Unlock()

	return c.JSON(http.StatusOK, echo.Map{"state": sf.Checkout.State()})
}

func (h *StorefrontHTTP) SubmitPayment(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout.submit_payment")

	var req struct {
		Shipping models.ShippingInfo `json:"shipping"`
		Payment  models.PaymentInfo  `json:"payment"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("submit_payment_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	sf, err := h.open(c)
	if err != nil {
		return fail(l, "submit_payment_error", err)
	}
	defer sf.Unlock()

	order, err := sf.Checkout.SubmitPayment(ctx, req.Shipping, req.Payment)
	if err != nil {
		return fail(l, "submit_payment_error", err)
	}

	l.Info("submit_payment_success", "order_id", order.ID)
	return c.JSON(http.StatusCreated, order)
}

func (h *StorefrontHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "orders.list")

	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	offset, limit := util.Calculate(page, size)

	sf, err := h.open(c)
	if err != nil {
		return fail(l, "list_orders_error", err)
	}
	defer sf.Unlock()

	orders, err := sf.OrderHistory(ctx)
	if err != nil {
		return fail(l, "list_orders_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"total": len(orders), "orders": util.Window(orders, offset, limit)})
}

func (h *StorefrontHTTP) SearchOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "orders.search")

	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	from, size := util.Calculate(page, size)

	sf, err := h.open(c)
	if err != nil {
		return fail(l, "search_orders_error", err)
	}
	sess, err := sf.CurrentSession(ctx)
	sf.Unlock()
	if err != nil {
		return fail(l, "search_orders_error", err)
	}

	total, orders, err := h.Search.Search(ctx, sf.Origin, sess.Email, c.QueryParam("q"), from, size)
	if err != nil {
		return fail(l, "search_orders_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"total": total, "orders": orders})
}
