package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/saadjs/fitfuel/internal/service"
)

func (s *Server) cartKey(c *gin.Context) string {
	return service.CartKey(claimsOf(c).UserID)
}

// lockCart serializes mutations of the caller's cart.
func (s *Server) lockCart(c *gin.Context) func() {
	return s.locks.Lock("cart:" + s.cartKey(c))
}

func (s *Server) viewCart(c *gin.Context) {
	view, err := service.ViewCart(c.Request.Context(), s.store, s.cartKey(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type addCartItemRequest struct {
	MenuItemID string `json:"menuItemId" binding:"required"`
}

func (s *Server) addCartItem(c *gin.Context) {
	var req addCartItemRequest
	if !bind(c, &req) {
		return
	}
	defer s.lockCart(c)()
	view, err := service.AddMenuItemToCart(c.Request.Context(), s.db, s.store, s.cartKey(c), req.MenuItemID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type changeCartItemRequest struct {
	Delta int `json:"delta"`
	// Step removes the line when its quantity would reach zero; otherwise a
	// decrement that would empty the line is ignored.
	Step bool `json:"step"`
}

func (s *Server) changeCartItem(c *gin.Context) {
	var req changeCartItemRequest
	if !bind(c, &req) {
		return
	}
	defer s.lockCart(c)()
	var view service.CartView
	var err error
	if req.Step {
		view, err = service.StepCartItem(c.Request.Context(), s.store, s.cartKey(c), c.Param("itemID"), req.Delta)
	} else {
		view, err = service.UpdateCartQuantity(c.Request.Context(), s.store, s.cartKey(c), c.Param("itemID"), req.Delta)
	}
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) removeCartItem(c *gin.Context) {
	defer s.lockCart(c)()
	view, err := service.RemoveFromCart(c.Request.Context(), s.store, s.cartKey(c), c.Param("itemID"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) clearCart(c *gin.Context) {
	defer s.lockCart(c)()
	view, err := service.ClearCart(c.Request.Context(), s.store, s.cartKey(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type checkoutRequest struct {
	Currency string `json:"currency"`
}

func (s *Server) checkout(c *gin.Context) {
	if s.gateway == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "payments are not configured"})
		return
	}
	var req checkoutRequest
	if c.Request.ContentLength > 0 && !bind(c, &req) {
		return
	}
	if req.Currency == "" {
		req.Currency = s.currency
	}
	defer s.lockCart(c)()
	order, err := service.Checkout(c.Request.Context(), s.db, s.store, s.gateway, s.cartKey(c), req.Currency)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"order": order, "keyId": s.paymentKeyID})
}

type verifyRequest struct {
	GatewayOrderID string `json:"gatewayOrderId" binding:"required"`
	PaymentID      string `json:"paymentId" binding:"required"`
	Signature      string `json:"signature" binding:"required"`
}

func (s *Server) verifyPayment(c *gin.Context) {
	if s.gateway == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "payments are not configured"})
		return
	}
	var req verifyRequest
	if !bind(c, &req) {
		return
	}
	existing, err := service.GetOrderByGatewayID(s.db, req.GatewayOrderID)
	if err != nil {
		fail(c, err)
		return
	}
	if existing.CartKey != s.cartKey(c) {
		fail(c, fmt.Errorf("order belongs to another account: %w", errForbidden))
		return
	}
	defer s.lockCart(c)()
	order, err := service.ConfirmPayment(c.Request.Context(), s.db, s.store, s.gateway, service.ConfirmPaymentInput{
		GatewayOrderID: req.GatewayOrderID,
		PaymentID:      req.PaymentID,
		Signature:      req.Signature,
	})
	if err != nil {
		status := statusFor(err)
		c.AbortWithStatusJSON(status, gin.H{"error": err.Error(), "order": order})
		return
	}
	c.JSON(http.StatusOK, order)
}

func (s *Server) listOrders(c *gin.Context) {
	orders, err := service.ListOrders(s.db, s.cartKey(c), 0)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}
