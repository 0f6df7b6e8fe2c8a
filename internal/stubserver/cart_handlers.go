package stubserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"storefront-client/internal/domain"
)

func (h *handlers) getCart(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.renderCart(h.email(c)))
}

type cartEntryRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func (h *handlers) replaceCart(c *gin.Context) {
	var entries []cartEntryRequest
	if err := c.ShouldBindJSON(&entries); err != nil {
		errorJSON(c, http.StatusBadRequest, "cart body must be a list of {productId, quantity}")
		return
	}

	lines := make([]cartLine, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, cartLine{ProductID: e.ProductID, Quantity: e.Quantity})
	}
	items, err := h.store.replaceCart(h.email(c), lines)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *handlers) removeCartItem(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.removeCartItem(h.email(c), c.Param("productId")))
}

func (h *handlers) clearCart(c *gin.Context) {
	h.store.clearCart(h.email(c))
	c.Status(http.StatusNoContent)
}

func (h *handlers) createOrder(c *gin.Context) {
	var req domain.OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "malformed order request")
		return
	}
	order, err := h.store.createOrder(h.email(c), req)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *handlers) pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	return page, size
}

func (h *handlers) listOrders(c *gin.Context) {
	page, size := h.pageParams(c)
	orders, last := h.store.listOrders(h.email(c), page, size)
	c.JSON(http.StatusOK, gin.H{"orders": orders, "last": last})
}

func (h *handlers) listShipments(c *gin.Context) {
	page, size := h.pageParams(c)
	shipments, last := h.store.listShipments(h.email(c), page, size)
	c.JSON(http.StatusOK, gin.H{"content": shipments, "last": last})
}

func (h *handlers) listCargos(c *gin.Context) {
	page, size := h.pageParams(c)
	cargos, last := h.store.listCargos(h.email(c), page, size)
	c.JSON(http.StatusOK, gin.H{"content": cargos, "last": last})
}

func (h *handlers) listReferrals(c *gin.Context) {
	page, size := h.pageParams(c)
	referrals, last := h.store.listReferrals(h.email(c), page, size)
	c.JSON(http.StatusOK, gin.H{"content": referrals, "last": last})
}

func (h *handlers) me(c *gin.Context) {
	u, ok := h.store.getUser(h.email(c))
	if !ok {
		errorJSON(c, http.StatusNotFound, "user not found")
		return
	}
	c.JSON(http.StatusOK, domain.Identity{Email: u.Email, Username: u.Username, Role: u.Role})
}

func (h *handlers) loyalty(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.getLoyalty(h.email(c)))
}

func (h *handlers) paymentMethods(c *gin.Context) {
	c.JSON(http.StatusOK, []domain.PaymentMethod{})
}
