package stubserver

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"storefront-client/internal/domain"
	"storefront-client/internal/security"
)

const emailCtxKey = "stub.email"

type handlers struct {
	store  *Store
	secret []byte
	ttl    time.Duration
	logger zerolog.Logger
}

// buildRouter wires the stub backend's routes.
func buildRouter(store *Store, secret string, ttl time.Duration, logger zerolog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	h := &handlers{store: store, secret: []byte(secret), ttl: ttl, logger: logger}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.POST("/auth/register", h.register)
	router.POST("/auth/login", h.login)
	router.GET("/products", h.listProducts)
	router.POST("/promocodes/validate", h.validatePromo)

	authed := router.Group("", h.authRequired)
	authed.POST("/auth/logout", h.logout)
	authed.GET("/cart", h.getCart)
	authed.PUT("/cart", h.replaceCart)
	authed.DELETE("/cart/remove/:productId", h.removeCartItem)
	authed.DELETE("/cart/clear", h.clearCart)
	authed.POST("/orders", h.createOrder)
	authed.GET("/orders", h.listOrders)
	authed.GET("/shipments", h.listShipments)
	authed.GET("/cargos", h.listCargos)
	authed.GET("/referrals", h.listReferrals)
	authed.GET("/users/me", h.me)
	authed.GET("/users/me/loyalty", h.loyalty)
	authed.GET("/users/me/payment-methods", h.paymentMethods)

	return router
}

func errorJSON(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"message": message})
}

func (h *handlers) authRequired(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		errorJSON(c, http.StatusUnauthorized, "missing bearer token")
		return
	}
	raw := strings.TrimPrefix(header, "Bearer ")

	var claims security.Claims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return h.secret, nil
	})
	if err != nil || !token.Valid {
		errorJSON(c, http.StatusUnauthorized, "invalid or expired token")
		return
	}
	c.Set(emailCtxKey, claims.Email)
	c.Next()
}

func (h *handlers) email(c *gin.Context) string {
	return c.GetString(emailCtxKey)
}

func (h *handlers) issueToken(u *user) (string, error) {
	now := time.Now()
	claims := security.Claims{
		Email: u.Email,
		Role:  string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(h.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.secret)
}

type registerRequest struct {
	Username     string `json:"username" binding:"required"`
	Email        string `json:"email" binding:"required"`
	Password     string `json:"password" binding:"required"`
	ReferralCode string `json:"referralCode"`
}

func (h *handlers) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "username, email and password are required")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, "hash password")
		return
	}
	if err := h.store.createUser(email, req.Username, hash, req.ReferralCode); err != nil {
		errorJSON(c, http.StatusConflict, err.Error())
		return
	}

	u, _ := h.store.getUser(email)
	token, err := h.issueToken(u)
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, "issue token")
		return
	}
	c.JSON(http.StatusCreated, domain.AuthResponse{Token: token, Email: u.Email, Username: u.Username})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *handlers) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "email and password are required")
		return
	}

	u, ok := h.store.getUser(strings.ToLower(strings.TrimSpace(req.Email)))
	if !ok || bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(req.Password)) != nil {
		errorJSON(c, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := h.issueToken(u)
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, "issue token")
		return
	}
	c.JSON(http.StatusOK, domain.AuthResponse{Token: token, Email: u.Email, Username: u.Username})
}

func (h *handlers) logout(c *gin.Context) {
	// Stateless tokens: nothing to revoke, the client drops its credential.
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}

func (h *handlers) listProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))

	filter := productFilter{
		searchTerm: c.Query("searchTerm"),
		sortBy:     c.Query("sortBy"),
	}
	if raw := c.Query("minPrice"); raw != "" {
		if d, err := decimal.NewFromString(raw); err == nil {
			filter.minPrice = &d
		}
	}
	if raw := c.Query("maxPrice"); raw != "" {
		if d, err := decimal.NewFromString(raw); err == nil {
			filter.maxPrice = &d
		}
	}

	content, totalPages := h.store.filterProducts(filter, page, size)
	c.JSON(http.StatusOK, gin.H{"content": content, "totalPages": totalPages})
}

type promoRequest struct {
	Code string `json:"code" binding:"required"`
}

func (h *handlers) validatePromo(c *gin.Context) {
	var req promoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "code is required")
		return
	}
	promo, ok := h.store.validatePromo(req.Code)
	if !ok {
		errorJSON(c, http.StatusNotFound, "unknown promo code")
		return
	}
	c.JSON(http.StatusOK, gin.H{"discountType": promo.Type, "discountValue": promo.Value})
}
