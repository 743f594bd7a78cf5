package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"storefront/internal/catalog"
	"storefront/internal/chat"
	"storefront/internal/checkout"
	"storefront/internal/models"
	"storefront/internal/session"
	"storefront/internal/util"
	"storefront/internal/view"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// SessionHeader carries the session id for the header-addressed routes
const SessionHeader = "X-Session-ID"

// Checker reports whether a dependency can serve requests
type Checker func(ctx context.Context) error

// Handler contains HTTP handlers
type Handler struct {
	sessions *session.Manager
	ready    Checker
}

// NewHandler creates a new HTTP handler. ready may be nil.
func NewHandler(sessions *session.Manager, ready Checker) *Handler {
	return &Handler{
		sessions: sessions,
		ready:    ready,
	}
}

type addItemRequest struct {
	ItemID string `json:"item_id" binding:"required"`
}

type quantityRequest struct {
	Delta *int `json:"delta" binding:"required,min=-999,max=999"`
}

type detailsRequest struct {
	Name       string `json:"name" binding:"omitempty,max=120"`
	Email      string `json:"email" binding:"omitempty,email"`
	PickupDate string `json:"pickup_date" binding:"omitempty,datetime=2006-01-02"`
}

func (r detailsRequest) draft() models.OrderDraft {
	return models.OrderDraft{CustomerName: r.Name, CustomerEmail: r.Email, PickupDate: r.PickupDate}
}

type categoryRequest struct {
	Category string `json:"category" binding:"required"`
}

type messageRequest struct {
	Text string `json:"text" binding:"required"`
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/catalog", h.listCatalog)
		v1.POST("/sessions", h.createSession)

		h.sessionRoutes(v1.Group("/sessions/:id"))
		h.sessionRoutes(v1.Group("/session"))
	}
}

// sessionRoutes registers the per-session actions; the session comes from
// the :id path parameter or, when the group has none, the session header.
func (h *Handler) sessionRoutes(g *gin.RouterGroup) {
	g.GET("", h.getSession)
	g.DELETE("", h.deleteSession)

	g.POST("/cart/items", h.addItem)
	g.DELETE("/cart/items/:itemID", h.removeItem)
	g.PATCH("/cart/items/:itemID", h.updateQuantity)
	g.POST("/cart/open", h.openCart)
	g.POST("/cart/close", h.closeCart)

	g.POST("/checkout/advance", h.advance)
	g.PUT("/checkout/details", h.captureDetails)
	g.POST("/checkout/back", h.backToBrowsing)
	g.POST("/checkout/reset", h.keepBrowsing)

	g.PUT("/category", h.selectCategory)

	g.POST("/chat/open", h.openChat)
	g.POST("/chat/close", h.closeChat)
	g.POST("/chat/messages", h.sendMessage)
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	if h.ready != nil {
		if err := h.ready(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unavailable",
				"details": err.Error(),
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// listCatalog returns the menu, optionally filtered by category
func (h *Handler) listCatalog(c *gin.Context) {
	tag, err := catalog.ParseCategory(c.Query("category"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"category": tag,
		"products": view.Products(h.sessions.Catalog().Filter(tag)),
	})
}

// createSession starts a visitor session
func (h *Handler) createSession(c *gin.Context) {
	state, err := h.sessions.Create(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header(SessionHeader, state.ID())
	c.JSON(http.StatusCreated, view.Project(state))
}

// getSession returns the current view of a session
func (h *Handler) getSession(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	state, err := h.sessions.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view.Project(state))
}

// deleteSession ends a session
func (h *Handler) deleteSession(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	if err := h.sessions.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) addItem(c *gin.Context) {
	var req addItemRequest
	if !bind(c, &req) {
		return
	}
	h.cartOperation(c, "add", func(s *session.State) error {
		return s.AddItem(req.ItemID)
	})
}

func (h *Handler) removeItem(c *gin.Context) {
	itemID := c.Param("itemID")
	h.cartOperation(c, "remove", func(s *session.State) error {
		s.RemoveItem(itemID)
		return nil
	})
}

func (h *Handler) updateQuantity(c *gin.Context) {
	var req quantityRequest
	if !bind(c, &req) {
		return
	}
	itemID := c.Param("itemID")
	h.cartOperation(c, "update_quantity", func(s *session.State) error {
		s.UpdateQuantity(itemID, *req.Delta)
		return nil
	})
}

func (h *Handler) openCart(c *gin.Context) {
	h.update(c, func(s *session.State) error {
		s.OpenCart()
		return nil
	})
}

func (h *Handler) closeCart(c *gin.Context) {
	h.update(c, func(s *session.State) error {
		s.CloseCart()
		return nil
	})
}

// advance runs the drawer's primary action; pickup details may be sent
// along with "Place Order"
func (h *Handler) advance(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	var details *models.OrderDraft
	if hasBody(c) {
		var req detailsRequest
		if !bind(c, &req) {
			return
		}
		d := req.draft()
		details = &d
	}

	state, err := h.sessions.Advance(c.Request.Context(), id, details)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view.Project(state))
}

func (h *Handler) captureDetails(c *gin.Context) {
	var req detailsRequest
	if !bind(c, &req) {
		return
	}
	h.update(c, func(s *session.State) error {
		return s.CaptureDetails(req.draft())
	})
}

func (h *Handler) backToBrowsing(c *gin.Context) {
	h.checkoutOperation(c, "back", func(s *session.State) error {
		return s.BackToBrowsing()
	})
}

func (h *Handler) keepBrowsing(c *gin.Context) {
	h.checkoutOperation(c, "reset", func(s *session.State) error {
		return s.KeepBrowsing()
	})
}

func (h *Handler) selectCategory(c *gin.Context) {
	var req categoryRequest
	if !bind(c, &req) {
		return
	}
	tag, err := catalog.ParseCategory(req.Category)
	if err != nil {
		writeError(c, err)
		return
	}
	h.update(c, func(s *session.State) error {
		s.SelectCategory(tag)
		return nil
	})
}

func (h *Handler) openChat(c *gin.Context) {
	h.update(c, func(s *session.State) error {
		s.OpenChat()
		return nil
	})
}

func (h *Handler) closeChat(c *gin.Context) {
	h.update(c, func(s *session.State) error {
		s.CloseChat()
		return nil
	})
}

// sendMessage asks the bakery assistant and returns once the reply is in
func (h *Handler) sendMessage(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	var req messageRequest
	if !bind(c, &req) {
		return
	}

	state, err := h.sessions.Ask(c.Request.Context(), id, req.Text)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view.Project(state))
}

func (h *Handler) cartOperation(c *gin.Context, op string, fn func(*session.State) error) {
	if h.update(c, fn) {
		util.CartOperationsTotal.WithLabelValues(op).Inc()
	}
}

func (h *Handler) checkoutOperation(c *gin.Context, action string, fn func(*session.State) error) {
	h.update(c, func(s *session.State) error {
		if err := fn(s); err != nil {
			if errors.Is(err, checkout.ErrInvalidTransition) {
				util.CheckoutRejectedTotal.WithLabelValues(action).Inc()
			}
			return err
		}
		util.CheckoutTransitionsTotal.WithLabelValues(s.Phase().String()).Inc()
		return nil
	})
}

// update applies fn to the addressed session and writes the new view
func (h *Handler) update(c *gin.Context, fn func(*session.State) error) bool {
	id, ok := sessionID(c)
	if !ok {
		return false
	}
	state, err := h.sessions.Update(c.Request.Context(), id, fn)
	if err != nil {
		writeError(c, err)
		return false
	}
	c.JSON(http.StatusOK, view.Project(state))
	return true
}

func sessionID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if id == "" {
		id = c.GetHeader(SessionHeader)
	}
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Missing session ID",
		})
		return "", false
	}
	return id, true
}

func bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return false
	}
	return true
}

func hasBody(c *gin.Context) bool {
	return c.Request.Body != nil && c.Request.Body != http.NoBody && c.Request.ContentLength != 0
}

// writeError maps domain errors to status codes
func writeError(c *gin.Context, err error) {
	status, msg := http.StatusInternalServerError, "Failed to update session"

	switch {
	case errors.Is(err, session.ErrNotFound):
		status, msg = http.StatusNotFound, "Session not found"
	case errors.Is(err, session.ErrUnknownItem):
		status, msg = http.StatusNotFound, "Item not found"
	case errors.Is(err, catalog.ErrUnknownCategory):
		status, msg = http.StatusBadRequest, "Unknown category"
	case errors.Is(err, chat.ErrEmptyMessage):
		status, msg = http.StatusBadRequest, "Message is empty"
	case errors.Is(err, checkout.ErrInvalidTransition):
		status, msg = http.StatusConflict, "Invalid checkout transition"
	case errors.Is(err, session.ErrEmptyCart):
		status, msg = http.StatusConflict, "Cart is empty"
	case errors.Is(err, chat.ErrBusy):
		status, msg = http.StatusConflict, "Rosie is still answering"
	default:
		util.GetLogger().Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}

	c.JSON(status, gin.H{
		"error":   msg,
		"details": err.Error(),
	})
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
