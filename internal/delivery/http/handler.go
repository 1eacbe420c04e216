package http

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/stocklens/backend/internal/domain"
	"github.com/stocklens/backend/internal/usecase"
)

// maxRecentLimit caps the limit query parameter of the recent feed
const maxRecentLimit = 100

// Handler holds dependencies for HTTP handlers
type Handler struct {
	stockService *usecase.StockService
}

// NewHandler creates a new HTTP handler
func NewHandler(stockService *usecase.StockService) *Handler {
	return &Handler{
		stockService: stockService,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "stocklens-backend",
		"version": "1.0.0",
	})
}

// CreateSearchRequest is the body of POST /searches/:retailer
type CreateSearchRequest struct {
	SKU   string `json:"sku"`
	Title string `json:"title"`
	Image string `json:"image"`
}

// LookupStock handles GET /stock/:retailer/:sku?zip=&title=&image=
func (h *Handler) LookupStock(c *gin.Context) {
	if !h.ready(c) {
		return
	}

	request := &domain.LookupRequest{
		Retailer:  domain.Retailer(c.Param("retailer")),
		SKU:       c.Param("sku"),
		Title:     c.Query("title"),
		Image:     c.Query("image"),
		Zipcode:   c.Query("zip"),
		SessionID: SessionID(c),
	}

	result, err := h.stockService.Lookup(c.Request.Context(), request)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// CreateSearch handles POST /searches/:retailer and returns the lookup path
// for the recorded search
func (h *Handler) CreateSearch(c *gin.Context) {
	if !h.ready(c) {
		return
	}

	var body CreateSearchRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	path, err := h.stockService.CreateSearch(c.Request.Context(), domain.Retailer(c.Param("retailer")), domain.SearchIdentity{
		SKU:   body.SKU,
		Title: body.Title,
		Image: body.Image,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"lookupPath": path})
}

// RecentSearches handles GET /searches/:retailer/recent?limit=
func (h *Handler) RecentSearches(c *gin.Context) {
	if !h.ready(c) {
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxRecentLimit {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 100"})
			return
		}
		limit = n
	}

	retailer := domain.Retailer(c.Param("retailer"))
	searches, err := h.stockService.RecentSearches(c.Request.Context(), retailer, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"retailer": retailer,
		"searches": searches,
	})
}

// SessionZipcode handles GET /session/zipcode
func (h *Handler) SessionZipcode(c *gin.Context) {
	if !h.ready(c) {
		return
	}

	zip, ok := h.stockService.LastZip(c.Request.Context(), SessionID(c))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no zipcode remembered for this session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"zipcode": zip})
}

// ForgetSessionZipcode handles DELETE /session/zipcode
func (h *Handler) ForgetSessionZipcode(c *gin.Context) {
	if !h.ready(c) {
		return
	}

	if err := h.stockService.ForgetZip(c.Request.Context(), SessionID(c)); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) ready(c *gin.Context) bool {
	if h.stockService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "stock service not configured"})
		return false
	}
	return true
}

// respondError maps domain errors to HTTP status codes
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrInvalidZipcode):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrUnknownRetailer), errors.Is(err, domain.ErrStockNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrAdapter), errors.Is(err, domain.ErrStockAPIFailure):
		status = http.StatusBadGateway
	}

	if status >= http.StatusInternalServerError {
		log.Printf("[HTTP] %s %s request_id=%s: %v", c.Request.Method, c.Request.URL.Path, c.Writer.Header().Get(RequestIDHeader), err)
	}

	c.JSON(status, gin.H{"error": err.Error()})
}
