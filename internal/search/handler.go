package search

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/faqhub/infrastructure/logger"
	"github.com/jonesrussell/faqhub/internal/domain"
)

const internalErrorMessage = "internal server error"

// Handler serves the search API.
type Handler struct {
	service *Service
	logger  logger.Logger
}

// NewHandler creates a new handler instance.
func NewHandler(service *Service, log logger.Logger) *Handler {
	return &Handler{service: service, logger: log}
}

// RegisterRoutes mounts the search API under /api/v1.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	v1.GET("/search", h.Search)
	v1.GET("/articles/:slug", h.GetArticle)
}

// Search handles GET /api/v1/search.
func (h *Handler) Search(c *gin.Context) {
	req := Request{
		Query:    c.Query("q"),
		Platform: c.Query("platform"),
		Category: c.Query("category"),
	}
	if limit := c.Query("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		req.Limit = n
	}

	resp, err := h.service.Search(c.Request.Context(), req)
	if errors.Is(err, ErrEmptyQuery) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter q is required"})
		return
	}
	if err != nil {
		logger.FromContext(c.Request.Context(), h.logger).Error("Search failed",
			logger.Error(err),
			logger.String("query", req.Query),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": internalErrorMessage})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetArticle handles GET /api/v1/articles/:slug.
func (h *Handler) GetArticle(c *gin.Context) {
	slug := c.Param("slug")

	article, err := h.service.Article(c.Request.Context(), slug)
	if errors.Is(err, domain.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
		return
	}
	if err != nil {
		logger.FromContext(c.Request.Context(), h.logger).Error("Article lookup failed",
			logger.Error(err),
			logger.String("slug", slug),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": internalErrorMessage})
		return
	}

	c.JSON(http.StatusOK, article)
}
