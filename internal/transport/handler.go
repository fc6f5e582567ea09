package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"cloth-auth-go/internal/config"
	apperrors "cloth-auth-go/internal/errors"
	"cloth-auth-go/internal/logger"
	"cloth-auth-go/internal/registry"
)

type RegisterRequest struct {
	ImageRef string `json:"image_ref" binding:"required"`
}

type VerifyRequest struct {
	ImageRef string `json:"image_ref" binding:"required"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// NewHandler configures the HTTP surface over the item registry.
func NewHandler(items registry.ItemRegistry, cfg *config.Config) http.Handler {
	r := gin.Default()

	// Add middleware
	r.Use(
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	// Configure routes
	r.GET("/health", healthCheck)
	r.POST("/items", registerItem(items, cfg))
	r.GET("/items", listItems(items))
	r.GET("/items/:id", getItem(items))
	r.POST("/items/:id/verify", verifyItem(items, cfg))
	r.DELETE("/items/:id", deleteItem(items))

	return r
}

func registerItem(items registry.ItemRegistry, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}

		logger.WithFields(logrus.Fields{
			"image_ref": req.ImageRef,
			"ip":        c.ClientIP(),
		}).Info("Processing item registration request")

		identity, report, err := items.Register(ctx, req.ImageRef)
		if err != nil {
			respondError(c, determineStatusCode(err), "registration failed", err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"identity": identity,
			"degraded": report.Degraded,
		})
	}
}

func verifyItem(items registry.ItemRegistry, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		itemID := c.Param("id")

		var req VerifyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}

		result, err := items.Verify(ctx, itemID, req.ImageRef)
		if err != nil {
			respondError(c, determineStatusCode(err), "verification failed", err)
			return
		}

		logger.WithFields(logrus.Fields{
			"item_id":          itemID,
			"authentic":        result.Authentic,
			"total_similarity": result.TotalSimilarity,
		}).Info("Item verification completed")

		c.JSON(http.StatusOK, result)
	}
}

func getItem(items registry.ItemRegistry) gin.HandlerFunc {
	return func(c *gin.Context) {
		itemID := c.Param("id")

		identity, err := items.Get(itemID)
		if err != nil {
			respondError(c, determineStatusCode(err), "lookup failed", err)
			return
		}
		if identity == nil {
			respondError(c, http.StatusNotFound, "item not found",
				apperrors.NewNotFoundError("item not found: "+itemID, nil))
			return
		}

		c.JSON(http.StatusOK, identity)
	}
}

func listItems(items registry.ItemRegistry) gin.HandlerFunc {
	return func(c *gin.Context) {
		identities, err := items.List()
		if err != nil {
			respondError(c, determineStatusCode(err), "listing failed", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"count": len(identities),
			"items": identities,
		})
	}
}

func deleteItem(items registry.ItemRegistry) gin.HandlerFunc {
	return func(c *gin.Context) {
		itemID := c.Param("id")

		existed, err := items.Delete(itemID)
		if err != nil {
			respondError(c, determineStatusCode(err), "deletion failed", err)
			return
		}
		if !existed {
			respondError(c, http.StatusNotFound, "item not found",
				apperrors.NewNotFoundError("item not found: "+itemID, nil))
			return
		}

		c.JSON(http.StatusOK, gin.H{"deleted": itemID})
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": "1.0.0",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// Middleware and helper functions
func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()
			respondError(c, determineStatusCode(err), "request processing failed", err)
		}
	}
}

func determineStatusCode(err error) int {
	// Check if it's a custom app error first
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	// Fallback to context-based errors
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, code int, message string, err error) {
	// Log the error with context
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	c.AbortWithStatusJSON(code, ErrorResponse{
		Error:   http.StatusText(code),
		Message: fmt.Sprintf("%s: %v", message, err),
	})
}
