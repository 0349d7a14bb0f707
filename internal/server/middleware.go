package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	obscontext "github.com/reelforge/reelforge/internal/observability/context"
	"github.com/reelforge/reelforge/internal/observability/logger"
)

// Identity arrives pre-authenticated from the edge proxy as headers. The
// boundary only validates presence and threads the identifiers into the
// request context.
const (
	headerUserID  = "X-User-Id"
	headerBrandID = "X-Brand-Id"
	headerAdminID = "X-Admin-Id"

	ctxKeyUserID  = "identity.user_id"
	ctxKeyBrandID = "identity.brand_id"
	ctxKeyAdminID = "identity.admin_id"
)

func (s *Server) UserRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(headerUserID))
		if userID == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		c.Set(ctxKeyUserID, userID)
		ctx := obscontext.WithActor(c.Request.Context(), "user", userID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (s *Server) BrandRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(headerUserID))
		brandID := strings.TrimSpace(c.GetHeader(headerBrandID))
		if userID == "" || brandID == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		c.Set(ctxKeyUserID, userID)
		c.Set(ctxKeyBrandID, brandID)
		ctx := obscontext.WithActor(c.Request.Context(), "user", userID)
		ctx = obscontext.WithBrandID(ctx, brandID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (s *Server) AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		adminID := strings.TrimSpace(c.GetHeader(headerAdminID))
		if adminID == "" {
			AbortWithError(c, ErrForbidden)
			return
		}

		c.Set(ctxKeyAdminID, adminID)
		ctx := obscontext.WithActor(c.Request.Context(), "admin", adminID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (s *Server) userID(c *gin.Context) string {
	return c.GetString(ctxKeyUserID)
}

func (s *Server) brandID(c *gin.Context) string {
	return c.GetString(ctxKeyBrandID)
}

func (s *Server) adminID(c *gin.Context) string {
	return c.GetString(ctxKeyAdminID)
}

func (s *Server) CheckoutRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.Enabled() {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		res, err := s.limiter.AllowCheckout(ctx, s.userID(c))
		if err != nil {
			logger.FromContext(ctx).Warn("checkout rate limit check failed", zap.Error(err))
			AbortWithError(c, ErrServiceUnavailable)
			return
		}
		if !res.Allowed {
			s.denyRateLimited(c, "checkout", "user-rate", res.RetryAfter.String())
			return
		}

		s.obsMetrics.RecordRateLimitAllowed(ctx, "checkout")
		c.Next()
	}
}

func (s *Server) WebhookRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.Enabled() {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		provider := strings.TrimSpace(c.Param("provider"))
		res, err := s.limiter.AllowWebhook(ctx, provider)
		if err != nil {
			logger.FromContext(ctx).Warn("webhook rate limit check failed", zap.Error(err))
			AbortWithError(c, ErrServiceUnavailable)
			return
		}
		if !res.Allowed {
			s.denyRateLimited(c, "webhook", "provider-rate", res.RetryAfter.String())
			return
		}

		s.obsMetrics.RecordRateLimitAllowed(ctx, "webhook")
		c.Next()
	}
}

func (s *Server) denyRateLimited(c *gin.Context, endpoint, reason, retryAfter string) {
	ctx := c.Request.Context()
	logger.FromContext(ctx).Warn("rate limit exceeded",
		zap.String("endpoint", endpoint),
		zap.String("reason", reason),
	)
	s.obsMetrics.RecordRateLimitDenied(ctx, endpoint, reason)

	c.Header("Retry-After", retryAfter)
	c.Header("X-Rate-Limited-Reason", reason)
	AbortWithError(c, ErrRateLimited)
}
