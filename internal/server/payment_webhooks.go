package server

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	checkoutdomain "github.com/reelforge/reelforge/internal/checkout/domain"
)

func (s *Server) HandlePaymentWebhook(c *gin.Context) {
	provider := strings.TrimSpace(c.Param("provider"))
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	err = s.checkoutSvc.HandleWebhook(c.Request.Context(), provider, payload, c.Request.Header)
	if err != nil {
		// Providers retry on anything but 2xx. Duplicates and event types
		// we don't consume must be acknowledged, not errored.
		if errors.Is(err, checkoutdomain.ErrEventAlreadyProcessed) ||
			errors.Is(err, checkoutdomain.ErrEventIgnored) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
			return
		}
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
