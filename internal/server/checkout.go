package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	checkoutdomain "github.com/reelforge/reelforge/internal/checkout/domain"
)

func (s *Server) CreateCheckoutSession(c *gin.Context) {
	var req checkoutdomain.SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.checkoutSvc.CreateSession(c.Request.Context(), s.userID(c), s.brandID(c), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
