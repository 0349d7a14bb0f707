package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	upgradedomain "github.com/reelforge/reelforge/internal/upgrade/domain"
)

func (s *Server) SubmitUpgradeRequest(c *gin.Context) {
	var req upgradedomain.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req.VideoLink = strings.TrimSpace(req.VideoLink)

	resp, err := s.upgradeSvc.Submit(c.Request.Context(), s.brandID(c), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListUpgradeRequests(c *gin.Context) {
	resp, err := s.upgradeSvc.ListForBrand(c.Request.Context(), s.brandID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListPendingUpgradeRequests(c *gin.Context) {
	resp, err := s.upgradeSvc.ListPending(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ApproveUpgradeRequest(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.upgradeSvc.Approve(c.Request.Context(), id, s.adminID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RejectUpgradeRequest(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.upgradeSvc.Reject(c.Request.Context(), id, s.adminID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
