package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	cartdomain "github.com/reelforge/reelforge/internal/cart/domain"
)

func (s *Server) ListCartItems(c *gin.Context) {
	resp, err := s.cartSvc.List(c.Request.Context(), s.brandID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) AddCartItem(c *gin.Context) {
	var req cartdomain.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req.RecipeID = strings.TrimSpace(req.RecipeID)

	resp, err := s.cartSvc.Add(c.Request.Context(), s.brandID(c), s.userID(c), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateCartItem(c *gin.Context) {
	var req cartdomain.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.cartSvc.Update(c.Request.Context(), s.brandID(c), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RemoveCartItem(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := s.cartSvc.Remove(c.Request.Context(), s.brandID(c), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) ClearCart(c *gin.Context) {
	if err := s.cartSvc.Clear(c.Request.Context(), s.brandID(c)); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) QuoteCart(c *gin.Context) {
	resp, err := s.cartSvc.Quote(c.Request.Context(), s.brandID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
