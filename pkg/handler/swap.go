package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"custodial_swap_back/models"
	"custodial_swap_back/pkg/middleware"
)

func (h *Handler) QuoteSwap(c *gin.Context) {
	var req models.SwapRequest
	if err := c.BindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, Error{Message: err.Error()})
		return
	}
	userID := c.GetInt64(middleware.UserIDKey)

	preview, err := h.service.Swap.Quote(c.Request.Context(), userID, req)
	if err != nil {
		newErrorResponse(c, err)
		return
	}

	wrapOkJSON(c, map[string]interface{}{
		"quote": preview,
	})
}

func (h *Handler) ExecuteSwap(c *gin.Context) {
	var req models.SwapRequest
	if err := c.BindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, Error{Message: err.Error()})
		return
	}
	userID := c.GetInt64(middleware.UserIDKey)

	result, err := h.service.Swap.Execute(c.Request.Context(), userID, req)
	if err != nil {
		newErrorResponse(c, err)
		return
	}

	wrapOkJSON(c, map[string]interface{}{
		"trade": result,
	})
}
