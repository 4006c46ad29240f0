package handler

import (
	"github.com/gin-gonic/gin"

	"custodial_swap_back/pkg/middleware"
)

func (h *Handler) EnsureWallet(c *gin.Context) {
	userID := c.GetInt64(middleware.UserIDKey)
	email := c.GetString(middleware.UserEmailKey)

	w, _, err := h.service.Wallet.EnsureUserWallet(c.Request.Context(), userID, email)
	if err != nil {
		newErrorResponse(c, err)
		return
	}

	wrapOkJSON(c, map[string]interface{}{
		"public_key": w.PublicKey,
		"label":      w.Label,
		"status":     w.Status,
	})
}

func (h *Handler) ListWallets(c *gin.Context) {
	userID := c.GetInt64(middleware.UserIDKey)

	wallets, err := h.service.Wallet.ListWallets(c.Request.Context(), userID)
	if err != nil {
		newErrorResponse(c, err)
		return
	}

	wrapOkJSON(c, map[string]interface{}{
		"wallets": wallets,
	})
}
