package handler

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"custodial_swap_back/pkg/middleware"
	"custodial_swap_back/pkg/service"
)

type Handler struct {
	service *service.Service
}

func NewHandler(service *service.Service) *Handler {
	return &Handler{
		service: service,
	}
}

func (h *Handler) InitRoute() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "X-User-ID", "X-User-Email"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
	}))

	api := router.Group("/api", middleware.IdentityMiddleware())
	{
		wallet := api.Group("/wallet")
		{
			wallet.GET("/", h.ListWallets)
			wallet.POST("/ensure", h.EnsureWallet)
		}
		swap := api.Group("/swap")
		{
			swap.POST("/quote", h.QuoteSwap)
			swap.POST("/execute", h.ExecuteSwap)
		}
	}
	return router
}
