package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	bidhandler "auction-system/services/bidding/handler"
	wallethandler "auction-system/services/wallet/handler"

	"auction-system/internal/identity"
)

// SetupRouter configures all Gin routes for the application
func SetupRouter(bidding *bidhandler.BiddingHandler, wallet *wallethandler.WalletHandler, resolver identity.Resolver) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging
	router.Use(PrincipalMiddleware(resolver))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	bids := router.Group("/bids")
	{
		bids.POST("", bidding.PlaceBidHandler)
		bids.DELETE("/:bid_id", bidding.RetractBidHandler)
	}

	auctions := router.Group("/auctions")
	{
		auctions.GET("/:auction_id/bids", bidding.GetBidsByAuctionHandler)
		auctions.GET("/:auction_id/deadline", bidding.GetDeadlineHandler)
	}

	users := router.Group("/users")
	{
		users.GET("/:user_id/bids", bidding.GetBidsByUserHandler)
	}

	walletGroup := router.Group("/wallet")
	{
		walletGroup.POST("/:account_id/deposit", wallet.DepositHandler)
		walletGroup.POST("/:account_id/withdraw", wallet.WithdrawHandler)
		walletGroup.GET("/:account_id", wallet.SummaryHandler)
		walletGroup.GET("/:account_id/history", wallet.HistoryHandler)
	}

	return router
}
