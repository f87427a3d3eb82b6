package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"auction-system/internal/engine"
	"auction-system/internal/identity"
	model "auction-system/internal/models"
	"auction-system/services/bidding/helpers"
	"auction-system/utils"
)

// BidEngineInterface is the synchronous call adapter's view of the bid engine.
type BidEngineInterface interface {
	PlaceBid(auctionID, bidderID string, amount int64) (engine.BidResult, error)
	RetractBid(bidID string) error
	GetCurrentDeadline(auctionID string) (time.Time, error)
	BidsForAuction(auctionID string) ([]model.Bid, error)
	BidsByUser(bidderID string) ([]model.Bid, error)
}

type BiddingHandler struct {
	engine BidEngineInterface
}

func NewBiddingHandler(e BidEngineInterface) *BiddingHandler {
	return &BiddingHandler{engine: e}
}

// PlaceBidHandler handles POST /bids
func (h *BiddingHandler) PlaceBidHandler(c *gin.Context) {
	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "PlaceBidHandler", err)
		return
	}

	// A resolved principal is authoritative for who is bidding.
	bidderID := req.BidderID
	if principal, ok := c.Get(identity.PrincipalKey); ok {
		bidderID = principal.(string)
	}

	result, err := h.engine.PlaceBid(req.AuctionID, bidderID, req.Amount)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Error("PlaceBidHandler: failed to place bid", map[string]any{
			"handler":    "PlaceBidHandler",
			"auction_id": req.AuctionID,
			"bidder_id":  bidderID,
			"error":      err.Error(),
		})
		return
	}

	resp := helpers.BidResponse{
		BidID:       result.BidID,
		AuctionID:   result.AuctionID,
		BidderID:    bidderID,
		Amount:      result.Amount,
		BidTime:     result.BidTime.UTC().Format(time.RFC3339),
		NewDeadline: result.NewDeadline.UTC().Format(time.RFC3339),
	}

	utils.JSONResponse(c, http.StatusCreated, resp, "bid placed successfully")
	helpers.LogSuccess("PlaceBidHandler", "bid placed successfully", map[string]any{
		"bid_id":     result.BidID,
		"auction_id": result.AuctionID,
		"bidder_id":  bidderID,
		"amount":     result.Amount,
	})
}

// RetractBidHandler handles DELETE /bids/:bid_id
func (h *BiddingHandler) RetractBidHandler(c *gin.Context) {
	bidID := c.Param("bid_id")
	if err := h.engine.RetractBid(bidID); err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("RetractBidHandler: failed to retract bid", map[string]any{
			"bid_id": bidID,
			"error":  err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, gin.H{"bid_id": bidID}, "bid retracted successfully")
	helpers.LogSuccess("RetractBidHandler", "bid retracted successfully", map[string]any{
		"bid_id": bidID,
	})
}

// GetBidsByAuctionHandler handles GET /auctions/:auction_id/bids
func (h *BiddingHandler) GetBidsByAuctionHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	bids, err := h.engine.BidsForAuction(auctionID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("GetBidsByAuctionHandler: error retrieving bids", map[string]any{
			"auction_id": auctionID,
			"error":      err.Error(),
		})
		return
	}

	if bids == nil {
		bids = []model.Bid{}
	}

	utils.JSONResponse(c, http.StatusOK, bids, "bids retrieved successfully")
	helpers.LogSuccess("GetBidsByAuctionHandler", "bids retrieved successfully", map[string]any{
		"auction_id": auctionID,
		"count":      len(bids),
	})
}

// GetDeadlineHandler handles GET /auctions/:auction_id/deadline
func (h *BiddingHandler) GetDeadlineHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	deadline, err := h.engine.GetCurrentDeadline(auctionID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		return
	}

	resp := helpers.DeadlineResponse{
		AuctionID: auctionID,
		Deadline:  deadline.UTC().Format(time.RFC3339),
	}
	utils.JSONResponse(c, http.StatusOK, resp, "deadline retrieved successfully")
}

// GetBidsByUserHandler handles GET /users/:user_id/bids
func (h *BiddingHandler) GetBidsByUserHandler(c *gin.Context) {
	userID := c.Param("user_id")
	bids, err := h.engine.BidsByUser(userID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("GetBidsByUserHandler: error retrieving bids", map[string]any{
			"user_id": userID,
			"error":   err.Error(),
		})
		return
	}

	if bids == nil {
		bids = []model.Bid{}
	}

	utils.JSONResponse(c, http.StatusOK, bids, "bids retrieved successfully")
	helpers.LogSuccess("GetBidsByUserHandler", "bids retrieved successfully", map[string]any{
		"user_id": userID,
		"count":   len(bids),
	})
}
