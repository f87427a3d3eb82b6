package helpers

// Request/Response DTOs
type PlaceBidRequest struct {
	AuctionID string `json:"auction_id" binding:"required"`
	BidderID  string `json:"bidder_id"`
	Amount    int64  `json:"amount" binding:"required,gt=0"`
}

type BidResponse struct {
	BidID       string `json:"bid_id"`
	AuctionID   string `json:"auction_id"`
	BidderID    string `json:"bidder_id,omitempty"`
	Amount      int64  `json:"amount"`
	Status      string `json:"status,omitempty"`
	BidTime     string `json:"bid_time"`
	NewDeadline string `json:"new_deadline,omitempty"`
}

type DeadlineResponse struct {
	AuctionID string `json:"auction_id"`
	Deadline  string `json:"deadline"`
}
