// Package transport contains the socket front-ends for bid submission. Both
// servers speak the same wire format: one JSON request object per connection,
// one JSON response, then the connection is closed. Neither performs any
// locking; serialization is entirely the engine's job.
package transport

import (
	"time"

	"auction-system/internal/engine"
)

// BidPlacer is the narrow slice of the engine the transports need.
type BidPlacer interface {
	PlaceBid(auctionID, bidderID string, amount int64) (engine.BidResult, error)
}

// BidRequest is the bid submission wire message.
type BidRequest struct {
	AuctionID string `json:"auction_id"`
	BidderID  string `json:"bidder_id"`
	Amount    int64  `json:"amount"`
}

// BidResponse mirrors the request on the way back.
type BidResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	BidID       string `json:"bid_id,omitempty"`
	AuctionID   string `json:"auction_id,omitempty"`
	Amount      int64  `json:"amount,omitempty"`
	BidTime     string `json:"bid_time,omitempty"`
	NewDeadline string `json:"new_deadline,omitempty"`
}

func successResponse(res engine.BidResult) BidResponse {
	return BidResponse{
		Success:     true,
		Message:     "Bid placed successfully",
		BidID:       res.BidID,
		AuctionID:   res.AuctionID,
		Amount:      res.Amount,
		BidTime:     res.BidTime.UTC().Format(time.RFC3339),
		NewDeadline: res.NewDeadline.UTC().Format(time.RFC3339),
	}
}

func failureResponse(message string) BidResponse {
	return BidResponse{Success: false, Message: message}
}

// frameEnd returns the index one past the closing brace of the first complete
// top-level JSON object in buf, or -1 if the frame is still incomplete.
// Braces inside string literals are ignored.
func frameEnd(buf []byte) int {
	depth := 0
	inString := false
	escaped := false
	started := false
	for i, c := range buf {
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
			started = true
		case '}':
			depth--
			if started && depth == 0 {
				return i + 1
			}
		}
	}
	return -1
}
