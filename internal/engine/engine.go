// Package engine implements the bid admission core. Every transport funnels
// into one BidEngine instance; correctness relies on the store's per-auction
// exclusive section, not on transport-side locking. A bid touches exactly one
// auction and at most two bidder accounts whose ledger operations are
// independently atomic, so there is no cross-auction lock ordering to manage.
package engine

import (
	"errors"
	"fmt"
	"time"

	"auction-system/internal/auctionerrors"
	"auction-system/internal/ledger"
	"auction-system/internal/models"
	"auction-system/internal/notify"
	"auction-system/internal/store"
	"auction-system/utils"
)

// RetractionWindow is how long after placement a bid may be retracted.
const RetractionWindow = 60 * time.Second

// Broadcaster is the fire-and-forget fan-out the engine hands committed
// updates to. Implementations must not block the caller.
type Broadcaster interface {
	BroadcastPriceUpdate(auctionID, itemName string, newPrice int64, bidderID, bidderName string)
	BroadcastStatusUpdate(auctionID, itemName, status, message string)
}

// BidResult is the successful outcome of PlaceBid.
type BidResult struct {
	BidID       string    `json:"bid_id"`
	AuctionID   string    `json:"auction_id"`
	Amount      int64     `json:"amount"`
	BidTime     time.Time `json:"bid_time"`
	NewDeadline time.Time `json:"new_deadline"`
}

// BidEngine validates and applies bids against auction and ledger state.
type BidEngine struct {
	store       store.AuctionDB
	ledger      *ledger.Ledger
	broadcaster Broadcaster
	notifier    notify.Sink
	now         func() time.Time
}

// NewBidEngine creates a BidEngine. broadcaster and notifier may be nil.
func NewBidEngine(db store.AuctionDB, l *ledger.Ledger, b Broadcaster, n notify.Sink) *BidEngine {
	return &BidEngine{
		store:       db,
		ledger:      l,
		broadcaster: b,
		notifier:    n,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// PlaceBid validates and records a bid. The whole read-modify-write runs
// inside the auction's exclusive section; two concurrent bids on the same
// auction are fully serialized, bids on different auctions proceed
// independently. A rejection leaves the system exactly as it was, except that
// an expired auction is lazily transitioned to ENDED.
func (e *BidEngine) PlaceBid(auctionID, bidderID string, amount int64) (BidResult, error) {
	if auctionID == "" || bidderID == "" {
		return BidResult{}, fmt.Errorf("engine: %w - missing auctionID or bidderID", auctionerrors.ErrInvalidBid)
	}
	if amount <= 0 {
		return BidResult{}, fmt.Errorf("engine: %w - non-positive bid amount", auctionerrors.ErrInvalidAmount)
	}

	var result BidResult
	var auction models.Auction
	var outbid *models.Bid

	err := e.store.WithExclusiveAccess(auctionID, func() error {
		var err error
		auction, err = e.store.GetAuction(auctionID)
		if err != nil {
			return err
		}

		if auction.Status != models.AuctionActive && auction.Status != models.AuctionEndingSoon {
			return fmt.Errorf("engine: auction %s in status %s: %w",
				auctionID, auction.Status, auctionerrors.ErrAuctionNotActive)
		}

		now := e.now()
		if auction.IsExpired(now) {
			// Lazy-expiry safety net, independent of the scheduler sweep.
			auction.Status = models.AuctionEnded
			if err := e.store.SaveAuction(auction); err != nil {
				return fmt.Errorf("engine: lazy expiry of auction %s: %w", auctionID, err)
			}
			return fmt.Errorf("engine: auction %s: %w", auctionID, auctionerrors.ErrAuctionExpired)
		}

		if bidderID == auction.SellerID {
			return fmt.Errorf("engine: %w", auctionerrors.ErrSelfBid)
		}
		if amount <= auction.CurrentPrice {
			return fmt.Errorf("engine: %w - current price is %d", auctionerrors.ErrBidTooLow, auction.CurrentPrice)
		}

		bid := models.Bid{
			BidID:     utils.GenerateID(),
			AuctionID: auctionID,
			BidderID:  bidderID,
			Amount:    amount,
			BidTime:   now,
			Status:    models.BidWinning,
		}

		if _, err := e.ledger.Freeze(bidderID, amount, "bid on "+auction.ItemName, auctionID, bid.BidID); err != nil {
			if errors.Is(err, auctionerrors.ErrInsufficientAvailable) {
				return fmt.Errorf("engine: %w: %v", auctionerrors.ErrInsufficientFunds, err)
			}
			return fmt.Errorf("engine: freeze for bid: %w", err)
		}

		if err := e.store.SaveBid(bid); err != nil {
			// Roll the freeze back so a storage fault leaves no funds reserved.
			if _, uerr := e.ledger.Unfreeze(bidderID, amount, "rollback failed bid", auctionID, bid.BidID); uerr != nil {
				utils.Error("engine: rollback unfreeze failed", map[string]any{
					"bid_id": bid.BidID, "error": uerr.Error(),
				})
			}
			return fmt.Errorf("engine: save bid: %w", err)
		}

		// Demote the previously winning bid and release its funds.
		for _, prev := range e.store.BidsByAuction(auctionID) {
			if prev.BidID == bid.BidID || prev.Status != models.BidWinning {
				continue
			}
			prev.Status = models.BidOutbid
			if err := e.store.SaveBid(prev); err != nil {
				return fmt.Errorf("engine: demote bid %s: %w", prev.BidID, err)
			}
			if _, err := e.ledger.Unfreeze(prev.BidderID, prev.Amount,
				"outbid on "+auction.ItemName, auctionID, prev.BidID); err != nil {
				utils.Error("engine: unfreeze for outbid user failed", map[string]any{
					"bid_id": prev.BidID, "bidder_id": prev.BidderID, "error": err.Error(),
				})
			}
			p := prev
			outbid = &p
		}

		auction.CurrentPrice = amount
		auction.UpdateDeadline(now)
		if auction.IsEndingSoon(now) {
			auction.Status = models.AuctionEndingSoon
		}
		if err := e.store.SaveAuction(auction); err != nil {
			return fmt.Errorf("engine: save auction %s: %w", auctionID, err)
		}

		result = BidResult{
			BidID:       bid.BidID,
			AuctionID:   auctionID,
			Amount:      amount,
			BidTime:     now,
			NewDeadline: auction.CurrentDeadline,
		}
		return nil
	})
	if err != nil {
		return BidResult{}, err
	}

	// The transaction has committed; everything below is best-effort.
	if e.broadcaster != nil {
		bidderName := bidderID
		if acct, err := e.ledger.GetAccount(bidderID); err == nil && acct.Name != "" {
			bidderName = acct.Name
		}
		e.broadcaster.BroadcastPriceUpdate(auctionID, auction.ItemName, amount, bidderID, bidderName)
	}
	if e.notifier != nil {
		e.notifier.Notify(bidderID, models.NotifyBidPlaced,
			fmt.Sprintf("Your bid of %d on '%s' was placed successfully", amount, auction.ItemName))
		if outbid != nil {
			e.notifier.Notify(outbid.BidderID, models.NotifyOutbid,
				fmt.Sprintf("You were outbid on '%s'. New price: %d", auction.ItemName, amount))
		}
	}

	utils.Info("bid accepted", map[string]any{
		"auction_id": auctionID,
		"bid_id":     result.BidID,
		"bidder_id":  bidderID,
		"amount":     amount,
		"deadline":   result.NewDeadline,
	})
	return result, nil
}

// RetractBid deletes a bid placed no more than RetractionWindow ago and
// reverses its freeze. If the bid was WINNING, the highest fundable OUTBID
// bid is promoted (re-freezing its bidder); with none left the price resets
// to the starting price.
func (e *BidEngine) RetractBid(bidID string) error {
	bid, err := e.store.GetBid(bidID)
	if err != nil {
		return err
	}

	return e.store.WithExclusiveAccess(bid.AuctionID, func() error {
		// Re-read inside the section; the bid may have settled meanwhile.
		bid, err := e.store.GetBid(bidID)
		if err != nil {
			return err
		}
		auction, err := e.store.GetAuction(bid.AuctionID)
		if err != nil {
			return err
		}
		if auction.Status != models.AuctionActive && auction.Status != models.AuctionEndingSoon {
			return fmt.Errorf("engine: auction %s in status %s: %w",
				auction.AuctionID, auction.Status, auctionerrors.ErrAuctionNotActive)
		}
		now := e.now()
		if now.Sub(bid.BidTime) > RetractionWindow {
			return fmt.Errorf("engine: bid %s placed %s ago: %w",
				bidID, now.Sub(bid.BidTime), auctionerrors.ErrRetractWindowClosed)
		}

		if _, err := e.ledger.Unfreeze(bid.BidderID, bid.Amount,
			"bid retracted on "+auction.ItemName, auction.AuctionID, bid.BidID); err != nil {
			return fmt.Errorf("engine: unfreeze retracted bid: %w", err)
		}

		if bid.Status == models.BidWinning {
			promoted := false
			for _, cand := range e.store.BidsByAuction(auction.AuctionID) {
				if cand.BidID == bidID || cand.Status != models.BidOutbid {
					continue
				}
				if _, err := e.ledger.Freeze(cand.BidderID, cand.Amount,
					"bid on "+auction.ItemName+" (winning after retraction)",
					auction.AuctionID, cand.BidID); err != nil {
					// Candidate can no longer cover the bid; try the next one.
					utils.Warn("engine: re-freeze for promoted bid failed", map[string]any{
						"bid_id": cand.BidID, "bidder_id": cand.BidderID, "error": err.Error(),
					})
					continue
				}
				cand.Status = models.BidWinning
				if err := e.store.SaveBid(cand); err != nil {
					return fmt.Errorf("engine: promote bid %s: %w", cand.BidID, err)
				}
				auction.CurrentPrice = cand.Amount
				promoted = true
				break
			}
			if !promoted {
				auction.CurrentPrice = auction.StartingPrice
			}
			if err := e.store.SaveAuction(auction); err != nil {
				return fmt.Errorf("engine: save auction %s: %w", auction.AuctionID, err)
			}
		}

		if err := e.store.DeleteBid(bidID); err != nil {
			return err
		}
		utils.Info("bid retracted", map[string]any{
			"bid_id":     bidID,
			"auction_id": auction.AuctionID,
			"bidder_id":  bid.BidderID,
		})
		return nil
	})
}

// GetCurrentDeadline returns the auction's effective bid cutoff.
func (e *BidEngine) GetCurrentDeadline(auctionID string) (time.Time, error) {
	auction, err := e.store.GetAuction(auctionID)
	if err != nil {
		return time.Time{}, err
	}
	return auction.Deadline(), nil
}

// BidsForAuction returns all bids on an auction, highest first.
func (e *BidEngine) BidsForAuction(auctionID string) ([]models.Bid, error) {
	if _, err := e.store.GetAuction(auctionID); err != nil {
		return nil, err
	}
	return e.store.BidsByAuction(auctionID), nil
}

// BidsByUser returns the user's bids, most recent first.
func (e *BidEngine) BidsByUser(bidderID string) ([]models.Bid, error) {
	if bidderID == "" {
		return nil, fmt.Errorf("engine: %w - empty bidder ID", auctionerrors.ErrInvalidBid)
	}
	return e.store.BidsByBidder(bidderID), nil
}

// SetClock overrides the engine's time source. Tests only.
func (e *BidEngine) SetClock(now func() time.Time) {
	e.now = now
}
