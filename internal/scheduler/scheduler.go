// Package scheduler closes expired auctions and moves the reserved funds.
// The sweep shares the bid engine's per-auction exclusive section and its
// terminal-state check, so it cannot race the engine's lazy expiry into a
// double settlement: whichever path reaches the section first performs the
// transition, the other observes ENDED and no-ops.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"auction-system/internal/ledger"
	"auction-system/internal/models"
	"auction-system/internal/notify"
	"auction-system/internal/store"
	"auction-system/utils"
)

// Broadcaster is the fire-and-forget status fan-out.
type Broadcaster interface {
	BroadcastStatusUpdate(auctionID, itemName, status, message string)
}

// Scheduler periodically settles auctions whose deadline has passed.
type Scheduler struct {
	store        store.AuctionDB
	ledger       *ledger.Ledger
	broadcaster  Broadcaster
	notifier     notify.Sink
	feeAccountID string
	feeBps       int64
	interval     time.Duration
}

// New creates a scheduler. broadcaster and notifier may be nil.
func New(db store.AuctionDB, l *ledger.Ledger, b Broadcaster, n notify.Sink, feeAccountID string, feeBps int64, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Scheduler{
		store:        db,
		ledger:       l,
		broadcaster:  b,
		notifier:     n,
		feeAccountID: feeAccountID,
		feeBps:       feeBps,
		interval:     interval,
	}
}

// Start runs the sweep on a fixed interval until the context is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	utils.Info("settlement scheduler started", map[string]any{
		"interval": s.interval.String(),
		"fee_bps":  s.feeBps,
	})
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.RunOnce(time.Now().UTC())
			}
		}
	}()
}

// RunOnce sweeps every ACTIVE/ENDING_SOON auction that has expired as of now.
// The sweep runs to completion for all due auctions; an error on one auction
// does not stop the others.
func (s *Scheduler) RunOnce(now time.Time) {
	for _, auction := range s.store.ListByStatus(models.AuctionActive, models.AuctionEndingSoon) {
		if !auction.IsExpired(now) {
			continue
		}
		if err := s.closeAuction(auction.AuctionID, now); err != nil {
			utils.Error("scheduler: closing auction failed", map[string]any{
				"auction_id": auction.AuctionID,
				"error":      err.Error(),
			})
		}
	}
}

// closeAuction settles a single auction under its exclusive section. The
// ENDED transition is persisted before the section is released, so a retried
// sweep or the engine's lazy-expiry path observes the terminal state and
// cannot re-settle.
func (s *Scheduler) closeAuction(auctionID string, now time.Time) error {
	return s.store.WithExclusiveAccess(auctionID, func() error {
		auction, err := s.store.GetAuction(auctionID)
		if err != nil {
			return err
		}
		// Re-check inside the section: a concurrent bid may have extended the
		// deadline, or a concurrent path may already have ended the auction.
		if auction.Status != models.AuctionActive && auction.Status != models.AuctionEndingSoon {
			return nil
		}
		if !auction.IsExpired(now) {
			return nil
		}

		var winning *models.Bid
		bids := s.store.BidsByAuction(auctionID)
		for _, b := range bids {
			if b.Status == models.BidWinning {
				w := b
				winning = &w
				break
			}
		}

		if winning == nil {
			auction.Status = models.AuctionEnded
			if err := s.store.SaveAuction(auction); err != nil {
				return err
			}
			utils.Info("auction ended with no bids", map[string]any{"auction_id": auctionID})
			s.notify(auction.SellerID, models.NotifyAuctionEnded,
				fmt.Sprintf("Your auction '%s' ended with no bids", auction.ItemName))
			s.broadcastEnded(auction, "ended with no bids")
			return nil
		}

		_, settleErr := s.ledger.Settle(winning.BidderID, auction.SellerID, s.feeAccountID,
			auction.CurrentPrice, s.feeBps, auctionID, winning.BidID)
		if settleErr != nil {
			// Fatal for this auction's automatic money movement: mark it ENDED
			// so it is never retried, and flag it for manual reconciliation.
			auction.Status = models.AuctionEnded
			if err := s.store.SaveAuction(auction); err != nil {
				return err
			}
			utils.Error("settlement failed, manual reconciliation required", map[string]any{
				"auction_id": auctionID,
				"bid_id":     winning.BidID,
				"amount":     auction.CurrentPrice,
				"error":      settleErr.Error(),
			})
			return settleErr
		}

		winning.Status = models.BidWon
		if err := s.store.SaveBid(*winning); err != nil {
			return err
		}
		for _, b := range bids {
			if b.BidID == winning.BidID || b.Status != models.BidOutbid {
				continue
			}
			b.Status = models.BidLost
			if err := s.store.SaveBid(b); err != nil {
				return err
			}
			s.notify(b.BidderID, models.NotifyAuctionLost,
				fmt.Sprintf("The auction for '%s' has ended at %d", auction.ItemName, auction.CurrentPrice))
		}

		auction.Status = models.AuctionEnded
		auction.WinnerID = winning.BidderID
		if err := s.store.SaveAuction(auction); err != nil {
			return err
		}

		utils.Info("auction settled", map[string]any{
			"auction_id": auctionID,
			"winner_id":  winning.BidderID,
			"amount":     auction.CurrentPrice,
		})
		s.notify(winning.BidderID, models.NotifyAuctionWon,
			fmt.Sprintf("Congratulations! You won the auction for '%s' with a bid of %d",
				auction.ItemName, winning.Amount))
		s.notify(auction.SellerID, models.NotifyAuctionEnded,
			fmt.Sprintf("Your auction '%s' sold for %d", auction.ItemName, auction.CurrentPrice))
		s.broadcastEnded(auction, fmt.Sprintf("sold for %d", auction.CurrentPrice))
		return nil
	})
}

func (s *Scheduler) notify(accountID string, kind models.NotificationKind, text string) {
	if s.notifier != nil {
		s.notifier.Notify(accountID, kind, text)
	}
}

func (s *Scheduler) broadcastEnded(auction models.Auction, message string) {
	if s.broadcaster != nil {
		s.broadcaster.BroadcastStatusUpdate(auction.AuctionID, auction.ItemName,
			string(models.AuctionEnded), message)
	}
}
