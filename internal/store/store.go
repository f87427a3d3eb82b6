package store

import (
	"fmt"
	"sort"
	"sync"

	"auction-system/internal/auctionerrors"
	"auction-system/internal/models"
)

// AuctionDB defines auction and bid storage for the bidding core.
//
// WithExclusiveAccess is the per-auction exclusive section: every mutation of
// an auction's price/deadline/status/winner, and of its bids, must happen
// inside fn. Re-entrant acquisition for the same auction id is forbidden --
// callers perform one full read-modify-write per section.
type AuctionDB interface {
	CreateAuction(auction models.Auction) error
	GetAuction(auctionID string) (models.Auction, error)
	SaveAuction(auction models.Auction) error
	ListByStatus(statuses ...models.AuctionStatus) []models.Auction
	WithExclusiveAccess(auctionID string, fn func() error) error

	SaveBid(bid models.Bid) error
	GetBid(bidID string) (models.Bid, error)
	DeleteBid(bidID string) error
	BidsByAuction(auctionID string) []models.Bid
	BidsByBidder(bidderID string) []models.Bid
}

// MemoryStore is a concurrency-safe in-memory implementation of AuctionDB.
type MemoryStore struct {
	mu       sync.RWMutex
	auctions map[string]models.Auction
	bids     map[string]models.Bid

	lockMu sync.Mutex
	locks  map[string]*sync.Mutex // key: auctionID -> exclusive section
}

// NewMemoryStore creates a new in-memory store instance.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		auctions: make(map[string]models.Auction),
		bids:     make(map[string]models.Bid),
		locks:    make(map[string]*sync.Mutex),
	}
}

// CreateAuction registers a new auction.
func (s *MemoryStore) CreateAuction(auction models.Auction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.auctions[auction.AuctionID]; ok {
		return fmt.Errorf("store: auction %s already exists", auction.AuctionID)
	}
	s.auctions[auction.AuctionID] = auction
	return nil
}

// GetAuction returns a snapshot of the auction.
func (s *MemoryStore) GetAuction(auctionID string) (models.Auction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.auctions[auctionID]
	if !ok {
		return models.Auction{}, fmt.Errorf("store: auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	return a, nil
}

// SaveAuction persists the auction snapshot.
func (s *MemoryStore) SaveAuction(auction models.Auction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.auctions[auction.AuctionID]; !ok {
		return fmt.Errorf("store: auction %s: %w", auction.AuctionID, auctionerrors.ErrAuctionNotFound)
	}
	s.auctions[auction.AuctionID] = auction
	return nil
}

// ListByStatus returns all auctions in any of the given statuses; with no
// statuses it returns every auction.
func (s *MemoryStore) ListByStatus(statuses ...models.AuctionStatus) []models.Auction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Auction
	for _, a := range s.auctions {
		if len(statuses) == 0 {
			out = append(out, a)
			continue
		}
		for _, st := range statuses {
			if a.Status == st {
				out = append(out, a)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AuctionID < out[j].AuctionID })
	return out
}

// WithExclusiveAccess runs fn while holding the auction's exclusive section.
// Sections for different auctions are independent.
func (s *MemoryStore) WithExclusiveAccess(auctionID string, fn func() error) error {
	lock := s.lockFor(auctionID)
	lock.Lock()
	defer lock.Unlock()
	return fn()
}

func (s *MemoryStore) lockFor(auctionID string) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	lock, ok := s.locks[auctionID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[auctionID] = lock
	}
	return lock
}

// SaveBid creates or updates a bid.
func (s *MemoryStore) SaveBid(bid models.Bid) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.auctions[bid.AuctionID]; !ok {
		return fmt.Errorf("store: bid %s for auction %s: %w", bid.BidID, bid.AuctionID, auctionerrors.ErrAuctionNotFound)
	}
	s.bids[bid.BidID] = bid
	return nil
}

// GetBid returns a snapshot of the bid.
func (s *MemoryStore) GetBid(bidID string) (models.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bids[bidID]
	if !ok {
		return models.Bid{}, fmt.Errorf("store: bid %s: %w", bidID, auctionerrors.ErrBidNotFound)
	}
	return b, nil
}

// DeleteBid removes a bid. Only bid retraction is allowed to do this.
func (s *MemoryStore) DeleteBid(bidID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bids[bidID]; !ok {
		return fmt.Errorf("store: bid %s: %w", bidID, auctionerrors.ErrBidNotFound)
	}
	delete(s.bids, bidID)
	return nil
}

// BidsByAuction returns the auction's bids ordered by amount descending,
// earlier bid first on equal amounts.
func (s *MemoryStore) BidsByAuction(auctionID string) []models.Bid {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Bid
	for _, b := range s.bids {
		if b.AuctionID == auctionID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].BidTime.Before(out[j].BidTime)
	})
	return out
}

// BidsByBidder returns the bidder's bids, most recent first.
func (s *MemoryStore) BidsByBidder(bidderID string) []models.Bid {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Bid
	for _, b := range s.bids {
		if b.BidderID == bidderID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BidTime.After(out[j].BidTime) })
	return out
}
