package models

import "time"

// All monetary amounts are int64 minor currency units (cents).

// EndingSoonWindow is how close to the deadline an auction switches to ENDING_SOON.
const EndingSoonWindow = 5 * time.Minute

// Account represents a participant's wallet. Balance and Frozen are mutated
// only by the ledger; Available is derived and never stored.
type Account struct {
	AccountID string `json:"account_id"`
	Name      string `json:"name"`
	Balance   int64  `json:"balance"`
	Frozen    int64  `json:"frozen"`
}

// Available returns the portion of the balance usable for new freezes or withdrawals.
func (a Account) Available() int64 {
	return a.Balance - a.Frozen
}

// EntryType classifies a ledger entry.
type EntryType string

const (
	EntryDeposit      EntryType = "DEPOSIT"
	EntryWithdraw     EntryType = "WITHDRAW"
	EntryFreeze       EntryType = "FREEZE"
	EntryUnfreeze     EntryType = "UNFREEZE"
	EntrySettleDebit  EntryType = "SETTLE_DEBIT"
	EntrySettleFee    EntryType = "SETTLE_FEE"
	EntrySettleCredit EntryType = "SETTLE_CREDIT"
)

// LedgerEntry is the immutable record appended by every ledger mutation.
// Before/after snapshots make the log the sole source of truth for audits.
type LedgerEntry struct {
	EntryID         string    `json:"entry_id"`
	AccountID       string    `json:"account_id"`
	Type            EntryType `json:"type"`
	Amount          int64     `json:"amount"`
	BalanceBefore   int64     `json:"balance_before"`
	BalanceAfter    int64     `json:"balance_after"`
	FrozenBefore    int64     `json:"frozen_before"`
	FrozenAfter     int64     `json:"frozen_after"`
	AvailableBefore int64     `json:"available_before"`
	AvailableAfter  int64     `json:"available_after"`
	Description     string    `json:"description,omitempty"`
	AuctionID       string    `json:"auction_id,omitempty"`
	BidID           string    `json:"bid_id,omitempty"`
	SettlementRef   string    `json:"settlement_ref,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// AuctionStatus is the auction state machine.
type AuctionStatus string

const (
	AuctionPending    AuctionStatus = "PENDING"
	AuctionActive     AuctionStatus = "ACTIVE"
	AuctionEndingSoon AuctionStatus = "ENDING_SOON"
	AuctionEnded      AuctionStatus = "ENDED"
	AuctionCancelled  AuctionStatus = "CANCELLED"
)

// Auction represents an auction listing.
//
// Timing model:
//   - StartTime: when the auction begins
//   - MandatoryEndTime: hard cap, the auction must end by this time
//   - BidGapDuration: rebid window granted after each accepted bid
//   - CurrentDeadline: last bid time + gap, capped at MandatoryEndTime
type Auction struct {
	AuctionID        string        `json:"auction_id"`
	SellerID         string        `json:"seller_id"`
	ItemName         string        `json:"item_name"`
	Description      string        `json:"description,omitempty"`
	StartingPrice    int64         `json:"starting_price"`
	CurrentPrice     int64         `json:"current_price"`
	StartTime        time.Time     `json:"start_time"`
	MandatoryEndTime time.Time     `json:"mandatory_end_time"`
	BidGapDuration   time.Duration `json:"bid_gap_duration"`
	CurrentDeadline  time.Time     `json:"current_deadline"`
	Status           AuctionStatus `json:"status"`
	WinnerID         string        `json:"winner_id,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
}

// Deadline returns the effective cutoff: the current deadline if a bid has set
// one, otherwise the mandatory end time.
func (a Auction) Deadline() time.Time {
	if a.CurrentDeadline.IsZero() {
		return a.MandatoryEndTime
	}
	return a.CurrentDeadline
}

// UpdateDeadline recomputes the current deadline from the last bid time,
// capped at the mandatory end time.
func (a *Auction) UpdateDeadline(lastBidTime time.Time) {
	deadline := lastBidTime.Add(a.BidGapDuration)
	if deadline.After(a.MandatoryEndTime) {
		deadline = a.MandatoryEndTime
	}
	a.CurrentDeadline = deadline
}

// IsExpired reports whether no further bids are accepted as of now.
func (a Auction) IsExpired(now time.Time) bool {
	return now.After(a.Deadline())
}

// IsEndingSoon reports whether the deadline is within the ending-soon window.
func (a Auction) IsEndingSoon(now time.Time) bool {
	if a.CurrentDeadline.IsZero() {
		return false
	}
	return a.CurrentDeadline.Sub(now) < EndingSoonWindow
}

// BidStatus is the bid lifecycle.
type BidStatus string

const (
	BidWinning  BidStatus = "WINNING"
	BidOutbid   BidStatus = "OUTBID"
	BidWon      BidStatus = "WON"
	BidLost     BidStatus = "LOST"
	BidRejected BidStatus = "REJECTED"
)

// Bid represents a user's bid on an auction.
type Bid struct {
	BidID     string    `json:"bid_id"`
	AuctionID string    `json:"auction_id"`
	BidderID  string    `json:"bidder_id"`
	Amount    int64     `json:"amount"`
	BidTime   time.Time `json:"bid_time"`
	Status    BidStatus `json:"status"`
}

// NotificationKind classifies a notification to an account.
type NotificationKind string

const (
	NotifyBidPlaced    NotificationKind = "BID_PLACED"
	NotifyOutbid       NotificationKind = "OUTBID"
	NotifyAuctionWon   NotificationKind = "AUCTION_WON"
	NotifyAuctionLost  NotificationKind = "AUCTION_LOST"
	NotifyAuctionEnded NotificationKind = "AUCTION_ENDED"
)

// Notification is a best-effort message delivered through the notification sink.
type Notification struct {
	AccountID string           `json:"account_id"`
	Kind      NotificationKind `json:"kind"`
	Text      string           `json:"text"`
	CreatedAt time.Time        `json:"created_at"`
}
