package auctionerrors

import "errors"

// Validation errors: rejected synchronously, no mutation.
var (
	ErrInvalidAmount = errors.New("amount must be positive")
	ErrInvalidBid    = errors.New("invalid bid")
	ErrSelfBid       = errors.New("seller cannot bid on own auction")
	ErrBidTooLow     = errors.New("bid amount too low")
)

// State errors: the auction (or bid) is not in a state that permits the
// operation. ErrAuctionExpired may trigger a lazy ENDED transition.
var (
	ErrAuctionNotFound     = errors.New("auction not found")
	ErrAuctionNotActive    = errors.New("auction is not active")
	ErrAuctionExpired      = errors.New("auction has ended")
	ErrBidNotFound         = errors.New("bid not found")
	ErrRetractWindowClosed = errors.New("retraction window has closed")
)

// Funds errors: ledger preconditions not met, nothing was moved.
var (
	ErrAccountNotFound       = errors.New("account not found")
	ErrInsufficientAvailable = errors.New("insufficient available balance")
	ErrInsufficientFrozen    = errors.New("insufficient frozen balance")
	ErrInsufficientFunds     = errors.New("insufficient funds for bid")
)
