// Package ledger implements per-account balance/frozen bookkeeping with an
// append-only transaction log. A single mutex serializes every mutation, so
// each operation (including the three-way Settle) is atomic with respect to
// the (balance, frozen) pair of every account it touches. Amounts are int64
// minor currency units.
package ledger

import (
	"fmt"
	"sync"
	"time"

	"auction-system/internal/auctionerrors"
	"auction-system/internal/models"
	"auction-system/utils"
)

// BpsDenominator is the basis-point scale used for fee rates (2000 = 20%).
const BpsDenominator = 10000

// Journal is the durable append-only sink for ledger entries. A nil journal
// keeps the ledger purely in-memory.
type Journal interface {
	Append(entry models.LedgerEntry) error
	Replay(fn func(entry models.LedgerEntry) error) error
}

// Ledger is the single owner of all account state. Accounts are never written
// outside its critical section.
type Ledger struct {
	mu       sync.Mutex
	accounts map[string]*models.Account
	entries  []models.LedgerEntry
	journal  Journal
	now      func() time.Time
}

// New creates an in-memory ledger.
func New() *Ledger {
	return &Ledger{
		accounts: make(map[string]*models.Account),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// NewWithJournal creates a ledger that writes every entry through to the
// journal and starts from the journal's replayed state: the entry log is
// restored verbatim and each account is rebuilt from its latest after-snapshot.
func NewWithJournal(j Journal) (*Ledger, error) {
	l := New()
	l.journal = j
	if j == nil {
		return l, nil
	}
	err := j.Replay(func(e models.LedgerEntry) error {
		l.entries = append(l.entries, e)
		a, ok := l.accounts[e.AccountID]
		if !ok {
			a = &models.Account{AccountID: e.AccountID}
			l.accounts[e.AccountID] = a
		}
		a.Balance = e.BalanceAfter
		a.Frozen = e.FrozenAfter
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ledger: journal replay: %w", err)
	}
	return l, nil
}

// CreateAccount registers an account, or names an account already rebuilt
// from the journal. The opening balance only applies to genuinely new
// accounts and produces no ledger entry.
func (l *Ledger) CreateAccount(accountID, name string, opening int64) (models.Account, error) {
	if opening < 0 {
		return models.Account{}, fmt.Errorf("ledger: opening balance %d: %w", opening, auctionerrors.ErrInvalidAmount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if a, ok := l.accounts[accountID]; ok {
		a.Name = name
		return *a, nil
	}
	a := &models.Account{AccountID: accountID, Name: name, Balance: opening}
	l.accounts[accountID] = a
	return *a, nil
}

// GetAccount returns a snapshot copy of the account.
func (l *Ledger) GetAccount(accountID string) (models.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	a, ok := l.accounts[accountID]
	if !ok {
		return models.Account{}, fmt.Errorf("ledger: account %s: %w", accountID, auctionerrors.ErrAccountNotFound)
	}
	return *a, nil
}

// Deposit adds amount to the account balance.
func (l *Ledger) Deposit(accountID string, amount int64, description string) (models.LedgerEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	a, err := l.account(accountID, amount)
	if err != nil {
		return models.LedgerEntry{}, err
	}
	before := *a
	a.Balance += amount
	return l.append(before, *a, models.EntryDeposit, amount, description, "", "", ""), nil
}

// Withdraw removes amount from the account balance; only available funds
// (balance minus frozen) may be withdrawn.
func (l *Ledger) Withdraw(accountID string, amount int64, description string) (models.LedgerEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	a, err := l.account(accountID, amount)
	if err != nil {
		return models.LedgerEntry{}, err
	}
	if a.Available() < amount {
		return models.LedgerEntry{}, fmt.Errorf("ledger: withdraw %d with available %d: %w",
			amount, a.Available(), auctionerrors.ErrInsufficientAvailable)
	}
	before := *a
	a.Balance -= amount
	return l.append(before, *a, models.EntryWithdraw, amount, description, "", "", ""), nil
}

// Freeze reserves amount of the available balance against an outstanding bid.
func (l *Ledger) Freeze(accountID string, amount int64, description, auctionID, bidID string) (models.LedgerEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	a, err := l.account(accountID, amount)
	if err != nil {
		return models.LedgerEntry{}, err
	}
	if a.Available() < amount {
		return models.LedgerEntry{}, fmt.Errorf("ledger: freeze %d with available %d: %w",
			amount, a.Available(), auctionerrors.ErrInsufficientAvailable)
	}
	before := *a
	a.Frozen += amount
	return l.append(before, *a, models.EntryFreeze, amount, description, auctionID, bidID, ""), nil
}

// Unfreeze releases amount of frozen balance back to available.
func (l *Ledger) Unfreeze(accountID string, amount int64, description, auctionID, bidID string) (models.LedgerEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	a, err := l.account(accountID, amount)
	if err != nil {
		return models.LedgerEntry{}, err
	}
	if a.Frozen < amount {
		return models.LedgerEntry{}, fmt.Errorf("ledger: unfreeze %d with frozen %d: %w",
			amount, a.Frozen, auctionerrors.ErrInsufficientFrozen)
	}
	before := *a
	a.Frozen -= amount
	return l.append(before, *a, models.EntryUnfreeze, amount, description, auctionID, bidID, ""), nil
}

// Settle performs the atomic three-way fund movement that concludes an
// auction: the full amount leaves the buyer's balance and frozen reserve, the
// seller is credited the amount minus the platform fee, and the fee account is
// credited the fee. The three entries share one settlement reference. The
// caller must have frozen at least amount for the buyer beforehand; on any
// precondition failure nothing is written.
func (l *Ledger) Settle(buyerID, sellerID, feeAccountID string, amount, feeBps int64, auctionID, bidID string) ([]models.LedgerEntry, error) {
	if feeBps < 0 || feeBps > BpsDenominator {
		return nil, fmt.Errorf("ledger: fee %d bps out of range: %w", feeBps, auctionerrors.ErrInvalidAmount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	buyer, err := l.account(buyerID, amount)
	if err != nil {
		return nil, err
	}
	seller, err := l.account(sellerID, amount)
	if err != nil {
		return nil, err
	}
	feeAcct, err := l.account(feeAccountID, amount)
	if err != nil {
		return nil, err
	}
	if buyer.Frozen < amount {
		return nil, fmt.Errorf("ledger: settle %d with frozen %d: %w",
			amount, buyer.Frozen, auctionerrors.ErrInsufficientFrozen)
	}

	fee := amount * feeBps / BpsDenominator
	ref := utils.GenerateID()
	entries := make([]models.LedgerEntry, 0, 3)

	before := *buyer
	buyer.Balance -= amount
	buyer.Frozen -= amount
	entries = append(entries, l.append(before, *buyer, models.EntrySettleDebit, amount,
		"payment for won auction", auctionID, bidID, ref))

	before = *seller
	seller.Balance += amount - fee
	entries = append(entries, l.append(before, *seller, models.EntrySettleCredit, amount-fee,
		"proceeds from auction sale", auctionID, bidID, ref))

	before = *feeAcct
	feeAcct.Balance += fee
	entries = append(entries, l.append(before, *feeAcct, models.EntrySettleFee, fee,
		"platform fee", auctionID, bidID, ref))

	return entries, nil
}

// Summary is the wallet overview exposed to reporting layers.
type Summary struct {
	AccountID        string `json:"account_id"`
	Balance          int64  `json:"balance"`
	Frozen           int64  `json:"frozen"`
	Available        int64  `json:"available"`
	TotalDeposits    int64  `json:"total_deposits"`
	TotalFreezes     int64  `json:"total_freezes"`
	TotalSettlements int64  `json:"total_settlements"`
}

// Summary returns the account's balances and per-type entry counts.
func (l *Ledger) Summary(accountID string) (Summary, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	a, ok := l.accounts[accountID]
	if !ok {
		return Summary{}, fmt.Errorf("ledger: account %s: %w", accountID, auctionerrors.ErrAccountNotFound)
	}
	s := Summary{
		AccountID: accountID,
		Balance:   a.Balance,
		Frozen:    a.Frozen,
		Available: a.Available(),
	}
	for _, e := range l.entries {
		if e.AccountID != accountID {
			continue
		}
		switch e.Type {
		case models.EntryDeposit:
			s.TotalDeposits++
		case models.EntryFreeze:
			s.TotalFreezes++
		case models.EntrySettleDebit:
			s.TotalSettlements++
		}
	}
	return s, nil
}

// History returns the account's ledger entries in append order.
func (l *Ledger) History(accountID string) ([]models.LedgerEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.accounts[accountID]; !ok {
		return nil, fmt.Errorf("ledger: account %s: %w", accountID, auctionerrors.ErrAccountNotFound)
	}
	var out []models.LedgerEntry
	for _, e := range l.entries {
		if e.AccountID == accountID {
			out = append(out, e)
		}
	}
	return out, nil
}

// account fetches the account and validates the amount. Caller holds the lock.
func (l *Ledger) account(accountID string, amount int64) (*models.Account, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("ledger: amount %d: %w", amount, auctionerrors.ErrInvalidAmount)
	}
	a, ok := l.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("ledger: account %s: %w", accountID, auctionerrors.ErrAccountNotFound)
	}
	return a, nil
}

// append builds the entry from before/after snapshots, records it in the log
// and writes it through to the journal. A journal failure is logged and does
// not fail the operation; the in-memory state is already committed. Caller
// holds the lock.
func (l *Ledger) append(before, after models.Account, typ models.EntryType, amount int64, description, auctionID, bidID, ref string) models.LedgerEntry {
	e := models.LedgerEntry{
		EntryID:         utils.GenerateID(),
		AccountID:       after.AccountID,
		Type:            typ,
		Amount:          amount,
		BalanceBefore:   before.Balance,
		BalanceAfter:    after.Balance,
		FrozenBefore:    before.Frozen,
		FrozenAfter:     after.Frozen,
		AvailableBefore: before.Available(),
		AvailableAfter:  after.Available(),
		Description:     description,
		AuctionID:       auctionID,
		BidID:           bidID,
		SettlementRef:   ref,
		CreatedAt:       l.now(),
	}
	l.entries = append(l.entries, e)
	if l.journal != nil {
		if err := l.journal.Append(e); err != nil {
			utils.Error("ledger: journal append failed", map[string]any{
				"entry_id":   e.EntryID,
				"account_id": e.AccountID,
				"type":       string(e.Type),
				"error":      err.Error(),
			})
		}
	}
	return e
}
