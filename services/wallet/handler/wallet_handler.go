package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"auction-system/internal/ledger"
	model "auction-system/internal/models"
	"auction-system/services/bidding/helpers"
	"auction-system/utils"
)

// WalletServiceInterface is the wallet view of the ledger.
type WalletServiceInterface interface {
	Deposit(accountID string, amount int64, description string) (model.LedgerEntry, error)
	Withdraw(accountID string, amount int64, description string) (model.LedgerEntry, error)
	Summary(accountID string) (ledger.Summary, error)
	History(accountID string) ([]model.LedgerEntry, error)
}

type WalletHandler struct {
	service WalletServiceInterface
}

func NewWalletHandler(service WalletServiceInterface) *WalletHandler {
	return &WalletHandler{service: service}
}

// MoveFundsRequest is the deposit/withdraw payload.
type MoveFundsRequest struct {
	Amount      int64  `json:"amount" binding:"required,gt=0"`
	Description string `json:"description"`
}

// EntryResponse is the wallet view of a ledger entry.
type EntryResponse struct {
	EntryID   string `json:"entry_id"`
	Type      string `json:"type"`
	Amount    int64  `json:"amount"`
	Balance   int64  `json:"balance"`
	Frozen    int64  `json:"frozen"`
	Available int64  `json:"available"`
	CreatedAt string `json:"created_at"`
}

func entryResponse(e model.LedgerEntry) EntryResponse {
	return EntryResponse{
		EntryID:   e.EntryID,
		Type:      string(e.Type),
		Amount:    e.Amount,
		Balance:   e.BalanceAfter,
		Frozen:    e.FrozenAfter,
		Available: e.AvailableAfter,
		CreatedAt: e.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// DepositHandler handles POST /wallet/:account_id/deposit
func (h *WalletHandler) DepositHandler(c *gin.Context) {
	accountID := c.Param("account_id")
	var req MoveFundsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "DepositHandler", err)
		return
	}

	entry, err := h.service.Deposit(accountID, req.Amount, req.Description)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("DepositHandler: deposit failed", map[string]any{
			"account_id": accountID,
			"error":      err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, entryResponse(entry), "deposit recorded successfully")
	helpers.LogSuccess("DepositHandler", "deposit recorded successfully", map[string]any{
		"account_id": accountID,
		"amount":     req.Amount,
	})
}

// WithdrawHandler handles POST /wallet/:account_id/withdraw
func (h *WalletHandler) WithdrawHandler(c *gin.Context) {
	accountID := c.Param("account_id")
	var req MoveFundsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "WithdrawHandler", err)
		return
	}

	entry, err := h.service.Withdraw(accountID, req.Amount, req.Description)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("WithdrawHandler: withdrawal failed", map[string]any{
			"account_id": accountID,
			"error":      err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, entryResponse(entry), "withdrawal recorded successfully")
	helpers.LogSuccess("WithdrawHandler", "withdrawal recorded successfully", map[string]any{
		"account_id": accountID,
		"amount":     req.Amount,
	})
}

// SummaryHandler handles GET /wallet/:account_id
func (h *WalletHandler) SummaryHandler(c *gin.Context) {
	accountID := c.Param("account_id")
	summary, err := h.service.Summary(accountID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		return
	}

	utils.JSONResponse(c, http.StatusOK, summary, "wallet summary retrieved successfully")
}

// HistoryHandler handles GET /wallet/:account_id/history
func (h *WalletHandler) HistoryHandler(c *gin.Context) {
	accountID := c.Param("account_id")
	entries, err := h.service.History(accountID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		return
	}

	out := make([]EntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryResponse(e))
	}
	utils.JSONResponse(c, http.StatusOK, out, "wallet history retrieved successfully")
	helpers.LogSuccess("HistoryHandler", "wallet history retrieved successfully", map[string]any{
		"account_id": accountID,
		"count":      len(out),
	})
}
