package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"auction-system/internal/engine"
	"auction-system/internal/identity"
	"auction-system/internal/ledger"
	"auction-system/internal/models"
	"auction-system/internal/store"
	bidhandler "auction-system/services/bidding/handler"
	wallethandler "auction-system/services/wallet/handler"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// fullRouter wires real components the way main does.
func fullRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := store.NewMemoryStore()
	book := ledger.New()

	_, err := book.CreateAccount("seller1", "Sally", 0)
	require.NoError(t, err)
	_, err = book.CreateAccount("alice", "Alice", 100000)
	require.NoError(t, err)

	now := time.Now().UTC()
	require.NoError(t, db.CreateAuction(models.Auction{
		AuctionID:        "a1",
		SellerID:         "seller1",
		ItemName:         "lamp",
		StartingPrice:    100,
		CurrentPrice:     100,
		StartTime:        now,
		MandatoryEndTime: now.Add(time.Hour),
		BidGapDuration:   30 * time.Minute,
		Status:           models.AuctionActive,
		CreatedAt:        now,
	}))

	bidEngine := engine.NewBidEngine(db, book, nil, nil)
	resolver := identity.NewStatic(map[string]string{"token-alice": "alice"})

	return SetupRouter(
		bidhandler.NewBiddingHandler(bidEngine),
		wallethandler.NewWalletHandler(book),
		resolver,
	)
}

// Tests the health endpoint
func TestRouter_Healthz(t *testing.T) {
	router := fullRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"status":"ok"`)
}

// A bid placed through the full stack lands in the auction and the wallet.
func TestRouter_PlaceBidEndToEnd(t *testing.T) {
	router := fullRouter(t)

	body, err := json.Marshal(map[string]any{"auction_id": "a1", "amount": 500})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/bids", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer token-alice")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]any)
	require.Equal(t, "alice", data["bidder_id"], "principal decides the bidder")

	// The auction now lists the bid.
	req = httptest.NewRequest(http.MethodGet, "/auctions/a1/bids", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp["data"].([]any), 1)

	// The wallet shows the reserved funds.
	req = httptest.NewRequest(http.MethodGet, "/wallet/alice", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	summary := resp["data"].(map[string]any)
	require.Equal(t, 500.0, summary["frozen"])
}

// An unknown credential is rejected before any handler runs.
func TestRouter_RejectsBadCredential(t *testing.T) {
	router := fullRouter(t)

	body := []byte(`{"auction_id":"a1","amount":500}`)
	req := httptest.NewRequest(http.MethodPost, "/bids", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer bogus")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}
