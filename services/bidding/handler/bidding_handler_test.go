package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"auction-system/internal/auctionerrors"
	"auction-system/internal/engine"
	"auction-system/internal/identity"
	model "auction-system/internal/models"
	"auction-system/services/bidding/helpers"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// Test PlaceBidHandler
func TestPlaceBidHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockEngine := NewMockBidEngineInterface(ctrl)
	handler := NewBiddingHandler(mockEngine)

	// Initialize Gin in test mode
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/bids", handler.PlaceBidHandler)

	now := time.Now().UTC()

	tests := []struct {
		name           string
		requestBody    any
		mockSetup      func()
		expectedStatus int
		expectedMsg    string
		validateData   func(t *testing.T, data map[string]any)
	}{
		{
			name: "success_valid_bid",
			requestBody: helpers.PlaceBidRequest{
				AuctionID: "a1",
				BidderID:  "bidder1",
				Amount:    2500,
			},
			mockSetup: func() {
				mockEngine.EXPECT().
					PlaceBid("a1", "bidder1", int64(2500)).
					Return(engine.BidResult{
						BidID:       uuid.NewString(),
						AuctionID:   "a1",
						Amount:      2500,
						BidTime:     now,
						NewDeadline: now.Add(10 * time.Minute),
					}, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedMsg:    "bid placed successfully",
			validateData: func(t *testing.T, data map[string]any) {
				bidID := data["bid_id"].(string)
				require.NotEmpty(t, bidID)
				_, parseErr := uuid.Parse(bidID)
				require.NoError(t, parseErr, "BidID should be a valid UUID")
				require.Equal(t, "a1", data["auction_id"])
				require.Equal(t, "bidder1", data["bidder_id"])
				require.Equal(t, 2500.0, data["amount"])
				require.NotEmpty(t, data["new_deadline"])
			},
		},
		{
			name:           "invalid_json",
			requestBody:    `{invalid json}`,
			mockSetup:      func() {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
		{
			name: "missing_auction_id",
			requestBody: helpers.PlaceBidRequest{
				BidderID: "bidder1",
				Amount:   100,
			},
			mockSetup:      func() {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
		{
			name: "zero_amount",
			requestBody: helpers.PlaceBidRequest{
				AuctionID: "a1",
				BidderID:  "bidder1",
				Amount:    0,
			},
			mockSetup:      func() {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
		{
			name: "negative_amount",
			requestBody: helpers.PlaceBidRequest{
				AuctionID: "a1",
				BidderID:  "bidder1",
				Amount:    -10,
			},
			mockSetup:      func() {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
		{
			name: "engine_bid_too_low",
			requestBody: helpers.PlaceBidRequest{
				AuctionID: "a1",
				BidderID:  "bidder1",
				Amount:    50,
			},
			mockSetup: func() {
				mockEngine.EXPECT().
					PlaceBid("a1", "bidder1", int64(50)).
					Return(engine.BidResult{}, auctionerrors.ErrBidTooLow)
			},
			expectedStatus: http.StatusConflict,
			expectedMsg:    "bid amount too low",
		},
		{
			name: "engine_self_bid",
			requestBody: helpers.PlaceBidRequest{
				AuctionID: "a1",
				BidderID:  "seller1",
				Amount:    500,
			},
			mockSetup: func() {
				mockEngine.EXPECT().
					PlaceBid("a1", "seller1", int64(500)).
					Return(engine.BidResult{}, auctionerrors.ErrSelfBid)
			},
			expectedStatus: http.StatusForbidden,
			expectedMsg:    "seller cannot bid on own auction",
		},
		{
			name: "engine_insufficient_funds",
			requestBody: helpers.PlaceBidRequest{
				AuctionID: "a1",
				BidderID:  "bidder1",
				Amount:    999999,
			},
			mockSetup: func() {
				mockEngine.EXPECT().
					PlaceBid("a1", "bidder1", int64(999999)).
					Return(engine.BidResult{}, auctionerrors.ErrInsufficientFunds)
			},
			expectedStatus: http.StatusPaymentRequired,
			expectedMsg:    "insufficient funds",
		},
		{
			name: "engine_auction_expired",
			requestBody: helpers.PlaceBidRequest{
				AuctionID: "a1",
				BidderID:  "bidder1",
				Amount:    500,
			},
			mockSetup: func() {
				mockEngine.EXPECT().
					PlaceBid("a1", "bidder1", int64(500)).
					Return(engine.BidResult{}, auctionerrors.ErrAuctionExpired)
			},
			expectedStatus: http.StatusGone,
			expectedMsg:    "auction has ended",
		},
		{
			name: "engine_auction_not_found",
			requestBody: helpers.PlaceBidRequest{
				AuctionID: "missing",
				BidderID:  "bidder1",
				Amount:    500,
			},
			mockSetup: func() {
				mockEngine.EXPECT().
					PlaceBid("missing", "bidder1", int64(500)).
					Return(engine.BidResult{}, auctionerrors.ErrAuctionNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedMsg:    "auction not found",
		},
		{
			name: "engine_generic_error",
			requestBody: helpers.PlaceBidRequest{
				AuctionID: "a1",
				BidderID:  "bidder1",
				Amount:    500,
			},
			mockSetup: func() {
				mockEngine.EXPECT().
					PlaceBid("a1", "bidder1", int64(500)).
					Return(engine.BidResult{}, errors.New("storage failure"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedMsg:    "internal server error",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var reqBody []byte
			var err error
			switch v := tc.requestBody.(type) {
			case string:
				reqBody = []byte(v)
			default:
				reqBody, err = json.Marshal(v)
				require.NoError(t, err)
			}

			tc.mockSetup()

			req := httptest.NewRequest(http.MethodPost, "/bids", bytes.NewReader(reqBody))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			require.Equal(t, tc.expectedStatus, w.Code)

			var resp map[string]any
			err = json.Unmarshal(w.Body.Bytes(), &resp)
			require.NoError(t, err)

			require.Contains(t, resp["message"], tc.expectedMsg)

			if tc.validateData != nil && w.Code == http.StatusCreated {
				data := resp["data"].(map[string]any)
				tc.validateData(t, data)
			}
		})
	}
}

// A resolved principal overrides the bidder_id in the request body.
func TestPlaceBidHandler_PrincipalOverride(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockEngine := NewMockBidEngineInterface(ctrl)
	handler := NewBiddingHandler(mockEngine)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/bids", func(c *gin.Context) {
		c.Set(identity.PrincipalKey, "authenticated-user")
		handler.PlaceBidHandler(c)
	})

	mockEngine.EXPECT().
		PlaceBid("a1", "authenticated-user", int64(500)).
		Return(engine.BidResult{BidID: uuid.NewString(), AuctionID: "a1", Amount: 500}, nil)

	body, err := json.Marshal(helpers.PlaceBidRequest{
		AuctionID: "a1",
		BidderID:  "spoofed-user",
		Amount:    500,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/bids", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)
}

// Test RetractBidHandler
func TestRetractBidHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockEngine := NewMockBidEngineInterface(ctrl)
	handler := NewBiddingHandler(mockEngine)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.DELETE("/bids/:bid_id", handler.RetractBidHandler)

	tests := []struct {
		name           string
		bidID          string
		mockSetup      func()
		expectedStatus int
		expectedMsg    string
	}{
		{
			name:  "success_retraction",
			bidID: "bid1",
			mockSetup: func() {
				mockEngine.EXPECT().RetractBid("bid1").Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedMsg:    "bid retracted successfully",
		},
		{
			name:  "bid_not_found",
			bidID: "missing",
			mockSetup: func() {
				mockEngine.EXPECT().RetractBid("missing").Return(auctionerrors.ErrBidNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedMsg:    "bid not found",
		},
		{
			name:  "window_closed",
			bidID: "bid2",
			mockSetup: func() {
				mockEngine.EXPECT().RetractBid("bid2").Return(auctionerrors.ErrRetractWindowClosed)
			},
			expectedStatus: http.StatusConflict,
			expectedMsg:    "retraction window has closed",
		},
		{
			name:  "auction_no_longer_active",
			bidID: "bid3",
			mockSetup: func() {
				mockEngine.EXPECT().RetractBid("bid3").Return(auctionerrors.ErrAuctionNotActive)
			},
			expectedStatus: http.StatusConflict,
			expectedMsg:    "auction is not active",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			tc.mockSetup()

			req := httptest.NewRequest(http.MethodDelete, "/bids/"+tc.bidID, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, tc.expectedStatus, w.Code)

			var resp map[string]any
			err := json.Unmarshal(w.Body.Bytes(), &resp)
			require.NoError(t, err)
			require.Contains(t, resp["message"], tc.expectedMsg)
		})
	}
}

// Test GetBidsByAuctionHandler
func TestGetBidsByAuctionHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockEngine := NewMockBidEngineInterface(ctrl)
	handler := NewBiddingHandler(mockEngine)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/auctions/:auction_id/bids", handler.GetBidsByAuctionHandler)

	now := time.Now().UTC()

	tests := []struct {
		name           string
		auctionID      string
		mockSetup      func()
		expectedStatus int
		expectedMsg    string
		validateData   func(t *testing.T, data []map[string]any)
	}{
		{
			name:      "success_multiple_bids",
			auctionID: "a1",
			mockSetup: func() {
				mockEngine.EXPECT().
					BidsForAuction("a1").
					Return([]model.Bid{
						{BidID: uuid.NewString(), AuctionID: "a1", BidderID: "u2", Amount: 300, BidTime: now, Status: model.BidWinning},
						{BidID: uuid.NewString(), AuctionID: "a1", BidderID: "u1", Amount: 200, BidTime: now, Status: model.BidOutbid},
					}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedMsg:    "bids retrieved successfully",
			validateData: func(t *testing.T, data []map[string]any) {
				require.Len(t, data, 2)
				require.Equal(t, 300.0, data[0]["amount"])
				require.Equal(t, string(model.BidWinning), data[0]["status"])
			},
		},
		{
			name:      "success_no_bids",
			auctionID: "a2",
			mockSetup: func() {
				mockEngine.EXPECT().BidsForAuction("a2").Return(nil, nil)
			},
			expectedStatus: http.StatusOK,
			expectedMsg:    "bids retrieved successfully",
			validateData: func(t *testing.T, data []map[string]any) {
				require.Len(t, data, 0)
			},
		},
		{
			name:      "auction_not_found",
			auctionID: "missing",
			mockSetup: func() {
				mockEngine.EXPECT().BidsForAuction("missing").Return(nil, auctionerrors.ErrAuctionNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedMsg:    "auction not found",
		},
		{
			name:      "engine_generic_error",
			auctionID: "a3",
			mockSetup: func() {
				mockEngine.EXPECT().BidsForAuction("a3").Return(nil, errors.New("storage failure"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedMsg:    "internal server error",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			tc.mockSetup()

			req := httptest.NewRequest(http.MethodGet, "/auctions/"+tc.auctionID+"/bids", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, tc.expectedStatus, w.Code)

			var resp map[string]any
			err := json.Unmarshal(w.Body.Bytes(), &resp)
			require.NoError(t, err)
			require.Contains(t, resp["message"], tc.expectedMsg)

			if tc.validateData != nil && w.Code == http.StatusOK {
				dataRaw := resp["data"].([]any)
				data := make([]map[string]any, len(dataRaw))
				for i, v := range dataRaw {
					data[i] = v.(map[string]any)
				}
				tc.validateData(t, data)
			}
		})
	}
}

// Test GetDeadlineHandler
func TestGetDeadlineHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockEngine := NewMockBidEngineInterface(ctrl)
	handler := NewBiddingHandler(mockEngine)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/auctions/:auction_id/deadline", handler.GetDeadlineHandler)

	deadline := time.Date(2026, 8, 1, 12, 30, 0, 0, time.UTC)

	tests := []struct {
		name           string
		auctionID      string
		mockSetup      func()
		expectedStatus int
		validateData   func(t *testing.T, data map[string]any)
	}{
		{
			name:      "success",
			auctionID: "a1",
			mockSetup: func() {
				mockEngine.EXPECT().GetCurrentDeadline("a1").Return(deadline, nil)
			},
			expectedStatus: http.StatusOK,
			validateData: func(t *testing.T, data map[string]any) {
				require.Equal(t, "a1", data["auction_id"])
				require.Equal(t, "2026-08-01T12:30:00Z", data["deadline"])
			},
		},
		{
			name:      "auction_not_found",
			auctionID: "missing",
			mockSetup: func() {
				mockEngine.EXPECT().GetCurrentDeadline("missing").Return(time.Time{}, auctionerrors.ErrAuctionNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			tc.mockSetup()

			req := httptest.NewRequest(http.MethodGet, "/auctions/"+tc.auctionID+"/deadline", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, tc.expectedStatus, w.Code)

			if tc.validateData != nil && w.Code == http.StatusOK {
				var resp map[string]any
				err := json.Unmarshal(w.Body.Bytes(), &resp)
				require.NoError(t, err)
				tc.validateData(t, resp["data"].(map[string]any))
			}
		})
	}
}

// Test GetBidsByUserHandler
func TestGetBidsByUserHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockEngine := NewMockBidEngineInterface(ctrl)
	handler := NewBiddingHandler(mockEngine)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/users/:user_id/bids", handler.GetBidsByUserHandler)

	now := time.Now().UTC()

	tests := []struct {
		name           string
		userID         string
		mockSetup      func()
		expectedStatus int
		expectedMsg    string
		expectedCount  int
	}{
		{
			name:   "success_with_bids",
			userID: "u1",
			mockSetup: func() {
				mockEngine.EXPECT().
					BidsByUser("u1").
					Return([]model.Bid{
						{BidID: uuid.NewString(), AuctionID: "a1", BidderID: "u1", Amount: 200, BidTime: now, Status: model.BidWinning},
					}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedMsg:    "bids retrieved successfully",
			expectedCount:  1,
		},
		{
			name:   "success_no_bids",
			userID: "u2",
			mockSetup: func() {
				mockEngine.EXPECT().BidsByUser("u2").Return(nil, nil)
			},
			expectedStatus: http.StatusOK,
			expectedMsg:    "bids retrieved successfully",
			expectedCount:  0,
		},
		{
			name:   "engine_generic_error",
			userID: "u3",
			mockSetup: func() {
				mockEngine.EXPECT().BidsByUser("u3").Return(nil, errors.New("storage failure"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedMsg:    "internal server error",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			tc.mockSetup()

			req := httptest.NewRequest(http.MethodGet, "/users/"+tc.userID+"/bids", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, tc.expectedStatus, w.Code)

			var resp map[string]any
			err := json.Unmarshal(w.Body.Bytes(), &resp)
			require.NoError(t, err)
			require.Contains(t, resp["message"], tc.expectedMsg)

			if w.Code == http.StatusOK {
				require.Len(t, resp["data"].([]any), tc.expectedCount)
			}
		})
	}
}
