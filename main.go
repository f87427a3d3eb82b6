package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"auction-system/internal/broadcast"
	"auction-system/internal/config"
	"auction-system/internal/engine"
	"auction-system/internal/identity"
	"auction-system/internal/journal"
	"auction-system/internal/ledger"
	model "auction-system/internal/models"
	"auction-system/internal/notify"
	"auction-system/internal/scheduler"
	"auction-system/internal/server"
	"auction-system/internal/store"
	"auction-system/internal/transport"
	bidhandler "auction-system/services/bidding/handler"
	wallethandler "auction-system/services/wallet/handler"
	"auction-system/utils"
)

func main() {
	cfg, err := config.FromArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	book, err := openLedger(cfg)
	if err != nil {
		utils.Fatal("failed to open ledger", map[string]any{"error": err.Error()})
	}

	db := store.NewMemoryStore()

	broadcaster, err := broadcast.NewUDP(cfg.BroadcastGroup, cfg.BroadcastQueueSize)
	if err != nil {
		utils.Fatal("failed to start broadcaster", map[string]any{"error": err.Error()})
	}
	defer broadcaster.Close()

	notifier := notify.NewMemory()
	resolver := identity.NewStatic(nil)

	bidEngine := engine.NewBidEngine(db, book, broadcaster, notifier)

	seedDemoData(book, db, resolver, cfg.FeeAccountID)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sweeper := scheduler.New(db, book, broadcaster, notifier, cfg.FeeAccountID, cfg.FeeBps, cfg.SweepInterval.Std())
	sweeper.Start(ctx)

	tcpServer := transport.NewTCPBidServer(bidEngine, cfg.TCPBidAddr, cfg.WorkerPoolSize, cfg.ReadTimeout.Std())
	if err := tcpServer.Start(); err != nil {
		utils.Fatal("failed to start TCP bid server", map[string]any{"error": err.Error()})
	}
	defer tcpServer.Stop()

	loopServer := transport.NewEventLoopServer(bidEngine, cfg.EventLoopAddr, cfg.ReadTimeout.Std())
	if err := loopServer.Start(); err != nil {
		utils.Fatal("failed to start event-loop bid server", map[string]any{"error": err.Error()})
	}
	defer loopServer.Stop()

	router := server.SetupRouter(
		bidhandler.NewBiddingHandler(bidEngine),
		wallethandler.NewWalletHandler(book),
		resolver,
	)

	fmt.Printf("Starting auction server on %s...\n", cfg.HTTPAddr)
	if err := router.Run(cfg.HTTPAddr); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start server: %v\n", err)
		os.Exit(1)
	}
}

// openLedger builds the ledger, journal-backed when a journal directory is
// configured.
func openLedger(cfg config.Config) (*ledger.Ledger, error) {
	if cfg.JournalDir == "" {
		return ledger.New(), nil
	}
	j, err := journal.Open(cfg.JournalDir)
	if err != nil {
		return nil, err
	}
	return ledger.NewWithJournal(j)
}

// seedDemoData adds sample accounts and auctions so the servers have
// something to bid on out of the box.
func seedDemoData(book *ledger.Ledger, db *store.MemoryStore, resolver *identity.Static, feeAccountID string) {
	book.CreateAccount(feeAccountID, "Platform", 0)

	accounts := []struct {
		id, name, credential string
		balance              int64
	}{
		{"seller1", "Sally Seller", "token-seller1", 0},
		{"bidder1", "Bob Bidder", "token-bidder1", 100000},
		{"bidder2", "Betty Bidder", "token-bidder2", 150000},
	}
	for _, a := range accounts {
		book.CreateAccount(a.id, a.name, a.balance)
		resolver.Register(a.credential, a.id)
	}

	now := time.Now().UTC()
	auctions := []model.Auction{
		{
			AuctionID:        "auction1",
			SellerID:         "seller1",
			ItemName:         "Vintage camera",
			StartingPrice:    10000,
			CurrentPrice:     10000,
			StartTime:        now,
			MandatoryEndTime: now.Add(24 * time.Hour),
			BidGapDuration:   2 * time.Minute,
			Status:           model.AuctionActive,
			CreatedAt:        now,
		},
		{
			AuctionID:        "auction2",
			SellerID:         "seller1",
			ItemName:         "Mechanical keyboard",
			StartingPrice:    5000,
			CurrentPrice:     5000,
			StartTime:        now,
			MandatoryEndTime: now.Add(12 * time.Hour),
			BidGapDuration:   5 * time.Minute,
			Status:           model.AuctionActive,
			CreatedAt:        now,
		},
	}
	for _, a := range auctions {
		if err := db.CreateAuction(a); err != nil {
			utils.Warn("seed auction skipped", map[string]any{
				"auction_id": a.AuctionID,
				"error":      err.Error(),
			})
		}
	}
}
