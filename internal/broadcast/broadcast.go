// Package broadcast sends auction updates as connectionless group datagrams.
// Delivery is best-effort: no acknowledgement, no retry, and per-auction
// ordering only as good as send order (there is a single sender goroutine).
package broadcast

import (
	"encoding/json"
	"fmt"
	"net"
	"time"

	"auction-system/utils"
)

// Message types on the broadcast group.
const (
	TypePriceUpdate  = "PRICE_UPDATE"
	TypeStatusUpdate = "STATUS_UPDATE"
)

// Message is the wire format for group broadcasts. Type-specific fields are
// omitted when empty.
type Message struct {
	MessageType string `json:"message_type"`
	AuctionID   string `json:"auction_id"`
	ItemName    string `json:"item_name"`
	NewPrice    int64  `json:"new_price,omitempty"`
	BidderID    string `json:"bidder_id,omitempty"`
	BidderName  string `json:"bidder_name,omitempty"`
	Status      string `json:"status,omitempty"`
	Message     string `json:"message,omitempty"`
	Timestamp   string `json:"timestamp"`
}

// UDPBroadcaster sends messages to a UDP group address through a bounded
// queue drained by one sender goroutine, so enqueueing never blocks the bid
// path. A full queue drops the message with a log line.
type UDPBroadcaster struct {
	conn  *net.UDPConn
	queue chan Message
	done  chan struct{}
}

// NewUDP creates a broadcaster for the given group address
// (e.g. "230.0.0.1:4446") and starts its sender goroutine.
func NewUDP(group string, queueSize int) (*UDPBroadcaster, error) {
	addr, err := net.ResolveUDPAddr("udp", group)
	if err != nil {
		return nil, fmt.Errorf("broadcast: resolve group %s: %w", group, err)
	}
	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("broadcast: dial group %s: %w", group, err)
	}
	if queueSize <= 0 {
		queueSize = 256
	}
	b := &UDPBroadcaster{
		conn:  conn,
		queue: make(chan Message, queueSize),
		done:  make(chan struct{}),
	}
	go b.sendLoop()
	utils.Info("multicast broadcaster started", map[string]any{"group": group})
	return b, nil
}

// BroadcastPriceUpdate announces a new current price to all subscribers.
func (b *UDPBroadcaster) BroadcastPriceUpdate(auctionID, itemName string, newPrice int64, bidderID, bidderName string) {
	b.enqueue(Message{
		MessageType: TypePriceUpdate,
		AuctionID:   auctionID,
		ItemName:    itemName,
		NewPrice:    newPrice,
		BidderID:    bidderID,
		BidderName:  bidderName,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	})
}

// BroadcastStatusUpdate announces an auction status change to all subscribers.
func (b *UDPBroadcaster) BroadcastStatusUpdate(auctionID, itemName, status, message string) {
	b.enqueue(Message{
		MessageType: TypeStatusUpdate,
		AuctionID:   auctionID,
		ItemName:    itemName,
		Status:      status,
		Message:     message,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	})
}

func (b *UDPBroadcaster) enqueue(m Message) {
	select {
	case b.queue <- m:
	default:
		utils.Warn("broadcast queue full, message dropped", map[string]any{
			"message_type": m.MessageType,
			"auction_id":   m.AuctionID,
		})
	}
}

func (b *UDPBroadcaster) sendLoop() {
	defer close(b.done)
	for m := range b.queue {
		data, err := json.Marshal(m)
		if err != nil {
			utils.Error("broadcast encode failed", map[string]any{"error": err.Error()})
			continue
		}
		if _, err := b.conn.Write(data); err != nil {
			// Best-effort: never propagated to the bid path.
			utils.Warn("broadcast send failed", map[string]any{
				"message_type": m.MessageType,
				"auction_id":   m.AuctionID,
				"error":        err.Error(),
			})
		}
	}
}

// Close stops the sender after draining queued messages.
func (b *UDPBroadcaster) Close() error {
	close(b.queue)
	<-b.done
	return b.conn.Close()
}
