package broadcast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// A receiver bound to a loopback unicast address exercises the full
// encode/send/receive path without depending on multicast routing.
func newPair(t *testing.T) (*UDPBroadcaster, *Receiver) {
	t.Helper()
	r, err := Listen("127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })

	b, err := NewUDP(r.LocalAddr().String(), 16)
	require.NoError(t, err)
	return b, r
}

func receive(t *testing.T, r *Receiver) Message {
	t.Helper()
	select {
	case m, ok := <-r.Messages():
		require.True(t, ok, "receiver closed before a message arrived")
		return m
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for a broadcast message")
		return Message{}
	}
}

// Tests the price update round trip
func TestBroadcast_PriceUpdate(t *testing.T) {
	b, r := newPair(t)
	defer b.Close()

	b.BroadcastPriceUpdate("a1", "lamp", 2500, "bidder1", "Bob")

	m := receive(t, r)
	require.Equal(t, TypePriceUpdate, m.MessageType)
	require.Equal(t, "a1", m.AuctionID)
	require.Equal(t, "lamp", m.ItemName)
	require.Equal(t, int64(2500), m.NewPrice)
	require.Equal(t, "bidder1", m.BidderID)
	require.Equal(t, "Bob", m.BidderName)
	require.Empty(t, m.Status, "price updates carry no status fields")

	_, err := time.Parse(time.RFC3339, m.Timestamp)
	require.NoError(t, err, "timestamp should be RFC3339")
}

// Tests the status update round trip
func TestBroadcast_StatusUpdate(t *testing.T) {
	b, r := newPair(t)
	defer b.Close()

	b.BroadcastStatusUpdate("a1", "lamp", "ENDED", "sold for 2500")

	m := receive(t, r)
	require.Equal(t, TypeStatusUpdate, m.MessageType)
	require.Equal(t, "ENDED", m.Status)
	require.Equal(t, "sold for 2500", m.Message)
	require.Zero(t, m.NewPrice, "status updates carry no price fields")
}

// Messages arrive in send order; Close drains what was queued.
func TestBroadcast_OrderAndDrain(t *testing.T) {
	b, r := newPair(t)

	for i := int64(1); i <= 5; i++ {
		b.BroadcastPriceUpdate("a1", "lamp", i*100, "bidder1", "Bob")
	}
	require.NoError(t, b.Close())

	for i := int64(1); i <= 5; i++ {
		m := receive(t, r)
		require.Equal(t, i*100, m.NewPrice)
	}
}

// Enqueueing past the queue bound drops instead of blocking the caller.
func TestBroadcast_FullQueueDoesNotBlock(t *testing.T) {
	b, err := NewUDP("127.0.0.1:9", 2)
	require.NoError(t, err)
	defer b.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			b.BroadcastStatusUpdate("a1", "lamp", "ENDED", "x")
		}
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("broadcast enqueue blocked on a full queue")
	}
}

// Tests that a bad group address is rejected
func TestBroadcast_BadGroup(t *testing.T) {
	_, err := NewUDP("not-an-address", 16)
	require.Error(t, err)

	_, err = Listen("not-an-address")
	require.Error(t, err)
}
