package broadcast

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"

	"auction-system/utils"
)

// Receiver joins a broadcast group and delivers decoded messages over a
// channel. Datagrams that fail to decode are dropped.
type Receiver struct {
	conn     net.PacketConn
	messages chan Message
}

// Listen subscribes to the group address. A multicast group address joins the
// group; a unicast address listens directly (used by tests).
func Listen(group string) (*Receiver, error) {
	addr, err := net.ResolveUDPAddr("udp", group)
	if err != nil {
		return nil, fmt.Errorf("broadcast: resolve group %s: %w", group, err)
	}
	var conn net.PacketConn
	if addr.IP != nil && addr.IP.IsMulticast() {
		conn, err = net.ListenMulticastUDP("udp", nil, addr)
	} else {
		conn, err = net.ListenUDP("udp", addr)
	}
	if err != nil {
		return nil, fmt.Errorf("broadcast: listen %s: %w", group, err)
	}

	r := &Receiver{conn: conn, messages: make(chan Message, 64)}
	go r.readLoop()
	return r, nil
}

// Messages returns the channel of received messages. It is closed when the
// receiver is closed.
func (r *Receiver) Messages() <-chan Message {
	return r.messages
}

// LocalAddr returns the address the receiver is bound to.
func (r *Receiver) LocalAddr() net.Addr {
	return r.conn.LocalAddr()
}

// Close leaves the group and closes the message channel.
func (r *Receiver) Close() error {
	return r.conn.Close()
}

func (r *Receiver) readLoop() {
	defer close(r.messages)
	buf := make([]byte, 2048)
	for {
		n, _, err := r.conn.ReadFrom(buf)
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				utils.Warn("broadcast receive failed", map[string]any{"error": err.Error()})
			}
			return
		}
		var m Message
		if err := json.Unmarshal(buf[:n], &m); err != nil {
			utils.Warn("broadcast decode failed", map[string]any{"error": err.Error()})
			continue
		}
		select {
		case r.messages <- m:
		default:
			// Slow subscriber; best-effort contract allows dropping.
		}
	}
}
