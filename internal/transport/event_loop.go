package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"auction-system/utils"
)

// pollInterval bounds how long one multiplexing pass may block on a single
// accept or read attempt.
const pollInterval = 2 * time.Millisecond

// EventLoopServer is the single-goroutine counterpart of TCPBidServer: one
// goroutine owns the listener and every accepted connection, multiplexing
// them with short poll deadlines. Bytes are accumulated per connection until
// a complete frame arrives, then the engine is called synchronously -- the
// call blocks the loop for its duration, a known scalability ceiling.
type EventLoopServer struct {
	engine      BidPlacer
	addr        string
	readTimeout time.Duration

	ln   *net.TCPListener
	quit chan struct{}
	done chan struct{}
}

type loopConn struct {
	conn     net.Conn
	buf      []byte
	accepted time.Time
}

// NewEventLoopServer creates a server for addr with the given per-connection
// read timeout.
func NewEventLoopServer(e BidPlacer, addr string, readTimeout time.Duration) *EventLoopServer {
	if readTimeout <= 0 {
		readTimeout = 30 * time.Second
	}
	return &EventLoopServer{
		engine:      e,
		addr:        addr,
		readTimeout: readTimeout,
		quit:        make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// Start binds the listener and starts the loop goroutine.
func (s *EventLoopServer) Start() error {
	tcpAddr, err := net.ResolveTCPAddr("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("event loop: resolve %s: %w", s.addr, err)
	}
	ln, err := net.ListenTCP("tcp", tcpAddr)
	if err != nil {
		return fmt.Errorf("event loop: listen %s: %w", s.addr, err)
	}
	s.ln = ln
	utils.Info("event-loop bid server started", map[string]any{
		"addr": ln.Addr().String(),
	})
	go s.run()
	return nil
}

// Addr returns the bound listener address.
func (s *EventLoopServer) Addr() net.Addr {
	return s.ln.Addr()
}

// Stop shuts the loop down and closes all connections.
func (s *EventLoopServer) Stop() {
	close(s.quit)
	<-s.done
}

// run is the event loop. It is the only goroutine that ever touches the
// listener or any accepted connection.
func (s *EventLoopServer) run() {
	defer close(s.done)
	var conns []*loopConn
	tmp := make([]byte, 1024)

	for {
		select {
		case <-s.quit:
			s.ln.Close()
			for _, lc := range conns {
				lc.conn.Close()
			}
			return
		default:
		}

		idle := true

		// Poll for a new connection.
		s.ln.SetDeadline(time.Now().Add(pollInterval))
		if conn, err := s.ln.Accept(); err == nil {
			conns = append(conns, &loopConn{conn: conn, accepted: time.Now()})
			idle = false
		} else {
			var ne net.Error
			if !errors.As(err, &ne) || !ne.Timeout() {
				if errors.Is(err, net.ErrClosed) {
					return
				}
				utils.Error("event loop: accept failed", map[string]any{"error": err.Error()})
			}
		}

		// Poll every connection for readable bytes.
		alive := conns[:0]
		for _, lc := range conns {
			lc.conn.SetReadDeadline(time.Now().Add(pollInterval))
			n, err := lc.conn.Read(tmp)
			if n > 0 {
				lc.buf = append(lc.buf, tmp[:n]...)
				idle = false
			}
			if end := frameEnd(lc.buf); end >= 0 {
				s.serve(lc, end)
				continue // connection served and closed
			}
			switch {
			case len(lc.buf) > maxFrameSize:
				lc.conn.Close()
			case err == nil:
				alive = append(alive, lc)
			default:
				var ne net.Error
				if errors.As(err, &ne) && ne.Timeout() {
					if time.Since(lc.accepted) > s.readTimeout {
						// Stalled mid-request: drop without a partial bid.
						utils.Warn("event loop: connection timed out", map[string]any{
							"remote": lc.conn.RemoteAddr().String(),
						})
						lc.conn.Close()
					} else {
						alive = append(alive, lc)
					}
				} else {
					lc.conn.Close()
				}
			}
		}
		conns = alive

		if idle {
			time.Sleep(pollInterval)
		}
	}
}

// serve decodes the completed frame, invokes the engine synchronously and
// writes the response before closing the connection.
func (s *EventLoopServer) serve(lc *loopConn, end int) {
	defer lc.conn.Close()

	var req BidRequest
	if err := json.Unmarshal(lc.buf[:end], &req); err != nil {
		s.writeResponse(lc.conn, failureResponse("invalid request format"))
		return
	}

	res, err := s.engine.PlaceBid(req.AuctionID, req.BidderID, req.Amount)
	if err != nil {
		utils.Warn("event loop: bid rejected", map[string]any{
			"auction_id": req.AuctionID,
			"error":      err.Error(),
		})
		s.writeResponse(lc.conn, failureResponse(err.Error()))
		return
	}
	utils.Info("event loop: bid accepted", map[string]any{
		"auction_id": req.AuctionID,
		"bid_id":     res.BidID,
		"amount":     res.Amount,
	})
	s.writeResponse(lc.conn, successResponse(res))
}

func (s *EventLoopServer) writeResponse(conn net.Conn, resp BidResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	conn.SetWriteDeadline(time.Now().Add(s.readTimeout))
	if _, err := conn.Write(append(data, '\n')); err != nil {
		utils.Warn("event loop: write failed", map[string]any{"error": err.Error()})
	}
}
