package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"auction-system/utils"
)

const maxFrameSize = 64 * 1024

// TCPBidServer accepts one connection per bid: a bounded worker pool reads
// exactly one request, invokes the engine, writes one response and closes.
// A connection that produces no complete request within the read timeout is
// abandoned without touching the engine.
type TCPBidServer struct {
	engine  BidPlacer
	addr    string
	timeout time.Duration
	sem     chan struct{}

	ln      net.Listener
	wg      sync.WaitGroup
	closing atomic.Bool

	// Monitoring counters.
	totalConnections atomic.Int64
	bidsProcessed    atomic.Int64
}

// NewTCPBidServer creates a server for addr with the given worker pool size
// and per-connection read timeout.
func NewTCPBidServer(e BidPlacer, addr string, poolSize int, timeout time.Duration) *TCPBidServer {
	if poolSize <= 0 {
		poolSize = 50
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &TCPBidServer{
		engine:  e,
		addr:    addr,
		timeout: timeout,
		sem:     make(chan struct{}, poolSize),
	}
}

// Start binds the listener and begins accepting connections.
func (s *TCPBidServer) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("tcp server: listen %s: %w", s.addr, err)
	}
	s.ln = ln
	utils.Info("TCP bid server started", map[string]any{
		"addr":    ln.Addr().String(),
		"timeout": s.timeout.String(),
		"workers": cap(s.sem),
	})
	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

// Addr returns the bound listener address.
func (s *TCPBidServer) Addr() net.Addr {
	return s.ln.Addr()
}

// Stop closes the listener and waits for in-flight connections.
func (s *TCPBidServer) Stop() {
	s.closing.Store(true)
	if s.ln != nil {
		s.ln.Close()
	}
	s.wg.Wait()
}

// Stats returns (total connections, bids processed).
func (s *TCPBidServer) Stats() (int64, int64) {
	return s.totalConnections.Load(), s.bidsProcessed.Load()
}

func (s *TCPBidServer) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if !s.closing.Load() {
				utils.Error("tcp server: accept failed", map[string]any{"error": err.Error()})
			}
			return
		}
		s.totalConnections.Add(1)
		s.sem <- struct{}{} // bound the pool
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer func() { <-s.sem }()
			s.handleConn(conn)
		}()
	}
}

func (s *TCPBidServer) handleConn(conn net.Conn) {
	defer conn.Close()
	remote := conn.RemoteAddr().String()
	conn.SetReadDeadline(time.Now().Add(s.timeout))

	buf := make([]byte, 0, 1024)
	tmp := make([]byte, 1024)
	for frameEnd(buf) < 0 {
		if len(buf) > maxFrameSize {
			utils.Warn("tcp server: oversized request dropped", map[string]any{"remote": remote})
			return
		}
		n, err := conn.Read(tmp)
		if n > 0 {
			buf = append(buf, tmp[:n]...)
			continue
		}
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				utils.Warn("tcp server: connection timed out", map[string]any{"remote": remote})
			}
			// Incomplete request: abandon without invoking the engine.
			return
		}
	}

	var req BidRequest
	if err := json.Unmarshal(buf[:frameEnd(buf)], &req); err != nil {
		s.writeResponse(conn, failureResponse("invalid request format"))
		return
	}

	res, err := s.engine.PlaceBid(req.AuctionID, req.BidderID, req.Amount)
	s.bidsProcessed.Add(1)
	if err != nil {
		utils.Warn("tcp server: bid rejected", map[string]any{
			"remote":     remote,
			"auction_id": req.AuctionID,
			"error":      err.Error(),
		})
		s.writeResponse(conn, failureResponse(err.Error()))
		return
	}
	utils.Info("tcp server: bid accepted", map[string]any{
		"remote":     remote,
		"auction_id": req.AuctionID,
		"bid_id":     res.BidID,
		"amount":     res.Amount,
	})
	s.writeResponse(conn, successResponse(res))
}

func (s *TCPBidServer) writeResponse(conn net.Conn, resp BidResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	conn.SetWriteDeadline(time.Now().Add(s.timeout))
	if _, err := conn.Write(append(data, '\n')); err != nil {
		utils.Warn("tcp server: write failed", map[string]any{"error": err.Error()})
	}
}
