package udp

import (
	"context"
	"encoding/json"
	"fmt"
	"net"

	"github.com/google/uuid"

	"github.com/feupindustrial/erp-orders-service/internal/application"
	"github.com/feupindustrial/erp-orders-service/internal/domain"
	"github.com/feupindustrial/erp-orders-service/internal/logger"
)

// Listener is the legacy factory-client channel: one JSON order submission
// per datagram, fire-and-forget.
type Listener struct {
	svc     *application.OrdersService
	bufSize int
	conn    *net.UDPConn
}

func NewListener(svc *application.OrdersService, bufSize int) *Listener {
	return &Listener{svc: svc, bufSize: bufSize}
}

// Addr reports the bound address once Start has succeeded.
func (l *Listener) Addr() net.Addr {
	if l.conn == nil {
		return nil
	}
	return l.conn.LocalAddr()
}

// Start binds the socket and serves datagrams until the context is
// cancelled. Each datagram is handled on its own goroutine so a slow store
// does not back up the socket.
func (l *Listener) Start(ctx context.Context, port int) error {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{Port: port})
	if err != nil {
		return fmt.Errorf("listen udp :%d: %w", port, err)
	}
	l.conn = conn
	logger.Info("udp listener starting", "port", port)

	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	go func() {
		buf := make([]byte, l.bufSize)
		for {
			n, addr, err := conn.ReadFromUDP(buf)
			if err != nil {
				if ctx.Err() != nil {
					logger.Info("udp listener stopped")
					return
				}
				logger.Warn("udp read error", "err", err)
				continue
			}
			data := make([]byte, n)
			copy(data, buf[:n])
			go l.handlePacket(ctx, data, addr)
		}
	}()
	return nil
}

func (l *Listener) handlePacket(ctx context.Context, data []byte, addr *net.UDPAddr) {
	eventID := uuid.NewString()
	logger.Info("udp submission received", "event", eventID, "from", addr.String(), "bytes", len(data))

	var req domain.OrderRequest
	if err := json.Unmarshal(data, &req); err != nil {
		logger.Warn("udp submission unparseable, dropped", "event", eventID, "err", err)
		return
	}

	if err := l.svc.ProcessOrder(ctx, req); err != nil {
		logger.Error("udp submission intake failed", "event", eventID, "nif", req.NIF, "orderID", req.OrderID, "err", err)
	}
}
