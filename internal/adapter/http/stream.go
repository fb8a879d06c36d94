package http

import (
	"context"
	"net/http"
	"time"

	"cryptoboost/internal/adapter/middleware"
	"cryptoboost/internal/usecase/projection"
	"cryptoboost/internal/usecase/settlement"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Projector is the read side of the stream.
type Projector interface {
	ProjectForUser(ctx context.Context, userID string, now time.Time) (*projection.Projection, error)
}

// Settler runs a settlement pass when a streamed position is due.
type Settler interface {
	RunPass(ctx context.Context, now time.Time) (settlement.Report, error)
}

// StreamHandler pushes the live projection over a websocket every refresh tick.
type StreamHandler struct {
	projector Projector
	settler   Settler
	refresh   time.Duration
	upgrader  websocket.Upgrader
	now       func() time.Time
}

// NewStreamHandler; settler may be nil, in which case due positions wait for the scheduler.
func NewStreamHandler(p Projector, s Settler, refresh time.Duration) *StreamHandler {
	return &StreamHandler{
		projector: p,
		settler:   s,
		refresh:   refresh,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		now: func() time.Time { return time.Now().UTC() },
	}
}

type streamMessage struct {
	Type       string                 `json:"type"`
	Projection *projection.Projection `json:"projection,omitempty"`
	Error      string                 `json:"error,omitempty"`
}

func (h *StreamHandler) BalanceStream(c echo.Context) error {
	who, ok := middleware.CurrentIdentity(c)
	if !ok {
		return unauthenticated(c)
	}
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade already wrote the error response
		log.WithError(err).Debug("stream: upgrade failed")
		return nil
	}
	defer conn.Close()

	entry := log.WithField("user_id", who.ID)
	entry.Debug("stream: connected")

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	// the read loop only exists to see pongs and the close frame
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error { return conn.SetReadDeadline(time.Now().Add(pongWait)) })
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	refresh := time.NewTicker(h.refresh)
	defer refresh.Stop()
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	if err := h.push(ctx, conn, who.ID); err != nil {
		return nil
	}
	for {
		select {
		case <-ctx.Done():
			entry.Debug("stream: closed")
			return nil
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return nil
			}
		case <-refresh.C:
			if err := h.push(ctx, conn, who.ID); err != nil {
				return nil
			}
		}
	}
}

// push sends one projection. Projection failures are reported in-band;
// only write failures end the stream.
func (h *StreamHandler) push(ctx context.Context, conn *websocket.Conn, userID string) error {
	msg := streamMessage{Type: "projection"}
	p, err := h.project(ctx, userID)
	if err != nil {
		log.WithField("user_id", userID).WithError(err).Warn("stream: projection failed")
		msg = streamMessage{Type: "error", Error: "projection unavailable"}
	} else {
		msg.Projection = p
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(msg)
}

func (h *StreamHandler) project(ctx context.Context, userID string) (*projection.Projection, error) {
	p, err := h.projector.ProjectForUser(ctx, userID, h.now())
	if err != nil || h.settler == nil || !anyDue(p) {
		return p, err
	}
	if _, err := h.settler.RunPass(ctx, h.now()); err != nil {
		log.WithError(err).Warn("stream: settlement pass failed")
		return p, nil
	}
	return h.projector.ProjectForUser(ctx, userID, h.now())
}

func anyDue(p *projection.Projection) bool {
	for _, pos := range p.Positions {
		if pos.DueForSettlement {
			return true
		}
	}
	return false
}
