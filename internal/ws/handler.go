// Package ws binds one websocket connection to at most one (room, player)
// pair and shuttles protocol frames between the transport and the room actor.
package ws

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"kiball/internal/hub"
	"kiball/internal/protocol"
	"kiball/internal/room"
)

const (
	defaultPingInterval = 15 * time.Second
	defaultOutboxSize   = 32
	writeTimeout        = 3 * time.Second
)

type Options struct {
	// PingInterval is the liveness sweep period; a connection that does
	// not answer its ping before the next sweep is terminated.
	PingInterval time.Duration
	// OutboxSize is the per-session broadcast buffer; a full buffer drops
	// frames rather than stalling the room.
	OutboxSize int
}

func (o Options) withDefaults() Options {
	if o.PingInterval <= 0 {
		o.PingInterval = defaultPingInterval
	}
	if o.OutboxSize <= 0 {
		o.OutboxSize = defaultOutboxSize
	}
	return o
}

// session is the per-connection state. It lives entirely on the reader
// goroutine; the writer and ping goroutines only touch the conn and outbox.
type session struct {
	conn     *websocket.Conn
	outbox   chan []byte
	h        *hub.Hub
	rm       *room.Room
	playerID string
	log      *zap.Logger
}

func Handler(h *hub.Hub, opts Options, log *zap.Logger) http.HandlerFunc {
	opts = opts.withDefaults()
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			// Browser clients connect from the game origin during
			// dev; tighten before exposing publicly.
			InsecureSkipVerify: true,
		})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")
		conn.SetReadLimit(1 << 20)
		remote := r.RemoteAddr

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		s := &session{
			conn:   conn,
			outbox: make(chan []byte, opts.OutboxSize),
			h:      h,
			log:    log,
		}
		defer s.leave()

		// Writer goroutine drains the outbox so broadcasts never block
		// the room loop on this socket.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case payload := <-s.outbox:
					wctx, wcancel := context.WithTimeout(ctx, writeTimeout)
					err := conn.Write(wctx, websocket.MessageText, payload)
					wcancel()
					if err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Liveness sweep: Ping blocks until the pong arrives, so an
		// unanswered ping times out and tears the connection down.
		go func() {
			ticker := time.NewTicker(opts.PingInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					pctx, pcancel := context.WithTimeout(ctx, opts.PingInterval)
					err := conn.Ping(pctx)
					pcancel()
					if err != nil {
						// playerID is owned by the reader goroutine.
						s.log.Info("terminating unresponsive connection",
							zap.String("remote", remote))
						cancel()
						_ = conn.Close(websocket.StatusPolicyViolation, "missed heartbeat")
						return
					}
				}
			}
		}()

		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				return
			}
			s.dispatch(ctx, data)
		}
	}
}

func (s *session) dispatch(ctx context.Context, data []byte) {
	msg, err := protocol.DecodeClient(data)
	if err != nil {
		code := protocol.CodeBadMessage
		if errors.Is(err, protocol.ErrBadJSON) {
			code = protocol.CodeBadJSON
		}
		s.enqueue(protocol.Error{Type: protocol.TypeError, Code: code, Message: err.Error()})
		return
	}

	switch m := msg.(type) {
	case protocol.JoinRoom:
		s.join(ctx, m)

	case protocol.LeaveRoom:
		s.leave()

	case protocol.PlayerReady:
		if s.rm != nil {
			s.rm.Inbox() <- room.Ready{PlayerID: s.playerID, Ready: m.Ready}
		}

	case protocol.PoseUpdate:
		if s.rm != nil {
			s.rm.Inbox() <- room.Pose{
				PlayerID:     s.playerID,
				Hands:        m.Hands,
				ShieldActive: m.ShieldActive,
				Timestamp:    m.Timestamp,
			}
		}

	case protocol.BallHit:
		if s.rm != nil {
			s.rm.Inbox() <- room.Hit{
				PlayerID:  s.playerID,
				BallID:    m.BallID,
				TargetID:  m.TargetID,
				Energy:    m.Energy,
				Timestamp: m.Timestamp,
			}
		}

	case protocol.MatchReset:
		if s.rm != nil {
			s.rm.Inbox() <- room.Reset{PlayerID: s.playerID, Reason: m.Reason}
		}

	case protocol.Ping:
		s.enqueue(protocol.Pong{Type: protocol.TypePong, Timestamp: m.Timestamp})
	}
}

func (s *session) join(ctx context.Context, m protocol.JoinRoom) {
	if s.rm != nil {
		// A session binds once for its lifetime; repeat joins are a
		// race artifact and ignored.
		return
	}
	if m.RoomID == "" {
		s.enqueue(protocol.Error{
			Type:    protocol.TypeError,
			Code:    protocol.CodeBadMessage,
			Message: "join_room requires a roomId",
		})
		return
	}

	roomReply := make(chan *room.Room, 1)
	s.h.Inbox() <- hub.EnsureRoom{ID: m.RoomID, Reply: roomReply}
	rm := <-roomReply

	joinReply := make(chan room.JoinResult, 1)
	rm.Inbox() <- room.Join{Name: m.Name, TeamID: m.TeamID, Outbox: s.outbox, Reply: joinReply}
	select {
	case res := <-joinReply:
		s.rm = rm
		s.playerID = res.PlayerID
	case <-ctx.Done():
	}
}

// leave is idempotent: both an explicit leave_room and the socket-close
// cleanup funnel through here, and the second call is a no-op.
func (s *session) leave() {
	if s.rm == nil {
		return
	}
	s.rm.Inbox() <- room.Leave{PlayerID: s.playerID}
	s.rm = nil
	s.playerID = ""
}

func (s *session) enqueue(msg any) {
	select {
	case s.outbox <- protocol.MustEncode(msg):
	default:
	}
}
