// Package room implements the per-room actor. One goroutine owns all player
// state for a room; joins, leaves, pose relays, and hit scoring arrive as
// typed messages on the inbox, so no mutation ever races another.
package room

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"kiball/internal/game"
	"kiball/internal/protocol"
)

type player struct {
	id         string
	name       string
	teamID     string
	score      int
	ready      bool
	lastSeenAt time.Time
	outbox     chan []byte
}

type Room struct {
	ID        string
	CreatedAt time.Time

	inbox      chan Msg
	players    map[string]*player
	tick       int
	numPlayers atomic.Int64

	// OnEmpty fires after the last player leaves, before the loop keeps
	// going; the registry uses it to drop the room.
	onEmpty func(id string)

	log    *zap.Logger
	now    func() time.Time
	ctx    context.Context
	cancel context.CancelFunc
}

func New(parent context.Context, id string, onEmpty func(id string), log *zap.Logger) *Room {
	ctx, cancel := context.WithCancel(parent)
	r := &Room{
		ID:        id,
		CreatedAt: time.Now(),
		inbox:     make(chan Msg, 64),
		players:   make(map[string]*player),
		onEmpty:   onEmpty,
		log:       log.With(zap.String("room", id)),
		now:       time.Now,
		ctx:       ctx,
		cancel:    cancel,
	}
	go r.loop()
	return r
}

// Inbox exposes the actor mailbox to sessions, the registry, and tests.
func (r *Room) Inbox() chan<- Msg { return r.inbox }

// NumPlayers is safe to read from outside the actor loop.
func (r *Room) NumPlayers() int { return int(r.numPlayers.Load()) }

func (r *Room) Stop() { r.cancel() }

func (r *Room) loop() {
	for {
		select {
		case <-r.ctx.Done():
			return
		case m := <-r.inbox:
			switch msg := m.(type) {
			case Join:
				r.handleJoin(msg)
			case Leave:
				r.handleLeave(msg.PlayerID)
			case Ready:
				r.handleReady(msg)
			case Pose:
				r.handlePose(msg)
			case Hit:
				r.handleHit(msg)
			case Reset:
				r.handleReset(msg)
			case GetView:
				msg.Reply <- r.view()
			case Shutdown:
				r.cancel()
				return
			}
		}
	}
}

func (r *Room) handleJoin(msg Join) {
	p := &player{
		id:         uuid.NewString(),
		name:       msg.Name,
		teamID:     msg.TeamID,
		lastSeenAt: r.now(),
		outbox:     msg.Outbox,
	}
	r.players[p.id] = p
	r.numPlayers.Store(int64(len(r.players)))

	r.sendTo(p, protocol.Joined{
		Type:     protocol.TypeJoined,
		PlayerID: p.id,
		RoomID:   r.ID,
		State:    r.snapshot(),
	})
	r.broadcastExcept(p.id, protocol.PlayerJoined{
		Type:   protocol.TypePlayerJoined,
		Player: wirePlayer(p),
	})
	r.log.Info("player joined", zap.String("player", p.id), zap.Int("players", len(r.players)))

	msg.Reply <- JoinResult{PlayerID: p.id}
}

func (r *Room) handleLeave(playerID string) {
	if _, ok := r.players[playerID]; !ok {
		return
	}
	delete(r.players, playerID)
	r.numPlayers.Store(int64(len(r.players)))

	r.broadcastExcept(playerID, protocol.PlayerLeft{
		Type:     protocol.TypePlayerLeft,
		PlayerID: playerID,
	})
	r.log.Info("player left", zap.String("player", playerID), zap.Int("players", len(r.players)))

	if len(r.players) == 0 && r.onEmpty != nil {
		r.onEmpty(r.ID)
	}
}

func (r *Room) handleReady(msg Ready) {
	p, ok := r.players[msg.PlayerID]
	if !ok {
		return
	}
	p.ready = msg.Ready
	p.lastSeenAt = r.now()
	r.tick++
	// Full snapshot, not a delta, so every client recomputes ready
	// counts from the same data.
	r.broadcast(protocol.RoomUpdate{Type: protocol.TypeRoomUpdate, State: r.snapshot()})
}

func (r *Room) handlePose(msg Pose) {
	p, ok := r.players[msg.PlayerID]
	if !ok {
		return
	}
	p.lastSeenAt = r.now()

	r.broadcastExcept(msg.PlayerID, protocol.PoseUpdate{
		Type:         protocol.TypePoseUpdate,
		PlayerID:     msg.PlayerID,
		Hands:        msg.Hands,
		ShieldActive: msg.ShieldActive,
		Timestamp:    msg.Timestamp,
	})
}

func (r *Room) handleHit(msg Hit) {
	shooter, ok := r.players[msg.PlayerID]
	if !ok {
		return
	}
	if msg.TargetID == "" {
		r.sendTo(shooter, protocol.Error{
			Type:    protocol.TypeError,
			Code:    protocol.CodeMissingTarget,
			Message: "ball_hit requires a targetId",
		})
		return
	}

	energy := game.ClampEnergy(msg.Energy)
	points := game.HitPoints(energy)
	damage := game.HitDamage(energy)

	shooter.score += points
	shooter.lastSeenAt = r.now()
	r.tick++

	r.broadcast(protocol.BallHitEvent{
		Type:      protocol.TypeBallHit,
		BallID:    msg.BallID,
		ShooterID: msg.PlayerID,
		TargetID:  msg.TargetID,
		Energy:    energy,
		Points:    points,
		Damage:    damage,
		Timestamp: msg.Timestamp,
	})
	r.broadcast(protocol.RoomUpdate{Type: protocol.TypeRoomUpdate, State: r.snapshot()})
}

func (r *Room) handleReset(msg Reset) {
	if _, ok := r.players[msg.PlayerID]; !ok {
		return
	}
	for _, p := range r.players {
		p.score = 0
		p.ready = false
	}
	r.tick++

	r.broadcast(protocol.MatchReset{
		Type:      protocol.TypeMatchReset,
		Reason:    msg.Reason,
		Timestamp: r.now().UnixMilli(),
	})
	r.broadcast(protocol.RoomUpdate{Type: protocol.TypeRoomUpdate, State: r.snapshot()})
}

func (r *Room) snapshot() protocol.RoomState {
	s := protocol.RoomState{
		ID:         r.ID,
		Tick:       r.tick,
		ServerTime: r.now().UnixMilli(),
		Players:    make([]protocol.Player, 0, len(r.players)),
		Balls:      []protocol.Ball{},
	}
	for _, p := range r.players {
		s.Players = append(s.Players, wirePlayer(p))
	}
	return s
}

func (r *Room) view() View {
	v := View{
		ID:         r.ID,
		Tick:       r.tick,
		NumPlayers: len(r.players),
		Scores:     make(map[string]int, len(r.players)),
		Ready:      make(map[string]bool, len(r.players)),
	}
	for id, p := range r.players {
		v.Scores[id] = p.score
		v.Ready[id] = p.ready
	}
	return v
}

func wirePlayer(p *player) protocol.Player {
	return protocol.Player{
		ID:     p.id,
		Name:   p.name,
		TeamID: p.teamID,
		Score:  p.score,
		Ready:  p.ready,
	}
}

// sendTo enqueues one frame for one player, dropping it if the outbox is
// full. A slow consumer never stalls the room loop.
func (r *Room) sendTo(p *player, msg any) {
	payload := protocol.MustEncode(msg)
	select {
	case p.outbox <- payload:
	default:
		r.log.Warn("outbox full, dropping frame", zap.String("player", p.id))
	}
}

func (r *Room) broadcast(msg any) {
	payload := protocol.MustEncode(msg)
	for _, p := range r.players {
		select {
		case p.outbox <- payload:
		default:
			r.log.Warn("outbox full, dropping frame", zap.String("player", p.id))
		}
	}
}

func (r *Room) broadcastExcept(playerID string, msg any) {
	payload := protocol.MustEncode(msg)
	for id, p := range r.players {
		if id == playerID {
			continue
		}
		select {
		case p.outbox <- payload:
		default:
			r.log.Warn("outbox full, dropping frame", zap.String("player", p.id))
		}
	}
}
