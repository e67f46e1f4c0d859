// Package client implements the game-side connection state machine: join
// handshake, heartbeat, exponential-backoff reconnect, and latency-wrapped
// message delivery.
package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"kiball/internal/game"
	"kiball/internal/netsim"
	"kiball/internal/protocol"
)

type Status string

const (
	StatusIdle         Status = "idle"
	StatusConnecting   Status = "connecting"
	StatusOpen         Status = "open"
	StatusClosed       Status = "closed"
	StatusError        Status = "error"
	StatusReconnecting Status = "reconnecting"
)

const (
	DefaultBackoffFloor      = 1000 * time.Millisecond
	DefaultBackoffCap        = 20000 * time.Millisecond
	DefaultHeartbeatInterval = 10 * time.Second
	DefaultPoseInterval      = 50 * time.Millisecond // 20 Hz
)

// Transport is a persistent, ordered, message-oriented duplex channel.
type Transport interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
	Close() error
}

type Dialer func(ctx context.Context, url string) (Transport, error)

type Options struct {
	URL    string
	RoomID string
	Name   string
	TeamID string

	Dial      Dialer
	OnMessage func(msg any)
	OnStatus  func(s Status)

	// DisableReconnect turns off the backoff loop; reconnect is on by
	// default.
	DisableReconnect  bool
	BackoffFloor      time.Duration
	BackoffCap        time.Duration
	HeartbeatInterval time.Duration

	// PoseInterval is the fixed pose send rate; the render layer updates
	// poses as fast as it likes, the wire only sees one per interval.
	PoseInterval time.Duration

	// Latency degrades inbound delivery and outbound sends identically
	// when configured.
	Latency netsim.Config

	Logger *zap.Logger
}

type Client struct {
	opts Options

	mu             sync.Mutex
	status         Status
	backoff        time.Duration
	manualClose    bool
	transport      Transport
	gen            int // bumped per connection attempt; stale loops bail out
	reconnectTimer *time.Timer
	heartbeatStop  chan struct{}

	poseMu     sync.Mutex
	poseHands  []game.HandPose
	poseShield bool
	havePose   bool

	deliver func(msg any)
	sendRaw func(data []byte)

	// after is time.AfterFunc unless a test swaps it out.
	after func(d time.Duration, fn func()) *time.Timer

	log *zap.Logger
}

func New(opts Options) *Client {
	if opts.BackoffFloor <= 0 {
		opts.BackoffFloor = DefaultBackoffFloor
	}
	if opts.BackoffCap <= 0 {
		opts.BackoffCap = DefaultBackoffCap
	}
	if opts.HeartbeatInterval <= 0 {
		opts.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if opts.PoseInterval <= 0 {
		opts.PoseInterval = DefaultPoseInterval
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	c := &Client{
		opts:    opts,
		status:  StatusIdle,
		backoff: opts.BackoffFloor,
		after:   time.AfterFunc,
		log:     opts.Logger,
	}
	c.deliver = netsim.Wrap(opts.Latency, func(msg any) {
		if opts.OnMessage != nil {
			opts.OnMessage(msg)
		}
	})
	c.sendRaw = netsim.Wrap(opts.Latency, c.writeNow)
	return c
}

func (c *Client) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Connect opens a new transport. It is a no-op while a socket is already
// open or opening.
func (c *Client) Connect() {
	c.mu.Lock()
	switch c.status {
	case StatusOpen, StatusConnecting, StatusReconnecting:
		c.mu.Unlock()
		return
	case StatusError, StatusClosed:
		c.setStatusLocked(StatusReconnecting)
	default:
		c.setStatusLocked(StatusConnecting)
	}
	c.manualClose = false
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	go c.dial(gen)
}

func (c *Client) dial(gen int) {
	t, err := c.opts.Dial(context.Background(), c.opts.URL)

	c.mu.Lock()
	if gen != c.gen || c.manualClose {
		c.mu.Unlock()
		if t != nil {
			_ = t.Close()
		}
		return
	}
	if err != nil {
		c.setStatusLocked(StatusError)
		c.scheduleReconnectLocked()
		c.mu.Unlock()
		c.log.Warn("dial failed", zap.Error(err))
		return
	}

	c.transport = t
	c.backoff = c.opts.BackoffFloor
	c.setStatusLocked(StatusOpen)
	c.heartbeatStop = make(chan struct{})
	stop := c.heartbeatStop
	c.mu.Unlock()

	c.Send(protocol.JoinRoom{
		Type:   protocol.TypeJoinRoom,
		RoomID: c.opts.RoomID,
		Name:   c.opts.Name,
		TeamID: c.opts.TeamID,
	})

	go c.heartbeat(stop)
	go c.poseLoop(stop)
	go c.readLoop(t, gen)
}

// UpdatePose records the latest hand snapshot. Call it at render rate; the
// pose loop drains it onto the wire at the fixed send rate.
func (c *Client) UpdatePose(hands []game.HandPose, shieldActive bool) {
	c.poseMu.Lock()
	c.poseHands = hands
	c.poseShield = shieldActive
	c.havePose = true
	c.poseMu.Unlock()
}

func (c *Client) poseLoop(stop chan struct{}) {
	ticker := time.NewTicker(c.opts.PoseInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			c.poseMu.Lock()
			hands, shield, have := c.poseHands, c.poseShield, c.havePose
			c.poseMu.Unlock()
			if !have {
				continue
			}
			c.Send(protocol.PoseUpdate{
				Type:         protocol.TypePoseUpdate,
				Hands:        hands,
				ShieldActive: shield,
				Timestamp:    time.Now().UnixMilli(),
			})
		}
	}
}

func (c *Client) readLoop(t Transport, gen int) {
	for {
		data, err := t.Read(context.Background())
		if err != nil {
			c.onTransportClosed(gen)
			return
		}

		msg, derr := protocol.DecodeServer(data)
		if derr != nil {
			if errors.Is(derr, protocol.ErrBadJSON) {
				c.mu.Lock()
				if gen == c.gen {
					c.setStatusLocked(StatusError)
				}
				c.mu.Unlock()
			}
			continue
		}
		c.deliver(msg)
	}
}

func (c *Client) onTransportClosed(gen int) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.stopHeartbeatLocked()
	c.transport = nil
	if c.manualClose {
		c.setStatusLocked(StatusClosed)
		c.mu.Unlock()
		return
	}
	// A drop the client did not ask for is a transport error; closed is
	// reserved for deliberate disconnects.
	c.setStatusLocked(StatusError)
	c.scheduleReconnectLocked()
	c.mu.Unlock()
}

// Disconnect is a manual close: it cancels any pending reconnect, announces
// leave_room, and shuts the transport down for good.
func (c *Client) Disconnect() {
	c.mu.Lock()
	c.manualClose = true
	if c.reconnectTimer != nil {
		c.reconnectTimer.Stop()
		c.reconnectTimer = nil
	}
	c.stopHeartbeatLocked()
	t := c.transport
	c.transport = nil
	c.gen++
	c.setStatusLocked(StatusClosed)
	c.mu.Unlock()

	if t != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		_ = t.Write(ctx, protocol.MustEncode(protocol.LeaveRoom{Type: protocol.TypeLeaveRoom}))
		cancel()
		_ = t.Close()
	}
}

// Send routes a message through the latency-wrapped outbound path. With no
// open transport it is silently dropped; there is no queue.
func (c *Client) Send(msg any) {
	c.mu.Lock()
	open := c.transport != nil
	c.mu.Unlock()
	if !open {
		return
	}
	c.sendRaw(protocol.MustEncode(msg))
}

func (c *Client) writeNow(data []byte) {
	c.mu.Lock()
	t := c.transport
	c.mu.Unlock()
	if t == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := t.Write(ctx, data); err != nil {
		c.log.Debug("write failed", zap.Error(err))
	}
}

func (c *Client) heartbeat(stop chan struct{}) {
	ticker := time.NewTicker(c.opts.HeartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			c.Send(protocol.Ping{Type: protocol.TypePing, Timestamp: time.Now().UnixMilli()})
		}
	}
}

func (c *Client) stopHeartbeatLocked() {
	if c.heartbeatStop != nil {
		close(c.heartbeatStop)
		c.heartbeatStop = nil
	}
}

// scheduleReconnectLocked arms the backoff timer, then doubles the delay for
// next time up to the cap. Defaults give 1000, 2000, 4000, ... 20000, 20000.
func (c *Client) scheduleReconnectLocked() {
	if c.opts.DisableReconnect || c.manualClose {
		return
	}
	delay := c.backoff
	if delay > c.opts.BackoffCap {
		delay = c.opts.BackoffCap
	}
	c.reconnectTimer = c.after(delay, c.Connect)

	c.backoff *= 2
	if c.backoff > c.opts.BackoffCap {
		c.backoff = c.opts.BackoffCap
	}
}

func (c *Client) setStatusLocked(s Status) {
	if c.status == s {
		return
	}
	c.status = s
	if c.opts.OnStatus != nil {
		go c.opts.OnStatus(s)
	}
}
