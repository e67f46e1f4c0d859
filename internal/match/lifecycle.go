// Package match layers the ready/countdown/live/ended state machine on top
// of room player state. It only governs play while connected to a server
// room; offline play runs in a permanently-live unmanaged mode.
package match

import "math"

type Phase string

const (
	PhaseWaiting   Phase = "waiting"
	PhaseCountdown Phase = "countdown"
	PhaseLive      Phase = "live"
	PhaseEnded     Phase = "ended"
)

const (
	DefaultMatchSeconds = 120.0
	CountdownFrom       = 3
	scoreCapBase        = 300
	scoreCapPerPlayer   = 150
)

// ScoreCap is the winning score for a room of n players.
func ScoreCap(n int) int {
	return scoreCapBase + scoreCapPerPlayer*int(math.Max(0, float64(n-2)))
}

// PlayerState is the slice of room state the lifecycle cares about.
type PlayerState struct {
	Score int
	Ready bool
}

type Options struct {
	MatchSeconds float64
	// ScoreCapOverride wins over the player-count formula when > 0.
	ScoreCapOverride int
}

type Lifecycle struct {
	phase         Phase
	managed       bool
	countdownLeft float64
	remaining     float64
	matchSeconds  float64
	capOverride   int
}

func New(opts Options) *Lifecycle {
	if opts.MatchSeconds <= 0 {
		opts.MatchSeconds = DefaultMatchSeconds
	}
	return &Lifecycle{
		phase:        PhaseWaiting,
		managed:      true,
		matchSeconds: opts.MatchSeconds,
		capOverride:  opts.ScoreCapOverride,
	}
}

func (l *Lifecycle) Phase() Phase { return l.phase }

// Countdown reports the current countdown digit (3, 2, 1), 0 otherwise.
func (l *Lifecycle) Countdown() int {
	if l.phase != PhaseCountdown {
		return 0
	}
	return int(math.Ceil(l.countdownLeft))
}

// Remaining is the match timer in seconds; meaningful while live.
func (l *Lifecycle) Remaining() float64 { return l.remaining }

// SetConnected tracks the network status. Leaving open drops into the
// unmanaged always-live mode so offline play is never gated on readiness;
// regaining the connection restarts the managed lifecycle from waiting.
func (l *Lifecycle) SetConnected(connected bool) {
	if !connected {
		l.managed = false
		l.phase = PhaseLive
		return
	}
	if !l.managed {
		l.managed = true
		l.phase = PhaseWaiting
	}
}

// Reset reacts to a match_reset (sent or received): back to waiting with a
// fresh timer.
func (l *Lifecycle) Reset() {
	l.countdownLeft = 0
	l.remaining = 0
	if l.managed {
		l.phase = PhaseWaiting
	} else {
		l.phase = PhaseLive
	}
}

// Advance drives the state machine by delta seconds against the latest room
// player state.
func (l *Lifecycle) Advance(delta float64, players []PlayerState) {
	if !l.managed {
		return
	}

	switch l.phase {
	case PhaseWaiting:
		if len(players) > 0 && allReady(players) {
			l.phase = PhaseCountdown
			l.countdownLeft = CountdownFrom
		}

	case PhaseCountdown:
		l.countdownLeft -= delta
		if l.countdownLeft <= 0 {
			l.phase = PhaseLive
			l.remaining = l.matchSeconds
		}

	case PhaseLive:
		l.remaining -= delta
		if l.remaining <= 0 {
			l.remaining = 0
			l.phase = PhaseEnded
			return
		}
		cap := l.capOverride
		if cap <= 0 {
			cap = ScoreCap(len(players))
		}
		for _, p := range players {
			if p.Score >= cap {
				l.phase = PhaseEnded
				return
			}
		}
	}
}

func allReady(players []PlayerState) bool {
	for _, p := range players {
		if !p.Ready {
			return false
		}
	}
	return true
}
