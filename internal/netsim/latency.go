// Package netsim adds configurable delay, jitter, and loss to message
// handlers. The same combinator wraps inbound delivery and outbound sends, so
// it doubles as a test harness and a runtime network-condition simulator.
package netsim

import (
	"math/rand"
	"time"
)

// Config describes the simulated link. A zero Config is a perfect link.
type Config struct {
	BaseMs      float64
	JitterMs    float64
	LossPercent float64         // 0..100
	Rand        func() float64  // draw in [0,1); defaults to math/rand
	After       func(d time.Duration, fn func()) // defaults to time.AfterFunc
}

// Enabled reports whether the config degrades the link at all.
func (c Config) Enabled() bool {
	return c.BaseMs > 0 || c.JitterMs > 0 || c.LossPercent > 0
}

func (c Config) rand() float64 {
	if c.Rand != nil {
		return c.Rand()
	}
	return rand.Float64()
}

func (c Config) after(d time.Duration, fn func()) {
	if c.After != nil {
		c.After(d, fn)
		return
	}
	time.AfterFunc(d, fn)
}

// Wrap returns a handler that drops a fraction of calls and delays the rest.
// With zero jitter the delay is exactly BaseMs; a negative jitter draw never
// produces a negative delay.
func Wrap[T any](cfg Config, handler func(T)) func(T) {
	if !cfg.Enabled() {
		return handler
	}
	return func(v T) {
		if cfg.LossPercent > 0 && cfg.rand() < cfg.LossPercent/100 {
			return
		}
		delay := cfg.BaseMs
		if cfg.JitterMs > 0 {
			delay += (cfg.rand()*2 - 1) * cfg.JitterMs
		}
		if delay < 0 {
			delay = 0
		}
		if delay == 0 {
			handler(v)
			return
		}
		cfg.after(time.Duration(delay*float64(time.Millisecond)), func() {
			handler(v)
		})
	}
}
