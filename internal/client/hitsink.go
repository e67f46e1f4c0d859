package client

import "kiball/internal/protocol"

// The client satisfies the simulation's HitSink seam, so a World wired to a
// Client reports hits for authoritative scoring whenever the socket is open.

func (c *Client) Connected() bool {
	return c.Status() == StatusOpen
}

func (c *Client) SendHit(ballID, targetID string, energy float64, timestamp int64) {
	c.Send(protocol.BallHit{
		Type:      protocol.TypeBallHit,
		BallID:    ballID,
		TargetID:  targetID,
		Energy:    energy,
		Timestamp: timestamp,
	})
}
