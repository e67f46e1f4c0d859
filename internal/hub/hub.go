// Package hub owns the registry of live rooms. Like the rooms themselves it
// is an actor: one goroutine owns the map, callers talk to it through typed
// messages on the inbox.
package hub

import (
	"context"

	"go.uber.org/zap"

	"kiball/internal/room"
)

type HubMsg interface{ isHubMsg() }

// EnsureRoom returns the room for an id, creating it lazily on first join.
type EnsureRoom struct {
	ID    string
	Reply chan *room.Room
}

// GetRoom replies with the live room or nil.
type GetRoom struct {
	ID    string
	Reply chan *room.Room
}

// RemoveRoom drops and stops a room; rooms send this about themselves the
// instant their player map empties.
type RemoveRoom struct {
	ID string
}

// Count replies with the number of live rooms.
type Count struct {
	Reply chan int
}

// ListRooms replies with an id and player count per live room.
type ListRooms struct {
	Reply chan []RoomInfo
}

type ShutdownHub struct{}

func (EnsureRoom) isHubMsg()  {}
func (GetRoom) isHubMsg()     {}
func (RemoveRoom) isHubMsg()  {}
func (Count) isHubMsg()       {}
func (ListRooms) isHubMsg()   {}
func (ShutdownHub) isHubMsg() {}

type RoomInfo struct {
	ID      string `json:"id"`
	Players int    `json:"players"`
}

type Hub struct {
	inbox  chan HubMsg
	rooms  map[string]*room.Room
	log    *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub(parent context.Context, log *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:  make(chan HubMsg, 64),
		rooms:  make(map[string]*room.Room),
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case EnsureRoom:
				if rm := h.rooms[msg.ID]; rm != nil {
					msg.Reply <- rm
					break
				}
				rm := room.New(h.ctx, msg.ID, h.onRoomEmpty, h.log)
				h.rooms[msg.ID] = rm
				h.log.Info("room created", zap.String("room", msg.ID))
				msg.Reply <- rm

			case GetRoom:
				msg.Reply <- h.rooms[msg.ID] // may be nil

			case RemoveRoom:
				if rm, ok := h.rooms[msg.ID]; ok {
					rm.Stop()
					delete(h.rooms, msg.ID)
					h.log.Info("room removed", zap.String("room", msg.ID))
				}

			case Count:
				msg.Reply <- len(h.rooms)

			case ListRooms:
				infos := make([]RoomInfo, 0, len(h.rooms))
				for id, rm := range h.rooms {
					infos = append(infos, RoomInfo{ID: id, Players: rm.NumPlayers()})
				}
				msg.Reply <- infos

			case ShutdownHub:
				for _, rm := range h.rooms {
					rm.Stop()
				}
				clear(h.rooms)
				h.cancel()
			}
		}
	}
}

// onRoomEmpty runs on the emptied room's goroutine; it only enqueues the
// removal so the registry mutation stays on the hub loop.
func (h *Hub) onRoomEmpty(id string) {
	select {
	case h.inbox <- RemoveRoom{ID: id}:
	case <-h.ctx.Done():
	}
}
