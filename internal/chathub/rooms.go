package chathub

import (
	"errors"

	"chatline/backend/internal/models"
)

// ErrRoomIDRequired is returned by Join/Leave when no room was named. Its
// text is the wire-level ack error string.
var ErrRoomIDRequired = errors.New("Room ID required")

// RoomRouter owns the many-to-many mapping between chat IDs (rooms) and
// connection handles. It is not safe for concurrent use: only the hub
// goroutine touches it, and every mutation completes before the hub yields.
type RoomRouter struct {
	// rooms maps chatID -> handle -> client.
	rooms map[string]map[string]Client
}

func NewRoomRouter() *RoomRouter {
	return &RoomRouter{rooms: make(map[string]map[string]Client)}
}

// Join adds the client to the room's member set. Joining a room twice is a
// no-op, not an error.
func (r *RoomRouter) Join(c Client, chatID string) error {
	if chatID == "" {
		return ErrRoomIDRequired
	}
	members, ok := r.rooms[chatID]
	if !ok {
		members = make(map[string]Client)
		r.rooms[chatID] = members
	}
	members[c.GetHandle()] = c
	return nil
}

// Leave removes the client from the room's member set if present.
// Idempotent, same as Join.
func (r *RoomRouter) Leave(c Client, chatID string) error {
	if chatID == "" {
		return ErrRoomIDRequired
	}
	if members, ok := r.rooms[chatID]; ok {
		delete(members, c.GetHandle())
		if len(members) == 0 {
			delete(r.rooms, chatID)
		}
	}
	return nil
}

// DropAll removes the client from every room it belongs to. Used on
// disconnect, where no ack is owed.
func (r *RoomRouter) DropAll(c Client) {
	handle := c.GetHandle()
	for chatID, members := range r.rooms {
		delete(members, handle)
		if len(members) == 0 {
			delete(r.rooms, chatID)
		}
	}
}

// Contains reports whether the client is currently a member of the room.
func (r *RoomRouter) Contains(c Client, chatID string) bool {
	members, ok := r.rooms[chatID]
	if !ok {
		return false
	}
	_, ok = members[c.GetHandle()]
	return ok
}

// MemberCount returns the number of handles currently in the room.
func (r *RoomRouter) MemberCount(chatID string) int {
	return len(r.rooms[chatID])
}

// Broadcast writes the frame to every handle currently in the room,
// including the originator; deduplication of the echo is the client's job.
// A room with zero members is a no-op. Members whose send buffer is full
// are skipped and returned so the hub can drop them; their failure never
// affects delivery to the rest of the room.
func (r *RoomRouter) Broadcast(chatID string, ev models.ServerEvent) []Client {
	var stalled []Client
	for _, c := range r.rooms[chatID] {
		select {
		case c.GetSendChannel() <- ev:
		default:
			stalled = append(stalled, c)
		}
	}
	return stalled
}
