// broadcast/broadcast.go
package broadcast

import (
	"errors"
	"sync"

	"github.com/wfunc/nightfall/logger"
	"github.com/wfunc/nightfall/network"
	"github.com/wfunc/nightfall/session"
)

var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrSessionNotFound = errors.New("session not found")
)

// 广播接口
type Broadcaster interface {
	BroadcastToRoom(roomCode, msgType string, payload interface{}) error
	SendToSession(sessionID, msgType string, payload interface{}) error
	BroadcastToAll(msgType string, payload interface{}) error
}

// ChannelBroadcaster groups sessions into named channels, one per room code.
type ChannelBroadcaster struct {
	sessionManager *session.Manager
	channels       map[string]map[string]struct{} // channel -> session ids
	mutex          sync.RWMutex
}

func NewChannelBroadcaster(sessionManager *session.Manager) *ChannelBroadcaster {
	return &ChannelBroadcaster{
		sessionManager: sessionManager,
		channels:       make(map[string]map[string]struct{}),
	}
}

// Join adds a session to a channel, creating the channel on first use.
func (b *ChannelBroadcaster) Join(channel, sessionID string) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	members, ok := b.channels[channel]
	if !ok {
		members = make(map[string]struct{})
		b.channels[channel] = members
	}
	members[sessionID] = struct{}{}
}

// Leave removes a session from a channel and drops the channel once empty.
func (b *ChannelBroadcaster) Leave(channel, sessionID string) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	members, ok := b.channels[channel]
	if !ok {
		return
	}
	delete(members, sessionID)
	if len(members) == 0 {
		delete(b.channels, channel)
	}
}

// Members returns a snapshot of the session ids in a channel.
func (b *ChannelBroadcaster) Members(channel string) []string {
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	ids := make([]string, 0, len(b.channels[channel]))
	for id := range b.channels[channel] {
		ids = append(ids, id)
	}
	return ids
}

func (b *ChannelBroadcaster) BroadcastToRoom(roomCode, msgType string, payload interface{}) error {
	ids := b.Members(roomCode)
	if len(ids) == 0 {
		return ErrRoomNotFound
	}

	data, err := network.Encode(msgType, payload)
	if err != nil {
		return err
	}
	for _, id := range ids {
		b.deliver(id, data)
	}
	return nil
}

func (b *ChannelBroadcaster) SendToSession(sessionID, msgType string, payload interface{}) error {
	data, err := network.Encode(msgType, payload)
	if err != nil {
		return err
	}
	if !b.deliver(sessionID, data) {
		return ErrSessionNotFound
	}
	return nil
}

func (b *ChannelBroadcaster) BroadcastToAll(msgType string, payload interface{}) error {
	data, err := network.Encode(msgType, payload)
	if err != nil {
		return err
	}
	for _, s := range b.sessionManager.All() {
		b.deliver(s.ID, data)
	}
	return nil
}

// deliver reports false when the session is gone. Send failures are logged
// and skipped; the read loop notices dead connections on its own.
func (b *ChannelBroadcaster) deliver(sessionID string, data []byte) bool {
	s, ok := b.sessionManager.Get(sessionID)
	if !ok {
		return false
	}
	if err := s.Send(data); err != nil {
		logger.Log.Warnf("send to session %s failed: %v", sessionID, err)
	}
	return true
}
