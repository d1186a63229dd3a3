package room

import (
	"time"
)

// Broadcaster is the slice of the transport a room needs: fan-out to the
// room's channel and private delivery to one connection.
type Broadcaster interface {
	BroadcastToRoom(roomCode, msgType string, payload interface{}) error
	SendToSession(sessionID, msgType string, payload interface{}) error
}

// Scheduler arms one-shot phase timers. timer.TimerManager implements it.
type Scheduler interface {
	AddTimer(delay time.Duration, callback func()) int64
	RemoveTimer(timerId int64)
}
