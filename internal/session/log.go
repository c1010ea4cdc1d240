package session

import (
	"sync"
	"time"

	"github.com/danmuck/ccview/internal/protocol/message"
)

type Direction string

const (
	DirectionReceived Direction = "received"
	DirectionSent     Direction = "sent"
)

// Entry is one logged message.
type Entry struct {
	Seq       uint64
	Direction Direction
	LoggedAt  time.Time
	Message   *message.Message
}

// MessageLog stores received and sent messages in arrival order. When a limit
// is set the oldest entries are evicted first.
type MessageLog struct {
	mu    sync.RWMutex
	limit int
	next  uint64
	items []Entry
}

func NewMessageLog(limit int) *MessageLog {
	return &MessageLog{limit: limit, next: 1}
}

func (l *MessageLog) Append(dir Direction, m *message.Message) Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	e := Entry{Seq: l.next, Direction: dir, LoggedAt: time.Now(), Message: m}
	l.next++
	l.items = append(l.items, e)
	if l.limit > 0 && len(l.items) > l.limit {
		drop := len(l.items) - l.limit
		l.items = append(l.items[:0:0], l.items[drop:]...)
	}
	return e
}

func (l *MessageLog) Get(seq uint64) (Entry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, e := range l.items {
		if e.Seq == seq {
			return e, true
		}
	}
	return Entry{}, false
}

// List returns a copy of the log, oldest first.
func (l *MessageLog) List() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Entry, len(l.items))
	copy(out, l.items)
	return out
}

func (l *MessageLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

func (l *MessageLog) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = nil
}
