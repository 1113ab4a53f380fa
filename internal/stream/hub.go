package stream

import (
	"sync"

	"github.com/compclass/platform/internal/domain"
)

// Event is one envelope in a session's log, tagged with its position.
type Event struct {
	Seq       uint64          `json:"seq"`
	SessionID int64           `json:"session_id"`
	Envelope  domain.Envelope `json:"envelope"`
}

// Hub keeps one append-only envelope log per session and fans new
// entries out to live subscribers. Append is the only mutation; logs
// are never truncated during a session's life. New subscribers start
// at the current tail.
type Hub struct {
	mu       sync.RWMutex
	sessions map[int64]*sessionLog
}

type sessionLog struct {
	mu      sync.Mutex
	nextSeq uint64
	events  []Event
	subs    map[chan Event]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{sessions: make(map[int64]*sessionLog)}
}

func (h *Hub) session(sessionID int64) *sessionLog {
	h.mu.Lock()
	defer h.mu.Unlock()
	l, ok := h.sessions[sessionID]
	if !ok {
		l = &sessionLog{subs: make(map[chan Event]struct{})}
		h.sessions[sessionID] = l
	}
	return l
}

// Append adds envelopes to the session's log in order and delivers
// them to every current subscriber. The per-session lock keeps the
// sequence strictly ordered for all readers.
func (h *Hub) Append(sessionID int64, envelopes ...domain.Envelope) {
	l := h.session(sessionID)

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, env := range envelopes {
		l.nextSeq++
		ev := Event{Seq: l.nextSeq, SessionID: sessionID, Envelope: env}
		l.events = append(l.events, ev)
		for ch := range l.subs {
			select {
			case ch <- ev:
			default:
				// Drop if subscriber is slow; the sequence stays ordered.
			}
		}
	}
}

// Subscribe returns a channel of future events for the session and a
// cancel function. Cancelling closes the channel; it has no effect on
// the log or on in-flight rule executions.
func (h *Hub) Subscribe(sessionID int64) (<-chan Event, func()) {
	l := h.session(sessionID)

	ch := make(chan Event, 16)
	l.mu.Lock()
	l.subs[ch] = struct{}{}
	l.mu.Unlock()

	cancel := func() {
		l.mu.Lock()
		if _, ok := l.subs[ch]; ok {
			delete(l.subs, ch)
			close(ch)
		}
		l.mu.Unlock()
	}
	return ch, cancel
}

// History returns a snapshot of the session's full log in emission
// order, for result-table and admin views that inspect arbitrary
// message kinds.
func (h *Hub) History(sessionID int64) []Event {
	l := h.session(sessionID)

	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// subscriberCount returns the number of live subscribers for a session.
func (h *Hub) subscriberCount(sessionID int64) int {
	l := h.session(sessionID)

	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.subs)
}
