package stream

import "sync"

// Latest is a single-slot mailbox holding the most recent frame. Writers
// always replace the slot and never block; an unread frame is simply
// overwritten. Readers either block for the next frame or peek at the
// current one.
type Latest struct {
	mu     sync.RWMutex
	cond   *sync.Cond
	frame  *Frame
	seq    uint64
	closed bool
}

// NewLatest returns an empty open mailbox.
func NewLatest() *Latest {
	l := &Latest{}
	l.cond = sync.NewCond(&l.mu)
	return l
}

// Set replaces the held frame and wakes blocked receivers. Set on a closed
// mailbox is a no-op.
func (l *Latest) Set(f Frame) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.frame = &f
	l.seq++
	l.cond.Broadcast()
}

// Receive blocks until a frame is available or the mailbox closes, then
// consumes the slot. The bool is false once the mailbox is closed and empty.
func (l *Latest) Receive() (Frame, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for l.frame == nil && !l.closed {
		l.cond.Wait()
	}
	if l.frame == nil {
		return Frame{}, false
	}
	f := *l.frame
	l.frame = nil
	return f, true
}

// Peek returns the current frame without consuming it. The bool is false
// when the slot is empty.
func (l *Latest) Peek() (Frame, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.frame == nil {
		return Frame{}, false
	}
	return *l.frame, true
}

// Seq returns the number of Set calls accepted so far.
func (l *Latest) Seq() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.seq
}

// Close marks the mailbox closed and wakes blocked receivers. A frame still
// in the slot remains receivable once.
func (l *Latest) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	l.cond.Broadcast()
}
