package bookstore

import "sync"

type subscriber struct {
	ch   chan Snapshot
	once sync.Once
}

// offer replaces any undelivered snapshot with snap. Callers hold Store.mu,
// which keeps the drain and send atomic with respect to other publishers.
func (sub *subscriber) offer(snap Snapshot) {
	select {
	case sub.ch <- snap:
		return
	default:
	}
	select {
	case <-sub.ch:
	default:
	}
	select {
	case sub.ch <- snap:
	default:
	}
}

func (sub *subscriber) close() {
	sub.once.Do(func() { close(sub.ch) })
}

// Subscribe returns a channel that receives the current snapshot right away
// and every later change. A slow reader only sees the latest snapshot. The
// returned func ends the subscription and closes the channel; it is safe to
// call more than once.
func (s *Store) Subscribe() (<-chan Snapshot, func()) {
	sub := &subscriber{ch: make(chan Snapshot, 1)}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		sub.close()
		return sub.ch, func() {}
	}
	subID := s.nextSub
	s.nextSub++
	s.subs[subID] = sub
	sub.offer(s.copyStateLocked())
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		delete(s.subs, subID)
		s.mu.Unlock()
		sub.close()
	}
	return sub.ch, cancel
}

func (s *Store) publishLocked() {
	for _, sub := range s.subs {
		sub.offer(s.copyStateLocked())
	}
}
