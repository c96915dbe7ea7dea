// Package busy tracks whether any API request is in flight.
package busy

import "sync"

// Signal is a reference-counted busy flag. It is busy while at least one
// request is outstanding and idle otherwise, regardless of how requests
// overlap.
type Signal struct {
	// emit serialises notifications so subscribers see transitions in order.
	emit sync.Mutex

	mu       sync.Mutex
	inFlight int
	next     int
	subs     map[int]func(bool)
}

// New creates an idle signal
func New() *Signal {
	return &Signal{subs: make(map[int]func(bool))}
}

// Begin records the start of a request
func (s *Signal) Begin() {
	s.emit.Lock()
	defer s.emit.Unlock()

	s.mu.Lock()
	s.inFlight++
	becameBusy := s.inFlight == 1
	fns := s.snapshotLocked(becameBusy)
	s.mu.Unlock()

	for _, fn := range fns {
		fn(true)
	}
}

// End records a settled request. Unmatched calls are ignored.
func (s *Signal) End() {
	s.emit.Lock()
	defer s.emit.Unlock()

	s.mu.Lock()
	if s.inFlight == 0 {
		s.mu.Unlock()
		return
	}
	s.inFlight--
	becameIdle := s.inFlight == 0
	fns := s.snapshotLocked(becameIdle)
	s.mu.Unlock()

	for _, fn := range fns {
		fn(false)
	}
}

// SetBusy maps the boolean setter onto Begin/End
func (s *Signal) SetBusy(busy bool) {
	if busy {
		s.Begin()
		return
	}
	s.End()
}

// Busy reports whether any request is outstanding
func (s *Signal) Busy() bool {
	return s.InFlight() > 0
}

// InFlight returns the number of outstanding requests
func (s *Signal) InFlight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight
}

// Subscribe registers fn for idle/busy transitions. fn is called right away
// with the current state so late subscribers never miss the final idle.
func (s *Signal) Subscribe(fn func(busy bool)) (unsubscribe func()) {
	s.emit.Lock()
	defer s.emit.Unlock()

	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = fn
	current := s.inFlight > 0
	s.mu.Unlock()

	fn(current)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

func (s *Signal) snapshotLocked(transition bool) []func(bool) {
	if !transition || len(s.subs) == 0 {
		return nil
	}
	fns := make([]func(bool), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	return fns
}
