package filters

import (
	"net/url"
	"sync"
)

// Navigator replaces the current location's query string
type Navigator interface {
	Replace(q url.Values)
}

// NavigatorFunc adapts a function to Navigator
type NavigatorFunc func(q url.Values)

func (f NavigatorFunc) Replace(q url.Values) { f(q) }

// Sync keeps a filter and its URL in step. The URL query is the only stored
// state; State is recomputed from it on every read. All local changes go
// through Update, which stores the new query and navigates under one lock.
//
// Subscribers run outside the lock, one delivery at a time, and always
// receive the state stored at delivery time. Changes made while a delivery
// is running may be coalesced, but the last state delivered is the final one.
type Sync struct {
	mu    sync.Mutex
	query url.Values
	nav   Navigator
	subs  map[int]func(State)
	next  int

	version    uint64
	delivered  uint64
	delivering bool
}

// NewSync starts from the query currently in the URL
func NewSync(initial url.Values, nav Navigator) *Sync {
	return &Sync{
		query: FromQuery(initial).Query(),
		nav:   nav,
		subs:  make(map[int]func(State)),
	}
}

// State returns the current filter
func (s *Sync) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return FromQuery(s.query)
}

// Query returns a copy of the canonical URL query
func (s *Sync) Query() url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneValues(s.query)
}

// Update applies fn to the current filter. If any search field changed the
// page goes back to 1. The resulting query is stored and pushed to the
// navigator, and subscribers see the new state. A no-op change does nothing.
func (s *Sync) Update(fn func(*State)) State {
	s.mu.Lock()
	cur := FromQuery(s.query)
	next := cur
	next.Industry = append([]string(nil), cur.Industry...)
	next.MarketType = append([]string(nil), cur.MarketType...)
	fn(&next)
	next = next.normalize()

	if !next.searchEqual(cur) {
		next.Page = 1
	}
	if next.Equal(cur) {
		s.mu.Unlock()
		return cur
	}

	s.query = next.Query()
	if s.nav != nil {
		s.nav.Replace(cloneValues(s.query))
	}
	s.version++
	s.mu.Unlock()

	s.deliver()
	return next
}

// Navigate adopts a query that changed outside of Update, such as a back
// navigation. The query is taken as is, without the page reset, and
// subscribers are only told when the derived filter actually changed.
func (s *Sync) Navigate(q url.Values) State {
	next := FromQuery(q)

	s.mu.Lock()
	cur := FromQuery(s.query)
	if next.Equal(cur) {
		s.mu.Unlock()
		return cur
	}
	s.query = next.Query()
	s.version++
	s.mu.Unlock()

	s.deliver()
	return next
}

// Reset clears every filter, keeping the page size
func (s *Sync) Reset() State {
	return s.Update(func(st *State) {
		size := st.Size
		*st = Default()
		st.Size = size
	})
}

// OnChange registers fn to run after every change. The returned function
// removes it.
func (s *Sync) OnChange(fn func(State)) (cancel func()) {
	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// deliver notifies subscribers until they have seen the latest version. If
// another goroutine is already delivering, it picks up this change instead,
// which also makes Update safe to call from a subscriber.
func (s *Sync) deliver() {
	s.mu.Lock()
	if s.delivering {
		s.mu.Unlock()
		return
	}
	s.delivering = true
	for s.delivered < s.version {
		v := s.version
		st := FromQuery(s.query)
		subs := s.subscribers()
		s.mu.Unlock()

		for _, fn := range subs {
			fn(st)
		}

		s.mu.Lock()
		s.delivered = v
	}
	s.delivering = false
	s.mu.Unlock()
}

// subscribers must be called with mu held
func (s *Sync) subscribers() []func(State) {
	out := make([]func(State), 0, len(s.subs))
	for i := 0; i < s.next; i++ {
		if fn, ok := s.subs[i]; ok {
			out = append(out, fn)
		}
	}
	return out
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vs := range v {
		out[k] = append([]string(nil), vs...)
	}
	return out
}
