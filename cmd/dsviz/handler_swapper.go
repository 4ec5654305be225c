package main

import (
	"net/http"
	"sync/atomic"
)

// handlerSwapper serves whichever API mux was installed last. SIGHUP reload
// installs a new mux when the metrics route is toggled; requests already in
// flight finish on the old one.
type handlerSwapper struct {
	current atomic.Pointer[http.Handler]
	swaps   atomic.Int64
}

func newHandlerSwapper(h http.Handler) *handlerSwapper {
	s := &handlerSwapper{}
	s.current.Store(&h)
	return s
}

func (s *handlerSwapper) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	(*s.current.Load()).ServeHTTP(w, r)
}

// Swap installs h for subsequent requests.
func (s *handlerSwapper) Swap(h http.Handler) {
	s.current.Store(&h)
	s.swaps.Add(1)
}

// Swaps reports how many times the handler was replaced.
func (s *handlerSwapper) Swaps() int64 {
	return s.swaps.Load()
}
