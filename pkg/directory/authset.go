package directory

import "sync"

// authenticatedSet is the concurrently-readable membership set of
// session ids currently logged on. It is backed by sync.Map rather
// than a mutex-guarded map so admin/monitoring goroutines can test
// membership without contending with the owner thread's mutations.
type authenticatedSet struct {
	m sync.Map // session id (int64) -> struct{}
}

// add inserts id and reports whether it was newly added (false means
// id was already a member — the caller's duplicate-logon case).
func (s *authenticatedSet) add(id int64) bool {
	_, loaded := s.m.LoadOrStore(id, struct{}{})
	return !loaded
}

func (s *authenticatedSet) remove(id int64) {
	s.m.Delete(id)
}

func (s *authenticatedSet) contains(id int64) bool {
	_, ok := s.m.Load(id)
	return ok
}

func (s *authenticatedSet) len() int {
	n := 0
	s.m.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func (s *authenticatedSet) clear() {
	s.m.Range(func(k, _ any) bool {
		s.m.Delete(k)
		return true
	})
}
