package sync

import (
	gosync "sync"
	"sync/atomic"
)

type room struct {
	mu      gosync.Mutex
	members map[string]*Session
	closed  bool
}

// rooms - реестр комнат по userID. Поиск комнаты без блокировок, изменения
// состава блокируют только затронутую комнату.
type rooms struct {
	m     gosync.Map // int -> *room
	total atomic.Int64
}

func (r *rooms) join(s *Session) {
	for {
		v, _ := r.m.LoadOrStore(s.userID, &room{members: make(map[string]*Session)})
		rm := v.(*room)

		rm.mu.Lock()
		if rm.closed {
			// комнату удалили между LoadOrStore и Lock
			rm.mu.Unlock()
			continue
		}
		if _, ok := rm.members[s.ID()]; !ok {
			r.total.Add(1)
		}
		rm.members[s.ID()] = s
		rm.mu.Unlock()
		return
	}
}

func (r *rooms) leave(userID int, connID string) bool {
	v, ok := r.m.Load(userID)
	if !ok {
		return false
	}
	rm := v.(*room)

	rm.mu.Lock()
	defer rm.mu.Unlock()

	if _, ok := rm.members[connID]; !ok {
		return false
	}
	delete(rm.members, connID)
	r.total.Add(-1)
	if len(rm.members) == 0 {
		rm.closed = true
		r.m.CompareAndDelete(userID, rm)
	}
	return true
}

func (r *rooms) members(userID int) []*Session {
	v, ok := r.m.Load(userID)
	if !ok {
		return nil
	}
	rm := v.(*room)

	rm.mu.Lock()
	defer rm.mu.Unlock()

	out := make([]*Session, 0, len(rm.members))
	for _, s := range rm.members {
		out = append(out, s)
	}
	return out
}

func (r *rooms) contains(userID int, connID string) bool {
	v, ok := r.m.Load(userID)
	if !ok {
		return false
	}
	rm := v.(*room)

	rm.mu.Lock()
	defer rm.mu.Unlock()
	_, ok = rm.members[connID]
	return ok
}
