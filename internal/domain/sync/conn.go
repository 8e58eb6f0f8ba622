package sync

import "sync/atomic"

// Conn - транспортное соединение устройства.
type Conn interface {
	ID() string
	// Send ставит кадр в очередь отправки без блокировки. false - очередь
	// переполнена или соединение закрыто.
	Send(frame []byte) bool
	Close() error
}

type State int32

const (
	StateConnecting State = iota
	StateAuthenticated
	StateRegistered
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateAuthenticated:
		return "authenticated"
	case StateRegistered:
		return "registered"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Session - соединение, вошедшее в комнату пользователя.
type Session struct {
	conn   Conn
	userID int
	addr   string
	state  atomic.Int32
	// устройство, под которым зарегистрировано соединение
	device atomic.Pointer[string]
}

func newSession(conn Conn, userID int, addr string) *Session {
	s := &Session{conn: conn, userID: userID, addr: addr}
	s.state.Store(int32(StateConnecting))
	return s
}

func (s *Session) ID() string         { return s.conn.ID() }
func (s *Session) UserID() int        { return s.userID }
func (s *Session) RemoteAddr() string { return s.addr }
func (s *Session) State() State       { return State(s.state.Load()) }

func (s *Session) receives() bool {
	st := s.State()
	return st == StateAuthenticated || st == StateRegistered
}

// advance переводит сессию в новое состояние, если она еще не закрыта.
func (s *Session) advance(to State) bool {
	for {
		cur := s.state.Load()
		if State(cur) == StateClosed {
			return false
		}
		if s.state.CompareAndSwap(cur, int32(to)) {
			return true
		}
	}
}

// DeviceID возвращает устройство соединения или "", если регистрации не было.
func (s *Session) DeviceID() string {
	if id := s.device.Load(); id != nil {
		return *id
	}
	return ""
}

// bindDevice закрепляет за соединением устройство. Повторная привязка того же
// устройства разрешена, другого - нет. fresh сообщает, что привязка новая.
func (s *Session) bindDevice(deviceID string) (ok, fresh bool) {
	if s.device.CompareAndSwap(nil, &deviceID) {
		return true, true
	}
	cur := s.device.Load()
	return cur != nil && *cur == deviceID, false
}

func (s *Session) unbindDevice() {
	s.device.Store(nil)
}

func (s *Session) close() bool {
	return State(s.state.Swap(int32(StateClosed))) != StateClosed
}
