package broadcast

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
)

const (
	writeDeadline = 5 * time.Second
	pingInterval  = 30 * time.Second
)

// Conn is the part of *websocket.Conn the hub writes through.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// subscriber owns one connection and the goroutine that writes to it.
// Only run writes to conn.
type subscriber struct {
	conn   Conn
	clock  clockwork.Clock
	send   chan []byte
	done   chan struct{}
	ready  atomic.Bool
	stopMu sync.Once
	wg     sync.WaitGroup
}

func newSubscriber(conn Conn, clock clockwork.Clock, bufferSize int, greeting [][]byte) *subscriber {
	s := &subscriber{
		conn:  conn,
		clock: clock,
		send:  make(chan []byte, bufferSize+len(greeting)),
		done:  make(chan struct{}),
	}
	for _, frame := range greeting {
		s.send <- frame
	}
	s.ready.Store(true)
	s.wg.Add(1)
	go s.run()
	return s
}

func (s *subscriber) run() {
	defer s.wg.Done()
	defer s.ready.Store(false)

	ticker := s.clock.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg := <-s.send:
			_ = s.conn.SetWriteDeadline(s.clock.Now().Add(writeDeadline))
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.Chan():
			_ = s.conn.SetWriteDeadline(s.clock.Now().Add(writeDeadline))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-s.done:
			return
		}
	}
}

// offer hands msg to the writer without blocking. It reports false when the
// writer has failed or its buffer is full.
func (s *subscriber) offer(msg []byte) bool {
	if !s.ready.Load() {
		return false
	}
	select {
	case s.send <- msg:
		return true
	default:
		return false
	}
}

// stop terminates the writer and closes the connection. Safe to call twice.
func (s *subscriber) stop() {
	s.stopMu.Do(func() {
		close(s.done)
		_ = s.conn.Close()
		s.wg.Wait()
	})
}
