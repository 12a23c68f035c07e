package presence

import (
	"sync"
	"sync/atomic"

	"github.com/go-monolith/mono/pkg/types"
)

// FrameWriter writes one JSON frame to a connection. *websocket.Conn
// satisfies it.
type FrameWriter interface {
	WriteJSON(v any) error
	Close() error
}

// QueuedSender is a Sender with a bounded outbound queue drained by a single
// writer goroutine, so events reach one connection in the order they were
// accepted. A full queue drops the event.
type QueuedSender struct {
	w       FrameWriter
	queue   chan Envelope
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
	dropped atomic.Int64
	logger  types.Logger
}

var _ Sender = (*QueuedSender)(nil)

// NewQueuedSender starts the writer goroutine for w.
func NewQueuedSender(w FrameWriter, size int, logger types.Logger) *QueuedSender {
	if size <= 0 {
		size = 1
	}
	s := &QueuedSender{
		w:       w,
		queue:   make(chan Envelope, size),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		logger:  logger,
	}
	go s.run()
	return s
}

func (s *QueuedSender) run() {
	defer close(s.stopped)
	for {
		select {
		case <-s.done:
			return
		case env := <-s.queue:
			// select picks at random when both are ready.
			select {
			case <-s.done:
				return
			default:
			}
			if err := s.w.WriteJSON(env); err != nil {
				s.logger.Debug("Write failed, closing connection", "event", env.Event, "error", err)
				_ = s.stop()
				return
			}
		}
	}
}

// Send enqueues env without blocking.
func (s *QueuedSender) Send(env Envelope) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.queue <- env:
		return true
	default:
		if n := s.dropped.Add(1); n == 1 || n%100 == 0 {
			s.logger.Warn("Outbound queue full, dropping event", "event", env.Event, "dropped", n)
		}
		return false
	}
}

// Dropped returns how many events were discarded because the queue was full.
func (s *QueuedSender) Dropped() int64 {
	return s.dropped.Load()
}

// Close stops the writer, closes the underlying connection and waits for the
// writer goroutine to exit. No frame is written once Close has returned, so
// the connection may be released right after. Safe to call more than once.
func (s *QueuedSender) Close() error {
	err := s.stop()
	<-s.stopped
	return err
}

func (s *QueuedSender) stop() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.w.Close()
	})
	return err
}

// Wait blocks until the writer goroutine has exited.
func (s *QueuedSender) Wait() {
	<-s.stopped
}
