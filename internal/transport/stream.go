// internal/transport/stream.go
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tamzrod/harp-analoginput/internal/harp"
)

var (
	// ErrTimeout is returned when no matching reply arrives in time.
	ErrTimeout = errors.New("transport: timed out waiting for reply")

	// ErrClosed is returned once the stream is closed or its reader has stopped.
	ErrClosed = errors.New("transport: stream closed")
)

const (
	DefaultTimeout = 500 * time.Millisecond

	// frames received while nobody waits for them
	backlog = 64
)

// Stream runs Harp request/reply exchanges over a byte stream
// (serial port, pipe, socket).
//
// One command is outstanding at a time. Frames that do not answer the
// pending command (events, stale replies) are skipped.
type Stream struct {
	rw      io.ReadWriteCloser
	log     *zap.Logger
	timeout time.Duration

	mu sync.Mutex // serialises commands

	frames    chan harp.Message
	done      chan struct{}
	readErr   error // valid after done is closed
	closeOnce sync.Once
}

type Option func(*Stream)

func WithLogger(l *zap.Logger) Option {
	return func(s *Stream) {
		if l != nil {
			s.log = l
		}
	}
}

// WithTimeout bounds the wait for each reply. Zero keeps the default.
func WithTimeout(d time.Duration) Option {
	return func(s *Stream) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// NewStream takes ownership of rw and starts its reader.
func NewStream(rw io.ReadWriteCloser, opts ...Option) *Stream {
	s := &Stream{
		rw:      rw,
		log:     zap.NewNop(),
		timeout: DefaultTimeout,
		frames:  make(chan harp.Message, backlog),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	go s.readLoop()
	return s
}

func (s *Stream) readLoop() {
	defer close(s.done)

	var dropped uint64
	sc := harp.NewScanner(patientReader{r: s.rw})
	for sc.Scan() {
		msg, err := harp.Parse(sc.Bytes())
		if err != nil {
			s.log.Warn("discarding frame", zap.Error(err))
			continue
		}

		if old, full := s.enqueue(msg); full {
			dropped++
			if dropped == 1 || dropped%backlog == 0 {
				s.log.Debug("reply backlog full, dropping oldest frame",
					zap.Stringer("type", old.Type),
					zap.Uint8("address", old.Address),
					zap.Uint64("dropped", dropped),
				)
			}
		}
	}

	s.readErr = sc.Err()
	if s.readErr == nil {
		s.readErr = io.EOF
	}
}

// enqueue queues msg, evicting the oldest queued frame when the backlog is
// full. The evicted frame is returned with full set.
// Only the reader goroutine pushes, so one eviction always makes room.
func (s *Stream) enqueue(msg harp.Message) (evicted harp.Message, full bool) {
	for {
		select {
		case s.frames <- msg:
			return evicted, full
		default:
		}
		select {
		case evicted = <-s.frames:
			full = true
		default:
		}
	}
}

// SendCommand writes req and waits for the reply of the same type and address.
//
// If ctx is already done nothing is written. The frame is written with a
// single Write call, so the device sees either the whole command or nothing.
func (s *Stream) SendCommand(ctx context.Context, req harp.Message) (harp.Message, error) {
	frame, err := req.Encode()
	if err != nil {
		return harp.Message{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return harp.Message{}, err
	}
	select {
	case <-s.done:
		return harp.Message{}, s.closedErr()
	default:
	}

	s.drain()

	if _, err := s.rw.Write(frame); err != nil {
		return harp.Message{}, fmt.Errorf("transport: write %s of register %d: %w", req.Type, req.Address, err)
	}

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return harp.Message{}, ctx.Err()

		case <-timer.C:
			return harp.Message{}, fmt.Errorf("%w: %s of register %d after %s",
				ErrTimeout, req.Type, req.Address, s.timeout)

		case <-s.done:
			return harp.Message{}, s.closedErr()

		case msg := <-s.frames:
			if msg.Type == req.Type && msg.Address == req.Address {
				return msg, nil
			}
			s.log.Debug("skipping unsolicited message",
				zap.Stringer("type", msg.Type),
				zap.Uint8("address", msg.Address),
			)
		}
	}
}

// drain drops frames left over from earlier exchanges.
func (s *Stream) drain() {
	for {
		select {
		case msg := <-s.frames:
			s.log.Debug("dropping stale message",
				zap.Stringer("type", msg.Type),
				zap.Uint8("address", msg.Address),
			)
		default:
			return
		}
	}
}

func (s *Stream) closedErr() error {
	if s.readErr == nil || errors.Is(s.readErr, io.EOF) {
		return ErrClosed
	}
	return fmt.Errorf("%w: %v", ErrClosed, s.readErr)
}

// Close closes the underlying stream and waits for the reader to stop.
func (s *Stream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.rw.Close()
		<-s.done
	})
	return err
}
