package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"treeval/codec"
)

type SocketOption func(s *socketConfig)

type socketConfig struct {
	handshakeTimeout time.Duration
}

func WithHandshakeTimeout(timeout time.Duration) SocketOption {
	return func(c *socketConfig) {
		if timeout > 0 {
			c.handshakeTimeout = timeout
		}
	}
}

// Socket is a Transport to a remote accelerator bridge over a websocket.
// Each Send blocks until the bridge acknowledges the word.
type Socket struct {
	conn    *websocket.Conn
	acks    chan struct{}
	results chan codec.Word
	pending atomic.Bool

	mu   sync.Mutex
	err  error
	done chan struct{}
}

func Dial(ctx context.Context, url string, options ...SocketOption) (*Socket, error) {
	c := &socketConfig{handshakeTimeout: 5 * time.Second}
	for _, option := range options {
		option(c)
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: c.handshakeTimeout,
	}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	s := &Socket{
		conn:    conn,
		acks:    make(chan struct{}, 1),
		results: make(chan codec.Word, 1),
		done:    make(chan struct{}),
	}
	go s.readLoop()
	return s, nil
}

func (s *Socket) Send(ctx context.Context, w codec.Word) error {
	if err := s.failure(); err != nil {
		return err
	}

	s.pending.Store(true)
	if err := s.conn.WriteMessage(websocket.BinaryMessage, wordFrame(frameCommand, w)); err != nil {
		s.fail(fmt.Errorf("write error: %w", err))
		return s.failure()
	}

	select {
	case <-s.acks:
		s.pending.Store(false)
		return nil
	case <-s.done:
		select {
		case <-s.acks: // Word was consumed before the fault
			s.pending.Store(false)
			return nil
		default:
			return s.failure()
		}
	case <-ctx.Done():
		// A late ack cannot be told apart from the next word's.
		s.fail(fmt.Errorf("word %s abandoned before its ack: %w", w, ctx.Err()))
		return ctx.Err()
	}
}

func (s *Socket) Receive(ctx context.Context) (codec.Word, error) {
	select {
	case w := <-s.results:
		return w, nil
	default:
	}

	select {
	case w := <-s.results:
		return w, nil
	case <-s.done:
		return 0, s.failure()
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func (s *Socket) Acked() bool {
	return !s.pending.Load() || s.failure() != nil
}

func (s *Socket) Ready() bool {
	return len(s.results) > 0 || s.failure() != nil
}

func (s *Socket) Close() error {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	s.fail(ErrClosed)
	return s.conn.Close()
}

func (s *Socket) readLoop() {
	for {
		_, message, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.fail(ErrClosed)
			} else {
				s.fail(fmt.Errorf("read error: %w", err))
			}
			return
		}

		f, err := parseFrame(message)
		if err != nil {
			s.fail(err)
			return
		}

		switch f.kind {
		case frameAck:
			select {
			case s.acks <- struct{}{}:
			default:
				log.Warn().Msg("unexpected ack from accelerator bridge")
			}
		case frameResult:
			select {
			case s.results <- f.word:
			default:
				s.fail(fmt.Errorf("%w: result %s with a result already queued", errBadFrame, f.word))
				return
			}
		case frameError:
			s.fail(fmt.Errorf("%w: %s", ErrDeviceFault, f.message))
			return
		default:
			s.fail(fmt.Errorf("%w: unexpected type %d from bridge", errBadFrame, f.kind))
			return
		}
	}
}

func (s *Socket) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return
	}
	s.err = err
	close(s.done)
}

func (s *Socket) failure() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.err
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Accept upgrades an HTTP request into the accelerator's end of a Socket.
func Accept(w http.ResponseWriter, r *http.Request) (*ServerPort, error) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to upgrade: %w", err)
	}
	return &ServerPort{conn: conn}, nil
}

// ServerPort serves one websocket connection as a Port. Consuming a command
// acknowledges it to the client.
type ServerPort struct {
	conn   *websocket.Conn
	failed atomic.Bool
}

func (p *ServerPort) Next(ctx context.Context) (codec.Word, error) {
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if p.failed.Load() {
			return 0, ErrClosed
		}

		_, message, err := p.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				return 0, ErrClosed
			}
			return 0, fmt.Errorf("read error: %w", err)
		}

		f, err := parseFrame(message)
		if err != nil {
			return 0, err
		}
		if f.kind != frameCommand {
			log.Warn().Msgf("ignoring frame type %d from client", f.kind)
			continue
		}

		if err := p.conn.WriteMessage(websocket.BinaryMessage, ackFrame()); err != nil {
			return 0, fmt.Errorf("write error: %w", err)
		}
		return f.word, nil
	}
}

func (p *ServerPort) Reply(ctx context.Context, w codec.Word) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.conn.WriteMessage(websocket.BinaryMessage, wordFrame(frameResult, w)); err != nil {
		return fmt.Errorf("write error: %w", err)
	}
	return nil
}

func (p *ServerPort) Fail(err error) {
	if !p.failed.CompareAndSwap(false, true) {
		return
	}
	if werr := p.conn.WriteMessage(websocket.BinaryMessage, errorFrame(err)); werr != nil {
		log.Warn().Err(werr).Msg("failed to report fault to client")
	}
}

func (p *ServerPort) Close() error {
	return p.conn.Close()
}

// IsClosed reports whether err only says that the peer went away.
func IsClosed(err error) bool {
	return errors.Is(err, ErrClosed)
}
