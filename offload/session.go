package offload

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"treeval/codec"
	"treeval/meta"
	"treeval/metrics"
	"treeval/transport"
	"treeval/tree"
)

// TransportError reports a failed transport operation during an offload.
// Index and Word locate the command being sent; they are -1 and 0 for the
// result read.
type TransportError struct {
	Op    string
	Index int
	Word  codec.Word
	Err   error
}

func (e *TransportError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("transport %s of word %d (%s): %v", e.Op, e.Index, e.Word, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

type SessionOption func(s *Session)

func WithSerializer(serializer *Serializer) SessionOption {
	return func(s *Session) {
		if serializer != nil {
			s.serializer = serializer
		}
	}
}

func WithCollector(collector metrics.Collector) SessionOption {
	return func(s *Session) {
		if collector != nil {
			s.collector = collector
		}
	}
}

// WithPollInterval sets how often the session re-checks the handshake.
func WithPollInterval(interval time.Duration) SessionOption {
	return func(s *Session) {
		if interval > 0 {
			s.pollInterval = interval
		}
	}
}

// Session runs tree computations on an accelerator behind a transport. A
// session sends one word at a time and does not retry failed operations.
type Session struct {
	transport    transport.Transport
	serializer   *Serializer
	collector    metrics.Collector
	pollInterval time.Duration
}

func NewSession(t transport.Transport, options ...SessionOption) *Session {
	s := &Session{ // Default values
		transport:    t,
		serializer:   NewSerializer(),
		collector:    metrics.NewDummyCollector(),
		pollInterval: meta.POLL_INTERVAL,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// Offload sends t to the accelerator, starts the computation and decodes the
// result word.
func (s *Session) Offload(ctx context.Context, t *tree.Tree) (codec.Result, error) {
	words, err := s.serializer.Serialize(t)
	if err != nil {
		return codec.Result{}, err
	}

	start := time.Now()
	log.Debug().Msgf("offloading %d nodes as %d command words", t.Len(), len(words))

	for i, w := range words {
		if err := s.transport.Send(ctx, w); err != nil {
			return codec.Result{}, &TransportError{Op: "send", Index: i, Word: w, Err: err}
		}
		if err := s.await(ctx, s.transport.Acked); err != nil {
			return codec.Result{}, &TransportError{Op: "ack", Index: i, Word: w, Err: err}
		}
	}

	if err := s.await(ctx, s.transport.Ready); err != nil {
		return codec.Result{}, &TransportError{Op: "ready", Index: -1, Err: err}
	}
	w, err := s.transport.Receive(ctx)
	if err != nil {
		return codec.Result{}, &TransportError{Op: "receive", Index: -1, Err: err}
	}

	result := codec.DecodeResult(w)
	duration := time.Since(start)
	s.collector.Offloaded(duration)
	log.Debug().Msgf("accelerator chose action %d with reward %d in %s", result.Action, result.Reward, duration)
	return result, nil
}

// await polls a handshake signal until it is raised or ctx is done.
func (s *Session) await(ctx context.Context, signal func() bool) error {
	if signal() {
		return nil
	}
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if signal() {
				return nil
			}
		}
	}
}
