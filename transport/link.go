package transport

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"treeval/codec"
)

// Link is an in-process transport: an inbound and an outbound FIFO, each
// holding at most one word. The host uses the Link itself; the accelerator
// model uses Device().
type Link struct {
	in      chan codec.Word
	out     chan codec.Word
	pending atomic.Int32

	mu      sync.Mutex
	fault   error
	faulted chan struct{}

	closeOnce sync.Once
	closed    chan struct{}
}

func NewLink() *Link {
	return &Link{
		in:      make(chan codec.Word, 1),
		out:     make(chan codec.Word, 1),
		faulted: make(chan struct{}),
		closed:  make(chan struct{}),
	}
}

func (l *Link) Send(ctx context.Context, w codec.Word) error {
	if err := l.err(); err != nil {
		return err
	}

	l.pending.Add(1)
	select {
	case l.in <- w:
		select {
		case <-l.faulted: // Raced with a fault, nobody will consume the word
			l.drain()
			return l.err()
		default:
			return nil
		}
	case <-l.faulted:
		l.pending.Add(-1)
		return l.err()
	case <-l.closed:
		l.pending.Add(-1)
		return ErrClosed
	case <-ctx.Done():
		l.pending.Add(-1)
		return ctx.Err()
	}
}

func (l *Link) Receive(ctx context.Context) (codec.Word, error) {
	// A queued result wins over a fault raised after it.
	select {
	case w := <-l.out:
		return w, nil
	default:
	}

	select {
	case w := <-l.out:
		return w, nil
	case <-l.faulted:
		return 0, l.err()
	case <-l.closed:
		return 0, ErrClosed
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func (l *Link) Acked() bool {
	if l.pending.Load() == 0 {
		return true
	}
	select {
	case <-l.faulted:
		return true
	case <-l.closed:
		return true
	default:
		return false
	}
}

func (l *Link) Ready() bool {
	if len(l.out) > 0 {
		return true
	}
	select {
	case <-l.faulted:
		return true
	case <-l.closed:
		return true
	default:
		return false
	}
}

// Close releases both ends. Blocked calls return ErrClosed.
func (l *Link) Close() error {
	l.closeOnce.Do(func() { close(l.closed) })
	return nil
}

// Device returns the accelerator's end of the link.
func (l *Link) Device() Port {
	return &linkPort{link: l}
}

func (l *Link) err() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fault != nil {
		return l.fault
	}
	select {
	case <-l.closed:
		return ErrClosed
	default:
		return nil
	}
}

type linkPort struct {
	link *Link
}

func (p *linkPort) Next(ctx context.Context) (codec.Word, error) {
	select {
	case w := <-p.link.in:
		p.link.pending.Add(-1)
		return w, nil
	case <-p.link.closed:
		return 0, ErrClosed
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func (p *linkPort) Reply(ctx context.Context, w codec.Word) error {
	select {
	case p.link.out <- w:
		return nil
	case <-p.link.closed:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *linkPort) Fail(err error) {
	l := p.link
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fault != nil {
		return
	}
	l.fault = fmt.Errorf("%w: %w", ErrDeviceFault, err)
	close(l.faulted)
	l.drain()
}

// drain flushes the inbound FIFO of a faulted link.
func (l *Link) drain() {
	for {
		select {
		case <-l.in:
			l.pending.Add(-1)
		default:
			return
		}
	}
}
