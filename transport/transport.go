package transport

import (
	"context"
	"errors"

	"treeval/codec"
)

var (
	ErrClosed      = errors.New("transport closed")
	ErrDeviceFault = errors.New("accelerator fault")
)

// Transport abstracts the channel between software and the accelerator: two
// one-word-deep FIFOs with a ready/ack handshake. Send and Receive block; a
// failed call is reported as an error and never retried by the transport.
type Transport interface {
	Send(ctx context.Context, w codec.Word) error
	Receive(ctx context.Context) (codec.Word, error)
	// Acked reports whether every word sent has been consumed by the
	// accelerator (or the transport failed, so nothing is pending).
	Acked() bool
	// Ready reports whether Receive would return without blocking.
	Ready() bool
}

// Port is the accelerator's end of a transport.
type Port interface {
	// Next blocks until a command word is at the head of the inbound FIFO and
	// consumes it, acknowledging it to the sender.
	Next(ctx context.Context) (codec.Word, error)
	// Reply places a result word in the outbound FIFO.
	Reply(ctx context.Context, w codec.Word) error
	// Fail reports a fault to the sender. The port accepts no more words.
	Fail(err error)
}
