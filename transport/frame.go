package transport

import (
	"encoding/binary"
	"errors"
	"fmt"

	"treeval/codec"
)

// Frames carried as websocket binary messages: one type byte followed by a
// big-endian word (command, result), nothing (ack) or a UTF-8 message (error).
type frameType byte

const (
	frameCommand frameType = 0x01
	frameAck     frameType = 0x02
	frameResult  frameType = 0x03
	frameError   frameType = 0x04
)

var errBadFrame = errors.New("bad frame")

func wordFrame(t frameType, w codec.Word) []byte {
	b := make([]byte, 9)
	b[0] = byte(t)
	binary.BigEndian.PutUint64(b[1:], uint64(w))
	return b
}

func ackFrame() []byte {
	return []byte{byte(frameAck)}
}

func errorFrame(err error) []byte {
	return append([]byte{byte(frameError)}, err.Error()...)
}

type frame struct {
	kind    frameType
	word    codec.Word
	message string
}

func parseFrame(b []byte) (frame, error) {
	if len(b) == 0 {
		return frame{}, fmt.Errorf("%w: empty", errBadFrame)
	}
	f := frame{kind: frameType(b[0])}
	switch f.kind {
	case frameCommand, frameResult:
		if len(b) != 9 {
			return frame{}, fmt.Errorf("%w: type %d with %d bytes", errBadFrame, b[0], len(b))
		}
		f.word = codec.Word(binary.BigEndian.Uint64(b[1:]))
	case frameAck:
		if len(b) != 1 {
			return frame{}, fmt.Errorf("%w: ack with payload", errBadFrame)
		}
	case frameError:
		f.message = string(b[1:])
	default:
		return frame{}, fmt.Errorf("%w: unknown type %d", errBadFrame, b[0])
	}
	return f, nil
}
