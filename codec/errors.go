package codec

import (
	"errors"
	"fmt"
)

var (
	ErrEncodingRange  = errors.New("value exceeds field width")
	ErrUnknownCommand = errors.New("unknown command")
	ErrMalformedWord  = errors.New("malformed command word")
)

// NoNode marks an EncodingRangeError that is not tied to a node.
const NoNode = -1

// EncodingRangeError reports a value that does not fit its bit field. The
// word was not produced.
type EncodingRangeError struct {
	Node  int
	Field string
	Value any
	Limit uint64
}

func (e *EncodingRangeError) Error() string {
	if e.Node == NoNode {
		return fmt.Sprintf("%s %v out of range [0, %d]", e.Field, e.Value, e.Limit)
	}
	return fmt.Sprintf("node %d: %s %v out of range [0, %d]", e.Node, e.Field, e.Value, e.Limit)
}

func (e *EncodingRangeError) Unwrap() error {
	return ErrEncodingRange
}

func rangeError(node uint64, field string, value any, limit uint64) error {
	return &EncodingRangeError{Node: int(node), Field: field, Value: value, Limit: limit}
}
