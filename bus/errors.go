package bus

import (
	"errors"
	"fmt"
	"os"
	"syscall"
)

// Errors
var (
	ErrNack        = errors.New("bus: no acknowledge")
	ErrArbitration = errors.New("bus: arbitration lost")
	ErrTimeout     = errors.New("bus: timeout")
	ErrBusy        = errors.New("bus: transfer already in flight")
	ErrClosed      = errors.New("bus: master closed")
	ErrInTask      = errors.New("bus: blocking access from inside a task")
	ErrBorrowed    = errors.New("bus: master already borrowed")
	ErrReleased    = errors.New("bus: adapter released")
)

// Kind classifies a failed transaction.
type Kind uint8

// Transaction failure kinds.
const (
	KindOther Kind = iota
	KindNack
	KindArbitration
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindNack:
		return "nack"
	case KindArbitration:
		return "arbitration"
	case KindTimeout:
		return "timeout"
	default:
		return "other"
	}
}

// Error is a failed bus transaction.
type Error struct {
	Op   string
	Addr uint16
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("bus: %s 0x%02x: %s: %v", e.Op, e.Addr, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinels, so an error from a platform that does not
// use them still compares equal to ErrNack and friends.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNack:
		return e.Kind == KindNack
	case ErrArbitration:
		return e.Kind == KindArbitration
	case ErrTimeout:
		return e.Kind == KindTimeout
	}
	return false
}

var (
	nackErrors        = []error{ErrNack, syscall.ENXIO}
	arbitrationErrors = []error{ErrArbitration, syscall.EAGAIN}
	timeoutErrors     = []error{ErrTimeout, syscall.ETIMEDOUT, os.ErrDeadlineExceeded}
)

func classify(err error) Kind {
	switch {
	case isAny(err, nackErrors):
		return KindNack
	case isAny(err, arbitrationErrors):
		return KindArbitration
	case isAny(err, timeoutErrors):
		return KindTimeout
	default:
		return KindOther
	}
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func wrap(op string, addr uint16, err error) error {
	if err == nil {
		return nil
	}
	var be *Error
	if errors.As(err, &be) {
		return be
	}
	return &Error{Op: op, Addr: addr, Kind: classify(err), Err: err}
}
