package tracker

import (
	"errors"
	"fmt"
)

var (
	ErrIndexMismatch    = errors.New("progress index does not match agent names")
	ErrBadProgress      = errors.New("progress entry out of range")
	ErrCapacityExceeded = errors.New("slot pool exceeds capacity ceiling")
	ErrStaleDispatch    = errors.New("dispatch references a terminated or unknown slot")
	ErrBadSeats         = errors.New("seat vector does not fit the slot pool")
	ErrFinished         = errors.New("no live slots")
)

// ConfigError reports a rejected construction. Kind is one of the
// ErrIndexMismatch / ErrBadProgress / ErrCapacityExceeded sentinels.
type ConfigError struct {
	Kind   error
	Detail string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("tracker config: %v: %s", e.Kind, e.Detail)
}

func (e *ConfigError) Unwrap() error { return e.Kind }

func configErr(kind error, format string, args ...any) error {
	return &ConfigError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// InternalConsistencyError means the caller broke the suggest/mark protocol,
// usually by reusing a dispatch across ticks.
// Kind is ErrStaleDispatch or ErrBadSeats.
type InternalConsistencyError struct {
	Kind   error
	Slot   int
	Detail string
}

func (e *InternalConsistencyError) Error() string {
	if e.Slot < 0 {
		return "tracker consistency: " + e.Detail
	}
	return fmt.Sprintf("tracker consistency: slot %d: %s", e.Slot, e.Detail)
}

func (e *InternalConsistencyError) Unwrap() error { return e.Kind }

func consistencyErr(kind error, slot int, format string, args ...any) error {
	return &InternalConsistencyError{Kind: kind, Slot: slot, Detail: fmt.Sprintf(format, args...)}
}
