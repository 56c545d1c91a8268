package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
)

// Kind classifies a StoreError.
type Kind int

const (
	KindUnavailable Kind = iota + 1 // connectivity, I/O, cancelled calls
	KindPermission
	KindNotFound
	KindInvalid
)

func (k Kind) String() string {
	switch k {
	case KindUnavailable:
		return "unavailable"
	case KindPermission:
		return "permission denied"
	case KindNotFound:
		return "not found"
	case KindInvalid:
		return "invalid"
	}
	return "unknown"
}

// Sentinels matched by errors.Is against any StoreError of the same kind.
var (
	ErrUnavailable = errors.New("store unavailable")
	ErrPermission  = errors.New("store permission denied")
	ErrNotFound    = errors.New("record not found")
	ErrInvalid     = errors.New("invalid store request")
)

// StoreError is returned when the store rejects a read or a write.
type StoreError struct {
	Op         string
	Collection string
	Kind       Kind
	Err        error
}

func (e *StoreError) Error() string {
	if e.Collection == "" {
		return fmt.Sprintf("store %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("store %s %s: %s: %v", e.Op, e.Collection, e.Kind, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Is matches the kind sentinels.
func (e *StoreError) Is(target error) bool {
	switch target {
	case ErrUnavailable:
		return e.Kind == KindUnavailable
	case ErrPermission:
		return e.Kind == KindPermission
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrInvalid:
		return e.Kind == KindInvalid
	}
	return false
}

// wrap turns an engine error into a StoreError, keeping an existing one.
func wrap(op, collection string, err error) error {
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	kind := KindUnavailable
	switch {
	case errors.Is(err, fs.ErrPermission):
		kind = KindPermission
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		kind = KindUnavailable
	}
	return &StoreError{Op: op, Collection: collection, Kind: kind, Err: err}
}
