package coordinator

import (
	"errors"
	"fmt"
)

// ErrNotFound reports that no live entry exists for a (namespace, key) pair.
// Read paths return it both for missing entries and for entries whose TTL
// has lapsed.
var ErrNotFound = errors.New("entry not found")

// UnknownNamespaceError is returned by Store when the target namespace is
// not part of the configured set.
type UnknownNamespaceError struct {
	Namespace string
}

// Error implements the error interface.
func (e *UnknownNamespaceError) Error() string {
	return fmt.Sprintf("unknown namespace %q", e.Namespace)
}

// Is allows errors.Is matching against any UnknownNamespaceError.
func (e *UnknownNamespaceError) Is(target error) bool {
	_, ok := target.(*UnknownNamespaceError)
	return ok
}

// CorruptEntryError reports an entry whose stored payload can no longer be
// decoded. Seeing one after startup means the on-disk state was damaged
// while the coordinator was running, so it is surfaced rather than
// swallowed.
type CorruptEntryError struct {
	Namespace string
	Key       string
	cause     error
}

// Error implements the error interface.
func (e *CorruptEntryError) Error() string {
	return fmt.Sprintf("corrupt entry %s:%s: %v", e.Namespace, e.Key, e.cause)
}

// Unwrap returns the underlying decode failure.
func (e *CorruptEntryError) Unwrap() error {
	return e.cause
}

// IsUnknownNamespace reports whether err wraps an UnknownNamespaceError.
func IsUnknownNamespace(err error) bool {
	var unknownErr *UnknownNamespaceError
	return errors.As(err, &unknownErr)
}

// IsCorruptEntry reports whether err wraps a CorruptEntryError.
func IsCorruptEntry(err error) bool {
	var corruptErr *CorruptEntryError
	return errors.As(err, &corruptErr)
}
