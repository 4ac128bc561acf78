package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrFileChanged is the root cause when a file's size changes while it's
// being read.
var ErrFileChanged = New("file contents changed during read")

// ErrSameFile is the root cause when a copy's source and destination are the
// same file, such as when a tree is copied onto itself.
var ErrSameFile = New("source and destination are the same file")

// ErrSymlinkLoop is the root cause when a symlinked directory points back at
// one of its own parents.
var ErrSymlinkLoop = New("symlink points to a parent directory")

// Kind classifies the failures of the core operations.
type Kind string

const (
	// KindUnknown is returned by KindOf for errors that don't carry a Kind.
	KindUnknown Kind = ""

	// LockedOrUnavailable means the file is held by another writer, doesn't
	// exist, or can't be opened.
	LockedOrUnavailable Kind = "LOCKED_OR_UNAVAILABLE"

	// ReadError means a source couldn't be opened or read.
	ReadError Kind = "READ_ERROR"

	// WriteError means a destination couldn't be created, written, renamed or
	// removed.
	WriteError Kind = "WRITE_ERROR"

	// PackageError means an archive couldn't be built.
	PackageError Kind = "PACKAGE_ERROR"

	// UnpackError means an archive couldn't be opened or extracted.
	UnpackError Kind = "UNPACK_ERROR"

	// PathError means a path argument was malformed.
	PathError Kind = "PATH_ERROR"
)

// Error is a failure of a core operation. Op names the operation, Path is
// the file or directory it was acting on, and Err is the underlying reason.
type Error struct {
	Kind Kind
	Op   string
	Path string
	Err  error
}

// E constructs an *Error.
func E(kind Kind, op, path string, err error) error {
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}

func (err *Error) Error() string {
	msg := err.Op
	if err.Path != "" {
		msg = fmt.Sprintf("%s %q", msg, err.Path)
	}
	if err.Err != nil {
		msg = fmt.Sprintf("%s: %s", msg, err.Err)
	}
	return msg
}

// Unwrap returns the underlying reason.
func (err *Error) Unwrap() error {
	return err.Err
}

// KindOf returns the Kind of the outermost *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is returns whether err, or any error it wraps, has the given Kind.
func Is(err error, kind Kind) bool {
	return stderrors.Is(err, kindTarget(kind))
}

// kindTarget lets the standard library's errors.Is match on Kind.
type kindTarget Kind

func (k kindTarget) Error() string {
	return string(k)
}

// Is reports whether target is a Kind matching err's.
func (err *Error) Is(target error) bool {
	k, ok := target.(kindTarget)
	return ok && err.Kind == Kind(k)
}

// FileNotFound represents when we were unable to access a file
// because the path didn't exist.
type FileNotFound struct {
	Path string
}

func (err FileNotFound) Error() string {
	return fmt.Sprintf("%q does not exist", err.Path)
}
