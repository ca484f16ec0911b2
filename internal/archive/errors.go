package archive

import (
	"errors"
	"fmt"
)

// ErrorKind classifies import failures.
type ErrorKind int

const (
	// UnrecognizedFormat means the archive holds no known manifest.
	UnrecognizedFormat ErrorKind = iota
	// MalformedManifest means a manifest or one of its fields could not be read.
	MalformedManifest
	// MissingNestedEntry means a system manifest names a file the archive lacks.
	MissingNestedEntry
	// UnreadableArchive means the bytes are not a readable zip.
	UnreadableArchive
)

func (k ErrorKind) String() string {
	switch k {
	case UnrecognizedFormat:
		return "unrecognized format"
	case MalformedManifest:
		return "malformed manifest"
	case MissingNestedEntry:
		return "missing nested entry"
	case UnreadableArchive:
		return "unreadable archive"
	default:
		return "unknown"
	}
}

// ErrUnknownFormat is wrapped by UnrecognizedFormat errors.
var ErrUnknownFormat = errors.New("no planet, system or galaxy manifest")

// ImportError describes one failed archive, entry or field. Fatal errors are
// returned from Import; recoverable ones are collected in Result.Warnings.
type ImportError struct {
	Kind  ErrorKind
	Entry string // archive entry or manifest field, empty for the whole archive
	Err   error
}

func (e *ImportError) Error() string {
	if e.Entry == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Entry, e.Err)
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is an ImportError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var ie *ImportError
	return errors.As(err, &ie) && ie.Kind == kind
}

const statusDetailLimit = 40

// StatusMessage renders an import failure for the status line.
func StatusMessage(err error) string {
	if err == nil {
		return ""
	}
	if IsKind(err, UnrecognizedFormat) {
		return "Unknown editor file format"
	}
	detail := []rune(err.Error())
	if len(detail) > statusDetailLimit {
		detail = detail[:statusDetailLimit]
	}
	return "Load error: " + string(detail)
}
