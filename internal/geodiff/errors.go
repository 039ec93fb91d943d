package geodiff

import "fmt"

// UnsupportedFormatError is returned before the diff primitive is invoked
// when a file's extension is not in the supported set.
type UnsupportedFormatError struct {
	Path string
	Ext  string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file format %q for %s: supported extensions are %s",
		e.Ext, e.Path, SupportedExtensions())
}

// DiffEngineError wraps a failure of the diff primitive itself. The
// primitive's message is surfaced verbatim and never retried.
type DiffEngineError struct {
	Base    string
	Compare string
	Err     error
}

func (e *DiffEngineError) Error() string {
	return fmt.Sprintf("diff engine failed comparing %s and %s: %v", e.Base, e.Compare, e.Err)
}

func (e *DiffEngineError) Unwrap() error { return e.Err }
