package gitrev

import "fmt"

// InputNotFoundError reports a given input path that does not exist or is
// not readable.
type InputNotFoundError struct {
	Path string
	Err  error
}

func (e *InputNotFoundError) Error() string {
	return fmt.Sprintf("input file not found or not readable: %s: %v", e.Path, e.Err)
}

func (e *InputNotFoundError) Unwrap() error { return e.Err }

// NoHistoryError reports that a path has no prior committed revision to
// compare against. Depending on the configured history policy this is a
// degraded-but-successful run, not a crash.
type NoHistoryError struct {
	Path   string
	Reason string
}

func (e *NoHistoryError) Error() string {
	return fmt.Sprintf("no previous version of %s to compare: %s", e.Path, e.Reason)
}

// VersionControlUnavailableError reports that the version-control layer
// itself is not usable. Always fatal.
type VersionControlUnavailableError struct {
	Path string
	Err  error
}

func (e *VersionControlUnavailableError) Error() string {
	return fmt.Sprintf("version control unavailable for %s: %v", e.Path, e.Err)
}

func (e *VersionControlUnavailableError) Unwrap() error { return e.Err }
