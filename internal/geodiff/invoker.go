package geodiff

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	"github.com/luipir/geodiff-action/internal/types"
)

var supportedExtensions = map[string]bool{
	".gpkg":   true,
	".sqlite": true,
	".db":     true,
}

// SupportedExtensions returns the supported extensions as a sorted,
// comma-separated string for error messages.
func SupportedExtensions() string {
	exts := make([]string, 0, len(supportedExtensions))
	for ext := range supportedExtensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return strings.Join(exts, ", ")
}

// CheckSupported fails with UnsupportedFormatError if the path's extension
// is not a supported database format. The driver calls this before any
// history resolution so a bad input fails fast.
func CheckSupported(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if !supportedExtensions[ext] {
		return &UnsupportedFormatError{Path: path, Ext: ext}
	}
	return nil
}

// Invoker hands two resolved files to the diff primitive.
type Invoker struct {
	differ Differ
}

func NewInvoker(differ Differ) *Invoker {
	return &Invoker{differ: differ}
}

// Invoke validates both file formats and runs the diff primitive. Primitive
// failures propagate as DiffEngineError with the original message intact.
func (iv *Invoker) Invoke(ctx context.Context, base, compare types.FileReference) (*RawChangeset, error) {
	for _, ref := range []types.FileReference{base, compare} {
		if err := CheckSupported(ref.Path); err != nil {
			return nil, err
		}
	}

	changeset, err := iv.differ.Diff(ctx, base.Path, compare.Path)
	if err != nil {
		return nil, &DiffEngineError{Base: base.Path, Compare: compare.Path, Err: err}
	}
	return changeset, nil
}
