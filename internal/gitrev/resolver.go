// Package gitrev resolves the two concrete files a diff run compares,
// fetching the prior committed revision from git history when only one path
// is given.
package gitrev

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"github.com/luipir/geodiff-action/internal/types"
)

// Resolver turns the action's path inputs into two readable FileReferences.
type Resolver struct {
	history HistorySource
}

func NewResolver(history HistorySource) *Resolver {
	return &Resolver{history: history}
}

// Resolve returns the base and compare references plus a cleanup function
// that removes any temp file materialized from history. cleanup is non-nil
// on every return, including errors, and must be called by the driver.
func (r *Resolver) Resolve(ctx context.Context, basePath, comparePath string) (types.FileReference, types.FileReference, func(), error) {
	cleanup := func() {}
	var base, compare types.FileReference

	absBase, err := checkReadable(basePath)
	if err != nil {
		return base, compare, cleanup, err
	}
	base = types.FileReference{Role: types.FileRoleBase, Path: absBase, Provenance: types.ProvenanceGiven}

	if comparePath != "" {
		absCompare, err := checkReadable(comparePath)
		if err != nil {
			return base, compare, cleanup, err
		}
		compare = types.FileReference{Role: types.FileRoleCompare, Path: absCompare, Provenance: types.ProvenanceGiven}
		return base, compare, cleanup, nil
	}

	log.Printf("No compare file given, fetching previous revision of %s from git history", basePath)
	tempPath, err := r.history.PriorRevision(ctx, absBase)
	if err != nil {
		return base, compare, cleanup, err
	}
	cleanup = func() {
		if err := os.Remove(tempPath); err != nil && !os.IsNotExist(err) {
			log.Printf("Warning: failed to remove temp file %s: %v", tempPath, err)
		}
	}

	compare = types.FileReference{Role: types.FileRoleCompare, Path: tempPath, Provenance: types.ProvenanceHistory}
	return base, compare, cleanup, nil
}

func checkReadable(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", &InputNotFoundError{Path: path, Err: err}
	}
	f, err := os.Open(abs)
	if err != nil {
		return "", &InputNotFoundError{Path: path, Err: err}
	}
	_ = f.Close()
	return abs, nil
}
