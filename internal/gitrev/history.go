package gitrev

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/google/uuid"
)

// HistorySource retrieves the prior committed revision of a file,
// materialized to a temporary path owned by the caller.
type HistorySource interface {
	PriorRevision(ctx context.Context, path string) (string, error)
}

// GitHistorySource reads the enclosing git repository with go-git. The prior
// revision of a path is its content in the first parent of HEAD.
type GitHistorySource struct{}

func NewGitHistorySource() *GitHistorySource {
	return &GitHistorySource{}
}

// PriorRevision extracts path's content at HEAD~1 into a uniquely named
// temporary file that keeps the original extension. The caller owns the
// returned file and must remove it.
func (s *GitHistorySource) PriorRevision(ctx context.Context, path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", &VersionControlUnavailableError{Path: path, Err: err}
	}

	repo, err := gitlib.PlainOpenWithOptions(filepath.Dir(abs), &gitlib.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", &VersionControlUnavailableError{Path: path, Err: fmt.Errorf("open repository: %w", err)}
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return "", &VersionControlUnavailableError{Path: path, Err: fmt.Errorf("resolve worktree: %w", err)}
	}
	relPath, err := filepath.Rel(worktree.Filesystem.Root(), abs)
	if err != nil {
		return "", &VersionControlUnavailableError{Path: path, Err: err}
	}

	head, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return "", &NoHistoryError{Path: path, Reason: "repository has no commits"}
		}
		return "", &VersionControlUnavailableError{Path: path, Err: fmt.Errorf("resolve HEAD: %w", err)}
	}

	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return "", &VersionControlUnavailableError{Path: path, Err: fmt.Errorf("read HEAD commit: %w", err)}
	}
	if commit.NumParents() == 0 {
		return "", &NoHistoryError{Path: path, Reason: "HEAD has no parent commit"}
	}

	parent, err := commit.Parent(0)
	if err != nil {
		return "", &VersionControlUnavailableError{Path: path, Err: fmt.Errorf("read parent commit: %w", err)}
	}

	file, err := parent.File(filepath.ToSlash(relPath))
	if err != nil {
		if errors.Is(err, object.ErrFileNotFound) {
			return "", &NoHistoryError{Path: path, Reason: "file does not exist in the previous commit (newly added?)"}
		}
		return "", &VersionControlUnavailableError{Path: path, Err: fmt.Errorf("read file from parent commit: %w", err)}
	}

	return materialize(ctx, file, filepath.Ext(abs))
}

// materialize writes a blob to a unique temp file, preserving the original
// extension so format detection still works on the copy.
func materialize(ctx context.Context, file *object.File, ext string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	reader, err := file.Reader()
	if err != nil {
		return "", fmt.Errorf("failed to read blob: %w", err)
	}
	defer func() { _ = reader.Close() }()

	tempPath := filepath.Join(os.TempDir(), fmt.Sprintf("geodiff-%s%s", uuid.NewString(), ext))
	out, err := os.OpenFile(tempPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := io.Copy(out, reader); err != nil {
		_ = out.Close()
		_ = os.Remove(tempPath)
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tempPath)
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}
	return tempPath, nil
}
