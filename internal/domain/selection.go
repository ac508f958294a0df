package domain

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"revu.dev/pkg/revu/internal/adapter"
	m "revu.dev/pkg/revu/internal/model"
)

// Selector runs the selection pipeline: walk a picked folder, keep files
// with the configured extension, drop the ones under skip folders and load
// the contents of whatever survives.
type Selector struct {
	fs   adapter.SourceFSAdapter
	skip *SkipFolderSource
	ext  string
}

// NewSelector wires a Selector. ext is the source-file extension to match,
// including the leading dot.
func NewSelector(fs adapter.SourceFSAdapter, skip *SkipFolderSource, ext string) *Selector {
	return &Selector{
		fs:   fs,
		skip: skip,
		ext:  strings.ToLower(ext),
	}
}

// Scan builds a fresh Selection for root. A folder with no matching files
// yields an empty Selection, not an error. The skip-folder list is read
// once at the start of the scan, so a remote list resolving mid-scan only
// affects the next pick.
func (s *Selector) Scan(ctx context.Context, root m.Path) (*m.Selection, error) {
	if _, err := s.fs.FileInfo(root); err != nil {
		return nil, fmt.Errorf("scan root: %w", err)
	}

	selection := m.NewSelection(root)
	skip := s.skip.Resolve()

	walkErr := s.fs.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if info.IsDir() {
			return nil
		}

		if !strings.HasSuffix(strings.ToLower(info.Name()), s.ext) {
			return nil
		}

		selection.TotalMatched++

		relPath := relativeTo(s.fs, root, m.Path(path))

		if IsExcluded(relPath, skip) {
			selection.Skip(relPath)
			return nil
		}

		content, readErr := s.fs.ReadFile(m.Path(path))
		if readErr != nil {
			return fmt.Errorf("read %s: %w", relPath, readErr)
		}

		selection.Add(relPath, string(content))

		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	slog.Debug("scan complete",
		"root", string(root),
		"matched", selection.TotalMatched,
		"accepted", selection.Accepted(),
		"skipped", selection.Skipped,
	)

	return selection, nil
}

// relativeTo computes the path of target relative to root, falling back to
// the bare target when no relative form is available.
func relativeTo(fs adapter.SourceFSAdapter, root, target m.Path) string {
	rel, err := fs.RelPath(root, target)
	if err != nil {
		return string(target)
	}

	return string(rel)
}
