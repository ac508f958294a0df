package domain

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"revu.dev/pkg/revu/internal/adapter"
)

// SkipFolderSource resolves the skip-folder list the path filter runs
// against. It starts from a local list (built-in default, possibly
// overridden by config) and may be replaced wholesale, at most once per
// session, by the list the server advertises.
//
// The remote fetch runs in the background and never blocks a scan: a scan
// observes whichever list is resolved at that moment. If the fetch lands
// after the first pick, that pick simply used the earlier list.
type SkipFolderSource struct {
	mu      sync.RWMutex
	folders []string

	group  singleflight.Group
	client adapter.ReviewClient
}

// NewSkipFolderSource builds a source seeded with the given list. An empty
// seed falls back to DefaultSkipFolders so the filter never runs against
// nothing.
func NewSkipFolderSource(seed []string, client adapter.ReviewClient) *SkipFolderSource {
	folders := NormalizeSkipFolders(seed)
	if len(folders) == 0 {
		folders = NormalizeSkipFolders(DefaultSkipFolders)
	}

	return &SkipFolderSource{
		folders: folders,
		client:  client,
	}
}

// Resolve returns a snapshot of the current list.
func (s *SkipFolderSource) Resolve() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, len(s.folders))
	copy(out, s.folders)

	return out
}

// FetchRemote asks the server for its authoritative list and replaces the
// local one when the answer is non-empty. Failures and empty answers keep
// the current list; neither is a user-facing error. Concurrent callers
// share a single request.
func (s *SkipFolderSource) FetchRemote(ctx context.Context) {
	if s.client == nil {
		return
	}

	_, _, _ = s.group.Do("skip-folders", func() (interface{}, error) {
		remote, err := s.client.FetchSkipFolders(ctx)
		if err != nil {
			slog.Debug("skip-folder fetch failed, keeping local list", "error", err)
			return nil, nil
		}

		folders := NormalizeSkipFolders(remote)
		if len(folders) == 0 {
			slog.Debug("skip-folder fetch returned nothing, keeping local list")
			return nil, nil
		}

		s.mu.Lock()
		s.folders = folders
		s.mu.Unlock()

		slog.Debug("skip-folder list replaced from server", "count", len(folders))

		return nil, nil
	})
}
