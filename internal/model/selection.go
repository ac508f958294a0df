// Package model holds the data records shared across the revu CLI.
package model

// CandidateFile is a source file accepted for review, identified by its
// path relative to the picked root.
type CandidateFile struct {
	RelPath string
	Content string
}

// Selection is the outcome of one folder pick: the accepted files in walk
// order plus bookkeeping counts. A new pick replaces the previous Selection
// entirely; selections are never merged.
type Selection struct {
	Root Path

	// Files holds accepted files in the order they were found.
	Files []CandidateFile

	// TotalMatched counts every file with a matching extension, accepted
	// or not. Skipped counts the ones rejected by the skip-folder filter.
	TotalMatched int
	Skipped      int

	// SkippedPaths lists the rejected relative paths for the skip summary.
	SkippedPaths []string

	byPath map[string]int
}

// NewSelection returns an empty Selection for the given root.
func NewSelection(root Path) *Selection {
	return &Selection{
		Root:   root,
		byPath: make(map[string]int),
	}
}

// Add records an accepted file. A duplicate relative path overwrites the
// earlier entry's content instead of appending a second one.
func (s *Selection) Add(relPath, content string) {
	if i, ok := s.byPath[relPath]; ok {
		s.Files[i].Content = content
		return
	}

	s.byPath[relPath] = len(s.Files)
	s.Files = append(s.Files, CandidateFile{RelPath: relPath, Content: content})
}

// Skip records a rejected file.
func (s *Selection) Skip(relPath string) {
	s.Skipped++
	s.SkippedPaths = append(s.SkippedPaths, relPath)
}

// Accepted returns the number of accepted files.
func (s *Selection) Accepted() int {
	return len(s.Files)
}

// Empty reports whether nothing survived filtering.
func (s *Selection) Empty() bool {
	return len(s.Files) == 0
}

// Content returns the original content stored under the given relative
// path, or the empty string when the key is unknown.
func (s *Selection) Content(relPath string) string {
	if i, ok := s.byPath[relPath]; ok {
		return s.Files[i].Content
	}

	return ""
}
