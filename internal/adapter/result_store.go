package adapter

import (
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	m "revu.dev/pkg/revu/internal/model"
)

const (
	indexFileName = "index.yaml"
	lockFileName  = ".index.lock"
)

// ReviewRun is one saved submission outcome.
type ReviewRun struct {
	ID        string         `yaml:"id"`
	Root      string         `yaml:"root"`
	CreatedAt time.Time      `yaml:"created_at"`
	Reviews   []m.FileReview `yaml:"-"`
	Files     []string       `yaml:"files"`
}

// ResultStore persists review runs under an output directory and reads
// them back for the view command.
type ResultStore interface {
	SaveRun(dir m.Path, root string, reviews []m.FileReview) (*ReviewRun, error)
	LoadIndex(dir m.Path) ([]ReviewRun, error)
	LoadRun(dir m.Path, id string) (*ReviewRun, error)
	ExportHTML(w io.Writer, run *ReviewRun) error
}

// FileResultStore is the on-disk ResultStore. Layout:
//
//	<dir>/index.yaml              run index, newest first
//	<dir>/<run-id>/<name>.report.md
//	<dir>/<run-id>/<name>.fixed.py
//
// The index is guarded by a file lock so concurrent revu invocations
// sharing an output directory do not clobber each other.
type FileResultStore struct{}

// NewFileResultStore constructs a FileResultStore.
func NewFileResultStore() *FileResultStore {
	return &FileResultStore{}
}

// SaveRun writes every review of a submission plus an index entry and
// returns the stored run.
func (s *FileResultStore) SaveRun(dir m.Path, root string, reviews []m.FileReview) (*ReviewRun, error) {
	run := &ReviewRun{
		ID:        uuid.NewString(),
		Root:      root,
		CreatedAt: time.Now().UTC(),
		Reviews:   reviews,
	}

	runDir := filepath.Join(string(dir), run.ID)
	if err := os.MkdirAll(runDir, 0o750); err != nil {
		return nil, fmt.Errorf("create run directory: %w", err)
	}

	for _, review := range reviews {
		name := flattenName(review.Filename)
		run.Files = append(run.Files, review.Filename)

		reportPath := filepath.Join(runDir, name+".report.md")
		if err := os.WriteFile(reportPath, []byte(review.Report), 0o640); err != nil {
			return nil, fmt.Errorf("write report for %s: %w", review.Filename, err)
		}

		fixedPath := filepath.Join(runDir, name+".fixed.py")
		if err := os.WriteFile(fixedPath, []byte(review.FixedCode), 0o640); err != nil {
			return nil, fmt.Errorf("write fixed code for %s: %w", review.Filename, err)
		}
	}

	if err := s.appendIndex(dir, run); err != nil {
		return nil, err
	}

	return run, nil
}

// appendIndex adds the run to index.yaml under an exclusive file lock.
func (s *FileResultStore) appendIndex(dir m.Path, run *ReviewRun) error {
	lock := flock.New(filepath.Join(string(dir), lockFileName))
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock result index: %w", err)
	}

	defer func() { _ = lock.Unlock() }()

	runs, err := s.readIndex(dir)
	if err != nil {
		return err
	}

	runs = append(runs, *run)

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})

	raw, err := yaml.Marshal(runs)
	if err != nil {
		return fmt.Errorf("encode result index: %w", err)
	}

	return atomicWrite(filepath.Join(string(dir), indexFileName), raw)
}

// LoadIndex returns the saved runs, newest first.
func (s *FileResultStore) LoadIndex(dir m.Path) ([]ReviewRun, error) {
	return s.readIndex(dir)
}

func (s *FileResultStore) readIndex(dir m.Path) ([]ReviewRun, error) {
	raw, err := os.ReadFile(filepath.Join(string(dir), indexFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("read result index: %w", err)
	}

	var runs []ReviewRun
	if err := yaml.Unmarshal(raw, &runs); err != nil {
		return nil, fmt.Errorf("decode result index: %w", err)
	}

	return runs, nil
}

// LoadRun reads one run's reviews back from disk. Original contents are
// not persisted, so loaded reviews carry report and fixed code only.
func (s *FileResultStore) LoadRun(dir m.Path, id string) (*ReviewRun, error) {
	runs, err := s.readIndex(dir)
	if err != nil {
		return nil, err
	}

	for _, run := range runs {
		if run.ID != id {
			continue
		}

		runDir := filepath.Join(string(dir), run.ID)

		for _, filename := range run.Files {
			name := flattenName(filename)

			report, err := os.ReadFile(filepath.Join(runDir, name+".report.md"))
			if err != nil && !os.IsNotExist(err) {
				return nil, fmt.Errorf("read saved report: %w", err)
			}

			fixed, err := os.ReadFile(filepath.Join(runDir, name+".fixed.py"))
			if err != nil && !os.IsNotExist(err) {
				return nil, fmt.Errorf("read saved fixed code: %w", err)
			}

			run.Reviews = append(run.Reviews, m.FileReview{
				Filename:  filename,
				Report:    string(report),
				FixedCode: string(fixed),
			})
		}

		return &run, nil
	}

	return nil, fmt.Errorf("run %s not found", id)
}

// htmlExportTemplate renders a run as a standalone page. html/template
// escapes every interpolation, so file contents and server text cannot
// inject markup.
var htmlExportTemplate = template.Must(template.New("run").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>revu run {{.ID}}</title></head>
<body>
<h1>Review run {{.ID}}</h1>
<p>Root: {{.Root}} · {{.CreatedAt.Format "2006-01-02 15:04:05 MST"}}</p>
{{range .Reviews}}
<section>
<h2>{{.Filename}}</h2>
{{if .Original}}<h3>Original</h3><pre>{{.Original}}</pre>{{end}}
<h3>Report</h3><pre>{{.Report}}</pre>
<h3>Fixed code</h3><pre>{{.FixedCode}}</pre>
</section>
{{end}}
</body>
</html>
`))

// ExportHTML writes the run as a self-contained HTML page.
func (s *FileResultStore) ExportHTML(w io.Writer, run *ReviewRun) error {
	if err := htmlExportTemplate.Execute(w, run); err != nil {
		return fmt.Errorf("export run %s: %w", run.ID, err)
	}

	return nil
}

// flattenName turns a relative path into a single safe file name.
func flattenName(relPath string) string {
	name := strings.ReplaceAll(relPath, "\\", "/")
	name = strings.ReplaceAll(name, "/", "__")
	name = strings.TrimSuffix(name, filepath.Ext(name))

	if name == "" {
		name = "file"
	}

	return name
}

// atomicWrite replaces path via a temp file and rename so readers never
// observe a partial index.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp index: %w", err)
	}

	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)

		return fmt.Errorf("write temp index: %w", err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)

		return fmt.Errorf("close temp index: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)

		return fmt.Errorf("replace index: %w", err)
	}

	return nil
}
