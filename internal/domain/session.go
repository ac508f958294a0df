package domain

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"revu.dev/pkg/revu/internal/adapter"
	m "revu.dev/pkg/revu/internal/model"
)

// ErrNothingToSubmit is returned when a submission is requested with an
// empty selection or while another one is still in flight. Callers treat
// it as a disabled affordance, not a failure.
var ErrNothingToSubmit = errors.New("nothing to submit")

// interruptedSubmitError is surfaced when a submission ends without a
// proper outcome.
const interruptedSubmitError = "analysis request was interrupted"

// Session holds the mutable state of one review session: the live
// Selection, the request lifecycle stage, and the joined results or error
// of the last submission.
//
// Session is not safe for concurrent use. All mutation is expected to
// happen on a single goroutine (the bubbletea update loop in TUI mode, the
// command goroutine otherwise); background work delivers its outcome back
// to that goroutine, which applies it via CompleteSubmit.
type Session struct {
	client adapter.ReviewClient

	selection    *m.Selection
	state        m.RequestState
	reviews      []m.FileReview
	lastError    string
	submissionID string
}

// NewSession creates an idle session with no selection.
func NewSession(client adapter.ReviewClient) *Session {
	return &Session{client: client}
}

// State returns the current request lifecycle stage.
func (s *Session) State() m.RequestState { return s.state }

// Selection returns the live selection, nil before the first pick.
func (s *Session) Selection() *m.Selection { return s.selection }

// Reviews returns the joined results of the last successful submission.
func (s *Session) Reviews() []m.FileReview { return s.reviews }

// LastError returns the message of the last failed submission.
func (s *Session) LastError() string { return s.lastError }

// Client returns the review client the session submits through.
func (s *Session) Client() adapter.ReviewClient { return s.client }

// StartSelection installs a freshly scanned selection. The previous
// selection, results and error are discarded unconditionally so no stale
// state leaks into the new pick, and the session returns to idle.
func (s *Session) StartSelection(selection *m.Selection) {
	s.selection = selection
	s.reviews = nil
	s.lastError = ""
	s.state = m.StateIdle
}

// CanSubmit reports whether a submission may start: there must be accepted
// files and no submission already in flight.
func (s *Session) CanSubmit() bool {
	return s.state != m.StateSubmitting && s.selection != nil && !s.selection.Empty()
}

// BeginSubmit transitions to Submitting and returns the files to send.
// The previous outcome is cleared first so a retry never shows the old
// result or error alongside the loading view. Returns ErrNothingToSubmit
// (leaving the state untouched) when the guard refuses.
func (s *Session) BeginSubmit() ([]m.CandidateFile, error) {
	if !s.CanSubmit() {
		return nil, ErrNothingToSubmit
	}

	s.reviews = nil
	s.lastError = ""
	s.state = m.StateSubmitting
	s.submissionID = uuid.NewString()

	slog.Info("submitting selection",
		"submission", s.submissionID,
		"files", s.selection.Accepted(),
	)

	return s.selection.Files, nil
}

// CompleteSubmit records the outcome of the in-flight submission: joined
// results on success, the error message on failure. It is a no-op unless a
// submission is in flight.
func (s *Session) CompleteSubmit(results []m.AnalysisResult, err error) {
	if s.state != m.StateSubmitting {
		return
	}

	if err != nil {
		s.lastError = err.Error()
		s.state = m.StateFailed

		slog.Warn("submission failed", "submission", s.submissionID, "error", err)

		return
	}

	s.reviews = joinResults(s.selection, results)
	s.state = m.StateSucceeded

	slog.Info("submission succeeded", "submission", s.submissionID, "results", len(s.reviews))
}

// Submit is the synchronous form used outside the TUI: begin, send, and
// record the outcome in one call. Whatever exit path is taken, the session
// is never left in Submitting; that is what re-enables the submit
// affordance.
func (s *Session) Submit(ctx context.Context) error {
	files, err := s.BeginSubmit()
	if err != nil {
		return err
	}

	defer func() {
		if s.state == m.StateSubmitting {
			s.lastError = interruptedSubmitError
			s.state = m.StateFailed
		}
	}()

	results, err := s.client.Analyze(ctx, files)
	s.CompleteSubmit(results, err)

	if err != nil {
		return err
	}

	return nil
}

// joinResults matches each result to the accepted file it was produced
// for, keyed by the relative path the file was submitted under. A result
// for an unknown key keeps an empty original; that is a display detail,
// never an error. Fixed code arriving inside a markdown fence is unwrapped
// here so every consumer sees plain source.
func joinResults(selection *m.Selection, results []m.AnalysisResult) []m.FileReview {
	reviews := make([]m.FileReview, 0, len(results))

	for _, result := range results {
		reviews = append(reviews, m.FileReview{
			Filename:  result.Filename,
			Original:  selection.Content(result.Filename),
			Report:    result.Report,
			FixedCode: adapter.StripCodeFence(result.FixedCode),
		})
	}

	return reviews
}
