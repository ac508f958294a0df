package controller

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"revu.dev/pkg/revu/internal/adapter"
	"revu.dev/pkg/revu/internal/domain"
	m "revu.dev/pkg/revu/internal/model"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	skipStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("197"))
	helpStyle    = lipgloss.NewStyle().Faint(true)
	dimStyle     = lipgloss.NewStyle().Faint(true)
)

// SessionTUI runs the interactive review session with Bubble Tea.
type SessionTUI struct {
	session  *domain.Session
	selector *domain.Selector
	skip     *domain.SkipFolderSource
	store    adapter.ResultStore
	output   io.Writer

	// outputDir receives saved runs; empty disables saving.
	outputDir m.Path
}

// NewSessionTUI wires the interactive session. store may be nil to disable
// saving of successful runs.
func NewSessionTUI(
	session *domain.Session,
	selector *domain.Selector,
	skip *domain.SkipFolderSource,
	store adapter.ResultStore,
	outputDir m.Path,
	output io.Writer,
) *SessionTUI {
	return &SessionTUI{
		session:   session,
		selector:  selector,
		skip:      skip,
		store:     store,
		output:    output,
		outputDir: outputDir,
	}
}

// Run starts the session on root and blocks until the user quits.
func (t *SessionTUI) Run(ctx context.Context, root m.Path) error {
	model := newSessionModel(ctx, t, root)

	program := tea.NewProgram(model, tea.WithOutput(t.output), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run session: %w", err)
	}

	return nil
}

type scanDoneMsg struct {
	selection *m.Selection
	err       error
}

type analyzeDoneMsg struct {
	results []m.AnalysisResult
	err     error
}

type skipConfigDoneMsg struct{}

type runSavedMsg struct {
	runID string
	err   error
}

// sessionModel is the Bubble Tea model for one review session. All session
// mutation happens here, inside Update; commands only perform I/O and
// report back with messages.
type sessionModel struct {
	ctx context.Context
	tui *SessionTUI

	root    m.Path
	picking bool
	input   textinput.Model

	spin spinner.Model
	body viewport.Model

	fileIdx  int
	scanErr  string
	status   string
	width    int
	height   int
	ready    bool
	quitting bool
}

func newSessionModel(ctx context.Context, tui *SessionTUI, root m.Path) sessionModel {
	input := textinput.New()
	input.Placeholder = "path to project folder..."
	input.CharLimit = 512
	input.Width = 48

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	return sessionModel{
		ctx:  ctx,
		tui:  tui,
		root: root,
		input: input,
		spin: spin,
	}
}

func (sm sessionModel) Init() tea.Cmd {
	return tea.Batch(
		sm.fetchSkipConfigCmd(),
		sm.scanCmd(sm.root),
	)
}

// fetchSkipConfigCmd resolves the server's skip-folder list in the
// background. It races the first scan on purpose; whichever finishes first
// determines the list that scan observes.
func (sm sessionModel) fetchSkipConfigCmd() tea.Cmd {
	skip := sm.tui.skip
	ctx := sm.ctx

	return func() tea.Msg {
		skip.FetchRemote(ctx)
		return skipConfigDoneMsg{}
	}
}

func (sm sessionModel) scanCmd(root m.Path) tea.Cmd {
	selector := sm.tui.selector
	ctx := sm.ctx

	return func() tea.Msg {
		selection, err := selector.Scan(ctx, root)
		return scanDoneMsg{selection: selection, err: err}
	}
}

// analyzeCmd sends the already-snapshotted files. The session itself is
// not touched off the update loop.
func (sm sessionModel) analyzeCmd(files []m.CandidateFile) tea.Cmd {
	client := sm.tui.session.Client()
	ctx := sm.ctx

	return func() tea.Msg {
		results, err := client.Analyze(ctx, files)
		return analyzeDoneMsg{results: results, err: err}
	}
}

func (sm sessionModel) saveRunCmd(root string, reviews []m.FileReview) tea.Cmd {
	store := sm.tui.store
	dir := sm.tui.outputDir

	return func() tea.Msg {
		run, err := store.SaveRun(dir, root, reviews)
		if err != nil {
			return runSavedMsg{err: err}
		}

		return runSavedMsg{runID: run.ID}
	}
}

func (sm sessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		sm.width = msg.Width
		sm.height = msg.Height
		sm.body = viewport.New(msg.Width, max(msg.Height-6, 3))
		sm.ready = true
		sm.refreshBody()

		return sm, nil

	case scanDoneMsg:
		if msg.err != nil {
			sm.scanErr = msg.err.Error()
			return sm, nil
		}

		sm.scanErr = ""
		sm.fileIdx = 0
		sm.tui.session.StartSelection(msg.selection)
		sm.refreshBody()

		return sm, nil

	case analyzeDoneMsg:
		sm.tui.session.CompleteSubmit(msg.results, msg.err)
		sm.refreshBody()

		session := sm.tui.session
		if session.State() == m.StateSucceeded && sm.tui.store != nil && sm.tui.outputDir != "" {
			return sm, sm.saveRunCmd(string(sm.root), session.Reviews())
		}

		return sm, nil

	case runSavedMsg:
		if msg.err != nil {
			sm.status = "save failed: " + msg.err.Error()
		} else {
			sm.status = "saved run " + msg.runID
		}

		return sm, nil

	case skipConfigDoneMsg:
		// The list only affects the next scan; nothing to redraw.
		return sm, nil

	case spinner.TickMsg:
		if sm.tui.session.State() != m.StateSubmitting {
			return sm, nil
		}

		var cmd tea.Cmd
		sm.spin, cmd = sm.spin.Update(msg)

		return sm, cmd

	case tea.KeyMsg:
		return sm.handleKey(msg)
	}

	return sm, nil
}

func (sm sessionModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if sm.picking {
		return sm.handlePickingKey(msg)
	}

	session := sm.tui.session

	switch msg.String() {
	case "q", "ctrl+c", "esc":
		sm.quitting = true
		return sm, tea.Quit

	case "enter", "s":
		files, err := session.BeginSubmit()
		if err != nil {
			// Disabled affordance: empty selection or already in flight.
			return sm, nil
		}

		sm.status = ""
		sm.refreshBody()

		return sm, tea.Batch(sm.spin.Tick, sm.analyzeCmd(files))

	case "r":
		if session.State() == m.StateSubmitting {
			return sm, nil
		}

		return sm, sm.scanCmd(sm.root)

	case "n":
		if session.State() == m.StateSubmitting {
			return sm, nil
		}

		sm.picking = true
		sm.input.SetValue("")
		sm.input.Focus()

		return sm, textinput.Blink

	case "c":
		if review, ok := sm.currentReview(); ok {
			if err := clipboard.WriteAll(review.FixedCode); err != nil {
				sm.status = "copy failed: " + err.Error()
			} else {
				sm.status = "copied fixed code for " + review.Filename
			}
		}

		return sm, nil

	case "tab", "l":
		if n := len(session.Reviews()); n > 0 {
			sm.fileIdx = (sm.fileIdx + 1) % n
			sm.refreshBody()
		}

		return sm, nil

	case "shift+tab", "h":
		if n := len(session.Reviews()); n > 0 {
			sm.fileIdx = (sm.fileIdx + n - 1) % n
			sm.refreshBody()
		}

		return sm, nil

	case "j", "down":
		sm.body.LineDown(1)
		return sm, nil

	case "k", "up":
		sm.body.LineUp(1)
		return sm, nil
	}

	return sm, nil
}

// handlePickingKey drives the "new folder" text input.
func (sm sessionModel) handlePickingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		root := strings.TrimSpace(sm.input.Value())

		sm.picking = false
		sm.input.Blur()

		if root == "" {
			return sm, nil
		}

		sm.root = m.Path(root)
		sm.status = ""

		return sm, sm.scanCmd(sm.root)

	case "esc":
		sm.picking = false
		sm.input.Blur()

		return sm, nil
	}

	var cmd tea.Cmd
	sm.input, cmd = sm.input.Update(msg)

	return sm, cmd
}

func (sm *sessionModel) currentReview() (m.FileReview, bool) {
	reviews := sm.tui.session.Reviews()
	if len(reviews) == 0 || sm.fileIdx >= len(reviews) {
		return m.FileReview{}, false
	}

	return reviews[sm.fileIdx], true
}

// refreshBody rebuilds the viewport content for the current state.
func (sm *sessionModel) refreshBody() {
	if !sm.ready {
		return
	}

	session := sm.tui.session

	switch session.State() {
	case m.StateSucceeded:
		sm.body.SetContent(sm.renderReview())
	case m.StateFailed:
		sm.body.SetContent(errorStyle.Render("Review failed: " + Sanitize(session.LastError())))
	default:
		sm.body.SetContent(sm.renderPreview())
	}

	sm.body.GotoTop()
}

func (sm *sessionModel) renderPreview() string {
	selection := sm.tui.session.Selection()
	if selection == nil {
		return dimStyle.Render("scanning...")
	}

	var b strings.Builder

	if selection.Empty() {
		b.WriteString(dimStyle.Render("No matching files found under " + string(selection.Root)))
		b.WriteString("\n")
	}

	for _, file := range selection.Files {
		fmt.Fprintf(&b, "%s %s\n",
			successStyle.Render("+"),
			Sanitize(file.RelPath),
		)
	}

	if selection.Skipped > 0 {
		fmt.Fprintf(&b, "\n%s\n", skipStyle.Render(fmt.Sprintf(
			"Skipped %d of %d matching file(s) under excluded folders:",
			selection.Skipped, selection.TotalMatched,
		)))

		for _, path := range selection.SkippedPaths {
			fmt.Fprintf(&b, "  %s %s\n", skipStyle.Render("-"), Sanitize(path))
		}
	}

	return b.String()
}

func (sm *sessionModel) renderReview() string {
	review, ok := sm.currentReview()
	if !ok {
		return dimStyle.Render("no results")
	}

	var b strings.Builder

	reviews := sm.tui.session.Reviews()
	fmt.Fprintf(&b, "%s\n\n", titleStyle.Render(fmt.Sprintf(
		"[%d/%d] %s", sm.fileIdx+1, len(reviews), Sanitize(review.Filename),
	)))

	if review.Original != "" {
		b.WriteString(sectionStyle.Render("Original") + "\n")
		b.WriteString(Sanitize(review.Original) + "\n\n")
	}

	b.WriteString(sectionStyle.Render("Report") + "\n")
	b.WriteString(Sanitize(review.Report) + "\n\n")

	b.WriteString(sectionStyle.Render("Fixed code") + "\n")
	b.WriteString(Sanitize(review.FixedCode) + "\n")

	return b.String()
}

func (sm sessionModel) View() string {
	if sm.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("revu · code review session"))
	b.WriteString("\n")

	session := sm.tui.session

	switch {
	case sm.picking:
		b.WriteString("New folder: " + sm.input.View() + "\n")

	case sm.scanErr != "":
		b.WriteString(errorStyle.Render("Scan failed: "+Sanitize(sm.scanErr)) + "\n")

	case session.State() == m.StateSubmitting:
		count := 0
		if selection := session.Selection(); selection != nil {
			count = selection.Accepted()
		}

		fmt.Fprintf(&b, "%s submitting %d file(s)...\n", sm.spin.View(), count)

	default:
		b.WriteString(sm.statusLine() + "\n")
	}

	if sm.ready {
		b.WriteString(sm.body.View())
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render(sm.helpLine()))

	return b.String()
}

func (sm sessionModel) statusLine() string {
	if sm.status != "" {
		return dimStyle.Render(sm.status)
	}

	session := sm.tui.session

	if selection := session.Selection(); selection != nil && session.State() == m.StateIdle {
		return dimStyle.Render(fmt.Sprintf(
			"%s: %d accepted, %d skipped",
			string(selection.Root), selection.Accepted(), selection.Skipped,
		))
	}

	if session.State() == m.StateSucceeded {
		return successStyle.Render(fmt.Sprintf("reviewed %d file(s)", len(session.Reviews())))
	}

	return ""
}

func (sm sessionModel) helpLine() string {
	session := sm.tui.session

	parts := []string{"q quit", "r rescan", "n new folder", "j/k scroll"}

	if session.CanSubmit() {
		parts = append([]string{"enter submit"}, parts...)
	}

	if len(session.Reviews()) > 0 {
		parts = append(parts, "tab next file", "c copy fixed code")
	}

	return strings.Join(parts, " · ")
}
