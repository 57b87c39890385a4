// Package browser is the interactive terminal front end: folder tree, background scan,
// series list with preview, naming form and copy.
package browser

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mrsinham/dicomsift/cmd/dicomsift/browser/screens"
	"github.com/mrsinham/dicomsift/internal/browse"
	"github.com/mrsinham/dicomsift/internal/copier"
	"github.com/mrsinham/dicomsift/internal/dicom"
	"github.com/mrsinham/dicomsift/internal/series"
)

// Phase represents the current screen of the browser.
type Phase int

const (
	PhaseTree Phase = iota
	PhaseScanning
	PhaseSeries
	PhaseNaming
	PhaseCopying
	PhaseComplete
	PhaseError
)

// scanMsg wraps one scanner message together with the channel it came from.
type scanMsg struct {
	msg series.Msg
	ch  <-chan series.Msg
}

type copyProgressMsg struct {
	done, total int
	ch          <-chan tea.Msg
}

type copyDoneMsg struct {
	result      copier.Result
	err         error
	destination string
	duration    time.Duration
}

// Browser is the top-level tea.Model.
type Browser struct {
	root    string
	logger  *slog.Logger
	scanner *series.Scanner
	session *Session

	phase Phase

	treeScreen       *screens.TreeScreen
	progressScreen   *screens.ProgressScreen
	seriesScreen     *screens.SeriesScreen
	namingScreen     *screens.NamingScreen
	completionScreen *screens.CompletionScreen
	errorScreen      *screens.ErrorScreen

	// errorBack is the phase the error screen returns to.
	errorBack Phase

	table     *series.Table
	leaf      string
	selection []string

	width  int
	height int

	cancelled bool
}

// NewBrowser creates a browser over the tree rooted at root. reader is used by the scanner.
func NewBrowser(root *browse.Node, reader series.MetadataReader, logger *slog.Logger) *Browser {
	return &Browser{
		root:       root.Path,
		logger:     logger,
		scanner:    series.NewScanner(reader),
		session:    &Session{},
		phase:      PhaseTree,
		treeScreen: screens.NewTreeScreen(root),
	}
}

// Init implements tea.Model.
func (b *Browser) Init() tea.Cmd {
	return b.treeScreen.Init()
}

// Update implements tea.Model.
func (b *Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		b.width = wsm.Width
		b.height = wsm.Height
	}

	switch b.phase {
	case PhaseTree:
		return b.updateTree(msg)
	case PhaseScanning:
		return b.updateScanning(msg)
	case PhaseSeries:
		return b.updateSeries(msg)
	case PhaseNaming:
		return b.updateNaming(msg)
	case PhaseCopying:
		return b.updateCopying(msg)
	case PhaseComplete:
		return b.updateComplete(msg)
	case PhaseError:
		return b.updateError(msg)
	}
	return b, nil
}

// View implements tea.Model.
func (b *Browser) View() string {
	switch b.phase {
	case PhaseTree:
		return b.treeScreen.View()
	case PhaseScanning, PhaseCopying:
		return b.progressScreen.View()
	case PhaseSeries:
		return b.seriesScreen.View()
	case PhaseNaming:
		return b.namingScreen.View()
	case PhaseComplete:
		return b.completionScreen.View()
	case PhaseError:
		return b.errorScreen.View()
	}
	return ""
}

// resize replays the last window size to a newly created screen.
func (b *Browser) resize(m tea.Model) {
	if b.width > 0 {
		m.Update(tea.WindowSizeMsg{Width: b.width, Height: b.height})
	}
}

func (b *Browser) updateTree(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := b.treeScreen.Update(msg)
	if ts, ok := model.(*screens.TreeScreen); ok {
		b.treeScreen = ts
	}

	if b.treeScreen.Cancelled() {
		b.cancelled = true
		return b, tea.Quit
	}

	if b.treeScreen.Done() {
		leaf := b.treeScreen.Chosen().Path
		b.treeScreen.Reset()
		return b.startScan(leaf)
	}
	return b, cmd
}

// startScan indexes leaf in the background. The table is replaced when the scan completes.
func (b *Browser) startScan(leaf string) (tea.Model, tea.Cmd) {
	ch, err := b.scanner.Start(b.root, leaf)
	if err != nil {
		return b.showError("Scan failed", err, PhaseTree)
	}

	b.leaf = leaf
	b.phase = PhaseScanning
	b.progressScreen = screens.NewProgressScreen("Scanning " + leaf)
	b.resize(b.progressScreen)
	b.logger.Debug("scan started", "root", b.root, "leaf", leaf)
	return b, waitForScan(ch)
}

func waitForScan(ch <-chan series.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return scanMsg{msg: msg, ch: ch}
	}
}

func (b *Browser) updateScanning(msg tea.Msg) (tea.Model, tea.Cmd) {
	if sm, ok := msg.(scanMsg); ok {
		switch m := sm.msg.(type) {
		case series.StartedMsg:
			b.progressScreen.SetProgress(0, m.Total, "")
		case series.ProgressMsg:
			b.progressScreen.SetProgress(m.Done, m.Total, m.Path)
		case series.DoneMsg:
			return b.scanDone(m)
		}
		return b, waitForScan(sm.ch)
	}

	model, cmd := b.progressScreen.Update(msg)
	if ps, ok := model.(*screens.ProgressScreen); ok {
		b.progressScreen = ps
	}
	if b.progressScreen.Cancelled() {
		b.cancelled = true
		return b, tea.Quit
	}
	return b, cmd
}

func (b *Browser) scanDone(m series.DoneMsg) (tea.Model, tea.Cmd) {
	if m.Err != nil {
		b.logger.Error("scan failed", "leaf", m.Leaf, "error", m.Err)
		return b.showError("Scan failed", m.Err, PhaseTree)
	}

	b.table = m.Table
	b.logger.Info("scan finished", "leaf", m.Leaf, "series", m.Table.Len())
	b.phase = PhaseSeries
	b.seriesScreen = screens.NewSeriesScreen(b.table)
	b.resize(b.seriesScreen)
	return b, b.seriesScreen.Init()
}

func (b *Browser) updateSeries(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := b.seriesScreen.Update(msg)
	if ss, ok := model.(*screens.SeriesScreen); ok {
		b.seriesScreen = ss
	}

	if b.seriesScreen.Cancelled() {
		b.cancelled = true
		return b, tea.Quit
	}

	switch b.seriesScreen.Action() {
	case screens.SeriesBack:
		b.seriesScreen.ClearAction()
		b.phase = PhaseTree
		return b, nil
	case screens.SeriesCopy:
		b.seriesScreen.ClearAction()
		b.selection = b.seriesScreen.Selected()
		values := b.session.NamingValues(b.root)
		b.phase = PhaseNaming
		b.namingScreen = screens.NewNamingScreen(&values, len(b.selection))
		b.resize(b.namingScreen)
		return b, b.namingScreen.Init()
	}
	return b, cmd
}

func (b *Browser) updateNaming(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := b.namingScreen.Update(msg)
	if ns, ok := model.(*screens.NamingScreen); ok {
		b.namingScreen = ns
	}

	if b.namingScreen.Cancelled() {
		b.phase = PhaseSeries
		return b, nil
	}

	if b.namingScreen.Done() {
		values := b.namingScreen.Values()
		b.session.Remember(values)
		return b.startCopy(values)
	}
	return b, cmd
}

// startCopy plans the copy and, when the request is valid, runs it while streaming progress.
func (b *Browser) startCopy(values screens.NamingValues) (tea.Model, tea.Cmd) {
	policy, err := copier.ParsePolicy(values.Naming)
	if err != nil {
		return b.showError("Copy failed", err, PhaseSeries)
	}
	req := copier.Request{
		Series:      b.selection,
		Policy:      policy,
		CustomName:  values.CustomName,
		Prefix:      values.Prefix,
		SourceRoot:  b.root,
		Destination: values.Destination,
	}

	ops, err := copier.Plan(b.table, req)
	if errors.Is(err, copier.ErrNoDestination) {
		b.phase = PhaseSeries
		return b, nil
	}
	if err != nil {
		return b.showError("Copy failed", err, PhaseSeries)
	}

	b.phase = PhaseCopying
	b.progressScreen = screens.NewProgressScreen(fmt.Sprintf("Copying %d files to %s", len(ops), req.Destination))
	b.resize(b.progressScreen)

	ch := make(chan tea.Msg, 64)
	go func() {
		defer close(ch)
		start := time.Now()
		res := copier.Execute(ops, copier.ExecuteOptions{
			Progress: func(done, total int) {
				ch <- copyProgressMsg{done: done, total: total}
			},
		})
		ch <- copyDoneMsg{result: res, destination: req.Destination, duration: time.Since(start)}
	}()
	return b, waitForCopy(ch)
}

func waitForCopy(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		if pm, ok := msg.(copyProgressMsg); ok {
			pm.ch = ch
			return pm
		}
		return msg
	}
}

func (b *Browser) updateCopying(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case copyProgressMsg:
		b.progressScreen.SetProgress(msg.done, msg.total, "")
		return b, waitForCopy(msg.ch)
	case copyDoneMsg:
		for _, f := range msg.result.Failed {
			b.logger.Warn("copy failed", "source", f.Source, "destination", f.Destination, "error", f.Err)
		}
		b.logger.Info("copy finished", "copied", msg.result.Copied, "failed", len(msg.result.Failed))
		b.phase = PhaseComplete
		b.completionScreen = screens.NewCompletionScreen(msg.result, msg.destination, msg.duration)
		return b, nil
	case tea.KeyMsg:
		// A copy cannot be interrupted.
		return b, nil
	}

	model, cmd := b.progressScreen.Update(msg)
	if ps, ok := model.(*screens.ProgressScreen); ok {
		b.progressScreen = ps
	}
	return b, cmd
}

func (b *Browser) updateComplete(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := b.completionScreen.Update(msg)
	if cs, ok := model.(*screens.CompletionScreen); ok {
		b.completionScreen = cs
	}

	switch b.completionScreen.Action() {
	case screens.ResultQuit:
		return b, tea.Quit
	case screens.ResultBack:
		b.phase = PhaseSeries
		return b, nil
	}
	return b, cmd
}

func (b *Browser) showError(title string, err error, back Phase) (tea.Model, tea.Cmd) {
	b.phase = PhaseError
	b.errorBack = back
	b.errorScreen = screens.NewErrorScreen(title, err)
	return b, nil
}

func (b *Browser) updateError(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := b.errorScreen.Update(msg)
	if es, ok := model.(*screens.ErrorScreen); ok {
		b.errorScreen = es
	}

	switch b.errorScreen.Action() {
	case screens.ResultQuit:
		return b, tea.Quit
	case screens.ResultBack:
		b.phase = b.errorBack
		return b, nil
	}
	return b, cmd
}

// Phase returns the current phase.
func (b *Browser) Phase() Phase {
	return b.phase
}

// Session returns the values remembered across copies.
func (b *Browser) Session() *Session {
	return b.session
}

// Run starts the interactive browser on root.
func Run(root string, logger *slog.Logger) error {
	node, err := browse.NewRoot(root)
	if err != nil {
		return fmt.Errorf("open %s: %w", root, err)
	}

	b := NewBrowser(node, dicom.Reader{}, logger)
	p := tea.NewProgram(b, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running browser: %w", err)
	}
	return nil
}
