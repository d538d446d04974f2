package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"patchview/internal/clipboard"
	"patchview/internal/config"
	"patchview/internal/diffview"
	"patchview/internal/patch"
)

type focusPane int

const (
	focusFiles focusPane = iota
	focusDiff
)

type viewMode int

const (
	viewSplit viewMode = iota
	viewUnified
	viewRaw
)

func (v viewMode) String() string {
	switch v {
	case viewUnified:
		return config.ViewUnified
	case viewRaw:
		return config.ViewRaw
	default:
		return config.ViewSplit
	}
}

func parseViewMode(s string) viewMode {
	switch s {
	case config.ViewUnified:
		return viewUnified
	case config.ViewRaw:
		return viewRaw
	default:
		return viewSplit
	}
}

type clipboardResultMsg struct {
	err error
}

type alertTickMsg struct{}

// Options configures a Model.
type Options struct {
	Title         string
	Text          string
	View          string
	Render        diffview.Options
	FilePaneWidth int
	Clipboard     clipboard.Copier
	Logger        *slog.Logger
}

// Model is the Bubble Tea state container for the viewer.
type Model struct {
	keys   KeyMap
	focus  focusPane
	logger *slog.Logger
	copier clipboard.Copier

	title      string
	raw        string
	report     patch.Report
	mail       *patch.MailHeader
	renderOpts diffview.Options

	mode     viewMode
	diffMode viewMode

	width  int
	height int
	ready  bool

	filePaneW  int
	fileHidden bool
	fileCursor int
	fileScroll int

	collapsed map[int]bool
	rows      []diffview.DiffRow
	cursor    int
	rawCursor int
	rawCount  int
	rowStarts []int
	rowEnds   []int
	oldView   viewport.Model
	newView   viewport.Model
	dirty     bool
	helpOpen  bool

	alertMsg   string
	alertUntil time.Time
}

func NewModel(opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.Render.TabWidth <= 0 {
		opts.Render.TabWidth = 4
	}
	if opts.FilePaneWidth <= 0 {
		opts.FilePaneWidth = 36
	}

	report := patch.Inspect(opts.Text)
	mail, err := patch.ParseMailHeader(opts.Text)
	if err != nil {
		logger.Debug("no mail header", slog.String("reason", err.Error()))
		mail = nil
	}
	logger.Info("patch loaded",
		slog.String("title", opts.Title),
		slog.Int("files", len(report.Patch.Files)),
		slog.Int("dropped", len(report.Dropped)),
	)
	if report.Strict != nil {
		logger.Warn("strict parse disagrees", slog.String("error", report.Strict.Error()))
	}

	mode := parseViewMode(opts.View)
	diffMode := mode
	if diffMode == viewRaw {
		diffMode = viewSplit
	}

	m := Model{
		keys:       defaultKeyMap(),
		focus:      focusDiff,
		logger:     logger,
		copier:     opts.Clipboard,
		title:      opts.Title,
		raw:        opts.Text,
		report:     report,
		mail:       mail,
		renderOpts: opts.Render,
		mode:       mode,
		diffMode:   diffMode,
		filePaneW:  opts.FilePaneWidth,
		collapsed:  make(map[int]bool),
		rawCount:   rawLineCount(opts.Text),
		dirty:      true,
	}
	m.rebuildRows()
	m.cursor = firstRenderableRow(m.rows)
	m.oldView = viewport.New(1, 1)
	m.newView = viewport.New(1, 1)
	return m
}

func (m Model) Init() tea.Cmd {
	return alertTickCmd()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resizePanes()
		m.refreshContent()
		return m, nil

	case clipboardResultMsg:
		if msg.err != nil {
			m.logger.Error("copy failed", slog.String("error", msg.err.Error()))
			m.setAlert(fmt.Sprintf("copy failed: %v", msg.err))
			return m, nil
		}
		m.setAlert("Copied patch to clipboard.")
		return m, nil

	case alertTickMsg:
		if m.alertMsg != "" && !m.alertUntil.IsZero() && time.Now().After(m.alertUntil) {
			m.alertMsg = ""
			m.alertUntil = time.Time{}
		}
		return m, alertTickCmd()

	case tea.KeyMsg:
		m.logger.Debug("key", slog.String("key", msg.String()), slog.String("mode", m.mode.String()))
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.helpOpen = !m.helpOpen
		m.resizePanes()
		m.refreshContent()
		return m, nil

	case key.Matches(msg, m.keys.ToggleFocus):
		if m.focus == focusFiles || m.fileHidden {
			m.focus = focusDiff
		} else {
			m.focus = focusFiles
		}
		return m, nil

	case key.Matches(msg, m.keys.HideFiles):
		m.fileHidden = !m.fileHidden
		if m.fileHidden {
			m.focus = focusDiff
		}
		m.resizePanes()
		m.refreshContent()
		return m, nil

	case key.Matches(msg, m.keys.CycleView):
		if m.diffMode == viewSplit {
			m.diffMode = viewUnified
		} else {
			m.diffMode = viewSplit
		}
		m.mode = m.diffMode
		m.resizePanes()
		m.refreshContent()
		return m, nil

	case key.Matches(msg, m.keys.Raw):
		if m.mode == viewRaw {
			m.mode = m.diffMode
		} else {
			m.mode = viewRaw
		}
		m.resizePanes()
		m.refreshContent()
		return m, nil

	case key.Matches(msg, m.keys.Copy):
		return m, m.copyPatchCmd()

	case key.Matches(msg, m.keys.CollapseAll):
		m.toggleAllCollapsed()
		return m, nil
	}

	if m.focus == focusFiles {
		return m.updateFilesPane(msg)
	}
	return m.updateDiffPane(msg)
}

func (m Model) updateFilesPane(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	files := m.report.Patch.Files
	if len(files) == 0 {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		m.selectFile(m.fileCursor - 1)
	case key.Matches(msg, m.keys.Down):
		m.selectFile(m.fileCursor + 1)
	case key.Matches(msg, m.keys.Top):
		m.selectFile(0)
	case key.Matches(msg, m.keys.Bottom):
		m.selectFile(len(files) - 1)
	case key.Matches(msg, m.keys.Toggle):
		m.toggleCollapsed(m.fileCursor)
	}
	return m, nil
}

func (m Model) updateDiffPane(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.PageDown):
		m.moveCursor(max(1, m.newView.Height-1))
	case key.Matches(msg, m.keys.PageUp):
		m.moveCursor(-max(1, m.newView.Height-1))
	case key.Matches(msg, m.keys.Top):
		m.moveCursor(-m.cursorLimit())
	case key.Matches(msg, m.keys.Bottom):
		m.moveCursor(m.cursorLimit())
	case key.Matches(msg, m.keys.NextFile):
		m.jumpFile(1)
	case key.Matches(msg, m.keys.PrevFile):
		m.jumpFile(-1)
	case key.Matches(msg, m.keys.Toggle):
		if m.mode != viewRaw && m.cursor < len(m.rows) {
			m.toggleCollapsed(m.rows[m.cursor].FileIndex)
		}
	}
	return m, nil
}

func (m *Model) cursorLimit() int {
	if m.mode == viewRaw {
		return m.rawCount
	}
	return len(m.rows)
}

func (m *Model) moveCursor(delta int) {
	if m.mode == viewRaw {
		m.rawCursor = clamp(m.rawCursor+delta, 0, m.rawCount-1)
		m.dirty = true
		m.refreshContent()
		return
	}
	if len(m.rows) == 0 {
		m.cursor = 0
		return
	}
	m.cursor = clamp(m.cursor+delta, 0, len(m.rows)-1)
	m.fileCursor = m.rows[m.cursor].FileIndex
	m.ensureFileCursorVisible()
	m.dirty = true
	m.refreshContent()
}

// jumpFile moves the diff cursor to the next or previous file header.
func (m *Model) jumpFile(direction int) {
	if m.mode == viewRaw || len(m.rows) == 0 {
		return
	}
	current := m.rows[m.cursor].FileIndex
	target := current + direction
	if m.rows[m.cursor].Kind != diffview.RowFileHeader && direction < 0 {
		target = current
	}
	if target < 0 || target >= len(m.report.Patch.Files) {
		return
	}
	m.selectFile(target)
}

func (m *Model) selectFile(idx int) {
	files := m.report.Patch.Files
	if len(files) == 0 {
		return
	}
	m.fileCursor = clamp(idx, 0, len(files)-1)
	m.ensureFileCursorVisible()
	if row := diffview.FileRowIndex(m.rows, m.fileCursor); row >= 0 {
		m.cursor = row
	}
	m.dirty = true
	m.refreshContent()
}

func (m *Model) toggleCollapsed(fileIdx int) {
	if fileIdx < 0 || fileIdx >= len(m.report.Patch.Files) {
		return
	}
	m.collapsed[fileIdx] = !m.collapsed[fileIdx]
	m.rebuildRows()
	if row := diffview.FileRowIndex(m.rows, fileIdx); row >= 0 {
		m.cursor = row
	}
	m.refreshContent()
}

func (m *Model) toggleAllCollapsed() {
	files := m.report.Patch.Files
	if len(files) == 0 {
		return
	}
	collapse := false
	for i := range files {
		if !m.collapsed[i] {
			collapse = true
			break
		}
	}
	for i := range files {
		m.collapsed[i] = collapse
	}
	current := 0
	if m.cursor < len(m.rows) {
		current = m.rows[m.cursor].FileIndex
	}
	m.rebuildRows()
	if row := diffview.FileRowIndex(m.rows, current); row >= 0 {
		m.cursor = row
	}
	m.refreshContent()
}

func (m *Model) rebuildRows() {
	m.rows = diffview.BuildRows(m.report.Patch, func(i int) bool { return m.collapsed[i] })
	m.cursor = clamp(m.cursor, 0, len(m.rows)-1)
	m.dirty = true
}

func (m *Model) ensureFileCursorVisible() {
	page := m.fileListPageSize()
	if m.fileCursor < m.fileScroll {
		m.fileScroll = m.fileCursor
	}
	if m.fileCursor >= m.fileScroll+page {
		m.fileScroll = m.fileCursor - page + 1
	}
	if m.fileScroll < 0 {
		m.fileScroll = 0
	}
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.renderHeader()
	footer := lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Render(truncateLinesToWidth(m.helpText(), m.width))

	leftW, rightW := paneWidths(m.width, m.filePaneW, m.fileHidden, m.mode)
	height := m.paneContentHeight()

	var right string
	if m.mode == viewSplit {
		oldW, newW := splitRightPanes(rightW)
		right = lipgloss.JoinHorizontal(lipgloss.Top,
			m.renderDiffPane(oldW, height, "Old", m.oldView.View(), false),
			m.renderDiffPane(newW, height, "New", m.newView.View(), true),
		)
	} else {
		label := "Diff"
		if m.mode == viewRaw {
			label = "Raw"
		}
		right = m.renderDiffPane(rightW, height, label, m.newView.View(), true)
	}

	content := right
	if !m.fileHidden {
		content = lipgloss.JoinHorizontal(lipgloss.Top, m.renderFilesPane(leftW, height), right)
	}

	parts := []string{header, content}
	if m.alertMsg != "" {
		parts = append(parts, m.renderAlert())
	}
	parts = append(parts, footer)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderHeader() string {
	p := m.report.Patch
	subject := p.Header.Subject
	author := p.Header.From
	date := p.Header.Date
	if m.mail != nil {
		if m.mail.Title != "" {
			subject = m.mail.Title
		}
		if a := m.mail.Author(); a != "" {
			author = a
		}
		if !m.mail.AuthorDate.IsZero() {
			date = m.mail.AuthorDate.Format("2006-01-02 15:04 -0700")
		}
	}

	title := "patchview"
	if m.title != "" {
		title += ": " + m.title
	}
	lines := []string{lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).Render(title)}
	if subject != "" {
		lines = append(lines, lipgloss.NewStyle().Bold(true).Render(subject))
	}
	var meta []string
	if author != "" {
		meta = append(meta, author)
	}
	if date != "" {
		meta = append(meta, date)
	}
	if m.mail != nil && m.mail.SHA != "" {
		meta = append(meta, shortSHA(m.mail.SHA))
	}
	if len(meta) > 0 {
		lines = append(lines, lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Render(strings.Join(meta, "  ·  ")))
	}
	lines = append(lines, m.summaryLine())

	for i, l := range lines {
		lines[i] = ansi.Truncate(l, max(1, m.width), "…")
	}
	return strings.Join(lines, "\n")
}

func (m Model) summaryLine() string {
	p := m.report.Patch
	if p.Empty() {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Render("No changes found in this patch.")
	}
	total := p.TotalStats()
	parts := []string{
		fmt.Sprintf("%d file(s)", len(p.Files)),
		lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render(fmt.Sprintf("+%d", total.Additions)),
		lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Render(fmt.Sprintf("-%d", total.Deletions)),
	}
	if n := len(m.report.Dropped); n > 0 {
		parts = append(parts, lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Render(fmt.Sprintf("%d ignored line(s)", n)))
	}
	return strings.Join(parts, "  ")
}

func (m Model) helpText() string {
	if !m.helpOpen {
		return "tab focus | j/k move | n/p file | enter collapse | c all | v split/unified | r raw | y copy | z files | ? help | q quit"
	}
	return strings.Join([]string{
		"Global: q quit, tab switch focus, v split/unified, r raw/diff, y copy patch, z hide file list, c collapse/expand all, ? toggle help",
		"Files pane: j/k move, g/G top/bottom, enter/space collapse or expand the file",
		"Diff pane: j/k move cursor, ctrl-f/ctrl-b page, g/G top/bottom, n/p next/prev file, enter/space collapse file",
	}, "\n")
}

func (m Model) renderAlert() string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("220")).
		Bold(true).
		Render(ansi.Truncate(m.alertMsg, max(1, m.width), "…"))
}

func (m Model) renderFilesPane(width, height int) string {
	borderColor := lipgloss.Color("245")
	if m.focus == focusFiles {
		borderColor = lipgloss.Color("39")
	}
	style := lipgloss.NewStyle().
		Width(max(1, width)).
		Height(max(1, height)).
		Border(lipgloss.NormalBorder()).
		BorderForeground(borderColor)

	files := m.report.Patch.Files
	lines := []string{lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("Files (%d)", len(files))), ""}
	page := m.fileListPageSize()
	end := min(len(files), m.fileScroll+page)
	for i := m.fileScroll; i < end; i++ {
		f := files[i]
		marker := "▾"
		if m.collapsed[i] {
			marker = "▸"
		}
		stats := fmt.Sprintf(" +%d -%d", f.Stats.Additions, f.Stats.Deletions)
		name := ansi.Truncate(marker+" "+f.DisplayPath(), max(1, width-len(stats)), "…")
		line := name + strings.Repeat(" ", max(0, width-ansi.StringWidth(name)-len(stats))) + stats
		if i == m.fileCursor {
			line = lipgloss.NewStyle().Reverse(m.focus == focusFiles).Bold(true).Render(line)
		}
		lines = append(lines, line)
	}
	return style.Render(strings.Join(lines, "\n"))
}

func (m Model) renderDiffPane(width, height int, label, body string, withRightBorder bool) string {
	borderColor := lipgloss.Color("245")
	if m.focus == focusDiff {
		borderColor = lipgloss.Color("39")
	}
	paneStyle := lipgloss.NewStyle().
		Width(max(1, width)).
		Height(max(1, height)).
		Border(lipgloss.NormalBorder(), true, withRightBorder, true, true).
		BorderForeground(borderColor)

	title := fmt.Sprintf("%s [%s]", label, m.mode.String())
	if m.mode != viewRaw && m.cursor < len(m.rows) && m.rows[m.cursor].Path != "" {
		title = fmt.Sprintf("%s: %s [%s]", label, m.rows[m.cursor].Path, m.mode.String())
	}
	innerW := max(1, width)
	header := lipgloss.NewStyle().Bold(true).Width(innerW).MaxWidth(innerW).Render(title)
	return paneStyle.Render(header + "\n\n" + body)
}

func (m *Model) paneContentHeight() int {
	header := lipgloss.Height(m.renderHeader())
	footer := lineCount(truncateLinesToWidth(m.helpText(), m.width))
	alert := 0
	if m.alertMsg != "" {
		alert = 1
	}
	// Pane borders add two more rows.
	return max(1, m.height-header-footer-alert-2)
}

func (m *Model) fileListPageSize() int {
	if m.height <= 0 {
		return 1
	}
	return max(1, m.paneContentHeight()-2)
}

func (m *Model) resizePanes() {
	_, rightW := paneWidths(m.width, m.filePaneW, m.fileHidden, m.mode)
	viewH := max(1, m.paneContentHeight()-2)
	if m.mode == viewSplit {
		oldW, newW := splitRightPanes(rightW)
		m.oldView.Width = max(1, oldW)
		m.newView.Width = max(1, newW)
	} else {
		m.oldView.Width = 1
		m.newView.Width = max(1, rightW)
	}
	m.oldView.Height = viewH
	m.newView.Height = viewH
	m.dirty = true
}

func (m *Model) refreshContent() {
	if !m.dirty {
		return
	}
	m.dirty = false

	switch m.mode {
	case viewRaw:
		lines := diffview.RenderRaw(m.raw, m.newView.Width, m.rawCursor, m.renderOpts.TabWidth)
		m.newView.SetContent(strings.Join(lines, "\n"))
		m.setCursorRange(m.rawCursor, m.rawCursor)

	case viewUnified:
		if len(m.rows) == 0 {
			m.newView.SetContent("No changes.")
			return
		}
		out := diffview.RenderUnified(m.rows, m.newView.Width, m.cursor, m.renderOpts)
		m.newView.SetContent(strings.Join(out.Lines, "\n"))
		m.rowStarts = out.RowStarts
		end := len(out.Lines) - 1
		if m.cursor+1 < len(out.RowStarts) {
			end = out.RowStarts[m.cursor+1] - 1
		}
		m.setCursorRange(out.RowStarts[m.cursor], end)

	default:
		if len(m.rows) == 0 {
			m.oldView.SetContent("No changes.")
			m.newView.SetContent("No changes.")
			return
		}
		out := diffview.RenderSplit(m.rows, m.oldView.Width, m.newView.Width, m.cursor, m.renderOpts)
		m.oldView.SetContent(strings.Join(out.OldLines, "\n"))
		m.newView.SetContent(strings.Join(out.NewLines, "\n"))
		m.setCursorRange(m.cursor, m.cursor)
	}
}

// setCursorRange scrolls both viewports so visual lines [start, end] are shown.
func (m *Model) setCursorRange(start, end int) {
	visible := m.newView.Height
	if visible <= 0 {
		return
	}
	top := m.newView.YOffset
	if start < top {
		top = start
	}
	if end > top+visible-1 {
		top = end - visible + 1
	}
	m.newView.SetYOffset(top)
	m.oldView.SetYOffset(top)
}

func (m Model) copyPatchCmd() tea.Cmd {
	text := m.raw
	copier := m.copier
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return clipboardResultMsg{err: copier.CopyText(ctx, text)}
	}
}

func alertTickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(time.Time) tea.Msg {
		return alertTickMsg{}
	})
}

func (m *Model) setAlert(msg string) {
	m.alertMsg = msg
	m.alertUntil = time.Now().Add(3 * time.Second)
}

func firstRenderableRow(rows []diffview.DiffRow) int {
	for i, r := range rows {
		if !r.IsHeader() {
			return i
		}
	}
	return 0
}

func rawLineCount(text string) int {
	if text == "" {
		return 0
	}
	n := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		n++
	}
	return n
}

func shortSHA(sha string) string {
	if len(sha) > 12 {
		return sha[:12]
	}
	return sha
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return min(max(v, lo), hi)
}

func truncateLinesToWidth(text string, width int) string {
	if width <= 0 {
		return ""
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = ansi.Truncate(line, width, "")
	}
	return strings.Join(lines, "\n")
}

func lineCount(text string) int {
	if text == "" {
		return 0
	}
	return strings.Count(text, "\n") + 1
}
