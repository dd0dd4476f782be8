package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/jamesainslie/clipr/pkg/clipr/config"
	"github.com/jamesainslie/clipr/pkg/clipr/history"
	"github.com/jamesainslie/clipr/pkg/clipr/logging"
	"github.com/jamesainslie/clipr/pkg/clipr/selection"
	"github.com/jamesainslie/clipr/pkg/clipr/session"
)

// tickInterval paces preview polling and reload checks.
const tickInterval = 100 * time.Millisecond

// statusTTL is how long a status message stays visible.
const statusTTL = 4 * time.Second

type mode int

const (
	modeNormal mode = iota
	modeSearch
	modeRegister
	modeConfirmClear
)

// registerOp is the action waiting for a register key.
type registerOp int

const (
	opSetTemp registerOp = iota
	opSetPerm
	opGotoTemp
	opGotoPerm
)

func (op registerOp) prompt() string {
	switch op {
	case opSetTemp:
		return "Temporary register key:"
	case opSetPerm:
		return "Permanent register key:"
	case opGotoTemp:
		return "Go to temporary register:"
	default:
		return "Go to permanent register:"
	}
}

// Model is the Bubble Tea model for the clipboard browser.
type Model struct {
	sess *session.Session
	keys keyMap

	help    help.Model
	input   textinput.Model
	spinner spinner.Model

	mode  mode
	op    registerOp
	count int

	logs logView

	offset  int
	width   int
	height  int
	compact bool

	status     string
	statusErr  bool
	statusAt   time.Time
	lastLogged time.Time
}

// NewModel creates a model over sess.
func NewModel(sess *session.Session) Model {
	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "search"
	ti.CharLimit = 256

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(accentColor)

	return Model{
		sess:    sess,
		keys:    defaultKeyMap(),
		help:    help.New(),
		input:   ti,
		spinner: s,
		width:   80,
		height:  24,
		compact: sess.Config().General.ViewMode != config.ViewComfortable,
	}
}

// tickMsg drives polling of the session.
type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init starts the tick loop and the spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tick(), m.spinner.Tick)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ensureVisible()
		return m, nil

	case tickMsg:
		m.onTick(time.Time(msg))
		return m, tick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		var cmd tea.Cmd
		switch m.mode {
		case modeSearch:
			cmd = m.handleSearchKey(msg)
		case modeRegister:
			m.handleRegisterKey(msg)
		case modeConfirmClear:
			m.handleConfirmKey(msg)
		default:
			if m.logs.open && m.handleLogKey(msg) {
				break
			}
			cmd = m.handleKey(msg)
		}
		m.ensureVisible()
		return m, cmd
	}
	return m, nil
}

// onTick collects decoded previews, applies config reloads and surfaces
// new warnings from the log buffer.
func (m *Model) onTick(now time.Time) {
	res := m.sess.Tick()
	switch {
	case res.ReloadErr != nil:
		m.setError(res.ReloadErr)
	case res.Reloaded:
		m.compact = m.sess.Config().General.ViewMode != config.ViewComfortable
		m.setStatus("Configuration reloaded")
	}

	if buf := logging.GetLogBuffer(); buf != nil {
		if e, ok := buf.Latest(logging.LevelWarn); ok && e.Time.After(m.lastLogged) {
			m.lastLogged = e.Time
			if res.ReloadErr == nil {
				m.status = e.Message
				m.statusErr = true
				m.statusAt = now
			}
		}
	}
	if m.status != "" && now.Sub(m.statusAt) > statusTTL {
		m.status = ""
	}
}

func (m *Model) setStatus(format string, args ...any) {
	m.status = fmt.Sprintf(format, args...)
	m.statusErr = false
	m.statusAt = time.Now()
}

func (m *Model) setError(err error) {
	m.status = err.Error()
	m.statusErr = true
	m.statusAt = time.Now()
}

// handleKey handles normal-mode keys.
func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if d, ok := digit(msg); ok && (m.count > 0 || d > 0) {
		m.count = min(m.count*10+d, 1_000_000)
		return nil
	}
	count := m.count
	m.count = 0
	n := max(count, 1)
	page := m.visibleRows()

	switch {
	case msg.Type == tea.KeyEsc && m.sess.View().Query() != "":
		m.input.SetValue("")
		m.sess.SetQuery("")
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.sess.MoveUp(n)
	case key.Matches(msg, m.keys.Down):
		m.sess.MoveDown(n)
	case key.Matches(msg, m.keys.HalfPageUp):
		m.sess.MoveUp(max(page/2, 1))
	case key.Matches(msg, m.keys.HalfPageDown):
		m.sess.MoveDown(max(page/2, 1))
	case key.Matches(msg, m.keys.PageUp):
		m.sess.MoveUp(page)
	case key.Matches(msg, m.keys.PageDown):
		m.sess.MoveDown(page)
	case key.Matches(msg, m.keys.Top):
		m.sess.Top()
	case key.Matches(msg, m.keys.Bottom):
		if count > 0 {
			m.sess.JumpTo(count - 1)
		} else {
			m.sess.Bottom()
		}

	case key.Matches(msg, m.keys.Copy):
		id, err := m.sess.CopySelected()
		if err != nil {
			m.setError(err)
			return nil
		}
		if m.sess.ExitOnSelect() {
			return tea.Quit
		}
		m.setStatus("Copied entry %d", id)
	case key.Matches(msg, m.keys.Search):
		m.mode = modeSearch
		m.input.SetValue(m.sess.View().Query())
		m.input.CursorEnd()
		return m.input.Focus()
	case key.Matches(msg, m.keys.CaseMode):
		m.setStatus("Search mode: %s", m.sess.ToggleSearchMode())
	case key.Matches(msg, m.keys.Pin):
		pinned, err := m.sess.TogglePin()
		if err != nil {
			m.setError(err)
		} else if pinned {
			m.setStatus("Pinned")
		} else {
			m.setStatus("Unpinned")
		}
	case key.Matches(msg, m.keys.Delete):
		if err := m.sess.DeleteSelected(); err != nil {
			if errors.Is(err, history.ErrCannotDelete) {
				m.setError(errors.New("entry holds a permanent register; remove it first"))
			} else {
				m.setError(err)
			}
		}
	case key.Matches(msg, m.keys.Clear):
		m.mode = modeConfirmClear
	case key.Matches(msg, m.keys.SetTemp):
		m.awaitRegister(opSetTemp)
	case key.Matches(msg, m.keys.SetPerm):
		m.awaitRegister(opSetPerm)
	case key.Matches(msg, m.keys.GotoTemp):
		m.awaitRegister(opGotoTemp)
	case key.Matches(msg, m.keys.GotoPerm):
		m.awaitRegister(opGotoPerm)
	case key.Matches(msg, m.keys.FilterTemp):
		m.sess.ToggleFilter(selection.FilterTemporary)
	case key.Matches(msg, m.keys.FilterPerm):
		m.sess.ToggleFilter(selection.FilterPermanent)
	case key.Matches(msg, m.keys.FilterPin):
		m.sess.ToggleFilter(selection.FilterPinned)
	case key.Matches(msg, m.keys.ViewMode):
		m.compact = !m.compact
	case key.Matches(msg, m.keys.Logs):
		m.logs.toggle()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return nil
}

// handleLogKey handles keys owned by the open log view. It reports false
// for keys that fall through to the list.
func (m *Model) handleLogKey(msg tea.KeyMsg) bool {
	rows := max(m.bodyHeight()-4, 1)
	total := len(filterEntriesByLevel(bufferedLogs(), m.logs.level))
	switch msg.String() {
	case "L", "esc":
		m.logs.toggle()
	case "1", "2", "3", "4":
		m.logs.setLevel(logging.Level(msg.Runes[0] - '1'))
	case "J", "shift+down":
		m.logs.scroll(1, total, rows)
	case "K", "shift+up":
		m.logs.scroll(-1, total, rows)
	default:
		return false
	}
	return true
}

func digit(msg tea.KeyMsg) (int, bool) {
	if msg.Type != tea.KeyRunes || len(msg.Runes) != 1 {
		return 0, false
	}
	r := msg.Runes[0]
	if r < '0' || r > '9' {
		return 0, false
	}
	return int(r - '0'), true
}

func (m *Model) awaitRegister(op registerOp) {
	if _, ok := m.sess.Selected(); !ok && (op == opSetTemp || op == opSetPerm) {
		m.setError(session.ErrNoSelection)
		return
	}
	m.mode = modeRegister
	m.op = op
}

// handleRegisterKey completes a pending register action.
func (m *Model) handleRegisterKey(msg tea.KeyMsg) {
	m.mode = modeNormal
	if msg.Type != tea.KeyRunes || len(msg.Runes) != 1 {
		return
	}
	k := msg.Runes[0]
	if !history.ValidKey(k) {
		m.setError(fmt.Errorf("invalid register key %q", k))
		return
	}

	regs := m.sess.Ledger().Registers()
	switch m.op {
	case opSetTemp, opSetPerm:
		toggle, kind := m.sess.ToggleTemporary, "temporary"
		if m.op == opSetPerm {
			toggle, kind = m.sess.TogglePermanent, "permanent"
		}
		on, err := toggle(k)
		switch {
		case err != nil:
			m.setError(err)
		case on:
			m.setStatus("Assigned %s register '%c'", kind, k)
		default:
			m.setStatus("Removed %s register '%c'", kind, k)
		}
	case opGotoTemp, opGotoPerm:
		lookup := regs.Temporary
		if m.op == opGotoPerm {
			lookup = regs.Permanent
		}
		id, ok := lookup(k)
		if !ok {
			m.setError(fmt.Errorf("register '%c' is empty", k))
			return
		}
		if !m.selectID(id) {
			m.setError(fmt.Errorf("register '%c' is hidden by the current filter", k))
		}
	}
}

// selectID moves the cursor to id through the session so a preview is
// requested.
func (m *Model) selectID(id uint64) bool {
	for i, visible := range m.sess.View().VisibleIDs() {
		if visible == id {
			m.sess.JumpTo(i)
			return true
		}
	}
	return false
}

func (m *Model) handleConfirmKey(msg tea.KeyMsg) {
	m.mode = modeNormal
	if msg.String() != "y" {
		m.setStatus("Cancelled")
		return
	}
	m.setStatus("Cleared %d entries", m.sess.ClearUnpinned())
}

// handleSearchKey edits the query; the view updates as the user types.
func (m *Model) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "ctrl+c":
		m.input.SetValue("")
		m.input.Blur()
		m.sess.SetQuery("")
		m.mode = modeNormal
		return nil
	case "enter":
		m.input.Blur()
		m.mode = modeNormal
		return nil
	case "up", "ctrl+p":
		m.sess.MoveUp(1)
		return nil
	case "down", "ctrl+n":
		m.sess.MoveDown(1)
		return nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.sess.SetQuery(m.input.Value())
	return cmd
}

// rowHeight is the number of lines per entry.
func (m Model) rowHeight() int {
	if m.compact {
		return 1
	}
	return 2
}

// bodyHeight is the number of lines available for the list.
func (m Model) bodyHeight() int {
	// Border (2), header (1), divider (1), footer lines (2).
	return max(m.height-6, 1)
}

// visibleRows is the number of entries that fit in the list.
func (m Model) visibleRows() int {
	return max(m.bodyHeight()/m.rowHeight(), 1)
}

// ensureVisible scrolls so the cursor is on screen.
func (m *Model) ensureVisible() {
	cursor := m.sess.View().Cursor()
	rows := m.visibleRows()
	if cursor < m.offset {
		m.offset = cursor
	}
	if cursor >= m.offset+rows {
		m.offset = cursor - rows + 1
	}
	m.offset = max(min(m.offset, m.sess.View().Len()-rows), 0)
}

// View renders the browser.
func (m Model) View() string {
	contentWidth := max(m.width-4, 20)
	listWidth := max(contentWidth*45/100, 24)
	previewWidth := max(contentWidth-listWidth-1, 10)

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(renderDivider(contentWidth))
	b.WriteString("\n")

	body := m.bodyHeight()
	list := lipgloss.NewStyle().Width(listWidth).Height(body).MaxHeight(body).Render(m.renderList(listWidth))
	pane := previewBoxStyle.Width(previewWidth - 2).Height(body - 2).MaxHeight(body).Render(m.renderPreviewPane(previewWidth-4, body-2))
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, list, " ", pane))
	b.WriteString("\n")
	b.WriteString(m.renderFooter(contentWidth))

	return outerBoxStyle.Width(m.width - 2).Render(b.String())
}

func (m Model) renderHeader() string {
	l := m.sess.Ledger()
	stats := l.Stats()
	parts := []string{
		fmt.Sprintf("%d/%d shown", m.sess.View().Len(), stats.Total),
		fmt.Sprintf("%d pinned", stats.Pinned),
		humanize.IBytes(uint64(stats.Bytes)),
	}
	if f := m.sess.View().Filter(); f != selection.FilterNone {
		parts = append(parts, "filter: "+f.String())
	}
	parts = append(parts, m.sess.SearchMode().String())
	return " " + titleStyle.Render("CLIPR") + mutedTextStyle.Render("  "+strings.Join(parts, "  •  "))
}

func (m Model) renderList(width int) string {
	entries := m.sess.Visible()
	if len(entries) == 0 {
		if m.sess.View().Query() != "" {
			return mutedTextStyle.Render("No matches")
		}
		return mutedTextStyle.Render("No clipboard history yet.\nRun 'clipr listen' to start capturing.")
	}

	cursor := m.sess.View().Cursor()
	end := min(m.offset+m.visibleRows(), len(entries))
	lines := make([]string, 0, (end-m.offset)*m.rowHeight())
	for i := m.offset; i < end; i++ {
		lines = append(lines, m.renderRow(i, entries[i], i == cursor, width)...)
	}
	return strings.Join(lines, "\n")
}

// renderRow renders one entry as one line, plus a detail line in
// comfortable mode.
func (m Model) renderRow(i int, e *history.Entry, selected bool, width int) []string {
	pointer := "  "
	if selected {
		pointer = cursorStyle.Render("▸ ")
	}

	var marks strings.Builder
	if e.Pinned {
		marks.WriteString(pinStyle.Render("*"))
	}
	if regs := e.TemporaryRegisters().String(); regs != "" {
		marks.WriteString(temporaryRegisterStyle.Render("(" + regs + ")"))
	}
	if regs := e.PermanentRegisters().String(); regs != "" {
		marks.WriteString(permanentRegisterStyle.Render("<" + regs + ">"))
	}
	if marks.Len() > 0 {
		marks.WriteString(" ")
	}
	name := ""
	if e.Name != "" {
		name = nameStyle.Render(e.Name) + " "
	}

	prefix := pointer + indexStyle.Render(fmt.Sprintf("%d", i+1)) + " " + kindStyle.Render(e.Content.Kind.String()) + marks.String() + name
	room := max(width-lipgloss.Width(prefix), 4)
	text := truncate(e.Content.Preview(0), room)

	style := normalItemStyle
	if selected {
		style = selectedItemStyle
	}
	lines := []string{prefix + style.Render(text)}
	if !m.compact {
		detail := fmt.Sprintf("%s  %s", humanize.Time(e.Timestamp), humanize.IBytes(uint64(e.Content.Size())))
		if e.Description != "" {
			detail += "  " + e.Description
		}
		lines = append(lines, "        "+mutedTextStyle.Render(truncate(detail, max(width-8, 4))))
	}
	return lines
}

func (m Model) renderPreviewPane(width, height int) string {
	if m.logs.open {
		return renderLogView(bufferedLogs(), m.logs, width, height)
	}
	e, _ := m.sess.Selected()
	img, _ := m.sess.Preview()
	return renderPreview(previewState{
		entry:    e,
		image:    img,
		pending:  m.sess.PreviewPending(),
		spinner:  m.spinner.View(),
		metadata: m.sess.Config().General.ShowPreviewMetadata,
	}, width, height)
}

func (m Model) renderFooter(width int) string {
	var top string
	switch m.mode {
	case modeSearch:
		top = m.input.View()
	case modeRegister:
		top = keyStyle.Render(m.op.prompt()) + " " + keyDescStyle.Render("(esc to cancel)")
	case modeConfirmClear:
		top = warningTextStyle.Render("Clear all unpinned entries without registers? [y/N]")
	default:
		switch {
		case m.status != "" && m.statusErr:
			top = errorTextStyle.Render(truncate(m.status, width))
		case m.status != "":
			top = successTextStyle.Render(truncate(m.status, width))
		case m.sess.View().Query() != "":
			top = mutedTextStyle.Render("/" + m.sess.View().Query())
		case m.count > 0:
			top = mutedTextStyle.Render(fmt.Sprintf("%d", m.count))
		}
	}
	return top + "\n" + m.help.View(m.keys)
}

// Run starts the TUI on sess and blocks until the user quits.
func Run(sess *session.Session) error {
	p := tea.NewProgram(NewModel(sess), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
