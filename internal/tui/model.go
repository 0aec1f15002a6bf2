// Package tui is the keyboard front end: a bubbletea program that drives a
// session from the terminal.
package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"voice-sheet/internal/gateway"
	"voice-sheet/internal/session"
)

// Status keeps the latest session notice for the status line. Pass it to
// the session as its Notifier.
type Status struct {
	last session.Notice
}

func NewStatus() *Status { return &Status{} }

func (st *Status) Notify(n session.Notice) { st.last = n }

func (st *Status) Last() session.Notice { return st.last }

type Options struct {
	VisibleRows int
	VisibleCols int

	// SaveName is the workbook name used by ctrl+s. Empty means the
	// session default.
	SaveName string
}

type Model struct {
	ctx    context.Context
	s      *session.Session
	gw     gateway.Gateway
	status *Status
	opts   Options

	input textinput.Model
	keys  keyMap
	help  help.Model

	quitPrompt bool
}

type savedMsg struct {
	req session.SaveRequest
	res gateway.CreateResult
	err error
}

// New builds the editor model for an open session. status must be the
// Notifier the session was created with.
func New(ctx context.Context, s *session.Session, gw gateway.Gateway, status *Status, opts Options) Model {
	if opts.VisibleRows <= 0 {
		opts.VisibleRows = 15
	}
	if opts.VisibleCols <= 0 {
		opts.VisibleCols = 7
	}
	ti := textinput.New()
	ti.Placeholder = "value"
	ti.CharLimit = 256
	ti.Focus()
	return Model{
		ctx:    ctx,
		s:      s,
		gw:     gw,
		status: status,
		opts:   opts,
		input:  ti,
		keys:   defaultKeyMap(),
		help:   help.New(),
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case savedMsg:
		_ = m.s.CompleteSave(msg.req, msg.res, msg.err)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			if m.s.ChangeCount() > 0 && !m.quitPrompt {
				m.quitPrompt = true
				m.status.Notify(session.Notice{
					Level:   session.LevelWarning,
					Message: fmt.Sprintf("%d unsaved edits stay in storage; press again to quit", m.s.ChangeCount()),
				})
				return m, nil
			}
			return m, tea.Quit
		}
		m.quitPrompt = false
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Commit):
		m.s.SetBuffer(m.input.Value())
		if err := m.s.Commit(); err != nil {
			m.fail(err)
		}
	case key.Matches(msg, m.keys.Skip):
		if !m.s.Skip() {
			m.status.Notify(session.Notice{Level: session.LevelInfo, Message: "last cell reached"})
		}
	case key.Matches(msg, m.keys.Back):
		if !m.s.Back() {
			m.status.Notify(session.Notice{Level: session.LevelInfo, Message: "first cell reached"})
		}
	case key.Matches(msg, m.keys.Reset):
		if err := m.s.ResetCurrentCell(); err != nil {
			m.fail(err)
		}
	case key.Matches(msg, m.keys.Speak):
		if _, err := m.s.HandleRecognizedText(m.input.Value(), true); err != nil {
			m.fail(err)
		}
	case key.Matches(msg, m.keys.Level1):
		m.cycle(1)
	case key.Matches(msg, m.keys.Level2):
		m.cycle(2)
	case key.Matches(msg, m.keys.Level3):
		m.cycle(3)
	case key.Matches(msg, m.keys.Save):
		req, err := m.s.PrepareSave(m.opts.SaveName)
		if err != nil {
			m.fail(err)
			return m, nil
		}
		return m, m.save(req)
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.s.SetBuffer(m.input.Value())
		return m, cmd
	}
	m.input.SetValue(m.s.Buffer())
	m.input.CursorEnd()
	return m, nil
}

// save writes the workbook off the update loop and reports back through a
// savedMsg.
func (m Model) save(req session.SaveRequest) tea.Cmd {
	ctx, gw := m.ctx, m.gw
	return func() tea.Msg {
		res, err := gw.CreateSheet(ctx, req.FileName, req.Sheets)
		return savedMsg{req: req, res: res, err: err}
	}
}

// cycle selects the option after the current one on the given filter level.
func (m Model) cycle(level int) {
	f := m.s.Filter()
	var opts []string
	var cur string
	switch level {
	case 1:
		opts, cur = f.Level1, f.Selection.Level1
	case 2:
		opts, cur = f.Level2, f.Selection.Level2
	default:
		opts, cur = f.Level3, f.Selection.Level3
	}
	if len(opts) == 0 {
		m.status.Notify(session.Notice{Level: session.LevelInfo, Message: "no options at this level"})
		return
	}
	next := opts[0]
	for i, o := range opts {
		if o == cur && i+1 < len(opts) {
			next = opts[i+1]
			break
		}
	}
	switch level {
	case 1:
		m.s.SelectLevel1(next)
	case 2:
		m.s.SelectLevel2(next)
	default:
		m.s.SelectLevel3(next)
	}
}

func (m Model) fail(err error) {
	m.status.Notify(session.Notice{Level: session.LevelError, Message: err.Error()})
}
