package main

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
)

const (
	toastTTL  = 4 * time.Second
	maxToasts = 3

	headerLines = 3
	footerLines = 2 + maxToasts
)

type focusArea int

const (
	focusInput focusArea = iota
	focusResults
)

type toastLevel int

const (
	toastWarning toastLevel = iota
	toastInfo
	toastSuccess
	toastError
)

type toast struct {
	id    int
	level toastLevel
	text  string
}

type fetchDoneMsg struct {
	req  FetchRequest
	page ResultPage
	err  error
}

type toastExpiredMsg struct {
	id int
}

// App is the root Bubble Tea model. It is the Renderer, Notifier,
// PaginationTrigger and ScrollToTop of its SearchSession; those callbacks run
// inside session calls and only record state, they never call back into the
// session.
type App struct {
	ctx      context.Context
	session  *SearchSession
	provider string
	margin   int

	input   textinput.Model
	results viewport.Model
	spinner spinner.Model
	styles  *Styles
	focus   focusArea

	items    []ImageData
	inflight FetchRequest

	armed        bool
	sentinelSeen bool
	showTop      bool

	toasts       []toast
	toastSeq     int
	pendingToast []int

	width  int
	height int
	log    zerolog.Logger
}

func NewApp(ctx context.Context, cfg *Config, fetcher ResultsFetcher) *App {
	ti := textinput.New()
	ti.Placeholder = "Search images..."
	ti.Prompt = "🔍 "
	ti.CharLimit = 100
	ti.Width = 40
	ti.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot

	a := &App{
		ctx:      ctx,
		provider: cfg.Provider,
		margin:   cfg.Trigger.Margin,
		input:    ti,
		results:  viewport.New(80, 10),
		spinner:  s,
		styles:   NewStyles(),
		focus:    focusInput,
		log:      NewLogger("ui"),
	}
	a.session = NewSearchSession(cfg.PerPage, Ports{
		Fetcher:   fetcher,
		Renderer:  a,
		Notify:    a,
		Trigger:   a,
		ScrollTop: a,
	})
	return a
}

func (a *App) Session() *SearchSession {
	return a.session
}

func (a *App) Init() tea.Cmd {
	return textinput.Blink
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.resize(msg.Width, msg.Height)
	case tea.KeyMsg:
		cmds = append(cmds, a.handleKey(msg))
	case fetchDoneMsg:
		a.session.Complete(msg.req, msg.page, msg.err)
	case toastExpiredMsg:
		a.dropToast(msg.id)
	case spinner.TickMsg:
		if a.session.State().Fetching {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	default:
		var cmd tea.Cmd
		a.results, cmd = a.results.Update(msg)
		cmds = append(cmds, cmd)
	}

	cmds = append(cmds, a.checkSentinel(), a.flushToasts())
	return a, tea.Batch(cmds...)
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		return tea.Quit
	}

	if a.focus == focusInput {
		switch msg.String() {
		case "enter":
			req, outcome := a.session.BeginQuery(a.input.Value())
			if outcome != Accepted {
				a.log.Debug().Stringer("outcome", outcome).Msg("query rejected")
				return nil
			}
			return tea.Batch(a.setFocus(focusResults), a.startFetch(req))
		case "tab", "esc":
			return a.setFocus(focusResults)
		}
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)
		return cmd
	}

	switch msg.String() {
	case "q":
		return tea.Quit
	case "/", "tab", "esc":
		return a.setFocus(focusInput)
	case "t":
		if a.showTop {
			a.results.GotoTop()
			a.Hide()
		}
		return nil
	case "r":
		req, outcome := a.session.BeginRetry()
		if outcome != Accepted {
			return nil
		}
		return a.startFetch(req)
	}

	var cmd tea.Cmd
	a.results, cmd = a.results.Update(msg)
	return cmd
}

func (a *App) setFocus(f focusArea) tea.Cmd {
	a.focus = f
	if f == focusInput {
		return a.input.Focus()
	}
	a.input.Blur()
	return nil
}

func (a *App) startFetch(req FetchRequest) tea.Cmd {
	a.inflight = req
	session, ctx := a.session, a.ctx
	fetch := func() tea.Msg {
		page, err := session.Fetch(ctx, req)
		return fetchDoneMsg{req: req, page: page, err: err}
	}
	return tea.Batch(fetch, a.spinner.Tick)
}

// checkSentinel fires the pagination signal when the armed sentinel enters
// the visible part of the list.
func (a *App) checkSentinel() tea.Cmd {
	if !a.armed || !a.sentinelVisible() {
		a.sentinelSeen = false
		return nil
	}
	if a.sentinelSeen {
		return nil
	}
	a.sentinelSeen = true

	req, outcome := a.session.BeginNextPage()
	if outcome != Accepted {
		a.log.Debug().Stringer("outcome", outcome).Msg("pagination signal rejected")
		return nil
	}
	return a.startFetch(req)
}

func (a *App) sentinelVisible() bool {
	if len(a.items) == 0 || a.results.Height <= 0 {
		return false
	}
	return a.results.YOffset+a.results.Height >= a.results.TotalLineCount()-a.margin
}

func (a *App) resize(width, height int) {
	a.width = width
	a.height = height
	a.input.Width = max(width-4, 10)
	a.results.Width = width
	a.results.Height = max(height-headerLines-footerLines, 1)
	a.refreshResults()
}

func (a *App) refreshResults() {
	a.results.SetContent(renderCards(a.items, a.results.Width, a.styles))
}

func (a *App) Append(items []ImageData) {
	a.items = append(a.items, items...)
	a.refreshResults()
}

func (a *App) Clear() {
	a.items = nil
	a.refreshResults()
	a.results.GotoTop()
}

// Arm starts observing the sentinel again. If it is already visible the
// next check fires.
func (a *App) Arm() {
	a.armed = true
	a.sentinelSeen = false
}

func (a *App) Disarm() {
	a.armed = false
}

func (a *App) Show() {
	a.showTop = true
}

func (a *App) Hide() {
	a.showTop = false
}

func (a *App) Warning(msg string)      { a.pushToast(toastWarning, msg) }
func (a *App) Info(msg string)         { a.pushToast(toastInfo, msg) }
func (a *App) Success(msg string)      { a.pushToast(toastSuccess, msg) }
func (a *App) Error(msg string)        { a.pushToast(toastError, msg) }
func (a *App) NoResults(msg string)    { a.pushToast(toastError, msg) }
func (a *App) EndOfResults(msg string) { a.pushToast(toastInfo, msg) }

func (a *App) pushToast(level toastLevel, text string) {
	a.toastSeq++
	a.toasts = append(a.toasts, toast{id: a.toastSeq, level: level, text: text})
	if len(a.toasts) > maxToasts {
		a.toasts = a.toasts[len(a.toasts)-maxToasts:]
	}
	a.pendingToast = append(a.pendingToast, a.toastSeq)
}

func (a *App) dropToast(id int) {
	for i, t := range a.toasts {
		if t.id == id {
			a.toasts = append(a.toasts[:i], a.toasts[i+1:]...)
			return
		}
	}
}

func (a *App) flushToasts() tea.Cmd {
	if len(a.pendingToast) == 0 {
		return nil
	}
	cmds := make([]tea.Cmd, 0, len(a.pendingToast))
	for _, id := range a.pendingToast {
		cmds = append(cmds, tea.Tick(toastTTL, func(time.Time) tea.Msg {
			return toastExpiredMsg{id: id}
		}))
	}
	a.pendingToast = nil
	return tea.Batch(cmds...)
}
