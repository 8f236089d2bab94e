package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/tessro/onair/internal/catalog"
	"github.com/tessro/onair/internal/core"
	apperrors "github.com/tessro/onair/internal/errors"
	"github.com/tessro/onair/internal/keys"
	"github.com/tessro/onair/internal/playback"
	"github.com/tessro/onair/internal/resolver"
	"github.com/tessro/onair/internal/tui/components"
	"github.com/tessro/onair/internal/tui/styles"
)

// Panel represents which panel is focused
type Panel int

const (
	PanelEpisodes Panel = iota
	PanelHistory
)

const (
	// noticeLifetime is how long transient and validation notices stay up.
	noticeLifetime = 5 * time.Second
	catalogTimeout = 30 * time.Second
)

// writeClipboard is swapped out in tests.
var writeClipboard = clipboard.WriteAll

// Options configures the TUI.
type Options struct {
	Engine *playback.Engine
	// Catalog may be nil, in which case the episode list stays empty.
	Catalog     *catalog.Catalog
	Resolver    *resolver.Resolver
	Station     string
	RefreshRate time.Duration
	Autoplay    bool
	Logger      zerolog.Logger
}

// App holds the TUI application state shared by every Model copy.
type App struct {
	engine      *playback.Engine
	catalog     *catalog.Catalog
	resolver    *resolver.Resolver
	station     string
	refreshRate time.Duration
	autoplay    bool
	log         zerolog.Logger
	now         func() time.Time

	updates <-chan core.PlaybackState
	notices chan playback.Notice
	titles  chan string
}

// NewApp creates a new TUI application
func NewApp(opts Options) *App {
	if opts.RefreshRate <= 0 {
		opts.RefreshRate = time.Second
	}
	return &App{
		engine:      opts.Engine,
		catalog:     opts.Catalog,
		resolver:    opts.Resolver,
		station:     opts.Station,
		refreshRate: opts.RefreshRate,
		autoplay:    opts.Autoplay,
		log:         opts.Logger.With().Str("component", "tui").Logger(),
		now:         time.Now,
		notices:     make(chan playback.Notice, 16),
		titles:      make(chan string, 1),
	}
}

// SetLiveTitle hands the airing title to the UI. It never blocks; an unread
// title is replaced.
func (a *App) SetLiveTitle(title string) {
	for {
		select {
		case a.titles <- title:
			return
		default:
		}
		select {
		case <-a.titles:
		default:
		}
	}
}

// attach subscribes to the engine until ctx is done.
func (a *App) attach(ctx context.Context) {
	a.updates = a.engine.Updates(ctx)
	unsubscribe := a.engine.Notices(func(n playback.Notice) {
		// Runs under the engine lock; drop rather than block.
		select {
		case a.notices <- n:
		default:
			a.log.Debug().Str("notice", n.Message).Msg("notice dropped")
		}
	})
	go func() {
		<-ctx.Done()
		unsubscribe()
	}()
}

// Model is the main TUI model
type Model struct {
	app          *App
	width        int
	height       int
	focusedPanel Panel

	// State
	state       core.PlaybackState
	liveTitle   string
	loading     bool
	episodesErr error

	// Components
	footer      *components.Footer
	episodeView *components.Episodes
	historyView *components.History
	keyMap      keys.KeyMap
	controller  *keys.Controller
	help        help.Model

	// Overlays
	showHelp bool

	// URL input
	urlInput textinput.Model

	// Notices
	notice       *playback.Notice
	noticeExpiry time.Time // zero for notices that wait for playback

	// Quit flag
	quitting bool
}

// NewModel creates a new TUI model
func NewModel(app *App) Model {
	ti := textinput.New()
	ti.Placeholder = "https://example.org/episode.mp3"
	ti.CharLimit = 2048
	ti.Width = 60
	ti.Prompt = "URL › "

	episodes := components.NewEpisodes()
	m := Model{
		app:          app,
		focusedPanel: PanelEpisodes,
		state:        app.engine.State(),
		loading:      app.catalog != nil,
		footer:       components.NewFooter(),
		episodeView:  episodes,
		historyView:  components.NewHistory(),
		keyMap:       keys.DefaultKeyMap(),
		help:         help.New(),
		urlInput:     ti,
	}
	m.controller = &keys.Controller{
		Target:   app.engine,
		Episodes: episodes.Items,
		Resolver: app.resolver,
	}
	return m
}

// Messages
type tickMsg time.Time
type stateMsg core.PlaybackState
type noticeMsg playback.Notice
type titleMsg string
type errMsg error
type copiedMsg string
type episodesMsg struct {
	episodes []core.Episode
	errs     []error
}

// Commands
func (m Model) tick() tea.Cmd {
	return tea.Tick(m.app.refreshRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) waitForState() tea.Cmd {
	ch := m.app.updates
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return stateMsg(s)
	}
}

func (m Model) waitForNotice() tea.Cmd {
	return func() tea.Msg {
		return noticeMsg(<-m.app.notices)
	}
}

func (m Model) waitForTitle() tea.Cmd {
	return func() tea.Msg {
		return titleMsg(<-m.app.titles)
	}
}

func (m Model) fetchEpisodes() tea.Cmd {
	cat := m.app.catalog
	if cat == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), catalogTimeout)
		defer cancel()

		res := cat.LoadAll(ctx)
		return episodesMsg{episodes: res.Data, errs: res.Errors}
	}
}

func (m Model) copySource() tea.Cmd {
	src := m.state.Source
	url := src.URL
	if src.IsLive() {
		url = m.app.engine.StreamURL()
	}
	return func() tea.Msg {
		if url == "" {
			return errMsg(fmt.Errorf("nothing to copy"))
		}
		if err := writeClipboard(url); err != nil {
			return errMsg(fmt.Errorf("copy to clipboard: %w", err))
		}
		return copiedMsg(url)
	}
}

func (m Model) autoplay() tea.Cmd {
	if !m.app.autoplay {
		return nil
	}
	engine := m.app.engine
	return func() tea.Msg {
		engine.Play()
		return nil
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.tick(),
		m.waitForState(),
		m.waitForNotice(),
		m.waitForTitle(),
		m.fetchEpisodes(),
		m.autoplay(),
	)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		m.expireNotice()
		return m, m.tick()

	case stateMsg:
		m.applyState(core.PlaybackState(msg))
		return m, m.waitForState()

	case noticeMsg:
		m.showNotice(playback.Notice(msg))
		return m, m.waitForNotice()

	case titleMsg:
		if m.state.Source.IsLive() {
			m.liveTitle = string(msg)
		}
		return m, m.waitForTitle()

	case episodesMsg:
		m.loading = false
		m.episodeView.SetItems(msg.episodes)
		m.episodesErr = nil
		if len(msg.errs) > 0 {
			m.episodesErr = msg.errs[0]
			m.showNotice(playback.Notice{Kind: playback.NoticeTransient, Message: msg.errs[0].Error()})
		}
		return m, nil

	case copiedMsg:
		m.showNotice(playback.Notice{Kind: playback.NoticeTransient, Message: "Copied " + string(msg)})
		return m, nil

	case errMsg:
		m.showError(msg)
		return m, nil
	}

	// Forward other messages (cursor blink) to the input while it is open
	if m.urlInput.Focused() {
		var inputCmd tea.Cmd
		m.urlInput, inputCmd = m.urlInput.Update(msg)
		return m, inputCmd
	}

	return m, nil
}

func (m *Model) applyState(s core.PlaybackState) {
	prev := m.state
	m.state = s

	if !s.Source.Equal(prev.Source) || !s.Source.IsLive() {
		m.liveTitle = ""
	}
	if s.IsPlaying() && (!prev.IsPlaying() || !s.Source.Equal(prev.Source)) {
		m.historyView.Add(s.Source)
	}
	// Terminal notices stay up until playback recovers
	if s.IsPlaying() && m.notice != nil && m.notice.Kind == playback.NoticeTerminal {
		m.notice = nil
	}
}

func (m *Model) showNotice(n playback.Notice) {
	m.notice = &n
	m.noticeExpiry = time.Time{}
	if n.Kind != playback.NoticeTerminal {
		m.noticeExpiry = m.app.now().Add(noticeLifetime)
	}
}

func (m *Model) showError(err error) {
	msg := err.Error()
	if s := apperrors.GetSuggestion(err); s != "" {
		msg += " (" + s + ")"
	}
	m.showNotice(playback.Notice{Kind: playback.NoticeValidation, Message: msg})
}

func (m *Model) expireNotice() {
	if m.notice == nil || m.noticeExpiry.IsZero() {
		return
	}
	if !m.app.now().Before(m.noticeExpiry) {
		m.notice = nil
	}
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keys (always work)
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	}

	// Help overlay
	if m.showHelp {
		switch msg.String() {
		case "?", "esc":
			m.showHelp = false
		}
		return m, nil
	}

	// URL input swallows everything, playback shortcuts included
	if m.urlInput.Focused() {
		return m.handleURLKeyPress(msg)
	}

	if action, ok := m.keyMap.Map(msg, m.urlInput.Focused()); ok {
		if err := m.controller.Handle(action); err != nil {
			m.showError(err)
		}
		return m, nil
	}

	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit

	case "?":
		m.showHelp = true
		return m, nil

	case "/":
		m.urlInput.SetValue("")
		m.urlInput.Focus()
		return m, textinput.Blink

	case "c":
		return m, m.copySource()

	case "r":
		m.loading = m.app.catalog != nil
		return m, m.fetchEpisodes()

	case "tab":
		m.focusedPanel = (m.focusedPanel + 1) % 2
		return m, nil

	case "shift+tab":
		m.focusedPanel = (m.focusedPanel + 1) % 2
		return m, nil
	}

	// Panel-specific keys
	switch m.focusedPanel {
	case PanelEpisodes:
		switch msg.String() {
		case "j":
			m.episodeView.SelectNext()
		case "k":
			m.episodeView.SelectPrev()
		case "enter":
			if ep, ok := m.episodeView.Selected(); ok {
				if err := m.playEpisode(ep); err != nil {
					m.showError(err)
				}
			}
		}
	case PanelHistory:
		switch msg.String() {
		case "enter":
			if entries := m.historyView.Entries(); len(entries) > 0 {
				if err := m.app.engine.SwitchSource(entries[0].Source); err != nil {
					m.showError(err)
				}
			}
		}
	}

	return m, nil
}

// playEpisode switches to ep, or toggles when ep is already the source.
func (m Model) playEpisode(ep core.Episode) error {
	cur := m.app.engine.State().Source
	if !cur.IsLive() && cur.Slug != "" && cur.Slug == ep.Slug {
		m.app.engine.Toggle()
		return nil
	}
	src, err := m.app.resolver.Resolve(resolver.ForEpisode(ep))
	if err != nil {
		return err
	}
	return m.app.engine.SwitchSource(src)
}

func (m Model) handleURLKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.urlInput.Blur()
		return m, nil

	case "enter":
		raw := strings.TrimSpace(m.urlInput.Value())
		if raw == "" {
			m.urlInput.Blur()
			return m, nil
		}
		src, err := m.app.resolver.Resolve(resolver.ForURL(raw))
		if err == nil {
			err = m.app.engine.SwitchSource(src)
		}
		if err != nil {
			// Keep the input open so the URL can be fixed
			m.showError(err)
			return m, nil
		}
		m.urlInput.Blur()
		return m, nil
	}

	var inputCmd tea.Cmd
	m.urlInput, inputCmd = m.urlInput.Update(msg)
	return m, inputCmd
}

// View renders the UI
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if m.width == 0 {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	info := components.FooterInfo{
		Station:   m.app.station,
		LiveTitle: m.liveTitle,
	}
	if m.notice != nil {
		info.Notice = m.notice.Message
		info.NoticeIsErr = m.notice.Kind != playback.NoticeTransient
	}
	footer := m.footer.Render(m.state, info, m.width)

	var input string
	if m.urlInput.Focused() {
		input = styles.FocusedBorder.Width(m.width - 2).Render(m.urlInput.View())
	}

	statusBar := m.renderStatusBar()

	bodyHeight := m.height - lipgloss.Height(footer) - lipgloss.Height(statusBar) - lipgloss.Height(input)
	if input == "" {
		bodyHeight++
	}
	if bodyHeight < 5 {
		bodyHeight = 5
	}

	leftWidth := m.width * 65 / 100
	rightWidth := m.width - leftWidth - 2

	emptyText := "No podcast feeds configured"
	switch {
	case m.loading:
		emptyText = "Loading episodes..."
	case m.episodesErr != nil:
		emptyText = "Episodes unavailable: " + m.episodesErr.Error()
	case m.app.catalog != nil:
		emptyText = "No episodes"
	}

	current := ""
	if !m.state.Source.IsLive() {
		current = m.state.Source.Slug
	}
	episodes := m.episodeView.Render(current, leftWidth-2, bodyHeight-2, m.focusedPanel == PanelEpisodes, emptyText)
	history := m.historyView.Render(rightWidth-2, bodyHeight-2, m.focusedPanel == PanelHistory)
	main := lipgloss.JoinHorizontal(lipgloss.Top, episodes, history)

	parts := []string{main}
	if input != "" {
		parts = append(parts, input)
	}
	parts = append(parts, footer, statusBar)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderStatusBar() string {
	status := m.help.View(m.keyMap) + styles.Dim.Render("  •  j/k select  enter play  / url  c copy  ? help  q quit")
	if m.urlInput.Focused() {
		status = styles.Dim.Render("enter play  esc cancel")
	}

	return lipgloss.NewStyle().
		Width(m.width).
		Padding(0, 1).
		Render(status)
}

func (m Model) renderHelp() string {
	title := "On Air - Keyboard Shortcuts"
	divider := styles.Repeat("═", len(title))

	h := m.help
	h.ShowAll = true

	text := `
  ` + title + `
  ` + divider + `

  Global
  ──────
  q, Ctrl+C    Quit
  ?            Toggle help
  /            Play a URL
  c            Copy stream URL
  r            Reload episodes
  Tab          Switch panel

  Playback
  ────────
` + indent(h.View(m.keyMap), "  ") + `

  Episodes Panel
  ──────────────
  j/k          Select next/previous
  Enter        Play selected (again to pause)

  Press ? or Esc to close
`

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(styles.BorderStyle.Render(text))
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

// Run starts the TUI and blocks until the user quits.
func Run(ctx context.Context, app *App) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	app.attach(ctx)

	model := NewModel(app)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
